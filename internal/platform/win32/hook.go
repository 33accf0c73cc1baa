//go:build windows

package win32

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/hammamikhairi/narrator/internal/domain"
	"github.com/hammamikhairi/narrator/internal/logger"
)

var _ domain.Hook = (*Hook)(nil)

// installTimeout bounds how long Install waits for the hook thread.
const installTimeout = 2 * time.Second

// Hook is a WH_KEYBOARD_LL hook. The hook and its message loop live on one
// goroutine locked to its OS thread, as Windows delivers low-level hook
// callbacks to the installing thread's message queue.
type Hook struct {
	log *logger.Logger

	mu       sync.Mutex
	handler  domain.KeyHandler
	threadID uint32
	done     chan struct{}
}

// NewHook creates an uninstalled hook.
func NewHook(log *logger.Logger) *Hook {
	return &Hook{log: log}
}

// Install starts the hook thread and waits until SetWindowsHookExW has
// succeeded or failed.
func (h *Hook) Install(handler domain.KeyHandler) (domain.Registration, error) {
	h.mu.Lock()
	if h.handler != nil {
		h.mu.Unlock()
		return nil, fmt.Errorf("win32 hook: %w", domain.ErrAlreadyRegistered)
	}
	h.handler = handler
	h.done = make(chan struct{})
	h.mu.Unlock()

	errCh := make(chan error, 1)
	go h.pump(errCh)

	select {
	case err := <-errCh:
		if err != nil {
			return nil, err
		}
	case <-time.After(installTimeout):
		return nil, errors.New("timeout installing low-level keyboard hook")
	}
	return &registration{h: h}, nil
}

// Run blocks until ctx is cancelled or the hook thread exits on its own.
func (h *Hook) Run(ctx context.Context) error {
	h.mu.Lock()
	done := h.done
	h.mu.Unlock()
	if done == nil {
		<-ctx.Done()
		return nil
	}

	select {
	case <-ctx.Done():
		return nil
	case <-done:
		return errors.New("keyboard hook message loop exited")
	}
}

func (h *Hook) pump(errCh chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(h.done)

	module, _, _ := procGetModuleHandleW.Call(0)
	callback := windows.NewCallback(h.proc)
	hook, _, callErr := procSetWindowsHookExW.Call(whKeyboardLL, callback, module, 0)
	if hook == 0 {
		errCh <- fmt.Errorf("SetWindowsHookExW: %w", callErr)
		return
	}

	h.mu.Lock()
	h.threadID = windows.GetCurrentThreadId()
	h.mu.Unlock()
	errCh <- nil

	var m msg
	for {
		ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if int32(ret) == -1 {
			h.log.Error("win32 hook: GetMessageW failed; leaving message loop")
			break
		}
		// 0 means WM_QUIT was posted.
		if ret == 0 {
			break
		}
	}

	procUnhookWindowsHookEx.Call(hook)
}

// proc is the LowLevelKeyboardProc. Every path ends in CallNextHookEx so
// no key is ever swallowed.
func (h *Hook) proc(nCode, wParam, lParam uintptr) uintptr {
	var (
		ret       uintptr
		forwarded bool
	)
	next := func() {
		if forwarded {
			return
		}
		forwarded = true
		ret, _, _ = procCallNextHookEx.Call(0, nCode, wParam, lParam)
	}

	if int32(nCode) == hcAction && (wParam == wmKeyDown || wParam == wmSysKeyDown) {
		kb := (*kbdllHookStruct)(unsafe.Pointer(lParam))
		h.handler.HandleKey(h.event(kb, wParam == wmSysKeyDown), next)
	}

	next()
	return ret
}

func (h *Hook) event(kb *kbdllHookStruct, sys bool) domain.KeyEvent {
	ev := domain.KeyEvent{
		Code:     domain.KeyCode(kb.VkCode),
		ScanCode: kb.ScanCode,
		SysKey:   sys,
		State:    snapshotState(),
	}
	if ev.ScanCode == 0 {
		sc, _, _ := procMapVirtualKeyW.Call(uintptr(kb.VkCode), mapvkVKToVSC)
		ev.ScanCode = uint32(sc)
	}
	return ev
}

// snapshotState captures the keys that change what a key types. The hook
// runs before the system updates its own state, so the async state is read
// directly.
func snapshotState() domain.KeyboardState {
	var s domain.KeyboardState
	for _, vk := range []domain.KeyCode{
		domain.KeyShift, domain.KeyLShift, domain.KeyRShift,
		domain.KeyControl, domain.KeyLControl, domain.KeyRControl,
		domain.KeyMenu, domain.KeyLMenu, domain.KeyRMenu,
	} {
		s.SetDown(vk, keyDown(uint32(vk)))
	}
	s.SetToggled(domain.KeyCapital, keyToggled(uint32(domain.KeyCapital)))
	return s
}

type registration struct {
	h    *Hook
	once sync.Once
	err  error
}

// Close posts WM_QUIT to the hook thread and waits for it to unhook.
func (r *registration) Close() error {
	r.once.Do(func() {
		r.h.mu.Lock()
		tid, done := r.h.threadID, r.h.done
		r.h.mu.Unlock()

		ok, _, err := procPostThreadMessageW.Call(uintptr(tid), wmQuit, 0, 0)
		if ok == 0 {
			r.err = fmt.Errorf("PostThreadMessageW: %w", err)
			return
		}
		select {
		case <-done:
		case <-time.After(installTimeout):
			r.err = errors.New("timeout waiting for keyboard hook thread")
		}
	})
	return r.err
}
