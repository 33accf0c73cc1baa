//go:build !windows

// Package uiohook implements the global key hook on Linux and macOS with
// libuiohook (through gohook). Named keys are taken from key presses and
// everything else from the characters libuiohook has already typed.
package uiohook

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"unicode"

	hook "github.com/robotn/gohook"

	"github.com/hammamikhairi/narrator/internal/domain"
	"github.com/hammamikhairi/narrator/internal/keys"
	"github.com/hammamikhairi/narrator/internal/locale"
	"github.com/hammamikhairi/narrator/internal/logger"
)

var (
	_ domain.Hook          = (*Hook)(nil)
	_ domain.PointerSource = (*Hook)(nil)
)

const stopTimeout = 2 * time.Second

// Hook streams libuiohook events and hands key-downs to the installed
// handler. It also tracks the pointer from mouse motion events.
type Hook struct {
	log *logger.Logger

	mu      sync.Mutex
	handler domain.KeyHandler
	stop    chan struct{}
	done    chan struct{}

	pointerX, pointerY atomic.Int64
	sawPointer         atomic.Bool
}

// NewHook creates an uninstalled hook.
func NewHook(log *logger.Logger) *Hook {
	return &Hook{log: log}
}

// Install starts libuiohook and the dispatch goroutine.
func (h *Hook) Install(handler domain.KeyHandler) (domain.Registration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.handler != nil {
		return nil, fmt.Errorf("uiohook: %w", domain.ErrAlreadyRegistered)
	}

	events := hook.Start()
	if events == nil {
		return nil, errors.New("uiohook: failed to start event hook")
	}

	h.handler = handler
	h.stop = make(chan struct{})
	h.done = make(chan struct{})
	go h.dispatch(events)
	return &registration{h: h}, nil
}

// Run blocks until ctx is cancelled or the event stream ends.
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
		return errors.New("uiohook event stream ended")
	}
}

// Position returns the last pointer position seen.
func (h *Hook) Position() (domain.Point, error) {
	if !h.sawPointer.Load() {
		return domain.Point{}, errors.New("pointer position not known yet")
	}
	return domain.Point{X: int(h.pointerX.Load()), Y: int(h.pointerY.Load())}, nil
}

func (h *Hook) dispatch(events chan hook.Event) {
	defer close(h.done)
	for {
		select {
		case <-h.stop:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			h.handle(ev)
		}
	}
}

func (h *Hook) handle(ev hook.Event) {
	switch ev.Kind {
	case hook.MouseMove, hook.MouseDrag:
		h.pointerX.Store(int64(ev.X))
		h.pointerY.Store(int64(ev.Y))
		h.sawPointer.Store(true)

	case hook.KeyHold:
		// The physical press. Only keys with a fixed phrase are handled
		// here; printable keys arrive again as typed characters.
		code, ok := virtualKey(ev.Keycode)
		if !ok {
			return
		}
		h.deliver(domain.KeyEvent{Code: code, ScanCode: uint32(ev.Rawcode)})

	case hook.KeyDown:
		// The typed character produced by the press, after layout and
		// dead-key composition.
		r := ev.Keychar
		if r == hook.CharUndefined || r == ' ' || unicode.IsControl(r) {
			return
		}
		h.deliver(domain.KeyEvent{Typed: string(r), ScanCode: uint32(ev.Rawcode)})
	}
}

// deliver calls the handler. libuiohook only observes events, so there is
// nothing to pass on and next is a no-op.
func (h *Hook) deliver(ev domain.KeyEvent) {
	if p, err := h.Position(); err == nil {
		ev.Pointer, ev.HasPointer = p, true
	}
	h.handler.HandleKey(ev, func() {})
}

type registration struct {
	h    *Hook
	once sync.Once
	err  error
}

func (r *registration) Close() error {
	r.once.Do(func() {
		close(r.h.stop)
		hook.End()
		select {
		case <-r.h.done:
		case <-time.After(stopTimeout):
			r.err = errors.New("timeout stopping uiohook")
		}
	})
	return r.err
}

// Platform returns the libuiohook host. Element labels are not available
// through libuiohook, so F1 reports the terminal's view of the world.
func Platform(log *logger.Logger) domain.Platform {
	h := NewHook(log)
	return domain.Platform{
		Name:       "uiohook",
		Hook:       h,
		Translator: keys.TypedTranslator{},
		Locales:    locale.EnvSource{},
		Inspector:  titleInspector{},
		Pointer:    h,
	}
}
