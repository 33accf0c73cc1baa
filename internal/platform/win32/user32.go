//go:build windows

// Package win32 implements the host facilities on Windows: a low-level
// keyboard hook, ToUnicodeEx translation, the foreground keyboard layout
// and window titles under the pointer.
package win32

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procSetWindowsHookExW        = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx      = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx           = user32.NewProc("CallNextHookEx")
	procGetMessageW              = user32.NewProc("GetMessageW")
	procPostThreadMessageW       = user32.NewProc("PostThreadMessageW")
	procGetCursorPos             = user32.NewProc("GetCursorPos")
	procWindowFromPoint          = user32.NewProc("WindowFromPoint")
	procGetWindowTextW           = user32.NewProc("GetWindowTextW")
	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procGetKeyboardLayout        = user32.NewProc("GetKeyboardLayout")
	procToUnicodeEx              = user32.NewProc("ToUnicodeEx")
	procMapVirtualKeyW           = user32.NewProc("MapVirtualKeyW")
	procGetAsyncKeyState         = user32.NewProc("GetAsyncKeyState")
	procGetKeyState              = user32.NewProc("GetKeyState")

	procGetModuleHandleW = kernel32.NewProc("GetModuleHandleW")
	procLCIDToLocaleName = kernel32.NewProc("LCIDToLocaleName")
)

const (
	whKeyboardLL = 13
	hcAction     = 0

	wmQuit       = 0x0012
	wmKeyDown    = 0x0100
	wmSysKeyDown = 0x0104

	mapvkVKToVSC = 0

	// ToUnicodeEx flag: leave the kernel keyboard state (and any pending
	// dead key) untouched. Windows 10 1607 and later.
	tuDontChangeState = 1 << 2

	localeNameMaxLength = 85
)

// kbdllHookStruct mirrors KBDLLHOOKSTRUCT.
type kbdllHookStruct struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type point struct {
	X, Y int32
}

type msg struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      point
	private uint32
}

func cursorPos() (point, error) {
	var p point
	ok, _, err := procGetCursorPos.Call(uintptr(unsafe.Pointer(&p)))
	if ok == 0 {
		return p, err
	}
	return p, nil
}

// windowFromPoint passes POINT by value, which the x64 calling convention
// packs into a single register.
func windowFromPoint(p point) uintptr {
	if unsafe.Sizeof(uintptr(0)) == 8 {
		packed := uint64(uint32(p.X)) | uint64(uint32(p.Y))<<32
		hwnd, _, _ := procWindowFromPoint.Call(uintptr(packed))
		return hwnd
	}
	hwnd, _, _ := procWindowFromPoint.Call(uintptr(p.X), uintptr(p.Y))
	return hwnd
}

func windowText(hwnd uintptr) string {
	buf := make([]uint16, 512)
	n, _, _ := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}

// foregroundLayout returns the HKL of the thread owning the foreground
// window, or 0 when there is no foreground window.
func foregroundLayout() uintptr {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return 0
	}
	tid, _, _ := procGetWindowThreadProcessId.Call(hwnd, 0)
	hkl, _, _ := procGetKeyboardLayout.Call(tid)
	return hkl
}

func localeName(lcid uint32) string {
	var buf [localeNameMaxLength]uint16
	n, _, _ := procLCIDToLocaleName.Call(uintptr(lcid), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)), 0)
	if n == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:])
}

func keyDown(vk uint32) bool {
	r, _, _ := procGetAsyncKeyState.Call(uintptr(vk))
	return r&0x8000 != 0
}

func keyToggled(vk uint32) bool {
	r, _, _ := procGetKeyState.Call(uintptr(vk))
	return r&0x0001 != 0
}
