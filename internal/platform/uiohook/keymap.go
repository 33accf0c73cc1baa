//go:build !windows

package uiohook

import "github.com/hammamikhairi/narrator/internal/domain"

// libuiohook virtual key codes (VC_*) for keys with fixed phrases.
var vcToVK = map[uint16]domain.KeyCode{
	0x0001: domain.KeyEscape,
	0x000E: domain.KeyBack,
	0x000F: domain.KeyTab,
	0x001C: domain.KeyReturn,
	0x0E1C: domain.KeyReturn, // keypad enter
	0x0039: domain.KeySpace,
	0x003A: domain.KeyCapital,
	0x003B: domain.KeyF1,
	0x002A: domain.KeyLShift,
	0x0036: domain.KeyRShift,
	0x001D: domain.KeyLControl,
	0x0E1D: domain.KeyRControl,
	0x0038: domain.KeyLMenu,
	0x0E38: domain.KeyRMenu,
	0x0E52: domain.KeyInsert,
	0x0E53: domain.KeyDelete,
	0x0E47: domain.KeyHome,
	0x0E4F: domain.KeyEnd,
	0x0E49: domain.KeyPrior,
	0x0E51: domain.KeyNext,
	0xE048: domain.KeyUp,
	0xE04B: domain.KeyLeft,
	0xE04D: domain.KeyRight,
	0xE050: domain.KeyDown,
}

func virtualKey(vc uint16) (domain.KeyCode, bool) {
	code, ok := vcToVK[vc]
	return code, ok
}
