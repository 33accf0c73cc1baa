//go:build windows

package win32

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/hammamikhairi/narrator/internal/domain"
	"github.com/hammamikhairi/narrator/internal/logger"
)

var (
	_ domain.KeyTranslator    = Translator{}
	_ domain.LocaleSource     = LocaleSource{}
	_ domain.ElementInspector = Inspector{}
	_ domain.PointerSource    = Pointer{}
)

// Translator converts key events with ToUnicodeEx under the foreground
// window's keyboard layout.
type Translator struct{}

// Translate returns up to four characters, or "" for keys that produce
// nothing and for dead keys.
func (Translator) Translate(ev domain.KeyEvent) string {
	var buf [8]uint16
	state := ev.State
	n, _, _ := procToUnicodeEx.Call(
		uintptr(ev.Code),
		uintptr(ev.ScanCode),
		uintptr(unsafe.Pointer(&state[0])),
		uintptr(unsafe.Pointer(&buf[0])),
		4,
		tuDontChangeState,
		foregroundLayout(),
	)
	// Negative: dead key stored. Zero: no translation.
	count := int32(n)
	if count <= 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:count])
}

// LocaleSource reports the keyboard layout of the foreground window's
// thread as "<bcp47>:<hkl>".
type LocaleSource struct{}

// Current returns the foreground input locale.
func (LocaleSource) Current() (domain.Locale, error) {
	hkl := foregroundLayout()
	if hkl == 0 {
		return "", errors.New("no foreground keyboard layout")
	}
	name := localeName(uint32(hkl & 0xFFFF))
	return domain.Locale(fmt.Sprintf("%s:%x", name, hkl)), nil
}

// Inspector reads the title of the window under a point.
type Inspector struct{}

// LabelAt returns the window title at p.
func (Inspector) LabelAt(p domain.Point) (string, error) {
	hwnd := windowFromPoint(point{X: int32(p.X), Y: int32(p.Y)})
	if hwnd == 0 {
		return "", domain.ErrNoElement
	}
	return windowText(hwnd), nil
}

// Pointer reads the cursor position.
type Pointer struct{}

// Position returns the cursor position in screen coordinates.
func (Pointer) Position() (domain.Point, error) {
	p, err := cursorPos()
	if err != nil {
		return domain.Point{}, fmt.Errorf("GetCursorPos: %w", err)
	}
	return domain.Point{X: int(p.X), Y: int(p.Y)}, nil
}

// Platform returns the Windows host facilities.
func Platform(log *logger.Logger) domain.Platform {
	return domain.Platform{
		Name:       "windows",
		Hook:       NewHook(log),
		Translator: Translator{},
		Locales:    LocaleSource{},
		Inspector:  Inspector{},
		Pointer:    Pointer{},
	}
}
