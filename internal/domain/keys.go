// Package domain defines the shared types, host ports and sentinel errors
// of the screen reader.
package domain

// KeyCode is a virtual-key code. Windows virtual-key numbering is the
// canonical code space; hosts with a different numbering translate into it.
type KeyCode uint32

// Virtual-key codes the reader gives special treatment.
const (
	KeyBack     KeyCode = 0x08
	KeyTab      KeyCode = 0x09
	KeyReturn   KeyCode = 0x0D
	KeyShift    KeyCode = 0x10
	KeyControl  KeyCode = 0x11
	KeyMenu     KeyCode = 0x12 // Alt
	KeyCapital  KeyCode = 0x14 // Caps Lock
	KeyEscape   KeyCode = 0x1B
	KeySpace    KeyCode = 0x20
	KeyPrior    KeyCode = 0x21 // Page Up
	KeyNext     KeyCode = 0x22 // Page Down
	KeyEnd      KeyCode = 0x23
	KeyHome     KeyCode = 0x24
	KeyLeft     KeyCode = 0x25
	KeyUp       KeyCode = 0x26
	KeyRight    KeyCode = 0x27
	KeyDown     KeyCode = 0x28
	KeyInsert   KeyCode = 0x2D
	KeyDelete   KeyCode = 0x2E
	KeyF1       KeyCode = 0x70
	KeyLShift   KeyCode = 0xA0
	KeyRShift   KeyCode = 0xA1
	KeyLControl KeyCode = 0xA2
	KeyRControl KeyCode = 0xA3
	KeyLMenu    KeyCode = 0xA4
	KeyRMenu    KeyCode = 0xA5
)

// KeyboardState is a snapshot of all 256 virtual keys. The high bit of an
// entry marks the key as held; the low bit marks a toggle key as on.
type KeyboardState [256]byte

// Down reports whether k was held when the snapshot was taken.
func (s *KeyboardState) Down(k KeyCode) bool {
	return k < 256 && s[k]&0x80 != 0
}

// Toggled reports whether toggle key k (Caps Lock) was on.
func (s *KeyboardState) Toggled(k KeyCode) bool {
	return k < 256 && s[k]&0x01 != 0
}

// SetDown marks k as held or released.
func (s *KeyboardState) SetDown(k KeyCode, down bool) {
	if k >= 256 {
		return
	}
	if down {
		s[k] |= 0x80
	} else {
		s[k] &^= 0x80
	}
}

// SetToggled marks toggle key k as on or off.
func (s *KeyboardState) SetToggled(k KeyCode, on bool) {
	if k >= 256 {
		return
	}
	if on {
		s[k] |= 0x01
	} else {
		s[k] &^= 0x01
	}
}

// Point is a screen coordinate in pixels.
type Point struct {
	X, Y int
}

// KeyEvent is a single key-down observed by the host hook.
type KeyEvent struct {
	Code     KeyCode
	ScanCode uint32
	State    KeyboardState

	// Typed carries characters the host already translated. When empty,
	// translation is left to the KeyTranslator.
	Typed string

	// Pointer is the pointer position at the time of the event, valid
	// only when HasPointer is set.
	Pointer    Point
	HasPointer bool

	// SysKey is set when the key went down with Alt held (WM_SYSKEYDOWN).
	SysKey bool
}
