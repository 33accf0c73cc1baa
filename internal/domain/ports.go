package domain

import "context"

// Announcer queues text for speech. Implementations must not block on
// audio playback.
type Announcer interface {
	Say(text string, priority Priority) error
}

// KeyHandler observes key events delivered by a Hook. next passes the event
// on to the rest of the system and must be called exactly once.
type KeyHandler interface {
	HandleKey(ev KeyEvent, next func())
}

// KeyHandlerFunc adapts a plain function to KeyHandler.
type KeyHandlerFunc func(ev KeyEvent, next func())

// HandleKey calls f(ev, next).
func (f KeyHandlerFunc) HandleKey(ev KeyEvent, next func()) { f(ev, next) }

// Hook is a host facility that delivers every key-down system-wide.
// Install attaches a handler; Run pumps the host event loop until ctx is
// cancelled or the host asks to quit.
type Hook interface {
	Install(h KeyHandler) (Registration, error)
	Run(ctx context.Context) error
}

// Registration detaches an installed handler. Close is idempotent.
type Registration interface {
	Close() error
}

// KeyTranslator turns a key event into the characters it produces under
// the active layout. An empty result means the key produces nothing.
type KeyTranslator interface {
	Translate(ev KeyEvent) string
}

// LocaleSource reports the input locale of the foreground context.
type LocaleSource interface {
	Current() (Locale, error)
}

// ElementInspector returns the accessible label of the UI element at p.
// An empty label with a nil error means the element has no name.
type ElementInspector interface {
	LabelAt(p Point) (string, error)
}

// PointerSource reports the current pointer position.
type PointerSource interface {
	Position() (Point, error)
}

// Platform bundles the host facilities one operating environment provides.
type Platform struct {
	Name       string
	Hook       Hook
	Translator KeyTranslator
	Locales    LocaleSource
	Inspector  ElementInspector
	Pointer    PointerSource
}
