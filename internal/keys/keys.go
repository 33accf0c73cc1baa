// Package keys decides what, if anything, is spoken for a key press.
package keys

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hammamikhairi/narrator/internal/domain"
	"github.com/hammamikhairi/narrator/internal/speech"
)

// MaxTranslated caps the characters spoken for one key press.
const MaxTranslated = 4

var namedKeys = map[domain.KeyCode]string{
	domain.KeyReturn:   "enter",
	domain.KeySpace:    "space",
	domain.KeyBack:     "backspace",
	domain.KeyEscape:   "escape",
	domain.KeyTab:      "tab",
	domain.KeyShift:    "shift",
	domain.KeyLShift:   "shift",
	domain.KeyRShift:   "shift",
	domain.KeyControl:  "control",
	domain.KeyLControl: "control",
	domain.KeyRControl: "control",
	domain.KeyMenu:     "alt",
	domain.KeyLMenu:    "alt",
	domain.KeyRMenu:    "alt",
	domain.KeyDelete:   "delete",
	domain.KeyCapital:  "caps lock",
	domain.KeyUp:       "up arrow",
	domain.KeyDown:     "down arrow",
	domain.KeyLeft:     "left arrow",
	domain.KeyRight:    "right arrow",
	domain.KeyHome:     "home",
	domain.KeyEnd:      "end",
	domain.KeyPrior:    "page up",
	domain.KeyNext:     "page down",
	domain.KeyInsert:   "insert",
}

// Name returns the fixed phrase for a named key.
func Name(code domain.KeyCode) (string, bool) {
	name, ok := namedKeys[code]
	return name, ok
}

// Named returns the named-key codes in ascending order.
func Named() []domain.KeyCode {
	codes := make([]domain.KeyCode, 0, len(namedKeys))
	for c := range namedKeys {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Phrases returns every distinct fixed phrase the classifier can produce.
func Phrases() []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range Named() {
		if name := namedKeys[c]; !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return append(out, speech.LineNoInformation())
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithReadKey changes the key that reads the element under the pointer.
func WithReadKey(code domain.KeyCode) Option {
	return func(c *Classifier) {
		c.readKey = code
	}
}

// Classifier maps key events to phrases. It holds no mutable state and is
// safe for concurrent use.
type Classifier struct {
	translator domain.KeyTranslator
	inspector  domain.ElementInspector
	pointer    domain.PointerSource
	readKey    domain.KeyCode
}

// NewClassifier creates a classifier backed by the given host facilities.
func NewClassifier(tr domain.KeyTranslator, insp domain.ElementInspector, ptr domain.PointerSource, opts ...Option) *Classifier {
	c := &Classifier{
		translator: tr,
		inspector:  insp,
		pointer:    ptr,
		readKey:    domain.KeyF1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the phrase to speak for ev, or "" for silence. Rules
// are tried in order: the read key, the named-key table, then translation
// under the active layout. Modifier state never changes a named phrase.
func (c *Classifier) Classify(ev domain.KeyEvent) (string, error) {
	if ev.Code == c.readKey {
		return c.readElement(ev)
	}
	if name, ok := namedKeys[ev.Code]; ok {
		return name, nil
	}
	return c.translate(ev), nil
}

func (c *Classifier) readElement(ev domain.KeyEvent) (string, error) {
	p := ev.Pointer
	if !ev.HasPointer {
		var err error
		if p, err = c.pointer.Position(); err != nil {
			return "", fmt.Errorf("reading pointer position: %w", err)
		}
	}
	label, err := c.inspector.LabelAt(p)
	if err != nil {
		return "", fmt.Errorf("inspecting element at %d,%d: %w", p.X, p.Y, err)
	}
	if strings.TrimSpace(label) == "" {
		label = speech.LineNoInformation()
	}
	return speech.LineWindow(label), nil
}

func (c *Classifier) translate(ev domain.KeyEvent) string {
	text := ev.Typed
	if text == "" && c.translator != nil {
		text = c.translator.Translate(ev)
	}
	if utf8.RuneCountInString(text) > MaxTranslated {
		text = string([]rune(text)[:MaxTranslated])
	}
	if !strings.ContainsFunc(text, speakable) {
		return ""
	}
	return text
}

func speakable(r rune) bool {
	return unicode.IsGraphic(r) && !unicode.IsSpace(r)
}

// TypedTranslator passes through characters the host already translated.
type TypedTranslator struct{}

// Translate returns ev.Typed.
func (TypedTranslator) Translate(ev domain.KeyEvent) string { return ev.Typed }
