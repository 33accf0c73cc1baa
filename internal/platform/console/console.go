// Package console is a terminal host for the reader. Keys typed into its
// text field go through the same pipeline the system-wide hooks use, then
// reach the field itself, so the reader can be tried without global hooks
// or accessibility permissions.
package console

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hammamikhairi/narrator/internal/domain"
	"github.com/hammamikhairi/narrator/internal/keys"
	"github.com/hammamikhairi/narrator/internal/locale"
	"github.com/hammamikhairi/narrator/internal/logger"
)

var (
	_ domain.Hook             = (*Host)(nil)
	_ domain.ElementInspector = (*Host)(nil)
	_ domain.PointerSource    = (*Host)(nil)
)

// Host owns the Bubble Tea program. It doubles as the inspector (the text
// field is the only element) and the pointer source.
type Host struct {
	log *logger.Logger

	mu      sync.Mutex
	handler domain.KeyHandler
	text    string
	program *tea.Program
}

// New creates a console host.
func New(log *logger.Logger) *Host {
	return &Host{log: log}
}

// Platform returns the console host facilities.
func Platform(log *logger.Logger) domain.Platform {
	h := New(log)
	return domain.Platform{
		Name:       "console",
		Hook:       h,
		Translator: keys.TypedTranslator{},
		Locales:    locale.EnvSource{},
		Inspector:  h,
		Pointer:    h,
	}
}

// Install attaches handler to every key the text field receives.
func (h *Host) Install(handler domain.KeyHandler) (domain.Registration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.handler != nil {
		return nil, fmt.Errorf("console: %w", domain.ErrAlreadyRegistered)
	}
	h.handler = handler
	return &registration{h: h}, nil
}

// LabelAt returns the text field contents.
func (h *Host) LabelAt(domain.Point) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.text, nil
}

// Position always reports the origin; the console has no pointer.
func (h *Host) Position() (domain.Point, error) {
	return domain.Point{}, nil
}

// Println prints a line above the text field once the program runs.
func (h *Host) Println(text string) {
	h.mu.Lock()
	p := h.program
	h.mu.Unlock()
	if p != nil {
		p.Println(text)
	}
}

// Run shows the text field until the user quits or ctx is cancelled.
func (h *Host) Run(ctx context.Context) error {
	m := newModel(h)
	p := tea.NewProgram(m, tea.WithContext(ctx))

	h.mu.Lock()
	h.program = p
	h.mu.Unlock()

	_, err := p.Run()

	h.mu.Lock()
	h.program = nil
	h.mu.Unlock()

	if errors.Is(err, tea.ErrProgramKilled) || ctx.Err() != nil {
		return nil
	}
	return err
}

// dispatch runs the installed handler with next applying the key to the
// text field.
func (h *Host) dispatch(ev domain.KeyEvent, next func()) {
	h.mu.Lock()
	handler := h.handler
	h.mu.Unlock()

	if handler == nil {
		next()
		return
	}
	handler.HandleKey(ev, next)
}

func (h *Host) setText(s string) {
	h.mu.Lock()
	h.text = s
	h.mu.Unlock()
}

type registration struct {
	h    *Host
	once sync.Once
}

func (r *registration) Close() error {
	r.once.Do(func() {
		r.h.mu.Lock()
		r.h.handler = nil
		r.h.mu.Unlock()
	})
	return nil
}

// keyMap holds the host's own bindings.
type keyMap struct {
	Quit key.Binding
}

var defaultKeys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "ctrl+d"),
		key.WithHelp("ctrl+c", "quit"),
	),
}

func newInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = "narrator> "
	ti.PromptStyle = promptStyle
	ti.Placeholder = "type here; F1 reads the field back"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60
	return ti
}
