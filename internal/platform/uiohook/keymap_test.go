//go:build !windows

package uiohook

import (
	"testing"

	hook "github.com/robotn/gohook"

	"github.com/hammamikhairi/narrator/internal/domain"
	"github.com/hammamikhairi/narrator/internal/keys"
	"github.com/hammamikhairi/narrator/internal/logger"
)

func TestKeymapCoversNamedKeys(t *testing.T) {
	mapped := map[domain.KeyCode]bool{}
	for _, code := range vcToVK {
		mapped[code] = true
	}
	for _, code := range keys.Named() {
		name, _ := keys.Name(code)
		// Generic modifier codes only exist on Windows; the sided ones stand in.
		switch code {
		case domain.KeyShift, domain.KeyControl, domain.KeyMenu:
			continue
		}
		if !mapped[code] {
			t.Errorf("no libuiohook code maps to %#x (%s)", code, name)
		}
	}
}

type recorder struct {
	events []domain.KeyEvent
}

func (r *recorder) HandleKey(ev domain.KeyEvent, next func()) {
	r.events = append(r.events, ev)
	next()
}

func TestHandle(t *testing.T) {
	h := NewHook(logger.New(logger.LevelOff, nil))
	rec := &recorder{}
	h.handler = rec

	h.handle(hook.Event{Kind: hook.MouseMove, X: 40, Y: 50})
	h.handle(hook.Event{Kind: hook.KeyHold, Keycode: 0x001C}) // enter
	h.handle(hook.Event{Kind: hook.KeyHold, Keycode: 0x001E}) // 'a' press: left to the typed event
	h.handle(hook.Event{Kind: hook.KeyDown, Keychar: 'a'})
	h.handle(hook.Event{Kind: hook.KeyDown, Keychar: ' '})
	h.handle(hook.Event{Kind: hook.KeyDown, Keychar: hook.CharUndefined})
	h.handle(hook.Event{Kind: hook.KeyUp, Keycode: 0x001C})

	if len(rec.events) != 2 {
		t.Fatalf("delivered %d events, want 2: %+v", len(rec.events), rec.events)
	}
	if rec.events[0].Code != domain.KeyReturn {
		t.Errorf("first event code = %#x, want enter", rec.events[0].Code)
	}
	if rec.events[1].Typed != "a" {
		t.Errorf("second event typed = %q, want a", rec.events[1].Typed)
	}
	if !rec.events[1].HasPointer || rec.events[1].Pointer != (domain.Point{X: 40, Y: 50}) {
		t.Errorf("pointer not attached: %+v", rec.events[1])
	}
}
