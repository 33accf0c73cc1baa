package platform

import (
	"testing"

	"github.com/hammamikhairi/narrator/internal/logger"
)

func TestOpen(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)

	p, err := Open(HostConsole, log)
	if err != nil || p.Name != "console" {
		t.Fatalf("Open(console) = %q, %v", p.Name, err)
	}
	if p.Hook == nil || p.Translator == nil || p.Locales == nil || p.Inspector == nil || p.Pointer == nil {
		t.Errorf("console platform has nil facilities: %+v", p)
	}

	if _, err := Open("x11", log); err == nil {
		t.Error("expected error for unknown host")
	}
}
