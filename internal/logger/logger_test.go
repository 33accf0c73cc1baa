package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

var linePrefix = regexp.MustCompile(`^\[\d{2}:\d{2}:\d{2}\] `)

func TestLevels(t *testing.T) {
	tests := []struct {
		level     Level
		wantDebug bool
		wantInfo  bool
	}{
		{LevelOff, false, false},
		{LevelNormal, false, true},
		{LevelVerbose, true, true},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		log := New(tt.level, &buf)
		log.Debug("dbg %d", 1)
		log.Info("inf %d", 2)

		out := buf.String()
		if got := strings.Contains(out, "dbg 1"); got != tt.wantDebug {
			t.Errorf("level %d: debug present = %v, want %v", tt.level, got, tt.wantDebug)
		}
		if got := strings.Contains(out, "inf 2"); got != tt.wantInfo {
			t.Errorf("level %d: info present = %v, want %v", tt.level, got, tt.wantInfo)
		}
	}
}

func TestLineFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(LevelNormal, &buf)
	log.Info("keyboard hook installed")
	log.Error("speak failed: %s", "boom")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}
	for _, l := range lines {
		if !linePrefix.MatchString(l) {
			t.Errorf("line %q does not start with [HH:MM:SS]", l)
		}
	}
	if !strings.HasSuffix(lines[1], "speak failed: boom") {
		t.Errorf("unexpected error line %q", lines[1])
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(LevelOff, &buf)
	log.Info("hidden")
	log.SetLevel(LevelNormal)
	log.Info("shown")

	if log.GetLevel() != LevelNormal {
		t.Errorf("GetLevel() = %d, want %d", log.GetLevel(), LevelNormal)
	}
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestFileSinkAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "narrator.log")
	sink := NewFileSink(path)
	log := New(LevelNormal, sink)

	log.Info("first")
	log.Info("second")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	out := string(data)
	if strings.Index(out, "first") > strings.Index(out, "second") || !strings.Contains(out, "first") {
		t.Errorf("lines missing or out of order: %q", out)
	}
}

func TestFileSinkSwallowsErrors(t *testing.T) {
	// A directory cannot be opened for append.
	sink := &FileSink{path: t.TempDir()}
	n, err := sink.Write([]byte("line\n"))
	if err != nil || n != 5 {
		t.Errorf("Write() = %d, %v; want 5, nil", n, err)
	}
}
