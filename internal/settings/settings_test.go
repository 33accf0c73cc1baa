package settings

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hammamikhairi/narrator/internal/domain"
	"github.com/hammamikhairi/narrator/internal/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.LevelOff, nil)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Settings
	}{
		{
			name: "all fields",
			body: `{"speechRate": 1.5, "volume": 0.8, "pollInterval": 2000}`,
			want: Settings{SpeechRate: 1.5, Volume: 0.8, PollInterval: 2 * time.Second},
		},
		{
			name: "partial file keeps other defaults",
			body: `{"volume": 0.3}`,
			want: Settings{SpeechRate: 1.0, Volume: 0.3, PollInterval: 5 * time.Second},
		},
		{
			name: "malformed json",
			body: `{"speechRate": 1.5,`,
			want: Default(),
		},
		{
			name: "empty file",
			body: ``,
			want: Default(),
		},
		{
			name: "wrong types fall back per field",
			body: `{"speechRate": "fast", "volume": true, "pollInterval": 100}`,
			want: Settings{SpeechRate: 1.0, Volume: 1.0, PollInterval: 100 * time.Millisecond},
		},
		{
			name: "non-positive poll interval",
			body: `{"pollInterval": 0}`,
			want: Default(),
		},
		{
			name: "volume clamped",
			body: `{"volume": 1.7}`,
			want: Default(),
		},
		{
			name: "keys are case sensitive",
			body: `{"SpeechRate": 2.0, "VOLUME": 0.2, "POLLINTERVAL": 100}`,
			want: Default(),
		},
		{
			name: "unknown fields ignored",
			body: `{"theme": "dark", "speechRate": 2}`,
			want: Settings{SpeechRate: 2.0, Volume: 1.0, PollInterval: 5 * time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(writeConfig(t, tt.body), testLogger())
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Load() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "nope.json"), testLogger())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got != Default() {
		t.Errorf("Load() = %+v, want defaults", got)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	got, err := Load("", testLogger())
	if err != nil || got != Default() {
		t.Errorf("Load(\"\") = %+v, %v; want defaults, nil", got, err)
	}
}

func TestLoadUnreadableIsFatal(t *testing.T) {
	// Reading a directory fails with something other than "not found".
	if _, err := Load(t.TempDir(), testLogger()); err == nil {
		t.Fatal("expected an error for a directory path")
	}
}

func TestStoreUpdateLocale(t *testing.T) {
	s := NewStore(Default())
	if prev := s.UpdateLocale("ko-KR"); prev != "" {
		t.Errorf("first UpdateLocale returned %q, want empty", prev)
	}
	if prev := s.UpdateLocale("en-US"); prev != "ko-KR" {
		t.Errorf("UpdateLocale returned %q, want ko-KR", prev)
	}
	snap := s.Snapshot()
	if snap.ActiveLocale != "en-US" || snap.SpeechRate != DefaultSpeechRate {
		t.Errorf("Snapshot() = %+v", snap)
	}
}

func TestStoreConcurrentReaders(t *testing.T) {
	s := NewStore(Default())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				s.UpdateLocale(domain.Locale([]string{"ko-KR", "en-US"}[(i+j)%2]))
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				snap := s.Snapshot()
				if snap.PollInterval != DefaultPollInterval {
					t.Errorf("torn snapshot: %+v", snap)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestResolveExplicit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.json")
	got, err := Resolve(path)
	if err != nil || got != path {
		t.Errorf("Resolve(%q) = %q, %v", path, got, err)
	}
}

func TestResolveFallsBackToDefaultName(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_DIRS", t.TempDir())
	got, err := Resolve("")
	if err != nil || got != DefaultFileName {
		t.Errorf("Resolve(\"\") = %q, %v; want %q", got, err, DefaultFileName)
	}
}

func TestResolvePrefersWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(DefaultFileName, []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Resolve("")
	if err != nil || got != DefaultFileName {
		t.Errorf("Resolve(\"\") = %q, %v", got, err)
	}
}
