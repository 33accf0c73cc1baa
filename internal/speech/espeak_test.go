package speech

import (
	"reflect"
	"testing"
)

func TestWordsPerMinute(t *testing.T) {
	tests := map[int]int{0: 175, 10: 450, -10: 80, 5: 303}
	for rate, want := range tests {
		if got := wordsPerMinute(rate); got != want {
			t.Errorf("wordsPerMinute(%d) = %d, want %d", rate, got, want)
		}
	}
}

func TestEspeakArgs(t *testing.T) {
	got := espeakArgs("ko", 0)
	want := []string{"--stdout", "--stdin", "-s", "175", "-v", "ko"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("espeakArgs = %v, want %v", got, want)
	}
	if got := espeakArgs("", 0); len(got) != 4 {
		t.Errorf("espeakArgs without voice = %v", got)
	}
}

func TestNewEngineNone(t *testing.T) {
	eng, err := NewEngine(EngineConfig{Kind: EngineNone}, testLogger())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if eng.Name() != "none" {
		t.Errorf("Name = %q", eng.Name())
	}
}

func TestNewEngineUnknown(t *testing.T) {
	if _, err := NewEngine(EngineConfig{Kind: "festival"}, testLogger()); err == nil {
		t.Error("expected error for unknown engine")
	}
}

func TestNewEngineAzureNeedsCredentials(t *testing.T) {
	if _, err := NewEngine(EngineConfig{Kind: EngineAzure}, testLogger()); err == nil {
		t.Error("expected error without credentials")
	}
}
