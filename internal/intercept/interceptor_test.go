package intercept

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hammamikhairi/narrator/internal/domain"
	"github.com/hammamikhairi/narrator/internal/keys"
	"github.com/hammamikhairi/narrator/internal/locale"
	"github.com/hammamikhairi/narrator/internal/logger"
	"github.com/hammamikhairi/narrator/internal/settings"
	"github.com/hammamikhairi/narrator/internal/speech"
)

func testLogger() *logger.Logger {
	return logger.New(logger.LevelOff, nil)
}

type classifierFunc func(domain.KeyEvent) (string, error)

func (f classifierFunc) Classify(ev domain.KeyEvent) (string, error) { return f(ev) }

type checkerFunc func() error

func (f checkerFunc) CheckAndNotify() error { return f() }

type collectingSpeaker struct {
	mu   sync.Mutex
	said []string
	err  error
}

func (c *collectingSpeaker) Say(text string, _ domain.Priority) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.said = append(c.said, text)
	return nil
}

func (c *collectingSpeaker) texts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.said...)
}

// fakeHook records the installed handler and lets tests inject events.
type fakeHook struct {
	handler    domain.KeyHandler
	installErr error
	closed     atomic.Int32
}

func (h *fakeHook) Install(handler domain.KeyHandler) (domain.Registration, error) {
	if h.installErr != nil {
		return nil, h.installErr
	}
	h.handler = handler
	return h, nil
}

func (h *fakeHook) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func (h *fakeHook) Close() error {
	h.closed.Add(1)
	return nil
}

// press delivers ev and reports how many times next was called.
func (h *fakeHook) press(ev domain.KeyEvent) int {
	var forwarded int
	h.handler.HandleKey(ev, func() { forwarded++ })
	return forwarded
}

func noLocale() LocaleChecker { return checkerFunc(func() error { return nil }) }

func TestForwardsExactlyOnce(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name       string
		classifier Classifier
		speaker    *collectingSpeaker
		locale     LocaleChecker
	}{
		{
			name:       "happy path",
			classifier: classifierFunc(func(domain.KeyEvent) (string, error) { return "a", nil }),
			speaker:    &collectingSpeaker{},
			locale:     noLocale(),
		},
		{
			name:       "classifier error",
			classifier: classifierFunc(func(domain.KeyEvent) (string, error) { return "", boom }),
			speaker:    &collectingSpeaker{},
			locale:     noLocale(),
		},
		{
			name:       "classifier panic",
			classifier: classifierFunc(func(domain.KeyEvent) (string, error) { panic("kaboom") }),
			speaker:    &collectingSpeaker{},
			locale:     noLocale(),
		},
		{
			name:       "speaker error",
			classifier: classifierFunc(func(domain.KeyEvent) (string, error) { return "a", nil }),
			speaker:    &collectingSpeaker{err: domain.ErrQueueFull},
			locale:     noLocale(),
		},
		{
			name:       "locale panic",
			classifier: classifierFunc(func(domain.KeyEvent) (string, error) { return "a", nil }),
			speaker:    &collectingSpeaker{},
			locale:     checkerFunc(func() error { panic("locale exploded") }),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hook := &fakeHook{}
			i := New(tt.classifier, tt.speaker, tt.locale, testLogger())
			if _, err := i.Register(hook); err != nil {
				t.Fatalf("Register: %v", err)
			}
			if n := hook.press(domain.KeyEvent{Code: 0x41}); n != 1 {
				t.Errorf("next called %d times, want 1", n)
			}
		})
	}
}

func TestStepIsolation(t *testing.T) {
	var localeCalls int
	i := New(
		classifierFunc(func(domain.KeyEvent) (string, error) { panic("classify") }),
		&collectingSpeaker{},
		checkerFunc(func() error { localeCalls++; return nil }),
		testLogger(),
	)

	outcomes := i.Process(domain.KeyEvent{})
	if len(outcomes) != 2 {
		t.Fatalf("outcomes = %+v, want classify and locale", outcomes)
	}
	if outcomes[0].Step != StepClassify || !errors.Is(outcomes[0].Err, errPanic) {
		t.Errorf("classify outcome = %+v", outcomes[0])
	}
	if outcomes[1].Step != StepLocale || outcomes[1].Err != nil {
		t.Errorf("locale outcome = %+v", outcomes[1])
	}
	if localeCalls != 1 {
		t.Errorf("locale ran %d times after classify panic", localeCalls)
	}
}

func TestSpeakErrorStillChecksLocale(t *testing.T) {
	var localeCalls int
	i := New(
		classifierFunc(func(domain.KeyEvent) (string, error) { return "a", nil }),
		&collectingSpeaker{err: domain.ErrClosed},
		checkerFunc(func() error { localeCalls++; return nil }),
		testLogger(),
	)
	outcomes := i.Process(domain.KeyEvent{})
	if len(outcomes) != 3 || !errors.Is(outcomes[1].Err, domain.ErrClosed) {
		t.Errorf("outcomes = %+v", outcomes)
	}
	if localeCalls != 1 {
		t.Errorf("locale ran %d times", localeCalls)
	}
}

func TestSilentKeySkipsSpeak(t *testing.T) {
	sp := &collectingSpeaker{}
	i := New(classifierFunc(func(domain.KeyEvent) (string, error) { return "", nil }), sp, noLocale(), testLogger())
	outcomes := i.Process(domain.KeyEvent{})
	for _, o := range outcomes {
		if o.Step == StepSpeak {
			t.Errorf("speak ran for a silent key")
		}
	}
}

func TestUnregisteredAndClosedOnlyForward(t *testing.T) {
	var classified int
	sp := &collectingSpeaker{}
	i := New(classifierFunc(func(domain.KeyEvent) (string, error) { classified++; return "a", nil }), sp, noLocale(), testLogger())

	// Before registration.
	var forwarded int
	i.HandleKey(domain.KeyEvent{}, func() { forwarded++ })
	if forwarded != 1 || classified != 0 {
		t.Fatalf("before register: forwarded=%d classified=%d", forwarded, classified)
	}

	hook := &fakeHook{}
	reg, err := i.Register(hook)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	hook.press(domain.KeyEvent{})
	if classified != 1 {
		t.Fatalf("registered: classified=%d", classified)
	}

	if err := reg.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := reg.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if hook.closed.Load() != 1 {
		t.Errorf("host registration closed %d times, want 1", hook.closed.Load())
	}

	// The host may still deliver an in-flight event after teardown.
	if n := hook.press(domain.KeyEvent{}); n != 1 {
		t.Errorf("after close: next called %d times", n)
	}
	if classified != 1 || len(sp.texts()) != 1 {
		t.Errorf("after close: classified=%d spoken=%d", classified, len(sp.texts()))
	}
}

func TestRegisterOnce(t *testing.T) {
	i := New(classifierFunc(func(domain.KeyEvent) (string, error) { return "", nil }), &collectingSpeaker{}, noLocale(), testLogger())
	if _, err := i.Register(&fakeHook{}); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if _, err := i.Register(&fakeHook{}); !errors.Is(err, domain.ErrAlreadyRegistered) {
		t.Errorf("second Register = %v, want ErrAlreadyRegistered", err)
	}
}

func TestRegisterFailure(t *testing.T) {
	i := New(classifierFunc(func(domain.KeyEvent) (string, error) { return "", nil }), &collectingSpeaker{}, noLocale(), testLogger())
	if _, err := i.Register(&fakeHook{installErr: errors.New("access denied")}); err == nil {
		t.Fatal("expected install error")
	}
	if i.Active() {
		t.Error("interceptor active after failed install")
	}
}

func TestFaultCounting(t *testing.T) {
	i := New(
		classifierFunc(func(domain.KeyEvent) (string, error) { return "", errors.New("x") }),
		&collectingSpeaker{},
		noLocale(),
		testLogger(),
		WithFaultLogLimit(time.Hour, 1),
	)
	hook := &fakeHook{}
	i.Register(hook)
	for n := 0; n < 5; n++ {
		hook.press(domain.KeyEvent{})
	}
	s := i.Stats()
	if s.Keys != 5 || s.Faults != 5 {
		t.Errorf("Stats = %+v", s)
	}
}

type fakeTranslator struct{}

func (fakeTranslator) Translate(ev domain.KeyEvent) string {
	if ev.Code == 0x41 {
		return "a"
	}
	return ""
}

type noElement struct{}

func (noElement) LabelAt(domain.Point) (string, error) { return "", nil }
func (noElement) Position() (domain.Point, error) { return domain.Point{}, nil }

type fixedLocale domain.Locale

func (f fixedLocale) Current() (domain.Locale, error) { return domain.Locale(f), nil }

type recordingEngine struct {
	mu   sync.Mutex
	reqs []speech.Request
}

func (e *recordingEngine) Name() string { return "recording" }
func (e *recordingEngine) Close() error { return nil }
func (e *recordingEngine) Submit(_ context.Context, req speech.Request) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reqs = append(e.reqs, req)
	return nil
}

func (e *recordingEngine) snapshot() []speech.Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]speech.Request(nil), e.reqs...)
}

func TestEnterEndToEnd(t *testing.T) {
	log := testLogger()
	store := settings.NewStore(settings.Settings{SpeechRate: 1.0, Volume: 1.0, PollInterval: time.Hour, ActiveLocale: "en-US"})
	eng := &recordingEngine{}
	mouth := speech.NewMouth(eng, store, log)
	mouth.Start(context.Background())
	defer mouth.Close()

	classifier := keys.NewClassifier(fakeTranslator{}, noElement{}, noElement{})
	detector := locale.NewDetector(fixedLocale("en-US"), store, mouth, log)
	i := New(classifier, mouth, detector, log)

	hook := &fakeHook{}
	if _, err := i.Register(hook); err != nil {
		t.Fatalf("Register: %v", err)
	}

	var ev domain.KeyEvent
	ev.Code = domain.KeyReturn
	ev.State.SetDown(domain.KeyShift, true)

	if n := hook.press(ev); n != 1 {
		t.Fatalf("next called %d times", n)
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(eng.snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	reqs := eng.snapshot()
	if len(reqs) != 1 {
		t.Fatalf("engine got %d requests, want 1", len(reqs))
	}
	if reqs[0].Text != "enter" || reqs[0].Rate != 0 || reqs[0].Volume != 100 {
		t.Errorf("request = %+v, want enter at rate 0 volume 100", reqs[0])
	}
}
