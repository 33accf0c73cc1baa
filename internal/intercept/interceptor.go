// Package intercept runs the per-keystroke pipeline inside the host's key
// hook: classify, speak, check the input locale, then always pass the
// event on unchanged.
package intercept

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/hammamikhairi/narrator/internal/domain"
	"github.com/hammamikhairi/narrator/internal/logger"
)

var _ domain.KeyHandler = (*Interceptor)(nil)

// errPanic marks a step that panicked instead of returning.
var errPanic = errors.New("panic")

// Classifier picks the phrase for a key event.
type Classifier interface {
	Classify(ev domain.KeyEvent) (string, error)
}

// LocaleChecker announces input-language switches.
type LocaleChecker interface {
	CheckAndNotify() error
}

// Step names a stage of the per-keystroke pipeline.
type Step string

const (
	StepClassify Step = "classify"
	StepSpeak    Step = "speak"
	StepLocale   Step = "locale"
)

// Outcome is the result of one pipeline step.
type Outcome struct {
	Step Step
	Err  error
}

// Stats counts keystrokes seen by the interceptor.
type Stats struct {
	Keys   uint64
	Spoken uint64
	Faults uint64
}

type state int32

const (
	stateUnregistered state = iota
	stateRegistered
	stateClosed
)

// Option configures an Interceptor.
type Option func(*Interceptor)

// WithFaultLogLimit throttles fault logging to burst entries plus one per
// every interval. Faults beyond the limit are counted, not logged.
func WithFaultLogLimit(every time.Duration, burst int) Option {
	return func(i *Interceptor) {
		i.faultLog = rate.NewLimiter(rate.Every(every), burst)
	}
}

// Interceptor is the KeyHandler installed into the host hook. It moves
// from unregistered to registered once and from registered to closed once;
// outside the registered state it only forwards events.
type Interceptor struct {
	classifier Classifier
	speaker    domain.Announcer
	locale     LocaleChecker
	log        *logger.Logger
	faultLog   *rate.Limiter

	state atomic.Int32

	keys, spoken, faults, suppressed atomic.Uint64
}

// New creates an interceptor.
func New(classifier Classifier, speaker domain.Announcer, locale LocaleChecker, log *logger.Logger, opts ...Option) *Interceptor {
	i := &Interceptor{
		classifier: classifier,
		speaker:    speaker,
		locale:     locale,
		log:        log,
		faultLog:   rate.NewLimiter(rate.Every(time.Second), 10),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Register installs the interceptor into hook. It succeeds at most once per
// interceptor; the returned Registration detaches it.
func (i *Interceptor) Register(hook domain.Hook) (domain.Registration, error) {
	if !i.state.CompareAndSwap(int32(stateUnregistered), int32(stateRegistered)) {
		return nil, fmt.Errorf("interceptor: %w", domain.ErrAlreadyRegistered)
	}
	reg, err := hook.Install(i)
	if err != nil {
		i.state.Store(int32(stateClosed))
		return nil, fmt.Errorf("installing keyboard hook: %w", err)
	}
	i.log.Info("keyboard hook installed")
	return &registration{i: i, inner: reg}, nil
}

// Active reports whether events are currently processed.
func (i *Interceptor) Active() bool {
	return state(i.state.Load()) == stateRegistered
}

// Stats returns keystroke counters.
func (i *Interceptor) Stats() Stats {
	return Stats{
		Keys:   i.keys.Load(),
		Spoken: i.spoken.Load(),
		Faults: i.faults.Load(),
	}
}

// HandleKey runs the pipeline for ev and then calls next, exactly once,
// whatever happened inside.
func (i *Interceptor) HandleKey(ev domain.KeyEvent, next func()) {
	if next != nil {
		defer next()
	}
	defer i.recoverBoundary()

	if !i.Active() {
		return
	}
	i.keys.Add(1)

	for _, out := range i.Process(ev) {
		if out.Err != nil {
			i.fault(out)
		}
	}
}

// Process runs classify, speak and locale for ev. Every step runs in
// isolation: an error or panic in one is reported and the next still runs.
// Speak is skipped when classification produced nothing.
func (i *Interceptor) Process(ev domain.KeyEvent) []Outcome {
	outcomes := make([]Outcome, 0, 3)

	var phrase string
	outcomes = append(outcomes, guard(StepClassify, func() error {
		var err error
		phrase, err = i.classifier.Classify(ev)
		return err
	}))

	if phrase != "" {
		outcomes = append(outcomes, guard(StepSpeak, func() error {
			if err := i.speaker.Say(phrase, domain.PriorityNormal); err != nil {
				return err
			}
			i.spoken.Add(1)
			return nil
		}))
	}

	outcomes = append(outcomes, guard(StepLocale, i.locale.CheckAndNotify))
	return outcomes
}

func guard(step Step, fn func() error) (out Outcome) {
	out.Step = step
	defer func() {
		if r := recover(); r != nil {
			out.Err = fmt.Errorf("%w: %v", errPanic, r)
		}
	}()
	out.Err = fn()
	return out
}

func (i *Interceptor) fault(out Outcome) {
	i.faults.Add(1)
	if !i.faultLog.Allow() {
		i.suppressed.Add(1)
		return
	}
	if n := i.suppressed.Swap(0); n > 0 {
		i.log.Error("intercept: %s step failed: %v (%d similar suppressed)", out.Step, out.Err, n)
		return
	}
	i.log.Error("intercept: %s step failed: %v", out.Step, out.Err)
}

func (i *Interceptor) recoverBoundary() {
	if r := recover(); r != nil {
		i.faults.Add(1)
		i.log.Error("intercept: recovered at hook boundary: %v", r)
	}
}

type registration struct {
	i     *Interceptor
	inner domain.Registration
	once  sync.Once
	err   error
}

// Close stops event processing and detaches from the host hook. Events the
// host still delivers afterwards are forwarded untouched.
func (r *registration) Close() error {
	r.once.Do(func() {
		r.i.state.Store(int32(stateClosed))
		r.err = r.inner.Close()
		r.i.log.Info("keyboard hook removed")
	})
	return r.err
}
