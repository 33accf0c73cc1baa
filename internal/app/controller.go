// Package app owns the reader's lifecycle: load settings, start speech,
// install the key hook, start the background notifier, pump the host loop
// and tear everything down in order.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/hammamikhairi/narrator/internal/domain"
	"github.com/hammamikhairi/narrator/internal/intercept"
	"github.com/hammamikhairi/narrator/internal/keys"
	"github.com/hammamikhairi/narrator/internal/locale"
	"github.com/hammamikhairi/narrator/internal/logger"
	"github.com/hammamikhairi/narrator/internal/settings"
	"github.com/hammamikhairi/narrator/internal/speech"
	"github.com/hammamikhairi/narrator/internal/watcher"
)

// StartupError reports a failure that prevents the reader from running.
// The process exits with status 1 when Run returns one.
type StartupError struct {
	Stage string
	Err   error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("startup failed at %s: %v", e.Stage, e.Err)
}

func (e *StartupError) Unwrap() error { return e.Err }

// Startup stages.
const (
	StageHost     = "host"
	StageSettings = "settings"
	StageSpeech   = "speech"
	StageHook     = "hook"
)

// EngineFactory builds the speech engine.
type EngineFactory func(cfg speech.EngineConfig, log *logger.Logger) (speech.Engine, error)

// Options is the user-facing configuration of a run.
type Options struct {
	ConfigPath string
	Engine     speech.EngineConfig
	Echo       func(text string)
}

// Option configures a Controller.
type Option func(*Controller)

// WithEngineFactory replaces speech.NewEngine.
func WithEngineFactory(f EngineFactory) Option {
	return func(c *Controller) {
		c.newEngine = f
	}
}

// Controller runs one reader session. Run may be called once.
type Controller struct {
	platform  domain.Platform
	opts      Options
	log       *logger.Logger
	newEngine EngineFactory
	runID     string
	started   time.Time

	mouth       *speech.Mouth
	interceptor *intercept.Interceptor
	reg         domain.Registration
	watcher     *watcher.Watcher
}

// New creates a controller for platform.
func New(platform domain.Platform, opts Options, log *logger.Logger, copts ...Option) *Controller {
	c := &Controller{
		platform:  platform,
		opts:      opts,
		log:       log,
		newEngine: speech.NewEngine,
		runID:     uuid.NewString(),
	}
	for _, opt := range copts {
		opt(c)
	}
	return c
}

// Run starts the reader and blocks until ctx is cancelled or the host loop
// ends. Whatever was started is torn down before Run returns, including
// after a partial startup. Startup failures are returned as *StartupError;
// a host loop failure is logged and Run returns nil.
func (c *Controller) Run(ctx context.Context) error {
	c.started = time.Now()
	c.log.Info("narrator starting (run=%s, host=%s)", c.runID, c.platform.Name)
	defer c.shutdown()

	cfg, err := settings.Load(c.opts.ConfigPath, c.log)
	if err != nil {
		return c.fail(StageSettings, err)
	}

	initial, err := c.platform.Locales.Current()
	if err != nil {
		c.log.Warn("reading initial input locale: %v", err)
	}
	cfg.ActiveLocale = initial
	store := settings.NewStore(cfg)
	c.log.Info("initial input language: %s", locale.DisplayName(initial))

	engine, err := c.newEngine(c.opts.Engine, c.log)
	if err != nil {
		return c.fail(StageSpeech, err)
	}
	var mouthOpts []speech.MouthOption
	if c.opts.Echo != nil {
		mouthOpts = append(mouthOpts, speech.WithEcho(c.opts.Echo))
	}
	c.mouth = speech.NewMouth(engine, store, c.log, mouthOpts...)
	c.mouth.Start(ctx)

	if p, ok := engine.(speech.Prefetcher); ok {
		p.Prefetch(ctx, speech.EngineRate(cfg.SpeechRate), keys.Phrases()...)
	}
	if err := c.mouth.Say(speech.LineReady(), domain.PriorityNormal); err != nil {
		c.log.Warn("announcing readiness: %v", err)
	}

	classifier := keys.NewClassifier(c.platform.Translator, c.platform.Inspector, c.platform.Pointer)
	detector := locale.NewDetector(c.platform.Locales, store, c.mouth, c.log)
	c.interceptor = intercept.New(classifier, c.mouth, detector, c.log)

	reg, err := c.interceptor.Register(c.platform.Hook)
	if err != nil {
		return c.fail(StageHook, err)
	}
	c.reg = reg

	w := watcher.New(c.mouth, store, c.log)
	if err := w.Start(ctx); err != nil {
		c.log.Error("periodic notifier not started, continuing without it: %v", err)
	} else {
		c.watcher = w
	}

	c.log.Info("screen reader running")

	if err := c.platform.Hook.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		c.log.Error("host loop: %v", err)
	}
	return nil
}

func (c *Controller) fail(stage string, err error) error {
	c.log.Error("startup failed at %s: %v", stage, err)
	return &StartupError{Stage: stage, Err: err}
}

// shutdown releases resources in reverse dependency order: stop receiving
// keys, stop the notifier, then drain and close speech.
func (c *Controller) shutdown() {
	if c.reg != nil {
		if err := c.reg.Close(); err != nil {
			c.log.Error("removing keyboard hook: %v", err)
		}
	}
	if c.watcher != nil {
		c.watcher.Stop()
	}
	if c.mouth != nil {
		if err := c.mouth.Close(); err != nil {
			c.log.Error("closing speech engine: %v", err)
		}
	}
	c.logSummary()
	c.log.Info("cleaned up resources and exiting")
}

func (c *Controller) logSummary() {
	var keysSeen, faults uint64
	if c.interceptor != nil {
		s := c.interceptor.Stats()
		keysSeen, faults = s.Keys, s.Faults
	}
	var ms speech.MouthStats
	if c.mouth != nil {
		ms = c.mouth.Stats()
	}
	var notices, noticeFailures uint64
	if c.watcher != nil {
		notices, noticeFailures = c.watcher.Cycles(), c.watcher.Failures()
	}
	c.log.Info("session %s: up %s, %s keys, %s utterances spoken, %s failed, %s dropped, %s faults, %s notices (%s failed)",
		c.runID[:8],
		humanize.RelTime(c.started, time.Now(), "", ""),
		humanize.Comma(int64(keysSeen)),
		humanize.Comma(int64(ms.Spoken)),
		humanize.Comma(int64(ms.Failed)),
		humanize.Comma(int64(ms.Dropped)),
		humanize.Comma(int64(faults)),
		humanize.Comma(int64(notices)),
		humanize.Comma(int64(noticeFailures)),
	)
}
