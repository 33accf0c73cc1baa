// Package watcher runs the periodic "screen content updated" notice on a
// background goroutine, re-reading the interval from settings every cycle.
package watcher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hammamikhairi/narrator/internal/domain"
	"github.com/hammamikhairi/narrator/internal/logger"
	"github.com/hammamikhairi/narrator/internal/settings"
	"github.com/hammamikhairi/narrator/internal/speech"
)

// SettingsSource supplies the poll interval.
type SettingsSource interface {
	Snapshot() settings.Settings
}

// Option configures the watcher.
type Option func(*Watcher)

// WithMessage replaces the announced text.
func WithMessage(text string) Option {
	return func(w *Watcher) {
		w.message = text
	}
}

// Watcher announces a content-updated notice once per poll interval. A
// failure or panic in one cycle is logged and the next cycle still runs.
type Watcher struct {
	speaker  domain.Announcer
	settings SettingsSource
	log      *logger.Logger
	message  string

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	cycles, failures atomic.Uint64
}

// New creates a watcher.
func New(speaker domain.Announcer, src SettingsSource, log *logger.Logger, opts ...Option) *Watcher {
	w := &Watcher{
		speaker:  speaker,
		settings: src,
		log:      log,
		message:  speech.LineContentUpdated(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start launches the loop on its own goroutine. Non-blocking.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return errors.New("watcher already running")
	}

	childCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})
	w.running = true

	go func() {
		defer close(w.done)
		w.Run(childCtx)
	}()
	return nil
}

// Stop cancels the loop and waits for it to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.cancel()
	done := w.done
	w.running = false
	w.mu.Unlock()

	<-done
}

// Cycles returns how many intervals have elapsed.
func (w *Watcher) Cycles() uint64 { return w.cycles.Load() }

// Failures returns how many cycles failed.
func (w *Watcher) Failures() uint64 { return w.failures.Load() }

// Run starts the watcher loop. Blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	w.log.Info("watcher started (interval=%s)", w.interval())

	for {
		timer := time.NewTimer(w.interval())
		select {
		case <-ctx.Done():
			timer.Stop()
			w.log.Info("watcher stopped")
			return
		case <-timer.C:
			w.cycle()
		}
	}
}

func (w *Watcher) interval() time.Duration {
	d := w.settings.Snapshot().PollInterval
	if d <= 0 {
		return settings.DefaultPollInterval
	}
	return d
}

// cycle runs one announcement.
func (w *Watcher) cycle() {
	w.cycles.Add(1)
	defer func() {
		if r := recover(); r != nil {
			w.failures.Add(1)
			w.log.Error("watcher: cycle panicked: %v", r)
		}
	}()

	if err := w.speaker.Say(w.message, domain.PriorityLow); err != nil {
		w.failures.Add(1)
		w.log.Error("watcher: announce: %v", err)
		return
	}
	w.log.Info("watcher: dynamic UI update announced")
}
