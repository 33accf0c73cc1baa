package speech

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hammamikhairi/narrator/internal/domain"
	"github.com/hammamikhairi/narrator/internal/logger"
	"github.com/hammamikhairi/narrator/internal/settings"
)

var _ domain.Announcer = (*Mouth)(nil)

// SettingsSource supplies the rate and volume applied to each request.
type SettingsSource interface {
	Snapshot() settings.Settings
}

// MouthOption configures the Mouth.
type MouthOption func(*Mouth)

// WithMaxQueue caps the number of pending requests. When the queue is full
// the oldest low-priority request is dropped; if there is none, Say fails.
func WithMaxQueue(n int) MouthOption {
	return func(m *Mouth) {
		m.maxQueue = n
	}
}

// WithEcho calls fn with every utterance as it is handed to the engine.
func WithEcho(fn func(text string)) MouthOption {
	return func(m *Mouth) {
		m.echo = fn
	}
}

// MouthStats counts what happened to submitted requests.
type MouthStats struct {
	Queued   uint64
	Spoken   uint64
	Failed   uint64
	Dropped  uint64
	Rejected uint64
	QueueLen int
}

// Mouth is the central speech dispatcher. Say captures the current rate
// and volume, queues the request and returns at once; one worker goroutine
// hands requests to the engine, highest priority first. Only one request
// reaches the engine at a time.
type Mouth struct {
	engine   Engine
	settings SettingsSource
	log      *logger.Logger
	echo     func(string)
	maxQueue int

	mu     sync.Mutex
	queue  []Request
	notify chan struct{}
	closed bool

	// engineMu makes "apply parameters and submit" one step and keeps
	// Close from releasing the engine under an in-flight Submit.
	engineMu sync.Mutex

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once

	queued, spoken, failed, dropped, rejected atomic.Uint64
}

// NewMouth creates a speech dispatcher for engine.
func NewMouth(engine Engine, src SettingsSource, log *logger.Logger, opts ...MouthOption) *Mouth {
	m := &Mouth{
		engine:   engine,
		settings: src,
		log:      log,
		maxQueue: 64,
		notify:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Speak queues text at normal priority.
func (m *Mouth) Speak(text string) error {
	return m.Say(text, PriorityNormal)
}

// Say queues text to be spoken at the given priority. Non-blocking.
// When something at PriorityNormal or above is queued, any stale
// PriorityLow items are flushed; they're no longer relevant.
func (m *Mouth) Say(text string, priority Priority) error {
	if strings.TrimSpace(text) == "" {
		m.rejected.Add(1)
		m.log.Warn("mouth: refusing empty utterance")
		return domain.ErrEmptyText
	}

	snap := m.settings.Snapshot()
	req := Request{
		Text:     text,
		Rate:     EngineRate(snap.SpeechRate),
		Volume:   EngineVolume(snap.Volume),
		Priority: priority,
		QueuedAt: time.Now(),
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		m.rejected.Add(1)
		return fmt.Errorf("mouth: %w", domain.ErrClosed)
	}
	if priority >= PriorityNormal {
		m.flushLowLocked()
	}
	if m.maxQueue > 0 && len(m.queue) >= m.maxQueue && !m.dropOldestLowLocked() {
		m.mu.Unlock()
		m.rejected.Add(1)
		m.log.Warn("mouth: queue full, dropping %q", truncate(text, 40))
		return domain.ErrQueueFull
	}
	m.queue = append(m.queue, req)
	qLen := len(m.queue)
	m.mu.Unlock()

	m.queued.Add(1)
	m.log.Debug("mouth: queued (priority=%s, rate=%d, volume=%d, queue_len=%d): %s",
		priority, req.Rate, req.Volume, qLen, truncate(text, 60))

	// Signal the processing goroutine.
	select {
	case m.notify <- struct{}{}:
	default: // already signaled
	}
	return nil
}

// flushLowLocked removes all PriorityLow items from the queue.
// Must be called with m.mu held.
func (m *Mouth) flushLowLocked() {
	n := 0
	for _, item := range m.queue {
		if item.Priority > PriorityLow {
			m.queue[n] = item
			n++
		}
	}
	dropped := len(m.queue) - n
	m.queue = m.queue[:n]
	if dropped > 0 {
		m.dropped.Add(uint64(dropped))
		m.log.Debug("mouth: flushed %d low-priority items", dropped)
	}
}

// dropOldestLowLocked removes the oldest PriorityLow item. Must be called
// with m.mu held.
func (m *Mouth) dropOldestLowLocked() bool {
	for i, item := range m.queue {
		if item.Priority == PriorityLow {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			m.dropped.Add(1)
			return true
		}
	}
	return false
}

// QueueLen returns the number of pending speech requests.
func (m *Mouth) QueueLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Stats returns request counters.
func (m *Mouth) Stats() MouthStats {
	return MouthStats{
		Queued:   m.queued.Load(),
		Spoken:   m.spoken.Load(),
		Failed:   m.failed.Load(),
		Dropped:  m.dropped.Load(),
		Rejected: m.rejected.Load(),
		QueueLen: m.QueueLen(),
	}
}

// Start begins the speech processing goroutine. Non-blocking. The worker
// runs until Close, independent of ctx cancellation, so shutdown messages
// can still be spoken.
func (m *Mouth) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	m.cancel = cancel
	m.done = make(chan struct{})
	go m.processLoop(ctx)
	m.log.Info("mouth started (engine=%s)", m.engine.Name())
}

// processLoop waits for queued items and processes them one at a time.
func (m *Mouth) processLoop(ctx context.Context) {
	defer close(m.done)
	for {
		select {
		case <-ctx.Done():
			m.log.Info("mouth stopped")
			return
		case <-m.notify:
			m.drain(ctx)
		}
	}
}

// drain processes all queued items, highest priority first.
func (m *Mouth) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		item, ok := m.dequeue()
		if !ok {
			return
		}

		m.process(ctx, item)
	}
}

// dequeue removes and returns the highest priority item from the queue.
func (m *Mouth) dequeue() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.queue) == 0 {
		return Request{}, false
	}

	bestIdx := 0
	for i, item := range m.queue {
		if item.Priority > m.queue[bestIdx].Priority {
			bestIdx = i
		}
	}

	item := m.queue[bestIdx]
	m.queue = append(m.queue[:bestIdx], m.queue[bestIdx+1:]...)
	return item, true
}

// process hands one request to the engine. Engine failures and panics are
// logged and the worker carries on.
func (m *Mouth) process(ctx context.Context, req Request) {
	waitTime := time.Since(req.QueuedAt).Round(time.Millisecond)
	m.log.Debug("mouth: speaking (priority=%s, waited=%s): %s", req.Priority, waitTime, truncate(req.Text, 60))

	if m.echo != nil {
		m.echo(req.Text)
	}

	if err := m.submit(ctx, req); err != nil {
		m.failed.Add(1)
		m.log.Error("mouth: %s engine failed on %q: %v", m.engine.Name(), truncate(req.Text, 40), err)
		return
	}
	m.spoken.Add(1)
}

func (m *Mouth) submit(ctx context.Context, req Request) (err error) {
	m.engineMu.Lock()
	defer m.engineMu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("engine panic: %v", r)
		}
	}()
	return m.engine.Submit(ctx, req)
}

// Close stops accepting requests, discards the queue, waits for the worker
// and releases the engine. Safe to call more than once.
func (m *Mouth) Close() error {
	var err error
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		pending := len(m.queue)
		m.queue = nil
		m.mu.Unlock()

		if m.cancel != nil {
			m.cancel()
			<-m.done
		}

		m.engineMu.Lock()
		err = m.engine.Close()
		m.engineMu.Unlock()

		if pending > 0 {
			m.dropped.Add(uint64(pending))
		}
		m.log.Debug("mouth: closed (%d pending discarded)", pending)
	})
	return err
}

// truncate shortens a string for logging.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
