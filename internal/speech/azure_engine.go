package speech

import (
	"context"
	"errors"
	"sync"

	"github.com/hammamikhairi/narrator/internal/logger"
)

var (
	_ Engine     = (*AzureEngine)(nil)
	_ Prefetcher = (*AzureEngine)(nil)
)

// AzureEngine speaks through Azure neural TTS, caching every clip it
// synthesizes.
type AzureEngine struct {
	client *AzureClient
	player *Player
	cache  *AudioCache
	log    *logger.Logger

	// closing is cancelled by Close; prefetches in flight stop with it.
	closing context.Context
	stop    context.CancelFunc

	mu       sync.Mutex
	closed   bool
	prefetch sync.WaitGroup
}

// NewAzureEngine assembles an engine from its parts.
func NewAzureEngine(client *AzureClient, player *Player, cache *AudioCache, log *logger.Logger) *AzureEngine {
	closing, stop := context.WithCancel(context.Background())
	return &AzureEngine{
		client:  client,
		player:  player,
		cache:   cache,
		log:     log,
		closing: closing,
		stop:    stop,
	}
}

func (e *AzureEngine) Name() string { return string(EngineAzure) }

// Submit synthesizes (or fetches from cache) and plays req.
func (e *AzureEngine) Submit(ctx context.Context, req Request) error {
	audio, err := e.synthesize(ctx, req.Rate, req.Text)
	if err != nil {
		return err
	}
	return e.player.Play(ctx, audio, float64(req.Volume)/MaxEngineVolume)
}

func (e *AzureEngine) synthesize(ctx context.Context, rate int, text string) ([]byte, error) {
	if audio, ok := e.cache.Get(rate, text); ok {
		return audio, nil
	}
	audio, err := e.client.Synthesize(ctx, text, rate)
	if err != nil {
		return nil, err
	}
	e.cache.Put(rate, text, audio)
	return audio, nil
}

// Prefetch pre-synthesizes the given texts in background goroutines and
// stores the results in the audio cache. It skips texts that are already
// cached. Non-blocking. Close cancels and waits for outstanding fetches.
func (e *AzureEngine) Prefetch(ctx context.Context, rate int, texts ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}

	for _, text := range texts {
		if text == "" || e.cache.Has(rate, text) {
			continue
		}
		e.prefetch.Add(1)
		go func(t string) {
			defer e.prefetch.Done()
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			defer context.AfterFunc(e.closing, cancel)()

			audio, err := e.client.Synthesize(ctx, t, rate)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					e.log.Error("prefetch: synthesis failed: %v", err)
				}
				return
			}
			e.cache.Put(rate, t, audio)
			e.log.Debug("prefetch: cached %d bytes for: %s", len(audio), truncate(t, 50))
		}(text)
	}
}

// Close stops playback, waits for prefetches and releases the cache.
func (e *AzureEngine) Close() error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	e.stop()
	e.prefetch.Wait()
	e.player.Stop()
	hits, misses := e.cache.Stats()
	e.log.Debug("azure: cache hits=%d misses=%d entries=%d", hits, misses, e.cache.Len())
	return e.cache.Close()
}
