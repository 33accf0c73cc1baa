// Package speech turns phrases into audio. Mouth queues and arbitrates
// requests; an Engine (SAPI, espeak-ng, Azure or a logging no-op) voices
// them one at a time.
package speech

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/hammamikhairi/narrator/internal/domain"
	"github.com/hammamikhairi/narrator/internal/logger"
)

// Engine is a speech synthesizer. Submit speaks one request with the rate
// and volume it carries; it may return before the audio finishes.
// Calls are serialized by the Mouth.
type Engine interface {
	Name() string
	Submit(ctx context.Context, req Request) error
	Close() error
}

// Prefetcher is implemented by engines that can synthesize ahead of time.
type Prefetcher interface {
	Prefetch(ctx context.Context, rate int, texts ...string)
}

// EngineKind selects an Engine implementation.
type EngineKind string

const (
	EngineAuto   EngineKind = "auto"
	EngineSAPI   EngineKind = "sapi"
	EngineEspeak EngineKind = "espeak"
	EngineAzure  EngineKind = "azure"
	EngineNone   EngineKind = "none"
)

// EngineConfig carries everything NewEngine may need.
type EngineConfig struct {
	Kind         EngineKind
	Voice        string
	EspeakBinary string
	AzureKey     string
	AzureRegion  string
	CacheDir     string
}

// NewEngine builds the engine named by cfg.Kind. EngineAuto picks SAPI on
// Windows, then Azure when credentials are set, then espeak-ng when it is
// on PATH, and falls back to the logging engine when none is usable.
func NewEngine(cfg EngineConfig, log *logger.Logger) (Engine, error) {
	kind := cfg.Kind
	if kind == "" || kind == EngineAuto {
		kind = autoKind(cfg)
		if kind == EngineNone {
			log.Warn("speech: no usable engine found, phrases will only be logged")
		}
		log.Info("speech: auto-selected %s engine", kind)
	}

	switch kind {
	case EngineSAPI:
		e, err := NewSAPIEngine(cfg.Voice, log)
		if err != nil {
			return nil, err
		}
		return e, nil
	case EngineEspeak:
		player, err := NewPlayer(log)
		if err != nil {
			return nil, fmt.Errorf("audio output: %w", err)
		}
		e, err := NewEspeakEngine(cfg.EspeakBinary, cfg.Voice, player, log)
		if err != nil {
			player.Stop()
			return nil, err
		}
		return e, nil
	case EngineAzure:
		if cfg.AzureKey == "" || cfg.AzureRegion == "" {
			return nil, fmt.Errorf("azure: set %s and %s: %w",
				EnvAzureSpeechKey, EnvAzureSpeechRegion, domain.ErrEngineUnavailable)
		}
		player, err := NewPlayer(log)
		if err != nil {
			return nil, fmt.Errorf("audio output: %w", err)
		}
		var opts []AzureOption
		if cfg.Voice != "" {
			opts = append(opts, WithVoice(cfg.Voice))
		}
		client := NewAzureClient(cfg.AzureKey, cfg.AzureRegion, log, opts...)
		cache, err := NewAudioCache(client.Voice(), cfg.CacheDir, log)
		if err != nil {
			player.Stop()
			return nil, err
		}
		return NewAzureEngine(client, player, cache, log), nil
	case EngineNone:
		return NewNoOp(log), nil
	default:
		return nil, fmt.Errorf("unknown speech engine %q", kind)
	}
}

func autoKind(cfg EngineConfig) EngineKind {
	if runtime.GOOS == "windows" {
		return EngineSAPI
	}
	if cfg.AzureKey != "" && cfg.AzureRegion != "" {
		return EngineAzure
	}
	bin := cfg.EspeakBinary
	if bin == "" {
		bin = DefaultEspeakBinary
	}
	if _, err := exec.LookPath(bin); err == nil {
		return EngineEspeak
	}
	return EngineNone
}
