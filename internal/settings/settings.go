// Package settings loads the reader's configuration file and holds the
// live settings shared by the key pipeline and the background notifier.
package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/hammamikhairi/narrator/internal/domain"
	"github.com/hammamikhairi/narrator/internal/logger"
)

// Defaults applied to every field the file does not provide.
const (
	DefaultSpeechRate   = 1.0
	DefaultVolume       = 1.0
	DefaultPollInterval = 5000 * time.Millisecond
)

// Field names in the JSON configuration file.
const (
	KeySpeechRate   = "speechRate"
	KeyVolume       = "volume"
	KeyPollInterval = "pollInterval"
)

// Settings is an immutable snapshot of the reader's configuration plus the
// input locale last observed.
type Settings struct {
	SpeechRate   float64
	Volume       float64
	PollInterval time.Duration
	ActiveLocale domain.Locale
}

// Default returns the settings used when no configuration file exists.
func Default() Settings {
	return Settings{
		SpeechRate:   DefaultSpeechRate,
		Volume:       DefaultVolume,
		PollInterval: DefaultPollInterval,
	}
}

// Load reads the JSON file at path. A missing or unparsable file yields
// defaults, and each field missing or of the wrong type falls back to its
// own default. Only an I/O failure other than "not found" is returned.
func Load(path string, log *logger.Logger) (Settings, error) {
	cfg := Default()
	if path == "" {
		log.Info("settings: no config file given, using defaults")
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Info("settings: %s not found, using defaults", path)
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	v := viper.New()
	v.SetConfigType("json")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		log.Warn("settings: %s is not valid JSON, using defaults: %v", path, err)
		return cfg, nil
	}

	present := exactKeys(data)
	field := func(key string) (float64, bool) {
		if !present[key] {
			return 0, false
		}
		return number(v, key, log)
	}

	if rate, ok := field(KeySpeechRate); ok {
		cfg.SpeechRate = rate
	}
	if vol, ok := field(KeyVolume); ok {
		cfg.Volume = min(max(vol, 0), 1)
	}
	if ms, ok := field(KeyPollInterval); ok {
		if ms >= 1 {
			cfg.PollInterval = time.Duration(ms * float64(time.Millisecond))
		} else {
			log.Warn("settings: %s must be at least 1ms, got %v; using default", KeyPollInterval, ms)
		}
	}

	log.Info("settings: loaded %s (rate=%.2f, volume=%.2f, poll=%s)",
		path, cfg.SpeechRate, cfg.Volume, cfg.PollInterval)
	return cfg, nil
}

// exactKeys lists the top-level keys of a JSON object with their original
// spelling. Viper folds key case; the file format does not.
func exactKeys(data []byte) map[string]bool {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	keys := make(map[string]bool, len(raw))
	for k := range raw {
		keys[k] = true
	}
	return keys
}

// number returns the numeric value stored under key. Values that are absent
// or not JSON numbers report false so the caller keeps its default.
func number(v *viper.Viper, key string, log *logger.Logger) (float64, bool) {
	if !v.IsSet(key) {
		return 0, false
	}
	var f float64
	switch n := v.Get(key).(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	default:
		log.Warn("settings: %s is not a number (%T), using default", key, n)
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
