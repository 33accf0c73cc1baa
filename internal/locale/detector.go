// Package locale notices keyboard input-language switches and announces
// them once per change.
package locale

import (
	"fmt"

	"github.com/hammamikhairi/narrator/internal/domain"
	"github.com/hammamikhairi/narrator/internal/logger"
	"github.com/hammamikhairi/narrator/internal/settings"
	"github.com/hammamikhairi/narrator/internal/speech"
)

// Detector compares the foreground input locale with the one last recorded
// in the settings store.
type Detector struct {
	source  domain.LocaleSource
	store   *settings.Store
	speaker domain.Announcer
	log     *logger.Logger
}

// NewDetector creates a detector.
func NewDetector(source domain.LocaleSource, store *settings.Store, speaker domain.Announcer, log *logger.Logger) *Detector {
	return &Detector{source: source, store: store, speaker: speaker, log: log}
}

// CheckAndNotify records and announces a locale change. Repeated calls
// with no change in between do nothing.
func (d *Detector) CheckAndNotify() error {
	cur, err := d.source.Current()
	if err != nil {
		return fmt.Errorf("querying input locale: %w", err)
	}
	if cur == d.store.Snapshot().ActiveLocale {
		return nil
	}

	prev := d.store.UpdateLocale(cur)
	if prev == cur {
		// Another caller recorded the same change first.
		return nil
	}

	err = d.speaker.Say(speech.LineLocaleChanged(), domain.PriorityHigh)
	d.log.Info("input language changed: %s -> %s", DisplayName(prev), DisplayName(cur))
	return err
}
