package settings

import (
	"sync/atomic"

	"github.com/hammamikhairi/narrator/internal/domain"
)

// Store publishes Settings snapshots to concurrent readers. Readers never
// block and never observe a partially written value.
type Store struct {
	cur atomic.Pointer[Settings]
}

// NewStore creates a store holding initial.
func NewStore(initial Settings) *Store {
	s := &Store{}
	s.cur.Store(&initial)
	return s
}

// Snapshot returns the current settings.
func (s *Store) Snapshot() Settings {
	return *s.cur.Load()
}

// UpdateLocale replaces the active locale and returns the previous one.
func (s *Store) UpdateLocale(id domain.Locale) domain.Locale {
	for {
		old := s.cur.Load()
		next := *old
		next.ActiveLocale = id
		if s.cur.CompareAndSwap(old, &next) {
			return old.ActiveLocale
		}
	}
}
