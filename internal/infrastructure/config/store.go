package config

import (
	"sync"
	"sync/atomic"

	"github.com/doeshing/sns-guardian/internal/domain"
	"github.com/doeshing/sns-guardian/internal/ports"
)

// revisionHistory is how many past settings revisions stay resolvable for in-flight runs.
const revisionHistory = 32

// Store holds the current configuration. Replace swaps it wholesale; readers always see
// a complete value and a run's snapshot never changes underneath it.
type Store struct {
	current atomic.Pointer[domain.Config]

	mu       sync.Mutex
	revision uint64
	history  map[uint64]domain.Settings
}

// NewStore seeds the store with cfg.
func NewStore(cfg domain.Config) *Store {
	s := &Store{history: make(map[uint64]domain.Settings, revisionHistory)}
	s.Replace(cfg)
	return s
}

// Replace installs cfg as the current configuration under a new settings revision.
func (s *Store) Replace(cfg domain.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.revision++
	cfg.Settings.Revision = s.revision
	s.history[s.revision] = cfg.Settings
	if s.revision > revisionHistory {
		delete(s.history, s.revision-revisionHistory)
	}
	s.current.Store(&cfg)
}

// Config returns the current configuration.
func (s *Store) Config() domain.Config {
	return *s.current.Load()
}

// Settings implements ports.SettingsSource.
func (s *Store) Settings() domain.Settings {
	return s.current.Load().Settings
}

// SettingsAt returns the settings installed under revision, if still retained.
func (s *Store) SettingsAt(revision uint64) (domain.Settings, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings, ok := s.history[revision]
	return settings, ok
}

var _ ports.SettingsSource = (*Store)(nil)
