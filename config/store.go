package config

import (
	"sync"

	"sttmgr/config/models"
)

// Store holds the in-process settings snapshot. It is seeded once at
// startup and mutated only through field-level setters, so concurrent
// writes to different fields never overwrite each other.
//
// Subscribers are notified only when the active provider id changes,
// not on every mutation. Dependents re-derive their provider-scoped
// state on that signal without clobbering in-flight edits to other
// fields.
type Store struct {
	mu       sync.RWMutex
	settings models.Settings
	loaded   bool
	subs     []func(providerID string)
}

// NewStore returns an empty store. Call Load before reading.
func NewStore() *Store {
	return &Store{}
}

// Load seeds the snapshot. Repeated calls replace it wholesale and do
// not notify subscribers; it is meant for initialization only.
func (s *Store) Load(settings models.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings.Clone()
	s.settings.Normalize()
	s.loaded = true
}

// Loaded reports whether a snapshot has been seeded.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Settings returns a copy of the current snapshot.
func (s *Store) Settings() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Clone()
}

// OnProviderChange registers fn to run whenever the active provider id
// actually changes. The callback runs synchronously on the mutating
// goroutine, outside the store lock.
func (s *Store) OnProviderChange(fn func(providerID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// SetEnabled updates the enabled flag.
func (s *Store) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Enabled = enabled
}

// SetProviderID updates the active provider id and notifies subscribers
// when the value actually changed.
func (s *Store) SetProviderID(id string) {
	s.mu.Lock()
	changed := s.settings.ProviderID != id
	s.settings.ProviderID = id
	subs := s.subs
	s.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range subs {
		fn(id)
	}
}

// SetProviderBaseURL patches the base URL of the descriptor with the
// given id, leaving every other list entry untouched. Unknown ids are
// ignored.
func (s *Store) SetProviderBaseURL(id, baseURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.settings.Providers {
		if s.settings.Providers[i].ID == id {
			s.settings.Providers[i].BaseURL = baseURL
			return
		}
	}
}

// SetAPIKey patches one entry of the api_keys map.
func (s *Store) SetAPIKey(id, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings.APIKeys == nil {
		s.settings.APIKeys = make(map[string]string)
	}
	s.settings.APIKeys[id] = key
}

// SetModel patches one entry of the models map.
func (s *Store) SetModel(id, model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings.Models == nil {
		s.settings.Models = make(map[string]string)
	}
	s.settings.Models[id] = model
}
