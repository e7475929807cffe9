package models

// DefaultModel is used when no model has been stored for a provider.
const DefaultModel = "whisper-1"

// Provider describes a single STT API provider entry.
type Provider struct {
	ID               string `json:"id"`
	Label            string `json:"label"`
	BaseURL          string `json:"base_url"`
	AllowBaseURLEdit bool   `json:"allow_base_url_edit"`
}

// Settings is the persisted STT API settings snapshot.
type Settings struct {
	Enabled    bool              `json:"enabled"`
	ProviderID string            `json:"provider_id"`
	Providers  []Provider        `json:"providers"`
	APIKeys    map[string]string `json:"api_keys"`
	Models     map[string]string `json:"models"`
}

// ProviderByID returns the descriptor for the given provider id.
func (s Settings) ProviderByID(id string) (Provider, bool) {
	for _, p := range s.Providers {
		if p.ID == id {
			return p, true
		}
	}
	return Provider{}, false
}

// ActiveProvider returns the descriptor the snapshot currently points at.
func (s Settings) ActiveProvider() (Provider, bool) {
	return s.ProviderByID(s.ProviderID)
}

// APIKeyFor returns the stored API key for a provider, or "" when unset.
func (s Settings) APIKeyFor(id string) string {
	return s.APIKeys[id]
}

// ModelFor returns the stored model for a provider, falling back to
// DefaultModel when unset.
func (s Settings) ModelFor(id string) string {
	if m, ok := s.Models[id]; ok && m != "" {
		return m
	}
	return DefaultModel
}

// Clone returns a deep copy so callers can hand snapshots out without
// sharing the backing slice and maps.
func (s Settings) Clone() Settings {
	out := Settings{
		Enabled:    s.Enabled,
		ProviderID: s.ProviderID,
		Providers:  make([]Provider, len(s.Providers)),
		APIKeys:    make(map[string]string, len(s.APIKeys)),
		Models:     make(map[string]string, len(s.Models)),
	}
	copy(out.Providers, s.Providers)
	for k, v := range s.APIKeys {
		out.APIKeys[k] = v
	}
	for k, v := range s.Models {
		out.Models[k] = v
	}
	return out
}

// Normalize ensures the maps are non-nil after JSON decoding.
func (s *Settings) Normalize() {
	if s.APIKeys == nil {
		s.APIKeys = make(map[string]string)
	}
	if s.Models == nil {
		s.Models = make(map[string]string)
	}
}
