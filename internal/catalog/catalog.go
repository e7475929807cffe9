// Package catalog holds the static set of STT API providers sttmgr knows
// how to talk to.
package catalog

import "sttmgr/config/models"

// CustomProviderID is the reserved id for the self-hosted entry. It is
// the only provider whose base URL may be edited.
const CustomProviderID = "custom"

// Option is an id/label pair for building selection menus.
type Option struct {
	ID    string
	Label string
}

// builtin is ordered; the first entry is the default active provider.
var builtin = []models.Provider{
	{ID: "openai", Label: "OpenAI", BaseURL: "https://api.openai.com/v1"},
	{ID: "groq", Label: "Groq", BaseURL: "https://api.groq.com/openai/v1"},
	{ID: "deepgram", Label: "Deepgram", BaseURL: "https://api.deepgram.com/v1"},
	{ID: CustomProviderID, Label: "Custom", BaseURL: "http://localhost:8000/v1", AllowBaseURLEdit: true},
}

// Describe returns the descriptor for the given provider id. Callers that
// get ok=false should leave their current selection unchanged.
func Describe(id string) (models.Provider, bool) {
	for _, p := range builtin {
		if p.ID == id {
			return p, true
		}
	}
	return models.Provider{}, false
}

// Defaults returns a fresh copy of the ordered builtin descriptors, used
// to seed a settings file on first run.
func Defaults() []models.Provider {
	out := make([]models.Provider, len(builtin))
	copy(out, builtin)
	return out
}

// DefaultProviderID returns the id new installations start on.
func DefaultProviderID() string {
	return builtin[0].ID
}

// Options returns id/label pairs over the full catalog.
func Options() []Option {
	out := make([]Option, len(builtin))
	for i, p := range builtin {
		out[i] = Option{ID: p.ID, Label: p.Label}
	}
	return out
}
