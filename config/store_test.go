package config

import (
	"testing"

	"sttmgr/config/models"
	"sttmgr/internal/catalog"
)

func seededStore() *Store {
	s := NewStore()
	s.Load(models.Settings{
		Enabled:    false,
		ProviderID: "openai",
		Providers:  catalog.Defaults(),
		APIKeys:    map[string]string{},
		Models:     map[string]string{},
	})
	return s
}

func TestStoreSettingsReturnsCopy(t *testing.T) {
	s := seededStore()

	snap := s.Settings()
	snap.Providers[0].BaseURL = "mutated"
	snap.APIKeys["openai"] = "mutated"

	fresh := s.Settings()
	if fresh.Providers[0].BaseURL == "mutated" {
		t.Error("Settings() shares provider slice with callers")
	}
	if fresh.APIKeys["openai"] == "mutated" {
		t.Error("Settings() shares api key map with callers")
	}
}

func TestOnProviderChangeFiresOnlyOnChange(t *testing.T) {
	s := seededStore()

	var calls []string
	s.OnProviderChange(func(id string) { calls = append(calls, id) })

	s.SetProviderID("openai") // same value, no notification
	s.SetProviderID("groq")
	s.SetProviderID("groq") // repeated, no notification
	s.SetProviderID("custom")

	want := []string{"groq", "custom"}
	if len(calls) != len(want) {
		t.Fatalf("got %d notifications %v, want %v", len(calls), calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("notification %d = %q, want %q", i, calls[i], want[i])
		}
	}
}

func TestUnrelatedMutationsDoNotNotify(t *testing.T) {
	s := seededStore()

	notified := false
	s.OnProviderChange(func(string) { notified = true })

	s.SetEnabled(true)
	s.SetProviderBaseURL("custom", "http://localhost:9000/v1")
	s.SetAPIKey("openai", "sk-1")
	s.SetModel("openai", "whisper-1")

	if notified {
		t.Error("field patch triggered a provider-change notification")
	}
}

func TestSetProviderBaseURLPatchesSingleElement(t *testing.T) {
	s := seededStore()
	before := s.Settings()

	s.SetProviderBaseURL("custom", "http://localhost:9000/v1")

	after := s.Settings()
	for i, p := range after.Providers {
		if p.ID == "custom" {
			if p.BaseURL != "http://localhost:9000/v1" {
				t.Errorf("custom BaseURL = %q, want patched value", p.BaseURL)
			}
			continue
		}
		if p != before.Providers[i] {
			t.Errorf("provider %q changed: %+v", p.ID, p)
		}
	}

	// Unknown ids are ignored
	s.SetProviderBaseURL("nope", "http://x")
	if len(s.Settings().Providers) != len(before.Providers) {
		t.Error("unknown id grew the provider list")
	}
}

func TestStoreMapPatches(t *testing.T) {
	s := seededStore()

	s.SetAPIKey("groq", "gsk-1")
	s.SetModel("groq", "whisper-large-v3")

	snap := s.Settings()
	if snap.APIKeyFor("groq") != "gsk-1" {
		t.Errorf("APIKeyFor(groq) = %q", snap.APIKeyFor("groq"))
	}
	if snap.ModelFor("groq") != "whisper-large-v3" {
		t.Errorf("ModelFor(groq) = %q", snap.ModelFor("groq"))
	}
	if snap.APIKeyFor("openai") != "" {
		t.Errorf("APIKeyFor(openai) = %q, want empty default", snap.APIKeyFor("openai"))
	}
}
