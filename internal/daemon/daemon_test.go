package daemon

import (
	"encoding/json"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"sttmgr/config"
	"sttmgr/config/models"
)

func newTestDaemon(t *testing.T) *Daemon {
	t.Helper()
	dir := t.TempDir()
	manager, err := config.NewManagerAt(filepath.Join(dir, "settings.json"))
	if err != nil {
		t.Fatalf("NewManagerAt: %v", err)
	}
	d := New(manager, filepath.Join(dir, "run"))
	if err := d.reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	return d
}

func getSettings(t *testing.T, d *Daemon) models.Settings {
	t.Helper()
	resp := d.processCommand("GET")
	var settings models.Settings
	if err := json.Unmarshal([]byte(resp), &settings); err != nil {
		t.Fatalf("GET returned unparseable payload %q: %v", resp, err)
	}
	return settings
}

func TestProcessCommandBasics(t *testing.T) {
	d := newTestDaemon(t)

	tests := []struct {
		command string
		want    string
	}{
		{"PING", "PONG"},
		{"RELOAD", "OK"},
		{"", "ERROR: empty command"},
		{"BOGUS", "ERROR: unknown command: BOGUS"},
		{"SET_ENABLED", "ERROR: SET_ENABLED requires one argument"},
		{"SET_ENABLED maybe", "ERROR: invalid boolean: maybe"},
		{"SET_MODEL onlyone", "ERROR: expected 2 arguments, got 1"},
	}
	for _, tt := range tests {
		if got := d.processCommand(tt.command); got != tt.want {
			t.Errorf("processCommand(%q) = %q, want %q", tt.command, got, tt.want)
		}
	}

	if _, err := strconv.ParseInt(d.processCommand("VERSION"), 10, 64); err != nil {
		t.Errorf("VERSION did not return an integer: %v", err)
	}
}

func TestGetReturnsSeededDefaults(t *testing.T) {
	d := newTestDaemon(t)

	settings := getSettings(t, d)
	if settings.ProviderID == "" {
		t.Error("GET payload has no active provider")
	}
	if len(settings.Providers) == 0 {
		t.Error("GET payload has no provider catalog")
	}
}

func TestMutationsRoundTrip(t *testing.T) {
	d := newTestDaemon(t)

	steps := []string{
		"SET_ENABLED true",
		"SET_PROVIDER custom",
		"SET_BASE_URL custom " + url.QueryEscape("http://localhost:9000/v1"),
		"SET_API_KEY custom " + url.QueryEscape("sk-with spaces&stuff"),
		"SET_MODEL custom faster-whisper-small",
	}
	for _, command := range steps {
		if got := d.processCommand(command); got != "OK" {
			t.Fatalf("processCommand(%q) = %q, want OK", command, got)
		}
	}

	settings := getSettings(t, d)
	if !settings.Enabled {
		t.Error("enabled flag not persisted")
	}
	if settings.ProviderID != "custom" {
		t.Errorf("provider = %q, want custom", settings.ProviderID)
	}
	provider, ok := settings.ProviderByID("custom")
	if !ok || provider.BaseURL != "http://localhost:9000/v1" {
		t.Errorf("base URL = %q, want patched value", provider.BaseURL)
	}
	if got := settings.APIKeyFor("custom"); got != "sk-with spaces&stuff" {
		t.Errorf("API key = %q, escaping was not undone", got)
	}
	if got := settings.ModelFor("custom"); got != "faster-whisper-small" {
		t.Errorf("model = %q", got)
	}
}

func TestMutationValidationErrors(t *testing.T) {
	d := newTestDaemon(t)

	if got := d.processCommand("SET_PROVIDER nonexistent"); !strings.Contains(got, "not found") {
		t.Errorf("unknown provider response = %q", got)
	}
	if got := d.processCommand("SET_BASE_URL openai " + url.QueryEscape("http://x")); !strings.Contains(got, "does not allow") {
		t.Errorf("non-editable base URL response = %q", got)
	}
	if got := getSettings(t, d).ProviderID; got == "nonexistent" {
		t.Error("rejected write reached the snapshot")
	}
}

func TestReloadPicksUpExternalWrites(t *testing.T) {
	d := newTestDaemon(t)

	// Write through a second manager, as another process would.
	other, err := config.NewManagerAt(d.manager.SettingsPath())
	if err != nil {
		t.Fatalf("NewManagerAt: %v", err)
	}
	if err := other.SetModel("openai", "whisper-large-v3"); err != nil {
		t.Fatalf("SetModel: %v", err)
	}

	if got := d.processCommand("RELOAD"); got != "OK" {
		t.Fatalf("RELOAD = %q", got)
	}
	if got := getSettings(t, d).ModelFor("openai"); got != "whisper-large-v3" {
		t.Errorf("model after reload = %q, want external write", got)
	}
}
