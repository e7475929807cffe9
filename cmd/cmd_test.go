package cmd

import (
	"path/filepath"
	"strings"
	"testing"

	"sttmgr/config"
)

// setupEnv points the command layer at a scratch config dir with no
// daemon socket.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_RUNTIME_DIR", filepath.Join(dir, "run"))
	return dir
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func loadFromDisk(t *testing.T) *config.Manager {
	t.Helper()
	manager, err := config.NewManager()
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return manager
}

func TestSwitchCommand(t *testing.T) {
	setupEnv(t)

	if err := execute(t, "switch", "groq"); err != nil {
		t.Fatalf("switch: %v", err)
	}

	settings, err := loadFromDisk(t).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if settings.ProviderID != "groq" {
		t.Errorf("active provider = %q, want groq", settings.ProviderID)
	}
}

func TestSwitchUnknownProvider(t *testing.T) {
	setupEnv(t)

	err := execute(t, "switch", "nonexistent")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("err = %v, want unknown-provider error", err)
	}
}

func TestSetCommands(t *testing.T) {
	setupEnv(t)

	if err := execute(t, "switch", "custom"); err != nil {
		t.Fatalf("switch: %v", err)
	}
	if err := execute(t, "set", "url", "http://localhost:9000/v1/"); err != nil {
		t.Fatalf("set url: %v", err)
	}
	if err := execute(t, "set", "key", "sk-local-123456"); err != nil {
		t.Fatalf("set key: %v", err)
	}
	if err := execute(t, "set", "model", "faster-whisper-small"); err != nil {
		t.Fatalf("set model: %v", err)
	}

	settings, err := loadFromDisk(t).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	provider, ok := settings.ProviderByID("custom")
	if !ok {
		t.Fatal("custom provider missing")
	}
	// Trailing slash is normalized away before the write
	if provider.BaseURL != "http://localhost:9000/v1" {
		t.Errorf("base URL = %q", provider.BaseURL)
	}
	if settings.APIKeyFor("custom") != "sk-local-123456" {
		t.Errorf("API key = %q", settings.APIKeyFor("custom"))
	}
	if settings.ModelFor("custom") != "faster-whisper-small" {
		t.Errorf("model = %q", settings.ModelFor("custom"))
	}
}

func TestSetURLRejectsInvalidInput(t *testing.T) {
	setupEnv(t)

	err := execute(t, "set", "url", "not a url")
	if err == nil || !strings.Contains(err.Error(), "invalid URL") {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestSetURLRejectedOnHostedProvider(t *testing.T) {
	setupEnv(t)

	// Default provider does not accept base URL edits
	err := execute(t, "set", "url", "http://localhost:9000/v1")
	if err == nil || !strings.Contains(err.Error(), "does not allow") {
		t.Errorf("err = %v, want edit-rejected error", err)
	}
}

func TestEnableDisable(t *testing.T) {
	setupEnv(t)

	if err := execute(t, "enable"); err != nil {
		t.Fatalf("enable: %v", err)
	}
	settings, err := loadFromDisk(t).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !settings.Enabled {
		t.Error("enable did not persist")
	}

	if err := execute(t, "disable"); err != nil {
		t.Fatalf("disable: %v", err)
	}
	settings, err = loadFromDisk(t).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if settings.Enabled {
		t.Error("disable did not persist")
	}
}
