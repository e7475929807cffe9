package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"sttmgr/config/models"
	"sttmgr/config/storage"
	"sttmgr/internal/catalog"
	"sttmgr/internal/crypto"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// sttPath is the JSON key the STT settings live under in the file.
const sttPath = "stt_api"

// Manager persists STT settings to the settings file. Every mutation is
// a surgical field patch (one list element or one map key) applied with
// sjson and written atomically, so concurrent writers on different
// fields cannot lose each other's updates.
type Manager struct {
	settingsPath string
	keys         *crypto.KeyManager
	mu           sync.Mutex
}

// NewManager creates a Manager over the default settings location
// ($XDG_CONFIG_HOME/sttmgr/settings.json).
func NewManager() (*Manager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfigHome == "" {
		xdgConfigHome = filepath.Join(homeDir, ".config")
	}

	settingsPath := filepath.Join(xdgConfigHome, "sttmgr", "settings.json")
	if err := os.MkdirAll(filepath.Dir(settingsPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	return NewManagerAt(settingsPath)
}

// NewManagerAt creates a Manager over an explicit settings path.
func NewManagerAt(settingsPath string) (*Manager, error) {
	keys, err := crypto.NewKeyManager()
	if err != nil {
		return nil, err
	}
	return &Manager{settingsPath: settingsPath, keys: keys}, nil
}

// SettingsPath returns the path to the settings file.
func (m *Manager) SettingsPath() string {
	return m.settingsPath
}

// Load reads the settings snapshot, seeding the file with catalog
// defaults on first run. Stored API keys are decrypted on the way out.
func (m *Manager) Load() (models.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	raw, err := m.readRaw()
	if err != nil {
		return models.Settings{}, err
	}

	var settings models.Settings
	if err := json.Unmarshal([]byte(gjson.Get(raw, sttPath).Raw), &settings); err != nil {
		return models.Settings{}, fmt.Errorf("failed to parse settings file: %w", err)
	}
	settings.Normalize()

	// Repair an active id that no longer references a known descriptor
	if _, ok := settings.ActiveProvider(); !ok && len(settings.Providers) > 0 {
		settings.ProviderID = settings.Providers[0].ID
	}

	for id, key := range settings.APIKeys {
		plain, err := m.keys.MaybeDecrypt(key)
		if err != nil {
			return models.Settings{}, fmt.Errorf("failed to decrypt API key for %q: %w", id, err)
		}
		settings.APIKeys[id] = plain
	}

	return settings, nil
}

// SetEnabled patches the enabled flag.
func (m *Manager) SetEnabled(enabled bool) error {
	return m.patch(func(raw string) (string, error) {
		return sjson.Set(raw, sttPath+".enabled", enabled)
	})
}

// SetProviderID patches the active provider id. The id must reference a
// descriptor present in the file.
func (m *Manager) SetProviderID(id string) error {
	return m.patch(func(raw string) (string, error) {
		if _, err := providerIndex(raw, id); err != nil {
			return "", err
		}
		return sjson.Set(raw, sttPath+".provider_id", id)
	})
}

// SetProviderBaseURL patches the base URL of one provider list element,
// leaving the other entries byte-for-byte untouched.
func (m *Manager) SetProviderBaseURL(id, baseURL string) error {
	return m.patch(func(raw string) (string, error) {
		idx, err := providerIndex(raw, id)
		if err != nil {
			return "", err
		}
		return sjson.Set(raw, fmt.Sprintf("%s.providers.%d.base_url", sttPath, idx), baseURL)
	})
}

// SetAPIKey patches one api_keys map entry, encrypting the value first.
func (m *Manager) SetAPIKey(id, key string) error {
	stored, err := m.keys.Encrypt(key)
	if err != nil {
		return fmt.Errorf("failed to encrypt API key: %w", err)
	}
	return m.patch(func(raw string) (string, error) {
		if _, err := providerIndex(raw, id); err != nil {
			return "", err
		}
		return sjson.Set(raw, sttPath+".api_keys."+id, stored)
	})
}

// SetModel patches one models map entry.
func (m *Manager) SetModel(id, model string) error {
	return m.patch(func(raw string) (string, error) {
		if _, err := providerIndex(raw, id); err != nil {
			return "", err
		}
		return sjson.Set(raw, sttPath+".models."+id, model)
	})
}

// patch loads the raw file, applies fn and writes the result back
// atomically. The manager mutex serializes writers within the process
// and the exclusive file lock serializes them across processes, so a
// concurrent writer cannot slip between the read and the write.
func (m *Manager) patch(fn func(raw string) (string, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	unlock, err := m.lockExclusive()
	if err != nil {
		return err
	}
	defer unlock()

	raw, err := m.readRaw()
	if err != nil {
		return err
	}

	updated, err := fn(raw)
	if err != nil {
		return err
	}

	if err := storage.AtomicFileUpdate(m.settingsPath, updated, true); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// lockExclusive takes the cross-process writer lock. The lock lives on
// a sidecar file because every write replaces the settings file by
// rename, which would strand a lock held on the old inode.
func (m *Manager) lockExclusive() (func(), error) {
	file, err := os.OpenFile(m.settingsPath+".lock", os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings lock file: %w", err)
	}
	if err := lockFileExclusive(file); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to lock settings file: %w", err)
	}
	return func() {
		unlockFile(file)
		file.Close()
	}, nil
}

// readRaw returns the raw settings file content with a shared lock
// held during the read, seeding defaults when the file is missing,
// empty, or lacks the stt_api object.
func (m *Manager) readRaw() (string, error) {
	file, err := os.OpenFile(m.settingsPath, os.O_RDONLY, 0600)
	if err != nil {
		if os.IsNotExist(err) {
			return m.seed("")
		}
		return "", fmt.Errorf("failed to open settings file: %w", err)
	}
	defer file.Close()

	if err := lockFileShared(file); err != nil {
		return "", fmt.Errorf("failed to lock settings file: %w", err)
	}
	defer unlockFile(file)

	data, err := os.ReadFile(m.settingsPath)
	if err != nil {
		return "", fmt.Errorf("failed to read settings file: %w", err)
	}

	raw := string(data)
	if len(data) == 0 || !gjson.Get(raw, sttPath).Exists() {
		return m.seed(raw)
	}
	if !gjson.Valid(raw) {
		return "", fmt.Errorf("settings file is not valid JSON: %s", m.settingsPath)
	}

	return raw, nil
}

// seed merges the default STT settings block into raw (which may be
// empty or hold unrelated settings) and persists the result.
func (m *Manager) seed(raw string) (string, error) {
	if raw == "" {
		raw = "{}"
	}

	defaults := models.Settings{
		Enabled:    false,
		ProviderID: catalog.DefaultProviderID(),
		Providers:  catalog.Defaults(),
		APIKeys:    map[string]string{},
		Models:     map[string]string{},
	}

	block, err := json.Marshal(defaults)
	if err != nil {
		return "", fmt.Errorf("failed to serialize default settings: %w", err)
	}

	seeded, err := sjson.SetRaw(raw, sttPath, string(block))
	if err != nil {
		return "", fmt.Errorf("failed to seed default settings: %w", err)
	}

	if err := storage.AtomicFileUpdate(m.settingsPath, seeded, false); err != nil {
		return "", fmt.Errorf("failed to write settings file: %w", err)
	}
	return seeded, nil
}

// providerIndex finds the list index of a provider id in the raw file.
func providerIndex(raw, id string) (int, error) {
	providers := gjson.Get(raw, sttPath+".providers").Array()
	for i, p := range providers {
		if p.Get("id").Str == id {
			return i, nil
		}
	}
	return 0, fmt.Errorf("provider '%s' not found", id)
}
