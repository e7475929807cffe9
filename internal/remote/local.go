package remote

import (
	"context"
	"fmt"

	"sttmgr/config"
	"sttmgr/config/models"
)

// Local persists settings straight to the settings file through a
// config.Manager. It carries the backend validation rules: writes must
// target a known provider, and base URLs may only be edited on
// descriptors that allow it.
type Local struct {
	manager *config.Manager
}

// NewLocal creates a Local service over the given manager.
func NewLocal(manager *config.Manager) *Local {
	return &Local{manager: manager}
}

func (l *Local) GetSettings(ctx context.Context) (models.Settings, error) {
	if err := ctx.Err(); err != nil {
		return models.Settings{}, err
	}
	return l.manager.Load()
}

func (l *Local) SetEnabled(ctx context.Context, enabled bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return l.manager.SetEnabled(enabled)
}

func (l *Local) SetProvider(ctx context.Context, providerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := l.describe(providerID); err != nil {
		return err
	}
	return l.manager.SetProviderID(providerID)
}

func (l *Local) SetBaseURL(ctx context.Context, providerID, baseURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	provider, err := l.describe(providerID)
	if err != nil {
		return err
	}
	if !provider.AllowBaseURLEdit {
		return fmt.Errorf("provider '%s' does not allow editing the base URL", provider.Label)
	}
	return l.manager.SetProviderBaseURL(providerID, baseURL)
}

func (l *Local) SetAPIKey(ctx context.Context, providerID, apiKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := l.describe(providerID); err != nil {
		return err
	}
	return l.manager.SetAPIKey(providerID, apiKey)
}

func (l *Local) SetModel(ctx context.Context, providerID, model string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := l.describe(providerID); err != nil {
		return err
	}
	return l.manager.SetModel(providerID, model)
}

// describe resolves a provider id against the persisted provider list.
func (l *Local) describe(providerID string) (models.Provider, error) {
	settings, err := l.manager.Load()
	if err != nil {
		return models.Provider{}, err
	}
	provider, ok := settings.ProviderByID(providerID)
	if !ok {
		return models.Provider{}, fmt.Errorf("provider '%s' not found", providerID)
	}
	return provider, nil
}
