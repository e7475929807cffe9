// Package remote defines the asynchronous settings persistence service
// the sync controller talks to, with one procedure per mutable field.
package remote

import (
	"context"

	"sttmgr/config/models"
)

// Service persists STT settings. Each call is independent, may fail,
// and carries no state between invocations; transport concerns stay
// behind the implementation.
type Service interface {
	GetSettings(ctx context.Context) (models.Settings, error)
	SetEnabled(ctx context.Context, enabled bool) error
	SetProvider(ctx context.Context, providerID string) error
	SetBaseURL(ctx context.Context, providerID, baseURL string) error
	SetAPIKey(ctx context.Context, providerID, apiKey string) error
	SetModel(ctx context.Context, providerID, model string) error
}
