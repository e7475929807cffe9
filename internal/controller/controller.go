// Package controller keeps the interactive settings surface and the
// persisted STT settings backend consistent. Every mutation is applied
// to a local mirror immediately (optimistic), pushed through the remote
// settings service, and committed into the shared store only once the
// service confirms it.
package controller

import (
	"context"
	"sync"
	"time"

	"sttmgr/config"
	"sttmgr/config/models"
	"sttmgr/internal/catalog"
	"sttmgr/internal/logging"
	"sttmgr/internal/remote"
)

// Controller mediates between the presentation layer, the settings
// store and the remote persistence service.
//
// The local mirror (provider id, base URL, API key, model) is re-derived
// from the store only when the active provider id changes, never on
// other store mutations, so an in-flight edit on one field is not
// clobbered by a concurrent commit on another.
//
// A failed persist keeps the optimistic value visible: the error is
// logged and returned to the caller, but the mirror is not rolled back.
// Busy flags are cleared unconditionally on both outcomes.
type Controller struct {
	store   *config.Store
	svc     remote.Service
	timeout time.Duration

	mu         sync.Mutex
	closed     bool
	providerID string
	baseURL    string
	apiKey     string
	model      string

	baseURLPending int
	apiKeyPending  int
	modelPending   int

	// Per-field write generations. A completion whose generation is no
	// longer current lost to a newer write and must not commit.
	baseURLGen uint64
	apiKeyGen  uint64
	modelGen   uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithTimeout bounds each remote call. The default is
// remote.DefaultCallTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

// New creates a Controller over store and svc, derives the local mirror
// from the current snapshot, and subscribes to provider-id changes.
func New(store *config.Store, svc remote.Service, opts ...Option) *Controller {
	c := &Controller{
		store:   store,
		svc:     svc,
		timeout: remote.DefaultCallTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if store.Loaded() {
		c.deriveFrom(store.Settings())
	}
	store.OnProviderChange(func(string) {
		c.deriveFrom(store.Settings())
	})
	return c
}

// Close marks the controller defunct. Remote calls already in flight
// run to completion, but their results are discarded instead of being
// committed to the store.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// deriveFrom rebuilds the local mirror for the snapshot's active
// provider. Key and model always come from the maps with their
// documented fallbacks; the base URL comes from the snapshot's
// descriptor, or the catalog when the id has no snapshot entry.
func (c *Controller) deriveFrom(settings models.Settings) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.providerID = settings.ProviderID
	c.apiKey = settings.APIKeyFor(settings.ProviderID)
	c.model = settings.ModelFor(settings.ProviderID)

	provider, ok := settings.ActiveProvider()
	if !ok {
		provider, ok = catalog.Describe(settings.ProviderID)
	}
	if ok {
		c.baseURL = provider.BaseURL
	} else {
		c.baseURL = ""
	}
}

// ProviderID returns the locally selected provider id.
func (c *Controller) ProviderID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.providerID
}

// ActiveProvider returns the descriptor for the selected provider.
func (c *Controller) ActiveProvider() (models.Provider, bool) {
	c.mu.Lock()
	id := c.providerID
	c.mu.Unlock()

	settings := c.store.Settings()
	if p, ok := settings.ProviderByID(id); ok {
		return p, true
	}
	return catalog.Describe(id)
}

// IsCustomProviderSelected reports whether the reserved editable entry
// is active.
func (c *Controller) IsCustomProviderSelected() bool {
	return c.ProviderID() == catalog.CustomProviderID
}

// ProviderOptions returns id/label pairs over the full catalog.
func (c *Controller) ProviderOptions() []catalog.Option {
	return catalog.Options()
}

// BaseURL returns the mirrored base URL for the selected provider.
func (c *Controller) BaseURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baseURL
}

// APIKey returns the mirrored API key for the selected provider.
func (c *Controller) APIKey() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apiKey
}

// Model returns the mirrored model for the selected provider.
func (c *Controller) Model() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model
}

// Enabled reads the enabled flag straight from the snapshot; the toggle
// is cheap to re-render and keeps no optimistic shadow.
func (c *Controller) Enabled() bool {
	return c.store.Settings().Enabled
}

// BaseURLBusy reports whether a base URL persist is in flight.
func (c *Controller) BaseURLBusy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baseURLPending > 0
}

// APIKeyBusy reports whether an API key persist is in flight.
func (c *Controller) APIKeyBusy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apiKeyPending > 0
}

// ModelBusy reports whether a model persist is in flight.
func (c *Controller) ModelBusy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.modelPending > 0
}

// SelectProvider switches the active provider. A blank id, an unloaded
// store, or an id the snapshot does not list makes it a no-op that
// leaves the current selection in place. The selection is applied
// locally first and is intentionally not rolled back when the persist
// fails.
func (c *Controller) SelectProvider(ctx context.Context, id string) error {
	if id == "" || !c.store.Loaded() {
		return nil
	}

	settings := c.store.Settings()
	provider, ok := settings.ProviderByID(id)
	if !ok {
		return nil
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.providerID = id
	c.baseURL = provider.BaseURL
	c.apiKey = settings.APIKeyFor(id)
	c.model = settings.ModelFor(id)
	c.mu.Unlock()

	err := c.call(ctx, func(ctx context.Context) error {
		return c.svc.SetProvider(ctx, id)
	})
	if err != nil {
		logging.RemoteFailure("select_provider", id, err)
		return err
	}

	if !c.isClosed() {
		c.store.SetProviderID(id)
	}
	return nil
}

// SetBaseURL persists a new base URL for the selected provider. It is a
// no-op unless a provider is selected and its descriptor allows base
// URL edits.
func (c *Controller) SetBaseURL(ctx context.Context, value string) error {
	provider, ok := c.ActiveProvider()
	if !ok || !provider.AllowBaseURLEdit {
		return nil
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	providerID := c.providerID
	c.baseURL = value
	c.baseURLGen++
	gen := c.baseURLGen
	c.baseURLPending++
	c.mu.Unlock()

	err := c.call(ctx, func(ctx context.Context) error {
		return c.svc.SetBaseURL(ctx, providerID, value)
	})

	c.mu.Lock()
	c.baseURLPending--
	commit := !c.closed && gen == c.baseURLGen
	c.mu.Unlock()

	if err != nil {
		logging.RemoteFailure("set_base_url", providerID, err)
		return err
	}
	if commit {
		c.store.SetProviderBaseURL(providerID, value)
	}
	return nil
}

// SetAPIKey persists a new API key for the selected provider.
func (c *Controller) SetAPIKey(ctx context.Context, value string) error {
	c.mu.Lock()
	if c.closed || c.providerID == "" {
		c.mu.Unlock()
		return nil
	}
	providerID := c.providerID
	c.apiKey = value
	c.apiKeyGen++
	gen := c.apiKeyGen
	c.apiKeyPending++
	c.mu.Unlock()

	err := c.call(ctx, func(ctx context.Context) error {
		return c.svc.SetAPIKey(ctx, providerID, value)
	})

	c.mu.Lock()
	c.apiKeyPending--
	commit := !c.closed && gen == c.apiKeyGen
	c.mu.Unlock()

	if err != nil {
		logging.RemoteFailure("set_api_key", providerID, err)
		return err
	}
	if commit {
		c.store.SetAPIKey(providerID, value)
	}
	return nil
}

// SetModel persists a new model name for the selected provider.
func (c *Controller) SetModel(ctx context.Context, value string) error {
	c.mu.Lock()
	if c.closed || c.providerID == "" {
		c.mu.Unlock()
		return nil
	}
	providerID := c.providerID
	c.model = value
	c.modelGen++
	gen := c.modelGen
	c.modelPending++
	c.mu.Unlock()

	err := c.call(ctx, func(ctx context.Context) error {
		return c.svc.SetModel(ctx, providerID, value)
	})

	c.mu.Lock()
	c.modelPending--
	commit := !c.closed && gen == c.modelGen
	c.mu.Unlock()

	if err != nil {
		logging.RemoteFailure("set_model", providerID, err)
		return err
	}
	if commit {
		c.store.SetModel(providerID, value)
	}
	return nil
}

// ToggleEnabled persists the enabled flag and commits it on success.
func (c *Controller) ToggleEnabled(ctx context.Context, enabled bool) error {
	if c.isClosed() {
		return nil
	}

	err := c.call(ctx, func(ctx context.Context) error {
		return c.svc.SetEnabled(ctx, enabled)
	})
	if err != nil {
		logging.RemoteFailure("toggle_enabled", "", err)
		return err
	}

	if !c.isClosed() {
		c.store.SetEnabled(enabled)
	}
	return nil
}

// call runs fn under the controller's per-call timeout.
func (c *Controller) call(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return fn(ctx)
}

func (c *Controller) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
