package remote

import (
	"context"
	"sync"

	"sttmgr/config/models"
)

// Call records one procedure invocation on the Fake.
type Call struct {
	Op         string
	ProviderID string
	Value      string
}

// Fake is a scriptable in-memory Service for tests. Errors can be
// injected per operation name, and Gate can hold calls open so tests
// can observe in-flight state.
type Fake struct {
	mu       sync.Mutex
	settings models.Settings
	calls    []Call
	errs     map[string]error

	// Gate, when non-nil, is received from before each mutation
	// resolves; send to it (or close it) to release calls.
	Gate chan struct{}
}

// NewFake creates a Fake seeded with the given settings.
func NewFake(settings models.Settings) *Fake {
	return &Fake{
		settings: settings.Clone(),
		errs:     make(map[string]error),
	}
}

// SetGate swaps the gate channel; pass nil to let subsequent calls
// resolve immediately.
func (f *Fake) SetGate(ch chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Gate = ch
}

// FailWith makes the named operation ("SetModel", "SetAPIKey", ...)
// return err.
func (f *Fake) FailWith(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[op] = err
}

// Calls returns the recorded invocations in order.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many times op was invoked.
func (f *Fake) CallCount(op string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Op == op {
			n++
		}
	}
	return n
}

func (f *Fake) record(ctx context.Context, op, providerID, value string) error {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Op: op, ProviderID: providerID, Value: value})
	err := f.errs[op]
	gate := f.Gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *Fake) GetSettings(ctx context.Context) (models.Settings, error) {
	if err := f.record(ctx, "GetSettings", "", ""); err != nil {
		return models.Settings{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settings.Clone(), nil
}

func (f *Fake) SetEnabled(ctx context.Context, enabled bool) error {
	value := "false"
	if enabled {
		value = "true"
	}
	if err := f.record(ctx, "SetEnabled", "", value); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings.Enabled = enabled
	return nil
}

func (f *Fake) SetProvider(ctx context.Context, providerID string) error {
	if err := f.record(ctx, "SetProvider", providerID, ""); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings.ProviderID = providerID
	return nil
}

func (f *Fake) SetBaseURL(ctx context.Context, providerID, baseURL string) error {
	if err := f.record(ctx, "SetBaseURL", providerID, baseURL); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.settings.Providers {
		if f.settings.Providers[i].ID == providerID {
			f.settings.Providers[i].BaseURL = baseURL
		}
	}
	return nil
}

func (f *Fake) SetAPIKey(ctx context.Context, providerID, apiKey string) error {
	if err := f.record(ctx, "SetAPIKey", providerID, apiKey); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settings.APIKeys == nil {
		f.settings.APIKeys = make(map[string]string)
	}
	f.settings.APIKeys[providerID] = apiKey
	return nil
}

func (f *Fake) SetModel(ctx context.Context, providerID, model string) error {
	if err := f.record(ctx, "SetModel", providerID, model); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settings.Models == nil {
		f.settings.Models = make(map[string]string)
	}
	f.settings.Models[providerID] = model
	return nil
}

// Settings returns the fake's current backing snapshot.
func (f *Fake) Settings() models.Settings {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settings.Clone()
}
