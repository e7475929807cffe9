package tui

import "sttmgr/internal/probe"

// FieldSavedMsg is sent when a field persist completes
type FieldSavedMsg struct {
	Field Field
	Err   error
}

// ProviderSwitchedMsg is sent when a provider switch completes
type ProviderSwitchedMsg struct {
	ID  string
	Err error
}

// EnabledToggledMsg is sent when the enabled toggle completes
type EnabledToggledMsg struct {
	Enabled bool
	Err     error
}

// PingResultMsg is sent when an endpoint probe completes
type PingResultMsg struct {
	Result probe.Result
}
