// Package tui provides the interactive settings screen for sttmgr.
package tui

import (
	"context"
	"fmt"

	"sttmgr/internal/controller"
	"sttmgr/internal/probe"
	"sttmgr/internal/utils"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ViewState represents the current view state
type ViewState int

const (
	ViewSettings       ViewState = iota // Settings form
	ViewProviderSelect                  // Provider selection list
	ViewEditField                       // Single-field text editor
	ViewPingTesting                     // Endpoint probe in progress
	ViewPingResult                      // Endpoint probe result
	ViewHelp                            // Help panel
)

// Field indexes the rows of the settings form
type Field int

const (
	FieldEnabled Field = iota
	FieldProvider
	FieldBaseURL
	FieldAPIKey
	FieldModel
	FieldCount // Total number of fields
)

// Model is the core state model for the TUI. All reads and mutations go
// through the controller; the model itself holds only view state.
type Model struct {
	ctrl *controller.Controller
	keys KeyMap

	viewState ViewState
	cursor    Field

	// Provider selection state
	providerCursor int

	// Field editor state
	editing Field
	input   textinput.Model

	// Messages and errors
	message  string
	errorMsg string

	// Probe state
	pingResult *probe.Result

	// Window size
	width  int
	height int
}

// NewModel creates a new TUI model over the controller.
func NewModel(ctrl *controller.Controller) Model {
	return Model{
		ctrl:      ctrl,
		keys:      DefaultKeyMap(),
		viewState: ViewSettings,
		cursor:    FieldEnabled,
		width:     80,
		height:    24,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case FieldSavedMsg:
		if msg.Err != nil {
			m.errorMsg = msg.Err.Error()
		} else {
			m.message = fmt.Sprintf("%s saved", fieldName(msg.Field))
		}
		return m, nil

	case ProviderSwitchedMsg:
		if msg.Err != nil {
			m.errorMsg = msg.Err.Error()
		} else {
			m.message = "switched to " + msg.ID
		}
		return m, nil

	case EnabledToggledMsg:
		if msg.Err != nil {
			m.errorMsg = msg.Err.Error()
		} else if msg.Enabled {
			m.message = "transcription enabled"
		} else {
			m.message = "transcription disabled"
		}
		return m, nil

	case PingResultMsg:
		result := msg.Result
		m.pingResult = &result
		m.viewState = ViewPingResult
		return m, nil
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// ctrl+c always quits
	if msg.String() == "ctrl+c" {
		m.ctrl.Close()
		return m, tea.Quit
	}

	switch m.viewState {
	case ViewSettings:
		return m.handleSettingsKeys(msg)
	case ViewProviderSelect:
		return m.handleProviderSelectKeys(msg)
	case ViewEditField:
		return m.handleEditFieldKeys(msg)
	case ViewPingTesting:
		// Probe is bounded; only allow bailing out entirely.
		if msg.String() == "q" {
			m.ctrl.Close()
			return m, tea.Quit
		}
		return m, nil
	case ViewPingResult:
		m.viewState = ViewSettings
		m.pingResult = nil
		return m, nil
	case ViewHelp:
		m.viewState = ViewSettings
		return m, nil
	}

	return m, nil
}

func (m Model) handleSettingsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""
	m.errorMsg = ""

	switch msg.String() {
	case "q":
		m.ctrl.Close()
		return m, tea.Quit

	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "j", "down":
		if m.cursor < FieldCount-1 {
			m.cursor++
		}
		return m, nil

	case "e":
		return m, toggleEnabled(m.ctrl, !m.ctrl.Enabled())

	case "p":
		provider, ok := m.ctrl.ActiveProvider()
		if !ok {
			m.errorMsg = "no provider selected"
			return m, nil
		}
		m.viewState = ViewPingTesting
		return m, pingEndpoint(provider.BaseURL, m.ctrl.APIKey())

	case "?":
		m.viewState = ViewHelp
		return m, nil

	case "enter":
		return m.openField(m.cursor)
	}

	return m, nil
}

// openField starts editing the field under the cursor.
func (m Model) openField(field Field) (tea.Model, tea.Cmd) {
	switch field {
	case FieldEnabled:
		return m, toggleEnabled(m.ctrl, !m.ctrl.Enabled())

	case FieldProvider:
		m.viewState = ViewProviderSelect
		m.providerCursor = 0
		for i, opt := range m.ctrl.ProviderOptions() {
			if opt.ID == m.ctrl.ProviderID() {
				m.providerCursor = i
			}
		}
		return m, nil

	case FieldBaseURL:
		provider, ok := m.ctrl.ActiveProvider()
		if !ok {
			m.errorMsg = "no provider selected"
			return m, nil
		}
		if !provider.AllowBaseURLEdit {
			m.message = fmt.Sprintf("base URL is fixed for %s", provider.Label)
			return m, nil
		}
		m.startEditing(FieldBaseURL, m.ctrl.BaseURL())
		return m, textinput.Blink

	case FieldAPIKey:
		m.startEditing(FieldAPIKey, m.ctrl.APIKey())
		return m, textinput.Blink

	case FieldModel:
		m.startEditing(FieldModel, m.ctrl.Model())
		return m, textinput.Blink
	}

	return m, nil
}

func (m *Model) startEditing(field Field, current string) {
	m.editing = field
	m.input = newFieldInput(field)
	m.input.SetValue(current)
	m.input.CursorEnd()
	m.input.Focus()
	m.viewState = ViewEditField
}

func (m Model) handleProviderSelectKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	options := m.ctrl.ProviderOptions()

	switch msg.String() {
	case "q", "esc":
		m.viewState = ViewSettings
		return m, nil

	case "k", "up":
		if m.providerCursor > 0 {
			m.providerCursor--
		}
		return m, nil

	case "j", "down":
		if m.providerCursor < len(options)-1 {
			m.providerCursor++
		}
		return m, nil

	case "enter":
		m.viewState = ViewSettings
		if m.providerCursor < len(options) {
			return m, selectProvider(m.ctrl, options[m.providerCursor].ID)
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleEditFieldKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewState = ViewSettings
		return m, nil

	case "enter":
		value := m.input.Value()
		field := m.editing
		m.viewState = ViewSettings
		return m, saveField(m.ctrl, field, value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the current view state
func (m Model) View() string {
	switch m.viewState {
	case ViewProviderSelect:
		return m.RenderProviderSelectView()
	case ViewEditField:
		return m.RenderEditFieldView()
	case ViewPingTesting:
		return m.RenderPingTestingView()
	case ViewPingResult:
		return m.RenderPingResultView()
	case ViewHelp:
		return m.RenderHelpView()
	default:
		return m.RenderSettingsView()
	}
}

// newFieldInput creates the text input for one editable field.
func newFieldInput(field Field) textinput.Model {
	input := textinput.New()
	input.Width = 40
	input.Prompt = ""

	switch field {
	case FieldBaseURL:
		input.Placeholder = "http://localhost:8000/v1"
		input.CharLimit = 256
	case FieldAPIKey:
		input.Placeholder = "API key"
		input.CharLimit = 256
		input.EchoMode = textinput.EchoPassword
		input.EchoCharacter = '•'
	case FieldModel:
		input.Placeholder = "whisper-1"
		input.CharLimit = 128
	}

	return input
}

// fieldName returns the user-facing name of a form field.
func fieldName(field Field) string {
	switch field {
	case FieldEnabled:
		return "enabled"
	case FieldProvider:
		return "provider"
	case FieldBaseURL:
		return "base URL"
	case FieldAPIKey:
		return "API key"
	case FieldModel:
		return "model"
	default:
		return "field"
	}
}

func saveField(ctrl *controller.Controller, field Field, value string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		var err error
		switch field {
		case FieldBaseURL:
			value = utils.NormalizeBaseURL(value)
			if !utils.ValidateURL(value) {
				return FieldSavedMsg{Field: field, Err: fmt.Errorf("invalid URL: %s", value)}
			}
			err = ctrl.SetBaseURL(ctx, value)
		case FieldAPIKey:
			err = ctrl.SetAPIKey(ctx, value)
		case FieldModel:
			err = ctrl.SetModel(ctx, value)
		}
		return FieldSavedMsg{Field: field, Err: err}
	}
}

func selectProvider(ctrl *controller.Controller, id string) tea.Cmd {
	return func() tea.Msg {
		err := ctrl.SelectProvider(context.Background(), id)
		return ProviderSwitchedMsg{ID: id, Err: err}
	}
}

func toggleEnabled(ctrl *controller.Controller, enabled bool) tea.Cmd {
	return func() tea.Msg {
		err := ctrl.ToggleEnabled(context.Background(), enabled)
		return EnabledToggledMsg{Enabled: enabled, Err: err}
	}
}

func pingEndpoint(baseURL, apiKey string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), probe.DefaultTimeout)
		defer cancel()
		return PingResultMsg{Result: probe.Ping(ctx, baseURL, apiKey)}
	}
}
