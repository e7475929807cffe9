package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(true)

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(12)

	focusedLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true).
				Width(12)

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))
)

const savingMarker = " (saving…)"

// RenderSettingsView renders the settings form
func (m Model) RenderSettingsView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("STT API Settings"))
	b.WriteString("\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", 50)))
	b.WriteString("\n\n")

	for field := Field(0); field < FieldCount; field++ {
		b.WriteString(m.renderFieldLine(field))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", 50)))
	b.WriteString("\n")
	b.WriteString(m.RenderStatusBar())

	return b.String()
}

func (m Model) renderFieldLine(field Field) string {
	label := fieldLabel(field)
	styledLabel := labelStyle.Render(label)
	if field == m.cursor {
		styledLabel = focusedLabelStyle.Render(label)
	}

	value, busy := m.fieldValue(field)
	styledValue := normalStyle.Render(value)
	if field == m.cursor {
		styledValue = selectedStyle.Render(value)
	}
	if busy {
		styledValue += dimStyle.Render(savingMarker)
	}

	cursor := "  "
	if field == m.cursor {
		cursor = "> "
	}
	return cursor + styledLabel + " " + styledValue
}

// fieldValue returns the display value for a field and whether a
// persist for it is in flight.
func (m Model) fieldValue(field Field) (string, bool) {
	switch field {
	case FieldEnabled:
		if m.ctrl.Enabled() {
			return "on", false
		}
		return "off", false

	case FieldProvider:
		if provider, ok := m.ctrl.ActiveProvider(); ok {
			return provider.Label, false
		}
		return m.ctrl.ProviderID(), false

	case FieldBaseURL:
		value := m.ctrl.BaseURL()
		if provider, ok := m.ctrl.ActiveProvider(); ok && !provider.AllowBaseURLEdit {
			value += " (fixed)"
		}
		return value, m.ctrl.BaseURLBusy()

	case FieldAPIKey:
		return maskKey(m.ctrl.APIKey()), m.ctrl.APIKeyBusy()

	case FieldModel:
		return m.ctrl.Model(), m.ctrl.ModelBusy()
	}
	return "", false
}

func fieldLabel(field Field) string {
	switch field {
	case FieldEnabled:
		return "Enabled:"
	case FieldProvider:
		return "Provider:"
	case FieldBaseURL:
		return "Base URL:"
	case FieldAPIKey:
		return "API Key:"
	case FieldModel:
		return "Model:"
	}
	return ""
}

// maskKey hides the key body, keeping just enough to recognize it.
func maskKey(key string) string {
	if key == "" {
		return dimStyle.Render("(not set)")
	}
	if len(key) <= 8 {
		return strings.Repeat("•", len(key))
	}
	return key[:4] + strings.Repeat("•", 8) + key[len(key)-4:]
}

// RenderProviderSelectView renders the provider selection list
func (m Model) RenderProviderSelectView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Select Provider"))
	b.WriteString("\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", 50)))
	b.WriteString("\n\n")

	activeID := m.ctrl.ProviderID()
	for i, opt := range m.ctrl.ProviderOptions() {
		cursor := "  "
		if i == m.providerCursor {
			cursor = "> "
		}

		line := opt.Label
		if opt.ID == activeID {
			line += " ●"
		}

		switch {
		case i == m.providerCursor:
			line = selectedStyle.Render(line)
		case opt.ID == activeID:
			line = activeStyle.Render(line)
		default:
			line = normalStyle.Render(line)
		}
		b.WriteString(cursor + line + "\n")
	}

	b.WriteString("\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", 50)))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("j/k: move │ Enter: select │ Esc: back"))

	return b.String()
}

// RenderEditFieldView renders the single-field editor
func (m Model) RenderEditFieldView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Edit " + fieldName(m.editing)))
	b.WriteString("\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", 50)))
	b.WriteString("\n\n")

	b.WriteString(focusedLabelStyle.Render(fieldLabel(m.editing)))
	b.WriteString(" ")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	b.WriteString(separatorStyle.Render(strings.Repeat("─", 50)))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("Enter: save │ Esc: cancel"))

	return b.String()
}

// RenderPingTestingView renders the in-progress probe screen
func (m Model) RenderPingTestingView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Testing Endpoint"))
	b.WriteString("\n\n")

	provider, _ := m.ctrl.ActiveProvider()
	b.WriteString(normalStyle.Render("Probing " + provider.BaseURL + " ..."))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("q: quit"))

	return b.String()
}

// RenderPingResultView renders the probe outcome
func (m Model) RenderPingResultView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Endpoint Test Result"))
	b.WriteString("\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", 50)))
	b.WriteString("\n\n")

	if m.pingResult == nil {
		b.WriteString(dimStyle.Render("no result"))
	} else if m.pingResult.Err != nil {
		b.WriteString(errorStyle.Render("✗ " + m.pingResult.Err.Error()))
	} else if m.pingResult.Reachable {
		b.WriteString(activeStyle.Render(fmt.Sprintf("✓ reachable (HTTP %d, %s)",
			m.pingResult.StatusCode, m.pingResult.Duration.Round(time.Millisecond))))
	} else {
		b.WriteString(errorStyle.Render(fmt.Sprintf("✗ endpoint error (HTTP %d)",
			m.pingResult.StatusCode)))
	}

	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("press any key to go back"))

	return b.String()
}

// RenderHelpView renders the help panel
func (m Model) RenderHelpView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Help"))
	b.WriteString("\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", 50)))
	b.WriteString("\n\n")

	rows := []struct{ key, desc string }{
		{"j/↓, k/↑", "move between fields"},
		{"Enter", "edit the selected field"},
		{"e", "toggle transcription on/off"},
		{"p", "test the active endpoint"},
		{"Esc", "cancel the current edit"},
		{"q", "quit"},
	}
	for _, row := range rows {
		b.WriteString("  ")
		b.WriteString(labelStyle.Render(row.key))
		b.WriteString(" ")
		b.WriteString(normalStyle.Render(row.desc))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("press any key to go back"))

	return b.String()
}

// RenderStatusBar renders the message line and key hints
func (m Model) RenderStatusBar() string {
	var b strings.Builder

	if m.errorMsg != "" {
		b.WriteString(errorStyle.Render("✗ " + m.errorMsg))
		b.WriteString("\n")
	} else if m.message != "" {
		b.WriteString(messageStyle.Render(m.message))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("j/k: move │ Enter: edit │ e: on/off │ p: test │ ?: help │ q: quit"))
	return b.String()
}
