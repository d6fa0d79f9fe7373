package settings

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	settingsdto "daing/internal/modules/settings/dto"
	"daing/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type Port interface {
	Show(ctx context.Context) (settingsdto.SettingsOutput, error)
	SetServerURL(ctx context.Context, url string) (settingsdto.SettingsOutput, error)
	SetAutoSave(ctx context.Context, enabled bool) (settingsdto.SettingsOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type LoadedMsg struct {
	Output settingsdto.SettingsOutput
	Err    error
}

// SavedMsg reports a persisted change. The app reconnects every view to the
// new server when Err is nil.
type SavedMsg struct {
	Output settingsdto.SettingsOutput
	Err    error
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    Port
	current settingsdto.SettingsOutput
	input   textinput.Model
	editing bool
	status  string
	alert   bool
	width   int
}

func New(port Port) Model {
	ti := textinput.New()
	ti.Placeholder = "http://192.168.1.10:8000"
	ti.CharLimit = 256
	ti.Prompt = "server › "
	return Model{port: port, input: ti}
}

func (m Model) Init() tea.Cmd {
	port := m.port
	return func() tea.Msg {
		out, err := port.Show(context.Background())
		return LoadedMsg{Output: out, Err: err}
	}
}

// Typing reports whether the URL field has focus.
func (m Model) Typing() bool { return m.editing }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-12, 20)

	case LoadedMsg:
		if msg.Err != nil {
			m.status, m.alert = msg.Err.Error(), true
			return m, nil
		}
		m.current = msg.Output

	case SavedMsg:
		if msg.Err != nil {
			m.status, m.alert = msg.Err.Error(), true
			return m, nil
		}
		m.current = msg.Output
		m.status, m.alert = "saved, reconnecting to "+msg.Output.ServerURL, false

	case tea.KeyMsg:
		if m.editing {
			switch msg.String() {
			case "enter":
				m.editing = false
				m.input.Blur()
				return m, m.SetServerURL(m.input.Value())
			case "esc":
				m.editing = false
				m.input.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "e", "enter":
			m.editing = true
			m.input.SetValue(m.current.ServerURL)
			m.input.CursorEnd()
			return m, m.input.Focus()
		case "s", " ":
			return m, m.SetAutoSave(!m.current.AutoSaveDataset)
		}
	}
	return m, nil
}

// SetServerURL persists a new server; exported for the command palette.
func (m Model) SetServerURL(raw string) tea.Cmd {
	port := m.port
	raw = strings.TrimSpace(raw)
	return func() tea.Msg {
		out, err := port.SetServerURL(context.Background(), raw)
		return SavedMsg{Output: out, Err: err}
	}
}

func (m Model) SetAutoSave(enabled bool) tea.Cmd {
	port := m.port
	return func() tea.Msg {
		out, err := port.SetAutoSave(context.Background(), enabled)
		return SavedMsg{Output: out, Err: err}
	}
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Settings") + "\n\n")
	if m.editing {
		sb.WriteString(m.input.View() + "\n")
	} else {
		sb.WriteString("Server        " + theme.Hot.Render(m.current.ServerURL) + "\n")
	}
	autoSave := theme.Muted.Render("off")
	if m.current.AutoSaveDataset {
		autoSave = theme.Good.Render("on")
	}
	sb.WriteString("Auto-save     " + autoSave + "\n\n")
	sb.WriteString(theme.Muted.Render("Analyze       "+m.current.Analyze) + "\n")
	sb.WriteString(theme.Muted.Render("History       "+m.current.History) + "\n")
	sb.WriteString(theme.Muted.Render("Dataset       "+m.current.AutoDataset) + "\n")
	sb.WriteString(theme.Muted.Render("Stored in     "+m.current.Path) + "\n\n")
	if m.status != "" {
		if m.alert {
			sb.WriteString(theme.Alert.Render(m.status) + "\n")
		} else {
			sb.WriteString(theme.Good.Render(m.status) + "\n")
		}
	}
	sb.WriteString(theme.Muted.Render("e:edit server  s:toggle auto-save"))
	return theme.Pane.Width(max(m.width-4, 20)).Render(sb.String())
}
