package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"daing/internal/ui/components"
	"daing/internal/ui/theme"
	analyticsview "daing/internal/ui/views/analytics"
	collectionview "daing/internal/ui/views/collection"
	scanview "daing/internal/ui/views/scan"
	settingsview "daing/internal/ui/views/settings"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Ports bundles everything bound to one server configuration. A settings
// change produces a fresh bundle through Reconnect.

type Ports struct {
	Scan         scanview.Port
	Collection   collectionview.Port
	Analytics    analyticsview.Port
	Settings     settingsview.Port
	ServerURL    string
	AutoSave     bool
	AnnotatedDir string
}

// Reconnect rebuilds the ports from the current persisted configuration.
type Reconnect func() (Ports, error)

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabScan tabID = iota
	tabHistory
	tabDataset
	tabAnalytics
	tabSettings
	tabCount
)

var tabLabels = [tabCount]string{
	"Scan", "History", "Dataset", "Analytics", "Settings",
}

const (
	kindHistory     = "history"
	kindAutoDataset = "auto-dataset"
)

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Open    key.Binding
	Select  key.Binding
	Day     key.Binding
	Delete  key.Binding
	Page    key.Binding
	Refresh key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open / toggle")),
		Select:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		Day:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select day")),
		Delete:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete")),
		Page:    key.NewBinding(key.WithKeys("left", "right"), key.WithHelp("←/→", "page")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Open, k.Select, k.Day},
		{k.Delete, k.Page, k.Refresh},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the help overlay
// and the command palette, and remounts every view when the server changes.
type Model struct {
	reconnect Reconnect
	loc       *time.Location
	ports     Ports
	mount     uint64

	scanView      scanview.Model
	historyView   collectionview.Model
	datasetView   collectionview.Model
	analyticsView analyticsview.Model
	settingsView  settingsview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	status    string
	width     int
	height    int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(ports Ports, reconnect Reconnect, loc *time.Location) Model {
	if loc == nil {
		loc = time.Local
	}
	m := Model{
		reconnect: reconnect,
		loc:       loc,
		activeTab: tabScan,
		keys:      defaultKeys(),
		help:      help.New(),
		palette:   components.NewPalette(),
		status:    "ready",
	}
	m.settingsView = settingsview.New(ports.Settings)
	m.mountViews(ports)
	return m
}

func (m *Model) mountViews(ports Ports) {
	m.mount++
	m.ports = ports
	m.scanView = scanview.New(ports.Scan, ports.ServerURL, ports.AutoSave, ports.AnnotatedDir, m.mount)
	m.historyView = collectionview.New(ports.Collection, kindHistory, "History", ports.ServerURL, m.loc, m.mount)
	m.datasetView = collectionview.New(ports.Collection, kindAutoDataset, "Auto-dataset", ports.ServerURL, m.loc, m.mount)
	m.analyticsView = analyticsview.New(ports.Analytics, m.mount)
}

func (m *Model) unmountViews() {
	m.scanView = m.scanView.Unmount()
	m.historyView = m.historyView.Unmount()
	m.datasetView = m.datasetView.Unmount()
	m.analyticsView = m.analyticsView.Unmount()
}

func (m Model) initViews() tea.Cmd {
	return tea.Batch(
		m.scanView.Init(),
		m.historyView.Init(),
		m.datasetView.Init(),
		m.analyticsView.Init(),
	)
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.initViews(), m.settingsView.Init())
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case components.PaletteSubmitMsg:
		return m.executePalette(msg)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case settingsview.SavedMsg:
		var cmd tea.Cmd
		m.settingsView, cmd = m.settingsView.Update(msg)
		if msg.Err != nil {
			m.status = "settings: " + msg.Err.Error()
			return m, cmd
		}
		remountCmd := m.remount()
		return m, tea.Batch(cmd, remountCmd)

	case collectionview.LoadedMsg:
		return m.routeCollection(msg.Kind, msg)

	case collectionview.DeletedMsg:
		return m.routeCollection(msg.Kind, msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Everything else (view results, spinner ticks, internal view messages)
	// goes to every view; each one drops what is not addressed to it.
	return m.broadcast(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		if msg.String() == "?" || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	// Yield to the active view while one of its text fields has focus.
	if !m.subViewTyping() {
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			return m, m.palette.Open()
		}
	} else if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	var cmd tea.Cmd
	switch m.activeTab {
	case tabScan:
		m.scanView, cmd = m.scanView.Update(msg)
	case tabHistory:
		m.historyView, cmd = m.historyView.Update(msg)
	case tabDataset:
		m.datasetView, cmd = m.datasetView.Update(msg)
	case tabAnalytics:
		m.analyticsView, cmd = m.analyticsView.Update(msg)
	case tabSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	}
	return m, cmd
}

func (m Model) routeCollection(kind string, msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch kind {
	case kindHistory:
		m.historyView, cmd = m.historyView.Update(msg)
	case kindAutoDataset:
		m.datasetView, cmd = m.datasetView.Update(msg)
	}
	return m, cmd
}

func (m Model) broadcast(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 5)
	m.scanView, cmds[0] = m.scanView.Update(msg)
	m.historyView, cmds[1] = m.historyView.Update(msg)
	m.datasetView, cmds[2] = m.datasetView.Update(msg)
	m.analyticsView, cmds[3] = m.analyticsView.Update(msg)
	m.settingsView, cmds[4] = m.settingsView.Update(msg)
	return m, tea.Batch(cmds...)
}

// remount drops every view bound to the old server and mounts fresh ones.
// Results still in flight for the old mount are ignored by the new views.
func (m *Model) remount() tea.Cmd {
	if m.reconnect == nil {
		return nil
	}
	ports, err := m.reconnect()
	if err != nil {
		m.status = "reconnect failed: " + err.Error()
		return nil
	}
	m.unmountViews()
	m.mountViews(ports)
	m.propagateSize()
	m.status = "connected to " + ports.ServerURL
	return m.initViews()
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := max(m.height-lipgloss.Height(tabBar)-lipgloss.Height(statusBar), 1)

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = lipgloss.NewStyle().Height(contentH).MaxHeight(contentH).Render(m.activeView())
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabScan:
		return m.scanView.View()
	case tabHistory:
		return m.historyView.View()
	case tabDataset:
		return m.datasetView.View()
	case tabAnalytics:
		return m.analyticsView.View()
	case tabSettings:
		return m.settingsView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "daing  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := theme.Muted.Render(m.ports.ServerURL) + "  " + m.status
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

// executePalette runs a command the palette already validated.
func (m Model) executePalette(msg components.PaletteSubmitMsg) (tea.Model, tea.Cmd) {
	switch msg.Name {
	case "scan", "history", "dataset", "analytics", "settings":
		m.activeTab = map[string]tabID{
			"scan": tabScan, "history": tabHistory, "dataset": tabDataset,
			"analytics": tabAnalytics, "settings": tabSettings,
		}[msg.Name]
		return m, nil

	case "analyze":
		m.activeTab = tabScan
		m.scanView.SetPath(msg.Arg)
		var cmd tea.Cmd
		m.scanView, cmd = m.scanView.StartAnalyze()
		return m, cmd

	case "refresh":
		return m, tea.Batch(m.historyView.Refresh(), m.datasetView.Refresh())

	case "server":
		m.activeTab = tabSettings
		return m, m.settingsView.SetServerURL(msg.Arg)

	case "auto-save":
		return m, m.settingsView.SetAutoSave(msg.Arg == "on")
	}
	m.status = fmt.Sprintf("unknown command: %s", msg.Name)
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// subViewTyping reports whether the active tab has a focused text field, in
// which case global key bindings must yield to allow free typing.
func (m Model) subViewTyping() bool {
	switch m.activeTab {
	case tabScan:
		return m.scanView.Typing()
	case tabSettings:
		return m.settingsView.Typing()
	}
	return false
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.scanView, _ = m.scanView.Update(sz)
	m.historyView, _ = m.historyView.Update(sz)
	m.datasetView, _ = m.datasetView.Update(sz)
	m.analyticsView, _ = m.analyticsView.Update(sz)
	m.settingsView, _ = m.settingsView.Update(sz)
}
