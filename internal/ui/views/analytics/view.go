package analytics

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	analyticsdto "daing/internal/modules/analytics/dto"
	"daing/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type Port interface {
	Summary(ctx context.Context, refresh bool) (analyticsdto.SummaryOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type SummaryLoadedMsg struct {
	Mount  uint64
	Output analyticsdto.SummaryOutput
	Err    error
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port     Port
	mount    uint64
	ctx      context.Context
	cancel   context.CancelFunc
	summary  analyticsdto.SummaryOutput
	loaded   bool
	loading  bool
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer
	width    int
	height   int
}

func New(port Port, mount uint64) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	r, _ := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(0),
	)

	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		port:     port,
		mount:    mount,
		ctx:      ctx,
		cancel:   cancel,
		loading:  true,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		renderer: r,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(false), m.spinner.Tick)
}

func (m Model) Unmount() Model {
	if m.cancel != nil {
		m.cancel()
	}
	return m
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-2, 1)
		// Rebuild the glamour renderer so it word-wraps at the new width.
		if r, err := glamour.NewTermRenderer(
			glamour.WithStylePath("dark"),
			glamour.WithWordWrap(max(msg.Width-4, 20)),
		); err == nil {
			m.renderer = r
		}
		if m.loaded {
			m.viewport.SetContent(m.render())
		}
		return m, nil

	case SummaryLoadedMsg:
		if msg.Mount != m.mount {
			return m, nil
		}
		m.loading = false
		m.loaded = true
		m.summary = msg.Output
		m.viewport.SetContent(m.render())
		m.viewport.GotoTop()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "r" {
			m.loading = true
			return m, m.loadCmd(true)
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	head := theme.Title.Render("Analytics")
	switch {
	case m.loading:
		head += "  " + m.spinner.View() + " loading"
	case m.summary.Cached:
		head += "  " + theme.Muted.Render("cached · r to refresh")
	default:
		head += "  " + theme.Muted.Render("r to refresh")
	}
	if !m.loaded {
		return head + "\n" + lipgloss.Place(m.width, max(m.height-2, 1), lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading analytics…")
	}
	return head + "\n" + m.viewport.View()
}

func (m Model) render() string {
	md := Markdown(m.summary)
	if m.renderer == nil {
		return md
	}
	out, err := m.renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}

// Markdown lays the summary out as a markdown report. An empty summary still
// renders every section with zeros.
func Markdown(s analyticsdto.SummaryOutput) string {
	title := cases.Title(language.English)
	var sb strings.Builder
	sb.WriteString("# Scan analytics\n\n")
	if s.Empty {
		sb.WriteString("_No analytics available from the server yet._\n\n")
	}
	sb.WriteString("| Total scans | Daing | Not daing | Daing share |\n|---:|---:|---:|---:|\n")
	sb.WriteString(fmt.Sprintf("| %s | %s | %s | %.1f%% |\n\n",
		humanize.Comma(int64(s.TotalScans)), humanize.Comma(int64(s.DaingScans)),
		humanize.Comma(int64(s.NonDaingScans)), s.DaingRatio*100))

	sb.WriteString("## Fish types\n\n")
	if len(s.FishTypes) == 0 {
		sb.WriteString("No fish types recorded.\n\n")
	} else {
		sb.WriteString("| Fish type | Scans | Avg. confidence |\n|---|---:|---:|\n")
		for _, f := range s.FishTypes {
			sb.WriteString(fmt.Sprintf("| %s | %s | %.1f%% |\n", title.String(strings.ReplaceAll(f.Name, "_", " ")), humanize.Comma(int64(f.Count)), f.AverageConfidence*100))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Daily scans\n\n")
	if len(s.Days) == 0 {
		sb.WriteString("No daily activity recorded.\n\n")
	} else {
		peak := 0
		for _, d := range s.Days {
			peak = max(peak, d.Count)
		}
		sb.WriteString("```\n")
		for _, d := range s.Days {
			sb.WriteString(fmt.Sprintf("%-10s %5d %s\n", d.Date, d.Count, bar(d.Count, peak, 30)))
		}
		sb.WriteString("```\n\n")
	}

	if s.HasColor {
		sb.WriteString("## Color consistency\n\n")
		sb.WriteString(fmt.Sprintf("Average score: **%.2f**\n\n", s.ColorAverage))
		for _, g := range s.ColorGrades {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", title.String(g.Grade), humanize.Comma(int64(g.Count))))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func bar(n, peak, width int) string {
	if peak <= 0 || n <= 0 {
		return ""
	}
	return strings.Repeat("█", max(n*width/peak, 1))
}

// ─── async commands ──────────────────────────────────────────────────────────

func (m Model) loadCmd(refresh bool) tea.Cmd {
	port, ctx, mount := m.port, m.ctx, m.mount
	return func() tea.Msg {
		out, err := port.Summary(ctx, refresh)
		return SummaryLoadedMsg{Mount: mount, Output: out, Err: err}
	}
}
