package scan

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	scandto "daing/internal/modules/scan/dto"
	apperrors "daing/internal/platform/errors"
	"daing/internal/ui/theme"
)

const recentLimit = 8

// ─── port ────────────────────────────────────────────────────────────────────

type Port interface {
	Analyze(ctx context.Context, imagePath string, autoSave bool, outPath string) (scandto.AnalyzeOutput, error)
	Upload(ctx context.Context, imagePath, fishType, condition string) (scandto.UploadOutput, error)
	Recent(ctx context.Context, limit int) ([]scandto.ScanRecordOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type AnalyzedMsg struct {
	Mount  uint64
	Output scandto.AnalyzeOutput
	Err    error
}

type UploadedMsg struct {
	Mount  uint64
	Output scandto.UploadOutput
	Err    error
}

type RecentLoadedMsg struct {
	Mount   uint64
	Records []scandto.ScanRecordOutput
	Err     error
}

// ─── model ───────────────────────────────────────────────────────────────────

type mode int

const (
	modeBrowse mode = iota
	modeEditPath
	modeEditFishType
	modePickCondition
)

// Model is the Scan tab: pick a photo, grade it, or label it for the dataset.
type Model struct {
	port         Port
	serverURL    string
	autoSave     bool
	annotatedDir string
	mount        uint64
	ctx          context.Context
	cancel       context.CancelFunc

	mode     mode
	path     textinput.Model
	fishType textinput.Model
	spinner  spinner.Model
	busy     bool

	result    scandto.AnalyzeOutput
	hasResult bool
	upload    scandto.UploadOutput
	hasUpload bool
	recent    []scandto.ScanRecordOutput
	status    string
	alert     bool
	width     int
	height    int
}

// New creates the Scan view. Annotated images are written under
// annotatedDir when it is set.
func New(port Port, serverURL string, autoSave bool, annotatedDir string, mount uint64) Model {
	path := textinput.New()
	path.Placeholder = "/path/to/photo.jpg"
	path.CharLimit = 1024
	path.Prompt = "photo › "

	fish := textinput.New()
	fish.Placeholder = "danggit, dilis, espada, galunggong, pusit, tuyo…"
	fish.CharLimit = 64
	fish.Prompt = "fish type › "

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		port:         port,
		serverURL:    serverURL,
		autoSave:     autoSave,
		annotatedDir: annotatedDir,
		mount:        mount,
		ctx:          ctx,
		cancel:       cancel,
		path:         path,
		fishType:     fish,
		spinner:      sp,
		status:       "press / to choose a photo",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.recentCmd(), m.spinner.Tick)
}

// Unmount cancels any call still in flight.
func (m Model) Unmount() Model {
	if m.cancel != nil {
		m.cancel()
	}
	return m
}

// Typing reports whether a text field has focus; global keys must yield.
func (m Model) Typing() bool {
	return m.mode != modeBrowse
}

// SetPath preloads the photo path, used by the command palette.
func (m *Model) SetPath(path string) {
	m.path.SetValue(strings.TrimSpace(path))
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.path.Width = max(msg.Width-16, 20)
		m.fishType.Width = max(msg.Width-20, 20)

	case AnalyzedMsg:
		if msg.Mount != m.mount {
			return m, nil
		}
		m.busy = false
		if msg.Err != nil {
			m.setAlert(msg.Err)
			return m, m.recentCmd()
		}
		m.result, m.hasResult = msg.Output, true
		m.status = fmt.Sprintf("graded in %d attempt(s)", msg.Output.Attempts)
		m.alert = false
		return m, m.recentCmd()

	case UploadedMsg:
		if msg.Mount != m.mount {
			return m, nil
		}
		m.busy = false
		if msg.Err != nil {
			m.setAlert(msg.Err)
			return m, nil
		}
		m.upload, m.hasUpload = msg.Output, true
		m.status = msg.Output.Message
		m.alert = !msg.Output.Success

	case RecentLoadedMsg:
		if msg.Mount != m.mount {
			return m, nil
		}
		if msg.Err == nil {
			m.recent = msg.Records
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeEditPath:
		switch msg.String() {
		case "enter":
			m.mode = modeBrowse
			m.path.Blur()
			m.status = "a:analyze  u:upload as sample"
			return m, nil
		case "esc":
			m.mode = modeBrowse
			m.path.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.path, cmd = m.path.Update(msg)
		return m, cmd

	case modeEditFishType:
		switch msg.String() {
		case "enter":
			if strings.TrimSpace(m.fishType.Value()) == "" {
				m.status = "fish type is required"
				m.alert = true
				return m, nil
			}
			m.fishType.Blur()
			m.mode = modePickCondition
			m.status = "condition? g:good  b:bad  esc:cancel"
			m.alert = false
			return m, nil
		case "esc":
			m.mode = modeBrowse
			m.fishType.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.fishType, cmd = m.fishType.Update(msg)
		return m, cmd

	case modePickCondition:
		m.mode = modeBrowse
		switch msg.String() {
		case "g":
			return m.startUpload("good")
		case "b":
			return m.startUpload("bad")
		}
		m.status = "upload cancelled"
		return m, nil
	}

	switch msg.String() {
	case "/", "i":
		m.mode = modeEditPath
		return m, m.path.Focus()
	case "a", "enter":
		return m.startAnalyze()
	case "u":
		if m.photo() == "" {
			m.status = "choose a photo first (/)"
			m.alert = true
			return m, nil
		}
		m.mode = modeEditFishType
		return m, m.fishType.Focus()
	case "r":
		return m, m.recentCmd()
	}
	return m, nil
}

// StartAnalyze grades the current photo; exported for the command palette.
func (m Model) StartAnalyze() (Model, tea.Cmd) { return m.startAnalyze() }

func (m Model) startAnalyze() (Model, tea.Cmd) {
	photo := m.photo()
	if photo == "" {
		m.status = "choose a photo first (/)"
		m.alert = true
		return m, nil
	}
	if m.busy {
		return m, nil
	}
	m.busy = true
	m.hasResult = false
	m.status = "analyzing " + filepath.Base(photo) + "…"
	m.alert = false
	return m, m.analyzeCmd(photo, m.annotatedPath(photo))
}

func (m Model) startUpload(condition string) (Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	m.busy = true
	m.hasUpload = false
	m.status = "uploading sample…"
	m.alert = false
	return m, m.uploadCmd(m.photo(), m.fishType.Value(), condition)
}

func (m Model) photo() string { return strings.TrimSpace(m.path.Value()) }

func (m Model) annotatedPath(photo string) string {
	if m.annotatedDir == "" {
		return ""
	}
	name := strings.TrimSuffix(filepath.Base(photo), filepath.Ext(photo))
	return filepath.Join(m.annotatedDir, name+".annotated.jpg")
}

func (m *Model) setAlert(err error) {
	m.status = apperrors.UserMessage(err, m.serverURL)
	m.alert = true
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	var sb strings.Builder
	autoSave := theme.Muted.Render("auto-save off")
	if m.autoSave {
		autoSave = theme.Good.Render("auto-save on")
	}
	sb.WriteString(theme.Title.Render("Scan") + "  " + autoSave + theme.Muted.Render("  "+m.serverURL) + "\n")
	sb.WriteString(m.path.View() + "\n")
	if m.mode == modeEditFishType || m.mode == modePickCondition {
		sb.WriteString(m.fishType.View() + "\n")
	}
	status := theme.Muted.Render(m.status)
	if m.alert {
		status = theme.Alert.Render(m.status)
	}
	if m.busy {
		status = m.spinner.View() + " " + status
	}
	sb.WriteString(status + "\n")
	sb.WriteString(theme.Muted.Render("/:photo  a:analyze  u:upload sample  r:reload recent") + "\n\n")

	if m.hasResult {
		sb.WriteString(theme.Pane.Width(max(m.width-4, 20)).Render(renderResult(m.result)) + "\n")
	}
	if m.hasUpload {
		label := theme.Good.Render("saved")
		if !m.upload.Success {
			label = theme.Alert.Render("rejected")
		}
		sb.WriteString(fmt.Sprintf("sample %s  %s / %s  %s\n\n", label, displayLabel(m.upload.FishType), m.upload.Condition, m.upload.Message))
	}
	sb.WriteString(m.renderRecent())
	return sb.String()
}

func renderResult(r scandto.AnalyzeOutput) string {
	var sb strings.Builder
	if !r.IsDaing {
		sb.WriteString(theme.Warn.Render("Not recognised as dried fish") + "\n")
	} else {
		sb.WriteString(theme.Hot.Render(displayLabel(r.FishType)) + fmt.Sprintf("  %.1f%% confidence", r.Confidence*100) + "\n")
	}
	if r.Grade != "" {
		sb.WriteString("Grade     " + r.Grade + "\n")
	}
	if r.HasColor {
		sb.WriteString(fmt.Sprintf("Color     %s (%.2f)\n", r.ColorGrade, r.ColorScore))
	}
	if r.Message != "" {
		sb.WriteString(theme.Muted.Render(r.Message) + "\n")
	}
	if r.SavedToDataset {
		sb.WriteString(theme.Good.Render("Saved to dataset") + "\n")
	}
	if r.AnnotatedPath != "" {
		sb.WriteString(theme.Muted.Render(fmt.Sprintf("Annotated %s (%s)", r.AnnotatedPath, humanize.IBytes(uint64(r.ResultImageSize)))) + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (m Model) renderRecent() string {
	if len(m.recent) == 0 {
		return theme.Muted.Render("No scans recorded on this device yet.")
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Recent scans") + "\n")
	for _, r := range m.recent {
		when := humanize.Time(r.CreatedAt)
		name := filepath.Base(r.ImagePath)
		switch {
		case r.ErrorKind != "":
			sb.WriteString(theme.Alert.Render("✗ ") + fmt.Sprintf("%-24s %s", truncate(name, 24), theme.Muted.Render(r.ErrorKind+" · "+when)) + "\n")
		case !r.IsDaing:
			sb.WriteString(theme.Warn.Render("? ") + fmt.Sprintf("%-24s %s", truncate(name, 24), theme.Muted.Render("not daing · "+when)) + "\n")
		default:
			sb.WriteString(theme.Good.Render("✓ ") + fmt.Sprintf("%-24s %s %.0f%% %s", truncate(name, 24), displayLabel(r.FishType), r.Confidence*100, theme.Muted.Render(when)) + "\n")
		}
	}
	return sb.String()
}

// displayLabel turns a wire label such as "dried_squid" into "Dried Squid".
func displayLabel(label string) string {
	if label == "" {
		return "Unknown"
	}
	return cases.Title(language.English).String(strings.ReplaceAll(label, "_", " "))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// ─── async commands ──────────────────────────────────────────────────────────

func (m Model) analyzeCmd(photo, outPath string) tea.Cmd {
	port, ctx, autoSave, mount := m.port, m.ctx, m.autoSave, m.mount
	return func() tea.Msg {
		out, err := port.Analyze(ctx, photo, autoSave, outPath)
		return AnalyzedMsg{Mount: mount, Output: out, Err: err}
	}
}

func (m Model) uploadCmd(photo, fishType, condition string) tea.Cmd {
	port, ctx, mount := m.port, m.ctx, m.mount
	return func() tea.Msg {
		out, err := port.Upload(ctx, photo, fishType, condition)
		return UploadedMsg{Mount: mount, Output: out, Err: err}
	}
}

func (m Model) recentCmd() tea.Cmd {
	port, ctx, mount := m.port, m.ctx, m.mount
	return func() tea.Msg {
		records, err := port.Recent(ctx, recentLimit)
		return RecentLoadedMsg{Mount: mount, Records: records, Err: err}
	}
}
