package collection

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"daing/internal/modules/collection/domain"
	collectiondto "daing/internal/modules/collection/dto"
	apperrors "daing/internal/platform/errors"
	"daing/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

// Port is the minimal interface this view needs from the collection use-case.
type Port interface {
	List(ctx context.Context, kind string) (collectiondto.CollectionOutput, error)
	Delete(ctx context.Context, kind, id string) error
	DeleteBatch(ctx context.Context, kind string, ids []string) (collectiondto.DeleteBatchOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

// LoadedMsg carries one fetch result. Mount and Token let the view drop
// results that belong to an earlier mount or a superseded refresh.
type LoadedMsg struct {
	Kind    string
	Mount   uint64
	Token   domain.LoadToken
	Entries []collectiondto.EntryOutput
	Err     error
}

// DeletedMsg carries the outcome of a single or batch delete.
type DeletedMsg struct {
	Kind   string
	Mount  uint64
	IDs    []string
	Single bool
	Output collectiondto.DeleteBatchOutput
	Err    error
}

type refreshMsg struct {
	kind  string
	mount uint64
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model renders one remote collection (history or auto-dataset) as a
// date-grouped grid with selection mode and a paged single-entry viewer. All
// browse state lives in domain.View; this model only maps keys to reducers.
type Model struct {
	port      Port
	kind      string
	title     string
	serverURL string
	mount     uint64
	ctx       context.Context
	cancel    context.CancelFunc

	view     domain.View
	cursor   int
	confirm  bool
	status   string
	alert    bool
	spinner  spinner.Model
	viewport viewport.Model
	width    int
	height   int
}

// New creates a view for kind. Grouping uses loc, normally the device zone.
func New(port Port, kind, title, serverURL string, loc *time.Location, mount uint64) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		port:      port,
		kind:      kind,
		title:     title,
		serverURL: serverURL,
		mount:     mount,
		ctx:       ctx,
		cancel:    cancel,
		view:      domain.NewView(domain.Kind(kind), loc),
		spinner:   sp,
		viewport:  viewport.New(0, 0),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Refresh(), m.spinner.Tick)
}

// Refresh asks the model to start a new fetch on its next update.
func (m Model) Refresh() tea.Cmd {
	kind, mount := m.kind, m.mount
	return func() tea.Msg { return refreshMsg{kind: kind, mount: mount} }
}

// Unmount cancels in-flight calls; results that still arrive are ignored.
func (m Model) Unmount() Model {
	m.view = m.view.Unmount()
	if m.cancel != nil {
		m.cancel()
	}
	return m
}

func (m Model) Phase() domain.Phase { return m.view.Phase() }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-3, 1)

	case refreshMsg:
		if msg.kind != m.kind || msg.mount != m.mount {
			return m, nil
		}
		return m.beginLoad()

	case LoadedMsg:
		if msg.Kind != m.kind || msg.Mount != m.mount {
			return m, nil
		}
		next, applied := m.view.ApplyLoaded(msg.Token, toEntries(msg.Entries))
		if !applied {
			return m, nil
		}
		m.view = next
		m.clampCursor()
		if msg.Err != nil {
			m.setAlert(msg.Err)
		} else {
			m.status = fmt.Sprintf("%d entries", m.view.Len())
			m.alert = false
		}

	case DeletedMsg:
		if msg.Kind != m.kind || msg.Mount != m.mount {
			return m, nil
		}
		m.applyDeleted(msg)

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
	if m.confirm {
		m.confirm = false
		if msg.String() == "y" {
			return m.beginDelete()
		}
		m.status = "delete cancelled"
		m.alert = false
		return m, nil
	}

	var err error
	switch m.view.Phase() {
	case domain.PhaseViewing:
		switch msg.String() {
		case "left", "h":
			m.view, err = m.view.Prev()
		case "right", "l":
			m.view, err = m.view.Next()
		case "esc", "backspace":
			m.view, err = m.view.Close()
		case "x", "delete":
			m.confirm = true
		case "r":
			return m.beginLoad()
		}

	case domain.PhaseIdle, domain.PhaseSelecting:
		order := m.order()
		switch msg.String() {
		case "left", "h":
			m.cursor--
		case "right", "l":
			m.cursor++
		case "up", "k":
			m.cursor -= domain.RowWidth
		case "down", "j":
			m.cursor += domain.RowWidth
		case "enter":
			if id, ok := at(order, m.cursor); ok {
				m.view, err = m.view.Tap(id)
			}
		case " ":
			if id, ok := at(order, m.cursor); ok {
				m.view, err = m.view.LongPress(id)
			}
		case "a":
			if key, ok := m.cursorSection(); ok {
				m.view, err = m.view.ToggleDate(key)
			}
		case "x", "delete":
			if m.view.Phase() == domain.PhaseSelecting {
				m.confirm = true
			}
		case "esc":
			if m.view.Phase() == domain.PhaseSelecting {
				m.view, err = m.view.Close()
			}
		case "r":
			return m.beginLoad()
		}
		m.clampCursor()
	}
	if err != nil && !errors.Is(err, apperrors.ErrTransitionNotAllowed) {
		m.setAlert(err)
	}
	return m, nil
}

func (m Model) beginLoad() (Model, tea.Cmd) {
	next, token, err := m.view.BeginLoad()
	if err != nil {
		if !errors.Is(err, apperrors.ErrViewClosed) {
			m.setAlert(err)
		}
		return m, nil
	}
	m.view = next
	m.status = "loading…"
	m.alert = false
	return m, m.fetchCmd(token)
}

func (m Model) beginDelete() (Model, tea.Cmd) {
	single := m.view.Phase() == domain.PhaseViewing
	next, ids, err := m.view.BeginDelete()
	if err != nil {
		m.setAlert(err)
		return m, nil
	}
	m.view = next
	m.status = fmt.Sprintf("deleting %d…", len(ids))
	m.alert = false
	return m, m.deleteCmd(ids, single)
}

func (m *Model) applyDeleted(msg DeletedMsg) {
	var deleted, failed []string
	switch {
	case msg.Single && msg.Err == nil:
		deleted = msg.IDs
	case msg.Single:
		failed = msg.IDs
	default:
		deleted = msg.Output.Deleted
		for _, f := range msg.Output.Failed {
			failed = append(failed, f.ID)
		}
		if msg.Err != nil && len(deleted) == 0 && len(failed) == 0 {
			failed = msg.IDs
		}
	}
	next, err := m.view.ApplyDeleted(deleted, failed)
	if err != nil {
		return
	}
	m.view = next

	if msg.Output.Reconciled {
		if loading, token, err := m.view.BeginLoad(); err == nil {
			m.view, _ = loading.ApplyLoaded(token, toEntries(msg.Output.Entries))
		}
	}
	m.clampCursor()

	switch {
	case msg.Err != nil && msg.Single:
		m.setAlert(fmt.Errorf("%s (press x to retry)", apperrors.UserMessage(msg.Err, m.serverURL)))
	case msg.Err != nil:
		m.setAlert(fmt.Errorf("%d of %d deletes failed: %s", len(failed), len(msg.IDs), apperrors.UserMessage(msg.Err, m.serverURL)))
	default:
		m.status = fmt.Sprintf("deleted %d", len(deleted))
		m.alert = false
	}
}

func (m *Model) setAlert(err error) {
	m.status = err.Error()
	m.alert = true
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	header := m.renderHeader()
	var body string
	switch {
	case m.view.Phase() == domain.PhaseLoading && m.view.Len() == 0:
		body = lipgloss.Place(m.width, max(m.height-3, 1), lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading "+strings.ToLower(m.title)+"…")
	case m.view.Phase() == domain.PhaseViewing:
		body = m.renderViewer()
	case m.view.Len() == 0:
		body = lipgloss.Place(m.width, max(m.height-3, 1), lipgloss.Center, lipgloss.Center,
			theme.Muted.Render("Nothing here yet. Press r to refresh."))
	default:
		content, cursorLine := m.renderGrid()
		vp := m.viewport
		vp.SetContent(content)
		if cursorLine < vp.YOffset || cursorLine >= vp.YOffset+vp.Height-4 {
			vp.SetYOffset(max(cursorLine-2, 0))
		}
		body = vp.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

func (m Model) renderHeader() string {
	title := theme.Title.Render(m.title)
	var mode string
	switch m.view.Phase() {
	case domain.PhaseSelecting:
		mode = theme.Hot.Render(fmt.Sprintf("%d selected", m.view.Selection().Len()))
	case domain.PhaseDeleting:
		mode = m.spinner.View() + " deleting"
	case domain.PhaseLoading:
		mode = m.spinner.View() + " refreshing"
	}
	status := theme.Muted.Render(m.status)
	if m.alert {
		status = theme.Alert.Render(m.status)
	}
	if m.confirm {
		status = theme.Warn.Render(fmt.Sprintf("Delete %s? y/n", m.deleteTarget()))
	}
	hint := theme.Muted.Render("enter:open  space:select  a:select day  x:delete  r:refresh")
	if m.view.Phase() == domain.PhaseViewing {
		hint = theme.Muted.Render("←/→:page  x:delete  esc:back")
	}
	return strings.Join([]string{title + "  " + mode, status, hint}, "\n")
}

func (m Model) deleteTarget() string {
	if n := m.view.Selection().Len(); n > 0 {
		return fmt.Sprintf("%d selected entries", n)
	}
	if entry, ok := m.view.Current(); ok {
		return "entry " + entry.ID
	}
	return "entry"
}

func (m Model) renderViewer() string {
	entry, ok := m.view.Current()
	if !ok {
		return ""
	}
	s, _ := m.view.State().(domain.ViewingSingle)
	var sb strings.Builder
	prev, next := "  ", "  "
	if !s.Pager.AtStart() {
		prev = "◀ "
	}
	if !s.Pager.AtEnd() {
		next = " ▶"
	}
	sb.WriteString(theme.Hot.Render(fmt.Sprintf("%s%d / %d%s", prev, s.Pager.Index+1, s.Pager.Count, next)) + "\n\n")
	sb.WriteString(theme.Title.Render("ID") + "      " + entry.ID + "\n")
	if entry.HasTimestamp() {
		local := entry.Timestamp.In(m.view.Location())
		sb.WriteString(theme.Title.Render("Taken") + "   " + local.Format("Mon, 02 Jan 2006 15:04") + theme.Muted.Render("  ("+humanize.Time(entry.Timestamp)+")") + "\n")
	} else if entry.RawTimestamp != "" {
		sb.WriteString(theme.Title.Render("Taken") + "   " + entry.RawTimestamp + "\n")
	}
	if entry.Folder != "" {
		sb.WriteString(theme.Title.Render("Folder") + "  " + entry.Folder + "\n")
	}
	sb.WriteString(theme.Title.Render("Image") + "   " + entry.URL + "\n")
	return theme.Pane.Width(max(m.width-4, 20)).Render(sb.String())
}

// renderGrid draws every section and reports the line the cursor's row
// starts on.
func (m Model) renderGrid() (string, int) {
	cellW := max((m.width-2)/domain.RowWidth-4, 10)
	selection := m.view.Selection()
	var (
		lines      []string
		cursorLine int
		index      int
	)
	for _, section := range m.view.Sections() {
		label := "Undated"
		if section.Key != domain.UndatedKey {
			label = section.Date.Format("Mon, 02 Jan 2006")
		}
		head := theme.Title.Render(label) + theme.Muted.Render(fmt.Sprintf("  %d", len(section.Entries)))
		if m.view.DateSelected(section.Key) {
			head += "  " + theme.Hot.Render("✓ all")
		}
		lines = append(lines, "", head)
		for _, row := range section.Rows {
			cells := make([]string, 0, len(row))
			for _, cell := range row {
				if cell.Placeholder {
					cells = append(cells, theme.CellPlaceholder.Width(cellW).Render(" \n "))
					continue
				}
				style := theme.Cell
				mark := "  "
				if selection.Contains(cell.Entry.ID) {
					style = theme.CellSelected
					mark = "● "
				}
				if index == m.cursor {
					style = style.BorderForeground(theme.Lavender)
					cursorLine = len(lines)
				}
				when := "--:--"
				if cell.Entry.HasTimestamp() {
					when = cell.Entry.Timestamp.In(m.view.Location()).Format("15:04")
				}
				cells = append(cells, style.Width(cellW).Render(mark+truncate(cell.Entry.ID, cellW-4)+"\n"+theme.Muted.Render(when)))
				index++
			}
			lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		}
	}
	content := strings.Join(lines, "\n")
	if cursorLine == 0 {
		return content, 0
	}
	// rows span several terminal lines
	return content, lipgloss.Height(strings.Join(lines[:cursorLine], "\n"))
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// order is the grid's visual order, which is what the cursor walks.
func (m Model) order() []string {
	var ids []string
	for _, section := range m.view.Sections() {
		ids = append(ids, section.IDs()...)
	}
	return ids
}

func (m Model) cursorSection() (domain.DateKey, bool) {
	index := 0
	for _, section := range m.view.Sections() {
		if m.cursor < index+len(section.Entries) {
			return section.Key, true
		}
		index += len(section.Entries)
	}
	return "", false
}

func (m *Model) clampCursor() {
	n := m.view.Len()
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func at(ids []string, i int) (string, bool) {
	if i < 0 || i >= len(ids) {
		return "", false
	}
	return ids[i], true
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n < 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func toEntries(in []collectiondto.EntryOutput) []domain.Entry {
	out := make([]domain.Entry, 0, len(in))
	for _, e := range in {
		out = append(out, domain.Entry{ID: e.ID, URL: e.URL, Timestamp: e.Timestamp, RawTimestamp: e.RawTimestamp, Folder: e.Folder})
	}
	return out
}

// ─── async commands ──────────────────────────────────────────────────────────

func (m Model) fetchCmd(token domain.LoadToken) tea.Cmd {
	port, ctx, kind, mount := m.port, m.ctx, m.kind, m.mount
	return func() tea.Msg {
		out, err := port.List(ctx, kind)
		return LoadedMsg{Kind: kind, Mount: mount, Token: token, Entries: out.Entries, Err: err}
	}
}

func (m Model) deleteCmd(ids []string, single bool) tea.Cmd {
	port, ctx, kind, mount := m.port, m.ctx, m.kind, m.mount
	return func() tea.Msg {
		if single {
			err := port.Delete(ctx, kind, ids[0])
			return DeletedMsg{Kind: kind, Mount: mount, IDs: ids, Single: true, Err: err}
		}
		out, err := port.DeleteBatch(ctx, kind, ids)
		return DeletedMsg{Kind: kind, Mount: mount, IDs: ids, Output: out, Err: err}
	}
}
