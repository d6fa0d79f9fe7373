package collection

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"daing/internal/modules/collection/domain"
	collectiondto "daing/internal/modules/collection/dto"
)

type fakePort struct {
	entries        []collectiondto.EntryOutput
	failIDs        map[string]bool
	reconcileFails bool
	batchIDs       []string
	singleIDs      []string
}

func (f *fakePort) List(context.Context, string) (collectiondto.CollectionOutput, error) {
	return collectiondto.CollectionOutput{Entries: f.entries}, nil
}

func (f *fakePort) Delete(_ context.Context, _ string, id string) error {
	f.singleIDs = append(f.singleIDs, id)
	if f.failIDs[id] {
		return errors.New("connection refused")
	}
	return nil
}

func (f *fakePort) DeleteBatch(_ context.Context, _ string, ids []string) (collectiondto.DeleteBatchOutput, error) {
	f.batchIDs = append(f.batchIDs, ids...)
	out := collectiondto.DeleteBatchOutput{}
	var firstErr error
	for _, id := range ids {
		if f.failIDs[id] {
			err := errors.New("boom")
			out.Failed = append(out.Failed, collectiondto.DeleteFailure{ID: id, Err: err})
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		out.Deleted = append(out.Deleted, id)
	}
	if firstErr != nil && len(out.Deleted) > 0 && !f.reconcileFails {
		out.Reconciled = true
		for _, e := range f.entries {
			if !contains(out.Deleted, e.ID) {
				out.Entries = append(out.Entries, e)
			}
		}
	}
	return out, firstErr
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run feeds msg to the model and then every message its commands produce,
// skipping spinner ticks.
func run(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	var cmd tea.Cmd
	m, cmd = m.Update(msg)
	for cmd != nil {
		next := cmd()
		if next == nil {
			return m
		}
		switch next.(type) {
		case LoadedMsg, DeletedMsg, refreshMsg:
		default:
			return m
		}
		m, cmd = m.Update(next)
	}
	return m
}

func loaded(t *testing.T, port *fakePort) Model {
	t.Helper()
	m := New(port, "history", "History", "http://10.0.0.5:8000", time.UTC, 1)
	m = run(t, m, tea.WindowSizeMsg{Width: 90, Height: 30})
	m = run(t, m, m.Refresh()())
	if m.Phase() != domain.PhaseIdle || m.view.Len() != len(port.entries) {
		t.Fatalf("expected idle with entries, got %s/%d", m.Phase(), m.view.Len())
	}
	return m
}

func sample() []collectiondto.EntryOutput {
	day := time.Date(2024, 1, 16, 9, 0, 0, 0, time.UTC)
	return []collectiondto.EntryOutput{
		{ID: "a", Timestamp: day.Add(2 * time.Hour)},
		{ID: "b", Timestamp: day.Add(time.Hour)},
		{ID: "c", Timestamp: day.Add(-24 * time.Hour)},
	}
}

func TestBatchDeleteReconcilesPartialFailure(t *testing.T) {
	t.Parallel()
	port := &fakePort{entries: sample(), failIDs: map[string]bool{"b": true}}
	m := loaded(t, port)

	m = run(t, m, key("a"))
	if m.Phase() != domain.PhaseSelecting || m.view.Selection().Len() != 2 {
		t.Fatalf("select-day should select the newest day, got %d", m.view.Selection().Len())
	}
	m = run(t, m, key("x"))
	if !m.confirm {
		t.Fatalf("delete should ask for confirmation")
	}
	m = run(t, m, key("y"))

	if len(port.batchIDs) != 2 {
		t.Fatalf("expected one batch of two, got %v", port.batchIDs)
	}
	if m.Phase() != domain.PhaseIdle || !m.alert {
		t.Fatalf("expected idle with alert, got %s alert=%v", m.Phase(), m.alert)
	}
	ids := m.order()
	if len(ids) != 2 || ids[0] != "b" || ids[1] != "c" {
		t.Fatalf("reconciled entries should keep the failed one, got %v", ids)
	}
}

func TestBatchDeleteWithoutReconcileRemovesOnlyConfirmed(t *testing.T) {
	t.Parallel()
	port := &fakePort{entries: sample(), failIDs: map[string]bool{"b": true}, reconcileFails: true}
	m := loaded(t, port)

	m = run(t, m, key("a"))
	m = run(t, m, key("x"))
	m = run(t, m, key("y"))

	if m.Phase() != domain.PhaseIdle || !m.alert {
		t.Fatalf("expected idle with alert, got %s alert=%v", m.Phase(), m.alert)
	}
	ids := m.order()
	if len(ids) != 2 || ids[0] != "b" || ids[1] != "c" {
		t.Fatalf("only the confirmed delete may leave the grid, got %v", ids)
	}
}

func TestSingleDeleteFailureKeepsViewerOpen(t *testing.T) {
	t.Parallel()
	port := &fakePort{entries: sample(), failIDs: map[string]bool{"a": true}}
	m := loaded(t, port)

	m = run(t, m, key("enter"))
	if m.Phase() != domain.PhaseViewing {
		t.Fatalf("enter should open the viewer, got %s", m.Phase())
	}
	m = run(t, m, key("x"))
	m = run(t, m, key("y"))
	if len(port.singleIDs) != 1 || port.singleIDs[0] != "a" {
		t.Fatalf("expected a single delete of a, got %v", port.singleIDs)
	}
	current, ok := m.view.Current()
	if m.Phase() != domain.PhaseViewing || !ok || current.ID != "a" || !m.alert {
		t.Fatalf("failed delete should leave entry a on screen, got %s %+v", m.Phase(), current)
	}
	if m.view.Len() != 3 {
		t.Fatalf("no entry should be removed, got %d", m.view.Len())
	}
}

func TestStaleResultsAreIgnored(t *testing.T) {
	t.Parallel()
	port := &fakePort{entries: sample()}
	m := loaded(t, port)

	stale := LoadedMsg{Kind: "history", Mount: 0, Token: 99}
	m, _ = m.Update(stale)
	if m.view.Len() != 3 {
		t.Fatalf("result from another mount must be ignored")
	}
	m = m.Unmount()
	m, _ = m.Update(DeletedMsg{Kind: "history", Mount: 1, IDs: []string{"a"}, Single: true})
	if m.view.Len() != 3 {
		t.Fatalf("unmounted view must ignore late deletes")
	}
}

func TestLongPressTapExitsSelection(t *testing.T) {
	t.Parallel()
	m := loaded(t, &fakePort{entries: sample()})
	m = run(t, m, key("space"))
	m = run(t, m, key("right"))
	m = run(t, m, key("enter"))
	if m.view.Selection().Len() != 2 {
		t.Fatalf("expected two selected, got %d", m.view.Selection().Len())
	}
	m = run(t, m, key("enter"))
	m = run(t, m, key("left"))
	m = run(t, m, key("enter"))
	if m.Phase() != domain.PhaseIdle {
		t.Fatalf("deselecting the last entry should exit selection, got %s", m.Phase())
	}
	if m.View() == "" {
		t.Fatalf("view should render")
	}
}

func TestTimesShownInViewZone(t *testing.T) {
	t.Parallel()
	zone := time.FixedZone("UTC-5", -5*3600)
	port := &fakePort{entries: []collectiondto.EntryOutput{
		{ID: "late", Timestamp: time.Date(2024, 1, 16, 3, 30, 0, 0, time.UTC)},
		{ID: "early", Timestamp: time.Date(2024, 1, 16, 1, 15, 0, 0, time.UTC)},
	}}
	m := New(port, "history", "History", "http://10.0.0.5:8000", zone, 1)
	m = run(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m = run(t, m, m.Refresh()())

	grid := m.View()
	if !strings.Contains(grid, "Mon, 15 Jan 2024") || !strings.Contains(grid, "22:30") || strings.Contains(grid, "03:30") {
		t.Fatalf("section and cell times should both use the view zone:\n%s", grid)
	}

	m = run(t, m, key("enter"))
	viewer := m.View()
	if !strings.Contains(viewer, "15 Jan 2024 22:30") || !strings.Contains(viewer, "▶") || strings.Contains(viewer, "◀") {
		t.Fatalf("viewer should show the first entry in the view zone with a next marker:\n%s", viewer)
	}
}
