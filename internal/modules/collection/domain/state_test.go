package domain_test

import (
	"errors"
	"testing"
	"time"

	"daing/internal/modules/collection/domain"
	apperrors "daing/internal/platform/errors"
)

func sampleEntries() []domain.Entry {
	day1 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	return []domain.Entry{
		{ID: "a", Timestamp: day2},
		{ID: "b", Timestamp: day2.Add(time.Hour)},
		{ID: "c", Timestamp: day1},
		{ID: "d", Timestamp: day1.Add(time.Hour)},
	}
}

func loadedView(t *testing.T) domain.View {
	t.Helper()
	v := domain.NewView(domain.KindHistory, time.UTC)
	v, token, err := v.BeginLoad()
	if err != nil {
		t.Fatalf("begin load: %v", err)
	}
	v, applied := v.ApplyLoaded(token, sampleEntries())
	if !applied {
		t.Fatalf("fresh load should apply")
	}
	return v
}

func TestLoadIgnoresStaleTokensAndUnmountedViews(t *testing.T) {
	t.Parallel()
	v := domain.NewView(domain.KindHistory, time.UTC)
	v, first, _ := v.BeginLoad()
	v, second, _ := v.BeginLoad()
	if first == second {
		t.Fatalf("tokens must differ")
	}
	if _, applied := v.ApplyLoaded(first, sampleEntries()); applied {
		t.Fatalf("superseded token must be ignored")
	}
	unmounted := v.Unmount()
	if _, applied := unmounted.ApplyLoaded(second, sampleEntries()); applied {
		t.Fatalf("result for an unmounted view must be ignored")
	}
	v, applied := v.ApplyLoaded(second, sampleEntries())
	if !applied || v.Phase() != domain.PhaseIdle || v.Len() != 4 {
		t.Fatalf("latest load should apply: phase=%s len=%d", v.Phase(), v.Len())
	}
	if _, _, err := unmounted.BeginLoad(); !errors.Is(err, apperrors.ErrViewClosed) {
		t.Fatalf("expected closed view error, got %v", err)
	}
}

func TestOpenAndPageAreClamped(t *testing.T) {
	t.Parallel()
	v := loadedView(t)
	v, err := v.Tap("a")
	if err != nil {
		t.Fatalf("tap in idle should open: %v", err)
	}
	if v.Phase() != domain.PhaseViewing {
		t.Fatalf("expected viewing, got %s", v.Phase())
	}
	v, _ = v.Prev()
	if cur, _ := v.Current(); cur.ID != "a" {
		t.Fatalf("prev past the first entry must be a no-op, got %s", cur.ID)
	}
	for i := 0; i < 10; i++ {
		v, _ = v.Next()
	}
	if cur, _ := v.Current(); cur.ID != "d" {
		t.Fatalf("next past the last entry must clamp, got %s", cur.ID)
	}
	v, err = v.Close()
	if err != nil || v.Phase() != domain.PhaseIdle {
		t.Fatalf("close should return to idle: %v", err)
	}
	if _, err := v.Open("missing"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSelectionToggleRoundTrip(t *testing.T) {
	t.Parallel()
	v := loadedView(t)
	v, err := v.LongPress("a")
	if err != nil {
		t.Fatalf("long press: %v", err)
	}
	if v.Phase() != domain.PhaseSelecting || !v.Selection().Equal(domain.NewSelection("a")) {
		t.Fatalf("long press should seed the selection with a")
	}

	before := v.Selection()
	v, _ = v.Tap("c")
	v, _ = v.Tap("c")
	if !v.Selection().Equal(before) {
		t.Fatalf("select then deselect must restore the set: %v", v.Selection().IDs())
	}

	v, _ = v.Tap("a")
	if v.Phase() != domain.PhaseIdle {
		t.Fatalf("deselecting the last id must exit selection mode, got %s", v.Phase())
	}
	if !v.Selection().Empty() {
		t.Fatalf("selection must be empty in idle")
	}
}

func TestToggleDateIsAPureToggle(t *testing.T) {
	t.Parallel()
	v := loadedView(t)
	v, _ = v.LongPress("a")

	key := domain.DateKey("2024-05-01")
	original := v.DateSelected(key)
	v, err := v.ToggleDate(key)
	if err != nil {
		t.Fatalf("toggle date: %v", err)
	}
	if !v.DateSelected(key) || !v.Selection().Contains("c") || !v.Selection().Contains("d") {
		t.Fatalf("first toggle should select the whole bucket: %v", v.Selection().IDs())
	}
	v, _ = v.ToggleDate(key)
	if v.DateSelected(key) != original || v.Selection().Contains("c") || v.Selection().Contains("d") {
		t.Fatalf("second toggle must restore the bucket: %v", v.Selection().IDs())
	}
	if !v.Selection().Contains("a") {
		t.Fatalf("other buckets must be untouched")
	}

	idle := loadedView(t)
	selecting, _ := idle.ToggleDate(key)
	if selecting.Phase() != domain.PhaseSelecting || selecting.Selection().Len() != 2 {
		t.Fatalf("toggling a date from idle should enter selection mode")
	}
	back, _ := selecting.ToggleDate(key)
	if back.Phase() != domain.PhaseIdle {
		t.Fatalf("toggling the only selected date off should exit selection mode")
	}
}

func TestBatchDeleteRemovesOnlyConfirmedIDs(t *testing.T) {
	t.Parallel()
	v := loadedView(t)
	v, _ = v.LongPress("a")
	v, _ = v.Tap("c")

	v, ids, err := v.BeginDelete()
	if err != nil {
		t.Fatalf("begin delete: %v", err)
	}
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "c" {
		t.Fatalf("unexpected ids %v", ids)
	}
	if _, _, err := v.BeginLoad(); !errors.Is(err, apperrors.ErrTransitionNotAllowed) {
		t.Fatalf("refresh during delete must be refused, got %v", err)
	}

	v, err = v.ApplyDeleted([]string{"a"}, []string{"c"})
	if err != nil {
		t.Fatalf("apply deleted: %v", err)
	}
	if v.Phase() != domain.PhaseIdle || v.Len() != 3 {
		t.Fatalf("expected idle with 3 entries, got %s/%d", v.Phase(), v.Len())
	}
	for _, entry := range v.Entries() {
		if entry.ID == "a" {
			t.Fatalf("a should be removed")
		}
	}
}

func TestSingleDeleteFailureKeepsViewer(t *testing.T) {
	t.Parallel()
	v := loadedView(t)
	v, _ = v.Open("b")
	v, ids, err := v.BeginDelete()
	if err != nil || len(ids) != 1 || ids[0] != "b" {
		t.Fatalf("begin delete: %v %v", ids, err)
	}
	v, _ = v.ApplyDeleted(nil, []string{"b"})
	cur, ok := v.Current()
	if !ok || cur.ID != "b" || v.Len() != 4 {
		t.Fatalf("failed delete must leave the entry visible in the viewer")
	}

	v, _, _ = v.BeginDelete()
	v, _ = v.ApplyDeleted([]string{"b"}, nil)
	if v.Phase() != domain.PhaseIdle || v.Len() != 3 {
		t.Fatalf("successful delete should return to idle without b")
	}
}

func TestRemoveDropsExactlyOne(t *testing.T) {
	t.Parallel()
	entries := sampleEntries()
	for _, target := range []string{"a", "b", "c", "d"} {
		out := domain.Remove(entries, target)
		if len(out) != len(entries)-1 {
			t.Fatalf("remove %s: expected %d entries, got %d", target, len(entries)-1, len(out))
		}
		if domain.IndexOf(out, target) >= 0 {
			t.Fatalf("remove %s: id still present", target)
		}
		kept := 0
		for _, entry := range entries {
			if entry.ID != target && domain.IndexOf(out, entry.ID) >= 0 {
				kept++
			}
		}
		if kept != len(entries)-1 {
			t.Fatalf("remove %s: other entries must be untouched", target)
		}
	}
}

func TestTransitionsRejectedOutsideTheirStates(t *testing.T) {
	t.Parallel()
	v := loadedView(t)
	if _, err := v.Next(); !errors.Is(err, apperrors.ErrTransitionNotAllowed) {
		t.Fatalf("paging from idle must be refused, got %v", err)
	}
	if _, _, err := v.BeginDelete(); !errors.Is(err, apperrors.ErrTransitionNotAllowed) {
		t.Fatalf("deleting from idle must be refused, got %v", err)
	}
	selecting, _ := v.LongPress("a")
	if _, err := selecting.Open("b"); !errors.Is(err, apperrors.ErrTransitionNotAllowed) {
		t.Fatalf("open from selection mode must be refused, got %v", err)
	}
}
