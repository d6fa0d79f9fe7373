package domain

import (
	"fmt"
	"time"

	apperrors "daing/internal/platform/errors"
)

type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseLoading   Phase = "loading"
	PhaseViewing   Phase = "viewing"
	PhaseSelecting Phase = "selecting"
	PhaseDeleting  Phase = "deleting"
)

// LoadToken identifies one fetch. Only the latest issued token may apply its
// result.
type LoadToken uint64

// State is the closed set of browse states: Idle, Loading, ViewingSingle,
// SelectionMode and Deleting.
type State interface {
	Phase() Phase
	isState()
}

type Idle struct{}

type Loading struct {
	Token LoadToken
}

type ViewingSingle struct {
	Pager Pager
}

type SelectionMode struct {
	Selected Selection
}

// Deleting remembers where it came from so a failed single delete can put
// the viewer back on the same entry.
type Deleting struct {
	IDs  []string
	From State
}

func (Idle) Phase() Phase          { return PhaseIdle }
func (Loading) Phase() Phase       { return PhaseLoading }
func (ViewingSingle) Phase() Phase { return PhaseViewing }
func (SelectionMode) Phase() Phase { return PhaseSelecting }
func (Deleting) Phase() Phase      { return PhaseDeleting }

func (Idle) isState()          {}
func (Loading) isState()       {}
func (ViewingSingle) isState() {}
func (SelectionMode) isState() {}
func (Deleting) isState()      {}

// View is the local copy of one remote collection plus its browse state.
// Reducers never mutate the receiver; each returns the next View.
type View struct {
	kind    Kind
	loc     *time.Location
	entries []Entry
	state   State
	issued  LoadToken
	closed  bool
}

func NewView(kind Kind, loc *time.Location) View {
	if loc == nil {
		loc = time.Local
	}
	return View{kind: kind, loc: loc, state: Idle{}}
}

func (v View) Kind() Kind   { return v.kind }
func (v View) State() State { return v.state }
func (v View) Phase() Phase { return v.state.Phase() }
func (v View) Closed() bool { return v.closed }

// Location is the zone entries are grouped and shown in.
func (v View) Location() *time.Location { return v.loc }
func (v View) Len() int     { return len(v.entries) }

func (v View) Entries() []Entry {
	return append([]Entry(nil), v.entries...)
}

func (v View) Sections() []Section {
	return GroupByLocalDate(v.entries, v.loc, RowWidth)
}

// Selection is empty outside SelectionMode.
func (v View) Selection() Selection {
	if s, ok := v.state.(SelectionMode); ok {
		return s.Selected
	}
	return Selection{}
}

// Current is the entry shown by the single viewer.
func (v View) Current() (Entry, bool) {
	s, ok := v.state.(ViewingSingle)
	if !ok || s.Pager.Index >= len(v.entries) {
		return Entry{}, false
	}
	return v.entries[s.Pager.Index], true
}

// DateSelected reports whether every entry of the bucket is selected. It is
// derived from the selection each time, never stored.
func (v View) DateSelected(key DateKey) bool {
	section, ok := SectionFor(v.Sections(), key)
	if !ok {
		return false
	}
	return v.Selection().ContainsAll(section.IDs())
}

// BeginLoad starts a mount or refresh fetch. A load already in flight is
// superseded. Refreshing while a delete is running is refused so the two
// never race.
func (v View) BeginLoad() (View, LoadToken, error) {
	if v.closed {
		return v, 0, apperrors.ErrViewClosed
	}
	if _, deleting := v.state.(Deleting); deleting {
		return v, 0, fmt.Errorf("%w: refresh while deleting", apperrors.ErrTransitionNotAllowed)
	}
	v.issued++
	v.state = Loading{Token: v.issued}
	return v, v.issued, nil
}

// ApplyLoaded installs a fetch result. Results for an unmounted view, for a
// superseded token or arriving outside Loading are dropped and reported as
// not applied.
func (v View) ApplyLoaded(token LoadToken, entries []Entry) (View, bool) {
	if v.closed {
		return v, false
	}
	loading, ok := v.state.(Loading)
	if !ok || loading.Token != token {
		return v, false
	}
	v.entries = append([]Entry(nil), entries...)
	v.state = Idle{}
	return v, true
}

// Open shows one entry in the paged viewer.
func (v View) Open(id string) (View, error) {
	if err := v.require(PhaseIdle, PhaseViewing); err != nil {
		return v, err
	}
	index := IndexOf(v.entries, id)
	if index < 0 {
		return v, fmt.Errorf("entry %s: %w", id, apperrors.ErrNotFound)
	}
	v.state = ViewingSingle{Pager: NewPager(index, len(v.entries))}
	return v, nil
}

// LongPress enters selection mode seeded with id. Inside selection mode it
// behaves like Tap.
func (v View) LongPress(id string) (View, error) {
	if _, selecting := v.state.(SelectionMode); selecting {
		return v.Tap(id)
	}
	if err := v.require(PhaseIdle, PhaseViewing); err != nil {
		return v, err
	}
	if IndexOf(v.entries, id) < 0 {
		return v, fmt.Errorf("entry %s: %w", id, apperrors.ErrNotFound)
	}
	v.state = SelectionMode{Selected: NewSelection(id)}
	return v, nil
}

// Tap toggles id while selecting, leaving selection mode once nothing is
// selected. Outside selection mode a tap opens the entry.
func (v View) Tap(id string) (View, error) {
	switch s := v.state.(type) {
	case SelectionMode:
		if IndexOf(v.entries, id) < 0 {
			return v, fmt.Errorf("entry %s: %w", id, apperrors.ErrNotFound)
		}
		return v.withSelection(s.Selected.Toggle(id)), nil
	case Idle:
		return v.Open(id)
	default:
		return v, v.notAllowed("tap")
	}
}

// ToggleDate selects every entry of one date bucket, or deselects them all
// when they are all selected already.
func (v View) ToggleDate(key DateKey) (View, error) {
	if err := v.require(PhaseIdle, PhaseSelecting); err != nil {
		return v, err
	}
	section, ok := SectionFor(v.Sections(), key)
	if !ok || len(section.Entries) == 0 {
		return v, fmt.Errorf("date %q: %w", key, apperrors.ErrNotFound)
	}
	return v.withSelection(v.Selection().ToggleAll(section.IDs())), nil
}

// BeginDelete moves to Deleting and returns the ids to delete: the whole
// selection, or the entry on screen in the viewer.
func (v View) BeginDelete() (View, []string, error) {
	if v.closed {
		return v, nil, apperrors.ErrViewClosed
	}
	var ids []string
	switch s := v.state.(type) {
	case SelectionMode:
		ids = s.Selected.IDs()
	case ViewingSingle:
		entry, ok := v.Current()
		if !ok {
			return v, nil, v.notAllowed("delete")
		}
		ids = []string{entry.ID}
	default:
		return v, nil, v.notAllowed("delete")
	}
	v.state = Deleting{IDs: ids, From: v.state}
	return v, append([]string(nil), ids...), nil
}

// ApplyDeleted removes exactly the confirmed ids and returns to Idle. When a
// single-entry delete failed the viewer reopens on that entry so the user can
// retry.
func (v View) ApplyDeleted(deleted, failed []string) (View, error) {
	if v.closed {
		return v, apperrors.ErrViewClosed
	}
	deleting, ok := v.state.(Deleting)
	if !ok {
		return v, v.notAllowed("finish delete")
	}
	v.entries = Remove(v.entries, deleted...)
	v.state = Idle{}
	if _, single := deleting.From.(ViewingSingle); single && len(failed) > 0 {
		if index := IndexOf(v.entries, failed[0]); index >= 0 {
			v.state = ViewingSingle{Pager: NewPager(index, len(v.entries))}
		}
	}
	return v, nil
}

// Close leaves the viewer, or abandons the selection.
func (v View) Close() (View, error) {
	if err := v.require(PhaseViewing, PhaseSelecting); err != nil {
		return v, err
	}
	v.state = Idle{}
	return v, nil
}

func (v View) Next() (View, error) {
	s, ok := v.state.(ViewingSingle)
	if !ok {
		return v, v.notAllowed("page")
	}
	v.state = ViewingSingle{Pager: s.Pager.Next()}
	return v, nil
}

func (v View) Prev() (View, error) {
	s, ok := v.state.(ViewingSingle)
	if !ok {
		return v, v.notAllowed("page")
	}
	v.state = ViewingSingle{Pager: s.Pager.Prev()}
	return v, nil
}

// Unmount closes the view; later fetch and delete results are ignored.
func (v View) Unmount() View {
	v.closed = true
	v.state = Idle{}
	return v
}

func (v View) withSelection(next Selection) View {
	if next.Empty() {
		v.state = Idle{}
		return v
	}
	v.state = SelectionMode{Selected: next}
	return v
}

func (v View) require(phases ...Phase) error {
	if v.closed {
		return apperrors.ErrViewClosed
	}
	current := v.state.Phase()
	for _, phase := range phases {
		if current == phase {
			return nil
		}
	}
	return fmt.Errorf("%w: from %s", apperrors.ErrTransitionNotAllowed, current)
}

func (v View) notAllowed(action string) error {
	if v.closed {
		return apperrors.ErrViewClosed
	}
	return fmt.Errorf("%w: %s from %s", apperrors.ErrTransitionNotAllowed, action, v.state.Phase())
}
