package domain

import "sort"

// Selection is an immutable set of entry ids. Every operation returns a new
// value; the zero value is the empty set.
type Selection struct {
	ids map[string]struct{}
}

func NewSelection(ids ...string) Selection {
	s := Selection{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

func (s Selection) Len() int { return len(s.ids) }

func (s Selection) Empty() bool { return len(s.ids) == 0 }

func (s Selection) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// IDs returns the members in sorted order.
func (s Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s Selection) With(ids ...string) Selection {
	next := s.clone()
	for _, id := range ids {
		next.ids[id] = struct{}{}
	}
	return next
}

func (s Selection) Without(ids ...string) Selection {
	next := s.clone()
	for _, id := range ids {
		delete(next.ids, id)
	}
	return next
}

func (s Selection) Toggle(id string) Selection {
	if s.Contains(id) {
		return s.Without(id)
	}
	return s.With(id)
}

// ContainsAll is false for an empty ids list.
func (s Selection) ContainsAll(ids []string) bool {
	if len(ids) == 0 {
		return false
	}
	for _, id := range ids {
		if !s.Contains(id) {
			return false
		}
	}
	return true
}

// ToggleAll deselects every id when all are already selected and selects
// every id otherwise.
func (s Selection) ToggleAll(ids []string) Selection {
	if s.ContainsAll(ids) {
		return s.Without(ids...)
	}
	return s.With(ids...)
}

func (s Selection) Equal(other Selection) bool {
	if s.Len() != other.Len() {
		return false
	}
	for id := range s.ids {
		if !other.Contains(id) {
			return false
		}
	}
	return true
}

func (s Selection) clone() Selection {
	next := Selection{ids: make(map[string]struct{}, len(s.ids)+1)}
	for id := range s.ids {
		next.ids[id] = struct{}{}
	}
	return next
}
