package domain

// Pager walks the flat entry order one page at a time. Moving past either
// end is a no-op.
type Pager struct {
	Index int
	Count int
}

func NewPager(index, count int) Pager {
	return Pager{Index: clamp(index, count), Count: count}
}

func (p Pager) Next() Pager {
	return NewPager(p.Index+1, p.Count)
}

func (p Pager) Prev() Pager {
	return NewPager(p.Index-1, p.Count)
}

func (p Pager) AtStart() bool { return p.Index == 0 }

func (p Pager) AtEnd() bool { return p.Count == 0 || p.Index == p.Count-1 }

func clamp(index, count int) int {
	if count <= 0 || index < 0 {
		return 0
	}
	if index >= count {
		return count - 1
	}
	return index
}
