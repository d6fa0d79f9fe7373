package domain

import (
	"sort"
	"time"
)

// RowWidth is the number of cells per grid row.
const RowWidth = 3

const dateKeyLayout = "2006-01-02"

// UndatedKey buckets entries whose timestamp could not be parsed.
const UndatedKey DateKey = ""

// DateKey is a local calendar date in YYYY-MM-DD form.
type DateKey string

// DateKeyOf uses the year, month and day of t as seen in loc, never the
// UTC date, so a late-evening scan stays on the day the user took it.
func DateKeyOf(t time.Time, loc *time.Location) DateKey {
	if t.IsZero() {
		return UndatedKey
	}
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return DateKey(time.Date(y, m, d, 0, 0, 0, 0, loc).Format(dateKeyLayout))
}

// Cell is one grid slot; placeholders pad the last row of a section.
type Cell struct {
	Entry       Entry
	Placeholder bool
}

type Section struct {
	Key     DateKey
	Date    time.Time
	Entries []Entry
	Rows    [][]Cell
}

func (s Section) IDs() []string {
	out := make([]string, 0, len(s.Entries))
	for _, entry := range s.Entries {
		out = append(out, entry.ID)
	}
	return out
}

// GroupByLocalDate buckets entries by local calendar date, newest date first,
// and lays each bucket out in rows of width cells. Inside a bucket entries
// are newest first; ties keep their input order. Undated entries form a
// trailing section.
func GroupByLocalDate(entries []Entry, loc *time.Location, width int) []Section {
	if width < 1 {
		width = RowWidth
	}
	if loc == nil {
		loc = time.Local
	}
	buckets := make(map[DateKey]*Section)
	order := make([]DateKey, 0)
	for _, entry := range entries {
		key := DateKeyOf(entry.Timestamp, loc)
		section, ok := buckets[key]
		if !ok {
			section = &Section{Key: key}
			if key != UndatedKey {
				y, m, d := entry.Timestamp.In(loc).Date()
				section.Date = time.Date(y, m, d, 0, 0, 0, 0, loc)
			}
			buckets[key] = section
			order = append(order, key)
		}
		section.Entries = append(section.Entries, entry)
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i] == UndatedKey || order[j] == UndatedKey {
			return order[j] == UndatedKey && order[i] != UndatedKey
		}
		return order[i] > order[j]
	})

	out := make([]Section, 0, len(order))
	for _, key := range order {
		section := buckets[key]
		sort.SliceStable(section.Entries, func(i, j int) bool {
			return section.Entries[i].Timestamp.After(section.Entries[j].Timestamp)
		})
		section.Rows = chunk(section.Entries, width)
		out = append(out, *section)
	}
	return out
}

func chunk(entries []Entry, width int) [][]Cell {
	rows := make([][]Cell, 0, (len(entries)+width-1)/width)
	for start := 0; start < len(entries); start += width {
		row := make([]Cell, 0, width)
		for i := start; i < start+width; i++ {
			if i < len(entries) {
				row = append(row, Cell{Entry: entries[i]})
				continue
			}
			row = append(row, Cell{Placeholder: true})
		}
		rows = append(rows, row)
	}
	return rows
}

// SectionFor returns the section with key, if present.
func SectionFor(sections []Section, key DateKey) (Section, bool) {
	for _, section := range sections {
		if section.Key == key {
			return section, true
		}
	}
	return Section{}, false
}
