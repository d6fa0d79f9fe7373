package domain

import (
	"fmt"
	"strings"
	"time"
)

// Kind names one of the backend's list-backed collections. Both share the
// same entry contract and differ only by endpoint.
type Kind string

const (
	KindHistory     Kind = "history"
	KindAutoDataset Kind = "auto-dataset"
)

func (k Kind) Validate() error {
	switch k {
	case KindHistory, KindAutoDataset:
		return nil
	default:
		return fmt.Errorf("unsupported collection %q", string(k))
	}
}

func (k Kind) Label() string {
	switch k {
	case KindHistory:
		return "History"
	case KindAutoDataset:
		return "Auto dataset"
	default:
		return string(k)
	}
}

// Entry is one server-assigned item. The client never edits an entry; it
// only reads and deletes.
type Entry struct {
	ID           string
	URL          string
	Timestamp    time.Time
	RawTimestamp string
	Folder       string
}

func (e Entry) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("entry id is required")
	}
	return nil
}

// HasTimestamp is false when the backend sent no parseable timestamp.
func (e Entry) HasTimestamp() bool {
	return !e.Timestamp.IsZero()
}

var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp accepts ISO-8601 timestamps with or without a zone offset
// and with or without fractional seconds. The backend writes naive
// timestamps in UTC, so a timestamp without a zone is read as UTC.
func ParseTimestamp(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("timestamp is empty")
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

// Remove returns entries without any whose id is in ids. Order is kept and
// every entry with a matching id is dropped.
func Remove(entries []Entry, ids ...string) []Entry {
	if len(ids) == 0 {
		return append([]Entry(nil), entries...)
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	out := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if _, ok := drop[entry.ID]; ok {
			continue
		}
		out = append(out, entry)
	}
	return out
}

func IndexOf(entries []Entry, id string) int {
	for i, entry := range entries {
		if entry.ID == id {
			return i
		}
	}
	return -1
}
