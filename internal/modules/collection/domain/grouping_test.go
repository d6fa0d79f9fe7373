package domain_test

import (
	"testing"
	"time"

	"daing/internal/modules/collection/domain"
)

func mustParse(t *testing.T, raw string) time.Time {
	t.Helper()
	ts, err := domain.ParseTimestamp(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return ts
}

func TestParseTimestampForms(t *testing.T) {
	t.Parallel()
	cases := map[string]time.Time{
		"2024-01-15T23:50:00":         time.Date(2024, 1, 15, 23, 50, 0, 0, time.UTC),
		"2024-01-15T23:50:00.123456":  time.Date(2024, 1, 15, 23, 50, 0, 123456000, time.UTC),
		"2024-01-15 23:50:00":         time.Date(2024, 1, 15, 23, 50, 0, 0, time.UTC),
		"2024-01-16T04:50:00Z":        time.Date(2024, 1, 16, 4, 50, 0, 0, time.UTC),
		"2024-01-16T04:50:00.5+00:00": time.Date(2024, 1, 16, 4, 50, 0, 500000000, time.UTC),
		"2024-01-15T18:50:00-05:00":   time.Date(2024, 1, 15, 23, 50, 0, 0, time.UTC),
		"2024-01-15":                  time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}
	for raw, want := range cases {
		got := mustParse(t, raw)
		if !got.Equal(want) {
			t.Fatalf("%q: got %s want %s", raw, got, want)
		}
	}
	if _, err := domain.ParseTimestamp("yesterday"); err == nil {
		t.Fatalf("expected garbage timestamp to fail")
	}
	if _, err := domain.ParseTimestamp("  "); err == nil {
		t.Fatalf("expected empty timestamp to fail")
	}
}

func TestGroupByLocalDateUsesLocalCalendarDay(t *testing.T) {
	t.Parallel()
	est := time.FixedZone("UTC-5", -5*3600)
	entries := []domain.Entry{
		{ID: "before-midnight", Timestamp: mustParse(t, "2024-01-15T23:50:00")},
		{ID: "after-midnight", Timestamp: mustParse(t, "2024-01-16T00:10:00")},
	}
	if entries[0].Timestamp.Format("2006-01-02") == entries[1].Timestamp.Format("2006-01-02") {
		t.Fatalf("fixture should straddle the UTC date boundary")
	}

	sections := domain.GroupByLocalDate(entries, est, domain.RowWidth)
	if len(sections) != 1 {
		t.Fatalf("expected one local-date bucket, got %d", len(sections))
	}
	if sections[0].Key != "2024-01-15" {
		t.Fatalf("expected bucket 2024-01-15, got %s", sections[0].Key)
	}
	if sections[0].Entries[0].ID != "after-midnight" {
		t.Fatalf("entries inside a bucket should be newest first")
	}

	utcSections := domain.GroupByLocalDate(entries, time.UTC, domain.RowWidth)
	if len(utcSections) != 2 || utcSections[0].Key != "2024-01-16" {
		t.Fatalf("unexpected utc grouping: %+v", utcSections)
	}
}

func TestGroupByLocalDateRowsArePadded(t *testing.T) {
	t.Parallel()
	day := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	var entries []domain.Entry
	for i, id := range []string{"a", "b", "c", "d"} {
		entries = append(entries, domain.Entry{ID: id, Timestamp: day.Add(time.Duration(i) * time.Minute)})
	}
	entries = append(entries, domain.Entry{ID: "undated"})

	sections := domain.GroupByLocalDate(entries, time.UTC, 3)
	if len(sections) != 2 {
		t.Fatalf("expected dated and undated sections, got %d", len(sections))
	}
	dated := sections[0]
	if len(dated.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(dated.Rows))
	}
	for _, row := range dated.Rows {
		if len(row) != 3 {
			t.Fatalf("rows must be rectangular, got width %d", len(row))
		}
	}
	last := dated.Rows[1]
	if last[0].Placeholder || !last[1].Placeholder || !last[2].Placeholder {
		t.Fatalf("expected one entry and two placeholders, got %+v", last)
	}
	if sections[1].Key != domain.UndatedKey {
		t.Fatalf("undated section should sort last")
	}
}
