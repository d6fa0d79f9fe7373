package dto

import "time"

type ListInput struct {
	Kind string
}

type DeleteInput struct {
	Kind string
	ID   string
}

type DeleteBatchInput struct {
	Kind string
	IDs  []string
}

type EntryOutput struct {
	ID           string
	URL          string
	Timestamp    time.Time
	RawTimestamp string
	Folder       string
}

type CellOutput struct {
	Entry       EntryOutput
	Placeholder bool
}

type SectionOutput struct {
	Key   string
	Date  time.Time
	Count int
	Rows  [][]CellOutput
}

type CollectionOutput struct {
	Kind     string
	Entries  []EntryOutput
	Sections []SectionOutput
}

type DeleteFailure struct {
	ID  string
	Err error
}

// DeleteBatchOutput lists per-id outcomes. When any delete failed the
// collection is fetched again and Entries holds the server's current copy.
type DeleteBatchOutput struct {
	Deleted    []string
	Failed     []DeleteFailure
	Reconciled bool
	Entries    []EntryOutput
}
