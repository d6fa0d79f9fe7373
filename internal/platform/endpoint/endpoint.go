// Package endpoint derives backend URLs from the configured server base URL.
package endpoint

import (
	"net/url"
	"strings"
)

const (
	analyzePath          = "/analyze"
	uploadDatasetPath    = "/upload-dataset"
	historyPath          = "/history"
	autoDatasetPath      = "/auto-dataset"
	analyticsSummaryPath = "/analytics/summary"

	autoSaveQuery = "auto_save_dataset=true"
)

// NormalizeBaseURL trims surrounding whitespace and trailing slashes until
// neither remains, so normalizing an already normalized value is a no-op.
func NormalizeBaseURL(raw string) string {
	s := raw
	for {
		next := strings.TrimRight(strings.TrimSpace(s), "/")
		if next == s {
			return s
		}
		s = next
	}
}

// Endpoints builds every backend URL by suffix concatenation on one base.
type Endpoints struct {
	base string
}

func New(baseURL string) Endpoints {
	return Endpoints{base: NormalizeBaseURL(baseURL)}
}

func (e Endpoints) Base() string { return e.base }

// Analyze returns the grading endpoint, asking the backend to keep
// high-confidence results as dataset samples when autoSave is set.
func (e Endpoints) Analyze(autoSave bool) string {
	if autoSave {
		return e.base + analyzePath + "?" + autoSaveQuery
	}
	return e.base + analyzePath
}

func (e Endpoints) UploadDataset() string    { return e.base + uploadDatasetPath }
func (e Endpoints) History() string          { return e.base + historyPath }
func (e Endpoints) AutoDataset() string      { return e.base + autoDatasetPath }
func (e Endpoints) AnalyticsSummary() string { return e.base + analyticsSummaryPath }

func (e Endpoints) HistoryEntry(id string) string     { return Entry(e.History(), id) }
func (e Endpoints) AutoDatasetEntry(id string) string { return Entry(e.AutoDataset(), id) }

// Entry appends a percent-encoded id as one path segment of a collection URL.
func Entry(collectionURL, id string) string {
	return NormalizeBaseURL(collectionURL) + "/" + url.PathEscape(id)
}
