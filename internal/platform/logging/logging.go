// Package logging builds the apex/log logger shared by every component.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/text"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// New returns a logger writing to w in the given format at the given level.
func New(level, format string, w io.Writer) (*log.Logger, error) {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	var handler log.Handler
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		handler = text.New(w)
	case FormatJSON:
		handler = json.New(w)
	default:
		return nil, fmt.Errorf("unsupported log format %q", format)
	}
	return &log.Logger{Handler: handler, Level: lvl}, nil
}

// NewFile appends to path, creating its directory. The TUI owns the terminal
// while it runs, so its logs go here instead of stderr.
func NewFile(level, format, path string) (*log.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger, err := New(level, format, f)
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return logger, f, nil
}

// Discard drops everything; used by tests and by callers without a logger.
func Discard() *log.Logger {
	return &log.Logger{Handler: discard.Default, Level: log.FatalLevel}
}
