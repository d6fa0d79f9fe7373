package logging_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/apex/log"

	"daing/internal/platform/logging"
)

func TestNewTextAndJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger, err := logging.New("info", "text", &buf)
	if err != nil {
		t.Fatalf("new text logger: %v", err)
	}
	logger.WithFields(log.Fields{"endpoint": "http://h/history"}).Debug("hidden")
	logger.WithFields(log.Fields{"endpoint": "http://h/history"}).Info("fetched")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "fetched") {
		t.Fatalf("unexpected text output: %q", buf.String())
	}

	buf.Reset()
	logger, err = logging.New("debug", "json", &buf)
	if err != nil {
		t.Fatalf("new json logger: %v", err)
	}
	logger.Info("hello")
	if !strings.Contains(buf.String(), `"message":"hello"`) {
		t.Fatalf("expected json output, got %q", buf.String())
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	t.Parallel()
	if _, err := logging.New("loud", "text", &bytes.Buffer{}); err == nil {
		t.Fatalf("expected level error")
	}
	if _, err := logging.New("info", "xml", &bytes.Buffer{}); err == nil {
		t.Fatalf("expected format error")
	}
}

func TestNewFileCreatesDirectory(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "logs", "daing.log")
	logger, closer, err := logging.NewFile("info", "text", path)
	if err != nil {
		t.Fatalf("new file logger: %v", err)
	}
	defer func() { _ = closer.Close() }()
	logger.Info("started")
}
