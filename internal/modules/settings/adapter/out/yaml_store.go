package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"daing/internal/modules/settings/domain"
	settingsout "daing/internal/modules/settings/port/out"
	"daing/internal/platform/config"
)

type YAMLStore struct {
	path string
	mu   sync.Mutex
}

func NewYAMLStore(path string) settingsout.Store {
	return &YAMLStore{path: path}
}

func (s *YAMLStore) Path() string { return s.path }

func (s *YAMLStore) Load(_ context.Context) (domain.Settings, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, found, err := s.read()
	if err != nil || !found {
		return domain.Settings{}, found, err
	}
	out := domain.Settings{}
	if v, ok := doc[config.KeyServerURL].(string); ok {
		out.ServerURL = v
	}
	if v, ok := doc[config.KeyAutoSaveDataset].(bool); ok {
		out.AutoSaveDataset = v
	}
	return out, true, nil
}

// Save rewrites the whole file through a temporary sibling so a reader never
// sees a partial document. Keys it does not own, such as timeouts, are kept.
func (s *YAMLStore) Save(_ context.Context, settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, _, err := s.read()
	if err != nil {
		return err
	}
	doc[config.KeyServerURL] = settings.ServerURL
	doc[config.KeyAutoSaveDataset] = settings.AutoSaveDataset

	payload, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("create settings temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

func (s *YAMLStore) read() (map[string]any, bool, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, false, nil
		}
		return nil, false, fmt.Errorf("read settings: %w", err)
	}
	doc := map[string]any{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, false, fmt.Errorf("decode settings %s: %w", s.path, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, true, nil
}
