package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"didathing/internal/modules/preferences/domain"
	prefsout "didathing/internal/modules/preferences/port/out"
)

type YAMLPreferenceStore struct {
	path string
}

func NewYAMLPreferenceStore(path string) prefsout.PreferenceStore {
	return &YAMLPreferenceStore{path: path}
}

func (s *YAMLPreferenceStore) Load(_ context.Context) (domain.Preferences, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Defaults(), nil
		}
		return domain.Preferences{}, fmt.Errorf("read preferences: %w", err)
	}
	prefs := domain.Defaults()
	if err := yaml.Unmarshal(payload, &prefs); err != nil {
		return domain.Preferences{}, fmt.Errorf("decode preferences %s: %w", s.path, err)
	}
	return prefs.Normalize(), nil
}

func (s *YAMLPreferenceStore) Save(_ context.Context, prefs domain.Preferences) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}
	payload, err := yaml.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	if err := os.WriteFile(s.path, payload, 0o644); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	return nil
}

func (s *YAMLPreferenceStore) Remove(_ context.Context) error {
	if err := os.Remove(s.path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("remove preferences: %w", err)
	}
	return nil
}
