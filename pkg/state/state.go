package state

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/yurifrl/finsight/pkg/analytics"
)

// State is what the CLI keeps between runs.
type State struct {
	LastCushion *float64 `yaml:"last_cushion,omitempty"`
}

// Load reads path. A missing file is an empty state.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var s State
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	return &s, nil
}

func (s *State) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create state dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

// Restore seeds session with the persisted cushion.
func (s *State) Restore(session *analytics.Session) {
	if s.LastCushion != nil {
		session.SetLastCushion(*s.LastCushion)
	}
}

// Capture records the cushion session carries now.
func (s *State) Capture(session *analytics.Session) {
	if v, ok := session.LastCushion(); ok {
		s.LastCushion = &v
	} else {
		s.LastCushion = nil
	}
}
