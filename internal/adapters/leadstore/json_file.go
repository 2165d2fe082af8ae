package leadstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/cold-outreach/internal/core"
)

// JSONFile persists the lead dataset as a single JSON snapshot. Writes
// go through a temp file and rename so a crash mid-write never leaves a
// truncated snapshot behind.
type JSONFile struct {
	path string
}

// NewJSONFile creates a snapshot persister for the given path
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Load reads the snapshot. A missing file yields an empty dataset.
func (f *JSONFile) Load() ([]*core.Lead, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read lead snapshot: %w", err)
	}

	var leads []*core.Lead
	if err := json.Unmarshal(data, &leads); err != nil {
		return nil, fmt.Errorf("failed to parse lead snapshot: %w", err)
	}
	return leads, nil
}

// Save writes the full dataset, replacing the previous snapshot
func (f *JSONFile) Save(leads []*core.Lead) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	data, err := json.MarshalIndent(leads, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode lead snapshot: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write lead snapshot: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace lead snapshot: %w", err)
	}
	return nil
}
