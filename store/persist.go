package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"capacity-planner/models"
)

// persistenceFile is the JSON envelope for a saved planning session.
type persistenceFile struct {
	Version string               `json:"version"`
	SavedAt time.Time            `json:"saved_at"`
	LOBs    []models.RawLoBEntry `json:"lobs"`
}

const persistenceVersion = "1.0"

// Save persists the snapshot to path. The file is written to a temp path
// first and renamed into place so a crash mid-write never corrupts an
// existing session file.
func (s *Snapshot) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data := persistenceFile{
		Version: persistenceVersion,
		SavedAt: time.Now(),
		LOBs:    s.lobs,
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, jsonData, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}

// Load restores a saved session from path. A missing file is not an error:
// it returns a nil snapshot so callers can fall back to the seed dataset.
func Load(path string) (*Snapshot, error) {
	// Clean up any stale temp files from previous crashes
	tempPath := path + ".tmp"
	if _, err := os.Stat(tempPath); err == nil {
		_ = os.Remove(tempPath)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	jsonData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var data persistenceFile
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal data: %w", err)
	}
	for i := range data.LOBs {
		if err := data.LOBs[i].Validate(); err != nil {
			return nil, fmt.Errorf("invalid lob entry in session file: %w", err)
		}
	}
	return New(data.LOBs), nil
}
