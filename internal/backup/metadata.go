package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const MetadataFilename = "metadata.json"

// Record describes the most recent backup run. It is written next to the
// backup files and is not subject to rotation.
type Record struct {
	Database   string    `json:"database"`
	File       string    `json:"file,omitempty"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	SizeBytes  int64     `json:"size_bytes"`
}

// Write persists the record as JSON under dir.
func (r Record) Write(dir string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	path := filepath.Join(dir, MetadataFilename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write metadata %q: %w", path, err)
	}
	return nil
}
