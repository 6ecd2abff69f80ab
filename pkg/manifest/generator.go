// Package manifest aggregates crawl outcomes into one persisted run summary.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sweeden-ttu/legal-luminary-texas-pipeline/models"
)

// Build aggregates the final descriptor list into a Manifest. Counts are
// derived from the descriptors themselves so they can never drift from the
// records: total_discovered equals the record count, and downloaded plus
// errors plus still-pending always adds back up to it.
func Build(source string, forms []models.FormDescriptor, now time.Time) *Manifest {
	m := &Manifest{
		Source:          source,
		GeneratedAt:     now.Format(time.RFC3339),
		TotalDiscovered: len(forms),
		CategoryCounts:  make(map[string]int),
		Forms:           make([]FormRecord, 0, len(forms)),
	}

	for _, form := range forms {
		switch form.Status {
		case models.StatusDownloaded:
			m.TotalDownloaded++
		case models.StatusFailed:
			m.TotalErrors++
		}
		m.CategoryCounts[form.Category]++
		m.Forms = append(m.Forms, newFormRecord(form))
	}
	return m
}

// Write serializes the manifest as indented JSON to path, atomically
// (write-then-rename), overwriting any previous manifest there.
func (m *Manifest) Write(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp manifest: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp manifest: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to rename manifest into place: %w", err)
	}
	return nil
}
