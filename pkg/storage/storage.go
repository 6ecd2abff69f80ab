// Package storage is the durable content store for downloaded payloads.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sweeden-ttu/legal-luminary-texas-pipeline/internal/common"
)

// Store writes fetched payloads under a single base directory, one file
// per descriptor. Filenames carry a digest suffix so two forms that
// sanitize to the same identifier never overwrite each other.
type Store struct {
	baseDir string
}

// FileStats holds metadata about a stored file without reading its contents.
type FileStats struct {
	SizeBytes int64
	ModTime   time.Time
}

// NewStore creates the base directory if needed. Failure here is fatal to
// a run: with no durable location there is nowhere to record results.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// BaseDir returns the store's base directory.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// PayloadName builds the content-store filename for a form: the sanitized
// identifier plus a short digest prefix and the document extension.
func PayloadName(identifier, digest, ext string) string {
	short := digest
	if len(short) > 12 {
		short = short[:12]
	}
	return fmt.Sprintf("%s-%s%s", common.SafeFileName(identifier), short, ext)
}

// SaveFile writes content to name under the base directory atomically:
// write to a temp file in the same directory, then rename over the target.
func (s *Store) SaveFile(name string, content []byte) (string, error) {
	target := filepath.Join(s.baseDir, name)

	tmp, err := os.CreateTemp(s.baseDir, name+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write payload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to rename payload into place: %w", err)
	}
	return target, nil
}

// ReadFile reads a stored payload back.
func (s *Store) ReadFile(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read stored file: %w", err)
	}
	return data, nil
}

// HasFile reports whether a payload already exists in the store.
func (s *Store) HasFile(name string) bool {
	_, err := os.Stat(filepath.Join(s.baseDir, name))
	return err == nil
}

// GetFileStats returns size and mtime for a stored payload.
func (s *Store) GetFileStats(name string) (*FileStats, error) {
	info, err := os.Stat(filepath.Join(s.baseDir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to stat stored file: %w", err)
	}
	return &FileStats{SizeBytes: info.Size(), ModTime: info.ModTime()}, nil
}
