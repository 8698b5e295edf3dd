package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ppiankov/atlasprompt/internal/model"
)

// FileStore persists the current set as a JSON array document
type FileStore struct {
	path string
}

// NewFileStore creates a new file store
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = "coordinates.json"
	}
	return &FileStore{path: path}
}

// Path returns the document location
func (s *FileStore) Path() string {
	return s.path
}

// Get reads the current set from disk
func (s *FileStore) Get(_ context.Context) ([]model.PlaceRecord, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read store file: %w", err)
	}

	var records []model.PlaceRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, false, fmt.Errorf("parse store file %s: %w", s.path, err)
	}
	if records == nil {
		records = []model.PlaceRecord{}
	}

	return records, true, nil
}

// Replace writes the set to a temp file and renames it over the document
func (s *FileStore) Replace(_ context.Context, records []model.PlaceRecord) error {
	if records == nil {
		records = []model.PlaceRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".atlasprompt-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace store file: %w", err)
	}

	return nil
}
