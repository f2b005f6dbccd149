package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileBackend keeps the state in a single JSON file.
type FileBackend struct {
	filePath string
}

func NewFileBackend(filePath string) *FileBackend {
	return &FileBackend{filePath: filePath}
}

func (fb *FileBackend) Read(_ context.Context) (*State, error) {
	data, err := os.ReadFile(fb.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return NewState(), nil
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return &st, nil
}

// Write replaces the file through a temporary file in the same directory, so
// a crash mid-write leaves the previous state intact.
func (fb *FileBackend) Write(_ context.Context, st *State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	dir := filepath.Dir(fb.filePath)
	tmp, err := os.CreateTemp(dir, filepath.Base(fb.filePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmpName, fb.filePath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

func (fb *FileBackend) Close() error { return nil }
