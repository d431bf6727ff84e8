package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	dirPerm  = 0o750
	filePerm = 0o640
)

// FileName returns the download name of an export taken at t.
func FileName(t time.Time) string {
	return "salon-backup-" + t.Format(time.DateOnly) + ".json"
}

// WriteFile exports st into dir and returns the written path.
func WriteFile(dir string, st State, at time.Time) (string, error) {
	data, err := Export(st, at).Marshal()
	if err != nil {
		return "", fmt.Errorf("failed to encode backup: %w", err)
	}

	if err = os.MkdirAll(dir, dirPerm); err != nil {
		return "", fmt.Errorf("failed to create backup dir: %w", err)
	}

	path := filepath.Join(dir, FileName(at))

	// write then rename
	tmp := path + ".tmp"
	if err = os.WriteFile(tmp, data, filePerm); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	if err = os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("failed to move backup in place: %w", err)
	}

	return path, nil
}

// ReadFile imports the document at path.
func ReadFile(path string) (State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return State{}, fmt.Errorf("failed to read backup: %w", err)
	}

	return Import(data)
}
