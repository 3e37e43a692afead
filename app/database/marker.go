package database

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var ErrStorage = errors.New("storage error")

// MarkerStore persists the title of the last downloaded episode as the sole
// line of a per-podcast marker file.
type MarkerStore struct{}

func NewMarkerStore() *MarkerStore {
	return &MarkerStore{}
}

// ReadLast returns the first line of the marker file. The boolean is false
// when the file does not exist or is empty. Additional lines are ignored.
func (s *MarkerStore) ReadLast(path string) (string, bool, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: failed to open marker: %w", ErrStorage, err)
	}
	defer file.Close()

	line, err := bufio.NewReader(file).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, fmt.Errorf("%w: failed to read marker: %w", ErrStorage, err)
	}
	if line == "" {
		// an empty file holds no record
		return "", false, nil
	}

	return strings.TrimRight(line, "\r\n"), true, nil
}

// WriteLast replaces the marker file with exactly one line holding title.
// The content is written to a temporary file and renamed into place so a
// crash never leaves a truncated marker behind.
func (s *MarkerStore) WriteLast(path, title string) error {
	if strings.ContainsAny(title, "\r\n") {
		return fmt.Errorf("%w: title %q spans more than one line", ErrStorage, title)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory: %w", ErrStorage, err)
	}

	tmp, err := os.CreateTemp(dir, ".marker-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: failed to create temp file: %w", ErrStorage, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(title + "\n"); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: failed to write marker: %w", ErrStorage, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("%w: failed to sync marker: %w", ErrStorage, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: failed to close marker: %w", ErrStorage, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: failed to replace marker: %w", ErrStorage, err)
	}

	return nil
}
