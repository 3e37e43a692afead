package database

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestMarkerStoreReadMissing(t *testing.T) {
	store := NewMarkerStore()

	title, ok, err := store.ReadLast(filepath.Join(t.TempDir(), "missing", "last.txt"))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if ok {
		t.Errorf("Expected no record, got title: %s", title)
	}
}

func TestMarkerStoreWriteThenRead(t *testing.T) {
	store := NewMarkerStore()
	path := filepath.Join(t.TempDir(), "downloads", "show", "last.txt")

	if err := store.WriteLast(path, "Ep 42"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected marker file to exist: %v", err)
	}
	if string(data) != "Ep 42\n" {
		t.Errorf("Expected exactly one line 'Ep 42', got: %q", string(data))
	}

	title, ok, err := store.ReadLast(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !ok || title != "Ep 42" {
		t.Errorf("Expected record 'Ep 42', got: %q (present=%v)", title, ok)
	}
}

func TestMarkerStoreOverwrite(t *testing.T) {
	store := NewMarkerStore()
	path := filepath.Join(t.TempDir(), "last.txt")

	if err := os.WriteFile(path, []byte("Ep 1\r\nEp 0\r\nEp -1\r\n"), 0644); err != nil {
		t.Fatalf("Failed to seed marker: %v", err)
	}

	title, ok, err := store.ReadLast(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !ok || title != "Ep 1" {
		t.Errorf("Expected first line 'Ep 1', got: %q", title)
	}

	if err := store.WriteLast(path, "Ep 2"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != "Ep 2\n" {
		t.Errorf("Expected marker to be fully replaced, got: %q", string(data))
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("Expected no temporary files left behind, got %d entries", len(entries))
	}
}

func TestMarkerStoreEmptyFile(t *testing.T) {
	store := NewMarkerStore()
	path := filepath.Join(t.TempDir(), "last.txt")

	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("Failed to seed marker: %v", err)
	}

	_, ok, err := store.ReadLast(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if ok {
		t.Error("Expected empty marker file to hold no record")
	}
}

func TestMarkerStoreWriteFailure(t *testing.T) {
	store := NewMarkerStore()
	root := t.TempDir()

	// A regular file where the folder should be makes directory creation fail.
	blocker := filepath.Join(root, "show")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create blocker: %v", err)
	}

	err := store.WriteLast(filepath.Join(blocker, "last.txt"), "Ep 1")
	if !errors.Is(err, ErrStorage) {
		t.Errorf("Expected ErrStorage, got: %v", err)
	}
}

func TestMarkerStoreReadFailure(t *testing.T) {
	store := NewMarkerStore()

	// Reading a directory as a marker file fails on read.
	_, _, err := store.ReadLast(t.TempDir())
	if !errors.Is(err, ErrStorage) {
		t.Errorf("Expected ErrStorage, got: %v", err)
	}
}

func TestMarkerStoreRejectsLineBreaks(t *testing.T) {
	store := NewMarkerStore()
	path := filepath.Join(t.TempDir(), "last.txt")

	for _, title := range []string{"Ep 42\npart two", "Ep 42\r"} {
		if err := store.WriteLast(path, title); !errors.Is(err, ErrStorage) {
			t.Errorf("Expected ErrStorage for %q, got: %v", title, err)
		}
	}

	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected no marker file to be written, got: %v", err)
	}
}
