package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileBackend stores each document as <dir>/<key>.json.
type FileBackend struct {
	dir string
}

// NewFileBackend returns a backend rooted at dir. The directory is created
// on first write.
func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{dir: dir}
}

// path returns the file holding key.
func (b *FileBackend) path(key string) string {
	return filepath.Join(b.dir, key+".json")
}

// Get reads the document for key. Returns ErrNotFound if the file is missing.
func (b *FileBackend) Get(_ context.Context, key string) ([]byte, error) {
	path := b.path(key)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", path, err)
	}
	return data, nil
}

// Put atomically writes the document for key.
func (b *FileBackend) Put(_ context.Context, key string, data []byte) error {
	path := b.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	// Atomic write: write to temp file then rename.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

// Quarantine renames a corrupt document to the first free
// <file>.corrupt[.N] name and returns the backup path.
func (b *FileBackend) Quarantine(_ context.Context, key string) (string, error) {
	path := b.path(key)
	for n := 0; n < maxBackups; n++ {
		backupPath := backupName(path, n)
		if _, err := os.Lstat(backupPath); !os.IsNotExist(err) {
			continue
		}
		if err := os.Rename(path, backupPath); err != nil {
			return "", fmt.Errorf("storage error backing up %s: %w", path, err)
		}
		return backupPath, nil
	}
	return "", fmt.Errorf("storage error backing up %s: %w", path, errNoBackupSlot)
}

// Close is a no-op.
func (b *FileBackend) Close() error { return nil }
