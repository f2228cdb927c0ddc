package storage

import (
	"context"
	"errors"
	"fmt"
)

// Document keys. Each key holds one whole JSON document.
const (
	UserKey    = "ojt-user"
	EntriesKey = "ojt-time-entries"
)

var (
	// ErrNotFound is returned by a Backend when no document exists for a key.
	ErrNotFound = errors.New("document not found")
	// ErrStoreUnavailable wraps any failure to read or write the underlying store.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrEntryNotFound is returned when an entry id is not in the entry list.
	ErrEntryNotFound = errors.New("time entry not found")
)

// Backend is a whole-document key-value store.
type Backend interface {
	// Get returns the document stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put replaces the document stored under key.
	Put(ctx context.Context, key string, data []byte) error
	Close() error
}

// Quarantiner is implemented by backends that can set a corrupt document
// aside so it is not silently overwritten by the next save. Earlier backups
// are never replaced.
type Quarantiner interface {
	Quarantine(ctx context.Context, key string) (string, error)
}

// maxBackups bounds the search for a free backup name.
const maxBackups = 1000

// errNoBackupSlot is returned when every backup name is taken.
var errNoBackupSlot = errors.New("too many corrupt backups")

// backupName returns the n-th backup name for name: "<name>.corrupt", then
// "<name>.corrupt.1", "<name>.corrupt.2" and so on.
func backupName(name string, n int) string {
	if n == 0 {
		return name + ".corrupt"
	}
	return fmt.Sprintf("%s.corrupt.%d", name, n)
}
