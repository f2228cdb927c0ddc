package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SQLiteBackend keeps documents in a single "documents" table.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend wraps an already migrated database.
func NewSQLiteBackend(db *sql.DB) *SQLiteBackend {
	return &SQLiteBackend{db: db}
}

// OpenSQLite opens (creating if needed) the database at path and applies
// pending migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteBackend, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("storage error creating directories: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}
	// One connection: ":memory:" databases are per connection, and a single
	// writer avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("could not access database: %w", err)
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewSQLiteBackend(db), nil
}

// Migrate applies the embedded goose migrations to db.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Get returns the document for key, or ErrNotFound.
func (b *SQLiteBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := b.db.QueryRowContext(ctx, `SELECT value FROM documents WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", key, err)
	}
	return []byte(value), nil
}

// Put upserts the document for key.
func (b *SQLiteBackend) Put(ctx context.Context, key string, data []byte) error {
	query := `INSERT INTO documents (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	_, err := b.db.ExecContext(ctx, query, key, string(data), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to upsert document %s: %w", key, err)
	}
	return nil
}

// Quarantine moves a corrupt document to the first free "<key>.corrupt[.N]"
// key. Existing backups are left alone.
func (b *SQLiteBackend) Quarantine(ctx context.Context, key string) (string, error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin backup of %s: %w", key, err)
	}
	defer func() { _ = tx.Rollback() }()

	backup := ""
	for n := 0; n < maxBackups; n++ {
		candidate := backupName(key, n)
		var taken int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE key = ?`, candidate).Scan(&taken); err != nil {
			return "", fmt.Errorf("failed to check backup %s: %w", candidate, err)
		}
		if taken == 0 {
			backup = candidate
			break
		}
	}
	if backup == "" {
		return "", fmt.Errorf("failed to back up document %s: %w", key, errNoBackupSlot)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE documents SET key = ? WHERE key = ?`, backup, key); err != nil {
		return "", fmt.Errorf("failed to back up document %s: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit backup of %s: %w", key, err)
	}
	return backup, nil
}

// Close closes the database.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
