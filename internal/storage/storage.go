package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Tiliavir/ojt-tracker/internal/config"
	"github.com/Tiliavir/ojt-tracker/internal/logging"
	"github.com/Tiliavir/ojt-tracker/internal/model"
	"github.com/Tiliavir/ojt-tracker/internal/timecalc"
)

// Store reads and writes the user profile and the entry list as whole
// documents. Loads never fail: absent, unreadable or corrupt documents come
// back as empty values. Saves report every failure as ErrStoreUnavailable.
type Store struct {
	backend Backend
	// mu serialises load-modify-save sequences.
	mu sync.Mutex
}

// New returns a Store over backend.
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Open builds the backend selected by cfg and wraps it in a Store.
func Open(ctx context.Context, cfg config.StorageConfig) (*Store, error) {
	var (
		b   Backend
		err error
	)
	switch cfg.Backend {
	case config.BackendFile, "":
		b = NewFileBackend(cfg.DataDir)
	case config.BackendSQLite:
		b, err = OpenSQLite(ctx, cfg.SQLitePath)
	case config.BackendRedis:
		b, err = OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPrefix)
	default:
		err = fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	logging.FromContext(ctx).Debug("store opened", "backend", cfg.Backend)
	return New(b), nil
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// load fetches and decodes one document. found is false when the document
// is absent or corrupt; err is set only when the backend itself failed.
func (s *Store) load(ctx context.Context, key string, schema *jsonschema.Schema, v any) (found bool, err error) {
	log := logging.FromContext(ctx)

	data, err := s.backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	if err := decodeDocument(data, schema, v); err != nil {
		log.Warn("ignoring malformed document", "key", key, "err", err)
		if q, ok := s.backend.(Quarantiner); ok {
			if backup, qErr := q.Quarantine(ctx, key); qErr != nil {
				log.Warn("could not back up malformed document", "key", key, "err", qErr)
			} else {
				log.Warn("malformed document backed up", "key", key, "backup", backup)
			}
		}
		return false, nil
	}
	return true, nil
}

// save encodes v and replaces the document under key.
func (s *Store) save(ctx context.Context, key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}
	if err := s.backend.Put(ctx, key, data); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	logging.FromContext(ctx).Debug("document saved", "key", key, "bytes", len(data))
	return nil
}

// loadEntries is LoadEntries without swallowing backend failures.
func (s *Store) loadEntries(ctx context.Context) ([]model.TimeEntry, error) {
	var entries []model.TimeEntry
	found, err := s.load(ctx, EntriesKey, entriesDocSchema, &entries)
	if err != nil {
		return nil, err
	}
	if !found || entries == nil {
		return []model.TimeEntry{}, nil
	}
	return entries, nil
}

// LoadEntries returns the stored entries, or an empty slice when none can
// be read.
func (s *Store) LoadEntries(ctx context.Context) []model.TimeEntry {
	entries, err := s.loadEntries(ctx)
	if err != nil {
		logging.FromContext(ctx).Warn("could not load entries", "err", err)
		return []model.TimeEntry{}
	}
	return entries
}

// SaveEntries replaces the whole entry list.
func (s *Store) SaveEntries(ctx context.Context, entries []model.TimeEntry) error {
	if entries == nil {
		entries = []model.TimeEntry{}
	}
	return s.save(ctx, EntriesKey, entries)
}

// loadUser is LoadUser without swallowing backend failures.
func (s *Store) loadUser(ctx context.Context) (*model.User, error) {
	var u model.User
	found, err := s.load(ctx, UserKey, userDocSchema, &u)
	if err != nil || !found {
		return nil, err
	}
	return &u, nil
}

// LoadUser returns the stored profile, or nil when onboarding is incomplete
// or the profile cannot be read.
func (s *Store) LoadUser(ctx context.Context) *model.User {
	u, err := s.loadUser(ctx)
	if err != nil {
		logging.FromContext(ctx).Warn("could not load user", "err", err)
		return nil
	}
	return u
}

// SaveUser replaces the profile.
func (s *Store) SaveUser(ctx context.Context, u model.User) error {
	return s.save(ctx, UserKey, u)
}

// AddEntry appends e to the entry list.
func (s *Store) AddEntry(ctx context.Context, e model.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadEntries(ctx)
	if err != nil {
		return err
	}
	return s.SaveEntries(ctx, append(entries, e))
}

// UpdateEntry replaces the entry with e's ID.
func (s *Store) UpdateEntry(ctx context.Context, e model.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadEntries(ctx)
	if err != nil {
		return err
	}
	for i := range entries {
		if entries[i].ID == e.ID {
			entries[i] = e
			return s.SaveEntries(ctx, entries)
		}
	}
	return fmt.Errorf("%w: %s", ErrEntryNotFound, e.ID)
}

// DeleteEntry removes the entry with id, keeping the others in order.
func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadEntries(ctx)
	if err != nil {
		return err
	}
	kept := make([]model.TimeEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	return s.SaveEntries(ctx, kept)
}

// ReplaceEntries loads the entry list, hands it to fn and saves whatever fn
// returns, all under the store lock. Nothing is saved when fn fails.
func (s *Store) ReplaceEntries(ctx context.Context, fn func([]model.TimeEntry) ([]model.TimeEntry, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadEntries(ctx)
	if err != nil {
		return err
	}
	updated, err := fn(entries)
	if err != nil {
		return err
	}
	return s.SaveEntries(ctx, updated)
}

// UpsertProfile validates and saves the profile, keeping the ID of an
// existing one or generating a new ID otherwise.
func (s *Store) UpsertProfile(ctx context.Context, u model.User) (model.User, error) {
	if err := u.Validate(); err != nil {
		return model.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.loadUser(ctx)
	if err != nil {
		return model.User{}, err
	}
	if existing != nil && existing.ID != "" {
		u.ID = existing.ID
	} else {
		u.ID = timecalc.GenerateID()
	}
	if err := s.SaveUser(ctx, u); err != nil {
		return model.User{}, err
	}
	return u, nil
}
