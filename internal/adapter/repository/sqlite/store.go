// Package sqlite provides durable repositories backed by an embedded SQLite
// database (modernc.org/sqlite, no cgo).
package sqlite

import (
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
	"github.com/tejashwikalptaru/tunestream/internal/ports"

	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName    = "tunestream"
	dbFileName = "tunestream.db"

	// MemoryPath opens a private in-memory database.
	MemoryPath = ":memory:"
)

// Store owns the database handle shared by all repositories.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// DefaultPath returns the database location under the XDG data directory,
// creating parent directories as needed.
func DefaultPath() (string, error) {
	path, err := xdg.DataFile(filepath.Join(appName, dbFileName))
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve data directory")
	}
	return path, nil
}

// Open opens (or creates) the database at path and applies the schema.
// An empty path means DefaultPath.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrapf(err, "failed to create directory for %s", path)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	// One connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "failed to apply %q", pragma)
		}
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		db:     db,
		logger: logger.With(slog.String("adapter", "sqlite")),
	}
	s.logger.Debug("database opened", slog.String("path", path))
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the handle for maintenance commands.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Repositories returns every repository backed by this store.
func (s *Store) Repositories() ports.Repositories {
	return ports.Repositories{
		Playlists:     &PlaylistRepository{store: s},
		TrackLists:    &TrackListRepository{store: s},
		History:       &HistoryRepository{store: s},
		Preferences:   &PreferencesRepository{store: s},
		SearchHistory: &SearchHistoryRepository{store: s},
	}
}

// withTx executes fn within a transaction.
// It handles Begin, Rollback on error, and Commit on success.
func (s *Store) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if err := fn(tx); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "failed to commit")
}
