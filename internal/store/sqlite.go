package store

import (
	"database/sql"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"nickandperla.net/nock/internal/noun"
	"nickandperla.net/nock/internal/reader"
)

// Current schema version
const SchemaVersion = "1"

// SQLite is a SQLite-backed store. Nouns are kept in their literal text
// form and read back with the reader.
type SQLite struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLite creates a new SQLite store at the given path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "initializing %s", path)
	}

	s := &SQLite{db: db}

	// Check/set schema version (use unlocked versions since we're in init)
	version, err := s.getMetadataUnlocked("schema_version")
	if err != nil {
		db.Close()
		return nil, err
	}

	switch version {
	case "":
		glog.V(5).Infof("store: creating schema v%s in %s", SchemaVersion, path)
		if err := s.migrateToV1(); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "creating schema")
		}
		if err := s.setMetadataUnlocked("schema_version", SchemaVersion); err != nil {
			db.Close()
			return nil, err
		}
	case SchemaVersion:
		glog.V(5).Infof("store: opened %s (schema v%s)", path, version)
	default:
		db.Close()
		return nil, errors.Errorf("unsupported schema version: %s (expected %s)", version, SchemaVersion)
	}

	return s, nil
}

// migrateToV1 creates the noun and version tables.
func (s *SQLite) migrateToV1() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS nouns (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS noun_versions (
			name TEXT NOT NULL,
			version INTEGER NOT NULL,
			value TEXT NOT NULL,
			ts TEXT NOT NULL,
			PRIMARY KEY (name, version)
		);
	`)
	return err
}

// Get retrieves a noun by name.
func (s *SQLite) Get(name string) (noun.Noun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var value string
	err := s.db.QueryRow("SELECT value FROM nouns WHERE name = ?", name).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", name)
	}

	n, err := reader.Read(value, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding stored noun %s", name)
	}
	return n, nil
}

// Put stores a noun by name and records a new version. Storing the value
// already held is a no-op.
func (s *SQLite) Put(name string, n noun.Noun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	value := n.String()

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRow("SELECT value FROM nouns WHERE name = ?", name).Scan(&current)
	switch {
	case err == nil && current == value:
		return nil
	case err != nil && err != sql.ErrNoRows:
		return errors.Wrapf(err, "reading %s", name)
	}

	_, err = tx.Exec(`
		INSERT INTO nouns (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value
	`, name, value)
	if err != nil {
		return errors.Wrapf(err, "writing %s", name)
	}

	var latest int
	err = tx.QueryRow("SELECT COALESCE(MAX(version), 0) FROM noun_versions WHERE name = ?", name).Scan(&latest)
	if err != nil {
		return errors.Wrapf(err, "reading versions of %s", name)
	}
	_, err = tx.Exec(`
		INSERT INTO noun_versions (name, version, value, ts) VALUES (?, ?, ?, ?)
	`, name, latest+1, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return errors.Wrapf(err, "recording version of %s", name)
	}

	return errors.Wrap(tx.Commit(), "commit")
}

// Delete removes a noun and all its versions.
func (s *SQLite) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM nouns WHERE name = ?", name); err != nil {
		return errors.Wrapf(err, "deleting %s", name)
	}
	_, err := s.db.Exec("DELETE FROM noun_versions WHERE name = ?", name)
	return errors.Wrapf(err, "deleting versions of %s", name)
}

// List returns the stored names in lexical order.
func (s *SQLite) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query("SELECT name FROM nouns ORDER BY name")
	if err != nil {
		return nil, errors.Wrap(err, "listing nouns")
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// GetHistory returns the versions of name, newest first.
func (s *SQLite) GetHistory(name string, limit int) ([]VersionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT version, value, ts FROM noun_versions
		WHERE name = ? ORDER BY version DESC LIMIT ?
	`, name, limit)
	if err != nil {
		return nil, errors.Wrapf(err, "reading history of %s", name)
	}
	defer rows.Close()
	var entries []VersionEntry
	for rows.Next() {
		var e VersionEntry
		if err := rows.Scan(&e.Version, &e.Value, &e.Ts); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// GetMetadata retrieves a metadata value by key.
func (s *SQLite) GetMetadata(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getMetadataUnlocked(key)
}

// getMetadataUnlocked retrieves metadata without locking (caller must hold lock).
func (s *SQLite) getMetadataUnlocked(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "reading metadata %s", key)
	}
	return value, nil
}

// SetMetadata stores a metadata value by key.
func (s *SQLite) SetMetadata(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setMetadataUnlocked(key, value)
}

// setMetadataUnlocked stores metadata without locking (caller must hold lock).
func (s *SQLite) setMetadataUnlocked(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return errors.Wrapf(err, "writing metadata %s", key)
}
