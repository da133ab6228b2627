// Package store provides persistence for named nouns.
package store

import "nickandperla.net/nock/internal/noun"

// Store is the interface for noun persistence.
type Store interface {
	// Get retrieves a noun by name. Returns nil if not found.
	Get(name string) (noun.Noun, error)
	// Put stores a noun by name, overwriting if it exists.
	Put(name string, n noun.Noun) error
	// Delete removes a noun and its history.
	Delete(name string) error
	// List returns the stored names in lexical order.
	List() ([]string, error)
	// Close releases resources.
	Close() error
}

// VersionEntry represents a single version of a persisted noun.
type VersionEntry struct {
	Version int
	Value   string
	Ts      string
}

// HistoryStore extends Store with version history queries.
type HistoryStore interface {
	Store
	// GetHistory returns up to limit versions, newest first. A limit of
	// zero or less returns every version.
	GetHistory(name string, limit int) ([]VersionEntry, error)
}
