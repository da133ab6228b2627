package store

import (
	"sort"
	"sync"
	"time"

	"nickandperla.net/nock/internal/noun"
)

// Memory is an in-memory store for testing and for runtimes without a
// database.
type Memory struct {
	mu       sync.RWMutex
	data     map[string]noun.Noun
	versions map[string][]VersionEntry // oldest first
	metadata map[string]string
}

// NewMemory creates a new in-memory store.
func NewMemory() *Memory {
	return &Memory{
		data:     make(map[string]noun.Noun),
		versions: make(map[string][]VersionEntry),
		metadata: make(map[string]string),
	}
}

// Get retrieves a noun by name.
func (m *Memory) Get(name string) (noun.Noun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if n, ok := m.data[name]; ok {
		return n, nil
	}
	return nil, nil
}

// Put stores a noun by name. Storing the value already held is a no-op.
func (m *Memory) Put(name string, n noun.Noun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.data[name]; ok && noun.Equal(old, n) {
		return nil
	}
	m.data[name] = n
	m.versions[name] = append(m.versions[name], VersionEntry{
		Version: len(m.versions[name]) + 1,
		Value:   n.String(),
		Ts:      time.Now().UTC().Format(time.RFC3339),
	})
	return nil
}

// Delete removes a noun and all its versions.
func (m *Memory) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, name)
	delete(m.versions, name)
	return nil
}

// List returns the stored names in lexical order.
func (m *Memory) List() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.data))
	for name := range m.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// GetHistory returns the versions of name, newest first.
func (m *Memory) GetHistory(name string, limit int) ([]VersionEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	versions := m.versions[name]
	if len(versions) == 0 {
		return nil, nil
	}
	var entries []VersionEntry
	for i := len(versions) - 1; i >= 0; i-- {
		if limit > 0 && len(entries) == limit {
			break
		}
		entries = append(entries, versions[i])
	}
	return entries, nil
}

// Close is a no-op for memory store.
func (m *Memory) Close() error {
	return nil
}

// GetMetadata retrieves a metadata value by key.
func (m *Memory) GetMetadata(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.metadata[key], nil
}

// SetMetadata stores a metadata value by key.
func (m *Memory) SetMetadata(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metadata[key] = value
	return nil
}
