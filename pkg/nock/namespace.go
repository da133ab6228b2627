// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package nock

import (
	"sort"
	"sync"

	"nickandperla.net/nock/internal/noun"
)

// Namespace is a thread-safe table of named nouns.
type Namespace struct {
	mu    sync.RWMutex
	nouns map[string]noun.Noun
}

// NewNamespace creates a new empty namespace.
func NewNamespace() *Namespace {
	return &Namespace{
		nouns: make(map[string]noun.Noun),
	}
}

// Get retrieves a noun by name. Returns nil if not found.
func (n *Namespace) Get(name string) noun.Noun {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.nouns[name]
}

// Set binds name to v.
func (n *Namespace) Set(name string, v noun.Noun) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nouns[name] = v
}

// Has returns true if the name exists in the namespace.
func (n *Namespace) Has(name string) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	_, ok := n.nouns[name]
	return ok
}

// Delete removes a name from the namespace.
func (n *Namespace) Delete(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.nouns, name)
}

// Names returns the bound names in lexical order.
func (n *Namespace) Names() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	names := make([]string, 0, len(n.nouns))
	for name := range n.nouns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
