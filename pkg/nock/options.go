package nock

import (
	"strings"
	"time"

	"nickandperla.net/nock/internal/store"
)

// Option configures a Runtime.
type Option func(*Runtime)

// WithSQLiteStore configures SQLite persistence at the given path. New
// fails if the database cannot be opened.
func WithSQLiteStore(path string) Option {
	return func(r *Runtime) {
		r.dbPath = path
		r.store = nil
	}
}

// WithMemoryStore configures an in-memory store (for testing).
func WithMemoryStore() Option {
	return func(r *Runtime) {
		r.dbPath = ""
		r.store = store.NewMemory()
	}
}

// WithStore configures a caller-supplied store. The runtime closes it on
// Close.
func WithStore(s Store) Option {
	return func(r *Runtime) {
		r.dbPath = ""
		r.store = s
	}
}

// WithMaxDepth bounds non-tail nesting during evaluation.
func WithMaxDepth(n int) Option {
	return func(r *Runtime) {
		r.maxDepth = n
	}
}

// WithMaxSteps bounds the reduction steps of each evaluation. Zero means
// unlimited.
func WithMaxSteps(n int64) Option {
	return func(r *Runtime) {
		r.maxSteps = n
	}
}

// WithTimeout bounds the wall-clock time of each evaluation. Zero means
// no timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Runtime) {
		r.timeout = timeout
	}
}

// WithPrelude sets a custom prelude source to be loaded on startup.
// If not set, DefaultPrelude is used.
func WithPrelude(source string) Option {
	return func(r *Runtime) {
		r.prelude = source
	}
}

// WithNoStdlib disables loading the standard library prelude.
func WithNoStdlib() Option {
	return func(r *Runtime) {
		r.noStdlib = true
	}
}

// WithTrace installs a per-step observer on every evaluation.
func WithTrace(t Tracer) Option {
	return func(r *Runtime) {
		r.tracer = t
	}
}

// PersistMode controls when definitions are persisted.
type PersistMode int

const (
	// PersistOnDemand is the default - explicit Persist/Load calls only.
	PersistOnDemand PersistMode = iota
	// PersistAlways persists on every Define and loads missing names from
	// the store on lookup.
	PersistAlways
	// PersistNever makes Persist a no-op (memory-only mode).
	PersistNever
)

// String returns the string representation of a PersistMode.
func (m PersistMode) String() string {
	switch m {
	case PersistOnDemand:
		return "on_demand"
	case PersistAlways:
		return "always"
	case PersistNever:
		return "never"
	default:
		return "unknown"
	}
}

// ParsePersistMode parses a string into a PersistMode.
func ParsePersistMode(s string) (PersistMode, bool) {
	switch strings.ToLower(strings.ReplaceAll(s, "-", "_")) {
	case "on_demand", "":
		return PersistOnDemand, true
	case "always":
		return PersistAlways, true
	case "never":
		return PersistNever, true
	default:
		return PersistOnDemand, false
	}
}

// WithPersistMode sets the persistence mode.
func WithPersistMode(mode PersistMode) Option {
	return func(r *Runtime) {
		r.persistMode = mode
	}
}
