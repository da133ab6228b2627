// Package nock provides the public API for the Nock runtime: a namespace
// of named nouns, an evaluator and optional persistence.
package nock

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	core "nickandperla.net/nock/internal/nock"
	"nickandperla.net/nock/internal/noun"
	"nickandperla.net/nock/internal/reader"
	"nickandperla.net/nock/internal/store"
	"nickandperla.net/nock/internal/token"
)

// DefaultMaxDepth is the nesting bound used when WithMaxDepth is not given.
const DefaultMaxDepth = core.DefaultMaxDepth

// Noun is an atom or a cell.
type Noun = noun.Noun

// Error is the error type of every evaluation failure.
type Error = core.Error

// Tracer observes evaluation steps.
type Tracer = core.Tracer

// Store interface for custom stores.
type Store = store.Store

// VersionEntry is one stored version of a definition.
type VersionEntry = store.VersionEntry

// Evaluation failures, for use with errors.Is.
var (
	ErrNotAnAtom              = core.ErrNotAnAtom
	ErrNotACell               = core.ErrNotACell
	ErrAddressZero            = core.ErrAddressZero
	ErrAddressThroughAtom     = core.ErrAddressThroughAtom
	ErrUnimplementedOpcode    = core.ErrUnimplementedOpcode
	ErrRecursionLimitExceeded = core.ErrRecursionLimitExceeded
	ErrStepLimitExceeded      = core.ErrStepLimitExceeded
	ErrInterrupted            = core.ErrInterrupted
)

var (
	// ErrNoStore is returned by persistence calls on a runtime without a store.
	ErrNoStore = errors.New("no store configured")
	// ErrNoHistory is returned by History when the store keeps no versions.
	ErrNoHistory = errors.New("store does not keep history")
)

// metadataStore is implemented by stores that keep string metadata.
type metadataStore interface {
	GetMetadata(key string) (string, error)
	SetMetadata(key, value string) error
}

// Stats describes the most recent evaluation and running totals.
type Stats struct {
	Steps      int64         // steps of the last evaluation
	MaxDepth   int           // deepest nesting of the last evaluation
	Duration   time.Duration // wall time of the last evaluation
	Evals      int64         // evaluations since New
	TotalSteps int64         // steps since New
}

// Runtime is the Nock runtime.
type Runtime struct {
	evaluator   *core.Evaluator
	ns          *Namespace
	store       Store
	dbPath      string
	maxDepth    int
	maxSteps    int64
	timeout     time.Duration
	prelude     string // Custom prelude source (if empty, uses DefaultPrelude)
	noStdlib    bool   // If true, skip loading prelude
	persistMode PersistMode
	tracer      Tracer

	mu    sync.Mutex
	stats Stats
}

// New creates a new runtime with the given options.
func New(opts ...Option) (*Runtime, error) {
	r := &Runtime{
		ns:       NewNamespace(),
		maxDepth: core.DefaultMaxDepth,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.dbPath != "" {
		s, err := store.NewSQLite(r.dbPath)
		if err != nil {
			return nil, errors.Wrap(err, "opening store")
		}
		r.store = s
	}

	// Build evaluator options
	evalOpts := []core.Option{
		core.WithMaxDepth(r.maxDepth),
		core.WithMaxSteps(r.maxSteps),
	}
	if r.tracer != nil {
		evalOpts = append(evalOpts, core.WithTracer(r.tracer))
	} else if glog.V(9) {
		evalOpts = append(evalOpts, core.WithTracer(func(depth int, subject, formula noun.Noun) {
			glog.Infof("nock: depth %d: *[%s %s]", depth, subject, formula)
		}))
	}
	r.evaluator = core.New(evalOpts...)

	// Load prelude unless disabled
	if !r.noStdlib {
		prelude, err := r.preludeSource()
		if err != nil {
			r.Close()
			return nil, err
		}
		if err := r.loadDefinitions(strings.NewReader(prelude), false); err != nil {
			r.Close()
			return nil, errors.Wrap(err, "loading prelude")
		}
		glog.V(3).Infof("runtime: prelude loaded, %d names", len(r.ns.Names()))
	}

	// Stored definitions replace prelude names of the same name.
	if r.persistMode == PersistAlways && r.store != nil {
		if err := r.loadStored(); err != nil {
			r.Close()
			return nil, err
		}
	}

	return r, nil
}

// loadStored binds every definition held by the store.
func (r *Runtime) loadStored() error {
	names, err := r.store.List()
	if err != nil {
		return errors.Wrap(err, "listing stored names")
	}
	for _, name := range names {
		v, err := r.store.Get(name)
		if err != nil {
			return errors.Wrapf(err, "loading %s", name)
		}
		if v != nil {
			r.ns.Set(name, v)
		}
	}
	glog.V(3).Infof("runtime: loaded %d stored names", len(names))
	return nil
}

// preludeSource picks the prelude: a saved override, then WithPrelude,
// then DefaultPrelude.
func (r *Runtime) preludeSource() (string, error) {
	if ms, ok := r.store.(metadataStore); ok {
		saved, err := ms.GetMetadata(preludeKey)
		if err != nil {
			return "", errors.Wrap(err, "reading saved prelude")
		}
		if strings.TrimSpace(saved) != "" {
			glog.V(5).Info("runtime: using prelude saved in store")
			return saved, nil
		}
	}
	if r.prelude != "" {
		return r.prelude, nil
	}
	return DefaultPrelude, nil
}

// SavePrelude stores src as the prelude loaded by future runtimes on the
// same store. An empty src restores the default.
func (r *Runtime) SavePrelude(src string) error {
	ms, ok := r.store.(metadataStore)
	if !ok {
		return ErrNoStore
	}
	if strings.TrimSpace(src) != "" {
		scratch := &Runtime{ns: NewNamespace(), persistMode: PersistNever}
		if err := scratch.loadDefinitions(strings.NewReader(src), false); err != nil {
			return errors.Wrap(err, "checking prelude")
		}
	}
	return errors.Wrap(ms.SetMetadata(preludeKey, src), "saving prelude")
}

// Eval reads src as one noun [subject formula] and evaluates it. Names in
// src resolve through the runtime's namespace.
func (r *Runtime) Eval(src string) (Noun, error) {
	return r.EvalContext(context.Background(), src)
}

// EvalContext is Eval with cancellation.
func (r *Runtime) EvalContext(ctx context.Context, src string) (Noun, error) {
	n, err := reader.Read(src, r.resolve)
	if err != nil {
		return nil, err
	}
	return r.evaluate(ctx, func(ctx context.Context) (noun.Noun, core.Stats, error) {
		return r.evaluator.NockStats(ctx, n)
	})
}

// Apply evaluates the formula read from formula against the subject read
// from subject.
func (r *Runtime) Apply(subject, formula string) (Noun, error) {
	return r.ApplyContext(context.Background(), subject, formula)
}

// ApplyContext is Apply with cancellation.
func (r *Runtime) ApplyContext(ctx context.Context, subject, formula string) (Noun, error) {
	s, err := reader.Read(subject, r.resolve)
	if err != nil {
		return nil, errors.Wrap(err, "subject")
	}
	f, err := reader.Read(formula, r.resolve)
	if err != nil {
		return nil, errors.Wrap(err, "formula")
	}
	return r.evaluate(ctx, func(ctx context.Context) (noun.Noun, core.Stats, error) {
		return r.evaluator.ApplyStats(ctx, s, f)
	})
}

func (r *Runtime) evaluate(ctx context.Context, run func(context.Context) (noun.Noun, core.Stats, error)) (Noun, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	result, st, err := run(ctx)
	elapsed := time.Since(start)

	r.mu.Lock()
	r.stats = Stats{
		Steps:      st.Steps,
		MaxDepth:   st.MaxDepth,
		Duration:   elapsed,
		Evals:      r.stats.Evals + 1,
		TotalSteps: r.stats.TotalSteps + st.Steps,
	}
	r.mu.Unlock()

	if err != nil {
		glog.V(3).Infof("runtime: eval failed after %d steps: %v", st.Steps, err)
		return nil, err
	}
	glog.V(3).Infof("runtime: eval took %d steps, depth %d, %s", st.Steps, st.MaxDepth, elapsed)
	return result, nil
}

// Define reads src and binds the noun to name. In PersistAlways mode the
// definition is also written to the store.
func (r *Runtime) Define(name, src string) error {
	if !validName(name) {
		return errors.Errorf("invalid name %q", name)
	}
	n, err := reader.Read(src, r.resolve)
	if err != nil {
		return err
	}
	return r.bind(name, n)
}

func (r *Runtime) bind(name string, n noun.Noun) error {
	r.ns.Set(name, n)
	if r.persistMode == PersistAlways && r.store != nil {
		if err := r.store.Put(name, n); err != nil {
			return errors.Wrapf(err, "persisting %s", name)
		}
	}
	return nil
}

// Lookup returns the noun bound to name, or nil if it is unbound. In
// PersistAlways mode names missing from the namespace are loaded from the
// store.
func (r *Runtime) Lookup(name string) (Noun, error) {
	if v := r.ns.Get(name); v != nil {
		return v, nil
	}
	if r.persistMode != PersistAlways || r.store == nil {
		return nil, nil
	}
	v, err := r.store.Get(name)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", name)
	}
	if v != nil {
		r.ns.Set(name, v)
	}
	return v, nil
}

func (r *Runtime) resolve(name string) (noun.Noun, error) {
	return r.Lookup(name)
}

// Persist writes the definition of name to the store. It is a no-op in
// PersistNever mode. Writing an unchanged value adds no history version.
func (r *Runtime) Persist(name string) error {
	if r.persistMode == PersistNever {
		return nil
	}
	if r.store == nil {
		return ErrNoStore
	}
	v := r.ns.Get(name)
	if v == nil {
		return errors.Errorf("%s is not defined", name)
	}
	return errors.Wrapf(r.store.Put(name, v), "persisting %s", name)
}

// Load reads name from the store into the namespace.
func (r *Runtime) Load(name string) (Noun, error) {
	if r.store == nil {
		return nil, ErrNoStore
	}
	v, err := r.store.Get(name)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", name)
	}
	if v == nil {
		return nil, errors.Errorf("%s not found in store", name)
	}
	r.ns.Set(name, v)
	return v, nil
}

// LoadReader loads "name = noun" definitions. A malformed definition does
// not stop the load: the rest of its line is skipped and every failure is
// reported together.
func (r *Runtime) LoadReader(in io.Reader) error {
	return r.loadDefinitions(in, true)
}

// LoadFile loads definitions from a file.
func (r *Runtime) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening definitions")
	}
	defer f.Close()
	return errors.Wrapf(r.LoadReader(f), "loading %s", path)
}

func (r *Runtime) loadDefinitions(in io.Reader, persist bool) error {
	rd := reader.New(in, r.resolve)
	var result *multierror.Error
	for {
		d, err := rd.NextDefinition()
		if err == io.EOF {
			break
		}
		if err != nil {
			result = multierror.Append(result, err)
			if err := rd.SkipLine(); err != nil {
				result = multierror.Append(result, err)
				break
			}
			continue
		}
		if !persist {
			r.ns.Set(d.Name, d.Value)
			continue
		}
		if err := r.bind(d.Name, d.Value); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// Names returns the names bound in the namespace.
func (r *Runtime) Names() []string {
	return r.ns.Names()
}

// StoredNames returns the names held by the store.
func (r *Runtime) StoredNames() ([]string, error) {
	if r.store == nil {
		return nil, ErrNoStore
	}
	return r.store.List()
}

// History returns up to limit stored versions of name, newest first.
func (r *Runtime) History(name string, limit int) ([]VersionEntry, error) {
	if r.store == nil {
		return nil, ErrNoStore
	}
	hs, ok := r.store.(store.HistoryStore)
	if !ok {
		return nil, ErrNoHistory
	}
	return hs.GetHistory(name, limit)
}

// Stats reports the most recent evaluation.
func (r *Runtime) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// PersistMode returns the current persistence mode.
func (r *Runtime) PersistMode() PersistMode {
	return r.persistMode
}

// Close releases resources.
func (r *Runtime) Close() error {
	if r.store != nil {
		return r.store.Close()
	}
	return nil
}

// Incomplete reports whether src stops partway through a noun, so that an
// interactive reader should ask for more input.
func Incomplete(src string) bool {
	_, err := reader.Read(src, func(string) (noun.Noun, error) { return noun.Yes, nil })
	return reader.IsIncomplete(err)
}

func validName(name string) bool {
	for i, c := range name {
		if i == 0 && !token.IsNameStart(c) {
			return false
		}
		if !token.IsNameChar(c) {
			return false
		}
	}
	return name != ""
}
