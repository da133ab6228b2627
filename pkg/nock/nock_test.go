package nock

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nickandperla.net/nock/internal/reader"
)

func newRuntime(t *testing.T, opts ...Option) *Runtime {
	t.Helper()
	r, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func evalString(t *testing.T, r *Runtime, src string) string {
	t.Helper()
	got, err := r.Eval(src)
	require.NoError(t, err, src)
	return got.String()
}

func TestPrelude(t *testing.T) {
	r := newRuntime(t, WithMemoryStore())

	tests := []struct {
		src, want string
	}{
		{"[[4 5] head]", "4"},
		{"[[4 5] tail]", "5"},
		{"[7 inc]", "8"},
		{"[7 inc2]", "9"},
		{"[[1 2] is-cell]", "0"},
		{"[[3 3] eq]", "0"},
		{"[[3 4] eq]", "1"},
		{"[0 not]", "1"},
		{"[10 dec]", "9"},
		{"[[2 3] add]", "5"},
		{"[[0 0] add]", "0"},
		{"[[5 3] sub]", "2"},
		{"[[1 2] id]", "[1 2]"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, evalString(t, r, tt.src), tt.src)
	}
}

func TestNoStdlibOption(t *testing.T) {
	r := newRuntime(t, WithMemoryStore(), WithNoStdlib())

	_, err := r.Eval("[10 dec]")
	require.Error(t, err)
	var se *reader.SyntaxError
	assert.True(t, errors.As(err, &se))
	assert.Empty(t, r.Names())
}

func TestCustomPrelude(t *testing.T) {
	r := newRuntime(t, WithMemoryStore(), WithPrelude("twice = [[0 1] 0 1]\n"))

	assert.Equal(t, "[7 7]", evalString(t, r, "[7 twice]"))
	assert.Equal(t, []string{"twice"}, r.Names())
}

func TestSavedPreludeOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nock.db")

	r, err := New(WithSQLiteStore(path))
	require.NoError(t, err)
	require.Error(t, r.SavePrelude("bad = [1"))
	require.NoError(t, r.SavePrelude("answer = 42\n"))
	require.NoError(t, r.Close())

	r2 := newRuntime(t, WithSQLiteStore(path))
	assert.Equal(t, "42", evalString(t, r2, "[0 1 answer]"))
	assert.False(t, r2.ns.Has("dec"))

	assert.Equal(t, ErrNoStore, newRuntime(t, WithNoStdlib()).SavePrelude("x = 1"))
}

func TestDefineAndLookup(t *testing.T) {
	r := newRuntime(t, WithMemoryStore())

	require.NoError(t, r.Define("pair", "[22 33]"))
	require.NoError(t, r.Define("swap", "[[0 3] 0 2]"))
	assert.Equal(t, "[33 22]", evalString(t, r, "[pair swap]"))

	v, err := r.Lookup("pair")
	require.NoError(t, err)
	assert.Equal(t, "[22 33]", v.String())

	v, err = r.Lookup("nothing")
	require.NoError(t, err)
	assert.Nil(t, v)

	assert.Error(t, r.Define("9lives", "1"))
	assert.Error(t, r.Define("", "1"))
	assert.Error(t, r.Define("x", "[1"))
}

func TestApply(t *testing.T) {
	r := newRuntime(t, WithMemoryStore())

	got, err := r.Apply("[20 22]", "add")
	require.NoError(t, err)
	assert.Equal(t, "42", got.String())

	_, err = r.Apply("[1", "add")
	assert.Error(t, err)
	_, err = r.Apply("1", "nope")
	assert.Error(t, err)
}

func TestEvaluationErrors(t *testing.T) {
	r := newRuntime(t, WithMemoryStore())

	_, err := r.Eval("[[1 2] 0 0]")
	assert.True(t, errors.Is(err, ErrAddressZero), "%v", err)

	_, err = r.Eval("7")
	assert.True(t, errors.Is(err, ErrNotACell), "%v", err)

	var ne *Error
	_, err = r.Eval("[0 11 1 1]")
	require.True(t, errors.As(err, &ne))
	assert.Equal(t, ErrUnimplementedOpcode.Kind, ne.Kind)
}

const forever = "[[[9 2 0 1] 0] 9 2 0 1]"

func TestTimeout(t *testing.T) {
	r := newRuntime(t, WithMemoryStore(), WithTimeout(20*time.Millisecond))

	_, err := r.Eval(forever)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInterrupted), "%v", err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "%v", err)
}

func TestCancel(t *testing.T) {
	r := newRuntime(t, WithMemoryStore())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.EvalContext(ctx, forever)
	assert.True(t, errors.Is(err, context.Canceled), "%v", err)
}

func TestLimits(t *testing.T) {
	r := newRuntime(t, WithMemoryStore(), WithMaxSteps(500))
	_, err := r.Eval(forever)
	assert.True(t, errors.Is(err, ErrStepLimitExceeded), "%v", err)

	r = newRuntime(t, WithMemoryStore(), WithMaxDepth(50))
	_, err = r.Eval("[[[4 9 2 0 1] 0] 9 2 0 1]")
	assert.True(t, errors.Is(err, ErrRecursionLimitExceeded), "%v", err)
}

func TestStats(t *testing.T) {
	r := newRuntime(t, WithMemoryStore())
	assert.Zero(t, r.Stats().Evals)

	evalString(t, r, "[0 [1 4] 1 2]")
	st := r.Stats()
	assert.Equal(t, int64(3), st.Steps)
	assert.Equal(t, 2, st.MaxDepth)
	assert.Equal(t, int64(1), st.Evals)

	evalString(t, r, "[100 dec]")
	st = r.Stats()
	assert.Equal(t, int64(2), st.Evals)
	assert.True(t, st.TotalSteps > st.Steps)
}

func TestTrace(t *testing.T) {
	var depths []int
	r := newRuntime(t, WithMemoryStore(), WithNoStdlib(), WithTrace(func(depth int, subject, formula Noun) {
		depths = append(depths, depth)
	}))
	evalString(t, r, "[0 [1 4] 1 2]")
	assert.Equal(t, []int{1, 2, 2}, depths)
}

func TestPersistOnDemand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nock.db")

	r, err := New(WithSQLiteStore(path))
	require.NoError(t, err)
	require.NoError(t, r.Define("big", "340.282.366.920.938.463.463.374.607.431.768.211.456"))
	require.NoError(t, r.Define("scratch", "1"))
	require.NoError(t, r.Persist("big"))
	assert.Error(t, r.Persist("undefined"))
	require.NoError(t, r.Close())

	r2 := newRuntime(t, WithSQLiteStore(path))
	// Not loaded until asked for.
	_, err = r2.Eval("[0 1 big]")
	assert.Error(t, err)

	v, err := r2.Load("big")
	require.NoError(t, err)
	assert.Equal(t, "340282366920938463463374607431768211456", v.String())
	assert.Equal(t, "340282366920938463463374607431768211457", evalString(t, r2, "[big inc]"))

	_, err = r2.Load("scratch")
	assert.Error(t, err)

	names, err := r2.StoredNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"big"}, names)
}

func TestPersistAlways(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nock.db")

	r, err := New(WithSQLiteStore(path), WithPersistMode(PersistAlways))
	require.NoError(t, err)
	require.NoError(t, r.Define("x", "[1 2]"))
	require.NoError(t, r.Define("x", "[3 4]"))
	require.NoError(t, r.Close())

	r2 := newRuntime(t, WithSQLiteStore(path), WithPersistMode(PersistAlways))
	assert.Equal(t, "4", evalString(t, r2, "[x tail]"))

	entries, err := r2.History("x", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "[3 4]", entries[0].Value)
	assert.Equal(t, "[1 2]", entries[1].Value)

	// Prelude names are never written to the store.
	names, err := r2.StoredNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, names)
}

func TestPersistAlwaysStoredOverridesPrelude(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nock.db")

	r, err := New(WithSQLiteStore(path), WithPersistMode(PersistAlways))
	require.NoError(t, err)
	require.NoError(t, r.Define("inc", "[4 4 0 1]"))
	assert.Equal(t, "3", evalString(t, r, "[1 inc]"))
	require.NoError(t, r.Close())

	r2 := newRuntime(t, WithSQLiteStore(path), WithPersistMode(PersistAlways))
	assert.Equal(t, "3", evalString(t, r2, "[1 inc]"))
	assert.Equal(t, "5", evalString(t, r2, "[4 dec]"))

	names, err := r2.StoredNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"inc"}, names)

	// An explicit Persist still stores a prelude name.
	require.NoError(t, r2.Persist("dec"))
	names, err = r2.StoredNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"dec", "inc"}, names)
}

func TestPersistNever(t *testing.T) {
	r := newRuntime(t, WithMemoryStore(), WithPersistMode(PersistNever))
	require.NoError(t, r.Define("x", "1"))
	require.NoError(t, r.Persist("x"))

	names, err := r.StoredNames()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestNoStore(t *testing.T) {
	r := newRuntime(t)
	require.NoError(t, r.Define("x", "1"))
	assert.Equal(t, ErrNoStore, r.Persist("x"))
	_, err := r.Load("x")
	assert.Equal(t, ErrNoStore, err)
	_, err = r.History("x", 0)
	assert.Equal(t, ErrNoStore, err)
	_, err = r.StoredNames()
	assert.Equal(t, ErrNoStore, err)
}

func TestLoadReaderCollectsErrors(t *testing.T) {
	r := newRuntime(t, WithMemoryStore())

	src := `
:: two good definitions around a bad one
a = 1
b = [a missing]
c = [a dec]
`
	err := r.LoadReader(strings.NewReader(src))
	require.Error(t, err)
	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 1)
	assert.Contains(t, err.Error(), "unknown name missing")

	assert.True(t, r.ns.Has("a"))
	assert.False(t, r.ns.Has("b"))
	assert.Equal(t, "1", evalString(t, r, "[c head]"))
}

func TestLoadFile(t *testing.T) {
	r := newRuntime(t, WithMemoryStore())
	assert.Error(t, r.LoadFile(filepath.Join(t.TempDir(), "missing.nock")))
}

func TestParsePersistMode(t *testing.T) {
	tests := []struct {
		in   string
		want PersistMode
		ok   bool
	}{
		{"on_demand", PersistOnDemand, true},
		{"on-demand", PersistOnDemand, true},
		{"", PersistOnDemand, true},
		{"ALWAYS", PersistAlways, true},
		{"never", PersistNever, true},
		{"sometimes", PersistOnDemand, false},
	}
	for _, tt := range tests {
		got, ok := ParsePersistMode(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
	assert.Equal(t, "always", PersistAlways.String())
}

func TestIncomplete(t *testing.T) {
	assert.True(t, Incomplete("[1 [2 dec"))
	assert.True(t, Incomplete("[1\n2"))
	assert.False(t, Incomplete("[1 2]"))
	assert.False(t, Incomplete("[1 2]]"))
	assert.False(t, Incomplete(""))
}
