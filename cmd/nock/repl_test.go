package main

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nickandperla.net/nock/pkg/nock"
)

func newSession(t *testing.T, opts ...nock.Option) (*session, *bytes.Buffer) {
	t.Helper()
	rt, err := nock.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { rt.Close() })
	var out bytes.Buffer
	return &session{rt: rt, out: &out}, &out
}

func TestSessionEval(t *testing.T) {
	s, out := newSession(t, nock.WithMemoryStore())

	quit, err := s.handle("[[2 3] add]")
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Equal(t, "5\n", out.String())

	_, err = s.handle("[[1 2] 0 0]")
	assert.ErrorIs(t, err, nock.ErrAddressZero)

	quit, err = s.handle("   ")
	require.NoError(t, err)
	assert.False(t, quit)
}

func TestSessionCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nock.db")
	s, out := newSession(t, nock.WithSQLiteStore(path))

	for _, line := range []string{
		":def pair [22 33]",
		":def pair [44 55]",
		":save pair",
		":load pair",
		":history pair",
		":ls",
		"[pair tail]",
		":stats",
	} {
		_, err := s.handle(line)
		require.NoError(t, err, line)
	}
	text := out.String()
	assert.Contains(t, text, "saved pair")
	assert.Contains(t, text, "pair = [44 55]")
	assert.Contains(t, text, "v1")
	assert.Contains(t, text, "stored: pair")
	assert.Contains(t, text, "55\n")
	assert.Contains(t, text, "depth")

	quit, err := s.handle(":quit")
	require.NoError(t, err)
	assert.True(t, quit)
}

func TestSessionSaveInNeverMode(t *testing.T) {
	s, out := newSession(t, nock.WithMemoryStore(), nock.WithPersistMode(nock.PersistNever))

	for _, line := range []string{":def x 1", ":save x"} {
		_, err := s.handle(line)
		require.NoError(t, err, line)
	}
	assert.Equal(t, "not saved: persist mode is never\n", out.String())
}

func TestSessionCommandErrors(t *testing.T) {
	s, _ := newSession(t, nock.WithMemoryStore())

	for _, line := range []string{
		":def",
		":def lonely",
		":def x [1",
		":save",
		":save undefined",
		":load",
		":load missing",
		":history",
		":history x many",
		":bogus",
		":prelude /nonexistent/prelude.nock",
	} {
		_, err := s.handle(line)
		assert.Error(t, err, line)
	}
}

func TestSessionPrelude(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nock.db")
	s, out := newSession(t, nock.WithSQLiteStore(path))

	_, err := s.handle(":prelude " + writeFile(t, "mine.nock", "seven = 7\n"))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "prelude saved")
	require.NoError(t, s.rt.Close())

	s2, out2 := newSession(t, nock.WithSQLiteStore(path))
	_, err = s2.handle("[0 1 seven]")
	require.NoError(t, err)
	assert.Equal(t, "7\n", out2.String())

	_, err = s2.handle(":prelude")
	require.NoError(t, err)
}

func TestSplitCommand(t *testing.T) {
	word, rest := splitCommand("  :def  x [1 2]  ")
	assert.Equal(t, ":def", word)
	assert.Equal(t, "x [1 2]", rest)

	word, rest = splitCommand(":ls")
	assert.Equal(t, ":ls", word)
	assert.Equal(t, "", rest)
}

func TestReadInputJoinsLines(t *testing.T) {
	lines := newLineSource(strings.NewReader("[[2 3]\n  add]\n:def x [1\n 2]\n:ls\n[1"))

	var got []string
	for {
		src, err := readInput(lines.next, "", "")
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, src)
	}
	assert.Equal(t, []string{"[[2 3]\n  add]", ":def x [1\n 2]", ":ls", "[1"}, got)
}
