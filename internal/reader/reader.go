// Package reader builds nouns from their literal text form.
//
//	42              an atom
//	1.000.000       an atom with digit grouping
//	0xff            a hex atom
//	[a b c]         the cell [a [b c]]
//	dec             a named noun, looked up through a Resolver
//	:: comment      ignored to end of line
//
// Definitions files hold lines of the form "name = noun".
package reader

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"nickandperla.net/nock/internal/noun"
	"nickandperla.net/nock/internal/scanner"
	"nickandperla.net/nock/internal/token"
)

// Resolver looks up a named noun. It returns nil, nil for unknown names.
type Resolver func(name string) (noun.Noun, error)

// SyntaxError reports malformed input with its position.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string

	// Incomplete is set when the input ended inside an open cell, so more
	// input could still make it valid.
	Incomplete bool
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// IsIncomplete reports whether err means the input stopped partway
// through a noun.
func IsIncomplete(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se) && se.Incomplete
}

// Reader reads nouns from a stream.
type Reader struct {
	scan    *scanner.Scanner
	resolve Resolver
}

// New creates a Reader. resolve may be nil, in which case names are errors.
func New(r io.Reader, resolve Resolver) *Reader {
	return &Reader{scan: scanner.New(r), resolve: resolve}
}

// Read parses exactly one noun from src.
func Read(src string, resolve Resolver) (noun.Noun, error) {
	rd := New(strings.NewReader(src), resolve)
	n, err := rd.Next()
	if err == io.EOF {
		return nil, &SyntaxError{Line: 1, Col: 1, Msg: "empty input"}
	}
	if err != nil {
		return nil, err
	}
	item, err := rd.scan.Next()
	if err != nil {
		return nil, err
	}
	if item.Token != token.EOF {
		return nil, errorAt(item, "unexpected %s after noun", describe(item))
	}
	return n, nil
}

// MustRead is Read without names that panics on error. It is meant for
// fixtures and tests.
func MustRead(src string) noun.Noun {
	n, err := Read(src, nil)
	if err != nil {
		panic(err)
	}
	return n
}

// Next reads the next noun, returning io.EOF when the input is exhausted.
func (r *Reader) Next() (noun.Noun, error) {
	item, err := r.scan.Next()
	if err != nil {
		return nil, err
	}
	if item.Token == token.EOF {
		return nil, io.EOF
	}
	return r.parse(item)
}

// Definition is one "name = noun" entry of a definitions file.
type Definition struct {
	Name  string
	Value noun.Noun
	Line  int
}

// NextDefinition reads the next definition, returning io.EOF when the
// input is exhausted.
func (r *Reader) NextDefinition() (*Definition, error) {
	item, err := r.scan.Next()
	if err != nil {
		return nil, err
	}
	if item.Token == token.EOF {
		return nil, io.EOF
	}
	if item.Token != token.NAME {
		return nil, errorAt(item, "expected definition name, got %s", describe(item))
	}
	eq, err := r.scan.Next()
	if err != nil {
		return nil, err
	}
	if eq.Token != token.EQUALS {
		return nil, errorAt(eq, "expected = after %s, got %s", item.Value, describe(eq))
	}
	value, err := r.Next()
	if err == io.EOF {
		return nil, errorAt(eq, "missing value for %s", item.Value)
	}
	if err != nil {
		return nil, err
	}
	return &Definition{Name: item.Value, Value: value, Line: item.Line}, nil
}

// SkipLine discards the rest of the current line so that reading can
// resume after a syntax error.
func (r *Reader) SkipLine() error {
	return r.scan.SkipLine()
}

func (r *Reader) parse(item *scanner.Item) (noun.Noun, error) {
	switch item.Token {
	case token.ATOM:
		return parseAtom(item)
	case token.NAME:
		return r.lookup(item)
	case token.LBRACKET:
		return r.parseCell(item)
	}
	return nil, errorAt(item, "unexpected %s", describe(item))
}

// parseCell reads the elements of [a b ... z] up to the closing bracket
// and right-associates them.
func (r *Reader) parseCell(open *scanner.Item) (noun.Noun, error) {
	var elems []noun.Noun
	for {
		item, err := r.scan.Next()
		if err != nil {
			return nil, err
		}
		switch item.Token {
		case token.RBRACKET:
			if len(elems) == 0 {
				return nil, errorAt(open, "empty brackets")
			}
			return noun.List(elems...), nil
		case token.EOF:
			err := errorAt(open, "unclosed [")
			err.Incomplete = true
			return nil, err
		}
		n, err := r.parse(item)
		if err != nil {
			return nil, err
		}
		elems = append(elems, n)
	}
}

func (r *Reader) lookup(item *scanner.Item) (noun.Noun, error) {
	if r.resolve == nil {
		return nil, errorAt(item, "unknown name %s", item.Value)
	}
	n, err := r.resolve(item.Value)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, errorAt(item, "unknown name %s", item.Value)
	}
	return n, nil
}

func parseAtom(item *scanner.Item) (noun.Noun, error) {
	digits, base := item.Value, 10
	if strings.HasPrefix(digits, "0x") {
		digits, base = digits[2:], 16
	}
	a, err := noun.ParseAtom(digits, base)
	if err != nil {
		return nil, errorAt(item, "%v", err)
	}
	return a, nil
}

func errorAt(item *scanner.Item, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{Line: item.Line, Col: item.Col, Msg: fmt.Sprintf(format, args...)}
}

func describe(item *scanner.Item) string {
	switch item.Token {
	case token.EOF:
		return "end of input"
	case token.ILLEGAL:
		return fmt.Sprintf("character %q", item.Value)
	case token.ATOM, token.NAME:
		return item.Value
	}
	return fmt.Sprintf("%q", item.Token.String())
}

// ReadAll parses every noun in src.
func ReadAll(src string, resolve Resolver) ([]noun.Noun, error) {
	rd := New(strings.NewReader(src), resolve)
	var nouns []noun.Noun
	for {
		n, err := rd.Next()
		if err == io.EOF {
			return nouns, nil
		}
		if err != nil {
			return nil, err
		}
		nouns = append(nouns, n)
	}
}
