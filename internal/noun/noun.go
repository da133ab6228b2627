// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package noun defines the Nock noun: a binary tree whose leaves are
// natural numbers.
package noun

import "strings"

// Noun is either an Atom or a *Cell. Nouns are immutable once built, so
// any subtree may be shared by any number of parents.
type Noun interface {
	// String returns the diagnostic rendering of the noun.
	String() string
	// IsAtom reports whether the noun is an atom.
	IsAtom() bool

	isNoun()
}

// Cell is an ordered pair of nouns.
type Cell struct {
	Head Noun
	Tail Noun
}

// NewCell pairs two nouns.
func NewCell(head, tail Noun) *Cell {
	return &Cell{Head: head, Tail: tail}
}

func (c *Cell) IsAtom() bool { return false }
func (c *Cell) isNoun()      {}

// String renders the cell as [head tail], flattening right-nested tails so
// that [1 [2 3]] prints as [1 2 3].
func (c *Cell) String() string {
	var sb strings.Builder
	writeCell(&sb, c)
	return sb.String()
}

func writeNoun(sb *strings.Builder, n Noun) {
	if c, ok := n.(*Cell); ok {
		writeCell(sb, c)
		return
	}
	sb.WriteString(n.String())
}

func writeCell(sb *strings.Builder, c *Cell) {
	sb.WriteByte('[')
	writeNoun(sb, c.Head)
	var rest Noun = c.Tail
	for {
		sb.WriteByte(' ')
		next, ok := rest.(*Cell)
		if !ok {
			sb.WriteString(rest.String())
			break
		}
		writeNoun(sb, next.Head)
		rest = next.Tail
	}
	sb.WriteByte(']')
}

// List builds the right-associated tuple [n0 [n1 [... nk]]]. A single
// argument is returned unchanged. List panics when called with no nouns.
func List(nouns ...Noun) Noun {
	if len(nouns) == 0 {
		panic("noun.List: no nouns")
	}
	result := nouns[len(nouns)-1]
	for i := len(nouns) - 2; i >= 0; i-- {
		result = NewCell(nouns[i], result)
	}
	return result
}

// Ints builds a right-associated tuple of small atoms, mostly for tests
// and fixtures: Ints(3, 4, 5) is [3 4 5].
func Ints(values ...uint64) Noun {
	nouns := make([]Noun, len(values))
	for i, v := range values {
		nouns[i] = NewAtom(v)
	}
	return List(nouns...)
}

// AsAtom returns n as an Atom if it is one.
func AsAtom(n Noun) (Atom, bool) {
	a, ok := n.(Atom)
	return a, ok
}

// AsCell returns n as a *Cell if it is one.
func AsCell(n Noun) (*Cell, bool) {
	c, ok := n.(*Cell)
	return c, ok
}

// Value returns the atom held by n, or a NotAnAtom error if n is a cell.
func Value(n Noun) (Atom, error) {
	if a, ok := n.(Atom); ok {
		return a, nil
	}
	return Atom{}, &Error{Kind: NotAnAtom, Msg: "expecting atom, got cell"}
}

// Open destructures a cell. If n is an atom it fails with NotACell, using
// msg as the error message when one is given.
func Open(n Noun, msg ...string) (head, tail Noun, err error) {
	if c, ok := n.(*Cell); ok {
		return c.Head, c.Tail, nil
	}
	m := "expecting cell, got atom"
	if len(msg) > 0 && msg[0] != "" {
		m = msg[0]
	}
	return nil, nil, &Error{Kind: NotACell, Msg: m}
}
