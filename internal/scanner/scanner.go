// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package scanner provides a streaming lexer for noun literals.
package scanner

import (
	"bufio"
	"io"
	"strings"
	"unicode"

	"nickandperla.net/nock/internal/token"
)

// Scanner tokenizes noun literal input rune-by-rune.
type Scanner struct {
	reader  *bufio.Reader
	buf     strings.Builder
	peeked  *Item
	line    int // Current line number (1-based)
	col     int // Column of the last rune read (1-based)
	prevCol int // Column before the last newline, for UnreadRune
}

// Item represents a scanned token with its value.
type Item struct {
	Token token.Token
	Value string
	Line  int // Line number where this token started
	Col   int // Column where this token started
}

// New creates a new Scanner from an io.Reader.
func New(r io.Reader) *Scanner {
	return &Scanner{
		reader: bufio.NewReader(r),
		line:   1,
	}
}

// NewFromString creates a new Scanner from a string.
func NewFromString(s string) *Scanner {
	return New(strings.NewReader(s))
}

// Line returns the current line number (1-based).
func (s *Scanner) Line() int {
	return s.line
}

func (s *Scanner) read() (rune, error) {
	r, _, err := s.reader.ReadRune()
	if err != nil {
		return 0, err
	}
	if r == '\n' {
		s.line++
		s.prevCol = s.col
		s.col = 0
	} else {
		s.col++
	}
	return r, nil
}

func (s *Scanner) unread(r rune) {
	s.reader.UnreadRune()
	if r == '\n' {
		s.line--
		s.col = s.prevCol
	} else {
		s.col--
	}
}

// Peek returns the next item without consuming it.
func (s *Scanner) Peek() (*Item, error) {
	if s.peeked != nil {
		return s.peeked, nil
	}
	item, err := s.Next()
	if err != nil {
		return nil, err
	}
	s.peeked = item
	return item, nil
}

// Next returns the next token from the input.
func (s *Scanner) Next() (*Item, error) {
	if s.peeked != nil {
		item := s.peeked
		s.peeked = nil
		return item, nil
	}

	if illegal, err := s.skipSpaceAndComments(); err != nil || illegal != nil {
		return illegal, err
	}

	r, err := s.read()
	if err == io.EOF {
		return &Item{Token: token.EOF, Line: s.line, Col: s.col + 1}, nil
	}
	if err != nil {
		return nil, err
	}
	line, col := s.line, s.col

	switch {
	case token.IsPunct(r):
		return &Item{Token: token.TokenFromRune(r), Value: string(r), Line: line, Col: col}, nil
	case r >= '0' && r <= '9':
		return s.scanAtom(r, line, col)
	case token.IsNameStart(r):
		return s.scanName(r, line, col)
	}
	return &Item{Token: token.ILLEGAL, Value: string(r), Line: line, Col: col}, nil
}

// skipSpaceAndComments consumes whitespace and "::" comments. A lone ':'
// is returned as an ILLEGAL item, since bufio only allows one rune of
// pushback.
func (s *Scanner) skipSpaceAndComments() (*Item, error) {
	for {
		r, err := s.read()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if unicode.IsSpace(r) {
			continue
		}
		if r != token.RuneComment {
			s.unread(r)
			return nil, nil
		}

		line, col := s.line, s.col
		next, err := s.read()
		if err != nil && err != io.EOF {
			return nil, err
		}
		if err == nil && next == token.RuneComment {
			if err := s.skipLine(); err != nil {
				return nil, err
			}
			continue
		}
		if err == nil {
			s.unread(next)
		}
		return &Item{Token: token.ILLEGAL, Value: string(r), Line: line, Col: col}, nil
	}
}

func (s *Scanner) skipLine() error {
	for {
		r, err := s.read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if r == '\n' {
			return nil
		}
	}
}

// scanAtom scans a decimal atom or a hex atom with a 0x prefix. Either may
// be grouped with dots the way Hoon prints them: decimal in threes
// (1.000.000) and hex in fours (0x1.ffff). The dots are dropped from Value.
func (s *Scanner) scanAtom(first rune, line, col int) (*Item, error) {
	s.buf.Reset()
	s.buf.WriteRune(first)
	isDigit := func(r rune) bool { return r >= '0' && r <= '9' }
	prefix, group := "", 3

	if first == '0' {
		r, err := s.read()
		if err != nil && err != io.EOF {
			return nil, err
		}
		if err == nil {
			if r == 'x' {
				s.buf.WriteRune(r)
				prefix, group = "0x", 4
				isDigit = func(r rune) bool {
					return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
				}
			} else {
				s.unread(r)
			}
		}
	}

	for {
		r, err := s.read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if isDigit(r) {
			s.buf.WriteRune(r)
			continue
		}
		if r == token.RuneGroup {
			s.buf.WriteRune(r)
			continue
		}
		if token.IsNameChar(r) {
			// 12abc is not an atom followed by a name
			s.buf.WriteRune(r)
			if err := s.scanNameChars(); err != nil {
				return nil, err
			}
			return &Item{Token: token.ILLEGAL, Value: s.buf.String(), Line: line, Col: col}, nil
		}
		s.unread(r)
		break
	}

	raw := s.buf.String()
	digits, ok := ungroup(strings.TrimPrefix(raw, prefix), group)
	if !ok {
		return &Item{Token: token.ILLEGAL, Value: raw, Line: line, Col: col}, nil
	}
	return &Item{Token: token.ATOM, Value: prefix + digits, Line: line, Col: col}, nil
}

// ungroup strips grouping dots from digits. The leading group holds one to
// size digits and every later group exactly size.
func ungroup(digits string, size int) (string, bool) {
	groups := strings.Split(digits, string(token.RuneGroup))
	if len(groups) == 1 {
		return digits, digits != ""
	}
	if len(groups[0]) == 0 || len(groups[0]) > size {
		return "", false
	}
	for _, g := range groups[1:] {
		if len(g) != size {
			return "", false
		}
	}
	return strings.Join(groups, ""), true
}

// scanName scans an identifier: a lowercase letter or underscore followed
// by lowercase letters, digits, underscores and dashes.
func (s *Scanner) scanName(first rune, line, col int) (*Item, error) {
	s.buf.Reset()
	s.buf.WriteRune(first)
	if err := s.scanNameChars(); err != nil {
		return nil, err
	}
	return &Item{Token: token.NAME, Value: s.buf.String(), Line: line, Col: col}, nil
}

func (s *Scanner) scanNameChars() error {
	for {
		r, err := s.read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if !token.IsNameChar(r) {
			s.unread(r)
			return nil
		}
		s.buf.WriteRune(r)
	}
}

// SkipLine discards any peeked item and the rest of the current line.
func (s *Scanner) SkipLine() error {
	s.peeked = nil
	return s.skipLine()
}
