// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package token defines the tokens of the noun literal syntax.
package token

// Token represents a token type.
type Token int

const (
	EOF Token = iota
	ILLEGAL

	ATOM     // 42, 1.000.000, 0x2a
	NAME     // dec, add-core, __prelude__
	LBRACKET // [
	RBRACKET // ]
	EQUALS   // = in definitions files
)

// Punctuation runes.
const (
	RuneOpen    = '['
	RuneClose   = ']'
	RuneEquals  = '='
	RuneComment = ':' // a comment is "::" to end of line
	RuneGroup   = '.' // digit grouping, 1.000.000
)

func (t Token) String() string {
	switch t {
	case EOF:
		return "EOF"
	case ILLEGAL:
		return "ILLEGAL"
	case ATOM:
		return "ATOM"
	case NAME:
		return "NAME"
	case LBRACKET:
		return "["
	case RBRACKET:
		return "]"
	case EQUALS:
		return "="
	default:
		return "UNKNOWN"
	}
}

// IsPunct returns true if the rune is a single-rune token.
func IsPunct(r rune) bool {
	switch r {
	case RuneOpen, RuneClose, RuneEquals:
		return true
	}
	return false
}

// TokenFromRune returns the token type for a punctuation rune.
func TokenFromRune(r rune) Token {
	switch r {
	case RuneOpen:
		return LBRACKET
	case RuneClose:
		return RBRACKET
	case RuneEquals:
		return EQUALS
	default:
		return ILLEGAL
	}
}

// IsNameStart reports whether r can begin a name: a lowercase letter or
// underscore.
func IsNameStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z')
}

// IsNameChar reports whether r can continue a name.
func IsNameChar(r rune) bool {
	return IsNameStart(r) || r == '-' || (r >= '0' && r <= '9')
}
