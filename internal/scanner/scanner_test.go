package scanner

import (
	"testing"

	"nickandperla.net/nock/internal/token"
)

func scanAll(t *testing.T, src string) []*Item {
	t.Helper()
	s := NewFromString(src)
	var items []*Item
	for {
		item, err := s.Next()
		if err != nil {
			t.Fatalf("Next(%q): %v", src, err)
		}
		items = append(items, item)
		if item.Token == token.EOF {
			return items
		}
	}
}

func TestScanTokens(t *testing.T) {
	tests := []struct {
		src    string
		tokens []token.Token
		values []string
	}{
		{"[1 2]", []token.Token{token.LBRACKET, token.ATOM, token.ATOM, token.RBRACKET, token.EOF}, []string{"[", "1", "2", "]", ""}},
		{"1.000.000", []token.Token{token.ATOM, token.EOF}, []string{"1000000", ""}},
		{"0xff", []token.Token{token.ATOM, token.EOF}, []string{"0xff", ""}},
		{"dec = [add-core 0]", []token.Token{token.NAME, token.EQUALS, token.LBRACKET, token.NAME, token.ATOM, token.RBRACKET, token.EOF}, []string{"dec", "=", "[", "add-core", "0", "]", ""}},
		{":: comment\n7 :: more", []token.Token{token.ATOM, token.EOF}, []string{"7", ""}},
		{"12abc", []token.Token{token.ILLEGAL, token.EOF}, []string{"12abc", ""}},
		{"0x", []token.Token{token.ILLEGAL, token.EOF}, []string{"0x", ""}},
		{"0x1.ffff", []token.Token{token.ATOM, token.EOF}, []string{"0x1ffff", ""}},
		{"1234567", []token.Token{token.ATOM, token.EOF}, []string{"1234567", ""}},
		{"1.2", []token.Token{token.ILLEGAL, token.EOF}, []string{"1.2", ""}},
		{"1. 2", []token.Token{token.ILLEGAL, token.ATOM, token.EOF}, []string{"1.", "2", ""}},
		{"1234.567", []token.Token{token.ILLEGAL, token.EOF}, []string{"1234.567", ""}},
		{"0x1.ff", []token.Token{token.ILLEGAL, token.EOF}, []string{"0x1.ff", ""}},
		{"Dec", []token.Token{token.ILLEGAL, token.NAME, token.EOF}, []string{"D", "ec", ""}},
		{": 1", []token.Token{token.ILLEGAL, token.ATOM, token.EOF}, []string{":", "1", ""}},
	}
	for _, tt := range tests {
		items := scanAll(t, tt.src)
		if len(items) != len(tt.tokens) {
			t.Fatalf("%q: got %d items, want %d", tt.src, len(items), len(tt.tokens))
		}
		for i, item := range items {
			if item.Token != tt.tokens[i] || item.Value != tt.values[i] {
				t.Errorf("%q item %d: got %s %q, want %s %q", tt.src, i, item.Token, item.Value, tt.tokens[i], tt.values[i])
			}
		}
	}
}

func TestScanPositions(t *testing.T) {
	items := scanAll(t, "[1 2]\n  ]")
	last := items[len(items)-2]
	if last.Token != token.RBRACKET || last.Line != 2 || last.Col != 3 {
		t.Errorf("got %s at %d:%d, want ] at 2:3", last.Token, last.Line, last.Col)
	}
	if items[1].Line != 1 || items[1].Col != 2 {
		t.Errorf("atom at %d:%d, want 1:2", items[1].Line, items[1].Col)
	}
}

func TestPeek(t *testing.T) {
	s := NewFromString("a b")
	peeked, err := s.Peek()
	if err != nil {
		t.Fatal(err)
	}
	next, err := s.Next()
	if err != nil {
		t.Fatal(err)
	}
	if peeked != next || next.Value != "a" {
		t.Errorf("Peek returned %q, Next returned %q", peeked.Value, next.Value)
	}
}

func TestSkipLine(t *testing.T) {
	s := NewFromString("a [1 2\nb")
	if _, err := s.Peek(); err != nil {
		t.Fatal(err)
	}
	if err := s.SkipLine(); err != nil {
		t.Fatal(err)
	}
	item, err := s.Next()
	if err != nil {
		t.Fatal(err)
	}
	if item.Value != "b" || item.Line != 2 {
		t.Errorf("got %q on line %d, want b on line 2", item.Value, item.Line)
	}
}
