package noun

import (
	"fmt"
	"math"
	"math/big"
	"math/bits"

	"lukechampine.com/uint128"
)

// Atom is a natural number of any size. Values that fit in 128 bits are
// held directly; larger values live in an immutable big.Int. The form is
// canonical: an Atom below 2^128 never carries a big.Int.
type Atom struct {
	direct   uint128.Uint128
	indirect *big.Int
}

// Loobeans: Nock's yes is 0 and no is 1.
var (
	Yes = NewAtom(0)
	No  = NewAtom(1)
)

// NewAtom returns the atom for v.
func NewAtom(v uint64) Atom {
	return Atom{direct: uint128.From64(v)}
}

// AtomFromBig returns the atom for b, which must not be negative.
func AtomFromBig(b *big.Int) (Atom, error) {
	if b.Sign() < 0 {
		return Atom{}, fmt.Errorf("atom cannot be negative: %s", b)
	}
	if b.BitLen() <= 128 {
		return Atom{direct: uint128.FromBig(b)}, nil
	}
	return Atom{indirect: new(big.Int).Set(b)}, nil
}

// ParseAtom parses s in the given base (as accepted by big.Int.SetString).
func ParseAtom(s string, base int) (Atom, error) {
	b, ok := new(big.Int).SetString(s, base)
	if !ok {
		return Atom{}, fmt.Errorf("invalid atom %q", s)
	}
	return AtomFromBig(b)
}

func (a Atom) IsAtom() bool { return true }
func (a Atom) isNoun()      {}

// String renders the atom in decimal.
func (a Atom) String() string {
	if a.indirect != nil {
		return a.indirect.String()
	}
	return a.direct.String()
}

// Big returns a copy of the atom's value.
func (a Atom) Big() *big.Int {
	if a.indirect != nil {
		return new(big.Int).Set(a.indirect)
	}
	return a.direct.Big()
}

// Uint64 returns the value if it fits in 64 bits.
func (a Atom) Uint64() (uint64, bool) {
	if a.indirect != nil || a.direct.Hi != 0 {
		return 0, false
	}
	return a.direct.Lo, true
}

// IsZero reports whether the atom is 0.
func (a Atom) IsZero() bool {
	return a.indirect == nil && a.direct.IsZero()
}

// Equal reports whether two atoms hold the same value.
func (a Atom) Equal(b Atom) bool {
	if a.indirect != nil || b.indirect != nil {
		if a.indirect == nil || b.indirect == nil {
			return false
		}
		return a.indirect.Cmp(b.indirect) == 0
	}
	return a.direct.Equals(b.direct)
}

// Inc returns a+1, growing past 128 bits when needed.
func (a Atom) Inc() Atom {
	if a.indirect != nil {
		return Atom{indirect: new(big.Int).Add(a.indirect, big.NewInt(1))}
	}
	if a.direct.Lo == math.MaxUint64 && a.direct.Hi == math.MaxUint64 {
		return Atom{indirect: new(big.Int).Add(a.direct.Big(), big.NewInt(1))}
	}
	return Atom{direct: a.direct.Add64(1)}
}

// BitLen returns the number of significant bits; 0 has length 0.
func (a Atom) BitLen() int {
	if a.indirect != nil {
		return a.indirect.BitLen()
	}
	if a.direct.Hi != 0 {
		return 64 + bits.Len64(a.direct.Hi)
	}
	return bits.Len64(a.direct.Lo)
}

// Bit returns bit i of the atom, counting from the least significant.
func (a Atom) Bit(i int) uint {
	if a.indirect != nil {
		return a.indirect.Bit(i)
	}
	switch {
	case i < 64:
		return uint(a.direct.Lo>>uint(i)) & 1
	case i < 128:
		return uint(a.direct.Hi>>uint(i-64)) & 1
	}
	return 0
}
