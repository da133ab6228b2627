package nock

import "nickandperla.net/nock/internal/noun"

//                  1
//          2              3
//      4       5       6      7
//    8   9   10 11   12 13  14 15
//
// An address names a node by its path from the root: after the leading 1,
// each bit picks the head (0) or the tail (1).

// Slot resolves address against subject (opcode 0). The address must be a
// nonzero atom.
func Slot(address, subject noun.Noun) (noun.Noun, error) {
	a, ok := noun.AsAtom(address)
	if !ok {
		return nil, errorf(NotAnAtom, "slot address must be an atom")
	}
	return SlotAt(a, subject)
}

// SlotAt resolves an atom address against subject.
func SlotAt(address noun.Atom, subject noun.Noun) (noun.Noun, error) {
	if address.IsZero() {
		return nil, errorf(AddressZero, "slot address can't be zero")
	}
	n := subject
	for i := address.BitLen() - 2; i >= 0; i-- {
		c, ok := noun.AsCell(n)
		if !ok {
			return nil, errorf(AddressThroughAtom, "attempt to address through an atom (slot %s)", address)
		}
		if address.Bit(i) == 0 {
			n = c.Head
		} else {
			n = c.Tail
		}
	}
	return n, nil
}
