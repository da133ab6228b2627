package nock

import "nickandperla.net/nock/internal/noun"

// EditAt returns a copy of base with the subtree at address replaced by
// replacement. Only the nodes on the address path are rebuilt; every other
// subtree is shared with base.
//
//	#[1 b c]            b
//	#[(a + a) b c]      #[a [b /[(a + a + 1) c]] c]
//	#[(a + a + 1) b c]  #[a [/[(a + a) c] b] c]
func EditAt(address noun.Atom, replacement, base noun.Noun) (noun.Noun, error) {
	if address.IsZero() {
		return nil, errorf(AddressZero, "edit address can't be zero")
	}
	depth := address.BitLen() - 1

	// Walk down once, remembering the untouched sibling at each level.
	siblings := make([]noun.Noun, depth)
	n := base
	for level := 0; level < depth; level++ {
		c, ok := noun.AsCell(n)
		if !ok {
			return nil, errorf(AddressThroughAtom, "attempt to address through an atom (edit %s)", address)
		}
		if address.Bit(depth-1-level) == 0 {
			siblings[level] = c.Tail
			n = c.Head
		} else {
			siblings[level] = c.Head
			n = c.Tail
		}
	}

	// Rebuild from the target back up to the root.
	result := replacement
	for level := depth - 1; level >= 0; level-- {
		if address.Bit(depth-1-level) == 0 {
			result = noun.NewCell(result, siblings[level])
		} else {
			result = noun.NewCell(siblings[level], result)
		}
	}
	return result, nil
}

// edit implements opcode 10:
//
//	*[a 10 [b c] d]     #[b *[a c] *[a d]]
func (r *run) edit(subject, args noun.Noun) (noun.Noun, error) {
	head, d, err := noun.Open(args)
	if err != nil {
		return nil, err
	}
	b, c, err := noun.Open(head)
	if err != nil {
		return nil, err
	}
	address, ok := noun.AsAtom(b)
	if !ok {
		return nil, errorf(NotAnAtom, "edit address must be an atom")
	}
	replacement, err := r.apply(subject, c)
	if err != nil {
		return nil, err
	}
	base, err := r.apply(subject, d)
	if err != nil {
		return nil, err
	}
	return EditAt(address, replacement, base)
}
