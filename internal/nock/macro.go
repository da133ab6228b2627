package nock

import "nickandperla.net/nock/internal/noun"

// Opcodes 2 and 6-9 end by reducing a computed formula. Each returns that
// final reduction as a tail call for apply to loop on.

// eval implements opcode 2:
//
//	*[a 2 b c]          *[*[a b] *[a c]]
func (r *run) eval(subject, args noun.Noun) (tail, error) {
	b, c, err := noun.Open(args, "can't apply atom to a subject")
	if err != nil {
		return tail{}, err
	}
	newSubject, err := r.apply(subject, b)
	if err != nil {
		return tail{}, err
	}
	newFormula, err := r.apply(subject, c)
	if err != nil {
		return tail{}, err
	}
	return tail{newSubject, newFormula}, nil
}

// branch implements opcode 6. The predicate must reduce to 0 or 1; the
// failures for anything else are the ones *[a 4 4 b] and the [2 3] lookup
// would produce.
//
//	*[a 6 b c d]        *[a *[[c d] 0 *[[2 3] 0 *[a 4 4 b]]]]
func (r *run) branch(subject, args noun.Noun) (tail, error) {
	b, cd, err := noun.Open(args)
	if err != nil {
		return tail{}, err
	}
	c, d, err := noun.Open(cd)
	if err != nil {
		return tail{}, err
	}
	p, err := r.apply(subject, b)
	if err != nil {
		return tail{}, err
	}
	a, ok := noun.AsAtom(p)
	if !ok {
		return tail{}, errorf(NotAnAtom, "attempt to increment a cell (if condition %s)", p)
	}
	switch v, _ := a.Uint64(); {
	case a.IsZero():
		return tail{subject, c}, nil
	case v == 1:
		return tail{subject, d}, nil
	}
	return tail{}, errorf(AddressThroughAtom, "if condition %s is neither 0 nor 1", a)
}

// compose implements opcode 7:
//
//	*[a 7 b c]          *[*[a b] c]
func (r *run) compose(subject, args noun.Noun) (tail, error) {
	b, c, err := noun.Open(args)
	if err != nil {
		return tail{}, err
	}
	newSubject, err := r.apply(subject, b)
	if err != nil {
		return tail{}, err
	}
	return tail{newSubject, c}, nil
}

// push implements opcode 8:
//
//	*[a 8 b c]          *[[*[a b] a] c]
func (r *run) push(subject, args noun.Noun) (tail, error) {
	b, c, err := noun.Open(args)
	if err != nil {
		return tail{}, err
	}
	v, err := r.apply(subject, b)
	if err != nil {
		return tail{}, err
	}
	return tail{noun.NewCell(v, subject), c}, nil
}

// invoke implements opcode 9, running the arm at slot b of a core with the
// core itself as subject:
//
//	*[a 9 b c]          *[*[a c] 2 [0 1] 0 b]
func (r *run) invoke(subject, args noun.Noun) (tail, error) {
	b, c, err := noun.Open(args)
	if err != nil {
		return tail{}, err
	}
	core, err := r.apply(subject, c)
	if err != nil {
		return tail{}, err
	}
	arm, err := Slot(b, core)
	if err != nil {
		return tail{}, err
	}
	return tail{core, arm}, nil
}
