package noun

// Equal reports whether a and b are structurally equal: atoms by value,
// cells component-wise. An atom never equals a cell. Shared subtrees are
// skipped by pointer, and the walk uses an explicit stack so deep trees
// cannot exhaust the goroutine stack.
func Equal(a, b Noun) bool {
	type pair struct{ a, b Noun }
	stack := []pair{{a, b}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch x := p.a.(type) {
		case Atom:
			y, ok := p.b.(Atom)
			if !ok || !x.Equal(y) {
				return false
			}
		case *Cell:
			y, ok := p.b.(*Cell)
			if !ok {
				return false
			}
			if x == y {
				continue
			}
			stack = append(stack, pair{x.Tail, y.Tail}, pair{x.Head, y.Head})
		default:
			return false
		}
	}
	return true
}
