// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package nock implements the Nock 4K evaluator.
//
//	*[a [b c] d]        [*[a b c] *[a d]]
//
//	*[a 0 b]            /[b a]
//	*[a 1 b]            b
//	*[a 2 b c]          *[*[a b] *[a c]]
//	*[a 3 b]            ?*[a b]
//	*[a 4 b]            +*[a b]
//	*[a 5 b c]          =[*[a b] *[a c]]
//
//	*[a 6 b c d]        *[a *[[c d] 0 *[[2 3] 0 *[a 4 4 b]]]]
//	*[a 7 b c]          *[*[a b] c]
//	*[a 8 b c]          *[[*[a b] a] c]
//	*[a 9 b c]          *[*[a c] 2 [0 1] 0 b]
//	*[a 10 [b c] d]     #[b *[a c] *[a d]]
//
// The evaluator never logs, prints or panics on malformed input; every
// failure comes back as an *Error.
package nock

import (
	"context"

	"nickandperla.net/nock/internal/noun"
)

// DefaultMaxDepth bounds non-tail nesting when no WithMaxDepth is given.
const DefaultMaxDepth = 10000

// How often, in steps, a cancellable evaluation polls its context.
const pollInterval = 1024

// Opcodes.
const (
	OpSlot uint64 = iota
	OpConstant
	OpEval
	OpDepth
	OpIncrement
	OpEqual
	OpIf
	OpCompose
	OpPush
	OpInvoke
	OpEdit
)

// Tracer observes every reduction step: the nesting depth and the
// subject/formula pair about to be reduced.
type Tracer func(depth int, subject, formula noun.Noun)

// Evaluator reduces nouns. It holds only configuration, so one Evaluator
// may serve concurrent calls.
type Evaluator struct {
	maxDepth int
	maxSteps int64
	tracer   Tracer
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithMaxDepth bounds non-tail nesting. Zero or less disables the bound.
func WithMaxDepth(n int) Option {
	return func(e *Evaluator) { e.maxDepth = n }
}

// WithMaxSteps bounds the number of reduction steps per call. Zero means
// unlimited.
func WithMaxSteps(n int64) Option {
	return func(e *Evaluator) { e.maxSteps = n }
}

// WithTracer installs a step observer.
func WithTracer(t Tracer) Option {
	return func(e *Evaluator) { e.tracer = t }
}

// New creates a new Evaluator with the given options.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEvaluator = New()

// Nock evaluates [subject formula] with the default evaluator.
func Nock(n noun.Noun) (noun.Noun, error) {
	return defaultEvaluator.Nock(n)
}

// Apply evaluates formula against subject with the default evaluator.
func Apply(subject, formula noun.Noun) (noun.Noun, error) {
	return defaultEvaluator.Apply(subject, formula)
}

// Stats describes a finished evaluation.
type Stats struct {
	Steps    int64
	MaxDepth int
}

// Nock evaluates n, which must be the cell [subject formula].
func (e *Evaluator) Nock(n noun.Noun) (noun.Noun, error) {
	return e.NockContext(context.Background(), n)
}

// NockContext is Nock with cancellation.
func (e *Evaluator) NockContext(ctx context.Context, n noun.Noun) (noun.Noun, error) {
	result, _, err := e.NockStats(ctx, n)
	return result, err
}

// NockStats is NockContext that also reports step and depth counts.
func (e *Evaluator) NockStats(ctx context.Context, n noun.Noun) (noun.Noun, Stats, error) {
	subject, formula, err := noun.Open(n, "attempt to evaluate atom")
	if err != nil {
		return nil, Stats{}, err
	}
	return e.ApplyStats(ctx, subject, formula)
}

// Apply evaluates formula against subject.
func (e *Evaluator) Apply(subject, formula noun.Noun) (noun.Noun, error) {
	return e.ApplyContext(context.Background(), subject, formula)
}

// ApplyContext is Apply with cancellation.
func (e *Evaluator) ApplyContext(ctx context.Context, subject, formula noun.Noun) (noun.Noun, error) {
	result, _, err := e.ApplyStats(ctx, subject, formula)
	return result, err
}

// ApplyStats is ApplyContext that also reports step and depth counts.
func (e *Evaluator) ApplyStats(ctx context.Context, subject, formula noun.Noun) (noun.Noun, Stats, error) {
	r := &run{e: e, done: ctx.Done(), ctx: ctx}
	result, err := r.apply(subject, formula)
	return result, Stats{Steps: r.steps, MaxDepth: r.maxSeen}, err
}

// run is the state of one evaluation.
type run struct {
	e       *Evaluator
	ctx     context.Context
	done    <-chan struct{}
	depth   int
	maxSeen int
	steps   int64
}

// tail is a pending tail call: reduce formula against subject in the
// current frame instead of a new one.
type tail struct {
	subject, formula noun.Noun
}

// apply reduces formula against subject. Tail positions loop here rather
// than recurse, so only genuinely nested reductions count toward depth.
func (r *run) apply(subject, formula noun.Noun) (noun.Noun, error) {
	r.depth++
	defer func() { r.depth-- }()
	if r.e.maxDepth > 0 && r.depth > r.e.maxDepth {
		return nil, errorf(RecursionLimitExceeded, "nesting deeper than %d", r.e.maxDepth)
	}
	if r.depth > r.maxSeen {
		r.maxSeen = r.depth
	}

	for {
		if err := r.step(subject, formula); err != nil {
			return nil, err
		}

		head, args, err := noun.Open(formula, "attempt to apply atom as a formula")
		if err != nil {
			return nil, err
		}

		if cell, ok := noun.AsCell(head); ok {
			return r.autocons(subject, cell, args)
		}

		code, ok := head.(noun.Atom).Uint64()
		if !ok || code > OpEdit {
			return nil, errorf(UnimplementedOpcode, "unimplemented opcode %s", head)
		}

		result, next, err := r.op(code, subject, args)
		if err != nil {
			return nil, err
		}
		if result != nil {
			return result, nil
		}
		subject, formula = next.subject, next.formula
	}
}

// autocons pairs the results of two formulas against the same subject.
func (r *run) autocons(subject noun.Noun, head *noun.Cell, rest noun.Noun) (noun.Noun, error) {
	left, err := r.apply(subject, head)
	if err != nil {
		return nil, err
	}
	right, err := r.apply(subject, rest)
	if err != nil {
		return nil, err
	}
	return noun.NewCell(left, right), nil
}

// op dispatches one instruction. It returns either a result or, for the
// macro opcodes, the tail call to continue with.
func (r *run) op(code uint64, subject, args noun.Noun) (noun.Noun, tail, error) {
	var (
		result noun.Noun
		next   tail
		err    error
	)
	switch code {
	case OpSlot:
		result, err = Slot(args, subject)
	case OpConstant:
		result = args
	case OpEval:
		next, err = r.eval(subject, args)
	case OpDepth:
		result, err = r.cellTest(subject, args)
	case OpIncrement:
		result, err = r.increment(subject, args)
	case OpEqual:
		result, err = r.equal(subject, args)
	case OpIf:
		next, err = r.branch(subject, args)
	case OpCompose:
		next, err = r.compose(subject, args)
	case OpPush:
		next, err = r.push(subject, args)
	case OpInvoke:
		next, err = r.invoke(subject, args)
	case OpEdit:
		result, err = r.edit(subject, args)
	}
	return result, next, err
}

// step counts a reduction, enforcing the step budget and cancellation.
func (r *run) step(subject, formula noun.Noun) error {
	r.steps++
	if r.e.maxSteps > 0 && r.steps > r.e.maxSteps {
		return errorf(StepLimitExceeded, "more than %d steps", r.e.maxSteps)
	}
	if r.done != nil && r.steps%pollInterval == 0 {
		select {
		case <-r.done:
			return &Error{Kind: Interrupted, Msg: "evaluation interrupted", Err: r.ctx.Err()}
		default:
		}
	}
	if r.e.tracer != nil {
		r.e.tracer(r.depth, subject, formula)
	}
	return nil
}

// cellTest implements opcode 3.
func (r *run) cellTest(subject, args noun.Noun) (noun.Noun, error) {
	n, err := r.apply(subject, args)
	if err != nil {
		return nil, err
	}
	if n.IsAtom() {
		return noun.No, nil
	}
	return noun.Yes, nil
}

// increment implements opcode 4.
func (r *run) increment(subject, args noun.Noun) (noun.Noun, error) {
	n, err := r.apply(subject, args)
	if err != nil {
		return nil, err
	}
	a, ok := noun.AsAtom(n)
	if !ok {
		return nil, errorf(NotAnAtom, "attempt to increment a cell")
	}
	return a.Inc(), nil
}

// equal implements opcode 5.
func (r *run) equal(subject, args noun.Noun) (noun.Noun, error) {
	b, c, err := noun.Open(args)
	if err != nil {
		return nil, err
	}
	left, err := r.apply(subject, b)
	if err != nil {
		return nil, err
	}
	right, err := r.apply(subject, c)
	if err != nil {
		return nil, err
	}
	if noun.Equal(left, right) {
		return noun.Yes, nil
	}
	return noun.No, nil
}
