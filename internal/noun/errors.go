package noun

import "fmt"

// Kind classifies evaluation failures.
type Kind int

const (
	// NotAnAtom: an atom was required but a cell was found.
	NotAnAtom Kind = iota + 1
	// NotACell: a cell was required but an atom was found.
	NotACell
	// AddressZero: slot or edit address 0.
	AddressZero
	// AddressThroughAtom: an address path ran past a leaf.
	AddressThroughAtom
	// UnimplementedOpcode: formula head outside 0-10.
	UnimplementedOpcode
	// RecursionLimitExceeded: non-tail nesting passed the evaluator's depth limit.
	RecursionLimitExceeded
	// StepLimitExceeded: the evaluator's step budget ran out.
	StepLimitExceeded
	// Interrupted: the evaluation's context was cancelled.
	Interrupted
)

func (k Kind) String() string {
	switch k {
	case NotAnAtom:
		return "not an atom"
	case NotACell:
		return "not a cell"
	case AddressZero:
		return "address zero"
	case AddressThroughAtom:
		return "address through atom"
	case UnimplementedOpcode:
		return "unimplemented opcode"
	case RecursionLimitExceeded:
		return "recursion limit exceeded"
	case StepLimitExceeded:
		return "step limit exceeded"
	case Interrupted:
		return "interrupted"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is a failed evaluation. Err carries an underlying cause, such as
// the context error behind Interrupted.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind. A target without a message
// matches every error of its kind, which is how the Err* sentinels work.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Msg == "" || t.Msg == e.Msg)
}

// Sentinels for errors.Is.
var (
	ErrNotAnAtom              = &Error{Kind: NotAnAtom}
	ErrNotACell               = &Error{Kind: NotACell}
	ErrAddressZero            = &Error{Kind: AddressZero}
	ErrAddressThroughAtom     = &Error{Kind: AddressThroughAtom}
	ErrUnimplementedOpcode    = &Error{Kind: UnimplementedOpcode}
	ErrRecursionLimitExceeded = &Error{Kind: RecursionLimitExceeded}
	ErrStepLimitExceeded      = &Error{Kind: StepLimitExceeded}
	ErrInterrupted            = &Error{Kind: Interrupted}
)
