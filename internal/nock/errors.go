package nock

import (
	"fmt"

	"nickandperla.net/nock/internal/noun"
)

// Error is the error type returned by every evaluation failure.
type Error = noun.Error

// Kind classifies an Error.
type Kind = noun.Kind

// Error kinds.
const (
	NotAnAtom              = noun.NotAnAtom
	NotACell               = noun.NotACell
	AddressZero            = noun.AddressZero
	AddressThroughAtom     = noun.AddressThroughAtom
	UnimplementedOpcode    = noun.UnimplementedOpcode
	RecursionLimitExceeded = noun.RecursionLimitExceeded
	StepLimitExceeded      = noun.StepLimitExceeded
	Interrupted            = noun.Interrupted
)

// Sentinels for errors.Is, one per kind.
var (
	ErrNotAnAtom              = noun.ErrNotAnAtom
	ErrNotACell               = noun.ErrNotACell
	ErrAddressZero            = noun.ErrAddressZero
	ErrAddressThroughAtom     = noun.ErrAddressThroughAtom
	ErrUnimplementedOpcode    = noun.ErrUnimplementedOpcode
	ErrRecursionLimitExceeded = noun.ErrRecursionLimitExceeded
	ErrStepLimitExceeded      = noun.ErrStepLimitExceeded
	ErrInterrupted            = noun.ErrInterrupted
)

func errorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
