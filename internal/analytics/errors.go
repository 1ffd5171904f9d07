package analytics

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the analytics packages wraps exactly
// one of these, so callers can branch with errors.Is.
var (
	// ErrInvalidInput indicates a missing (nil) element in the input sequence.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an element kind outside int32/int64/float32/float64.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrInvalidParameter indicates an out-of-range scalar argument.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInsufficientData indicates the sequence is too short for the operation.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInternalInvariant indicates a post-condition that upstream validation
	// should have made unreachable.
	ErrInternalInvariant = errors.New("internal invariant violation")
)

// Error is an analytics failure attributed to the entry point that raised it.
type Error struct {
	Op   string // entry point, e.g. "kplusplus"
	Kind error  // one of the Err* kinds above
	Msg  string
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, e.Kind, e.Msg)
}

// Unwrap returns the error kind
func (e *Error) Unwrap() error {
	return e.Kind
}

// Errorf builds an *Error for op with the given kind and formatted message.
func Errorf(op string, kind error, format string, args ...interface{}) error {
	return &Error{
		Op:   op,
		Kind: kind,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// KindOf returns the error kind wrapped by err, or nil when err does not
// carry one of the analytics kinds.
func KindOf(err error) error {
	for _, kind := range []error{
		ErrInvalidInput,
		ErrUnsupportedType,
		ErrInvalidParameter,
		ErrInsufficientData,
		ErrInternalInvariant,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
