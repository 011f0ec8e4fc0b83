// Package errs defines the error kinds shared by every eidetic package.
//
// Each kind is a sentinel error. Functions return an *Error that names the
// failing operation and carries the details; callers match the kind with
// errors.Is:
//
//	out, err := a.MatMul(b)
//	if errors.Is(err, errs.ErrDimensionMismatch) {
//	    // inner dimensions differ
//	}
package errs

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	ErrShapeMismatch          = errors.New("shape mismatch")
	ErrDimensionMismatch      = errors.New("dimension mismatch")
	ErrIndexOutOfBounds       = errors.New("index out of bounds")
	ErrUninitializedGradients = errors.New("uninitialized gradients")
	ErrNonFiniteValue         = errors.New("non-finite value")
	ErrInvalidConfiguration   = errors.New("invalid configuration")
	ErrInvalidPass            = errors.New("invalid forward/backward pass")
	ErrCapacityExceeded       = errors.New("capacity exceeded")
)

// Error provides detailed information about a failed operation.
type Error struct {
	Kind    error  // One of the Err* sentinels
	Op      string // Operation that failed (e.g., "tensor.MatMul")
	Details string // Additional details
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, e.Kind, e.Details)
}

// Unwrap returns the error kind so errors.Is matches the sentinel.
func (e *Error) Unwrap() error {
	return e.Kind
}

// New creates an *Error of the given kind.
func New(kind error, op, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Details: fmt.Sprintf(format, args...),
	}
}

// Shape reports a ShapeMismatch.
func Shape(op, format string, args ...any) error {
	return New(ErrShapeMismatch, op, format, args...)
}

// Dimension reports a DimensionMismatch.
func Dimension(op, format string, args ...any) error {
	return New(ErrDimensionMismatch, op, format, args...)
}

// Config reports an InvalidConfiguration.
func Config(op, format string, args ...any) error {
	return New(ErrInvalidConfiguration, op, format, args...)
}

// NonFinite reports a NonFiniteValue.
func NonFinite(op, format string, args ...any) error {
	return New(ErrNonFiniteValue, op, format, args...)
}

// KindOf returns the sentinel kind of err, or nil if err is not an eidetic error.
func KindOf(err error) error {
	for _, kind := range []error{
		ErrShapeMismatch, ErrDimensionMismatch, ErrIndexOutOfBounds,
		ErrUninitializedGradients, ErrNonFiniteValue, ErrInvalidConfiguration,
		ErrInvalidPass, ErrCapacityExceeded,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
