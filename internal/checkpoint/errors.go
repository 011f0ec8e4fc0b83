package checkpoint

import (
	"errors"
	"fmt"
)

// Format errors.
var (
	ErrInvalidMagic       = errors.New("invalid magic bytes: not an .eidc file")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrHeaderTooLarge     = errors.New("header too large")
	ErrTruncated          = errors.New("truncated file")
	ErrChecksumMismatch   = errors.New("checksum mismatch: file may be corrupted")
	ErrNoOptimizerState   = errors.New("checkpoint has no optimizer state")
)

// ValidationError describes a malformed tensor table.
type ValidationError struct {
	Type    string // Type of validation error (e.g., "offset_overlap", "out_of_bounds")
	Tensor  string // Name of the problematic tensor
	Tensor2 string // Second tensor name (for overlap errors)
	Details string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Tensor2 != "" {
		return fmt.Sprintf("validation error [%s]: tensors %q and %q: %s", e.Type, e.Tensor, e.Tensor2, e.Details)
	}
	if e.Tensor != "" {
		return fmt.Sprintf("validation error [%s]: tensor %q: %s", e.Type, e.Tensor, e.Details)
	}
	return fmt.Sprintf("validation error [%s]: %s", e.Type, e.Details)
}
