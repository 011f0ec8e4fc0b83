package tensor

import (
	"fmt"

	"github.com/eidetic-ml/eidetic/internal/errs"
)

// Shape represents the dimensions of a rank-2 tensor.
//
// Rows typically index batch samples, Cols index features.
type Shape struct {
	Rows int
	Cols int
}

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	return s.Rows * s.Cols
}

// Validate checks if the shape is valid (both dimensions > 0).
func (s Shape) Validate() error {
	if s.Rows <= 0 || s.Cols <= 0 {
		return errs.Shape("tensor.Shape", "invalid shape %v (dimensions must be > 0)", s)
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	return s.Rows == other.Rows && s.Cols == other.Cols
}

// T returns the transposed shape.
func (s Shape) T() Shape {
	return Shape{Rows: s.Cols, Cols: s.Rows}
}

// String returns the shape as "(rows, cols)".
func (s Shape) String() string {
	return fmt.Sprintf("(%d, %d)", s.Rows, s.Cols)
}
