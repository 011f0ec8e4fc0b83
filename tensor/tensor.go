// Copyright 2025 Eidetic Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/eidetic-ml/eidetic/internal/errs"
	"github.com/eidetic-ml/eidetic/internal/tensor"
)

// Tensor is a dense row-major float64 matrix.
type Tensor = tensor.Tensor

// Shape is the (rows, cols) extent of a tensor.
type Shape = tensor.Shape

// Arena allocates tensors from a fixed buffer.
type Arena = tensor.Arena

// Error kinds, matched with errors.Is.
var (
	ErrShapeMismatch     = errs.ErrShapeMismatch
	ErrDimensionMismatch = errs.ErrDimensionMismatch
	ErrIndexOutOfBounds  = errs.ErrIndexOutOfBounds
	ErrNonFiniteValue    = errs.ErrNonFiniteValue
	ErrCapacityExceeded  = errs.ErrCapacityExceeded
)

// New creates a tensor holding a copy of data.
//
// Example:
//
//	x, err := tensor.New(tensor.Shape{Rows: 2, Cols: 2}, []float64{1, 2, 3, 4})
func New(shape Shape, data []float64) (*Tensor, error) {
	return tensor.New(shape, data)
}

// FromRows creates a tensor from equal-length rows.
func FromRows(rows [][]float64) (*Tensor, error) {
	return tensor.FromRows(rows)
}

// FromBuffer wraps buf without copying.
func FromBuffer(shape Shape, buf []float64) (*Tensor, error) {
	return tensor.FromBuffer(shape, buf)
}

// Zeros returns a zero tensor. It panics on a non-positive shape.
func Zeros(shape Shape) *Tensor {
	return tensor.Zeros(shape)
}

// Ones returns a tensor of ones.
func Ones(shape Shape) *Tensor {
	return tensor.Ones(shape)
}

// Full returns a tensor filled with value.
func Full(shape Shape, value float64) *Tensor {
	return tensor.Full(shape, value)
}

// NewArena creates an arena over buf.
func NewArena(buf []float64) *Arena {
	return tensor.NewArena(buf)
}
