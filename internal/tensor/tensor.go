// Package tensor provides the rank-2 tensor used by every eidetic component.
//
// A Tensor is an owned, shape-tagged, row-major buffer of float64 values.
// Operations never alias their inputs: each returns a freshly allocated
// tensor unless its name says InPlace. A tensor handed to another component
// belongs to that component from then on.
package tensor

import (
	"fmt"
	"math"

	"github.com/eidetic-ml/eidetic/internal/errs"
)

// Tensor is a rank-2 numeric buffer with a fixed shape.
//
// len(data) == shape.Rows * shape.Cols always holds.
//
// Example:
//
//	t, err := tensor.New(tensor.Shape{Rows: 2, Cols: 3}, []float64{1, 2, 3, 4, 5, 6})
//	v, _ := t.At(1, 2) // 6
type Tensor struct {
	shape Shape
	data  []float64
}

// New creates a Tensor from a shape and a slice.
// The slice is copied into the tensor's memory.
//
// Fails with ErrShapeMismatch if len(data) != rows*cols. Values are not
// checked for finiteness here; networks, losses and optimizers reject NaN
// and ±Inf when they consume a tensor (see CheckFinite).
func New(shape Shape, data []float64) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() != len(data) {
		return nil, errs.Shape("tensor.New", "shape %v requires %d elements, but got %d",
			shape, shape.NumElements(), len(data))
	}

	buf := make([]float64, len(data))
	copy(buf, data)
	return &Tensor{shape: shape, data: buf}, nil
}

// FromRows creates a Tensor from a slice of equally sized rows.
func FromRows(rows [][]float64) (*Tensor, error) {
	if len(rows) == 0 {
		return nil, errs.Shape("tensor.FromRows", "no rows")
	}
	shape := Shape{Rows: len(rows), Cols: len(rows[0])}
	if err := shape.Validate(); err != nil {
		return nil, err
	}

	data := make([]float64, 0, shape.NumElements())
	for i, row := range rows {
		if len(row) != shape.Cols {
			return nil, errs.Shape("tensor.FromRows", "row %d has %d columns, expected %d", i, len(row), shape.Cols)
		}
		data = append(data, row...)
	}
	return &Tensor{shape: shape, data: data}, nil
}

// FromBuffer wraps a caller-supplied buffer without copying.
//
// Only the first rows*cols elements of buf are used. This allows tensors to
// live in fixed, preallocated storage (see Arena). The caller must not use
// buf for anything else while the tensor is alive.
func FromBuffer(shape Shape, buf []float64) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if len(buf) < shape.NumElements() {
		return nil, errs.Shape("tensor.FromBuffer", "shape %v requires %d elements, buffer holds %d",
			shape, shape.NumElements(), len(buf))
	}
	return &Tensor{shape: shape, data: buf[:shape.NumElements():shape.NumElements()]}, nil
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// Rows returns the number of rows.
func (t *Tensor) Rows() int {
	return t.shape.Rows
}

// Cols returns the number of columns.
func (t *Tensor) Cols() int {
	return t.shape.Cols
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return len(t.data)
}

// Data returns the row-major backing slice (zero-copy).
//
// WARNING: Modifications to the returned slice will modify the tensor.
func (t *Tensor) Data() []float64 {
	return t.data
}

// Row returns a view of row r.
//
// WARNING: Modifications to the returned slice will modify the tensor.
func (t *Tensor) Row(r int) []float64 {
	return t.data[r*t.shape.Cols : (r+1)*t.shape.Cols]
}

// At returns the element at (row, col).
//
// Fails with ErrIndexOutOfBounds if either coordinate is outside its dimension.
func (t *Tensor) At(row, col int) (float64, error) {
	if err := t.checkIndex("tensor.At", row, col); err != nil {
		return 0, err
	}
	return t.data[row*t.shape.Cols+col], nil
}

// Set sets the element at (row, col).
func (t *Tensor) Set(row, col int, value float64) error {
	if err := t.checkIndex("tensor.Set", row, col); err != nil {
		return err
	}
	t.data[row*t.shape.Cols+col] = value
	return nil
}

func (t *Tensor) checkIndex(op string, row, col int) error {
	if row < 0 || row >= t.shape.Rows || col < 0 || col >= t.shape.Cols {
		return errs.New(errs.ErrIndexOutOfBounds, op, "index (%d, %d) out of bounds for shape %v", row, col, t.shape)
	}
	return nil
}

// Clone creates a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	data := make([]float64, len(t.data))
	copy(data, t.data)
	return &Tensor{shape: t.shape, data: data}
}

// CopyFrom overwrites the tensor's values with those of src.
func (t *Tensor) CopyFrom(src *Tensor) error {
	if !t.shape.Equal(src.shape) {
		return errs.Shape("tensor.CopyFrom", "%v vs %v", t.shape, src.shape)
	}
	copy(t.data, src.data)
	return nil
}

// Zero sets every element to zero.
func (t *Tensor) Zero() {
	clear(t.data)
}

// CheckFinite fails with ErrNonFiniteValue if any element is NaN or ±Inf.
func (t *Tensor) CheckFinite() error {
	for i, v := range t.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errs.NonFinite("tensor.CheckFinite", "element (%d, %d) is %v",
				i/t.shape.Cols, i%t.shape.Cols, v)
		}
	}
	return nil
}

// String returns a human-readable representation of the tensor.
func (t *Tensor) String() string {
	if len(t.data) <= 16 {
		return fmt.Sprintf("Tensor%v%v", t.shape, t.data)
	}
	return fmt.Sprintf("Tensor%v[%v ... %v]", t.shape, t.data[:4], t.data[len(t.data)-4:])
}

// mustHaveLength panics if the length invariant is broken. A broken
// invariant is a defect in this package, not a usage error.
func (t *Tensor) mustHaveLength() {
	if len(t.data) != t.shape.NumElements() {
		panic(fmt.Sprintf("tensor: length invariant broken: shape %v, %d elements", t.shape, len(t.data)))
	}
}
