package tensor

import (
	"github.com/eidetic-ml/eidetic/internal/errs"
)

// Zeros creates a tensor filled with zeros.
//
// Panics if the shape is invalid; use New for untrusted shapes.
//
// Example:
//
//	t := tensor.Zeros(tensor.Shape{Rows: 3, Cols: 4})
func Zeros(shape Shape) *Tensor {
	if err := shape.Validate(); err != nil {
		panic(err)
	}
	return &Tensor{shape: shape, data: make([]float64, shape.NumElements())}
}

// Full creates a tensor filled with a specific value.
func Full(shape Shape, value float64) *Tensor {
	t := Zeros(shape)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) *Tensor {
	return Full(shape, 1)
}

// Arena is a fixed-capacity allocator for tensors.
//
// Tensors allocated from an Arena share its single backing buffer and are
// only valid until the next Reset. It lets a host run the core without
// general-purpose allocation once the arena has been sized.
//
// Example:
//
//	arena := tensor.NewArena(make([]float64, 4096))
//	x, err := arena.Alloc(tensor.Shape{Rows: 32, Cols: 16})
type Arena struct {
	buf  []float64
	used int
}

// NewArena creates an arena over the caller-supplied buffer.
func NewArena(buf []float64) *Arena {
	return &Arena{buf: buf}
}

// Alloc returns a zeroed tensor carved out of the arena.
//
// Fails with ErrCapacityExceeded once the arena cannot hold the shape.
func (a *Arena) Alloc(shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	n := shape.NumElements()
	if a.used+n > len(a.buf) {
		return nil, errs.New(errs.ErrCapacityExceeded, "tensor.Arena.Alloc",
			"shape %v needs %d elements, %d of %d available", shape, n, len(a.buf)-a.used, len(a.buf))
	}
	data := a.buf[a.used : a.used+n : a.used+n]
	clear(data)
	a.used += n
	return &Tensor{shape: shape, data: data}, nil
}

// Used returns the number of elements handed out since the last Reset.
func (a *Arena) Used() int {
	return a.used
}

// Cap returns the arena capacity in elements.
func (a *Arena) Cap() int {
	return len(a.buf)
}

// Reset makes the whole buffer available again. Tensors previously
// allocated from the arena must no longer be used.
func (a *Arena) Reset() {
	a.used = 0
}
