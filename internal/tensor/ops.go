package tensor

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/eidetic-ml/eidetic/internal/errs"
)

// dense returns a gonum view sharing the tensor's buffer.
func (t *Tensor) dense() *mat.Dense {
	t.mustHaveLength()
	return mat.NewDense(t.shape.Rows, t.shape.Cols, t.data)
}

// Map applies f to every element and returns a new tensor.
func (t *Tensor) Map(f func(float64) float64) *Tensor {
	out := &Tensor{shape: t.shape, data: make([]float64, len(t.data))}
	for i, v := range t.data {
		out.data[i] = f(v)
	}
	return out
}

// MatMul returns t · other.
//
// Fails with ErrDimensionMismatch if t.Cols() != other.Rows().
// The result has shape (t.Rows(), other.Cols()).
func (t *Tensor) MatMul(other *Tensor) (*Tensor, error) {
	if t.shape.Cols != other.shape.Rows {
		return nil, errs.Dimension("tensor.MatMul", "inner dimensions must match: %v · %v", t.shape, other.shape)
	}
	out := Zeros(Shape{Rows: t.shape.Rows, Cols: other.shape.Cols})
	out.dense().Mul(t.dense(), other.dense())
	return out, nil
}

// Transpose returns a new tensor with rows and columns swapped.
func (t *Tensor) Transpose() *Tensor {
	out := Zeros(t.shape.T())
	out.dense().Copy(t.dense().T())
	return out
}

// AddRowBroadcast adds a (1, cols) row to every row of t.
//
// Fails with ErrDimensionMismatch unless row has shape (1, t.Cols()).
func (t *Tensor) AddRowBroadcast(row *Tensor) (*Tensor, error) {
	if row.shape.Rows != 1 || row.shape.Cols != t.shape.Cols {
		return nil, errs.Dimension("tensor.AddRowBroadcast", "cannot broadcast %v onto %v", row.shape, t.shape)
	}
	out := t.Clone()
	for r := 0; r < t.shape.Rows; r++ {
		floats.Add(out.Row(r), row.data)
	}
	return out, nil
}

// Add returns t + other (same shape).
func (t *Tensor) Add(other *Tensor) (*Tensor, error) {
	if !t.shape.Equal(other.shape) {
		return nil, errs.Shape("tensor.Add", "%v vs %v", t.shape, other.shape)
	}
	out := Zeros(t.shape)
	floats.AddTo(out.data, t.data, other.data)
	return out, nil
}

// Sub returns t - other (same shape).
func (t *Tensor) Sub(other *Tensor) (*Tensor, error) {
	if !t.shape.Equal(other.shape) {
		return nil, errs.Shape("tensor.Sub", "%v vs %v", t.shape, other.shape)
	}
	out := Zeros(t.shape)
	floats.SubTo(out.data, t.data, other.data)
	return out, nil
}

// MulElem returns the elementwise (Hadamard) product t ⊙ other.
func (t *Tensor) MulElem(other *Tensor) (*Tensor, error) {
	if !t.shape.Equal(other.shape) {
		return nil, errs.Shape("tensor.MulElem", "%v vs %v", t.shape, other.shape)
	}
	out := Zeros(t.shape)
	floats.MulTo(out.data, t.data, other.data)
	return out, nil
}

// Scale returns c * t.
func (t *Tensor) Scale(c float64) *Tensor {
	out := Zeros(t.shape)
	floats.ScaleTo(out.data, c, t.data)
	return out
}

// SumRows sums over rows and returns a (1, cols) tensor.
func (t *Tensor) SumRows() *Tensor {
	out := Zeros(Shape{Rows: 1, Cols: t.shape.Cols})
	for r := 0; r < t.shape.Rows; r++ {
		floats.Add(out.data, t.Row(r))
	}
	return out
}

// Sum returns the sum of all elements.
func (t *Tensor) Sum() float64 {
	return floats.Sum(t.data)
}

// Mean returns the mean of all elements.
func (t *Tensor) Mean() float64 {
	return floats.Sum(t.data) / float64(len(t.data))
}

// RowMax returns a (rows, 1) tensor holding the largest element of each row.
func (t *Tensor) RowMax() *Tensor {
	out := Zeros(Shape{Rows: t.shape.Rows, Cols: 1})
	for r := 0; r < t.shape.Rows; r++ {
		out.data[r] = floats.Max(t.Row(r))
	}
	return out
}

// ArgmaxRows returns, for every row, the column index of its largest element.
func (t *Tensor) ArgmaxRows() []int {
	out := make([]int, t.shape.Rows)
	for r := range out {
		out[r] = floats.MaxIdx(t.Row(r))
	}
	return out
}

// AddInPlace accumulates other into t.
func (t *Tensor) AddInPlace(other *Tensor) error {
	if !t.shape.Equal(other.shape) {
		return errs.Shape("tensor.AddInPlace", "%v vs %v", t.shape, other.shape)
	}
	floats.Add(t.data, other.data)
	return nil
}

// AddScaledInPlace computes t += alpha * other.
func (t *Tensor) AddScaledInPlace(alpha float64, other *Tensor) error {
	if !t.shape.Equal(other.shape) {
		return errs.Shape("tensor.AddScaledInPlace", "%v vs %v", t.shape, other.shape)
	}
	floats.AddScaled(t.data, alpha, other.data)
	return nil
}

// ScaleInPlace computes t *= c.
func (t *Tensor) ScaleInPlace(c float64) {
	floats.Scale(c, t.data)
}

// SelectRows returns a new tensor made of the given rows of t, in order.
func (t *Tensor) SelectRows(indices []int) (*Tensor, error) {
	if len(indices) == 0 {
		return nil, errs.Shape("tensor.SelectRows", "no rows selected")
	}
	out := Zeros(Shape{Rows: len(indices), Cols: t.shape.Cols})
	for i, r := range indices {
		if r < 0 || r >= t.shape.Rows {
			return nil, errs.New(errs.ErrIndexOutOfBounds, "tensor.SelectRows", "row %d out of bounds for shape %v", r, t.shape)
		}
		copy(out.Row(i), t.Row(r))
	}
	return out, nil
}

// SliceRows returns a copy of rows [from, to).
func (t *Tensor) SliceRows(from, to int) (*Tensor, error) {
	if from < 0 || to > t.shape.Rows || from >= to {
		return nil, errs.New(errs.ErrIndexOutOfBounds, "tensor.SliceRows", "rows [%d, %d) out of bounds for shape %v", from, to, t.shape)
	}
	data := make([]float64, (to-from)*t.shape.Cols)
	copy(data, t.data[from*t.shape.Cols:to*t.shape.Cols])
	return &Tensor{shape: Shape{Rows: to - from, Cols: t.shape.Cols}, data: data}, nil
}

// ApproxEqual reports whether both tensors have the same shape and every
// pair of elements differs by at most tol.
func (t *Tensor) ApproxEqual(other *Tensor, tol float64) bool {
	return t.shape.Equal(other.shape) && floats.EqualApprox(t.data, other.data, tol)
}
