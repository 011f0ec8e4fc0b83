package ops

import (
	"github.com/eidetic-ml/eidetic/internal/tensor"
)

// Linear is the matrix-multiply operation: output = input · W.
//
// Backward pass:
//   - d(X·W)/dX = grad · Wᵀ
//   - d(X·W)/dW = Xᵀ · grad
//
// W is a reference to a weight tensor owned by a layer. It must not change
// between a forward call and its backward call.
type Linear struct {
	weight *tensor.Tensor
}

// NewLinear creates a Linear operation over weight, shape (inputs, outputs).
func NewLinear(weight *tensor.Tensor) *Linear {
	return &Linear{weight: weight}
}

// Weight returns the weight tensor reference.
func (l *Linear) Weight() *tensor.Tensor {
	return l.weight
}

// Forward computes input · W.
//
// Fails with ErrDimensionMismatch if input.Cols() != W.Rows().
// The output has shape (input.Rows(), W.Cols()).
func (l *Linear) Forward(input *tensor.Tensor, _ Mode) (Pending, error) {
	out, err := input.MatMul(l.weight)
	if err != nil {
		return nil, err
	}
	return &linearPending{
		handle: handle{op: "ops.Linear", output: out},
		input:  input,
		weight: l.weight,
	}, nil
}

type linearPending struct {
	handle
	input  *tensor.Tensor
	weight *tensor.Tensor
}

// Backward computes the input and weight gradients.
func (p *linearPending) Backward(gradOutput *tensor.Tensor) (Gradients, error) {
	if err := p.consume(gradOutput); err != nil {
		return Gradients{}, err
	}

	// grad_input = grad · Wᵀ
	gradInput, err := gradOutput.MatMul(p.weight.Transpose())
	if err != nil {
		return Gradients{}, err
	}

	// grad_W = Xᵀ · grad
	gradWeight, err := p.input.Transpose().MatMul(gradOutput)
	if err != nil {
		return Gradients{}, err
	}
	return Gradients{Input: gradInput, Param: gradWeight}, nil
}
