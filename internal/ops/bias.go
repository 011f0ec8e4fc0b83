package ops

import (
	"github.com/eidetic-ml/eidetic/internal/tensor"
)

// BiasAdd adds a (1, cols) bias row to every input row.
//
// Backward pass:
//   - d/dX = grad (passed through unchanged)
//   - d/db = grad summed over rows
type BiasAdd struct {
	bias *tensor.Tensor
}

// NewBiasAdd creates a BiasAdd operation over bias, shape (1, cols).
func NewBiasAdd(bias *tensor.Tensor) *BiasAdd {
	return &BiasAdd{bias: bias}
}

// Bias returns the bias tensor reference.
func (b *BiasAdd) Bias() *tensor.Tensor {
	return b.bias
}

// Forward computes input + bias.
//
// Fails with ErrDimensionMismatch if the bias does not broadcast onto input.
func (b *BiasAdd) Forward(input *tensor.Tensor, _ Mode) (Pending, error) {
	out, err := input.AddRowBroadcast(b.bias)
	if err != nil {
		return nil, err
	}
	return &biasPending{handle: handle{op: "ops.BiasAdd", output: out}}, nil
}

type biasPending struct {
	handle
}

// Backward passes the gradient through and sums it over rows for the bias.
func (p *biasPending) Backward(gradOutput *tensor.Tensor) (Gradients, error) {
	if err := p.consume(gradOutput); err != nil {
		return Gradients{}, err
	}
	return Gradients{Input: gradOutput.Clone(), Param: gradOutput.SumRows()}, nil
}
