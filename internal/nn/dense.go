package nn

import (
	"fmt"

	"github.com/eidetic-ml/eidetic/internal/errs"
	"github.com/eidetic-ml/eidetic/internal/ops"
	"github.com/eidetic-ml/eidetic/internal/tensor"
)

// Dense is a fully connected layer: y = f(x·W + b).
//
// It is a Linear → BiasAdd → Activation chain over the layer's own weight
// (inputs, outputs) and bias (1, outputs) parameters.
//
// Example:
//
//	layer, err := nn.NewDense("dense0", w, b, ops.NewActivation(ops.Tanh))
//	p, err := layer.Forward(x, ops.Training)
//	grads, err := p.Backward(gradOut) // accumulates into layer.Parameters()
type Dense struct {
	name   string
	act    ops.Activation
	weight *Parameter
	bias   *Parameter
	chain  *ops.Chain
}

// NewDense creates a dense layer that takes ownership of weight and bias.
//
// Fails with ErrShapeMismatch unless bias has shape (1, weight.Cols()), and
// with ErrInvalidConfiguration for an invalid activation.
func NewDense(name string, weight, bias *tensor.Tensor, act ops.Activation) (*Dense, error) {
	if bias.Rows() != 1 || bias.Cols() != weight.Cols() {
		return nil, errs.Shape("nn.NewDense", "%s: bias %v does not match weights %v", name, bias.Shape(), weight.Shape())
	}
	if err := act.Validate(); err != nil {
		return nil, err
	}
	d := &Dense{
		name:   name,
		act:    act,
		weight: NewParameter(name+".weight", weight),
		bias:   NewParameter(name+".bias", bias),
	}
	d.chain = ops.NewChain(ops.NewLinear(weight), ops.NewBiasAdd(bias), act)
	return d, nil
}

// Name returns the layer name.
func (d *Dense) Name() string {
	return d.name
}

// Inputs returns the input width.
func (d *Dense) Inputs() int {
	return d.weight.Shape().Rows
}

// Outputs returns the output width.
func (d *Dense) Outputs() int {
	return d.weight.Shape().Cols
}

// Activation returns the layer activation.
func (d *Dense) Activation() ops.Activation {
	return d.act
}

// Weight returns the weight parameter.
func (d *Dense) Weight() *Parameter {
	return d.weight
}

// Bias returns the bias parameter.
func (d *Dense) Bias() *Parameter {
	return d.bias
}

// Parameters returns weight and bias.
func (d *Dense) Parameters() []*Parameter {
	return []*Parameter{d.weight, d.bias}
}

// Config describes the layer.
func (d *Dense) Config() LayerConfig {
	return DenseConfig(d.Inputs(), d.Outputs(), d.act)
}

// String returns "Dense(in → out, act)".
func (d *Dense) String() string {
	return fmt.Sprintf("Dense(%d → %d, %s)", d.Inputs(), d.Outputs(), d.act)
}

// Forward computes f(x·W + b).
func (d *Dense) Forward(input *tensor.Tensor, mode ops.Mode) (ops.Pending, error) {
	p, err := d.chain.ForwardChain(input, mode)
	if err != nil {
		return nil, err
	}
	return &densePending{layer: d, chain: p}, nil
}

type densePending struct {
	layer *Dense
	chain *ops.ChainPending
}

func (p *densePending) Output() *tensor.Tensor {
	return p.chain.Output()
}

// Backward runs the chain in reverse and accumulates the weight and bias
// gradients into the layer's parameters.
func (p *densePending) Backward(gradOutput *tensor.Tensor) (ops.Gradients, error) {
	steps, err := p.chain.BackwardSteps(gradOutput)
	if err != nil {
		return ops.Gradients{}, err
	}
	if err := p.layer.weight.Accumulate(steps[0].Param); err != nil {
		return ops.Gradients{}, err
	}
	if err := p.layer.bias.Accumulate(steps[1].Param); err != nil {
		return ops.Gradients{}, err
	}
	return ops.Gradients{Input: steps[0].Input}, nil
}
