package nn

import (
	"github.com/eidetic-ml/eidetic/internal/errs"
	"github.com/eidetic-ml/eidetic/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// It pairs the value tensor with a gradient accumulator of the same shape.
// Backward passes add into the accumulator; the optimizer reads it and
// zeroes it after every update.
//
// Example:
//
//	w := nn.NewParameter("dense0.weight", weights)
//	_ = w.Accumulate(gradW)
//	g := w.Grad()
type Parameter struct {
	name    string
	value   *tensor.Tensor
	grad    *tensor.Tensor
	touched bool // set by Accumulate, cleared by ZeroGrad
}

// NewParameter creates a parameter owning value, with a zeroed accumulator.
func NewParameter(name string, value *tensor.Tensor) *Parameter {
	return &Parameter{
		name:  name,
		value: value,
		grad:  tensor.Zeros(value.Shape()),
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Value returns the parameter tensor.
func (p *Parameter) Value() *tensor.Tensor {
	return p.value
}

// Grad returns the gradient accumulator.
func (p *Parameter) Grad() *tensor.Tensor {
	return p.grad
}

// Shape returns the parameter shape.
func (p *Parameter) Shape() tensor.Shape {
	return p.value.Shape()
}

// HasGrad reports whether a backward pass accumulated into the parameter
// since the last ZeroGrad.
func (p *Parameter) HasGrad() bool {
	return p.touched
}

// Accumulate adds g to the gradient accumulator.
func (p *Parameter) Accumulate(g *tensor.Tensor) error {
	if err := p.grad.AddInPlace(g); err != nil {
		return errs.Shape("nn.Parameter.Accumulate", "%s: gradient %v does not match parameter %v",
			p.name, g.Shape(), p.value.Shape())
	}
	p.touched = true
	return nil
}

// ZeroGrad clears the gradient accumulator.
func (p *Parameter) ZeroGrad() {
	p.grad.Zero()
	p.touched = false
}
