package ops

import (
	"github.com/eidetic-ml/eidetic/internal/errs"
	"github.com/eidetic-ml/eidetic/internal/tensor"
)

// Chain runs operations in sequence: the output of one is the input of the
// next. Backward walks the same path in reverse.
//
// Example:
//
//	dense := ops.NewChain(ops.NewLinear(w), ops.NewBiasAdd(b), ops.NewActivation(ops.Tanh))
type Chain struct {
	steps []Operation
}

// NewChain creates a chain of operations.
func NewChain(steps ...Operation) *Chain {
	return &Chain{steps: steps}
}

// Len returns the number of operations in the chain.
func (c *Chain) Len() int {
	return len(c.steps)
}

// Forward runs every operation in order.
func (c *Chain) Forward(input *tensor.Tensor, mode Mode) (Pending, error) {
	return c.ForwardChain(input, mode)
}

// ForwardChain is Forward returning the concrete handle, which exposes the
// per-step gradients.
func (c *Chain) ForwardChain(input *tensor.Tensor, mode Mode) (*ChainPending, error) {
	if len(c.steps) == 0 {
		return nil, errs.Config("ops.Chain.Forward", "empty chain")
	}
	pending := make([]Pending, len(c.steps))
	x := input
	for i, step := range c.steps {
		p, err := step.Forward(x, mode)
		if err != nil {
			return nil, err
		}
		pending[i] = p
		x = p.Output()
	}
	return &ChainPending{
		handle: handle{op: "ops.Chain", output: x},
		steps:  pending,
	}, nil
}

// ChainPending is the handle of a chain forward pass.
type ChainPending struct {
	handle
	steps []Pending
}

// Backward returns the gradient with respect to the chain input. Parameter
// gradients of the steps are dropped; use BackwardSteps to keep them.
func (p *ChainPending) Backward(gradOutput *tensor.Tensor) (Gradients, error) {
	grads, err := p.BackwardSteps(gradOutput)
	if err != nil {
		return Gradients{}, err
	}
	return Gradients{Input: grads[0].Input}, nil
}

// BackwardSteps runs backward through every step in reverse and returns the
// gradients of each step, indexed in forward order.
func (p *ChainPending) BackwardSteps(gradOutput *tensor.Tensor) ([]Gradients, error) {
	if err := p.consume(gradOutput); err != nil {
		return nil, err
	}
	grads := make([]Gradients, len(p.steps))
	g := gradOutput
	for i := len(p.steps) - 1; i >= 0; i-- {
		sg, err := p.steps[i].Backward(g)
		if err != nil {
			return nil, err
		}
		grads[i] = sg
		g = sg.Input
	}
	return grads, nil
}
