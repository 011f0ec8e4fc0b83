// Package ops defines the differentiable operations of a dense network.
//
// Each operation implements the Operation interface:
//   - Forward pass: computes the output and returns a Pending handle that
//     holds whatever the backward pass needs (input, output or mask)
//   - Backward pass: consumes the handle, turning the output gradient into
//     the input gradient and, for parameterised operations, the parameter
//     gradient
//
// Supported operations:
//   - Linear: input · W (d/dX = grad · Wᵀ, d/dW = Xᵀ · grad)
//   - BiasAdd: input + b broadcast over rows (d/db = column sums of grad)
//   - Activation: Identity, Sigmoid, Tanh, ReLU, LeakyReLU
//   - Dropout: inverted dropout driven by an explicit seeded source
//   - Chain: sequential composition of the above
//
// The catalog is closed; Chain is the extension point for new compositions.
package ops

import (
	"github.com/eidetic-ml/eidetic/internal/errs"
	"github.com/eidetic-ml/eidetic/internal/tensor"
)

// Mode selects training or inference behavior for a forward pass.
type Mode int

// Forward modes.
const (
	Inference Mode = iota
	Training
)

// String returns the mode name.
func (m Mode) String() string {
	if m == Training {
		return "training"
	}
	return "inference"
}

// Operation is a single differentiable transform.
//
// Forward never modifies its input. The returned Pending owns the cache of
// that forward call; the operation itself keeps only its configuration, so
// one Operation can have several outstanding Pending handles.
type Operation interface {
	// Forward computes the output for input.
	Forward(input *tensor.Tensor, mode Mode) (Pending, error)
}

// Pending is the result of a forward call awaiting its backward call.
//
// A Pending is single-use: Backward may succeed at most once. A second call
// fails with ErrInvalidPass.
type Pending interface {
	// Output returns the forward result. It is shared with the cache and
	// must not be modified before Backward.
	Output() *tensor.Tensor

	// Backward computes the gradients for gradOutput, which must have the
	// shape of Output().
	Backward(gradOutput *tensor.Tensor) (Gradients, error)
}

// Gradients are the results of one backward call.
type Gradients struct {
	Input *tensor.Tensor // dL/d(input)
	Param *tensor.Tensor // dL/d(parameter); nil for parameter-free operations
}

// handle carries the single-use state shared by every Pending.
type handle struct {
	op       string
	output   *tensor.Tensor
	consumed bool
}

// Output returns the forward result.
func (h *handle) Output() *tensor.Tensor {
	return h.output
}

// consume validates gradOutput and marks the handle as used.
// A gradient of the wrong shape leaves the handle usable.
func (h *handle) consume(gradOutput *tensor.Tensor) error {
	if h.consumed {
		return errs.New(errs.ErrInvalidPass, h.op+".Backward", "backward already ran for this forward pass")
	}
	if !gradOutput.Shape().Equal(h.output.Shape()) {
		return errs.Shape(h.op+".Backward", "gradient %v does not match output %v",
			gradOutput.Shape(), h.output.Shape())
	}
	h.consumed = true
	return nil
}
