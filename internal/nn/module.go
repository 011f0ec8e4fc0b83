// Package nn implements the trainable building blocks of a dense network.
//
// This package provides:
//   - Parameter: a weight or bias value paired with its gradient accumulator
//   - Layer interface: Dense and Dropout
//   - Init: seeded weight-initialization strategies
//   - Loss functions: MSE, SoftmaxCrossEntropy
//   - Network and Builder: an ordered, width-checked sequence of layers
//
// Widths are a construction-time contract. The Builder only asks for each
// layer's output width and takes the input width from the previous layer,
// so an incompatible chain cannot be expressed; declarative configurations
// are validated once by NewNetwork.
package nn

import (
	"github.com/eidetic-ml/eidetic/internal/ops"
	"github.com/eidetic-ml/eidetic/internal/tensor"
)

// Layer is a parameter-owning composition of operations.
//
// Forward returns a handle whose Backward accumulates (adds) the parameter
// gradients into the layer's accumulators and returns the gradient with
// respect to the layer input in Gradients.Input.
type Layer interface {
	// Name identifies the layer inside its network (e.g., "dense0").
	Name() string

	// Inputs and Outputs are the layer's fixed widths.
	Inputs() int
	Outputs() int

	// Forward runs the layer on a (batch, Inputs()) tensor.
	Forward(input *tensor.Tensor, mode ops.Mode) (ops.Pending, error)

	// Parameters returns the trainable parameters, weights before bias.
	// Returns an empty slice for parameter-free layers.
	Parameters() []*Parameter

	// Config describes the layer so it can be rebuilt.
	Config() LayerConfig
}
