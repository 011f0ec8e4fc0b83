// Copyright 2025 Eidetic Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"golang.org/x/exp/rand"

	"github.com/eidetic-ml/eidetic/internal/errs"
	"github.com/eidetic-ml/eidetic/internal/nn"
	"github.com/eidetic-ml/eidetic/internal/ops"
	"github.com/eidetic-ml/eidetic/internal/tensor"
)

// Network is an ordered chain of layers with fixed widths.
type Network = nn.Network

// Pass is the handle returned by Network.Forward.
type Pass = nn.Pass

// Layer is one stage of a Network.
type Layer = nn.Layer

// Parameter is a trainable tensor with its gradient accumulator.
type Parameter = nn.Parameter

// Builder declares a network layer by layer.
type Builder = nn.Builder

// LayerConfig declares one layer for NewNetwork.
type LayerConfig = nn.LayerConfig

// Init configures weight initialization.
type Init = nn.Init

// InitStrategy names a weight distribution.
type InitStrategy = nn.InitStrategy

// Initialization strategies.
const (
	XavierUniform = nn.XavierUniform
	XavierNormal  = nn.XavierNormal
	HeNormal      = nn.HeNormal
	Uniform       = nn.Uniform
	Normal        = nn.Normal
	ZeroInit      = nn.ZeroInit
)

// Layer kinds.
const (
	DenseKind   = nn.DenseKind
	DropoutKind = nn.DropoutKind
)

// Mode selects training or inference behavior.
type Mode = ops.Mode

// Modes.
const (
	Inference = ops.Inference
	Training  = ops.Training
)

// Activation is an elementwise nonlinearity.
type Activation = ops.Activation

// Loss scores predictions against targets.
type Loss = nn.Loss

// Dense is a fully connected layer.
type Dense = nn.Dense

// Dropout zeroes inputs at random in training mode.
type Dropout = nn.Dropout

// Error kinds, matched with errors.Is.
var (
	ErrShapeMismatch          = errs.ErrShapeMismatch
	ErrDimensionMismatch      = errs.ErrDimensionMismatch
	ErrInvalidConfiguration   = errs.ErrInvalidConfiguration
	ErrInvalidPass            = errs.ErrInvalidPass
	ErrNonFiniteValue         = errs.ErrNonFiniteValue
	ErrUninitializedGradients = errs.ErrUninitializedGradients
)

// NewBuilder starts a network that takes inputs features.
func NewBuilder(inputs int) *Builder {
	return nn.NewBuilder(inputs)
}

// NewNetwork builds a network from explicit layer configurations.
func NewNetwork(configs []LayerConfig, init Init) (*Network, error) {
	return nn.NewNetwork(configs, init)
}

// ValidateConfigs checks configs and init the way NewNetwork does, without
// allocating weights.
func ValidateConfigs(configs []LayerConfig, init Init) error {
	return nn.ValidateConfigs(configs, init)
}

// NewDense creates a dense layer from explicit weight (in, out) and bias
// (1, out) tensors.
func NewDense(name string, weight, bias *tensor.Tensor, act Activation) (*Dense, error) {
	return nn.NewDense(name, weight, bias, act)
}

// NewDropout creates a standalone dropout layer.
func NewDropout(name string, width int, keep float64, seed uint64) (*Dropout, error) {
	return nn.NewDropout(name, width, keep, rand.NewSource(seed))
}

// DefaultInit returns Xavier-uniform initialization with the given seed.
func DefaultInit(seed uint64) Init {
	return nn.DefaultInit(seed)
}

// DenseConfig is shorthand for a dense LayerConfig.
func DenseConfig(inputs, outputs int, act Activation) LayerConfig {
	return nn.DenseConfig(inputs, outputs, act)
}

// DropoutConfig is shorthand for a dropout LayerConfig.
func DropoutConfig(width int, keep float64) LayerConfig {
	return nn.DropoutConfig(width, keep)
}

// Identity returns the identity activation.
func Identity() Activation { return ops.NewActivation(ops.Identity) }

// Sigmoid returns the logistic activation.
func Sigmoid() Activation { return ops.NewActivation(ops.Sigmoid) }

// Tanh returns the hyperbolic tangent activation.
func Tanh() Activation { return ops.NewActivation(ops.Tanh) }

// ReLU returns max(0, x).
func ReLU() Activation { return ops.NewActivation(ops.ReLU) }

// LeakyReLU returns max(leak·x, x). leak must be in [0, 1).
func LeakyReLU(leak float64) (Activation, error) {
	return ops.NewLeakyReLU(leak)
}

// ParseActivation parses names such as "tanh", "relu" or "relu(0.01)".
func ParseActivation(s string) (Activation, error) {
	return ops.ParseActivation(s)
}

// NewMSELoss returns the mean squared error loss.
func NewMSELoss() Loss {
	return nn.NewMSELoss()
}

// NewSoftmaxCrossEntropyLoss returns softmax followed by cross-entropy,
// computed from raw scores.
func NewSoftmaxCrossEntropyLoss() Loss {
	return nn.NewSoftmaxCrossEntropyLoss()
}

// Softmax normalizes each row into probabilities.
func Softmax(x *tensor.Tensor) *tensor.Tensor {
	return nn.Softmax(x)
}
