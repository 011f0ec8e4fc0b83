package nn

import (
	"github.com/eidetic-ml/eidetic/internal/ops"
)

// LayerKind names a layer type.
type LayerKind string

// Layer kinds.
const (
	DenseKind   LayerKind = "dense"
	DropoutKind LayerKind = "dropout"
)

// LayerConfig declares one layer of a network.
//
// For dense layers Inputs and Outputs are required. For dropout layers
// Outputs may be left zero and defaults to Inputs.
//
// Weights and Bias optionally supply initial values (row-major
// (Inputs, Outputs) and (1, Outputs)); otherwise the weights come from Init
// (or the network-wide Init) and the bias is zero.
type LayerConfig struct {
	Kind       LayerKind      `yaml:"kind" json:"kind"`
	Inputs     int            `yaml:"inputs" json:"inputs"`
	Outputs    int            `yaml:"outputs,omitempty" json:"outputs,omitempty"`
	Activation ops.Activation `yaml:"activation,omitempty" json:"activation,omitempty"`
	Keep       float64        `yaml:"keep,omitempty" json:"keep,omitempty"`
	Init       *Init          `yaml:"init,omitempty" json:"init,omitempty"`
	Weights    []float64      `yaml:"weights,omitempty" json:"-"`
	Bias       []float64      `yaml:"bias,omitempty" json:"-"`
}

// DenseConfig is shorthand for a dense LayerConfig.
func DenseConfig(inputs, outputs int, act ops.Activation) LayerConfig {
	return LayerConfig{Kind: DenseKind, Inputs: inputs, Outputs: outputs, Activation: act}
}

// DropoutConfig is shorthand for a dropout LayerConfig.
func DropoutConfig(width int, keep float64) LayerConfig {
	return LayerConfig{Kind: DropoutKind, Inputs: width, Outputs: width, Keep: keep}
}
