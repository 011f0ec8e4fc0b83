package nn

import (
	"github.com/eidetic-ml/eidetic/internal/errs"
	"github.com/eidetic-ml/eidetic/internal/ops"
)

// Builder assembles a network layer by layer.
//
// Only output widths are given; each layer's input width is the previous
// layer's output width, so the chain is compatible by construction. The
// first error is kept and returned by Build.
//
// Example:
//
//	net, err := nn.NewBuilder(784).
//	    Dense(300, ops.NewActivation(ops.Tanh)).
//	    Dropout(0.5).
//	    Dense(100, ops.NewActivation(ops.ReLU)).
//	    Dense(10, ops.NewActivation(ops.Identity)).
//	    Build(nn.DefaultInit(42))
type Builder struct {
	width   int
	configs []LayerConfig
	err     error
}

// NewBuilder starts a network taking inputs features.
func NewBuilder(inputs int) *Builder {
	b := &Builder{width: inputs}
	if inputs <= 0 {
		b.err = errs.Shape("nn.NewBuilder", "input width must be positive, got %d", inputs)
	}
	return b
}

// Dense appends a dense layer producing outputs features.
func (b *Builder) Dense(outputs int, act ops.Activation) *Builder {
	return b.add(DenseConfig(b.width, outputs, act))
}

// DenseWithInit appends a dense layer with its own initialization.
func (b *Builder) DenseWithInit(outputs int, act ops.Activation, init Init) *Builder {
	cfg := DenseConfig(b.width, outputs, act)
	cfg.Init = &init
	return b.add(cfg)
}

// DenseWithValues appends a dense layer with explicit weights
// (row-major (inputs, outputs)) and bias (outputs values, or nil for zero).
func (b *Builder) DenseWithValues(outputs int, act ops.Activation, weights, bias []float64) *Builder {
	cfg := DenseConfig(b.width, outputs, act)
	cfg.Weights, cfg.Bias = weights, bias
	return b.add(cfg)
}

// Dropout appends a dropout layer keeping each activation with probability keep.
func (b *Builder) Dropout(keep float64) *Builder {
	return b.add(DropoutConfig(b.width, keep))
}

func (b *Builder) add(cfg LayerConfig) *Builder {
	if b.err != nil {
		return b
	}
	if cfg.Outputs <= 0 {
		b.err = errs.Shape("nn.Builder", "layer %d: output width must be positive, got %d", len(b.configs), cfg.Outputs)
		return b
	}
	b.configs = append(b.configs, cfg)
	b.width = cfg.Outputs
	return b
}

// Configs returns the layer configurations collected so far.
func (b *Builder) Configs() []LayerConfig {
	return append([]LayerConfig(nil), b.configs...)
}

// Build creates the network, initializing weights from init.
func (b *Builder) Build(init Init) (*Network, error) {
	if b.err != nil {
		return nil, b.err
	}
	return NewNetwork(b.configs, init)
}

// BuildWithValues creates the network and loads every parameter from a flat
// slice: for each dense layer in order, its weights (row-major) then its
// bias. Fails with ErrShapeMismatch if values has too few or too many
// elements.
func (b *Builder) BuildWithValues(values []float64) (*Network, error) {
	net, err := b.Build(Init{Strategy: ZeroInit})
	if err != nil {
		return nil, err
	}
	if err := net.SetParameterValues(values); err != nil {
		return nil, err
	}
	return net, nil
}
