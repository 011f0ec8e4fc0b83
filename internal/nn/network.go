package nn

import (
	"fmt"
	"strings"

	"golang.org/x/exp/rand"

	"github.com/eidetic-ml/eidetic/internal/errs"
	"github.com/eidetic-ml/eidetic/internal/ops"
	"github.com/eidetic-ml/eidetic/internal/tensor"
)

// Network is an ordered sequence of layers whose widths chain.
//
// Each layer's output becomes the next layer's input. Backward visits the
// layers in reverse order.
//
// A network has at most one pass in flight: Forward supersedes any earlier
// Pass that has not run Backward yet.
//
// Example:
//
//	net, err := nn.NewBuilder(2).
//	    Dense(8, ops.NewActivation(ops.Tanh)).
//	    Dense(1, ops.NewActivation(ops.Sigmoid)).
//	    Build(nn.DefaultInit(42))
//	pass, err := net.Forward(x, ops.Training)
//	gradIn, err := pass.Backward(gradOut)
type Network struct {
	layers  []Layer
	current *Pass
}

// NewNetwork builds a network from declared layer configurations.
//
// Each layer's Inputs must equal the previous layer's Outputs; any break in
// the chain fails with ErrShapeMismatch before a single layer is created.
// Dense weights come from the layer's own Init, else from init; dropout
// layer i uses a source seeded with init.Seed+i.
func NewNetwork(configs []LayerConfig, init Init) (*Network, error) {
	configs, err := validateConfigs(configs, init)
	if err != nil {
		return nil, err
	}

	layers := make([]Layer, len(configs))
	for i, cfg := range configs {
		name := fmt.Sprintf("%s%d", cfg.Kind, i)
		switch cfg.Kind {
		case DenseKind:
			layers[i], err = newDenseFromConfig(name, cfg, init, i)
		case DropoutKind:
			layers[i], err = NewDropout(name, cfg.Inputs, cfg.Keep, rand.NewSource(init.Seed+uint64(i)))
		}
		if err != nil {
			return nil, err
		}
	}
	return &Network{layers: layers}, nil
}

// ValidateConfigs reports whether NewNetwork would accept configs and init,
// without allocating or initializing any weights.
func ValidateConfigs(configs []LayerConfig, init Init) error {
	_, err := validateConfigs(configs, init)
	return err
}

// validateConfigs checks the width chain, explicit values and inits, and
// fills defaulted fields.
func validateConfigs(configs []LayerConfig, init Init) ([]LayerConfig, error) {
	if err := init.Validate(); err != nil {
		return nil, err
	}
	if len(configs) == 0 {
		return nil, errs.Config("nn.NewNetwork", "a network needs at least one layer")
	}
	out := make([]LayerConfig, len(configs))
	for i, cfg := range configs {
		if cfg.Kind == "" {
			cfg.Kind = DenseKind
		}
		if cfg.Kind == DropoutKind && cfg.Outputs == 0 {
			cfg.Outputs = cfg.Inputs
		}
		if cfg.Inputs <= 0 || cfg.Outputs <= 0 {
			return nil, errs.Shape("nn.NewNetwork", "layer %d: widths must be positive, got %d → %d", i, cfg.Inputs, cfg.Outputs)
		}
		switch cfg.Kind {
		case DenseKind:
			if err := cfg.Activation.Validate(); err != nil {
				return nil, err
			}
			if cfg.Weights != nil && len(cfg.Weights) != cfg.Inputs*cfg.Outputs {
				return nil, errs.Shape("nn.NewNetwork", "layer %d: %d weights for a %d×%d layer",
					i, len(cfg.Weights), cfg.Inputs, cfg.Outputs)
			}
			if cfg.Bias != nil && len(cfg.Bias) != cfg.Outputs {
				return nil, errs.Shape("nn.NewNetwork", "layer %d: %d bias values for %d outputs", i, len(cfg.Bias), cfg.Outputs)
			}
			if cfg.Init != nil {
				if err := cfg.Init.Validate(); err != nil {
					return nil, err
				}
			}
		case DropoutKind:
			if cfg.Inputs != cfg.Outputs {
				return nil, errs.Shape("nn.NewNetwork", "layer %d: dropout cannot change width (%d → %d)", i, cfg.Inputs, cfg.Outputs)
			}
			if !(cfg.Keep > 0 && cfg.Keep <= 1) {
				return nil, errs.Config("nn.NewNetwork", "layer %d: keep probability must be in (0, 1], got %g", i, cfg.Keep)
			}
		default:
			return nil, errs.Config("nn.NewNetwork", "layer %d: unknown kind %q", i, cfg.Kind)
		}
		if i > 0 && cfg.Inputs != out[i-1].Outputs {
			return nil, errs.Shape("nn.NewNetwork", "layer %d takes %d inputs but layer %d produces %d",
				i, cfg.Inputs, i-1, out[i-1].Outputs)
		}
		out[i] = cfg
	}
	return out, nil
}

func newDenseFromConfig(name string, cfg LayerConfig, init Init, index int) (*Dense, error) {
	wShape := tensor.Shape{Rows: cfg.Inputs, Cols: cfg.Outputs}
	bShape := tensor.Shape{Rows: 1, Cols: cfg.Outputs}

	var weight *tensor.Tensor
	var err error
	switch {
	case cfg.Weights != nil:
		weight, err = tensor.New(wShape, cfg.Weights)
	case cfg.Init != nil:
		weight, err = cfg.Init.Weights(cfg.Inputs, cfg.Outputs, index)
	default:
		weight, err = init.Weights(cfg.Inputs, cfg.Outputs, index)
	}
	if err != nil {
		return nil, err
	}

	bias := tensor.Zeros(bShape)
	if cfg.Bias != nil {
		if bias, err = tensor.New(bShape, cfg.Bias); err != nil {
			return nil, err
		}
	}
	return NewDense(name, weight, bias, cfg.Activation)
}

// Layers returns the layers in order.
func (n *Network) Layers() []Layer {
	return n.layers
}

// Configs returns the layer configurations, without initial values.
func (n *Network) Configs() []LayerConfig {
	out := make([]LayerConfig, len(n.layers))
	for i, l := range n.layers {
		out[i] = l.Config()
	}
	return out
}

// InputWidth returns the number of input features.
func (n *Network) InputWidth() int {
	return n.layers[0].Inputs()
}

// OutputWidth returns the number of outputs.
func (n *Network) OutputWidth() int {
	return n.layers[len(n.layers)-1].Outputs()
}

// Parameters returns all trainable parameters, layer by layer, weights
// before bias.
func (n *Network) Parameters() []*Parameter {
	var params []*Parameter
	for _, l := range n.layers {
		params = append(params, l.Parameters()...)
	}
	return params
}

// NumParameters returns the number of trainable scalars.
func (n *Network) NumParameters() int {
	total := 0
	for _, p := range n.Parameters() {
		total += p.Shape().NumElements()
	}
	return total
}

// ZeroGrad clears every gradient accumulator.
func (n *Network) ZeroGrad() {
	for _, p := range n.Parameters() {
		p.ZeroGrad()
	}
}

// ParameterValues returns every parameter value flattened into one slice,
// in Parameters order.
func (n *Network) ParameterValues() []float64 {
	values := make([]float64, 0, n.NumParameters())
	for _, p := range n.Parameters() {
		values = append(values, p.Value().Data()...)
	}
	return values
}

// SetParameterValues overwrites every parameter from a flat slice in
// Parameters order.
//
// Fails with ErrShapeMismatch, leaving the network untouched, unless
// len(values) == NumParameters().
func (n *Network) SetParameterValues(values []float64) error {
	if len(values) != n.NumParameters() {
		return errs.Shape("nn.Network.SetParameterValues", "network has %d parameters, got %d values",
			n.NumParameters(), len(values))
	}
	offset := 0
	for _, p := range n.Parameters() {
		size := p.Shape().NumElements()
		copy(p.Value().Data(), values[offset:offset+size])
		offset += size
	}
	return nil
}

// String returns a one-line description such as
// "Network[Dense(2 → 8, tanh) → Dense(8 → 1, sigmoid)]".
func (n *Network) String() string {
	parts := make([]string, len(n.layers))
	for i, l := range n.layers {
		parts[i] = fmt.Sprint(l)
	}
	return "Network[" + strings.Join(parts, " → ") + "]"
}

// Forward runs every layer on input and returns the pass awaiting Backward.
//
// Fails with ErrShapeMismatch if input.Cols() != InputWidth(), and with
// ErrNonFiniteValue if the input or any layer output holds NaN or ±Inf.
func (n *Network) Forward(input *tensor.Tensor, mode ops.Mode) (*Pass, error) {
	pending, out, err := n.run(input, mode)
	if err != nil {
		return nil, err
	}
	pass := &Pass{net: n, pending: pending, output: out}
	n.current = pass
	return pass, nil
}

// Predict runs an inference-mode forward pass and returns the output.
// It does not affect the pass in flight. Non-finite values fail as in
// Forward.
func (n *Network) Predict(input *tensor.Tensor) (*tensor.Tensor, error) {
	_, out, err := n.run(input, ops.Inference)
	return out, err
}

func (n *Network) run(input *tensor.Tensor, mode ops.Mode) ([]ops.Pending, *tensor.Tensor, error) {
	if input.Cols() != n.InputWidth() {
		return nil, nil, errs.Shape("nn.Network.Forward", "input has %d features, network expects %d",
			input.Cols(), n.InputWidth())
	}
	if err := input.CheckFinite(); err != nil {
		return nil, nil, fmt.Errorf("network input: %w", err)
	}
	pending := make([]ops.Pending, len(n.layers))
	x := input
	for i, l := range n.layers {
		p, err := l.Forward(x, mode)
		if err != nil {
			return nil, nil, fmt.Errorf("layer %s: %w", l.Name(), err)
		}
		x = p.Output()
		if err := x.CheckFinite(); err != nil {
			return nil, nil, fmt.Errorf("layer %s: %w", l.Name(), err)
		}
		pending[i] = p
	}
	return pending, x, nil
}

// Pass is a forward pass awaiting its backward pass.
//
// Backward may succeed once, and only while the pass is the network's most
// recent Forward; otherwise it fails with ErrInvalidPass.
type Pass struct {
	net      *Network
	pending  []ops.Pending
	output   *tensor.Tensor
	consumed bool
}

// Output returns the network output. It must not be modified before Backward.
func (p *Pass) Output() *tensor.Tensor {
	return p.output
}

// Backward feeds gradOutput through the layers in reverse, accumulating
// every parameter gradient, and returns the gradient with respect to the
// network input.
func (p *Pass) Backward(gradOutput *tensor.Tensor) (*tensor.Tensor, error) {
	switch {
	case p.consumed:
		return nil, errs.New(errs.ErrInvalidPass, "nn.Pass.Backward", "backward already ran for this pass")
	case p.net.current != p:
		return nil, errs.New(errs.ErrInvalidPass, "nn.Pass.Backward", "pass was superseded by a later Forward")
	case !gradOutput.Shape().Equal(p.output.Shape()):
		return nil, errs.Shape("nn.Pass.Backward", "gradient %v does not match output %v",
			gradOutput.Shape(), p.output.Shape())
	}
	p.consumed = true
	p.net.current = nil

	g := gradOutput
	for i := len(p.pending) - 1; i >= 0; i-- {
		grads, err := p.pending[i].Backward(g)
		if err != nil {
			return nil, fmt.Errorf("layer %s: %w", p.net.layers[i].Name(), err)
		}
		g = grads.Input
	}
	return g, nil
}
