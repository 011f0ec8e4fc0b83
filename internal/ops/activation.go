package ops

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/eidetic-ml/eidetic/internal/errs"
	"github.com/eidetic-ml/eidetic/internal/tensor"
)

// ActivationKind enumerates the elementwise nonlinearities.
type ActivationKind int

// Activation kinds.
const (
	Identity ActivationKind = iota
	Sigmoid
	Tanh
	ReLU
)

var activationNames = map[ActivationKind]string{
	Identity: "identity",
	Sigmoid:  "sigmoid",
	Tanh:     "tanh",
	ReLU:     "relu",
}

// String returns the kind name.
func (k ActivationKind) String() string {
	if name, ok := activationNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ActivationKind(%d)", int(k))
}

// Activation applies an elementwise function.
//
// Backward multiplies the output gradient by the derivative expressed in
// terms of the cached output:
//   - identity: 1
//   - sigmoid: y(1 - y)
//   - tanh: 1 - y²
//   - relu: 1 if y > 0, else Leak
//
// ReLU with Leak > 0 is the leaky variant max(x, Leak·x).
type Activation struct {
	Kind ActivationKind
	Leak float64
}

// NewActivation returns an activation of the given kind.
func NewActivation(kind ActivationKind) Activation {
	return Activation{Kind: kind}
}

// NewLeakyReLU returns a ReLU whose negative side has slope leak.
// leak must be in [0, 1).
func NewLeakyReLU(leak float64) (Activation, error) {
	a := Activation{Kind: ReLU, Leak: leak}
	return a, a.Validate()
}

// Validate checks the activation configuration.
func (a Activation) Validate() error {
	if _, ok := activationNames[a.Kind]; !ok {
		return errs.Config("ops.Activation", "unknown activation kind %d", int(a.Kind))
	}
	if a.Leak != 0 && a.Kind != ReLU {
		return errs.Config("ops.Activation", "leak is only valid for relu, got %s", a.Kind)
	}
	if a.Leak < 0 || a.Leak >= 1 || math.IsNaN(a.Leak) {
		return errs.Config("ops.Activation", "relu leak must be in [0, 1), got %g", a.Leak)
	}
	return nil
}

// String returns "relu(0.01)" for leaky ReLU and the kind name otherwise.
func (a Activation) String() string {
	if a.Kind == ReLU && a.Leak != 0 {
		return fmt.Sprintf("relu(%g)", a.Leak)
	}
	return a.Kind.String()
}

// ParseActivation parses the names produced by Activation.String.
// "leaky_relu" alone means a leak of 0.01.
func ParseActivation(s string) (Activation, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "", "identity", "linear", "none":
		return NewActivation(Identity), nil
	case "sigmoid":
		return NewActivation(Sigmoid), nil
	case "tanh":
		return NewActivation(Tanh), nil
	case "relu":
		return NewActivation(ReLU), nil
	case "leaky_relu", "leakyrelu":
		return NewLeakyReLU(0.01)
	}
	if strings.HasPrefix(name, "relu(") && strings.HasSuffix(name, ")") {
		leak, err := strconv.ParseFloat(name[len("relu("):len(name)-1], 64)
		if err != nil {
			return Activation{}, errs.Config("ops.ParseActivation", "bad leak in %q", s)
		}
		return NewLeakyReLU(leak)
	}
	return Activation{}, errs.Config("ops.ParseActivation", "unknown activation %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (a Activation) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Activation) UnmarshalText(text []byte) error {
	parsed, err := ParseActivation(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Apply evaluates the activation at x.
func (a Activation) Apply(x float64) float64 {
	switch a.Kind {
	case Sigmoid:
		return sigmoid(x)
	case Tanh:
		return math.Tanh(x)
	case ReLU:
		if x > 0 {
			return x
		}
		return a.Leak * x
	default:
		return x
	}
}

// Derivative evaluates the derivative from the activation output y.
func (a Activation) Derivative(y float64) float64 {
	switch a.Kind {
	case Sigmoid:
		return y * (1 - y)
	case Tanh:
		return 1 - y*y
	case ReLU:
		if y > 0 {
			return 1
		}
		return a.Leak
	default:
		return 1
	}
}

// sigmoid is 1/(1+e^-x), evaluated without overflow for large |x|.
func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

// Forward applies the activation elementwise.
func (a Activation) Forward(input *tensor.Tensor, _ Mode) (Pending, error) {
	return &activationPending{
		handle: handle{op: "ops.Activation", output: input.Map(a.Apply)},
		act:    a,
	}, nil
}

type activationPending struct {
	handle
	act Activation
}

// Backward computes grad ⊙ f'(output).
func (p *activationPending) Backward(gradOutput *tensor.Tensor) (Gradients, error) {
	if err := p.consume(gradOutput); err != nil {
		return Gradients{}, err
	}
	if p.act.Kind == Identity {
		return Gradients{Input: gradOutput.Clone()}, nil
	}
	gradInput, err := gradOutput.MulElem(p.output.Map(p.act.Derivative))
	if err != nil {
		return Gradients{}, err
	}
	return Gradients{Input: gradInput}, nil
}
