package nn

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/eidetic-ml/eidetic/internal/errs"
	"github.com/eidetic-ml/eidetic/internal/tensor"
)

// InitStrategy names a weight-initialization distribution.
type InitStrategy string

// Initialization strategies.
const (
	// XavierUniform draws from U(-√(6/(fanIn+fanOut)), √(6/(fanIn+fanOut))). Default.
	XavierUniform InitStrategy = "xavier_uniform"
	// XavierNormal draws from N(0, 2/(fanIn+fanOut)).
	XavierNormal InitStrategy = "xavier_normal"
	// HeNormal draws from N(0, 2/fanIn), suited to ReLU layers.
	HeNormal InitStrategy = "he_normal"
	// Uniform draws from U(-Scale, Scale).
	Uniform InitStrategy = "uniform"
	// Normal draws from N(0, Scale²).
	Normal InitStrategy = "normal"
	// ZeroInit sets every weight to zero.
	ZeroInit InitStrategy = "zeros"
)

// Init configures how a network's weights are initialized.
//
// Layer i of a network draws its weights from a source seeded with Seed+i,
// so the same Init always produces the same network. Biases start at zero.
type Init struct {
	Strategy InitStrategy `yaml:"strategy"`
	Seed     uint64       `yaml:"seed"`
	Scale    float64      `yaml:"scale,omitempty"` // Uniform and Normal only
}

// DefaultInit returns Xavier-uniform initialization with the given seed.
func DefaultInit(seed uint64) Init {
	return Init{Strategy: XavierUniform, Seed: seed}
}

// Validate checks the initialization configuration.
func (in Init) Validate() error {
	switch in.strategy() {
	case XavierUniform, XavierNormal, HeNormal, ZeroInit:
		return nil
	case Uniform, Normal:
		if !(in.Scale > 0) || math.IsInf(in.Scale, 0) {
			return errs.Config("nn.Init", "%s init requires a positive scale, got %g", in.Strategy, in.Scale)
		}
		return nil
	}
	return errs.Config("nn.Init", "unknown init strategy %q", in.Strategy)
}

func (in Init) strategy() InitStrategy {
	if in.Strategy == "" {
		return XavierUniform
	}
	return InitStrategy(strings.ToLower(string(in.Strategy)))
}

// Weights returns a (fanIn, fanOut) weight tensor for layer index.
func (in Init) Weights(fanIn, fanOut, index int) (*tensor.Tensor, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	w, err := tensor.New(tensor.Shape{Rows: fanIn, Cols: fanOut}, make([]float64, fanIn*fanOut))
	if err != nil {
		return nil, err
	}

	src := rand.NewSource(in.Seed + uint64(index))
	var sample func() float64
	switch in.strategy() {
	case ZeroInit:
		return w, nil
	case XavierUniform:
		bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
		sample = distuv.Uniform{Min: -bound, Max: bound, Src: src}.Rand
	case XavierNormal:
		sample = distuv.Normal{Mu: 0, Sigma: math.Sqrt(2.0 / float64(fanIn+fanOut)), Src: src}.Rand
	case HeNormal:
		sample = distuv.Normal{Mu: 0, Sigma: math.Sqrt(2.0 / float64(fanIn)), Src: src}.Rand
	case Uniform:
		sample = distuv.Uniform{Min: -in.Scale, Max: in.Scale, Src: src}.Rand
	case Normal:
		sample = distuv.Normal{Mu: 0, Sigma: in.Scale, Src: src}.Rand
	}

	data := w.Data()
	for i := range data {
		data[i] = sample()
	}
	return w, nil
}

// String returns a short description such as "xavier_uniform(seed=42)".
func (in Init) String() string {
	if in.Scale != 0 {
		return fmt.Sprintf("%s(seed=%d, scale=%g)", in.strategy(), in.Seed, in.Scale)
	}
	return fmt.Sprintf("%s(seed=%d)", in.strategy(), in.Seed)
}
