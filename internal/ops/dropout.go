package ops

import (
	"golang.org/x/exp/rand"

	"github.com/eidetic-ml/eidetic/internal/errs"
	"github.com/eidetic-ml/eidetic/internal/tensor"
)

// Dropout is inverted dropout.
//
// In training mode each element survives with probability keep and
// survivors are scaled by 1/keep, so the expected output equals the input.
// The scaled mask is cached and backward returns grad ⊙ mask. Inference
// mode is the identity.
//
// The mask is drawn from the source passed to NewDropout; there is no
// package-level generator.
type Dropout struct {
	keep float64
	rng  *rand.Rand
}

// NewDropout creates a dropout operation.
//
// Fails with ErrInvalidConfiguration unless keep is in (0, 1].
func NewDropout(keep float64, src rand.Source) (*Dropout, error) {
	if !(keep > 0 && keep <= 1) {
		return nil, errs.Config("ops.NewDropout", "keep probability must be in (0, 1], got %g", keep)
	}
	if src == nil {
		return nil, errs.Config("ops.NewDropout", "random source is required")
	}
	return &Dropout{keep: keep, rng: rand.New(src)}, nil
}

// Keep returns the keep probability.
func (d *Dropout) Keep() float64 {
	return d.keep
}

// Forward masks and scales input in training mode.
func (d *Dropout) Forward(input *tensor.Tensor, mode Mode) (Pending, error) {
	if mode != Training || d.keep == 1 {
		return &dropoutPending{handle: handle{op: "ops.Dropout", output: input.Clone()}}, nil
	}

	scale := 1 / d.keep
	mask := tensor.Zeros(input.Shape())
	m := mask.Data()
	for i := range m {
		if d.rng.Float64() < d.keep {
			m[i] = scale
		}
	}
	out, err := input.MulElem(mask)
	if err != nil {
		return nil, err
	}
	return &dropoutPending{handle: handle{op: "ops.Dropout", output: out}, mask: mask}, nil
}

type dropoutPending struct {
	handle
	mask *tensor.Tensor // nil when the forward pass was the identity
}

// Backward computes grad ⊙ mask.
func (p *dropoutPending) Backward(gradOutput *tensor.Tensor) (Gradients, error) {
	if err := p.consume(gradOutput); err != nil {
		return Gradients{}, err
	}
	if p.mask == nil {
		return Gradients{Input: gradOutput.Clone()}, nil
	}
	gradInput, err := gradOutput.MulElem(p.mask)
	if err != nil {
		return Gradients{}, err
	}
	return Gradients{Input: gradInput}, nil
}

// Mask returns the scaled mask of a training-mode forward pass, or nil.
func Mask(p Pending) *tensor.Tensor {
	if dp, ok := p.(*dropoutPending); ok {
		return dp.mask
	}
	return nil
}
