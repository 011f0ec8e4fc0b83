package nn

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/eidetic-ml/eidetic/internal/ops"
	"github.com/eidetic-ml/eidetic/internal/tensor"
)

// Dropout is a parameter-free layer applying inverted dropout in training
// mode and the identity in inference mode.
type Dropout struct {
	name  string
	width int
	op    *ops.Dropout
}

// NewDropout creates a dropout layer of the given width.
//
// Fails with ErrInvalidConfiguration unless keep is in (0, 1].
func NewDropout(name string, width int, keep float64, src rand.Source) (*Dropout, error) {
	op, err := ops.NewDropout(keep, src)
	if err != nil {
		return nil, err
	}
	return &Dropout{name: name, width: width, op: op}, nil
}

// Name returns the layer name.
func (d *Dropout) Name() string { return d.name }

// Inputs returns the layer width.
func (d *Dropout) Inputs() int { return d.width }

// Outputs returns the layer width.
func (d *Dropout) Outputs() int { return d.width }

// Keep returns the keep probability.
func (d *Dropout) Keep() float64 { return d.op.Keep() }

// Parameters returns nil; dropout has no trainable parameters.
func (d *Dropout) Parameters() []*Parameter { return nil }

// Config describes the layer.
func (d *Dropout) Config() LayerConfig {
	return DropoutConfig(d.width, d.op.Keep())
}

// String returns "Dropout(width, keep=p)".
func (d *Dropout) String() string {
	return fmt.Sprintf("Dropout(%d, keep=%g)", d.width, d.op.Keep())
}

// Forward applies the dropout operation.
func (d *Dropout) Forward(input *tensor.Tensor, mode ops.Mode) (ops.Pending, error) {
	return d.op.Forward(input, mode)
}
