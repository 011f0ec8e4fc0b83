package checkpoint

import (
	"github.com/eidetic-ml/eidetic/internal/errs"
	"github.com/eidetic-ml/eidetic/internal/nn"
	"github.com/eidetic-ml/eidetic/internal/optim"
	"github.com/eidetic-ml/eidetic/internal/tensor"
)

// File is a decoded checkpoint.
type File struct {
	Header  Header
	Flags   uint32
	tensors map[string]entry
}

type entry struct {
	meta   TensorMeta
	values []float64
}

// HasOptimizer reports whether the checkpoint carries optimizer state.
func (f *File) HasOptimizer() bool {
	return f.Flags&FlagHasOptimizer != 0 && f.Header.Optimizer != nil
}

// Tensor returns a copy of the named tensor as float64.
func (f *File) Tensor(name string) (*tensor.Tensor, bool) {
	e, ok := f.tensors[name]
	if !ok {
		return nil, false
	}
	t, err := tensor.New(tensor.Shape{Rows: e.meta.Rows, Cols: e.meta.Cols}, e.values)
	if err != nil {
		return nil, false
	}
	return t, true
}

// Restore copies the checkpoint's parameters into net and, when opt is
// non-nil, its optimizer state into opt.
//
// Parameters are matched by name. Nothing is modified unless every
// parameter is present with the right shape and the optimizer state (if
// requested) loads.
func (f *File) Restore(net *nn.Network, opt *optim.SGD) error {
	const op = "checkpoint.File.Restore"
	params := net.Parameters()
	values := make([][]float64, len(params))
	for i, p := range params {
		e, err := f.lookup(op, p.Name(), p.Shape())
		if err != nil {
			return err
		}
		values[i] = e.values
	}

	if opt != nil {
		if !f.HasOptimizer() {
			return ErrNoOptimizerState
		}
		st := optim.State{
			Step:       f.Header.Optimizer.Step,
			Epoch:      f.Header.Optimizer.Epoch,
			Velocities: make([][]float64, len(params)),
		}
		for i, p := range params {
			e, err := f.lookup(op, VelocityPrefix+p.Name(), p.Shape())
			if err != nil {
				return err
			}
			st.Velocities[i] = e.values
		}
		if err := opt.LoadStateDict(st); err != nil {
			return err
		}
	}

	for i, p := range params {
		copy(p.Value().Data(), values[i])
	}
	return nil
}

func (f *File) lookup(op, name string, shape tensor.Shape) (entry, error) {
	e, ok := f.tensors[name]
	if !ok {
		return entry{}, errs.Shape(op, "checkpoint has no tensor %q", name)
	}
	if e.meta.Rows != shape.Rows || e.meta.Cols != shape.Cols {
		return entry{}, errs.Shape(op, "tensor %q is (%d, %d), network expects %v",
			name, e.meta.Rows, e.meta.Cols, shape)
	}
	return e, nil
}

// Network rebuilds the network recorded in the checkpoint and loads its
// parameters.
func (f *File) Network() (*nn.Network, error) {
	layers := make([]nn.LayerConfig, len(f.Header.Layers))
	for i, cfg := range f.Header.Layers {
		cfg.Init = nil
		layers[i] = cfg
	}
	net, err := nn.NewNetwork(layers, nn.Init{Strategy: nn.ZeroInit, Seed: f.Header.Seed})
	if err != nil {
		return nil, err
	}
	if err := f.Restore(net, nil); err != nil {
		return nil, err
	}
	return net, nil
}
