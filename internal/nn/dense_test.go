package nn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/diff/fd"

	"github.com/eidetic-ml/eidetic/internal/errs"
	"github.com/eidetic-ml/eidetic/internal/nn"
	"github.com/eidetic-ml/eidetic/internal/ops"
	"github.com/eidetic-ml/eidetic/internal/tensor"
)

// TestDense_GradientCheck compares the input, weight and bias gradients of
// a dense layer with finite differences of Σ output ⊙ r.
func TestDense_GradientCheck(t *testing.T) {
	for _, kind := range []ops.ActivationKind{ops.Identity, ops.Sigmoid, ops.Tanh} {
		t.Run(kind.String(), func(t *testing.T) {
			rng := rand.New(rand.NewSource(uint64(kind) + 10))
			x := randomTensor(rng, 3, 4)
			w := randomTensor(rng, 4, 2)
			b := randomTensor(rng, 1, 2)
			r := randomTensor(rng, 3, 2)

			layer, err := nn.NewDense("dense", w.Clone(), b.Clone(), ops.NewActivation(kind))
			require.NoError(t, err)

			p, err := layer.Forward(x, ops.Training)
			require.NoError(t, err)
			grads, err := p.Backward(r)
			require.NoError(t, err)

			// projected evaluates Σ f(x·w + b) ⊙ r on fresh copies.
			projected := func(x, w, b *tensor.Tensor) float64 {
				l, err := nn.NewDense("probe", w, b, ops.NewActivation(kind))
				require.NoError(t, err)
				out, err := l.Forward(x, ops.Inference)
				require.NoError(t, err)
				prod, err := out.Output().MulElem(r)
				require.NoError(t, err)
				return prod.Sum()
			}
			settings := &fd.Settings{Formula: fd.Central, Step: 1e-6}
			with := func(shape tensor.Shape, v []float64) *tensor.Tensor {
				out, err := tensor.New(shape, v)
				require.NoError(t, err)
				return out
			}

			wantX := fd.Gradient(nil, func(v []float64) float64 {
				return projected(with(x.Shape(), v), w.Clone(), b.Clone())
			}, x.Data(), settings)
			wantW := fd.Gradient(nil, func(v []float64) float64 {
				return projected(x, with(w.Shape(), v), b.Clone())
			}, w.Data(), settings)
			wantB := fd.Gradient(nil, func(v []float64) float64 {
				return projected(x, w.Clone(), with(b.Shape(), v))
			}, b.Data(), settings)

			assert.InDeltaSlice(t, wantX, grads.Input.Data(), gradTol, "dL/dX")
			assert.InDeltaSlice(t, wantW, layer.Weight().Grad().Data(), gradTol, "dL/dW")
			assert.InDeltaSlice(t, wantB, layer.Bias().Grad().Data(), gradTol, "dL/db")
		})
	}
}

func TestDense_BiasShapeMismatch(t *testing.T) {
	w := tensor.Zeros(tensor.Shape{Rows: 2, Cols: 3})
	_, err := nn.NewDense("d", w, tensor.Zeros(tensor.Shape{Rows: 1, Cols: 2}), ops.NewActivation(ops.Tanh))
	assert.ErrorIs(t, err, errs.ErrShapeMismatch)
}

func TestDense_Config(t *testing.T) {
	layer, err := nn.NewDense("d", tensor.Zeros(tensor.Shape{Rows: 2, Cols: 3}),
		tensor.Zeros(tensor.Shape{Rows: 1, Cols: 3}), ops.NewActivation(ops.ReLU))
	require.NoError(t, err)
	assert.Equal(t, nn.DenseConfig(2, 3, ops.NewActivation(ops.ReLU)), layer.Config())
	assert.Equal(t, "d.weight", layer.Parameters()[0].Name())
	assert.Equal(t, "d.bias", layer.Parameters()[1].Name())
}

func TestParameter_Accumulate(t *testing.T) {
	p := nn.NewParameter("w", tensor.Zeros(tensor.Shape{Rows: 1, Cols: 2}))
	assert.False(t, p.HasGrad())
	require.NoError(t, p.Accumulate(tensor.Ones(tensor.Shape{Rows: 1, Cols: 2})))
	require.NoError(t, p.Accumulate(tensor.Ones(tensor.Shape{Rows: 1, Cols: 2})))
	assert.Equal(t, []float64{2, 2}, p.Grad().Data())
	assert.True(t, p.HasGrad())

	assert.ErrorIs(t, p.Accumulate(tensor.Ones(tensor.Shape{Rows: 2, Cols: 1})), errs.ErrShapeMismatch)
}
