package nn_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/diff/fd"

	"github.com/eidetic-ml/eidetic/internal/errs"
	"github.com/eidetic-ml/eidetic/internal/nn"
	"github.com/eidetic-ml/eidetic/internal/tensor"
)

const gradTol = 1e-4

func randomTensor(rng *rand.Rand, rows, cols int) *tensor.Tensor {
	x := tensor.Zeros(tensor.Shape{Rows: rows, Cols: cols})
	for i := range x.Data() {
		x.Data()[i] = 2*rng.Float64() - 1
	}
	return x
}

func oneHot(rng *rand.Rand, rows, cols int) *tensor.Tensor {
	x := tensor.Zeros(tensor.Shape{Rows: rows, Cols: cols})
	for r := 0; r < rows; r++ {
		x.Row(r)[rng.Intn(cols)] = 1
	}
	return x
}

// lossGradientCheck compares loss.Backward with a centered finite
// difference of loss.Forward.
func lossGradientCheck(t *testing.T, loss nn.Loss, pred, target *tensor.Tensor) {
	t.Helper()
	grad, err := loss.Backward(pred, target)
	require.NoError(t, err)

	f := func(x []float64) float64 {
		p, err := tensor.New(pred.Shape(), x)
		require.NoError(t, err)
		v, err := loss.Forward(p, target)
		require.NoError(t, err)
		return v
	}
	want := fd.Gradient(nil, f, pred.Data(), &fd.Settings{Formula: fd.Central, Step: 1e-6})
	for i := range want {
		assert.InDelta(t, want[i], grad.Data()[i], gradTol, "%s: element %d", loss.Name(), i)
	}
}

func TestMSE_GradientCheck(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	lossGradientCheck(t, nn.NewMSELoss(), randomTensor(rng, 4, 3), randomTensor(rng, 4, 3))
}

func TestSoftmaxCrossEntropy_GradientCheck(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	lossGradientCheck(t, nn.NewSoftmaxCrossEntropyLoss(), randomTensor(rng, 5, 4), oneHot(rng, 5, 4))
}

// TestSoftmaxCrossEntropy_SingleColumnGradientCheck covers the binary
// single-column expansion.
func TestSoftmaxCrossEntropy_SingleColumnGradientCheck(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	target := tensor.Zeros(tensor.Shape{Rows: 4, Cols: 1})
	for i := range target.Data() {
		target.Data()[i] = float64(rng.Intn(2))
	}
	lossGradientCheck(t, nn.NewSoftmaxCrossEntropyLoss(), randomTensor(rng, 4, 1), target)
}

func TestSoftmaxCrossEntropy_KnownValue(t *testing.T) {
	pred := mustTensor(t, [][]float64{{0, 0}, {math.Log(3), 0}})
	target := mustTensor(t, [][]float64{{1, 0}, {1, 0}})

	loss, err := nn.NewSoftmaxCrossEntropyLoss().Forward(pred, target)
	require.NoError(t, err)
	// Row 0: -log(1/2); row 1: -log(3/4).
	assert.InDelta(t, (math.Log(2)+math.Log(4.0/3))/2, loss, 1e-12)

	grad, err := nn.NewSoftmaxCrossEntropyLoss().Backward(pred, target)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-0.25, 0.25, -0.125, 0.125}, grad.Data(), 1e-12)
}

// TestSoftmaxCrossEntropy_NeverInfinite tests that a probability that
// underflows to zero is clamped before the logarithm.
func TestSoftmaxCrossEntropy_NeverInfinite(t *testing.T) {
	pred := mustTensor(t, [][]float64{{1000, -1000, 0}, {-1e6, 1e6, 0}})
	target := mustTensor(t, [][]float64{{0, 1, 0}, {1, 0, 0}})

	loss, err := nn.NewSoftmaxCrossEntropyLoss().Forward(pred, target)
	require.NoError(t, err)
	assert.False(t, math.IsInf(loss, 0))
	assert.False(t, math.IsNaN(loss))
	assert.InDelta(t, -math.Log(nn.ProbabilityEpsilon), loss, 1e-9)

	grad, err := nn.NewSoftmaxCrossEntropyLoss().Backward(pred, target)
	require.NoError(t, err)
	assert.NoError(t, grad.CheckFinite())
}

func TestSoftmax_RowsSumToOne(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	x := randomTensor(rng, 6, 5).Scale(500)
	p := nn.Softmax(x)
	for r := 0; r < p.Rows(); r++ {
		sum := 0.0
		for _, v := range p.Row(r) {
			assert.GreaterOrEqual(t, v, 0.0)
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-12)
	}
}

func TestLoss_Errors(t *testing.T) {
	losses := []nn.Loss{nn.NewMSELoss(), nn.NewSoftmaxCrossEntropyLoss()}
	a := tensor.Zeros(tensor.Shape{Rows: 2, Cols: 3})
	b := tensor.Zeros(tensor.Shape{Rows: 3, Cols: 2})
	bad := tensor.Zeros(tensor.Shape{Rows: 2, Cols: 3})
	require.NoError(t, bad.Set(1, 1, math.NaN()))

	for _, loss := range losses {
		_, err := loss.Forward(a, b)
		assert.ErrorIs(t, err, errs.ErrShapeMismatch, loss.Name())
		_, err = loss.Backward(a, b)
		assert.ErrorIs(t, err, errs.ErrShapeMismatch, loss.Name())

		_, err = loss.Forward(bad, a)
		assert.ErrorIs(t, err, errs.ErrNonFiniteValue, loss.Name())
		_, err = loss.Backward(a, bad)
		assert.ErrorIs(t, err, errs.ErrNonFiniteValue, loss.Name())
	}
}
