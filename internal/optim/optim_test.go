package optim_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eidetic-ml/eidetic/internal/errs"
	"github.com/eidetic-ml/eidetic/internal/nn"
	"github.com/eidetic-ml/eidetic/internal/optim"
	"github.com/eidetic-ml/eidetic/internal/tensor"
)

func newParam(t *testing.T, name string, values ...float64) *nn.Parameter {
	t.Helper()
	v, err := tensor.New(tensor.Shape{Rows: 1, Cols: len(values)}, values)
	require.NoError(t, err)
	return nn.NewParameter(name, v)
}

func accumulate(t *testing.T, p *nn.Parameter, values ...float64) {
	t.Helper()
	g, err := tensor.New(p.Shape(), values)
	require.NoError(t, err)
	require.NoError(t, p.Accumulate(g))
}

// TestSGD_SimpleUpdate tests SGD without momentum.
func TestSGD_SimpleUpdate(t *testing.T) {
	x := newParam(t, "x", 2.0)
	optimizer, err := optim.NewSGD([]*nn.Parameter{x}, optim.SGDConfig{Schedule: optim.Fixed{Rate: 0.1}})
	require.NoError(t, err)

	accumulate(t, x, 1.0)
	require.NoError(t, optimizer.Update())

	// Expected: x_new = x_old - lr * grad = 2.0 - 0.1 * 1.0 = 1.9
	assert.InDelta(t, 1.9, x.Value().Data()[0], 1e-12)
	assert.Equal(t, 1, optimizer.Step())
}

// TestSGD_ZeroMomentumIsPlainDescent tests that momentum 0 matches
// param - lr * grad exactly, step after step.
func TestSGD_ZeroMomentumIsPlainDescent(t *testing.T) {
	p := newParam(t, "p", 1.5, -2.25, 0.125)
	optimizer, err := optim.NewSGD([]*nn.Parameter{p}, optim.SGDConfig{Momentum: 0, Schedule: optim.Fixed{Rate: 0.3}})
	require.NoError(t, err)

	grads := [][]float64{{0.5, -1, 2}, {0.25, 0.75, -3}, {1, 1, 1}}
	for _, g := range grads {
		want := make([]float64, len(g))
		for i := range g {
			want[i] = p.Value().Data()[i] - 0.3*g[i]
		}
		accumulate(t, p, g...)
		require.NoError(t, optimizer.Update())
		assert.Equal(t, want, p.Value().Data())
	}
}

// TestSGD_WithMomentum tests the velocity recurrence.
func TestSGD_WithMomentum(t *testing.T) {
	x := newParam(t, "x", 1.0)
	optimizer, err := optim.NewSGD([]*nn.Parameter{x}, optim.SGDConfig{Momentum: 0.9, Schedule: optim.Fixed{Rate: 0.1}})
	require.NoError(t, err)

	// Step 1: v = -0.1*1 = -0.1, x = 0.9
	accumulate(t, x, 1.0)
	require.NoError(t, optimizer.Update())
	assert.InDelta(t, 0.9, x.Value().Data()[0], 1e-12)

	// Step 2: v = 0.9*(-0.1) - 0.1*1 = -0.19, x = 0.71
	accumulate(t, x, 1.0)
	require.NoError(t, optimizer.Update())
	assert.InDelta(t, 0.71, x.Value().Data()[0], 1e-12)

	assert.InDeltaSlice(t, []float64{-0.19}, optimizer.StateDict().Velocities[0], 1e-12)
}

// TestSGD_ZeroesAccumulators tests that Update clears gradients so the next
// backward pass starts from zero.
func TestSGD_ZeroesAccumulators(t *testing.T) {
	x := newParam(t, "x", 1.0, 2.0)
	optimizer, err := optim.NewSGD([]*nn.Parameter{x}, optim.SGDConfig{})
	require.NoError(t, err)

	accumulate(t, x, 3, 4)
	assert.InDelta(t, 5.0, optimizer.GradNorm(), 1e-12)
	require.NoError(t, optimizer.Update())
	assert.Equal(t, []float64{0, 0}, x.Grad().Data())
	assert.False(t, x.HasGrad())
}

// TestSGD_UninitializedGradients tests that Update before any backward pass fails.
func TestSGD_UninitializedGradients(t *testing.T) {
	x := newParam(t, "x", 1.0)
	optimizer, err := optim.NewSGD([]*nn.Parameter{x}, optim.SGDConfig{})
	require.NoError(t, err)

	assert.ErrorIs(t, optimizer.Update(), errs.ErrUninitializedGradients)

	accumulate(t, x, 1)
	require.NoError(t, optimizer.Update())
	assert.ErrorIs(t, optimizer.Update(), errs.ErrUninitializedGradients)
	assert.Equal(t, 1, optimizer.Step())
}

// TestSGD_NonFiniteLeavesParametersUntouched tests that a NaN update is
// reported and nothing changes.
func TestSGD_NonFiniteLeavesParametersUntouched(t *testing.T) {
	a := newParam(t, "a", 1.0)
	b := newParam(t, "b", 2.0)
	optimizer, err := optim.NewSGD([]*nn.Parameter{a, b}, optim.SGDConfig{Momentum: 0.5})
	require.NoError(t, err)

	accumulate(t, a, 1.0)
	accumulate(t, b, math.Inf(1))
	assert.ErrorIs(t, optimizer.Update(), errs.ErrNonFiniteValue)

	assert.Equal(t, []float64{1.0}, a.Value().Data())
	assert.Equal(t, []float64{2.0}, b.Value().Data())
	assert.Equal(t, 0, optimizer.Step())
	assert.Equal(t, []float64{0}, optimizer.StateDict().Velocities[0])
}

func TestSGD_InvalidConfig(t *testing.T) {
	x := newParam(t, "x", 1.0)
	tests := []optim.SGDConfig{
		{Momentum: 1},
		{Momentum: -0.1},
		{Momentum: math.NaN()},
		{Schedule: optim.Fixed{Rate: 0}},
		{Schedule: optim.Fixed{Rate: -1}},
		{Schedule: optim.LinearDecay{Initial: 0.1, Floor: 0.2, Steps: 10}},
		{Schedule: optim.ExponentialDecay{Initial: 0.1, Factor: 1.5}},
	}
	for _, cfg := range tests {
		_, err := optim.NewSGD([]*nn.Parameter{x}, cfg)
		assert.ErrorIs(t, err, errs.ErrInvalidConfiguration, "%+v", cfg)
	}
	_, err := optim.NewSGD(nil, optim.SGDConfig{})
	assert.ErrorIs(t, err, errs.ErrInvalidConfiguration)
}

// TestSGD_ScheduleUnits tests that the schedule follows the step or the
// epoch counter.
func TestSGD_ScheduleUnits(t *testing.T) {
	schedule := optim.LinearDecay{Initial: 1, Floor: 0.5, Steps: 2}

	x := newParam(t, "x", 0)
	perStep, err := optim.NewSGD([]*nn.Parameter{x}, optim.SGDConfig{Schedule: schedule})
	require.NoError(t, err)
	accumulate(t, x, 1)
	require.NoError(t, perStep.Update())
	assert.Equal(t, 0.75, perStep.LearningRate())

	y := newParam(t, "y", 0)
	perEpoch, err := optim.NewSGD([]*nn.Parameter{y}, optim.SGDConfig{Schedule: schedule, Unit: optim.PerEpoch})
	require.NoError(t, err)
	accumulate(t, y, 1)
	require.NoError(t, perEpoch.Update())
	assert.Equal(t, 1.0, perEpoch.LearningRate())
	perEpoch.EndEpoch()
	perEpoch.EndEpoch()
	assert.Equal(t, 0.5, perEpoch.LearningRate())
	assert.Equal(t, 2, perEpoch.Epoch())
}

func TestSGD_StateDictRoundTrip(t *testing.T) {
	x := newParam(t, "x", 1.0, 2.0)
	src, err := optim.NewSGD([]*nn.Parameter{x}, optim.SGDConfig{Momentum: 0.9})
	require.NoError(t, err)
	accumulate(t, x, 1, -1)
	require.NoError(t, src.Update())
	src.EndEpoch()

	y := newParam(t, "y", 0, 0)
	dst, err := optim.NewSGD([]*nn.Parameter{y}, optim.SGDConfig{Momentum: 0.9})
	require.NoError(t, err)
	require.NoError(t, dst.LoadStateDict(src.StateDict()))
	assert.Equal(t, src.StateDict(), dst.StateDict())

	bad := src.StateDict()
	bad.Velocities[0] = bad.Velocities[0][:1]
	assert.ErrorIs(t, dst.LoadStateDict(bad), errs.ErrShapeMismatch)
}

// TestLinearDecay tests the endpoints and monotonicity.
func TestLinearDecay(t *testing.T) {
	s := optim.LinearDecay{Initial: 0.1, Floor: 0.01, Steps: 100}
	require.NoError(t, s.Validate())

	assert.Equal(t, 0.1, s.At(0))
	assert.Equal(t, 0.01, s.At(100))
	assert.Equal(t, 0.01, s.At(1000))
	assert.InDelta(t, 0.055, s.At(50), 1e-15)

	prev := s.At(0)
	for n := 1; n <= 150; n++ {
		cur := s.At(n)
		assert.LessOrEqual(t, cur, prev, "step %d", n)
		assert.Greater(t, cur, 0.0)
		prev = cur
	}
}

// TestLinearDecay_EpochSpread tests a decay from 0.1 to 0.05 reaching the
// floor in the tenth epoch.
func TestLinearDecay_EpochSpread(t *testing.T) {
	s := optim.LinearDecay{Initial: 0.1, Floor: 0.05, Steps: 9}
	assert.InDelta(t, 0.09444444444444446, s.At(1), 1e-15)
	assert.InDelta(t, 0.07222222222222226, s.At(5), 1e-15)
	assert.Equal(t, 0.05, s.At(9))
}

// TestExponentialDecay tests At(n) = initial · factor^n and positivity.
func TestExponentialDecay(t *testing.T) {
	s := optim.ExponentialDecay{Initial: 0.5, Factor: 0.9}
	require.NoError(t, s.Validate())
	for _, n := range []int{0, 1, 2, 10, 57} {
		assert.InDelta(t, 0.5*math.Pow(0.9, float64(n)), s.At(n), 1e-15, "step %d", n)
	}
	for _, n := range []int{1000, 100000, math.MaxInt32} {
		assert.Greater(t, s.At(n), 0.0, "step %d", n)
	}
}

func TestNewExponentialDecayBetween(t *testing.T) {
	s, err := optim.NewExponentialDecayBetween(0.1, 0.05, 10)
	require.NoError(t, err)
	assert.InDelta(t, 0.09258747122872905, s.At(1), 1e-15)
	assert.InDelta(t, 0.05, s.At(9), 1e-15)

	_, err = optim.NewExponentialDecayBetween(0.1, 0.05, 1)
	assert.ErrorIs(t, err, errs.ErrInvalidConfiguration)
	_, err = optim.NewExponentialDecayBetween(0.1, 0.2, 10)
	assert.ErrorIs(t, err, errs.ErrInvalidConfiguration)
}

func TestScheduleConfig_Build(t *testing.T) {
	tests := []struct {
		cfg  optim.ScheduleConfig
		want optim.Schedule
	}{
		{optim.ScheduleConfig{Initial: 0.1}, optim.Fixed{Rate: 0.1}},
		{optim.ScheduleConfig{Kind: "linear", Initial: 0.1, Final: 0.01, Steps: 5}, optim.LinearDecay{Initial: 0.1, Floor: 0.01, Steps: 5}},
		{optim.ScheduleConfig{Kind: "exponential", Initial: 0.1, Factor: 0.5}, optim.ExponentialDecay{Initial: 0.1, Factor: 0.5}},
	}
	for _, tt := range tests {
		got, err := tt.cfg.Build()
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	s, err := optim.ScheduleConfig{Kind: "exponential", Initial: 0.1, Final: 0.05, Steps: 10}.Build()
	require.NoError(t, err)
	assert.InDelta(t, 0.05, s.At(9), 1e-15)

	_, err = optim.ScheduleConfig{Kind: "cosine", Initial: 0.1}.Build()
	assert.ErrorIs(t, err, errs.ErrInvalidConfiguration)
	_, err = optim.ScheduleConfig{Kind: "linear", Initial: 0.1, Final: 0.01}.Build()
	assert.ErrorIs(t, err, errs.ErrInvalidConfiguration)
}
