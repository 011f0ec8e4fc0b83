package optim

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/eidetic-ml/eidetic/internal/errs"
	"github.com/eidetic-ml/eidetic/internal/nn"
	"github.com/eidetic-ml/eidetic/internal/tensor"
)

// SGD implements Stochastic Gradient Descent with momentum.
//
// Update rule, per parameter:
//
//	velocity = momentum * velocity - lr * gradient
//	param    = param + velocity
//
// With momentum 0 this is plain gradient descent: param -= lr * gradient.
//
// Example:
//
//	optimizer, err := optim.NewSGD(net.Parameters(), optim.SGDConfig{
//	    Momentum: 0.9,
//	    Schedule: optim.LinearDecay{Initial: 0.1, Floor: 0.01, Steps: 1000},
//	})
type SGD struct {
	params     []*nn.Parameter
	velocities []*tensor.Tensor
	config     SGDConfig
	step       int
	epoch      int
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	Momentum float64  // Momentum factor (default: 0.0, range: [0, 1))
	Schedule Schedule // Learning rate schedule (default: Fixed{Rate: 0.01})
	Unit     Unit     // Counter passed to Schedule (default: PerStep)
}

// NewSGD creates a new SGD optimizer over params, with zeroed velocities.
//
// Fails with ErrInvalidConfiguration for momentum outside [0, 1) or an
// invalid schedule.
func NewSGD(params []*nn.Parameter, config SGDConfig) (*SGD, error) {
	if config.Schedule == nil {
		config.Schedule = Fixed{Rate: 0.01}
	}
	if !(config.Momentum >= 0 && config.Momentum < 1) {
		return nil, errs.Config("optim.NewSGD", "momentum must be in [0, 1), got %g", config.Momentum)
	}
	if err := config.Schedule.Validate(); err != nil {
		return nil, err
	}
	if len(params) == 0 {
		return nil, errs.Config("optim.NewSGD", "no parameters to optimize")
	}

	velocities := make([]*tensor.Tensor, len(params))
	for i, p := range params {
		velocities[i] = tensor.Zeros(p.Shape())
	}
	return &SGD{params: params, velocities: velocities, config: config}, nil
}

// Config returns the optimizer configuration.
func (s *SGD) Config() SGDConfig {
	return s.config
}

// Step returns the number of successful updates.
func (s *SGD) Step() int {
	return s.step
}

// Epoch returns the number of completed epochs.
func (s *SGD) Epoch() int {
	return s.epoch
}

// EndEpoch advances the epoch counter.
func (s *SGD) EndEpoch() {
	s.epoch++
}

// LearningRate returns the rate the next Update will use.
func (s *SGD) LearningRate() float64 {
	if s.config.Unit == PerEpoch {
		return s.config.Schedule.At(s.epoch)
	}
	return s.config.Schedule.At(s.step)
}

// Update performs a single optimization step.
//
// Fails with ErrUninitializedGradients if no parameter has received a
// gradient since the last update, and with ErrNonFiniteValue if the update
// would produce NaN or ±Inf. On failure nothing is modified: parameters,
// velocities, accumulators and counters keep their values.
func (s *SGD) Update() error {
	touched := false
	for _, p := range s.params {
		touched = touched || p.HasGrad()
	}
	if !touched {
		return errs.New(errs.ErrUninitializedGradients, "optim.SGD.Update", "no backward pass since the last update")
	}

	lr := s.LearningRate()
	momentum := s.config.Momentum

	// Stage every new velocity and value before committing any of them.
	newVelocities := make([]*tensor.Tensor, len(s.params))
	newValues := make([]*tensor.Tensor, len(s.params))
	for i, p := range s.params {
		v := s.velocities[i].Scale(momentum)
		if err := v.AddScaledInPlace(-lr, p.Grad()); err != nil {
			return err
		}
		value := p.Value().Clone()
		if err := value.AddInPlace(v); err != nil {
			return err
		}
		if err := value.CheckFinite(); err != nil {
			return errs.NonFinite("optim.SGD.Update", "%s at step %d (lr=%g): %v", p.Name(), s.step, lr, err)
		}
		if err := v.CheckFinite(); err != nil {
			return errs.NonFinite("optim.SGD.Update", "%s velocity at step %d: %v", p.Name(), s.step, err)
		}
		newVelocities[i], newValues[i] = v, value
	}

	for i, p := range s.params {
		s.velocities[i] = newVelocities[i]
		// Copy in place: layers hold references to the value tensors.
		if err := p.Value().CopyFrom(newValues[i]); err != nil {
			return err
		}
		p.ZeroGrad()
	}
	s.step++
	return nil
}

// State is a snapshot of the optimizer's mutable state.
type State struct {
	Step       int
	Epoch      int
	Velocities [][]float64
}

// StateDict returns a copy of the optimizer state.
func (s *SGD) StateDict() State {
	st := State{Step: s.step, Epoch: s.epoch, Velocities: make([][]float64, len(s.velocities))}
	for i, v := range s.velocities {
		st.Velocities[i] = append([]float64(nil), v.Data()...)
	}
	return st
}

// LoadStateDict restores a snapshot taken from an optimizer over parameters
// of the same shapes.
func (s *SGD) LoadStateDict(st State) error {
	if len(st.Velocities) != len(s.velocities) {
		return errs.Shape("optim.SGD.LoadStateDict", "state has %d velocities, optimizer has %d",
			len(st.Velocities), len(s.velocities))
	}
	for i, v := range st.Velocities {
		if len(v) != s.velocities[i].NumElements() {
			return errs.Shape("optim.SGD.LoadStateDict", "velocity %d has %d values, want %d",
				i, len(v), s.velocities[i].NumElements())
		}
	}
	if st.Step < 0 || st.Epoch < 0 {
		return errs.Config("optim.SGD.LoadStateDict", "negative counters (step %d, epoch %d)", st.Step, st.Epoch)
	}
	for i, v := range st.Velocities {
		copy(s.velocities[i].Data(), v)
	}
	s.step, s.epoch = st.Step, st.Epoch
	return nil
}

// GradNorm returns the L2 norm of the accumulated gradients.
func (s *SGD) GradNorm() float64 {
	sum := 0.0
	for _, p := range s.params {
		g := p.Grad().Data()
		sum += floats.Dot(g, g)
	}
	return math.Sqrt(sum)
}
