// Package optim implements optimization algorithms for training neural networks.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - Schedule: Fixed, LinearDecay and ExponentialDecay learning rates
//
// Example usage:
//
//	optimizer, err := optim.NewSGD(net.Parameters(), optim.SGDConfig{
//	    Momentum: 0.9,
//	    Schedule: optim.Fixed{Rate: 0.001},
//	})
//
//	// Training step
//	pass, _ := net.Forward(x, ops.Training)
//	grad, _ := loss.Backward(pass.Output(), y)
//	_, _ = pass.Backward(grad)
//	err = optimizer.Update() // applies and zeroes the accumulators
package optim

// Optimizer turns accumulated gradients into parameter updates.
type Optimizer interface {
	// Update applies one update from the accumulated gradients, then
	// zeroes the accumulators and advances the step counter.
	Update() error

	// EndEpoch advances the epoch counter.
	EndEpoch()

	// LearningRate returns the rate the next Update will use.
	LearningRate() float64

	// Step returns the number of successful updates.
	Step() int
}

// Unit selects the counter a schedule is queried with.
type Unit int

// Schedule units.
const (
	PerStep Unit = iota
	PerEpoch
)

// String returns "step" or "epoch".
func (u Unit) String() string {
	if u == PerEpoch {
		return "epoch"
	}
	return "step"
}
