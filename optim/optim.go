// Copyright 2025 Eidetic Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/eidetic-ml/eidetic/internal/errs"
	"github.com/eidetic-ml/eidetic/internal/nn"
	"github.com/eidetic-ml/eidetic/internal/optim"
)

// Optimizer applies accumulated gradients to parameters.
type Optimizer = optim.Optimizer

// SGD is stochastic gradient descent with momentum.
type SGD = optim.SGD

// SGDConfig configures SGD.
type SGDConfig = optim.SGDConfig

// State is a snapshot of SGD's velocities and counters.
type State = optim.State

// Unit selects the counter passed to a schedule.
type Unit = optim.Unit

// Schedule units.
const (
	PerStep  = optim.PerStep
	PerEpoch = optim.PerEpoch
)

// Schedule maps a step or epoch count to a learning rate.
type Schedule = optim.Schedule

// Fixed is a constant learning rate.
type Fixed = optim.Fixed

// LinearDecay decreases linearly from Initial to Floor over Steps.
type LinearDecay = optim.LinearDecay

// ExponentialDecay multiplies the rate by Factor each count.
type ExponentialDecay = optim.ExponentialDecay

// ScheduleConfig is the declarative form of a Schedule.
type ScheduleConfig = optim.ScheduleConfig

// Error kinds, matched with errors.Is.
var (
	ErrInvalidConfiguration   = errs.ErrInvalidConfiguration
	ErrNonFiniteValue         = errs.ErrNonFiniteValue
	ErrUninitializedGradients = errs.ErrUninitializedGradients
)

// NewSGD creates an SGD optimizer over params.
//
// Example:
//
//	opt, err := optim.NewSGD(net.Parameters(), optim.SGDConfig{
//	    Momentum: 0.9,
//	    Schedule: optim.Fixed{Rate: 0.01},
//	})
func NewSGD(params []*nn.Parameter, config SGDConfig) (*SGD, error) {
	return optim.NewSGD(params, config)
}

// NewExponentialDecayBetween returns the exponential schedule that starts
// at initial and reaches final at count steps-1.
func NewExponentialDecayBetween(initial, final float64, steps int) (ExponentialDecay, error) {
	return optim.NewExponentialDecayBetween(initial, final, steps)
}
