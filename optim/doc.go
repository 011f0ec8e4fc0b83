// Copyright 2025 Eidetic Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides stochastic gradient descent with momentum and
// learning-rate schedules.
//
// # Overview
//
// This package contains:
//   - SGD: gradient descent with optional momentum
//   - Schedules: Fixed, LinearDecay and ExponentialDecay
//   - Optimizer interface for custom optimizers
//
// # Basic Usage
//
//	net, _ := nn.NewBuilder(2).Dense(1, nn.Identity()).Build(nn.DefaultInit(1))
//	opt, err := optim.NewSGD(net.Parameters(), optim.SGDConfig{
//	    Momentum: 0.9,
//	    Schedule: optim.LinearDecay{Initial: 0.1, Floor: 0.01, Steps: 1000},
//	})
//
//	pass, _ := net.Forward(x, nn.Training)
//	grad, _ := loss.Backward(pass.Output(), y)
//	_, _ = pass.Backward(grad)
//	err = opt.Update() // applies and clears the accumulated gradients
//
// # Schedules
//
// A schedule maps a counter to a learning rate. With Unit PerStep the
// counter is the number of updates applied so far; with PerEpoch it is
// the number of EndEpoch calls.
//
//   - Fixed{Rate}: constant
//   - LinearDecay{Initial, Floor, Steps}: straight line from Initial to
//     Floor over Steps, then Floor
//   - ExponentialDecay{Initial, Factor}: Initial·Factorⁿ, never zero
//
// # Failure safety
//
// Update computes every new value before writing any. If a value would be
// NaN or infinite it fails with ErrNonFiniteValue and leaves parameters,
// velocities and gradients as they were.
package optim
