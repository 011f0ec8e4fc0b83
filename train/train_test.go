// Copyright 2025 Eidetic Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package train_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eidetic-ml/eidetic/nn"
	"github.com/eidetic-ml/eidetic/optim"
	"github.com/eidetic-ml/eidetic/tensor"
	"github.com/eidetic-ml/eidetic/train"
)

func TestPublicFit(t *testing.T) {
	// y = x0 + x1
	inputs, err := tensor.FromRows([][]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}})
	require.NoError(t, err)
	targets, err := tensor.FromRows([][]float64{{0}, {1}, {1}, {2}})
	require.NoError(t, err)
	data, err := train.NewDataset(inputs, targets)
	require.NoError(t, err)

	net, err := nn.NewBuilder(2).Dense(1, nn.Identity()).Build(nn.DefaultInit(1))
	require.NoError(t, err)
	opt, err := optim.NewSGD(net.Parameters(), optim.SGDConfig{Momentum: 0.5, Schedule: optim.Fixed{Rate: 0.1}})
	require.NoError(t, err)
	trainer, err := train.New(net, nn.NewMSELoss(), opt, train.Config{Epochs: 300, BatchSize: 4, EvalEvery: 300})
	require.NoError(t, err)

	history, err := trainer.Fit(context.Background(), data, &data)
	require.NoError(t, err)
	last, ok := history.Last()
	require.True(t, ok)
	assert.True(t, last.Evaluated)
	assert.Less(t, last.EvalLoss, 1e-4)
	assert.InDeltaSlice(t, []float64{1, 1, 0}, net.ParameterValues(), 1e-2)
}
