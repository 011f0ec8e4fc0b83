// Copyright 2025 Eidetic Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package train runs the training loop for eidetic networks.
//
// Example:
//
//	data, err := train.NewDataset(inputs, targets)
//	trainer, err := train.New(net, nn.NewMSELoss(), opt, train.Config{
//	    Epochs:    100,
//	    BatchSize: 32,
//	    Shuffle:   true,
//	    Seed:      1,
//	})
//	history, err := trainer.Fit(ctx, data, nil)
package train

import (
	"github.com/eidetic-ml/eidetic/internal/nn"
	"github.com/eidetic-ml/eidetic/internal/optim"
	"github.com/eidetic-ml/eidetic/internal/tensor"
	"github.com/eidetic-ml/eidetic/internal/train"
)

// Trainer owns one network, loss and optimizer.
type Trainer = train.Trainer

// Config holds the outer-loop settings.
type Config = train.Config

// Dataset pairs input rows with target rows.
type Dataset = train.Dataset

// History records the epochs of a Fit call.
type History = train.History

// EpochStats summarizes one epoch.
type EpochStats = train.EpochStats

// NonFinitePolicy decides what happens to a batch that produces NaN or ±Inf.
type NonFinitePolicy = train.NonFinitePolicy

// Non-finite policies.
const (
	Halt      = train.Halt
	SkipBatch = train.SkipBatch
)

// New creates a trainer. opt must have been created over net.Parameters().
func New(net *nn.Network, loss nn.Loss, opt optim.Optimizer, cfg Config) (*Trainer, error) {
	return train.New(net, loss, opt, cfg)
}

// NewDataset pairs inputs with targets row by row.
func NewDataset(inputs, targets *tensor.Tensor) (Dataset, error) {
	return train.NewDataset(inputs, targets)
}

// Split returns the first n samples and the rest.
func Split(d Dataset, n int) (Dataset, Dataset, error) {
	return train.Split(d, n)
}

// Accuracy returns the fraction of rows whose predicted class matches the
// target class.
func Accuracy(predictions, targets *tensor.Tensor) (float64, error) {
	return train.Accuracy(predictions, targets)
}

// Evaluate runs an inference pass over d and returns its loss and accuracy.
func Evaluate(net *nn.Network, loss nn.Loss, d Dataset) (float64, float64, error) {
	return train.Evaluate(net, loss, d)
}
