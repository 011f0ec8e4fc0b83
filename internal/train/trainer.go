// Package train drives a network, a loss and an optimizer through the
// per-batch training sequence:
//
//	Network.Forward → Loss.Forward → Loss.Backward → Pass.Backward → Optimizer.Update
//
// TrainBatch runs that sequence once on a caller-chosen batch. Fit adds the
// outer loop: optional seeded shuffling, batching, periodic evaluation and
// a policy for non-finite values.
package train

import (
	"context"
	"errors"
	"fmt"
	"time"

	perrors "github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"k8s.io/klog/v2"

	"github.com/eidetic-ml/eidetic/internal/errs"
	"github.com/eidetic-ml/eidetic/internal/nn"
	"github.com/eidetic-ml/eidetic/internal/ops"
	"github.com/eidetic-ml/eidetic/internal/optim"
)

// NonFinitePolicy decides what Fit does when a batch produces NaN or ±Inf.
type NonFinitePolicy string

// Non-finite policies.
const (
	// Halt stops training and returns the error.
	Halt NonFinitePolicy = "halt"
	// SkipBatch discards the batch's gradients, logs a warning and continues.
	SkipBatch NonFinitePolicy = "skip"
)

// Config holds the outer-loop settings used by Fit.
type Config struct {
	Epochs    int             `yaml:"epochs"`
	BatchSize int             `yaml:"batch_size"`
	Shuffle   bool            `yaml:"shuffle"`
	Seed      uint64          `yaml:"seed"`
	EvalEvery int             `yaml:"eval_every,omitempty"` // 0 disables evaluation
	NonFinite NonFinitePolicy `yaml:"non_finite,omitempty"` // default Halt
}

// Validate checks the trainer configuration.
func (c Config) Validate() error {
	if c.Epochs <= 0 {
		return errs.Config("train.Config", "epochs must be positive, got %d", c.Epochs)
	}
	if c.BatchSize <= 0 {
		return errs.Config("train.Config", "batch size must be positive, got %d", c.BatchSize)
	}
	if c.EvalEvery < 0 {
		return errs.Config("train.Config", "eval_every must not be negative, got %d", c.EvalEvery)
	}
	switch c.NonFinite {
	case "", Halt, SkipBatch:
		return nil
	}
	return errs.Config("train.Config", "unknown non-finite policy %q", c.NonFinite)
}

// Trainer owns one network/loss/optimizer triple.
//
// A Trainer is not safe for concurrent use; run independent trainers to
// train in parallel.
type Trainer struct {
	net  *nn.Network
	loss nn.Loss
	opt  optim.Optimizer
	cfg  Config
	rng  *rand.Rand
}

// New creates a trainer. opt must have been created over net.Parameters().
func New(net *nn.Network, loss nn.Loss, opt optim.Optimizer, cfg Config) (*Trainer, error) {
	if net == nil || loss == nil || opt == nil {
		return nil, errs.Config("train.New", "network, loss and optimizer are required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.NonFinite == "" {
		cfg.NonFinite = Halt
	}
	return &Trainer{
		net:  net,
		loss: loss,
		opt:  opt,
		cfg:  cfg,
		rng:  rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Network returns the trained network.
func (t *Trainer) Network() *nn.Network { return t.net }

// Optimizer returns the optimizer.
func (t *Trainer) Optimizer() optim.Optimizer { return t.opt }

// TrainBatch runs one training step on a batch and returns its loss.
//
// On error the network's accumulators may hold partial gradients; call
// Network.ZeroGrad before the next step to discard them.
func (t *Trainer) TrainBatch(batch Dataset) (float64, error) {
	pass, err := t.net.Forward(batch.Inputs, ops.Training)
	if err != nil {
		return 0, err
	}
	value, err := t.loss.Forward(pass.Output(), batch.Targets)
	if err != nil {
		return 0, err
	}
	grad, err := t.loss.Backward(pass.Output(), batch.Targets)
	if err != nil {
		return 0, err
	}
	if _, err := pass.Backward(grad); err != nil {
		return 0, err
	}
	if err := t.opt.Update(); err != nil {
		return 0, err
	}
	return value, nil
}

// EpochStats summarizes one epoch.
type EpochStats struct {
	Epoch        int
	TrainLoss    float64 // mean over the epoch's applied batches
	LearningRate float64 // rate at the end of the epoch
	Batches      int
	Skipped      int
	Evaluated    bool
	EvalLoss     float64
	EvalAccuracy float64
	Duration     time.Duration
}

// History records every epoch of a Fit call.
type History struct {
	Epochs []EpochStats
}

// Last returns the most recent epoch, or false if there is none.
func (h *History) Last() (EpochStats, bool) {
	if len(h.Epochs) == 0 {
		return EpochStats{}, false
	}
	return h.Epochs[len(h.Epochs)-1], true
}

// Fit trains for cfg.Epochs over data and, every cfg.EvalEvery epochs,
// evaluates on eval (if non-nil).
//
// It stops early when ctx is done, returning the history so far and the
// context error.
func (t *Trainer) Fit(ctx context.Context, data Dataset, eval *Dataset) (*History, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	if eval != nil {
		if err := eval.Validate(); err != nil {
			return nil, perrors.Wrap(err, "evaluation data")
		}
	}

	history := &History{}
	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return history, err
		}
		stats, err := t.runEpoch(epoch, data)
		if err != nil {
			return history, perrors.Wrapf(err, "epoch %d", epoch)
		}
		if eval != nil && t.cfg.EvalEvery > 0 && epoch%t.cfg.EvalEvery == 0 {
			stats.EvalLoss, stats.EvalAccuracy, err = Evaluate(t.net, t.loss, *eval)
			if err != nil {
				return history, perrors.Wrapf(err, "evaluating epoch %d", epoch)
			}
			stats.Evaluated = true
		}
		t.opt.EndEpoch()
		stats.LearningRate = t.opt.LearningRate()
		history.Epochs = append(history.Epochs, stats)
		logEpoch(stats)
	}
	return history, nil
}

func (t *Trainer) runEpoch(epoch int, data Dataset) (EpochStats, error) {
	start := time.Now()
	stats := EpochStats{Epoch: epoch}

	if t.cfg.Shuffle {
		shuffled, err := Shuffle(data, t.rng)
		if err != nil {
			return stats, err
		}
		data = shuffled
	}
	batches, err := Batches(data, t.cfg.BatchSize)
	if err != nil {
		return stats, err
	}

	total := 0.0
	for i, batch := range batches {
		klog.V(2).Infof("epoch %d batch %d/%d: lr=%g", epoch, i+1, len(batches), t.opt.LearningRate())
		value, err := t.TrainBatch(batch)
		if err != nil {
			if t.cfg.NonFinite == SkipBatch && errors.Is(err, errs.ErrNonFiniteValue) {
				t.net.ZeroGrad()
				stats.Skipped++
				klog.Warningf("epoch %d batch %d: skipped: %v", epoch, i+1, err)
				continue
			}
			return stats, perrors.Wrapf(err, "batch %d", i+1)
		}
		total += value
		stats.Batches++
		klog.V(1).Infof("epoch %d batch %d/%d: loss=%.6g", epoch, i+1, len(batches), value)
	}
	if stats.Batches > 0 {
		stats.TrainLoss = total / float64(stats.Batches)
	}
	stats.Duration = time.Since(start)
	return stats, nil
}

func logEpoch(s EpochStats) {
	msg := fmt.Sprintf("epoch %d: loss=%.6g lr=%.4g batches=%d", s.Epoch, s.TrainLoss, s.LearningRate, s.Batches)
	if s.Skipped > 0 {
		msg += fmt.Sprintf(" skipped=%d", s.Skipped)
	}
	if s.Evaluated {
		msg += fmt.Sprintf(" eval_loss=%.6g eval_accuracy=%.2f%%", s.EvalLoss, 100*s.EvalAccuracy)
	}
	klog.Infof("%s (%s)", msg, s.Duration.Round(time.Millisecond))
}
