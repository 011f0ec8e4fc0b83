package config

import (
	"slices"
	"sort"
	"strings"

	"github.com/eidetic-ml/eidetic/internal/checkpoint"
	"github.com/eidetic-ml/eidetic/internal/errs"
	"github.com/eidetic-ml/eidetic/internal/nn"
	"github.com/eidetic-ml/eidetic/internal/train"
)

// Override keys accepted by ApplyOverrides.
const (
	KeyLR         = "lr"
	KeyLRFinal    = "lr_final"
	KeyLRSchedule = "lr_schedule"
	KeyLRSteps    = "lr_steps"
	KeyLRFactor   = "lr_factor"
	KeyLRUnit     = "lr_unit"
	KeyMomentum   = "momentum"
	KeyEpochs     = "epochs"
	KeyBatchSize  = "batch_size"
	KeyShuffle    = "shuffle"
	KeySeed       = "seed"
	KeyInit       = "init"
	KeyInitSeed   = "init_seed"
	KeyKeep       = "keep"
	KeyLoss       = "loss"
	KeyEvalEvery  = "eval_every"
	KeyNonFinite  = "non_finite"
	KeyPrecision  = "precision"
)

// ApplyOverrides applies "k=v,..." overrides, such as
// "lr=0.05,momentum=0.9,epochs=200", and revalidates. c is only changed
// when every override parses and the result is valid.
//
// "seed" sets both the trainer and the init seed; "init_seed" only the
// latter. "keep" sets the keep-probability of every dropout layer. Unknown
// keys fail with ErrInvalidConfiguration.
func (c *Config) ApplyOverrides(s string) error {
	next := c.clone()
	params := ParseParams(s)
	if err := next.applyParams(params); err != nil {
		return errs.Config("config.ApplyOverrides", "%v", err)
	}
	if len(params) > 0 {
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return errs.Config("config.ApplyOverrides", "unknown keys %s", strings.Join(keys, ", "))
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// clone copies c so that overriding the copy never writes through to c's
// layer list.
func (c Config) clone() Config {
	c.Network.Layers = slices.Clone(c.Network.Layers)
	return c
}

func (c *Config) applyParams(params Params) error {
	var err error
	sched := &c.Optimizer.Schedule
	if sched.Initial, err = PopParamOr(params, KeyLR, sched.Initial); err != nil {
		return err
	}
	if sched.Final, err = PopParamOr(params, KeyLRFinal, sched.Final); err != nil {
		return err
	}
	if sched.Kind, err = PopParamOr(params, KeyLRSchedule, sched.Kind); err != nil {
		return err
	}
	if sched.Steps, err = PopParamOr(params, KeyLRSteps, sched.Steps); err != nil {
		return err
	}
	if sched.Factor, err = PopParamOr(params, KeyLRFactor, sched.Factor); err != nil {
		return err
	}
	if c.Optimizer.Unit, err = PopParamOr(params, KeyLRUnit, c.Optimizer.Unit); err != nil {
		return err
	}
	if c.Optimizer.Momentum, err = PopParamOr(params, KeyMomentum, c.Optimizer.Momentum); err != nil {
		return err
	}

	if c.Train.Epochs, err = PopParamOr(params, KeyEpochs, c.Train.Epochs); err != nil {
		return err
	}
	if c.Train.BatchSize, err = PopParamOr(params, KeyBatchSize, c.Train.BatchSize); err != nil {
		return err
	}
	if c.Train.Shuffle, err = PopParamOr(params, KeyShuffle, c.Train.Shuffle); err != nil {
		return err
	}
	if c.Train.EvalEvery, err = PopParamOr(params, KeyEvalEvery, c.Train.EvalEvery); err != nil {
		return err
	}
	nonFinite, err := PopParamOr(params, KeyNonFinite, string(c.Train.NonFinite))
	if err != nil {
		return err
	}
	c.Train.NonFinite = train.NonFinitePolicy(nonFinite)

	if _, ok := params[KeySeed]; ok {
		seed, err := PopParamOr(params, KeySeed, c.Train.Seed)
		if err != nil {
			return err
		}
		c.Train.Seed, c.Network.Init.Seed = seed, seed
	}
	if c.Network.Init.Seed, err = PopParamOr(params, KeyInitSeed, c.Network.Init.Seed); err != nil {
		return err
	}
	strategy, err := PopParamOr(params, KeyInit, string(c.Network.Init.Strategy))
	if err != nil {
		return err
	}
	c.Network.Init.Strategy = nn.InitStrategy(strategy)

	if _, ok := params[KeyKeep]; ok {
		keep, err := PopParamOr(params, KeyKeep, 1.0)
		if err != nil {
			return err
		}
		for i := range c.Network.Layers {
			if c.Network.Layers[i].Kind == nn.DropoutKind {
				c.Network.Layers[i].Keep = keep
			}
		}
	}
	if c.Loss, err = PopParamOr(params, KeyLoss, c.Loss); err != nil {
		return err
	}
	precision, err := PopParamOr(params, KeyPrecision, string(c.Checkpoint))
	if err != nil {
		return err
	}
	c.Checkpoint = checkpoint.Precision(precision)
	return nil
}
