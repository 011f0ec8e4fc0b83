// Package config loads the YAML run configuration used by the eidetic
// command and applies "key=value" overrides to it.
//
// A configuration names everything a run needs, so the same file always
// reproduces the same run:
//
//	network:
//	  inputs: 2
//	  init: {strategy: xavier_uniform, seed: 1}
//	  layers:
//	    - {outputs: 8, activation: tanh}
//	    - {kind: dropout, keep: 0.9}
//	    - {outputs: 1, activation: sigmoid}
//	loss: mse
//	optimizer:
//	  momentum: 0.9
//	  schedule: {kind: linear, initial: 0.1, final: 0.01, steps: 1000}
//	train: {epochs: 1000, batch_size: 4, shuffle: true, seed: 1}
package config

import (
	"bytes"
	"errors"
	"io"
	"os"

	perrors "github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/eidetic-ml/eidetic/internal/checkpoint"
	"github.com/eidetic-ml/eidetic/internal/errs"
	"github.com/eidetic-ml/eidetic/internal/nn"
	"github.com/eidetic-ml/eidetic/internal/ops"
	"github.com/eidetic-ml/eidetic/internal/optim"
	"github.com/eidetic-ml/eidetic/internal/train"
)

// Loss names.
const (
	LossMSE                 = "mse"
	LossSoftmaxCrossEntropy = "softmax_cross_entropy"
)

// Config is a complete run configuration.
type Config struct {
	Network    Network              `yaml:"network"`
	Loss       string               `yaml:"loss"`
	Optimizer  Optimizer            `yaml:"optimizer"`
	Train      train.Config         `yaml:"train"`
	Checkpoint checkpoint.Precision `yaml:"checkpoint_precision,omitempty"`
}

// Network describes the layers. A layer's Inputs may be left zero and is
// then taken from the previous layer (or Network.Inputs for the first).
type Network struct {
	Inputs int              `yaml:"inputs"`
	Init   nn.Init          `yaml:"init"`
	Layers []nn.LayerConfig `yaml:"layers"`
}

// Optimizer configures SGD.
type Optimizer struct {
	Momentum float64              `yaml:"momentum"`
	Schedule optim.ScheduleConfig `yaml:"schedule"`
	Unit     string               `yaml:"unit,omitempty"` // "step" (default) or "epoch"
}

// Default returns a small XOR-sized configuration.
func Default() Config {
	return Config{
		Network: Network{
			Inputs: 2,
			Init:   nn.DefaultInit(1),
			Layers: []nn.LayerConfig{
				{Kind: nn.DenseKind, Outputs: 8, Activation: ops.NewActivation(ops.Tanh)},
				{Kind: nn.DenseKind, Outputs: 1, Activation: ops.NewActivation(ops.Sigmoid)},
			},
		},
		Loss: LossMSE,
		Optimizer: Optimizer{
			Momentum: 0.9,
			Schedule: optim.ScheduleConfig{Kind: "fixed", Initial: 0.1},
		},
		Train:      train.Config{Epochs: 1000, BatchSize: 4, Shuffle: true, Seed: 1},
		Checkpoint: checkpoint.Float64,
	}
}

// Parse decodes YAML over the defaults and validates the result. Unknown
// fields are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, perrors.Wrap(err, "parse configuration")
	}
	return cfg, cfg.Validate()
}

// Load reads and parses the configuration file at path.
func Load(path string) (Config, error) {
	//nolint:gosec // G304: configuration path comes from the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, perrors.Wrap(err, "read configuration")
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, perrors.Wrapf(err, "configuration %s", path)
	}
	return cfg, nil
}

// Marshal encodes the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	return data, perrors.Wrap(err, "marshal configuration")
}

// LayerConfigs returns the layers with every Inputs filled in.
func (c Config) LayerConfigs() []nn.LayerConfig {
	layers := make([]nn.LayerConfig, len(c.Network.Layers))
	width := c.Network.Inputs
	for i, l := range c.Network.Layers {
		if l.Inputs == 0 {
			l.Inputs = width
		}
		if l.Outputs == 0 && l.Kind == nn.DropoutKind {
			l.Outputs = l.Inputs
		}
		if l.Kind == "" {
			l.Kind = nn.DenseKind
		}
		layers[i] = l
		width = l.Outputs
	}
	return layers
}

// Validate checks the configuration without building anything.
func (c Config) Validate() error {
	const op = "config.Validate"
	if c.Network.Inputs <= 0 {
		return errs.Config(op, "network.inputs must be positive, got %d", c.Network.Inputs)
	}
	if len(c.Network.Layers) == 0 {
		return errs.Config(op, "network.layers is empty")
	}
	if err := nn.ValidateConfigs(c.LayerConfigs(), c.Network.Init); err != nil {
		return err
	}
	if _, err := c.BuildLoss(); err != nil {
		return err
	}
	if _, err := c.sgdConfig(); err != nil {
		return err
	}
	if c.Checkpoint != "" && c.Checkpoint.Size() == 0 {
		return errs.Config(op, "unknown checkpoint precision %q", c.Checkpoint)
	}
	return c.Train.Validate()
}

// BuildNetwork constructs the configured network.
func (c Config) BuildNetwork() (*nn.Network, error) {
	return nn.NewNetwork(c.LayerConfigs(), c.Network.Init)
}

// BuildLoss returns the configured loss.
func (c Config) BuildLoss() (nn.Loss, error) {
	switch c.Loss {
	case "", LossMSE:
		return nn.NewMSELoss(), nil
	case LossSoftmaxCrossEntropy, "cross_entropy", "ce":
		return nn.NewSoftmaxCrossEntropyLoss(), nil
	}
	return nil, errs.Config("config.BuildLoss", "unknown loss %q", c.Loss)
}

func (c Config) sgdConfig() (optim.SGDConfig, error) {
	schedule, err := c.Optimizer.Schedule.Build()
	if err != nil {
		return optim.SGDConfig{}, err
	}
	cfg := optim.SGDConfig{Momentum: c.Optimizer.Momentum, Schedule: schedule}
	switch c.Optimizer.Unit {
	case "", "step":
		cfg.Unit = optim.PerStep
	case "epoch":
		cfg.Unit = optim.PerEpoch
	default:
		return optim.SGDConfig{}, errs.Config("config.Optimizer", "unknown schedule unit %q", c.Optimizer.Unit)
	}
	if !(cfg.Momentum >= 0 && cfg.Momentum < 1) {
		return optim.SGDConfig{}, errs.Config("config.Optimizer", "momentum must be in [0, 1), got %g", cfg.Momentum)
	}
	return cfg, nil
}

// BuildOptimizer creates SGD over params.
func (c Config) BuildOptimizer(params []*nn.Parameter) (*optim.SGD, error) {
	cfg, err := c.sgdConfig()
	if err != nil {
		return nil, err
	}
	return optim.NewSGD(params, cfg)
}

// Run bundles the objects built from a configuration.
type Run struct {
	Network   *nn.Network
	Loss      nn.Loss
	Optimizer *optim.SGD
	Trainer   *train.Trainer
}

// Build constructs the network, loss, optimizer and trainer.
func (c Config) Build() (*Run, error) {
	net, err := c.BuildNetwork()
	if err != nil {
		return nil, err
	}
	loss, err := c.BuildLoss()
	if err != nil {
		return nil, err
	}
	opt, err := c.BuildOptimizer(net.Parameters())
	if err != nil {
		return nil, err
	}
	tr, err := train.New(net, loss, opt, c.Train)
	if err != nil {
		return nil, err
	}
	return &Run{Network: net, Loss: loss, Optimizer: opt, Trainer: tr}, nil
}
