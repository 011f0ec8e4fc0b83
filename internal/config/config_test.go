package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eidetic-ml/eidetic/internal/checkpoint"
	"github.com/eidetic-ml/eidetic/internal/errs"
	"github.com/eidetic-ml/eidetic/internal/nn"
	"github.com/eidetic-ml/eidetic/internal/ops"
	"github.com/eidetic-ml/eidetic/internal/optim"
	"github.com/eidetic-ml/eidetic/internal/train"
)

const mnistYAML = `
network:
  inputs: 784
  init: {strategy: xavier_uniform, seed: 42}
  layers:
    - {outputs: 300, activation: tanh}
    - {kind: dropout, keep: 0.5}
    - {outputs: 100, activation: relu}
    - {outputs: 10, activation: identity}
loss: softmax_cross_entropy
optimizer:
  momentum: 0.9
  schedule: {kind: fixed, initial: 0.001}
train: {epochs: 10, batch_size: 64, shuffle: true, seed: 42, eval_every: 1}
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(mnistYAML))
	require.NoError(t, err)

	layers := cfg.LayerConfigs()
	require.Len(t, layers, 4)
	assert.Equal(t, nn.DenseConfig(784, 300, ops.NewActivation(ops.Tanh)), layers[0])
	assert.Equal(t, nn.DropoutConfig(300, 0.5), layers[1])
	assert.Equal(t, nn.DenseConfig(300, 100, ops.NewActivation(ops.ReLU)), layers[2])
	assert.Equal(t, 10, layers[3].Outputs)

	run, err := cfg.Build()
	require.NoError(t, err)
	assert.Equal(t, 784, run.Network.InputWidth())
	assert.Equal(t, 10, run.Network.OutputWidth())
	assert.Equal(t, "softmax_cross_entropy", run.Loss.Name())
	assert.Equal(t, 0.9, run.Optimizer.Config().Momentum)
	assert.Equal(t, 0.001, run.Optimizer.LearningRate())
	assert.Equal(t, checkpoint.Float64, cfg.Checkpoint)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"unknown field":  "netwrk: {}",
		"bad activation": "network: {inputs: 2, layers: [{outputs: 1, activation: swish}]}",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}

	invalid := map[string]string{
		"no inputs":    "network: {inputs: 0}",
		"no layers":    "network: {inputs: 2, layers: []}",
		"loss":         "loss: hinge",
		"momentum":     "optimizer: {momentum: 1.5, schedule: {initial: 0.1}}",
		"schedule":     "optimizer: {schedule: {kind: cosine, initial: 0.1}}",
		"epochs":       "train: {epochs: 0, batch_size: 1}",
		"precision":    "checkpoint_precision: int8",
		"unit":         "optimizer: {unit: hour, schedule: {initial: 0.1}}",
		"dropout keep": "network: {inputs: 2, layers: [{outputs: 2}, {kind: dropout, keep: 0}]}",
	}
	for name, doc := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.ErrorIs(t, err, errs.ErrInvalidConfiguration)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(mnistYAML), 0o600))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 784, cfg.Network.Inputs)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMarshal_RoundTrip(t *testing.T) {
	cfg, err := Parse([]byte(mnistYAML))
	require.NoError(t, err)
	data, err := cfg.Marshal()
	require.NoError(t, err)
	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestApplyOverrides(t *testing.T) {
	cfg, err := Parse([]byte(mnistYAML))
	require.NoError(t, err)

	require.NoError(t, cfg.ApplyOverrides("lr=0.05, momentum=0.5,epochs=3,seed=7,keep=0.8,lr_schedule=linear,lr_final=0.01,lr_steps=100,shuffle=false,non_finite=skip"))
	assert.Equal(t, optim.ScheduleConfig{Kind: "linear", Initial: 0.05, Final: 0.01, Steps: 100}, cfg.Optimizer.Schedule)
	assert.Equal(t, 0.5, cfg.Optimizer.Momentum)
	assert.Equal(t, 3, cfg.Train.Epochs)
	assert.False(t, cfg.Train.Shuffle)
	assert.Equal(t, train.SkipBatch, cfg.Train.NonFinite)
	assert.Equal(t, uint64(7), cfg.Train.Seed)
	assert.Equal(t, uint64(7), cfg.Network.Init.Seed)
	assert.Equal(t, 0.8, cfg.Network.Layers[1].Keep)

	require.NoError(t, cfg.ApplyOverrides("init_seed=9,init=he_normal,precision=float16,shuffle"))
	assert.Equal(t, uint64(9), cfg.Network.Init.Seed)
	assert.Equal(t, uint64(7), cfg.Train.Seed)
	assert.Equal(t, nn.HeNormal, cfg.Network.Init.Strategy)
	assert.Equal(t, checkpoint.Float16, cfg.Checkpoint)
	assert.True(t, cfg.Train.Shuffle)
}

func TestApplyOverrides_Errors(t *testing.T) {
	for _, s := range []string{
		"learning_rate=0.1",
		"epochs=ten",
		"shuffle=maybe",
		"momentum=1",
		"loss=hinge",
	} {
		cfg := Default()
		assert.ErrorIs(t, cfg.ApplyOverrides(s), errs.ErrInvalidConfiguration, s)
	}
}

// TestApplyOverrides_Atomic tests that a failing override leaves the
// config unchanged and that overriding a copy never reaches the original.
func TestApplyOverrides_Atomic(t *testing.T) {
	cfg, err := Parse([]byte(mnistYAML))
	require.NoError(t, err)
	before, err := cfg.Marshal()
	require.NoError(t, err)

	for _, s := range []string{"lr=0.5,epochs=ten", "keep=0.2,momentum=1", "keep=0.2,bogus=1"} {
		assert.ErrorIs(t, cfg.ApplyOverrides(s), errs.ErrInvalidConfiguration, s)
		after, err := cfg.Marshal()
		require.NoError(t, err)
		assert.Equal(t, string(before), string(after), s)
	}

	cp := cfg
	require.NoError(t, cp.ApplyOverrides("keep=0.2"))
	assert.Equal(t, 0.2, cp.Network.Layers[1].Keep)
	assert.NotEqual(t, 0.2, cfg.Network.Layers[1].Keep)
}

func TestGetParamOr(t *testing.T) {
	params := ParseParams("a=1,b=2.5,c,d=x=y,e=false")
	assert.Equal(t, Params{"a": "1", "b": "2.5", "c": "", "d": "x=y", "e": "false"}, params)

	i, err := GetParamOr(params, "a", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, i)
	f, err := GetParamOr(params, "b", 0.0)
	require.NoError(t, err)
	assert.Equal(t, 2.5, f)
	c, err := GetParamOr(params, "c", false)
	require.NoError(t, err)
	assert.True(t, c)
	e, err := GetParamOr(params, "e", true)
	require.NoError(t, err)
	assert.False(t, e)
	missing, err := GetParamOr(params, "z", "default")
	require.NoError(t, err)
	assert.Equal(t, "default", missing)

	_, err = GetParamOr(params, "d", 0)
	assert.Error(t, err)

	s, err := PopParamOr(params, "d", "")
	require.NoError(t, err)
	assert.Equal(t, "x=y", s)
	assert.NotContains(t, params, "d")
}
