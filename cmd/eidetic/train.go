package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	perrors "github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/eidetic-ml/eidetic/internal/checkpoint"
	"github.com/eidetic-ml/eidetic/internal/config"
	"github.com/eidetic-ml/eidetic/internal/train"
)

func newTrainCmd() *cobra.Command {
	var (
		cfgFlags  configFlags
		dataFlags dataFlags
		savePath  string
	)
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a network on a synthetic dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cfgFlags.load()
			if err != nil {
				return err
			}
			data, eval, err := dataFlags.load()
			if err != nil {
				return err
			}
			res, err := runTraining(cmd.Context(), cfg, data, eval)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), res)

			if savePath != "" {
				meta := &checkpoint.TrainingMeta{
					Epoch: res.run.Optimizer.Epoch(),
					Step:  res.run.Optimizer.Step(),
					Loss:  res.last.TrainLoss,
				}
				opts := checkpoint.Options{
					Precision: cfg.Checkpoint,
					RunID:     res.id,
					Seed:      cfg.Network.Init.Seed,
					Metadata:  map[string]string{"loss": cfg.Loss, "dataset": dataFlags.name},
				}
				if err := checkpoint.Save(savePath, res.run.Network, res.run.Optimizer, meta, opts); err != nil {
					return err
				}
				klog.Infof("saved checkpoint %s", savePath)
			}
			return nil
		},
	}
	cfgFlags.register(cmd)
	dataFlags.register(cmd)
	cmd.Flags().StringVarP(&savePath, "save", "o", "", "write a checkpoint to this path")
	return cmd
}

// result is the outcome of one training run.
type result struct {
	id       uuid.UUID
	seed     uint64
	run      *config.Run
	last     train.EpochStats
	duration time.Duration
}

func runTraining(ctx context.Context, cfg config.Config, data, eval train.Dataset) (*result, error) {
	if data.Inputs.Cols() != cfg.Network.Inputs {
		return nil, perrors.Errorf("dataset has %d features, network expects %d", data.Inputs.Cols(), cfg.Network.Inputs)
	}
	run, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	if data.Targets.Cols() != run.Network.OutputWidth() {
		return nil, perrors.Errorf("dataset has %d targets, network outputs %d", data.Targets.Cols(), run.Network.OutputWidth())
	}

	res := &result{id: uuid.New(), seed: cfg.Train.Seed, run: run}
	klog.Infof("run %s: %s, %d parameters, %d samples", res.id, run.Network, run.Network.NumParameters(), data.Len())
	start := time.Now()
	var evalData *train.Dataset
	if cfg.Train.EvalEvery > 0 {
		evalData = &eval
	}
	history, err := run.Trainer.Fit(ctx, data, evalData)
	if err != nil {
		return nil, perrors.Wrapf(err, "run %s", res.id)
	}
	res.duration = time.Since(start)
	res.last, _ = history.Last()
	if !res.last.Evaluated {
		res.last.EvalLoss, res.last.EvalAccuracy, err = train.Evaluate(run.Network, run.Loss, eval)
		if err != nil {
			return nil, err
		}
		res.last.Evaluated = true
	}
	return res, nil
}

func printSummary(w io.Writer, res *result) {
	table := newTable(w, "RUN", "EPOCHS", "STEPS", "TRAIN LOSS", "EVAL LOSS", "ACCURACY", "LR", "TIME")
	table.Append([]string{
		res.id.String()[:8],
		fmt.Sprint(res.last.Epoch),
		fmt.Sprint(res.run.Optimizer.Step()),
		fmt.Sprintf("%.6g", res.last.TrainLoss),
		fmt.Sprintf("%.6g", res.last.EvalLoss),
		fmt.Sprintf("%.2f%%", 100*res.last.EvalAccuracy),
		fmt.Sprintf("%.4g", res.last.LearningRate),
		res.duration.Round(time.Millisecond).String(),
	})
	table.Render()
}
