package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/eidetic-ml/eidetic/internal/config"
)

func newSweepCmd() *cobra.Command {
	var (
		cfgFlags  configFlags
		dataFlags dataFlags
		seeds     []uint
		parallel  int
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Train one network per seed in parallel and compare them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			base, err := cfgFlags.load()
			if err != nil {
				return err
			}
			data, eval, err := dataFlags.load()
			if err != nil {
				return err
			}

			cfgs, err := seedConfigs(base, seeds)
			if err != nil {
				return err
			}

			results := make([]*result, len(seeds))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(max(parallel, 1))
			for i, seed := range seeds {
				i, seed := i, seed
				g.Go(func() error {
					res, err := runTraining(ctx, cfgs[i], data, eval)
					if err != nil {
						return err
					}
					klog.Infof("seed %d done: loss=%.6g", seed, res.last.TrainLoss)
					results[i] = res
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			sort.SliceStable(results, func(a, b int) bool {
				return results[a].last.EvalLoss < results[b].last.EvalLoss
			})
			table := newTable(cmd.OutOrStdout(), "SEED", "RUN", "TRAIN LOSS", "EVAL LOSS", "ACCURACY", "TIME")
			for _, res := range results {
				table.Append([]string{
					fmt.Sprint(res.seed),
					res.id.String()[:8],
					fmt.Sprintf("%.6g", res.last.TrainLoss),
					fmt.Sprintf("%.6g", res.last.EvalLoss),
					fmt.Sprintf("%.2f%%", 100*res.last.EvalAccuracy),
					res.duration.Round(time.Millisecond).String(),
				})
			}
			table.Render()
			return nil
		},
	}
	cfgFlags.register(cmd)
	dataFlags.register(cmd)
	cmd.Flags().UintSliceVar(&seeds, "seeds", []uint{1, 2, 3}, "seeds to train with; each sets the init and shuffle seed")
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 2, "maximum number of concurrent runs")
	return cmd
}

// seedConfigs returns one copy of base per seed, with the seed override
// applied.
func seedConfigs(base config.Config, seeds []uint) ([]config.Config, error) {
	cfgs := make([]config.Config, len(seeds))
	for i, seed := range seeds {
		cfgs[i] = base
		if err := cfgs[i].ApplyOverrides(fmt.Sprintf("seed=%d", seed)); err != nil {
			return nil, err
		}
	}
	return cfgs, nil
}
