package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eidetic-ml/eidetic/internal/checkpoint"
	"github.com/eidetic-ml/eidetic/internal/config"
	"github.com/eidetic-ml/eidetic/internal/train"
)

func newEvalCmd() *cobra.Command {
	var (
		dataFlags dataFlags
		path      string
		lossName  string
	)
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate a saved checkpoint on a synthetic dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := checkpoint.Load(path)
			if err != nil {
				return err
			}
			net, err := f.Network()
			if err != nil {
				return err
			}
			if lossName == "" {
				lossName = f.Header.Metadata["loss"]
			}
			loss, err := config.Config{Loss: lossName}.BuildLoss()
			if err != nil {
				return err
			}
			_, eval, err := dataFlags.load()
			if err != nil {
				return err
			}
			value, accuracy, err := train.Evaluate(net, loss, eval)
			if err != nil {
				return err
			}

			table := newTable(cmd.OutOrStdout(), "RUN", "CREATED", "NETWORK", "LOSS", "ACCURACY")
			table.Append([]string{
				f.Header.RunID,
				f.Header.CreatedAt.Format("2006-01-02 15:04:05"),
				net.String(),
				fmt.Sprintf("%s=%.6g", loss.Name(), value),
				fmt.Sprintf("%.2f%%", 100*accuracy),
			})
			table.Render()
			return nil
		},
	}
	dataFlags.register(cmd)
	cmd.Flags().StringVar(&path, "checkpoint", "", "checkpoint to evaluate")
	cmd.Flags().StringVar(&lossName, "loss", "", "loss to report (default: the loss recorded at training time)")
	_ = cmd.MarkFlagRequired("checkpoint")
	return cmd
}
