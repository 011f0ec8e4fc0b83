package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/eidetic-ml/eidetic/internal/config"
	"github.com/eidetic-ml/eidetic/internal/datasets"
	"github.com/eidetic-ml/eidetic/internal/train"
)

// NewCLI creates the root command with all subcommands.
func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "eidetic",
		Short:         "Train dense feed-forward networks",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	klogFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(klogFlags)
	rootCmd.PersistentFlags().AddGoFlagSet(klogFlags)

	rootCmd.AddCommand(
		newTrainCmd(),
		newSweepCmd(),
		newEvalCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "eidetic %s\n", version)
		},
	}
}

// dataFlags selects a synthetic dataset.
type dataFlags struct {
	name    string
	samples int
	seed    uint64
	holdout int
}

func (d *dataFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&d.name, "dataset", "xor", fmt.Sprintf("synthetic dataset, one of %v", datasets.Names()))
	cmd.Flags().IntVar(&d.samples, "samples", 256, "number of samples to generate")
	cmd.Flags().Uint64Var(&d.seed, "data-seed", 0, "seed for dataset generation")
	cmd.Flags().IntVar(&d.holdout, "holdout", 0, "samples held out for evaluation (0 evaluates on the training data)")
}

// load returns the training data and the evaluation data.
func (d *dataFlags) load() (train.Dataset, train.Dataset, error) {
	data, err := datasets.Generate(d.name, d.samples, d.seed)
	if err != nil {
		return train.Dataset{}, train.Dataset{}, err
	}
	if d.holdout == 0 {
		return data, data, nil
	}
	return train.Split(data, data.Len()-d.holdout)
}

// configFlags locates the run configuration.
type configFlags struct {
	path      string
	overrides string
}

func (c *configFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&c.path, "config", "c", "", "YAML run configuration (default: built-in XOR network)")
	cmd.Flags().StringVar(&c.overrides, "set", "", `overrides such as "lr=0.05,momentum=0.9,epochs=200"`)
}

func (c *configFlags) load() (config.Config, error) {
	cfg := config.Default()
	if c.path != "" {
		var err error
		if cfg, err = config.Load(c.path); err != nil {
			return config.Config{}, err
		}
	}
	if c.overrides != "" {
		if err := cfg.ApplyOverrides(c.overrides); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	return table
}
