package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-doa/split"
)

func newSplitCmd(a *app) *cobra.Command {
	var (
		root, out string
		ratio     float64
		seed      int64
	)
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a dataset into train and test arrays",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := &a.cfg.Split
			if cmd.Flags().Changed("ratio") {
				s.Ratio = ratio
			}
			if cmd.Flags().Changed("seed") {
				s.Seed = seed
			}
			files, asg, err := split.Dataset(orDefault(root, a.cfg.Dataset.Root), s.Ratio, s.Seed)
			if err != nil {
				return err
			}
			path := orDefault(out, s.Output)
			if err := files.Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "train: %d arrays, %d files\ntest:  %d arrays, %d files\nwrote %s\n",
				len(asg.Train), len(files.Train), len(asg.Test), len(files.Test), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&root, "dataset", "", "dataset root (default: dataset.root)")
	cmd.Flags().StringVar(&out, "out", "", "output JSON (default: split.output)")
	cmd.Flags().Float64Var(&ratio, "ratio", 0.2, "fraction of arrays in the test set")
	cmd.Flags().Int64Var(&seed, "seed", 42, "shuffle seed")
	return cmd
}
