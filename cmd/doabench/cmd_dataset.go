package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-doa/irstore"
)

func newSimulateCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate every (speaker, receiver) pair and write a dataset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.simulatedStore()
			if err != nil {
				return err
			}
			opts, err := a.cfg.WriteOptions()
			if err != nil {
				return err
			}
			root := orDefault(out, a.cfg.Dataset.Root)
			rep, err := irstore.BuildDataset(cmd.Context(), store, root, opts, a.logger)
			if err != nil {
				return err
			}
			printBuildReport(cmd.OutOrStdout(), root, rep)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "dataset root (default: dataset.root)")
	return cmd
}

func newConvertCmd(a *app) *cobra.Command {
	var out, measured string
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert measured recordings into a dataset",
		Long: `convert reads <speaker>_<receiver>_<channel>.wav recordings, extracts
the configured window from each and writes a dataset. Arrays with missing
recordings are written partially and reported.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if measured != "" {
				a.cfg.Measured.Dir = measured
			}
			store, err := a.measuredStore()
			if err != nil {
				return err
			}
			opts, err := a.cfg.WriteOptions()
			if err != nil {
				return err
			}
			root := orDefault(out, a.cfg.Dataset.Root)
			rep, err := irstore.BuildDataset(cmd.Context(), store, root, opts, a.logger)
			if err != nil {
				return err
			}
			printBuildReport(cmd.OutOrStdout(), root, rep)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "dataset root (default: dataset.root)")
	cmd.Flags().StringVar(&measured, "measured", "", "recording directory (default: measured.dir)")
	return cmd
}

func newReshapeCmd(a *app) *cobra.Command {
	var src, dst, positions string
	var channelIndex bool
	cmd := &cobra.Command{
		Use:   "reshape",
		Short: "Rewrite a dataset with other position metadata",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if positions != "" {
				a.cfg.Dataset.Positions = positions
			}
			if cmd.Flags().Changed("channel-index") {
				a.cfg.Dataset.ChannelIndex = channelIndex
			}
			opts, err := a.cfg.WriteOptions()
			if err != nil {
				return err
			}
			if dst == "" {
				return fmt.Errorf("--dst is required")
			}
			ds := a.dataset(orDefault(src, a.cfg.Dataset.Root))
			rep, err := irstore.Reshape(cmd.Context(), ds, dst, opts)
			if err != nil {
				return err
			}
			printBuildReport(cmd.OutOrStdout(), dst, rep)
			return nil
		},
	}
	cmd.Flags().StringVar(&src, "src", "", "source dataset (default: dataset.root)")
	cmd.Flags().StringVar(&dst, "dst", "", "destination dataset")
	cmd.Flags().StringVar(&positions, "positions", "", "position mode: centered or exact")
	cmd.Flags().BoolVar(&channelIndex, "channel-index", false, "store the channel index in every file")
	return cmd
}

func (a *app) simulatedStore() (*irstore.SimulatedStore, error) {
	layout, err := a.cfg.Layout()
	if err != nil {
		return nil, err
	}
	return irstore.NewSimulatedStore(layout, a.cfg.Simulator(), a.cfg.Room(), a.cfg.Simulation.Length, a.logger)
}

func (a *app) measuredStore() (*irstore.MeasuredStore, error) {
	layout, err := a.cfg.Layout()
	if err != nil {
		return nil, err
	}
	return irstore.NewMeasuredStore(layout, a.cfg.Measured.Dir, irstore.WavReader{}, a.cfg.Window())
}

func (a *app) dataset(root string) irstore.Dataset {
	return irstore.Dataset{
		Root:       root,
		Channels:   a.cfg.Geometry.Channels,
		SampleRate: a.cfg.Dataset.SampleRate,
		Logger:     a.logger,
	}
}

func printBuildReport(w io.Writer, root string, rep irstore.BuildReport) {
	fmt.Fprintf(w, "dataset:  %s\n", root)
	fmt.Fprintf(w, "arrays:   %d (%d complete)\n", rep.Arrays, rep.Complete)
	fmt.Fprintf(w, "files:    %d written, %d missing\n", rep.Written, rep.Missing)
	for _, k := range rep.MissingKey {
		fmt.Fprintf(w, "  incomplete: %s\n", k)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
