package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-doa/irstore"
	"github.com/cwbudde/algo-doa/measure/ir"
)

func newOnsetCmd(a *app) *cobra.Command {
	var simulated bool
	var mode string
	var threshold float64
	cmd := &cobra.Command{
		Use:   "onset",
		Short: "Report where impulse responses first cross a threshold",
		Long: `onset scans every extracted window and summarises the index of the
first sample above the threshold. It is a diagnostic for choosing the
extraction window; it never changes it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if mode != "" {
				a.cfg.Onset.Mode = mode
			}
			if cmd.Flags().Changed("threshold") {
				a.cfg.Onset.Threshold = threshold
			}
			det, err := a.cfg.OnsetDetector()
			if err != nil {
				return err
			}

			var store irstore.Store
			if simulated {
				store, err = a.simulatedStore()
			} else {
				store, err = a.measuredStore()
			}
			if err != nil {
				return err
			}

			rep, err := irstore.OnsetDiagnostic(cmd.Context(), store, det, a.logger)
			if err != nil {
				return err
			}
			printOnset(cmd, det, rep)
			return nil
		},
	}
	cmd.Flags().BoolVar(&simulated, "simulated", false, "inspect the simulated store instead of recordings")
	cmd.Flags().StringVar(&mode, "mode", "", "threshold mode: absolute or peak-relative")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "threshold (absolute amplitude or fraction of the peak)")
	return cmd
}

func printOnset(cmd *cobra.Command, det ir.OnsetDetector, rep irstore.OnsetReport) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "threshold:  %s %g\n", det.Mode, det.Threshold)
	fmt.Fprintf(w, "channels:   %d (%d missing)\n", rep.Channels, rep.Missing)
	fmt.Fprintf(w, "onsets:     %d (%d without crossing)\n", rep.Count, rep.NoCrossing)
	if rep.Levels.Windows > 0 {
		fmt.Fprintf(w, "peaks:      %.4g .. %.4g (%d silent)\n", rep.Levels.PeakMin, rep.Levels.PeakMax, rep.Levels.Silent)
		fmt.Fprintf(w, "crest max:  %.4g\n", rep.Levels.CrestMax)
	}
	if rep.Count > 0 {
		fmt.Fprintf(w, "index:      mean %.2f  std %.2f  min %d  max %d\n", rep.Mean, rep.Std, rep.Min, rep.Max)
	}
}
