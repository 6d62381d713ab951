package main

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-doa/evaluate"
	"github.com/cwbudde/algo-doa/evaluate/resultdb"
)

func newEvaluateCmd(a *app) *cobra.Command {
	var (
		root, out, db, label, failure string
		algorithms                    []string
		workers                       int
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Run estimators over a dataset and score them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := &a.cfg.Evaluation
			if len(algorithms) > 0 {
				e.Algorithms = algorithms
			}
			if cmd.Flags().Changed("workers") {
				e.Workers = workers
			}
			if failure != "" {
				e.Failure = failure
			}
			ecfg, err := a.cfg.Evaluate()
			if err != nil {
				return err
			}

			h, err := evaluate.New(ecfg, a.logger)
			if err != nil {
				return err
			}
			report, err := h.Run(cmd.Context(), a.dataset(orDefault(root, a.cfg.Dataset.Root)))
			if err != nil {
				return err
			}

			path := orDefault(out, e.Output)
			if err := report.Save(path); err != nil {
				return err
			}
			a.logger.Info("wrote evaluation output", "path", path)

			if dbPath := orDefault(db, e.Database); dbPath != "" {
				rdb, err := resultdb.Open(dbPath, a.logger)
				if err != nil {
					return err
				}
				defer rdb.Close()
				id, err := rdb.SaveReport(cmd.Context(), label, report)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "run: %s\n", id)
			}

			return printSummaries(cmd.OutOrStdout(), report.Summaries)
		},
	}
	cmd.Flags().StringVar(&root, "dataset", "", "dataset root (default: dataset.root)")
	cmd.Flags().StringVar(&out, "out", "", "JSON output path (default: evaluation.output)")
	cmd.Flags().StringVar(&db, "db", "", "also store the run in this SQLite database")
	cmd.Flags().StringVar(&label, "label", "", "label stored with the run")
	cmd.Flags().StringSliceVar(&algorithms, "algorithms", nil, "algorithms to run (default: evaluation.algorithms)")
	cmd.Flags().IntVar(&workers, "workers", 1, "concurrent workers")
	cmd.Flags().StringVar(&failure, "failure", "", "estimator failure policy: abort or record")
	return cmd
}

func printSummaries(w io.Writer, sums []evaluate.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Algorithm\tEvaluated\tSkipped\tFailed\tMean error [deg]\tStd [deg]\n")
	fmt.Fprintf(tw, "---------\t---------\t-------\t------\t----------------\t---------\n")
	for _, s := range sums {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t%s\n",
			s.Algorithm, s.Evaluated, s.Skipped, s.Failed, formatDeg(s.MeanError), formatDeg(s.StdError))
	}
	return tw.Flush()
}

func formatDeg(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", v)
}

func newRunsCmd(a *app) *cobra.Command {
	var db, del string
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List or delete evaluation runs stored in a result database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := orDefault(db, a.cfg.Evaluation.Database)
			if path == "" {
				return fmt.Errorf("--db is required")
			}
			rdb, err := resultdb.Open(path, a.logger)
			if err != nil {
				return err
			}
			defer rdb.Close()

			ctx := cmd.Context()
			if del != "" {
				return rdb.DeleteRun(ctx, del)
			}

			runs, err := rdb.Runs(ctx)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, r := range runs {
				fmt.Fprintf(w, "%s  %s  %s\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Label)
				sums, err := rdb.Summaries(ctx, r.ID)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				for _, s := range sums {
					fmt.Fprintf(tw, "  %s\t%d evaluated\t%d skipped\t%d failed\t%s\t%s\n",
						s.Algorithm, s.Evaluated, s.Skipped, s.Failed, formatDeg(s.MeanError), formatDeg(s.StdError))
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&db, "db", "", "result database (default: evaluation.database)")
	cmd.Flags().StringVar(&del, "delete", "", "delete the run with this id")
	return cmd
}
