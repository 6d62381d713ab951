// Command doabench builds impulse-response datasets for a grid of circular
// microphone arrays and scores direction-of-arrival estimators on them.
//
// Usage:
//
//	doabench [--config file] [--log-level level] <command> [flags]
//
// Examples:
//
//	doabench simulate --out data/sim
//	doabench convert --measured recordings --out data/measured
//	doabench evaluate --dataset data/sim --out doa.json --db results.db
//	doabench split --dataset data/sim --ratio 0.2 --seed 42
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-doa/internal/config"
	"github.com/cwbudde/algo-doa/internal/logging"
)

// app carries the state shared by all subcommands.
type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

func (a *app) load(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		if !logging.ValidLevel(a.logLevel) {
			return fmt.Errorf("invalid --log-level %q", a.logLevel)
		}
		cfg.Logging.Level = a.logLevel
	}
	a.cfg = cfg
	a.logger = logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "doabench",
		Short: "Direction-of-arrival benchmark toolkit",
		Long: `doabench builds impulse-response datasets for a grid of circular
microphone arrays, from a room simulation or from measured recordings,
and evaluates direction-of-arrival estimators against the known geometry.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	root.AddCommand(
		newSimulateCmd(a),
		newConvertCmd(a),
		newReshapeCmd(a),
		newOnsetCmd(a),
		newEvaluateCmd(a),
		newRunsCmd(a),
		newSplitCmd(a),
		newAlgorithmsCmd(a),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
