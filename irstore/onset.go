package irstore

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cwbudde/algo-doa/internal/logging"
	"github.com/cwbudde/algo-doa/measure/ir"
)

// OnsetReport is the result of [OnsetDiagnostic].
type OnsetReport struct {
	ir.OnsetStats
	Channels int // channels inspected, including missing ones
	Missing  int // channels without a recording

	// Levels spans the window peaks of every present channel.
	Levels ir.LevelRange
}

// OnsetDiagnostic scans every channel of store, finds the first threshold
// crossing inside each extracted window and summarises the onset indices.
// It only reports; the store's window is left unchanged.
func OnsetDiagnostic(ctx context.Context, store Store, det ir.OnsetDetector, logger *slog.Logger) (OnsetReport, error) {
	logger = logging.OrDiscard(logger)
	if err := det.Validate(); err != nil {
		return OnsetReport{}, err
	}

	var (
		report    OnsetReport
		collector ir.OnsetCollector
	)
	layout := store.Layout()
	for _, key := range LayoutKeys(layout) {
		for ch := 0; ch < layout.Channels(); ch++ {
			report.Channels++
			resp, err := store.Fetch(ctx, key.Tx, key.Rx, ch)
			if errors.Is(err, ErrMissingFile) {
				report.Missing++
				logger.Warn("missing recording", "key", key.String(), "channel", ch, "err", err)
				continue
			}
			if err != nil {
				return report, err
			}
			collector.Observe(det.Find(resp.Samples))
			report.Levels.Observe(resp.Samples)
		}
	}

	report.OnsetStats = collector.Stats()
	logger.Info("onset diagnostic",
		"samples", report.Count,
		"mean", report.Mean,
		"std", report.Std,
		"no_crossing", report.NoCrossing,
		"peak_min", report.Levels.PeakMin,
		"peak_max", report.Levels.PeakMax,
		"crest_max", report.Levels.CrestMax,
		"missing", report.Missing)
	return report, nil
}
