package evaluate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-doa/assemble"
	"github.com/cwbudde/algo-doa/doa"
	"github.com/cwbudde/algo-doa/geometry"
	"github.com/cwbudde/algo-doa/internal/logging"
	"github.com/cwbudde/algo-doa/irstore"
)

// Harness evaluates estimators over a record source.
type Harness struct {
	cfg    Config
	logger *slog.Logger
}

// New returns a harness for cfg. A nil logger discards output.
func New(cfg Config, logger *slog.Logger) (*Harness, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Algorithms = slices.Clone(cfg.Algorithms)
	return &Harness{cfg: cfg, logger: logging.OrDiscard(logger)}, nil
}

// Config returns the harness configuration.
func (h *Harness) Config() Config { return h.cfg }

// PairResult is the outcome of one algorithm on one pair.
type PairResult struct {
	Key         irstore.PairKey
	Algorithm   string
	TrueBearing float64
	Estimated   float64
	Error       float64
	Response    doa.Response
}

type outcome struct {
	key      irstore.PairKey
	skipped  error
	results  []PairResult
	failures []*EstimatorFailure
}

// worker owns everything that is not safe for concurrent use.
type worker struct {
	h          *Harness
	asm        *assemble.Assembler
	estimators []doa.Estimator // in cfg.Algorithms order
}

// newWorker resolves every configured estimator once. Estimators only use
// the array shape relative to its centroid, so the nominal array around the
// origin serves every pair.
func (h *Harness) newWorker() (*worker, error) {
	asm, err := assemble.New(h.cfg.Assemble)
	if err != nil {
		return nil, err
	}
	ac := h.cfg.Assemble
	geom := doa.CircularGeometry([2]float64{}, ac.Radius, ac.Channels, ac.StartPhase)

	w := &worker{h: h, asm: asm}
	for _, name := range h.cfg.Algorithms {
		est, err := h.cfg.registry().New(name, geom, h.cfg.Params)
		if err != nil {
			return nil, fmt.Errorf("evaluate: constructing %s: %w", name, err)
		}
		w.estimators = append(w.estimators, est)
	}
	return w, nil
}

func skippable(err error) bool {
	return errors.Is(err, irstore.ErrIncompleteArray) || errors.Is(err, irstore.ErrMissingFile)
}

func (w *worker) process(ctx context.Context, src irstore.Source, key irstore.PairKey) (outcome, error) {
	out := outcome{key: key}
	logger := w.h.logger

	rec, err := src.Load(ctx, key)
	if err == nil {
		err = rec.Check()
	}
	if skippable(err) {
		logger.Warn("skipping pair", "key", key.String(), "err", err)
		out.skipped = err
		return out, nil
	}
	if err != nil {
		return out, fmt.Errorf("evaluate: loading %s: %w", key, err)
	}

	sig, err := w.asm.Assemble(rec)
	if skippable(err) {
		logger.Warn("skipping pair", "key", key.String(), "err", err)
		out.skipped = err
		return out, nil
	}
	if err != nil {
		return out, err
	}
	if sig.SampleRate != 0 && float64(sig.SampleRate) != w.h.cfg.Params.SampleRate {
		return out, fmt.Errorf("%w: %s recorded at %d Hz, estimators configured for %v Hz",
			ErrInvalidConfig, key, sig.SampleRate, w.h.cfg.Params.SampleRate)
	}

	truth := sig.TrueBearing()

	pctx := ctx
	if w.h.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(ctx, w.h.cfg.Timeout)
		defer cancel()
	}

	for i, est := range w.estimators {
		name := w.h.cfg.Algorithms[i]
		resp, err := est.Locate(pctx, sig.Spectrum)
		var deg float64
		if err == nil {
			deg, err = doa.EstimatedBearing(resp)
		}
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			f := &EstimatorFailure{Key: key.String(), Algorithm: name, Err: err}
			if w.h.cfg.Failure == FailAbort {
				return out, f
			}
			logger.Warn("estimator failed", "key", key.String(), "algorithm", name, "err", err)
			out.failures = append(out.failures, f)
			continue
		}

		r := PairResult{
			Key:         key,
			Algorithm:   name,
			TrueBearing: truth,
			Estimated:   deg,
			Error:       geometry.CircularError(deg, truth),
			Response:    resp,
		}
		logger.Debug("estimated", "key", key.String(), "algorithm", name,
			"true", r.TrueBearing, "estimated", r.Estimated, "error", r.Error)
		out.results = append(out.results, r)
	}
	return out, nil
}

// Run evaluates every pair of src and returns the merged report.
func (h *Harness) Run(ctx context.Context, src irstore.Source) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	keys, err := src.Keys(ctx)
	if err != nil {
		return nil, err
	}
	keys = slices.Clone(keys)
	slices.SortFunc(keys, irstore.PairKey.Compare)
	h.logger.Info("evaluation started", "pairs", len(keys), "algorithms", h.cfg.Algorithms, "workers", max(h.cfg.Workers, 1))

	var outcomes []outcome
	if h.cfg.Workers <= 1 {
		outcomes, err = h.runSequential(ctx, src, keys)
	} else {
		outcomes, err = h.runPool(ctx, src, keys)
	}
	if err != nil {
		return nil, err
	}

	slices.SortFunc(outcomes, func(a, b outcome) int { return a.key.Compare(b.key) })
	report := h.buildReport(outcomes)
	for _, s := range report.Summaries {
		h.logger.Info("evaluation summary", "algorithm", s.Algorithm,
			"evaluated", s.Evaluated, "skipped", s.Skipped, "failed", s.Failed,
			"mean_error", s.MeanError, "std_error", s.StdError)
	}
	return report, nil
}

func (h *Harness) runSequential(ctx context.Context, src irstore.Source, keys []irstore.PairKey) ([]outcome, error) {
	w, err := h.newWorker()
	if err != nil {
		return nil, err
	}
	out := make([]outcome, 0, len(keys))
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		o, err := w.process(ctx, src, key)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (h *Harness) runPool(ctx context.Context, src irstore.Source, keys []irstore.PairKey) ([]outcome, error) {
	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan irstore.PairKey)
	partials := make([][]outcome, h.cfg.Workers)

	g.Go(func() error {
		defer close(jobs)
		for _, key := range keys {
			select {
			case jobs <- key:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for i := range partials {
		g.Go(func() error {
			w, err := h.newWorker()
			if err != nil {
				return err
			}
			for key := range jobs {
				if err := gctx.Err(); err != nil {
					return err
				}
				o, err := w.process(gctx, src, key)
				if err != nil {
					return err
				}
				partials[i] = append(partials[i], o)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []outcome
	for _, p := range partials {
		out = append(out, p...)
	}
	return out, nil
}
