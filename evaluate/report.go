package evaluate

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-doa/irstore"
)

// SkippedPair is a pair excluded from a run because its record was
// incomplete.
type SkippedPair struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// Summary aggregates the errors of one algorithm. MeanError and StdError
// (population standard deviation) are NaN when nothing was evaluated.
type Summary struct {
	Algorithm string
	Evaluated int
	Skipped   int
	Failed    int
	MeanError float64
	StdError  float64
}

// Report is the merged result of a run. Results are in pair-key order.
type Report struct {
	Algorithms []string
	Results    map[string][]PairResult
	Failures   []*EstimatorFailure
	Skipped    []SkippedPair
	Summaries  []Summary
}

func (h *Harness) buildReport(outcomes []outcome) *Report {
	r := &Report{
		Algorithms: append([]string(nil), h.cfg.Algorithms...),
		Results:    make(map[string][]PairResult, len(h.cfg.Algorithms)),
	}

	failed := make(map[string]int)
	for _, o := range outcomes {
		if o.skipped != nil {
			r.Skipped = append(r.Skipped, SkippedPair{Key: o.key.String(), Reason: o.skipped.Error()})
			continue
		}
		for _, res := range o.results {
			r.Results[res.Algorithm] = append(r.Results[res.Algorithm], res)
		}
		for _, f := range o.failures {
			failed[f.Algorithm]++
			r.Failures = append(r.Failures, f)
		}
	}

	for _, name := range r.Algorithms {
		errs := make([]float64, 0, len(r.Results[name]))
		for _, res := range r.Results[name] {
			errs = append(errs, res.Error)
		}
		s := Summary{
			Algorithm: name,
			Evaluated: len(errs),
			Skipped:   len(r.Skipped),
			Failed:    failed[name],
			MeanError: math.NaN(),
			StdError:  math.NaN(),
		}
		if len(errs) > 0 {
			s.MeanError, s.StdError = stat.PopMeanStdDev(errs, nil)
		}
		r.Summaries = append(r.Summaries, s)
	}
	return r
}

// Summary returns the summary of algorithm name.
func (r *Report) Summary(name string) (Summary, bool) {
	for _, s := range r.Summaries {
		if s.Algorithm == name {
			return s, true
		}
	}
	return Summary{}, false
}

// SkippedKeys returns the keys of all skipped pairs.
func (r *Report) SkippedKeys() []irstore.PairKey {
	out := make([]irstore.PairKey, 0, len(r.Skipped))
	for _, s := range r.Skipped {
		if k, err := irstore.ParsePairKey(s.Key); err == nil {
			out = append(out, k)
		}
	}
	return out
}
