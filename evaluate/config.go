package evaluate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cwbudde/algo-doa/assemble"
	"github.com/cwbudde/algo-doa/doa"
)

// Errors returned by the harness.
var (
	ErrInvalidConfig    = errors.New("evaluate: invalid configuration")
	ErrEstimatorFailure = errors.New("evaluate: estimator failure")
)

// FailurePolicy decides what an estimator error does to a run.
type FailurePolicy int

const (
	// FailAbort stops the run at the first estimator error.
	FailAbort FailurePolicy = iota
	// FailRecord records the error for the pair and continues. Failed
	// pairs are excluded from the statistics of that algorithm.
	FailRecord
)

// String returns the configuration name of p.
func (p FailurePolicy) String() string {
	switch p {
	case FailAbort:
		return "abort"
	case FailRecord:
		return "record"
	default:
		return fmt.Sprintf("FailurePolicy(%d)", int(p))
	}
}

// ParseFailurePolicy resolves "abort" (also "") or "record".
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "abort":
		return FailAbort, nil
	case "record":
		return FailRecord, nil
	default:
		return 0, fmt.Errorf("%w: failure policy %q (valid: abort, record)", ErrInvalidConfig, s)
	}
}

// EstimatorFailure is an error raised by one estimator for one pair. It
// matches [ErrEstimatorFailure] with errors.Is.
type EstimatorFailure struct {
	Key       string
	Algorithm string
	Err       error
}

func (e *EstimatorFailure) Error() string {
	return fmt.Sprintf("evaluate: %s on %s: %v", e.Algorithm, e.Key, e.Err)
}

func (e *EstimatorFailure) Is(target error) bool { return target == ErrEstimatorFailure }

func (e *EstimatorFailure) Unwrap() error { return e.Err }

// Config configures a [Harness].
type Config struct {
	Algorithms []string
	Params     doa.Params
	Assemble   assemble.Config

	// Workers is the number of concurrent workers; values below 2 run
	// sequentially.
	Workers int
	// Timeout bounds the estimation of one pair across all algorithms;
	// zero means no limit.
	Timeout time.Duration
	Failure FailurePolicy

	// Registry resolves algorithm names; nil uses doa.DefaultRegistry.
	Registry *doa.Registry
}

func (c Config) registry() *doa.Registry {
	if c.Registry == nil {
		return doa.DefaultRegistry
	}
	return c.Registry
}

// Validate checks c.
func (c Config) Validate() error {
	if len(c.Algorithms) == 0 {
		return fmt.Errorf("%w: no algorithms configured", ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(c.Algorithms))
	for _, name := range c.Algorithms {
		if !c.registry().Has(name) {
			return fmt.Errorf("%w: unknown algorithm %q (known: %v)", ErrInvalidConfig, name, c.registry().Names())
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate algorithm %q", ErrInvalidConfig, name)
		}
		seen[name] = true
	}
	if err := c.Params.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Assemble.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Params.FFTSize != c.Assemble.STFT.FFTSize {
		return fmt.Errorf("%w: estimator fft size %d differs from stft size %d",
			ErrInvalidConfig, c.Params.FFTSize, c.Assemble.STFT.FFTSize)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout %v", ErrInvalidConfig, c.Timeout)
	}
	if c.Failure != FailAbort && c.Failure != FailRecord {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, c.Failure)
	}
	return nil
}
