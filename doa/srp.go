package doa

import "context"

// SRP is the steered response power estimator with phase transform
// (SRP-PHAT). For each bearing it sums the real part of the phase-normalised
// cross-spectra of all microphone pairs after steering, averaged over the
// analysed bins.
type SRP struct {
	st *steering
}

// NewSRP returns an SRP-PHAT estimator.
func NewSRP(geom ArrayGeometry, p Params) (Estimator, error) {
	st, err := newSteering(geom, p)
	if err != nil {
		return nil, err
	}
	return &SRP{st: st}, nil
}

// Name implements [Estimator].
func (*SRP) Name() string { return AlgoSRP }

// Locate implements [Estimator]. The response is a [GridResponse].
func (e *SRP) Locate(ctx context.Context, X Spectrogram) (Response, error) {
	if err := e.st.check(X); err != nil {
		return nil, err
	}

	m := e.st.channels()
	pairs := float64(m * (m - 1))
	values := make([]float64, e.st.params.GridSize)
	for b, k := range e.st.bins {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r := covariance(X, k, true)
		for d, a := range e.st.vec[b] {
			values[d] += real(quadForm(r, a, true)) / pairs
		}
	}

	nb := float64(len(e.st.bins))
	for d := range values {
		values[d] /= nb
	}
	return GridResponse{Values: values}, nil
}
