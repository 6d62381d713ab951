package doa

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// MUSIC is the multiple signal classification estimator. For every analysed
// bin it splits the spatial covariance into signal and noise subspaces and
// evaluates the pseudo-spectrum 1/||En^H a||^2 on the bearing grid. The
// per-bin pseudo-spectra are averaged; with normalisation enabled each is
// first scaled to a peak of one so that no single bin dominates.
type MUSIC struct {
	st        *steering
	normalize bool
	name      string
}

// NewMUSIC returns a MUSIC estimator.
func NewMUSIC(geom ArrayGeometry, p Params) (Estimator, error) {
	return newMUSIC(geom, p, false, AlgoMUSIC)
}

// NewNormMUSIC returns a MUSIC estimator with per-bin normalisation.
func NewNormMUSIC(geom ArrayGeometry, p Params) (Estimator, error) {
	return newMUSIC(geom, p, true, AlgoNormMUSIC)
}

func newMUSIC(geom ArrayGeometry, p Params, normalize bool, name string) (Estimator, error) {
	st, err := newSteering(geom, p)
	if err != nil {
		return nil, err
	}
	if p.NumSources >= geom.Channels() {
		return nil, fmt.Errorf("%w: %d sources leave no noise subspace for %d microphones",
			ErrInvalidConfig, p.NumSources, geom.Channels())
	}
	return &MUSIC{st: st, normalize: normalize, name: name}, nil
}

// Name implements [Estimator].
func (e *MUSIC) Name() string { return e.name }

// Locate implements [Estimator]. The response is a [GridResponse].
func (e *MUSIC) Locate(ctx context.Context, X Spectrogram) (Response, error) {
	if err := e.st.check(X); err != nil {
		return nil, err
	}

	m := e.st.channels()
	noiseDim := 2 * (m - e.st.params.NumSources)
	values := make([]float64, e.st.params.GridSize)
	pk := make([]float64, len(values))
	ar := make([]float64, 2*m)

	for b, k := range e.st.bins {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		noise, err := noiseSubspace(covariance(X, k, false), noiseDim)
		if err != nil {
			return nil, fmt.Errorf("doa: %s bin %d: %w", e.name, k, err)
		}

		for d, a := range e.st.vec[b] {
			for i, v := range a {
				ar[i] = real(v)
				ar[m+i] = imag(v)
			}
			var proj float64
			for _, v := range noise {
				dot := floats.Dot(v, ar)
				proj += dot * dot
			}
			pk[d] = 1 / math.Max(proj, 1e-12)
		}

		if e.normalize {
			if peak := floats.Max(pk); peak > 0 {
				floats.Scale(1/peak, pk)
			}
		}
		floats.Add(values, pk)
	}

	floats.Scale(1/float64(len(e.st.bins)), values)
	return GridResponse{Values: values}, nil
}

// noiseSubspace returns an orthonormal real basis of the noise subspace of
// the Hermitian matrix r. r = A + jB is embedded as the real symmetric
// matrix [[A, -B], [B, A]], whose spectrum is that of r with every
// eigenvalue doubled; the eigenvectors of the dim smallest eigenvalues span
// the embedding of the complex noise subspace, and for a steering vector a
// embedded as [Re a; Im a] the sum of squared projections equals ||En^H a||^2.
func noiseSubspace(r [][]complex128, dim int) ([][]float64, error) {
	m := len(r)
	n := 2 * m
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < m; i++ {
		for j := i; j < m; j++ {
			// Force exact Hermitian symmetry of the averaged estimate.
			a := (real(r[i][j]) + real(r[j][i])) / 2
			b := (imag(r[j][i]) - imag(r[i][j])) / 2
			sym.SetSym(i, j, a)
			sym.SetSym(m+i, m+j, a)
			sym.SetSym(i, m+j, b)
			sym.SetSym(j, m+i, -b)
		}
	}

	var es mat.EigenSym
	if ok := es.Factorize(sym, true); !ok {
		return nil, fmt.Errorf("eigendecomposition did not converge")
	}
	var vecs mat.Dense
	es.VectorsTo(&vecs)

	// Eigenvalues are in ascending order.
	out := make([][]float64, dim)
	for c := 0; c < dim; c++ {
		out[c] = mat.Col(nil, c, &vecs)
	}
	return out, nil
}
