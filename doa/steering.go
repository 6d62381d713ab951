package doa

import (
	"fmt"
	"math"
	"math/cmplx"
)

// steering holds far-field steering vectors for the analysed bins:
// vec[b][d][m] = exp(+j*2*pi*f_b*(p_m . u_d)/c), with p_m relative to the
// array centroid and u_d the unit vector of grid bearing d. A source at
// bearing d leads microphone m by (p_m . u_d)/c seconds.
type steering struct {
	params Params
	bins   []int
	vec    [][][]complex128
}

func newSteering(geom ArrayGeometry, p Params) (*steering, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if geom.Channels() < 2 {
		return nil, fmt.Errorf("%w: need at least 2 microphones, got %d", ErrInvalidConfig, geom.Channels())
	}
	bins := p.FrequencyBins()
	if len(bins) == 0 {
		return nil, fmt.Errorf("%w: frequency range %v contains no bins", ErrInvalidConfig, p.FreqRange)
	}

	rel := geom.Relative()
	vec := make([][][]complex128, len(bins))
	for b, k := range bins {
		f := float64(k) * p.SampleRate / float64(p.FFTSize)
		vec[b] = make([][]complex128, p.GridSize)
		for d := range vec[b] {
			theta := 2 * math.Pi * float64(d) / float64(p.GridSize)
			ux, uy := math.Cos(theta), math.Sin(theta)
			a := make([]complex128, len(rel))
			for m, pm := range rel {
				tau := (pm[0]*ux + pm[1]*uy) / p.SoundSpeed
				a[m] = cmplx.Exp(complex(0, 2*math.Pi*f*tau))
			}
			vec[b][d] = a
		}
	}
	return &steering{params: p, bins: bins, vec: vec}, nil
}

func (s *steering) channels() int { return len(s.vec[0][0]) }

func (s *steering) check(X Spectrogram) error {
	return X.Validate(s.channels(), s.params.Bins())
}

// covariance returns the M x M spatial covariance of bin k averaged over
// frames, optionally with every entry phase-normalised first.
func covariance(X Spectrogram, k int, phat bool) [][]complex128 {
	m := len(X)
	frames := len(X[0][k])
	r := make([][]complex128, m)
	for i := range r {
		r[i] = make([]complex128, m)
	}

	col := make([]complex128, m)
	for s := 0; s < frames; s++ {
		for i := 0; i < m; i++ {
			v := X[i][k][s]
			if phat {
				if a := cmplx.Abs(v); a > 1e-14 {
					v /= complex(a, 0)
				} else {
					v = 0
				}
			}
			col[i] = v
		}
		for i := 0; i < m; i++ {
			for j := 0; j < m; j++ {
				r[i][j] += col[i] * cmplx.Conj(col[j])
			}
		}
	}

	scale := complex(1/float64(frames), 0)
	for i := range r {
		for j := range r[i] {
			r[i][j] *= scale
		}
	}
	return r
}

// quadForm returns a^H R a restricted to the off-diagonal terms when
// offDiag is set.
func quadForm(r [][]complex128, a []complex128, offDiag bool) complex128 {
	var sum complex128
	for i := range a {
		for j := range a {
			if offDiag && i == j {
				continue
			}
			sum += cmplx.Conj(a[i]) * r[i][j] * a[j]
		}
	}
	return sum
}

func gridBearings(p Params) []float64 {
	out := make([]float64, p.GridSize)
	for i := range out {
		out[i] = p.GridBearing(i)
	}
	return out
}
