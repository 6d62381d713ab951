package doa

import (
	"context"
	"math/cmplx"
)

// DirtyImage forms the delay-and-sum "dirty" image from the array
// visibilities: for each bearing it sums the cross-spectra of the microphone
// pairs i < j, back-steered to that bearing, over the analysed bins. The
// result is a complex image with one row and one column per grid bearing.
type DirtyImage struct {
	st       *steering
	bearings []float64
}

// NewDirtyImage returns a dirty-image estimator.
func NewDirtyImage(geom ArrayGeometry, p Params) (Estimator, error) {
	st, err := newSteering(geom, p)
	if err != nil {
		return nil, err
	}
	return &DirtyImage{st: st, bearings: gridBearings(p)}, nil
}

// Name implements [Estimator].
func (*DirtyImage) Name() string { return AlgoDirtyImage }

// Locate implements [Estimator]. The response is a 1 x GridSize row-major
// [ImageResponse].
func (e *DirtyImage) Locate(ctx context.Context, X Spectrogram) (Response, error) {
	if err := e.st.check(X); err != nil {
		return nil, err
	}

	m := e.st.channels()
	pixels := make([]complex128, e.st.params.GridSize)
	for b, k := range e.st.bins {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vis := covariance(X, k, false)
		for d, a := range e.st.vec[b] {
			var sum complex128
			for i := 0; i < m; i++ {
				for j := i + 1; j < m; j++ {
					sum += vis[i][j] * cmplx.Conj(a[i]) * a[j]
				}
			}
			pixels[d] += sum
		}
	}

	scale := complex(1/float64(len(e.st.bins)*m*(m-1)/2), 0)
	for d := range pixels {
		pixels[d] *= scale
	}

	return ImageResponse{
		Pixels:         pixels,
		Rows:           1,
		Cols:           len(pixels),
		Order:          RowMajor,
		ColumnBearings: append([]float64(nil), e.bearings...),
	}, nil
}
