package doa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-doa/geometry"
)

func TestFrequencyBins(t *testing.T) {
	bins := DefaultParams().FrequencyBins()
	require.NotEmpty(t, bins)
	// 500 Hz -> 5.33 -> 5, 4000 Hz -> 42.67 -> 43 at 48 kHz / 512.
	assert.Equal(t, 5, bins[0])
	assert.Equal(t, 43, bins[len(bins)-1])
	assert.Len(t, bins, 39)

	p := DefaultParams()
	p.FreqRange = [2]float64{0, 1e6}
	bins = p.FrequencyBins()
	assert.Equal(t, 1, bins[0], "DC excluded")
	assert.Equal(t, 256, bins[len(bins)-1], "clamped to Nyquist")
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"sample rate", func(p *Params) { p.SampleRate = 0 }},
		{"fft size", func(p *Params) { p.FFTSize = 1 }},
		{"sound speed", func(p *Params) { p.SoundSpeed = -1 }},
		{"grid", func(p *Params) { p.GridSize = 0 }},
		{"sources", func(p *Params) { p.NumSources = 0 }},
		{"range order", func(p *Params) { p.FreqRange = [2]float64{4000, 500} }},
		{"above nyquist", func(p *Params) { p.FreqRange = [2]float64{30000, 40000} }},
	}
	require.NoError(t, DefaultParams().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			assert.ErrorIs(t, p.Validate(), ErrInvalidConfig)
		})
	}
}

func TestCircularGeometry(t *testing.T) {
	g := CircularGeometry([2]float64{2, 3}, 0.5, 4, math.Pi/2)
	want := [][2]float64{{2, 3.5}, {1.5, 3}, {2, 2.5}, {2.5, 3}}
	for i := range want {
		assert.InDelta(t, want[i][0], g.Mics[i][0], 1e-12)
		assert.InDelta(t, want[i][1], g.Mics[i][1], 1e-12)
	}
	c := g.Center()
	assert.InDelta(t, 2, c[0], 1e-12)
	assert.InDelta(t, 3, c[1], 1e-12)
}

func TestEstimatedBearingGrid(t *testing.T) {
	values := make([]float64, 360)
	values[90] = 1
	values[91] = 0.9
	deg, err := EstimatedBearing(GridResponse{Values: values})
	require.NoError(t, err)
	assert.Equal(t, 90.0, deg)

	fine := make([]float64, 720)
	fine[181] = 1
	deg, err = EstimatedBearing(&GridResponse{Values: fine})
	require.NoError(t, err)
	assert.Equal(t, 90.5, deg)

	_, err = EstimatedBearing(GridResponse{})
	assert.ErrorIs(t, err, ErrEmptyResponse)
	_, err = EstimatedBearing(nil)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestEstimatedBearingImageOrder(t *testing.T) {
	// Flat index 4 holds the peak. Row-major 2x3 puts it at (1, 1);
	// column-major puts it at (0, 2).
	pixels := []complex128{0, 0.1i, 0, 0, 2 - 2i, 0.5}
	bearings := []float64{10, 20, 30}

	tests := []struct {
		order Order
		want  float64
	}{
		{RowMajor, 20},
		{ColumnMajor, 30},
	}
	for _, tt := range tests {
		t.Run(tt.order.String(), func(t *testing.T) {
			deg, err := EstimatedBearing(ImageResponse{Pixels: pixels, Rows: 2, Cols: 3, Order: tt.order, ColumnBearings: bearings})
			require.NoError(t, err)
			assert.Equal(t, tt.want, deg)
		})
	}

	_, err := EstimatedBearing(ImageResponse{Pixels: pixels, Rows: 2, Cols: 2, ColumnBearings: bearings[:2]})
	assert.ErrorIs(t, err, ErrShape)
	_, err = EstimatedBearing(ImageResponse{Pixels: pixels, Rows: 2, Cols: 3, ColumnBearings: bearings[:2]})
	assert.ErrorIs(t, err, ErrShape)
}

func TestEnvelopeJSON(t *testing.T) {
	responses := []Response{
		GridResponse{Values: []float64{0.25, 1, 0.5}},
		ImageResponse{
			Pixels:         []complex128{1 + 2i, -3, 0.5i, 0},
			Rows:           2,
			Cols:           2,
			Order:          ColumnMajor,
			ColumnBearings: []float64{0, 180},
		},
	}
	for _, resp := range responses {
		t.Run(string(resp.Kind()), func(t *testing.T) {
			data, err := json.Marshal(Envelope{Response: resp})
			require.NoError(t, err)
			assert.Contains(t, string(data), fmt.Sprintf(`"kind":%q`, resp.Kind()))

			var back Envelope
			require.NoError(t, json.Unmarshal(data, &back))
			if diff := cmp.Diff(resp, back.Response); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}

	var bad Envelope
	assert.Error(t, json.Unmarshal([]byte(`{"kind":"polar"}`), &bad))
}

func TestEnvelopePointerResponses(t *testing.T) {
	grid := GridResponse{Values: []float64{0.25, 1, 0.5}}
	img := ImageResponse{
		Pixels:         []complex128{0, 2i},
		Rows:           1,
		Cols:           2,
		ColumnBearings: []float64{0, 180},
	}
	tests := []struct {
		name string
		resp Response
		want Response
	}{
		{"grid", &grid, grid},
		{"image", &img, img},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(Envelope{Response: tt.resp})
			require.NoError(t, err)

			var back Envelope
			require.NoError(t, json.Unmarshal(data, &back))
			if diff := cmp.Diff(tt.want, back.Response); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}

	data, err := json.Marshal(Envelope{Response: (*GridResponse)(nil)})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
	_, err = EstimatedBearing((*ImageResponse)(nil))
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{AlgoDirtyImage, AlgoMUSIC, AlgoNormMUSIC, AlgoSRP}, Names())

	_, err := New("FRIDA", testGeometry(), DefaultParams())
	assert.ErrorIs(t, err, ErrUnknown)

	r := NewRegistry()
	r.Register("srp-copy", NewSRP)
	assert.True(t, r.Has("srp-copy"))
	est, err := r.New("srp-copy", testGeometry(), DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, AlgoSRP, est.Name())
}

func TestConstructorErrors(t *testing.T) {
	p := DefaultParams()
	_, err := NewSRP(ArrayGeometry{Mics: [][2]float64{{0, 0}}}, p)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	p.NumSources = testMics
	_, err = NewMUSIC(testGeometry(), p)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	p = DefaultParams()
	p.FreqRange = [2]float64{10, 20}
	_, err = NewDirtyImage(testGeometry(), p)
	assert.ErrorIs(t, err, ErrInvalidConfig, "band narrower than one bin")
}

func TestLocateAccuracy(t *testing.T) {
	bearings := []float64{0, 45, 117, 200, 270, 333}
	for _, algo := range Names() {
		est, err := New(algo, testGeometry(), DefaultParams())
		require.NoError(t, err)
		for _, deg := range bearings {
			t.Run(fmt.Sprintf("%s/%v", algo, deg), func(t *testing.T) {
				resp, err := est.Locate(context.Background(), planeWave(t, deg, 1e-3))
				require.NoError(t, err)
				got, err := EstimatedBearing(resp)
				require.NoError(t, err)
				assert.LessOrEqual(t, geometry.CircularError(got, deg), 3.0, "estimated %v", got)
			})
		}
	}
}

func TestLocateResponseKinds(t *testing.T) {
	X := planeWave(t, 30, 0)
	for _, tt := range []struct {
		algo string
		kind Kind
	}{
		{AlgoSRP, KindGrid},
		{AlgoMUSIC, KindGrid},
		{AlgoNormMUSIC, KindGrid},
		{AlgoDirtyImage, KindImage},
	} {
		est, err := New(tt.algo, testGeometry(), DefaultParams())
		require.NoError(t, err)
		resp, err := est.Locate(context.Background(), X)
		require.NoError(t, err)
		assert.Equal(t, tt.kind, resp.Kind(), tt.algo)

		switch r := resp.(type) {
		case GridResponse:
			assert.Len(t, r.Values, DefaultGridSize)
		case ImageResponse:
			assert.Equal(t, 1, r.Rows)
			assert.Equal(t, DefaultGridSize, r.Cols)
			assert.Len(t, r.Magnitudes(), DefaultGridSize)
		}
	}
}

func TestNormMUSICPeaksAtOne(t *testing.T) {
	est, err := NewNormMUSIC(testGeometry(), DefaultParams())
	require.NoError(t, err)
	resp, err := est.Locate(context.Background(), planeWave(t, 150, 1e-3))
	require.NoError(t, err)

	values := resp.(GridResponse).Values
	for _, v := range values {
		assert.LessOrEqual(t, v, 1+1e-12)
		assert.Greater(t, v, 0.0)
	}
}

func TestLocateShapeMismatch(t *testing.T) {
	est, err := NewSRP(testGeometry(), DefaultParams())
	require.NoError(t, err)

	X := planeWave(t, 10, 0)
	_, err = est.Locate(context.Background(), X[:7])
	assert.ErrorIs(t, err, ErrShape)

	X[3] = X[3][:100]
	_, err = est.Locate(context.Background(), X)
	assert.ErrorIs(t, err, ErrShape)
}

func TestLocateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, algo := range Names() {
		est, err := New(algo, testGeometry(), DefaultParams())
		require.NoError(t, err)
		_, err = est.Locate(ctx, planeWave(t, 10, 0))
		assert.True(t, errors.Is(err, context.Canceled), algo)
	}
}

func TestNoiseSubspace(t *testing.T) {
	a := []complex128{1, cmplx.Exp(0.3i), cmplx.Exp(-1.1i)}
	r := make([][]complex128, 3)
	for i := range r {
		r[i] = make([]complex128, 3)
		for j := range r[i] {
			r[i][j] = a[i] * cmplx.Conj(a[j])
		}
		r[i][i] += 0.01
	}

	noise, err := noiseSubspace(r, 4)
	require.NoError(t, err)
	require.Len(t, noise, 4)

	proj := func(v []complex128) float64 {
		ar := make([]float64, 6)
		for i, x := range v {
			ar[i], ar[3+i] = real(x), imag(x)
		}
		var sum float64
		for _, e := range noise {
			var dot float64
			for i := range e {
				dot += e[i] * ar[i]
			}
			sum += dot * dot
		}
		return sum
	}

	assert.InDelta(t, 0, proj(a), 1e-9, "signal vector lies outside the noise subspace")
	// b is orthogonal to a, so it lies entirely in the noise subspace.
	b := []complex128{a[0], -a[1], 0}
	assert.InDelta(t, 2, proj(b), 1e-9)
}
