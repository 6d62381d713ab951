package irstore

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-doa/geometry"
)

// smallLayout has one speaker in cell 0 of a 2x2 grid and three 4-channel
// receiver arrays.
func smallLayout(t *testing.T) *geometry.Layout {
	t.Helper()
	layout, err := geometry.NewLayout(geometry.Config{
		Rows:       2,
		Cols:       2,
		Spacing:    1,
		Origin:     geometry.Point{1, 1.5, 1.5},
		Radius:     0.05,
		Channels:   4,
		StartPhase: math.Pi / 2,
		Speakers:   geometry.Explicit{Indices: []int{0}},
	})
	require.NoError(t, err)
	return layout
}

// fakeStore returns a short ramp per channel whose first sample encodes
// (rx, ch), and reports channels listed in missing as absent.
type fakeStore struct {
	layout  *geometry.Layout
	missing map[PairKey][]int
}

func (s fakeStore) Layout() *geometry.Layout { return s.layout }

func (s fakeStore) Fetch(_ context.Context, tx, rx, ch int) (ImpulseResponse, error) {
	key := PairKey{Tx: tx, Rx: rx}
	for _, m := range s.missing[key] {
		if m == ch {
			return ImpulseResponse{}, &MissingDataError{Key: key, Channel: ch}
		}
	}
	src, err := s.layout.Transmitter(tx)
	if err != nil {
		return ImpulseResponse{}, err
	}
	pos, err := s.layout.ChannelPosition(tx, rx, ch)
	if err != nil {
		return ImpulseResponse{}, err
	}
	return ImpulseResponse{
		Samples:    []float64{float64(10*rx + ch), 0.5, 0.25, 0},
		SampleRate: 16000,
		Tx:         src.Point,
		Rx:         pos,
		Channel:    ch,
	}, nil
}
