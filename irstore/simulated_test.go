package irstore

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-doa/geometry"
	"github.com/cwbudde/algo-doa/roomsim"
)

type countingSimulator struct {
	mu    sync.Mutex
	calls int
	got   []geometry.Point
}

func (s *countingSimulator) Simulate(_ context.Context, _ roomsim.Room, _ geometry.Point, receivers []geometry.Point) ([][]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.got = receivers
	out := make([][]float64, len(receivers))
	for i := range out {
		// Response i holds the value i in 6 samples.
		out[i] = []float64{float64(i), float64(i), float64(i), float64(i), float64(i), float64(i)}
	}
	return out, nil
}

func TestSimulatedStoreCachesPerTransmitter(t *testing.T) {
	layout := smallLayout(t)
	sim := &countingSimulator{}
	store, err := NewSimulatedStore(layout, sim, roomsim.DefaultRoom(), 4, nil)
	require.NoError(t, err)

	ctx := context.Background()
	for rx := 0; rx < layout.NumReceivers(); rx++ {
		for ch := 0; ch < layout.Channels(); ch++ {
			resp, err := store.Fetch(ctx, 0, rx, ch)
			require.NoError(t, err)
			assert.Len(t, resp.Samples, 4, "truncated to configured length")
			assert.Equal(t, float64(rx*layout.Channels()+ch), resp.Samples[0])
			assert.Equal(t, roomsim.DefaultSampleRate, resp.SampleRate)

			want, err := layout.ChannelPosition(0, rx, ch)
			require.NoError(t, err)
			assert.Equal(t, want, resp.Rx)
		}
	}

	assert.Equal(t, 1, sim.calls)
	assert.Len(t, sim.got, layout.NumReceivers()*layout.Channels())
}

func TestSimulatedStorePads(t *testing.T) {
	store, err := NewSimulatedStore(smallLayout(t), &countingSimulator{}, roomsim.DefaultRoom(), 10, nil)
	require.NoError(t, err)

	resp, err := store.Fetch(context.Background(), 0, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{11, 11, 11, 11, 11, 11, 0, 0, 0, 0}, resp.Samples)
}

func TestSimulatedStoreWithImageSource(t *testing.T) {
	room := roomsim.DefaultRoom()
	room.MaxOrder = 1
	store, err := NewSimulatedStore(smallLayout(t), roomsim.ImageSource{}, room, DefaultSimulatedLength, nil)
	require.NoError(t, err)

	resp, err := store.Fetch(context.Background(), 0, 0, 0)
	require.NoError(t, err)
	require.Len(t, resp.Samples, DefaultSimulatedLength)

	// Direct sound from (1, 1.5, 1.5) to the +y channel of the array at (2, 1.5, 1.5).
	d := resp.Tx.Dist(resp.Rx)
	idx := int(d/room.SoundSpeed*float64(room.SampleRate) + 0.5)
	assert.Greater(t, resp.Samples[idx], 0.0)
	for i := 0; i < idx; i++ {
		require.Zero(t, resp.Samples[i], "sample %d precedes the direct sound", i)
	}
}

func TestSimulatedStoreErrors(t *testing.T) {
	layout := smallLayout(t)
	_, err := NewSimulatedStore(layout, nil, roomsim.DefaultRoom(), 10, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = NewSimulatedStore(layout, &countingSimulator{}, roomsim.DefaultRoom(), 0, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	store, err := NewSimulatedStore(layout, &countingSimulator{}, roomsim.DefaultRoom(), 10, nil)
	require.NoError(t, err)
	_, err = store.Fetch(context.Background(), 1, 0, 0)
	assert.ErrorIs(t, err, geometry.ErrOutOfRange)
	_, err = store.Fetch(context.Background(), 0, 0, 4)
	assert.ErrorIs(t, err, geometry.ErrOutOfRange)
}
