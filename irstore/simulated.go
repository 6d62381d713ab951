package irstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cwbudde/algo-doa/geometry"
	"github.com/cwbudde/algo-doa/internal/logging"
	"github.com/cwbudde/algo-doa/measure/ir"
	"github.com/cwbudde/algo-doa/roomsim"
)

// DefaultSimulatedLength is the default simulated response length in samples.
const DefaultSimulatedLength = 4800

// Simulator renders one impulse response per receiver position for a
// source in a room.
type Simulator interface {
	Simulate(ctx context.Context, room roomsim.Room, source geometry.Point, receivers []geometry.Point) ([][]float64, error)
}

// SimulatedStore renders impulse responses on demand. The simulator runs
// once per transmitter for all receiver channels at once; the batch is
// cached. SimulatedStore is safe for concurrent use.
type SimulatedStore struct {
	layout *geometry.Layout
	sim    Simulator
	room   roomsim.Room
	length int
	logger *slog.Logger

	mu    sync.Mutex
	cache map[int][][]float64 // tx -> flat [rx*channels+ch] responses
}

// NewSimulatedStore returns a store rendering with sim. Every response is
// truncated or zero-padded to length samples.
func NewSimulatedStore(layout *geometry.Layout, sim Simulator, room roomsim.Room, length int, logger *slog.Logger) (*SimulatedStore, error) {
	if layout == nil || sim == nil {
		return nil, fmt.Errorf("%w: layout and simulator are required", ErrInvalidConfig)
	}
	if err := room.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if length <= 0 {
		return nil, fmt.Errorf("%w: response length must be positive: %d", ErrInvalidConfig, length)
	}
	return &SimulatedStore{
		layout: layout,
		sim:    sim,
		room:   room,
		length: length,
		logger: logging.OrDiscard(logger),
		cache:  make(map[int][][]float64),
	}, nil
}

// Layout returns the store's geometry.
func (s *SimulatedStore) Layout() *geometry.Layout { return s.layout }

// Room returns the simulated room.
func (s *SimulatedStore) Room() roomsim.Room { return s.room }

// Fetch returns the simulated response of channel ch of array rx for
// transmitter tx.
func (s *SimulatedStore) Fetch(ctx context.Context, tx, rx, ch int) (ImpulseResponse, error) {
	src, err := s.layout.Transmitter(tx)
	if err != nil {
		return ImpulseResponse{}, err
	}
	pos, err := s.layout.ChannelPosition(tx, rx, ch)
	if err != nil {
		return ImpulseResponse{}, err
	}

	batch, err := s.batch(ctx, tx)
	if err != nil {
		return ImpulseResponse{}, err
	}

	return ImpulseResponse{
		Samples:    ir.Fit(batch[rx*s.layout.Channels()+ch], s.length),
		SampleRate: s.room.SampleRate,
		Tx:         src.Point,
		Rx:         pos,
		Channel:    ch,
	}, nil
}

func (s *SimulatedStore) batch(ctx context.Context, tx int) ([][]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.cache[tx]; ok {
		return b, nil
	}

	src, err := s.layout.Transmitter(tx)
	if err != nil {
		return nil, err
	}

	var receivers []geometry.Point
	for rx := 0; rx < s.layout.NumReceivers(); rx++ {
		pos, err := s.layout.ChannelPositions(tx, rx)
		if err != nil {
			return nil, err
		}
		receivers = append(receivers, pos...)
	}

	s.logger.Debug("simulating transmitter", "tx", tx, "source", src.Point, "receivers", len(receivers))
	b, err := s.sim.Simulate(ctx, s.room, src.Point, receivers)
	if err != nil {
		return nil, fmt.Errorf("irstore: simulating tx %d: %w", tx, err)
	}
	if len(b) != len(receivers) {
		return nil, fmt.Errorf("irstore: simulator returned %d responses for %d receivers", len(b), len(receivers))
	}

	s.cache[tx] = b
	return b, nil
}
