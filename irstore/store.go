package irstore

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cwbudde/algo-doa/geometry"
)

// Store fetches impulse responses addressed by transmitter sequence index,
// receiver array index and channel.
type Store interface {
	// Layout returns the geometry the store addresses.
	Layout() *geometry.Layout
	// Fetch returns one channel. Absent data is reported with an error
	// matching ErrMissingFile.
	Fetch(ctx context.Context, tx, rx, ch int) (ImpulseResponse, error)
}

// FetchArray fetches every channel of one receiver array. Missing channels
// are logged and left nil in the record; any other error aborts.
func FetchArray(ctx context.Context, s Store, key PairKey, logger *slog.Logger) (*ArrayRecord, error) {
	channels := s.Layout().Channels()
	rec := NewArrayRecord(key, channels)
	for ch := 0; ch < channels; ch++ {
		ir, err := s.Fetch(ctx, key.Tx, key.Rx, ch)
		if errors.Is(err, ErrMissingFile) {
			if logger != nil {
				logger.Warn("missing channel", "key", key.String(), "channel", ch, "err", err)
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := rec.Set(ir); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// LayoutKeys returns every (transmitter, receiver array) pair of layout in
// key order.
func LayoutKeys(layout *geometry.Layout) []PairKey {
	keys := make([]PairKey, 0, layout.NumTransmitters()*layout.NumReceivers())
	for tx := 0; tx < layout.NumTransmitters(); tx++ {
		for rx := 0; rx < layout.NumReceivers(); rx++ {
			keys = append(keys, PairKey{Tx: tx, Rx: rx})
		}
	}
	return keys
}

// Source enumerates and loads array records. It is the input of the
// evaluation harness.
type Source interface {
	Keys(ctx context.Context) ([]PairKey, error)
	Load(ctx context.Context, key PairKey) (*ArrayRecord, error)
}

// StoreSource exposes a Store as a Source over every pair of its layout.
type StoreSource struct {
	Store  Store
	Logger *slog.Logger
}

// Keys returns every pair of the store's layout.
func (s StoreSource) Keys(context.Context) ([]PairKey, error) {
	return LayoutKeys(s.Store.Layout()), nil
}

// Load fetches the array of key.
func (s StoreSource) Load(ctx context.Context, key PairKey) (*ArrayRecord, error) {
	return FetchArray(ctx, s.Store, key, s.Logger)
}
