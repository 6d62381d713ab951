package irstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-doa/geometry"
	"github.com/cwbudde/algo-doa/measure/ir"
)

// Default measured-window parameters.
const (
	DefaultWindowStart  = 9600
	DefaultWindowLength = 1600
)

// AudioReader loads a mono recording.
type AudioReader interface {
	Read(path string) (samples []float64, sampleRate int, err error)
}

// Window is the extraction window applied to every recording.
type Window struct {
	Start  int
	Length int
}

// DefaultWindow returns the window [9600, 11200).
func DefaultWindow() Window {
	return Window{Start: DefaultWindowStart, Length: DefaultWindowLength}
}

// Validate checks the window bounds.
func (w Window) Validate() error {
	if w.Start < 0 || w.Length <= 0 {
		return fmt.Errorf("%w: window start=%d length=%d", ErrInvalidConfig, w.Start, w.Length)
	}
	return nil
}

// MeasuredFileName returns the recording name for a speaker file id,
// receiver file id and zero-based channel: "%02d_%02d_%d.wav" with a
// one-based channel number.
func MeasuredFileName(speakerID, receiverID, ch int) string {
	return fmt.Sprintf("%02d_%02d_%d.wav", speakerID, receiverID, ch+1)
}

// MeasuredStore reads windows out of recorded impulse responses in a
// directory. MeasuredStore is safe for concurrent use when its AudioReader is.
type MeasuredStore struct {
	layout *geometry.Layout
	dir    string
	reader AudioReader
	window Window
}

// NewMeasuredStore returns a store reading recordings from dir.
func NewMeasuredStore(layout *geometry.Layout, dir string, reader AudioReader, window Window) (*MeasuredStore, error) {
	if layout == nil || reader == nil {
		return nil, fmt.Errorf("%w: layout and reader are required", ErrInvalidConfig)
	}
	if err := window.Validate(); err != nil {
		return nil, err
	}
	return &MeasuredStore{layout: layout, dir: dir, reader: reader, window: window}, nil
}

// Layout returns the store's geometry.
func (s *MeasuredStore) Layout() *geometry.Layout { return s.layout }

// Window returns the extraction window.
func (s *MeasuredStore) Window() Window { return s.window }

// Path returns the recording path of channel ch of array rx for transmitter tx.
func (s *MeasuredStore) Path(tx, rx, ch int) (string, error) {
	if ch < 0 || ch >= s.layout.Channels() {
		return "", fmt.Errorf("%w: channel %d not in [0,%d)", geometry.ErrOutOfRange, ch, s.layout.Channels())
	}
	spk, err := s.layout.SpeakerFileID(tx)
	if err != nil {
		return "", err
	}
	rcv, err := s.layout.ReceiverFileID(tx, rx)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, MeasuredFileName(spk, rcv, ch)), nil
}

// Fetch reads and windows one recording. An absent file yields a
// [*MissingDataError].
func (s *MeasuredStore) Fetch(ctx context.Context, tx, rx, ch int) (ImpulseResponse, error) {
	if err := ctx.Err(); err != nil {
		return ImpulseResponse{}, err
	}

	path, err := s.Path(tx, rx, ch)
	if err != nil {
		return ImpulseResponse{}, err
	}
	src, err := s.layout.Transmitter(tx)
	if err != nil {
		return ImpulseResponse{}, err
	}
	pos, err := s.layout.ChannelPosition(tx, rx, ch)
	if err != nil {
		return ImpulseResponse{}, err
	}

	key := PairKey{Tx: tx, Rx: rx}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return ImpulseResponse{}, &MissingDataError{Key: key, Channel: ch, Path: path, Err: err}
	}

	// A truncated or corrupt recording counts as missing.
	samples, rate, err := s.reader.Read(path)
	if err != nil {
		return ImpulseResponse{}, &MissingDataError{Key: key, Channel: ch, Path: path, Err: err}
	}

	win, err := ir.Extract(samples, s.window.Start, s.window.Length)
	if err != nil {
		return ImpulseResponse{}, err
	}

	return ImpulseResponse{
		Samples:     win,
		SampleRate:  rate,
		WindowStart: s.window.Start,
		Tx:          src.Point,
		Rx:          pos,
		Channel:     ch,
	}, nil
}
