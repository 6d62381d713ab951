package irstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sbinet/npyio/npz"

	"github.com/cwbudde/algo-doa/geometry"
	"github.com/cwbudde/algo-doa/internal/fsutil"
	"github.com/cwbudde/algo-doa/internal/logging"
)

// Array names inside a channel file.
const (
	arrayIR         = "ir"
	arrayPositionRx = "position_rx"
	arrayPositionTx = "position_tx"
	arrayChannel    = "ch_idx"
)

// SpeakerTableFile is written at the root of every built dataset.
const SpeakerTableFile = "speaker_data.json"

// WriteOptions control how channel files are written.
type WriteOptions struct {
	Positions    PositionMode
	ChannelIndex bool // also store "ch_idx"
}

// Validate checks the options.
func (o WriteOptions) Validate() error {
	if !o.Positions.Valid() {
		return fmt.Errorf("%w: position mode must be centered or exact", ErrInvalidConfig)
	}
	return nil
}

// BuildReport summarises a dataset build or reshape.
type BuildReport struct {
	Arrays     int // arrays with at least one channel written
	Complete   int // arrays with every channel written
	Written    int // channel files written
	Missing    int // channels without data
	MissingKey []string
}

// WriteArrayRecord writes the present channels of rec into dir, one file per
// channel. It returns the number of files written.
func WriteArrayRecord(dir string, rec *ArrayRecord, opts WriteOptions) (int, error) {
	if err := opts.Validate(); err != nil {
		return 0, err
	}
	positions, err := rec.Positions(opts.Positions)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("irstore: creating %s: %w", dir, err)
	}

	written := 0
	for ch, resp := range rec.Channels {
		if resp == nil {
			continue
		}
		if err := writeChannel(filepath.Join(dir, ChannelFileName(ch)), resp, positions[ch], opts.ChannelIndex); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func writeChannel(path string, resp *ImpulseResponse, rx geometry.Point, withIndex bool) (err error) {
	w, err := npz.Create(path)
	if err != nil {
		return fmt.Errorf("irstore: creating %s: %w", path, err)
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("irstore: closing %s: %w", path, cerr)
		}
	}()

	if err := w.Write(arrayIR, resp.Samples); err != nil {
		return fmt.Errorf("irstore: writing %s/%s: %w", path, arrayIR, err)
	}
	if err := w.Write(arrayPositionRx, rx.Slice()); err != nil {
		return fmt.Errorf("irstore: writing %s/%s: %w", path, arrayPositionRx, err)
	}
	if err := w.Write(arrayPositionTx, resp.Tx.Slice()); err != nil {
		return fmt.Errorf("irstore: writing %s/%s: %w", path, arrayPositionTx, err)
	}
	if withIndex {
		if err := w.Write(arrayChannel, []int64{int64(resp.Channel)}); err != nil {
			return fmt.Errorf("irstore: writing %s/%s: %w", path, arrayChannel, err)
		}
	}
	return nil
}

// ReadChannelFile loads one channel file. The channel index is taken from
// "ch_idx" when present, otherwise from the file name.
func ReadChannelFile(path string, sampleRate int) (ImpulseResponse, error) {
	r, err := npz.Open(path)
	if err != nil {
		return ImpulseResponse{}, fmt.Errorf("irstore: opening %s: %w", path, err)
	}
	defer r.Close()

	var (
		samples []float64
		rx, tx  []float64
	)
	if err := r.Read(arrayIR, &samples); err != nil {
		return ImpulseResponse{}, fmt.Errorf("%w: %s: %s: %v", ErrInvalidDataset, path, arrayIR, err)
	}
	if err := r.Read(arrayPositionRx, &rx); err != nil {
		return ImpulseResponse{}, fmt.Errorf("%w: %s: %s: %v", ErrInvalidDataset, path, arrayPositionRx, err)
	}
	if err := r.Read(arrayPositionTx, &tx); err != nil {
		return ImpulseResponse{}, fmt.Errorf("%w: %s: %s: %v", ErrInvalidDataset, path, arrayPositionTx, err)
	}
	rxPos, ok := geometry.PointFromSlice(rx)
	if !ok {
		return ImpulseResponse{}, fmt.Errorf("%w: %s: %s has %d values", ErrInvalidDataset, path, arrayPositionRx, len(rx))
	}
	txPos, ok := geometry.PointFromSlice(tx)
	if !ok {
		return ImpulseResponse{}, fmt.Errorf("%w: %s: %s has %d values", ErrInvalidDataset, path, arrayPositionTx, len(tx))
	}

	ch := -1
	if hasArray(r.Keys(), arrayChannel) {
		var idx []int64
		if err := r.Read(arrayChannel, &idx); err != nil {
			return ImpulseResponse{}, fmt.Errorf("%w: %s: %s: %v", ErrInvalidDataset, path, arrayChannel, err)
		}
		if len(idx) != 1 {
			return ImpulseResponse{}, fmt.Errorf("%w: %s: %s has %d values", ErrInvalidDataset, path, arrayChannel, len(idx))
		}
		ch = int(idx[0])
	} else {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if ch, err = ParseIndexedName(stem, "ir_"); err != nil {
			return ImpulseResponse{}, fmt.Errorf("%w: %v", ErrInvalidDataset, err)
		}
	}

	return ImpulseResponse{
		Samples:    samples,
		SampleRate: sampleRate,
		Tx:         txPos,
		Rx:         rxPos,
		Channel:    ch,
	}, nil
}

func hasArray(keys []string, name string) bool {
	for _, k := range keys {
		if strings.TrimSuffix(k, ".npy") == name {
			return true
		}
	}
	return false
}

// Dataset is an on-disk tree of channel files. It implements [Source].
type Dataset struct {
	Root       string
	Channels   int // expected channels per array
	SampleRate int // sample rate of the stored responses
	Logger     *slog.Logger
}

// Keys discovers every tx_<i>/rx_<j> directory under Root in key order.
func (d Dataset) Keys(ctx context.Context) ([]PairKey, error) {
	txDirs, err := os.ReadDir(d.Root)
	if err != nil {
		return nil, fmt.Errorf("irstore: reading dataset root: %w", err)
	}

	var keys []PairKey
	for _, txDir := range txDirs {
		if !txDir.IsDir() {
			continue
		}
		tx, err := ParseIndexedName(txDir.Name(), "tx_")
		if err != nil {
			continue
		}
		rxDirs, err := os.ReadDir(filepath.Join(d.Root, txDir.Name()))
		if err != nil {
			return nil, fmt.Errorf("irstore: reading %s: %w", txDir.Name(), err)
		}
		for _, rxDir := range rxDirs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if !rxDir.IsDir() {
				continue
			}
			rx, err := ParseIndexedName(rxDir.Name(), "rx_")
			if err != nil {
				continue
			}
			keys = append(keys, PairKey{Tx: tx, Rx: rx})
		}
	}
	slices.SortFunc(keys, PairKey.Compare)
	return keys, nil
}

// ChannelFiles returns the sorted channel file paths of key.
func (d Dataset) ChannelFiles(key PairKey) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(d.Root, key.Dir(), "*.npz"))
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

// Load reads the array of key. Channels that are absent on disk or whose
// file cannot be decoded are nil in the returned record; use
// [ArrayRecord.Check] before processing.
func (d Dataset) Load(ctx context.Context, key PairKey) (*ArrayRecord, error) {
	logger := logging.OrDiscard(d.Logger)
	if d.Channels <= 0 {
		return nil, fmt.Errorf("%w: dataset channel count must be positive", ErrInvalidConfig)
	}
	files, err := d.ChannelFiles(key)
	if err != nil {
		return nil, err
	}

	rec := NewArrayRecord(key, d.Channels)
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resp, err := ReadChannelFile(path, d.SampleRate)
		if err != nil {
			logger.Warn("unreadable channel file", "key", key.String(), "path", path, "err", err)
			continue
		}
		if err := rec.Set(resp); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDataset, path, err)
		}
	}
	return rec, nil
}

// ReadArrayRecord loads one rx directory of a dataset and requires it to be
// complete.
func ReadArrayRecord(ctx context.Context, root string, key PairKey, channels, sampleRate int) (*ArrayRecord, error) {
	rec, err := Dataset{Root: root, Channels: channels, SampleRate: sampleRate}.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := rec.Check(); err != nil {
		return nil, err
	}
	return rec, nil
}

// BuildDataset writes every array of store under root and a speaker table
// at the root. Missing channels are logged and counted, never fatal.
func BuildDataset(ctx context.Context, store Store, root string, opts WriteOptions, logger *slog.Logger) (BuildReport, error) {
	logger = logging.OrDiscard(logger)
	if err := opts.Validate(); err != nil {
		return BuildReport{}, err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return BuildReport{}, fmt.Errorf("irstore: creating %s: %w", root, err)
	}
	if err := fsutil.WriteJSONAtomic(filepath.Join(root, SpeakerTableFile), store.Layout().SpeakerTable()); err != nil {
		return BuildReport{}, err
	}

	var report BuildReport
	for _, key := range LayoutKeys(store.Layout()) {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		rec, err := FetchArray(ctx, store, key, logger)
		if err != nil {
			return report, err
		}
		if err := report.add(filepath.Join(root, key.Dir()), rec, opts); err != nil {
			return report, err
		}
	}

	logger.Info("dataset built", "root", root, "written", report.Written, "missing", report.Missing, "complete_arrays", report.Complete)
	return report, nil
}

// Reshape rewrites the dataset at src into dst with new write options,
// e.g. to replace channel positions by array centers or to add "ch_idx".
// Arrays are written as found; incomplete arrays are logged.
func Reshape(ctx context.Context, src Dataset, dst string, opts WriteOptions) (BuildReport, error) {
	logger := logging.OrDiscard(src.Logger)
	if err := opts.Validate(); err != nil {
		return BuildReport{}, err
	}
	if filepath.Clean(src.Root) == filepath.Clean(dst) {
		return BuildReport{}, fmt.Errorf("%w: reshape destination equals source", ErrInvalidConfig)
	}

	keys, err := src.Keys(ctx)
	if err != nil {
		return BuildReport{}, err
	}

	var report BuildReport
	for _, key := range keys {
		rec, err := src.Load(ctx, key)
		if err != nil {
			return report, err
		}
		if rec.Present() == 0 {
			logger.Warn("no channel files, skipping", "key", key.String())
			continue
		}
		if err := rec.Check(); err != nil {
			logger.Warn("incomplete array", "key", key.String(), "err", err)
		}
		if err := report.add(filepath.Join(dst, key.Dir()), rec, opts); err != nil {
			return report, err
		}
	}

	table := filepath.Join(src.Root, SpeakerTableFile)
	if data, err := os.ReadFile(table); err == nil {
		if err := fsutil.WriteFileAtomic(filepath.Join(dst, SpeakerTableFile), data, 0o644); err != nil {
			return report, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return report, fmt.Errorf("irstore: reading speaker table: %w", err)
	}

	logger.Info("dataset reshaped", "src", src.Root, "dst", dst, "positions", opts.Positions.String(), "written", report.Written)
	return report, nil
}

func (r *BuildReport) add(dir string, rec *ArrayRecord, opts WriteOptions) error {
	missing := rec.Missing()
	r.Missing += len(missing)
	if len(missing) > 0 {
		r.MissingKey = append(r.MissingKey, rec.Key.String())
	}
	if rec.Present() == 0 {
		return nil
	}

	n, err := WriteArrayRecord(dir, rec, opts)
	r.Written += n
	if err != nil {
		return err
	}
	r.Arrays++
	if len(missing) == 0 {
		r.Complete++
	}
	return nil
}
