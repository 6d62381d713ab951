package geometry

import "fmt"

// Layout is the resolved geometry of one configuration: which cells hold
// transmitters, which cells hold receiver arrays for each transmitter, and
// where every channel sits. A Layout is immutable.
type Layout struct {
	cfg       Config
	grid      []GridPosition
	speakers  []int   // tx sequence index -> grid index
	receivers [][]int // tx sequence index -> receiver grid indices, ascending
	offsets   []Point // channel offsets relative to an array center
}

// NewLayout validates cfg and resolves its layout. A nil speaker policy
// selects [CornersAndCenter].
func NewLayout(cfg Config) (*Layout, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Speakers == nil {
		cfg.Speakers = CornersAndCenter{}
	}

	speakers, err := cfg.Speakers.Select(cfg.Rows, cfg.Cols)
	if err != nil {
		return nil, err
	}

	offsets, err := CircularOffsets(cfg.Radius, cfg.Channels, cfg.StartPhase)
	if err != nil {
		return nil, err
	}

	n := cfg.Rows * cfg.Cols
	receivers := make([][]int, len(speakers))
	for tx, spk := range speakers {
		rx := make([]int, 0, n-1)
		for i := 0; i < n; i++ {
			if i != spk {
				rx = append(rx, i)
			}
		}
		receivers[tx] = rx
	}

	return &Layout{
		cfg:       cfg,
		grid:      GenerateGrid(cfg.Rows, cfg.Cols, cfg.Spacing, cfg.Origin),
		speakers:  speakers,
		receivers: receivers,
		offsets:   offsets,
	}, nil
}

// Config returns the configuration the layout was built from.
func (l *Layout) Config() Config { return l.cfg }

// Channels returns the number of channels per array.
func (l *Layout) Channels() int { return l.cfg.Channels }

// Grid returns a copy of all grid cells in row-major order.
func (l *Layout) Grid() []GridPosition {
	return append([]GridPosition(nil), l.grid...)
}

// Cell returns the grid cell with the given index.
func (l *Layout) Cell(idx int) (GridPosition, error) {
	if idx < 0 || idx >= len(l.grid) {
		return GridPosition{}, fmt.Errorf("%w: grid index %d not in [0,%d)", ErrOutOfRange, idx, len(l.grid))
	}
	return l.grid[idx], nil
}

// NumTransmitters returns the number of speaker slots.
func (l *Layout) NumTransmitters() int { return len(l.speakers) }

// SpeakerIndices returns the grid index of every speaker slot in
// transmitter sequence order.
func (l *Layout) SpeakerIndices() []int {
	return append([]int(nil), l.speakers...)
}

// Transmitter returns the grid cell of transmitter tx.
func (l *Layout) Transmitter(tx int) (GridPosition, error) {
	if tx < 0 || tx >= len(l.speakers) {
		return GridPosition{}, fmt.Errorf("%w: transmitter %d not in [0,%d)", ErrOutOfRange, tx, len(l.speakers))
	}
	return l.grid[l.speakers[tx]], nil
}

// NumReceivers returns the number of receiver arrays for each transmitter.
func (l *Layout) NumReceivers() int { return len(l.grid) - 1 }

// ReceiverCell returns the grid cell hosting receiver array rx of transmitter tx.
func (l *Layout) ReceiverCell(tx, rx int) (GridPosition, error) {
	if tx < 0 || tx >= len(l.receivers) {
		return GridPosition{}, fmt.Errorf("%w: transmitter %d not in [0,%d)", ErrOutOfRange, tx, len(l.receivers))
	}
	rxs := l.receivers[tx]
	if rx < 0 || rx >= len(rxs) {
		return GridPosition{}, fmt.Errorf("%w: receiver %d not in [0,%d)", ErrOutOfRange, rx, len(rxs))
	}
	return l.grid[rxs[rx]], nil
}

// ReceiverCenter returns the center of receiver array rx of transmitter tx.
func (l *Layout) ReceiverCenter(tx, rx int) (Point, error) {
	cell, err := l.ReceiverCell(tx, rx)
	if err != nil {
		return Point{}, err
	}
	return cell.Point, nil
}

// ChannelPosition returns the absolute position of channel ch of receiver
// array rx of transmitter tx.
func (l *Layout) ChannelPosition(tx, rx, ch int) (Point, error) {
	if ch < 0 || ch >= len(l.offsets) {
		return Point{}, fmt.Errorf("%w: channel %d not in [0,%d)", ErrOutOfRange, ch, len(l.offsets))
	}
	center, err := l.ReceiverCenter(tx, rx)
	if err != nil {
		return Point{}, err
	}
	return center.Add(l.offsets[ch]), nil
}

// ChannelPositions returns the positions of all channels of one array.
func (l *Layout) ChannelPositions(tx, rx int) ([]Point, error) {
	center, err := l.ReceiverCenter(tx, rx)
	if err != nil {
		return nil, err
	}
	out := make([]Point, len(l.offsets))
	for k, off := range l.offsets {
		out[k] = center.Add(off)
	}
	return out, nil
}

// GridIndexToFileID maps a grid index to its recorded-file id.
func (l *Layout) GridIndexToFileID(idx int) (int, error) {
	return GridIndexToFileID(idx, l.cfg.Rows, l.cfg.Cols)
}

// FileIDToGridIndex maps a recorded-file id back to its grid index.
func (l *Layout) FileIDToGridIndex(id int) (int, error) {
	return FileIDToGridIndex(id, l.cfg.Rows, l.cfg.Cols)
}

// SpeakerFileID returns the recorded-file id of transmitter tx.
func (l *Layout) SpeakerFileID(tx int) (int, error) {
	cell, err := l.Transmitter(tx)
	if err != nil {
		return 0, err
	}
	return l.GridIndexToFileID(cell.Index)
}

// ReceiverFileID returns the recorded-file id of receiver array rx of transmitter tx.
func (l *Layout) ReceiverFileID(tx, rx int) (int, error) {
	cell, err := l.ReceiverCell(tx, rx)
	if err != nil {
		return 0, err
	}
	return l.GridIndexToFileID(cell.Index)
}

// SpeakerTable is the persisted description of all speaker positions.
type SpeakerTable struct {
	Speaker struct {
		Positions [][]float64 `json:"positions"`
	} `json:"speaker"`
}

// SpeakerTable returns the speaker positions in transmitter order.
func (l *Layout) SpeakerTable() SpeakerTable {
	var t SpeakerTable
	t.Speaker.Positions = make([][]float64, len(l.speakers))
	for tx, idx := range l.speakers {
		t.Speaker.Positions[tx] = l.grid[idx].Point.Slice()
	}
	return t
}
