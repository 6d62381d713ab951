package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-doa/internal/testutil"
)

func TestDefaultLayout(t *testing.T) {
	l, err := NewLayout(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	if l.NumTransmitters() != 8 {
		t.Fatalf("transmitters = %d, want 8", l.NumTransmitters())
	}
	if l.NumReceivers() != 23 {
		t.Fatalf("receivers = %d, want 23", l.NumReceivers())
	}

	for tx := 0; tx < l.NumTransmitters(); tx++ {
		spk, err := l.Transmitter(tx)
		if err != nil {
			t.Fatal(err)
		}
		prev := -1
		for rx := 0; rx < l.NumReceivers(); rx++ {
			cell, err := l.ReceiverCell(tx, rx)
			if err != nil {
				t.Fatal(err)
			}
			if cell.Index == spk.Index {
				t.Fatalf("tx %d: receiver %d shares the speaker cell", tx, rx)
			}
			if cell.Index <= prev {
				t.Fatalf("tx %d: receivers not ascending at rx %d", tx, rx)
			}
			prev = cell.Index
		}
	}
}

func TestLayoutChannelPositions(t *testing.T) {
	l, err := NewLayout(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	// Transmitter 0 sits on cell 0, so receiver 0 is cell 1 at (2.0, 1.5).
	pos, err := l.ChannelPositions(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(pos) != 8 {
		t.Fatalf("len = %d, want 8", len(pos))
	}
	testutil.RequireNearlyEqual(t, "ch0.x", pos[0][0], 2.0, 1e-12)
	testutil.RequireNearlyEqual(t, "ch0.y", pos[0][1], 1.5+0.0365, 1e-12)
	testutil.RequireNearlyEqual(t, "ch0.z", pos[0][2], 1.5, 0)

	center := Mean(pos)
	want, _ := l.ReceiverCenter(0, 0)
	for i := 0; i < 3; i++ {
		testutil.RequireNearlyEqual(t, "center", center[i], want[i], 1e-12)
	}

	p3, err := l.ChannelPosition(0, 0, 3)
	if err != nil {
		t.Fatal(err)
	}
	if p3 != pos[3] {
		t.Fatalf("ChannelPosition = %v, ChannelPositions[3] = %v", p3, pos[3])
	}
}

func TestLayoutFileIDs(t *testing.T) {
	l, err := NewLayout(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	wantSpeaker := []int{1, 19, 6, 24, 9, 15, 10, 16}
	for tx, want := range wantSpeaker {
		got, err := l.SpeakerFileID(tx)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("SpeakerFileID(%d) = %d, want %d", tx, got, want)
		}
	}

	// Transmitter 4 sits on cell 9; its receiver 9 is cell 10.
	id, err := l.ReceiverFileID(4, 9)
	if err != nil {
		t.Fatal(err)
	}
	if id != 15 {
		t.Errorf("ReceiverFileID(4, 9) = %d, want 15", id)
	}
}

func TestLayoutOutOfRange(t *testing.T) {
	l, err := NewLayout(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.Transmitter(8); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Transmitter(8): %v", err)
	}
	if _, err := l.ReceiverCell(0, 23); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("ReceiverCell(0,23): %v", err)
	}
	if _, err := l.ChannelPosition(0, 0, 8); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("ChannelPosition(0,0,8): %v", err)
	}
}

func TestNewLayoutInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero channels", func(c *Config) { c.Channels = 0 }},
		{"negative radius", func(c *Config) { c.Radius = -1 }},
		{"zero spacing", func(c *Config) { c.Spacing = 0 }},
		{"empty grid", func(c *Config) { c.Rows = 0 }},
		{"speaker out of range", func(c *Config) { c.Speakers = Explicit{Indices: []int{99}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if _, err := NewLayout(cfg); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestSpeakerTable(t *testing.T) {
	l, err := NewLayout(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	tab := l.SpeakerTable()
	if len(tab.Speaker.Positions) != 8 {
		t.Fatalf("positions = %d, want 8", len(tab.Speaker.Positions))
	}
	// Interior speaker 4 is cell 9 at (2.0, 3.5, 1.5).
	testutil.RequireSliceNearlyEqual(t, tab.Speaker.Positions[4], []float64{2.0, 3.5, 1.5}, 1e-12)
}

func TestSpeakerDueSouthOfArray(t *testing.T) {
	l, err := NewLayout(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	// Transmitter 0 (cell 0) is due south of cell 4, so from the array on
	// cell 4 the source bears 270°; cell 4 is receiver 3 of transmitter 0.
	spk, _ := l.Transmitter(0)
	center, _ := l.ReceiverCenter(0, 3)
	if got := Bearing(spk.Point, center); math.Abs(got-270) > 1e-9 {
		t.Fatalf("bearing = %v, want 270", got)
	}
}
