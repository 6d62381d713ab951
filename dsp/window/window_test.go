package window

import (
	"math"
	"testing"
)

func TestGenerateFinite(t *testing.T) {
	for _, typ := range []Type{TypeRectangular, TypeHann, TypeHamming, TypeBlackman} {
		t.Run(typ.String(), func(t *testing.T) {
			w := Generate(typ, 64)
			if len(w) != 64 {
				t.Fatalf("len=%d, want 64", len(w))
			}
			for i, v := range w {
				if math.IsNaN(v) || math.IsInf(v, 0) || v < -1e-12 || v > 1+1e-12 {
					t.Fatalf("coefficient[%d] invalid: %v", i, v)
				}
			}
		})
	}
}

func TestHannEndpoints(t *testing.T) {
	sym := Generate(TypeHann, 16)
	if math.Abs(sym[0]) > 1e-15 || math.Abs(sym[15]) > 1e-15 {
		t.Fatalf("symmetric Hann endpoints = %v, %v", sym[0], sym[15])
	}

	per := Generate(TypeHann, 16, WithPeriodic())
	if math.Abs(per[8]-1) > 1e-15 {
		t.Fatalf("periodic Hann midpoint = %v, want 1", per[8])
	}
	if math.Abs(per[15]) < 1e-3 {
		t.Fatalf("periodic Hann last sample should not be zero: %v", per[15])
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Type
		ok   bool
	}{
		{"", TypeRectangular, true},
		{"none", TypeRectangular, true},
		{"Hann", TypeHann, true},
		{" blackman ", TypeBlackman, true},
		{"kaiser", 0, false},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if tt.ok != (err == nil) {
			t.Fatalf("Parse(%q) err = %v", tt.in, err)
		}
		if tt.ok && got != tt.want {
			t.Fatalf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestApply(t *testing.T) {
	s := []float64{1, 2, 3, 4}
	if err := Apply(s, []float64{0, 0.5, 1, 2}); err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 1, 3, 8}
	for i := range s {
		if s[i] != want[i] {
			t.Fatalf("s[%d] = %v, want %v", i, s[i], want[i])
		}
	}
	if err := Apply(s, []float64{1}); err == nil {
		t.Fatal("expected length mismatch error")
	}
}

func TestCoherentGain(t *testing.T) {
	if g := CoherentGain(Generate(TypeRectangular, 10)); g != 1 {
		t.Fatalf("rectangular gain = %v, want 1", g)
	}
	if g := CoherentGain(Generate(TypeHann, 1024, WithPeriodic())); math.Abs(g-0.5) > 1e-12 {
		t.Fatalf("periodic Hann gain = %v, want 0.5", g)
	}
}
