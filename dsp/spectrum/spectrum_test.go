package spectrum

import (
	"math"
	"testing"
)

func TestMagnitudeAndPower(t *testing.T) {
	in := []complex128{complex(3, 4), complex(0, -2), 0}

	mag := Magnitude(in)
	pow := Power(in)
	wantMag := []float64{5, 2, 0}
	wantPow := []float64{25, 4, 0}
	for i := range in {
		if math.Abs(mag[i]-wantMag[i]) > 1e-12 {
			t.Fatalf("mag[%d] = %v, want %v", i, mag[i], wantMag[i])
		}
		if math.Abs(pow[i]-wantPow[i]) > 1e-12 {
			t.Fatalf("pow[%d] = %v, want %v", i, pow[i], wantPow[i])
		}
	}

	if Magnitude(nil) != nil || Power(nil) != nil {
		t.Fatal("expected nil for empty input")
	}
}

func TestArgMax(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want int
	}{
		{"empty", nil, -1},
		{"single", []float64{3}, 0},
		{"peak", []float64{0, 1, 5, 2}, 2},
		{"tie takes first", []float64{4, 1, 4}, 0},
		{"nan skipped", []float64{math.NaN(), 1, 0}, 1},
		{"all nan", []float64{math.NaN()}, -1},
		{"negative", []float64{-3, -1, -2}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ArgMax(tt.in); got != tt.want {
				t.Fatalf("ArgMax = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestArgMaxMagnitude(t *testing.T) {
	in := []complex128{complex(1, 1), complex(0, -3), complex(2, 0)}
	if got := ArgMaxMagnitude(in); got != 1 {
		t.Fatalf("ArgMaxMagnitude = %d, want 1", got)
	}
}
