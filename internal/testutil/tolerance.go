package testutil

import (
	"math"
	"testing"
)

// RequireNearlyEqual fails t if |got-want| > eps.
func RequireNearlyEqual(t *testing.T, name string, got, want, eps float64) {
	t.Helper()
	if diff := math.Abs(got - want); diff > eps || math.IsNaN(got) {
		t.Fatalf("%s: got %v, want %v (diff %v > eps %v)", name, got, want, diff, eps)
	}
}

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance).
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		diff := math.Abs(got[i] - want[i])
		if diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireAngleNear fails t if the circular distance between two bearings in
// degrees exceeds eps.
func RequireAngleNear(t *testing.T, got, want, eps float64) {
	t.Helper()
	d := math.Mod(math.Abs(got-want), 360)
	if d > 180 {
		d = 360 - d
	}
	if d > eps {
		t.Fatalf("bearing: got %.3f°, want %.3f° (off by %.3f° > %.3f°)", got, want, d, eps)
	}
}
