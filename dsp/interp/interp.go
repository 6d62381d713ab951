package interp

import "math"

// Kernel returns the Lagrange basis weights for a unit impulse at the
// fractional sample position pos. The weights apply to samples
// start..start+order and sum to one; at an integer pos they reduce to a
// single unit tap. A negative order is treated as zero.
func Kernel(order int, pos float64) (start int, w []float64) {
	if order <= 0 {
		return int(math.Round(pos)), []float64{1}
	}
	if order%2 == 1 {
		start = int(math.Floor(pos)) - (order-1)/2
	} else {
		start = int(math.Round(pos)) - order/2
	}

	w = make([]float64, order+1)
	for k := range w {
		node := float64(start + k)
		v := 1.0
		for j := 0; j <= order; j++ {
			if j == k {
				continue
			}
			other := float64(start + j)
			v *= (pos - other) / (node - other)
		}
		w[k] = v
	}
	return start, w
}

// AddImpulse adds an impulse of amplitude amp at fractional position pos to
// dst. Taps falling outside dst are dropped.
func AddImpulse(dst []float64, pos, amp float64, order int) {
	start, w := Kernel(order, pos)
	for k, v := range w {
		i := start + k
		if i < 0 || i >= len(dst) {
			continue
		}
		dst[i] += amp * v
	}
}
