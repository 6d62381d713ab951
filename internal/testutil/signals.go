package testutil

import (
	"math"
	"math/rand"
)

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// PlaneWave renders a far-field multitone source arriving from bearingDeg
// (counter-clockwise from +x) at a set of 2-D microphone positions.
//
// The source is a sum of tones between lowHz and highHz with seeded random
// phases; each channel is delayed analytically, so arbitrary sub-sample
// delays are exact. speed is the propagation speed in m/s.
func PlaneWave(mics [][2]float64, bearingDeg, sampleRate, speed float64, length int, lowHz, highHz float64, tones int, seed int64) [][]float64 {
	rng := rand.New(rand.NewSource(seed))
	freqs := make([]float64, tones)
	phases := make([]float64, tones)
	for i := range freqs {
		freqs[i] = lowHz + (highHz-lowHz)*rng.Float64()
		phases[i] = 2 * math.Pi * rng.Float64()
	}

	theta := bearingDeg * math.Pi / 180
	ux, uy := math.Cos(theta), math.Sin(theta)

	out := make([][]float64, len(mics))
	for m, p := range mics {
		// A microphone displaced towards the source hears it earlier.
		tau := -(p[0]*ux + p[1]*uy) / speed
		ch := make([]float64, length)
		for n := range ch {
			t := float64(n)/sampleRate - tau
			var v float64
			for i, f := range freqs {
				v += math.Cos(2*math.Pi*f*t + phases[i])
			}
			ch[n] = v / float64(tones)
		}
		out[m] = ch
	}

	return out
}

// Ring returns 2-D positions of a circular array of the given radius,
// channel 0 at +y, counter-clockwise.
func Ring(channels int, radius float64) [][2]float64 {
	out := make([][2]float64, channels)
	for k := range out {
		theta := math.Pi/2 + float64(k)*2*math.Pi/float64(channels)
		out[k] = [2]float64{radius * math.Cos(theta), radius * math.Sin(theta)}
	}
	return out
}
