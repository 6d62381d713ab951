// Package spectrum provides helpers over complex spectrum bins and complex
// images: magnitude, power and peak search.
//
// The package does not implement an FFT itself; see package stft.
package spectrum
