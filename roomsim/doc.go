// Package roomsim renders room impulse responses of an empty shoebox room
// with the image-source method.
//
// The simulator is a reference implementation for generating synthetic
// evaluation datasets: every image source up to a configured reflection
// order contributes one impulse at its fractional propagation delay,
// spread over neighbouring samples by a Lagrange interpolation kernel and
// scaled by spherical spreading and the wall reflection factor.
// [ImageSource.Order] selects the kernel; order 0 places each image at the
// nearest sample.
// Absorption is an energy coefficient shared by all six walls.
package roomsim
