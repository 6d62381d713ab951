// Package interp provides Lagrange fractional-delay kernels for placing
// band-limited impulses between sample instants.
//
// A kernel of order N spans N+1 consecutive samples. Order 0 is the
// nearest sample, order 1 linear interpolation, order 3 the usual 4-point
// cubic.
package interp
