package roomsim

import (
	"context"
	"fmt"
	"math"

	"github.com/cwbudde/algo-doa/dsp/interp"
	"github.com/cwbudde/algo-doa/geometry"
)

// ImageSource is a shoebox simulator using the image-source method.
// The zero value is ready to use. ImageSource is safe for concurrent use.
type ImageSource struct {
	// Length, if positive, bounds every rendered response to Length samples.
	// Otherwise the response is just long enough to hold the latest image.
	Length int

	// Order is the Lagrange interpolation order used to place each image
	// at its fractional arrival time. Zero rounds to the nearest sample.
	Order int
}

type image struct {
	pos   geometry.Point
	order int
}

// images enumerates every image of source up to maxOrder reflections.
// Along each axis an image index n and parity q give the coordinate
// 2*n*L + (1-2q)*s and |2n - q| wall hits.
func images(room Room, source geometry.Point) []image {
	n := room.MaxOrder
	var out []image
	for nx := -n; nx <= n; nx++ {
		for ny := -n; ny <= n; ny++ {
			for nz := -n; nz <= n; nz++ {
				for q := 0; q < 8; q++ {
					qx, qy, qz := q&1, (q>>1)&1, (q>>2)&1
					order := absInt(2*nx-qx) + absInt(2*ny-qy) + absInt(2*nz-qz)
					if order > n {
						continue
					}
					out = append(out, image{
						pos: geometry.Point{
							imageCoord(nx, qx, room.Dimensions[0], source[0]),
							imageCoord(ny, qy, room.Dimensions[1], source[1]),
							imageCoord(nz, qz, room.Dimensions[2], source[2]),
						},
						order: order,
					})
				}
			}
		}
	}
	return out
}

func imageCoord(n, q int, length, s float64) float64 {
	return 2*float64(n)*length + float64(1-2*q)*s
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Simulate renders one impulse response per receiver for a source in room.
func (s ImageSource) Simulate(ctx context.Context, room Room, source geometry.Point, receivers []geometry.Point) ([][]float64, error) {
	if err := room.Validate(); err != nil {
		return nil, err
	}
	if s.Order < 0 {
		return nil, fmt.Errorf("%w: interpolation order must be >= 0: %d", ErrInvalidRoom, s.Order)
	}
	if !room.Contains(source) {
		return nil, fmt.Errorf("%w: source %v outside room", ErrInvalidRoom, source)
	}
	for i, r := range receivers {
		if !room.Contains(r) {
			return nil, fmt.Errorf("%w: receiver %d at %v outside room", ErrInvalidRoom, i, r)
		}
	}

	imgs := images(room, source)
	beta := math.Sqrt(1 - room.Absorption)
	fs := float64(room.SampleRate)

	out := make([][]float64, len(receivers))
	for i, r := range receivers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		length := s.Length
		if length <= 0 {
			far := 0.0
			for _, img := range imgs {
				far = math.Max(far, img.pos.Dist(r))
			}
			length = int(math.Round(far/room.SoundSpeed*fs)) + 1 + (s.Order+1)/2
		}

		h := make([]float64, length)
		for _, img := range imgs {
			d := img.pos.Dist(r)
			amp := math.Pow(beta, float64(img.order)) / (4 * math.Pi * math.Max(d, 1e-3))
			interp.AddImpulse(h, d/room.SoundSpeed*fs, amp, s.Order)
		}
		out[i] = h
	}
	return out, nil
}

// ImageCount returns the number of image sources (including the direct path)
// rendered for maxOrder.
func ImageCount(maxOrder int) int {
	room := Room{Dimensions: geometry.Point{1, 1, 1}, MaxOrder: maxOrder}
	return len(images(room, geometry.Point{0.5, 0.5, 0.5}))
}
