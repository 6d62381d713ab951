package geometry

import "math"

// Point is a 3-D coordinate in metres (x, y, z).
type Point [3]float64

// X returns the x coordinate.
func (p Point) X() float64 { return p[0] }

// Y returns the y coordinate.
func (p Point) Y() float64 { return p[1] }

// Z returns the z coordinate.
func (p Point) Z() float64 { return p[2] }

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{p[0] + q[0], p[1] + q[1], p[2] + q[2]}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{p[0] - q[0], p[1] - q[1], p[2] - q[2]}
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	d := p.Sub(q)
	return math.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
}

// Slice returns the coordinates as a new slice.
func (p Point) Slice() []float64 {
	return []float64{p[0], p[1], p[2]}
}

// PointFromSlice converts a 3-element slice into a Point.
// It returns false if v does not hold exactly three values.
func PointFromSlice(v []float64) (Point, bool) {
	if len(v) != 3 {
		return Point{}, false
	}
	return Point{v[0], v[1], v[2]}, true
}

// Mean returns the component-wise mean of pts. The mean of no points is the origin.
func Mean(pts []Point) Point {
	if len(pts) == 0 {
		return Point{}
	}

	var sum Point
	for _, p := range pts {
		sum = sum.Add(p)
	}

	n := float64(len(pts))
	return Point{sum[0] / n, sum[1] / n, sum[2] / n}
}
