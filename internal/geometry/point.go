package geometry

import "math"

// Point represents a 2D coordinate in pixel space with sub-pixel precision.
type Point struct {
	X float64 `json:"x"` // Horizontal position (0 = leftmost)
	Y float64 `json:"y"` // Vertical position (0 = topmost)
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale returns p × k.
func (p Point) Scale(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}

// Norm returns the length of p seen as a vector.
func (p Point) Norm() float64 {
	return math.Hypot(p.X, p.Y)
}

// Distance returns the euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// DistanceSq returns the squared euclidean distance between p and q.
func (p Point) DistanceSq(q Point) float64 {
	dx, dy := p.X-q.X, p.Y-q.Y
	return dx*dx + dy*dy
}

// Round rounds half away from zero to the nearest int.
func Round(v float64) int {
	return int(math.Round(v))
}

// Barycenter accumulates weighted pixels and reports their mass center.
//
// The zero value is ready for use.
type Barycenter struct {
	Weight float64
	sumX   float64
	sumY   float64
}

// Include adds a pixel of unit weight.
func (b *Barycenter) Include(x, y float64) {
	b.IncludeWeighted(1, x, y)
}

// IncludeWeighted adds a point with the given weight.
func (b *Barycenter) IncludeWeighted(w, x, y float64) {
	b.Weight += w
	b.sumX += w * x
	b.sumY += w * y
}

// Empty reports whether nothing has been included yet.
func (b *Barycenter) Empty() bool {
	return b.Weight == 0
}

// Center returns the mass center. It is undefined for an empty barycenter.
func (b *Barycenter) Center() Point {
	if b.Weight == 0 {
		return Point{X: math.NaN(), Y: math.NaN()}
	}
	return Point{X: b.sumX / b.Weight, Y: b.sumY / b.Weight}
}
