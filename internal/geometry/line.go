package geometry

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Line is a straight line fitted through a point cloud by orthogonal
// regression: it passes through the centroid and follows the principal axis.
type Line struct {
	// Origin is the centroid of the fitted points.
	Origin Point `json:"origin"`

	// Angle is the direction of the line in radians, in (-π/2, π/2].
	Angle float64 `json:"angle"`

	// Count is the number of fitted points.
	Count int `json:"count"`
}

// FitLine fits a line through the given points.
//
// Returns a zero Line (Count 0) for an empty input. A single point, or a set
// with no spread at all, yields a horizontal line through the centroid.
func FitLine(xs, ys []float64) Line {
	if len(xs) == 0 || len(xs) != len(ys) {
		return Line{}
	}

	mx, vx := stat.MeanVariance(xs, nil)
	my, vy := stat.MeanVariance(ys, nil)
	line := Line{Origin: Point{X: mx, Y: my}, Count: len(xs)}
	if len(xs) < 2 {
		return line
	}

	cov := stat.Covariance(xs, ys, nil)
	if math.IsNaN(vx) || math.IsNaN(vy) || math.IsNaN(cov) {
		return line
	}
	line.Angle = 0.5 * math.Atan2(2*cov, vx-vy)
	return line
}

// IsHorizontal reports whether the line is closer to horizontal than to vertical.
func (l Line) IsHorizontal() bool {
	return math.Abs(math.Cos(l.Angle)) >= math.Abs(math.Sin(l.Angle))
}

// Slope returns dy/dx, infinite for a vertical line.
func (l Line) Slope() float64 {
	c := math.Cos(l.Angle)
	if c == 0 {
		return math.Inf(1)
	}
	return math.Sin(l.Angle) / c
}

// YAt returns the ordinate of the line at abscissa x.
// For a vertical line it returns the origin ordinate.
func (l Line) YAt(x float64) float64 {
	s := l.Slope()
	if math.IsInf(s, 0) {
		return l.Origin.Y
	}
	return l.Origin.Y + s*(x-l.Origin.X)
}

// DistanceTo returns the perpendicular distance from p to the line.
func (l Line) DistanceTo(p Point) float64 {
	sin, cos := math.Sincos(l.Angle)
	dx, dy := p.X-l.Origin.X, p.Y-l.Origin.Y
	return math.Abs(dx*sin - dy*cos)
}
