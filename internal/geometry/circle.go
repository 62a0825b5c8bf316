package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrDegenerate is returned when the defining points do not determine a
	// circle (collinear or coincident points, singular least-squares system).
	ErrDegenerate = errors.New("degenerate circle")

	// ErrTooFewPoints is returned when a fit is requested on fewer than three points.
	ErrTooFewPoints = errors.New("too few points for a circle fit")
)

// Circle is a circle fitted to a set of pixels, together with the arc those
// pixels describe.
//
// Angles are measured with math.Atan2 in image coordinates (y grows downward).
// The arc runs from the first defining point to the last one, passing through
// the middle one, in the direction given by CCW.
type Circle struct {
	// Center is the circle center.
	Center Point `json:"center"`

	// Radius is the circle radius in pixels.
	Radius float64 `json:"radius"`

	// Distance is the root-mean-square residual of the fitted pixels,
	// i.e. how far on average they lie from the circle.
	Distance float64 `json:"distance"`

	firstAngle float64
	lastAngle  float64
	ccw        int
	hasAngles  bool

	curve     *Cubic
	curveDone bool
}

// NewCircleThrough returns the unique circle through three points.
//
// The circle center is the intersection of the perpendicular bisectors of
// [first, middle] and [middle, last]. Its Distance is 0; call Fit to
// measure it against a pixel set.
//
// Returns ErrDegenerate when the points are collinear.
func NewCircleThrough(first, middle, last Point) (*Circle, error) {
	ax, ay := first.X, first.Y
	bx, by := middle.X, middle.Y
	cx, cy := last.X, last.Y

	d := 2 * (ax*(by-cy) + bx*(cy-ay) + cx*(ay-by))
	if math.Abs(d) < 1e-9 {
		return nil, fmt.Errorf("points %v %v %v: %w", first, middle, last, ErrDegenerate)
	}

	a2 := ax*ax + ay*ay
	b2 := bx*bx + by*by
	c2 := cx*cx + cy*cy
	center := Point{
		X: (a2*(by-cy) + b2*(cy-ay) + c2*(ay-by)) / d,
		Y: (a2*(cx-bx) + b2*(ax-cx) + c2*(bx-ax)) / d,
	}

	c := &Circle{
		Center: center,
		Radius: center.Distance(middle),
	}
	c.SetDefiningPoints(first, middle, last)
	return c, nil
}

// FitCircle fits a circle to the given points in the least-squares sense.
//
// The algebraic form x² + y² + D·x + E·y + F = 0 is solved with a QR
// least-squares solve, giving center (-D/2, -E/2) and radius
// sqrt(cx² + cy² - F). The returned circle has its Distance computed over
// the same points but no arc angles; call SetDefiningPoints to attach them.
func FitCircle(xs, ys []float64) (*Circle, error) {
	n := len(xs)
	if n != len(ys) {
		return nil, fmt.Errorf("failed to fit circle: %d abscissae for %d ordinates", n, len(ys))
	}
	if n < 3 {
		return nil, ErrTooFewPoints
	}

	a := mat.NewDense(n, 3, nil)
	b := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		x, y := xs[i], ys[i]
		a.Set(i, 0, x)
		a.Set(i, 1, y)
		a.Set(i, 2, 1)
		b.SetVec(i, -(x*x + y*y))
	}

	var p mat.VecDense
	if err := p.SolveVec(a, b); err != nil {
		return nil, fmt.Errorf("failed to fit circle: %v: %w", err, ErrDegenerate)
	}

	center := Point{X: -p.AtVec(0) / 2, Y: -p.AtVec(1) / 2}
	r2 := center.X*center.X + center.Y*center.Y - p.AtVec(2)
	if r2 <= 0 || math.IsNaN(r2) || math.IsInf(r2, 0) {
		return nil, fmt.Errorf("failed to fit circle: negative squared radius: %w", ErrDegenerate)
	}

	c := &Circle{Center: center, Radius: math.Sqrt(r2)}
	c.Fit(xs, ys)
	return c, nil
}

// Fit sets Distance to the root-mean-square residual of the given points.
func (c *Circle) Fit(xs, ys []float64) float64 {
	c.Distance = c.RMS(xs, ys)
	return c.Distance
}

// RMS returns the root-mean-square distance of the points to the circle.
// An empty set yields 0.
func (c *Circle) RMS(xs, ys []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for i := range xs {
		d := math.Hypot(xs[i]-c.Center.X, ys[i]-c.Center.Y) - c.Radius
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

// SetDefiningPoints records the arc described by first, middle and last.
// Any cached curve is dropped.
func (c *Circle) SetDefiningPoints(first, middle, last Point) {
	c.firstAngle = math.Atan2(first.Y-c.Center.Y, first.X-c.Center.X)
	c.lastAngle = math.Atan2(last.Y-c.Center.Y, last.X-c.Center.X)
	c.ccw = relativeCCW(first, last, middle)
	c.hasAngles = true
	c.curve = nil
	c.curveDone = false
}

// CCW returns the side of the first→last chord holding the middle point:
// 1 when angles increase from first to last along the arc, -1 when they
// decrease, 0 when the points are collinear.
func (c *Circle) CCW() int {
	return c.ccw
}

// FirstAngle returns the angle of the first defining point around the center.
func (c *Circle) FirstAngle() float64 {
	return c.firstAngle
}

// LastAngle returns the angle of the last defining point around the center.
func (c *Circle) LastAngle() float64 {
	return c.lastAngle
}

// ArcAngle returns the angular extent of the arc, in [0, 2π).
func (c *Circle) ArcAngle() float64 {
	var arc float64
	if c.ccw == 1 {
		arc = c.lastAngle - c.firstAngle
	} else {
		arc = c.firstAngle - c.lastAngle
	}
	if arc < 0 {
		arc += 2 * math.Pi
	}
	return arc
}

// MidAngle returns the angle of the arc midpoint, normalized to [-π, π].
func (c *Circle) MidAngle() float64 {
	half := c.ArcAngle() / 2
	var mid float64
	if c.ccw == 1 {
		mid = c.firstAngle + half
	} else {
		mid = c.firstAngle - half
	}
	for mid > math.Pi {
		mid -= 2 * math.Pi
	}
	for mid < -math.Pi {
		mid += 2 * math.Pi
	}
	return mid
}

// Curve returns the cubic Bézier curve approximating the arc, ordered left
// to right, or nil when the circle has no usable arc (no defining points,
// infinite radius, zero-length arc).
func (c *Circle) Curve() *Cubic {
	if !c.curveDone {
		c.curve = c.computeCurve()
		c.curveDone = true
	}
	return c.curve
}

// computeCurve approximates the arc with one cubic: the unit arc symmetric
// around the x axis is built first, then rotated to the mid angle, scaled by
// the radius and translated to the center.
func (c *Circle) computeCurve() *Cubic {
	if !c.hasAngles || c.ccw == 0 {
		return nil
	}
	if math.IsNaN(c.Radius) || math.IsInf(c.Radius, 0) || c.Radius <= 0 {
		return nil
	}

	arc := c.ArcAngle()
	x0 := math.Cos(arc / 2)
	y0 := math.Sin(arc / 2)
	if math.Abs(y0) < 1e-12 {
		return nil
	}
	x1 := (4 - x0) / 3
	y1 := (1 - x0) * (3 - x0) / (3 * y0)

	mid := c.MidAngle()
	sin, cos := math.Sincos(mid)
	place := func(x, y float64) Point {
		return Point{
			X: c.Center.X + c.Radius*(x*cos-y*sin),
			Y: c.Center.Y + c.Radius*(x*sin+y*cos),
		}
	}

	cubic := &Cubic{
		P1: place(x0, y0),
		C1: place(x1, y1),
		C2: place(x1, -y1),
		P2: place(x0, -y0),
	}
	if cubic.P1.X > cubic.P2.X {
		cubic.P1, cubic.P2 = cubic.P2, cubic.P1
		cubic.C1, cubic.C2 = cubic.C2, cubic.C1
	}
	return cubic
}

// relativeCCW tells on which side of the directed segment a→b the point p lies.
// A zero cross product falls back to the position along the line.
func relativeCCW(a, b, p Point) int {
	x2, y2 := b.X-a.X, b.Y-a.Y
	px, py := p.X-a.X, p.Y-a.Y

	ccw := px*y2 - py*x2
	if ccw == 0 {
		ccw = px*x2 + py*y2
		if ccw > 0 {
			px -= x2
			py -= y2
			ccw = px*x2 + py*y2
			if ccw < 0 {
				ccw = 0
			}
		}
	}

	switch {
	case ccw < 0:
		return -1
	case ccw > 0:
		return 1
	default:
		return 0
	}
}

// Cubic is a cubic Bézier curve: end points P1 and P2 with control points C1
// (next to P1) and C2 (next to P2).
type Cubic struct {
	P1 Point `json:"p1"`
	C1 Point `json:"c1"`
	C2 Point `json:"c2"`
	P2 Point `json:"p2"`
}

// At evaluates the curve at parameter t in [0, 1].
func (q *Cubic) At(t float64) Point {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return Point{
		X: a*q.P1.X + b*q.C1.X + c*q.C2.X + d*q.P2.X,
		Y: a*q.P1.Y + b*q.C1.Y + c*q.C2.Y + d*q.P2.Y,
	}
}

// Flatten samples the curve into n+1 points, end points included.
func (q *Cubic) Flatten(n int) []Point {
	if n < 1 {
		n = 1
	}
	points := make([]Point, 0, n+1)
	for i := 0; i <= n; i++ {
		points = append(points, q.At(float64(i)/float64(n)))
	}
	return points
}
