package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// arcPoints samples points on the circle of given center and radius, between
// two angles.
func arcPoints(center Point, radius, from, to float64, n int) (xs, ys []float64) {
	for i := 0; i < n; i++ {
		a := from + (to-from)*float64(i)/float64(n-1)
		xs = append(xs, center.X+radius*math.Cos(a))
		ys = append(ys, center.Y+radius*math.Sin(a))
	}
	return xs, ys
}

func TestNewCircleThrough(t *testing.T) {
	c, err := NewCircleThrough(Point{X: 0, Y: 0}, Point{X: 5, Y: -5}, Point{X: 10, Y: 0})
	require.NoError(t, err)

	assert.InDelta(t, 5, c.Center.X, 1e-9)
	assert.InDelta(t, 0, c.Center.Y, 1e-9)
	assert.InDelta(t, 5, c.Radius, 1e-9)
	assert.Equal(t, 1, c.CCW())
	assert.InDelta(t, math.Pi, c.ArcAngle(), 1e-9)
	assert.InDelta(t, -math.Pi/2, c.MidAngle(), 1e-9)
}

func TestNewCircleThrough_Collinear(t *testing.T) {
	_, err := NewCircleThrough(Point{X: 0, Y: 3}, Point{X: 5, Y: 3}, Point{X: 10, Y: 3})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDegenerate))
}

func TestFitCircle_ExactPoints(t *testing.T) {
	tests := []struct {
		name   string
		center Point
		radius float64
		from   float64
		to     float64
	}{
		{"upper arc", Point{X: 100, Y: 200}, 80, -2.5, -0.6},
		{"lower arc", Point{X: 40, Y: -30}, 25, 0.3, 2.8},
		{"large radius", Point{X: 50, Y: 1000}, 990, -1.65, -1.49},
		{"full circle", Point{X: 0, Y: 0}, 10, 0, 2 * math.Pi * 0.95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			xs, ys := arcPoints(tt.center, tt.radius, tt.from, tt.to, 40)
			c, err := FitCircle(xs, ys)
			require.NoError(t, err)

			assert.InDelta(t, tt.center.X, c.Center.X, 1e-3*tt.radius)
			assert.InDelta(t, tt.center.Y, c.Center.Y, 1e-3*tt.radius)
			assert.InDelta(t, tt.radius, c.Radius, 1e-3*tt.radius)
			assert.Less(t, c.Distance, 1e-3*tt.radius)
		})
	}
}

func TestFitCircle_TooFewPoints(t *testing.T) {
	_, err := FitCircle([]float64{1, 2}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrTooFewPoints)
}

func TestThreePointCircle_DistanceOnExactArc(t *testing.T) {
	center := Point{X: 60, Y: 300}
	xs, ys := arcPoints(center, 250, -1.8, -1.3, 30)

	first := Point{X: xs[0], Y: ys[0]}
	middle := Point{X: xs[15], Y: ys[15]}
	last := Point{X: xs[29], Y: ys[29]}
	c, err := NewCircleThrough(first, middle, last)
	require.NoError(t, err)

	assert.InDelta(t, 0, c.Fit(xs, ys), 1e-6)
	assert.InDelta(t, 250, c.Radius, 1e-6)
}

func TestCircleCurve_EndPoints(t *testing.T) {
	center := Point{X: 50, Y: 100}
	radius := 60.0
	first := Point{X: center.X - radius*math.Cos(0.5), Y: center.Y - radius*math.Sin(0.5)}
	middle := Point{X: center.X, Y: center.Y - radius}
	last := Point{X: center.X + radius*math.Cos(0.5), Y: center.Y - radius*math.Sin(0.5)}

	c, err := NewCircleThrough(first, middle, last)
	require.NoError(t, err)

	curve := c.Curve()
	require.NotNil(t, curve)
	assert.InDelta(t, first.X, curve.P1.X, 1e-6)
	assert.InDelta(t, first.Y, curve.P1.Y, 1e-6)
	assert.InDelta(t, last.X, curve.P2.X, 1e-6)
	assert.InDelta(t, last.Y, curve.P2.Y, 1e-6)

	// The curve midpoint stays close to the arc apex.
	apex := curve.At(0.5)
	assert.InDelta(t, middle.X, apex.X, 0.05)
	assert.InDelta(t, middle.Y, apex.Y, 0.05)
}

func TestCircleCurve_NoAngles(t *testing.T) {
	xs, ys := arcPoints(Point{X: 0, Y: 0}, 10, 0, 1, 10)
	c, err := FitCircle(xs, ys)
	require.NoError(t, err)
	assert.Nil(t, c.Curve(), "a fitted circle without defining points has no arc")

	c.SetDefiningPoints(Point{X: xs[0], Y: ys[0]}, Point{X: xs[5], Y: ys[5]}, Point{X: xs[9], Y: ys[9]})
	assert.NotNil(t, c.Curve())
}

func TestCubicFlatten(t *testing.T) {
	q := &Cubic{P1: Point{X: 0, Y: 0}, C1: Point{X: 1, Y: 1}, C2: Point{X: 2, Y: 1}, P2: Point{X: 3, Y: 0}}
	points := q.Flatten(4)
	require.Len(t, points, 5)
	assert.Equal(t, q.P1, points[0])
	assert.Equal(t, q.P2, points[4])
}
