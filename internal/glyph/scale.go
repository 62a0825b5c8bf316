package glyph

import (
	"math"

	"github.com/ironsheep/omr-patterns/internal/geometry"
)

// Scale carries the sheet dimensions every threshold is relative to.
type Scale struct {
	// Interline is the distance in pixels between two staff lines.
	Interline int `json:"interline" yaml:"interline"`

	// LineThickness is the staff line thickness in pixels.
	LineThickness int `json:"line_thickness" yaml:"line_thickness"`
}

// ToPixels converts a fraction of the interline into pixels, rounded.
func (s Scale) ToPixels(fraction float64) int {
	return int(math.Round(fraction * float64(s.Interline)))
}

// ToPixelsFloat converts a fraction of the interline into pixels.
func (s Scale) ToPixelsFloat(fraction float64) float64 {
	return fraction * float64(s.Interline)
}

// LineFraction converts a fraction of the line thickness into pixels.
func (s Scale) LineFraction(fraction float64) float64 {
	return fraction * float64(s.LineThickness)
}

// AreaFraction converts a fraction of the squared interline into a pixel count.
func (s Scale) AreaFraction(fraction float64) int {
	return int(math.Round(fraction * float64(s.Interline*s.Interline)))
}

// Staff is a five-line staff, given as input to the pattern engine.
type Staff struct {
	ID int `json:"id"`

	// Left and Right are the abscissae of the staff ends.
	Left  int `json:"left"`
	Right int `json:"right"`

	// Lines are the ordinates of the staff lines, top to bottom.
	Lines []float64 `json:"lines"`
}

// Top returns the ordinate of the first line.
func (st *Staff) Top() float64 {
	return st.Lines[0]
}

// Bottom returns the ordinate of the last line.
func (st *Staff) Bottom() float64 {
	return st.Lines[len(st.Lines)-1]
}

// Interline returns the mean distance between lines.
func (st *Staff) Interline() float64 {
	if len(st.Lines) < 2 {
		return 0
	}
	return (st.Bottom() - st.Top()) / float64(len(st.Lines)-1)
}

// PitchPosition returns the pitch position of ordinate y: 0 on the middle
// line, -4 on the top line, +4 on the bottom line, one unit per half interline.
func (st *Staff) PitchPosition(y float64) float64 {
	height := st.Bottom() - st.Top()
	if height == 0 {
		return 0
	}
	return -4 + 8*(y-st.Top())/height
}

// Bounds returns the box from the first to the last line, between the ends.
func (st *Staff) Bounds() geometry.Bounds {
	return geometry.Bounds{
		X1: st.Left,
		Y1: int(math.Floor(st.Top())),
		X2: st.Right + 1,
		Y2: int(math.Ceil(st.Bottom())) + 1,
	}
}

// VerticalDistance returns how far y lies outside the line span (0 inside).
func (st *Staff) VerticalDistance(y float64) float64 {
	switch {
	case y < st.Top():
		return st.Top() - y
	case y > st.Bottom():
		return y - st.Bottom()
	default:
		return 0
	}
}
