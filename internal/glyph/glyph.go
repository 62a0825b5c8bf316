package glyph

import (
	"fmt"
	"image"
	"image/color"
	"sort"
	"strconv"
	"strings"

	"github.com/ironsheep/omr-patterns/internal/geometry"
	"github.com/ironsheep/omr-patterns/internal/lag"
)

// TextInfo is attached to glyphs recognized as text.
type TextInfo struct {
	Content  string          `json:"content"`
	Language string          `json:"language,omitempty"`
	FontSize float64         `json:"font_size,omitempty"` // in interline fractions
	Bounds   geometry.Bounds `json:"bounds"`
}

// Glyph is a set of sections considered as one symbol candidate.
//
// A glyph built by System.BuildTransientGlyph or BuildTransientCompound is
// transient: it has no identifier and its sections still belong to their
// previous glyphs. System.AddGlyph makes it registered and active.
type Glyph struct {
	id        int
	sections  []*lag.Section
	bounds    geometry.Bounds
	weight    int
	signature string

	eval      *Evaluation
	manual    bool
	active    bool
	forbidden ShapeSet

	leftStem  *Glyph
	rightStem *Glyph

	circle *geometry.Circle
	text   *TextInfo
}

func newGlyph(sections []*lag.Section) *Glyph {
	unique := make(map[*lag.Section]bool, len(sections))
	members := make([]*lag.Section, 0, len(sections))
	for _, s := range sections {
		if s == nil || unique[s] {
			continue
		}
		unique[s] = true
		members = append(members, s)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID() < members[j].ID() })

	g := &Glyph{sections: members}
	ids := make([]string, len(members))
	for i, s := range members {
		g.bounds = g.bounds.Union(s.Bounds())
		g.weight += s.Weight()
		ids[i] = strconv.Itoa(s.ID())
	}
	g.signature = strings.Join(ids, ",")
	return g
}

// ID returns the glyph identifier, 0 for a transient glyph.
func (g *Glyph) ID() int { return g.id }

// IsTransient reports whether the glyph has not been registered yet.
func (g *Glyph) IsTransient() bool { return g.id == 0 }

// Signature identifies the section set: two glyphs with the same signature
// are made of exactly the same sections.
func (g *Glyph) Signature() string { return g.signature }

// Members returns the glyph sections ordered by identifier.
func (g *Glyph) Members() []*lag.Section {
	return append([]*lag.Section(nil), g.sections...)
}

// Bounds returns the bounding box of the glyph.
func (g *Glyph) Bounds() geometry.Bounds { return g.bounds }

// Weight returns the glyph pixel count.
func (g *Glyph) Weight() int { return g.weight }

// Shape returns the assigned shape, NoShape if none.
func (g *Glyph) Shape() Shape {
	if g.eval == nil {
		return NoShape
	}
	return g.eval.Shape
}

// Evaluation returns the current evaluation, if any.
func (g *Glyph) Evaluation() (Evaluation, bool) {
	if g.eval == nil {
		return Evaluation{}, false
	}
	return *g.eval, true
}

// Grade returns the grade of the current evaluation, 0 if unassigned.
func (g *Glyph) Grade() float64 {
	if g.eval == nil {
		return 0
	}
	return g.eval.Grade
}

// IsKnown reports whether a shape is assigned.
func (g *Glyph) IsKnown() bool { return g.eval != nil && g.eval.Shape != NoShape }

// IsManual reports whether the shape was assigned by a user.
func (g *Glyph) IsManual() bool { return g.manual }

// IsActive reports whether the glyph currently owns its sections.
func (g *Glyph) IsActive() bool { return g.active }

// SetEvaluation assigns a shape with its grade.
func (g *Glyph) SetEvaluation(e Evaluation) {
	if e.Shape == NoShape {
		g.eval = nil
		return
	}
	g.eval = &e
}

// SetShape assigns a shape with the given grade.
func (g *Glyph) SetShape(shape Shape, grade float64) {
	g.SetEvaluation(Evaluation{Shape: shape, Grade: grade})
}

// SetManualShape assigns a shape on behalf of a user. Correctors leave manual
// glyphs alone.
func (g *Glyph) SetManualShape(shape Shape) {
	g.SetShape(shape, AlgorithmGrade)
	g.manual = shape != NoShape
}

// Deassign clears the shape.
func (g *Glyph) Deassign() {
	g.eval = nil
	g.circle = nil
	g.text = nil
}

// Forbid prevents the shape from being assigned to this glyph again.
func (g *Glyph) Forbid(shape Shape) {
	if g.forbidden == nil {
		g.forbidden = make(ShapeSet)
	}
	g.forbidden[shape] = struct{}{}
}

// IsShapeForbidden reports whether the shape was forbidden on the glyph.
func (g *Glyph) IsShapeForbidden(shape Shape) bool {
	return g.forbidden.Contains(shape)
}

// ForbiddenShapes returns the forbidden shapes.
func (g *Glyph) ForbiddenShapes() []Shape {
	return g.forbidden.Sorted()
}

// LeftStem returns the stem linked on the left side, if any.
func (g *Glyph) LeftStem() *Glyph { return g.leftStem }

// RightStem returns the stem linked on the right side, if any.
func (g *Glyph) RightStem() *Glyph { return g.rightStem }

// SetStems links the glyph to its stems (nil for none).
func (g *Glyph) SetStems(left, right *Glyph) {
	g.leftStem, g.rightStem = left, right
}

// StemCount returns the number of linked stems.
func (g *Glyph) StemCount() int {
	n := 0
	if g.leftStem != nil {
		n++
	}
	if g.rightStem != nil {
		n++
	}
	return n
}

// Circle returns the cached circle, computed by slur analysis.
func (g *Glyph) Circle() *geometry.Circle { return g.circle }

// SetCircle caches a circle on the glyph.
func (g *Glyph) SetCircle(c *geometry.Circle) { g.circle = c }

// TextInfo returns the text attached to a TEXT glyph.
func (g *Glyph) TextInfo() *TextInfo { return g.text }

// SetTextInfo attaches recognized text.
func (g *Glyph) SetTextInfo(info *TextInfo) { g.text = info }

// MeanThickness returns the weight divided by the glyph length along the
// orientation (width for Horizontal, height for Vertical).
func (g *Glyph) MeanThickness(o lag.Orientation) float64 {
	length := g.bounds.Width()
	if o == lag.Vertical {
		length = g.bounds.Height()
	}
	if length == 0 {
		return 0
	}
	return float64(g.weight) / float64(length)
}

// Points returns the coordinates of all glyph pixels.
func (g *Glyph) Points() (xs, ys []float64) {
	xs = make([]float64, 0, g.weight)
	ys = make([]float64, 0, g.weight)
	for _, s := range g.sections {
		xs, ys = s.AppendPoints(xs, ys)
	}
	return xs, ys
}

// Centroid returns the mass center of the glyph.
func (g *Glyph) Centroid() geometry.Point {
	var bc geometry.Barycenter
	for _, s := range g.sections {
		s.Cumulate(&bc, s.Bounds())
	}
	return bc.Center()
}

// CentroidIn returns the mass center of the glyph pixels inside roi, and
// false when roi holds no pixel.
func (g *Glyph) CentroidIn(roi geometry.Bounds) (geometry.Point, bool) {
	var bc geometry.Barycenter
	for _, s := range g.sections {
		s.Cumulate(&bc, roi)
	}
	if bc.Empty() {
		return geometry.Point{}, false
	}
	return bc.Center(), true
}

// StartPoint returns the barycenter of the leftmost pixel column.
func (g *Glyph) StartPoint() geometry.Point {
	p, _ := g.CentroidIn(geometry.Bounds{X1: g.bounds.X1, Y1: g.bounds.Y1, X2: g.bounds.X1 + 1, Y2: g.bounds.Y2})
	return p
}

// StopPoint returns the barycenter of the rightmost pixel column.
func (g *Glyph) StopPoint() geometry.Point {
	p, _ := g.CentroidIn(geometry.Bounds{X1: g.bounds.X2 - 1, Y1: g.bounds.Y1, X2: g.bounds.X2, Y2: g.bounds.Y2})
	return p
}

// Image renders the glyph in black on a white background, with a white
// margin around its bounds.
func (g *Glyph) Image(margin int) *image.Gray {
	b := g.bounds.Grow(margin, margin)
	img := image.NewGray(image.Rect(0, 0, b.Width(), b.Height()))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	for _, s := range g.sections {
		s.ForEachPixel(func(x, y int) {
			img.SetGray(x-b.X1, y-b.Y1, color.Gray{Y: 0})
		})
	}
	return img
}

// String returns a short description for logs.
func (g *Glyph) String() string {
	state := "transient"
	switch {
	case g.active:
		state = "active"
	case g.id != 0:
		state = "inactive"
	}
	return fmt.Sprintf("glyph#%d{%s %v w=%d %s}", g.id, g.Shape(), g.bounds, g.weight, state)
}

// SortByAbscissa orders glyphs left to right, then top to bottom, then by id.
func SortByAbscissa(glyphs []*Glyph) {
	sort.SliceStable(glyphs, func(i, j int) bool {
		a, b := glyphs[i].bounds, glyphs[j].bounds
		if a.X1 != b.X1 {
			return a.X1 < b.X1
		}
		if a.Y1 != b.Y1 {
			return a.Y1 < b.Y1
		}
		return glyphs[i].id < glyphs[j].id
	})
}

// SortByWeight orders glyphs by decreasing weight, then by id.
func SortByWeight(glyphs []*Glyph) {
	sort.SliceStable(glyphs, func(i, j int) bool {
		if glyphs[i].weight != glyphs[j].weight {
			return glyphs[i].weight > glyphs[j].weight
		}
		return glyphs[i].id < glyphs[j].id
	})
}
