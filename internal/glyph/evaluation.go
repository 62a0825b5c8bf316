package glyph

import "fmt"

// AlgorithmGrade is the grade given to shapes assigned by geometric rules
// rather than by the classifier.
const AlgorithmGrade = 1.0

// Evaluation is a shape with the confidence it was assigned with.
type Evaluation struct {
	Shape Shape   `json:"shape"`
	Grade float64 `json:"grade"` // in [0, 1], higher is better
}

// String returns "SHAPE(0.87)".
func (e Evaluation) String() string {
	return fmt.Sprintf("%s(%.2f)", e.Shape, e.Grade)
}

// Classifier assigns shapes to glyphs. It is the statistical classifier the
// pattern engine consults; its internals are out of scope here.
type Classifier interface {
	// Vote returns the best evaluation of g whose shape passes filter (an
	// empty filter allows any shape) and whose grade is at least minGrade,
	// or nil. Shapes forbidden on g must never be returned.
	Vote(g *Glyph, ctx Context, minGrade float64, filter ShapeSet) *Evaluation
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(g *Glyph, ctx Context, minGrade float64, filter ShapeSet) *Evaluation

// Vote calls f.
func (f ClassifierFunc) Vote(g *Glyph, ctx Context, minGrade float64, filter ShapeSet) *Evaluation {
	return f(g, ctx, minGrade, filter)
}

// Context is what a classifier may look at besides the glyph itself.
type Context struct {
	// System holds the glyph and its neighborhood. May be nil.
	System *System

	// Trial hides the shapes of glyphs being merged. May be nil.
	Trial *Trial
}

// ShapeOf returns the shape of g as seen through the trial.
func (c Context) ShapeOf(g *Glyph) Shape {
	return c.Trial.ShapeOf(g)
}

// Trial is a read-only view of the system in which some glyphs appear
// unassigned.
//
// Compound evaluation looks at the neighborhood of a candidate compound as if
// its parts were already merged: their current shapes must not bias the
// vote. Rather than clearing and restoring those shapes, the parts are hidden
// in a Trial, which leaves the glyphs untouched whatever the outcome.
type Trial struct {
	hidden map[*Glyph]struct{}
}

// NewTrial returns a view hiding the shapes of the given glyphs.
func NewTrial(hidden ...*Glyph) *Trial {
	t := &Trial{hidden: make(map[*Glyph]struct{}, len(hidden))}
	for _, g := range hidden {
		t.hidden[g] = struct{}{}
	}
	return t
}

// Hides reports whether g is hidden. A nil trial hides nothing.
func (t *Trial) Hides(g *Glyph) bool {
	if t == nil {
		return false
	}
	_, ok := t.hidden[g]
	return ok
}

// ShapeOf returns NoShape for hidden glyphs and the glyph shape otherwise.
func (t *Trial) ShapeOf(g *Glyph) Shape {
	if t.Hides(g) {
		return NoShape
	}
	return g.Shape()
}
