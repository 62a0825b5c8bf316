package pattern

import (
	"log/slog"

	"github.com/ironsheep/omr-patterns/internal/config"
	"github.com/ironsheep/omr-patterns/internal/geometry"
	"github.com/ironsheep/omr-patterns/internal/glyph"
	"github.com/ironsheep/omr-patterns/internal/ocr"
)

// Pattern is one corrector run over the glyphs of a system.
type Pattern interface {
	// Name identifies the pattern in sequences, logs and reports.
	Name() string

	// Run inspects and repairs the system glyphs in place and returns the
	// number of glyphs modified.
	Run() (int, error)
}

// Env is what every pattern works with.
type Env struct {
	// System is the glyph graph being corrected. Required.
	System *glyph.System

	// Classifier votes on candidate compounds. Required.
	Classifier glyph.Classifier

	// Config holds the thresholds. DefaultConfig is used when nil.
	Config *config.Config

	// OCR reads text candidates when text.checker is "ocr". May be nil.
	OCR ocr.Engine

	// Logger receives decision records. slog.Default is used when nil.
	Logger *slog.Logger
}

// normalize fills optional fields with their defaults.
func (e *Env) normalize() {
	if e.Config == nil {
		e.Config = config.DefaultConfig()
	}
	if e.Logger == nil {
		e.Logger = slog.Default()
	}
}

// px converts an interline fraction to pixels.
func (e *Env) px(fraction float64) int {
	return e.System.Scale.ToPixels(fraction)
}

// area converts a squared-interline fraction to a pixel count.
func (e *Env) area(fraction float64) int {
	return e.System.Scale.AreaFraction(fraction)
}

// context returns the classifier context for plain votes.
func (e *Env) context() glyph.Context {
	return glyph.Context{System: e.System}
}

// reject clears the glyph shape and forbids it, so that a later refresh
// cannot give it back.
func (e *Env) reject(pattern string, g *glyph.Glyph, reason string) {
	shape := g.Shape()
	g.Deassign()
	if shape != glyph.NoShape {
		g.Forbid(shape)
	}
	e.Logger.Debug("shape rejected",
		"pattern", pattern, "glyph", g.ID(), "shape", shape.String(), "reason", reason)
}

// revote asks the classifier for another shape once forbidden ones are set.
// The glyph is deassigned when nothing acceptable comes back.
func (e *Env) revote(pattern string, g *glyph.Glyph, minGrade float64) {
	old := g.Shape()
	ev := e.Classifier.Vote(g, e.context(), minGrade, nil)
	if ev == nil || g.IsShapeForbidden(ev.Shape) {
		g.Deassign()
		e.Logger.Debug("shape cleared", "pattern", pattern, "glyph", g.ID(), "shape", old.String())
		return
	}
	g.SetEvaluation(*ev)
	e.Logger.Debug("shape changed",
		"pattern", pattern, "glyph", g.ID(), "from", old.String(), "to", ev.Shape.String())
}

// glyphsWith returns the active, non-manual glyphs whose shape is in set.
func (e *Env) glyphsWith(set glyph.ShapeSet) []*glyph.Glyph {
	var out []*glyph.Glyph
	for _, g := range e.System.Glyphs() {
		if !g.IsManual() && set.Contains(g.Shape()) {
			out = append(out, g)
		}
	}
	return out
}

// isPart reports whether g may be absorbed into a compound: not manual and
// either unassigned, weakly assigned, or assigned one of the given shapes.
func (e *Env) isPart(g *glyph.Glyph, shapes glyph.ShapeSet) bool {
	if g.IsManual() {
		return false
	}
	if !g.IsKnown() || shapes.Contains(g.Shape()) {
		return true
	}
	return g.Grade() <= e.Config.Compound.PartMaxGrade
}

// hasNeighbor reports whether an active glyph with a shape in set meets box.
func (e *Env) hasNeighbor(box geometry.Bounds, set glyph.ShapeSet, except *glyph.Glyph) bool {
	for _, g := range e.System.Glyphs() {
		if g != except && set.Contains(g.Shape()) && g.Bounds().Intersects(box) {
			return true
		}
	}
	return false
}
