package pattern

import (
	"github.com/ironsheep/omr-patterns/internal/geometry"
	"github.com/ironsheep/omr-patterns/internal/glyph"
)

// CompoundAdapter tells BuildCompound where to look, what to take and how to
// judge the result. Each function must be free of side effects on the graph.
type CompoundAdapter struct {
	// ReferenceBox returns the search area around the seed.
	ReferenceBox func(seed *glyph.Glyph) geometry.Bounds

	// IsSuitable filters candidate glyphs regardless of their position.
	IsSuitable func(g *glyph.Glyph) bool

	// IsClose reports whether a candidate lies in the search area. When nil,
	// the candidate bounds must intersect the box.
	IsClose func(box geometry.Bounds, g *glyph.Glyph) bool

	// Evaluate judges the transient compound and returns the evaluation to
	// commit, or nil to reject it. ctx hides the shapes of the parts.
	Evaluate func(compound *glyph.Glyph, ctx glyph.Context) *glyph.Evaluation
}

// BuildCompound merges a seed with its close, suitable neighbors if the
// result is accepted.
//
// Parameters:
//   - sys: The system owning the glyphs.
//   - seed: The glyph the search starts from.
//   - includeSeed: Whether the seed is part of the compound or only its anchor.
//   - universe: Candidate glyphs, in preference order. Inactive ones are skipped.
//   - adapter: Search area, filters and evaluation.
//
// Returns:
//   - *glyph.Glyph: The committed compound, or nil when nothing was merged.
//
// The compound is evaluated through a glyph.Trial in which its parts appear
// unassigned; the parts themselves are never modified. On rejection the graph
// is exactly as before. On acceptance the compound is added to the system,
// which replaces the parts, and receives the evaluation. An evaluation whose
// shape was already forbidden on the same section set is rejected.
func BuildCompound(sys *glyph.System, seed *glyph.Glyph, includeSeed bool, universe []*glyph.Glyph, adapter CompoundAdapter) *glyph.Glyph {
	box := adapter.ReferenceBox(seed)
	isClose := adapter.IsClose
	if isClose == nil {
		isClose = func(box geometry.Bounds, g *glyph.Glyph) bool {
			return box.Intersects(g.Bounds())
		}
	}

	var parts []*glyph.Glyph
	if includeSeed {
		parts = append(parts, seed)
	}
	collected := 0
	for _, g := range universe {
		if g == seed || !g.IsActive() {
			continue
		}
		if !adapter.IsSuitable(g) || !isClose(box, g) {
			continue
		}
		parts = append(parts, g)
		collected++
	}
	if collected == 0 {
		return nil
	}

	compound := sys.BuildTransientCompound(parts)
	ctx := glyph.Context{System: sys, Trial: glyph.NewTrial(parts...)}
	ev := adapter.Evaluate(compound, ctx)
	if ev == nil || ev.Shape == glyph.NoShape {
		return nil
	}
	if orig := sys.Registered(compound); orig != nil && orig.IsShapeForbidden(ev.Shape) {
		return nil
	}

	g := sys.AddGlyph(compound)
	g.SetEvaluation(*ev)
	sys.Logger().Debug("compound built",
		"system", sys.ID, "seed", seed.ID(), "parts", len(parts), "glyph", g.ID(), "eval", ev.String())
	return g
}

// VoteEvaluator evaluates compounds with the classifier restricted to a set of
// shapes.
func VoteEvaluator(c glyph.Classifier, minGrade float64, filter glyph.ShapeSet) func(*glyph.Glyph, glyph.Context) *glyph.Evaluation {
	return func(compound *glyph.Glyph, ctx glyph.Context) *glyph.Evaluation {
		return c.Vote(compound, ctx, minGrade, filter)
	}
}

// mergeSeeds runs BuildCompound from every still active seed and counts
// the compounds built.
func mergeSeeds(e *Env, seeds []*glyph.Glyph, adapter func(seed *glyph.Glyph) CompoundAdapter) int {
	n := 0
	for _, seed := range seeds {
		if !seed.IsActive() {
			continue
		}
		if BuildCompound(e.System, seed, true, e.System.Glyphs(), adapter(seed)) != nil {
			n++
		}
	}
	return n
}
