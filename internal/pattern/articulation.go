package pattern

import (
	"github.com/ironsheep/omr-patterns/internal/geometry"
	"github.com/ironsheep/omr-patterns/internal/glyph"
)

// articulationPattern repairs broken articulations, then drops those with
// no note in reach.
type articulationPattern struct{ env *Env }

func (p *articulationPattern) Name() string { return "articulation" }

func (p *articulationPattern) Run() (int, error) {
	cfg := p.env.Config.Articulation
	margin := p.env.px(cfg.BoxMargin)
	maxWeight := p.env.area(cfg.PartMaxWeight)

	n := mergeSeeds(p.env, p.env.glyphsWith(glyph.Articulations), func(*glyph.Glyph) CompoundAdapter {
		return CompoundAdapter{
			ReferenceBox: func(seed *glyph.Glyph) geometry.Bounds { return seed.Bounds().Grow(margin, margin) },
			IsSuitable: func(g *glyph.Glyph) bool {
				return g.Weight() <= maxWeight && p.env.isPart(g, glyph.Articulations)
			},
			Evaluate: VoteEvaluator(p.env.Classifier, cfg.MinGrade, glyph.Articulations),
		}
	})

	dx := p.env.px(cfg.NoteDx)
	dy := p.env.px(cfg.NoteMaxDy)
	for _, g := range p.env.glyphsWith(glyph.Articulations) {
		if !p.env.hasNeighbor(g.Bounds().Grow(dx, dy), noteShapes, g) {
			p.env.reject(p.Name(), g, "no note")
			n++
		}
	}
	return n, nil
}
