package pattern

import (
	"math"

	"github.com/ironsheep/omr-patterns/internal/geometry"
	"github.com/ironsheep/omr-patterns/internal/glyph"
)

// doubleBeamPattern merges stacked beam pieces into double or triple beams.
type doubleBeamPattern struct{ env *Env }

func (p *doubleBeamPattern) Name() string { return "double-beam" }

func (p *doubleBeamPattern) Run() (int, error) {
	cfg := p.env.Config.DoubleBeam
	dy := p.env.px(cfg.BoxDy)
	parts := glyph.Beams

	return mergeSeeds(p.env, p.env.glyphsWith(glyph.NewShapeSet(glyph.Beam)), func(*glyph.Glyph) CompoundAdapter {
		return CompoundAdapter{
			ReferenceBox: func(seed *glyph.Glyph) geometry.Bounds { return seed.Bounds().Grow(0, dy) },
			IsSuitable:   func(g *glyph.Glyph) bool { return p.env.isPart(g, parts) },
			Evaluate:     VoteEvaluator(p.env.Classifier, cfg.MinGrade, glyph.MultipleBeams),
		}
	}), nil
}

// fermataDotPattern merges a fermata arc with the dot it encloses.
type fermataDotPattern struct{ env *Env }

func (p *fermataDotPattern) Name() string { return "fermata-dot" }

func (p *fermataDotPattern) Run() (int, error) {
	cfg := p.env.Config.FermataDot
	maxWeight := p.env.area(cfg.DotMaxWeight)
	dy := p.env.px(cfg.BoxDy)

	return mergeSeeds(p.env, p.env.glyphsWith(glyph.FermataArcs), func(*glyph.Glyph) CompoundAdapter {
		return CompoundAdapter{
			ReferenceBox: func(seed *glyph.Glyph) geometry.Bounds { return seed.Bounds().Grow(0, dy) },
			IsSuitable: func(g *glyph.Glyph) bool {
				return g.Weight() <= maxWeight && p.env.isPart(g, glyph.Dots)
			},
			IsClose: func(box geometry.Bounds, g *glyph.Glyph) bool {
				return box.ContainsPoint(g.Bounds().Center())
			},
			Evaluate: VoteEvaluator(p.env.Classifier, cfg.MinGrade, glyph.Fermatas),
		}
	}), nil
}

// fortePattern merges an 'f' with the dynamics letters around it.
type fortePattern struct{ env *Env }

func (p *fortePattern) Name() string { return "forte" }

func (p *fortePattern) Run() (int, error) {
	cfg := p.env.Config.Forte
	dx := p.env.px(cfg.BoxDx)
	maxWeight := p.env.area(cfg.PartMaxWeight)

	return mergeSeeds(p.env, p.env.glyphsWith(glyph.NewShapeSet(glyph.DynamicsF)), func(*glyph.Glyph) CompoundAdapter {
		return CompoundAdapter{
			ReferenceBox: func(seed *glyph.Glyph) geometry.Bounds { return seed.Bounds().Grow(dx, 0) },
			IsSuitable: func(g *glyph.Glyph) bool {
				return g.Weight() <= maxWeight && p.env.isPart(g, glyph.DynamicsLetters)
			},
			Evaluate: VoteEvaluator(p.env.Classifier, cfg.MinGrade, glyph.Dynamics),
		}
	}), nil
}

// timePattern merges a time digit with the digit above or below it into a
// full time signature.
type timePattern struct{ env *Env }

func (p *timePattern) Name() string { return "time" }

func (p *timePattern) Run() (int, error) {
	cfg := p.env.Config.Time
	dx := p.env.px(cfg.BoxDx)
	sys := p.env.System

	return mergeSeeds(p.env, p.env.glyphsWith(glyph.TimeDigits), func(*glyph.Glyph) CompoundAdapter {
		return CompoundAdapter{
			ReferenceBox: func(seed *glyph.Glyph) geometry.Bounds {
				b := seed.Bounds()
				box := geometry.Bounds{X1: b.X1 - dx, Y1: b.Y1, X2: b.X2 + dx, Y2: b.Y2}
				if staff := sys.StaffAt(b.Center()); staff != nil {
					box.Y1 = int(math.Floor(staff.Top()))
					box.Y2 = int(math.Ceil(staff.Bottom())) + 1
				}
				return box
			},
			IsSuitable: func(g *glyph.Glyph) bool { return p.env.isPart(g, glyph.TimeDigits) },
			Evaluate:   VoteEvaluator(p.env.Classifier, cfg.MinGrade, glyph.WholeTimes),
		}
	}), nil
}

// bassPattern assembles F clefs from a body and its two dots at the start
// of a staff.
type bassPattern struct{ env *Env }

func (p *bassPattern) Name() string { return "bass" }

func (p *bassPattern) Run() (int, error) {
	cfg := p.env.Config.Bass
	zoneWidth := p.env.px(cfg.ClefZone)
	dx := p.env.px(cfg.BoxDx)
	dotWeight := p.env.area(cfg.DotMaxWeight)

	var seeds []*glyph.Glyph
	for _, st := range p.env.System.Staves {
		zone := st.Bounds()
		zone.X2 = zone.X1 + zoneWidth
		for _, g := range p.env.System.Glyphs() {
			if !zone.ContainsPoint(g.Bounds().Center()) || g.Weight() <= dotWeight {
				continue
			}
			if glyph.Clefs.Contains(g.Shape()) || !p.env.isPart(g, glyph.NewShapeSet(glyph.Clutter)) {
				continue
			}
			seeds = append(seeds, g)
		}
	}

	return mergeSeeds(p.env, seeds, func(*glyph.Glyph) CompoundAdapter {
		return CompoundAdapter{
			ReferenceBox: func(seed *glyph.Glyph) geometry.Bounds { return seed.Bounds().Grow(dx, 0) },
			IsSuitable: func(g *glyph.Glyph) bool {
				return g.Weight() <= dotWeight && p.env.isPart(g, glyph.Dots)
			},
			Evaluate: VoteEvaluator(p.env.Classifier, cfg.MinGrade, glyph.BassClefs),
		}
	}), nil
}
