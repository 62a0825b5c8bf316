package pattern

import (
	"github.com/ironsheep/omr-patterns/internal/geometry"
	"github.com/ironsheep/omr-patterns/internal/glyph"
)

// beamHookPattern drops beam hooks not attached to exactly one stem.
type beamHookPattern struct{ env *Env }

func (p *beamHookPattern) Name() string { return "beam-hook" }

func (p *beamHookPattern) Run() (int, error) {
	n := 0
	for _, g := range p.env.glyphsWith(glyph.NewShapeSet(glyph.BeamHook)) {
		if c := g.StemCount(); c != 1 {
			p.env.reject(p.Name(), g, "stem count")
			n++
		}
	}
	return n, nil
}

// flagPattern drops flags with no stem on their left.
type flagPattern struct{ env *Env }

func (p *flagPattern) Name() string { return "flag" }

func (p *flagPattern) Run() (int, error) {
	n := 0
	for _, g := range p.env.glyphsWith(glyph.Flags) {
		if g.LeftStem() == nil {
			p.env.reject(p.Name(), g, "no left stem")
			n++
		}
	}
	return n, nil
}

// stemPattern drops stems that carry no reliable symbol, together with the
// weak symbols that relied on them.
type stemPattern struct{ env *Env }

func (p *stemPattern) Name() string { return "stem" }

func (p *stemPattern) Run() (int, error) {
	sys := p.env.System
	reliable := p.env.Config.Stem.ReliableGrade
	n := 0

	for _, stem := range p.env.glyphsWith(glyph.NewShapeSet(glyph.Stem)) {
		symbols := sys.StemSymbolsOf(stem)
		supported := false
		for _, s := range symbols {
			if glyph.ReliableStemSymbols.Contains(s.Shape()) && s.Grade() >= reliable {
				supported = true
				break
			}
		}
		if supported {
			continue
		}

		p.env.reject(p.Name(), stem, "no reliable symbol")
		n++
		for _, s := range symbols {
			if s.IsKnown() && !s.IsManual() {
				p.env.reject(p.Name(), s, "stem rejected")
				n++
			}
		}
	}
	return n, nil
}

// alterationPattern recognizes naturals and sharps whose two vertical
// strokes were taken for short stems.
type alterationPattern struct{ env *Env }

func (p *alterationPattern) Name() string { return "alteration" }

func (p *alterationPattern) Run() (int, error) {
	cfg := p.env.Config.Alteration
	maxHeight := p.env.px(cfg.StemMaxHeight)
	maxDx := p.env.System.Scale.ToPixelsFloat(cfg.StemsMaxDx)
	margin := p.env.px(cfg.BoxMargin)

	var stems []*glyph.Glyph
	for _, g := range p.env.glyphsWith(glyph.NewShapeSet(glyph.Stem)) {
		if g.Bounds().Height() <= maxHeight {
			stems = append(stems, g)
		}
	}

	n := 0
	for i, left := range stems {
		if !left.IsActive() {
			continue
		}
		lb := left.Bounds()
		for _, right := range stems[i+1:] {
			if !right.IsActive() {
				continue
			}
			rb := right.Bounds()
			dx := rb.Center().X - lb.Center().X
			if dx <= 0 || dx > maxDx || lb.VerticalOverlap(rb) <= 0 {
				continue
			}

			box := lb.Union(rb).Grow(margin, 0)
			adapter := CompoundAdapter{
				ReferenceBox: func(*glyph.Glyph) geometry.Bounds { return box },
				IsSuitable: func(g *glyph.Glyph) bool {
					return g == right || (g.Shape() != glyph.Stem && p.env.isPart(g, nil))
				},
				Evaluate: VoteEvaluator(p.env.Classifier, cfg.MinGrade, glyph.StemPairs),
			}
			if BuildCompound(p.env.System, left, true, p.env.System.Glyphs(), adapter) != nil {
				n++
				break
			}
		}
	}
	return n, nil
}

// caesuraPattern re-examines caesurae found between staff lines, where a
// caesura cannot stand.
type caesuraPattern struct{ env *Env }

func (p *caesuraPattern) Name() string { return "caesura" }

func (p *caesuraPattern) Run() (int, error) {
	n := 0
	for _, g := range p.env.glyphsWith(glyph.NewShapeSet(glyph.Caesura)) {
		c := g.Bounds().Center()
		staff := p.env.System.StaffAt(c)
		if staff == nil || c.Y <= staff.Top() || c.Y >= staff.Bottom() {
			continue
		}
		g.Forbid(glyph.Caesura)
		p.env.revote(p.Name(), g, p.env.Config.Caesura.MinGrade)
		n++
	}
	return n, nil
}

// clefPattern re-examines clefs lying away from their staff.
type clefPattern struct{ env *Env }

func (p *clefPattern) Name() string { return "clef" }

func (p *clefPattern) Run() (int, error) {
	margin := p.env.System.Scale.ToPixelsFloat(p.env.Config.Clef.StaffMargin)
	n := 0
	for _, g := range p.env.glyphsWith(glyph.Clefs) {
		c := g.Bounds().Center()
		staff := p.env.System.StaffAt(c)
		if staff == nil || staff.VerticalDistance(c.Y) <= margin {
			continue
		}
		for s := range glyph.Clefs {
			g.Forbid(s)
		}
		p.env.revote(p.Name(), g, p.env.Config.Clef.MinGrade)
		n++
	}
	return n, nil
}
