package pattern

import (
	"math"
	"sort"

	"github.com/ironsheep/omr-patterns/internal/geometry"
	"github.com/ironsheep/omr-patterns/internal/glyph"
)

// ledgerPattern repairs broken ledgers, then drops ledgers that cannot be:
// inside a staff, without a ledger between them and the staff, or with no
// note to support.
type ledgerPattern struct{ env *Env }

func (p *ledgerPattern) Name() string { return "ledger" }

var noteShapes = glyph.Noteheads.Union(glyph.NewShapeSet(glyph.Stem, glyph.WholeNote))

func (p *ledgerPattern) Run() (int, error) {
	return p.merge() + p.check(), nil
}

func (p *ledgerPattern) merge() int {
	cfg := p.env.Config.Ledger
	dx := p.env.px(cfg.BoxDx)
	maxHeight := p.env.px(cfg.MaxHeight)
	ledgers := glyph.NewShapeSet(glyph.Ledger)

	return mergeSeeds(p.env, p.env.glyphsWith(ledgers), func(*glyph.Glyph) CompoundAdapter {
		return CompoundAdapter{
			ReferenceBox: func(seed *glyph.Glyph) geometry.Bounds { return seed.Bounds().Grow(dx, 0) },
			IsSuitable: func(g *glyph.Glyph) bool {
				return g.Bounds().Height() <= maxHeight && p.env.isPart(g, ledgers)
			},
			Evaluate: VoteEvaluator(p.env.Classifier, cfg.MinGrade, ledgers),
		}
	})
}

type ledgerPitch struct {
	g     *glyph.Glyph
	staff *glyph.Staff
	pitch float64
}

func (p *ledgerPattern) check() int {
	cfg := p.env.Config.Ledger
	sys := p.env.System
	noteBox := func(b geometry.Bounds) geometry.Bounds {
		return b.Grow(p.env.px(cfg.NoteDx), p.env.px(cfg.NoteDy))
	}

	var ledgers []ledgerPitch
	for _, g := range p.env.glyphsWith(glyph.NewShapeSet(glyph.Ledger)) {
		c := g.Bounds().Center()
		staff := sys.StaffAt(c)
		if staff == nil {
			continue
		}
		ledgers = append(ledgers, ledgerPitch{g: g, staff: staff, pitch: staff.PitchPosition(c.Y)})
	}
	// Inner ledgers first, so that removing one invalidates those beyond it.
	sort.SliceStable(ledgers, func(i, j int) bool {
		return math.Abs(ledgers[i].pitch) < math.Abs(ledgers[j].pitch)
	})

	n := 0
	for _, l := range ledgers {
		reason := ""
		switch {
		case math.Abs(l.pitch) < 5:
			reason = "inside staff"
		case math.Abs(l.pitch) >= 7 && !p.hasInnerLedger(l):
			reason = "no inner ledger"
		case !p.env.hasNeighbor(noteBox(l.g.Bounds()), noteShapes, l.g):
			reason = "no note"
		}
		if reason != "" {
			p.env.reject(p.Name(), l.g, reason)
			n++
		}
	}
	return n
}

// hasInnerLedger looks for a ledger one line closer to the staff, on the
// same side and overlapping horizontally.
func (p *ledgerPattern) hasInnerLedger(l ledgerPitch) bool {
	side := math.Copysign(1, l.pitch)
	for _, g := range p.env.System.Glyphs() {
		if g == l.g || g.Shape() != glyph.Ledger {
			continue
		}
		if g.Bounds().HorizontalOverlap(l.g.Bounds()) <= 0 {
			continue
		}
		pitch := l.staff.PitchPosition(g.Bounds().Center().Y)
		if math.Copysign(1, pitch) != side {
			continue
		}
		if d := math.Abs(l.pitch) - math.Abs(pitch); d >= 1 && d <= 3 {
			return true
		}
	}
	return false
}
