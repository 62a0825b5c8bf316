package glyph

import (
	"log/slog"
	"math"

	"github.com/ironsheep/omr-patterns/internal/geometry"
	"github.com/ironsheep/omr-patterns/internal/lag"
)

// System is the glyph and section graph of one system (a group of staves
// read together).
//
// It owns the sections, knows which glyph each section belongs to, and keeps
// every glyph ever registered so that rebuilding the same set of sections
// returns the original glyph, with its forbidden shapes and identity.
//
// System is not safe for concurrent use: one system is processed by one
// goroutine at a time.
type System struct {
	ID     int
	Scale  Scale
	Staves []*Staff

	bounds   geometry.Bounds
	sections []*lag.Section
	owner    map[*lag.Section]*Glyph
	registry map[string]*Glyph
	active   map[*Glyph]struct{}
	nextID   int
	stemGap  int
	logger   *slog.Logger
}

// NewSystem creates a system over the given sections.
//
// Parameters:
//   - id: System identifier, used in logs and reports.
//   - scale: Interline and line thickness of the sheet.
//   - staves: Staves of the system, top to bottom. May be empty.
//   - sections: All sections of the system; none is owned yet.
//
// The system bounds default to the union of section and staff bounds.
func NewSystem(id int, scale Scale, staves []*Staff, sections []*lag.Section) *System {
	s := &System{
		ID:       id,
		Scale:    scale,
		Staves:   staves,
		sections: append([]*lag.Section(nil), sections...),
		owner:    make(map[*lag.Section]*Glyph, len(sections)),
		registry: make(map[string]*Glyph),
		active:   make(map[*Glyph]struct{}),
		nextID:   1,
		stemGap:  int(math.Max(1, math.Round(float64(scale.Interline)/4))),
		logger:   slog.Default(),
	}
	for _, sec := range sections {
		s.bounds = s.bounds.Union(sec.Bounds())
	}
	for _, st := range staves {
		s.bounds = s.bounds.Union(st.Bounds())
	}
	return s
}

// SetLogger replaces the logger used for graph changes.
func (s *System) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Logger returns the system logger.
func (s *System) Logger() *slog.Logger {
	return s.logger
}

// SetBounds overrides the system bounds.
func (s *System) SetBounds(b geometry.Bounds) {
	s.bounds = b
}

// Bounds returns the system bounds.
func (s *System) Bounds() geometry.Bounds {
	return s.bounds
}

// SetStemGap sets the horizontal tolerance, in pixels, used to link glyphs to stems.
func (s *System) SetStemGap(gap int) {
	s.stemGap = gap
}

// Sections returns all sections of the system.
func (s *System) Sections() []*lag.Section {
	return s.sections
}

// GlyphOf returns the active glyph owning the section, or nil.
func (s *System) GlyphOf(sec *lag.Section) *Glyph {
	return s.owner[sec]
}

// Glyphs returns the active glyphs ordered by abscissa.
func (s *System) Glyphs() []*Glyph {
	glyphs := make([]*Glyph, 0, len(s.active))
	for g := range s.active {
		glyphs = append(glyphs, g)
	}
	SortByAbscissa(glyphs)
	return glyphs
}

// GlyphByID returns the registered glyph with that identifier, or nil.
func (s *System) GlyphByID(id int) *Glyph {
	for _, g := range s.registry {
		if g.id == id {
			return g
		}
	}
	return nil
}

// BuildTransientGlyph builds a glyph from sections without touching the graph.
func (s *System) BuildTransientGlyph(sections []*lag.Section) *Glyph {
	return newGlyph(sections)
}

// BuildTransientCompound builds a glyph made of all sections of the parts,
// without touching the graph. The parts keep their sections and shapes.
func (s *System) BuildTransientCompound(parts []*Glyph) *Glyph {
	var sections []*lag.Section
	for _, p := range parts {
		sections = append(sections, p.sections...)
	}
	return newGlyph(sections)
}

// RegisterGlyph gives the glyph an identifier without linking its sections.
//
// If a glyph with the same sections was registered before, that original
// glyph is returned instead and g is discarded.
func (s *System) RegisterGlyph(g *Glyph) *Glyph {
	if orig, ok := s.registry[g.signature]; ok {
		return orig
	}
	g.id = s.nextID
	s.nextID++
	s.registry[g.signature] = g
	return g
}

// Registered returns the glyph registered with the same sections as g, or nil.
// Unlike RegisterGlyph, it never registers g.
func (s *System) Registered(g *Glyph) *Glyph {
	return s.registry[g.signature]
}

// AddGlyph registers the glyph and makes it the owner of its sections.
//
// Any other glyph owning one of these sections is replaced wholesale: its
// shape is cleared, all its sections are released and it leaves the active
// set. Returns the glyph actually stored, which is the original one when the
// same sections were registered before.
func (s *System) AddGlyph(g *Glyph) *Glyph {
	g = s.RegisterGlyph(g)
	for _, sec := range g.sections {
		if prev := s.owner[sec]; prev != nil && prev != g {
			s.detach(prev)
		}
	}
	for _, sec := range g.sections {
		s.owner[sec] = g
	}
	if !g.active {
		g.active = true
		s.active[g] = struct{}{}
		s.logger.Debug("glyph added", "system", s.ID, "glyph", g.id, "sections", g.signature)
	}
	return g
}

// RemoveGlyph takes the glyph out of the active set and releases its
// sections. Its shape is left as is.
func (s *System) RemoveGlyph(g *Glyph) {
	if !g.active {
		return
	}
	for _, sec := range g.sections {
		if s.owner[sec] == g {
			delete(s.owner, sec)
		}
	}
	g.active = false
	delete(s.active, g)
	for other := range s.active {
		if other.leftStem == g {
			other.leftStem = nil
		}
		if other.rightStem == g {
			other.rightStem = nil
		}
	}
	s.logger.Debug("glyph removed", "system", s.ID, "glyph", g.id)
}

// detach removes a glyph replaced by a new section partition.
func (s *System) detach(g *Glyph) {
	if g.IsKnown() {
		s.logger.Debug("glyph replaced", "system", s.ID, "glyph", g.id, "shape", g.Shape().String())
	}
	g.Deassign()
	g.manual = false
	s.RemoveGlyph(g)
}

// StaffAt returns the staff vertically closest to the point, or nil when the
// system has no staff.
func (s *System) StaffAt(p geometry.Point) *Staff {
	var best *Staff
	bestDist := math.Inf(1)
	for _, st := range s.Staves {
		d := st.VerticalDistance(p.Y)
		if d < bestDist {
			best, bestDist = st, d
		}
	}
	return best
}

// StemSymbolsOf returns the active glyphs linked to the stem.
func (s *System) StemSymbolsOf(stem *Glyph) []*Glyph {
	var symbols []*Glyph
	for _, g := range s.Glyphs() {
		if g != stem && (g.leftStem == stem || g.rightStem == stem) {
			symbols = append(symbols, g)
		}
	}
	return symbols
}

// ConnectStems recomputes the stem links of every active glyph that is not a
// stem itself.
//
// A stem is linked when its box meets the glyph box widened by the stem gap.
// Stems whose center lies left of the glyph center are left stems, the others
// right stems; on each side the closest stem wins.
func (s *System) ConnectStems() {
	glyphs := s.Glyphs()
	var stems []*Glyph
	for _, g := range glyphs {
		if g.Shape() == Stem {
			stems = append(stems, g)
		}
	}

	for _, g := range glyphs {
		if g.Shape() == Stem {
			g.SetStems(nil, nil)
			continue
		}
		if g.IsKnown() && !StemSymbols.Contains(g.Shape()) {
			g.SetStems(nil, nil)
			continue
		}

		box := g.bounds.Grow(s.stemGap, 0)
		center := g.bounds.Center().X
		var left, right *Glyph
		leftDist, rightDist := math.Inf(1), math.Inf(1)
		for _, stem := range stems {
			sb := stem.bounds
			if !sb.Intersects(box) {
				continue
			}
			sc := sb.Center().X
			d := math.Abs(sc - center)
			if sc < center {
				if d < leftDist {
					left, leftDist = stem, d
				}
			} else if d < rightDist {
				right, rightDist = stem, d
			}
		}
		g.SetStems(left, right)
	}
}

// Refresh brings the glyph set back to a consistent state after corrections.
//
// Sections left without owner (released by split or discarded glyphs) are
// grouped into connected components, each becoming a glyph. Stem links are
// recomputed. Every unassigned, non-manual glyph is then submitted to the
// classifier at minGrade.
//
// Returns the number of glyphs that received a shape.
func (s *System) Refresh(c Classifier, minGrade float64) int {
	var orphans []*lag.Section
	for _, sec := range s.sections {
		if s.owner[sec] == nil {
			orphans = append(orphans, sec)
		}
	}
	for _, comp := range lag.Components(orphans) {
		s.AddGlyph(s.BuildTransientGlyph(comp))
	}
	s.ConnectStems()

	if c == nil {
		return 0
	}

	assigned := 0
	for _, g := range s.Glyphs() {
		if g.IsKnown() || g.IsManual() {
			continue
		}
		if e := c.Vote(g, Context{System: s}, minGrade, nil); e != nil && !g.IsShapeForbidden(e.Shape) {
			g.SetEvaluation(*e)
			assigned++
		}
	}
	if assigned > 0 {
		s.ConnectStems()
	}

	s.logger.Debug("system refreshed", "system", s.ID, "orphans", len(orphans), "assigned", assigned)
	return assigned
}
