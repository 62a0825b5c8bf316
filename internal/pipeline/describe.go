package pipeline

import (
	"github.com/ironsheep/omr-patterns/internal/geometry"
	"github.com/ironsheep/omr-patterns/internal/glyph"
)

// GlyphInfo is the serializable view of a glyph.
type GlyphInfo struct {
	ID        int             `json:"id"`
	Shape     glyph.Shape     `json:"shape"`
	Grade     float64         `json:"grade,omitempty"`
	Manual    bool            `json:"manual,omitempty"`
	Bounds    geometry.Bounds `json:"bounds"`
	Weight    int             `json:"weight"`
	Sections  []int           `json:"sections"`
	Stems     int             `json:"stems,omitempty"`
	Forbidden []glyph.Shape   `json:"forbidden,omitempty"`
	Text      *glyph.TextInfo `json:"text,omitempty"`
	Circle    *CircleInfo     `json:"circle,omitempty"`
}

// CircleInfo is the serializable view of a slur circle.
type CircleInfo struct {
	Center   geometry.Point  `json:"center"`
	Radius   float64         `json:"radius"`
	Distance float64         `json:"distance"`
	Curve    *geometry.Cubic `json:"curve,omitempty"`

	// Valid is set by FitCircle only.
	Valid bool `json:"valid,omitempty"`
}

func describeCircle(c *geometry.Circle) *CircleInfo {
	return &CircleInfo{
		Center:   c.Center,
		Radius:   c.Radius,
		Distance: c.Distance,
		Curve:    c.Curve(),
	}
}

// Describe lists the active glyphs of sys by abscissa.
func Describe(sys *glyph.System) []GlyphInfo {
	glyphs := sys.Glyphs()
	infos := make([]GlyphInfo, 0, len(glyphs))
	for _, g := range glyphs {
		info := GlyphInfo{
			ID:        g.ID(),
			Shape:     g.Shape(),
			Grade:     g.Grade(),
			Manual:    g.IsManual(),
			Bounds:    g.Bounds(),
			Weight:    g.Weight(),
			Stems:     g.StemCount(),
			Forbidden: g.ForbiddenShapes(),
			Text:      g.TextInfo(),
		}
		for _, s := range g.Members() {
			info.Sections = append(info.Sections, s.ID())
		}
		if c := g.Circle(); c != nil {
			info.Circle = describeCircle(c)
		}
		infos = append(infos, info)
	}
	return infos
}
