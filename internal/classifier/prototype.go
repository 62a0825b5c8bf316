package classifier

import (
	"math"

	"github.com/ironsheep/omr-patterns/internal/config"
	"github.com/ironsheep/omr-patterns/internal/glyph"
)

// Prototype is a shape with its typical dimensions in pixels.
type Prototype struct {
	Shape  glyph.Shape
	Width  float64
	Height float64
	Weight float64
}

// Nearest grades glyphs by their size distance to a set of prototypes.
//
// Features are compared on a logarithmic scale, so being twice too wide costs
// the same as being half as wide. The grade is exp(-distance/spread).
type Nearest struct {
	prototypes []Prototype
	spread     float64
}

// New converts the configured prototypes to pixels for the given scale.
//
// Parameters:
//   - cfg: Classifier settings (prototypes in interline units, spread).
//   - scale: Sheet scale used to convert prototype sizes to pixels.
//
// Returns:
//   - *Nearest: A classifier ready to vote. With no prototype it never votes.
func New(cfg config.ClassifierConfig, scale glyph.Scale) *Nearest {
	n := &Nearest{spread: cfg.Spread}
	if n.spread <= 0 {
		n.spread = 1
	}
	for _, p := range cfg.Prototypes {
		n.prototypes = append(n.prototypes, Prototype{
			Shape:  p.Shape,
			Width:  scale.ToPixelsFloat(p.Width),
			Height: scale.ToPixelsFloat(p.Height),
			Weight: float64(scale.AreaFraction(p.Weight)),
		})
	}
	return n
}

// Prototypes returns the pixel prototypes.
func (n *Nearest) Prototypes() []Prototype {
	return n.prototypes
}

// Vote implements glyph.Classifier.
func (n *Nearest) Vote(g *glyph.Glyph, _ glyph.Context, minGrade float64, filter glyph.ShapeSet) *glyph.Evaluation {
	b := g.Bounds()
	if b.Empty() || g.Weight() == 0 {
		return nil
	}

	var best *glyph.Evaluation
	for _, p := range n.prototypes {
		if !filter.Allows(p.Shape) || g.IsShapeForbidden(p.Shape) {
			continue
		}
		grade := n.grade(float64(b.Width()), float64(b.Height()), float64(g.Weight()), p)
		if grade < minGrade {
			continue
		}
		if best == nil || grade > best.Grade {
			best = &glyph.Evaluation{Shape: p.Shape, Grade: grade}
		}
	}
	return best
}

func (n *Nearest) grade(width, height, weight float64, p Prototype) float64 {
	dw := logRatio(width, p.Width)
	dh := logRatio(height, p.Height)
	dm := logRatio(weight, p.Weight)
	dist := math.Sqrt(dw*dw + dh*dh + dm*dm)
	return math.Exp(-dist / n.spread)
}

func logRatio(v, ref float64) float64 {
	if v <= 0 || ref <= 0 {
		return math.Inf(1)
	}
	return math.Log(v / ref)
}
