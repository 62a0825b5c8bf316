package pattern

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/ironsheep/omr-patterns/internal/geometry"
	"github.com/ironsheep/omr-patterns/internal/glyph"
	"github.com/ironsheep/omr-patterns/internal/ocr"
)

// TextChecker decides whether a compound of blob glyphs is text.
type TextChecker interface {
	// CheckText returns the text information of an accepted compound, or
	// false. parts are the glyphs the compound is made of.
	CheckText(compound *glyph.Glyph, parts []*glyph.Glyph) (*glyph.TextInfo, bool)
}

// ClassifierTextChecker accepts a compound the classifier votes TEXT for.
// The recognized content stays empty.
type ClassifierTextChecker struct {
	Classifier glyph.Classifier
	System     *glyph.System
	MinGrade   float64
}

// CheckText implements TextChecker.
func (c *ClassifierTextChecker) CheckText(compound *glyph.Glyph, parts []*glyph.Glyph) (*glyph.TextInfo, bool) {
	ctx := glyph.Context{System: c.System, Trial: glyph.NewTrial(parts...)}
	ev := c.Classifier.Vote(compound, ctx, c.MinGrade, glyph.NewShapeSet(glyph.Text))
	if ev == nil || ev.Shape != glyph.Text {
		return nil, false
	}
	return &glyph.TextInfo{Bounds: compound.Bounds()}, true
}

// OCRTextChecker accepts a compound the OCR engine reads as a single,
// plausible line of text.
type OCRTextChecker struct {
	Engine   ocr.Engine
	Language string
	Scale    glyph.Scale

	// MaxFontSize is the largest acceptable font size, in pixels.
	MaxFontSize float64

	// MinAspect and MaxAspect bound height*characters/width.
	MinAspect float64
	MaxAspect float64

	Logger *slog.Logger
}

// CheckText implements TextChecker.
func (c *OCRTextChecker) CheckText(compound *glyph.Glyph, parts []*glyph.Glyph) (*glyph.TextInfo, bool) {
	lines, err := c.Engine.Recognize(compound.Image(0), c.Language)
	if err != nil {
		c.Logger.Warn("ocr failed", "bounds", compound.Bounds(), "error", err)
		return nil, false
	}
	if len(lines) != 1 {
		return nil, false
	}

	line := lines[0]
	text := strings.TrimSpace(line.Text)
	if text == "" || line.FontSize > c.MaxFontSize {
		return nil, false
	}

	b := compound.Bounds()
	if b.Width() == 0 {
		return nil, false
	}
	aspect := float64(b.Height()*utf8.RuneCountInString(text)) / float64(b.Width())
	if aspect < c.MinAspect || aspect > c.MaxAspect {
		return nil, false
	}
	if isTupletText(text, parts) || !isXMLText(text) {
		return nil, false
	}

	info := &glyph.TextInfo{Content: text, Language: c.Language, Bounds: b}
	if c.Scale.Interline > 0 {
		info.FontSize = line.FontSize / float64(c.Scale.Interline)
	}
	return info, true
}

// isTupletText reports whether the text is just the digit of a tuplet
// found among the parts.
func isTupletText(text string, parts []*glyph.Glyph) bool {
	var tuplet glyph.Shape
	switch text {
	case "3":
		tuplet = glyph.TupletThree
	case "6":
		tuplet = glyph.TupletSix
	default:
		return false
	}
	for _, p := range parts {
		if p.Shape() == tuplet {
			return true
		}
	}
	return false
}

// isXMLText reports whether text is valid UTF-8 made of XML 1.0 characters.
func isXMLText(text string) bool {
	if !utf8.ValidString(text) {
		return false
	}
	for _, r := range text {
		switch {
		case r == 0x09 || r == 0x0A || r == 0x0D:
		case r >= 0x20 && r <= 0xD7FF:
		case r >= 0xE000 && r <= 0xFFFD:
		case r >= 0x10000 && r <= 0x10FFFF:
		default:
			return false
		}
	}
	return true
}

// textual are the shapes a piece of text is often mistaken for.
var textual = glyph.NewShapeSet(glyph.Text, glyph.Character, glyph.Clutter, glyph.Noise, glyph.Dot).
	Union(glyph.DynamicsLetters)

// textPattern aggregates glyphs of some regions of the system into words
// and sentences.
type textPattern struct {
	env     *Env
	name    string
	regions func(*Env) []geometry.Bounds

	// unassignedOnly restricts candidates to glyphs with no shape.
	unassignedOnly bool
}

func newTextPattern(name string, env *Env, regions func(*Env) []geometry.Bounds, unassignedOnly bool) *textPattern {
	return &textPattern{env: env, name: name, regions: regions, unassignedOnly: unassignedOnly}
}

func (p *textPattern) Name() string { return p.name }

func (p *textPattern) Run() (int, error) {
	checker, err := p.checker()
	if err != nil {
		return 0, err
	}
	params := p.env.blobParams()

	n := 0
	for _, region := range p.regions(p.env) {
		if region.Empty() {
			continue
		}
		blobs, small := AggregateBlobs(p.candidates(region), params)
		blobs = PurgeBlobs(blobs, params)
		InsertSmall(blobs, small, params)
		for _, b := range blobs {
			if p.commit(b, checker) {
				n++
			}
		}
	}
	return n, nil
}

func (p *textPattern) checker() (TextChecker, error) {
	cfg := p.env.Config.Text
	if cfg.Checker != "ocr" {
		return &ClassifierTextChecker{
			Classifier: p.env.Classifier,
			System:     p.env.System,
			MinGrade:   cfg.MinGrade,
		}, nil
	}
	if p.env.OCR == nil {
		return nil, fmt.Errorf("text checker %q requires an OCR engine", cfg.Checker)
	}
	return &OCRTextChecker{
		Engine:      p.env.OCR,
		Language:    p.env.Config.OCR.Language,
		Scale:       p.env.System.Scale,
		MaxFontSize: p.env.System.Scale.ToPixelsFloat(cfg.MaxFontSize),
		MinAspect:   cfg.MinAspect,
		MaxAspect:   cfg.MaxAspect,
		Logger:      p.env.Logger,
	}, nil
}

func (p *textPattern) candidates(region geometry.Bounds) []*glyph.Glyph {
	maxHeight := p.env.px(p.env.Config.Text.GlyphMaxHeight)
	var out []*glyph.Glyph
	for _, g := range p.env.System.Glyphs() {
		if g.IsManual() || g.IsShapeForbidden(glyph.Text) {
			continue
		}
		b := g.Bounds()
		if !region.ContainsPoint(b.Center()) || b.Height() > maxHeight || g.StemCount() > 0 {
			continue
		}
		switch {
		case !g.IsKnown():
		case p.unassignedOnly:
			continue
		case textual.Contains(g.Shape()):
		case g.Grade() <= p.env.Config.Compound.PartMaxGrade:
		default:
			continue
		}
		out = append(out, g)
	}
	return out
}

// commit turns a blob into a TEXT glyph when the checker accepts it.
func (p *textPattern) commit(b *Blob, checker TextChecker) bool {
	sys := p.env.System
	compound := sys.BuildTransientCompound(b.Glyphs)
	if orig := sys.Registered(compound); orig != nil {
		if orig.IsShapeForbidden(glyph.Text) || (orig.IsActive() && orig.Shape() == glyph.Text) {
			return false
		}
	}

	info, ok := checker.CheckText(compound, b.Glyphs)
	if !ok {
		p.env.Logger.Debug("text rejected", "pattern", p.name, "system", sys.ID, "bounds", b.Bounds)
		return false
	}

	g := sys.AddGlyph(compound)
	g.SetShape(glyph.Text, glyph.AlgorithmGrade)
	g.SetTextInfo(info)
	p.env.Logger.Debug("text built",
		"pattern", p.name, "system", sys.ID, "glyph", g.ID(), "parts", len(b.Glyphs), "content", info.Content)
	return true
}

// borderRegions returns the areas around the staves: above the first one,
// below the last one, and on both sides.
func borderRegions(env *Env) []geometry.Bounds {
	sys := env.System
	b := sys.Bounds()
	if len(sys.Staves) == 0 {
		return []geometry.Bounds{b}
	}

	first, last := sys.Staves[0], sys.Staves[len(sys.Staves)-1]
	top := int(math.Floor(first.Top())) - env.px(env.Config.Text.StaffMarginAbove)
	bottom := int(math.Ceil(last.Bottom())) + 1 + env.px(env.Config.Text.StaffMarginBelow)
	left, right := first.Left, first.Right+1
	for _, st := range sys.Staves[1:] {
		left = min(left, st.Left)
		right = max(right, st.Right+1)
	}

	return []geometry.Bounds{
		{X1: b.X1, Y1: b.Y1, X2: b.X2, Y2: top},
		{X1: b.X1, Y1: bottom, X2: b.X2, Y2: b.Y2},
		{X1: b.X1, Y1: top, X2: left, Y2: bottom},
		{X1: right, Y1: top, X2: b.X2, Y2: bottom},
	}
}

func systemRegion(env *Env) []geometry.Bounds {
	return []geometry.Bounds{env.System.Bounds()}
}
