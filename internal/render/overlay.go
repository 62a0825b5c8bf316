package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/omr-patterns/internal/geometry"
	"github.com/ironsheep/omr-patterns/internal/glyph"
)

// goldenAngle spreads consecutive shape codes around the hue circle.
const goldenAngle = 137.508

// curveSteps is the number of segments used to draw a slur curve.
const curveSteps = 64

// Options controls the overlay.
type Options struct {
	// Scale enlarges the result with nearest-neighbor sampling. Values below 1
	// mean 1.
	Scale int

	// ShowIDs prints glyph ids above their boxes.
	ShowIDs bool

	// Unassigned also draws glyphs without a shape.
	Unassigned bool
}

// ShapeColor returns the overlay color of a shape.
func ShapeColor(s glyph.Shape) color.NRGBA {
	if s == glyph.NoShape {
		return color.NRGBA{128, 128, 128, 255}
	}
	hue := math.Mod(float64(s)*goldenAngle, 360)
	r, g, b := colorful.Hsv(hue, 0.85, 0.85).RGB255()
	return color.NRGBA{r, g, b, 255}
}

// Overlay draws the active glyphs of sys over base.
//
// Parameters:
//   - base: The page, or the part of it the system was built from. Glyph
//     coordinates are page coordinates, so base must keep them.
//   - sys: The system whose glyphs are drawn.
//   - opts: Drawing options.
//
// Returns a new image. base is not modified.
func Overlay(base image.Image, sys *glyph.System, opts Options) *image.NRGBA {
	origin := base.Bounds().Min
	canvas := imaging.Clone(base)
	canvas = imaging.AdjustContrast(canvas, -60)

	for _, g := range sys.Glyphs() {
		if g.Shape() == glyph.NoShape && !opts.Unassigned {
			continue
		}
		c := ShapeColor(g.Shape())
		for _, s := range g.Members() {
			s.ForEachPixel(func(x, y int) {
				canvas.SetNRGBA(x-origin.X, y-origin.Y, c)
			})
		}
		box := g.Bounds().Translate(-origin.X, -origin.Y)
		drawBox(canvas, box, c)

		if circle := g.Circle(); circle != nil && g.Shape() == glyph.Slur {
			drawCurve(canvas, circle.Curve(), origin, c)
		}
		if opts.ShowIDs {
			drawLabel(canvas, strconv.Itoa(g.ID()), box.X1, box.Y1-2, c)
		}
	}

	if opts.Scale > 1 {
		b := canvas.Bounds()
		canvas = imaging.Resize(canvas, b.Dx()*opts.Scale, b.Dy()*opts.Scale, imaging.NearestNeighbor)
	}
	return canvas
}

// drawBox outlines b. The max corner is exclusive.
func drawBox(img *image.NRGBA, b geometry.Bounds, c color.NRGBA) {
	if b.Empty() {
		return
	}
	for x := b.X1; x < b.X2; x++ {
		img.SetNRGBA(x, b.Y1, c)
		img.SetNRGBA(x, b.Y2-1, c)
	}
	for y := b.Y1; y < b.Y2; y++ {
		img.SetNRGBA(b.X1, y, c)
		img.SetNRGBA(b.X2-1, y, c)
	}
}

func drawCurve(img *image.NRGBA, q *geometry.Cubic, origin image.Point, c color.NRGBA) {
	if q == nil {
		return
	}
	points := q.Flatten(curveSteps)
	for i := 1; i < len(points); i++ {
		a := points[i-1].Sub(geometry.Point{X: float64(origin.X), Y: float64(origin.Y)})
		b := points[i].Sub(geometry.Point{X: float64(origin.X), Y: float64(origin.Y)})
		drawSegment(img, a, b, c)
	}
}

// drawSegment samples the segment once per pixel of its longest side.
func drawSegment(img *image.NRGBA, a, b geometry.Point, c color.NRGBA) {
	n := int(math.Ceil(math.Max(math.Abs(b.X-a.X), math.Abs(b.Y-a.Y))))
	if n == 0 {
		img.SetNRGBA(int(math.Round(a.X)), int(math.Round(a.Y)), c)
		return
	}
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		p := a.Add(b.Sub(a).Scale(t))
		img.SetNRGBA(int(math.Round(p.X)), int(math.Round(p.Y)), c)
	}
}

func drawLabel(img *image.NRGBA, text string, x, y int, c color.NRGBA) {
	if y < basicfont.Face7x13.Ascent {
		y = basicfont.Face7x13.Ascent
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// EncodePNGBase64 encodes img as a base64 PNG string.
func EncodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode overlay: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
