package pattern

import (
	"image"
	"image/color"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironsheep/omr-patterns/internal/config"
	"github.com/ironsheep/omr-patterns/internal/glyph"
	"github.com/ironsheep/omr-patterns/internal/lag"
)

var testScale = glyph.Scale{Interline: 20, LineThickness: 3}

// rectSection creates a vertical section filling a w×h rectangle at (x, y).
func rectSection(id, x, y, w, h int) *lag.Section {
	runs := make([]lag.Run, w)
	for i := range runs {
		runs[i] = lag.Run{Start: y, Length: h}
	}
	return lag.NewSection(id, lag.Vertical, x, runs)
}

// newEnv wraps a system with default settings and a silent logger.
func newEnv(sys *glyph.System, c glyph.Classifier) *Env {
	return &Env{
		System:     sys,
		Classifier: c,
		Config:     config.DefaultConfig(),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// addGlyph registers a glyph over the sections with the given shape.
func addGlyph(sys *glyph.System, shape glyph.Shape, grade float64, sections ...*lag.Section) *glyph.Glyph {
	g := sys.AddGlyph(sys.BuildTransientGlyph(sections))
	if shape != glyph.NoShape {
		g.SetShape(shape, grade)
	}
	return g
}

// voteFor returns a classifier that answers shape with grade whenever the
// filter allows it, and nothing otherwise.
func voteFor(shape glyph.Shape, grade float64) glyph.Classifier {
	return glyph.ClassifierFunc(func(g *glyph.Glyph, _ glyph.Context, minGrade float64, filter glyph.ShapeSet) *glyph.Evaluation {
		if !filter.Contains(shape) || grade < minGrade || g.IsShapeForbidden(shape) {
			return nil
		}
		return &glyph.Evaluation{Shape: shape, Grade: grade}
	})
}

// never is a classifier that never votes.
var never = glyph.ClassifierFunc(func(*glyph.Glyph, glyph.Context, float64, glyph.ShapeSet) *glyph.Evaluation {
	return nil
})

// blankImage returns a white w×h gray image.
func blankImage(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

// drawArc paints the pixels lying within thickness/2 of the circle, for x in
// [x1, x2].
func drawArc(img *image.Gray, cx, cy, r, thickness float64, x1, x2 int) {
	b := img.Bounds()
	for x := x1; x <= x2; x++ {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			d := math.Hypot(float64(x)-cx, float64(y)-cy)
			if math.Abs(d-r) <= thickness/2 {
				img.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
}

// fillRect paints the rectangle [x1, x2] × [y1, y2].
func fillRect(img *image.Gray, x1, y1, x2, y2 int) {
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			img.SetGray(x, y, color.Gray{Y: 0})
		}
	}
}

// buildSystem extracts the vertical sections of img into a system without
// staves.
func buildSystem(t *testing.T, img *image.Gray) *glyph.System {
	t.Helper()
	l := lag.Build(img, lag.Vertical, 128, 1)
	require.NotEmpty(t, l.Sections)
	return glyph.NewSystem(1, testScale, nil, l.Sections)
}

// heaviest returns the heaviest section.
func heaviest(sections []*lag.Section) *lag.Section {
	var best *lag.Section
	for _, s := range sections {
		if best == nil || s.Weight() > best.Weight() {
			best = s
		}
	}
	return best
}
