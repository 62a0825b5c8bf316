package render

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/omr-patterns/internal/glyph"
	"github.com/ironsheep/omr-patterns/internal/lag"
)

func rectSection(id, x, y, w, h int) *lag.Section {
	runs := make([]lag.Run, w)
	for i := range runs {
		runs[i] = lag.Run{Start: y, Length: h}
	}
	return lag.NewSection(id, lag.Vertical, x, runs)
}

func whitePage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

// testSystem holds a stem at (10,10) and an unassigned glyph at (40,10).
func testSystem() *glyph.System {
	stem := rectSection(1, 10, 10, 2, 20)
	blot := rectSection(2, 40, 10, 6, 6)
	sys := glyph.NewSystem(1, glyph.Scale{Interline: 20, LineThickness: 3}, nil, []*lag.Section{stem, blot})
	sys.AddGlyph(sys.BuildTransientGlyph([]*lag.Section{stem})).SetShape(glyph.Stem, 0.9)
	sys.AddGlyph(sys.BuildTransientGlyph([]*lag.Section{blot}))
	return sys
}

func TestShapeColor(t *testing.T) {
	assert.Equal(t, color.NRGBA{128, 128, 128, 255}, ShapeColor(glyph.NoShape))

	seen := make(map[color.NRGBA]glyph.Shape)
	for _, s := range glyph.AllShapes() {
		c := ShapeColor(s)
		assert.Equal(t, uint8(255), c.A)
		if prev, ok := seen[c]; ok {
			t.Errorf("%s and %s share color %v", prev, s, c)
		}
		seen[c] = s
	}
}

func TestOverlay(t *testing.T) {
	sys := testSystem()

	tests := []struct {
		name       string
		opts       Options
		wantBlot   bool
		wantWidth  int
		wantHeight int
	}{
		{name: "assigned only", opts: Options{}, wantWidth: 60, wantHeight: 40},
		{name: "unassigned too", opts: Options{Unassigned: true}, wantBlot: true, wantWidth: 60, wantHeight: 40},
		{name: "with ids", opts: Options{ShowIDs: true}, wantWidth: 60, wantHeight: 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Overlay(whitePage(60, 40), sys, tt.opts)
			require.Equal(t, tt.wantWidth, out.Bounds().Dx())
			require.Equal(t, tt.wantHeight, out.Bounds().Dy())

			assert.Equal(t, ShapeColor(glyph.Stem), out.NRGBAAt(11, 20))
			assert.Equal(t, ShapeColor(glyph.Stem), out.NRGBAAt(10, 10), "box corner")
			assert.Equal(t, tt.wantBlot, out.NRGBAAt(42, 12) == ShapeColor(glyph.NoShape))
			assert.NotEqual(t, ShapeColor(glyph.NoShape), out.NRGBAAt(55, 35), "background is lightened, not gray")
		})
	}
}

func TestOverlay_KeepsPageCoordinates(t *testing.T) {
	page := whitePage(60, 40)
	region := page.SubImage(image.Rect(5, 5, 60, 40))

	out := Overlay(region, testSystem(), Options{})

	assert.Equal(t, 55, out.Bounds().Dx())
	assert.Equal(t, ShapeColor(glyph.Stem), out.NRGBAAt(11-5, 20-5))
}

func TestOverlay_Scale(t *testing.T) {
	out := Overlay(whitePage(60, 40), testSystem(), Options{Scale: 3})

	assert.Equal(t, 180, out.Bounds().Dx())
	assert.Equal(t, 120, out.Bounds().Dy())
	assert.Equal(t, ShapeColor(glyph.Stem), out.NRGBAAt(34, 60))
}

func TestEncodePNGBase64(t *testing.T) {
	out := Overlay(whitePage(20, 10), testSystem(), Options{})

	s, err := EncodePNGBase64(out)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(s)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, out.Bounds(), img.Bounds())
}
