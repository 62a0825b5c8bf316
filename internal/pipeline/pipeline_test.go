package pipeline

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/omr-patterns/internal/config"
	"github.com/ironsheep/omr-patterns/internal/geometry"
	"github.com/ironsheep/omr-patterns/internal/glyph"
	"github.com/ironsheep/omr-patterns/internal/pattern"
)

var testScale = glyph.Scale{Interline: 20, LineThickness: 3}

// writePage saves a white w×h PNG with the given pixels in black.
func writePage(t *testing.T, w, h int, ink func(x, y int) bool) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{255, 255, 255, 255}
			if ink(x, y) {
				c = color.RGBA{0, 0, 0, 255}
			}
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), "page.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

// twoBlocks has a thin bar at x 10..13 and a square at x 50..59.
func twoBlocks(t *testing.T) string {
	return writePage(t, 100, 60, func(x, y int) bool {
		return (x >= 10 && x < 14 && y >= 10 && y < 50) || (x >= 50 && x < 60 && y >= 20 && y < 30)
	})
}

func newPipeline() *Pipeline {
	return New(config.DefaultConfig(), nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestBuildSystem(t *testing.T) {
	p := newPipeline()
	req := Request{ImagePath: twoBlocks(t), SystemID: 3, Scale: testScale}

	sys, bin, err := p.BuildSystem(req)
	require.NoError(t, err)

	assert.Equal(t, 3, sys.ID)
	assert.Equal(t, image.Rect(0, 0, 100, 60), bin.Bounds())
	glyphs := sys.Glyphs()
	require.Len(t, glyphs, 2)
	assert.Equal(t, geometry.Bounds{X1: 10, Y1: 10, X2: 14, Y2: 50}, glyphs[0].Bounds())
	assert.Equal(t, geometry.Bounds{X1: 50, Y1: 20, X2: 60, Y2: 30}, glyphs[1].Bounds())
}

func TestBuildSystem_Region(t *testing.T) {
	p := newPipeline()
	region := geometry.Bounds{X1: 0, Y1: 0, X2: 30, Y2: 60}
	req := Request{ImagePath: twoBlocks(t), Scale: testScale, Region: &region}

	sys, bin, err := p.BuildSystem(req)
	require.NoError(t, err)

	assert.Equal(t, region.ImageRect(), bin.Bounds())
	assert.Equal(t, region, sys.Bounds())
	assert.Len(t, sys.Glyphs(), 1)
}

func TestBuildSystem_Assignments(t *testing.T) {
	p := newPipeline()
	req := Request{
		ImagePath: twoBlocks(t),
		Scale:     testScale,
		Assignments: []Assignment{
			{X: 12, Y: 30, Shape: glyph.Stem, Manual: true},
			{X: 55, Y: 25, Shape: glyph.NoteheadBlack, Grade: 0.6},
		},
	}

	sys, _, err := p.BuildSystem(req)
	require.NoError(t, err)

	stem := GlyphAt(sys, 12, 30)
	require.NotNil(t, stem)
	assert.Equal(t, glyph.Stem, stem.Shape())
	assert.True(t, stem.IsManual())

	head := GlyphAt(sys, 55, 25)
	require.NotNil(t, head)
	assert.Equal(t, glyph.NoteheadBlack, head.Shape())
	assert.InDelta(t, 0.6, head.Grade(), 1e-9)
}

func TestBuildSystem_Errors(t *testing.T) {
	page := twoBlocks(t)
	outside := geometry.Bounds{X1: 200, Y1: 200, X2: 300, Y2: 300}
	badStaff := &glyph.Staff{ID: 1, Lines: []float64{1, 2, 3}}

	tests := []struct {
		name   string
		req    Request
		target error
	}{
		{name: "no path", req: Request{Scale: testScale}},
		{name: "no scale", req: Request{ImagePath: page}},
		{name: "missing file", req: Request{ImagePath: "/nonexistent/page.png", Scale: testScale}},
		{name: "region outside page", req: Request{ImagePath: page, Scale: testScale, Region: &outside}},
		{name: "staff lines", req: Request{ImagePath: page, Scale: testScale, Staves: []*glyph.Staff{badStaff}}},
		{
			name:   "assignment on paper",
			req:    Request{ImagePath: page, Scale: testScale, Assignments: []Assignment{{X: 90, Y: 5, Shape: glyph.Dot}}},
			target: ErrNoGlyph,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := newPipeline().BuildSystem(tt.req)
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	p := newPipeline()
	req := Request{
		ImagePath:   twoBlocks(t),
		Scale:       testScale,
		Assignments: []Assignment{{X: 12, Y: 30, Shape: glyph.Stem, Manual: true}},
	}

	res, sys, err := p.Check(req)
	require.NoError(t, err)

	assert.NotEmpty(t, res.Report.RunID)
	assert.Len(t, res.Report.Steps, len(pattern.DefaultSequence))
	for _, step := range res.Report.Steps {
		assert.Empty(t, step.Error, step.Name)
	}
	require.Len(t, res.Glyphs, len(sys.Glyphs()))

	stem := GlyphAt(sys, 12, 30)
	require.NotNil(t, stem)
	assert.Equal(t, glyph.Stem, stem.Shape(), "manual shapes survive the sequence")
}

func TestCheck_DisabledUnknownPattern(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Checker.Disabled = []string{"no-such-pattern"}
	p := New(cfg, nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, _, err := p.Check(Request{ImagePath: twoBlocks(t), Scale: testScale})
	assert.ErrorIs(t, err, pattern.ErrUnknownPattern)
}

// arcPage draws a 3 px thick arc of radius 200 centered at (50, 210).
func arcPage(t *testing.T) string {
	return writePage(t, 100, 40, func(x, y int) bool {
		d := math.Hypot(float64(x)-50, float64(y)-210)
		return math.Abs(d-200) <= 1.5
	})
}

func TestFitCircle(t *testing.T) {
	p := newPipeline()
	req := Request{ImagePath: arcPage(t), Scale: testScale}

	sys, _, err := p.BuildSystem(req)
	require.NoError(t, err)
	var ids []int
	for _, info := range Describe(sys) {
		ids = append(ids, info.ID)
	}
	require.NotEmpty(t, ids)

	c, err := p.FitCircle(req, ids)
	require.NoError(t, err)
	assert.InDelta(t, 200, c.Radius, 10)
	assert.InDelta(t, 50, c.Center.X, 2)
	assert.True(t, c.Valid)
	require.NotNil(t, c.Curve)
	assert.Less(t, c.Curve.P1.X, c.Curve.P2.X)
}

func TestFitCircle_Errors(t *testing.T) {
	p := newPipeline()
	req := Request{ImagePath: arcPage(t), Scale: testScale}

	_, err := p.FitCircle(req, nil)
	assert.Error(t, err)

	_, err = p.FitCircle(req, []int{999})
	assert.ErrorIs(t, err, ErrNoGlyph)
}

func TestDescribe(t *testing.T) {
	p := newPipeline()
	sys, _, err := p.BuildSystem(Request{
		ImagePath:   twoBlocks(t),
		Scale:       testScale,
		Assignments: []Assignment{{X: 12, Y: 30, Shape: glyph.Stem, Manual: true}},
	})
	require.NoError(t, err)

	infos := Describe(sys)
	require.Len(t, infos, 2)
	assert.Equal(t, glyph.Stem, infos[0].Shape)
	assert.True(t, infos[0].Manual)
	assert.Equal(t, 160, infos[0].Weight)
	assert.NotEmpty(t, infos[0].Sections)
	assert.Nil(t, infos[0].Circle)
}
