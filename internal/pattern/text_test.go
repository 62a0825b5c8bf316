package pattern

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/omr-patterns/internal/glyph"
	"github.com/ironsheep/omr-patterns/internal/lag"
	"github.com/ironsheep/omr-patterns/internal/ocr"
)

// helloSystem lays out five letter-like rectangles (14 px high, 2 px apart),
// a lone glyph far on the right and a dot above the second letter.
func helloSystem() (*glyph.System, []*glyph.Glyph, *glyph.Glyph, *glyph.Glyph) {
	var sections []*lag.Section
	for i := 0; i < 5; i++ {
		sections = append(sections, rectSection(i+1, 100+i*10, 100, 8, 14))
	}
	far := rectSection(6, 300, 100, 8, 14)
	dot := rectSection(7, 112, 94, 3, 3)
	sections = append(sections, far, dot)

	sys := glyph.NewSystem(1, testScale, nil, sections)
	var letters []*glyph.Glyph
	for _, s := range sections[:5] {
		letters = append(letters, addGlyph(sys, glyph.NoShape, 0, s))
	}
	return sys, letters, addGlyph(sys, glyph.NoShape, 0, far), addGlyph(sys, glyph.NoShape, 0, dot)
}

func TestAggregateBlobs(t *testing.T) {
	sys, letters, far, dot := helloSystem()
	p := newEnv(sys, never).blobParams()

	blobs, small := AggregateBlobs(sys.Glyphs(), p)

	require.Len(t, blobs, 2)
	assert.ElementsMatch(t, letters, blobs[0].Glyphs)
	assert.Equal(t, []*glyph.Glyph{far}, blobs[1].Glyphs)
	assert.Equal(t, []*glyph.Glyph{dot}, small)
	assert.InDelta(t, 14, blobs[0].MeanHeight(), 1e-9)

	left := InsertSmall(blobs, small, p)
	assert.Empty(t, left)
	assert.Contains(t, blobs[0].Glyphs, dot)
	assert.InDelta(t, 14, blobs[0].MeanHeight(), 1e-9, "small glyphs do not change the mean height")

	kept := PurgeBlobs(blobs, p)
	require.Len(t, kept, 1, "the lone glyph is too light")
	assert.Same(t, blobs[0], kept[0])
}

func TestAggregateBlobs_VerticalOverlap(t *testing.T) {
	a := rectSection(1, 0, 0, 8, 14)
	b := rectSection(2, 10, 12, 8, 14) // overlaps a over 2 rows only
	sys := glyph.NewSystem(1, testScale, nil, []*lag.Section{a, b})
	addGlyph(sys, glyph.NoShape, 0, a)
	addGlyph(sys, glyph.NoShape, 0, b)

	blobs, _ := AggregateBlobs(sys.Glyphs(), newEnv(sys, never).blobParams())
	assert.Len(t, blobs, 2)
}

func TestPurgeBlobs_Vertical(t *testing.T) {
	column := rectSection(1, 0, 0, 4, 60)
	sys := glyph.NewSystem(1, testScale, nil, []*lag.Section{column})
	addGlyph(sys, glyph.NoShape, 0, column)
	p := newEnv(sys, never).blobParams()

	blobs, _ := AggregateBlobs(sys.Glyphs(), p)
	require.Len(t, blobs, 1)
	assert.Empty(t, PurgeBlobs(blobs, p))
}

// wideIsText votes TEXT for glyphs wider than high.
var wideIsText = glyph.ClassifierFunc(func(g *glyph.Glyph, _ glyph.Context, minGrade float64, filter glyph.ShapeSet) *glyph.Evaluation {
	b := g.Bounds()
	if !filter.Contains(glyph.Text) || b.Width() <= b.Height() {
		return nil
	}
	return &glyph.Evaluation{Shape: glyph.Text, Grade: 0.9}
})

func TestTextPatterns_BuildText(t *testing.T) {
	sys, letters, far, _ := helloSystem()
	env := newEnv(sys, wideIsText)

	greedy, err := New("text-greedy", env)
	require.NoError(t, err)
	n, err := greedy.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	text := sys.GlyphOf(letters[0].Members()[0])
	require.NotNil(t, text)
	assert.Equal(t, glyph.Text, text.Shape())
	assert.Len(t, text.Members(), 6, "five letters and the dot")
	require.NotNil(t, text.TextInfo())
	assert.Equal(t, text.Bounds(), text.TextInfo().Bounds)
	assert.True(t, far.IsActive())
	assert.Equal(t, glyph.NoShape, far.Shape())

	for _, name := range []string{"text-greedy", "text-border"} {
		p, err := New(name, env)
		require.NoError(t, err)
		n, err := p.Run()
		require.NoError(t, err)
		assert.Zero(t, n, "%s must not rebuild existing text", name)
	}
}

func TestTextBorder_SkipsStaffArea(t *testing.T) {
	sys, letters, _, _ := helloSystem()
	staff := &glyph.Staff{ID: 1, Left: 0, Right: 400, Lines: []float64{90, 95, 100, 105, 110}}
	sys = glyph.NewSystem(1, testScale, []*glyph.Staff{staff}, sys.Sections())
	for _, l := range letters {
		addGlyph(sys, glyph.NoShape, 0, l.Members()...)
	}

	p, err := New("text-border", newEnv(sys, wideIsText))
	require.NoError(t, err)
	n, err := p.Run()
	require.NoError(t, err)
	assert.Zero(t, n, "words on the staff are not border text")
}

func TestTextPattern_OCRWithoutEngine(t *testing.T) {
	sys, _, _, _ := helloSystem()
	env := newEnv(sys, never)
	env.Config.Text.Checker = "ocr"

	p, err := New("text-greedy", env)
	require.NoError(t, err)
	_, err = p.Run()
	assert.Error(t, err)
}

type fakeOCR struct {
	lines []ocr.Line
	err   error
}

func (f *fakeOCR) Recognize(image.Image, string) ([]ocr.Line, error) {
	return f.lines, f.err
}

func TestOCRTextChecker(t *testing.T) {
	sys, letters, _, _ := helloSystem()
	compound := sys.BuildTransientCompound(letters)

	tests := []struct {
		name   string
		engine *fakeOCR
		want   string
		ok     bool
	}{
		{name: "single line", engine: &fakeOCR{lines: []ocr.Line{{Text: " Hello ", FontSize: 14}}}, want: "Hello", ok: true},
		{name: "two lines", engine: &fakeOCR{lines: []ocr.Line{{Text: "He", FontSize: 14}, {Text: "llo", FontSize: 14}}}},
		{name: "empty", engine: &fakeOCR{lines: []ocr.Line{{Text: "  ", FontSize: 14}}}},
		{name: "font too large", engine: &fakeOCR{lines: []ocr.Line{{Text: "Hello", FontSize: 60}}}},
		{name: "too many characters", engine: &fakeOCR{lines: []ocr.Line{{Text: "Hello world!", FontSize: 14}}}},
		{name: "invalid character", engine: &fakeOCR{lines: []ocr.Line{{Text: "He\x01lo", FontSize: 14}}}},
		{name: "engine error", engine: &fakeOCR{err: errors.New("boom")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &OCRTextChecker{
				Engine:      tt.engine,
				Language:    "eng",
				Scale:       testScale,
				MaxFontSize: 36,
				MinAspect:   1,
				MaxAspect:   3,
				Logger:      newEnv(sys, never).Logger,
			}
			info, ok := c.CheckText(compound, letters)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.want, info.Content)
			assert.Equal(t, "eng", info.Language)
			assert.InDelta(t, 14.0/20, info.FontSize, 1e-9)
		})
	}
}

func TestIsTupletText(t *testing.T) {
	_, letters, _, _ := helloSystem()
	assert.False(t, isTupletText("3", letters))

	letters[0].SetShape(glyph.TupletThree, 0.9)
	assert.True(t, isTupletText("3", letters))
	assert.False(t, isTupletText("6", letters))
	assert.False(t, isTupletText("33", letters))
}

func TestIsXMLText(t *testing.T) {
	assert.True(t, isXMLText("Allegro ma non troppo"))
	assert.True(t, isXMLText("Größe\t\n"))
	assert.False(t, isXMLText("a\x00b"))
	assert.False(t, isXMLText("\uFFFE"))
	assert.False(t, isXMLText("a\xffb"), "invalid UTF-8")
	assert.True(t, isXMLText("\uFFFD"), "an actual replacement character is fine")
}
