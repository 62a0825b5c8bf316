package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/omr-patterns/internal/glyph"
	"github.com/ironsheep/omr-patterns/internal/lag"
)

// testStaff has its lines 20 px apart, from y=100 to y=180.
func testStaff() *glyph.Staff {
	return &glyph.Staff{ID: 1, Left: 0, Right: 400, Lines: []float64{100, 120, 140, 160, 180}}
}

func runPattern(t *testing.T, name string, env *Env) int {
	t.Helper()
	p, err := New(name, env)
	require.NoError(t, err)
	n, err := p.Run()
	require.NoError(t, err)
	return n
}

func TestBeamHook_StemCount(t *testing.T) {
	stem := rectSection(1, 18, 0, 2, 40)
	hooked := rectSection(2, 20, 0, 10, 4)
	loose := rectSection(3, 100, 0, 10, 4)
	sys := glyph.NewSystem(1, testScale, nil, []*lag.Section{stem, hooked, loose})
	addGlyph(sys, glyph.Stem, 0.9, stem)
	kept := addGlyph(sys, glyph.BeamHook, 0.7, hooked)
	dropped := addGlyph(sys, glyph.BeamHook, 0.7, loose)
	sys.ConnectStems()

	assert.Equal(t, 1, runPattern(t, "beam-hook", newEnv(sys, never)))
	assert.Equal(t, glyph.BeamHook, kept.Shape())
	assert.Equal(t, glyph.NoShape, dropped.Shape())
	assert.True(t, dropped.IsShapeForbidden(glyph.BeamHook))
}

func TestFlag_NeedsLeftStem(t *testing.T) {
	stem := rectSection(1, 18, 0, 2, 40)
	right := rectSection(2, 20, 0, 8, 20)
	left := rectSection(3, 8, 0, 8, 20)
	sys := glyph.NewSystem(1, testScale, nil, []*lag.Section{stem, right, left})
	addGlyph(sys, glyph.Stem, 0.9, stem)
	good := addGlyph(sys, glyph.Flag1, 0.7, right)
	bad := addGlyph(sys, glyph.Flag1, 0.7, left)
	sys.ConnectStems()

	assert.Equal(t, 1, runPattern(t, "flag", newEnv(sys, never)))
	assert.Equal(t, glyph.Flag1, good.Shape())
	assert.Equal(t, glyph.NoShape, bad.Shape())
}

func TestStem_ReliableSymbols(t *testing.T) {
	supported := rectSection(1, 18, 0, 2, 60)
	head := rectSection(2, 4, 45, 14, 12)
	orphan := rectSection(3, 100, 0, 2, 60)
	weakHead := rectSection(4, 86, 45, 14, 12)
	sys := glyph.NewSystem(1, testScale, nil, []*lag.Section{supported, head, orphan, weakHead})
	s1 := addGlyph(sys, glyph.Stem, 0.9, supported)
	addGlyph(sys, glyph.NoteheadBlack, 0.9, head)
	s2 := addGlyph(sys, glyph.Stem, 0.9, orphan)
	weak := addGlyph(sys, glyph.NoteheadBlack, 0.3, weakHead)
	sys.ConnectStems()

	assert.Equal(t, 2, runPattern(t, "stem", newEnv(sys, never)))
	assert.Equal(t, glyph.Stem, s1.Shape())
	assert.Equal(t, glyph.NoShape, s2.Shape())
	assert.Equal(t, glyph.NoShape, weak.Shape(), "weak symbols go with their stem")
}

func TestCaesura_InsideStaff(t *testing.T) {
	inside := rectSection(1, 50, 125, 6, 10)
	above := rectSection(2, 80, 50, 6, 10)
	sys := glyph.NewSystem(1, testScale, []*glyph.Staff{testStaff()}, []*lag.Section{inside, above})
	in := addGlyph(sys, glyph.Caesura, 0.8, inside)
	out := addGlyph(sys, glyph.Caesura, 0.8, above)

	assert.Equal(t, 1, runPattern(t, "caesura", newEnv(sys, voteFor(glyph.Clutter, 0.6))))
	assert.Equal(t, glyph.NoShape, in.Shape(), "no other shape passes the classifier filter")
	assert.True(t, in.IsShapeForbidden(glyph.Caesura))
	assert.Equal(t, glyph.Caesura, out.Shape())
}

func TestClef_FarFromStaff(t *testing.T) {
	far := rectSection(1, 10, 10, 14, 40)
	near := rectSection(2, 40, 95, 14, 90)
	sys := glyph.NewSystem(1, testScale, []*glyph.Staff{testStaff()}, []*lag.Section{far, near})
	g1 := addGlyph(sys, glyph.GClef, 0.8, far)
	g2 := addGlyph(sys, glyph.GClef, 0.8, near)

	assert.Equal(t, 1, runPattern(t, "clef", newEnv(sys, never)))
	assert.Equal(t, glyph.NoShape, g1.Shape())
	for s := range glyph.Clefs {
		assert.True(t, g1.IsShapeForbidden(s), s.String())
	}
	assert.Equal(t, glyph.GClef, g2.Shape())
}

func TestLedger_Check(t *testing.T) {
	inStaff := rectSection(1, 300, 139, 30, 3)
	first := rectSection(2, 40, 199, 30, 3)
	second := rectSection(3, 40, 220, 30, 3)
	lonely := rectSection(4, 200, 240, 30, 3)
	head := rectSection(5, 45, 190, 20, 21)
	sys := glyph.NewSystem(1, testScale, []*glyph.Staff{testStaff()},
		[]*lag.Section{inStaff, first, second, lonely, head})
	l0 := addGlyph(sys, glyph.Ledger, 0.8, inStaff)
	l1 := addGlyph(sys, glyph.Ledger, 0.8, first)
	l2 := addGlyph(sys, glyph.Ledger, 0.8, second)
	l3 := addGlyph(sys, glyph.Ledger, 0.8, lonely)
	addGlyph(sys, glyph.NoteheadBlack, 0.9, head)

	assert.Equal(t, 2, runPattern(t, "ledger", newEnv(sys, never)))
	assert.Equal(t, glyph.NoShape, l0.Shape(), "inside staff")
	assert.Equal(t, glyph.Ledger, l1.Shape())
	assert.Equal(t, glyph.Ledger, l2.Shape(), "supported by the inner ledger")
	assert.Equal(t, glyph.NoShape, l3.Shape(), "no inner ledger")
}

// twoStems builds a system holding two short overlapping stems that a
// natural sign was broken into.
func twoStems() (*glyph.System, *glyph.Glyph, *glyph.Glyph) {
	left := rectSection(1, 10, 0, 2, 40)
	right := rectSection(2, 18, 10, 2, 40)
	sys := glyph.NewSystem(1, testScale, nil, []*lag.Section{left, right})
	return sys, addGlyph(sys, glyph.Stem, 0.8, left), addGlyph(sys, glyph.Stem, 0.8, right)
}

func TestAlteration_MergesStemPair(t *testing.T) {
	sys, left, right := twoStems()
	env := newEnv(sys, voteFor(glyph.Natural, 0.9))

	p, err := New("alteration", env)
	require.NoError(t, err)

	n, err := p.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	glyphs := sys.Glyphs()
	require.Len(t, glyphs, 1)
	assert.Equal(t, glyph.Natural, glyphs[0].Shape())
	assert.Len(t, glyphs[0].Members(), 2)
	assert.False(t, left.IsActive())
	assert.False(t, right.IsActive())

	n, err = p.Run()
	require.NoError(t, err)
	assert.Zero(t, n, "a second run finds nothing left to merge")
}

func TestAlteration_RejectedCompoundLeavesStems(t *testing.T) {
	sys, left, right := twoStems()
	env := newEnv(sys, never)

	p, err := New("alteration", env)
	require.NoError(t, err)
	n, err := p.Run()
	require.NoError(t, err)

	assert.Zero(t, n)
	for _, g := range []*glyph.Glyph{left, right} {
		assert.True(t, g.IsActive())
		assert.Equal(t, glyph.Stem, g.Shape())
		assert.InDelta(t, 0.8, g.Grade(), 1e-9)
	}
	assert.Same(t, left, sys.GlyphOf(left.Members()[0]))
}

func TestFermataDot_MergesEnclosedDot(t *testing.T) {
	arc := rectSection(1, 100, 40, 30, 8)
	inner := rectSection(2, 112, 52, 6, 6)
	outer := rectSection(3, 112, 70, 6, 6)
	sys := glyph.NewSystem(1, testScale, nil, []*lag.Section{arc, inner, outer})
	a := addGlyph(sys, glyph.FermataArc, 0.7, arc)
	d := addGlyph(sys, glyph.Dot, 0.6, inner)
	far := addGlyph(sys, glyph.Dot, 0.6, outer)
	env := newEnv(sys, voteFor(glyph.Fermata, 0.8))

	assert.Equal(t, 1, runPattern(t, "fermata-dot", env))
	assert.False(t, a.IsActive())
	assert.False(t, d.IsActive())

	fermata := sys.GlyphOf(arc)
	require.NotNil(t, fermata)
	assert.Equal(t, glyph.Fermata, fermata.Shape())
	assert.Len(t, fermata.Members(), 2)
	assert.Same(t, fermata, sys.GlyphOf(inner))
	assert.Same(t, far, sys.GlyphOf(outer), "the dot below the box stays apart")
	assert.Equal(t, glyph.Dot, far.Shape())

	assert.Zero(t, runPattern(t, "fermata-dot", env), "a second run finds nothing left to merge")
}

func TestForte_MergesLetters(t *testing.T) {
	first := rectSection(1, 100, 40, 10, 20)
	second := rectSection(2, 114, 40, 10, 20)
	lone := rectSection(3, 300, 40, 10, 20)
	sys := glyph.NewSystem(1, testScale, nil, []*lag.Section{first, second, lone})
	addGlyph(sys, glyph.DynamicsF, 0.7, first)
	addGlyph(sys, glyph.DynamicsF, 0.7, second)
	single := addGlyph(sys, glyph.DynamicsF, 0.7, lone)
	env := newEnv(sys, voteFor(glyph.DynamicsFF, 0.8))

	assert.Equal(t, 1, runPattern(t, "forte", env))

	ff := sys.GlyphOf(first)
	require.NotNil(t, ff)
	assert.Equal(t, glyph.DynamicsFF, ff.Shape())
	assert.Same(t, ff, sys.GlyphOf(second))
	assert.Len(t, ff.Members(), 2)
	assert.True(t, single.IsActive())
	assert.Equal(t, glyph.DynamicsF, single.Shape())

	assert.Zero(t, runPattern(t, "forte", env), "a second run finds nothing left to merge")
}

func TestTime_MergesStackedDigits(t *testing.T) {
	three := rectSection(1, 60, 101, 14, 38)
	four := rectSection(2, 60, 141, 14, 38)
	sys := glyph.NewSystem(1, testScale, []*glyph.Staff{testStaff()}, []*lag.Section{three, four})
	addGlyph(sys, glyph.TimeThree, 0.7, three)
	addGlyph(sys, glyph.TimeFour, 0.7, four)
	env := newEnv(sys, voteFor(glyph.TimeThreeFour, 0.8))

	assert.Equal(t, 1, runPattern(t, "time", env))

	sig := sys.GlyphOf(three)
	require.NotNil(t, sig)
	assert.Equal(t, glyph.TimeThreeFour, sig.Shape())
	assert.Same(t, sig, sys.GlyphOf(four))
	assert.Len(t, sig.Members(), 2)

	assert.Zero(t, runPattern(t, "time", env), "a second run finds nothing left to merge")
}

func TestBass_AssemblesBodyAndDots(t *testing.T) {
	body := rectSection(1, 10, 105, 30, 50)
	upper := rectSection(2, 44, 112, 6, 6)
	lower := rectSection(3, 44, 132, 6, 6)
	sys := glyph.NewSystem(1, testScale, []*glyph.Staff{testStaff()}, []*lag.Section{body, upper, lower})
	addGlyph(sys, glyph.NoShape, 0, body)
	addGlyph(sys, glyph.Dot, 0.6, upper)
	addGlyph(sys, glyph.Dot, 0.6, lower)
	env := newEnv(sys, voteFor(glyph.FClef, 0.8))

	assert.Equal(t, 1, runPattern(t, "bass", env))

	clef := sys.GlyphOf(body)
	require.NotNil(t, clef)
	assert.Equal(t, glyph.FClef, clef.Shape())
	assert.Len(t, clef.Members(), 3)
	assert.Same(t, clef, sys.GlyphOf(upper))
	assert.Same(t, clef, sys.GlyphOf(lower))

	assert.Zero(t, runPattern(t, "bass", env), "a second run finds nothing left to merge")
}

func TestArticulation_MergeAndNoteCheck(t *testing.T) {
	piece := rectSection(1, 100, 100, 8, 4)
	rest := rectSection(2, 110, 100, 8, 4)
	head := rectSection(3, 100, 130, 20, 16)
	alone := rectSection(4, 300, 100, 8, 4)
	sys := glyph.NewSystem(1, testScale, nil, []*lag.Section{piece, rest, head, alone})
	addGlyph(sys, glyph.Accent, 0.6, piece)
	addGlyph(sys, glyph.NoShape, 0, rest)
	addGlyph(sys, glyph.NoteheadBlack, 0.9, head)
	lone := addGlyph(sys, glyph.Accent, 0.6, alone)
	env := newEnv(sys, voteFor(glyph.Accent, 0.8))

	assert.Equal(t, 2, runPattern(t, "articulation", env), "one merge and one rejection")

	accent := sys.GlyphOf(piece)
	require.NotNil(t, accent)
	assert.Equal(t, glyph.Accent, accent.Shape(), "a note lies below")
	assert.Same(t, accent, sys.GlyphOf(rest))
	assert.Len(t, accent.Members(), 2)

	assert.Equal(t, glyph.NoShape, lone.Shape(), "no note in range")
	assert.True(t, lone.IsShapeForbidden(glyph.Accent))

	assert.Zero(t, runPattern(t, "articulation", env), "a second run changes nothing")
}
