package glyph

import (
	"fmt"
	"sort"
	"strings"
)

// Shape identifies a music symbol (or a non-symbol category) a glyph may be
// assigned. The zero value NoShape means "not assigned".
type Shape int

const (
	NoShape Shape = iota

	// Physical categories
	Dot
	Noise
	Clutter
	Structure
	Text
	Character

	// Lines
	Stem
	Ledger
	Beam
	Beam2
	Beam3
	BeamHook
	Slur

	// Note heads
	NoteheadBlack
	NoteheadVoid
	WholeNote

	// Flags (stem on the left)
	Flag1
	Flag2
	Flag3
	Flag1Up
	Flag2Up
	Flag3Up

	// Clefs
	GClef
	GClefSmall
	FClef
	FClefSmall
	CClef
	PercussionClef

	// Accidentals
	Flat
	Natural
	Sharp
	DoubleSharp
	DoubleFlat

	// Time signature digits
	TimeZero
	TimeOne
	TimeTwo
	TimeThree
	TimeFour
	TimeFive
	TimeSix
	TimeSeven
	TimeEight
	TimeNine
	TimeTwelve
	TimeSixteen

	// Whole time signatures
	TimeTwoTwo
	TimeTwoFour
	TimeThreeTwo
	TimeThreeFour
	TimeThreeEight
	TimeFourFour
	TimeFiveFour
	TimeSixEight
	TimeNineEight
	TimeTwelveEight
	CommonTime
	CutTime

	// Dynamics letters
	DynamicsCharM
	DynamicsCharR
	DynamicsCharS
	DynamicsCharZ
	DynamicsP
	DynamicsF

	// Dynamics compounds
	DynamicsPP
	DynamicsMP
	DynamicsMF
	DynamicsFF
	DynamicsFFF
	DynamicsFP
	DynamicsFZ
	DynamicsSF
	DynamicsSFZ
	DynamicsSFP
	DynamicsRFZ

	// Articulations
	Accent
	StrongAccent
	Staccato
	Staccatissimo
	Tenuto

	// Holds and pauses
	FermataArc
	FermataArcBelow
	Fermata
	FermataBelow
	Caesura
	BreathMark

	// Dots
	AugmentationDot
	RepeatDot

	// Tuplets
	TupletThree
	TupletSix

	// Rests
	WholeRest
	HalfRest
	QuarterRest
	EighthRest

	shapeCount
)

var shapeNames = [...]string{
	NoShape:          "NO_SHAPE",
	Dot:              "DOT",
	Noise:            "NOISE",
	Clutter:          "CLUTTER",
	Structure:        "STRUCTURE",
	Text:             "TEXT",
	Character:        "CHARACTER",
	Stem:             "STEM",
	Ledger:           "LEDGER",
	Beam:             "BEAM",
	Beam2:            "BEAM_2",
	Beam3:            "BEAM_3",
	BeamHook:         "BEAM_HOOK",
	Slur:             "SLUR",
	NoteheadBlack:    "NOTEHEAD_BLACK",
	NoteheadVoid:     "NOTEHEAD_VOID",
	WholeNote:        "WHOLE_NOTE",
	Flag1:            "FLAG_1",
	Flag2:            "FLAG_2",
	Flag3:            "FLAG_3",
	Flag1Up:          "FLAG_1_UP",
	Flag2Up:          "FLAG_2_UP",
	Flag3Up:          "FLAG_3_UP",
	GClef:            "G_CLEF",
	GClefSmall:       "G_CLEF_SMALL",
	FClef:            "F_CLEF",
	FClefSmall:       "F_CLEF_SMALL",
	CClef:            "C_CLEF",
	PercussionClef:   "PERCUSSION_CLEF",
	Flat:             "FLAT",
	Natural:          "NATURAL",
	Sharp:            "SHARP",
	DoubleSharp:      "DOUBLE_SHARP",
	DoubleFlat:       "DOUBLE_FLAT",
	TimeZero:         "TIME_ZERO",
	TimeOne:          "TIME_ONE",
	TimeTwo:          "TIME_TWO",
	TimeThree:        "TIME_THREE",
	TimeFour:         "TIME_FOUR",
	TimeFive:         "TIME_FIVE",
	TimeSix:          "TIME_SIX",
	TimeSeven:        "TIME_SEVEN",
	TimeEight:        "TIME_EIGHT",
	TimeNine:         "TIME_NINE",
	TimeTwelve:       "TIME_TWELVE",
	TimeSixteen:      "TIME_SIXTEEN",
	TimeTwoTwo:       "TIME_TWO_TWO",
	TimeTwoFour:      "TIME_TWO_FOUR",
	TimeThreeTwo:     "TIME_THREE_TWO",
	TimeThreeFour:    "TIME_THREE_FOUR",
	TimeThreeEight:   "TIME_THREE_EIGHT",
	TimeFourFour:     "TIME_FOUR_FOUR",
	TimeFiveFour:     "TIME_FIVE_FOUR",
	TimeSixEight:     "TIME_SIX_EIGHT",
	TimeNineEight:    "TIME_NINE_EIGHT",
	TimeTwelveEight:  "TIME_TWELVE_EIGHT",
	CommonTime:       "COMMON_TIME",
	CutTime:          "CUT_TIME",
	DynamicsCharM:    "DYNAMICS_CHAR_M",
	DynamicsCharR:    "DYNAMICS_CHAR_R",
	DynamicsCharS:    "DYNAMICS_CHAR_S",
	DynamicsCharZ:    "DYNAMICS_CHAR_Z",
	DynamicsP:        "DYNAMICS_P",
	DynamicsF:        "DYNAMICS_F",
	DynamicsPP:       "DYNAMICS_PP",
	DynamicsMP:       "DYNAMICS_MP",
	DynamicsMF:       "DYNAMICS_MF",
	DynamicsFF:       "DYNAMICS_FF",
	DynamicsFFF:      "DYNAMICS_FFF",
	DynamicsFP:       "DYNAMICS_FP",
	DynamicsFZ:       "DYNAMICS_FZ",
	DynamicsSF:       "DYNAMICS_SF",
	DynamicsSFZ:      "DYNAMICS_SFZ",
	DynamicsSFP:      "DYNAMICS_SFP",
	DynamicsRFZ:      "DYNAMICS_RFZ",
	Accent:           "ACCENT",
	StrongAccent:     "STRONG_ACCENT",
	Staccato:         "STACCATO",
	Staccatissimo:    "STACCATISSIMO",
	Tenuto:           "TENUTO",
	FermataArc:       "FERMATA_ARC",
	FermataArcBelow:  "FERMATA_ARC_BELOW",
	Fermata:          "FERMATA",
	FermataBelow:     "FERMATA_BELOW",
	Caesura:          "CAESURA",
	BreathMark:       "BREATH_MARK",
	AugmentationDot:  "AUGMENTATION_DOT",
	RepeatDot:        "REPEAT_DOT",
	TupletThree:      "TUPLET_THREE",
	TupletSix:        "TUPLET_SIX",
	WholeRest:        "WHOLE_REST",
	HalfRest:         "HALF_REST",
	QuarterRest:      "QUARTER_REST",
	EighthRest:       "EIGHTH_REST",
}

// String returns the upper-case name of the shape, e.g. "BEAM_HOOK".
func (s Shape) String() string {
	if s < 0 || s >= shapeCount {
		return fmt.Sprintf("SHAPE(%d)", int(s))
	}
	return shapeNames[s]
}

// MarshalText encodes the shape by name.
func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a shape name, case-insensitively.
func (s *Shape) UnmarshalText(text []byte) error {
	shape, err := ParseShape(string(text))
	if err != nil {
		return err
	}
	*s = shape
	return nil
}

// ParseShape returns the shape with the given name (case-insensitive).
func ParseShape(name string) (Shape, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range shapeNames {
		if n == upper {
			return Shape(i), nil
		}
	}
	return NoShape, fmt.Errorf("unknown shape: %q", name)
}

// AllShapes returns every assignable shape, NoShape excluded.
func AllShapes() []Shape {
	shapes := make([]Shape, 0, shapeCount-1)
	for s := NoShape + 1; s < shapeCount; s++ {
		shapes = append(shapes, s)
	}
	return shapes
}

// ShapeSet is a set of shapes. A nil or empty set used as a classifier
// filter means "any shape".
type ShapeSet map[Shape]struct{}

// NewShapeSet builds a set from the given shapes.
func NewShapeSet(shapes ...Shape) ShapeSet {
	set := make(ShapeSet, len(shapes))
	for _, s := range shapes {
		set[s] = struct{}{}
	}
	return set
}

// Contains reports whether the shape belongs to the set.
func (ss ShapeSet) Contains(s Shape) bool {
	_, ok := ss[s]
	return ok
}

// Allows reports whether a filter lets the shape through: an empty filter
// allows everything.
func (ss ShapeSet) Allows(s Shape) bool {
	return len(ss) == 0 || ss.Contains(s)
}

// Union returns a new set holding the shapes of both sets.
func (ss ShapeSet) Union(other ShapeSet) ShapeSet {
	set := make(ShapeSet, len(ss)+len(other))
	for s := range ss {
		set[s] = struct{}{}
	}
	for s := range other {
		set[s] = struct{}{}
	}
	return set
}

// Sorted returns the shapes of the set in declaration order.
func (ss ShapeSet) Sorted() []Shape {
	shapes := make([]Shape, 0, len(ss))
	for s := range ss {
		shapes = append(shapes, s)
	}
	sort.Slice(shapes, func(i, j int) bool { return shapes[i] < shapes[j] })
	return shapes
}

// String lists the shape names.
func (ss ShapeSet) String() string {
	names := make([]string, 0, len(ss))
	for _, s := range ss.Sorted() {
		names = append(names, s.String())
	}
	return "[" + strings.Join(names, " ") + "]"
}

// Shape families used by the correctors.
var (
	Clefs           = NewShapeSet(GClef, GClefSmall, FClef, FClefSmall, CClef, PercussionClef)
	BassClefs       = NewShapeSet(FClef, FClefSmall)
	Noteheads       = NewShapeSet(NoteheadBlack, NoteheadVoid)
	Flags           = NewShapeSet(Flag1, Flag2, Flag3, Flag1Up, Flag2Up, Flag3Up)
	Beams           = NewShapeSet(Beam, Beam2, Beam3)
	MultipleBeams   = NewShapeSet(Beam2, Beam3)
	DynamicsLetters = NewShapeSet(DynamicsCharM, DynamicsCharR, DynamicsCharS, DynamicsCharZ, DynamicsP, DynamicsF)
	Dynamics        = NewShapeSet(DynamicsPP, DynamicsMP, DynamicsMF, DynamicsFF, DynamicsFFF,
		DynamicsFP, DynamicsFZ, DynamicsSF, DynamicsSFZ, DynamicsSFP, DynamicsRFZ)
	Articulations = NewShapeSet(Accent, StrongAccent, Staccato, Staccatissimo, Tenuto)
	Fermatas      = NewShapeSet(Fermata, FermataBelow)
	FermataArcs   = NewShapeSet(FermataArc, FermataArcBelow)
	Dots          = NewShapeSet(Dot, AugmentationDot, RepeatDot, Staccato)
	StemPairs     = NewShapeSet(Natural, Sharp)
	TimeDigits    = NewShapeSet(TimeZero, TimeOne, TimeTwo, TimeThree, TimeFour, TimeFive,
		TimeSix, TimeSeven, TimeEight, TimeNine, TimeTwelve, TimeSixteen)
	WholeTimes = NewShapeSet(TimeTwoTwo, TimeTwoFour, TimeThreeTwo, TimeThreeFour, TimeThreeEight,
		TimeFourFour, TimeFiveFour, TimeSixEight, TimeNineEight, TimeTwelveEight, CommonTime, CutTime)

	// StemSymbols are the shapes that may be attached to a stem.
	StemSymbols = Noteheads.Union(Flags).Union(Beams).Union(NewShapeSet(BeamHook))

	// ReliableStemSymbols are the stem symbols that justify a stem on their own.
	ReliableStemSymbols = Noteheads.Union(Flags).Union(Beams)
)
