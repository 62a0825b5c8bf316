package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/omr-patterns/internal/glyph"
)

// Config holds every tunable of the pattern engine.
//
// Lengths are fractions of the interline unless stated otherwise, areas are
// fractions of the squared interline, and a few thicknesses are fractions of
// the staff line thickness. They are converted to pixels with glyph.Scale
// once the sheet scale is known.
type Config struct {
	Image        ImageConfig        `yaml:"image"`
	Checker      CheckerConfig      `yaml:"checker"`
	Compound     CompoundConfig     `yaml:"compound"`
	Stem         StemConfig         `yaml:"stem"`
	Caesura      CaesuraConfig      `yaml:"caesura"`
	DoubleBeam   DoubleBeamConfig   `yaml:"double_beam"`
	FermataDot   FermataDotConfig   `yaml:"fermata_dot"`
	Forte        ForteConfig        `yaml:"forte"`
	Ledger       LedgerConfig       `yaml:"ledger"`
	Alteration   AlterationConfig   `yaml:"alteration"`
	Articulation ArticulationConfig `yaml:"articulation"`
	Bass         BassConfig         `yaml:"bass"`
	Clef         ClefConfig         `yaml:"clef"`
	Time         TimeConfig         `yaml:"time"`
	Slur         SlurConfig         `yaml:"slur"`
	Text         TextConfig         `yaml:"text"`
	OCR          OCRConfig          `yaml:"ocr"`
	Classifier   ClassifierConfig   `yaml:"classifier"`
}

// ImageConfig controls binarization.
type ImageConfig struct {
	Threshold int `yaml:"threshold"` // gray level below which a pixel is ink (1-255)
}

// CheckerConfig controls the pattern sequence.
type CheckerConfig struct {
	RefreshMinGrade float64  `yaml:"refresh_min_grade"`
	Disabled        []string `yaml:"disabled"` // pattern names skipped; order is fixed
}

// CompoundConfig holds settings shared by compound-building patterns.
type CompoundConfig struct {
	// PartMaxGrade is the grade at or below which an assigned glyph may still
	// be absorbed into a compound.
	PartMaxGrade float64 `yaml:"part_max_grade"`
}

// StemConfig controls the stem check.
type StemConfig struct {
	ReliableGrade float64 `yaml:"reliable_grade"`
}

// CaesuraConfig controls the caesura check.
type CaesuraConfig struct {
	MinGrade float64 `yaml:"min_grade"`
}

// DoubleBeamConfig controls merging of stacked beams.
type DoubleBeamConfig struct {
	BoxDy    float64 `yaml:"box_dy"`
	MinGrade float64 `yaml:"min_grade"`
}

// FermataDotConfig controls merging of fermata arcs with their dot.
type FermataDotConfig struct {
	DotMaxWeight float64 `yaml:"dot_max_weight"` // area
	BoxDy        float64 `yaml:"box_dy"`
	MinGrade     float64 `yaml:"min_grade"`
}

// ForteConfig controls merging of dynamics letters around an 'f'.
type ForteConfig struct {
	BoxDx         float64 `yaml:"box_dx"`
	PartMaxWeight float64 `yaml:"part_max_weight"` // area
	MinGrade      float64 `yaml:"min_grade"`
}

// LedgerConfig controls ledger repair and check.
type LedgerConfig struct {
	BoxDx     float64 `yaml:"box_dx"`
	MaxHeight float64 `yaml:"max_height"`
	NoteDx    float64 `yaml:"note_dx"`
	NoteDy    float64 `yaml:"note_dy"`
	MinGrade  float64 `yaml:"min_grade"`
}

// AlterationConfig controls the detection of naturals and sharps from stem pairs.
type AlterationConfig struct {
	StemMaxHeight float64 `yaml:"stem_max_height"`
	StemsMaxDx    float64 `yaml:"stems_max_dx"`
	BoxMargin     float64 `yaml:"box_margin"`
	MinGrade      float64 `yaml:"min_grade"`
}

// ArticulationConfig controls articulation repair and check.
type ArticulationConfig struct {
	BoxMargin     float64 `yaml:"box_margin"`
	PartMaxWeight float64 `yaml:"part_max_weight"` // area
	NoteDx        float64 `yaml:"note_dx"`
	NoteMaxDy     float64 `yaml:"note_max_dy"`
	MinGrade      float64 `yaml:"min_grade"`
}

// BassConfig controls the assembly of F clefs from their pieces.
type BassConfig struct {
	ClefZone     float64 `yaml:"clef_zone"`
	BoxDx        float64 `yaml:"box_dx"`
	DotMaxWeight float64 `yaml:"dot_max_weight"` // area
	MinGrade     float64 `yaml:"min_grade"`
}

// ClefConfig controls the clef position check.
type ClefConfig struct {
	StaffMargin float64 `yaml:"staff_margin"`
	MinGrade    float64 `yaml:"min_grade"`
}

// TimeConfig controls the assembly of time signatures.
type TimeConfig struct {
	BoxDx    float64 `yaml:"box_dx"`
	MinGrade float64 `yaml:"min_grade"`
}

// SlurConfig controls slur extension and trimming.
type SlurConfig struct {
	MaxCircleDistance  float64 `yaml:"max_circle_distance"`
	MinCircleRadius    float64 `yaml:"min_circle_radius"`
	MaxCircleRadius    float64 `yaml:"max_circle_radius"`
	LargeSlurWidth     float64 `yaml:"large_slur_width"`
	MinChunkWeight     float64 `yaml:"min_chunk_weight"`     // area
	MaxChunkThickness  float64 `yaml:"max_chunk_thickness"`  // line thickness
	MinExtensionHeight float64 `yaml:"min_extension_height"` // line thickness
	BoxDx              float64 `yaml:"box_dx"`
	BoxDy              float64 `yaml:"box_dy"`
	TargetHypot        float64 `yaml:"target_hypot"`
	TargetLineHypot    float64 `yaml:"target_line_hypot"`
	MinSlurWidth       float64 `yaml:"min_slur_width"`
	ExtensionRatio     float64 `yaml:"extension_ratio"` // in (0, 1)
}

// TextConfig controls blob aggregation and text acceptance.
type TextConfig struct {
	GlyphMaxHeight   float64 `yaml:"glyph_max_height"`
	SmallMaxWeight   float64 `yaml:"small_max_weight"` // area
	WordGapRatio     float64 `yaml:"word_gap_ratio"`   // of mean glyph height
	MinOverlapRatio  float64 `yaml:"min_overlap_ratio"`
	MinBlobWeight    float64 `yaml:"min_blob_weight"` // area
	SmallXMargin     float64 `yaml:"small_x_margin"`
	SmallYRatio      float64 `yaml:"small_y_ratio"` // of mean glyph height
	StaffMarginAbove float64 `yaml:"staff_margin_above"`
	StaffMarginBelow float64 `yaml:"staff_margin_below"`
	MaxFontSize      float64 `yaml:"max_font_size"`
	MinAspect        float64 `yaml:"min_aspect"`
	MaxAspect        float64 `yaml:"max_aspect"`
	MinGrade         float64 `yaml:"min_grade"`
	Checker          string  `yaml:"checker"` // classifier | ocr
}

// OCRConfig configures the Tesseract engine.
type OCRConfig struct {
	Language       string  `yaml:"language"`
	TessdataPrefix string  `yaml:"tessdata_prefix"`
	Margin         int     `yaml:"margin"` // white pixels around the glyph image
	Upscale        float64 `yaml:"upscale"`
}

// ClassifierConfig configures the nearest-prototype classifier.
type ClassifierConfig struct {
	// Spread is the feature distance at which the grade drops to 1/e.
	Spread     float64     `yaml:"spread"`
	Prototypes []Prototype `yaml:"prototypes"`
}

// Prototype describes the typical size of a shape, in interline units.
type Prototype struct {
	Shape  glyph.Shape `yaml:"shape"`
	Width  float64     `yaml:"width"`
	Height float64     `yaml:"height"`
	Weight float64     `yaml:"weight"` // area
}

// DefaultConfig returns the reference settings.
func DefaultConfig() *Config {
	return &Config{
		Image:   ImageConfig{Threshold: 128},
		Checker: CheckerConfig{RefreshMinGrade: 0.3},
		Compound: CompoundConfig{
			PartMaxGrade: 0.4,
		},
		Stem:       StemConfig{ReliableGrade: 0.5},
		Caesura:    CaesuraConfig{MinGrade: 0.4},
		DoubleBeam: DoubleBeamConfig{BoxDy: 0.6, MinGrade: 0.5},
		FermataDot: FermataDotConfig{DotMaxWeight: 0.3, BoxDy: 0.5, MinGrade: 0.5},
		Forte:      ForteConfig{BoxDx: 0.8, PartMaxWeight: 1.5, MinGrade: 0.5},
		Ledger: LedgerConfig{
			BoxDx:     1.0,
			MaxHeight: 0.5,
			NoteDx:    0.5,
			NoteDy:    0.5,
			MinGrade:  0.5,
		},
		Alteration: AlterationConfig{
			StemMaxHeight: 3.5,
			StemsMaxDx:    0.8,
			BoxMargin:     0.3,
			MinGrade:      0.5,
		},
		Articulation: ArticulationConfig{
			BoxMargin:     0.3,
			PartMaxWeight: 0.5,
			NoteDx:        0.5,
			NoteMaxDy:     3.0,
			MinGrade:      0.5,
		},
		Bass: BassConfig{ClefZone: 4.0, BoxDx: 1.0, DotMaxWeight: 0.3, MinGrade: 0.5},
		Clef: ClefConfig{StaffMargin: 1.0, MinGrade: 0.4},
		Time: TimeConfig{BoxDx: 0.3, MinGrade: 0.5},
		Slur: SlurConfig{
			MaxCircleDistance:  0.1,
			MinCircleRadius:    1.0,
			MaxCircleRadius:    100.0,
			LargeSlurWidth:     30.0,
			MinChunkWeight:     0.3,
			MaxChunkThickness:  1.7,
			MinExtensionHeight: 2.0,
			BoxDx:              0.7,
			BoxDy:              0.4,
			TargetHypot:        0.75,
			TargetLineHypot:    1.5,
			MinSlurWidth:       2.0,
			ExtensionRatio:     0.5,
		},
		Text: TextConfig{
			GlyphMaxHeight:   3.0,
			SmallMaxWeight:   0.15,
			WordGapRatio:     1.0,
			MinOverlapRatio:  0.5,
			MinBlobWeight:    0.5,
			SmallXMargin:     1.0,
			SmallYRatio:      1.0,
			StaffMarginAbove: 1.0,
			StaffMarginBelow: 3.0,
			MaxFontSize:      1.8,
			MinAspect:        1.0,
			MaxAspect:        3.0,
			MinGrade:         0.5,
			Checker:          "classifier",
		},
		OCR: OCRConfig{Language: "eng", Margin: 10, Upscale: 2.0},
		Classifier: ClassifierConfig{
			Spread:     0.5,
			Prototypes: DefaultPrototypes(),
		},
	}
}

// DefaultPrototypes returns rough sizes for the most frequent shapes.
func DefaultPrototypes() []Prototype {
	return []Prototype{
		{Shape: glyph.Stem, Width: 0.12, Height: 3.5, Weight: 0.4},
		{Shape: glyph.Ledger, Width: 2.0, Height: 0.15, Weight: 0.3},
		{Shape: glyph.Beam, Width: 3.0, Height: 0.5, Weight: 1.5},
		{Shape: glyph.NoteheadBlack, Width: 1.2, Height: 1.0, Weight: 0.9},
		{Shape: glyph.NoteheadVoid, Width: 1.3, Height: 1.0, Weight: 0.5},
		{Shape: glyph.Dot, Width: 0.35, Height: 0.35, Weight: 0.1},
		{Shape: glyph.Slur, Width: 5.0, Height: 1.0, Weight: 0.8},
		{Shape: glyph.GClef, Width: 2.5, Height: 7.0, Weight: 5.0},
		{Shape: glyph.FClef, Width: 2.5, Height: 3.0, Weight: 2.5},
		{Shape: glyph.Sharp, Width: 0.9, Height: 2.8, Weight: 0.9},
		{Shape: glyph.Flat, Width: 0.8, Height: 2.3, Weight: 0.6},
		{Shape: glyph.Natural, Width: 0.6, Height: 2.8, Weight: 0.6},
		{Shape: glyph.Character, Width: 0.6, Height: 0.8, Weight: 0.2},
		{Shape: glyph.Text, Width: 3.0, Height: 0.8, Weight: 0.8},
	}
}

// LoadConfig reads a YAML file over DefaultConfig and validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that values are usable.
func (c *Config) Validate() error {
	if c.Image.Threshold < 1 || c.Image.Threshold > 255 {
		return fmt.Errorf("image.threshold must be in [1, 255], got %d", c.Image.Threshold)
	}

	grades := map[string]float64{
		"checker.refresh_min_grade": c.Checker.RefreshMinGrade,
		"compound.part_max_grade":   c.Compound.PartMaxGrade,
		"stem.reliable_grade":       c.Stem.ReliableGrade,
		"caesura.min_grade":         c.Caesura.MinGrade,
		"double_beam.min_grade":     c.DoubleBeam.MinGrade,
		"fermata_dot.min_grade":     c.FermataDot.MinGrade,
		"forte.min_grade":           c.Forte.MinGrade,
		"ledger.min_grade":          c.Ledger.MinGrade,
		"alteration.min_grade":      c.Alteration.MinGrade,
		"articulation.min_grade":    c.Articulation.MinGrade,
		"bass.min_grade":            c.Bass.MinGrade,
		"clef.min_grade":            c.Clef.MinGrade,
		"time.min_grade":            c.Time.MinGrade,
		"text.min_grade":            c.Text.MinGrade,
	}
	for name, v := range grades {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %g", name, v)
		}
	}

	positives := map[string]float64{
		"slur.max_circle_distance":  c.Slur.MaxCircleDistance,
		"slur.min_circle_radius":    c.Slur.MinCircleRadius,
		"slur.max_chunk_thickness":  c.Slur.MaxChunkThickness,
		"slur.target_hypot":         c.Slur.TargetHypot,
		"slur.target_line_hypot":    c.Slur.TargetLineHypot,
		"text.word_gap_ratio":       c.Text.WordGapRatio,
		"text.glyph_max_height":     c.Text.GlyphMaxHeight,
		"text.max_font_size":        c.Text.MaxFontSize,
		"alteration.stem_max_height": c.Alteration.StemMaxHeight,
		"alteration.stems_max_dx":   c.Alteration.StemsMaxDx,
	}
	for name, v := range positives {
		if v <= 0 {
			return fmt.Errorf("%s must be > 0, got %g", name, v)
		}
	}

	if c.Slur.MaxCircleRadius <= c.Slur.MinCircleRadius {
		return fmt.Errorf("slur.max_circle_radius (%g) must exceed slur.min_circle_radius (%g)",
			c.Slur.MaxCircleRadius, c.Slur.MinCircleRadius)
	}
	if c.Slur.ExtensionRatio <= 0 || c.Slur.ExtensionRatio >= 1 {
		return fmt.Errorf("slur.extension_ratio must be in (0, 1), got %g", c.Slur.ExtensionRatio)
	}
	if c.Text.MinOverlapRatio < 0 || c.Text.MinOverlapRatio > 1 {
		return fmt.Errorf("text.min_overlap_ratio must be in [0, 1], got %g", c.Text.MinOverlapRatio)
	}
	if c.Text.MinAspect > c.Text.MaxAspect {
		return fmt.Errorf("text.min_aspect (%g) must not exceed text.max_aspect (%g)",
			c.Text.MinAspect, c.Text.MaxAspect)
	}
	switch c.Text.Checker {
	case "classifier", "ocr":
	default:
		return fmt.Errorf("unsupported text.checker %q (use classifier or ocr)", c.Text.Checker)
	}
	if c.OCR.Language == "" {
		return fmt.Errorf("ocr.language is required")
	}
	if c.OCR.Upscale < 1 {
		return fmt.Errorf("ocr.upscale must be >= 1, got %g", c.OCR.Upscale)
	}

	if c.Classifier.Spread <= 0 {
		return fmt.Errorf("classifier.spread must be > 0, got %g", c.Classifier.Spread)
	}
	for i, p := range c.Classifier.Prototypes {
		if p.Shape == glyph.NoShape {
			return fmt.Errorf("classifier.prototypes[%d]: shape is required", i)
		}
		if p.Width <= 0 || p.Height <= 0 || p.Weight <= 0 {
			return fmt.Errorf("classifier.prototypes[%d] (%s): width, height and weight must be > 0", i, p.Shape)
		}
	}
	return nil
}
