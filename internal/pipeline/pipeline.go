package pipeline

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/ironsheep/omr-patterns/internal/classifier"
	"github.com/ironsheep/omr-patterns/internal/config"
	"github.com/ironsheep/omr-patterns/internal/geometry"
	"github.com/ironsheep/omr-patterns/internal/glyph"
	"github.com/ironsheep/omr-patterns/internal/imaging"
	"github.com/ironsheep/omr-patterns/internal/lag"
	"github.com/ironsheep/omr-patterns/internal/ocr"
	"github.com/ironsheep/omr-patterns/internal/pattern"
)

// inkLevel separates ink from paper on a binarized page.
const inkLevel = 128

// ErrNoGlyph is returned when an assignment or a glyph id matches no glyph.
var ErrNoGlyph = errors.New("no glyph found")

// Assignment forces the shape of the glyph found at a point.
type Assignment struct {
	X     int         `json:"x"`
	Y     int         `json:"y"`
	Shape glyph.Shape `json:"shape"`

	// Grade defaults to 1 when zero.
	Grade float64 `json:"grade,omitempty"`

	// Manual shapes are never altered by the correctors.
	Manual bool `json:"manual,omitempty"`
}

// Request describes one system to check.
type Request struct {
	ImagePath string `json:"image_path"`

	// Region limits the system to part of the page. The whole page is used
	// when nil.
	Region *geometry.Bounds `json:"region,omitempty"`

	SystemID    int            `json:"system_id"`
	Scale       glyph.Scale    `json:"scale"`
	Staves      []*glyph.Staff `json:"staves,omitempty"`
	Assignments []Assignment   `json:"assignments,omitempty"`
}

// Validate checks the fields every request needs.
func (r *Request) Validate() error {
	if r.ImagePath == "" {
		return errors.New("image_path is required")
	}
	if r.Scale.Interline <= 0 {
		return fmt.Errorf("scale.interline must be positive, got %d", r.Scale.Interline)
	}
	if r.Scale.LineThickness <= 0 {
		return fmt.Errorf("scale.line_thickness must be positive, got %d", r.Scale.LineThickness)
	}
	if r.Region != nil && r.Region.Empty() {
		return errors.New("region is empty")
	}
	for _, st := range r.Staves {
		if len(st.Lines) != 5 {
			return fmt.Errorf("staff %d must have 5 lines, got %d", st.ID, len(st.Lines))
		}
	}
	return nil
}

// Pipeline builds and checks systems with one configuration.
type Pipeline struct {
	cfg    *config.Config
	cache  *imaging.ImageCache
	engine ocr.Engine
	logger *slog.Logger
}

// New creates a pipeline.
//
// Parameters:
//   - cfg: Thresholds and classifier prototypes. DefaultConfig when nil.
//   - cache: Page cache. A private one is created when nil.
//   - engine: OCR engine for the text patterns. When nil and the text checker
//     is "ocr", a Tesseract engine is created from cfg.OCR.
//   - logger: Decision log. slog.Default when nil.
func New(cfg *config.Config, cache *imaging.ImageCache, engine ocr.Engine, logger *slog.Logger) *Pipeline {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if cache == nil {
		cache = imaging.NewImageCache()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if engine == nil && cfg.Text.Checker == "ocr" {
		engine = ocr.NewTesseract(cfg.OCR)
	}
	return &Pipeline{cfg: cfg, cache: cache, engine: engine, logger: logger}
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() *config.Config {
	return p.cfg
}

// BuildSystem loads the page and builds the classified system of req.
//
// Returns the system and the binarized region it was built from, which keeps
// page coordinates.
func (p *Pipeline) BuildSystem(req Request) (*glyph.System, *image.Gray, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, fmt.Errorf("failed to validate request: %w", err)
	}

	page, err := p.cache.Load(req.ImagePath)
	if err != nil {
		return nil, nil, err
	}

	bin := imaging.Binarize(page, uint8(p.cfg.Image.Threshold))
	if req.Region != nil {
		bin = imaging.Region(bin, req.Region.ImageRect())
		if bin.Bounds().Empty() {
			return nil, nil, fmt.Errorf("region %+v lies outside the page", *req.Region)
		}
	}

	l := lag.Build(bin, lag.Vertical, inkLevel, 1)
	sys := glyph.NewSystem(req.SystemID, req.Scale, req.Staves, l.Sections)
	sys.SetLogger(p.logger)
	if req.Region != nil {
		sys.SetBounds(geometry.FromImageRect(bin.Bounds()))
	}
	sys.Refresh(nil, 0)

	if err := applyAssignments(sys, req.Assignments); err != nil {
		return nil, nil, err
	}

	assigned := sys.Refresh(p.classifier(req.Scale), p.cfg.Checker.RefreshMinGrade)
	p.logger.Debug("system built",
		"system", sys.ID, "sections", len(l.Sections), "glyphs", len(sys.Glyphs()), "assigned", assigned)
	return sys, bin, nil
}

func (p *Pipeline) classifier(scale glyph.Scale) glyph.Classifier {
	return classifier.New(p.cfg.Classifier, scale)
}

// env wraps a system for the pattern package.
func (p *Pipeline) env(sys *glyph.System) *pattern.Env {
	return &pattern.Env{
		System:     sys,
		Classifier: p.classifier(sys.Scale),
		Config:     p.cfg,
		OCR:        p.engine,
		Logger:     p.logger,
	}
}

// applyAssignments gives each assigned point's glyph its shape.
func applyAssignments(sys *glyph.System, assignments []Assignment) error {
	for _, a := range assignments {
		g := GlyphAt(sys, a.X, a.Y)
		if g == nil {
			return fmt.Errorf("failed to assign %s at (%d,%d): %w", a.Shape, a.X, a.Y, ErrNoGlyph)
		}
		switch {
		case a.Manual:
			g.SetManualShape(a.Shape)
		case a.Grade == 0:
			g.SetShape(a.Shape, 1)
		default:
			g.SetShape(a.Shape, a.Grade)
		}
	}
	return nil
}

// GlyphAt returns the smallest active glyph whose box contains (x, y), or nil.
func GlyphAt(sys *glyph.System, x, y int) *glyph.Glyph {
	var best *glyph.Glyph
	for _, g := range sys.Glyphs() {
		if !g.Bounds().Contains(x, y) {
			continue
		}
		if best == nil || g.Bounds().Area() < best.Bounds().Area() {
			best = g
		}
	}
	return best
}

// Result is the outcome of Check.
type Result struct {
	Report pattern.Report `json:"report"`
	Glyphs []GlyphInfo    `json:"glyphs"`
}

// Check builds the system of req and runs the pattern sequence over it.
func (p *Pipeline) Check(req Request) (*Result, *glyph.System, error) {
	sys, _, err := p.BuildSystem(req)
	if err != nil {
		return nil, nil, err
	}
	res, err := p.CheckSystem(sys)
	if err != nil {
		return nil, nil, err
	}
	return res, sys, nil
}

// CheckSystem runs the pattern sequence over a system built by BuildSystem.
func (p *Pipeline) CheckSystem(sys *glyph.System) (*Result, error) {
	checker, err := pattern.NewChecker(p.env(sys))
	if err != nil {
		return nil, fmt.Errorf("failed to create checker: %w", err)
	}

	report := checker.RunWithReport()
	return &Result{Report: report, Glyphs: Describe(sys)}, nil
}

// FitCircle fits a slur circle through the sections of the given glyphs.
//
// Returns an error wrapping ErrNoGlyph when an id is unknown, or the fitting
// error when the sections are degenerate.
func (p *Pipeline) FitCircle(req Request, ids []int) (*CircleInfo, error) {
	if len(ids) == 0 {
		return nil, errors.New("at least one glyph id is required")
	}
	sys, _, err := p.BuildSystem(req)
	if err != nil {
		return nil, err
	}

	var sections []*lag.Section
	for _, id := range ids {
		g := sys.GlyphByID(id)
		if g == nil {
			return nil, fmt.Errorf("failed to find glyph %d: %w", id, ErrNoGlyph)
		}
		sections = append(sections, g.Members()...)
	}

	inspector := pattern.NewSlurInspector(p.env(sys))
	c, err := inspector.ComputeCircle(sections)
	if err != nil {
		return nil, fmt.Errorf("failed to fit circle: %w", err)
	}
	info := describeCircle(c)
	info.Valid = inspector.IsValid(c)
	return info, nil
}
