package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/omr-patterns/internal/config"
)

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Height returns Y2 - Y1.
func (b Bounds) Height() int {
	return b.Y2 - b.Y1
}

// Line is one line of text found by the engine.
type Line struct {
	// Text is the recognized content, trimmed.
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Bounds is the line box in the coordinates of the submitted image.
	Bounds Bounds `json:"bounds"`

	// FontSize is the estimated font size in pixels (the line box height).
	FontSize float64 `json:"font_size"`
}

// Engine recognizes lines of text in an image.
//
// Recognition is synchronous. Implementations must accept black text on a
// white background.
type Engine interface {
	Recognize(img image.Image, language string) ([]Line, error)
}

// Tesseract is the Engine backed by a native Tesseract installation.
type Tesseract struct {
	// TessdataPrefix overrides the training data location when not empty.
	TessdataPrefix string

	// Margin is the white border, in pixels, added around the image.
	Margin int

	// Upscale enlarges the image before recognition; small glyphs read better.
	Upscale float64
}

// NewTesseract creates an engine from the OCR settings.
func NewTesseract(cfg config.OCRConfig) *Tesseract {
	t := &Tesseract{
		TessdataPrefix: cfg.TessdataPrefix,
		Margin:         cfg.Margin,
		Upscale:        cfg.Upscale,
	}
	if t.Upscale < 1 {
		t.Upscale = 1
	}
	return t
}

// Recognize runs Tesseract on an in-memory image and returns its text lines.
//
// Parameters:
//   - img: Black text on white background, typically a glyph image.
//   - language: Tesseract language code (e.g., "eng"). The corresponding
//     language data must be installed.
//
// Returns:
//   - []Line: Non-empty lines, with bounds and font size mapped back to the
//     coordinates of img.
//   - error: Non-nil if encoding or Tesseract fails.
//
// # Preprocessing
//
// The image is padded with Margin white pixels on each side and enlarged by
// Upscale. Both transformations are undone on the returned bounds.
func (t *Tesseract) Recognize(img image.Image, language string) ([]Line, error) {
	prepared := t.prepare(img)

	var buf bytes.Buffer
	if err := png.Encode(&buf, prepared); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if t.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.TessdataPrefix); err != nil {
			return nil, fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	origin := img.Bounds().Min
	lines := make([]Line, 0, len(boxes))
	for _, box := range boxes {
		text := strings.TrimSpace(box.Word)
		if text == "" {
			continue
		}
		b := Bounds{
			X1: t.unscale(box.Box.Min.X) + origin.X,
			Y1: t.unscale(box.Box.Min.Y) + origin.Y,
			X2: t.unscale(box.Box.Max.X) + origin.X,
			Y2: t.unscale(box.Box.Max.Y) + origin.Y,
		}
		lines = append(lines, Line{
			Text:       text,
			Confidence: float64(box.Confidence) / 100.0,
			Bounds:     b,
			FontSize:   float64(b.Height()),
		})
	}
	return lines, nil
}

// prepare pads and enlarges the image.
func (t *Tesseract) prepare(img image.Image) image.Image {
	b := img.Bounds()
	canvas := imaging.New(b.Dx()+2*t.Margin, b.Dy()+2*t.Margin, color.White)
	canvas = imaging.Paste(canvas, img, image.Pt(t.Margin, t.Margin))
	if t.Upscale <= 1 {
		return canvas
	}
	w := int(math.Round(float64(canvas.Bounds().Dx()) * t.Upscale))
	return imaging.Resize(canvas, w, 0, imaging.Lanczos)
}

// unscale maps a coordinate of the prepared image back to the input image.
func (t *Tesseract) unscale(v int) int {
	return int(math.Round(float64(v)/t.Upscale)) - t.Margin
}

// Version returns the installed Tesseract version.
func Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}

// Info contains information about the OCR subsystem.
type Info struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
	Backend   string `json:"backend"`
	Language  string `json:"language"`
}

// GetInfo reports whether Tesseract can be used with the configured language.
func GetInfo(cfg config.OCRConfig) Info {
	info := Info{Backend: "gosseract", Language: cfg.Language}

	client := gosseract.NewClient()
	defer client.Close()

	if cfg.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(cfg.TessdataPrefix); err != nil {
			info.Error = err.Error()
			return info
		}
	}
	if err := client.SetLanguage(cfg.Language); err != nil {
		info.Error = err.Error()
		return info
	}

	info.Version = client.Version()
	info.Available = info.Version != ""
	return info
}
