package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
)

// Gray levels of a binarized page.
const (
	Ink   uint8 = 0
	Paper uint8 = 255
)

// Binarize turns a page into black ink on white paper.
//
// Parameters:
//   - img: Any decoded page.
//   - threshold: Gray level below which a pixel becomes ink. Typical: 128.
//
// Returns a gray image whose pixels are Ink or Paper.
func Binarize(img image.Image, threshold uint8) *image.Gray {
	gray := effect.Grayscale(img)
	return segment.Threshold(gray, threshold)
}

// Region returns the part of a binarized page covering r, keeping page
// coordinates. r is clipped to the page.
func Region(bin *image.Gray, r image.Rectangle) *image.Gray {
	return bin.SubImage(r.Intersect(bin.Bounds())).(*image.Gray)
}
