// Package imaging loads score pages and prepares them for run-length analysis.
//
// Pages are decoded once through an ImageCache, then binarized into black ink
// on white paper. The binarized page is what the lag package slices into
// sections.
//
// # Coordinate System
//
// All pixel coordinates are 0-based, with (0,0) at the top-left corner.
// Regions are half-open: (x1,y1) is inclusive, (x2,y2) is exclusive.
// Region keeps page coordinates, so sections built from a sub-image can be
// drawn back onto the full page.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Binarize returns a new
// image and never modifies its input.
//
// # Performance Considerations
//
// A scanned page at 300 dpi is several megabytes once decoded. Long-running
// processes should Evict() pages once every system on them has been checked.
package imaging
