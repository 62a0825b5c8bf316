package geometry

import "image"

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// The coordinate convention follows standard image bounds:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive)
//
// The zero value is an empty box. Union with an empty box returns the other box.
type Bounds struct {
	X1 int `json:"x1"` // Left edge (inclusive)
	Y1 int `json:"y1"` // Top edge (inclusive)
	X2 int `json:"x2"` // Right edge (exclusive)
	Y2 int `json:"y2"` // Bottom edge (exclusive)
}

// Rect builds bounds from a top-left corner and a size.
func Rect(x, y, width, height int) Bounds {
	return Bounds{X1: x, Y1: y, X2: x + width, Y2: y + height}
}

// FromImageRect converts an image.Rectangle into Bounds.
func FromImageRect(r image.Rectangle) Bounds {
	return Bounds{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

// ImageRect converts the bounds into an image.Rectangle.
func (b Bounds) ImageRect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// Width returns the horizontal extent in pixels.
func (b Bounds) Width() int {
	return b.X2 - b.X1
}

// Height returns the vertical extent in pixels.
func (b Bounds) Height() int {
	return b.Y2 - b.Y1
}

// Area returns Width × Height, or 0 for an empty box.
func (b Bounds) Area() int {
	if b.Empty() {
		return 0
	}
	return b.Width() * b.Height()
}

// Empty reports whether the box contains no pixel.
func (b Bounds) Empty() bool {
	return b.X2 <= b.X1 || b.Y2 <= b.Y1
}

// Center returns the geometric center of the box.
func (b Bounds) Center() Point {
	return Point{
		X: float64(b.X1) + float64(b.Width())/2,
		Y: float64(b.Y1) + float64(b.Height())/2,
	}
}

// Contains reports whether pixel (x, y) lies inside the box.
func (b Bounds) Contains(x, y int) bool {
	return x >= b.X1 && x < b.X2 && y >= b.Y1 && y < b.Y2
}

// ContainsPoint reports whether a real point lies inside the box.
func (b Bounds) ContainsPoint(p Point) bool {
	return p.X >= float64(b.X1) && p.X < float64(b.X2) &&
		p.Y >= float64(b.Y1) && p.Y < float64(b.Y2)
}

// ContainsBounds reports whether o lies entirely inside b.
func (b Bounds) ContainsBounds(o Bounds) bool {
	return o.X1 >= b.X1 && o.X2 <= b.X2 && o.Y1 >= b.Y1 && o.Y2 <= b.Y2
}

// Intersects reports whether the two boxes share at least one pixel.
func (b Bounds) Intersects(o Bounds) bool {
	if b.Empty() || o.Empty() {
		return false
	}
	return b.X1 < o.X2 && b.X2 > o.X1 && b.Y1 < o.Y2 && b.Y2 > o.Y1
}

// Intersection returns the common part of two boxes (empty if disjoint).
func (b Bounds) Intersection(o Bounds) Bounds {
	r := Bounds{
		X1: maxInt(b.X1, o.X1),
		Y1: maxInt(b.Y1, o.Y1),
		X2: minInt(b.X2, o.X2),
		Y2: minInt(b.Y2, o.Y2),
	}
	if r.Empty() {
		return Bounds{}
	}
	return r
}

// Union returns the smallest box containing both boxes.
func (b Bounds) Union(o Bounds) Bounds {
	if b.Empty() {
		return o
	}
	if o.Empty() {
		return b
	}
	return Bounds{
		X1: minInt(b.X1, o.X1),
		Y1: minInt(b.Y1, o.Y1),
		X2: maxInt(b.X2, o.X2),
		Y2: maxInt(b.Y2, o.Y2),
	}
}

// Grow enlarges the box by dx on the left and right and dy on top and bottom.
// Negative values shrink it.
func (b Bounds) Grow(dx, dy int) Bounds {
	return Bounds{X1: b.X1 - dx, Y1: b.Y1 - dy, X2: b.X2 + dx, Y2: b.Y2 + dy}
}

// Translate moves the box by (dx, dy).
func (b Bounds) Translate(dx, dy int) Bounds {
	return Bounds{X1: b.X1 + dx, Y1: b.Y1 + dy, X2: b.X2 + dx, Y2: b.Y2 + dy}
}

// VerticalOverlap returns the number of rows shared by the two boxes.
func (b Bounds) VerticalOverlap(o Bounds) int {
	return maxInt(0, minInt(b.Y2, o.Y2)-maxInt(b.Y1, o.Y1))
}

// HorizontalOverlap returns the number of columns shared by the two boxes.
func (b Bounds) HorizontalOverlap(o Bounds) int {
	return maxInt(0, minInt(b.X2, o.X2)-maxInt(b.X1, o.X1))
}

// HorizontalGap returns the number of columns between the two boxes,
// or 0 when they overlap horizontally.
func (b Bounds) HorizontalGap(o Bounds) int {
	if o.X1 >= b.X2 {
		return o.X1 - b.X2
	}
	if b.X1 >= o.X2 {
		return b.X1 - o.X2
	}
	return 0
}

// BoundsOfPoints returns the smallest pixel box containing all points.
// Coordinates are rounded to the nearest pixel.
func BoundsOfPoints(points ...Point) Bounds {
	var b Bounds
	for i, p := range points {
		x, y := Round(p.X), Round(p.Y)
		if i == 0 {
			b = Bounds{X1: x, Y1: y, X2: x + 1, Y2: y + 1}
			continue
		}
		b.X1 = minInt(b.X1, x)
		b.Y1 = minInt(b.Y1, y)
		b.X2 = maxInt(b.X2, x+1)
		b.Y2 = maxInt(b.Y2, y+1)
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
