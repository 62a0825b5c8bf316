// Package geometry provides the planar primitives used by glyph analysis.
//
// All coordinates are image coordinates: x grows to the right, y grows
// downward, and integer coordinates name pixel centers.
//
// # Boxes
//
// Bounds is an axis-aligned pixel box with an inclusive top-left corner and
// an exclusive bottom-right corner. It offers the usual set operations
// (Intersects, Union, Grow) used to build search areas around glyphs.
//
// # Circles
//
// Circle is the model used to validate slurs:
//
//   - NewCircleThrough builds the exact circle through three points.
//   - FitCircle solves the algebraic least-squares problem with gonum.
//   - Fit/RMS measure the root-mean-square residual of a pixel set.
//   - Curve approximates the arc between the defining points by a single
//     cubic Bézier curve ordered left to right.
//
// Collinear points yield ErrDegenerate; a circle without a usable arc
// returns a nil curve.
//
// # Lines
//
// FitLine computes an orthogonal-regression line from point coordinates
// using gonum/stat; it tells whether a point cloud is mainly horizontal.
package geometry
