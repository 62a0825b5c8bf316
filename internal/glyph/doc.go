// Package glyph holds the symbol candidates of a system and their shapes.
//
// # Model
//
//   - Shape: the music symbol (or category such as TEXT or CLUTTER) a glyph
//     is assigned. NoShape means unassigned.
//   - Evaluation: a shape with its grade in [0, 1].
//   - Glyph: a set of lag sections with bounds, weight, an optional
//     evaluation, stem links, forbidden shapes and cached slur circle or text.
//   - System: the section/glyph graph of one system, with its scale and staves.
//
// # Glyph lifecycle
//
// A glyph is first built transient (BuildTransientGlyph,
// BuildTransientCompound): nothing in the graph changes. AddGlyph registers
// it and makes it the owner of its sections. Glyphs that owned any of those
// sections are replaced wholesale: shape cleared, sections released, removed
// from the active set. Rebuilding a glyph from exactly the same sections
// returns the original registered glyph.
//
// Refresh turns released sections back into glyphs and classifies every
// unassigned glyph.
//
// # Classification
//
// Classifier is the contract of the statistical classifier. Compound
// evaluation passes a Trial in the Context: the glyphs being merged appear
// unassigned through it, while the glyphs themselves are never modified
// until the compound is accepted.
//
// # Scale
//
// Scale converts interline fractions to pixels; Staff gives staff line
// ordinates and pitch positions. Both are inputs: staves are never detected
// here.
package glyph
