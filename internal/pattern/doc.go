// Package pattern implements the shape correctors run over the glyphs of a
// system once the classifier has done a first pass.
//
// Each corrector (a Pattern) looks for one kind of known mistake and repairs
// it in place: merging pieces into a compound symbol, rejecting a shape that
// cannot stand where it was found, or rebuilding a glyph from a better subset
// of sections. Run returns the number of glyphs modified.
//
// # Sequence
//
// Checker runs the correctors in the fixed order of DefaultSequence, with
// refresh steps between groups of them:
//
//	refresh, caesura, beam-hook, double-beam, fermata-dot, flag, forte,
//	alteration, stem, refresh, ledger, articulation, bass, clef, time,
//	slur, text-border, text-greedy, refresh
//
// Steps may be disabled through the checker configuration, never reordered.
// A failing or panicking step is reported and counts zero; the next steps run.
//
// # Compounds
//
// BuildCompound is the generic merge used by most correctors. A
// CompoundAdapter supplies the search box around a seed, the filters on
// candidates and the evaluation of the transient compound. The evaluation
// sees the parts through a glyph.Trial, so a rejected compound leaves the
// graph untouched.
//
// # Slurs
//
// SlurInspector fits a circle to each slur. Slurs cut by other symbols are
// extended on both sides, first with whole glyphs and then section by
// section. Slurs still invalid are trimmed down to the sections that lie on
// a circle grown from the best seed section.
//
// # Text
//
// The text correctors gather candidate glyphs of a region into blobs
// (AggregateBlobs, PurgeBlobs, InsertSmall) and submit each blob to a
// TextChecker, backed by the classifier or by OCR.
//
// # Thread Safety
//
// A Checker and its patterns work on a single glyph.System and must not be
// shared between goroutines. Distinct systems may be checked concurrently.
package pattern
