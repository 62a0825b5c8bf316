// Package pipeline turns a score page into a checked glyph system.
//
// A Request names the page, the system region, the sheet scale and the
// staves. The pipeline binarizes the page, slices the region into vertical
// sections, groups connected sections into glyphs and submits them to the
// configured classifier. Shapes known in advance can be forced through
// Assignments. Check then runs the pattern sequence and reports every step
// along with the resulting glyphs.
//
// # Thread Safety
//
// A Pipeline may serve concurrent requests: each request builds its own
// system, and the page cache is shared. A system itself must not be shared
// between goroutines.
package pipeline
