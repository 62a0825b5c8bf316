// Package lag builds run-length sections from binary images.
//
// A LAG (Line Adjacency Graph) decomposes the ink of an image into runs,
// maximal strips of foreground pixels along one orientation, and joins runs
// at consecutive positions into sections. Sections are linked to the
// sections they touch at the previous and next positions, and optionally to
// touching sections of the other orientation (cross links).
//
// # Why sections
//
// Glyphs are built as sets of sections. When a glyph is found to be two
// symbols stuck together, or one symbol broken in two, the correction is a
// new partition of the same sections: no pixel is ever reprocessed.
//
// # Building
//
//	gray := imaging.Binarize(img, 128)
//	l := lag.Build(gray, lag.Vertical, 128, 1)
//	for _, comp := range lag.Components(l.Sections) {
//	    // one connected ink blob per component
//	}
//
// A run continues the section of the previous run only when both touch
// nothing else, so every fork or merge in the ink starts new sections.
package lag
