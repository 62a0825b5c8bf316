// Package classifier provides a size-based stand-in for the statistical
// shape classifier.
//
// The pattern engine only depends on the glyph.Classifier interface. Nearest
// implements it with a handful of prototypes (typical width, height and
// weight per shape, in interline units) so that the command and the server
// can run end to end. It honors the vote contract: shape filter, forbidden
// shapes and minimum grade.
package classifier
