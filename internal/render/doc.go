// Package render draws pattern results over a score page for inspection.
//
// Every active glyph of a system is tinted with the color of its shape and
// framed by its bounding box. Slurs with a fitted circle get their curve drawn
// on top, and glyph ids can be printed above the boxes so that log records
// can be matched with what is on the page.
//
// # Colors
//
// Each shape gets a fixed hue, spread around the color wheel by the golden
// angle so that neighboring shape codes do not look alike. Unassigned glyphs
// are gray.
//
// # Output
//
// Overlay returns an NRGBA image. EncodePNGBase64 turns it into the
// base64 PNG string returned by the server.
package render
