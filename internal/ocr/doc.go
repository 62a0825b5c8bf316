// Package ocr provides Optical Character Recognition (OCR) functionality using Tesseract.
//
// The pattern engine sees OCR through the Engine interface: an image goes in,
// text lines with their bounds and estimated font size come out. Tesseract
// implements it with gosseract/v2; tests and callers without Tesseract can
// provide their own Engine.
//
// # Prerequisites
//
// Tesseract must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr
//   - macOS: brew install tesseract
//
// Language data files are required for each language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr-eng (for English)
//   - Other languages: tesseract-ocr-<lang> packages
//
// The language comes from the "ocr.language" setting ("eng" by default).
//
// # Glyph Images
//
// Text candidates are small: a word under a staff is often less than 20
// pixels high. Recognize pads the image with white and enlarges it before
// handing it to Tesseract, then maps the line boxes back to the input
// coordinates.
//
// # Error Handling
//
// Recognize returns errors for:
//   - Unsupported language codes or missing training data
//   - Tesseract initialization failures
//   - Image encoding failures
//
// GetInfo never fails: it reports availability, version and the error met, if
// any.
package ocr
