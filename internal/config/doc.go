// Package config loads the pattern engine settings from YAML.
//
// Every threshold is relative to the sheet scale so that one file serves
// scores scanned at any resolution. A minimal file only lists what differs
// from DefaultConfig:
//
//	checker:
//	  disabled: [text-greedy]
//	slur:
//	  max_circle_distance: 0.12
//	text:
//	  checker: ocr
//	ocr:
//	  language: deu
//
// LoadConfig merges the file over the defaults and validates the result.
package config
