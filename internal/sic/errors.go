package sic

import "github.com/rotisserie/eris"

// Sentinel errors. Callers match them with eris.Is or errors.Is.
var (
	// ErrUnsupportedInput is returned when a raw value is neither a code
	// string, a list of code strings, nor a list of candidate records.
	ErrUnsupportedInput = eris.New("sic: unsupported input shape")

	// ErrExpandTooWide is returned when expansion would generate more than
	// 10^maxWidth codes.
	ErrExpandTooWide = eris.New("sic: expansion width exceeds limit")

	// ErrInvalidLevel is returned for a digit width that is not a hierarchy level.
	ErrInvalidLevel = eris.New("sic: invalid hierarchy level")
)
