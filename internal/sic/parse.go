package sic

import (
	"strings"

	"golang.org/x/text/cases"
)

// ParseCodes extracts code tokens from a raw coder or model string such as
// "[8601x, 1410, nan]". Tokens keep any trailing x/X wildcard and are
// left-padded with zeros to the configured width, so the example yields
// {"01410", "8601x"}. Sentinel values and unusable patterns yield an empty set.
func (e *Engine) ParseCodes(raw string) Set {
	raw = strings.TrimSpace(raw)
	if e.isSentinel(raw) {
		return Set{}
	}
	if e.reErr != nil {
		e.emit(EventBadPattern, raw, e.reErr.Error())
		return Set{}
	}

	// Coder shorthand for "don't know" and "four or more". Removed in this
	// order so "4-9+" collapses completely.
	raw = strings.ReplaceAll(raw, "-9", "")
	raw = strings.ReplaceAll(raw, "4+", "")

	out := Set{}
	for _, tok := range e.re.FindAllString(raw, -1) {
		out[ZeroPad(tok, e.padding)] = struct{}{}
	}
	return out
}

func (e *Engine) isSentinel(s string) bool {
	_, ok := e.sentinels[cases.Fold().String(s)]
	return ok
}

// ZeroPad left-pads s with zeros to width. Longer strings are returned as is.
func ZeroPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
