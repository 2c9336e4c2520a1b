package sic

// CodabilityLevel walks from sub-class up to section, re-cleaning the working
// set at each level, and returns the first level where exactly one code
// remains. Truncation merges codes that share a prefix, so {"01", "01621"}
// resolves at division level. ok is false when no level resolves, including
// for an empty set. Tokens dropped along the way are reported as
// EventIntermediateInvalid.
func (e *Engine) CodabilityLevel(codes Set) (lvl Level, ok bool) {
	working := codes
	for _, l := range Levels() {
		working = e.cleanTokens(working.Sorted(), l, EventIntermediateInvalid).Valid
		if len(working) == 1 {
			return l, true
		}
	}
	return 0, false
}

// Codability returns the codability label of codes, or LabelUncodable.
func (e *Engine) Codability(codes Set) Label {
	lvl, ok := e.CodabilityLevel(codes)
	if !ok {
		return LabelUncodable
	}
	return lvl.Label()
}
