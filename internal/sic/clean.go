package sic

import "strings"

// CleanOne resolves a single raw token to the registered codes it denotes at
// the given level. Trailing x/X wildcards are dropped, longer codes are
// truncated and shorter ones expanded, so "861012" gives {"86101"} and "86xxx"
// every registered sub-class under 86. At Section level the 2-digit division
// is mapped to its letter ("86101" gives {"Q"}). Anything unresolvable gives
// an empty set; unregistered expansions are dropped silently.
func (e *Engine) CleanOne(token string, lvl Level) Set {
	// Section letters are already clean at their own level.
	if lvl == Section && isSectionLetter(token) && e.reg.IsValid(token) {
		return NewSet(token)
	}

	digits := strings.TrimRight(token, "xX")
	if !isDigits(digits) || !lvl.valid() {
		return Set{}
	}

	width := lvl.Digits()
	if lvl == Section {
		width = 2
	}

	var prep Set
	if len(digits) >= width {
		prep = NewSet(digits[:width])
	} else {
		var err error
		prep, err = Expand(digits, width, e.maxExpandWidth)
		if err != nil {
			e.emit(EventExpandTooWide, token, err.Error())
			return Set{}
		}
	}

	if lvl == Section {
		letters := Set{}
		for div := range prep {
			if letter, ok := e.reg.Section(div); ok {
				letters[letter] = struct{}{}
			}
		}
		prep = letters
	}

	out := Set{}
	for code := range prep {
		if e.reg.IsValid(code) {
			out[code] = struct{}{}
		}
	}
	return out
}

// CleanSet cleans each raw token at the given level. Codes from every
// resolvable token are merged into Valid; tokens that resolve to nothing are
// kept verbatim in Invalid and reported as EventInvalidToken. Each token
// therefore contributes to exactly one side.
func (e *Engine) CleanSet(tokens []string, lvl Level) Result {
	return e.cleanTokens(tokens, lvl, EventInvalidToken)
}

func (e *Engine) cleanTokens(tokens []string, lvl Level, kind EventKind) Result {
	res := emptyResult()
	for _, tok := range tokens {
		codes := e.CleanOne(tok, lvl)
		if len(codes) == 0 {
			e.emit(kind, tok, "no valid codes at "+lvl.String()+" level")
			res.Invalid[tok] = struct{}{}
			continue
		}
		for code := range codes {
			res.Valid[code] = struct{}{}
		}
	}
	return res
}

// CleanRaw tokenizes raw and cleans the tokens in sorted order.
func (e *Engine) CleanRaw(raw string, lvl Level) Result {
	return e.CleanSet(e.ParseCodes(raw).Sorted(), lvl)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isSectionLetter(s string) bool {
	return len(s) == 1 && s[0] >= 'A' && s[0] <= 'Z'
}
