package sic

import "github.com/rotisserie/eris"

// Candidate is one ranked alternative emitted by a coding model.
type Candidate struct {
	Code       string  `json:"code"`
	Likelihood float64 `json:"likelihood"`
}

// ResolveCandidates cleans model candidates at the given level.
//
// Each candidate code is cleaned on its own; unresolvable codes go to
// Invalid verbatim. A code reached by several candidates keeps the highest
// likelihood. If exactly one code scores at or above threshold, only that
// code is returned; otherwise every resolved code is returned and the
// threshold has no effect.
func (e *Engine) ResolveCandidates(cands []Candidate, lvl Level, threshold float64) Result {
	res := emptyResult()
	scores := make(map[string]float64)

	for _, c := range cands {
		codes := e.CleanOne(c.Code, lvl)
		if len(codes) == 0 {
			res.Invalid[c.Code] = struct{}{}
			continue
		}
		for code := range codes {
			if prev, ok := scores[code]; !ok || c.Likelihood > prev {
				scores[code] = c.Likelihood
			}
		}
	}

	var top string
	survivors := 0
	for code, score := range scores {
		if score >= threshold {
			survivors++
			top = code
		}
	}

	if survivors == 1 {
		res.Valid[top] = struct{}{}
		return res
	}
	for code := range scores {
		res.Valid[code] = struct{}{}
	}
	return res
}

// Resolve dispatches on the input variant: a Token is tokenized then
// cleaned, Tokens are cleaned as given, and Candidates are resolved with the
// threshold. Any other Input yields (∅, ∅) and ErrUnsupportedInput.
func (e *Engine) Resolve(in Input, lvl Level, threshold float64) (Result, error) {
	switch v := in.(type) {
	case Token:
		return e.CleanRaw(string(v), lvl), nil
	case Tokens:
		return e.CleanSet(v, lvl), nil
	case Candidates:
		return e.ResolveCandidates(v, lvl, threshold), nil
	default:
		err := eris.Wrapf(ErrUnsupportedInput, "input %T", in)
		e.emit(EventUnsupportedInput, typeName(in), err.Error())
		return emptyResult(), err
	}
}
