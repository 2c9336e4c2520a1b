package sic

// Result pairs the registered codes a raw input resolved to with the raw
// tokens that resolved to nothing. The two sets never share a member.
type Result struct {
	Valid   Set `json:"valid"`
	Invalid Set `json:"invalid"`
}

// emptyResult is the (∅, ∅) pair.
func emptyResult() Result {
	return Result{Valid: Set{}, Invalid: Set{}}
}
