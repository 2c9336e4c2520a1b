package sic

import (
	"encoding/json"
	"sort"
	"strings"
)

// Set is an unordered collection of code strings. Iteration order of the
// underlying map is random, so anything that leaves the process goes through
// Sorted or MarshalJSON.
type Set map[string]struct{}

// NewSet returns a set holding the given values.
func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Has reports whether v is in the set.
func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Len returns the number of members.
func (s Set) Len() int {
	return len(s)
}

// Union returns a new set holding the members of s and every other set.
func (s Set) Union(others ...Set) Set {
	out := make(Set, len(s))
	for v := range s {
		out[v] = struct{}{}
	}
	for _, o := range others {
		for v := range o {
			out[v] = struct{}{}
		}
	}
	return out
}

// Sorted returns the members in ascending order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// String renders the set as a sorted, comma separated list in braces.
func (s Set) String() string {
	return "{" + strings.Join(s.Sorted(), ", ") + "}"
}

// MarshalJSON encodes the set as a sorted array. A nil set encodes as [].
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array of strings.
func (s *Set) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*s = NewSet(values...)
	return nil
}

// FlattenSorted returns the de-duplicated members of all sets in ascending
// order. The result is identical for any ordering of the inputs.
func FlattenSorted(sets ...Set) []string {
	return Set(nil).Union(sets...).Sorted()
}
