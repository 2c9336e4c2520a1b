// Package registry holds the fixed table of recognised SIC codes and the
// division to section lookup. A Registry is read-only once built and is safe
// for concurrent use.
package registry

import (
	"sort"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
)

// SubClassDigits is the width of the finest codes listed in a registry file.
const SubClassDigits = 5

// Section is one top-level SIC section and the divisions it owns.
type Section struct {
	Letter    string   `yaml:"letter" json:"letter"`
	Title     string   `yaml:"title" json:"title"`
	Divisions []string `yaml:"divisions" json:"divisions"`
}

// Data is the on-disk shape of a registry file.
type Data struct {
	Sections []Section `yaml:"sections"`
	Codes    []string  `yaml:"codes"`
}

// Registry is the set of valid codes at every hierarchy level plus the
// division to section mapping.
type Registry struct {
	valid    map[string]struct{}
	byWidth  map[int][]string
	sections []Section
	division map[string]string
}

// New builds a Registry from parsed data. Every listed sub-class contributes
// itself and its 2, 3 and 4 digit prefixes; every section contributes its
// letter.
func New(d Data) (*Registry, error) {
	r := &Registry{
		valid:    make(map[string]struct{}),
		byWidth:  make(map[int][]string),
		division: make(map[string]string),
	}

	for _, s := range d.Sections {
		if len(s.Letter) != 1 || !unicode.IsUpper(rune(s.Letter[0])) {
			return nil, eris.Errorf("registry: invalid section letter %q", s.Letter)
		}
		if _, dup := r.valid[s.Letter]; dup {
			return nil, eris.Errorf("registry: duplicate section %q", s.Letter)
		}
		for _, div := range s.Divisions {
			if len(div) != 2 || !isDigits(div) {
				return nil, eris.Errorf("registry: section %s: invalid division %q", s.Letter, div)
			}
			if owner, ok := r.division[div]; ok {
				return nil, eris.Errorf("registry: division %s assigned to both %s and %s", div, owner, s.Letter)
			}
			r.division[div] = s.Letter
		}
		r.add(s.Letter)
		r.sections = append(r.sections, s)
	}

	for _, code := range d.Codes {
		code = strings.TrimSpace(code)
		if len(code) != SubClassDigits || !isDigits(code) {
			return nil, eris.Errorf("registry: invalid sub-class %q", code)
		}
		for _, width := range []int{2, 3, 4, 5} {
			r.add(code[:width])
		}
	}

	for width := range r.byWidth {
		sort.Strings(r.byWidth[width])
	}
	sort.Slice(r.sections, func(i, j int) bool { return r.sections[i].Letter < r.sections[j].Letter })

	return r, nil
}

func (r *Registry) add(code string) {
	if _, ok := r.valid[code]; ok {
		return
	}
	r.valid[code] = struct{}{}
	width := len(code)
	if !isDigits(code) {
		width = 0
	}
	r.byWidth[width] = append(r.byWidth[width], code)
}

// IsValid reports whether code is a registered code at any level.
func (r *Registry) IsValid(code string) bool {
	_, ok := r.valid[code]
	return ok
}

// Section returns the section letter for a 2-digit division.
func (r *Registry) Section(division string) (string, bool) {
	letter, ok := r.division[division]
	return letter, ok
}

// Codes returns the sorted registered codes of the given digit width.
// Width 0 returns the section letters.
func (r *Registry) Codes(width int) []string {
	out := make([]string, len(r.byWidth[width]))
	copy(out, r.byWidth[width])
	return out
}

// Sections returns the sections ordered by letter.
func (r *Registry) Sections() []Section {
	out := make([]Section, len(r.sections))
	copy(out, r.sections)
	return out
}

// Len returns the number of valid codes across all levels.
func (r *Registry) Len() int {
	return len(r.valid)
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
