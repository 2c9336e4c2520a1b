package sic

import "github.com/rotisserie/eris"

// Level is a SIC hierarchy level, ordered from coarsest to finest.
type Level int

// Hierarchy levels.
const (
	Section Level = iota
	Division
	Group
	Class
	SubClass
)

// Label names the coarsest level at which a code set resolves to one code.
type Label string

// Codability labels.
const (
	LabelSection   Label = "Section (letter)"
	LabelDivision  Label = "Division (2-digits)"
	LabelGroup     Label = "Group (3-digits)"
	LabelClass     Label = "Class (4-digits)"
	LabelSubClass  Label = "Sub-class (5-digits)"
	LabelUncodable Label = "Uncodable"
)

var levelDigits = [...]int{
	Section:  0,
	Division: 2,
	Group:    3,
	Class:    4,
	SubClass: 5,
}

var levelNames = [...]string{
	Section:  "section",
	Division: "division",
	Group:    "group",
	Class:    "class",
	SubClass: "sub-class",
}

var levelLabels = [...]Label{
	Section:  LabelSection,
	Division: LabelDivision,
	Group:    LabelGroup,
	Class:    LabelClass,
	SubClass: LabelSubClass,
}

// Digits returns the code width of the level. Section codes are letters and
// report 0; an unknown level reports -1.
func (l Level) Digits() int {
	if !l.valid() {
		return -1
	}
	return levelDigits[l]
}

func (l Level) String() string {
	if !l.valid() {
		return "unknown"
	}
	return levelNames[l]
}

// Label returns the codability label of the level, or "" for an unknown
// level.
func (l Level) Label() Label {
	if !l.valid() {
		return ""
	}
	return levelLabels[l]
}

func (l Level) valid() bool {
	return l >= Section && l <= SubClass
}

// LevelForDigits maps a digit width (0, 2, 3, 4 or 5) to its level.
func LevelForDigits(n int) (Level, error) {
	for l, d := range levelDigits {
		if d == n {
			return Level(l), nil
		}
	}
	return 0, eris.Wrapf(ErrInvalidLevel, "digits %d", n)
}

// Levels returns every level from finest to coarsest.
func Levels() []Level {
	return []Level{SubClass, Class, Group, Division, Section}
}
