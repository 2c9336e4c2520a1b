// Package sic normalizes raw SIC code strings into sets of registered codes.
//
// The Engine turns coder or model output such as "[8601x, 1410, nan]" into
// validated codes at a chosen hierarchy level, keeps the raw tokens that
// could not be resolved, prunes ranked model candidates, and classifies how
// far up the hierarchy a code set must go before it names a single code.
// Every operation is pure apart from diagnostics sent to the configured Sink.
package sic

import (
	"regexp"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
)

// Defaults.
const (
	DefaultPadding        = 5
	DefaultPattern        = `[0-9]+[xX]*`
	DefaultMaxExpandWidth = 4
	DefaultCodeField      = "code"
	DefaultScoreField     = "likelihood"
)

// DefaultInvalidValues are raw values that mean "no data". Matching ignores case.
var DefaultInvalidValues = []string{"-9", "4+", "", ".", " ", "nan", "none", "null", "<NA>"}

// Registry is the read-only code table the engine validates against.
type Registry interface {
	IsValid(code string) bool
	Section(division string) (string, bool)
}

// Option configures an Engine.
type Option func(*Engine)

// WithPadding sets the width extracted tokens are zero-padded to.
func WithPadding(n int) Option {
	return func(e *Engine) {
		e.padding = n
	}
}

// WithPattern overrides the token extraction pattern.
func WithPattern(pattern string) Option {
	return func(e *Engine) {
		e.pattern = pattern
	}
}

// WithInvalidValues replaces the sentinel values treated as "no data".
func WithInvalidValues(values []string) Option {
	return func(e *Engine) {
		e.invalidValues = values
	}
}

// WithMaxExpandWidth caps how many trailing digits expansion may fill.
func WithMaxExpandWidth(n int) Option {
	return func(e *Engine) {
		e.maxExpandWidth = n
	}
}

// WithSink routes diagnostics to s.
func WithSink(s Sink) Option {
	return func(e *Engine) {
		e.sink = s
	}
}

// Engine cleans and classifies SIC codes against a Registry. It holds no
// mutable state and may be shared between goroutines provided the sink is
// concurrency safe.
type Engine struct {
	reg            Registry
	padding        int
	pattern        string
	invalidValues  []string
	maxExpandWidth int
	sink           Sink

	re        *regexp.Regexp
	reErr     error
	sentinels map[string]struct{}
}

// New creates an Engine validating against reg.
func New(reg Registry, opts ...Option) *Engine {
	e := &Engine{
		reg:            reg,
		padding:        DefaultPadding,
		pattern:        DefaultPattern,
		invalidValues:  DefaultInvalidValues,
		maxExpandWidth: DefaultMaxExpandWidth,
		sink:           Discard,
	}
	for _, o := range opts {
		o(e)
	}
	if e.sink == nil {
		e.sink = Discard
	}

	e.re, e.reErr = regexp.Compile(e.pattern)
	if e.reErr != nil {
		e.reErr = eris.Wrapf(e.reErr, "sic: compile pattern %q", e.pattern)
	}

	fold := cases.Fold()
	e.sentinels = make(map[string]struct{}, len(e.invalidValues))
	for _, v := range e.invalidValues {
		e.sentinels[fold.String(v)] = struct{}{}
	}

	return e
}

// PatternErr returns the tokenizer pattern compile error, if any.
func (e *Engine) PatternErr() error {
	return e.reErr
}

func (e *Engine) emit(kind EventKind, value, detail string) {
	e.sink.Emit(Event{Kind: kind, Value: value, Detail: detail})
}
