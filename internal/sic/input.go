package sic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Input is a raw value to resolve. It is one of Token, Tokens or Candidates.
type Input interface {
	isInput()
}

// Token is an unparsed string that may hold several codes, e.g. "86101;8602x".
type Token string

// Tokens are raw code tokens that have already been split apart.
type Tokens []string

// Candidates are ranked model alternatives.
type Candidates []Candidate

func (Token) isInput()      {}
func (Tokens) isInput()     {}
func (Candidates) isInput() {}

// Fields names the keys of a candidate record.
type Fields struct {
	Code  string
	Score string
}

// DefaultFields returns the "code"/"likelihood" record keys.
func DefaultFields() Fields {
	return Fields{Code: DefaultCodeField, Score: DefaultScoreField}
}

// DecodeInput classifies a JSON value once at the boundary:
//
//   - a string or number becomes a Token ("1420" and 1420 are identical)
//   - null becomes empty Tokens
//   - an array of strings and numbers becomes Tokens
//   - an array containing objects becomes Candidates; other elements are
//     skipped with EventSkippedCandidate
//
// Anything else returns ErrUnsupportedInput.
func (e *Engine) DecodeInput(data []byte, f Fields) (Input, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		e.emit(EventUnsupportedInput, string(data), err.Error())
		return nil, eris.Wrap(ErrUnsupportedInput, "decode json: "+err.Error())
	}
	if _, err := dec.Token(); err != io.EOF {
		e.emit(EventUnsupportedInput, string(data), "trailing data after json value")
		return nil, eris.Wrap(ErrUnsupportedInput, "decode json: trailing data after value")
	}
	return e.InputFromValue(v, f)
}

// InputFromValue classifies an already decoded JSON value. Numbers may be
// json.Number or float64.
func (e *Engine) InputFromValue(v any, f Fields) (Input, error) {
	if f.Code == "" {
		f.Code = DefaultCodeField
	}
	if f.Score == "" {
		f.Score = DefaultScoreField
	}

	switch t := v.(type) {
	case nil:
		return Tokens{}, nil
	case string:
		return Token(t), nil
	case json.Number:
		return Token(t.String()), nil
	case float64:
		return Token(strconv.FormatFloat(t, 'f', -1, 64)), nil
	case []any:
		return e.listInput(t, f)
	default:
		err := eris.Wrapf(ErrUnsupportedInput, "value %T", v)
		e.emit(EventUnsupportedInput, typeName(v), err.Error())
		return nil, err
	}
}

func (e *Engine) listInput(list []any, f Fields) (Input, error) {
	hasRecord := false
	for _, item := range list {
		if _, ok := item.(map[string]any); ok {
			hasRecord = true
			break
		}
	}

	if !hasRecord {
		tokens := make(Tokens, 0, len(list))
		for _, item := range list {
			s, ok := scalarString(item)
			if !ok {
				err := eris.Wrapf(ErrUnsupportedInput, "list element %T", item)
				e.emit(EventUnsupportedInput, typeName(item), err.Error())
				return nil, err
			}
			tokens = append(tokens, s)
		}
		return tokens, nil
	}

	cands := make(Candidates, 0, len(list))
	for _, item := range list {
		rec, ok := item.(map[string]any)
		if !ok {
			e.emit(EventSkippedCandidate, typeName(item), "candidate is not a record")
			continue
		}
		cands = append(cands, Candidate{
			Code:       recordCode(rec[f.Code]),
			Likelihood: e.recordScore(rec[f.Score]),
		})
	}
	return cands, nil
}

func recordCode(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := scalarString(v); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// recordScore reads a likelihood. Non-numeric, NaN and infinite scores are
// read as 0.
func (e *Engine) recordScore(v any) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		if finite(t) {
			return t
		}
	case json.Number:
		f, err := t.Float64()
		if err == nil && finite(f) {
			return f
		}
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err == nil && finite(f) {
			return f
		}
	}
	e.emit(EventBadScore, recordCode(v), "likelihood read as 0")
	return 0
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	}
	return "", false
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
