// Package batch prepares files of evaluation records concurrently.
package batch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/sic-clean/internal/prep"
	"github.com/sells-group/sic-clean/internal/sic"
	"github.com/sells-group/sic-clean/internal/source"
)

// Input columns.
const (
	ColID           = "unique_id"
	ColClerical1    = "sic_ind_occ1"
	ColClerical2    = "sic_ind_occ2"
	ColClerical3    = "sic_ind_occ3"
	ColFourPlus     = "sic_ind_occ"
	ColInitialCode  = "initial_code"
	ColAlternatives = "alt_sic_candidates"
)

// Format is an input file format.
type Format string

// Supported formats.
const (
	FormatCSV   Format = "csv"
	FormatJSONL Format = "jsonl"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatCSV, FormatJSONL:
		return f, nil
	default:
		return "", eris.Errorf("batch: unknown format %q (want csv or jsonl)", s)
	}
}

// Kind selects how rows are prepared.
type Kind string

// Record kinds.
const (
	KindClerical Kind = "clerical"
	KindModel    Kind = "model"
)

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(s)); k {
	case KindClerical, KindModel:
		return k, nil
	default:
		return "", eris.Errorf("batch: unknown kind %q (want clerical or model)", s)
	}
}

// Row is one input record keyed by column name. Values are raw JSON so CSV
// cells and JSON Lines values are read the same way.
type Row map[string]json.RawMessage

// RowFromStrings converts a CSV record into a Row of JSON strings.
func RowFromStrings(m map[string]string) Row {
	row := make(Row, len(m))
	for k, v := range m {
		b, _ := json.Marshal(v)
		row[k] = b
	}
	return row
}

// String returns the column as text. Numbers keep their literal form and
// absent or null columns are empty.
func (r Row) String(col string) string {
	v, ok := r.value(col)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return string(bytes.TrimSpace(r[col]))
	}
}

func (r Row) value(col string) (any, bool) {
	raw, ok := r[col]
	if !ok || len(raw) == 0 {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return string(raw), true
	}
	return v, true
}

// ReadOption adjusts how CSV input is parsed.
type ReadOption func(*source.CSVOptions)

// WithDelimiter sets the CSV field separator.
func WithDelimiter(d rune) ReadOption {
	return func(o *source.CSVOptions) {
		o.Delimiter = d
	}
}

// WithComment skips CSV lines starting with c.
func WithComment(c rune) ReadOption {
	return func(o *source.CSVOptions) {
		o.Comment = c
	}
}

// WithLazyQuotes tolerates stray quotes in CSV cells.
func WithLazyQuotes(lazy bool) ReadOption {
	return func(o *source.CSVOptions) {
		o.LazyQuotes = lazy
	}
}

// ReadRows reads every record from r. CSV cells are trimmed.
func ReadRows(ctx context.Context, r io.Reader, f Format, opts ...ReadOption) ([]Row, error) {
	switch f {
	case FormatCSV:
		csvOpts := source.CSVOptions{TrimSpace: true}
		for _, o := range opts {
			o(&csvOpts)
		}
		recs, err := source.Collect(source.StreamCSVRecords(ctx, r, csvOpts))
		if err != nil {
			return nil, eris.Wrap(err, "batch: read csv")
		}
		rows := make([]Row, len(recs))
		for i, rec := range recs {
			rows[i] = RowFromStrings(rec)
		}
		return rows, nil
	case FormatJSONL:
		rows, err := source.Collect(source.StreamJSONLines[Row](ctx, r))
		if err != nil {
			return nil, eris.Wrap(err, "batch: read jsonl")
		}
		return rows, nil
	default:
		return nil, eris.Errorf("batch: unknown format %q", f)
	}
}

// ClericalRecord maps a row onto a clerical record.
func ClericalRecord(row Row) prep.ClericalRecord {
	return prep.ClericalRecord{
		ID: row.String(ColID),
		Codes: []string{
			row.String(ColClerical1),
			row.String(ColClerical2),
			row.String(ColClerical3),
		},
		FourPlus: row.String(ColFourPlus),
	}
}

// ModelRecord maps a row onto a model record. Alternatives may be a JSON
// value or, from CSV, a string holding JSON. A string that does not decode
// to a supported shape is kept as a raw token string.
func ModelRecord(e *sic.Engine, row Row, fields sic.Fields) (prep.ModelRecord, error) {
	rec := prep.ModelRecord{
		ID:          row.String(ColID),
		InitialCode: row.String(ColInitialCode),
	}

	v, ok := row.value(ColAlternatives)
	if !ok || v == nil {
		return rec, nil
	}

	if s, isString := v.(string); isString {
		rec.Alternatives = stringAlternatives(e, strings.TrimSpace(s), fields)
		return rec, nil
	}

	in, err := e.InputFromValue(v, fields)
	if err != nil {
		return rec, eris.Wrapf(err, "batch: record %s %s", rec.ID, ColAlternatives)
	}
	rec.Alternatives = in
	return rec, nil
}

func stringAlternatives(e *sic.Engine, s string, fields sic.Fields) sic.Input {
	if s == "" {
		return nil
	}
	if (strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{")) && json.Valid([]byte(s)) {
		if in, err := e.DecodeInput([]byte(s), fields); err == nil {
			return in
		}
	}
	return sic.Token(s)
}
