package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sells-group/sic-clean/internal/prep"
	"github.com/sells-group/sic-clean/internal/registry"
	"github.com/sells-group/sic-clean/internal/sic"
)

func newTestEngine(t *testing.T) *sic.Engine {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	return sic.New(reg)
}

func newTestPreparer(t *testing.T, e *sic.Engine, cfg prep.Config) *prep.Preparer {
	t.Helper()
	p, err := prep.New(e, cfg)
	require.NoError(t, err)
	return p
}

func TestParseFormatAndKind(t *testing.T) {
	f, err := ParseFormat("JSONL")
	require.NoError(t, err)
	assert.Equal(t, FormatJSONL, f)
	_, err = ParseFormat("parquet")
	assert.Error(t, err)

	k, err := ParseKind("model")
	require.NoError(t, err)
	assert.Equal(t, KindModel, k)
	_, err = ParseKind("llm")
	assert.Error(t, err)
}

func TestRow_String(t *testing.T) {
	row := Row{
		"s":    []byte(`"86101"`),
		"n":    []byte(`1420`),
		"null": []byte(`null`),
		"bool": []byte(`true`),
	}
	assert.Equal(t, "86101", row.String("s"))
	assert.Equal(t, "1420", row.String("n"))
	assert.Equal(t, "", row.String("null"))
	assert.Equal(t, "true", row.String("bool"))
	assert.Equal(t, "", row.String("missing"))
}

func TestReadRows_CSV(t *testing.T) {
	input := "unique_id,sic_ind_occ1,sic_ind_occ2,sic_ind_occ3,sic_ind_occ\n" +
		"r1,86101,86210,,\n" +
		"r2,86101,,,66300;66210\n"

	rows, err := ReadRows(context.Background(), strings.NewReader(input), FormatCSV)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	rec := ClericalRecord(rows[1])
	assert.Equal(t, "r2", rec.ID)
	assert.Equal(t, []string{"86101", "", ""}, rec.Codes)
	assert.Equal(t, "66300;66210", rec.FourPlus)
}

func TestReadRows_CSVOptions(t *testing.T) {
	input := "# exported by coders\n" +
		"unique_id|sic_ind_occ1|sic_ind_occ2|sic_ind_occ3|sic_ind_occ\n" +
		"r1| 86101 |8\"6210||\n"

	rows, err := ReadRows(context.Background(), strings.NewReader(input), FormatCSV,
		WithDelimiter('|'), WithComment('#'), WithLazyQuotes(true))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	rec := ClericalRecord(rows[0])
	assert.Equal(t, "r1", rec.ID)
	assert.Equal(t, []string{"86101", `8"6210`, ""}, rec.Codes)

	_, err = ReadRows(context.Background(), strings.NewReader(input), FormatCSV, WithDelimiter('|'))
	assert.Error(t, err)
}

func TestReadRows_JSONL(t *testing.T) {
	input := `{"unique_id":"m1","initial_code":98765,"alt_sic_candidates":[{"code":"86210","likelihood":0.9}]}
{"unique_id":"m2","initial_code":"86101","alt_sic_candidates":null}
`
	rows, err := ReadRows(context.Background(), strings.NewReader(input), FormatJSONL)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	e := newTestEngine(t)
	rec, err := ModelRecord(e, rows[0], sic.DefaultFields())
	require.NoError(t, err)
	assert.Equal(t, "98765", rec.InitialCode)
	assert.Equal(t, sic.Candidates{{Code: "86210", Likelihood: 0.9}}, rec.Alternatives)

	rec, err = ModelRecord(e, rows[1], sic.DefaultFields())
	require.NoError(t, err)
	assert.Nil(t, rec.Alternatives)
}

func TestReadRows_BadInput(t *testing.T) {
	_, err := ReadRows(context.Background(), strings.NewReader("{"), FormatJSONL)
	assert.Error(t, err)

	_, err = ReadRows(context.Background(), strings.NewReader(""), Format("xml"))
	assert.Error(t, err)
}

func TestModelRecord_CSVAlternatives(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name string
		alt  string
		want sic.Input
	}{
		{"json candidates", `[{"code": "86210", "likelihood": 0.4}]`, sic.Candidates{{Code: "86210", Likelihood: 0.4}}},
		{"json tokens", `["86101", "1420"]`, sic.Tokens{"86101", "1420"}},
		{"plain token", "86101;86210", sic.Token("86101;86210")},
		{"bracketed raw tokens", "[8601x, 1410]", sic.Token("[8601x, 1410]")},
		{"python style records", "[{'code': '86101'}]", sic.Token("[{'code': '86101'}]")},
		{"json object string", `{"code": "86101"}`, sic.Token(`{"code": "86101"}`)},
		{"trailing junk", `["86101"] junk`, sic.Token(`["86101"] junk`)},
		{"blank", "  ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := RowFromStrings(map[string]string{ColID: "m", ColInitialCode: "", ColAlternatives: tt.alt})
			rec, err := ModelRecord(e, row, sic.DefaultFields())
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.Alternatives)
		})
	}
}

func TestRun_RawAlternativesStringIsKept(t *testing.T) {
	e := newTestEngine(t)
	p := newTestPreparer(t, e, prep.DefaultConfig())

	rows := []Row{RowFromStrings(map[string]string{
		ColID:           "m1",
		ColInitialCode:  "98765",
		ColAlternatives: "[8601x, 1410]",
	})}

	report, err := Run(context.Background(), rows, ModelProcessor(p, e, sic.DefaultFields()), 1, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.Succeeded)
	assert.Equal(t, int64(0), report.Failed)

	got := report.Prepared()
	require.Len(t, got, 1)
	assert.Equal(t, sic.NewSet("01410"), got[0].Codes)
	assert.Equal(t, sic.NewSet("98765", "8601x"), got[0].Invalid)
	assert.Equal(t, prep.SourceAlternatives, got[0].Source)
}

func TestRun_PreservesOrder(t *testing.T) {
	rows := make([]Row, 50)
	for i := range rows {
		rows[i] = RowFromStrings(map[string]string{ColID: fmt.Sprintf("r%02d", i)})
	}

	proc := func(_ context.Context, row Row) (prep.Prepared, error) {
		id := row.String(ColID)
		// Later rows finish first.
		var n int
		_, _ = fmt.Sscanf(id, "r%d", &n)
		time.Sleep(time.Duration(50-n) * 100 * time.Microsecond)
		return prep.Prepared{ID: id}, nil
	}

	report, err := Run(context.Background(), rows, proc, 8, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	assert.Equal(t, int64(50), report.Succeeded)
	assert.Zero(t, report.Failed)

	got := report.Prepared()
	require.Len(t, got, 50)
	for i, res := range got {
		assert.Equal(t, fmt.Sprintf("r%02d", i), res.ID)
	}
}

func TestRun_FailuresDoNotAbort(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	rows := []Row{
		RowFromStrings(map[string]string{ColID: "ok1"}),
		RowFromStrings(map[string]string{ColID: "bad"}),
		RowFromStrings(map[string]string{ColID: "ok2"}),
	}

	proc := func(_ context.Context, row Row) (prep.Prepared, error) {
		if row.String(ColID) == "bad" {
			return prep.Prepared{}, errors.New("boom")
		}
		return prep.Prepared{ID: row.String(ColID)}, nil
	}

	report, err := Run(context.Background(), rows, proc, 2, WithLogger(zap.New(core)), WithRunID("run-1"))
	require.NoError(t, err)
	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, int64(2), report.Succeeded)
	assert.Equal(t, int64(1), report.Failed)
	assert.Nil(t, report.Results[1])

	failed := logs.FilterMessage("batch: row failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "bad", failed[0].ContextMap()["unique_id"])

	for _, entry := range logs.All() {
		assert.Equal(t, "run-1", entry.ContextMap()["run_id"])
	}
}

func TestRun_GeneratesRunID(t *testing.T) {
	report, err := Run(context.Background(), nil, nil, 0, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	assert.Len(t, report.RunID, 36)
	assert.Empty(t, report.Prepared())
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rows := []Row{RowFromStrings(map[string]string{ColID: "r1"})}
	proc := func(_ context.Context, row Row) (prep.Prepared, error) {
		return prep.Prepared{ID: row.String(ColID)}, nil
	}

	_, err := Run(ctx, rows, proc, 1, WithLogger(zap.NewNop()))
	require.Error(t, err)
	assert.True(t, eris.Is(err, context.Canceled))
}

func TestRun_EndToEnd(t *testing.T) {
	e := newTestEngine(t)

	clerical := "unique_id,sic_ind_occ1,sic_ind_occ2,sic_ind_occ3,sic_ind_occ\n" +
		"c1,86101,86210,,\n" +
		"c2,-9,,,\n"
	rows, err := ReadRows(context.Background(), strings.NewReader(clerical), FormatCSV)
	require.NoError(t, err)

	p := newTestPreparer(t, e, prep.DefaultConfig())
	report, err := Run(context.Background(), rows, ClericalProcessor(p), 4, WithLogger(zap.NewNop()))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteJSONL(&buf, report.Prepared()))
	assert.Equal(t,
		`{"unique_id":"c1","codes":["86101","86210"],"invalid":[],"codability":"Division (2-digits)","source":"clerical"}`+"\n"+
			`{"unique_id":"c2","codes":[],"invalid":[],"codability":"Uncodable"}`+"\n",
		buf.String())

	model := `{"unique_id":"m1","initial_code":"98765","alt_sic_candidates":[{"code":"86210","likelihood":0.9},{"code":"01420","likelihood":0.2}]}
{"unique_id":"m2","initial_code":"98765","alt_sic_candidates":{"code":"86210"}}
`
	rows, err = ReadRows(context.Background(), strings.NewReader(model), FormatJSONL)
	require.NoError(t, err)

	p = newTestPreparer(t, e, prep.Config{Level: sic.SubClass, Threshold: 0.5})
	report, err = Run(context.Background(), rows, ModelProcessor(p, e, sic.DefaultFields()), 4, WithLogger(zap.NewNop()))
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.Succeeded)
	assert.Equal(t, int64(1), report.Failed)

	got := report.Prepared()
	require.Len(t, got, 1)
	assert.Equal(t, sic.NewSet("86210"), got[0].Codes)
	assert.Equal(t, sic.NewSet("98765"), got[0].Invalid)
	assert.Equal(t, prep.SourceAlternatives, got[0].Source)
}
