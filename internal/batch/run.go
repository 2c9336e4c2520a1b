package batch

import (
	"context"
	"encoding/json"
	"io"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/sic-clean/internal/prep"
	"github.com/sells-group/sic-clean/internal/sic"
)

// DefaultMaxConcurrent bounds how many rows are prepared at once.
const DefaultMaxConcurrent = 8

// Processor prepares one row.
type Processor func(ctx context.Context, row Row) (prep.Prepared, error)

// ClericalProcessor prepares rows as clerical records.
func ClericalProcessor(p *prep.Preparer) Processor {
	return func(_ context.Context, row Row) (prep.Prepared, error) {
		return p.Clerical(ClericalRecord(row)), nil
	}
}

// ModelProcessor prepares rows as model records.
func ModelProcessor(p *prep.Preparer, e *sic.Engine, fields sic.Fields) Processor {
	return func(_ context.Context, row Row) (prep.Prepared, error) {
		rec, err := ModelRecord(e, row, fields)
		if err != nil {
			return prep.Prepared{}, err
		}
		return p.Model(rec)
	}
}

// Report summarizes a run. Results is parallel to the input rows; failed
// rows leave a nil entry.
type Report struct {
	RunID     string
	Results   []*prep.Prepared
	Succeeded int64
	Failed    int64
}

// Prepared returns the successful results in input order.
func (r *Report) Prepared() []prep.Prepared {
	out := make([]prep.Prepared, 0, r.Succeeded)
	for _, res := range r.Results {
		if res != nil {
			out = append(out, *res)
		}
	}
	return out
}

// Option configures Run.
type Option func(*runner)

// WithLogger sets the logger; run_id is added to it.
func WithLogger(l *zap.Logger) Option {
	return func(r *runner) {
		r.log = l
	}
}

// WithRunID fixes the run id instead of generating one.
func WithRunID(id string) Option {
	return func(r *runner) {
		r.runID = id
	}
}

type runner struct {
	log   *zap.Logger
	runID string
}

// Run prepares rows with at most limit in flight. A failing row is logged
// and counted; it never stops the others. Run only returns an error when ctx
// ends first.
func Run(ctx context.Context, rows []Row, proc Processor, limit int, opts ...Option) (*Report, error) {
	r := &runner{log: zap.L()}
	for _, o := range opts {
		o(r)
	}
	if r.runID == "" {
		r.runID = uuid.NewString()
	}
	if limit <= 0 {
		limit = DefaultMaxConcurrent
	}
	log := r.log.With(zap.String("run_id", r.runID))

	report := &Report{RunID: r.runID, Results: make([]*prep.Prepared, len(rows))}
	var succeeded, failed atomic.Int64

	log.Info("batch: starting", zap.Int("rows", len(rows)), zap.Int("concurrency", limit))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, row := range rows {
		i, row := i, row
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			res, err := proc(gCtx, row)
			if err != nil {
				failed.Add(1)
				log.Error("batch: row failed",
					zap.Int("row", i),
					zap.String("unique_id", row.String(ColID)),
					zap.Error(err),
				)
				return nil // don't abort batch on individual failure
			}

			succeeded.Add(1)
			report.Results[i] = &res
			return nil
		})
	}

	err := g.Wait()
	report.Succeeded = succeeded.Load()
	report.Failed = failed.Load()

	log.Info("batch: complete",
		zap.Int("total", len(rows)),
		zap.Int64("succeeded", report.Succeeded),
		zap.Int64("failed", report.Failed),
	)

	if err != nil {
		return report, eris.Wrap(err, "batch: run")
	}
	return report, nil
}

// WriteJSONL writes each prepared record as one JSON line.
func WriteJSONL(w io.Writer, results []prep.Prepared) error {
	enc := json.NewEncoder(w)
	for _, res := range results {
		if err := enc.Encode(res); err != nil {
			return eris.Wrapf(err, "batch: write %s", res.ID)
		}
	}
	return nil
}
