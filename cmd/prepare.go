package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/sic-clean/internal/batch"
	"github.com/sells-group/sic-clean/internal/prep"
)

var (
	prepareInput       string
	prepareFormat      string
	prepareKind        string
	prepareOutput      string
	prepareConcurrency int
	prepareDelimiter   string
	prepareComment     string
	prepareLazyQuotes  bool
)

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Prepare a file of clerical or model records",
	Long: `Reads evaluation records from CSV or JSON Lines and writes one cleaned record
per line as JSON Lines, in input order.

Clerical rows use unique_id, sic_ind_occ1..3 and sic_ind_occ (the 4+ answer,
which replaces the others when present). Model rows use unique_id,
initial_code and alt_sic_candidates.

Examples:
  sic-clean prepare --input coders.csv --kind clerical --output clerical.jsonl
  sic-clean prepare --input model.jsonl --kind model --digits 4
  sic-clean prepare --input coders.txt --format csv --delimiter '|' --comment '#'`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		kind, err := batch.ParseKind(prepareKind)
		if err != nil {
			return err
		}
		format, err := inputFormat(prepareInput, prepareFormat)
		if err != nil {
			return err
		}
		lvl, err := levelFromFlags(cmd)
		if err != nil {
			return err
		}
		pc, err := cfg.Prep()
		if err != nil {
			return err
		}
		pc.Level = lvl

		runID := uuid.NewString()
		log := zap.L().With(zap.String("run_id", runID))

		e, _, err := newEngine(log)
		if err != nil {
			return err
		}
		p, err := prep.New(e, pc)
		if err != nil {
			return err
		}

		f, err := os.Open(prepareInput)
		if err != nil {
			return eris.Wrap(err, "prepare: open input")
		}
		defer f.Close() //nolint:errcheck

		readOpts, err := csvReadOptions(prepareDelimiter, prepareComment, prepareLazyQuotes)
		if err != nil {
			return err
		}
		rows, err := batch.ReadRows(ctx, f, format, readOpts...)
		if err != nil {
			return err
		}

		var proc batch.Processor
		if kind == batch.KindModel {
			proc = batch.ModelProcessor(p, e, cfg.Fields())
		} else {
			proc = batch.ClericalProcessor(p)
		}

		limit := cfg.Batch.MaxConcurrentRecords
		if prepareConcurrency > 0 {
			limit = prepareConcurrency
		}

		report, err := batch.Run(ctx, rows, proc, limit, batch.WithLogger(zap.L()), batch.WithRunID(runID))
		if err != nil {
			return err
		}

		return writePrepared(cmd.OutOrStdout(), prepareOutput, report.Prepared())
	},
}

// inputFormat returns the explicit format or infers it from the extension.
func inputFormat(path, format string) (batch.Format, error) {
	if format != "" {
		return batch.ParseFormat(format)
	}
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return batch.FormatCSV, nil
	}
	return batch.FormatJSONL, nil
}

// csvReadOptions turns the CSV flags into read options. Delimiter and comment
// must be a single character when set.
func csvReadOptions(delimiter, comment string, lazy bool) ([]batch.ReadOption, error) {
	opts := []batch.ReadOption{batch.WithLazyQuotes(lazy)}
	if delimiter != "" {
		r, err := singleRune("--delimiter", delimiter)
		if err != nil {
			return nil, err
		}
		opts = append(opts, batch.WithDelimiter(r))
	}
	if comment != "" {
		r, err := singleRune("--comment", comment)
		if err != nil {
			return nil, err
		}
		opts = append(opts, batch.WithComment(r))
	}
	return opts, nil
}

func singleRune(flag, s string) (rune, error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, eris.Errorf("prepare: %s must be a single character, got %q", flag, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

func writePrepared(stdout io.Writer, path string, results []prep.Prepared) error {
	if path == "" {
		return batch.WriteJSONL(stdout, results)
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "prepare: create output")
	}
	if err := batch.WriteJSONL(f, results); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrap(err, "prepare: close output")
	}
	zap.L().Info("prepare: wrote results", zap.String("path", path), zap.Int("records", len(results)))
	return nil
}

func init() {
	prepareCmd.Flags().StringVar(&prepareInput, "input", "", "path to CSV or JSON Lines records (required)")
	prepareCmd.Flags().StringVar(&prepareFormat, "format", "", "input format: csv or jsonl (default: from extension)")
	prepareCmd.Flags().StringVar(&prepareKind, "kind", "clerical", "record kind: clerical or model")
	prepareCmd.Flags().StringVar(&prepareOutput, "output", "", "write JSON Lines to file (default: stdout)")
	prepareCmd.Flags().IntVar(&prepareConcurrency, "concurrency", 0, "records prepared at once (default: batch.max_concurrent_records)")
	prepareCmd.Flags().StringVar(&prepareDelimiter, "delimiter", "", "CSV field separator (default: ,)")
	prepareCmd.Flags().StringVar(&prepareComment, "comment", "", "skip CSV lines starting with this character")
	prepareCmd.Flags().BoolVar(&prepareLazyQuotes, "lazy-quotes", false, "tolerate stray quotes in CSV cells")
	addDigitsFlag(prepareCmd)
	_ = prepareCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(prepareCmd)
}
