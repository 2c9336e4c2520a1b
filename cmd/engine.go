package main

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/sic-clean/internal/registry"
	"github.com/sells-group/sic-clean/internal/sic"
)

// newEngine loads the configured registry and builds an engine that logs
// diagnostics through log.
func newEngine(log *zap.Logger) (*sic.Engine, *registry.Registry, error) {
	reg, err := registry.LoadFile(cfg.Registry.Path)
	if err != nil {
		return nil, nil, err
	}

	e := sic.New(reg, cfg.EngineOptions(sic.ZapSink(log))...)
	if err := e.PatternErr(); err != nil {
		return nil, nil, err
	}
	return e, reg, nil
}

// addDigitsFlag registers --digits; when unset clean.digits applies.
func addDigitsFlag(cmd *cobra.Command) {
	cmd.Flags().Int("digits", 0, "hierarchy level as code width: 0 for sections or 2-5 (default: clean.digits)")
}

// levelFromFlags returns the --digits level, falling back to config.
func levelFromFlags(cmd *cobra.Command) (sic.Level, error) {
	if !cmd.Flags().Changed("digits") {
		return cfg.Level()
	}
	digits, _ := cmd.Flags().GetInt("digits")
	lvl, err := sic.LevelForDigits(digits)
	if err != nil {
		return 0, eris.Wrap(err, "--digits")
	}
	return lvl, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "write output")
	}
	return nil
}
