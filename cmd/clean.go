package main

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/sic-clean/internal/sic"
)

var parseCmd = &cobra.Command{
	Use:   "parse <raw>",
	Short: "Extract code tokens from a raw string",
	Long: `Extracts zero-padded code tokens from a raw coder or model string.

Example:
  sic-clean parse "[8601x, 1410, nan]"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, _, err := newEngine(zap.L())
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), e.ParseCodes(strings.Join(args, " ")))
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean <token>...",
	Short: "Clean code tokens to a hierarchy level",
	Long: `Cleans each token against the registry. Tokens that resolve to nothing are
reported under "invalid".

Examples:
  sic-clean clean 86101 8602x 98765
  sic-clean clean --digits 2 86101 01420
  sic-clean clean --digits 0 86101`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lvl, err := levelFromFlags(cmd)
		if err != nil {
			return err
		}
		e, _, err := newEngine(zap.L())
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), e.CleanSet(args, lvl))
	},
}

var candidatesCmd = &cobra.Command{
	Use:   "candidates <json>",
	Short: "Resolve model alternatives",
	Long: `Resolves a JSON value of model alternatives: a code string, a list of
codes, or a list of {"code", "likelihood"} records. When exactly one code
reaches --threshold only that code is kept.

Example:
  sic-clean candidates --threshold 0.5 '[{"code":"86101","likelihood":0.9},{"code":"86210","likelihood":0.3}]'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lvl, err := levelFromFlags(cmd)
		if err != nil {
			return err
		}
		threshold := cfg.Clean.Threshold
		if cmd.Flags().Changed("threshold") {
			threshold, _ = cmd.Flags().GetFloat64("threshold")
		}

		e, _, err := newEngine(zap.L())
		if err != nil {
			return err
		}
		in, err := e.DecodeInput([]byte(args[0]), cfg.Fields())
		if err != nil {
			return err
		}
		res, err := e.Resolve(in, lvl, threshold)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), res)
	},
}

type codabilityOutput struct {
	Codes      []string `json:"codes"`
	Codability string   `json:"codability"`
	Level      string   `json:"level,omitempty"`
}

var codabilityCmd = &cobra.Command{
	Use:   "codability <code>...",
	Short: "Grade the most specific level a code set names",
	Long: `Reports the finest hierarchy level at which the cleaned codes collapse to a
single code.

Example:
  sic-clean codability 86101 86102`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, _, err := newEngine(zap.L())
		if err != nil {
			return err
		}

		codes := sic.NewSet(args...)
		out := codabilityOutput{Codes: codes.Sorted(), Codability: string(sic.LabelUncodable)}
		if lvl, ok := e.CodabilityLevel(codes); ok {
			out.Codability = string(lvl.Label())
			out.Level = lvl.String()
		}
		return writeJSON(cmd.OutOrStdout(), out)
	},
}

func init() {
	addDigitsFlag(cleanCmd)
	addDigitsFlag(candidatesCmd)
	candidatesCmd.Flags().Float64("threshold", 0, "likelihood a single candidate must reach (default: clean.threshold)")

	rootCmd.AddCommand(parseCmd, cleanCmd, candidatesCmd, codabilityCmd)
}
