package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/sic-clean/internal/sic"
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "List registry codes",
	Long: `Lists the registered codes at one level, or the sections with their titles
and divisions when --digits is 0.

Examples:
  sic-clean registry --digits 2
  sic-clean registry --digits 0`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		digits, _ := cmd.Flags().GetInt("digits")

		_, reg, err := newEngine(zap.L())
		if err != nil {
			return err
		}

		lvl, err := sic.LevelForDigits(digits)
		if err != nil {
			return eris.Wrap(err, "registry: --digits must be 0 or between 2 and 5")
		}
		if lvl == sic.Section {
			return writeJSON(cmd.OutOrStdout(), reg.Sections())
		}
		return writeJSON(cmd.OutOrStdout(), reg.Codes(digits))
	},
}

func init() {
	registryCmd.Flags().Int("digits", 5, "code width to list, 0 for sections")
	rootCmd.AddCommand(registryCmd)
}
