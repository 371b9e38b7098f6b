/*
PURPOSE:
  Defines the 'validate' subcommand.
  Pre-flight check of a suite before spending API quota.

REQUIREMENTS:
  User-specified:
  - Verify the cases file parses and required columns exist.
  - Verify every referenced image file exists.

  Implementation-discovered:
  - Useful validation step before a full run; no API calls are made.

ARCHITECTURE INTEGRATION:
  - Calls: internal/cases.Load()

ERROR HANDLING:
  - Prints each missing image; returns an error if any problem was found.

IMPLEMENTATION RULES:
  - Simple output to stdout.

USAGE:
  plantcheck validate --cases ./suite.csv

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/cases/loader.go

MAINTENANCE:
  - None.
*/

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/verdantqa/plantcheck/internal/cases"
	"github.com/verdantqa/plantcheck/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the cases file and its images without calling the API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if casesOverride != "" {
			cfg.CasesFile = casesOverride
		}

		suite, err := cases.Load(cfg.CasesFile)
		if err != nil {
			return err
		}

		missing := 0
		for _, tc := range suite {
			if _, err := os.Stat(tc.ImagePath); err != nil {
				fmt.Fprintf(os.Stderr, "missing image: %s (%s)\n", tc.ImagePath, tc.ID)
				missing++
				continue
			}
			if tc.Expected == "" {
				fmt.Fprintf(os.Stderr, "warning: %s has no expected label\n", tc.ID)
			}
		}

		fmt.Printf("%d cases, %d missing images\n", len(suite), missing)
		if missing > 0 {
			return fmt.Errorf("%d of %d images are missing", missing, len(suite))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&casesOverride, "cases", "", "Path to the test cases CSV")
}
