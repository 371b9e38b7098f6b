/*
PURPOSE:
  Defines the 'run' subcommand.
  Executes the full test suite.

REQUIREMENTS:
  User-specified:
  - Run the suite.
  - Specific flags for overrides.

  Implementation-discovered:
  - Need to load config first.
  - Apply flag overrides to config (flags beat env beats file).

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.Run()
  - Uses: internal/config

ERROR HANDLING:
  - Returns error if config load fails or engine run fails.

IMPLEMENTATION RULES:
  - Setup flags in init().
  - Logic: Load Config -> Override -> Engine.Run.

USAGE:
  plantcheck run --cases ./suite.csv -o ./results

SELF-HEALING INSTRUCTIONS:
  - Check flag names match Config struct fields generally.

RELATED FILES:
  - internal/cli/root.go

MAINTENANCE:
  - Update when adding new CLI overrides.
*/

package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/verdantqa/plantcheck/internal/config"
	"github.com/verdantqa/plantcheck/internal/engine"
)

var (
	casesOverride    string
	outputOverride   string
	endpointOverride string
	apiKeyOverride   string
	delayOverride    time.Duration
	timeoutOverride  time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the test suite",
	Long: `Executes the full test suite against the plant.id health-assessment API.
Each case follows a strict protocol:
1. File Check: a missing image fails the case immediately, with no API call.
2. Call: the image is sent as a base64 data URL; a 429 is retried once after
   the server's Retry-After (60s when absent).
3. Match: the expected label is compared against the top prediction and every
   alternate suggestion, using normalized containment.
4. Record: one row per case is appended to the CSV and JSON Lines outputs,
   flushed immediately so partial results survive an interrupted run.

Consecutive API calls are spaced by the configured pacing delay.`,
	Example: `  # Run with defaults (uses plantcheck.yaml, PLANTCHECK_API_KEY)
  plantcheck run

  # Override the cases file and output directory
  plantcheck run --cases ./suites/tomato.csv -o ./results

  # Slow down for a tight rate limit
  plantcheck run --delay 5s`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Load Config
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		// 2. Overrides
		if casesOverride != "" {
			cfg.CasesFile = casesOverride
		}
		if outputOverride != "" {
			cfg.OutputDir = outputOverride
		}
		if endpointOverride != "" {
			cfg.Endpoint = endpointOverride
		}
		if apiKeyOverride != "" {
			cfg.APIKey = apiKeyOverride
		}
		if cmd.Flags().Changed("delay") {
			cfg.PacingDelay = delayOverride
		}
		if cmd.Flags().Changed("timeout") {
			cfg.RequestTimeout = timeoutOverride
		}

		// 3. Execution
		return engine.Run(cfg)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&casesOverride, "cases", "", "Path to the test cases CSV")
	runCmd.Flags().StringVarP(&outputOverride, "output-dir", "o", "", "Output directory for results (CSV/JSONL)")
	runCmd.Flags().StringVar(&endpointOverride, "endpoint", "", "Health-assessment endpoint URL")
	runCmd.Flags().StringVar(&apiKeyOverride, "api-key", "", "API key (prefer PLANTCHECK_API_KEY)")
	runCmd.Flags().DurationVar(&delayOverride, "delay", 0, "Pacing delay between API calls")
	runCmd.Flags().DurationVar(&timeoutOverride, "timeout", 0, "Per-request timeout")
}
