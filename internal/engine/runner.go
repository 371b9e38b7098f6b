/*
PURPOSE:
  High-level driver that orchestrates a test run.
  Loops through loaded cases and executes check -> call -> match -> record.

REQUIREMENTS:
  User-specified:
  - Every loaded case produces exactly one result row, in input order, even
    when the image is missing or the API call fails.
  - Requests are paced by a fixed delay; missing-file cases never wait.
  - Per-case failures are recorded and the run continues.

  Implementation-discovered:
  - A rate.Limiter with burst 1 spaces calls without delaying the first one.
  - Sink write failures are logged, not fatal; losing one row is better than
    abandoning the run.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Uses: internal/cases, internal/config, internal/match, internal/model,
    internal/output

ERROR HANDLING:
  - Fatal only before the loop starts: config validation, cases load, output
    setup. Inside the loop, errors become the case's error column.

IMPLEMENTATION RULES:
  - Strictly sequential. No overlapping API calls.
  - Record both sinks for every case, success or failure.

USAGE:
  err := engine.Run(cfg)

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/engine/client.go
  - internal/engine/events.go

MAINTENANCE:
  - Update iteration logic if parallelism is ever introduced.
*/

package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/verdantqa/plantcheck/internal/cases"
	"github.com/verdantqa/plantcheck/internal/config"
	"github.com/verdantqa/plantcheck/internal/match"
	"github.com/verdantqa/plantcheck/internal/model"
	"github.com/verdantqa/plantcheck/internal/output"
)

// Run executes the full suite with the default slog narration.
func Run(cfg *config.Config) error {
	return RunWithEvents(context.Background(), cfg, nil)
}

// RunWithEvents executes the full suite, notifying ev per case. A nil ev
// falls back to slog narration.
func RunWithEvents(ctx context.Context, cfg *config.Config, ev Events) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if ev == nil {
		ev = &LogEvents{Log: output.Logger}
	}

	suite, err := cases.Load(cfg.CasesFile)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", cfg.OutputDir, err)
	}

	csvPath := filepath.Join(cfg.OutputDir, cfg.ResultsFile)
	csvWriter, err := output.NewCSVWriter(csvPath)
	if err != nil {
		return fmt.Errorf("failed to init CSV writer at %s: %w", csvPath, err)
	}
	defer csvWriter.Close()

	jsonPath := filepath.Join(cfg.OutputDir, cfg.ResultsJSONL)
	jsonWriter, err := output.NewJSONWriter(jsonPath)
	if err != nil {
		return fmt.Errorf("failed to init JSON writer at %s: %w", jsonPath, err)
	}
	defer jsonWriter.Close()

	client := NewClient(cfg)
	limiter := newPacer(cfg.PacingDelay)

	record := func(res model.Result) {
		ev.CaseFinished(res)
		if err := csvWriter.Write(res); err != nil {
			output.Logger.Error("Failed to write result to CSV", "test_id", res.Case.ID, "error", err)
		}
		if err := jsonWriter.Write(res); err != nil {
			output.Logger.Error("Failed to write result to JSON", "test_id", res.Case.ID, "error", err)
		}
	}

	runID := uuid.NewString()
	ev.RunStarted(runID, len(suite))

	passed := 0
	for i, tc := range suite {
		ev.CaseStarted(i+1, len(suite), tc)

		start := time.Now()
		res := model.Result{Timestamp: start, Case: tc}

		if _, err := os.Stat(tc.ImagePath); err != nil {
			res.Error = fmt.Sprintf("missing image file: %s", tc.ImagePath)
			res.Latency = time.Since(start)
			ev.CaseSkipped(tc, res.Error)
			record(res)
			continue
		}

		// Pacing applies to real requests only; the limiter starts full so
		// the first call goes out immediately.
		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		pred, err := client.HealthAssessment(ctx, tc.ImagePath)
		res.Called = true
		res.Latency = time.Since(start)

		if err != nil {
			res.Error = err.Error()
		} else {
			res.Predicted = pred.Label
			res.Confidence = pred.Confidence
			res.Pass = match.Matches(tc.Expected, pred.Label, pred.Suggestions)
			ev.Prediction(tc, pred)
		}

		if res.Pass {
			passed++
		}
		record(res)
	}

	ev.RunFinished(len(suite), passed)
	return nil
}

// newPacer builds the inter-request limiter. A zero or negative delay means
// no pacing at all.
func newPacer(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}
