/*
PURPOSE:
  Per-case observer interface so console narration is decoupled from the
  driver's control flow.

REQUIREMENTS:
  User-specified:
  - The driver should notify an observer, not print directly.

  Implementation-discovered:
  - Tests want a recording implementation; the CLI wants slog narration.

ARCHITECTURE INTEGRATION:
  - Notified by: internal/engine/runner.go
  - Default implementation logs through internal/output.Logger.

ERROR HANDLING:
  - Observers must not fail; narration is cosmetic.

IMPLEMENTATION RULES:
  - Keep the interface small; one method per driver state transition.

USAGE:
  engine.RunWithEvents(cfg, &engine.LogEvents{Log: output.Logger})

SELF-HEALING INSTRUCTIONS:
  - None.

RELATED FILES:
  - internal/engine/runner.go

MAINTENANCE:
  - Extend when the driver grows new states.
*/

package engine

import (
	"log/slog"

	"github.com/verdantqa/plantcheck/internal/model"
)

// Events receives driver notifications, one per case state transition.
type Events interface {
	RunStarted(runID string, total int)
	CaseStarted(index, total int, tc model.TestCase)
	// CaseSkipped fires when a case fails before any API call (missing image).
	CaseSkipped(tc model.TestCase, reason string)
	// Prediction fires after a successful API call, before matching is
	// recorded, with every candidate the API returned.
	Prediction(tc model.TestCase, pred model.Prediction)
	CaseFinished(res model.Result)
	RunFinished(total, passed int)
}

// LogEvents narrates a run through slog.
type LogEvents struct {
	Log *slog.Logger
}

func (l *LogEvents) RunStarted(runID string, total int) {
	l.Log.Info("Starting test run", "run_id", runID, "cases", total)
}

func (l *LogEvents) CaseStarted(index, total int, tc model.TestCase) {
	l.Log.Info("Running case",
		"test_id", tc.ID,
		"progress", slog.GroupValue(slog.Int("n", index), slog.Int("of", total)),
		"crop", tc.Crop,
		"disease", tc.Disease,
		"image", tc.ImagePath,
	)
}

func (l *LogEvents) CaseSkipped(tc model.TestCase, reason string) {
	l.Log.Error("Case failed before API call", "test_id", tc.ID, "reason", reason)
}

func (l *LogEvents) Prediction(tc model.TestCase, pred model.Prediction) {
	if pred.IsNotAPlant() {
		l.Log.Warn("Image does not appear to be a plant", "test_id", tc.ID)
		return
	}
	l.Log.Info("Top prediction",
		"test_id", tc.ID,
		"label", pred.Label,
		"confidence", pred.Confidence,
		"candidates", len(pred.Suggestions),
	)
	for i, name := range pred.Suggestions {
		l.Log.Info("Candidate suggestion", "test_id", tc.ID, "rank", i+1, "label", name)
	}
}

func (l *LogEvents) CaseFinished(res model.Result) {
	attrs := []any{
		"test_id", res.Case.ID,
		"expected", res.Case.Expected,
		"predicted", res.Predicted,
		"pass", res.Pass,
		"latency", res.Latency,
	}
	if res.Error != "" {
		attrs = append(attrs, "error", res.Error)
	}
	l.Log.Info("Case finished", attrs...)
}

func (l *LogEvents) RunFinished(total, passed int) {
	l.Log.Info("Run finished", "cases", total, "passed", passed, "failed", total-passed)
}
