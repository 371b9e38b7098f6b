/*
PURPOSE:
  Defines the core data structures used throughout Plant Check.
  These models represent test cases, API predictions, and per-case results.

REQUIREMENTS:
  User-specified:
  - Carry test_id, image path, expected label, and optional survey metadata.
  - Record prediction, confidence, pass/fail, and latency per case.

  Implementation-discovered:
  - Need JSON tags for the JSON Lines output.
  - Confidence must render as an empty string when the API was never called,
    so Result tracks whether a call was attempted.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cases, internal/engine, internal/output
  - Shared across boundaries.

ERROR HANDLING:
  - None (pure data structs).

IMPLEMENTATION RULES:
  - Keep structs simple and public.
  - Use time.Time and time.Duration for high precision.

USAGE:
  res := model.Result{...}

SELF-HEALING INSTRUCTIONS:
  - If new metadata columns are needed, add a field here and update the CSV
    loader and writers.

RELATED FILES:
  - internal/cases/loader.go
  - internal/output/csv.go

MAINTENANCE:
  - Update when the plant.id response contract changes.
*/

package model

import (
	"encoding/json"
	"time"
)

// NotAPlantLabel is the sentinel prediction used when the API decides the
// image does not depict a plant at all.
const NotAPlantLabel = "NOT_A_PLANT"

// Metadata holds the optional survey columns from the cases file. They are
// echoed into the results file untouched.
type Metadata struct {
	Severity      string `json:"severity,omitempty"`
	Area          string `json:"area,omitempty"`
	Focus         string `json:"focus,omitempty"`
	ImageQuality  string `json:"image_quality,omitempty"`
	Lighting      string `json:"lighting,omitempty"`
	Visibility    string `json:"visibility,omitempty"`
	WeatherSeason string `json:"weather_season,omitempty"`
}

// TestCase is one (image, expected-label) pair to evaluate. Immutable after
// load.
type TestCase struct {
	ID        string   `json:"test_id"`
	Crop      string   `json:"crop,omitempty"`
	Disease   string   `json:"disease,omitempty"`
	ImagePath string   `json:"image_path"`
	Expected  string   `json:"expected_label"`
	Meta      Metadata `json:"metadata,omitempty"`
}

// Prediction is the normalized outcome of one health-assessment call.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	// Suggestions holds every candidate name in API order, including the top
	// prediction, for fallback matching.
	Suggestions []string        `json:"suggestions,omitempty"`
	Raw         json.RawMessage `json:"-"`
}

// IsNotAPlant reports whether this prediction is the not-a-plant sentinel.
func (p Prediction) IsNotAPlant() bool {
	return p.Label == NotAPlantLabel
}

// NotAPlant returns the sentinel prediction, keeping the raw response for
// diagnostics.
func NotAPlant(raw json.RawMessage) Prediction {
	return Prediction{Label: NotAPlantLabel, Confidence: 0, Raw: raw}
}

// Result is the outcome of one test case. Exactly one Result exists per
// loaded TestCase, whether or not the API was reached.
type Result struct {
	Timestamp time.Time `json:"timestamp"`
	Case      TestCase  `json:"case"`

	Predicted  string  `json:"predicted_label"`
	Confidence float64 `json:"confidence"`
	// Called reports whether an API call was attempted. When false the
	// confidence column is rendered empty rather than as 0.
	Called  bool          `json:"called"`
	Pass    bool          `json:"pass"`
	Latency time.Duration `json:"latency"`
	Error   string        `json:"error,omitempty"`
}
