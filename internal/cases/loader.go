/*
PURPOSE:
  Loads test cases from a CSV file into ordered TestCase records.

REQUIREMENTS:
  User-specified:
  - Header row required; test_id, image_path, expected_label are mandatory
    columns.
  - Optional metadata columns (crop, disease, severity, ...) default to empty.
  - File order must be preserved.

  Implementation-discovered:
  - The original data sets sometimes omit test_id or expected_label per row:
    test_id falls back to TC<nn>, expected_label to "<crop> <disease>".
  - Header validation should be eager so a malformed file fails before any
    API call is made.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/runner.go, internal/cli/validate.go
  - Produces: internal/model.TestCase

ERROR HANDLING:
  - Open failure and CSV parse failure return wrapped errors.
  - Missing required header columns return a *FormatError.

IMPLEMENTATION RULES:
  - Use encoding/csv.
  - Rows shorter than the header are padded with empty strings (ragged CSVs
    exported from spreadsheets are common).

USAGE:
  cases, err := cases.Load("plant_ai_test_cases.csv")

SELF-HEALING INSTRUCTIONS:
  - If a new metadata column is added, extend columnIndex usage and
    model.Metadata together.

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Update when the cases schema changes.
*/

package cases

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/verdantqa/plantcheck/internal/model"
)

// Column names in the cases CSV.
const (
	ColTestID        = "test_id"
	ColCrop          = "crop"
	ColDisease       = "disease"
	ColImagePath     = "image_path"
	ColExpected      = "expected_label"
	ColSeverity      = "severity"
	ColArea          = "area"
	ColFocus         = "focus"
	ColImageQuality  = "image_quality"
	ColLighting      = "lighting"
	ColVisibility    = "visibility"
	ColWeatherSeason = "weather_season"
)

var requiredColumns = []string{ColTestID, ColImagePath, ColExpected}

// FormatError reports a cases file whose header is missing required columns.
type FormatError struct {
	Path    string
	Missing []string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("cases file %s: missing required columns: %s",
		e.Path, strings.Join(e.Missing, ", "))
}

// Load reads the cases file and returns its rows in file order.
func Load(path string) ([]model.TestCase, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cases file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate ragged rows, we pad below

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse cases file %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, &FormatError{Path: path, Missing: requiredColumns}
	}

	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &FormatError{Path: path, Missing: missing}
	}

	out := make([]model.TestCase, 0, len(records)-1)
	for i, record := range records[1:] {
		get := func(name string) string {
			col, ok := index[name]
			if !ok || col >= len(record) {
				return ""
			}
			return record[col]
		}

		tc := model.TestCase{
			ID:        get(ColTestID),
			Crop:      get(ColCrop),
			Disease:   get(ColDisease),
			ImagePath: get(ColImagePath),
			Expected:  get(ColExpected),
			Meta: model.Metadata{
				Severity:      get(ColSeverity),
				Area:          get(ColArea),
				Focus:         get(ColFocus),
				ImageQuality:  get(ColImageQuality),
				Lighting:      get(ColLighting),
				Visibility:    get(ColVisibility),
				WeatherSeason: get(ColWeatherSeason),
			},
		}

		if tc.ID == "" {
			tc.ID = fmt.Sprintf("TC%02d", i+1)
		}
		if tc.Expected == "" && tc.Crop != "" && tc.Disease != "" {
			tc.Expected = strings.ToLower(tc.Crop) + " " + strings.ToLower(tc.Disease)
		}

		out = append(out, tc)
	}

	return out, nil
}
