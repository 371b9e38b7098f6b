/*
PURPOSE:
  Writes per-case results to a CSV file.
  Ensures data integrity by flushing writes immediately.

REQUIREMENTS:
  User-specified:
  - Output to CSV, header written fresh each run (overwrite semantics).
  - Partial results must survive a crash mid-run.

  Implementation-discovered:
  - Confidence renders as "" for cases where the API was never called, and as
    a fixed-precision float otherwise (including 0.0000 on failed calls).
  - Metadata columns are echoed verbatim from the test case.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine
  - Consumes: internal/model.Result

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/csv.
  - Flush() after every write (critical for crash resilience).
  - Use Mutex if concurrent writes are expected.

USAGE:
  w, err := output.NewCSVWriter("results.csv")
  w.Write(result)
  w.Close()

SELF-HEALING INSTRUCTIONS:
  - If CSV format changes, update header and record conversion together.

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Update Write() mapping when Result struct changes.
*/

package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/verdantqa/plantcheck/internal/model"
)

// CSVHeader is the fixed column set of the results file.
var CSVHeader = []string{
	"timestamp", "test_id", "crop", "disease", "image_path",
	"expected_label", "predicted_label", "confidence", "pass",
	"latency_sec", "error",
	"severity", "area", "focus", "image_quality", "lighting",
	"visibility", "weather_season",
}

// CSVWriter handles writing results to a CSV file.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter creates a new CSVWriter.
// It overwrites the file if it exists and writes the header immediately.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)

	if err := w.Write(CSVHeader); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return nil, err
	}

	return &CSVWriter{
		file:   f,
		writer: w,
	}, nil
}

// Write writes a single result to the CSV file.
// It is thread-safe.
func (cw *CSVWriter) Write(r model.Result) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	confidence := ""
	if r.Called {
		confidence = fmt.Sprintf("%.4f", r.Confidence)
	}

	record := []string{
		r.Timestamp.Format(time.RFC3339),
		r.Case.ID,
		r.Case.Crop,
		r.Case.Disease,
		r.Case.ImagePath,
		r.Case.Expected,
		r.Predicted,
		confidence,
		strconv.FormatBool(r.Pass),
		fmt.Sprintf("%.3f", r.Latency.Seconds()),
		r.Error,
		r.Case.Meta.Severity,
		r.Case.Meta.Area,
		r.Case.Meta.Focus,
		r.Case.Meta.ImageQuality,
		r.Case.Meta.Lighting,
		r.Case.Meta.Visibility,
		r.Case.Meta.WeatherSeason,
	}

	if err := cw.writer.Write(record); err != nil {
		return err
	}
	cw.writer.Flush()
	return cw.writer.Error()
}

// Close closes the underlying file.
func (cw *CSVWriter) Close() error {
	cw.writer.Flush()
	return cw.file.Close()
}
