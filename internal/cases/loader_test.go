package cases

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cases.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadPreservesOrder(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, `test_id,image_path,expected_label
TC01,a.jpg,apple scab
TC02,b.jpg,grape black rot
TC03,c.jpg,not a plant
`)

	suite, err := Load(path)
	require.NoError(t, err)
	require.Len(t, suite, 3)
	assert.Equal(t, "TC01", suite[0].ID)
	assert.Equal(t, "TC02", suite[1].ID)
	assert.Equal(t, "TC03", suite[2].ID)
	assert.Equal(t, "grape black rot", suite[1].Expected)
}

func TestLoadMetadataColumns(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, `test_id,crop,disease,image_path,expected_label,severity,lighting,weather_season
TC01,apple,scab,a.jpg,apple scab,severe,daylight,spring
`)

	suite, err := Load(path)
	require.NoError(t, err)
	require.Len(t, suite, 1)

	tc := suite[0]
	assert.Equal(t, "apple", tc.Crop)
	assert.Equal(t, "scab", tc.Disease)
	assert.Equal(t, "severe", tc.Meta.Severity)
	assert.Equal(t, "daylight", tc.Meta.Lighting)
	assert.Equal(t, "spring", tc.Meta.WeatherSeason)
	// Columns absent from the header default to empty.
	assert.Empty(t, tc.Meta.Area)
	assert.Empty(t, tc.Meta.Visibility)
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, `test_id,crop,disease,image_path,expected_label
,Apple,Scab,a.jpg,
TC02,tomato,blight,b.jpg,custom label
`)

	suite, err := Load(path)
	require.NoError(t, err)
	require.Len(t, suite, 2)

	// Missing test_id falls back to the row number, missing expected label is
	// synthesized from crop + disease, lowercased.
	assert.Equal(t, "TC01", suite[0].ID)
	assert.Equal(t, "apple scab", suite[0].Expected)

	// An explicit expected label wins over the synthesized one.
	assert.Equal(t, "custom label", suite[1].Expected)
}

func TestLoadRaggedRows(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, `test_id,image_path,expected_label,severity
TC01,a.jpg,apple scab
`)

	suite, err := Load(path)
	require.NoError(t, err)
	require.Len(t, suite, 1)
	assert.Empty(t, suite[0].Meta.Severity)
}

func TestLoadMissingRequiredColumns(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, `test_id,crop,disease
TC01,apple,scab
`)

	_, err := Load(path)
	var ferr *FormatError
	require.ErrorAs(t, err, &ferr)
	assert.ElementsMatch(t, []string{"image_path", "expected_label"}, ferr.Missing)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestLoadEmptyFile(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, "")
	_, err := Load(path)
	var ferr *FormatError
	assert.ErrorAs(t, err, &ferr)
}
