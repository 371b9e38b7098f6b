package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantqa/plantcheck/internal/config"
	"github.com/verdantqa/plantcheck/internal/model"
)

func testImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "leaf.jpg")
	require.NoError(t, os.WriteFile(path, []byte("fake jpeg bytes"), 0644))
	return path
}

func testConfig(endpoint string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Endpoint = endpoint
	cfg.APIKey = "test-key"
	cfg.RetryAfterDefault = 20 * time.Millisecond
	return cfg
}

func healthBody(suggestions ...suggestion) string {
	b, _ := json.Marshal(map[string]any{
		"result": map[string]any{
			"is_plant": map[string]any{"binary": true, "probability": 0.99},
			"disease":  map[string]any{"suggestions": suggestions},
		},
	})
	return string(b)
}

func TestHealthAssessmentPicksTopSuggestion(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("Api-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload struct {
			Images []string `json:"images"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		if assert.Len(t, payload.Images, 1) {
			assert.True(t, strings.HasPrefix(payload.Images[0], "data:image/jpeg;base64,"))
		}

		w.Write([]byte(healthBody(
			suggestion{Name: "Rust", Probability: 0.3},
			suggestion{Name: "Blight", Probability: 0.7},
		)))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	pred, err := c.HealthAssessment(context.Background(), testImage(t))
	require.NoError(t, err)

	assert.Equal(t, "Blight", pred.Label)
	assert.InDelta(t, 0.7, pred.Confidence, 1e-9)
	assert.Equal(t, []string{"Rust", "Blight"}, pred.Suggestions)
	assert.EqualValues(t, 1, calls.Load())
	assert.NotEmpty(t, pred.Raw)
}

func TestHealthAssessmentTieGoesToFirst(t *testing.T) {
	t.Parallel()

	pred, err := parseHealthResponse([]byte(healthBody(
		suggestion{Name: "Rust", Probability: 0.5},
		suggestion{Name: "Blight", Probability: 0.5},
	)))
	require.NoError(t, err)
	assert.Equal(t, "Rust", pred.Label)
}

func TestHealthAssessmentRetriesOnceOn429(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(healthBody(suggestion{Name: "Blight", Probability: 0.7})))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	start := time.Now()
	pred, err := c.HealthAssessment(context.Background(), testImage(t))
	require.NoError(t, err)

	// Exactly two requests, and the retry suspension honored Retry-After.
	assert.EqualValues(t, 2, calls.Load())
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
	assert.Equal(t, "Blight", pred.Label)
}

func TestHealthAssessmentGivesUpAfterSecond429(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		// No Retry-After header: the configured default applies.
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	_, err := c.HealthAssessment(context.Background(), testImage(t))

	var serr *StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusTooManyRequests, serr.StatusCode)
	assert.EqualValues(t, 2, calls.Load())
}

func TestHealthAssessmentNoRetryOnServerError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"boom"}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	_, err := c.HealthAssessment(context.Background(), testImage(t))

	var serr *StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusInternalServerError, serr.StatusCode)
	assert.Contains(t, serr.Body, "boom")
	assert.EqualValues(t, 1, calls.Load())
}

func TestParseHealthResponseNotAPlant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{
			name: "binary false",
			body: `{"result":{"is_plant":{"binary":false,"probability":0.9}}}`,
		},
		{
			name: "low probability",
			body: `{"result":{"is_plant":{"binary":true,"probability":0.2}}}`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pred, err := parseHealthResponse([]byte(tt.body))
			require.NoError(t, err)
			assert.True(t, pred.IsNotAPlant())
			assert.Equal(t, model.NotAPlantLabel, pred.Label)
			assert.Zero(t, pred.Confidence)
			assert.Empty(t, pred.Suggestions)
		})
	}
}

func TestParseHealthResponseAbsentIsPlantMeansPlant(t *testing.T) {
	t.Parallel()

	pred, err := parseHealthResponse([]byte(
		`{"result":{"disease":{"suggestions":[{"name":"Mildew","probability":0.6}]}}}`,
	))
	require.NoError(t, err)
	assert.Equal(t, "Mildew", pred.Label)
}

func TestParseHealthResponseEmptySuggestions(t *testing.T) {
	t.Parallel()

	_, err := parseHealthResponse([]byte(
		`{"result":{"is_plant":{"binary":true,"probability":0.9},"disease":{"suggestions":[]}}}`,
	))
	assert.ErrorIs(t, err, ErrNoSuggestions)
}

func TestParseHealthResponseInvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := parseHealthResponse([]byte("<html>not json</html>"))
	assert.Error(t, err)
}

func TestRetryAfterBackoff(t *testing.T) {
	t.Parallel()

	backoff := retryAfterBackoff(60 * time.Second)

	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set("Retry-After", "7")
	assert.Equal(t, 7*time.Second, backoff(0, 0, 0, resp))

	resp.Header.Set("Retry-After", "soon")
	assert.Equal(t, 60*time.Second, backoff(0, 0, 0, resp))

	resp.Header.Del("Retry-After")
	assert.Equal(t, 60*time.Second, backoff(0, 0, 0, resp))

	assert.Equal(t, 60*time.Second, backoff(0, 0, 0, nil))
}
