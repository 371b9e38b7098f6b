/*
PURPOSE:
  HTTP client for the plant.id v3 health-assessment API.
  Submits an encoded image and extracts a best-guess diagnosis.

REQUIREMENTS:
  User-specified:
  - One POST per test case, JSON body with the data-URL image, static Api-Key
    header.
  - On 429, honor Retry-After (default 60s when absent) and retry exactly
    once. No retries on anything else.
  - Treat "not a plant" verdicts as a sentinel prediction, not an error.
  - Pick the suggestion with the highest probability; ties go to the first.

  Implementation-discovered:
  - plant.id omits is_plant fields in some responses; absent values mean
    "is a plant" (binary true, probability 1.0), so pointers are needed to
    tell absent from false/zero.
  - The final 429 after the retry must surface as a status error with the
    body, so the retry client uses the passthrough error handler.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine/runner.go
  - Uses: internal/config, internal/model
  - Dependencies: hashicorp/go-retryablehttp

ERROR HANDLING:
  - *StatusError for non-2xx after the retry (code + body snippet).
  - ErrNoSuggestions when the diagnosis list is empty.
  - Wrapped errors for transport and decode failures.

IMPLEMENTATION RULES:
  - RetryMax is fixed at 1; the retry policy only fires on 429.
  - Enforce the configured request timeout on the underlying http.Client.

USAGE:
  c := engine.NewClient(cfg)
  pred, err := c.HealthAssessment(ctx, "leaf.jpg")

SELF-HEALING INSTRUCTIONS:
  - If plant.id changes the response shape, update healthResponse and the
    sentinel logic together.

RELATED FILES:
  - internal/engine/encode.go
  - internal/config/config.go

MAINTENANCE:
  - Update for new plant.id API versions.
*/

package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/verdantqa/plantcheck/internal/config"
	"github.com/verdantqa/plantcheck/internal/model"
)

// ErrNoSuggestions is returned when the API classifies the image as a plant
// but offers no disease suggestions to match against.
var ErrNoSuggestions = errors.New("no disease suggestions returned")

// StatusError is a non-2xx API response that survived the rate-limit retry.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Body)
}

// maxErrorBody bounds how much response body is kept in a StatusError.
const maxErrorBody = 500

// Client talks to the health-assessment endpoint.
type Client struct {
	cfg  *config.Config
	http *retryablehttp.Client
}

// NewClient creates a Client with the single-429-retry policy.
func NewClient(cfg *config.Config) *Client {
	rc := retryablehttp.NewClient()
	rc.Logger = nil
	rc.RetryMax = 1
	rc.HTTPClient.Timeout = cfg.RequestTimeout

	// Only a 429 is worth a second attempt; every other failure is final.
	rc.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return false, err
		}
		return resp != nil && resp.StatusCode == http.StatusTooManyRequests, nil
	}
	rc.Backoff = retryAfterBackoff(cfg.RetryAfterDefault)
	// A 429 on the second attempt should come back as the response, not as a
	// wrapped "giving up" error, so the caller can build a StatusError.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{cfg: cfg, http: rc}
}

// retryAfterBackoff waits for the server-provided Retry-After duration,
// falling back to def when the header is absent or unparseable.
func retryAfterBackoff(def time.Duration) retryablehttp.Backoff {
	return func(_, _ time.Duration, _ int, resp *http.Response) time.Duration {
		if resp != nil {
			if s := resp.Header.Get("Retry-After"); s != "" {
				if secs, err := strconv.Atoi(s); err == nil && secs >= 0 {
					return time.Duration(secs) * time.Second
				}
			}
		}
		return def
	}
}

type healthRequest struct {
	Images        []string `json:"images"`
	SimilarImages bool     `json:"similar_images,omitempty"`
}

type suggestion struct {
	Name        string  `json:"name"`
	Probability float64 `json:"probability"`
}

type healthResponse struct {
	Result struct {
		IsPlant struct {
			Binary      *bool    `json:"binary"`
			Probability *float64 `json:"probability"`
		} `json:"is_plant"`
		Disease struct {
			Suggestions []suggestion `json:"suggestions"`
		} `json:"disease"`
	} `json:"result"`
}

// HealthAssessment encodes the image at imagePath, submits it, and returns
// the normalized prediction.
func (c *Client) HealthAssessment(ctx context.Context, imagePath string) (model.Prediction, error) {
	dataURL, err := EncodeImage(imagePath)
	if err != nil {
		return model.Prediction{}, err
	}

	body, err := json.Marshal(healthRequest{
		Images:        []string{dataURL},
		SimilarImages: c.cfg.SimilarImages,
	})
	if err != nil {
		return model.Prediction{}, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, body)
	if err != nil {
		return model.Prediction{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return model.Prediction{}, fmt.Errorf("health assessment request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Prediction{}, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(raw)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return model.Prediction{}, &StatusError{StatusCode: resp.StatusCode, Body: snippet}
	}

	return parseHealthResponse(raw)
}

func parseHealthResponse(raw []byte) (model.Prediction, error) {
	var data healthResponse
	if err := json.Unmarshal(raw, &data); err != nil {
		return model.Prediction{}, fmt.Errorf("API returned invalid JSON: %w", err)
	}

	// Absent fields mean the API had no doubt the subject is a plant.
	isPlant := true
	if data.Result.IsPlant.Binary != nil {
		isPlant = *data.Result.IsPlant.Binary
	}
	plantProb := 1.0
	if data.Result.IsPlant.Probability != nil {
		plantProb = *data.Result.IsPlant.Probability
	}
	if !isPlant || plantProb < 0.5 {
		return model.NotAPlant(raw), nil
	}

	suggestions := data.Result.Disease.Suggestions
	if len(suggestions) == 0 {
		return model.Prediction{}, ErrNoSuggestions
	}

	best := suggestions[0]
	for _, s := range suggestions[1:] {
		if s.Probability > best.Probability {
			best = s
		}
	}

	names := make([]string, len(suggestions))
	for i, s := range suggestions {
		names[i] = s.Name
	}

	return model.Prediction{
		Label:       best.Name,
		Confidence:  best.Probability,
		Suggestions: names,
		Raw:         raw,
	}, nil
}
