/*
PURPOSE:
  Defines the configuration structure and loading logic for Plant Check.
  Adheres to "Config IS Code" philosophy.

REQUIREMENTS:
  User-specified:
  - Allow configuration of the API endpoint, key, file paths, pacing delay,
    and request timeout.
  - Environment variables must be able to override the key and endpoint so
    secrets stay out of config files.

  Implementation-discovered:
  - Needs to support YAML parsing.
  - Defaults must reproduce the original harness (1.5s pacing, 60s timeout,
    60s fallback when a 429 carries no Retry-After header).

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/engine
  - Dependencies: gopkg.in/yaml.v3 (standard for Go config)

ERROR HANDLING:
  - Returns explicit error if config file is invalid.
  - Missing default config file is not an error; defaults apply.

IMPLEMENTATION RULES:
  - Config struct tags should support yaml.
  - Env overrides apply after file parsing, flags after env (in the CLI).

USAGE:
  cfg, err := config.Load("plantcheck.yaml")

SELF-HEALING INSTRUCTIONS:
  - If new fields are needed, add to Config struct and update Load() defaults.

RELATED FILES:
  - internal/cli/run.go

MAINTENANCE:
  - Update when adding new tuning parameters.
*/

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables recognized after file parsing.
const (
	EnvAPIKey   = "PLANTCHECK_API_KEY"
	EnvEndpoint = "PLANTCHECK_ENDPOINT"
)

// Config represents the full configuration for Plant Check.
type Config struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`

	CasesFile    string `yaml:"cases_file"`
	OutputDir    string `yaml:"output_dir"`
	ResultsFile  string `yaml:"results_file"`
	ResultsJSONL string `yaml:"results_jsonl"`

	// PacingDelay is the minimum spacing between consecutive API calls.
	PacingDelay    time.Duration `yaml:"pacing_delay"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// RetryAfterDefault is the wait applied to a 429 response that carries no
	// Retry-After header.
	RetryAfterDefault time.Duration `yaml:"retry_after_default"`

	// SimilarImages is forwarded in the request payload; plant.id returns
	// reference images for each suggestion when set.
	SimilarImages bool `yaml:"similar_images"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Endpoint:          "https://plant.id/api/v3/health_assessment",
		CasesFile:         "plant_ai_test_cases.csv",
		OutputDir:         ".",
		ResultsFile:       "plant_ai_test_results.csv",
		ResultsJSONL:      "plant_ai_test_results.jsonl",
		PacingDelay:       1500 * time.Millisecond,
		RequestTimeout:    60 * time.Second,
		RetryAfterDefault: 60 * time.Second,
		SimilarImages:     true,
	}
}

// Load reads configuration from a file.
// If path is specified, it attempts to load that file.
// If path is empty, it searches for default files in order.
// If no file is found, returns the default config.
// Environment overrides apply last either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
	} else {
		defaults := []string{"plantcheck.yaml", "plant_check.yaml"}
		found := false
		for _, name := range defaults {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name // record which file we loaded
				found = true
				break
			}
		}
		if !found {
			cfg.applyEnv()
			return cfg, nil
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvEndpoint); v != "" {
		c.Endpoint = v
	}
}

// Validate checks the fields no run can proceed without.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("no API key configured (set api_key or %s)", EnvAPIKey)
	}
	if c.Endpoint == "" {
		return fmt.Errorf("no endpoint configured")
	}
	return nil
}
