package config

import (
	"fmt"
	"strconv"
)

// Eyes defaults used when the environment leaves a value unset
const (
	DefaultEyesServerURL = "https://eyesapi.applitools.com"
	DefaultBatchName     = "Example: ACME Bank Go with the Classic Runner"
	DefaultAppName       = "ACME Bank"
)

// EyesConfig holds configuration for the visual-testing service
type EyesConfig struct {
	APIKey      string
	ServerURL   string
	AppName     string
	BatchName   string
	BatchID     string
	FailOnDiffs bool
}

// LoadEyesConfig loads visual-testing configuration from environment variables
func LoadEyesConfig(getenv func(string) string) (*EyesConfig, error) {
	config := EyesConfig{
		APIKey:    getenv("APPLITOOLS_API_KEY"),
		ServerURL: getenv("APPLITOOLS_SERVER_URL"),
		AppName:   getenv("APPLITOOLS_APP_NAME"),
		BatchName: getenv("APPLITOOLS_BATCH_NAME"),
		BatchID:   getenv("APPLITOOLS_BATCH_ID"),
	}

	// Validate required fields
	if config.APIKey == "" {
		return nil, fmt.Errorf("APPLITOOLS_API_KEY is required")
	}

	if raw := getenv("APPLITOOLS_FAIL_ON_DIFFS"); raw != "" {
		failOnDiffs, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid APPLITOOLS_FAIL_ON_DIFFS %q: %w", raw, err)
		}
		config.FailOnDiffs = failOnDiffs
	}

	if config.ServerURL == "" {
		config.ServerURL = DefaultEyesServerURL
	}
	if config.AppName == "" {
		config.AppName = DefaultAppName
	}
	if config.BatchName == "" {
		config.BatchName = DefaultBatchName
	}

	return &config, nil
}
