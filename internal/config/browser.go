package config

import (
	"fmt"
	"strconv"
	"time"
)

// Browser driver names accepted by BROWSER_DRIVER
const (
	DriverPlaywright = "playwright"
	DriverRod        = "rod"
)

// Browser defaults
const (
	DefaultImplicitWait   = 10 * time.Second
	DefaultViewportWidth  = 1024
	DefaultViewportHeight = 768
)

// BrowserConfig holds configuration for the local browser session
type BrowserConfig struct {
	Driver         string
	Headless       bool
	ImplicitWait   time.Duration
	ViewportWidth  int
	ViewportHeight int
}

// LoadBrowserConfig loads browser configuration from environment variables.
// Any non-empty HEADLESS value selects headless mode.
func LoadBrowserConfig(getenv func(string) string) (*BrowserConfig, error) {
	config := BrowserConfig{
		Driver:         getenv("BROWSER_DRIVER"),
		Headless:       getenv("HEADLESS") != "",
		ImplicitWait:   DefaultImplicitWait,
		ViewportWidth:  DefaultViewportWidth,
		ViewportHeight: DefaultViewportHeight,
	}

	if config.Driver == "" {
		config.Driver = DriverPlaywright
	}
	if config.Driver != DriverPlaywright && config.Driver != DriverRod {
		return nil, fmt.Errorf("unsupported BROWSER_DRIVER %q", config.Driver)
	}

	if raw := getenv("BROWSER_IMPLICIT_WAIT"); raw != "" {
		wait, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid BROWSER_IMPLICIT_WAIT %q: %w", raw, err)
		}
		if wait <= 0 {
			return nil, fmt.Errorf("BROWSER_IMPLICIT_WAIT must be positive")
		}
		config.ImplicitWait = wait
	}

	var err error
	if config.ViewportWidth, err = positiveInt(getenv, "VIEWPORT_WIDTH", DefaultViewportWidth); err != nil {
		return nil, err
	}
	if config.ViewportHeight, err = positiveInt(getenv, "VIEWPORT_HEIGHT", DefaultViewportHeight); err != nil {
		return nil, err
	}

	return &config, nil
}

func positiveInt(getenv func(string) string, key string, fallback int) (int, error) {
	raw := getenv(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return n, nil
}
