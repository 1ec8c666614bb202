package eyes

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/acmebank/visualtests/internal/browser"
)

// Eyes is one visual test: a running session over a browser
type Eyes struct {
	runner    *ClassicRunner
	connector ServerConnector

	mu       sync.Mutex
	config   Configuration
	driver   browser.Driver
	session  *RunningSession
	testName string
	steps    int
}

// NewEyes creates an Eyes bound to runner. A nil runner gets a private one.
func NewEyes(runner *ClassicRunner) *Eyes {
	if runner == nil {
		runner = NewClassicRunner()
	}
	return &Eyes{runner: runner, config: Configuration{MatchLevel: MatchLevelStrict}}
}

// SetConfiguration replaces the configuration used by the next Open
func (e *Eyes) SetConfiguration(cfg Configuration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cfg.MatchLevel == "" {
		cfg.MatchLevel = MatchLevelStrict
	}
	e.config = cfg
}

// Configuration returns the current configuration
func (e *Eyes) Configuration() Configuration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.config
}

// SetServerConnector overrides the connector built from the configuration
func (e *Eyes) SetServerConnector(connector ServerConnector) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.connector = connector
}

// IsOpen reports whether a session is running
func (e *Eyes) IsOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session != nil
}

// Open resizes the browser to viewport and starts a session for testName.
// An empty appName or viewport falls back to the configuration.
func (e *Eyes) Open(ctx context.Context, driver browser.Driver, appName, testName string, viewport RectangleSize) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session != nil {
		return ErrAlreadyOpen
	}
	if e.config.APIKey == "" {
		return ErrMissingAPIKey
	}
	if testName == "" {
		return ErrMissingTestName
	}
	if appName == "" {
		appName = e.config.AppName
	}
	if viewport.IsEmpty() {
		viewport = e.config.ViewportSize
	}

	if !viewport.IsEmpty() {
		if err := driver.SetViewportSize(viewport.Width, viewport.Height); err != nil {
			return fmt.Errorf("failed to set viewport size %s: %w", viewport, err)
		}
	}

	if e.connector == nil {
		e.connector = NewServerConnector(e.config.ServerURL, e.config.APIKey)
	}

	session, err := e.connector.StartSession(ctx, &SessionStartInfo{
		AppIDOrName:          appName,
		ScenarioIDOrName:     testName,
		BatchInfo:            e.config.Batch,
		Environment:          Environment{DisplaySize: viewport},
		DefaultMatchSettings: MatchSettings{MatchLevel: e.config.MatchLevel},
	})
	if err != nil {
		return err
	}

	e.driver = driver
	e.session = session
	e.testName = testName
	e.steps = 0
	return nil
}

// Check captures the target described by settings and uploads it
func (e *Eyes) Check(ctx context.Context, settings *CheckSettings) (MatchResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return MatchResult{}, ErrNotOpen
	}

	screenshot, err := e.capture(settings)
	if err != nil {
		return MatchResult{}, fmt.Errorf("failed to capture %q: %w", settings.Name(), err)
	}

	title, err := e.driver.Title()
	if err != nil {
		return MatchResult{}, fmt.Errorf("failed to read page title: %w", err)
	}

	level := settings.MatchLevel()
	if level == "" {
		level = e.config.MatchLevel
	}

	e.steps++
	result, err := e.connector.MatchWindow(ctx, e.session, &MatchWindowData{
		AppOutput: AppOutput{Title: title, Screenshot64: screenshot},
		Tag:       settings.Name(),
		Options: MatchOptions{
			Name:       settings.Name(),
			MatchLevel: level,
			Fully:      settings.IsFully(),
		},
	})
	if err != nil {
		return MatchResult{}, err
	}

	if !result.AsExpected {
		log.Printf("Checkpoint %q of %q did not match its baseline", settings.Name(), e.testName)
	}
	return *result, nil
}

func (e *Eyes) capture(settings *CheckSettings) ([]byte, error) {
	if by := settings.Region(); by != nil {
		el, err := e.driver.FindElement(*by)
		if err != nil {
			return nil, err
		}
		return el.Screenshot()
	}
	return e.driver.Screenshot(settings.IsFully())
}

// detach hands the running session to the caller and resets the instance
func (e *Eyes) detach() (ServerConnector, *RunningSession, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	session, testName := e.session, e.testName
	e.session = nil
	e.driver = nil
	return e.connector, session, testName
}

// Close stops the session and waits for its results. A test that did not
// pass is reported as an error wrapping ErrDiffsFound, ErrNewTest or
// ErrTestFailed alongside the results.
func (e *Eyes) Close(ctx context.Context) (*TestResults, error) {
	connector, session, testName := e.detach()
	if session == nil {
		return nil, ErrNotOpen
	}

	results, err := stopSession(ctx, connector, session, false)
	e.runner.record(testName, results, err)
	if err != nil {
		return nil, err
	}
	return results, results.Err()
}

// CloseAsync stops the session in the background. Results are collected
// by the runner and never fail the caller.
func (e *Eyes) CloseAsync(ctx context.Context) error {
	connector, session, testName := e.detach()
	if session == nil {
		return ErrNotOpen
	}

	ctx = context.WithoutCancel(ctx)
	e.runner.schedule(testName, func() (*TestResults, error) {
		return stopSession(ctx, connector, session, false)
	})
	return nil
}

// Abort stops the session as aborted. It is a no-op when no session is open.
func (e *Eyes) Abort(ctx context.Context) (*TestResults, error) {
	connector, session, testName := e.detach()
	if session == nil {
		return nil, nil
	}

	results, err := stopSession(ctx, connector, session, true)
	e.runner.record(testName, results, err)
	return results, err
}

// stopSession stops session and treats a missing result as an error
func stopSession(ctx context.Context, connector ServerConnector, session *RunningSession, aborted bool) (*TestResults, error) {
	results, err := connector.StopSession(ctx, session, aborted)
	if err != nil {
		return nil, err
	}
	if results == nil {
		return nil, fmt.Errorf("%w: session %s", ErrNoResults, session.ID)
	}
	return results, nil
}
