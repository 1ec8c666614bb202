// Package visualtest runs visual UI tests: one Eyes runner per suite,
// one browser and one Eyes session per test.
package visualtest

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/acmebank/visualtests/internal/browser"
	"github.com/acmebank/visualtests/internal/config"
	"github.com/acmebank/visualtests/internal/eyes"
)

// DriverFactory opens a browser session
type DriverFactory func(cfg config.BrowserConfig) (browser.Driver, error)

// Options configure a Suite
type Options struct {
	Eyes        *config.EyesConfig
	Browser     config.BrowserConfig
	NewDriver   DriverFactory
	Concurrency int
}

// Suite holds what every test of a run shares
type Suite struct {
	runner    *eyes.ClassicRunner
	config    eyes.Configuration
	browser   config.BrowserConfig
	newDriver DriverFactory
	strict    bool
}

// NewSuite creates the shared runner, batch and configuration
func NewSuite(opts Options) (*Suite, error) {
	if opts.Eyes == nil || opts.Eyes.APIKey == "" {
		return nil, eyes.ErrMissingAPIKey
	}
	if opts.NewDriver == nil {
		opts.NewDriver = browser.New
	}

	cfg := eyes.NewConfiguration(opts.Eyes)
	cfg.ViewportSize = eyes.RectangleSize{
		Width:  opts.Browser.ViewportWidth,
		Height: opts.Browser.ViewportHeight,
	}

	log.Printf("Visual test batch %q (%s)", cfg.Batch.Name, cfg.Batch.ID)

	return &Suite{
		runner:    eyes.NewClassicRunner(eyes.WithConcurrency(opts.Concurrency)),
		config:    cfg,
		browser:   opts.Browser,
		newDriver: opts.NewDriver,
		strict:    opts.Eyes.FailOnDiffs,
	}, nil
}

// Configuration returns the Eyes configuration given to each test
func (s *Suite) Configuration() eyes.Configuration {
	return s.config
}

// Session is one test's browser and Eyes session
type Session struct {
	Name   string
	Driver browser.Driver
	Eyes   *eyes.Eyes

	strict bool
}

// Begin opens a browser and an Eyes session for testName
func (s *Suite) Begin(ctx context.Context, testName string) (*Session, error) {
	driver, err := s.newDriver(s.browser)
	if err != nil {
		return nil, fmt.Errorf("failed to open browser: %w", err)
	}

	e := eyes.NewEyes(s.runner)
	e.SetConfiguration(s.config)
	if err := e.Open(ctx, driver, s.config.AppName, testName, s.config.ViewportSize); err != nil {
		return nil, errors.Join(fmt.Errorf("failed to open eyes: %w", err), driver.Quit())
	}

	return &Session{Name: testName, Driver: driver, Eyes: e, strict: s.strict}, nil
}

// End quits the browser and stops the Eyes session. A failed test aborts
// the session; otherwise it closes in the background, or synchronously
// when differences should fail the test.
func (sess *Session) End(ctx context.Context, failed bool) error {
	var errs []error
	if err := sess.Driver.Quit(); err != nil {
		errs = append(errs, fmt.Errorf("failed to quit browser: %w", err))
	}

	switch {
	case failed:
		if _, err := sess.Eyes.Abort(ctx); err != nil {
			errs = append(errs, err)
		}
	case sess.strict:
		if _, err := sess.Eyes.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	default:
		if err := sess.Eyes.CloseAsync(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// TestFunc is the body of a visual test
type TestFunc func(ctx context.Context, sess *Session) error

// Run runs fn between Begin and End. End runs even when fn panics or
// stops its goroutine, and then aborts the session.
func (s *Suite) Run(ctx context.Context, testName string, fn TestFunc) (err error) {
	sess, err := s.Begin(ctx, testName)
	if err != nil {
		return err
	}

	// a body that panics or exits through runtime.Goexit never completes
	completed := false
	defer func() {
		err = errors.Join(err, sess.End(ctx, !completed || err != nil))
	}()

	if testErr := fn(ctx, sess); testErr != nil {
		err = fmt.Errorf("%s: %w", testName, testErr)
	}
	completed = true
	return err
}

// Finish waits for every test's results and logs the summary. Any test
// that did not pass, or could not be stopped, makes it return an error.
func (s *Suite) Finish(ctx context.Context) (eyes.TestResultsSummary, error) {
	summary, err := s.runner.GetAllTestResults(ctx, true)
	log.Print(summary.String())
	return summary, err
}
