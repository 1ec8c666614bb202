package visualtest

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acmebank/visualtests/internal/browser"
	"github.com/acmebank/visualtests/internal/browser/browsertest"
	"github.com/acmebank/visualtests/internal/config"
	"github.com/acmebank/visualtests/internal/eyes"
	"github.com/acmebank/visualtests/internal/eyes/eyestest"
)

const testAPIKey = "suite-key"

type fixture struct {
	suite   *Suite
	server  *eyestest.Server
	drivers []*browsertest.FakeDriver
}

func newFixture(t *testing.T, failOnDiffs bool) *fixture {
	t.Helper()
	f := &fixture{server: eyestest.NewServer(testAPIKey)}
	t.Cleanup(f.server.Close)

	suite, err := NewSuite(Options{
		Eyes: &config.EyesConfig{
			APIKey:      testAPIKey,
			ServerURL:   f.server.URL,
			AppName:     config.DefaultAppName,
			BatchName:   config.DefaultBatchName,
			FailOnDiffs: failOnDiffs,
		},
		Browser: config.BrowserConfig{ViewportWidth: 1024, ViewportHeight: 768},
		NewDriver: func(config.BrowserConfig) (browser.Driver, error) {
			d := browsertest.NewFakeDriver()
			f.drivers = append(f.drivers, d)
			return d, nil
		},
	})
	require.NoError(t, err)
	f.suite = suite
	return f
}

func TestNewSuite_RequiresAPIKey(t *testing.T) {
	_, err := NewSuite(Options{Eyes: &config.EyesConfig{}})
	assert.ErrorIs(t, err, eyes.ErrMissingAPIKey)

	_, err = NewSuite(Options{})
	assert.ErrorIs(t, err, eyes.ErrMissingAPIKey)
}

func TestSuite_Configuration(t *testing.T) {
	f := newFixture(t, false)

	cfg := f.suite.Configuration()

	assert.Equal(t, "ACME Bank", cfg.AppName)
	assert.Equal(t, "Example: ACME Bank Go with the Classic Runner", cfg.Batch.Name)
	assert.Equal(t, eyes.RectangleSize{Width: 1024, Height: 768}, cfg.ViewportSize)
}

func TestSuite_Run(t *testing.T) {
	tests := []struct {
		name            string
		failOnDiffs     bool
		mismatch        string
		body            func(ctx context.Context, sess *Session) error
		expectedErr     error
		expectedAborted bool
		expectedStatus  eyes.TestResultsStatus
	}{
		{
			name: "passing test closes in the background",
			body: func(ctx context.Context, sess *Session) error {
				_, err := sess.Eyes.Check(ctx, eyes.Target.Window().WithName("Login page"))
				return err
			},
			expectedStatus: eyes.StatusPassed,
		},
		{
			name:     "differences do not fail the test body by default",
			mismatch: "Login page",
			body: func(ctx context.Context, sess *Session) error {
				_, err := sess.Eyes.Check(ctx, eyes.Target.Window().WithName("Login page"))
				return err
			},
			expectedStatus: eyes.StatusUnresolved,
		},
		{
			name:        "differences fail the test when strict",
			failOnDiffs: true,
			mismatch:    "Login page",
			body: func(ctx context.Context, sess *Session) error {
				_, err := sess.Eyes.Check(ctx, eyes.Target.Window().WithName("Login page"))
				return err
			},
			expectedErr:    eyes.ErrNewTest,
			expectedStatus: eyes.StatusUnresolved,
		},
		{
			name: "failing body aborts the session",
			body: func(ctx context.Context, sess *Session) error {
				return browser.ErrElementNotFound
			},
			expectedErr:     browser.ErrElementNotFound,
			expectedAborted: true,
			expectedStatus:  eyes.StatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN a suite
			f := newFixture(t, tt.failOnDiffs)
			if tt.mismatch != "" {
				f.server.Mismatch(tt.mismatch)
			}
			ctx := context.Background()

			// WHEN a test runs
			err := f.suite.Run(ctx, "visual test", tt.body)

			// THEN both handles are released whatever the outcome
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			require.Len(t, f.drivers, 1)
			assert.True(t, f.drivers[0].Closed())

			summary, err := f.suite.Finish(ctx)
			if tt.expectedStatus == eyes.StatusPassed {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
			require.Len(t, summary.Containers, 1)
			assert.Equal(t, tt.expectedStatus, summary.Containers[0].Results.Status)

			sessions := f.server.Sessions()
			require.Len(t, sessions, 1)
			assert.True(t, sessions[0].Stopped)
			assert.Equal(t, tt.expectedAborted, sessions[0].Aborted)
		})
	}
}

func TestSuite_BeginQuitsDriverWhenEyesFails(t *testing.T) {
	f := newFixture(t, false)
	f.server.APIKey = "rotated"

	_, err := f.suite.Begin(context.Background(), "login")

	var serverErr *eyes.ServerError
	require.True(t, errors.As(err, &serverErr))
	require.Len(t, f.drivers, 1)
	assert.True(t, f.drivers[0].Closed())
}

func TestSuite_BeginDriverError(t *testing.T) {
	suite, err := NewSuite(Options{
		Eyes: &config.EyesConfig{APIKey: testAPIKey},
		NewDriver: func(config.BrowserConfig) (browser.Driver, error) {
			return nil, browser.ErrUnknownDriver
		},
	})
	require.NoError(t, err)

	_, err = suite.Begin(context.Background(), "login")

	assert.ErrorIs(t, err, browser.ErrUnknownDriver)
}

func TestSession_EndJoinsErrors(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	sess, err := f.suite.Begin(ctx, "login")
	require.NoError(t, err)
	quitErr := errors.New("browser crashed")
	f.drivers[0].QuitErr = quitErr

	err = sess.End(ctx, false)
	assert.ErrorIs(t, err, quitErr)

	// a second End finds nothing open
	err = sess.End(ctx, false)
	assert.ErrorIs(t, err, eyes.ErrNotOpen)
	assert.Equal(t, 2, f.drivers[0].QuitCalls)

	_, err = f.suite.Finish(ctx)
	assert.NoError(t, err)
}

func TestSuite_FinishReportsDifferences(t *testing.T) {
	tests := []struct {
		name        string
		baseline    bool
		expectedErr error
	}{
		{name: "existing baseline", baseline: true, expectedErr: eyes.ErrDiffsFound},
		{name: "new baseline", expectedErr: eyes.ErrNewTest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN a default suite whose checkpoint differs
			f := newFixture(t, false)
			f.server.Mismatch("Main page")
			if tt.baseline {
				f.server.Baseline("login")
			}
			ctx := context.Background()

			// WHEN the test closes in the background
			err := f.suite.Run(ctx, "login", func(ctx context.Context, sess *Session) error {
				_, err := sess.Eyes.Check(ctx, eyes.Target.Window().WithName("Main page"))
				return err
			})
			require.NoError(t, err)

			// THEN suite teardown fails on the unresolved result
			summary, err := f.suite.Finish(ctx)
			assert.ErrorIs(t, err, tt.expectedErr)
			assert.Equal(t, 1, summary.Unresolved())
		})
	}
}

func TestSuite_RunEndsSessionWhenBodyStops(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	// GIVEN a body that stops its goroutine the way t.FailNow and require do
	done := make(chan struct{})
	go func() {
		defer close(done)
		f.suite.Run(ctx, "stopped", func(ctx context.Context, sess *Session) error {
			runtime.Goexit()
			return nil
		})
	}()
	<-done

	// THEN the browser is closed and the session aborted
	require.Len(t, f.drivers, 1)
	assert.True(t, f.drivers[0].Closed())
	sessions := f.server.Sessions()
	require.Len(t, sessions, 1)
	assert.True(t, sessions[0].Stopped)
	assert.True(t, sessions[0].Aborted)
}

func TestSuite_RunEndsSessionWhenBodyPanics(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	assert.Panics(t, func() {
		f.suite.Run(ctx, "panics", func(ctx context.Context, sess *Session) error {
			panic("boom")
		})
	})

	require.Len(t, f.drivers, 1)
	assert.True(t, f.drivers[0].Closed())
	assert.True(t, f.server.Sessions()[0].Aborted)
}
