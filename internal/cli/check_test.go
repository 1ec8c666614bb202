package cli

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acmebank/visualtests/internal/browser"
	"github.com/acmebank/visualtests/internal/browser/browsertest"
	"github.com/acmebank/visualtests/internal/config"
	"github.com/acmebank/visualtests/internal/eyes"
	"github.com/acmebank/visualtests/internal/eyes/eyestest"
)

func checkOptions(server *eyestest.Server, failOnDiffs bool, driver *browsertest.FakeDriver) CheckOptions {
	return CheckOptions{
		Eyes: &config.EyesConfig{
			APIKey:      "check-key",
			ServerURL:   server.URL,
			AppName:     config.DefaultAppName,
			BatchName:   config.DefaultBatchName,
			FailOnDiffs: failOnDiffs,
		},
		Browser: config.BrowserConfig{ViewportWidth: 1024, ViewportHeight: 768},
		Site:    config.SiteConfig{URL: "http://bank.test", Username: "andy", Password: "i<3pandas"},
		NewDriver: func(config.BrowserConfig) (browser.Driver, error) {
			return driver, nil
		},
	}
}

func TestRunCheck(t *testing.T) {
	tests := []struct {
		name        string
		failOnDiffs bool
		mismatch    bool
		expectedErr error
		passed      int
		unresolved  int
	}{
		{name: "passes", passed: 1},
		{name: "diffs fail the run", mismatch: true, unresolved: 1, expectedErr: eyes.ErrDiffsFound},
		{name: "diffs fail the test when strict", failOnDiffs: true, mismatch: true, unresolved: 1, expectedErr: eyes.ErrDiffsFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN
			server := eyestest.NewServer("check-key")
			defer server.Close()
			server.Baseline(LoginTestName)
			if tt.mismatch {
				server.Mismatch("Main page")
			}
			driver := browsertest.NewFakeDriver()

			// WHEN
			summary, err := RunCheck(context.Background(), checkOptions(server, tt.failOnDiffs, driver))

			// THEN
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.passed, summary.Passed())
			assert.Equal(t, tt.unresolved, summary.Unresolved())
			assert.True(t, driver.Closed())

			sessions := server.Sessions()
			require.Len(t, sessions, 1)
			assert.Equal(t, LoginTestName, sessions[0].StartInfo.ScenarioIDOrName)
			assert.Len(t, sessions[0].Matches, 2)
		})
	}
}

func TestRunCheck_MissingAPIKey(t *testing.T) {
	_, err := RunCheck(context.Background(), CheckOptions{Eyes: &config.EyesConfig{}})
	assert.ErrorIs(t, err, eyes.ErrMissingAPIKey)
}

func TestRunCheck_BrokenPage(t *testing.T) {
	// GIVEN a page without a log in button
	server := eyestest.NewServer("check-key")
	defer server.Close()
	driver := browsertest.NewFakeDriver()
	driver.Missing = map[string]bool{`[id="log-in"]`: true}

	// WHEN
	summary, err := RunCheck(context.Background(), checkOptions(server, false, driver))

	// THEN the test fails and its session is aborted
	assert.True(t, errors.Is(err, browser.ErrElementNotFound))
	assert.Equal(t, 1, summary.Failed())
	assert.True(t, server.Sessions()[0].Aborted)
	assert.True(t, driver.Closed())
}

func TestRunCheck_LogsSummaryOnce(t *testing.T) {
	// GIVEN
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	server := eyestest.NewServer("check-key")
	defer server.Close()
	server.Baseline(LoginTestName)

	// WHEN
	_, err := RunCheck(context.Background(), checkOptions(server, false, browsertest.NewFakeDriver()))

	// THEN
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(buf.String(), "Test results: 1 passed"))
}
