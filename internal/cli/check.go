package cli

import (
	"context"
	"errors"

	"github.com/acmebank/visualtests/internal/config"
	"github.com/acmebank/visualtests/internal/eyes"
	"github.com/acmebank/visualtests/internal/visualtest"
)

// LoginTestName names the login test on the dashboard
const LoginTestName = "should log into a bank account"

// CheckOptions configure a visual check run
type CheckOptions struct {
	Eyes      *config.EyesConfig
	Browser   config.BrowserConfig
	Site      config.SiteConfig
	NewDriver visualtest.DriverFactory
}

// RunCheck runs the login test as a one-test suite and returns its summary
func RunCheck(ctx context.Context, opts CheckOptions) (eyes.TestResultsSummary, error) {
	suite, err := visualtest.NewSuite(visualtest.Options{
		Eyes:      opts.Eyes,
		Browser:   opts.Browser,
		NewDriver: opts.NewDriver,
	})
	if err != nil {
		return eyes.TestResultsSummary{}, err
	}

	flow := visualtest.NewLoginFlow(opts.Site)
	runErr := suite.Run(ctx, LoginTestName, func(ctx context.Context, sess *visualtest.Session) error {
		return flow.Run(ctx, sess.Driver, sess.Eyes)
	})

	summary, err := suite.Finish(ctx)
	return summary, errors.Join(runErr, err)
}
