package visualtest

import (
	"context"
	"fmt"

	"github.com/acmebank/visualtests/internal/browser"
	"github.com/acmebank/visualtests/internal/config"
	"github.com/acmebank/visualtests/internal/eyes"
)

// Checkpoint names
const (
	LoginPageCheckpoint = "Login page"
	MainPageCheckpoint  = "Main page"
)

// Checker takes visual checkpoints
type Checker interface {
	Check(ctx context.Context, settings *eyes.CheckSettings) (eyes.MatchResult, error)
}

// LoginFlow logs into the demo bank
type LoginFlow struct {
	SiteURL  string
	Username string
	Password string
}

// NewLoginFlow builds a LoginFlow from site configuration
func NewLoginFlow(site config.SiteConfig) LoginFlow {
	return LoginFlow{SiteURL: site.URL, Username: site.Username, Password: site.Password}
}

// Run loads the login page, checks it, signs in and checks the main page.
// The main page carries live data so it is compared by layout.
func (f LoginFlow) Run(ctx context.Context, driver browser.Driver, checker Checker) error {
	if err := driver.Navigate(f.SiteURL); err != nil {
		return err
	}

	if _, err := checker.Check(ctx, eyes.Target.Window().Fully().WithName(LoginPageCheckpoint)); err != nil {
		return err
	}

	if err := fill(driver, browser.CSS("#username"), f.Username); err != nil {
		return err
	}
	if err := fill(driver, browser.CSS("#password"), f.Password); err != nil {
		return err
	}

	button, err := driver.FindElement(browser.ID("log-in"))
	if err != nil {
		return err
	}
	if err := button.Click(); err != nil {
		return fmt.Errorf("failed to click log in: %w", err)
	}

	_, err = checker.Check(ctx, eyes.Target.Window().Fully().WithName(MainPageCheckpoint).Layout())
	return err
}

func fill(driver browser.Driver, by browser.By, text string) error {
	el, err := driver.FindElement(by)
	if err != nil {
		return err
	}
	if err := el.SendKeys(text); err != nil {
		return fmt.Errorf("failed to type into %s: %w", by, err)
	}
	return nil
}
