package browser

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/acmebank/visualtests/internal/config"
)

// PlaywrightDriver drives Chromium through Playwright
type PlaywrightDriver struct {
	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
	timeout time.Duration
	closed  bool
}

// NewPlaywrightDriver starts Playwright and opens a Chromium page.
// Browsers must already be installed:
//
//	go run github.com/playwright-community/playwright-go/cmd/playwright install chromium
func NewPlaywrightDriver(cfg config.BrowserConfig) (*PlaywrightDriver, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch chromium: %w", err)
	}

	page, err := browser.NewPage(playwright.BrowserNewPageOptions{
		Viewport: &playwright.Size{Width: cfg.ViewportWidth, Height: cfg.ViewportHeight},
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	timeout := cfg.ImplicitWait
	if timeout <= 0 {
		timeout = config.DefaultImplicitWait
	}
	page.SetDefaultTimeout(float64(timeout.Milliseconds()))

	return &PlaywrightDriver{
		pw:      pw,
		browser: browser,
		page:    page,
		timeout: timeout,
	}, nil
}

func (d *PlaywrightDriver) open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrSessionClosed
	}
	return nil
}

// Navigate loads url and waits for the load event
func (d *PlaywrightDriver) Navigate(url string) error {
	if err := d.open(); err != nil {
		return err
	}
	if _, err := d.page.Goto(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// FindElement waits for an element matching by to be attached
func (d *PlaywrightDriver) FindElement(by By) (Element, error) {
	if err := d.open(); err != nil {
		return nil, err
	}
	locator := d.page.Locator(by.Selector()).First()
	err := locator.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(float64(d.timeout.Milliseconds())),
	})
	if err != nil {
		if errors.Is(err, playwright.ErrTimeout) {
			return nil, notFound(by, err)
		}
		return nil, fmt.Errorf("failed to find %s: %w", by, err)
	}
	return &playwrightElement{page: d.page, locator: locator}, nil
}

// Screenshot captures the viewport, or the whole page when fullPage is set
func (d *PlaywrightDriver) Screenshot(fullPage bool) ([]byte, error) {
	if err := d.open(); err != nil {
		return nil, err
	}
	png, err := d.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(fullPage),
		Type:     playwright.ScreenshotTypePng,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return png, nil
}

// SetViewportSize resizes the page viewport
func (d *PlaywrightDriver) SetViewportSize(width, height int) error {
	if err := d.open(); err != nil {
		return err
	}
	return d.page.SetViewportSize(width, height)
}

// Title returns the document title
func (d *PlaywrightDriver) Title() (string, error) {
	if err := d.open(); err != nil {
		return "", err
	}
	return d.page.Title()
}

// CurrentURL returns the page URL
func (d *PlaywrightDriver) CurrentURL() (string, error) {
	if err := d.open(); err != nil {
		return "", err
	}
	return d.page.URL(), nil
}

// Quit closes the page, the browser and the Playwright driver process.
// Calling Quit again is a no-op.
func (d *PlaywrightDriver) Quit() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	var errs []error
	if err := d.page.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close page: %w", err))
	}
	if err := d.browser.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close browser: %w", err))
	}
	if err := d.pw.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stop playwright: %w", err))
	}
	return errors.Join(errs...)
}

type playwrightElement struct {
	page    playwright.Page
	locator playwright.Locator
}

func (e *playwrightElement) SendKeys(text string) error {
	return e.locator.PressSequentially(text)
}

// Click clicks the element and waits for any navigation it starts to load
func (e *playwrightElement) Click() error {
	if err := e.locator.Click(); err != nil {
		return err
	}
	return e.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateLoad,
	})
}

func (e *playwrightElement) Text() (string, error) {
	return e.locator.TextContent()
}

func (e *playwrightElement) Screenshot() ([]byte, error) {
	return e.locator.Screenshot(playwright.LocatorScreenshotOptions{
		Type: playwright.ScreenshotTypePng,
	})
}
