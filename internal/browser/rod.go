package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/acmebank/visualtests/internal/config"
)

// settleWindow is how long the DOM must stay unchanged after a click
const settleWindow = 300 * time.Millisecond

// RodDriver drives Chrome over the DevTools protocol with Rod
type RodDriver struct {
	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	timeout  time.Duration
	closed   bool
}

// NewRodDriver launches Chrome (downloaded by Rod if missing) and opens a blank page
func NewRodDriver(cfg config.BrowserConfig) (*RodDriver, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		Set("no-sandbox").
		Set("disable-gpu")

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch Chrome: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to Chrome: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		browser.Close()
		l.Kill()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	d := &RodDriver{
		launcher: l,
		browser:  browser,
		page:     page,
		timeout:  cfg.ImplicitWait,
	}
	if d.timeout <= 0 {
		d.timeout = config.DefaultImplicitWait
	}
	if err := d.SetViewportSize(cfg.ViewportWidth, cfg.ViewportHeight); err != nil {
		d.Quit()
		return nil, err
	}
	return d, nil
}

func (d *RodDriver) open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrSessionClosed
	}
	return nil
}

// Navigate loads url and waits for the load event
func (d *RodDriver) Navigate(url string) error {
	if err := d.open(); err != nil {
		return err
	}
	page := d.page.Timeout(d.timeout)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("failed to load %s: %w", url, err)
	}
	return nil
}

// FindElement waits up to the implicit wait for an element matching by
func (d *RodDriver) FindElement(by By) (Element, error) {
	if err := d.open(); err != nil {
		return nil, err
	}
	el, err := d.page.Timeout(d.timeout).Element(by.Selector())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, notFound(by, err)
		}
		return nil, fmt.Errorf("failed to find %s: %w", by, err)
	}
	return &rodElement{page: d.page, el: el.CancelTimeout(), timeout: d.timeout}, nil
}

// Screenshot captures the viewport, or the whole page when fullPage is set
func (d *RodDriver) Screenshot(fullPage bool) ([]byte, error) {
	if err := d.open(); err != nil {
		return nil, err
	}
	png, err := d.page.Screenshot(fullPage, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return png, nil
}

// SetViewportSize overrides the device metrics of the page
func (d *RodDriver) SetViewportSize(width, height int) error {
	if err := d.open(); err != nil {
		return err
	}
	err := d.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		return fmt.Errorf("failed to set viewport: %w", err)
	}
	return nil
}

// Title returns the document title
func (d *RodDriver) Title() (string, error) {
	if err := d.open(); err != nil {
		return "", err
	}
	info, err := d.page.Info()
	if err != nil {
		return "", err
	}
	return info.Title, nil
}

// CurrentURL returns the page URL
func (d *RodDriver) CurrentURL() (string, error) {
	if err := d.open(); err != nil {
		return "", err
	}
	info, err := d.page.Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

// Quit closes the browser and cleans up the launcher's user data dir.
// Calling Quit again is a no-op.
func (d *RodDriver) Quit() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	err := d.browser.Close()
	d.launcher.Cleanup()
	if err != nil {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}

type rodElement struct {
	page    *rod.Page
	el      *rod.Element
	timeout time.Duration
}

func (e *rodElement) SendKeys(text string) error {
	return e.el.Input(text)
}

// Click clicks the element and waits for the page to settle
func (e *rodElement) Click() error {
	if err := e.el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return err
	}
	return e.page.Timeout(e.timeout).WaitStable(settleWindow)
}

func (e *rodElement) Text() (string, error) {
	return e.el.Text()
}

func (e *rodElement) Screenshot() ([]byte, error) {
	return e.el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
}
