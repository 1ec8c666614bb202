// Package browsertest provides an in-memory browser.Driver for unit tests.
package browsertest

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"

	"github.com/acmebank/visualtests/internal/browser"
)

// Action kinds recorded by FakeDriver
const (
	ActionNavigate   = "navigate"
	ActionSendKeys   = "sendKeys"
	ActionClick      = "click"
	ActionScreenshot = "screenshot"
	ActionViewport   = "viewport"
	ActionQuit       = "quit"
)

// Action is one recorded driver interaction
type Action struct {
	Kind   string
	Target string
	Value  string
}

// FakeDriver records every interaction instead of driving a browser.
// Elements are found unless their selector is listed in Missing.
type FakeDriver struct {
	mu      sync.Mutex
	actions []Action
	url     string
	closed  bool

	Missing   map[string]bool
	PageTitle string
	QuitErr   error
	QuitCalls int
}

// NewFakeDriver creates a FakeDriver on about:blank
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{url: "about:blank", PageTitle: "ACME demo app"}
}

func (d *FakeDriver) record(a Action) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return browser.ErrSessionClosed
	}
	d.actions = append(d.actions, a)
	return nil
}

// Actions returns a copy of the recorded interactions
func (d *FakeDriver) Actions() []Action {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Action, len(d.actions))
	copy(out, d.actions)
	return out
}

// Closed reports whether Quit has been called
func (d *FakeDriver) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *FakeDriver) Navigate(url string) error {
	if err := d.record(Action{Kind: ActionNavigate, Value: url}); err != nil {
		return err
	}
	d.mu.Lock()
	d.url = url
	d.mu.Unlock()
	return nil
}

func (d *FakeDriver) FindElement(by browser.By) (browser.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, browser.ErrSessionClosed
	}
	if d.Missing[by.Selector()] {
		return nil, fmt.Errorf("%w: %s", browser.ErrElementNotFound, by)
	}
	return &fakeElement{driver: d, selector: by.Selector()}, nil
}

func (d *FakeDriver) Screenshot(fullPage bool) ([]byte, error) {
	if err := d.record(Action{Kind: ActionScreenshot, Value: fmt.Sprint(fullPage)}); err != nil {
		return nil, err
	}
	return PNG(), nil
}

func (d *FakeDriver) SetViewportSize(width, height int) error {
	return d.record(Action{Kind: ActionViewport, Value: fmt.Sprintf("%dx%d", width, height)})
}

func (d *FakeDriver) Title() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return "", browser.ErrSessionClosed
	}
	return d.PageTitle, nil
}

func (d *FakeDriver) CurrentURL() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return "", browser.ErrSessionClosed
	}
	return d.url, nil
}

func (d *FakeDriver) Quit() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.QuitCalls++
	if d.closed {
		return nil
	}
	d.closed = true
	d.actions = append(d.actions, Action{Kind: ActionQuit})
	return d.QuitErr
}

type fakeElement struct {
	driver   *FakeDriver
	selector string
}

func (e *fakeElement) SendKeys(text string) error {
	return e.driver.record(Action{Kind: ActionSendKeys, Target: e.selector, Value: text})
}

func (e *fakeElement) Click() error {
	return e.driver.record(Action{Kind: ActionClick, Target: e.selector})
}

func (e *fakeElement) Text() (string, error) {
	return e.selector, nil
}

func (e *fakeElement) Screenshot() ([]byte, error) {
	if err := e.driver.record(Action{Kind: ActionScreenshot, Target: e.selector}); err != nil {
		return nil, err
	}
	return PNG(), nil
}

var (
	pngOnce  sync.Once
	pngBytes []byte
)

// PNG returns a small solid-colour PNG image
func PNG() []byte {
	pngOnce.Do(func() {
		img := image.NewRGBA(image.Rect(0, 0, 4, 4))
		for x := 0; x < 4; x++ {
			for y := 0; y < 4; y++ {
				img.Set(x, y, color.RGBA{R: 0x2b, G: 0x6c, B: 0xb0, A: 0xff})
			}
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			panic(err)
		}
		pngBytes = buf.Bytes()
	})
	return pngBytes
}
