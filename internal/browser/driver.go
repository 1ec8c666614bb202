// Package browser drives a local browser for UI tests.
//
// Two backends implement Driver: Playwright (the default) and Rod. Both are
// configured from config.BrowserConfig; FindElement waits up to the implicit
// wait before failing with ErrElementNotFound.
package browser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/acmebank/visualtests/internal/config"
)

var (
	ErrElementNotFound = errors.New("element not found")
	ErrSessionClosed   = errors.New("browser session closed")
	ErrUnknownDriver   = errors.New("unknown browser driver")
)

// Driver is an open browser session
type Driver interface {
	Navigate(url string) error
	FindElement(by By) (Element, error)
	Screenshot(fullPage bool) ([]byte, error)
	SetViewportSize(width, height int) error
	Title() (string, error)
	CurrentURL() (string, error)
	Quit() error
}

// Element is a located page element
type Element interface {
	SendKeys(text string) error
	Click() error
	Text() (string, error)
	Screenshot() ([]byte, error)
}

// By identifies an element on the page
type By struct {
	Using string
	Value string
}

// CSS locates elements by CSS selector
func CSS(selector string) By {
	return By{Using: "css selector", Value: selector}
}

// ID locates an element by its id attribute
func ID(id string) By {
	return By{Using: "id", Value: id}
}

// Selector returns the CSS selector equivalent of b
func (b By) Selector() string {
	if b.Using == "id" {
		return fmt.Sprintf(`[id="%s"]`, strings.ReplaceAll(b.Value, `"`, `\"`))
	}
	return b.Value
}

func (b By) String() string {
	return fmt.Sprintf("By(%s: %s)", b.Using, b.Value)
}

// New opens a browser session with the backend named in cfg
func New(cfg config.BrowserConfig) (Driver, error) {
	switch cfg.Driver {
	case config.DriverPlaywright, "":
		return NewPlaywrightDriver(cfg)
	case config.DriverRod:
		return NewRodDriver(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

func notFound(by By, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrElementNotFound, by, err)
}
