package browsertest

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acmebank/visualtests/internal/browser"
)

func TestFakeDriver_RecordsInteractions(t *testing.T) {
	d := NewFakeDriver()

	require.NoError(t, d.Navigate("http://bank.test/"))
	el, err := d.FindElement(browser.CSS("#username"))
	require.NoError(t, err)
	require.NoError(t, el.SendKeys("andy"))
	button, err := d.FindElement(browser.ID("log-in"))
	require.NoError(t, err)
	require.NoError(t, button.Click())

	assert.Equal(t, []Action{
		{Kind: ActionNavigate, Value: "http://bank.test/"},
		{Kind: ActionSendKeys, Target: "#username", Value: "andy"},
		{Kind: ActionClick, Target: `[id="log-in"]`},
	}, d.Actions())

	url, err := d.CurrentURL()
	require.NoError(t, err)
	assert.Equal(t, "http://bank.test/", url)
}

func TestFakeDriver_Missing(t *testing.T) {
	d := NewFakeDriver()
	d.Missing = map[string]bool{"#password": true}

	_, err := d.FindElement(browser.CSS("#password"))
	assert.ErrorIs(t, err, browser.ErrElementNotFound)
}

func TestFakeDriver_QuitClosesSession(t *testing.T) {
	d := NewFakeDriver()

	require.NoError(t, d.Quit())
	require.NoError(t, d.Quit())

	assert.True(t, d.Closed())
	assert.Equal(t, 2, d.QuitCalls)
	assert.ErrorIs(t, d.Navigate("http://bank.test/"), browser.ErrSessionClosed)
	_, err := d.Screenshot(true)
	assert.ErrorIs(t, err, browser.ErrSessionClosed)
}

func TestPNG_Decodes(t *testing.T) {
	img, err := png.Decode(bytes.NewReader(PNG()))
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
}
