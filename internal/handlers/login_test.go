package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acmebank/visualtests/internal/models"
	"github.com/acmebank/visualtests/internal/services"
)

func TestLoginPageHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		target         string
		expectedStatus int
		checkContent   []string
	}{
		{
			name:           "renders form",
			method:         http.MethodGet,
			target:         "/",
			expectedStatus: http.StatusOK,
			checkContent:   []string{`id="username"`, `id="password"`, `id="log-in"`, "Login Form"},
		},
		{
			name:           "expired reason",
			method:         http.MethodGet,
			target:         "/?reason=expired",
			expectedStatus: http.StatusOK,
			checkContent:   []string{"Your session has expired"},
		},
		{
			name:           "logged out reason",
			method:         http.MethodGet,
			target:         "/?reason=logged-out",
			expectedStatus: http.StatusOK,
			checkContent:   []string{"You have been logged out."},
		},
		{
			name:           "unknown path",
			method:         http.MethodGet,
			target:         "/favicon.ico",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "method not allowed - POST",
			method:         http.MethodPost,
			target:         "/",
			expectedStatus: http.StatusMethodNotAllowed,
		},
	}

	handler, err := NewLoginPageHandler(loginTemplate)
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			body := w.Body.String()
			for _, content := range tt.checkContent {
				assert.Contains(t, body, content)
			}
		})
	}
}

func TestNewLoginPageHandler_InvalidTemplate(t *testing.T) {
	handler, err := NewLoginPageHandler("/invalid/path/to/template.html")
	assert.Error(t, err)
	assert.Nil(t, handler, "expected nil handler when error occurs")
}

func postForm(handler http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestLoginHandler_Success(t *testing.T) {
	var gotCreds models.Credentials
	auth := &MockAuthService{
		LoginFunc: func(creds models.Credentials) (*services.Session, error) {
			gotCreds = creds
			return &services.Session{Token: "token-abc", Username: creds.Username}, nil
		},
	}

	handler, err := NewLoginHandler(loginTemplate, auth, testCookie)
	require.NoError(t, err)

	w := postForm(handler, "/login", url.Values{"username": {"andy"}, "password": {"i<3pandas"}})

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/app", w.Header().Get("Location"))
	assert.Equal(t, models.Credentials{Username: "andy", Password: "i<3pandas"}, gotCreds)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, testCookie, cookies[0].Name)
	assert.Equal(t, "token-abc", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly, "session cookie should be HttpOnly")
}

func TestLoginHandler_MissingCredentials(t *testing.T) {
	auth := &MockAuthService{
		LoginFunc: func(creds models.Credentials) (*services.Session, error) {
			return nil, models.ErrMissingCredentials
		},
	}

	handler, err := NewLoginHandler(loginTemplate, auth, testCookie)
	require.NoError(t, err)

	w := postForm(handler, "/login", url.Values{"username": {"andy"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Both Username and Password must be present")
	assert.Contains(t, body, `value="andy"`, "expected username to be kept in the form")
	assert.Empty(t, w.Result().Cookies(), "no cookie expected on failed login")
}

func TestLoginHandler_ServiceError(t *testing.T) {
	auth := &MockAuthService{
		LoginFunc: func(creds models.Credentials) (*services.Session, error) {
			return nil, errors.New("session store down")
		},
	}

	handler, err := NewLoginHandler(loginTemplate, auth, testCookie)
	require.NoError(t, err)

	w := postForm(handler, "/login", url.Values{"username": {"andy"}, "password": {"pw"}})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLoginHandler_MethodNotAllowed(t *testing.T) {
	handler, err := NewLoginHandler(loginTemplate, &MockAuthService{}, testCookie)
	require.NoError(t, err)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		req := httptest.NewRequest(method, "/login", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
	}
}

func TestLogoutHandler_ServeHTTP(t *testing.T) {
	var loggedOut string
	auth := &MockAuthService{
		LogoutFunc: func(token string) { loggedOut = token },
	}
	handler := NewLogoutHandler(auth, testCookie)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "token-xyz"})
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/?reason=logged-out", w.Header().Get("Location"))
	assert.Equal(t, "token-xyz", loggedOut)

	req = httptest.NewRequest(http.MethodGet, "/logout", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestGetLoginMessage(t *testing.T) {
	tests := map[string]string{
		"expired":         "Your session has expired. Please log in again.",
		"logged-out":      "You have been logged out.",
		"unauthenticated": "Please log in to continue.",
		"":                "",
		"other":           "",
	}
	for reason, want := range tests {
		assert.Equal(t, want, getLoginMessage(reason), "reason %q", reason)
	}
}
