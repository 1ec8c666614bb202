package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/acmebank/visualtests/internal/models"
	"github.com/acmebank/visualtests/internal/services"
)

// LoginData represents the data passed to the login template
type LoginData struct {
	Username string
	Message  string
}

// LoginPageHandler renders the login form
type LoginPageHandler struct {
	template *template.Template
}

// NewLoginPageHandler creates a new LoginPageHandler
func NewLoginPageHandler(templatePath string) (*LoginPageHandler, error) {
	tmpl, err := template.ParseFiles(templatePath)
	if err != nil {
		return nil, err
	}

	return &LoginPageHandler{template: tmpl}, nil
}

// ServeHTTP handles the GET / request
func (h *LoginPageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := LoginData{Message: getLoginMessage(r.URL.Query().Get("reason"))}
	if err := h.template.Execute(w, data); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
}

// LoginHandler authenticates the submitted form and starts a session
type LoginHandler struct {
	template   *template.Template
	auth       services.AuthService
	cookieName string
}

// NewLoginHandler creates a new LoginHandler. The template re-renders the form on failure.
func NewLoginHandler(templatePath string, auth services.AuthService, cookieName string) (*LoginHandler, error) {
	tmpl, err := template.ParseFiles(templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	return &LoginHandler{
		template:   tmpl,
		auth:       auth,
		cookieName: cookieName,
	}, nil
}

// ServeHTTP handles the POST /login request
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	creds := models.Credentials{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}

	session, err := h.auth.Login(creds)
	if errors.Is(err, models.ErrMissingCredentials) {
		w.WriteHeader(http.StatusBadRequest)
		data := LoginData{Username: creds.Username, Message: err.Error()}
		if err := h.template.Execute(w, data); err != nil {
			log.Printf("Error rendering template: %v", err)
		}
		return
	}
	if err != nil {
		log.Printf("Error logging in: %v", err)
		http.Error(w, "Failed to log in", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/app", http.StatusSeeOther)
}

// LogoutHandler ends the current session
type LogoutHandler struct {
	auth       services.AuthService
	cookieName string
}

// NewLogoutHandler creates a new LogoutHandler
func NewLogoutHandler(auth services.AuthService, cookieName string) *LogoutHandler {
	return &LogoutHandler{auth: auth, cookieName: cookieName}
}

// ServeHTTP handles the POST /logout request
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if cookie, err := r.Cookie(h.cookieName); err == nil {
		h.auth.Logout(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:    h.cookieName,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
		MaxAge:  -1,
	})
	http.Redirect(w, r, "/?reason=logged-out", http.StatusSeeOther)
}

// getLoginMessage returns a user-friendly message for the redirect reason
func getLoginMessage(reason string) string {
	switch reason {
	case "expired":
		return "Your session has expired. Please log in again."
	case "logged-out":
		return "You have been logged out."
	case "unauthenticated":
		return "Please log in to continue."
	default:
		return ""
	}
}
