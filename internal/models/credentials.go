package models

import (
	"errors"
	"strings"
)

// ErrMissingCredentials is returned when either login field is blank.
// Its text is shown verbatim on the login page.
var ErrMissingCredentials = errors.New("Both Username and Password must be present")

// Credentials are the values typed into the login form
type Credentials struct {
	Username string
	Password string
}

// Validate checks that both fields are present
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Username) == "" || c.Password == "" {
		return ErrMissingCredentials
	}
	return nil
}
