package services

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/acmebank/visualtests/internal/models"
)

// DefaultSessionTTL is how long a login stays valid
const DefaultSessionTTL = 30 * time.Minute

// ErrSessionNotFound is returned for unknown, expired or ended sessions
var ErrSessionNotFound = errors.New("session not found")

// Session is an authenticated browser session
type Session struct {
	Token     string
	Username  string
	ExpiresAt time.Time
}

// AuthService handles login sessions for the demo bank
type AuthService interface {
	Login(creds models.Credentials) (*Session, error)
	Lookup(token string) (*Session, error)
	Logout(token string)
}

// InMemoryAuthService keeps sessions in a mutex-guarded map
type InMemoryAuthService struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewAuthService creates an auth service whose sessions expire after ttl
func NewAuthService(ttl time.Duration) *InMemoryAuthService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &InMemoryAuthService{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Login validates the credentials and starts a session.
// The demo bank accepts any non-empty username and password.
func (s *InMemoryAuthService) Login(creds models.Credentials) (*Session, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	session := &Session{
		Token:     uuid.New().String(),
		Username:  creds.Username,
		ExpiresAt: s.now().Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()

	log.Printf("Login succeeded for %s", creds.Username)
	return session, nil
}

// Lookup returns the live session for token
func (s *InMemoryAuthService) Lookup(token string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !s.now().Before(session.ExpiresAt) {
		delete(s.sessions, token)
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Logout ends the session; unknown tokens are ignored
func (s *InMemoryAuthService) Logout(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}
