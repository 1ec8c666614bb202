package handlers

import (
	"time"

	"github.com/acmebank/visualtests/internal/models"
	"github.com/acmebank/visualtests/internal/services"
)

const (
	loginTemplate     = "../../templates/login.html"
	dashboardTemplate = "../../templates/dashboard.html"
	testCookie        = "acme_session"
)

// MockAuthService is a mock implementation of AuthService for testing
type MockAuthService struct {
	LoginFunc  func(models.Credentials) (*services.Session, error)
	LookupFunc func(string) (*services.Session, error)
	LogoutFunc func(string)
}

func (m *MockAuthService) Login(creds models.Credentials) (*services.Session, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(creds)
	}
	return &services.Session{Token: "token-123", Username: creds.Username, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (m *MockAuthService) Lookup(token string) (*services.Session, error) {
	if m.LookupFunc != nil {
		return m.LookupFunc(token)
	}
	return nil, services.ErrSessionNotFound
}

func (m *MockAuthService) Logout(token string) {
	if m.LogoutFunc != nil {
		m.LogoutFunc(token)
	}
}

// MockAccountService is a mock implementation of AccountService for testing
type MockAccountService struct {
	OverviewFunc func(string) (*services.Overview, error)
}

func (m *MockAccountService) Overview(owner string) (*services.Overview, error) {
	if m.OverviewFunc != nil {
		return m.OverviewFunc(owner)
	}
	return testOverview(owner), nil
}

func testOverview(owner string) *services.Overview {
	occurred := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	return &services.Overview{
		Owner: owner,
		Accounts: []*models.Account{
			{ID: "a1", Owner: owner, Name: "Everyday Checking", Kind: models.AccountKindChecking, Balance: 235000, Currency: "USD"},
		},
		Transactions: []*models.Transaction{
			{ID: "t1", AccountID: "a1", Status: models.TransactionStatusComplete, Description: "Starbucks coffee", Category: "Restaurant / Cafe", Amount: 125000, Currency: "USD", OccurredAt: occurred},
			{ID: "t2", AccountID: "a1", Status: models.TransactionStatusDeclined, Description: "Ebay Marketplace", Category: "Ecommerce", Amount: -100000, Currency: "USD", OccurredAt: occurred},
		},
		TotalBalance: 235000,
		Currency:     "USD",
	}
}

// liveSession returns a LookupFunc that accepts only token
func liveSession(token, username string) func(string) (*services.Session, error) {
	return func(got string) (*services.Session, error) {
		if got != token {
			return nil, services.ErrSessionNotFound
		}
		return &services.Session{Token: token, Username: username, ExpiresAt: time.Now().Add(time.Hour)}, nil
	}
}
