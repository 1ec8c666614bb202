package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/acmebank/visualtests/internal/models"
)

// RecentTransactionLimit is how many transactions the overview shows
const RecentTransactionLimit = 6

// AccountRepository defines the interface for account persistence
type AccountRepository interface {
	ListAccounts(owner string) ([]*models.Account, error)
	ListRecentTransactions(owner string, limit int) ([]*models.Transaction, error)
	SavePortfolio(p *models.Portfolio) error
}

// AccountService builds the financial overview shown after login
type AccountService interface {
	Overview(owner string) (*Overview, error)
}

// Overview is the data behind the dashboard
type Overview struct {
	Owner        string
	Accounts     []*models.Account
	Transactions []*models.Transaction
	TotalBalance int64
	CreditUsed   int64
	Currency     string
}

// FormattedTotalBalance returns the total balance formatted with currency
func (o *Overview) FormattedTotalBalance() string {
	return models.FormatAmount(o.TotalBalance, o.Currency)
}

// FormattedCreditUsed returns the outstanding credit formatted with currency
func (o *Overview) FormattedCreditUsed() string {
	return models.FormatAmount(o.CreditUsed, o.Currency)
}

// AccountServiceImpl implements AccountService
type AccountServiceImpl struct {
	repo AccountRepository
	now  func() time.Time

	// per-owner locks make the check-then-provision step atomic
	provisioning sync.Map
}

// NewAccountService creates a new account service
func NewAccountService(repo AccountRepository) AccountService {
	return &AccountServiceImpl{
		repo: repo,
		now:  time.Now,
	}
}

// Overview returns the owner's accounts and recent transactions.
// First-time owners are provisioned with the demo portfolio.
func (s *AccountServiceImpl) Overview(owner string) (*Overview, error) {
	accounts, err := s.accounts(owner)
	if err != nil {
		return nil, err
	}

	transactions, err := s.repo.ListRecentTransactions(owner, RecentTransactionLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	portfolio := &models.Portfolio{Accounts: accounts, Transactions: transactions}
	return &Overview{
		Owner:        owner,
		Accounts:     accounts,
		Transactions: transactions,
		TotalBalance: portfolio.TotalBalance(),
		CreditUsed:   portfolio.CreditUsed(),
		Currency:     accounts[0].Currency,
	}, nil
}

// accounts lists the owner's accounts, provisioning the demo portfolio once
func (s *AccountServiceImpl) accounts(owner string) ([]*models.Account, error) {
	lock, _ := s.provisioning.LoadOrStore(owner, &sync.Mutex{})
	mu := lock.(*sync.Mutex)
	mu.Lock()
	defer mu.Unlock()

	accounts, err := s.repo.ListAccounts(owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	if len(accounts) > 0 {
		return accounts, nil
	}

	portfolio, err := models.DemoPortfolio(owner, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to build demo portfolio: %w", err)
	}
	if err := s.repo.SavePortfolio(portfolio); err != nil {
		return nil, fmt.Errorf("failed to provision accounts: %w", err)
	}
	log.Printf("Provisioned demo accounts for %s", owner)
	return portfolio.Accounts, nil
}
