package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// AccountKind represents the type of a bank account
type AccountKind string

// Account kinds
const (
	AccountKindChecking AccountKind = "checking"
	AccountKindSavings  AccountKind = "savings"
	AccountKindCredit   AccountKind = "credit"
)

// Account is a customer bank account. Balance is in minor units.
type Account struct {
	ID        string
	Owner     string
	Name      string
	Kind      AccountKind
	Balance   int64
	Currency  string
	CreatedAt time.Time
}

// Domain errors
var (
	ErrInvalidOwner       = errors.New("account owner cannot be empty")
	ErrInvalidAccountName = errors.New("account name cannot be empty")
	ErrInvalidAccountKind = errors.New("unknown account kind")
	ErrInvalidCurrency    = errors.New("currency code must be 3 characters")
)

// NewAccount creates a new account with validation
func NewAccount(owner, name string, kind AccountKind, balance int64, currency string) (*Account, error) {
	if owner == "" {
		return nil, ErrInvalidOwner
	}
	if name == "" {
		return nil, ErrInvalidAccountName
	}
	switch kind {
	case AccountKindChecking, AccountKindSavings, AccountKindCredit:
	default:
		return nil, ErrInvalidAccountKind
	}
	if len(currency) != 3 {
		return nil, ErrInvalidCurrency
	}

	return &Account{
		ID:        uuid.New().String(),
		Owner:     owner,
		Name:      name,
		Kind:      kind,
		Balance:   balance,
		Currency:  currency,
		CreatedAt: time.Now(),
	}, nil
}

// FormattedBalance returns the balance formatted with currency
func (a *Account) FormattedBalance() string {
	return FormatAmount(a.Balance, a.Currency)
}
