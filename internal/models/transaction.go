package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TransactionStatus represents the settlement state of a transaction
type TransactionStatus string

// Transaction statuses
const (
	TransactionStatusComplete TransactionStatus = "complete"
	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusDeclined TransactionStatus = "declined"
)

// Transaction is a single account movement. Amount is signed, in minor units.
type Transaction struct {
	ID          string
	AccountID   string
	Status      TransactionStatus
	Description string
	Category    string
	Amount      int64
	Currency    string
	OccurredAt  time.Time
}

// Domain errors
var (
	ErrInvalidAccountID         = errors.New("transaction account id cannot be empty")
	ErrInvalidDescription       = errors.New("transaction description cannot be empty")
	ErrInvalidTransactionStatus = errors.New("unknown transaction status")
	ErrZeroAmount               = errors.New("transaction amount cannot be zero")
)

// NewTransaction creates a new transaction with validation
func NewTransaction(accountID string, status TransactionStatus, description, category string, amount int64, currency string, occurredAt time.Time) (*Transaction, error) {
	if accountID == "" {
		return nil, ErrInvalidAccountID
	}
	if description == "" {
		return nil, ErrInvalidDescription
	}
	switch status {
	case TransactionStatusComplete, TransactionStatusPending, TransactionStatusDeclined:
	default:
		return nil, ErrInvalidTransactionStatus
	}
	if amount == 0 {
		return nil, ErrZeroAmount
	}
	if len(currency) != 3 {
		return nil, ErrInvalidCurrency
	}

	return &Transaction{
		ID:          uuid.New().String(),
		AccountID:   accountID,
		Status:      status,
		Description: description,
		Category:    category,
		Amount:      amount,
		Currency:    currency,
		OccurredAt:  occurredAt,
	}, nil
}

// IsCredit returns true if money came into the account
func (t *Transaction) IsCredit() bool {
	return t.Amount > 0
}

// FormattedAmount returns the signed amount, e.g. "+ 1,250.00 USD"
func (t *Transaction) FormattedAmount() string {
	return FormatSignedAmount(t.Amount, t.Currency)
}
