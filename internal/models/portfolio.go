package models

import (
	"fmt"
	"time"
)

// Portfolio is the set of accounts and transactions shown on the dashboard
type Portfolio struct {
	Accounts     []*Account
	Transactions []*Transaction
}

// DemoPortfolio builds the fixed demo accounts and recent transactions for owner.
// Transactions are dated relative to now, newest first.
func DemoPortfolio(owner string, now time.Time) (*Portfolio, error) {
	checking, err := NewAccount(owner, "Everyday Checking", AccountKindChecking, 235000, "USD")
	if err != nil {
		return nil, err
	}
	savings, err := NewAccount(owner, "Rainy Day Savings", AccountKindSavings, 1784600, "USD")
	if err != nil {
		return nil, err
	}
	credit, err := NewAccount(owner, "Platinum Credit", AccountKindCredit, -17800, "USD")
	if err != nil {
		return nil, err
	}

	entries := []struct {
		account     *Account
		status      TransactionStatus
		description string
		category    string
		amount      int64
		daysAgo     int
	}{
		{checking, TransactionStatusComplete, "Starbucks coffee", "Restaurant / Cafe", 125000, 0},
		{checking, TransactionStatusComplete, "Stripe Payment", "Software", -250000, 1},
		{credit, TransactionStatusPending, "MailChimp Services", "Software", -320000, 2},
		{savings, TransactionStatusComplete, "Shopify product", "Shopping", 1746000, 3},
		{credit, TransactionStatusDeclined, "Ebay Marketplace", "Ecommerce", -100000, 4},
		{checking, TransactionStatusPending, "Templates Inc", "Business", 34000, 5},
	}

	portfolio := &Portfolio{Accounts: []*Account{checking, savings, credit}}
	for _, e := range entries {
		tx, err := NewTransaction(e.account.ID, e.status, e.description, e.category, e.amount, e.account.Currency, now.AddDate(0, 0, -e.daysAgo))
		if err != nil {
			return nil, fmt.Errorf("demo transaction %q: %w", e.description, err)
		}
		portfolio.Transactions = append(portfolio.Transactions, tx)
	}

	return portfolio, nil
}

// TotalBalance sums the balances of non-credit accounts
func (p *Portfolio) TotalBalance() int64 {
	var total int64
	for _, a := range p.Accounts {
		if a.Kind != AccountKindCredit {
			total += a.Balance
		}
	}
	return total
}

// CreditUsed returns the outstanding amount on credit accounts as a positive number
func (p *Portfolio) CreditUsed() int64 {
	var used int64
	for _, a := range p.Accounts {
		if a.Kind == AccountKindCredit && a.Balance < 0 {
			used -= a.Balance
		}
	}
	return used
}
