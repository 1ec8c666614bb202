package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/acmebank/visualtests/internal/database"
	"github.com/acmebank/visualtests/internal/models"
)

// ErrAccountNotFound is returned when no account matches the lookup
var ErrAccountNotFound = errors.New("account not found")

// AccountRepository handles database operations for accounts and transactions
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new account repository on the package-level connection
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		db: database.DB,
	}
}

// NewAccountRepositoryWithDB creates a new account repository with a specific database connection
func NewAccountRepositoryWithDB(db *sql.DB) *AccountRepository {
	return &AccountRepository{
		db: db,
	}
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

const insertAccount = `
	INSERT INTO accounts (id, owner, name, kind, balance, currency, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
`

const insertTransaction = `
	INSERT INTO transactions (id, account_id, status, description, category, amount, currency, occurred_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

func createAccount(e execer, account *models.Account) error {
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}
	_, err := e.Exec(insertAccount,
		account.ID,
		account.Owner,
		account.Name,
		string(account.Kind),
		account.Balance,
		account.Currency,
		account.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func createTransaction(e execer, tx *models.Transaction) error {
	_, err := e.Exec(insertTransaction,
		tx.ID,
		tx.AccountID,
		string(tx.Status),
		tx.Description,
		tx.Category,
		tx.Amount,
		tx.Currency,
		tx.OccurredAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// CreateAccount inserts a new account
func (r *AccountRepository) CreateAccount(account *models.Account) error {
	return createAccount(r.db, account)
}

// CreateTransaction inserts a new transaction
func (r *AccountRepository) CreateTransaction(tx *models.Transaction) error {
	return createTransaction(r.db, tx)
}

// SavePortfolio inserts every account and transaction of p atomically
func (r *AccountRepository) SavePortfolio(p *models.Portfolio) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, account := range p.Accounts {
		if err := createAccount(tx, account); err != nil {
			return err
		}
	}
	for _, t := range p.Transactions {
		if err := createTransaction(tx, t); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit portfolio: %w", err)
	}
	return nil
}

// GetAccount retrieves an account by its ID
func (r *AccountRepository) GetAccount(id string) (*models.Account, error) {
	query := `
		SELECT id, owner, name, kind, balance, currency, created_at
		FROM accounts
		WHERE id = $1
	`

	account := &models.Account{}
	var kind string
	err := r.db.QueryRow(query, id).Scan(
		&account.ID,
		&account.Owner,
		&account.Name,
		&kind,
		&account.Balance,
		&account.Currency,
		&account.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	account.Kind = models.AccountKind(kind)

	return account, nil
}

// ListAccounts returns the accounts of owner in creation order
func (r *AccountRepository) ListAccounts(owner string) ([]*models.Account, error) {
	query := `
		SELECT id, owner, name, kind, balance, currency, created_at
		FROM accounts
		WHERE owner = $1
		ORDER BY created_at, name
	`

	rows, err := r.db.Query(query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account := &models.Account{}
		var kind string
		if err := rows.Scan(
			&account.ID,
			&account.Owner,
			&account.Name,
			&kind,
			&account.Balance,
			&account.Currency,
			&account.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		account.Kind = models.AccountKind(kind)
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	return accounts, nil
}

// ListRecentTransactions returns up to limit transactions across owner's accounts, newest first
func (r *AccountRepository) ListRecentTransactions(owner string, limit int) ([]*models.Transaction, error) {
	query := `
		SELECT t.id, t.account_id, t.status, t.description, t.category, t.amount, t.currency, t.occurred_at
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE a.owner = $1
		ORDER BY t.occurred_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(query, owner, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		tx := &models.Transaction{}
		var status string
		if err := rows.Scan(
			&tx.ID,
			&tx.AccountID,
			&status,
			&tx.Description,
			&tx.Category,
			&tx.Amount,
			&tx.Currency,
			&tx.OccurredAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		tx.Status = models.TransactionStatus(status)
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return transactions, nil
}
