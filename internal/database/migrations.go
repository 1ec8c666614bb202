package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Schema creates the demo bank tables. It is valid for both PostgreSQL and SQLite.
const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id VARCHAR(36) PRIMARY KEY,
	owner VARCHAR(255) NOT NULL,
	name VARCHAR(255) NOT NULL,
	kind VARCHAR(50) NOT NULL,
	balance BIGINT NOT NULL,
	currency VARCHAR(3) NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_accounts_owner ON accounts(owner);

CREATE TABLE IF NOT EXISTS transactions (
	id VARCHAR(36) PRIMARY KEY,
	account_id VARCHAR(36) NOT NULL REFERENCES accounts(id),
	status VARCHAR(50) NOT NULL,
	description VARCHAR(255) NOT NULL,
	category VARCHAR(255) NOT NULL,
	amount BIGINT NOT NULL,
	currency VARCHAR(3) NOT NULL,
	occurred_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account_id);
CREATE INDEX IF NOT EXISTS idx_transactions_occurred ON transactions(occurred_at);
`

// Migrate applies Schema to db
func Migrate(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("database connection not initialized")
	}

	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// RunMigrations creates the necessary tables on the package-level connection
func RunMigrations() error {
	if err := Migrate(DB); err != nil {
		return err
	}

	log.Println("Database migrations completed successfully")
	return nil
}
