package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/acmebank/visualtests/internal/config"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

// Open opens a connection pool for the configured backend and verifies it
func Open(cfg *config.DatabaseConfig) (*sql.DB, error) {
	var (
		driverName string
		dsn        string
	)
	switch cfg.Driver {
	case config.DatabasePostgres:
		if cfg.Postgres == nil {
			return nil, fmt.Errorf("postgres settings missing")
		}
		driverName, dsn = "postgres", cfg.Postgres.ConnectionString()
	case config.DatabaseSQLite:
		driverName, dsn = "sqlite", cfg.SQLitePath
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	if cfg.Driver == config.DatabaseSQLite {
		// sqlite serializes writers; one connection avoids SQLITE_BUSY
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(10)
	}
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Connect opens the package-level connection used by the serve command
func Connect(cfg *config.DatabaseConfig) error {
	db, err := Open(cfg)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
