package config

import "fmt"

// Supported DATABASE_DRIVER values
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

// DefaultSQLitePath is a named in-memory database shared by every pool connection
const DefaultSQLitePath = "file:acmebank?mode=memory&cache=shared"

// DatabaseConfig selects the storage backend of the demo bank
type DatabaseConfig struct {
	Driver     string
	SQLitePath string
	Postgres   *PostgresConfig
}

// LoadDatabaseConfig loads database configuration from environment variables
func LoadDatabaseConfig(getenv func(string) string) (*DatabaseConfig, error) {
	config := &DatabaseConfig{
		Driver:     getenv("DATABASE_DRIVER"),
		SQLitePath: getenv("SQLITE_PATH"),
	}
	if config.Driver == "" {
		config.Driver = DatabaseSQLite
	}

	switch config.Driver {
	case DatabaseSQLite:
		if config.SQLitePath == "" {
			config.SQLitePath = DefaultSQLitePath
		}
	case DatabasePostgres:
		pg, err := LoadPostgresConfig(getenv)
		if err != nil {
			return nil, fmt.Errorf("failed to load postgres config: %w", err)
		}
		config.Postgres = pg
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", config.Driver)
	}

	return config, nil
}
