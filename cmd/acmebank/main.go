package main

import (
	"fmt"
	"log"
	"os"

	internalcli "github.com/acmebank/visualtests/internal/cli"
	"github.com/acmebank/visualtests/internal/config"
	"github.com/acmebank/visualtests/internal/database"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

var version = "0.1.0"

// ServeCommand returns the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the ACME demo bank web server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Usage: "port to listen on (default $PORT or 8080)"},
		},
		Action: func(c *cli.Context) error {
			dbConfig, err := config.LoadDatabaseConfig(os.Getenv)
			if err != nil {
				return fmt.Errorf("invalid database configuration: %w", err)
			}

			// Connect to database
			if err := database.Connect(dbConfig); err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer database.Close()
			log.Printf("Connected to %s database successfully", dbConfig.Driver)

			// Run database migrations
			if err := database.RunMigrations(); err != nil {
				return fmt.Errorf("failed to run database migrations: %w", err)
			}

			serverConfig := config.LoadServerConfig(os.Getenv)
			if c.IsSet("port") {
				serverConfig.Port = c.String("port")
			}

			deps, err := internalcli.BuildServerDependencies(serverConfig, database.DB)
			if err != nil {
				return err
			}

			return internalcli.RunServe(deps)
		},
	}
}

// CheckCommand returns the check command
func CheckCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Run the visual login test against the demo bank",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "driver", Usage: "browser driver: playwright or rod"},
			&cli.BoolFlag{Name: "headless", Usage: "run the browser without a window"},
			&cli.StringFlag{Name: "site-url", Usage: "URL of the bank login page"},
			&cli.StringFlag{Name: "batch", Usage: "batch name shown on the dashboard"},
			&cli.BoolFlag{Name: "local", Usage: "start the demo bank in-process and test it"},
		},
		Action: func(c *cli.Context) error {
			eyesConfig, err := config.LoadEyesConfig(os.Getenv)
			if err != nil {
				return fmt.Errorf("missing required Applitools configuration: %w", err)
			}
			if c.IsSet("batch") {
				eyesConfig.BatchName = c.String("batch")
			}

			browserEnv := os.Getenv
			if c.IsSet("driver") {
				browserEnv = overrideEnv(browserEnv, "BROWSER_DRIVER", c.String("driver"))
			}
			browserConfig, err := config.LoadBrowserConfig(browserEnv)
			if err != nil {
				return fmt.Errorf("invalid browser configuration: %w", err)
			}
			if c.IsSet("headless") {
				browserConfig.Headless = c.Bool("headless")
			}

			site := config.LoadSiteConfig(os.Getenv)
			if c.IsSet("site-url") {
				site.URL = c.String("site-url")
			}

			if c.Bool("local") {
				url, stop, err := startLocalBank()
				if err != nil {
					return err
				}
				defer stop()
				site.URL = url
			}

			// the suite logs the summary itself
			_, err = internalcli.RunCheck(c.Context, internalcli.CheckOptions{
				Eyes:    eyesConfig,
				Browser: *browserConfig,
				Site:    site,
			})
			return err
		},
	}
}

// startLocalBank serves the demo bank on a free port over a private in-memory database
func startLocalBank() (string, func(), error) {
	db, err := database.Open(&config.DatabaseConfig{
		Driver:     config.DatabaseSQLite,
		SQLitePath: "file:acmebank-check?mode=memory&cache=shared",
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to open local database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return "", nil, err
	}

	serverConfig := config.LoadServerConfig(os.Getenv)
	serverConfig.Port = "0"
	deps, err := internalcli.BuildServerDependencies(serverConfig, db)
	if err != nil {
		db.Close()
		return "", nil, err
	}

	listener, server, err := internalcli.StartServer(deps)
	if err != nil {
		db.Close()
		return "", nil, err
	}

	stop := func() {
		server.Close()
		listener.Close()
		db.Close()
	}
	return internalcli.LocalURL(listener), stop, nil
}

func overrideEnv(getenv func(string) string, key, value string) func(string) string {
	return func(k string) string {
		if k == key {
			return value
		}
		return getenv(k)
	}
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	app := &cli.App{
		Name:    "acmebank",
		Usage:   "ACME demo bank and its visual login test",
		Version: version,
		Commands: []*cli.Command{
			ServeCommand(),
			CheckCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		log.Fatal(err)
	}
}
