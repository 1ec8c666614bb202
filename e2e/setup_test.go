//go:build e2e

package e2e

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/joho/godotenv"

	internalcli "github.com/acmebank/visualtests/internal/cli"
	"github.com/acmebank/visualtests/internal/config"
	"github.com/acmebank/visualtests/internal/database"
	"github.com/acmebank/visualtests/internal/visualtest"
)

var (
	suite         *visualtest.Suite
	site          config.SiteConfig
	browserConfig config.BrowserConfig
)

// TestMain sets up the suite once, serves the demo bank when no site is
// configured and reports the collected visual results at the end
func TestMain(m *testing.M) {
	if err := godotenv.Load("../.env"); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.LoadBrowserConfig(os.Getenv)
	if err != nil {
		log.Fatalf("Invalid browser configuration: %v", err)
	}
	browserConfig = *cfg

	site = config.LoadSiteConfig(os.Getenv)
	stopBank := func() {}
	if os.Getenv("ACME_SITE_URL") == "" {
		site.URL, stopBank = startBank()
	}

	if eyesConfig, err := config.LoadEyesConfig(os.Getenv); err != nil {
		log.Printf("Visual tests disabled: %v", err)
	} else if suite, err = visualtest.NewSuite(visualtest.Options{Eyes: eyesConfig, Browser: browserConfig}); err != nil {
		log.Fatalf("Failed to set up visual suite: %v", err)
	}

	code := m.Run()

	if suite != nil {
		if _, err := suite.Finish(context.Background()); err != nil {
			log.Printf("Visual results: %v", err)
			if code == 0 {
				code = 1
			}
		}
	}

	stopBank()
	os.Exit(code)
}

func startBank() (string, func()) {
	db, err := database.Open(&config.DatabaseConfig{
		Driver:     config.DatabaseSQLite,
		SQLitePath: "file:acmebank-e2e?mode=memory&cache=shared",
	})
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	serverConfig := config.ServerConfig{Port: "0", TemplatesDir: "../templates", SessionCookie: "acme_session"}
	deps, err := internalcli.BuildServerDependencies(serverConfig, db)
	if err != nil {
		log.Fatalf("Failed to build server: %v", err)
	}
	listener, server, err := internalcli.StartServer(deps)
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	return internalcli.LocalURL(listener), func() {
		server.Close()
		listener.Close()
		db.Close()
	}
}
