package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/acmebank/visualtests/internal/config"
	"github.com/acmebank/visualtests/internal/handlers"
	"github.com/acmebank/visualtests/internal/repository"
	"github.com/acmebank/visualtests/internal/services"
)

// ServerDependencies holds all dependencies needed for the server
type ServerDependencies struct {
	AccountRepo        *repository.AccountRepository
	ServerConfig       config.ServerConfig
	LoginPageHandler   http.Handler
	LoginHandler       http.Handler
	LogoutHandler      http.Handler
	DashboardHandler   http.Handler
	OverviewAPIHandler http.Handler
}

// BuildServerDependencies wires repository, services and handlers over db
func BuildServerDependencies(cfg config.ServerConfig, db *sql.DB) (ServerDependencies, error) {
	deps := ServerDependencies{ServerConfig: cfg}

	// Create account repository
	if db != nil {
		deps.AccountRepo = repository.NewAccountRepositoryWithDB(db)
	} else {
		deps.AccountRepo = repository.NewAccountRepository()
	}

	// Create service layer
	authService := services.NewAuthService(services.DefaultSessionTTL)
	accountService := services.NewAccountService(deps.AccountRepo)

	loginTemplate := filepath.Join(cfg.TemplatesDir, "login.html")
	dashboardTemplate := filepath.Join(cfg.TemplatesDir, "dashboard.html")

	loginPageHandler, err := handlers.NewLoginPageHandler(loginTemplate)
	if err != nil {
		return deps, fmt.Errorf("failed to create login page handler: %w", err)
	}
	deps.LoginPageHandler = loginPageHandler

	loginHandler, err := handlers.NewLoginHandler(loginTemplate, authService, cfg.SessionCookie)
	if err != nil {
		return deps, fmt.Errorf("failed to create login handler: %w", err)
	}
	deps.LoginHandler = loginHandler

	deps.LogoutHandler = handlers.NewLogoutHandler(authService, cfg.SessionCookie)

	dashboardHandler, err := handlers.NewDashboardHandler(dashboardTemplate, authService, accountService, cfg.SessionCookie)
	if err != nil {
		return deps, fmt.Errorf("failed to create dashboard handler: %w", err)
	}
	deps.DashboardHandler = dashboardHandler

	deps.OverviewAPIHandler = handlers.NewOverviewAPIHandler(authService, accountService, cfg.SessionCookie)

	return deps, nil
}

// RunServe starts the demo bank web server
func RunServe(deps ServerDependencies) error {
	listener, server, err := StartServer(deps)
	if err != nil {
		return err
	}
	defer listener.Close()

	return WaitForShutdown(server, nil)
}

// StartServer creates and starts the HTTP server, returning the listener and server
func StartServer(deps ServerDependencies) (net.Listener, *http.Server, error) {
	// Set up routes
	mux := http.NewServeMux()
	mux.Handle("/", deps.LoginPageHandler)
	mux.Handle("/login", deps.LoginHandler)
	mux.Handle("/logout", deps.LogoutHandler)
	mux.Handle("/app", deps.DashboardHandler)
	mux.Handle("/api/overview", deps.OverviewAPIHandler)

	// Create listener
	addr := fmt.Sprintf(":%s", deps.ServerConfig.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create listener: %w", err)
	}

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", listener.Addr().String())
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	return listener, server, nil
}

// LocalURL returns the loopback URL of a listener started by StartServer
func LocalURL(listener net.Listener) string {
	return fmt.Sprintf("http://localhost:%d", listener.Addr().(*net.TCPAddr).Port)
}

// WaitForShutdown waits for a shutdown signal and gracefully shuts down the server.
// A nil shutdown channel is replaced by one registered for SIGINT and SIGTERM.
func WaitForShutdown(server *http.Server, shutdown chan os.Signal) error {
	return WaitForShutdownWithTimeout(server, shutdown, 30*time.Second)
}

// WaitForShutdownWithTimeout allows specifying a custom shutdown timeout
func WaitForShutdownWithTimeout(server *http.Server, shutdown chan os.Signal, shutdownTimeout time.Duration) error {
	if shutdown == nil {
		shutdown = make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
		defer signal.Stop(shutdown)
	}

	sig := <-shutdown
	log.Printf("Received signal: %v, shutting down server...", sig)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		// Outstanding requests did not finish in time
		if err := server.Close(); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	log.Println("Server stopped")
	return nil
}
