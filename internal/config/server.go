package config

// ServerConfig holds settings for the demo bank HTTP server
type ServerConfig struct {
	Port          string
	TemplatesDir  string
	SessionCookie string
}

// LoadServerConfig loads server configuration from environment variables
func LoadServerConfig(getenv func(string) string) ServerConfig {
	port := getenv("PORT")
	if port == "" {
		port = "8080" // Default to port 8080
	}

	templatesDir := getenv("TEMPLATES_DIR")
	if templatesDir == "" {
		templatesDir = "templates"
	}

	return ServerConfig{
		Port:          port,
		TemplatesDir:  templatesDir,
		SessionCookie: "acme_session",
	}
}
