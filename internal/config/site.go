package config

// Defaults for the demo bank the login flow runs against
const (
	DefaultSiteURL  = "https://demo.applitools.com"
	DefaultUsername = "andy"
	DefaultPassword = "i<3pandas"
)

// SiteConfig holds the target site and the credentials typed into it
type SiteConfig struct {
	URL      string
	Username string
	Password string
}

// LoadSiteConfig loads the target site configuration from environment variables
func LoadSiteConfig(getenv func(string) string) SiteConfig {
	config := SiteConfig{
		URL:      getenv("ACME_SITE_URL"),
		Username: getenv("ACME_USERNAME"),
		Password: getenv("ACME_PASSWORD"),
	}

	if config.URL == "" {
		config.URL = DefaultSiteURL
	}
	if config.Username == "" {
		config.Username = DefaultUsername
	}
	if config.Password == "" {
		config.Password = DefaultPassword
	}

	return config
}
