package cocktailsgram

import (
	"strings"
	"time"

	"github.com/eringen/cocktailsgram/nav"
)

// SiteConfig holds all configuration for a CocktailsGram site.
type SiteConfig struct {
	Name string // Site name (default "CocktailsGram")
	URL  string // Canonical URL (default "http://localhost:3000")

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/cocktailsgram.db")
	MediaDir     string // Uploaded recipe images (default "data/media")
	NavConfig    string // Optional YAML menu file; empty uses nav.Default

	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	MetricsEnabled bool          // Expose Prometheus metrics at /metrics
	CacheTTL       time.Duration // Catalogue cache TTL (default 5min)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "CocktailsGram"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimSuffix(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/cocktailsgram.db"
	}
	if c.MediaDir == "" {
		c.MediaDir = "data/media"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
}

// ConfigFromEnv builds a SiteConfig from environment variables. Call
// LoadDotEnv first to pick up a .env file.
func ConfigFromEnv() SiteConfig {
	cfg := SiteConfig{
		Name:           EnvOr("SITE_NAME", ""),
		URL:            EnvOr("SITE_URL", ""),
		Addr:           EnvOr("ADDR", ""),
		DatabasePath:   EnvOr("DATABASE_PATH", ""),
		MediaDir:       EnvOr("MEDIA_DIR", ""),
		NavConfig:      EnvOr("NAV_CONFIG", ""),
		SessionSecret:  EnvOr("SESSION_SECRET", ""),
		CookieSecure:   strings.EqualFold(EnvOr("COOKIE_SECURE", ""), "true"),
		MetricsEnabled: strings.EqualFold(EnvOr("METRICS_ENABLED", "true"), "true"),
	}
	cfg.setDefaults()
	return cfg
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithMenu replaces the navigation menu.
func WithMenu(m nav.Menu) Option {
	return func(a *App) {
		a.menu = m
	}
}
