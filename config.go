package summitlog

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/summitlog/summitlog/ratelimit"
)

// Config holds all configuration for a summitlog site, read from the
// environment. A .env file is loaded first when present.
type Config struct {
	SiteName        string `env:"SITE_NAME" envDefault:"Summitlog"`
	SiteURL         string `env:"SITE_URL" envDefault:"http://localhost:3000"`
	SiteDescription string `env:"SITE_DESCRIPTION"`
	SiteAuthor      string `env:"SITE_AUTHOR"`

	Addr string `env:"SUMMITLOG_ADDR" envDefault:":3000"`
	Env  string `env:"SUMMITLOG_ENV" envDefault:"development"`

	// ContentDir is the flat-file content root the static site generator
	// reads from; ImageDir is the public image root it serves.
	ContentDir string `env:"SUMMITLOG_CONTENT_DIR" envDefault:"src/content/peaks"`
	ImageDir   string `env:"SUMMITLOG_IMAGE_DIR" envDefault:"public/images"`

	AnalyticsEnabled       bool   `env:"SUMMITLOG_ANALYTICS_ENABLED" envDefault:"true"`
	AnalyticsDatabasePath  string `env:"SUMMITLOG_ANALYTICS_DB" envDefault:"data/analytics.db"`
	AnalyticsRetentionDays int    `env:"SUMMITLOG_ANALYTICS_RETENTION_DAYS" envDefault:"365"`

	CollectionCacheTTL time.Duration `env:"SUMMITLOG_CACHE_TTL" envDefault:"5m"`
}

// LoadConfig reads configuration from the environment. A missing .env file
// is not an error.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("summitlog: parse config: %w", err)
	}
	return cfg, nil
}

// IsDevelopment reports whether the app runs in development mode. Error
// responses carry operational detail only in development.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Option configures optional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes, before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory served under /public (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithRateLimiterStore replaces the in-process rate-limit counter store,
// e.g. for multi-instance deployments that share counters externally.
func WithRateLimiterStore(store ratelimit.CounterStore) Option {
	return func(a *App) {
		a.limiterStore = store
	}
}
