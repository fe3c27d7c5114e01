package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the API reads from the environment.
type Config struct {
	Port string
	Env  string

	DBDriver string // mysql | postgres | sqlite
	DBDSN    string

	JWTSecret     string
	CronSecret    string
	LoginTokenTTL time.Duration

	ResendAPIKey string
	EmailFrom    string
	SiteURL      string

	AllowedOrigins   []string
	CartPersistDelay time.Duration
	ReminderInterval time.Duration
	LogLevel         string
}

// IsProduction reports whether the API runs with production defaults.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads a .env file if one exists and then builds the Config from the
// process environment. A missing .env is not an error.
func Load() (*Config, bool, error) {
	envLoaded := godotenv.Load() == nil
	cfg, err := FromEnv(os.Getenv)
	return cfg, envLoaded, err
}

// FromEnv builds the Config from a lookup function (os.Getenv in production).
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Port:      withDefault(getenv("PORT"), "8080"),
		Env:       withDefault(getenv("APP_ENV"), "development"),
		DBDriver:  withDefault(getenv("DB_DRIVER"), "postgres"),
		DBDSN:     getenv("DB_DSN"),
		JWTSecret: getenv("JWT_SECRET"),
		// CRON_SECRET guards both reminder endpoints.
		CronSecret:   getenv("CRON_SECRET"),
		ResendAPIKey: getenv("RESEND_API_KEY"),
		EmailFrom:    withDefault(getenv("EMAIL_FROM"), "Experiencia Selecta <hola@experienciaselecta.com>"),
		SiteURL:      strings.TrimRight(withDefault(getenv("SITE_URL"), "http://localhost:5173"), "/"),
		LogLevel:     withDefault(getenv("LOG_LEVEL"), "info"),
	}

	origins := withDefault(getenv("ALLOWED_ORIGINS"), cfg.SiteURL)
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}

	var err error
	if cfg.CartPersistDelay, err = durationOr(getenv("CART_PERSIST_DELAY"), 300*time.Millisecond); err != nil {
		return nil, fmt.Errorf("CART_PERSIST_DELAY: %w", err)
	}
	if cfg.ReminderInterval, err = durationOr(getenv("REMINDER_INTERVAL"), 0); err != nil {
		return nil, fmt.Errorf("REMINDER_INTERVAL: %w", err)
	}
	if cfg.LoginTokenTTL, err = durationOr(getenv("LOGIN_TOKEN_TTL"), 72*time.Hour); err != nil {
		return nil, fmt.Errorf("LOGIN_TOKEN_TTL: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.DBDSN == "" {
		missing = append(missing, "DB_DSN")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.CronSecret == "" {
		missing = append(missing, "CRON_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return errors.New("DB_DRIVER must be one of mysql, postgres, sqlite")
	}
	return nil
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// durationOr accepts Go durations ("300ms", "1h") or a bare number of seconds.
func durationOr(v string, def time.Duration) (time.Duration, error) {
	if v == "" {
		return def, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}
