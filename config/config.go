package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"folio/api"
	"folio/session"

	"github.com/joho/godotenv"
)

// Known backend origins, selected by FOLIO_ENV when FOLIO_API_URL is unset.
const (
	DevelopmentOrigin = "http://localhost:4000"
	ProductionOrigin  = "https://portfolio-backend-galc.onrender.com"
)

type Config struct {
	API     APIConfig
	Session SessionConfig
	App     AppConfig
	DevAPI  DevAPIConfig
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type SessionConfig struct {
	TokenPath string
}

type AppConfig struct {
	Environment string
	LogLevel    string
}

type DevAPIConfig struct {
	Port string
}

// Overrides are command-line values that take precedence over the
// environment. Empty fields are ignored.
type Overrides struct {
	APIURL string
}

// Load reads .env files (the default ".env" when none are given) and then
// the environment. Missing files are not an error.
func Load(files ...string) (*Config, error) {
	return LoadWith(Overrides{}, files...)
}

// LoadWith is Load with overrides applied before validation.
func LoadWith(o Overrides, files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	env := getEnv("FOLIO_ENV", "production")

	apiURL := os.Getenv("FOLIO_API_URL")
	if o.APIURL != "" {
		apiURL = o.APIURL
	}

	timeout, err := getEnvAsDuration("FOLIO_TIMEOUT", api.DefaultTimeout)
	if err != nil {
		return nil, err
	}

	tokenPath := os.Getenv("FOLIO_TOKEN_PATH")
	if tokenPath == "" {
		if tokenPath, err = session.DefaultTokenPath(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		API: APIConfig{
			BaseURL: ResolveBaseURL(apiURL, env),
			Timeout: timeout,
		},
		Session: SessionConfig{
			TokenPath: tokenPath,
		},
		App: AppConfig{
			Environment: env,
			LogLevel:    getEnv("FOLIO_LOG_LEVEL", "info"),
		},
		DevAPI: DevAPIConfig{
			Port: getEnv("PORT", "4000"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ResolveBaseURL picks the backend origin. An explicit URL always wins;
// otherwise development talks to the local backend and every other
// environment to the deployed one.
func ResolveBaseURL(explicit, env string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit
	}
	if strings.EqualFold(strings.TrimSpace(env), "development") {
		return DevelopmentOrigin
	}
	return ProductionOrigin
}

func (c *Config) Validate() error {
	if _, err := api.NewEndpoints(c.API.BaseURL); err != nil {
		return fmt.Errorf("FOLIO_API_URL: %w", err)
	}

	if c.API.Timeout <= 0 {
		return fmt.Errorf("FOLIO_TIMEOUT must be positive")
	}

	if c.Session.TokenPath == "" {
		return fmt.Errorf("FOLIO_TOKEN_PATH is required")
	}

	switch c.App.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("FOLIO_LOG_LEVEL %q is not one of debug, info, warn, error", c.App.LogLevel)
	}

	if c.DevAPI.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	return nil
}

// Endpoints builds the URL mapping for the configured origin.
func (c *Config) Endpoints() (*api.Endpoints, error) {
	return api.NewEndpoints(c.API.BaseURL)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}

	return value, nil
}
