package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
// Values come from the environment, then an optional .env file, then defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Licensing backend
	BackendURL string

	// HTTP client
	HTTPTimeout time.Duration

	// Resilience
	MaxConcurrency int

	// Sessions
	SessionTTL   time.Duration // used when the backend token carries no exp
	JWTSecret    string        // empty: tokens are decoded, not verified
	AuthRequired bool

	// HTTP surface
	CORSOrigins []string
	RateLimit   int // requests per minute per IP; 0 disables

	// Observability
	OTLPEndpoint string
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Load reads the configuration. dir is searched for a .env file; a missing
// file is fine, a malformed one is not.
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read .env: %w", err)
		}
	}
	v.AutomaticEnv()

	cfg := &Config{
		Port:           v.GetInt("PORT"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		BackendURL:     strings.TrimRight(v.GetString("BACKEND_URL"), "/"),
		HTTPTimeout:    v.GetDuration("HTTP_TIMEOUT"),
		MaxConcurrency: v.GetInt("MAX_CONCURRENCY"),
		SessionTTL:     v.GetDuration("SESSION_TTL"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		AuthRequired:   v.GetBool("AUTH_REQUIRED"),
		CORSOrigins:    splitList(v.GetString("CORS_ORIGINS")),
		RateLimit:      v.GetInt("RATE_LIMIT"),
		OTLPEndpoint:   v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 8080)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("BACKEND_URL", "http://localhost:5000")
	v.SetDefault("HTTP_TIMEOUT", 10*time.Second)
	v.SetDefault("MAX_CONCURRENCY", 50)
	v.SetDefault("SESSION_TTL", 24*time.Hour)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("AUTH_REQUIRED", true)
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("RATE_LIMIT", 300)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
}

func (c *Config) validate() error {
	switch {
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("config: PORT out of range: %d", c.Port)
	case c.BackendURL == "":
		return fmt.Errorf("config: BACKEND_URL is required")
	case c.HTTPTimeout <= 0:
		return fmt.Errorf("config: HTTP_TIMEOUT must be positive")
	case c.SessionTTL <= 0:
		return fmt.Errorf("config: SESSION_TTL must be positive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
