// Package config handles configuration loading from environment variables,
// optional .env files and mounted Kubernetes secrets.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/pyro2927/ha-generac/internal/generac"
)

// Config holds all configuration for the generac exporter.
type Config struct {
	// Authentication material. Precedence when several are set:
	// auth token, then cookies (with username/password as fallback), then
	// username/password.
	Username  string
	Password  string
	Cookies   string
	AuthToken string

	// Server configuration
	ListenAddr     string
	RequestTimeout time.Duration

	// Logging configuration
	LogLevel  string // debug, info, warn, error
	LogFormat string // text, json
}

// LoadConfig loads configuration from a .env file (if present), Kubernetes
// secrets and environment variables, in increasing precedence for overrides.
func LoadConfig() (*Config, error) {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:     ":9816",
		RequestTimeout: 2 * time.Minute,
		LogLevel:       "info",
		LogFormat:      "text",
	}

	// Mounted secrets first, environment variables as fallback.
	secrets, err := tryLoadFromSecrets()
	if err != nil {
		return nil, err
	}
	cfg.Username = firstNonEmpty(secrets.Username, os.Getenv("GENERAC_USERNAME"))
	cfg.Password = firstNonEmpty(secrets.Password, os.Getenv("GENERAC_PASSWORD"))
	cfg.Cookies = firstNonEmpty(secrets.Cookies, os.Getenv("GENERAC_COOKIES"))
	cfg.AuthToken = firstNonEmpty(secrets.AuthToken, os.Getenv("GENERAC_AUTH_TOKEN"))

	if addr := os.Getenv("GENERAC_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if level := os.Getenv("GENERAC_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if format := os.Getenv("GENERAC_LOG_FORMAT"); format != "" {
		cfg.LogFormat = format
	}
	if timeout := os.Getenv("GENERAC_REQUEST_TIMEOUT"); timeout != "" {
		if seconds, err := strconv.Atoi(timeout); err == nil && seconds > 0 {
			cfg.RequestTimeout = time.Duration(seconds) * time.Second
		}
	}

	return cfg, nil
}

// Validate checks that a usable credential and sane timeouts are configured.
func (c *Config) Validate() error {
	if c.AuthToken == "" && c.Cookies == "" && (c.Username == "" || c.Password == "") {
		return errors.New("credentials required: set GENERAC_AUTH_TOKEN, GENERAC_COOKIES, or GENERAC_USERNAME and GENERAC_PASSWORD (or mount a K8s secret)")
	}
	if c.RequestTimeout < 10*time.Second {
		return errors.New("request timeout must be at least 10 seconds")
	}
	return nil
}

// Credential builds the client credential for the configured auth material.
func (c *Config) Credential() generac.Credential {
	if c.AuthToken != "" {
		return generac.BearerToken{Token: c.AuthToken}
	}
	if c.Cookies != "" {
		cred := generac.CookieJar{Cookies: c.Cookies}
		if c.Username != "" && c.Password != "" {
			cred.Fallback = &generac.UsernamePassword{Username: c.Username, Password: c.Password}
		}
		return cred
	}
	return generac.UsernamePassword{Username: c.Username, Password: c.Password}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
