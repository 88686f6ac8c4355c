// Package config holds client configuration sourced from the environment.
//
// A .env file in the working directory is honored when present so that
// pointing the client at a non-default backend does not require exporting
// variables in every shell.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// BaseURL is the backend API root, e.g. http://localhost:4001/api/v1.
	BaseURL string

	HTTPTimeoutSec int

	// PageSize is the default queue page size.
	PageSize int
}

func Load() (Config, error) {
	// Best effort; absence of a .env file is the normal case.
	_ = godotenv.Load()

	cfg := Config{
		BaseURL:        env("REQMAN_BASE_URL", "http://localhost:4001/api/v1"),
		HTTPTimeoutSec: envInt("REQMAN_HTTP_TIMEOUT_SEC", 15),
		PageSize:       envInt("REQMAN_PAGE_SIZE", 10),
	}

	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return Config{}, fmt.Errorf("REQMAN_BASE_URL must not be empty")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Config{}, fmt.Errorf("REQMAN_BASE_URL must be an absolute URL: %q", cfg.BaseURL)
	}
	if cfg.HTTPTimeoutSec <= 0 {
		return Config{}, fmt.Errorf("REQMAN_HTTP_TIMEOUT_SEC must be positive")
	}
	if cfg.PageSize <= 0 {
		return Config{}, fmt.Errorf("REQMAN_PAGE_SIZE must be positive")
	}
	return cfg, nil
}

func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
