package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/meur/buildforge/internal/validation"
)

// Config holds the application configuration
type Config struct {
	Port              int    `validate:"min=1,max=65535"`
	DBPath            string `validate:"required"`
	CatalogPath       string
	CatalogVersion    string `validate:"required"`
	LogLevel          string `validate:"oneof=debug info warn warning error"`
	LogFormat         string `validate:"oneof=json text"`
	Environment       string `validate:"required"`
	Version           string
	TreeCacheSize     int `validate:"min=1"`
	MaxShareCodeBytes int `validate:"min=16"`
	AllowedOrigins    []string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// A missing .env file is fine, real env vars may be set instead
	_ = godotenv.Load()

	cfg := &Config{
		DBPath:         getEnv("DB_PATH", "./buildforge.db"),
		CatalogPath:    getEnv("CATALOG_PATH", ""),
		CatalogVersion: getEnv("CATALOG_VERSION", "local"),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:      strings.ToLower(getEnv("LOG_FORMAT", "text")),
		Environment:    getEnv("ENVIRONMENT", "dev"),
		Version:        getEnv("VERSION", "dev"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:*")),
	}

	var err error
	if cfg.Port, err = getEnvInt("PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.TreeCacheSize, err = getEnvInt("TREE_CACHE_SIZE", 512); err != nil {
		return nil, err
	}
	if cfg.MaxShareCodeBytes, err = getEnvInt("MAX_SHARE_CODE_BYTES", 8192); err != nil {
		return nil, err
	}

	if errs := validation.Struct(cfg); len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errs)
	}

	return cfg, nil
}

// IsDev reports whether the app runs in a development environment
func (c *Config) IsDev() bool {
	return c.Environment == "dev" || c.Environment == "development"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
