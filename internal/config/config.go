package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultCatalogURL is the built-in remote manifest location, used when
// CATALOG_URL is unset or empty.
const DefaultCatalogURL = "https://raw.githubusercontent.com/migueltarga/kiddo/refs/heads/develop/stories/index.json"

type Config struct {
	Environment string
	LogLevel    slog.Level

	// DataDir is the root of the flash-style content store: story
	// files, index.json, and the image cache live under it.
	DataDir string

	// Language is the reader's preferred content language tag.
	Language string

	// OnlineMode enables catalog fetches and story/image downloads.
	OnlineMode bool

	// CatalogURL is the remote manifest URL.
	CatalogURL string

	// RedisURL enables session snapshots when set.
	RedisURL string

	HTTPTimeout time.Duration
}

func Load() *Config {
	catalogURL := getEnv("CATALOG_URL", DefaultCatalogURL)
	if catalogURL == "" {
		catalogURL = DefaultCatalogURL
	}

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		DataDir:     getEnv("DATA_DIR", "./data"),
		Language:    getEnv("LANGUAGE", "en"),
		OnlineMode:  parseBool(getEnv("ONLINE_MODE", "true")),
		CatalogURL:  catalogURL,
		RedisURL:    getEnv("REDIS_URL", ""),
		HTTPTimeout: time.Duration(parseInt(getEnv("HTTP_TIMEOUT_SECONDS", "15"), 15)) * time.Second,
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseBool(value string) bool {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false
	}
	return b
}

func parseInt(value string, fallback int) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
