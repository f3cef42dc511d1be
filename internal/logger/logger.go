package logger

import (
	"log/slog"
	"os"

	"github.com/migueltarga/kiddo-engine/internal/config"
)

// Setup configures the global slog logger based on environment. Logs
// go to stderr: the reader UI owns stdout.
func Setup(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.Environment == "production" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}
