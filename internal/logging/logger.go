package logging

import (
	"log/slog"
	"os"
)

// Setup installs a JSON logger on stdout as the slog default. main replaces
// it with a fan-out to the database once storage is up.
func Setup() *slog.JSONHandler {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	return handler
}
