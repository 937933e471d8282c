package observability

import (
	"log/slog"
	"os"
)

// NewLogger returns the process-wide structured logger. Everything the server
// emits goes through slog with JSON output so log shippers can index it.
func NewLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}
