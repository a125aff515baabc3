package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger: structured JSON on stdout. Components
// receive it by injection rather than reaching for a global.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
