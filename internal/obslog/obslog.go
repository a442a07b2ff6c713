// Package obslog builds the structured logger the scheduling engine threads
// through its phases. Diagnostics are structured records, never stdout
// prints, per the engine's progress-log contract.
package obslog

import (
	"io"
	"log/slog"
	"os"
)

// Format selects the log record encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Config configures the logger returned by New.
type Config struct {
	Format Format
	Level  slog.Level
	Output io.Writer
}

// DefaultConfig returns sensible defaults for local development.
func DefaultConfig() Config {
	return Config{Format: FormatText, Level: slog.LevelInfo, Output: os.Stderr}
}

// New builds a *slog.Logger per cfg. If cfg.Output is nil it defaults to os.Stderr.
func New(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handler slog.Handler
	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(out, opts)
	default:
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler)
}

// WithRun returns a logger that tags every record with the given run
// correlation id, so that phase records from one Engine.Run can be told
// apart from a concurrent or subsequent run in the same process.
func WithRun(logger *slog.Logger, runID string) *slog.Logger {
	return logger.With(slog.String("run_id", runID))
}
