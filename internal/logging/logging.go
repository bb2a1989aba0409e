// Package logging configures the process-wide slog logger.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config selects level, format and destination of log output.
type Config struct {
	Level    string
	Format   string
	Output   string
	FilePath string
}

// DefaultConfig logs warnings and above as text on stderr, keeping stdout
// for command output.
func DefaultConfig() Config {
	return Config{Level: "warn", Format: "text", Output: "stderr"}
}

// Setup installs a logger built from cfg as the slog default. The returned
// closer releases the log file, if one was opened.
func Setup(cfg Config) (io.Closer, error) {
	h, closer, err := NewHandler(cfg)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(h))
	slog.Debug("logger initialized", "level", cfg.Level, "format", cfg.Format, "output", cfg.Output)
	return closer, nil
}

// NewHandler builds the handler described by cfg without installing it.
func NewHandler(cfg Config) (slog.Handler, io.Closer, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level: %w", err)
	}

	var writer io.Writer
	closer := io.Closer(nopCloser{})
	switch strings.ToLower(cfg.Output) {
	case "", "stderr":
		writer = os.Stderr
	case "stdout":
		writer = os.Stdout
	case "file":
		if cfg.FilePath == "" {
			return nil, nil, fmt.Errorf("log file path is required when output is 'file'")
		}
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		writer, closer = f, f
	default:
		return nil, nil, fmt.Errorf("invalid log output: %s", cfg.Output)
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.String(slog.TimeKey, a.Value.Time().Format("2006-01-02T15:04:05.000Z07:00"))
			}
			return a
		},
	}
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		return slog.NewTextHandler(writer, opts), closer, nil
	case "json":
		return slog.NewJSONHandler(writer, opts), closer, nil
	default:
		_ = closer.Close()
		return nil, nil, fmt.Errorf("invalid log format: %s", cfg.Format)
	}
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", level)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type contextKey string

const loggerKey contextKey = "logger"

// FromContext returns the logger stored in ctx, or the default logger.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// WithContext stores l in ctx.
func WithContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}
