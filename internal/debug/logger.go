package debug

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// level is shared by every logger built here so a config reload can
// change verbosity at runtime.
var level = new(slog.LevelVar)

// ParseLevel maps a config string onto a slog level. Unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// SetLevel changes the level of all loggers returned by NewLogger.
func SetLevel(s string) {
	level.Set(ParseLevel(s))
}

// NewLogger returns a logger writing human-readable records to stderr and
// JSON records to logFile. Warnings and errors always reach the file; the
// stderr side follows the configured level. The returned closer closes the
// file. An empty logFile logs to stderr only.
func NewLogger(logFile, lvl string) (*slog.Logger, io.Closer, error) {
	SetLevel(lvl)
	if Enabled() {
		level.Set(slog.LevelDebug)
	}
	console := slog.NewTextHandler(stderr{}, &slog.HandlerOptions{Level: level})
	if logFile == "" {
		return slog.New(console), io.NopCloser(nil), nil
	}

	if dir := filepath.Dir(logFile); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	// #nosec G304 - path comes from operator configuration
	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	file := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelWarn})
	return slog.New(fanout{console, file}), f, nil
}

// stderr resolves os.Stderr on every write so redirection after setup is honored.
type stderr struct{}

func (stderr) Write(p []byte) (int, error) { return os.Stderr.Write(p) }

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (h fanout) Enabled(ctx context.Context, l slog.Level) bool {
	for _, hh := range h {
		if hh.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (h fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, hh := range h {
		if hh.Enabled(ctx, r.Level) {
			errs = append(errs, hh.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (h fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(h))
	for i, hh := range h {
		out[i] = hh.WithAttrs(attrs)
	}
	return out
}

func (h fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(h))
	for i, hh := range h {
		out[i] = hh.WithGroup(name)
	}
	return out
}
