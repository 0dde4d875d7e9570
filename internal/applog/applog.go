// Package applog wires up the process-wide zerolog logger and threads it
// through context.Context, mirroring how the richest example in the corpus
// (xg2g's internal/log package) carries a request-scoped logger.
package applog

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

type ctxKey struct{}

// New builds the base logger. level is one of ERROR/WARNING/INFO/DEBUG/ALL
// (spec §6's log_level key); pretty selects a human-readable console writer
// instead of JSON, for interactive use.
func New(level string, pretty bool) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(level))

	var w io.Writer = os.Stdout
	if pretty {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// NewFile builds a logger that writes JSON lines to both stdout and a fresh
// file under logDir (spec §6's log_dir/log_max_count), pruning the oldest
// files beyond maxCount once the new one is opened. No rotation library
// appears anywhere in the corpus, so the pruning here is original stdlib
// directory bookkeeping rather than an adopted dependency.
func NewFile(level, logDir string, maxCount int) (zerolog.Logger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return zerolog.Logger{}, fmt.Errorf("create log dir %s: %w", logDir, err)
	}

	name := fmt.Sprintf("podrelay-%s.log", time.Now().UTC().Format("20060102-150405"))
	path := filepath.Join(logDir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("open log file %s: %w", path, err)
	}

	if err := pruneOldLogs(logDir, maxCount); err != nil {
		return zerolog.Logger{}, err
	}

	zerolog.SetGlobalLevel(parseLevel(level))
	w := zerolog.MultiLevelWriter(os.Stdout, f)
	return zerolog.New(w).With().Timestamp().Logger(), nil
}

// pruneOldLogs keeps only the maxCount most recent podrelay-*.log files in
// dir, removing the rest.
func pruneOldLogs(dir string, maxCount int) error {
	if maxCount <= 0 {
		return nil
	}
	matches, err := filepath.Glob(filepath.Join(dir, "podrelay-*.log"))
	if err != nil {
		return fmt.Errorf("list logs in %s: %w", dir, err)
	}
	if len(matches) <= maxCount {
		return nil
	}
	sort.Strings(matches)
	for _, stale := range matches[:len(matches)-maxCount] {
		if err := os.Remove(stale); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("prune log %s: %w", stale, err)
		}
	}
	return nil
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "ERROR":
		return zerolog.ErrorLevel
	case "WARNING":
		return zerolog.WarnLevel
	case "INFO":
		return zerolog.InfoLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "ALL":
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithContext attaches logger to ctx.
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger attached to ctx, or a fallback logger
// writing to os.Stderr if none was attached (never nil, never panics).
func FromContext(ctx context.Context) zerolog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
		return l
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
