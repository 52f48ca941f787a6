// Package logging provides structured logging for claude-sync using slog,
// writing JSON lines to a single rotating log file.
//
// Usage:
//
//	if err := logging.Init(layout.LogPath(), layout.LogOldPath()); err != nil {
//	    // handle error
//	}
//	defer logging.Close()
//
//	ctx = logging.WithComponent(ctx, "sync")
//	logging.Info(ctx, "push started", slog.String("branch", branch))
package logging

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// LogLevelEnvVar is the environment variable that controls log level.
const LogLevelEnvVar = "CLAUDE_SYNC_LOG_LEVEL"

// MaxLogSizeBytes bounds the active log file before it's rotated out to the
// ".old" path on the next Init.
const MaxLogSizeBytes = 10 * 1024 * 1024

var (
	logger       *slog.Logger
	logFile      *os.File
	logBufWriter *bufio.Writer
	mu           sync.RWMutex
)

// Init opens path for appending, rotating it to oldPath first if it has
// grown past MaxLogSizeBytes (overwriting any previous oldPath). If the log
// file can't be created, logging falls back to stderr rather than failing
// the caller's command.
func Init(path, oldPath string) error {
	mu.Lock()
	defer mu.Unlock()

	closeLocked()

	if err := rotateIfOversized(path, oldPath); err != nil {
		fmt.Fprintf(os.Stderr, "[claude-sync] warning: failed to rotate log file: %v\n", err)
	}

	level := parseLogLevel(os.Getenv(LogLevelEnvVar))
	if lvl := os.Getenv(LogLevelEnvVar); lvl != "" && !isValidLogLevel(lvl) {
		fmt.Fprintf(os.Stderr, "[claude-sync] warning: invalid log level %q, defaulting to INFO\n", lvl)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		logger = createLogger(os.Stderr, level)
		return nil
	}

	logFile = f
	logBufWriter = bufio.NewWriterSize(f, 8192)
	logger = createLogger(logBufWriter, level)
	return nil
}

// rotateIfOversized moves path to oldPath (replacing it) if path exists and
// exceeds MaxLogSizeBytes.
func rotateIfOversized(path, oldPath string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat log file %s: %w", path, err)
	}
	if info.Size() < MaxLogSizeBytes {
		return nil
	}
	if err := os.Rename(path, oldPath); err != nil {
		return fmt.Errorf("rotating log file %s to %s: %w", path, oldPath, err)
	}
	return nil
}

// Close flushes and closes the active log file. Safe to call multiple
// times or without a prior Init.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
}

func closeLocked() {
	if logBufWriter != nil {
		_ = logBufWriter.Flush()
		logBufWriter = nil
	}
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

func getLogger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func createLogger(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func isValidLogLevel(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR", "":
		return true
	default:
		return false
	}
}

// Debug logs at DEBUG level with context values automatically extracted.
func Debug(ctx context.Context, msg string, attrs ...any) { log(ctx, slog.LevelDebug, msg, attrs...) }

// Info logs at INFO level with context values automatically extracted.
func Info(ctx context.Context, msg string, attrs ...any) { log(ctx, slog.LevelInfo, msg, attrs...) }

// Warn logs at WARN level with context values automatically extracted.
func Warn(ctx context.Context, msg string, attrs ...any) { log(ctx, slog.LevelWarn, msg, attrs...) }

// Error logs at ERROR level with context values automatically extracted.
func Error(ctx context.Context, msg string, attrs ...any) { log(ctx, slog.LevelError, msg, attrs...) }

func log(ctx context.Context, level slog.Level, msg string, attrs ...any) {
	l := getLogger()

	var allAttrs []any
	if ctx != nil {
		if component := ComponentFromContext(ctx); component != "" {
			allAttrs = append(allAttrs, slog.String("component", component))
		}
		if operation := OperationFromContext(ctx); operation != "" {
			allAttrs = append(allAttrs, slog.String("operation", operation))
		}
	}
	allAttrs = append(allAttrs, attrs...)

	l.Log(context.Background(), level, msg, allAttrs...)
}
