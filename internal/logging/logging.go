// Package logging builds the CLI logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	slogmulti "github.com/samber/slog-multi"
)

// Setup builds a logger writing colourised text to console. If logOutputDir
// is non-empty, logs are also written as JSON to a timestamped file in that
// directory. The returned close function releases the log file.
func Setup(console io.Writer, levelStr, logOutputDir string) (*slog.Logger, func() error, error) {
	level := ParseLevel(levelStr)
	consoleHandler := tint.NewHandler(console, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	})

	if logOutputDir == "" {
		return slog.New(consoleHandler), func() error { return nil }, nil
	}

	logDir := os.ExpandEnv(logOutputDir)
	if err := os.MkdirAll(logDir, 0o750); err != nil {
		return nil, nil, fmt.Errorf("create log output directory: %w", err)
	}

	name := fmt.Sprintf("overlay_%s.log", time.Now().Format("20060102_150405"))
	logFile, err := os.OpenFile(filepath.Join(logDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("create log file: %w", err)
	}
	fileHandler := slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: level})

	logger := slog.New(slogmulti.Fanout(consoleHandler, fileHandler))
	return logger, logFile.Close, nil
}

// ParseLevel converts a level name to slog.Level, defaulting to Info.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "fatal":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
