// Package commands implements the overlay CLI subcommands on top of the
// overlay package. Each command writes its human-readable report to w.
package commands

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/meigma/overlay"
)

// Exit codes reported by the CLI.
const (
	ExitOK               = 0
	ExitFailure          = 1
	ExitUsage            = 2
	ExitInvalidID        = 3
	ExitNotFound         = 4
	ExitInvalidContainer = 5
	ExitIntegrity        = 6
	ExitCompression      = 7
	ExitIO               = 8
	ExitSizeLimit        = 9
)

// ExitCode maps an operation error to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, overlay.ErrInvalidID), errors.Is(err, overlay.ErrDuplicateID):
		return ExitInvalidID
	case errors.Is(err, overlay.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, overlay.ErrInvalidContainer):
		return ExitInvalidContainer
	case errors.Is(err, overlay.ErrIntegrityMismatch):
		return ExitIntegrity
	case errors.Is(err, overlay.ErrCompression):
		return ExitCompression
	case errors.Is(err, overlay.ErrSizeLimit):
		return ExitSizeLimit
	case errors.Is(err, overlay.ErrIO):
		return ExitIO
	default:
		return ExitFailure
	}
}

// ResolvePath interprets a relative path against the directory containing
// target. Absolute and empty paths are returned unchanged.
func ResolvePath(target, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(filepath.Dir(target), path)
}

// checkTarget fails early with a readable message when target is missing.
func checkTarget(target string) error {
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("%w: target %s: %w", overlay.ErrIO, target, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: target %s is a directory", overlay.ErrIO, target)
	}
	return nil
}

// formatBytes converts a byte count into a human-readable string (KB, MB, GB).
func formatBytes(bytes uint64, decimals int) string {
	if bytes == 0 {
		return "0 Bytes"
	}
	const k = 1024
	if decimals < 0 {
		decimals = 0
	}
	sizes := []string{"Bytes", "KB", "MB", "GB", "TB"}

	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(k)))
	if i >= len(sizes) {
		i = len(sizes) - 1
	}
	if i == 0 {
		return fmt.Sprintf("%d Bytes", bytes)
	}
	return fmt.Sprintf("%.*f %s", decimals, float64(bytes)/math.Pow(k, float64(i)), sizes[i])
}
