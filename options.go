package overlay

import (
	"log/slog"

	"github.com/meigma/overlay/internal/overlaytype"
)

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger for operation events.
// A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithMaxResourceSize limits the raw size of resources accepted by Add.
// Set limit to 0 to disable the limit.
func WithMaxResourceSize(limit uint64) Option {
	return func(e *Editor) {
		e.maxResourceSize = limit
	}
}

// WithMaxDecoderMemory limits the memory used to decompress one resource.
// Set limit to 0 to disable the limit.
func WithMaxDecoderMemory(limit uint64) Option {
	return func(e *Editor) {
		e.maxDecoderMemory = limit
	}
}

// WithExportWorkers sets how many resources ExportAll writes concurrently.
// Values < 1 are treated as 1.
func WithExportWorkers(n int) Option {
	return func(e *Editor) {
		e.exportWorkers = max(n, 1)
	}
}

// AddOption configures an Add operation.
type AddOption func(*addConfig)

type addConfig struct {
	level  int
	output string
}

func newAddConfig(opts []AddOption) addConfig {
	cfg := addConfig{level: overlaytype.LevelDefault}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// AddWithLevel sets the compression level (0-9, default 1).
// Level 0 stores the resource verbatim.
func AddWithLevel(level int) AddOption {
	return func(c *addConfig) {
		c.level = level
	}
}

// AddWithOutput writes the result to path instead of replacing the target.
// The target is left untouched.
func AddWithOutput(path string) AddOption {
	return func(c *addConfig) {
		c.output = path
	}
}

// RemoveOption configures a Remove operation.
type RemoveOption func(*removeConfig)

type removeConfig struct {
	output string
}

// RemoveWithOutput writes the result to path instead of replacing the target.
// The target is left untouched.
func RemoveWithOutput(path string) RemoveOption {
	return func(c *removeConfig) {
		c.output = path
	}
}

// ListOption configures a List operation.
type ListOption func(*listConfig)

type listConfig struct {
	id    string
	hasID bool
}

// ListWithID restricts List to the resource with the given ID.
// List fails with ErrNotFound when no resource matches.
func ListWithID(id string) ListOption {
	return func(c *listConfig) {
		c.id = id
		c.hasID = true
	}
}
