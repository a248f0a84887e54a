package overlay

import (
	"log/slog"
	"os"
	"sync"

	"github.com/meigma/overlay/internal/codec"
	"github.com/meigma/overlay/internal/index"
	"github.com/meigma/overlay/internal/overlaytype"
)

const (
	// DefaultMaxResourceSize is the largest resource Add accepts (1 TiB).
	DefaultMaxResourceSize = 1 << 40

	// DefaultMaxDecoderMemory bounds the memory of a single decompression (256 MiB).
	DefaultMaxDecoderMemory = codec.DefaultMaxDecoderMemory

	// DefaultExportWorkers is the number of resources ExportAll writes at once.
	DefaultExportWorkers = 4
)

// Editor performs overlay operations on host files.
//
// An Editor holds only configuration and a decoder pool; every call loads the
// container from disk, so an Editor is safe for concurrent use on different
// files.
type Editor struct {
	logger           *slog.Logger
	maxResourceSize  uint64
	maxDecoderMemory uint64
	exportWorkers    int
	decoder          *codec.Decoder
}

// New creates an Editor with the given options.
func New(opts ...Option) *Editor {
	e := &Editor{
		logger:           slog.New(slog.DiscardHandler),
		maxResourceSize:  DefaultMaxResourceSize,
		maxDecoderMemory: DefaultMaxDecoderMemory,
		exportWorkers:    DefaultExportWorkers,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	e.decoder = codec.NewDecoder(e.maxDecoderMemory)
	return e
}

var defaultEditor = sync.OnceValue(func() *Editor { return New() })

// Load reads the container of the target file.
//
// A file without an overlay yields an empty container whose BaseLength is
// the file size.
func (e *Editor) Load(target string) (*Container, error) {
	f, c, err := e.open(target)
	if err != nil {
		return nil, err
	}
	f.Close()
	return c, nil
}

// open opens target for reading and loads its container. The caller closes
// the returned file.
func (e *Editor) open(target string) (*os.File, *Container, error) {
	f, err := os.Open(target) //nolint:gosec // target is caller-supplied by design
	if err != nil {
		return nil, nil, overlaytype.IOError("open "+target, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, overlaytype.IOError("stat "+target, err)
	}
	c, err := index.Load(f, info.Size())
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	e.logger.Debug("loaded container",
		slog.String("target", target),
		slog.Uint64("base_length", c.BaseLength),
		slog.Uint64("table_offset", c.TableOffset),
		slog.Uint64("data_length", c.DataLength()),
		slog.Int("entries", c.Table.Len()))
	return f, c, nil
}

// Load reads the container of target using the default Editor.
func Load(target string) (*Container, error) {
	return defaultEditor().Load(target)
}

// Add attaches resource to target under id using the default Editor.
func Add(target string, resource []byte, id string, opts ...AddOption) error {
	return defaultEditor().Add(target, resource, id, opts...)
}

// AddFile attaches the file at resourcePath using the default Editor.
func AddFile(target, resourcePath, id string, opts ...AddOption) error {
	return defaultEditor().AddFile(target, resourcePath, id, opts...)
}

// Remove detaches id from target using the default Editor.
func Remove(target, id string, opts ...RemoveOption) error {
	return defaultEditor().Remove(target, id, opts...)
}

// Export writes resource id to outputPath using the default Editor.
func Export(target, id, outputPath string) error {
	return defaultEditor().Export(target, id, outputPath)
}

// ExportAll writes every resource into dir using the default Editor.
func ExportAll(target, dir string) ([]string, error) {
	return defaultEditor().ExportAll(target, dir)
}

// List describes the resources of target using the default Editor.
func List(target string, opts ...ListOption) ([]Summary, error) {
	return defaultEditor().List(target, opts...)
}
