package overlay

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/meigma/overlay/internal/checksum"
	"github.com/meigma/overlay/internal/codec"
	"github.com/meigma/overlay/internal/layout"
	"github.com/meigma/overlay/internal/overlaytype"
	"github.com/meigma/overlay/internal/sizing"
)

// Add attaches resource to target under id.
//
// The resource is compressed at the configured level (default 1) and
// appended after the existing blocks; the host content and earlier blocks
// are copied unchanged. With AddWithOutput the result is written to a new
// file and target is left untouched.
func (e *Editor) Add(target string, resource []byte, id string, opts ...AddOption) error {
	cfg := newAddConfig(opts)

	if err := layout.ValidateID(id); err != nil {
		return fmt.Errorf("add %q: %w", id, err)
	}
	if !overlaytype.ValidLevel(cfg.level) {
		return fmt.Errorf("add %q: %w: level %d out of range %d-%d", id,
			overlaytype.ErrCompression, cfg.level, overlaytype.LevelNone, overlaytype.LevelMax)
	}
	if err := e.checkResourceSize(uint64(len(resource))); err != nil {
		return fmt.Errorf("add %q: %w", id, err)
	}

	f, c, err := e.open(target)
	if err != nil {
		return err
	}
	defer f.Close()

	if c.Table.Contains(id) {
		return fmt.Errorf("add %q: %w", id, overlaytype.ErrDuplicateID)
	}

	stored, err := codec.Compress(resource, cfg.level)
	if err != nil {
		return fmt.Errorf("add %q: %w", id, err)
	}
	entry := layout.Entry{
		ID:           id,
		DataOffset:   c.TableOffset,
		StoredLength: uint64(len(stored)),
		RawLength:    uint64(len(resource)),
		Level:        uint8(cfg.level), //nolint:gosec // validated 0-9 above
		Checksum:     checksum.Of(resource),
	}
	if _, err := sizing.Sum(entry.DataOffset, entry.StoredLength, uint64(layout.RecordSize(entry)),
		c.TableLength, layout.FooterSize); err != nil {
		return fmt.Errorf("add %q: %w", id, err)
	}
	table, err := c.Table.Insert(entry)
	if err != nil {
		return fmt.Errorf("add %q: %w", id, err)
	}

	dest := target
	if cfg.output != "" {
		dest = cfg.output
	}
	e.logger.Info("adding resource",
		slog.String("target", target),
		slog.String("dest", dest),
		slog.String("id", id),
		slog.Int("level", cfg.level),
		slog.Uint64("raw_length", entry.RawLength),
		slog.Uint64("stored_length", entry.StoredLength),
		slog.Uint64("data_offset", entry.DataOffset))

	plan := rewrite{
		moves: []move{{from: 0, to: 0, length: c.TableOffset}},
		tail:  stored,
		table: table,
	}
	if err := e.commit(f, target, dest, plan); err != nil {
		return fmt.Errorf("add %q: %w", id, err)
	}
	return nil
}

// AddFile attaches the contents of the file at resourcePath to target.
func (e *Editor) AddFile(target, resourcePath, id string, opts ...AddOption) error {
	info, err := os.Stat(resourcePath)
	if err != nil {
		return overlaytype.IOError("stat "+resourcePath, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", overlaytype.ErrIO, resourcePath)
	}
	if err := e.checkResourceSize(uint64(info.Size())); err != nil { //nolint:gosec // file sizes are non-negative
		return fmt.Errorf("add %q: %w", id, err)
	}
	resource, err := os.ReadFile(resourcePath) //nolint:gosec // resourcePath is caller-supplied by design
	if err != nil {
		return overlaytype.IOError("read "+resourcePath, err)
	}
	return e.Add(target, resource, id, opts...)
}

func (e *Editor) checkResourceSize(n uint64) error {
	if e.maxResourceSize != 0 && n > e.maxResourceSize {
		return fmt.Errorf("%w: resource is %d bytes, limit is %d", overlaytype.ErrSizeLimit, n, e.maxResourceSize)
	}
	return nil
}
