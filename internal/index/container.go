package index

import (
	"errors"
	"fmt"
	"io"

	"github.com/meigma/overlay/internal/layout"
	"github.com/meigma/overlay/internal/overlaytype"
	"github.com/meigma/overlay/internal/sizing"
)

// Container is the decoded overlay of a host file.
//
// Data blocks, then the table, then the footer occupy [BaseLength,
// FileLength). A host without an overlay yields an empty container with
// BaseLength == TableOffset == FileLength.
type Container struct {
	// BaseLength is the end of the host's own content.
	BaseLength uint64

	// TableOffset is where the table begins, just past the last data block.
	TableOffset uint64

	// TableLength is the encoded size of the table.
	TableLength uint64

	// FileLength is the size of the host file.
	FileLength uint64

	// HasFooter reports whether the host carried an overlay footer.
	HasFooter bool

	// Table holds the entries.
	Table *Table
}

// Fresh returns an empty container for a host of the given size.
func Fresh(size uint64) *Container {
	t, _ := NewTable(nil) //nolint:errcheck // empty tables are always valid
	return &Container{
		BaseLength:  size,
		TableOffset: size,
		FileLength:  size,
		Table:       t,
	}
}

// Load reads the overlay from the end of src.
//
// A source shorter than the footer, or whose trailing bytes lack the overlay
// magic, is a fresh container. Any other inconsistency is
// ErrInvalidContainer.
func Load(src io.ReaderAt, size int64) (*Container, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: negative size %d", overlaytype.ErrInvalidContainer, size)
	}
	fileLength := uint64(size)
	if size < int64(layout.FooterSize) {
		return Fresh(fileLength), nil
	}

	buf := make([]byte, layout.FooterSize)
	if err := readFull(src, buf, size-int64(layout.FooterSize)); err != nil {
		return nil, overlaytype.IOError("read footer", err)
	}
	footer, ok, err := layout.DecodeFooter(buf)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Fresh(fileLength), nil
	}

	end, err := sizing.Sum(footer.TableOffset, footer.TableLength, uint64(layout.FooterSize))
	if err != nil || end != fileLength {
		return nil, fmt.Errorf("%w: table [%d, +%d) and footer do not end at file length %d",
			overlaytype.ErrInvalidContainer, footer.TableOffset, footer.TableLength, fileLength)
	}

	tableBuf := make([]byte, footer.TableLength)
	if err := readFull(src, tableBuf, int64(footer.TableOffset)); err != nil { //nolint:gosec // bounded by size above
		return nil, overlaytype.IOError("read table", err)
	}
	entries, err := layout.DecodeTable(tableBuf, footer.EntryCount)
	if err != nil {
		return nil, err
	}
	table, err := NewTable(entries)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", overlaytype.ErrInvalidContainer, err)
	}

	c := &Container{
		BaseLength:  baseLength(footer.TableOffset, entries),
		TableOffset: footer.TableOffset,
		TableLength: footer.TableLength,
		FileLength:  fileLength,
		HasFooter:   true,
		Table:       table,
	}
	if err := c.validateBlocks(); err != nil {
		return nil, err
	}
	return c, nil
}

// baseLength is the lowest offset owned by the overlay.
func baseLength(tableOffset uint64, entries []layout.Entry) uint64 {
	base := tableOffset
	for _, e := range entries {
		base = min(base, e.DataOffset)
	}
	return base
}

// validateBlocks checks that every block lies inside [BaseLength,
// TableOffset) and that no two blocks overlap.
func (c *Container) validateBlocks() error {
	var prevEnd uint64
	var prevID string
	for i, e := range c.Table.ByOffset() {
		end, err := sizing.Add(e.DataOffset, e.StoredLength)
		if err != nil || !sizing.Within(e.DataOffset, e.StoredLength, c.BaseLength, c.TableOffset) {
			return fmt.Errorf("%w: block %q [%d, +%d) outside data region [%d, %d)",
				overlaytype.ErrInvalidContainer, e.ID, e.DataOffset, e.StoredLength, c.BaseLength, c.TableOffset)
		}
		if i > 0 && e.DataOffset < prevEnd {
			return fmt.Errorf("%w: block %q overlaps block %q",
				overlaytype.ErrInvalidContainer, e.ID, prevID)
		}
		prevEnd, prevID = end, e.ID
	}
	return nil
}

// Boundary returns the offset where the block for id must end: the start
// of the block that follows it in offset order, or the table for the last
// block.
func (c *Container) Boundary(id string) (uint64, error) {
	if _, err := c.Table.Lookup(id); err != nil {
		return 0, err
	}
	sorted := c.Table.ByOffset()
	for i, e := range sorted {
		if e.ID != id {
			continue
		}
		if i+1 < len(sorted) {
			return sorted[i+1].DataOffset, nil
		}
		break
	}
	return c.TableOffset, nil
}

// DataLength returns the number of bytes occupied by data blocks.
func (c *Container) DataLength() uint64 {
	return c.TableOffset - c.BaseLength
}

// readFull reads exactly len(buf) bytes at off, treating an io.EOF that
// accompanies a full read as success.
func readFull(src io.ReaderAt, buf []byte, off int64) error {
	n, err := src.ReadAt(buf, off)
	if n == len(buf) && (err == nil || errors.Is(err, io.EOF)) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
