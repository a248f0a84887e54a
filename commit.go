package overlay

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/meigma/overlay/internal/fileops"
	"github.com/meigma/overlay/internal/index"
	"github.com/meigma/overlay/internal/layout"
	"github.com/meigma/overlay/internal/overlaytype"
	"github.com/meigma/overlay/internal/sizing"
)

// move copies length bytes from offset from in the source to offset to in
// the destination.
type move struct {
	from, to, length uint64
}

// rewrite describes a new file: source ranges laid out back to back,
// followed by tail bytes, the table and the footer.
type rewrite struct {
	moves []move
	tail  []byte
	table *index.Table
}

// commit writes plan to dest through a temp file. The temp file is re-loaded
// and its table compared with plan.table before it replaces dest.
func (e *Editor) commit(src io.ReaderAt, srcPath, dest string, plan rewrite) error {
	af, err := fileops.CreateAtomic(dest, fileops.Mode(srcPath, 0o644))
	if err != nil {
		return err
	}
	defer af.Discard()

	cw := &fileops.CountingWriter{W: af}
	buf := make([]byte, 1<<20)
	for _, m := range plan.moves {
		if cw.N != m.to {
			return fmt.Errorf("%w: move to %d starts at %d", overlaytype.ErrIO, m.to, cw.N)
		}
		if err := fileops.CopyRange(cw, src, m.from, m.length, buf); err != nil {
			return err
		}
	}
	if _, err := cw.Write(plan.tail); err != nil {
		return overlaytype.IOError("write data", err)
	}

	entries := plan.table.Entries()
	table, err := layout.EncodeTable(entries)
	if err != nil {
		return err
	}
	tableOffset := cw.N
	fileLength, err := sizing.Sum(tableOffset, uint64(len(table)), layout.FooterSize)
	if err != nil {
		return err
	}
	footer := layout.EncodeFooter(layout.Footer{
		Version:     layout.Version,
		TableOffset: tableOffset,
		TableLength: uint64(len(table)),
		EntryCount:  uint64(len(entries)),
	})
	if _, err := cw.Write(table); err != nil {
		return overlaytype.IOError("write table", err)
	}
	if _, err := cw.Write(footer); err != nil {
		return overlaytype.IOError("write footer", err)
	}

	e.logger.Debug("committing container",
		slog.String("dest", dest),
		slog.String("temp", af.Name()),
		slog.Uint64("table_offset", tableOffset),
		slog.Uint64("file_length", fileLength))

	return af.Commit(func(f *os.File) error {
		return verifyWritten(f, fileLength, tableOffset, entries)
	})
}

// verifyWritten re-loads a freshly written container and checks it holds
// exactly the expected table.
func verifyWritten(f *os.File, fileLength, tableOffset uint64, entries []layout.Entry) error {
	info, err := f.Stat()
	if err != nil {
		return overlaytype.IOError("stat temp file", err)
	}
	if uint64(info.Size()) != fileLength { //nolint:gosec // file sizes are non-negative
		return fmt.Errorf("%w: verify: wrote %d bytes, expected %d", overlaytype.ErrIO, info.Size(), fileLength)
	}
	c, err := index.Load(f, info.Size())
	if err != nil {
		return fmt.Errorf("%w: verify: %w", overlaytype.ErrIO, err)
	}
	if !c.HasFooter || c.TableOffset != tableOffset || !slices.Equal(c.Table.Entries(), entries) {
		return fmt.Errorf("%w: verify: written table does not match", overlaytype.ErrIO)
	}
	return nil
}
