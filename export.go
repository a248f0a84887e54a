package overlay

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/meigma/overlay/internal/checksum"
	"github.com/meigma/overlay/internal/fileops"
	"github.com/meigma/overlay/internal/layout"
	"github.com/meigma/overlay/internal/overlaytype"
)

// Export extracts resource id from target into outputPath.
//
// The stored block is checked against its neighbours, decompressed, and
// verified against the recorded raw length and checksum before anything is
// written. The output is then re-read from disk and verified again; if that
// fails it is removed. Failures are reported as *IntegrityError.
func (e *Editor) Export(target, id, outputPath string) error {
	f, c, err := e.open(target)
	if err != nil {
		return err
	}
	defer f.Close()

	entry, err := c.Table.Lookup(id)
	if err != nil {
		return fmt.Errorf("export %q: %w", id, err)
	}
	return e.export(f, c, entry, outputPath)
}

// ExportAll extracts every resource of target into dir, naming each file
// after its ID, and returns the written paths in table order.
//
// Every ID must be usable as a single file name; otherwise nothing is
// written and ErrInvalidID is returned. Resources are exported concurrently
// with the same verification as Export.
func (e *Editor) ExportAll(target, dir string) ([]string, error) {
	f, c, err := e.open(target)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries := c.Table.Entries()
	paths := make([]string, len(entries))
	for i, entry := range entries {
		if !fileops.SafeName(entry.ID) {
			return nil, fmt.Errorf("export %q: %w: not a safe file name", entry.ID, overlaytype.ErrInvalidID)
		}
		paths[i] = filepath.Join(dir, entry.ID)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, overlaytype.IOError("create "+dir, err)
	}

	var g errgroup.Group
	g.SetLimit(e.exportWorkers)
	for i, entry := range entries {
		g.Go(func() error {
			return e.export(f, c, entry, paths[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// export runs the verified extraction pipeline for one entry.
func (e *Editor) export(src io.ReaderAt, c *Container, entry layout.Entry, outputPath string) error {
	raw, err := e.extract(src, c, entry)
	if err != nil {
		return fmt.Errorf("export %q: %w", entry.ID, err)
	}

	af, err := fileops.CreateAtomic(outputPath, fileops.Mode(outputPath, 0o644))
	if err != nil {
		return fmt.Errorf("export %q: %w", entry.ID, err)
	}
	defer af.Discard()
	if _, err := af.Write(raw); err != nil {
		return fmt.Errorf("export %q: %w", entry.ID, overlaytype.IOError("write output", err))
	}
	if err := af.Commit(nil); err != nil {
		return fmt.Errorf("export %q: %w", entry.ID, err)
	}

	if err := verifyOutput(outputPath, entry); err != nil {
		_ = os.Remove(outputPath) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("export %q: %w", entry.ID, err)
	}

	e.logger.Info("exported resource",
		slog.String("id", entry.ID),
		slog.String("output", outputPath),
		slog.Uint64("raw_length", entry.RawLength),
		slog.String("digest", entry.Checksum.Digest().String()))
	return nil
}

// extract reads, decompresses and verifies one entry's bytes.
func (e *Editor) extract(src io.ReaderAt, c *Container, entry layout.Entry) ([]byte, error) {
	boundary, err := c.Boundary(entry.ID)
	if err != nil {
		return nil, err
	}
	if available := boundary - entry.DataOffset; available != entry.StoredLength {
		return nil, &overlaytype.IntegrityError{
			ID:       entry.ID,
			Stage:    overlaytype.StagePreCheck,
			Expected: strconv.FormatUint(entry.StoredLength, 10) + " stored bytes",
			Actual:   strconv.FormatUint(available, 10) + " bytes before next block",
		}
	}

	stored, err := fileops.ReadRange(src, entry.DataOffset, entry.StoredLength)
	if err != nil {
		return nil, err
	}
	raw, err := e.decoder.Decompress(stored, entry.RawLength, int(entry.Level))
	if errors.Is(err, overlaytype.ErrCompression) {
		return nil, &overlaytype.IntegrityError{
			ID:       entry.ID,
			Stage:    overlaytype.StageDecode,
			Expected: "a valid level " + strconv.Itoa(int(entry.Level)) + " stream",
			Actual:   err.Error(),
			Err:      err,
		}
	}
	if err != nil {
		return nil, err
	}
	if uint64(len(raw)) != entry.RawLength {
		return nil, &overlaytype.IntegrityError{
			ID:       entry.ID,
			Stage:    overlaytype.StageLength,
			Expected: strconv.FormatUint(entry.RawLength, 10) + " bytes",
			Actual:   strconv.Itoa(len(raw)) + " bytes",
		}
	}
	if sum := checksum.Of(raw); sum != entry.Checksum {
		return nil, &overlaytype.IntegrityError{
			ID:       entry.ID,
			Stage:    overlaytype.StageChecksum,
			Expected: entry.Checksum.String(),
			Actual:   sum.String(),
		}
	}
	return raw, nil
}

// verifyOutput re-reads a written export and checks its length and checksum.
func verifyOutput(path string, entry layout.Entry) error {
	out, err := os.Open(path) //nolint:gosec // path was just written by us
	if err != nil {
		return overlaytype.IOError("reopen output", err)
	}
	defer out.Close()

	sum, n, err := checksum.FromReader(out)
	if err != nil {
		return overlaytype.IOError("read back output", err)
	}
	if n != entry.RawLength || sum != entry.Checksum {
		return &overlaytype.IntegrityError{
			ID:       entry.ID,
			Stage:    overlaytype.StagePostWrite,
			Expected: fmt.Sprintf("%d bytes %s", entry.RawLength, entry.Checksum),
			Actual:   fmt.Sprintf("%d bytes %s", n, sum),
		}
	}
	return nil
}
