package fileops

import (
	"errors"
	"fmt"
	"io"

	"github.com/meigma/overlay/internal/overlaytype"
	"github.com/meigma/overlay/internal/sizing"
)

// copyBufferSize is the buffer used for range copies.
const copyBufferSize = 1 << 20

// CopyRange copies exactly n bytes starting at off in src to dst.
// A source that ends early is an ErrIO error wrapping io.ErrUnexpectedEOF.
func CopyRange(dst io.Writer, src io.ReaderAt, off, n uint64, buf []byte) error {
	start, err := sizing.ToInt64(off)
	if err != nil {
		return err
	}
	length, err := sizing.ToInt64(n)
	if err != nil {
		return err
	}
	if buf == nil {
		buf = make([]byte, copyBufferSize)
	}
	section := io.NewSectionReader(src, start, length)
	copied, err := io.CopyBuffer(dst, onlyReader{section}, buf)
	if err != nil {
		return overlaytype.IOError(fmt.Sprintf("copy [%d, +%d)", off, n), err)
	}
	if copied != length {
		return overlaytype.IOError(fmt.Sprintf("copy [%d, +%d)", off, n), io.ErrUnexpectedEOF)
	}
	return nil
}

// ReadRange reads exactly n bytes at off from src.
func ReadRange(src io.ReaderAt, off, n uint64) ([]byte, error) {
	start, err := sizing.ToInt64(off)
	if err != nil {
		return nil, err
	}
	size, err := sizing.ToInt(n)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	read, err := src.ReadAt(buf, start)
	if read == size && (err == nil || errors.Is(err, io.EOF)) {
		return buf, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return nil, overlaytype.IOError(fmt.Sprintf("read [%d, +%d)", off, n), err)
}

// onlyReader hides WriterTo so io.CopyBuffer uses the supplied buffer.
type onlyReader struct {
	io.Reader
}

// CountingWriter wraps a writer and counts bytes written.
type CountingWriter struct {
	W io.Writer
	N uint64
}

// Write implements io.Writer.
func (cw *CountingWriter) Write(p []byte) (int, error) {
	n, err := cw.W.Write(p)
	if n > 0 {
		cw.N += uint64(n) //nolint:gosec // n is non-negative per the io.Writer contract
	}
	return n, err
}
