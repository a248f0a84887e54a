package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meigma/overlay/internal/checksum"
	"github.com/meigma/overlay/internal/layout"
)

// Block is an uncompressed resource appended by BuildContainer.
type Block struct {
	ID   string
	Data []byte
}

// BuildContainer appends blocks (stored at level 0), a table and a footer to
// host, returning the bytes and the entries as written.
func BuildContainer(tb testing.TB, host []byte, blocks ...Block) ([]byte, []layout.Entry) {
	tb.Helper()

	out := append([]byte(nil), host...)
	entries := make([]layout.Entry, 0, len(blocks))
	for _, b := range blocks {
		entries = append(entries, layout.Entry{
			ID:           b.ID,
			DataOffset:   uint64(len(out)),
			StoredLength: uint64(len(b.Data)),
			RawLength:    uint64(len(b.Data)),
			Checksum:     checksum.Of(b.Data),
		})
		out = append(out, b.Data...)
	}
	return Seal(tb, out, entries), entries
}

// Seal appends the table for entries and a footer to data, which must
// already hold every block. Tests use it to build containers that
// BuildContainer would refuse to lay out.
func Seal(tb testing.TB, data []byte, entries []layout.Entry) []byte {
	tb.Helper()

	table, err := layout.EncodeTable(entries)
	require.NoError(tb, err)
	footer := layout.EncodeFooter(layout.Footer{
		Version:     layout.Version,
		TableOffset: uint64(len(data)),
		TableLength: uint64(len(table)),
		EntryCount:  uint64(len(entries)),
	})
	out := append([]byte(nil), data...)
	out = append(out, table...)
	return append(out, footer...)
}
