package layout

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/overlay/internal/checksum"
	"github.com/meigma/overlay/internal/overlaytype"
)

func TestFooterSize(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 44, FooterSize)
	assert.Len(t, EncodeFooter(Footer{Version: Version}), FooterSize)
	assert.Equal(t, len(Magic), MagicSize)
}

func TestFooterSizeInOffsetArithmetic(t *testing.T) {
	t.Parallel()

	// Sizes are combined with uint64 offsets and int lengths alike.
	var tableOffset uint64 = 100
	end := tableOffset + 3 + FooterSize
	assert.Equal(t, uint64(147), end)
	assert.Len(t, make([]byte, FooterSize+6)[FooterSize:], 6)
}

func TestFooterRoundTrip(t *testing.T) {
	t.Parallel()

	f := Footer{Version: Version, TableOffset: 150, TableLength: 113, EntryCount: 1}
	buf := EncodeFooter(f)

	assert.Equal(t, Magic[:], buf[:MagicSize])
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[16:20]))
	assert.Equal(t, uint64(150), binary.LittleEndian.Uint64(buf[20:28]))

	got, ok, err := DecodeFooter(buf)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, f, got)
}

func TestDecodeFooter(t *testing.T) {
	t.Parallel()

	valid := EncodeFooter(Footer{Version: Version})

	tests := []struct {
		name    string
		buf     []byte
		wantOK  bool
		wantErr error
	}{
		{name: "short", buf: valid[:FooterSize-1]},
		{name: "zeros", buf: make([]byte, FooterSize)},
		{
			name: "magic off by one byte",
			buf: func() []byte {
				b := bytes.Clone(valid)
				b[1] = 'o'
				return b
			}(),
		},
		{
			name: "unknown version",
			buf: func() []byte {
				b := bytes.Clone(valid)
				binary.LittleEndian.PutUint32(b[MagicSize:], 2)
				return b
			}(),
			wantOK:  true,
			wantErr: overlaytype.ErrInvalidContainer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, ok, err := DecodeFooter(tt.buf)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateID(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, ValidateID(""), overlaytype.ErrInvalidID)
	assert.NoError(t, ValidateID("a"))
	assert.NoError(t, ValidateID(strings.Repeat("x", MaxIDLength)))
	assert.ErrorIs(t, ValidateID(strings.Repeat("x", MaxIDLength+1)), overlaytype.ErrInvalidID)
	// IDs are opaque bytes.
	assert.NoError(t, ValidateID("a/b\x00\xff"))
}

func sampleEntries() []Entry {
	return []Entry{
		{ID: "Archive", DataOffset: 100, StoredLength: 30, RawLength: 50, Level: 5, Checksum: checksum.Of([]byte("one"))},
		{ID: "b", DataOffset: 130, StoredLength: 7, RawLength: 7, Level: 0, Checksum: checksum.Of([]byte("two"))},
	}
}

func TestTableRoundTrip(t *testing.T) {
	t.Parallel()

	entries := sampleEntries()
	buf, err := EncodeTable(entries)
	require.NoError(t, err)
	assert.Len(t, buf, RecordSize(entries[0])+RecordSize(entries[1]))
	assert.Equal(t, 1+7+57, RecordSize(entries[0]))

	got, err := DecodeTable(buf, uint64(len(entries)))
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestEncodeTableEmpty(t *testing.T) {
	t.Parallel()

	buf, err := EncodeTable(nil)
	require.NoError(t, err)
	assert.Empty(t, buf)

	got, err := DecodeTable(buf, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEncodeTableRejects(t *testing.T) {
	t.Parallel()

	_, err := EncodeTable([]Entry{{ID: ""}})
	assert.ErrorIs(t, err, overlaytype.ErrInvalidID)

	_, err = EncodeTable([]Entry{{ID: "a", Level: 10}})
	assert.ErrorIs(t, err, overlaytype.ErrCompression)
}

func TestDecodeTableInvalid(t *testing.T) {
	t.Parallel()

	good, err := EncodeTable(sampleEntries())
	require.NoError(t, err)

	tests := []struct {
		name  string
		buf   []byte
		count uint64
	}{
		{name: "truncated", buf: good[:len(good)-1], count: 2},
		{name: "trailing bytes", buf: append(bytes.Clone(good), 0), count: 2},
		{name: "count too small", buf: good, count: 1},
		{name: "count too large", buf: good, count: 3},
		{name: "huge count", buf: good, count: 1 << 60},
		{
			name: "zero id length",
			buf: func() []byte {
				b := bytes.Clone(good)
				b[0] = 0
				return b
			}(),
			count: 2,
		},
		{
			name: "id length above maximum",
			buf: func() []byte {
				b := bytes.Clone(good)
				b[0] = MaxIDLength + 1
				return b
			}(),
			count: 2,
		},
		{
			name: "level out of range",
			buf: func() []byte {
				b := bytes.Clone(good)
				b[1+7+24] = 10
				return b
			}(),
			count: 2,
		},
		{
			name: "level zero with differing lengths",
			buf: func() []byte {
				b := bytes.Clone(good)
				b[1+7+24] = 0
				return b
			}(),
			count: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeTable(tt.buf, tt.count)
			assert.ErrorIs(t, err, overlaytype.ErrInvalidContainer)
		})
	}
}

func TestEntryEnd(t *testing.T) {
	t.Parallel()
	assert.Equal(t, uint64(130), sampleEntries()[0].End())
}
