package index

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/overlay/internal/layout"
	"github.com/meigma/overlay/internal/overlaytype"
	"github.com/meigma/overlay/internal/testutil"
)

// mustLoad loads a container or fails the test.
func mustLoad(tb testing.TB, data []byte) *Container {
	tb.Helper()
	src := testutil.NewMockByteSource(data)
	c, err := Load(src, src.Size())
	require.NoError(tb, err, "Load failed")
	return c
}

func loadErr(data []byte) error {
	src := testutil.NewMockByteSource(data)
	_, err := Load(src, src.Size())
	return err
}

func TestLoadFresh(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty file", data: nil},
		{name: "shorter than footer", data: testutil.HostBytes(layout.FooterSize - 1)},
		{name: "plain host", data: testutil.HostBytes(100)},
		{name: "footer-sized zeros", data: make([]byte, layout.FooterSize)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := mustLoad(t, tt.data)
			size := uint64(len(tt.data))
			assert.False(t, c.HasFooter)
			assert.Equal(t, size, c.BaseLength)
			assert.Equal(t, size, c.TableOffset)
			assert.Equal(t, size, c.FileLength)
			assert.Zero(t, c.TableLength)
			assert.Equal(t, 0, c.Table.Len())
		})
	}
}

func TestLoadContainer(t *testing.T) {
	t.Parallel()

	host := testutil.HostBytes(100)
	data, entries := testutil.BuildContainer(t, host,
		testutil.Block{ID: "Archive", Data: []byte("archive bytes")},
		testutil.Block{ID: "notes", Data: []byte("n")},
	)

	c := mustLoad(t, data)
	assert.True(t, c.HasFooter)
	assert.Equal(t, uint64(100), c.BaseLength)
	assert.Equal(t, uint64(114), c.TableOffset)
	assert.Equal(t, uint64(len(data)), c.FileLength)
	assert.Equal(t, uint64(14), c.DataLength())
	assert.Equal(t, entries, c.Table.Entries())
}

func TestLoadEmptyTable(t *testing.T) {
	t.Parallel()

	data, _ := testutil.BuildContainer(t, testutil.HostBytes(100))
	c := mustLoad(t, data)
	assert.True(t, c.HasFooter)
	assert.Equal(t, uint64(100), c.BaseLength)
	assert.Equal(t, uint64(100), c.TableOffset)
	assert.Equal(t, 0, c.Table.Len())
}

func TestLoadInvalid(t *testing.T) {
	t.Parallel()

	host := testutil.HostBytes(64)
	block := []byte("0123456789")

	tests := []struct {
		name string
		data func(t *testing.T) []byte
	}{
		{
			name: "table offset past end",
			data: func(t *testing.T) []byte {
				data, _ := testutil.BuildContainer(t, host, testutil.Block{ID: "a", Data: block})
				footer := layout.EncodeFooter(layout.Footer{Version: layout.Version, TableOffset: 1 << 40, TableLength: 10, EntryCount: 1})
				return append(data[:len(data)-layout.FooterSize], footer...)
			},
		},
		{
			name: "offset arithmetic overflows",
			data: func(t *testing.T) []byte {
				data, _ := testutil.BuildContainer(t, host)
				footer := layout.EncodeFooter(layout.Footer{Version: layout.Version, TableOffset: ^uint64(0), TableLength: 2})
				return append(data[:len(data)-layout.FooterSize], footer...)
			},
		},
		{
			name: "entry count mismatch",
			data: func(t *testing.T) []byte {
				data, _ := testutil.BuildContainer(t, host, testutil.Block{ID: "a", Data: block})
				f, ok, err := layout.DecodeFooter(data[len(data)-layout.FooterSize:])
				require.NoError(t, err)
				require.True(t, ok)
				f.EntryCount = 2
				return append(data[:len(data)-layout.FooterSize], layout.EncodeFooter(f)...)
			},
		},
		{
			name: "duplicate ids",
			data: func(t *testing.T) []byte {
				body := append(bytes.Clone(host), block...)
				body = append(body, block...)
				return testutil.Seal(t, body, []layout.Entry{
					{ID: "a", DataOffset: 64, StoredLength: 10, RawLength: 10},
					{ID: "a", DataOffset: 74, StoredLength: 10, RawLength: 10},
				})
			},
		},
		{
			name: "block runs into table",
			data: func(t *testing.T) []byte {
				body := append(bytes.Clone(host), block...)
				return testutil.Seal(t, body, []layout.Entry{
					{ID: "a", DataOffset: 64, StoredLength: 11, RawLength: 11},
				})
			},
		},
		{
			name: "overlapping blocks",
			data: func(t *testing.T) []byte {
				body := append(bytes.Clone(host), block...)
				return testutil.Seal(t, body, []layout.Entry{
					{ID: "a", DataOffset: 64, StoredLength: 6, RawLength: 6},
					{ID: "b", DataOffset: 68, StoredLength: 6, RawLength: 6},
				})
			},
		},
		{
			name: "unknown version",
			data: func(t *testing.T) []byte {
				data, _ := testutil.BuildContainer(t, host)
				footer := layout.EncodeFooter(layout.Footer{Version: 9, TableOffset: 64})
				return append(data[:len(data)-layout.FooterSize], footer...)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := loadErr(tt.data(t))
			assert.ErrorIs(t, err, overlaytype.ErrInvalidContainer)
		})
	}
}

func TestLoadDerivesBaseFromLowestBlock(t *testing.T) {
	t.Parallel()

	// A gap between host and first block is attributed to the host.
	host := testutil.HostBytes(80)
	body := append(bytes.Clone(host), []byte("abcde")...)
	data := testutil.Seal(t, body, []layout.Entry{
		{ID: "a", DataOffset: 82, StoredLength: 3, RawLength: 3},
	})

	c := mustLoad(t, data)
	assert.Equal(t, uint64(82), c.BaseLength)
	assert.Equal(t, uint64(85), c.TableOffset)
}

func TestContainerBoundary(t *testing.T) {
	t.Parallel()

	data, _ := testutil.BuildContainer(t, testutil.HostBytes(10),
		testutil.Block{ID: "first", Data: []byte("12345")},
		testutil.Block{ID: "empty", Data: nil},
		testutil.Block{ID: "last", Data: []byte("678")},
	)
	c := mustLoad(t, data)

	tests := []struct {
		id   string
		want uint64
	}{
		{id: "first", want: 15},
		{id: "empty", want: 15},
		{id: "last", want: 18},
	}
	for _, tt := range tests {
		got, err := c.Boundary(tt.id)
		require.NoError(t, err, tt.id)
		assert.Equal(t, tt.want, got, tt.id)
	}

	_, err := c.Boundary("nope")
	assert.ErrorIs(t, err, overlaytype.ErrNotFound)
}
