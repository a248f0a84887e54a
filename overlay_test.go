package overlay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/overlay/internal/testutil"
)

// TestLifecycle walks a single host through add, list, export and remove.
func TestLifecycle(t *testing.T) {
	t.Parallel()

	target, host := newHost(t, 100)
	archive := testutil.RandomBytes(50, 42)

	require.NoError(t, Add(target, archive, "Archive", AddWithLevel(5)))

	summaries, err := List(target)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Archive", summaries[0].ID)
	assert.Equal(t, uint64(50), summaries[0].RawLength)

	out := filepath.Join(t.TempDir(), "archive.out")
	require.NoError(t, Export(target, "Archive", out))
	assert.Equal(t, archive, testutil.ReadFile(t, out))

	require.NoError(t, Remove(target, "Archive"))
	summaries, err = List(target)
	require.NoError(t, err)
	assert.Empty(t, summaries)

	got := testutil.ReadFile(t, target)
	assert.Len(t, got, 100+FooterSize)
	assert.Equal(t, host, got[:100])
}

func TestLoadDefaultEditor(t *testing.T) {
	t.Parallel()

	target, _ := newHost(t, 64)
	c, err := Load(target)
	require.NoError(t, err)
	assert.False(t, c.HasFooter)
	assert.Equal(t, uint64(64), c.BaseLength)

	require.NoError(t, AddFile(target, target, "self", AddWithLevel(9)))
	c, err = Load(target)
	require.NoError(t, err)
	assert.True(t, c.HasFooter)
	assert.Equal(t, 1, c.Table.Len())

	dir := t.TempDir()
	paths, err := ExportAll(target, dir)
	require.NoError(t, err)
	require.Equal(t, []string{filepath.Join(dir, "self")}, paths)
	assert.Equal(t, testutil.HostBytes(64), testutil.ReadFile(t, paths[0]))
}

func TestNewNilLogger(t *testing.T) {
	t.Parallel()

	e := New(WithLogger(nil), WithExportWorkers(0))
	assert.NotNil(t, e.logger)
	assert.Equal(t, 1, e.exportWorkers)

	target, _ := newHost(t, 5)
	require.NoError(t, e.Add(target, []byte("x"), "x"))
}

func TestMutationsAreAtomic(t *testing.T) {
	t.Parallel()

	e, _ := testEditor(t)
	target, _ := newHost(t, 10)
	require.NoError(t, e.Add(target, []byte("x"), "x"))
	before := testutil.ReadFile(t, target)

	// Make the directory read-only so the temp file cannot be created.
	dir := filepath.Dir(target)
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o700) })

	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	err := e.Add(target, []byte("y"), "y")
	require.ErrorIs(t, err, ErrIO)
	err = e.Remove(target, "x")
	require.ErrorIs(t, err, ErrIO)
	assert.Equal(t, before, testutil.ReadFile(t, target))
}
