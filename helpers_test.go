package overlay

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meigma/overlay/internal/testutil"
)

// newHost writes a host file of n bytes into a fresh temp dir.
func newHost(tb testing.TB, n int) (path string, host []byte) {
	tb.Helper()
	host = testutil.HostBytes(n)
	return testutil.WriteHost(tb, tb.TempDir(), "host.bin", host), host
}

// testEditor returns an Editor that logs to the test output buffer.
func testEditor(tb testing.TB, opts ...Option) (*Editor, *bytes.Buffer) {
	tb.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(append([]Option{WithLogger(logger)}, opts...)...), &buf
}

// mustExport exports id from target and returns the bytes written.
func mustExport(tb testing.TB, e *Editor, target, id string) []byte {
	tb.Helper()
	out := filepath.Join(tb.TempDir(), "out")
	require.NoError(tb, e.Export(target, id, out))
	return testutil.ReadFile(tb, out)
}

// listIDs returns the IDs of target's resources in listing order.
func listIDs(tb testing.TB, e *Editor, target string) []string {
	tb.Helper()
	summaries, err := e.List(target)
	require.NoError(tb, err)
	ids := make([]string, len(summaries))
	for i, s := range summaries {
		ids[i] = s.ID
	}
	return ids
}
