package overlay

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/meigma/overlay/internal/testutil"
)

var (
	benchSinkSummaries []Summary
	errBenchSink       error //nolint:errname // not a sentinel error, just a sink variable
)

type benchPattern string

const (
	benchPatternCompressible benchPattern = "compressible"
	benchPatternRandom       benchPattern = "random"
)

func benchPayload(size int, pattern benchPattern) []byte {
	if pattern == benchPatternRandom {
		return testutil.RandomBytes(size, uint64(size))
	}
	b := make([]byte, size)
	for i := range b {
		b[i] = byte('a' + (i/64)%26)
	}
	return b
}

// benchHost writes a host of hostSize bytes with count resources attached.
func benchHost(b *testing.B, hostSize, count, size, level int, pattern benchPattern) (string, *Editor) {
	b.Helper()
	e := New()
	target := testutil.WriteHost(b, b.TempDir(), "host.bin", testutil.HostBytes(hostSize))
	payload := benchPayload(size, pattern)
	for i := range count {
		if err := e.Add(target, payload, "res"+strconv.Itoa(i), AddWithLevel(level)); err != nil {
			b.Fatal(err)
		}
	}
	return target, e
}

func BenchmarkAdd(b *testing.B) {
	cases := []struct {
		size    int
		level   int
		pattern benchPattern
	}{
		{size: 64 << 10, level: 0, pattern: benchPatternCompressible},
		{size: 64 << 10, level: 1, pattern: benchPatternCompressible},
		{size: 64 << 10, level: 9, pattern: benchPatternCompressible},
		{size: 1 << 20, level: 1, pattern: benchPatternRandom},
	}

	for _, tc := range cases {
		name := fmt.Sprintf("size=%dk/level=%d/%s", tc.size>>10, tc.level, tc.pattern)
		b.Run(name, func(b *testing.B) {
			payload := benchPayload(tc.size, tc.pattern)
			dir := b.TempDir()
			host := testutil.HostBytes(1 << 20)
			b.SetBytes(int64(tc.size))
			b.ReportAllocs()
			for b.Loop() {
				b.StopTimer()
				target := filepath.Join(dir, "host.bin")
				if err := os.WriteFile(target, host, 0o644); err != nil {
					b.Fatal(err)
				}
				b.StartTimer()
				errBenchSink = New().Add(target, payload, "res", AddWithLevel(tc.level))
				if errBenchSink != nil {
					b.Fatal(errBenchSink)
				}
			}
		})
	}
}

func BenchmarkExport(b *testing.B) {
	for _, level := range []int{0, 1, 9} {
		b.Run("level="+strconv.Itoa(level), func(b *testing.B) {
			const size = 256 << 10
			target, e := benchHost(b, 1<<20, 8, size, level, benchPatternCompressible)
			out := filepath.Join(b.TempDir(), "out")
			b.SetBytes(size)
			b.ReportAllocs()
			for b.Loop() {
				if err := e.Export(target, "res3", out); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkList(b *testing.B) {
	target, e := benchHost(b, 1<<20, 256, 1<<10, 0, benchPatternCompressible)
	b.ReportAllocs()
	for b.Loop() {
		benchSinkSummaries, errBenchSink = e.List(target)
		if errBenchSink != nil {
			b.Fatal(errBenchSink)
		}
	}
}

func BenchmarkRemoveCompaction(b *testing.B) {
	const count = 16
	const size = 128 << 10
	target, e := benchHost(b, 1<<20, count, size, 0, benchPatternRandom)
	snapshot := testutil.ReadFile(b, target)
	b.SetBytes(int64(size * (count - 1)))
	b.ReportAllocs()
	for b.Loop() {
		b.StopTimer()
		if err := os.WriteFile(target, snapshot, 0o644); err != nil {
			b.Fatal(err)
		}
		b.StartTimer()
		if err := e.Remove(target, "res0"); err != nil {
			b.Fatal(err)
		}
	}
}
