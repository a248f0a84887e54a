package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand" //nolint:gosec // intentional use for reproducible benchmarks
	"net/http"
	_ "net/http/pprof" //nolint:gosec // intentional profiling endpoint
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"time"

	"github.com/meigma/overlay"
)

type config struct {
	mode          string
	resources     int
	resourceSize  int
	hostSize      int
	level         int
	pattern       string
	duration      time.Duration
	iterations    int
	exportWorkers int
	pprofAddr     string
	cpuProfile    string
	memProfile    string
	traceFile     string
	tempDir       string
	keepTemp      bool
	randomSeed    int64
}

//nolint:unused // sink variables prevent compiler optimizations in profiling
var (
	sinkSummaries []overlay.Summary
	sinkCount     int
)

//nolint:gocognit,gocyclo // main function complexity is acceptable for CLI tool
func main() {
	cfg := parseFlags()

	if cfg.pprofAddr != "" {
		go func() {
			log.Printf("pprof listening on %s", cfg.pprofAddr)
			//nolint:gosec // intentional pprof server without timeouts for profiling
			if err := http.ListenAndServe(cfg.pprofAddr, nil); err != nil {
				log.Printf("pprof server error: %v", err)
			}
		}()
	}

	dir, cleanup, err := setupTempDir(cfg)
	if err != nil {
		log.Fatal(err)
	}
	if cleanup != nil {
		defer cleanup() //nolint:errcheck // cleanup errors are non-fatal in profiler
	}

	payloads := makePayloads(cfg.resources, cfg.resourceSize, cfg.pattern, cfg.randomSeed)
	ed := overlay.New(overlay.WithExportWorkers(cfg.exportWorkers))
	host, err := buildHost(ed, dir, cfg, payloads)
	if err != nil {
		log.Fatal(err) //nolint:gocritic // exitAfterDefer is intentional - cleanup is best-effort
	}

	if cfg.cpuProfile != "" {
		cpuFile, cpuErr := os.Create(cfg.cpuProfile)
		if cpuErr != nil {
			log.Fatal(cpuErr)
		}
		if cpuErr = pprof.StartCPUProfile(cpuFile); cpuErr != nil {
			log.Fatal(cpuErr)
		}
		defer func() {
			pprof.StopCPUProfile()
			_ = cpuFile.Close()
		}()
	}

	if cfg.traceFile != "" {
		traceFile, traceErr := os.Create(cfg.traceFile)
		if traceErr != nil {
			log.Fatal(traceErr)
		}
		if traceErr = trace.Start(traceFile); traceErr != nil {
			log.Fatal(traceErr)
		}
		defer func() {
			trace.Stop()
			_ = traceFile.Close()
		}()
	}

	stats, err := runProfile(cfg, ed, host, dir, payloads)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.memProfile != "" {
		runtime.GC()
		f, err := os.Create(cfg.memProfile)
		if err != nil {
			log.Fatal(err)
		}
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal(err)
		}
		_ = f.Close()
	}

	fmt.Printf("mode=%s ops=%d bytes=%d elapsed=%s throughput=%.2f MB/s\n",
		cfg.mode,
		stats.ops,
		stats.bytes,
		stats.elapsed,
		float64(stats.bytes)/(1024*1024)/stats.elapsed.Seconds(),
	)
}

type profileStats struct {
	ops     int
	bytes   int64
	elapsed time.Duration
}

//nolint:gocognit,gocyclo,gocritic // complexity is inherent to multi-mode profiler dispatch; hugeParam acceptable for profiler
func runProfile(cfg config, ed *overlay.Editor, host, dir string, payloads [][]byte) (profileStats, error) {
	start := time.Now()
	ops := 0
	var byteCount int64

	shouldContinue := func() bool {
		if cfg.iterations > 0 {
			return ops < cfg.iterations
		}
		return time.Since(start) < cfg.duration
	}

	switch cfg.mode {
	case "export":
		out := filepath.Join(dir, "export.out")
		rng := rand.New(rand.NewSource(cfg.randomSeed)) //nolint:gosec // intentional for reproducible benchmarks
		for shouldContinue() {
			i := rng.Intn(len(payloads))
			if err := ed.Export(host, resourceID(i), out); err != nil {
				return profileStats{}, err
			}
			byteCount += int64(len(payloads[i]))
			ops++
		}

	case "export-all":
		out := filepath.Join(dir, "export-all")
		for shouldContinue() {
			paths, err := ed.ExportAll(host, out)
			if err != nil {
				return profileStats{}, err
			}
			sinkCount = len(paths)
			for _, p := range payloads {
				byteCount += int64(len(p))
			}
			ops++
		}

	case "list":
		for shouldContinue() {
			summaries, err := ed.List(host)
			if err != nil {
				return profileStats{}, err
			}
			sinkSummaries = summaries
			ops++
		}

	case "add-remove":
		// Each op appends a resource and removes the oldest one, so the
		// container keeps a constant size and every remove compacts.
		next := len(payloads)
		for shouldContinue() {
			i := next % len(payloads)
			if err := ed.Add(host, payloads[i], resourceID(next), overlay.AddWithLevel(cfg.level)); err != nil {
				return profileStats{}, err
			}
			if err := ed.Remove(host, resourceID(next-len(payloads))); err != nil {
				return profileStats{}, err
			}
			byteCount += int64(len(payloads[i]))
			next++
			ops++
		}

	default:
		return profileStats{}, fmt.Errorf("unknown mode: %s", cfg.mode)
	}

	if ops == 0 {
		return profileStats{}, errors.New("no operations completed")
	}
	return profileStats{ops: ops, bytes: byteCount, elapsed: time.Since(start)}, nil
}

func parseFlags() config {
	var cfg config
	flag.StringVar(&cfg.mode, "mode", "export", "mode: export, export-all, list, add-remove")
	flag.IntVar(&cfg.resources, "resources", 32, "number of resources attached to the host")
	flag.IntVar(&cfg.resourceSize, "resource-size", 256<<10, "size of each resource in bytes")
	flag.IntVar(&cfg.hostSize, "host-size", 4<<20, "size of the host file in bytes")
	flag.IntVar(&cfg.level, "level", overlay.LevelDefault, "compression level 0-9")
	flag.StringVar(&cfg.pattern, "pattern", "compressible", "data pattern: compressible, random")
	flag.DurationVar(&cfg.duration, "duration", 10*time.Second, "duration to run (ignored if iterations > 0)")
	flag.IntVar(&cfg.iterations, "iterations", 0, "number of iterations to run")
	flag.IntVar(&cfg.exportWorkers, "export-workers", overlay.DefaultExportWorkers, "export-all workers")
	flag.StringVar(&cfg.pprofAddr, "pprof-addr", "", "pprof listen address (e.g. :6060)")
	flag.StringVar(&cfg.cpuProfile, "cpuprofile", "", "write CPU profile to file")
	flag.StringVar(&cfg.memProfile, "memprofile", "", "write heap profile to file")
	flag.StringVar(&cfg.traceFile, "trace", "", "write trace to file")
	flag.StringVar(&cfg.tempDir, "temp-dir", "", "directory to use for the host file")
	flag.BoolVar(&cfg.keepTemp, "keep-temp", false, "keep temp dir after run")
	flag.Int64Var(&cfg.randomSeed, "seed", 1, "random seed")
	flag.Parse()
	if cfg.resources < 1 {
		log.Fatal("resources must be at least 1")
	}
	return cfg
}

func resourceID(i int) string {
	return fmt.Sprintf("res%06d", i)
}

//nolint:gocritic // hugeParam acceptable for config struct in CLI tool
func setupTempDir(cfg config) (string, func() error, error) {
	if cfg.tempDir != "" {
		return cfg.tempDir, nil, os.MkdirAll(cfg.tempDir, 0o755) //nolint:gosec // 0o755 is intentional for profiler temp dirs
	}
	dir, err := os.MkdirTemp("", "overlay-profiler-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() error {
		if cfg.keepTemp {
			return nil
		}
		return os.RemoveAll(dir)
	}
	return dir, cleanup, nil
}

func makePayloads(count, size int, pattern string, seed int64) [][]byte {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // intentional use for reproducible benchmarks
	payloads := make([][]byte, count)
	for i := range payloads {
		content := make([]byte, size)
		switch pattern {
		case "random":
			_, _ = rng.Read(content) //nolint:errcheck // math/rand Read never fails
		default:
			fillByte := byte('a' + (i % 26))
			for j := range content {
				content[j] = fillByte
			}
			if len(content) > 0 {
				content[0] = byte(i)
			}
		}
		payloads[i] = content
	}
	return payloads
}

//nolint:gocritic // hugeParam acceptable for config struct in CLI tool
func buildHost(ed *overlay.Editor, dir string, cfg config, payloads [][]byte) (string, error) {
	host := filepath.Join(dir, "host.bin")
	if err := os.WriteFile(host, make([]byte, cfg.hostSize), 0o755); err != nil { //nolint:gosec // host stands in for an executable
		return "", err
	}
	for i, p := range payloads {
		if err := ed.Add(host, p, resourceID(i), overlay.AddWithLevel(cfg.level)); err != nil {
			return "", err
		}
	}
	return host, nil
}
