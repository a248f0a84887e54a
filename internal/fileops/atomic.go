// Package fileops provides the file plumbing shared by overlay operations:
// atomic replacement of a destination through a temp file, and bounded
// range copies out of a source file.
package fileops

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/meigma/overlay/internal/overlaytype"
)

// tempPattern names temp files so stray ones are recognisable.
const tempPattern = ".overlay-*"

// AtomicFile is a temp file that replaces its destination on Commit.
//
// The temp file lives in the destination directory so the final rename never
// crosses a filesystem. Until Commit succeeds the destination is untouched;
// Discard (safe to call after Commit) removes any leftovers.
type AtomicFile struct {
	dest string
	perm fs.FileMode
	file *os.File
	done bool
}

// CreateAtomic opens a temp file that will become dest with the given
// permission bits.
func CreateAtomic(dest string, perm fs.FileMode) (*AtomicFile, error) {
	f, err := os.CreateTemp(filepath.Dir(dest), tempPattern)
	if err != nil {
		return nil, overlaytype.IOError("create temp file", err)
	}
	return &AtomicFile{dest: dest, perm: perm.Perm(), file: f}, nil
}

// Write implements io.Writer.
func (a *AtomicFile) Write(p []byte) (int, error) {
	return a.file.Write(p)
}

// Name returns the temp file path.
func (a *AtomicFile) Name() string {
	return a.file.Name()
}

// Commit applies permissions, flushes the temp file to stable storage, runs
// verify against it, and renames it over the destination.
//
// verify may be nil. On any failure the temp file is removed and the
// destination keeps its previous content.
func (a *AtomicFile) Commit(verify func(*os.File) error) error {
	if a.done {
		return fmt.Errorf("%w: commit %s: already finished", overlaytype.ErrIO, a.dest)
	}
	a.done = true
	tempPath := a.file.Name()

	fail := func(err error) error {
		_ = a.file.Close()      //nolint:errcheck // we're cleaning up
		_ = os.Remove(tempPath) //nolint:errcheck // best-effort cleanup
		return err
	}

	if err := a.file.Chmod(a.perm); err != nil {
		return fail(overlaytype.IOError("chmod temp file", err))
	}
	if err := a.file.Sync(); err != nil {
		return fail(overlaytype.IOError("sync temp file", err))
	}
	if verify != nil {
		if err := verify(a.file); err != nil {
			return fail(err)
		}
	}
	if err := a.file.Close(); err != nil {
		_ = os.Remove(tempPath) //nolint:errcheck // best-effort cleanup
		return overlaytype.IOError("close temp file", err)
	}
	if err := os.Rename(tempPath, a.dest); err != nil {
		_ = os.Remove(tempPath) //nolint:errcheck // best-effort cleanup
		return overlaytype.IOError("rename to "+a.dest, err)
	}
	return nil
}

// Discard closes and removes the temp file if Commit has not run.
func (a *AtomicFile) Discard() {
	if a.done {
		return
	}
	a.done = true
	_ = a.file.Close()           //nolint:errcheck // we're cleaning up
	_ = os.Remove(a.file.Name()) //nolint:errcheck // best-effort cleanup
}

// Mode returns the permission bits of path, or fallback if it cannot be
// stat'ed.
func Mode(path string, fallback fs.FileMode) fs.FileMode {
	info, err := os.Stat(path)
	if err != nil {
		return fallback
	}
	return info.Mode().Perm()
}
