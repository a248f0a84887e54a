package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/meigma/overlay"
	"github.com/meigma/overlay/internal/fileops"
)

// Export extracts one resource. An output naming an existing directory
// receives a file named after the resource ID.
func Export(ed *overlay.Editor, w io.Writer, target, id, output string) error {
	if err := checkTarget(target); err != nil {
		return err
	}
	output = ResolvePath(target, output)
	if info, err := os.Stat(output); err == nil && info.IsDir() {
		if !fileops.SafeName(id) {
			return fmt.Errorf("%w: %q cannot be used as a file name in %s", overlay.ErrInvalidID, id, output)
		}
		output = filepath.Join(output, id)
	}

	fmt.Fprintf(w, "Exporting resource (ID: %s) from %q to %q...\n", id, target, output)
	if err := ed.Export(target, id, output); err != nil {
		return err
	}

	fmt.Fprintln(w, "Resource exported successfully")
	return nil
}

// ExportAll extracts every resource into dir.
func ExportAll(ed *overlay.Editor, w io.Writer, target, dir string) error {
	if err := checkTarget(target); err != nil {
		return err
	}
	dir = ResolvePath(target, dir)

	fmt.Fprintf(w, "Exporting all resources from %q to %q...\n", target, dir)
	paths, err := ed.ExportAll(target, dir)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintf(w, "  %s\n", p)
	}

	fmt.Fprintf(w, "Exported %d resource(s)\n", len(paths))
	return nil
}
