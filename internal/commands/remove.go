package commands

import (
	"fmt"
	"io"

	"github.com/meigma/overlay"
)

// Remove detaches a resource from the target, optionally writing the result
// to newFile.
func Remove(ed *overlay.Editor, w io.Writer, target, id, newFile string) error {
	if err := checkTarget(target); err != nil {
		return err
	}
	newFile = ResolvePath(target, newFile)

	fmt.Fprintf(w, "Removing resource (ID: %s) from %q...\n", id, target)

	var opts []overlay.RemoveOption
	if newFile != "" {
		opts = append(opts, overlay.RemoveWithOutput(newFile))
	}
	if err := ed.Remove(target, id, opts...); err != nil {
		return err
	}

	fmt.Fprintln(w, "Resource removed successfully")
	return nil
}
