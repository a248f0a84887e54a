package commands

import (
	"fmt"
	"io"

	"github.com/meigma/overlay"
)

// AddParams holds the arguments of the add command.
type AddParams struct {
	Target   string
	Resource string
	ID       string
	NewFile  string
	Level    int
}

// Add attaches the resource file to the target.
func Add(ed *overlay.Editor, w io.Writer, p AddParams) error {
	if err := checkTarget(p.Target); err != nil {
		return err
	}
	resource := ResolvePath(p.Target, p.Resource)
	newFile := ResolvePath(p.Target, p.NewFile)

	fmt.Fprintf(w, "Adding resource %q (ID: %s) to %q...\n", resource, p.ID, p.Target)

	opts := []overlay.AddOption{overlay.AddWithLevel(p.Level)}
	if newFile != "" {
		opts = append(opts, overlay.AddWithOutput(newFile))
	}
	if err := ed.AddFile(p.Target, resource, p.ID, opts...); err != nil {
		return err
	}

	fmt.Fprintln(w, "Resource added successfully")
	return nil
}
