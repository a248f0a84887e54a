package commands

import (
	"encoding/json"
	"fmt"
	"io"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/meigma/overlay"
	"github.com/meigma/overlay/internal/config"
)

// ListParams holds the arguments of the list command.
type ListParams struct {
	Target string

	// ID restricts the listing when HasID is set.
	ID    string
	HasID bool

	// Format is config.FormatTable or config.FormatJSON.
	Format string
}

// List prints the resources of the target.
func List(ed *overlay.Editor, w io.Writer, p ListParams) error {
	if err := checkTarget(p.Target); err != nil {
		return err
	}

	var opts []overlay.ListOption
	if p.HasID {
		opts = append(opts, overlay.ListWithID(p.ID))
	}
	summaries, err := ed.List(p.Target, opts...)
	if err != nil {
		return err
	}

	if p.Format == config.FormatJSON {
		descriptors := make([]ocispec.Descriptor, len(summaries))
		for i, s := range summaries {
			descriptors[i] = s.Descriptor()
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(descriptors)
	}

	fmt.Fprintf(w, "Listing resources from %q:\n", p.Target)
	if len(summaries) > 0 {
		fmt.Fprintf(w, "%-24s %-12s %-12s %-6s %s\n", "ID", "SIZE", "STORED", "LEVEL", "DIGEST")
		for _, s := range summaries {
			fmt.Fprintf(w, "%-24s %-12s %-12s %-6d %s\n",
				s.ID,
				formatBytes(s.RawLength, 2),
				formatBytes(s.StoredLength, 2),
				s.Level,
				s.Checksum.Short(),
			)
		}
	}
	fmt.Fprintf(w, "Found %d resource(s)\n", len(summaries))
	return nil
}
