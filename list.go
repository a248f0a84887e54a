package overlay

import (
	"fmt"
	"strconv"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Summary describes one attached resource.
type Summary struct {
	ID           string
	RawLength    uint64
	StoredLength uint64
	Level        uint8
	Checksum     Checksum
}

// Ratio returns StoredLength / RawLength, or 1 for empty resources.
func (s Summary) Ratio() float64 {
	if s.RawLength == 0 {
		return 1
	}
	return float64(s.StoredLength) / float64(s.RawLength)
}

// Descriptor renders the resource as an OCI content descriptor of its raw
// bytes. The ID is recorded as the title annotation.
func (s Summary) Descriptor() ocispec.Descriptor {
	return ocispec.Descriptor{
		MediaType: MediaTypeResource,
		Digest:    s.Checksum.Digest(),
		Size:      int64(s.RawLength), //nolint:gosec // bounded by the file size
		Annotations: map[string]string{
			ocispec.AnnotationTitle: s.ID,
			AnnotationLevel:         strconv.Itoa(int(s.Level)),
			AnnotationStoredSize:    strconv.FormatUint(s.StoredLength, 10),
		},
	}
}

// List describes the resources of target in the order they were added.
// Nothing is decompressed and the file is not modified.
func (e *Editor) List(target string, opts ...ListOption) ([]Summary, error) {
	var cfg listConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	c, err := e.Load(target)
	if err != nil {
		return nil, err
	}

	if cfg.hasID {
		entry, err := c.Table.Lookup(cfg.id)
		if err != nil {
			return nil, fmt.Errorf("list %q: %w", cfg.id, err)
		}
		return []Summary{summarize(entry)}, nil
	}

	summaries := make([]Summary, 0, c.Table.Len())
	for entry := range c.Table.All() {
		summaries = append(summaries, summarize(entry))
	}
	return summaries, nil
}

func summarize(e Entry) Summary {
	return Summary{
		ID:           e.ID,
		RawLength:    e.RawLength,
		StoredLength: e.StoredLength,
		Level:        e.Level,
		Checksum:     e.Checksum,
	}
}
