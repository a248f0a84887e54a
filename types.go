package overlay

import (
	"github.com/meigma/overlay/internal/checksum"
	"github.com/meigma/overlay/internal/index"
	"github.com/meigma/overlay/internal/layout"
	"github.com/meigma/overlay/internal/overlaytype"
)

// --- Re-exports from internal packages ---

// Entry is a table record describing one attached resource.
type Entry = layout.Entry

// Container is the decoded overlay of a host file.
type Container = index.Container

// Checksum is the SHA-256 of a resource's raw bytes.
type Checksum = checksum.Sum

// Compression levels.
const (
	// LevelNone stores resources verbatim.
	LevelNone = overlaytype.LevelNone

	// LevelDefault is the level used when none is requested.
	LevelDefault = overlaytype.LevelDefault

	// LevelMax is the highest compression level.
	LevelMax = overlaytype.LevelMax
)

// Format constants.
const (
	// FooterSize is the size of the trailer at the end of every container.
	FooterSize = layout.FooterSize

	// MaxIDLength is the longest resource ID, in bytes.
	MaxIDLength = layout.MaxIDLength
)
