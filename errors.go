package overlay

import "github.com/meigma/overlay/internal/overlaytype"

// Errors re-exported from overlaytype.
var (
	// ErrInvalidID is returned when a resource ID is empty, longer than 63
	// bytes, or (for ExportAll) not usable as a file name.
	ErrInvalidID = overlaytype.ErrInvalidID

	// ErrDuplicateID is returned when adding a resource whose ID is already present.
	ErrDuplicateID = overlaytype.ErrDuplicateID

	// ErrNotFound is returned when a resource ID is not present.
	ErrNotFound = overlaytype.ErrNotFound

	// ErrInvalidContainer is returned when the footer or table is malformed.
	ErrInvalidContainer = overlaytype.ErrInvalidContainer

	// ErrIntegrityMismatch is returned when resource content fails verification.
	// The concrete error is an [*IntegrityError].
	ErrIntegrityMismatch = overlaytype.ErrIntegrityMismatch

	// ErrCompression is returned for an invalid level or a corrupt compressed stream.
	ErrCompression = overlaytype.ErrCompression

	// ErrIO is returned when a read, write, sync, or rename fails.
	ErrIO = overlaytype.ErrIO

	// ErrSizeLimit is returned when a resource exceeds the configured maximum
	// or an offset would not fit in the format.
	ErrSizeLimit = overlaytype.ErrSizeLimit
)

// IntegrityError reports which verification stage rejected a resource.
type IntegrityError = overlaytype.IntegrityError

// IntegrityStage identifies a verification step of Export.
type IntegrityStage = overlaytype.IntegrityStage

// Verification stages.
const (
	StagePreCheck  = overlaytype.StagePreCheck
	StageDecode    = overlaytype.StageDecode
	StageLength    = overlaytype.StageLength
	StageChecksum  = overlaytype.StageChecksum
	StagePostWrite = overlaytype.StagePostWrite
)
