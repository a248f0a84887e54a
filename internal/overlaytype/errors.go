// Package overlaytype holds the types and sentinel errors shared by the
// overlay packages.
package overlaytype

import (
	"errors"
	"fmt"
)

// Sentinel errors for overlay operations.
var (
	// ErrInvalidID is returned when a resource ID is empty or too long.
	ErrInvalidID = errors.New("overlay: invalid resource id")

	// ErrDuplicateID is returned when adding a resource whose ID is already present.
	ErrDuplicateID = errors.New("overlay: duplicate resource id")

	// ErrNotFound is returned when a resource ID is not present in the table.
	ErrNotFound = errors.New("overlay: resource not found")

	// ErrInvalidContainer is returned when the footer or table is malformed.
	ErrInvalidContainer = errors.New("overlay: invalid container")

	// ErrIntegrityMismatch is returned when resource content fails verification.
	ErrIntegrityMismatch = errors.New("overlay: integrity mismatch")

	// ErrCompression is returned when compressing or decompressing fails.
	ErrCompression = errors.New("overlay: compression failed")

	// ErrIO is returned when an underlying read, write, or rename fails.
	ErrIO = errors.New("overlay: i/o failure")

	// ErrSizeLimit is returned when a size exceeds what the format can address.
	ErrSizeLimit = errors.New("overlay: size limit exceeded")
)

// IntegrityStage identifies which verification step detected corruption.
type IntegrityStage uint8

const (
	// StagePreCheck compares the recorded stored length with the bytes
	// actually available for the block.
	StagePreCheck IntegrityStage = iota + 1

	// StageDecode decompresses the stored block; a malformed stream means
	// the stored bytes were damaged.
	StageDecode

	// StageLength compares the decompressed length with the raw length.
	StageLength

	// StageChecksum compares the digest of the decompressed bytes with the
	// recorded checksum.
	StageChecksum

	// StagePostWrite re-reads the written output and compares length and digest.
	StagePostWrite
)

// String returns the human-readable name of the stage.
func (s IntegrityStage) String() string {
	switch s {
	case StagePreCheck:
		return "pre-check"
	case StageDecode:
		return "decode"
	case StageLength:
		return "post-decompress-length"
	case StageChecksum:
		return "checksum"
	case StagePostWrite:
		return "post-write"
	default:
		return "unknown"
	}
}

// IntegrityError reports a failed verification for a single resource.
type IntegrityError struct {
	ID       string
	Stage    IntegrityStage
	Expected string
	Actual   string

	// Err is the underlying failure, if any (the decoder error for StageDecode).
	Err error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%v: resource %q (%s): expected %s, got %s",
		ErrIntegrityMismatch, e.ID, e.Stage, e.Expected, e.Actual)
}

// Unwrap lets errors.Is match ErrIntegrityMismatch and the underlying cause.
func (e *IntegrityError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrIntegrityMismatch}
	}
	return []error{ErrIntegrityMismatch, e.Err}
}

// IOError wraps err as an ErrIO failure for the given operation.
// A nil err yields nil.
func IOError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
}
