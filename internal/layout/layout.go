// Package layout defines the on-disk overlay structures and their binary
// encodings.
//
// An overlay lives at the end of a host file:
//
//	[host content][data block]...[data block][table][footer]
//
// The footer is fixed-size and anchors everything else, so a reader never
// needs to understand the host's own format. All integers are little-endian.
package layout

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/meigma/overlay/internal/checksum"
	"github.com/meigma/overlay/internal/overlaytype"
)

// Magic identifies an overlay footer. It follows the PNG signature pattern
// so that line-ending or 7-bit transfer damage is detectable.
var Magic = [16]byte{0x89, 'O', 'v', 'e', 'r', 'l', 'a', 'y', 'D', 'a', 't', 'a', 0x0d, 0x0a, 0x1a, 0x0a}

// Version is the current layout version.
const Version uint32 = 1

// Footer component sizes.
const (
	MagicSize       = 16
	VersionSize     = 4
	TableOffsetSize = 8
	TableLengthSize = 8
	EntryCountSize  = 8

	// FooterSize is the total size of the footer.
	FooterSize = MagicSize + VersionSize + TableOffsetSize + TableLengthSize + EntryCountSize
)

// Table record sizes.
const (
	// MaxIDLength is the longest ID a record can hold.
	MaxIDLength = 63

	// recordFixedSize covers every record field except the ID bytes.
	recordFixedSize = 1 + 8 + 8 + 8 + 1 + checksum.Size
)

// Footer is the fixed trailer at the absolute end of a host file.
type Footer struct {
	Version     uint32
	TableOffset uint64
	TableLength uint64
	EntryCount  uint64
}

// Entry describes one attached resource.
type Entry struct {
	// ID names the resource; 1-63 opaque bytes, unique within a container.
	ID string

	// DataOffset is the absolute file offset where the stored bytes begin.
	DataOffset uint64

	// StoredLength is the number of bytes on disk, after compression.
	StoredLength uint64

	// RawLength is the length of the original resource.
	RawLength uint64

	// Level is the compression level (0-9). Zero means stored == raw.
	Level uint8

	// Checksum is the SHA-256 of the raw resource bytes.
	Checksum checksum.Sum
}

// End returns the offset just past the entry's stored bytes.
func (e Entry) End() uint64 {
	return e.DataOffset + e.StoredLength
}

// ValidateID checks the 1-63 byte length rule.
func ValidateID(id string) error {
	if len(id) == 0 {
		return fmt.Errorf("%w: empty", overlaytype.ErrInvalidID)
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("%w: %d bytes exceeds maximum of %d", overlaytype.ErrInvalidID, len(id), MaxIDLength)
	}
	return nil
}

// RecordSize returns the encoded size of e's table record.
func RecordSize(e Entry) int {
	return recordFixedSize + len(e.ID)
}

// EncodeFooter writes a footer to a FooterSize byte slice.
func EncodeFooter(f Footer) []byte {
	buf := make([]byte, FooterSize)
	copy(buf, Magic[:])
	off := MagicSize
	binary.LittleEndian.PutUint32(buf[off:], f.Version)
	off += VersionSize
	binary.LittleEndian.PutUint64(buf[off:], f.TableOffset)
	off += TableOffsetSize
	binary.LittleEndian.PutUint64(buf[off:], f.TableLength)
	off += TableLengthSize
	binary.LittleEndian.PutUint64(buf[off:], f.EntryCount)
	return buf
}

// DecodeFooter parses the last FooterSize bytes of a file.
//
// ok is false when buf does not carry the overlay magic, meaning the file
// has no overlay. An unknown version is an ErrInvalidContainer error.
func DecodeFooter(buf []byte) (f Footer, ok bool, err error) {
	if len(buf) != FooterSize || !bytes.Equal(buf[:MagicSize], Magic[:]) {
		return Footer{}, false, nil
	}
	off := MagicSize
	f.Version = binary.LittleEndian.Uint32(buf[off:])
	off += VersionSize
	f.TableOffset = binary.LittleEndian.Uint64(buf[off:])
	off += TableOffsetSize
	f.TableLength = binary.LittleEndian.Uint64(buf[off:])
	off += TableLengthSize
	f.EntryCount = binary.LittleEndian.Uint64(buf[off:])

	if f.Version != Version {
		return Footer{}, true, fmt.Errorf("%w: unsupported version %d (want %d)",
			overlaytype.ErrInvalidContainer, f.Version, Version)
	}
	return f, true, nil
}
