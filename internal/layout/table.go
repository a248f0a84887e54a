package layout

import (
	"encoding/binary"
	"fmt"

	"github.com/meigma/overlay/internal/checksum"
	"github.com/meigma/overlay/internal/overlaytype"
)

// EncodeTable serializes entries in the given order.
func EncodeTable(entries []Entry) ([]byte, error) {
	size := 0
	for _, e := range entries {
		size += RecordSize(e)
	}
	buf := make([]byte, 0, size)
	for _, e := range entries {
		if err := ValidateID(e.ID); err != nil {
			return nil, err
		}
		if !overlaytype.ValidLevel(int(e.Level)) {
			return nil, fmt.Errorf("%w: level %d", overlaytype.ErrCompression, e.Level)
		}
		buf = append(buf, byte(len(e.ID)))
		buf = append(buf, e.ID...)
		buf = binary.LittleEndian.AppendUint64(buf, e.DataOffset)
		buf = binary.LittleEndian.AppendUint64(buf, e.StoredLength)
		buf = binary.LittleEndian.AppendUint64(buf, e.RawLength)
		buf = append(buf, e.Level)
		buf = append(buf, e.Checksum[:]...)
	}
	return buf, nil
}

// DecodeTable parses exactly count records from buf.
//
// Truncated records, out-of-range ID lengths or levels, level-0 records whose
// stored and raw lengths differ, and bytes left over after the last record
// are all ErrInvalidContainer.
func DecodeTable(buf []byte, count uint64) ([]Entry, error) {
	// Every record is at least recordFixedSize+1 bytes, which bounds count
	// before anything is allocated.
	if count > uint64(len(buf))/(recordFixedSize+1) {
		return nil, fmt.Errorf("%w: %d entries cannot fit in a %d byte table",
			overlaytype.ErrInvalidContainer, count, len(buf))
	}

	entries := make([]Entry, 0, count)
	off := 0
	for i := range count {
		e, n, err := decodeRecord(buf[off:])
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", overlaytype.ErrInvalidContainer, i, err)
		}
		entries = append(entries, e)
		off += n
	}
	if off != len(buf) {
		return nil, fmt.Errorf("%w: %d trailing bytes after %d records",
			overlaytype.ErrInvalidContainer, len(buf)-off, count)
	}
	return entries, nil
}

// decodeRecord parses one record and returns it with its encoded size.
func decodeRecord(buf []byte) (Entry, int, error) {
	if len(buf) < 1 {
		return Entry{}, 0, fmt.Errorf("truncated id length")
	}
	idLen := int(buf[0])
	if idLen == 0 || idLen > MaxIDLength {
		return Entry{}, 0, fmt.Errorf("id length %d out of range 1-%d", idLen, MaxIDLength)
	}
	size := recordFixedSize + idLen
	if len(buf) < size {
		return Entry{}, 0, fmt.Errorf("truncated record: need %d bytes, have %d", size, len(buf))
	}

	var e Entry
	off := 1
	e.ID = string(buf[off : off+idLen])
	off += idLen
	e.DataOffset = binary.LittleEndian.Uint64(buf[off:])
	off += 8
	e.StoredLength = binary.LittleEndian.Uint64(buf[off:])
	off += 8
	e.RawLength = binary.LittleEndian.Uint64(buf[off:])
	off += 8
	e.Level = buf[off]
	off++
	sum, err := checksum.FromBytes(buf[off : off+checksum.Size])
	if err != nil {
		return Entry{}, 0, err
	}
	e.Checksum = sum

	if !overlaytype.ValidLevel(int(e.Level)) {
		return Entry{}, 0, fmt.Errorf("level %d out of range", e.Level)
	}
	if e.Level == overlaytype.LevelNone && e.StoredLength != e.RawLength {
		return Entry{}, 0, fmt.Errorf("uncompressed record %q has stored length %d != raw length %d",
			e.ID, e.StoredLength, e.RawLength)
	}
	return e, size, nil
}
