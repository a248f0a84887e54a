// Package sizing provides overflow-checked size arithmetic for file offsets.
package sizing

import (
	"math"

	"github.com/meigma/overlay/internal/overlaytype"
)

// ToInt converts a uint64 to int, failing with ErrSizeLimit if it doesn't fit.
func ToInt(size uint64) (int, error) {
	if size > uint64(math.MaxInt) {
		return 0, overlaytype.ErrSizeLimit
	}
	return int(size), nil
}

// ToInt64 converts a uint64 to int64, failing with ErrSizeLimit if it doesn't fit.
func ToInt64(size uint64) (int64, error) {
	if size > uint64(math.MaxInt64) {
		return 0, overlaytype.ErrSizeLimit
	}
	return int64(size), nil
}

// Add returns a+b, or ErrSizeLimit when the sum overflows or exceeds the
// largest offset an *os.File can seek to.
func Add(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a || sum > uint64(math.MaxInt64) {
		return 0, overlaytype.ErrSizeLimit
	}
	return sum, nil
}

// Sum adds all values with the same checks as Add.
func Sum(values ...uint64) (uint64, error) {
	var total uint64
	for _, v := range values {
		var err error
		if total, err = Add(total, v); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// Within reports whether [off, off+n) lies inside [lo, hi).
// Overflowing ranges are never within bounds.
func Within(off, n, lo, hi uint64) bool {
	end := off + n
	if end < off {
		return false
	}
	return off >= lo && end <= hi
}
