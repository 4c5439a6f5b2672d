package buf

import (
	"fmt"
	"math"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// AddSat adds two region offsets, clamping at math.MaxUint64 instead of wrapping.
func AddSat(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

// CheckSpan validates that n bytes starting at off fit in a buffer of bufLen bytes.
// Returns the end offset if valid, or an error describing the failure.
//
//	end, err := buf.CheckSpan(uint64(len(data)), off, n)
//	if err != nil {
//	    return fmt.Errorf("payload: %w", err)
//	}
func CheckSpan(bufLen, off, n uint64) (uint64, error) {
	if off > math.MaxUint64-n {
		return 0, fmt.Errorf("overflow: offset=%d + size=%d", off, n)
	}
	end := off + n
	if end > bufLen {
		return 0, fmt.Errorf("bounds: end=%d > len=%d", end, bufLen)
	}
	return end, nil
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end], true
}

// SliceU64 is Slice for uint64 region offsets.
func SliceU64(b []byte, off, n uint64) ([]byte, bool) {
	end, err := CheckSpan(uint64(len(b)), off, n)
	if err != nil {
		return nil, false
	}
	return b[off:end], true
}
