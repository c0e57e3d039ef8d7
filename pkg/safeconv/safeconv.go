// Package safeconv converts between integer types where the value range is
// known from context, such as byte counts and configured limits.
package safeconv

// MaxInt is the maximum value for int type (platform-dependent).
const MaxInt = int(^uint(0) >> 1)

// Uint64ToInt converts v to int. ok is false when v does not fit.
func Uint64ToInt(v uint64) (n int, ok bool) {
	if v > uint64(MaxInt) {
		return 0, false
	}

	return int(v), true
}

// MustIntToUint64 converts a length or count to uint64, panics if negative.
// Use only when negative values are logically impossible.
func MustIntToUint64(v int) uint64 {
	if v < 0 {
		panic("safeconv: negative int to uint64 conversion")
	}

	return uint64(v)
}
