// Package sizing provides overflow-checked arithmetic for the 32-bit size
// and offset fields of a package.
package sizing

import "math"

// ToUint32 converts a non-negative int64 to uint32, returning overflowErr if
// it does not fit.
func ToUint32(size int64, overflowErr error) (uint32, error) {
	if size < 0 || size > math.MaxUint32 {
		return 0, overflowErr
	}
	return uint32(size), nil
}

// IntToUint32 converts a non-negative int to uint32, returning overflowErr if
// it does not fit.
func IntToUint32(n int, overflowErr error) (uint32, error) {
	return ToUint32(int64(n), overflowErr)
}

// AddUint32 adds two uint32 values, returning (result, false) on overflow.
func AddUint32(a, b uint32) (uint32, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}
