package index

import (
	"errors"
	"math"
)

// ErrIndexOverflow is returned when a 32-bit PIR index would overflow,
// the WASM-side client's arithmetic width (spec.md §7's IndexOverflow
// error kind). Checked before any allocation.
var ErrIndexOverflow = errors.New("index: 32-bit index overflow")

// CheckIndex32 narrows a 64-bit index to uint32, rejecting values a
// WASM client's 32-bit arithmetic cannot represent.
func CheckIndex32(v uint64) (uint32, error) {
	if v > math.MaxUint32 {
		return 0, ErrIndexOverflow
	}
	return uint32(v), nil
}
