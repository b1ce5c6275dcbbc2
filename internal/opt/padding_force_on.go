//go:build spinrw_enable_padding

package opt

import (
	"unsafe"
)

// StatePad_ separates the state word from the protected value.
// Padding is force-enabled via the spinrw_enable_padding build tag.
// Use: go build -tags=spinrw_enable_padding
type StatePad_ struct {
	_ [(CacheLineSize_ - unsafe.Sizeof(stateHeader{})%CacheLineSize_) % CacheLineSize_]byte
}

const PaddingEnabled_ = true
