//go:build !(amd64 || 386 || arm || mips || mipsle || wasm) && !spinrw_disable_padding && !spinrw_enable_padding

package opt

import (
	"unsafe"
)

// StatePad_ separates the state word from the protected value, so that
// writers of the payload do not invalidate the line spinning readers poll.
// Padding is automatically enabled for architectures that are NOT:
// - amd64 (x86_64)
// - 32-bit architectures (386, arm, mips, mipsle, wasm)
//
// Enabled for: arm64, s390x, ppc64, ppc64le, riscv64, loong64, mips64, mips64le, etc.
type StatePad_ struct {
	_ [(CacheLineSize_ - unsafe.Sizeof(stateHeader{})%CacheLineSize_) % CacheLineSize_]byte
}

const PaddingEnabled_ = true
