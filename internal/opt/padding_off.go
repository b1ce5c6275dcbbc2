//go:build (amd64 || 386 || arm || mips || mipsle || wasm) && !spinrw_disable_padding && !spinrw_enable_padding

package opt

// StatePad_ separates the state word from the protected value.
// Padding is disabled by default for:
// - amd64 (x86_64): adjacent-line prefetch makes a single line of padding
//   of little use
// - 32-bit architectures (386, arm, mips, mipsle, wasm): smaller cache
//   lines and tighter memory budgets
type StatePad_ struct{}

const PaddingEnabled_ = false
