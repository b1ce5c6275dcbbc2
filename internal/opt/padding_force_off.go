//go:build spinrw_disable_padding

package opt

// StatePad_ separates the state word from the protected value.
// Padding is force-disabled via the spinrw_disable_padding build tag.
// Use: go build -tags=spinrw_disable_padding
type StatePad_ struct{}

const PaddingEnabled_ = false
