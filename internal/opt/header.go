package opt

// stateHeader mirrors the fields that precede StatePad_ in a lock:
// the 64-bit state word and the one-byte spin policy.
type stateHeader struct {
	State   int64
	Backoff uint8
}
