package spinrw

import (
	"math"
	"strconv"
)

// State is a decoded snapshot of an RWLock's state word.
//
// Encoding:
//   - 0:   Idle, no holder.
//   - -1:  Writing, one exclusive holder.
//   - n>0: n active readers.
//
// No other value is ever stored. The word is the only thing the acquire
// and release protocols touch, so it is also the only source of truth for
// who may access the protected value.
type State int64

const (
	stateIdle    = 0
	stateWriting = -1
	maxReaders   = math.MaxInt64
)

const (
	// Idle is the state of an unheld lock.
	Idle State = stateIdle
	// Writing is the state of a lock held by a writer.
	Writing State = stateWriting
	// MaxReaders is the largest reader count the state word can hold.
	// A Read that observes it panics with ErrReaderOverflow.
	MaxReaders State = maxReaders
)

// IsIdle reports whether s has no holder.
func (s State) IsIdle() bool {
	return s == Idle
}

// IsWriting reports whether s is held by a writer.
func (s State) IsWriting() bool {
	return s == Writing
}

// Readers returns the number of active readers, or 0 if s is not a
// reader state.
func (s State) Readers() int64 {
	if s > 0 {
		return int64(s)
	}
	return 0
}

// Valid reports whether s is one of Idle, Writing or a positive reader count.
func (s State) Valid() bool {
	return s >= Writing
}

func (s State) String() string {
	switch {
	case s == Idle:
		return "idle"
	case s == Writing:
		return "writing"
	case s == 1:
		return "1 reader"
	case s > 1:
		return strconv.FormatInt(int64(s), 10) + " readers"
	default:
		return "invalid(" + strconv.FormatInt(int64(s), 10) + ")"
	}
}
