package spinrw

import (
	"runtime"
	"time"
	_ "unsafe" // for linkname
)

// Backoff is the wait step an RWLock runs between failed acquire attempts.
type Backoff uint8

const (
	// BackoffSpin issues the processor spin hint (PAUSE on x86, YIELD on
	// arm64) and retries. The goroutine never gives up its P voluntarily.
	BackoffSpin Backoff = iota
	// BackoffAdaptive spins while the runtime considers spinning
	// profitable, then sleeps briefly before spinning again.
	BackoffAdaptive
	// BackoffYield calls runtime.Gosched between attempts.
	BackoffYield
)

func (b Backoff) String() string {
	switch b {
	case BackoffSpin:
		return "spin"
	case BackoffAdaptive:
		return "adaptive"
	case BackoffYield:
		return "yield"
	default:
		return "unknown"
	}
}

// adaptiveSleep is the pause BackoffAdaptive takes once the runtime
// reports that further spinning is unprofitable. The figure follows folly's
// Sleeper: https://github.com/facebook/folly/blob/main/folly/synchronization/detail/Sleeper.h
const adaptiveSleep = 500 * time.Microsecond

// wait runs one step of the policy. spins carries state across steps of
// the same acquire call; only BackoffAdaptive reads it.
func (b Backoff) wait(spins *int) {
	switch b {
	case BackoffAdaptive:
		if runtime_canSpin(*spins) {
			*spins++
			runtime_doSpin()
			return
		}
		*spins = 0
		time.Sleep(adaptiveSleep)
	case BackoffYield:
		runtime.Gosched()
	default:
		runtime_doSpin()
	}
}

// noCopy marks structs that must not be copied after first use; go vet's
// copylocks check reports copies of anything containing it.
// It must not be embedded, or its methods would leak into the API.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// runtime_canSpin reports whether active spinning still pays off at the
// given iteration (multicore, idle Ps, few prior spins).
//
//go:linkname runtime_canSpin sync.runtime_canSpin
func runtime_canSpin(i int) bool

// runtime_doSpin executes the architecture's spin-wait hint a few times.
//
//go:linkname runtime_doSpin sync.runtime_doSpin
func runtime_doSpin()
