package spinrw

import (
	"errors"
	"sync/atomic"

	"github.com/llxisdsh/spinrw/internal/opt"
)

var (
	// ErrReaderOverflow is the panic value raised when a read acquire finds
	// the reader count already at MaxReaders. Incrementing past it would
	// wrap the count into the Writing or Idle encodings.
	ErrReaderOverflow = errors.New("spinrw: reader count overflow")

	// ErrGuardReleased is the panic value raised when the protected value is
	// accessed through a guard that has already been released.
	ErrGuardReleased = errors.New("spinrw: use of released guard")

	// ErrUnbalancedRelease is the panic value raised when a release finds
	// the lock not held the way the guard claims, which happens when a
	// guard was copied and both copies were released.
	ErrUnbalancedRelease = errors.New("spinrw: release of unheld lock")
)

// RWLock is a spin-based Reader-Writer lock that owns the value it protects.
//
// Access goes through guards: Read returns a ReadGuard, Write returns a
// WriteGuard, and the lock is given back by the guard's Release. There is
// no Unlock on the lock itself.
//
// Properties:
//   - Any number of concurrent readers, or exactly one writer.
//   - Busy-wait only. Waiting never parks on a semaphore; see Backoff for
//     how a single wait step is spent.
//   - No fairness. A steady stream of readers can starve a writer. Once a
//     writer holds the lock no reader can join until it releases.
//   - Not re-entrant, no upgrade or downgrade, no poisoning. A writer that
//     exits without releasing leaves the lock Writing forever.
//
// The zero value is an unlocked lock holding the zero T.
// An RWLock must not be copied after first use.
type RWLock[T any] struct {
	_       noCopy
	state   atomic.Int64
	backoff Backoff
	_       opt.StatePad_
	// data is a plain field. Every access goes through a guard, and the
	// guard's existence is what makes the access race-free.
	data T
}

// New returns an unlocked RWLock holding v.
func New[T any](v T, opts ...func(*Config)) *RWLock[T] {
	cfg := newConfig(opts)
	l := &RWLock[T]{backoff: cfg.backoff}
	l.data = v
	return l
}

// Read acquires shared access, spinning while a writer holds the lock.
// It panics with ErrReaderOverflow if the reader count is exhausted.
func (l *RWLock[T]) Read() ReadGuard[T] {
	l.rlock()
	return ReadGuard[T]{l: l}
}

func (l *RWLock[T]) rlock() {
	// Common case: nobody holds the lock.
	if !l.state.CompareAndSwap(stateIdle, 1) {
		l.rlockSlow()
	}
}

func (l *RWLock[T]) rlockSlow() {
	var spins int
	cur := l.state.Load()
	for {
		switch {
		case cur < stateIdle:
			// A writer must vacate completely before a count can be
			// established; never add on top of the Writing sentinel.
			l.backoff.wait(&spins)
			cur = stateIdle
		case cur == maxReaders:
			panic(ErrReaderOverflow)
		}
		if l.state.CompareAndSwap(cur, cur+1) {
			return
		}
		// Retry from the live value, not the stale operand.
		cur = l.state.Load()
	}
}

// TryRead acquires shared access if no writer holds the lock.
// On failure it returns a released guard and false.
func (l *RWLock[T]) TryRead() (ReadGuard[T], bool) {
	if l.tryRLock() {
		return ReadGuard[T]{l: l}, true
	}
	return ReadGuard[T]{}, false
}

func (l *RWLock[T]) tryRLock() bool {
	cur := int64(stateIdle)
	for !l.state.CompareAndSwap(cur, cur+1) {
		cur = l.state.Load()
		switch {
		case cur < stateIdle:
			return false
		case cur == maxReaders:
			panic(ErrReaderOverflow)
		}
	}
	return true
}

// Write acquires exclusive access, spinning until the lock is idle.
func (l *RWLock[T]) Write() WriteGuard[T] {
	l.lock()
	return WriteGuard[T]{l: l}
}

func (l *RWLock[T]) lock() {
	if !l.state.CompareAndSwap(stateIdle, stateWriting) {
		l.lockSlow()
	}
}

func (l *RWLock[T]) lockSlow() {
	var spins int
	for {
		// Only attempt the CAS once the word reads Idle, so waiting
		// writers poll a shared line instead of bouncing it.
		if l.state.Load() == stateIdle &&
			l.state.CompareAndSwap(stateIdle, stateWriting) {
			return
		}
		l.backoff.wait(&spins)
	}
}

// TryWrite acquires exclusive access if the lock is idle.
// On failure it returns a released guard and false.
func (l *RWLock[T]) TryWrite() (WriteGuard[T], bool) {
	if l.tryLock() {
		return WriteGuard[T]{l: l}, true
	}
	return WriteGuard[T]{}, false
}

func (l *RWLock[T]) tryLock() bool {
	return l.state.CompareAndSwap(stateIdle, stateWriting)
}

// View calls fn with the protected value under shared access.
// fn must not modify *v or retain v after it returns.
// The read side is released even if fn panics.
func (l *RWLock[T]) View(fn func(v *T)) {
	g := l.Read()
	defer g.Release()
	fn(g.Ptr())
}

// Update calls fn with the protected value under exclusive access.
// fn must not retain v after it returns.
// The write side is released even if fn panics.
func (l *RWLock[T]) Update(fn func(v *T)) {
	g := l.Write()
	defer g.Release()
	fn(g.Ptr())
}

// State returns a snapshot of the state word. The result may be stale by
// the time it is inspected; it is meant for diagnostics and tests.
func (l *RWLock[T]) State() State {
	return State(l.state.Load())
}
