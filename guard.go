package spinrw

import "sync/atomic"

// ReadGuard is shared access to an RWLock's value. It is obtained from
// Read or TryRead and must be released exactly once with Release,
// typically via defer:
//
//	g := l.Read()
//	defer g.Release()
//	use(g.Get())
//
// A guard must not be copied; the copy would be a second token for the
// same acquisition. Pass *ReadGuard to helpers instead.
type ReadGuard[T any] struct {
	_ noCopy
	l *RWLock[T]
	// refs pins the owning Group entry while the guard is held; nil for
	// guards taken directly on an RWLock.
	refs *atomic.Int64
}

// Release gives up shared access. Calls after the first are no-ops.
// It panics with ErrUnbalancedRelease if the lock holds no readers,
// leaving the state word as it found it.
func (g *ReadGuard[T]) Release() {
	l := g.l
	if l == nil {
		return
	}
	g.l = nil
	// Every reader's decrement is a read-modify-write on the same word, so
	// the decrements form one unbroken chain in its modification order.
	// Whichever acquirer later observes the chain's result (0 for a writer)
	// is ordered after all of these reader sections, not just the last.
	if l.state.Add(-1) < stateIdle {
		l.state.Add(1)
		panic(ErrUnbalancedRelease)
	}
	// Unpin only after the lock is given back, so the entry cannot be
	// deleted while this guard still counts as a reader.
	if g.refs != nil {
		g.refs.Add(-1)
		g.refs = nil
	}
}

// Held reports whether g still holds shared access.
func (g *ReadGuard[T]) Held() bool {
	return g.l != nil
}

// Get returns a copy of the protected value.
func (g *ReadGuard[T]) Get() T {
	return *g.Ptr()
}

// Ptr returns a pointer to the protected value. It must not be written
// through and must not be used after Release.
func (g *ReadGuard[T]) Ptr() *T {
	if g.l == nil {
		panic(ErrGuardReleased)
	}
	// The reader count is positive while g is held, so no writer can
	// have moved the state to Writing.
	return &g.l.data
}

// WriteGuard is exclusive access to an RWLock's value. It is obtained
// from Write or TryWrite and must be released exactly once with Release.
// A guard must not be copied.
type WriteGuard[T any] struct {
	_    noCopy
	l    *RWLock[T]
	refs *atomic.Int64
}

// Release gives up exclusive access. Calls after the first are no-ops.
// It panics with ErrUnbalancedRelease if the lock is not in the Writing
// state, without touching the state word.
func (g *WriteGuard[T]) Release() {
	l := g.l
	if l == nil {
		return
	}
	g.l = nil
	// Only the holder can move the word out of Writing, so for a genuine
	// guard this always succeeds and acts as the releasing store. It
	// publishes every write made under g to the next acquirer.
	if !l.state.CompareAndSwap(stateWriting, stateIdle) {
		panic(ErrUnbalancedRelease)
	}
	if g.refs != nil {
		g.refs.Add(-1)
		g.refs = nil
	}
}

// Held reports whether g still holds exclusive access.
func (g *WriteGuard[T]) Held() bool {
	return g.l != nil
}

// Get returns a copy of the protected value.
func (g *WriteGuard[T]) Get() T {
	return *g.Ptr()
}

// Set replaces the protected value.
func (g *WriteGuard[T]) Set(v T) {
	*g.Ptr() = v
}

// Ptr returns a pointer to the protected value for in-place updates.
// It must not be used after Release.
func (g *WriteGuard[T]) Ptr() *T {
	if g.l == nil {
		panic(ErrGuardReleased)
	}
	// g moved the state from Idle to Writing, and nothing else can leave
	// Writing, so g is the only accessor.
	return &g.l.data
}
