package spinrw

import (
	"sync/atomic"

	"github.com/llxisdsh/pb"
)

// Group is a keyed table of RWLocks, one per key, created on first use.
//
// Features:
//   - Read/Write (and TryRead/TryWrite) return guards on the key's lock.
//   - View/Update run a callback under the key's lock.
//   - Delete drops a key nobody holds.
//
// Usage:
//
//	g := NewGroup[string, Settings](loadDefaults)
//
//	// Readers
//	g.View("eu-west", func(s *Settings) { use(s) })
//
//	// Writer
//	g.Update("eu-west", func(s *Settings) { s.Replicas++ })
//
// Every guard pins its key's entry from lookup until Release, so a key
// always maps to a single lock while anyone holds or is waiting on it.
//
// The zero value is an empty group whose locks start with the zero T.
type Group[K comparable, T any] struct {
	_    noCopy
	m    pb.MapOf[K, *groupEntry[T]]
	init func(K) T
	opts []func(*Config)
}

type groupEntry[T any] struct {
	lock *RWLock[T]
	// refs counts guards that hold, or are waiting to acquire, lock.
	// Increments only happen inside ProcessEntry, which serializes them
	// with Delete's check.
	refs atomic.Int64
}

// NewGroup returns an empty Group. init, if non-nil, supplies the initial
// value for a key's lock when it is created; opts apply to every lock.
func NewGroup[K comparable, T any](init func(K) T, opts ...func(*Config)) *Group[K, T] {
	return &Group[K, T]{init: init, opts: opts}
}

// pin returns k's entry with its reference count raised, creating the
// entry if absent.
func (g *Group[K, T]) pin(k K) *groupEntry[T] {
	e, _ := g.m.ProcessEntry(
		k,
		func(l *pb.EntryOf[K, *groupEntry[T]]) (*pb.EntryOf[K, *groupEntry[T]], *groupEntry[T], bool) {
			if l != nil {
				l.Value.refs.Add(1)
				return l, l.Value, true
			}
			var v T
			if g.init != nil {
				v = g.init(k)
			}
			e := &groupEntry[T]{lock: New(v, g.opts...)}
			e.refs.Store(1)
			return &pb.EntryOf[K, *groupEntry[T]]{Value: e}, e, false
		},
	)
	return e
}

// Read acquires shared access to k's value.
func (g *Group[K, T]) Read(k K) ReadGuard[T] {
	e := g.pin(k)
	e.lock.rlock()
	return ReadGuard[T]{l: e.lock, refs: &e.refs}
}

// TryRead acquires shared access to k's value if no writer holds it.
func (g *Group[K, T]) TryRead(k K) (ReadGuard[T], bool) {
	e := g.pin(k)
	if !e.lock.tryRLock() {
		e.refs.Add(-1)
		return ReadGuard[T]{}, false
	}
	return ReadGuard[T]{l: e.lock, refs: &e.refs}, true
}

// Write acquires exclusive access to k's value.
func (g *Group[K, T]) Write(k K) WriteGuard[T] {
	e := g.pin(k)
	e.lock.lock()
	return WriteGuard[T]{l: e.lock, refs: &e.refs}
}

// TryWrite acquires exclusive access to k's value if nobody holds it.
func (g *Group[K, T]) TryWrite(k K) (WriteGuard[T], bool) {
	e := g.pin(k)
	if !e.lock.tryLock() {
		e.refs.Add(-1)
		return WriteGuard[T]{}, false
	}
	return WriteGuard[T]{l: e.lock, refs: &e.refs}, true
}

// View calls fn with k's value under shared access.
func (g *Group[K, T]) View(k K, fn func(v *T)) {
	r := g.Read(k)
	defer r.Release()
	fn(r.Ptr())
}

// Update calls fn with k's value under exclusive access.
func (g *Group[K, T]) Update(k K, fn func(v *T)) {
	w := g.Write(k)
	defer w.Release()
	fn(w.Ptr())
}

// Delete removes k and its value if no guard holds or awaits k's lock,
// and reports whether it did. The next access to k starts from init.
func (g *Group[K, T]) Delete(k K) bool {
	_, ok := g.m.ProcessEntry(
		k,
		func(l *pb.EntryOf[K, *groupEntry[T]]) (*pb.EntryOf[K, *groupEntry[T]], *groupEntry[T], bool) {
			if l != nil && l.Value.refs.Load() == 0 {
				return nil, nil, true
			}
			return l, nil, false
		},
	)
	return ok
}

// Range calls fn with each key and a copy of its value, read under the
// key's lock, until fn returns false. A key deleted concurrently may still
// be reported with its last value.
func (g *Group[K, T]) Range(fn func(k K, v T) bool) {
	g.m.Range(func(k K, e *groupEntry[T]) bool {
		r := e.lock.Read()
		v := r.Get()
		r.Release()
		return fn(k, v)
	})
}

// Len returns the number of keys in the group.
func (g *Group[K, T]) Len() int {
	n := 0
	g.m.Range(func(K, *groupEntry[T]) bool {
		n++
		return true
	})
	return n
}
