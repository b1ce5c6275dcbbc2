package spinrw

import (
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestGroup_EntryIsStable(t *testing.T) {
	g := NewGroup[string, int](nil)
	g.Update("a", func(v *int) { *v = 1 })
	g.Update("b", func(v *int) { *v = 2 })

	a, ok := g.m.Load("a")
	require.True(t, ok)
	g.View("a", func(*int) {})
	again, _ := g.m.Load("a")
	require.Same(t, a, again)
	require.Equal(t, 2, g.Len())
	require.Zero(t, a.refs.Load())
}

func TestGroup_Init(t *testing.T) {
	g := NewGroup(func(k string) int {
		n, _ := strconv.Atoi(k)
		return n
	}, WithBackoff(BackoffYield))

	r := g.Read("41")
	require.Equal(t, 41, r.Get())
	r.Release()

	g.Update("41", func(v *int) { *v++ })
	g.View("41", func(v *int) { require.Equal(t, 42, *v) })

	e, ok := g.m.Load("41")
	require.True(t, ok)
	require.Equal(t, BackoffYield, e.lock.backoff)
}

func TestGroup_ZeroValue(t *testing.T) {
	var g Group[int, string]
	w := g.Write(1)
	w.Set("one")
	w.Release()

	r := g.Read(1)
	defer r.Release()
	require.Equal(t, "one", r.Get())
}

func TestGroup_ConcurrentCreate(t *testing.T) {
	g := NewGroup[int, int](nil)
	const workers = 16
	n := loops(200)

	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for i := range n {
				g.Update(i%8, func(v *int) { *v++ })
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 8, g.Len())
	total := 0
	g.Range(func(_ int, v int) bool {
		total += v
		return true
	})
	require.Equal(t, workers*n, total)
}

func TestGroup_TryAcquire(t *testing.T) {
	g := NewGroup[string, int](nil)
	w, ok := g.TryWrite("k")
	require.True(t, ok)

	_, ok = g.TryRead("k")
	require.False(t, ok)
	_, ok = g.TryWrite("k")
	require.False(t, ok)

	e, _ := g.m.Load("k")
	require.EqualValues(t, 1, e.refs.Load(), "failed tries must drop their pin")

	w.Release()
	r, ok := g.TryRead("k")
	require.True(t, ok)
	r.Release()
	require.Zero(t, e.refs.Load())
}

func TestGroup_Delete(t *testing.T) {
	g := NewGroup[string, int](nil)
	require.False(t, g.Delete("missing"))

	w := g.Write("k")
	w.Set(7)
	require.False(t, g.Delete("k"), "deleted a held key")

	// The key must still resolve to the held lock, not a fresh one.
	_, ok := g.TryWrite("k")
	require.False(t, ok, "second writer admitted for a held key")
	w.Release()

	require.True(t, g.Delete("k"))
	require.Equal(t, 0, g.Len())

	r := g.Read("k")
	require.Equal(t, 0, r.Get(), "value survived Delete")
	r.Release()
}

func TestGroup_DeleteWhileWaiting(t *testing.T) {
	g := NewGroup[string, int](nil)
	w := g.Write("k")

	acquired := make(chan struct{})
	go func() {
		v := g.Write("k")
		v.Set(2)
		v.Release()
		close(acquired)
	}()

	// The waiter is pinned from lookup on, so once it is counted the key
	// cannot be deleted out from under it.
	e, _ := g.m.Load("k")
	for e.refs.Load() != 2 {
		runtime.Gosched()
	}
	require.False(t, g.Delete("k"), "deleted a key with a pending writer")
	w.Release()
	<-acquired
	g.View("k", func(v *int) { require.Equal(t, 2, *v) })
}

// Writers on two keys race with a goroutine deleting those keys; at no
// point may two writers be inside the same key.
func TestGroup_DeleteRacesWriters(t *testing.T) {
	g := NewGroup[int, int](nil)
	var active [2]atomic.Int32
	var stop atomic.Bool
	n := loops(2000)

	var eg errgroup.Group
	for w := range 4 {
		eg.Go(func() error {
			for i := range n {
				k := (w + i) % 2
				var err error
				g.Update(k, func(v *int) {
					if active[k].Add(1) != 1 {
						err = fmt.Errorf("two writers inside key %d", k)
					}
					*v++
					active[k].Add(-1)
				})
				if err != nil {
					return err
				}
			}
			return nil
		})
	}
	var deletes atomic.Int64
	done := make(chan struct{})
	go func() {
		defer close(done)
		for !stop.Load() {
			for k := range 2 {
				if g.Delete(k) {
					deletes.Add(1)
				}
			}
		}
	}()
	err := eg.Wait()
	stop.Store(true)
	<-done
	require.NoError(t, err)
	t.Logf("deletes: %d", deletes.Load())

	g.Range(func(_ int, v int) bool {
		require.Positive(t, v)
		return true
	})
}

func TestGroup_RangeStops(t *testing.T) {
	g := NewGroup[int, int](nil)
	for i := range 5 {
		g.Update(i, func(v *int) { *v = i })
	}
	seen := 0
	g.Range(func(int, int) bool {
		seen++
		return seen < 2
	})
	require.Equal(t, 2, seen)
}
