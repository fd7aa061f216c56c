// Package pool implements a best-fit memory arena, the Go counterpart of
// MemoryManager's MemoryPool: a set of typed buffers handed out for the
// duration of one phase and returned, rather than freed, when the phase
// ends. It exists so a multi-round algorithm that repeatedly needs
// "a buffer of about this many Tris" doesn't repeatedly hit the allocator.
//
// A Pool is not safe for concurrent use. That's deliberate: buffers are
// only requested and released between the bulk-synchronous phases of the
// engine, never from inside a parallel phase body, so no locking is needed.
package pool

import "reflect"

// slot is one arena buffer. It remembers the concrete element type it was
// cut for, since a []byte-style pool would need unsafe casts to hand back
// typed slices; comparing reflect.Type instead keeps this package entirely
// in safe Go at the cost of not sharing a slot across different element
// types, matching allocateAny's per-type free lists in spirit.
type slot struct {
	elemType  reflect.Type
	value     reflect.Value // a slice of elemType, len 0, some capacity
	available bool
}

// Pool is a best-fit arena of typed buffers, borrowed via Get and returned
// via Release.
type Pool struct {
	slots []*slot
}

// New returns an empty pool.
func New() *Pool {
	return &Pool{}
}

// Reserve pre-allocates a buffer able to hold n elements of T, marked
// available immediately, so the first Get for that size doesn't pay for the
// allocation mid-phase.
func Reserve[T any](p *Pool, n int) {
	var zero T
	t := reflect.TypeOf(zero)
	p.slots = append(p.slots, &slot{
		elemType:  t,
		value:     reflect.MakeSlice(reflect.SliceOf(t), n, n),
		available: true,
	})
}

// Get returns a slice of n elements of T, taken from the smallest available
// same-type buffer that's large enough (best fit), or a freshly allocated
// one if none fits. The returned slice must be handed back through Release
// once the caller's phase is done with it.
func Get[T any](p *Pool, n int) []T {
	var zero T
	t := reflect.TypeOf(zero)

	var best *slot
	for _, s := range p.slots {
		if !s.available || s.elemType != t || s.value.Cap() < n {
			continue
		}
		if best == nil || s.value.Cap() < best.value.Cap() {
			best = s
		}
	}

	if best == nil {
		best = &slot{elemType: t, value: reflect.MakeSlice(reflect.SliceOf(t), n, n)}
		p.slots = append(p.slots, best)
	}
	best.available = false
	return best.value.Slice(0, n).Interface().([]T)
}

// Release returns a slice previously obtained from Get back to the pool
// without freeing the underlying storage, so a later Get for a similarly
// sized request can reuse it.
func Release[T any](p *Pool, s []T) {
	if s == nil {
		return
	}
	v := reflect.ValueOf(s)
	for _, slot := range p.slots {
		if slot.value.Pointer() == v.Pointer() {
			slot.available = true
			return
		}
	}
}

// Len reports how many buffers the pool currently owns, for tests that want
// to assert reuse actually happened instead of a fresh allocation each time.
func (p *Pool) Len() int {
	return len(p.slots)
}
