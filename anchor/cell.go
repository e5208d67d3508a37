package anchor

import (
	"sync"
	"sync/atomic"
)

// direction selects which half of the Neighbors capability to read.
type direction int

const (
	dirOutgoing direction = iota
	dirIncoming
)

// cell is the shared storage for one graph node: the user payload behind a
// mutex, the strong count, and the alive/collected flag.
//
// Lock discipline: the owning Domain's mutex is always taken before any cell
// mutex, and the collector holds the mutexes of every scanned cell at once
// until its decision commits. User code must therefore hold at most one cell
// mutex at a time and must not enter the Domain critical section (Upgrade,
// Clone, Release) while holding one. The strong count is guarded by the
// Domain mutex; the payload and the poisoned flag are guarded by mu; dead is
// atomic so it can be read on either side. A cell transitions to dead exactly
// once, under the Domain mutex.
type cell[T any] struct {
	dom *Domain

	mu       sync.Mutex
	value    T
	poisoned bool

	dead atomic.Bool

	// strong is the number of live owning handles. Guarded by dom.mu.
	strong int
}

// adjacency returns the payload's Neighbors capability. Callers must hold mu
// and must have checked dead; a zeroed payload has no usable adjacency.
func (c *cell[T]) adjacency() (Neighbors[T], bool) {
	nb, ok := any(c.value).(Neighbors[T])
	return nb, ok
}

// neighborRefs snapshots one adjacency direction under the payload lock.
// Collected and poisoned cells report no neighbors; the walkers treat them
// as leaves.
func (c *cell[T]) neighborRefs(dir direction) []Ref[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dead.Load() || c.poisoned {
		return nil
	}
	nb, ok := c.adjacency()
	if !ok {
		return nil
	}

	seq := nb.Outgoing()
	if dir == dirIncoming {
		seq = nb.Incoming()
	}

	var refs []Ref[T]
	for r := range seq {
		if r.c != nil {
			refs = append(refs, r)
		}
	}
	return refs
}

// componentEdges snapshots both adjacency directions for the collector. The
// caller must hold mu, and keeps holding it until the component's fate is
// decided. Unlike neighborRefs it surfaces poisoning, because the collector
// must abort rather than silently treat a poisoned cell as a leaf.
func (c *cell[T]) componentEdges() ([]Ref[T], error) {
	if c.poisoned {
		return nil, ErrPoisoned
	}
	nb, ok := c.adjacency()
	if !ok {
		return nil, nil
	}

	var refs []Ref[T]
	for r := range nb.Outgoing() {
		if r.c != nil {
			refs = append(refs, r)
		}
	}
	for r := range nb.Incoming() {
		if r.c != nil {
			refs = append(refs, r)
		}
	}
	return refs, nil
}
