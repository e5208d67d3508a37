package anchor

import "iter"

// Ref is a non-owning reference to a cell. It contributes nothing to the
// cell's strong count, so it is the only thing that may be stored inside
// payloads as edge data: cycles built from Refs carry no ownership weight.
//
// Ref is a comparable value type. Copying it is duplication; two Refs are
// equal iff they denote the same cell, however they were obtained, and a Ref
// can be used directly as a map key.
type Ref[T any] struct {
	c *cell[T]
}

// IsZero reports whether the Ref denotes no cell at all.
func (r Ref[T]) IsZero() bool {
	return r.c == nil
}

// Alive reports whether the target cell has not been collected. It is a
// cheap, racy snapshot; use Upgrade to actually pin the cell.
func (r Ref[T]) Alive() bool {
	return r.c != nil && !r.c.dead.Load()
}

// Upgrade attempts to obtain an owning handle for the target cell. It
// succeeds, incrementing the strong count, iff the cell is still alive; once
// the component has been collected it reports false, cheaply, forever.
func (r Ref[T]) Upgrade() (*Node[T], bool) {
	if r.c == nil {
		return nil, false
	}
	d := r.c.dom
	d.mu.Lock()
	defer d.mu.Unlock()

	if r.c.dead.Load() {
		return nil, false
	}
	r.c.strong++
	return &Node[T]{ref: r}, true
}

// Lock blocks until the cell's payload lock is acquired and returns a Guard
// for scoped access. It returns ErrCollected if the cell's component has
// died, and ErrPoisoned if a previous holder left the payload inconsistent.
func (r Ref[T]) Lock() (*Guard[T], error) {
	return lockCell(r.c)
}

// With runs fn with the payload under the cell's lock, releasing it on every
// exit path. If fn panics the payload is marked poisoned before the panic is
// re-raised; later access fails with ErrPoisoned.
func (r Ref[T]) With(fn func(T) error) error {
	return withCell(r.c, fn)
}

// Outgoing enumerates the cell's direct successors as a lazy, restartable
// sequence. The adjacency is snapshotted under the payload lock each time the
// sequence is ranged over.
func (r Ref[T]) Outgoing() iter.Seq[Ref[T]] {
	return r.hop(dirOutgoing)
}

// Incoming enumerates the cell's direct predecessors. See Outgoing.
func (r Ref[T]) Incoming() iter.Seq[Ref[T]] {
	return r.hop(dirIncoming)
}

func (r Ref[T]) hop(dir direction) iter.Seq[Ref[T]] {
	return func(yield func(Ref[T]) bool) {
		if r.c == nil {
			return
		}
		for _, n := range r.c.neighborRefs(dir) {
			if !yield(n) {
				return
			}
		}
	}
}
