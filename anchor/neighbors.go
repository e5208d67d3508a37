package anchor

import "iter"

// Neighbors is the adjacency capability a payload type must implement so the
// collector and the walkers can see the graph's own edges.
//
// Outgoing and incoming must be logical inverses across the whole graph: if X
// appears in Y's Incoming, Y must appear in X's Outgoing, and vice versa. The
// collector computes connected components over the union of both directions
// and relies on this symmetry; violating it yields undefined liveness
// behavior (it is not detected at runtime).
//
// Both sequences must be finite and restartable. They are consumed while the
// cell's payload lock is held, so they must not lock any cell themselves.
type Neighbors[T any] interface {
	// Outgoing enumerates the direct successors of this payload.
	Outgoing() iter.Seq[Ref[T]]

	// Incoming enumerates the direct predecessors of this payload.
	Incoming() iter.Seq[Ref[T]]
}

// Finalizer is implemented by payloads that need teardown logic when their
// component is collected. Finalize runs exactly once per cell, after every
// cell in the component has been marked collected.
//
// Finalize must not create, clone, or release owning handles; the collection
// that invoked it is still completing.
type Finalizer interface {
	Finalize()
}
