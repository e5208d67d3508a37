package anchor

import "iter"

// The four walkers below share one shape: an iterative pre-order over the
// Neighbors capability with a visited set keyed by cell identity, yielding
// the start node first and every reachable node exactly once, cycles
// included. Each call to range starts a fresh walk against the live
// adjacency; there is no snapshot isolation against concurrent edge
// mutation. Collected and poisoned cells are yielded when reached but never
// expanded.

// DFSOutgoing walks depth-first over outgoing edges, visiting each neighbor
// batch in the order the Neighbors capability enumerates it.
func (r Ref[T]) DFSOutgoing() iter.Seq[Ref[T]] {
	return walk(r, dirOutgoing, true)
}

// DFSIncoming walks depth-first over incoming edges.
func (r Ref[T]) DFSIncoming() iter.Seq[Ref[T]] {
	return walk(r, dirIncoming, true)
}

// BFSOutgoing walks breadth-first over outgoing edges, producing level order.
func (r Ref[T]) BFSOutgoing() iter.Seq[Ref[T]] {
	return walk(r, dirOutgoing, false)
}

// BFSIncoming walks breadth-first over incoming edges.
func (r Ref[T]) BFSIncoming() iter.Seq[Ref[T]] {
	return walk(r, dirIncoming, false)
}

func walk[T any](start Ref[T], dir direction, depthFirst bool) iter.Seq[Ref[T]] {
	return func(yield func(Ref[T]) bool) {
		if start.c == nil {
			return
		}
		visited := make(map[Ref[T]]bool)
		frontier := []Ref[T]{start}

		for len(frontier) > 0 {
			cur := frontier[0]
			frontier = frontier[1:]
			if visited[cur] {
				continue
			}
			visited[cur] = true
			if !yield(cur) {
				return
			}

			batch := cur.c.neighborRefs(dir)
			if depthFirst {
				// The freshly discovered batch goes ahead of the rest of the
				// frontier, preserving its enumeration order.
				frontier = append(batch, frontier...)
			} else {
				frontier = append(frontier, batch...)
			}
		}
	}
}
