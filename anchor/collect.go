package anchor

// releaseStrong drops one strong count from c and, on reaching zero, runs the
// reachability collector synchronously. Finalizers run after the domain mutex
// is dropped but before releaseStrong returns, so collection timing stays
// deterministic while finalizers cannot deadlock against the critical
// section they were triggered from.
func releaseStrong[T any](c *cell[T]) error {
	d := c.dom

	d.mu.Lock()
	c.strong--
	if c.strong > 0 {
		d.mu.Unlock()
		return nil
	}
	victims, err := sweep(c)
	d.mu.Unlock()
	if err != nil {
		return err
	}

	for _, v := range victims {
		if f, ok := any(v).(Finalizer); ok {
			f.Finalize()
		}
	}
	return nil
}

// sweep decides the fate of seed's connected component. The caller must hold
// the domain mutex.
//
// It traverses from seed over the union of outgoing and incoming edges (both
// directions are needed: a cell may be edge-reachable from a live cell only
// through its incoming adjacency). Every scanned cell's payload lock is held
// from the moment its adjacency is read until the fate of the component is
// decided. Edge mutation runs under those same payload locks, so a mutation
// either lands before a cell is scanned (and the new edge is seen) or blocks
// until the decision commits (and then fails with ErrCollected); there is no
// window in which a fresh edge can re-anchor an already-scanned cell.
//
// If any discovered cell still has a positive strong count the whole
// component is alive and nothing happens. If the walk completes with every
// strong count at zero, every discovered cell is marked collected before any
// payload is touched, so upgrade attempts observe the component as all-dead
// or all-alive, never in between. The stripped payloads are returned for
// finalization by the caller.
//
// A poisoned cell mid-walk aborts the run without freeing anything: its
// adjacency cannot be trusted, and leaking the component is safer than
// freeing cells that might still be reachable through it.
func sweep[T any](seed *cell[T]) ([]T, error) {
	d := seed.dom

	visited := map[*cell[T]]bool{seed: true}
	stack := []*cell[T]{seed}

	// comp holds the scanned cells; each one's payload lock is held.
	var comp []*cell[T]
	abort := func() {
		for _, c := range comp {
			c.mu.Unlock()
		}
		d.aborted.Add(1)
	}

	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if c.dead.Load() {
			continue
		}
		if c.dom != d {
			abort()
			d.log.Warn("collection aborted: component crosses domains, leaking")
			return nil, nil
		}
		if c.strong > 0 {
			abort()
			d.log.Debug("component still anchored, nothing to collect", "visited", len(visited))
			return nil, nil
		}

		c.mu.Lock()
		comp = append(comp, c)

		edges, err := c.componentEdges()
		if err != nil {
			abort()
			d.log.Warn("collection aborted on poisoned cell, leaking component", "visited", len(visited))
			return nil, ErrTraversalPoisoned
		}
		for _, r := range edges {
			if !visited[r.c] {
				visited[r.c] = true
				stack = append(stack, r.c)
			}
		}
	}

	// The component is unreachable from every owning handle, and the held
	// payload locks kept every concurrent mutation out of it. Mark everything
	// collected, then strip payloads and let the blocked mutators back in to
	// fail with ErrCollected.
	for _, c := range comp {
		c.dead.Store(true)
	}

	victims := make([]T, 0, len(comp))
	for _, c := range comp {
		v := c.value
		var zero T
		c.value = zero
		c.mu.Unlock()
		victims = append(victims, v)
	}

	d.collections.Add(1)
	d.cells.Add(int64(len(comp)))
	d.log.Debug("component collected", "cells", len(comp))
	return victims, nil
}
