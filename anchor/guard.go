package anchor

// Guard grants exclusive scoped access to a cell's payload. At most one Guard
// per cell exists at a time; a blocked Lock waits until the current holder
// calls Unlock. Guards are not goroutine-safe.
//
// A held Guard stalls any collection run that reaches its cell. Do not call
// Upgrade, Clone, or Release while holding a Guard: the collector takes
// payload locks inside the domain critical section, so the combination can
// deadlock.
type Guard[T any] struct {
	c    *cell[T]
	done bool
}

func lockCell[T any](c *cell[T]) (*Guard[T], error) {
	if c == nil || c.dead.Load() {
		return nil, ErrCollected
	}

	c.mu.Lock()
	// Re-check under the lock: the component may have died while we waited.
	if c.dead.Load() {
		c.mu.Unlock()
		return nil, ErrCollected
	}
	if c.poisoned {
		c.mu.Unlock()
		return nil, ErrPoisoned
	}
	return &Guard[T]{c: c}, nil
}

func withCell[T any](c *cell[T], fn func(T) error) error {
	g, err := lockCell(c)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			// fn bailed mid-mutation; the payload can no longer be trusted.
			c.poisoned = true
			c.mu.Unlock()
			panic(r)
		}
		g.Unlock()
	}()
	return fn(c.value)
}

// Value returns the guarded payload.
func (g *Guard[T]) Value() T {
	g.check()
	return g.c.value
}

// Poison marks the payload as inconsistent. Every later Lock or With on the
// cell fails with ErrPoisoned, and the collector refuses to free any
// component it reaches this cell from. Poisoning is never undone.
func (g *Guard[T]) Poison() {
	g.check()
	g.c.poisoned = true
}

// Unlock releases the payload lock. The Guard must not be used afterwards.
func (g *Guard[T]) Unlock() {
	g.check()
	g.done = true
	g.c.mu.Unlock()
}

func (g *Guard[T]) check() {
	if g.done {
		panic("anchor: use of unlocked Guard")
	}
}
