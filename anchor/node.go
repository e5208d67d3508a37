package anchor

import "sync/atomic"

// Node is an owning handle: while it is held, the target cell's strong count
// includes this handle's contribution of exactly one. Owning handles are what
// keep a connected component in memory; when the last one anywhere in the
// component is released, the whole component is collected together.
//
// Payloads must never store Nodes in their adjacency; store Refs (see
// Downgrade) or the cycle will own itself and leak.
type Node[T any] struct {
	ref      Ref[T]
	released atomic.Bool
}

// New allocates a fresh cell holding value, with a strong count of one, in
// the process-wide default domain.
func New[T Neighbors[T]](value T) *Node[T] {
	return NewIn(defaultDomain, value)
}

// NewIn allocates a fresh cell in an explicit domain. All cells reachable
// from each other through edges must share a domain.
func NewIn[T Neighbors[T]](d *Domain, value T) *Node[T] {
	c := &cell[T]{dom: d, strong: 1}
	c.value = value
	return &Node[T]{ref: Ref[T]{c: c}}
}

// Downgrade returns the handle's underlying non-owning reference, with no
// change to the strong count. This is what gets stored as edge payload.
func (n *Node[T]) Downgrade() Ref[T] {
	n.check()
	return n.ref
}

// Clone duplicates the owning handle, incrementing the target's strong count.
// The two handles are independent: releasing one never collects the cell
// while the other is held.
func (n *Node[T]) Clone() *Node[T] {
	n.check()
	d := n.ref.c.dom
	d.mu.Lock()
	n.ref.c.strong++
	d.mu.Unlock()
	return &Node[T]{ref: n.ref}
}

// Release drops this handle's strong count. If the count reaches zero the
// reachability collector runs synchronously before Release returns; the
// returned error is ErrTraversalPoisoned when collection had to abort on a
// poisoned cell (the component leaks). Release is idempotent per handle.
//
// Release must not be called while holding a Guard for any cell: the
// collector takes the payload locks it traverses, and holds every scanned
// lock until its decision commits.
func (n *Node[T]) Release() error {
	if !n.released.CompareAndSwap(false, true) {
		return nil
	}
	return releaseStrong(n.ref.c)
}

// Lock is shorthand for Downgrade().Lock().
func (n *Node[T]) Lock() (*Guard[T], error) {
	n.check()
	return n.ref.Lock()
}

// With is shorthand for Downgrade().With(fn).
func (n *Node[T]) With(fn func(T) error) error {
	n.check()
	return n.ref.With(fn)
}

func (n *Node[T]) check() {
	if n.released.Load() {
		panic("anchor: use of released Node")
	}
}
