package anchor

import "errors"

var (
	// ErrCollected is returned when scoped access is requested on a cell
	// whose component has already been collected. This is the normal signal
	// that a component has died, not a failure.
	ErrCollected = errors.New("anchor: cell already collected")

	// ErrPoisoned is returned when a previous payload holder left the value
	// in an inconsistent state. It is never cleared automatically; resuming
	// could operate on a broken invariant.
	ErrPoisoned = errors.New("anchor: payload poisoned")

	// ErrTraversalPoisoned is returned by Release when the collector hit a
	// poisoned cell mid-walk and aborted without freeing anything. The
	// component leaks deliberately; a leak is preferable to freeing cells
	// whose adjacency could not be read.
	ErrTraversalPoisoned = errors.New("anchor: collection aborted on poisoned cell")
)
