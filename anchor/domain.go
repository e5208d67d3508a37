package anchor

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Domain is the collection critical section, reified as an explicit object
// with its own lifecycle. Every "decrement to zero, traverse, maybe collect"
// sequence and every upgrade of a non-owning reference is serialized on the
// Domain mutex, so two goroutines can never concurrently decide to free
// overlapping components, and an upgrade can never race the decision to free
// its target.
//
// Independent graphs can be given independent Domains so their collections do
// not serialize against each other. Cells linked by edges must all belong to
// the same Domain; if the collector meets a cell from another Domain it
// treats the component as alive and leaks it rather than free cells whose
// critical section it does not hold.
type Domain struct {
	mu  sync.Mutex
	log *slog.Logger

	collections atomic.Int64
	aborted     atomic.Int64
	cells       atomic.Int64
}

// DomainOption configures a Domain.
type DomainOption func(*Domain)

// WithLogger sets the logger the Domain uses for collection events. The
// default Domain logger discards everything.
func WithLogger(log *slog.Logger) DomainOption {
	return func(d *Domain) {
		d.log = log
	}
}

// NewDomain creates an independent collection domain.
func NewDomain(opts ...DomainOption) *Domain {
	d := &Domain{
		log: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// defaultDomain backs New for callers that do not manage domains explicitly.
var defaultDomain = NewDomain()

// DefaultDomain returns the process-wide domain used by New.
func DefaultDomain() *Domain {
	return defaultDomain
}

// DomainStats is a snapshot of a Domain's collection counters.
type DomainStats struct {
	// Collections is the number of completed collective collections.
	Collections int64

	// Aborted is the number of collection runs that stopped without freeing
	// anything, either because the component was still anchored or because a
	// poisoned cell was encountered mid-walk.
	Aborted int64

	// CellsCollected is the total number of cells torn down.
	CellsCollected int64
}

// Stats returns a snapshot of the domain's counters.
func (d *Domain) Stats() DomainStats {
	return DomainStats{
		Collections:    d.collections.Load(),
		Aborted:        d.aborted.Load(),
		CellsCollected: d.cells.Load(),
	}
}
