package anchor

import (
	"iter"
	"slices"
	"sync/atomic"
)

// entity is the payload type used across the package tests: a named node
// whose successor and predecessor edges are plain Ref slices.
type entity struct {
	name       string
	succs      []Ref[*entity]
	preds      []Ref[*entity]
	finalized  *atomic.Int64
	onFinalize func(name string)

	// onIncoming, when set, runs at the start of every Incoming enumeration.
	// Tests use it to pause a collector walk at a chosen cell.
	onIncoming func()
}

func newEntity(name string) *entity {
	return &entity{name: name}
}

func (e *entity) Outgoing() iter.Seq[Ref[*entity]] {
	return slices.Values(e.succs)
}

func (e *entity) Incoming() iter.Seq[Ref[*entity]] {
	if e.onIncoming != nil {
		e.onIncoming()
	}
	return slices.Values(e.preds)
}

func (e *entity) Finalize() {
	if e.finalized != nil {
		e.finalized.Add(1)
	}
	if e.onFinalize != nil {
		e.onFinalize(e.name)
	}
}

// link records a directed edge in both adjacency lists, each side under its
// own payload lock, the way user code is expected to mutate edges.
func link(from, to Ref[*entity]) {
	_ = from.With(func(e *entity) error {
		e.succs = append(e.succs, to)
		return nil
	})
	_ = to.With(func(e *entity) error {
		e.preds = append(e.preds, from)
		return nil
	})
}

// names drains a traversal sequence into payload names for easy assertions.
func names(seq iter.Seq[Ref[*entity]]) []string {
	var out []string
	for r := range seq {
		name := "<collected>"
		_ = r.With(func(e *entity) error {
			name = e.name
			return nil
		})
		out = append(out, name)
	}
	return out
}
