// Package builder materializes a scenario blueprint into a live anchor graph.
package builder

import (
	"context"
	"fmt"
	"iter"
	"slices"

	"github.com/vk/anchorgraph/anchor"
	"github.com/vk/anchorgraph/internal/ctxlog"
	"github.com/vk/anchorgraph/internal/scenario"
)

// Entity is the payload stored in every scenario node. It records the node's
// name, its adjacency in both directions, and an optional hook invoked when
// the collector tears it down.
type Entity struct {
	name       string
	succs      []anchor.Ref[*Entity]
	preds      []anchor.Ref[*Entity]
	onFinalize func(name string)
}

// Name returns the scenario name of the entity.
func (e *Entity) Name() string { return e.name }

// Outgoing yields the entity's successors.
func (e *Entity) Outgoing() iter.Seq[anchor.Ref[*Entity]] { return slices.Values(e.succs) }

// Incoming yields the entity's predecessors.
func (e *Entity) Incoming() iter.Seq[anchor.Ref[*Entity]] { return slices.Values(e.preds) }

// Finalize reports the teardown to the registered hook.
func (e *Entity) Finalize() {
	if e.onFinalize != nil {
		e.onFinalize(e.name)
	}
}

// Link records a directed edge in both adjacency lists. Each endpoint is
// locked on its own, so the edge becomes visible to walkers one side at a
// time; the symmetry contract holds once Link returns. If the target half
// cannot land the source half is taken back, so a failed Link never leaves
// an asymmetric edge behind.
func Link(from, to anchor.Ref[*Entity]) error {
	if err := from.With(func(e *Entity) error {
		e.succs = append(e.succs, to)
		return nil
	}); err != nil {
		return fmt.Errorf("linking source: %w", err)
	}
	if err := to.With(func(e *Entity) error {
		e.preds = append(e.preds, from)
		return nil
	}); err != nil {
		_ = from.With(func(e *Entity) error {
			e.succs = removeFirst(e.succs, to)
			return nil
		})
		return fmt.Errorf("linking target: %w", err)
	}
	return nil
}

// Unlink removes one occurrence of the directed edge from both sides.
func Unlink(from, to anchor.Ref[*Entity]) error {
	if err := from.With(func(e *Entity) error {
		e.succs = removeFirst(e.succs, to)
		return nil
	}); err != nil {
		return fmt.Errorf("unlinking source: %w", err)
	}
	if err := to.With(func(e *Entity) error {
		e.preds = removeFirst(e.preds, from)
		return nil
	}); err != nil {
		return fmt.Errorf("unlinking target: %w", err)
	}
	return nil
}

func removeFirst(refs []anchor.Ref[*Entity], victim anchor.Ref[*Entity]) []anchor.Ref[*Entity] {
	if i := slices.Index(refs, victim); i >= 0 {
		return slices.Delete(refs, i, i+1)
	}
	return refs
}

// Build creates one owning handle per scenario node in the given domain and
// wires every declared edge. On failure all handles created so far are
// released so the partial graph does not leak into the domain.
func Build(ctx context.Context, dom *anchor.Domain, scn *scenario.Scenario, onFinalize func(name string)) (map[string]*anchor.Node[*Entity], error) {
	log := ctxlog.FromContext(ctx)

	nodes := make(map[string]*anchor.Node[*Entity], len(scn.Nodes))
	fail := func(err error) (map[string]*anchor.Node[*Entity], error) {
		for _, n := range nodes {
			_ = n.Release()
		}
		return nil, err
	}

	for _, name := range scn.Nodes {
		nodes[name] = anchor.NewIn(dom, &Entity{name: name, onFinalize: onFinalize})
	}
	for _, e := range scn.Edges {
		if err := Link(nodes[e.From].Downgrade(), nodes[e.To].Downgrade()); err != nil {
			return fail(fmt.Errorf("edge %s -> %s: %w", e.From, e.To, err))
		}
	}

	log.Debug("Graph built", "nodes", len(scn.Nodes), "edges", len(scn.Edges))
	return nodes, nil
}
