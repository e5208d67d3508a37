package app

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/vk/anchorgraph/anchor"
	"github.com/vk/anchorgraph/internal/builder"
	"github.com/vk/anchorgraph/internal/ctxlog"
	"github.com/vk/anchorgraph/internal/registry"
	"github.com/vk/anchorgraph/internal/scenario"
)

// Run loads the configured scenario, builds its graph in a fresh domain, and
// executes the act script in order. Remaining handles are released on the way
// out so a failed scenario still tears its graph down.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	scn, err := scenario.LoadPath(ctx, a.config.ScenarioPath)
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}

	// Teardown collections are not part of the scripted output; once the act
	// script is done, finalizations are only logged. Finalizers run on this
	// goroutine, so a plain flag is enough.
	teardown := false
	dom := anchor.NewDomain(anchor.WithLogger(a.logger))
	nodes, err := builder.Build(ctx, dom, scn, func(name string) {
		if teardown {
			a.logger.Debug("Finalized during teardown.", "node", name)
			return
		}
		fmt.Fprintf(a.outW, "finalized %s\n", name)
	})
	if err != nil {
		return fmt.Errorf("failed to build graph: %w", err)
	}

	reg := registry.New(nodes)
	defer func() {
		teardown = true
		if err := reg.ReleaseAll(); err != nil {
			a.logger.Warn("Teardown left nodes behind.", "error", err)
		}
	}()

	for i, act := range scn.Acts {
		a.logger.Debug("Running act", "index", i, "kind", act.Kind)
		if err := a.runAct(reg, act); err != nil {
			return fmt.Errorf("act %d (%s): %w", i, act.Kind, err)
		}
	}

	stats := dom.Stats()
	a.logger.Info("Scenario finished.",
		"collections", stats.Collections,
		"aborted", stats.Aborted,
		"cells_collected", stats.CellsCollected)
	return nil
}

func (a *App) runAct(reg *registry.Registry, act scenario.Act) error {
	switch act.Kind {
	case scenario.ActRelease:
		return a.runRelease(reg, act)
	case scenario.ActExpect:
		return runExpect(reg, act)
	case scenario.ActWalk:
		return a.runWalk(reg, act)
	case scenario.ActLink, scenario.ActUnlink:
		return runEdgeMutation(reg, act)
	case scenario.ActPoison:
		return runPoison(reg, act)
	default:
		return fmt.Errorf("unknown act kind %q", act.Kind)
	}
}

// runRelease drops the named handles. A poisoned component refusing to
// collect is a scenario outcome, not a failure: it is reported on the output
// stream and the run continues.
func (a *App) runRelease(reg *registry.Registry, act scenario.Act) error {
	for _, name := range act.Targets {
		err := reg.Release(name)
		switch {
		case errors.Is(err, anchor.ErrTraversalPoisoned):
			fmt.Fprintf(a.outW, "release %s: leaked poisoned component\n", name)
		case err != nil:
			return err
		}
	}
	return nil
}

func runExpect(reg *registry.Registry, act scenario.Act) error {
	for _, name := range act.Alive {
		alive, err := reg.Alive(name)
		if err != nil {
			return err
		}
		if !alive {
			return fmt.Errorf("expected node %q to be alive, but it was collected", name)
		}
	}
	for _, name := range act.Dead {
		alive, err := reg.Alive(name)
		if err != nil {
			return err
		}
		if alive {
			return fmt.Errorf("expected node %q to be collected, but it is alive", name)
		}
	}
	return nil
}

func (a *App) runWalk(reg *registry.Registry, act scenario.Act) error {
	ref, err := reg.Ref(act.From)
	if err != nil {
		return err
	}

	var seq iter.Seq[anchor.Ref[*builder.Entity]]
	switch {
	case act.Strategy == "dfs" && act.Direction == "outgoing":
		seq = ref.DFSOutgoing()
	case act.Strategy == "dfs" && act.Direction == "incoming":
		seq = ref.DFSIncoming()
	case act.Strategy == "bfs" && act.Direction == "outgoing":
		seq = ref.BFSOutgoing()
	default:
		seq = ref.BFSIncoming()
	}

	var names []string
	for cur := range seq {
		var name string
		err := cur.With(func(e *builder.Entity) error {
			name = e.Name()
			return nil
		})
		switch {
		case errors.Is(err, anchor.ErrCollected):
			name = "<collected>"
		case errors.Is(err, anchor.ErrPoisoned):
			name = "<poisoned>"
		case err != nil:
			return err
		}
		names = append(names, name)
	}

	fmt.Fprintf(a.outW, "walk %s %s from %s: %s\n",
		act.Strategy, act.Direction, act.From, strings.Join(names, " "))
	return nil
}

func runEdgeMutation(reg *registry.Registry, act scenario.Act) error {
	from, err := reg.Ref(act.From)
	if err != nil {
		return err
	}
	to, err := reg.Ref(act.To)
	if err != nil {
		return err
	}
	if act.Kind == scenario.ActLink {
		return builder.Link(from, to)
	}
	return builder.Unlink(from, to)
}

func runPoison(reg *registry.Registry, act scenario.Act) error {
	for _, name := range act.Targets {
		ref, err := reg.Ref(name)
		if err != nil {
			return err
		}
		g, err := ref.Lock()
		if err != nil {
			return fmt.Errorf("poisoning %q: %w", name, err)
		}
		g.Poison()
		g.Unlock()
	}
	return nil
}
