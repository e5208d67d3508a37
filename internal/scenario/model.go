package scenario

import "fmt"

// ActKind enumerates the script operations a scenario may contain.
type ActKind string

const (
	// ActRelease drops the named owning handles.
	ActRelease ActKind = "release"

	// ActExpect asserts which nodes are still obtainable as owning handles.
	ActExpect ActKind = "expect"

	// ActWalk traverses from a node and reports the visit order.
	ActWalk ActKind = "walk"

	// ActLink adds a directed edge between two live nodes.
	ActLink ActKind = "link"

	// ActUnlink removes a directed edge between two live nodes.
	ActUnlink ActKind = "unlink"

	// ActPoison marks the named payloads as inconsistent.
	ActPoison ActKind = "poison"
)

// Edge is a directed edge between two named nodes.
type Edge struct {
	From string
	To   string
}

// Act is one step of the scenario script.
type Act struct {
	Kind ActKind

	// Targets names the nodes a release or poison act applies to.
	Targets []string

	// From and To name the endpoints for link/unlink, and From the walk root.
	From string
	To   string

	// Strategy is "dfs" or "bfs"; Direction is "outgoing" or "incoming".
	Strategy  string
	Direction string

	// Alive and Dead are the expectation lists for an expect act.
	Alive []string
	Dead  []string
}

// Scenario is the format-agnostic model of one loaded scenario: the graph
// blueprint plus the ordered script to run against it.
type Scenario struct {
	Nodes []string
	Edges []Edge
	Acts  []Act
}

// Validate checks referential integrity of the model before anything is
// built from it: node names must be unique, every reference must resolve,
// and act parameters must be well-formed.
func (s *Scenario) Validate() error {
	known := make(map[string]bool, len(s.Nodes))
	for _, name := range s.Nodes {
		if name == "" {
			return fmt.Errorf("node with empty name")
		}
		if known[name] {
			return fmt.Errorf("duplicate node %q", name)
		}
		known[name] = true
	}

	for _, e := range s.Edges {
		if !known[e.From] {
			return fmt.Errorf("edge references unknown node %q", e.From)
		}
		if !known[e.To] {
			return fmt.Errorf("edge references unknown node %q", e.To)
		}
	}

	for i, act := range s.Acts {
		if err := validateAct(act, known); err != nil {
			return fmt.Errorf("act %d (%s): %w", i, act.Kind, err)
		}
	}
	return nil
}

func validateAct(act Act, known map[string]bool) error {
	checkAll := func(names []string) error {
		for _, n := range names {
			if !known[n] {
				return fmt.Errorf("unknown node %q", n)
			}
		}
		return nil
	}

	switch act.Kind {
	case ActRelease, ActPoison:
		if len(act.Targets) == 0 {
			return fmt.Errorf("targets must not be empty")
		}
		return checkAll(act.Targets)

	case ActExpect:
		if len(act.Alive) == 0 && len(act.Dead) == 0 {
			return fmt.Errorf("expect needs an alive or dead list")
		}
		if err := checkAll(act.Alive); err != nil {
			return err
		}
		return checkAll(act.Dead)

	case ActWalk:
		if !known[act.From] {
			return fmt.Errorf("unknown node %q", act.From)
		}
		if act.Strategy != "dfs" && act.Strategy != "bfs" {
			return fmt.Errorf("invalid strategy %q: must be 'dfs' or 'bfs'", act.Strategy)
		}
		if act.Direction != "outgoing" && act.Direction != "incoming" {
			return fmt.Errorf("invalid direction %q: must be 'outgoing' or 'incoming'", act.Direction)
		}
		return nil

	case ActLink, ActUnlink:
		if !known[act.From] {
			return fmt.Errorf("unknown node %q", act.From)
		}
		if !known[act.To] {
			return fmt.Errorf("unknown node %q", act.To)
		}
		return nil

	default:
		return fmt.Errorf("unknown act kind")
	}
}
