package scenario

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/anchorgraph/internal/ctxlog"
	"github.com/vk/anchorgraph/internal/fsutil"
)

// hclFile mirrors the top-level structure of one scenario file.
type hclFile struct {
	Nodes []*hclNode `hcl:"node,block"`
	Edges []*hclEdge `hcl:"edge,block"`
	Acts  []*hclAct  `hcl:"act,block"`
}

type hclNode struct {
	Name string `hcl:"name,label"`
}

type hclEdge struct {
	From string `hcl:"from,label"`
	To   string `hcl:"to,label"`
}

// hclAct keeps the list-valued attributes as raw expressions; which of them
// are meaningful depends on the act kind, and evaluation happens during
// translation where a bad value can be reported with the act's position.
type hclAct struct {
	Kind      string         `hcl:"kind,label"`
	Targets   hcl.Expression `hcl:"targets,optional"`
	From      string         `hcl:"from,optional"`
	To        string         `hcl:"to,optional"`
	Strategy  string         `hcl:"strategy,optional"`
	Direction string         `hcl:"direction,optional"`
	Alive     hcl.Expression `hcl:"alive,optional"`
	Dead      hcl.Expression `hcl:"dead,optional"`
}

// LoadPath parses every .hcl file under path (or path itself, if it is a
// file), merges the blocks in file order, and returns the validated model.
func LoadPath(ctx context.Context, path string) (*Scenario, error) {
	log := ctxlog.FromContext(ctx)

	files, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return nil, fmt.Errorf("finding scenario files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl scenario files found under %q", path)
	}
	log.Debug("Found scenario files", "count", len(files))

	parser := hclparse.NewParser()
	scn := &Scenario{}
	for _, file := range files {
		hf, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("parsing %s: %w", file, diags)
		}

		var raw hclFile
		if diags := gohcl.DecodeBody(hf.Body, nil, &raw); diags.HasErrors() {
			return nil, fmt.Errorf("decoding %s: %w", file, diags)
		}
		if err := mergeFile(scn, &raw); err != nil {
			return nil, fmt.Errorf("translating %s: %w", file, err)
		}
	}

	if err := scn.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	log.Debug("Scenario loaded",
		"nodes", len(scn.Nodes), "edges", len(scn.Edges), "acts", len(scn.Acts))
	return scn, nil
}

func mergeFile(scn *Scenario, raw *hclFile) error {
	for _, n := range raw.Nodes {
		scn.Nodes = append(scn.Nodes, n.Name)
	}
	for _, e := range raw.Edges {
		scn.Edges = append(scn.Edges, Edge{From: e.From, To: e.To})
	}
	for _, a := range raw.Acts {
		act, err := translateAct(a)
		if err != nil {
			return err
		}
		scn.Acts = append(scn.Acts, act)
	}
	return nil
}

func translateAct(raw *hclAct) (Act, error) {
	act := Act{
		Kind:      ActKind(raw.Kind),
		From:      raw.From,
		To:        raw.To,
		Strategy:  raw.Strategy,
		Direction: raw.Direction,
	}

	var err error
	if act.Targets, err = stringList(raw.Targets); err != nil {
		return Act{}, fmt.Errorf("act %q, attribute 'targets': %w", raw.Kind, err)
	}
	if act.Alive, err = stringList(raw.Alive); err != nil {
		return Act{}, fmt.Errorf("act %q, attribute 'alive': %w", raw.Kind, err)
	}
	if act.Dead, err = stringList(raw.Dead); err != nil {
		return Act{}, fmt.Errorf("act %q, attribute 'dead': %w", raw.Kind, err)
	}
	return act, nil
}

// stringList evaluates an HCL expression to a list of strings. A nil or
// absent expression yields nil, letting callers distinguish "not set" from
// an explicitly empty list.
func stringList(expr hcl.Expression) ([]string, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("evaluating expression: %w", diags)
	}
	if val.IsNull() {
		return nil, nil
	}

	val, err := convert.Convert(val, cty.List(cty.String))
	if err != nil {
		return nil, fmt.Errorf("expected a list of strings: %w", err)
	}

	var out []string
	for it := val.ElementIterator(); it.Next(); {
		_, elem := it.Element()
		if elem.IsNull() {
			return nil, fmt.Errorf("list element must not be null")
		}
		out = append(out, elem.AsString())
	}
	return out, nil
}
