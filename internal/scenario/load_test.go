package scenario

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestLoadPath_Success(t *testing.T) {
	dir := writeScenario(t, map[string]string{
		"graph.hcl": `
node "a" {}
node "b" {}
edge "a" "b" {}

act "walk" {
  from      = "a"
  strategy  = "dfs"
  direction = "outgoing"
}

act "release" {
  targets = ["a", "b"]
}

act "expect" {
  dead = ["a", "b"]
}
`,
	})

	scn, err := LoadPath(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, scn.Nodes)
	assert.Equal(t, []Edge{{From: "a", To: "b"}}, scn.Edges)
	require.Len(t, scn.Acts, 3)
	assert.Equal(t, ActWalk, scn.Acts[0].Kind)
	assert.Equal(t, "a", scn.Acts[0].From)
	assert.Equal(t, []string{"a", "b"}, scn.Acts[1].Targets)
	assert.Equal(t, []string{"a", "b"}, scn.Acts[2].Dead)
}

func TestLoadPath_MergesMultipleFiles(t *testing.T) {
	dir := writeScenario(t, map[string]string{
		"01_nodes.hcl": `
node "a" {}
node "b" {}
`,
		"02_script.hcl": `
edge "a" "b" {}
act "release" {
  targets = ["a", "b"]
}
`,
	})

	scn, err := LoadPath(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, scn.Nodes, 2)
	assert.Len(t, scn.Edges, 1)
	assert.Len(t, scn.Acts, 1)
}

func TestLoadPath_SingleFilePath(t *testing.T) {
	dir := writeScenario(t, map[string]string{
		"only.hcl": `node "a" {}`,
	})

	scn, err := LoadPath(context.Background(), filepath.Join(dir, "only.hcl"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, scn.Nodes)
}

func TestLoadPath_Failures(t *testing.T) {
	testCases := []struct {
		name        string
		content     string
		errContains string
	}{
		{
			name:        "malformed HCL",
			content:     `node "a" {`,
			errContains: "parsing",
		},
		{
			name: "edge to unknown node",
			content: `
node "a" {}
edge "a" "ghost" {}
`,
			errContains: `unknown node "ghost"`,
		},
		{
			name: "duplicate node",
			content: `
node "a" {}
node "a" {}
`,
			errContains: `duplicate node "a"`,
		},
		{
			name: "unknown act kind",
			content: `
node "a" {}
act "explode" {
  targets = ["a"]
}
`,
			errContains: "unknown act kind",
		},
		{
			name: "walk with bad strategy",
			content: `
node "a" {}
act "walk" {
  from      = "a"
  strategy  = "sideways"
  direction = "outgoing"
}
`,
			errContains: `invalid strategy "sideways"`,
		},
		{
			name: "targets is not a string list",
			content: `
node "a" {}
act "release" {
  targets = 42
}
`,
			errContains: "expected a list of strings",
		},
		{
			name: "release without targets",
			content: `
node "a" {}
act "release" {}
`,
			errContains: "targets must not be empty",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := writeScenario(t, map[string]string{"bad.hcl": tc.content})
			_, err := LoadPath(context.Background(), dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errContains)
		})
	}
}

func TestLoadPath_NoFiles(t *testing.T) {
	_, err := LoadPath(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no .hcl scenario files")
}
