// Package testutil provides shared helpers for integration tests.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/anchorgraph/internal/app"
)

// SafeBuffer is a thread-safe buffer for capturing output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of a scenario test run.
type HarnessResult struct {
	Output    string
	LogOutput string
	Err       error
}

// RunScenarioTest writes the given HCL files into a temporary directory and
// runs a fresh App against it, capturing the scenario output and log streams
// separately.
func RunScenarioTest(t *testing.T, files map[string]string) *HarnessResult {
	t.Helper()
	return RunScenarioTestWithContext(context.Background(), t, files)
}

// RunScenarioTestWithContext is RunScenarioTest with a caller-provided context.
func RunScenarioTestWithContext(ctx context.Context, t *testing.T, files map[string]string) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}

	config, err := app.NewConfig(app.Config{
		ScenarioPath: tmpDir,
		LogLevel:     "debug",
		LogFormat:    "text",
	})
	require.NoError(t, err)

	outBuffer := &SafeBuffer{}
	logBuffer := &SafeBuffer{}
	testApp := app.NewApp(outBuffer, logBuffer, config)
	runErr := testApp.Run(ctx)

	if os.Getenv("ANCHORGRAPH_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		Output:    outBuffer.String(),
		LogOutput: logBuffer.String(),
		Err:       runErr,
	}
}
