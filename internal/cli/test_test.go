package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	harnessScenarios = filepath.Join("..", "harness", "testdata", "scenarios")
	harnessGolden    = filepath.Join("..", "harness", "testdata", "golden")
)

const passingScenario = `name: echo_bind
description: "binds the echo delay"
circuit: |
  qubits: 1
  ops: [
    {gate: "x", qubits: [0]},
    {delay: {param: "tau", unit: "us"}},
  ]
steps:
  - op: assign
    bindings: {tau: 2}
assertions:
  - type: resolved
    value: true
  - type: durations
    durations: ["2us"]
`

const failingScenario = `name: wrong_duration
description: "asserts the wrong literal"
circuit: |
  qubits: 1
  ops: [{delay: {value: 4, unit: "dt"}}]
assertions:
  - type: durations
    durations: ["5dt"]
`

func runTestCmd(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewTestCommand(testOptions(t, format))
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeScenario(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name+".yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := runTestCmd(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}

func TestTestCommandNonExistentPath(t *testing.T) {
	out, err := runTestCmd(t, "text", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "scenario path not found")
}

func TestTestCommandHarnessGoldens(t *testing.T) {
	out, err := runTestCmd(t, "text", harnessScenarios, "--golden-dir", harnessGolden)
	require.NoError(t, err, out)

	assert.Contains(t, out, "✓ delay_stretch_bind")
	assert.Contains(t, out, "✓ parameter_vector")
	assert.Contains(t, out, "✓ rejected_bindings")
	assert.Contains(t, out, "Test Summary: 3 passed, 0 failed, 3 total")
}

func TestTestCommandFilter(t *testing.T) {
	out, err := runTestCmd(t, "json", harnessScenarios, "--golden-dir", harnessGolden, "--filter", "parameter_*")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Total)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "parameter_vector", resp.Data.Scenarios[0].Name)
}

func TestTestCommandInvalidFilter(t *testing.T) {
	_, err := runTestCmd(t, "text", harnessScenarios, "--filter", "[")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTestCommandEmptyDir(t *testing.T) {
	out, err := runTestCmd(t, "text", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "0 passed, 0 failed, 0 total")
}

func TestTestCommandFailingScenario(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "wrong_duration", failingScenario)

	out, err := runTestCmd(t, "text", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeTestFailed)
	assert.Contains(t, out, "✗ wrong_duration")
	assert.Contains(t, out, "5dt")
}

func TestTestCommandInvalidScenarioFile(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "broken", "name: broken\nsteps: [\n")

	out, err := runTestCmd(t, "text", dir)
	require.Error(t, err)
	assert.Contains(t, out, "failed to load scenario")
}

func TestTestCommandUpdateWritesGolden(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "echo_bind", passingScenario)

	_, err := runTestCmd(t, "text", dir, "--update")
	require.NoError(t, err)

	golden := filepath.Join(dir, "golden", "echo_bind.golden")
	data, err := os.ReadFile(golden)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scenario_name": "echo_bind"`)
	assert.Contains(t, string(data), `"2us"`)

	// the regenerated golden now matches
	out, err := runTestCmd(t, "text", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ echo_bind")
}

func TestTestCommandGoldenMismatch(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "echo_bind", passingScenario)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "golden"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "echo_bind.golden"), []byte("{}\n"), 0644))

	out, err := runTestCmd(t, "text", dir)
	require.Error(t, err)
	assert.Contains(t, out, "does not match golden file")
}
