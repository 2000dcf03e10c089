package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abbycross/qiskit/internal/circuit"
	"github.com/abbycross/qiskit/internal/duration"
)

func runAssignCmd(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewAssignCommand(testOptions(t, format))
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestParseBindings(t *testing.T) {
	b, err := ParseBindings([]string{"a=8", "t=2.5", " z = 1+2i"})
	require.NoError(t, err)
	assert.Equal(t, duration.Bindings{"a": int64(8), "t": 2.5, "z": complex(1, 2)}, b)
}

func TestParseBindings_Errors(t *testing.T) {
	tests := []struct {
		name  string
		pairs []string
		want  string
	}{
		{"no equals", []string{"a8"}, "expected name=value"},
		{"empty name", []string{"=8"}, "expected name=value"},
		{"duplicate", []string{"a=1", "a=2"}, "given twice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBindings(tt.pairs)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, int64(8), ParseValue("8"))
	assert.Equal(t, -3.25, ParseValue("-3.25"))
	assert.Equal(t, 1e-9, ParseValue("1e-9"))
	assert.Equal(t, complex(0, 2), ParseValue("2i"))
	assert.Equal(t, "abc", ParseValue("abc"))
	assert.Equal(t, math.Inf(1), ParseValue("1e400"))
	assert.Equal(t, math.Inf(-1), ParseValue("-1e400"))
}

func TestBindErrorCode(t *testing.T) {
	_, err := duration.NewLiteral(-1, duration.UnitDt)
	require.Error(t, err)
	assert.Equal(t, "NEGATIVE_MAGNITUDE", BindErrorCode(err))

	assert.Equal(t, "UNKNOWN_PARAMETER", BindErrorCode(circuit.ErrUnknownParameter))
	assert.Equal(t, "VALUE_COUNT", BindErrorCode(circuit.ErrValueCount))
	assert.Equal(t, "SYMBOL_UNIT", BindErrorCode(circuit.ErrSymbolUnit))
	assert.Equal(t, ErrCodeBind, BindErrorCode(errors.New("other")))
}

func TestAssignByName(t *testing.T) {
	out, err := runAssignCmd(t, "json", idleFile, "--set", "a=8", "--set", "t=2.5")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   AssignResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Circuit.Resolved)
	assert.Equal(t, []string{"100dt", "2.5ns", "(8dt + 10dt)"}, resp.Data.Circuit.Durations)
	assert.Empty(t, resp.Data.Circuit.Parameters)
	assert.Empty(t, resp.Data.Circuit.Stretches)
	assert.Equal(t, float64(8), resp.Data.Bindings["a"])
}

func TestAssignPartial(t *testing.T) {
	out, err := runAssignCmd(t, "text", idleFile, "--set", "a=8")
	require.NoError(t, err)
	assert.Contains(t, out, "durations:   100dt, t:ns, (8dt + 10dt)")
	assert.Contains(t, out, "parameters:  t")
	assert.NotContains(t, out, "stretches:")
	assert.Contains(t, out, "resolved:    false")
}

func TestAssignPositional(t *testing.T) {
	out, err := runAssignCmd(t, "json", circuitsDir, "--circuit", "echo", "--values", "0.5")
	require.NoError(t, err)

	var resp struct {
		Data AssignResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, []string{"0.5us", "0.5us"}, resp.Data.Circuit.Durations)
	assert.Equal(t, map[string]any{"tau": 0.5}, resp.Data.Bindings)
}

func TestAssignRejected(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code string
	}{
		{"fractional dt", []string{idleFile, "--set", "a=1.5"}, "NON_INTEGER_DT"},
		{"negative", []string{idleFile, "--set", "t=-1"}, "NEGATIVE_MAGNITUDE"},
		{"complex", []string{idleFile, "--set", "t=1+2i"}, "NON_REAL_VALUE"},
		{"overflowing float", []string{idleFile, "--set", "t=1e400"}, "NON_FINITE_MAGNITUDE"},
		{"unknown name", []string{idleFile, "--set", "nope=1"}, "UNKNOWN_PARAMETER"},
		{"wrong count", []string{circuitsDir, "--circuit", "echo", "--values", "1,2"}, "VALUE_COUNT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runAssignCmd(t, "json", tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal([]byte(out), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestAssignAmbiguousCircuit(t *testing.T) {
	out, err := runAssignCmd(t, "text", circuitsDir, "--values", "1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "choose one with --circuit")
}

func TestAssignSetAndValuesExclusive(t *testing.T) {
	_, err := runAssignCmd(t, "text", idleFile, "--set", "a=1", "--values", "1")
	require.Error(t, err)
}
