package harness

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestRun_AssignResolves(t *testing.T) {
	scenario := &Scenario{
		Name:        "assign_resolves",
		Description: "binding the only parameter resolves the circuit",
		Circuit:     `qubits: 2, ops: [{delay: {param: "t", unit: "us"}}]`,
		Steps: []Step{
			{Op: StepAssign, Bindings: map[string]interface{}{"t": 3}},
		},
		Assertions: []Assertion{
			{Type: AssertResolved, Value: boolPtr(true)},
			{Type: AssertDurations, Durations: []string{"3us", "3us"}},
			{Type: AssertParameters, Parameters: []string{}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 2)
	assert.Equal(t, "compile", result.Trace[0].Step)
	assert.Equal(t, []string{"t"}, result.Trace[0].Parameters)
	assert.Equal(t, int64(1), result.Trace[1].Seq)
	assert.True(t, result.Trace[1].Resolved)
	assert.False(t, result.Trace[1].EqualToStart)
}

func TestRun_DuplicationPreservesEquality(t *testing.T) {
	scenario := &Scenario{
		Name:        "duplication",
		Description: "every duplication path preserves the circuit",
		Circuit: `
qubits: 2
stretches: {a: "dt"}
ops: [
	{delay: {value: 100, unit: "dt"}, qubits: [0]},
	{delay: {value: 1, unit: "us"}, qubits: [1]},
	{delay: {stretch: "a"}},
	{delay: {scale: 0.5, of: {param: "t", unit: "ns"}}, qubits: [0]},
]`,
		Steps: []Step{
			{Op: StepCopy},
			{Op: StepDeepCopy},
			{Op: StepRoundtripCBOR},
			{Op: StepRoundtripJSON},
			{Op: StepRoundtripDB},
		},
		Assertions: []Assertion{
			{Type: AssertEqualToStart, Value: boolPtr(true)},
			{Type: AssertDurations, Durations: []string{"100dt", "1us", "a:dt", "a:dt", "0.5*t:ns"}},
			{Type: AssertParameters, Parameters: []string{"t"}, Stretches: []string{"a"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 6)
	for _, event := range result.Trace {
		assert.True(t, event.EqualToStart, event.Step)
		assert.Empty(t, event.Error)
	}
}

func TestRun_ExpectedErrorLeavesCircuit(t *testing.T) {
	scenario := &Scenario{
		Name:        "expected_error",
		Description: "a rejected binding is recorded and changes nothing",
		Circuit:     `qubits: 1, ops: [{delay: {param: "t"}}]`,
		Steps: []Step{
			{Op: StepAssign, Bindings: map[string]interface{}{"t": 2.5}, ExpectError: "NON_INTEGER_DT"},
		},
		Assertions: []Assertion{
			{Type: AssertEqualToStart, Value: boolPtr(true)},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Trace, 2)
	assert.Equal(t, "NON_INTEGER_DT", result.Trace[1].Error)
	assert.True(t, result.Trace[1].EqualToStart)
}

func TestRun_StepFailures(t *testing.T) {
	tests := []struct {
		name   string
		step   Step
		errMsg string
	}{
		{
			name:   "unexpected error",
			step:   Step{Op: StepAssign, Bindings: map[string]interface{}{"t": -1}},
			errMsg: "unexpected error",
		},
		{
			name:   "wrong error code",
			step:   Step{Op: StepAssign, Bindings: map[string]interface{}{"t": -1}, ExpectError: "NON_REAL_VALUE"},
			errMsg: "expected error NON_REAL_VALUE, got NEGATIVE_MAGNITUDE",
		},
		{
			name:   "missing error",
			step:   Step{Op: StepAssign, Bindings: map[string]interface{}{"t": 1}, ExpectError: "NON_REAL_VALUE"},
			errMsg: "expected error NON_REAL_VALUE, got none",
		},
		{
			name:   "value count",
			step:   Step{Op: StepAssignValues, Values: []interface{}{}, ExpectError: "NON_REAL_VALUE"},
			errMsg: "got VALUE_COUNT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scenario := &Scenario{
				Name:        "failures",
				Description: "step failures are reported",
				Circuit:     `qubits: 1, ops: [{delay: {param: "t", unit: "ns"}}]`,
				Steps:       []Step{tt.step},
				Assertions:  []Assertion{{Type: AssertResolved, Value: boolPtr(false)}},
			}

			result, err := Run(scenario)
			require.NoError(t, err)
			assert.False(t, result.Pass)
			require.NotEmpty(t, result.Errors)
			assert.Contains(t, result.Errors[0], tt.errMsg)
		})
	}
}

func TestRun_AssertionFailure(t *testing.T) {
	scenario := &Scenario{
		Name:        "assertion_failure",
		Description: "a failing assertion fails the result",
		Circuit:     `qubits: 1, ops: [{delay: {value: 5}}]`,
		Assertions: []Assertion{
			{Type: AssertResolved, Value: boolPtr(false)},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Assertion failed: resolved")
}

func TestRun_CompileError(t *testing.T) {
	scenario := &Scenario{
		Name:        "compile_error",
		Description: "invalid circuits stop the run",
		Circuit:     `qubits: 1, ops: [{delay: {value: 1.5, unit: "dt"}}]`,
		Assertions:  []Assertion{{Type: AssertResolved, Value: boolPtr(true)}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to compile circuit")
}

func TestRun_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	scenario := &Scenario{
		Name:        "logged",
		Description: "step events are logged",
		Circuit:     `qubits: 1, ops: [{delay: {value: 5}}]`,
		Steps:       []Step{{Op: StepCopy}},
		Assertions:  []Assertion{{Type: AssertResolved, Value: boolPtr(true)}},
	}

	result, err := Run(scenario, WithLogger(logger))
	require.NoError(t, err)
	assert.True(t, result.Pass)
	assert.Contains(t, buf.String(), `"op":"copy"`)
	assert.Contains(t, buf.String(), `"scenario":"logged"`)
}

func TestResult_AddTraceNumbers(t *testing.T) {
	r := NewResult()
	r.AddTrace(TraceEvent{Step: "compile", Seq: 42})
	r.AddTrace(TraceEvent{Step: "copy"})
	assert.Equal(t, int64(0), r.Trace[0].Seq)
	assert.Equal(t, int64(1), r.Trace[1].Seq)
}
