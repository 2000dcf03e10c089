package harness

import (
	"context"
	"fmt"

	"cuelang.org/go/cue/cuecontext"
	"github.com/rs/zerolog"

	"github.com/abbycross/qiskit/internal/circuit"
	"github.com/abbycross/qiskit/internal/compiler"
	"github.com/abbycross/qiskit/internal/duration"
	"github.com/abbycross/qiskit/internal/store"
)

// CodeError is the scenario code for failures circuit.ErrorCode does not name.
const CodeError = "ERROR"

// Harness is the test execution engine.
type Harness struct {
	store  *store.Store
	logger zerolog.Logger
	start  *circuit.Circuit
}

// Option configures a run.
type Option func(*Harness)

// WithLogger sets the logger for step events.
func WithLogger(logger zerolog.Logger) Option {
	return func(h *Harness) {
		h.logger = logger
	}
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs against a fresh in-memory store for isolation.
//
// Execution flow:
// 1. Compile the scenario circuit
// 2. Execute steps in order, recording a trace event per step
// 3. Evaluate assertions on the final circuit
//
// Step and assertion failures are reported in the result; the returned
// error is for scenarios that cannot run at all.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(h)
	}

	start, err := compileCircuit(scenario.Circuit)
	if err != nil {
		return nil, fmt.Errorf("failed to compile circuit: %w", err)
	}
	h.start = start

	st, err := store.Open(":memory:", store.WithLogger(h.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()
	h.store = st

	ctx := context.Background()
	result := NewResult()
	result.AddTrace(h.snapshot("compile", start))

	current := start
	for i, step := range scenario.Steps {
		current = h.executeStep(ctx, i, step, current, result)
	}

	for _, errMsg := range EvaluateAssertions(current, start, scenario.Assertions) {
		result.AddError(errMsg)
	}

	h.logger.Debug().
		Str("scenario", scenario.Name).
		Bool("pass", result.Pass).
		Int("steps", len(scenario.Steps)).
		Msg("scenario finished")
	return result, nil
}

func compileCircuit(src string) (*circuit.Circuit, error) {
	v := cuecontext.New().CompileString(src)
	return compiler.CompileCircuit(v)
}

// executeStep runs one step and returns the new current circuit. A
// failed step leaves the current circuit in place.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, current *circuit.Circuit, result *Result) *circuit.Circuit {
	next, err := h.apply(ctx, step, current)

	switch {
	case err != nil && step.ExpectError == "":
		result.AddError(fmt.Sprintf("steps[%d] %s: unexpected error: %v", index, step.Op, err))
		return current
	case err != nil:
		code := errorCode(err)
		if code != step.ExpectError {
			result.AddError(fmt.Sprintf("steps[%d] %s: expected error %s, got %s (%v)", index, step.Op, step.ExpectError, code, err))
		}
		event := h.snapshot(step.Op, current)
		event.Error = code
		result.AddTrace(event)
		h.logger.Debug().Int("step", index).Str("op", step.Op).Str("error", code).Msg("step failed")
		return current
	case step.ExpectError != "":
		result.AddError(fmt.Sprintf("steps[%d] %s: expected error %s, got none", index, step.Op, step.ExpectError))
	}

	result.AddTrace(h.snapshot(step.Op, next))
	h.logger.Debug().Int("step", index).Str("op", step.Op).Msg("step applied")
	return next
}

func (h *Harness) apply(ctx context.Context, step Step, c *circuit.Circuit) (*circuit.Circuit, error) {
	switch step.Op {
	case StepCopy:
		return c.Copy(), nil
	case StepDeepCopy:
		return c.DeepCopy(), nil
	case StepRoundtripCBOR:
		data, err := c.MarshalBinary()
		if err != nil {
			return nil, err
		}
		return circuit.DecodeBinary(data)
	case StepRoundtripJSON:
		data, err := c.MarshalJSON()
		if err != nil {
			return nil, err
		}
		out := circuit.New(0)
		if err := out.UnmarshalJSON(data); err != nil {
			return nil, err
		}
		return out, nil
	case StepRoundtripDB:
		rec, err := h.store.Save(ctx, "scenario", c)
		if err != nil {
			return nil, err
		}
		return h.store.Load(ctx, rec.ID)
	case StepAssign:
		return c.AssignParameters(duration.Bindings(step.Bindings))
	case StepAssignValues:
		return c.AssignParameterValues(step.Values)
	default:
		return nil, fmt.Errorf("unknown op %q", step.Op)
	}
}

// snapshot describes c for the trace.
func (h *Harness) snapshot(step string, c *circuit.Circuit) TraceEvent {
	return TraceEvent{
		Step:         step,
		Durations:    delayDurations(c),
		Parameters:   orEmpty(c.Parameters()),
		Stretches:    orEmpty(c.Stretches()),
		Resolved:     c.IsResolved(),
		EqualToStart: c.Equal(h.start),
	}
}

// delayDurations renders each delay's duration in instruction order.
func delayDurations(c *circuit.Circuit) []string {
	out := []string{}
	for _, inst := range c.Data() {
		if d, ok := inst.Operation.(*circuit.Delay); ok {
			out = append(out, d.Duration().String())
		}
	}
	return out
}

// errorCode maps an error to its scenario code.
func errorCode(err error) string {
	if code := circuit.ErrorCode(err); code != "" {
		return code
	}
	return CodeError
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
