package harness

// TraceEvent records the circuit after one step.
type TraceEvent struct {
	Seq  int64  `json:"seq"`
	Step string `json:"step"`

	// Error is the code of an expected failure. The circuit fields then
	// describe the unchanged circuit.
	Error string `json:"error,omitempty"`

	Durations    []string `json:"durations"`
	Parameters   []string `json:"parameters"`
	Stretches    []string `json:"stretches"`
	Resolved     bool     `json:"resolved"`
	EqualToStart bool     `json:"equal_to_start"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every step and assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per step, after an initial compile event.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an event, numbering it after the previous one.
func (r *Result) AddTrace(event TraceEvent) {
	event.Seq = int64(len(r.Trace))
	r.Trace = append(r.Trace, event)
}
