// Package harness runs scenario tests against compiled circuits.
//
// A scenario compiles one circuit, drives it through a sequence of
// duplication, serialization and binding steps, and asserts on the
// final circuit. Every step appends a trace event, and the trace can
// be compared against a golden file.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	circuit: |
//	  qubits: 2
//	  stretches: {a: "dt"}
//	  ops: [{delay: {stretch: "a"}}]
//	steps:
//	  - op: deep_copy
//	  - op: assign
//	    bindings: {a: 8}
//	  - op: assign
//	    bindings: {t: 1.5}
//	    expect_error: UNKNOWN_PARAMETER
//	assertions:
//	  - type: resolved
//	    value: true
//	  - type: durations
//	    durations: ["8dt", "8dt"]
//
// The circuit field holds the body of one CUE circuit struct, in the
// format accepted by compiler.CompileCircuit.
//
// # Steps
//
//   - copy, deep_copy: replace the current circuit with a duplicate
//   - roundtrip_cbor, roundtrip_json: encode and decode
//   - roundtrip_store: save to and load from an in-memory store
//   - assign: bind by name with bindings
//   - assign_values: bind positionally with values
//
// A step with expect_error must fail with that code, and leaves the
// current circuit unchanged. Codes are duration rules (NON_INTEGER_DT)
// or UNKNOWN_PARAMETER, VALUE_COUNT.
package harness
