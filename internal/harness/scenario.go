package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a circuit test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Circuit is the CUE body of the circuit under test.
	Circuit string `yaml:"circuit"`

	// Steps run in order against the current circuit.
	Steps []Step `yaml:"steps,omitempty"`

	// Assertions validate the final circuit.
	// Supported types: resolved, durations, equal_to_start, parameters
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one operation on the current circuit.
type Step struct {
	// Op is the step kind (copy, deep_copy, roundtrip_cbor,
	// roundtrip_json, roundtrip_store, assign, assign_values).
	Op string `yaml:"op"`

	// Bindings maps names to magnitudes (used by assign).
	Bindings map[string]interface{} `yaml:"bindings,omitempty"`

	// Values are positional magnitudes (used by assign_values).
	Values []interface{} `yaml:"values,omitempty"`

	// ExpectError is the error code this step must fail with.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Step kinds.
const (
	StepCopy          = "copy"
	StepDeepCopy      = "deep_copy"
	StepRoundtripCBOR = "roundtrip_cbor"
	StepRoundtripJSON = "roundtrip_json"
	StepRoundtripDB   = "roundtrip_store"
	StepAssign        = "assign"
	StepAssignValues  = "assign_values"
)

// Assertion validates the final circuit.
type Assertion struct {
	// Type specifies the assertion type:
	// - "resolved": circuit has no free symbols iff Value
	// - "equal_to_start": circuit equals the compiled one iff Value
	// - "durations": delay durations in instruction order
	// - "parameters": remaining parameter and stretch names
	Type string `yaml:"type"`

	// Value is the expected flag (used by resolved, equal_to_start).
	Value *bool `yaml:"value,omitempty"`

	// Durations are the expected duration strings (used by durations).
	Durations []string `yaml:"durations,omitempty"`

	// Parameters and Stretches are the expected names (used by
	// parameters). A nil list is not checked.
	Parameters []string `yaml:"parameters,omitempty"`
	Stretches  []string `yaml:"stretches,omitempty"`
}

// Assertion type constants.
const (
	AssertResolved     = "resolved"
	AssertEqualToStart = "equal_to_start"
	AssertDurations    = "durations"
	AssertParameters   = "parameters"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Circuit == "" {
		return fmt.Errorf("circuit is required")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, s *Step) error {
	switch s.Op {
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	case StepCopy, StepDeepCopy, StepRoundtripCBOR, StepRoundtripJSON, StepRoundtripDB:
		if s.Bindings != nil || s.Values != nil {
			return fmt.Errorf("steps[%d]: %s takes no bindings or values", index, s.Op)
		}
	case StepAssign:
		if s.Bindings == nil {
			return fmt.Errorf("steps[%d]: bindings is required for assign (use {} for none)", index)
		}
	case StepAssignValues:
		if s.Values == nil {
			return fmt.Errorf("steps[%d]: values is required for assign_values (use [] for none)", index)
		}
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, s.Op)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertResolved, AssertEqualToStart:
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for %s", index, a.Type)
		}
	case AssertDurations:
		if a.Durations == nil {
			return fmt.Errorf("assertions[%d]: durations list is required for durations", index)
		}
	case AssertParameters:
		if a.Parameters == nil && a.Stretches == nil {
			return fmt.Errorf("assertions[%d]: parameters or stretches is required for parameters", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
