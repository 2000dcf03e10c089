package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/abbycross/qiskit/internal/compiler"
	"github.com/abbycross/qiskit/internal/duration"
)

// LoadError represents an error that occurred while loading circuits.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
	Err     error
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadCircuits compiles the circuits in a CUE file, or in the CUE
// package of a directory.
func LoadCircuits(path string) ([]compiler.Compiled, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("path not found: %s", path), Err: err}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing %s: %v", path, err), Err: err}
	}

	var compiled []compiler.Compiled
	if info.IsDir() {
		compiled, err = loadDir(path)
	} else {
		compiled, err = compiler.CompileFile(path)
	}
	if err != nil {
		return nil, convertCompileError(err)
	}
	return compiled, nil
}

// loadDir builds the CUE package in dir.
func loadDir(dir string) ([]compiler.Compiled, error) {
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}
	return compiler.CompileValue(cuecontext.New().BuildInstance(inst))
}

// SelectCircuit picks the circuit called name. An empty name selects
// the only circuit when there is exactly one.
func SelectCircuit(compiled []compiler.Compiled, name string) (compiler.Compiled, error) {
	if name == "" {
		if len(compiled) == 1 {
			return compiled[0], nil
		}
		names := make([]string, len(compiled))
		for i, c := range compiled {
			names[i] = c.Name
		}
		return compiler.Compiled{}, fmt.Errorf("%d circuits found, choose one with --circuit (%s)", len(compiled), strings.Join(names, ", "))
	}
	for _, c := range compiled {
		if c.Name == name {
			return c, nil
		}
	}
	return compiler.Compiled{}, fmt.Errorf("circuit %q not found", name)
}

// convertCompileError converts a compiler error to a LoadError with
// position info. Duration failures carry their rule as the code.
func convertCompileError(err error) *LoadError {
	code := ErrCodeCompile
	if rule := duration.RuleOf(err); rule != "" {
		code = string(rule)
	}

	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    code,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
			Err:     err,
		}
	}
	return &LoadError{Code: code, Message: err.Error(), Err: err}
}

// loadErrorCode returns the code of a LoadError, or ErrCodeGeneric.
func loadErrorCode(err error) string {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	return ErrCodeGeneric
}

// loadExitCode maps missing paths to command errors and everything
// else to failures.
func loadExitCode(err error) int {
	if loadErrorCode(err) == ErrCodeNotFound {
		return ExitCommandError
	}
	return ExitFailure
}
