package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos

	// Err is the underlying cause, if any. Duration validation errors
	// stay reachable through errors.Is / errors.As.
	Err error
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// Line returns the source line, or 0 if unknown.
func (e *CompileError) Line() int {
	if e.Pos.IsValid() {
		return e.Pos.Line()
	}
	return 0
}

// wrapError attaches field and position to a cause.
func wrapError(field string, v cue.Value, err error) error {
	return &CompileError{Field: field, Message: err.Error(), Pos: v.Pos(), Err: err}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
			Err:     err,
		}
	}

	return err
}
