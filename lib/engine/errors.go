package engine

import (
	"fmt"

	"github.com/besnikbelegu/rustbase/lib/query"
)

// --------------------------------------------------------------------------
// Execution Error Type
// --------------------------------------------------------------------------

// ExecErrKind classifies execution failures.
type ExecErrKind uint8

const (
	ExecErrUnboundIdentifier     ExecErrKind = iota // identifier has no binding in the session environment
	ExecErrArityMismatch                            // wrong operand count for the keyword
	ExecErrInvalidVerbForKeyword                    // keyword/verb pair outside the backend's matrix
	ExecErrBackendFailure                           // the backend call failed
	ExecErrTypeMismatch                             // operand has the wrong value kind
)

// String returns the canonical name of the error kind.
func (k ExecErrKind) String() string {
	switch k {
	case ExecErrUnboundIdentifier:
		return "UnboundIdentifier"
	case ExecErrArityMismatch:
		return "ArityMismatch"
	case ExecErrInvalidVerbForKeyword:
		return "InvalidVerbForKeyword"
	case ExecErrBackendFailure:
		return "BackendFailure"
	case ExecErrTypeMismatch:
		return "TypeMismatch"
	default:
		return "Unknown"
	}
}

// ExecError is the error type produced by statement execution. Only the
// fields relevant to the kind are set.
type ExecError struct {
	Kind ExecErrKind

	Name     string        // UnboundIdentifier: the identifier
	Keyword  query.Keyword // ArityMismatch, InvalidVerbForKeyword
	Verb     query.Verb    // InvalidVerbForKeyword
	Expected string        // ArityMismatch: expected operand count; TypeMismatch: expected kind
	Actual   string        // ArityMismatch: actual operand count; TypeMismatch: actual kind
	Err      error         // BackendFailure: the wrapped backend error
}

// Error implements the error interface.
func (e *ExecError) Error() string {
	switch e.Kind {
	case ExecErrUnboundIdentifier:
		return fmt.Sprintf("ExecError (%s): identifier %q is not bound", e.Kind, e.Name)
	case ExecErrArityMismatch:
		return fmt.Sprintf("ExecError (%s): %s expects %s operand(s), got %s", e.Kind, e.Keyword, e.Expected, e.Actual)
	case ExecErrInvalidVerbForKeyword:
		return fmt.Sprintf("ExecError (%s): %s is not valid for %s", e.Kind, e.Verb, e.Keyword)
	case ExecErrBackendFailure:
		return fmt.Sprintf("ExecError (%s): %v", e.Kind, e.Err)
	case ExecErrTypeMismatch:
		return fmt.Sprintf("ExecError (%s): expected %s, got %s", e.Kind, e.Expected, e.Actual)
	default:
		return fmt.Sprintf("ExecError (%s)", e.Kind)
	}
}

// Unwrap exposes the wrapped backend error for errors.Is/As.
func (e *ExecError) Unwrap() error {
	return e.Err
}

// --------------------------------------------------------------------------
// Factory Functions
// --------------------------------------------------------------------------

func newUnboundIdentifier(name string) *ExecError {
	return &ExecError{Kind: ExecErrUnboundIdentifier, Name: name}
}

func newArityMismatch(keyword query.Keyword, expected string, actual int) *ExecError {
	return &ExecError{
		Kind:     ExecErrArityMismatch,
		Keyword:  keyword,
		Expected: expected,
		Actual:   fmt.Sprintf("%d", actual),
	}
}

func newBackendFailure(err error) *ExecError {
	return &ExecError{Kind: ExecErrBackendFailure, Err: err}
}

func newTypeMismatch(expected string, actual query.ValueKind) *ExecError {
	return &ExecError{
		Kind:     ExecErrTypeMismatch,
		Expected: expected,
		Actual:   actual.String(),
	}
}
