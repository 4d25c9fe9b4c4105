package engine

import (
	"fmt"

	"github.com/besnikbelegu/rustbase/lib/query"
)

// --------------------------------------------------------------------------
// Backend Interface
// --------------------------------------------------------------------------

// IBackend is the collaborator contract the executor dispatches commands to.
// Implementations map the keyword/verb pairs onto durable storage; the
// executor treats every call as an atomic, possibly-blocking operation and
// awaits its result before the next statement runs. Concurrency discipline
// across sessions is the backend's responsibility.
type IBackend interface {
	// Insert stores payload under key in the verb's namespace. A null key
	// asks the backend to generate one. Inserting an existing key fails.
	Insert(verb query.Verb, key query.Value, payload query.Value) (query.Value, error)
	// Get returns the value stored under key in the verb's namespace.
	Get(verb query.Verb, key query.Value) (query.Value, error)
	// Delete removes key from the verb's namespace and returns the value
	// that was stored.
	Delete(verb query.Verb, key query.Value) (query.Value, error)
	// Update replaces the value stored under an existing key.
	Update(verb query.Verb, key query.Value, payload query.Value) (query.Value, error)
	// List returns the keys of the verb's namespace as an array of strings,
	// optionally restricted to keys starting with the filter prefix.
	List(verb query.Verb, filter *query.Value) (query.Value, error)
}

// --------------------------------------------------------------------------
// Backend Error Type
// --------------------------------------------------------------------------

// BackendRetCode classifies backend failures.
type BackendRetCode uint64

const (
	BackendRetCInternalError   BackendRetCode = iota // 0: operation failed due to an internal error
	BackendRetCNotFound                              // 1: key does not exist
	BackendRetCAlreadyExists                         // 2: key already exists
	BackendRetCInvalidArgument                       // 3: malformed key or payload
)

// BackendError is the error type returned by IBackend implementations. It
// wraps a return code and a message, following the same shape as the other
// typed errors in this repository.
type BackendError struct {
	Code BackendRetCode
	Msg  string
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	errorCode := ""
	switch e.Code {
	case BackendRetCInternalError:
		errorCode = "InternalError"
	case BackendRetCNotFound:
		errorCode = "NotFound"
	case BackendRetCAlreadyExists:
		errorCode = "AlreadyExists"
	case BackendRetCInvalidArgument:
		errorCode = "InvalidArgument"
	default:
		errorCode = "Unknown"
	}
	return fmt.Sprintf("BackendError (code %s): %s", errorCode, e.Msg)
}

// NewBackendError creates a new BackendError with the given code and message.
func NewBackendError(code BackendRetCode, msg string) *BackendError {
	return &BackendError{
		Code: code,
		Msg:  msg,
	}
}
