package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/besnikbelegu/rustbase/lib/query"
)

// --------------------------------------------------------------------------
// Mock Backend
// --------------------------------------------------------------------------

// backendCall records a single dispatched backend operation.
type backendCall struct {
	op      string
	verb    query.Verb
	key     query.Value
	payload query.Value
	filter  *query.Value
}

// mockBackend records every call and answers from a canned script. An
// unscripted call succeeds and echoes the payload (or key, for reads).
type mockBackend struct {
	calls []backendCall
	fail  error // when set, every call fails with this error
}

func (m *mockBackend) Insert(verb query.Verb, key query.Value, payload query.Value) (query.Value, error) {
	m.calls = append(m.calls, backendCall{op: "insert", verb: verb, key: key, payload: payload})
	if m.fail != nil {
		return query.Value{}, m.fail
	}
	return payload, nil
}

func (m *mockBackend) Get(verb query.Verb, key query.Value) (query.Value, error) {
	m.calls = append(m.calls, backendCall{op: "get", verb: verb, key: key})
	if m.fail != nil {
		return query.Value{}, m.fail
	}
	return query.String_(fmt.Sprintf("value-of-%s", key)), nil
}

func (m *mockBackend) Delete(verb query.Verb, key query.Value) (query.Value, error) {
	m.calls = append(m.calls, backendCall{op: "delete", verb: verb, key: key})
	if m.fail != nil {
		return query.Value{}, m.fail
	}
	return query.Null(), nil
}

func (m *mockBackend) Update(verb query.Verb, key query.Value, payload query.Value) (query.Value, error) {
	m.calls = append(m.calls, backendCall{op: "update", verb: verb, key: key, payload: payload})
	if m.fail != nil {
		return query.Value{}, m.fail
	}
	return payload, nil
}

func (m *mockBackend) List(verb query.Verb, filter *query.Value) (query.Value, error) {
	m.calls = append(m.calls, backendCall{op: "list", verb: verb, filter: filter})
	if m.fail != nil {
		return query.Value{}, m.fail
	}
	return query.Array(), nil
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

// execute parses and runs a program against a fresh environment and mock
// backend.
func execute(t *testing.T, text string) ([]Result, *mockBackend, *Environment) {
	t.Helper()
	prog, err := query.ParseProgram(text)
	if err != nil {
		t.Fatalf("ParseProgram(%q) failed: %v", text, err)
	}
	backend := &mockBackend{}
	env := NewEnvironment()
	results := NewExecutor(backend).Execute(context.Background(), prog, env)
	return results, backend, env
}

// lastErr returns the error of the final result, failing the test if the
// program succeeded.
func lastErr(t *testing.T, results []Result) *ExecError {
	t.Helper()
	if len(results) == 0 {
		t.Fatalf("expected at least one result")
	}
	last := results[len(results)-1]
	if last.Err == nil {
		t.Fatalf("expected final statement to fail, got value %v", last.Value)
	}
	return last.Err
}

// --------------------------------------------------------------------------
// Tests
// --------------------------------------------------------------------------

// TestExecuteTerms checks literal statements evaluate without any backend
// dispatch
func TestExecuteTerms(t *testing.T) {
	t.Run("SingleValue", func(t *testing.T) {
		results, backend, _ := execute(t, `42`)
		if len(results) != 1 || results[0].Err != nil {
			t.Fatalf("unexpected results %+v", results)
		}
		if !results[0].Value.Equal(query.Number(42)) {
			t.Errorf("expected 42, got %v", results[0].Value)
		}
		if len(backend.calls) != 0 {
			t.Errorf("expected no backend calls, got %d", len(backend.calls))
		}
	})

	t.Run("MultipleValuesBecomeArray", func(t *testing.T) {
		results, _, _ := execute(t, `1 2 3`)
		want := query.Array(query.Number(1), query.Number(2), query.Number(3))
		if !results[0].Value.Equal(want) {
			t.Errorf("expected %v, got %v", want, results[0].Value)
		}
	})
}

// TestExecuteAssignment checks binding semantics
func TestExecuteAssignment(t *testing.T) {
	t.Run("BindAndReadBack", func(t *testing.T) {
		results, backend, env := execute(t, `x = 1 & get x into y`)
		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}
		for i, r := range results {
			if r.Err != nil {
				t.Fatalf("statement %d failed: %v", i, r.Err)
			}
		}
		// reading a bound identifier resolves purely from the environment
		if len(backend.calls) != 0 {
			t.Errorf("expected no backend calls, got %+v", backend.calls)
		}
		if v, ok := env.Lookup("y"); !ok || !v.Equal(query.Number(1)) {
			t.Errorf("expected y=1, got %v ok=%v", v, ok)
		}
	})

	t.Run("NestedAssignmentBindsAll", func(t *testing.T) {
		_, _, env := execute(t, `x = y = {"a": 1}`)
		want := query.Object(query.Member{Key: "a", Value: query.Number(1)})
		for _, name := range []string{"x", "y"} {
			if v, ok := env.Lookup(name); !ok || !v.Equal(want) {
				t.Errorf("expected %s=%v, got %v ok=%v", name, want, v, ok)
			}
		}
	})

	t.Run("Rebinding", func(t *testing.T) {
		_, _, env := execute(t, `x = 1 & x = 2`)
		if v, _ := env.Lookup("x"); !v.Equal(query.Number(2)) {
			t.Errorf("expected x=2 after rebinding, got %v", v)
		}
		if env.Len() != 1 {
			t.Errorf("expected 1 binding, got %d", env.Len())
		}
	})

	t.Run("FailedRhsDoesNotBind", func(t *testing.T) {
		results, _, env := execute(t, `x = get missing into y`)
		perr := lastErr(t, results)
		if perr.Kind != ExecErrUnboundIdentifier || perr.Name != "missing" {
			t.Errorf("expected UnboundIdentifier(missing), got %v", perr)
		}
		if _, ok := env.Lookup("x"); ok {
			t.Errorf("expected x unbound after failed assignment")
		}
		if _, ok := env.Lookup("y"); ok {
			t.Errorf("expected y unbound after failed binding")
		}
	})
}

// TestExecuteUnboundIdentifier checks lookup failures across statement forms
func TestExecuteUnboundIdentifier(t *testing.T) {
	for _, text := range []string{`get x`, `get x into y`, `insert database x`} {
		t.Run(text, func(t *testing.T) {
			results, backend, _ := execute(t, text)
			perr := lastErr(t, results)
			if perr.Kind != ExecErrUnboundIdentifier || perr.Name != "x" {
				t.Errorf("expected UnboundIdentifier(x), got %v", perr)
			}
			if len(backend.calls) != 0 {
				t.Errorf("expected no backend calls, got %+v", backend.calls)
			}
		})
	}
}

// TestExecuteMonadicDispatch checks keyword/verb routing and key derivation
func TestExecuteMonadicDispatch(t *testing.T) {
	t.Run("InsertWithoutKey", func(t *testing.T) {
		_, backend, _ := execute(t, `insert database {"a": 1}`)
		if len(backend.calls) != 1 {
			t.Fatalf("expected 1 backend call, got %d", len(backend.calls))
		}
		call := backend.calls[0]
		if call.op != "insert" || call.verb != query.VerbDatabase {
			t.Errorf("expected insert database, got %s %s", call.op, call.verb)
		}
		// a null key asks the backend to generate one
		if call.key.Kind != query.KindNull {
			t.Errorf("expected null key, got %v", call.key)
		}
		want := query.Object(query.Member{Key: "a", Value: query.Number(1)})
		if !call.payload.Equal(want) {
			t.Errorf("expected payload %v, got %v", want, call.payload)
		}
	})

	t.Run("InsertWithKey", func(t *testing.T) {
		_, backend, _ := execute(t, `insert user "alice" {"password": "pw", "permission": "read"}`)
		call := backend.calls[0]
		if call.verb != query.VerbUser {
			t.Errorf("expected user verb, got %s", call.verb)
		}
		if !call.key.Equal(query.String_("alice")) {
			t.Errorf("expected key alice, got %v", call.key)
		}
	})

	t.Run("GetResolvesOperandFromEnvironment", func(t *testing.T) {
		_, backend, _ := execute(t, `k = "answer" & get database k`)
		if len(backend.calls) != 1 {
			t.Fatalf("expected 1 backend call, got %d", len(backend.calls))
		}
		if !backend.calls[0].key.Equal(query.String_("answer")) {
			t.Errorf("expected key answer, got %v", backend.calls[0].key)
		}
	})

	t.Run("ListWithPrefix", func(t *testing.T) {
		_, backend, _ := execute(t, `list database "user:"`)
		call := backend.calls[0]
		if call.op != "list" || call.filter == nil || !call.filter.Equal(query.String_("user:")) {
			t.Errorf("expected list with prefix user:, got %+v", call)
		}
	})

	t.Run("ListWithoutFilter", func(t *testing.T) {
		_, backend, _ := execute(t, `list database`)
		if backend.calls[0].filter != nil {
			t.Errorf("expected nil filter, got %v", backend.calls[0].filter)
		}
	})
}

// TestExecuteArityErrors checks operand-count validation
func TestExecuteArityErrors(t *testing.T) {
	tests := []struct {
		text     string
		expected string
	}{
		{`get database 1 2`, "1"},
		{`delete database 1 2`, "1"},
		{`insert database 1 2 3`, "1 or 2"},
		{`update database 1 2 3`, "1 or 2"},
		{`list database "a" "b"`, "0 or 1"},
		{`insert x`, "1 or 2"},
	}

	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			results, backend, _ := execute(t, `x = 1 & `+tc.text)
			perr := lastErr(t, results)
			if perr.Kind != ExecErrArityMismatch {
				t.Fatalf("expected ArityMismatch, got %v", perr)
			}
			if perr.Expected != tc.expected {
				t.Errorf("expected arity %q, got %q", tc.expected, perr.Expected)
			}
			if len(backend.calls) != 0 {
				t.Errorf("expected no backend calls, got %+v", backend.calls)
			}
		})
	}
}

// TestExecuteListFilterType checks that a non-string list filter is rejected
func TestExecuteListFilterType(t *testing.T) {
	results, backend, _ := execute(t, `list database 42`)
	perr := lastErr(t, results)
	if perr.Kind != ExecErrTypeMismatch {
		t.Fatalf("expected TypeMismatch, got %v", perr)
	}
	if perr.Expected != "string" || perr.Actual != "number" {
		t.Errorf("expected string/number mismatch, got %s/%s", perr.Expected, perr.Actual)
	}
	if len(backend.calls) != 0 {
		t.Errorf("expected no backend calls, got %+v", backend.calls)
	}
}

// TestExecuteIntoBinding checks the into form against the backend
func TestExecuteIntoBinding(t *testing.T) {
	t.Run("InsertStoresUnderTarget", func(t *testing.T) {
		_, backend, env := execute(t, `insert {"a": 1} into x`)
		call := backend.calls[0]
		if call.op != "insert" || !call.key.Equal(query.String_("x")) {
			t.Errorf("expected insert under key x, got %+v", call)
		}
		if v, ok := env.Lookup("x"); !ok || !v.Equal(call.payload) {
			t.Errorf("expected x bound to stored value, got %v ok=%v", v, ok)
		}
	})

	t.Run("GetLiteralFetchesAndBinds", func(t *testing.T) {
		_, backend, env := execute(t, `get "answer" into x`)
		call := backend.calls[0]
		if call.op != "get" || !call.key.Equal(query.String_("answer")) {
			t.Errorf("expected get answer, got %+v", call)
		}
		if _, ok := env.Lookup("x"); !ok {
			t.Errorf("expected x bound to fetched value")
		}
	})
}

// TestExecuteFailFast checks that the first failing statement ends the
// program
func TestExecuteFailFast(t *testing.T) {
	results, backend, env := execute(t, `x = 1 & get missing & y = 2`)
	if len(results) != 2 {
		t.Fatalf("expected 2 results (fail-fast), got %d", len(results))
	}
	if results[0].Err != nil {
		t.Errorf("expected first statement to succeed, got %v", results[0].Err)
	}
	perr := lastErr(t, results)
	if perr.Kind != ExecErrUnboundIdentifier {
		t.Errorf("expected UnboundIdentifier, got %v", perr)
	}
	// the statement after the failure must not run
	if _, ok := env.Lookup("y"); ok {
		t.Errorf("expected y unbound, later statement must not execute")
	}
	if len(backend.calls) != 0 {
		t.Errorf("expected no backend calls, got %+v", backend.calls)
	}
}

// TestExecuteBackendFailure checks that backend errors surface as
// BackendFailure and stop the program
func TestExecuteBackendFailure(t *testing.T) {
	prog, err := query.ParseProgram(`get "a" into x & 1`)
	if err != nil {
		t.Fatalf("ParseProgram failed: %v", err)
	}
	backend := &mockBackend{fail: NewBackendError(BackendRetCNotFound, "key not found")}
	env := NewEnvironment()
	results := NewExecutor(backend).Execute(context.Background(), prog, env)

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	perr := results[0].Err
	if perr == nil || perr.Kind != ExecErrBackendFailure {
		t.Fatalf("expected BackendFailure, got %+v", results[0])
	}
	var berr *BackendError
	if !errors.As(perr.Unwrap(), &berr) || berr.Code != BackendRetCNotFound {
		t.Errorf("expected wrapped NotFound backend error, got %v", perr.Err)
	}
	if _, ok := env.Lookup("x"); ok {
		t.Errorf("expected x unbound after backend failure")
	}
}

// TestExecuteContextCancellation checks that a cancelled context stops
// execution between statements
func TestExecuteContextCancellation(t *testing.T) {
	prog, err := query.ParseProgram(`1 & 2 & 3`)
	if err != nil {
		t.Fatalf("ParseProgram failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := NewExecutor(&mockBackend{}).Execute(ctx, prog, NewEnvironment())
	if len(results) != 0 {
		t.Errorf("expected no results with cancelled context, got %d", len(results))
	}
}

// TestExecutorSharedAcrossSessions checks that sessions are isolated by
// their environments, not by the executor
func TestExecutorSharedAcrossSessions(t *testing.T) {
	backend := &mockBackend{}
	ex := NewExecutor(backend)

	progA, _ := query.ParseProgram(`x = 1`)
	progB, _ := query.ParseProgram(`get x`)

	envA := NewEnvironment()
	envB := NewEnvironment()
	ex.Execute(context.Background(), progA, envA)
	results := ex.Execute(context.Background(), progB, envB)

	// the binding from session A must not leak into session B
	perr := lastErr(t, results)
	if perr.Kind != ExecErrUnboundIdentifier {
		t.Errorf("expected UnboundIdentifier in fresh session, got %v", perr)
	}
}
