// Package engine executes parsed query programs against a storage backend.
// It connects the query package's Program representation with the IBackend
// collaborator implemented by the storage layer.
//
// The package focuses on:
//   - Sequential, in-order execution of a program's statements with one
//     result per statement
//   - A per-session Environment holding identifier bindings, created fresh
//     for every program and discarded afterwards
//   - Typed execution errors (unbound identifier, arity mismatch, type
//     mismatch, backend failure)
//
// Key Components:
//
//   - Executor: Walks a Program and evaluates each statement. Assignments
//     mutate only the session environment; commands dispatch to the backend.
//     Execution is fail-fast: the first failing statement ends the program,
//     and a failed assignment never binds its target. Backend side effects
//     applied by earlier statements are never rolled back.
//
//   - Environment: The session-scoped identifier table. Later statements see
//     bindings created by earlier ones, never the other way around. Because
//     every session owns its environment, programs from different sessions
//     can execute concurrently; the backend is the only shared resource and
//     brings its own concurrency discipline.
//
//   - IBackend: The contract the executor dispatches keyword/verb pairs to.
//     The default implementation lives in the storage package; tests use
//     in-memory fakes.
package engine
