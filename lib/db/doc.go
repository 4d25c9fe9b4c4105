// Package db defines the low-level key-value database abstraction the
// storage backend builds its namespaces on.
//
// The package focuses on:
//   - A unified interface (KVDB) for byte-oriented key-value operations
//     across different engine implementations
//   - Feature flags so callers can query what an engine supports before
//     relying on an operation
//   - Pluggable engine architecture through the DBFactory pattern
//
// The dust engine (lib/db/engines/dust) is the default implementation: an
// in-memory concurrent map with prefix scans and binary snapshots.
package db
