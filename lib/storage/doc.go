// Package storage implements the backend collaborator the query executor
// dispatches to. It maps the keyword/verb pairs of the query language onto
// two key-value namespaces (user and database), each backed by a db.KVDB
// engine, behind a shared read-through cache.
//
// Key Components:
//
//   - Backend: The engine.IBackend implementation. The full keyword×verb
//     matrix is supported: insert/update take a key and payload (a null key
//     asks for a generated one), get/delete take a key, list takes an
//     optional string prefix filter and returns the matching key names.
//     Values are stored in their textual query-language serialization.
//
//   - backendCache: Consulted transparently inside Get (a hit short-circuits
//     the storage lookup) and updated or invalidated by every write. Hit and
//     miss rates are metered with go-metrics. Eviction is arbitrary and not
//     part of the contract; the cache only bounds memory.
//
//   - User records: The user namespace validates its payloads: an object
//     with a string password and a permission out of read, write,
//     read_and_write and admin.
//
// Snapshots of both namespaces can be written and restored with Save/Load;
// no durability guarantee is attached to them.
package storage
