// Package dust implements the default in-memory key-value engine behind the
// storage backend. It provides a complete implementation of the db.KVDB
// interface on top of a concurrent hash map.
//
// The package focuses on:
//   - Lock-free concurrent access through xsync.MapOf, so a single engine
//     instance can serve any number of query sessions
//   - Prefix scans for the `list` command family
//   - Binary snapshots (Save/Load) with a magic header and length-prefixed
//     entries, usable for backup and restore
//
// The engine keeps no expiration or version metadata; it stores exactly what
// the storage layer hands it. Values are copied on the way in and out so the
// map never aliases caller-owned slices.
package dust
