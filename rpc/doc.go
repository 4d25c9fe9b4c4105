// Package rpc provides a comprehensive framework for remote procedure calls
// in rustbase. It acts as the communication layer between clients and
// servers, enabling query execution across network boundaries.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities used across the RPC system,
//     including the Message protocol, configuration structures, and logging.
//
//   - transport: Network communication abstractions with pluggable implementations
//     (TCP, Unix sockets, HTTP).
//
//   - serializer: Message serialization with multiple format options (JSON, GOB)
//     for converting between Message objects and byte arrays.
//
//   - client: RPC client implementation that sends query programs to remote
//     servers and returns the per-statement results.
//
//   - server: RPC server components that parse and execute incoming query
//     programs against the storage backend.
package rpc
