// Package server implements the RPC server for rustbase. It wires the query
// parser and executor to a transport and serializer, turning raw request
// bytes into executed query programs.
//
// The package focuses on:
//   - Server-side handling of query requests
//   - Per-request session isolation: every request executes against a fresh
//     environment, so identifier bindings never leak between requests
//   - Request metrics (query counts, parse/exec error counts, durations)
//
// Key Components:
//
//   - NewRPCServer: Factory function creating a configured server with the
//     specified storage backend, transport and serializer mechanisms.
//
//   - handleQuery: Parses the query text, executes the program statement by
//     statement and maps the per-statement results onto the wire protocol. A
//     parse failure is reported with its kind and byte offset; an execution
//     failure ends the program and is reported as the last statement result.
//
// Usage Example:
//
//	config := common.ServerConfig{
//	  TimeoutSecond: 5,
//	  CacheSize:     4096,
//	  LogLevel:      "info",
//	}
//	config.Transport.Endpoint = "0.0.0.0:23568"
//
//	backend := storage.NewBackend(
//	  func() db.KVDB { return dust.NewDustDB(nil) },
//	  storage.Options{CacheSize: config.CacheSize},
//	)
//
//	s := server.NewRPCServer(
//	  config,
//	  backend,
//	  tcp.NewTCPDefaultServerTransport(),
//	  serializer.NewJSONSerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// Thread Safety:
//
//	The server implementation is thread-safe and can handle concurrent
//	requests across multiple connections. Each request is processed
//	independently. The Serve method is not thread-safe and should be called
//	only once.
package server
