// Package client implements the RPC client for rustbase. It sends query
// programs to a remote server and returns the per-statement results.
//
// The package focuses on:
//   - Transparent remote execution of query programs
//   - Integration with the transport and serialization layers
//   - Error handling and conversion between RPC and domain errors
//
// Key Components:
//
//   - NewRPCClient: Factory function that creates a client bound to a
//     transport and serializer. The client forwards query programs to remote
//     servers via the configured transport layer.
//
//   - ParseError: Returned when the server rejected the query text, carrying
//     the error classification and byte offset reported by the server.
//
// Usage Example:
//
//	// Configure the client
//	config := common.ClientConfig{TimeoutSecond: 5}
//	config.Transport.Endpoints = []string{"localhost:23568"}
//	config.Transport.RetryCount = 3
//
//	// Create the client
//	c, _ := client.NewRPCClient(config, tcp.NewTCPClientTransport(), serializer.NewJSONSerializer())
//	defer c.Close()
//
//	// Run a query program
//	results, err := c.Query(`x = 1 & insert database "counter" 0 & get database "counter"`)
//
// Performance Considerations:
//
//   - For applications that frequently send large payloads, increasing ConnectionsPerEndpoint
//     can improve throughput by allowing parallel requests.
//
//   - For small messages, a single connection per endpoint is often more efficient due to
//     reduced connection overhead.
//
// Thread Safety:
//
//	The client is thread-safe and can be used concurrently from multiple
//	goroutines without additional synchronization.
package client
