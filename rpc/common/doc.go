// Package common provides core data structures and utilities shared across
// the rustbase RPC system. It defines fundamental types, configuration
// structures, and protocol elements used by other packages.
//
// The package focuses on:
//   - Message protocol definition for client/server communication
//   - Configuration structures for client and server components
//   - Custom logging implementation with consistent formatting
//
// Key Components:
//
//   - Message: Core data structure for all RPC communication. A query request
//     carries the raw query text, a query response carries one StatementResult
//     per executed statement. Includes factory methods for creating the
//     various request and response messages.
//
//   - MessageType: Enumeration defining all supported message types: query
//     requests/responses, parse errors and generic errors.
//
//   - ServerConfig: Configuration for the server, including storage settings
//     (snapshot directory, cache size), network configuration and logging.
//
//   - ClientConfig: Configuration for client components, controlling
//     connection parameters, timeouts, and retry behavior.
//
//   - Logger: Custom logging implementation that plugs into the dragonboat
//     logger facade while providing consistent formatting across the
//     application.
package common
