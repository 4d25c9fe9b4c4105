// Package cmd implements the command-line interface for the rustbase
// key-value database. It provides a hierarchical command structure with
// operations for running the server and interacting with it as a client.
//
// The package is organized into several subpackages:
//
//   - serve: Commands for starting and configuring the rustbase server
//   - query: Commands for running queries against a server, either one-shot
//     or via an interactive prompt
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See rustbase -help for a list of all commands.
package cmd
