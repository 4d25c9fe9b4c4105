package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Shared transport settings
// --------------------------------------------------------------------------

// SocketConf holds buffer sizes for socket based transports.
type SocketConf struct {
	WriteBufferSize int
	ReadBufferSize  int
}

// TCPConf holds TCP specific tuning options.
type TCPConf struct {
	TCPKeepAliveSec int
	TCPLingerSec    int
	TCPNoDelay      bool
}

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

// ServerTransportConfig holds the transport settings of the server.
type ServerTransportConfig struct {
	// Endpoint is the address the server listens on
	// (e.g. 0.0.0.0:23568 or /tmp/rustbase.sock)
	Endpoint string
	SocketConf
	TCPConf
}

// ServerConfig holds all configuration parameters for the rustbase server.
type ServerConfig struct {
	// Request timeout in seconds (0 = no timeout)
	TimeoutSecond int64

	// Storage parameters
	DataDir   string // directory for snapshot files ("" = no snapshots)
	CacheSize int    // maximum number of cached values

	// Transport settings
	Transport ServerTransportConfig

	// Logging configuration
	LogLevel string
}

// SnapshotPath returns the path of the snapshot file, or "" if snapshots are
// disabled.
func (c *ServerConfig) SnapshotPath() string {
	if c.DataDir == "" {
		return ""
	}
	return c.DataDir + "/rustbase.snapshot"
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// Server settings
	addSection("Rustbase Server")
	addField("Endpoint", c.Transport.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))

	// Storage
	addSection("Storage")
	if c.DataDir != "" {
		addField("Data Directory", c.DataDir)
	} else {
		addField("Data Directory", "(snapshots disabled)")
	}
	addField("Cache Size", strconv.Itoa(c.CacheSize))

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

// ClientTransportConfig holds the transport settings of the client.
type ClientTransportConfig struct {
	// Endpoints are the server addresses. Transports that support load
	// balancing use all of them round robin.
	Endpoints              []string
	RetryCount             int
	ConnectionsPerEndpoint int
	SocketConf
	TCPConf
}

// ClientConfig holds all configuration parameters for the rustbase client.
type ClientConfig struct {
	TimeoutSecond int
	Transport     ClientTransportConfig
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.Transport.RetryCount))
	addField("Connections Per Endpoint", strconv.Itoa(int(math.Max(1, float64(c.Transport.ConnectionsPerEndpoint)))))

	// Endpoints
	addSection("Endpoints")
	for i, endpoint := range c.Transport.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}
