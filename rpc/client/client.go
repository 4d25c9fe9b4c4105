package client

import (
	"fmt"

	"github.com/besnikbelegu/rustbase/rpc/common"
	"github.com/besnikbelegu/rustbase/rpc/serializer"
	"github.com/besnikbelegu/rustbase/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("rpc")
)

// ParseError is returned by Query when the server rejected the query text. It
// carries the error classification and byte offset reported by the server.
type ParseError struct {
	Kind string
	Pos  int
	Msg  string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return e.Msg
}

// NewRPCClient creates a new RPC client for the query language.
// The function takes a config, a transport and a serializer as parameters.
//
// Usage:
//
//	c, err := client.NewRPCClient(config, tcp.NewTCPClientTransport(), serializer.NewJSONSerializer())
//	if err != nil { ... }
//	defer c.Close()
//
//	results, err := c.Query(`insert database "greeting" "hello" & get database "greeting"`)
func NewRPCClient(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (*RPCClient, error) {

	// Connect the transport
	err := transport.Connect(config)
	if err != nil {
		return nil, err
	}

	return &RPCClient{
		config:     config,
		transport:  transport,
		serializer: serializer,
	}, nil
}

// RPCClient sends query programs to a rustbase server and returns the
// per-statement results.
type RPCClient struct {
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// Query sends a query program to the server and returns one result per
// executed statement. A query that failed to parse returns a *ParseError;
// per-statement execution failures are reported in the results themselves.
func (c *RPCClient) Query(text string) ([]common.StatementResult, error) {
	req := common.NewQueryRequest(text)

	// Serialize the request
	reqBytes, err := c.serializer.Serialize(*req)
	if err != nil {
		return nil, err
	}

	// Send the request
	respBytes, err := c.transport.Send(reqBytes)
	if err != nil {
		return nil, err
	}

	// Deserialize the response
	resp := &common.Message{}
	if err := c.serializer.Deserialize(respBytes, resp); err != nil {
		return nil, fmt.Errorf("RPC Client - Error: %s", err)
	}

	// Check for error responses
	switch resp.MsgType {
	case common.MsgTParseError:
		return nil, &ParseError{Kind: resp.ErrKind, Pos: resp.ErrPos, Msg: resp.Err}
	case common.MsgTError:
		return nil, fmt.Errorf("RPC Client - Error: %s", resp.Err)
	case common.MsgTQuery:
		return resp.Results, nil
	default:
		return nil, fmt.Errorf("RPC Client - Unexpected message type: %s, expected %s", resp.MsgType, common.MsgTQuery)
	}
}

// Close closes the underlying transport.
func (c *RPCClient) Close() error {
	return c.transport.Close()
}
