package common

import (
	"encoding/json"
	"fmt"

	"github.com/besnikbelegu/rustbase/lib/query"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// Request only fields
	Query string `json:"query,omitempty"` // Used for: Query requests

	// Response only fields
	Results []StatementResult `json:"results,omitempty"` // Used for: Query responses, one entry per executed statement
	Err     string            `json:"err,omitempty"`     // Empty if no error, otherwise contains the error message
	ErrKind string            `json:"err_kind,omitempty"` // Error classification (e.g. a ParseError kind)
	ErrPos  int               `json:"err_pos,omitempty"`  // Byte offset of a parse error in the query text
}

// StatementResult is the outcome of one statement of a query program.
type StatementResult struct {
	Ok      bool        `json:"ok"`
	Body    query.Value `json:"body"`
	Err     string      `json:"err,omitempty"`
	ErrKind string      `json:"err_kind,omitempty"`
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewQueryRequest creates a new Query request
func NewQueryRequest(queryText string) *Message {
	return &Message{
		MsgType: MsgTQuery,
		Query:   queryText,
	}
}

// NewQueryResponse creates a new Query response with per-statement results
func NewQueryResponse(results []StatementResult) *Message {
	return &Message{
		MsgType: MsgTQuery,
		Results: results,
	}
}

// NewParseErrorResponse creates a response for a query that failed to parse
func NewParseErrorResponse(kind string, pos int, msg string) *Message {
	return &Message{
		MsgType: MsgTParseError,
		Err:     msg,
		ErrKind: kind,
		ErrPos:  pos,
	}
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTQuery:
		return "query"
	case MsgTParseError:
		return "parse_error"
	case MsgTError:
		return "error"
	case MsgTSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	// Convert string back to MessageType
	switch s {
	case "query":
		*t = MsgTQuery
	case "parse_error":
		*t = MsgTParseError
	case "error":
		*t = MsgTError
	case "success":
		*t = MsgTSuccess
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// Query operations

	MsgTQuery      // Execute a query program (request and response)
	MsgTParseError // The query text failed to parse
)
