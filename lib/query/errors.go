package query

import "fmt"

// --------------------------------------------------------------------------
// Parse Error Type
// --------------------------------------------------------------------------

// ParseErrKind classifies parse failures.
type ParseErrKind uint8

const (
	ParseErrUnexpectedToken     ParseErrKind = iota // input does not match the expected token
	ParseErrInvalidLiteral                          // malformed value literal
	ParseErrInvalidEscape                           // bad or truncated string escape
	ParseErrInvalidNumber                           // malformed numeric literal
	ParseErrUnterminatedLiteral                     // string literal without closing quote
	ParseErrUnknownKeyword                          // word in keyword position is not a keyword
	ParseErrUnknownVerb                             // word in verb position is not a verb
)

// String returns the canonical name of the error kind.
func (k ParseErrKind) String() string {
	switch k {
	case ParseErrUnexpectedToken:
		return "UnexpectedToken"
	case ParseErrInvalidLiteral:
		return "InvalidLiteral"
	case ParseErrInvalidEscape:
		return "InvalidEscape"
	case ParseErrInvalidNumber:
		return "InvalidNumber"
	case ParseErrUnterminatedLiteral:
		return "UnterminatedLiteral"
	case ParseErrUnknownKeyword:
		return "UnknownKeyword"
	case ParseErrUnknownVerb:
		return "UnknownVerb"
	default:
		return "Unknown"
	}
}

// ParseError is the error type returned by the value, expression and program
// parsers. Pos is the absolute byte offset into the query text at which the
// parse failed. Expected is only set for UnexpectedToken errors.
type ParseError struct {
	Kind     ParseErrKind
	Pos      int
	Expected string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Kind == ParseErrUnexpectedToken && e.Expected != "" {
		return fmt.Sprintf("ParseError (%s) at offset %d: expected %s", e.Kind, e.Pos, e.Expected)
	}
	return fmt.Sprintf("ParseError (%s) at offset %d", e.Kind, e.Pos)
}

// newParseError creates a new ParseError with the given kind and position.
func newParseError(kind ParseErrKind, pos int) *ParseError {
	return &ParseError{Kind: kind, Pos: pos}
}

// newExpectError creates an UnexpectedToken error naming the expected token.
func newExpectError(pos int, expected string) *ParseError {
	return &ParseError{Kind: ParseErrUnexpectedToken, Pos: pos, Expected: expected}
}
