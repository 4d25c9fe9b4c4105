// Package query implements the rustbase query language: the lexical rules,
// the JSON-compatible value model, and the recursive descent parsers that
// turn raw query text into an executable Program.
//
// The package focuses on:
//   - A tagged-union Value model mirroring a JSON subset (null, boolean,
//     number, string, array, object) with order-preserving object members
//     and a serializer that round-trips through the parser
//   - An ordered-choice expression grammar with five statement forms
//     (assignment, monadic command, into-binding, single command, bare
//     terms) disambiguated by declaration order with full backtracking
//   - A grammar-aware program splitter using `&` as statement separator
//   - Typed parse errors carrying the absolute byte offset of the failure
//
// Key Components:
//
//   - Program / Expr: The parsed representation of a query. A Program is an
//     ordered sequence of statements; each statement is one of the five Expr
//     variants. The parser tries the variants in their declared order and
//     commits to the first full match, so an assignment-looking prefix is
//     never reinterpreted as a monadic command.
//
//   - Value: The literal value model shared by the parser, the executor and
//     the wire protocol. Object members keep their source order for stable
//     serialization; duplicate keys are resolved last-write-wins.
//
//   - parser: A cursor over the query text. Parsing is pure and stateless
//     apart from the cursor, which makes backtracking a simple position
//     restore and the parsers safe for concurrent use from independent
//     sessions.
//
// Execution of a parsed Program is the responsibility of the engine package.
package query
