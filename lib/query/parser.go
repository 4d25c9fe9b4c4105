package query

import (
	"strconv"
	"unicode/utf16"
	"unicode/utf8"
)

// --------------------------------------------------------------------------
// Entry Points
// --------------------------------------------------------------------------

// ParseProgram parses a full query text into a Program. Statements are
// separated by `&`; a trailing separator is permitted and an empty or
// all-comment input yields an empty program. Parsing fails fast: the first
// parse error is returned and no further statements are parsed.
func ParseProgram(text string) (Program, error) {
	p := &parser{src: text}
	prog := Program{}
	for {
		p.skip()
		if p.eof() {
			break
		}
		if p.src[p.pos] == '&' {
			p.pos++
			continue
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		prog = append(prog, expr)
		p.skip()
		if p.eof() {
			break
		}
		if p.src[p.pos] != '&' {
			return nil, newExpectError(p.pos, "'&'")
		}
		p.pos++
	}
	return prog, nil
}

// ParseValue parses a single value literal. The whole input must be consumed
// apart from trailing whitespace and comments.
func ParseValue(text string) (Value, error) {
	p := &parser{src: text}
	v, err := p.parseValue()
	if err != nil {
		return Value{}, err
	}
	p.skip()
	if !p.eof() {
		return Value{}, newExpectError(p.pos, "end of input")
	}
	return v, nil
}

// --------------------------------------------------------------------------
// Parser State
// --------------------------------------------------------------------------

// parser is a cursor over the query text. Parsing is pure: the only mutable
// state is the cursor position, so failed alternatives are undone by
// restoring it.
type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

// skip advances over whitespace and `#` comments (which run to end of line).
func (p *parser) skip() {
	for !p.eof() {
		switch c := p.src[p.pos]; c {
		case ' ', '\t', '\n', '\r':
			p.pos++
		case '#':
			for !p.eof() && p.src[p.pos] != '\n' {
				p.pos++
			}
		default:
			return
		}
	}
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentChar(c byte) bool {
	return isAlpha(c) || isDigit(c) || c == '_'
}

// ident consumes an identifier ([A-Za-z][A-Za-z0-9_]*) at the cursor.
// It does not skip leading whitespace.
func (p *parser) ident() (string, bool) {
	if p.eof() || !isAlpha(p.src[p.pos]) {
		return "", false
	}
	start := p.pos
	p.pos++
	for !p.eof() && isIdentChar(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos], true
}

// keyword consumes a command keyword. Keywords are matched as whole words,
// never as prefixes of longer identifiers.
func (p *parser) keyword() (Keyword, *ParseError) {
	p.skip()
	start := p.pos
	word, ok := p.ident()
	if !ok {
		return 0, newExpectError(start, "keyword")
	}
	kw, ok := keywordFromWord(word)
	if !ok {
		p.pos = start
		return 0, newParseError(ParseErrUnknownKeyword, start)
	}
	return kw, nil
}

// verb consumes a namespace verb (`user` or `database`).
func (p *parser) verb() (Verb, *ParseError) {
	p.skip()
	start := p.pos
	word, ok := p.ident()
	if !ok {
		return 0, newExpectError(start, "verb")
	}
	verb, ok := verbFromWord(word)
	if !ok {
		p.pos = start
		return 0, newParseError(ParseErrUnknownVerb, start)
	}
	return verb, nil
}

// valueOpener reports whether the byte at the cursor opens a value literal.
// Once such a token is seen the value grammar is committed: a failure of the
// literal is a hard parse error, never a backtrack into a shorter form.
func (p *parser) valueOpener() bool {
	if p.eof() {
		return false
	}
	c := p.src[p.pos]
	return c == '{' || c == '[' || c == '"' || c == '-' || isDigit(c)
}

// furthest picks the parse error that reached the furthest position. Ties
// keep the earlier alternative's error, matching the declared grammar order.
func furthest(a, b *ParseError) *ParseError {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if b.Pos > a.Pos {
		return b
	}
	return a
}

// --------------------------------------------------------------------------
// Expression Parsing
// --------------------------------------------------------------------------

// parseExpr parses one statement. The five alternatives are tried in
// declaration order with full backtracking: a failed alternative restores
// the cursor before the next one is attempted. The order is load-bearing;
// an assignment-looking prefix must never be reinterpreted as a monadic
// command. Backtracking stops at commit points: once an alternative has
// consumed `=` or seen a value literal's opening token, its failure aborts
// the whole choice instead of falling through to a shorter form. Otherwise
// the error that reached the furthest position is returned.
func (p *parser) parseExpr() (Expr, *ParseError) {
	p.skip()
	start := p.pos
	var best *ParseError

	// 1. assignment (committed once `=` is consumed)
	expr, err, committed := p.parseAssignment()
	if err == nil {
		return expr, nil
	}
	if committed {
		return nil, err
	}
	best = furthest(best, err)
	p.pos = start

	// 2. monadic command (committed once a value operand's opener is seen)
	expr, err, committed = p.parseMonadic()
	if err == nil {
		return expr, nil
	}
	if committed {
		return nil, err
	}
	best = furthest(best, err)
	p.pos = start

	// 3. into-binding (committed once the payload's opener is seen)
	expr, err, committed = p.parseInto()
	if err == nil {
		return expr, nil
	}
	if committed {
		return nil, err
	}
	best = furthest(best, err)
	p.pos = start

	// 4. single command
	if expr, err := p.parseSingle(); err == nil {
		return expr, nil
	} else {
		best = furthest(best, err)
		p.pos = start
	}

	// 5. bare terms
	if expr, err := p.parseTerms(); err == nil {
		return expr, nil
	} else {
		best = furthest(best, err)
		p.pos = start
	}

	return nil, best
}

// parseAssignment parses `identifier = expr`. The committed flag is true
// once the `=` has been consumed: from that point on a failure of the
// right-hand side is a hard error and must not fall through to the other
// alternatives.
func (p *parser) parseAssignment() (Expr, *ParseError, bool) {
	p.skip()
	target, ok := p.ident()
	if !ok {
		return nil, newExpectError(p.pos, "identifier"), false
	}
	p.skip()
	if p.eof() || p.src[p.pos] != '=' {
		return nil, newExpectError(p.pos, "'='"), false
	}
	p.pos++
	value, err := p.parseExpr()
	if err != nil {
		return nil, err, true
	}
	return &Assignment{Target: target, Value: value}, nil, false
}

// parseMonadic parses `keyword verb operand*` where each operand is either
// a value literal or a bare identifier. Operands are parsed one value at a
// time so that `insert database "k" 42` yields two operands, not one. The
// committed flag is true once an operand position opens a value literal:
// from that point on a malformed literal is a hard error and must not fall
// through to the other alternatives.
func (p *parser) parseMonadic() (Expr, *ParseError, bool) {
	kw, err := p.keyword()
	if err != nil {
		return nil, err, false
	}
	verb, err := p.verb()
	if err != nil {
		return nil, err, false
	}

	var operands []Operand
	for {
		p.skip()
		opener := p.valueOpener()
		save := p.pos
		if v, verr := p.parseValue(); verr == nil {
			operands = append(operands, Operand{Expr: &Terms{Values: []Value{v}}})
			continue
		} else if opener {
			return nil, verr, true
		}
		p.pos = save
		if ident, ok := p.ident(); ok {
			operands = append(operands, Operand{Ident: ident})
			continue
		}
		p.pos = save
		break
	}

	return &Monadic{Keyword: kw, Verb: verb, Operands: operands}, nil, false
}

// parseInto parses `keyword payload into identifier`. The payload is a value
// literal or a bare identifier; a malformed literal payload is a hard error
// (committed flag), matching the operand rule of parseMonadic.
func (p *parser) parseInto() (Expr, *ParseError, bool) {
	kw, err := p.keyword()
	if err != nil {
		return nil, err, false
	}

	p.skip()
	opener := p.valueOpener()
	var payload Operand
	save := p.pos
	if v, verr := p.parseValue(); verr == nil {
		payload = Operand{Expr: &Terms{Values: []Value{v}}}
	} else if opener {
		return nil, verr, true
	} else {
		p.pos = save
		ident, ok := p.ident()
		if !ok {
			return nil, verr, false
		}
		payload = Operand{Ident: ident}
	}

	p.skip()
	wordStart := p.pos
	if word, ok := p.ident(); !ok || word != "into" {
		return nil, newExpectError(wordStart, "'into'"), false
	}
	p.skip()
	target, ok := p.ident()
	if !ok {
		return nil, newExpectError(p.pos, "identifier"), false
	}

	return &IntoBinding{Keyword: kw, Payload: payload, Target: target}, nil, false
}

// parseSingle parses `keyword identifier?`.
func (p *parser) parseSingle() (Expr, *ParseError) {
	kw, err := p.keyword()
	if err != nil {
		return nil, err
	}
	p.skip()
	save := p.pos
	operand, ok := p.ident()
	if !ok {
		p.pos = save
		operand = ""
	}
	return &Single{Keyword: kw, Operand: operand}, nil
}

// parseTerms parses one or more value literals. A trailing malformed literal
// is an error, not the end of the sequence: the loop only stops where no
// value opener follows.
func (p *parser) parseTerms() (Expr, *ParseError) {
	first, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	values := []Value{first}
	for {
		p.skip()
		opener := p.valueOpener()
		save := p.pos
		v, err := p.parseValue()
		if err != nil {
			if opener {
				return nil, err
			}
			p.pos = save
			break
		}
		values = append(values, v)
	}
	return &Terms{Values: values}, nil
}

// --------------------------------------------------------------------------
// Value Parsing
// --------------------------------------------------------------------------

// parseValue parses a value literal. The alternatives are recognized in the
// order object, array, string, number, boolean, null; the first rule whose
// opening token matches is committed to, so a failure inside e.g. an object
// body is a hard error rather than a backtrack.
func (p *parser) parseValue() (Value, *ParseError) {
	p.skip()
	if p.eof() {
		return Value{}, newParseError(ParseErrInvalidLiteral, p.pos)
	}
	switch c := p.src[p.pos]; {
	case c == '{':
		return p.parseObject()
	case c == '[':
		return p.parseArray()
	case c == '"':
		return p.parseString()
	case c == '-' || isDigit(c):
		return p.parseNumber()
	default:
		start := p.pos
		if word, ok := p.ident(); ok {
			switch word {
			case "true":
				return Boolean(true), nil
			case "false":
				return Boolean(false), nil
			case "null":
				return Null(), nil
			}
		}
		p.pos = start
		return Value{}, newParseError(ParseErrInvalidLiteral, start)
	}
}

// parseObject parses `{ "key" : value (, "key" : value)* }` or `{}`.
// Duplicate keys are kept in source order; consumers resolve them
// last-write-wins.
func (p *parser) parseObject() (Value, *ParseError) {
	p.pos++ // consume '{'
	p.skip()
	if !p.eof() && p.src[p.pos] == '}' {
		p.pos++
		return Object(), nil
	}

	var members []Member
	for {
		p.skip()
		if p.eof() || p.src[p.pos] != '"' {
			return Value{}, newExpectError(p.pos, "object key")
		}
		key, err := p.parseString()
		if err != nil {
			return Value{}, err
		}
		p.skip()
		if p.eof() || p.src[p.pos] != ':' {
			return Value{}, newExpectError(p.pos, "':'")
		}
		p.pos++
		value, err := p.parseValue()
		if err != nil {
			return Value{}, err
		}
		members = append(members, Member{Key: key.Str, Value: value})

		p.skip()
		if p.eof() {
			return Value{}, newExpectError(p.pos, "',' or '}'")
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return Object(members...), nil
		default:
			return Value{}, newExpectError(p.pos, "',' or '}'")
		}
	}
}

// parseArray parses `[ value (, value)* ]` or `[]`.
func (p *parser) parseArray() (Value, *ParseError) {
	p.pos++ // consume '['
	p.skip()
	if !p.eof() && p.src[p.pos] == ']' {
		p.pos++
		return Array(), nil
	}

	var elems []Value
	for {
		elem, err := p.parseValue()
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, elem)

		p.skip()
		if p.eof() {
			return Value{}, newExpectError(p.pos, "',' or ']'")
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return Array(elems...), nil
		default:
			return Value{}, newExpectError(p.pos, "',' or ']'")
		}
	}
}

// parseString parses a quoted string literal, decoding escapes eagerly.
func (p *parser) parseString() (Value, *ParseError) {
	start := p.pos
	p.pos++ // consume '"'

	var sb []byte
	for {
		if p.eof() {
			return Value{}, newParseError(ParseErrUnterminatedLiteral, start)
		}
		c := p.src[p.pos]
		if c == '"' {
			p.pos++
			return String_(string(sb)), nil
		}
		if c != '\\' {
			sb = append(sb, c)
			p.pos++
			continue
		}

		// escape sequence
		escStart := p.pos
		p.pos++
		if p.eof() {
			return Value{}, newParseError(ParseErrInvalidEscape, escStart)
		}
		switch p.src[p.pos] {
		case '"':
			sb = append(sb, '"')
			p.pos++
		case '\\':
			sb = append(sb, '\\')
			p.pos++
		case '/':
			sb = append(sb, '/')
			p.pos++
		case 'b':
			sb = append(sb, '\b')
			p.pos++
		case 'f':
			sb = append(sb, '\f')
			p.pos++
		case 'n':
			sb = append(sb, '\n')
			p.pos++
		case 'r':
			sb = append(sb, '\r')
			p.pos++
		case 't':
			sb = append(sb, '\t')
			p.pos++
		case 'u':
			p.pos++
			r, err := p.parseUnicodeEscape(escStart)
			if err != nil {
				return Value{}, err
			}
			sb = utf8.AppendRune(sb, r)
		default:
			return Value{}, newParseError(ParseErrInvalidEscape, escStart)
		}
	}
}

// parseUnicodeEscape decodes the four hex digits of a `\uXXXX` escape. The
// cursor stands just past the `u`. Surrogate pairs spanning two escapes are
// combined into a single rune.
func (p *parser) parseUnicodeEscape(escStart int) (rune, *ParseError) {
	r, err := p.parseHex4(escStart)
	if err != nil {
		return 0, err
	}
	if !utf16.IsSurrogate(r) {
		return r, nil
	}

	// high surrogate: combine with a following \uXXXX low surrogate
	if p.pos+1 < len(p.src) && p.src[p.pos] == '\\' && p.src[p.pos+1] == 'u' {
		save := p.pos
		p.pos += 2
		r2, err := p.parseHex4(save)
		if err != nil {
			return 0, err
		}
		if combined := utf16.DecodeRune(r, r2); combined != utf8.RuneError {
			return combined, nil
		}
		p.pos = save
	}
	return utf8.RuneError, nil
}

// parseHex4 reads exactly four hex digits.
func (p *parser) parseHex4(escStart int) (rune, *ParseError) {
	if p.pos+4 > len(p.src) {
		return 0, newParseError(ParseErrInvalidEscape, escStart)
	}
	n, err := strconv.ParseUint(p.src[p.pos:p.pos+4], 16, 32)
	if err != nil {
		return 0, newParseError(ParseErrInvalidEscape, escStart)
	}
	p.pos += 4
	return rune(n), nil
}

// parseNumber parses a numeric literal following the JSON numeric grammar:
// optional leading `-`, integer part `0` or non-zero digit followed by
// digits, optional fraction with at least one digit, optional exponent.
func (p *parser) parseNumber() (Value, *ParseError) {
	start := p.pos

	if p.src[p.pos] == '-' {
		p.pos++
	}
	if p.eof() || !isDigit(p.src[p.pos]) {
		return Value{}, newParseError(ParseErrInvalidNumber, p.pos)
	}
	if p.src[p.pos] == '0' {
		p.pos++
	} else {
		for !p.eof() && isDigit(p.src[p.pos]) {
			p.pos++
		}
	}

	// fraction
	if !p.eof() && p.src[p.pos] == '.' {
		p.pos++
		if p.eof() || !isDigit(p.src[p.pos]) {
			return Value{}, newParseError(ParseErrInvalidNumber, p.pos)
		}
		for !p.eof() && isDigit(p.src[p.pos]) {
			p.pos++
		}
	}

	// exponent
	if !p.eof() && (p.src[p.pos] == 'e' || p.src[p.pos] == 'E') {
		p.pos++
		if !p.eof() && (p.src[p.pos] == '+' || p.src[p.pos] == '-') {
			p.pos++
		}
		if p.eof() || !isDigit(p.src[p.pos]) {
			return Value{}, newParseError(ParseErrInvalidNumber, p.pos)
		}
		for !p.eof() && isDigit(p.src[p.pos]) {
			p.pos++
		}
	}

	f, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return Value{}, newParseError(ParseErrInvalidNumber, start)
	}
	return Number(f), nil
}
