package query

import "fmt"

// --------------------------------------------------------------------------
// Keywords and Verbs
// --------------------------------------------------------------------------

// Keyword selects the command family of a statement.
type Keyword uint8

const (
	KeywordInsert Keyword = iota // insert
	KeywordGet                   // get
	KeywordDelete                // delete
	KeywordUpdate                // update
	KeywordList                  // list
)

// String returns the source-level spelling of the keyword.
func (k Keyword) String() string {
	switch k {
	case KeywordInsert:
		return "insert"
	case KeywordGet:
		return "get"
	case KeywordDelete:
		return "delete"
	case KeywordUpdate:
		return "update"
	case KeywordList:
		return "list"
	default:
		return "unknown"
	}
}

// keywordFromWord maps a source word to its keyword. The match is exact and
// case-sensitive.
func keywordFromWord(word string) (Keyword, bool) {
	switch word {
	case "insert":
		return KeywordInsert, true
	case "get":
		return KeywordGet, true
	case "delete":
		return KeywordDelete, true
	case "update":
		return KeywordUpdate, true
	case "list":
		return KeywordList, true
	default:
		return 0, false
	}
}

// Verb selects the namespace a monadic command operates on.
type Verb uint8

const (
	VerbUser     Verb = iota // user
	VerbDatabase             // database
)

// String returns the source-level spelling of the verb.
func (v Verb) String() string {
	switch v {
	case VerbUser:
		return "user"
	case VerbDatabase:
		return "database"
	default:
		return "unknown"
	}
}

// verbFromWord maps a source word to its verb. The match is exact and
// case-sensitive.
func verbFromWord(word string) (Verb, bool) {
	switch word {
	case "user":
		return VerbUser, true
	case "database":
		return VerbDatabase, true
	default:
		return 0, false
	}
}

// --------------------------------------------------------------------------
// Expressions
// --------------------------------------------------------------------------

// Expr is one parsed statement. The concrete types are Assignment, Monadic,
// IntoBinding, Single and Terms. The parser tries them in exactly that order
// and commits to the first alternative that matches (see parser.go).
type Expr interface {
	fmt.Stringer

	// exprNode restricts the implementations of Expr to this package.
	exprNode()
}

// Operand is either a nested expression or a bare identifier reference.
// Exactly one of the two fields is meaningful: Expr when non-nil, otherwise
// Ident. Bare identifiers are resolved against the session environment at
// execution time, never during parsing.
type Operand struct {
	Ident string
	Expr  Expr
}

// String returns the source-level rendering of the operand.
func (o Operand) String() string {
	if o.Expr != nil {
		return o.Expr.String()
	}
	return o.Ident
}

// Assignment binds the value of an expression to an identifier, e.g.
// `x = {"a": 1}`. The binding is scoped to the session environment.
type Assignment struct {
	Target string
	Value  Expr
}

func (e *Assignment) exprNode() {}

func (e *Assignment) String() string {
	return fmt.Sprintf("%s = %s", e.Target, e.Value)
}

// Monadic applies a keyword and a namespace verb to zero or more operands,
// e.g. `insert database {"a": 1}` or `get user key`.
type Monadic struct {
	Keyword  Keyword
	Verb     Verb
	Operands []Operand
}

func (e *Monadic) exprNode() {}

func (e *Monadic) String() string {
	s := fmt.Sprintf("%s %s", e.Keyword, e.Verb)
	for _, op := range e.Operands {
		s += " " + op.String()
	}
	return s
}

// IntoBinding computes a value and names the result, e.g.
// `insert {"a": 1} into x`. The payload is either a literal value or a bare
// identifier resolved against the session environment.
type IntoBinding struct {
	Keyword Keyword
	Payload Operand
	Target  string
}

func (e *IntoBinding) exprNode() {}

func (e *IntoBinding) String() string {
	return fmt.Sprintf("%s %s into %s", e.Keyword, e.Payload, e.Target)
}

// Single is a parameterless or single-identifier command form, e.g. `list`
// or `get x`.
type Single struct {
	Keyword Keyword
	Operand string // empty if the command has no operand
}

func (e *Single) exprNode() {}

func (e *Single) String() string {
	if e.Operand == "" {
		return e.Keyword.String()
	}
	return fmt.Sprintf("%s %s", e.Keyword, e.Operand)
}

// Terms is a bare non-empty sequence of literal values with no command
// semantics, e.g. `1 2 3`.
type Terms struct {
	Values []Value
}

func (e *Terms) exprNode() {}

func (e *Terms) String() string {
	s := ""
	for i, v := range e.Values {
		if i > 0 {
			s += " "
		}
		s += v.String()
	}
	return s
}

// --------------------------------------------------------------------------
// Program
// --------------------------------------------------------------------------

// Program is an ordered sequence of statements. Statements are separated by
// the `&` token in the source text; an empty program is valid.
type Program []Expr
