package query

import (
	"testing"
)

// mustParse parses a program and fails the test on error
func mustParse(t *testing.T, text string) Program {
	t.Helper()
	prog, err := ParseProgram(text)
	if err != nil {
		t.Fatalf("ParseProgram(%q) failed: %v", text, err)
	}
	return prog
}

// parseErr parses a program and returns the typed parse error
func parseErr(t *testing.T, text string) *ParseError {
	t.Helper()
	_, err := ParseProgram(text)
	if err == nil {
		t.Fatalf("ParseProgram(%q) succeeded, expected error", text)
	}
	perr, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("ParseProgram(%q) returned %T, expected *ParseError", text, err)
	}
	return perr
}

// TestParseStatementShapes checks that each statement form parses into the
// expected AST variant
func TestParseStatementShapes(t *testing.T) {
	t.Run("Assignment", func(t *testing.T) {
		prog := mustParse(t, `x = 1`)
		if len(prog) != 1 {
			t.Fatalf("expected 1 statement, got %d", len(prog))
		}
		a, ok := prog[0].(*Assignment)
		if !ok {
			t.Fatalf("expected *Assignment, got %T", prog[0])
		}
		if a.Target != "x" {
			t.Errorf("expected target x, got %s", a.Target)
		}
		terms, ok := a.Value.(*Terms)
		if !ok || len(terms.Values) != 1 || !terms.Values[0].Equal(Number(1)) {
			t.Errorf("expected rhs 1, got %v", a.Value)
		}
	})

	t.Run("MonadicWithValueOperand", func(t *testing.T) {
		prog := mustParse(t, `insert database {"a": 1}`)
		m, ok := prog[0].(*Monadic)
		if !ok {
			t.Fatalf("expected *Monadic, got %T", prog[0])
		}
		if m.Keyword != KeywordInsert || m.Verb != VerbDatabase {
			t.Errorf("expected insert database, got %s %s", m.Keyword, m.Verb)
		}
		if len(m.Operands) != 1 {
			t.Fatalf("expected 1 operand, got %d", len(m.Operands))
		}
		if m.Operands[0].Expr == nil {
			t.Fatalf("expected expression operand, got identifier %q", m.Operands[0].Ident)
		}
	})

	t.Run("MonadicWithKeyAndPayload", func(t *testing.T) {
		prog := mustParse(t, `insert database "answer" 42`)
		m := prog[0].(*Monadic)
		if len(m.Operands) != 2 {
			t.Fatalf("expected 2 operands, got %d", len(m.Operands))
		}
		for i, want := range []Value{String_("answer"), Number(42)} {
			terms, ok := m.Operands[i].Expr.(*Terms)
			if !ok || len(terms.Values) != 1 || !terms.Values[0].Equal(want) {
				t.Errorf("operand %d: expected %v, got %v", i, want, m.Operands[i])
			}
		}
	})

	t.Run("MonadicWithIdentifierOperand", func(t *testing.T) {
		prog := mustParse(t, `get user key`)
		m, ok := prog[0].(*Monadic)
		if !ok {
			t.Fatalf("expected *Monadic, got %T", prog[0])
		}
		if m.Keyword != KeywordGet || m.Verb != VerbUser {
			t.Errorf("expected get user, got %s %s", m.Keyword, m.Verb)
		}
		if len(m.Operands) != 1 || m.Operands[0].Ident != "key" {
			t.Errorf("expected identifier operand key, got %+v", m.Operands)
		}
	})

	t.Run("IntoBindingWithLiteral", func(t *testing.T) {
		prog := mustParse(t, `insert {"a": 1} into x`)
		b, ok := prog[0].(*IntoBinding)
		if !ok {
			t.Fatalf("expected *IntoBinding, got %T", prog[0])
		}
		if b.Keyword != KeywordInsert || b.Target != "x" {
			t.Errorf("expected insert into x, got %s into %s", b.Keyword, b.Target)
		}
		if b.Payload.Expr == nil {
			t.Errorf("expected literal payload, got identifier %q", b.Payload.Ident)
		}
	})

	t.Run("IntoBindingWithIdentifier", func(t *testing.T) {
		prog := mustParse(t, `get x into y`)
		b, ok := prog[0].(*IntoBinding)
		if !ok {
			t.Fatalf("expected *IntoBinding, got %T", prog[0])
		}
		if b.Payload.Ident != "x" || b.Payload.Expr != nil {
			t.Errorf("expected identifier payload x, got %+v", b.Payload)
		}
		if b.Target != "y" {
			t.Errorf("expected target y, got %s", b.Target)
		}
	})

	t.Run("SingleWithOperand", func(t *testing.T) {
		prog := mustParse(t, `get x`)
		s, ok := prog[0].(*Single)
		if !ok {
			t.Fatalf("expected *Single, got %T", prog[0])
		}
		if s.Keyword != KeywordGet || s.Operand != "x" {
			t.Errorf("expected get x, got %s %s", s.Keyword, s.Operand)
		}
	})

	t.Run("SingleWithoutOperand", func(t *testing.T) {
		prog := mustParse(t, `list`)
		s, ok := prog[0].(*Single)
		if !ok {
			t.Fatalf("expected *Single, got %T", prog[0])
		}
		if s.Keyword != KeywordList || s.Operand != "" {
			t.Errorf("expected bare list, got %s %q", s.Keyword, s.Operand)
		}
	})

	t.Run("BareTerms", func(t *testing.T) {
		prog := mustParse(t, `1 2 3`)
		terms, ok := prog[0].(*Terms)
		if !ok {
			t.Fatalf("expected *Terms, got %T", prog[0])
		}
		if len(terms.Values) != 3 {
			t.Fatalf("expected 3 values, got %d", len(terms.Values))
		}
		for i, want := range []float64{1, 2, 3} {
			if !terms.Values[i].Equal(Number(want)) {
				t.Errorf("value %d: expected %v, got %v", i, want, terms.Values[i])
			}
		}
	})
}

// TestParseSeparators checks the `&` separator handling
func TestParseSeparators(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		count int
	}{
		{"Empty", "", 0},
		{"WhitespaceOnly", "   \n\t  ", 0},
		{"CommentOnly", "# just a comment", 0},
		{"SingleStatement", "list", 1},
		{"TwoStatements", `x = 1 & get x`, 2},
		{"TrailingSeparator", `list &`, 1},
		{"LeadingSeparator", `& list`, 1},
		{"EmptyStatements", `& & list & &`, 1},
		{"CommentBetween", "x = 1 # bind x\n& get x", 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			prog := mustParse(t, tc.text)
			if len(prog) != tc.count {
				t.Errorf("expected %d statements, got %d", tc.count, len(prog))
			}
		})
	}
}

// TestParseMissingSeparator checks that adjacent statements without a
// separator are rejected
func TestParseMissingSeparator(t *testing.T) {
	perr := parseErr(t, `x = 1 y = 2`)
	if perr.Kind != ParseErrUnexpectedToken {
		t.Errorf("expected UnexpectedToken, got %s", perr.Kind)
	}
}

// TestParseOrderedChoice checks that the statement alternatives are tried in
// declaration order
func TestParseOrderedChoice(t *testing.T) {
	// `list` is a valid identifier prefix for an assignment, but without `=`
	// it must fall through to the single form
	prog := mustParse(t, `list`)
	if _, ok := prog[0].(*Single); !ok {
		t.Errorf("expected *Single, got %T", prog[0])
	}

	// an assignment-looking prefix with a failing right-hand side must not be
	// reinterpreted as another form
	if _, err := ParseProgram(`x = @`); err == nil {
		t.Errorf("expected error for invalid assignment rhs")
	}

	// nested assignment binds right to left
	prog = mustParse(t, `x = y = 1`)
	outer, ok := prog[0].(*Assignment)
	if !ok {
		t.Fatalf("expected *Assignment, got %T", prog[0])
	}
	inner, ok := outer.Value.(*Assignment)
	if !ok {
		t.Fatalf("expected nested *Assignment, got %T", outer.Value)
	}
	if outer.Target != "x" || inner.Target != "y" {
		t.Errorf("expected x = y = 1, got %s = %s = ...", outer.Target, inner.Target)
	}
}

// TestParseValueErrors checks error kinds and positions of the value grammar
func TestParseValueErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind ParseErrKind
		pos  int
	}{
		{"ObjectMissingValue", `{"a":}`, ParseErrInvalidLiteral, 5},
		{"ObjectMissingColon", `{"a" 1}`, ParseErrUnexpectedToken, 5},
		{"UnterminatedString", `"abc`, ParseErrUnterminatedLiteral, 0},
		{"InvalidEscape", `"a\x"`, ParseErrInvalidEscape, 2},
		{"TruncatedUnicodeEscape", `"\u00"`, ParseErrInvalidEscape, 1},
		{"DotWithoutFraction", `1.`, ParseErrInvalidNumber, 2},
		{"BareMinus", `-`, ParseErrInvalidNumber, 1},
		{"ExponentWithoutDigits", `1e`, ParseErrInvalidNumber, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseValue(tc.text)
			if err == nil {
				t.Fatalf("ParseValue(%q) succeeded, expected error", tc.text)
			}
			perr, ok := err.(*ParseError)
			if !ok {
				t.Fatalf("ParseValue(%q) returned %T, expected *ParseError", tc.text, err)
			}
			if perr.Kind != tc.kind {
				t.Errorf("expected kind %s, got %s", tc.kind, perr.Kind)
			}
			if perr.Pos != tc.pos {
				t.Errorf("expected pos %d, got %d", tc.pos, perr.Pos)
			}
		})
	}
}

// TestParseProgramFurthestError checks that statement-level failures report
// the alternative that progressed the furthest
func TestParseProgramFurthestError(t *testing.T) {
	// the terms alternative gets past `{` and fails inside the object body,
	// further than any of the command alternatives
	perr := parseErr(t, `{"a":}`)
	if perr.Kind != ParseErrInvalidLiteral || perr.Pos != 5 {
		t.Errorf("expected InvalidLiteral at 5, got %s at %d", perr.Kind, perr.Pos)
	}
}

// TestParseCommittedLiteralErrors checks that a malformed literal in an
// operand position fails the whole parse: once its opening token is seen the
// statement must not backtrack into a shorter form that leaves the literal
// behind
func TestParseCommittedLiteralErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind ParseErrKind
		pos  int
	}{
		{"MonadicObjectOperand", `insert database {"a":}`, ParseErrInvalidLiteral, 21},
		{"MonadicSecondOperand", `insert database "k" {"a":}`, ParseErrInvalidLiteral, 25},
		{"MonadicArrayOperand", `insert database [1,]`, ParseErrInvalidLiteral, 19},
		{"MonadicStringOperand", `get database "abc`, ParseErrUnterminatedLiteral, 13},
		{"MonadicNumberOperand", `get database 1.`, ParseErrInvalidNumber, 15},
		{"IntoPayload", `insert {"a":} into x`, ParseErrInvalidLiteral, 12},
		{"TrailingTerm", `1 2 {"a":}`, ParseErrInvalidLiteral, 9},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			perr := parseErr(t, tc.text)
			if perr.Kind != tc.kind {
				t.Errorf("expected kind %s, got %s", tc.kind, perr.Kind)
			}
			if perr.Pos != tc.pos {
				t.Errorf("expected pos %d, got %d", tc.pos, perr.Pos)
			}
		})
	}
}

// TestParseValueLiterals checks the value grammar
func TestParseValueLiterals(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Value
	}{
		{"Null", `null`, Null()},
		{"True", `true`, Boolean(true)},
		{"False", `false`, Boolean(false)},
		{"Zero", `0`, Number(0)},
		{"Integer", `42`, Number(42)},
		{"Negative", `-7`, Number(-7)},
		{"Fraction", `1.5`, Number(1.5)},
		{"Exponent", `1e3`, Number(1000)},
		{"NegativeExponent", `25e-2`, Number(0.25)},
		{"SignedExponent", `1.5E+2`, Number(150)},
		{"EmptyString", `""`, String_("")},
		{"SimpleString", `"hello"`, String_("hello")},
		{"EscapedString", `"a\"b\\c\nd\te"`, String_("a\"b\\c\nd\te")},
		{"SolidusEscape", `"a\/b"`, String_("a/b")},
		{"UnicodeEscape", `"\u0041"`, String_("A")},
		{"SurrogatePair", `"\ud83d\ude00"`, String_("\U0001F600")},
		{"EmptyArray", `[]`, Array()},
		{"Array", `[1, "two", null]`, Array(Number(1), String_("two"), Null())},
		{"EmptyObject", `{}`, Object()},
		{"Object", `{"a": 1, "b": [true]}`, Object(
			Member{Key: "a", Value: Number(1)},
			Member{Key: "b", Value: Array(Boolean(true))},
		)},
		{"NestedObject", `{"a": {"b": {"c": null}}}`, Object(
			Member{Key: "a", Value: Object(
				Member{Key: "b", Value: Object(
					Member{Key: "c", Value: Null()},
				)},
			)},
		)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseValue(tc.text)
			if err != nil {
				t.Fatalf("ParseValue(%q) failed: %v", tc.text, err)
			}
			if !got.Equal(tc.want) {
				t.Errorf("ParseValue(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

// TestParseValueRejectsTrailingInput checks the full-consume contract of
// ParseValue
func TestParseValueRejectsTrailingInput(t *testing.T) {
	tests := []string{`01`, `1 2`, `{} x`, `null,`}
	for _, text := range tests {
		if _, err := ParseValue(text); err == nil {
			t.Errorf("ParseValue(%q) succeeded, expected error", text)
		}
	}

	// trailing whitespace and comments are fine
	if _, err := ParseValue("42  # answer"); err != nil {
		t.Errorf("ParseValue with trailing comment failed: %v", err)
	}
}

// TestParseDuplicateObjectKeys checks that duplicate keys are kept and
// resolved last-write-wins
func TestParseDuplicateObjectKeys(t *testing.T) {
	v, err := ParseValue(`{"a": 1, "a": 2}`)
	if err != nil {
		t.Fatalf("ParseValue failed: %v", err)
	}
	got, ok := v.Field("a")
	if !ok || !got.Equal(Number(2)) {
		t.Errorf("expected last-write-wins value 2, got %v", got)
	}
}

// TestParseRoundTrip checks that serializing a parsed value and re-parsing it
// yields a semantically equal value
func TestParseRoundTrip(t *testing.T) {
	texts := []string{
		`null`,
		`-0.5`,
		`1e20`,
		`"line\nbreak"`,
		`""`,
		`[1, [2, [3]]]`,
		`{"nested": {"arr": [true, false, null], "num": -12.75}}`,
	}
	for _, text := range texts {
		v, err := ParseValue(text)
		if err != nil {
			t.Fatalf("ParseValue(%q) failed: %v", text, err)
		}
		again, err := ParseValue(v.String())
		if err != nil {
			t.Fatalf("re-parse of %q (serialized %q) failed: %v", text, v.String(), err)
		}
		if !v.Equal(again) {
			t.Errorf("round trip of %q changed the value: %v != %v", text, v, again)
		}
	}
}
