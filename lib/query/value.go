package query

import (
	"math"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Value Model
// --------------------------------------------------------------------------

// ValueKind discriminates the variants of a Value.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns a human-readable name for the kind.
func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Member is a single key-value pair of an object. Members keep their source
// order so that serialization is stable; the order carries no semantics.
type Member struct {
	Key   string
	Value Value
}

// Value is a tagged union mirroring the JSON subset of the query language.
// Only the field selected by Kind is meaningful.
type Value struct {
	Kind ValueKind
	Bool bool
	Num  float64
	Str  string
	Arr  []Value
	Obj  []Member
}

// --------------------------------------------------------------------------
// Constructors
// --------------------------------------------------------------------------

// Null returns the null value.
func Null() Value {
	return Value{Kind: KindNull}
}

// Boolean returns a boolean value.
func Boolean(b bool) Value {
	return Value{Kind: KindBool, Bool: b}
}

// Number returns a numeric value.
func Number(f float64) Value {
	return Value{Kind: KindNumber, Num: f}
}

// String_ returns a string value. The trailing underscore avoids a clash
// with the fmt.Stringer method.
func String_(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// Array returns an array value.
func Array(elems ...Value) Value {
	return Value{Kind: KindArray, Arr: elems}
}

// Object returns an object value with the given members.
func Object(members ...Member) Value {
	return Value{Kind: KindObject, Obj: members}
}

// --------------------------------------------------------------------------
// Accessors
// --------------------------------------------------------------------------

// Field looks up a key in an object value. Duplicate keys are resolved
// last-write-wins, so the lookup scans from the back.
func (v Value) Field(key string) (Value, bool) {
	if v.Kind != KindObject {
		return Value{}, false
	}
	for i := len(v.Obj) - 1; i >= 0; i-- {
		if v.Obj[i].Key == key {
			return v.Obj[i].Value, true
		}
	}
	return Value{}, false
}

// Equal reports semantic equality of two values. Object member order is
// ignored; duplicate keys are compared last-write-wins.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindBool:
		return v.Bool == other.Bool
	case KindNumber:
		return v.Num == other.Num
	case KindString:
		return v.Str == other.Str
	case KindArray:
		if len(v.Arr) != len(other.Arr) {
			return false
		}
		for i := range v.Arr {
			if !v.Arr[i].Equal(other.Arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		keys := make(map[string]struct{}, len(v.Obj)+len(other.Obj))
		for _, m := range v.Obj {
			keys[m.Key] = struct{}{}
		}
		for _, m := range other.Obj {
			keys[m.Key] = struct{}{}
		}
		for key := range keys {
			a, okA := v.Field(key)
			b, okB := other.Field(key)
			if okA != okB || (okA && !a.Equal(b)) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// --------------------------------------------------------------------------
// Serialization
// --------------------------------------------------------------------------

// String serializes the value using the same JSON-compatible syntax the
// parser consumes. Round-tripping a value through String and ParseValue
// yields a semantically equal value.
func (v Value) String() string {
	var sb strings.Builder
	v.appendTo(&sb)
	return sb.String()
}

func (v Value) appendTo(sb *strings.Builder) {
	switch v.Kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		sb.WriteString(strconv.FormatBool(v.Bool))
	case KindNumber:
		sb.WriteString(formatNumber(v.Num))
	case KindString:
		appendQuoted(sb, v.Str)
	case KindArray:
		sb.WriteByte('[')
		for i, elem := range v.Arr {
			if i > 0 {
				sb.WriteByte(',')
			}
			elem.appendTo(sb)
		}
		sb.WriteByte(']')
	case KindObject:
		sb.WriteByte('{')
		for i, m := range v.Obj {
			if i > 0 {
				sb.WriteByte(',')
			}
			appendQuoted(sb, m.Key)
			sb.WriteByte(':')
			m.Value.appendTo(sb)
		}
		sb.WriteByte('}')
	}
}

// formatNumber renders a float without a trailing ".0" for integral values
// so that parsed integers read back as integers.
func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// appendQuoted writes a string literal with the escapes the grammar defines.
func appendQuoted(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if r < 0x20 {
				sb.WriteString(`\u`)
				hex := strconv.FormatInt(int64(r), 16)
				for len(hex) < 4 {
					hex = "0" + hex
				}
				sb.WriteString(hex)
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteByte('"')
}

// --------------------------------------------------------------------------
// JSON Interop
// --------------------------------------------------------------------------

// MarshalJSON implements the json.Marshaler interface. The value grammar is
// a JSON subset, so the textual serialization is already valid JSON.
func (v Value) MarshalJSON() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface using the value
// parser.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseValue(string(data))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
