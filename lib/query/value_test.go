package query

import (
	"encoding/json"
	"testing"
)

// TestValueField checks object member lookup including last-write-wins for
// duplicate keys
func TestValueField(t *testing.T) {
	obj := Object(
		Member{"a", Number(1)},
		Member{"b", Number(2)},
		Member{"a", Number(3)},
	)

	got, ok := obj.Field("a")
	if !ok || !got.Equal(Number(3)) {
		t.Errorf("expected a=3 (last write wins), got %v ok=%v", got, ok)
	}

	got, ok = obj.Field("b")
	if !ok || !got.Equal(Number(2)) {
		t.Errorf("expected b=2, got %v ok=%v", got, ok)
	}

	if _, ok := obj.Field("missing"); ok {
		t.Errorf("expected missing key lookup to fail")
	}

	if _, ok := Number(1).Field("a"); ok {
		t.Errorf("expected field lookup on non-object to fail")
	}
}

// TestValueEqual checks semantic equality across the value variants
func TestValueEqual(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Value
		equal bool
	}{
		{"Nulls", Null(), Null(), true},
		{"Booleans", Boolean(true), Boolean(true), true},
		{"BooleansDiffer", Boolean(true), Boolean(false), false},
		{"Numbers", Number(1.5), Number(1.5), true},
		{"NumbersDiffer", Number(1), Number(2), false},
		{"Strings", String_("a"), String_("a"), true},
		{"KindsDiffer", Number(1), String_("1"), false},
		{"Arrays", Array(Number(1), Number(2)), Array(Number(1), Number(2)), true},
		{"ArrayLengthsDiffer", Array(Number(1)), Array(Number(1), Number(2)), false},
		{"ArrayOrderMatters", Array(Number(1), Number(2)), Array(Number(2), Number(1)), false},
		{
			"ObjectOrderIgnored",
			Object(Member{"a", Number(1)}, Member{"b", Number(2)}),
			Object(Member{"b", Number(2)}, Member{"a", Number(1)}),
			true,
		},
		{
			"ObjectDuplicatesLastWriteWins",
			Object(Member{"a", Number(1)}, Member{"a", Number(2)}),
			Object(Member{"a", Number(2)}),
			true,
		},
		{
			"ObjectExtraKey",
			Object(Member{"a", Number(1)}),
			Object(Member{"a", Number(1)}, Member{"b", Number(2)}),
			false,
		},
		{
			"NestedObjects",
			Object(Member{"a", Object(Member{"b", Array(Number(1))})}),
			Object(Member{"a", Object(Member{"b", Array(Number(1))})}),
			true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Equal(tc.b); got != tc.equal {
				t.Errorf("Equal(%v, %v) = %v, expected %v", tc.a, tc.b, got, tc.equal)
			}
			// Equality is symmetric
			if got := tc.b.Equal(tc.a); got != tc.equal {
				t.Errorf("Equal(%v, %v) = %v, expected %v", tc.b, tc.a, got, tc.equal)
			}
		})
	}
}

// TestValueString checks the textual serialization
func TestValueString(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		text  string
	}{
		{"Null", Null(), "null"},
		{"True", Boolean(true), "true"},
		{"False", Boolean(false), "false"},
		{"IntegralNumber", Number(42), "42"},
		{"NegativeNumber", Number(-7), "-7"},
		{"FractionalNumber", Number(1.5), "1.5"},
		{"LargeNumber", Number(1e20), "1e+20"},
		{"String", String_("hello"), `"hello"`},
		{"StringWithEscapes", String_("a\"b\\c\nd"), `"a\"b\\c\nd"`},
		{"StringWithControlChar", String_("a\x01b"), `"a\u0001b"`},
		{"EmptyArray", Array(), "[]"},
		{"Array", Array(Number(1), String_("x")), `[1,"x"]`},
		{"EmptyObject", Object(), "{}"},
		{
			"Object",
			Object(Member{"a", Number(1)}, Member{"b", Null()}),
			`{"a":1,"b":null}`,
		},
		{
			"Nested",
			Object(Member{"list", Array(Boolean(true), Object(Member{"k", String_("v")}))}),
			`{"list":[true,{"k":"v"}]}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.value.String(); got != tc.text {
				t.Errorf("String() = %q, expected %q", got, tc.text)
			}
		})
	}
}

// TestValueJSONRoundTrip checks the json.Marshaler / json.Unmarshaler
// implementations against the standard library
func TestValueJSONRoundTrip(t *testing.T) {
	original := Object(
		Member{"name", String_("rustbase")},
		Member{"version", Number(3)},
		Member{"tags", Array(String_("kv"), String_("db"))},
		Member{"meta", Object(Member{"active", Boolean(true)}, Member{"ttl", Null()})},
	)

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded Value
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if !decoded.Equal(original) {
		t.Errorf("round trip changed value: %v != %v", decoded, original)
	}
}

// TestValueJSONInterop checks that plain JSON produced elsewhere decodes into
// the value model
func TestValueJSONInterop(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`{"a": [1, 2.5, "xA"], "b": false}`), &v); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	want := Object(
		Member{"a", Array(Number(1), Number(2.5), String_("xA"))},
		Member{"b", Boolean(false)},
	)
	if !v.Equal(want) {
		t.Errorf("expected %v, got %v", want, v)
	}
}
