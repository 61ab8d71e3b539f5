package kjson

import (
	"errors"
	"strings"
	"testing"
)

// ============================================================
// Parser Tests
// ============================================================

func TestParse_Scalars(t *testing.T) {
	tests := []struct {
		input    string
		expected Kind
	}{
		{"null", KindNull},
		{"undefined", KindUndefined},
		{"true", KindBool},
		{"false", KindBool},
		{"123", KindNumber},
		{"-456", KindNumber},
		{"3.14", KindNumber},
		{"123n", KindBigInt},
		{"99.99m", KindDecimal128},
		{`"hello"`, KindString},
		{"'hello'", KindString},
		{"`hello`", KindString},
		{"550e8400-e29b-41d4-a716-446655440000", KindUUID},
		{"2025-01-10T12:00:00Z", KindInstant},
		{"PT1H30M", KindDuration},
		{"[1,2]", KindArray},
		{"{a:1}", KindObject},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if v.Kind() != tt.expected {
				t.Errorf("Expected kind %s, got %s", tt.expected, v.Kind())
			}
		})
	}
}

func TestParse_BigIntAndDecimalObject(t *testing.T) {
	v, err := Parse("{id: 123456789012345678901234567890n, price: 99.99m}")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	id, err := v.Get("id").AsBigInt()
	if err != nil {
		t.Fatalf("AsBigInt failed: %v", err)
	}
	if id.Neg || id.Digits != "123456789012345678901234567890" {
		t.Errorf("Unexpected bigint: %+v", id)
	}

	price, err := v.Get("price").AsDecimal()
	if err != nil {
		t.Fatalf("AsDecimal failed: %v", err)
	}
	if price.Neg || price.Digits != "9999" || price.Exponent != -2 {
		t.Errorf("Unexpected decimal: %+v", price)
	}
}

func TestParse_BigIntZero(t *testing.T) {
	v, err := Parse("0n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	b, err := v.AsBigInt()
	if err != nil {
		t.Fatalf("AsBigInt failed: %v", err)
	}
	if b.Neg || b.Digits != "0" {
		t.Errorf("Expected canonical zero, got %+v", b)
	}
}

func TestParse_InstantNanos(t *testing.T) {
	v, err := Parse("2025-01-10T12:00:00Z")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	nanos, err := v.AsInstantNanos()
	if err != nil {
		t.Fatalf("AsInstantNanos failed: %v", err)
	}
	if nanos != 1736510400000000000 {
		t.Errorf("Expected 1736510400000000000, got %d", nanos)
	}
}

func TestParse_UUIDNormalized(t *testing.T) {
	v, err := Parse("550E8400-E29B-41D4-A716-446655440000")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	u, err := v.AsUUID()
	if err != nil {
		t.Fatalf("AsUUID failed: %v", err)
	}
	if u.String() != "550e8400-e29b-41d4-a716-446655440000" {
		t.Errorf("UUID not normalized: %s", u)
	}
}

func TestParse_NegativeDuration(t *testing.T) {
	v, err := Parse("-PT5S")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	nanos, err := v.AsDurationNanos()
	if err != nil {
		t.Fatalf("AsDurationNanos failed: %v", err)
	}
	if nanos != -5_000_000_000 {
		t.Errorf("Expected -5s in nanos, got %d", nanos)
	}
}

func TestParse_ObjectOrderAndDuplicates(t *testing.T) {
	v, err := Parse("{b:1, a:2, b:3}")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	members, err := v.AsObj()
	if err != nil {
		t.Fatalf("AsObj failed: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("Expected 2 members, got %d", len(members))
	}
	// Duplicate b keeps its first position and takes the last value.
	if members[0].Key != "b" || members[1].Key != "a" {
		t.Errorf("Unexpected key order: %s, %s", members[0].Key, members[1].Key)
	}
	if n, _ := v.Get("b").AsNumber(); n != 3 {
		t.Errorf("Expected last write to win, got %v", n)
	}
}

func TestParse_TrailingComma(t *testing.T) {
	v, err := Parse("[1,2,3,]")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if v.Len() != 3 {
		t.Errorf("Expected 3 elements, got %d", v.Len())
	}

	opts := DefaultParseOptions()
	opts.AllowTrailingCommas = false
	if _, err := ParseWithOptions("[1,2,3,]", opts); err == nil {
		t.Error("Expected error with trailing commas disabled")
	}

	if _, err := ParseWithOptions("{a:1,}", opts); err == nil {
		t.Error("Expected error for object trailing comma")
	}
}

func TestParse_UnquotedKeys(t *testing.T) {
	v, err := Parse("{key: 1, $dollar: 2, _under: 3, null: 4, 'quoted key': 5}")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	for _, key := range []string{"key", "$dollar", "_under", "null", "quoted key"} {
		if v.Get(key) == nil {
			t.Errorf("Missing key %q", key)
		}
	}

	opts := DefaultParseOptions()
	opts.AllowUnquotedKeys = false
	if _, err := ParseWithOptions("{key: 1}", opts); err == nil {
		t.Error("Expected error with unquoted keys disabled")
	}
	if _, err := ParseWithOptions(`{"key": 1}`, opts); err != nil {
		t.Errorf("Quoted keys should still parse: %v", err)
	}
}

func TestParse_Comments(t *testing.T) {
	input := `{
		// line comment
		a: 1, /* inline */ b: 2,
	}`
	v, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if v.Len() != 2 {
		t.Errorf("Expected 2 members, got %d", v.Len())
	}
}

func TestParse_EmptyContainers(t *testing.T) {
	for input, kind := range map[string]Kind{"{}": KindObject, "[]": KindArray} {
		v, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", input, err)
		}
		if v.Kind() != kind || v.Len() != 0 {
			t.Errorf("Parse(%q): expected empty %s", input, kind)
		}
	}
}

func TestParse_Nested(t *testing.T) {
	v, err := Parse(`{
		users: [
			{id: 1, name: 'Alice', roles: ['admin']},
			{id: 2, name: 'Bob', roles: []},
		],
		meta: {count: 2},
	}`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	users, err := v.Get("users").AsArr()
	if err != nil {
		t.Fatalf("AsArr failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("Expected 2 users, got %d", len(users))
	}
	name, _ := users[0].Get("name").AsStr()
	if name != "Alice" {
		t.Errorf("Expected Alice, got %q", name)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		input string
		kind  ErrKind
	}{
		{"", ErrIncompleteInput},
		{"[1,2", ErrIncompleteInput},
		{"{a:1", ErrIncompleteInput},
		{"{a:}", ErrUnexpectedToken},
		{"{a 1}", ErrUnexpectedToken},
		{"{1:2}", ErrUnexpectedToken},
		{"[1 2]", ErrUnexpectedToken},
		{"1 2", ErrTrailingData},
		{"{} []", ErrTrailingData},
		{"[,]", ErrUnexpectedToken},
		{"1.5n", ErrInvalidNumber},
		{"-", ErrInvalidNumber},
		{"1.", ErrInvalidNumber},
		{"1e", ErrInvalidNumber},
		{"#", ErrSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatal("Expected error")
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Expected ParseError, got %T: %v", err, err)
			}
			if perr.Kind != tt.kind {
				t.Errorf("Expected kind %s, got %s (%v)", tt.kind, perr.Kind, err)
			}
		})
	}
}

func TestParse_DepthLimit(t *testing.T) {
	opts := DefaultParseOptions()
	opts.MaxDepth = 4

	if _, err := ParseWithOptions("[[[[1]]]]", opts); err != nil {
		t.Errorf("Depth 4 should parse: %v", err)
	}

	_, err := ParseWithOptions("[[[[[1]]]]]", opts)
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Kind != ErrDepthExceeded {
		t.Errorf("Expected %s, got %v", ErrDepthExceeded, err)
	}

	// The default limit handles pathological nesting without a stack
	// overflow.
	deep := strings.Repeat("[", DefaultMaxDepth+1) + strings.Repeat("]", DefaultMaxDepth+1)
	_, err = Parse(deep)
	if !errors.As(err, &perr) || perr.Kind != ErrDepthExceeded {
		t.Errorf("Expected %s for deep nesting, got %v", ErrDepthExceeded, err)
	}
}

func TestParse_SizeLimit(t *testing.T) {
	opts := DefaultParseOptions()
	opts.MaxSize = 8

	if _, err := ParseWithOptions("[1,2,3]", opts); err != nil {
		t.Errorf("Input within limit should parse: %v", err)
	}

	_, err := ParseWithOptions("[1,2,3,4,5]", opts)
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Kind != ErrSizeExceeded {
		t.Errorf("Expected %s, got %v", ErrSizeExceeded, err)
	}
}

func TestParse_ErrorOffset(t *testing.T) {
	_, err := Parse("[1, 2, #]")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected ParseError, got %v", err)
	}
	if perr.Offset != 7 {
		t.Errorf("Expected offset 7, got %d", perr.Offset)
	}
}
