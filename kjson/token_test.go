package kjson

import (
	"errors"
	"reflect"
	"testing"
)

// ============================================================
// Lexer Tests
// ============================================================

func TestLexer_BasicTokens(t *testing.T) {
	tests := []struct {
		input    string
		expected []TokenType
	}{
		{"123", []TokenType{TokenNumber, TokenEOF}},
		{"-456", []TokenType{TokenNumber, TokenEOF}},
		{"3.14", []TokenType{TokenNumber, TokenEOF}},
		{"-2.5e10", []TokenType{TokenNumber, TokenEOF}},
		{"007", []TokenType{TokenNumber, TokenEOF}},
		{"123n", []TokenType{TokenBigInt, TokenEOF}},
		{"-123n", []TokenType{TokenBigInt, TokenEOF}},
		{"0n", []TokenType{TokenBigInt, TokenEOF}},
		{"99.99m", []TokenType{TokenDecimal, TokenEOF}},
		{"-1.5e-3m", []TokenType{TokenDecimal, TokenEOF}},
		{"true", []TokenType{TokenTrue, TokenEOF}},
		{"false", []TokenType{TokenFalse, TokenEOF}},
		{"null", []TokenType{TokenNull, TokenEOF}},
		{"undefined", []TokenType{TokenUndefined, TokenEOF}},
		{`"hello"`, []TokenType{TokenString, TokenEOF}},
		{"'hello'", []TokenType{TokenString, TokenEOF}},
		{"`hello`", []TokenType{TokenString, TokenEOF}},
		{"hello_world", []TokenType{TokenIdent, TokenEOF}},
		{"$key", []TokenType{TokenIdent, TokenEOF}},
		{"{}", []TokenType{TokenLBrace, TokenRBrace, TokenEOF}},
		{"[]", []TokenType{TokenLBracket, TokenRBracket, TokenEOF}},
		{"{a:1}", []TokenType{TokenLBrace, TokenIdent, TokenColon, TokenNumber, TokenRBrace, TokenEOF}},
		{"550e8400-e29b-41d4-a716-446655440000", []TokenType{TokenUUID, TokenEOF}},
		{"2025-01-10T12:00:00Z", []TokenType{TokenInstant, TokenEOF}},
		{"2025-01-10", []TokenType{TokenInstant, TokenEOF}},
		{"PT1H30M", []TokenType{TokenDuration, TokenEOF}},
		{"-PT5S", []TokenType{TokenDuration, TokenEOF}},
		{"P3DT4H", []TokenType{TokenDuration, TokenEOF}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := NewLexer(tt.input).Tokenize()
			if err != nil {
				t.Fatalf("Tokenize failed: %v", err)
			}

			if len(tokens) != len(tt.expected) {
				t.Fatalf("Expected %d tokens, got %d: %v", len(tt.expected), len(tokens), tokens)
			}
			for i, tok := range tokens {
				if tok.Type != tt.expected[i] {
					t.Errorf("Token %d: expected %s, got %s", i, tt.expected[i], tok.Type)
				}
			}
		})
	}
}

func TestLexer_SuffixExcludedFromValue(t *testing.T) {
	tokens, err := NewLexer("123n 99.99m").Tokenize()
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	if tokens[0].Value != "123" {
		t.Errorf("BigInt token value: expected 123, got %q", tokens[0].Value)
	}
	if tokens[1].Value != "99.99" {
		t.Errorf("Decimal token value: expected 99.99, got %q", tokens[1].Value)
	}
}

func TestLexer_StringEscapes(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"a\nb"`, "a\nb"},
		{`"tab\there"`, "tab\there"},
		{`"quote\"inside"`, `quote"inside`},
		{`'single\'quote'`, "single'quote"},
		{"`tick\\`quote`", "tick`quote"},
		{`"back\\slash"`, `back\slash`},
		{`"sol\/idus"`, "sol/idus"},
		{`"Aé"`, "Aé"},
		{`"😀"`, "😀"},
		{`"\b\f\r"`, "\b\f\r"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, err := NewLexer(tt.input).Tokenize()
			if err != nil {
				t.Fatalf("Tokenize failed: %v", err)
			}
			if tokens[0].Value != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, tokens[0].Value)
			}
		})
	}
}

func TestLexer_InvalidEscape(t *testing.T) {
	_, err := NewLexer(`"bad\q"`).Tokenize()
	if err == nil {
		t.Fatal("Expected error for invalid escape")
	}
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Kind != ErrInvalidEscape {
		t.Errorf("Expected %s, got %v", ErrInvalidEscape, err)
	}
}

func TestLexer_UnterminatedString(t *testing.T) {
	_, err := NewLexer(`"never ends`).Tokenize()
	if err == nil {
		t.Fatal("Expected error for unterminated string")
	}
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Kind != ErrIncompleteInput {
		t.Errorf("Expected %s, got %v", ErrIncompleteInput, err)
	}
}

func TestLexer_Comments(t *testing.T) {
	input := `123 // line comment
/* block
   comment */ 456`
	tokens, err := NewLexer(input).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}

	if len(tokens) != 3 {
		t.Fatalf("Expected 3 tokens, got %d", len(tokens))
	}
	if tokens[0].Value != "123" || tokens[1].Value != "456" {
		t.Errorf("Unexpected token values: %v, %v", tokens[0].Value, tokens[1].Value)
	}
}

func TestLexer_CommentsDisabled(t *testing.T) {
	opts := DefaultParseOptions()
	opts.AllowComments = false
	_, err := newLexer("// nope", opts).Tokenize()
	if err == nil {
		t.Fatal("Expected error when comments are disabled")
	}
}

func TestLexer_UnterminatedBlockComment(t *testing.T) {
	_, err := NewLexer("/* never closed").Tokenize()
	if err == nil {
		t.Fatal("Expected error for unterminated block comment")
	}
}

// Revert atomicity: when a UUID/instant/duration lookahead fails, the
// tokens produced must be identical to a run where the literal shape never
// tempted the lexer.
func TestLexer_RevertAtomicity(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			// Date shape with an invalid month falls back to numbers.
			"bad instant",
			"2025-13-45",
			[]Token{
				{TokenNumber, "2025", 0},
				{TokenNumber, "-13", 4},
				{TokenNumber, "-45", 7},
				{TokenEOF, "", 10},
			},
		},
		{
			// Hex-looking identifier shorter than a UUID.
			"not a uuid",
			"deadbeef",
			[]Token{
				{TokenIdent, "deadbeef", 0},
				{TokenEOF, "", 8},
			},
		},
		{
			// P-prefixed identifier that is not a duration.
			"not a duration",
			"Parser",
			[]Token{
				{TokenIdent, "Parser", 0},
				{TokenEOF, "", 6},
			},
		},
		{
			// A 37th hex digit disqualifies the UUID match entirely.
			"uuid with trailing hex",
			"12345678-1234-1234-1234-1234567890123",
			[]Token{
				{TokenNumber, "12345678", 0},
				{TokenNumber, "-1234", 8},
				{TokenNumber, "-1234", 13},
				{TokenNumber, "-1234", 18},
				{TokenNumber, "-1234567890123", 23},
				{TokenEOF, "", 37},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := NewLexer(tt.input).Tokenize()
			if err != nil {
				t.Fatalf("Tokenize failed: %v", err)
			}
			if !reflect.DeepEqual(tokens, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, tokens)
			}
		})
	}
}

func TestLexer_InstantDelimiters(t *testing.T) {
	tokens, err := NewLexer("[2025-01-10T12:00:00Z,2025-06-01]").Tokenize()
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	expected := []TokenType{
		TokenLBracket, TokenInstant, TokenComma, TokenInstant, TokenRBracket, TokenEOF,
	}
	if len(tokens) != len(expected) {
		t.Fatalf("Expected %d tokens, got %d: %v", len(expected), len(tokens), tokens)
	}
	for i, tok := range tokens {
		if tok.Type != expected[i] {
			t.Errorf("Token %d: expected %s, got %s", i, expected[i], tok.Type)
		}
	}
}

func TestLexer_LiteralsDisabled(t *testing.T) {
	opts := DefaultParseOptions()
	opts.ParseInstants = false
	opts.ParseDurations = false

	tokens, err := newLexer("2025-01-10", opts).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	if tokens[0].Type != TokenNumber {
		t.Errorf("With instants disabled, expected number, got %s", tokens[0].Type)
	}

	tokens, err = newLexer("PT1H", opts).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	if tokens[0].Type != TokenIdent {
		t.Errorf("With durations disabled, expected identifier, got %s", tokens[0].Type)
	}
}

func TestLexer_BigIntRejectsFraction(t *testing.T) {
	for _, input := range []string{"1.5n", "1e3n"} {
		if _, err := NewLexer(input).Tokenize(); err == nil {
			t.Errorf("Expected error for %q", input)
		}
	}
}

func TestLexer_Offsets(t *testing.T) {
	tokens, err := NewLexer(`  {key: "v"}`).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	offsets := []int{2, 3, 6, 8, 11, 12}
	for i, want := range offsets {
		if tokens[i].Offset != want {
			t.Errorf("Token %d (%s): expected offset %d, got %d", i, tokens[i].Type, want, tokens[i].Offset)
		}
	}
}
