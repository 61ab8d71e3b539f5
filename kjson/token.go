package kjson

import (
	"fmt"
	"strings"
)

// TokenType represents the type of a lexer token.
type TokenType uint8

const (
	TokenEOF TokenType = iota

	// Structural
	TokenLBrace   // {
	TokenRBrace   // }
	TokenLBracket // [
	TokenRBracket // ]
	TokenColon    // :
	TokenComma    // ,

	// Literals
	TokenString   // 'quoted', "quoted", or `quoted` (value is decoded)
	TokenNumber   // 123, -4.5e6
	TokenBigInt   // 123n (value excludes the suffix)
	TokenDecimal  // 99.99m (value excludes the suffix)
	TokenUUID     // 550e8400-e29b-41d4-a716-446655440000
	TokenInstant  // 2025-01-10T12:00:00Z
	TokenDuration // PT1H30M, -PT5S
	TokenTrue
	TokenFalse
	TokenNull
	TokenUndefined

	// Identifiers (unquoted object keys)
	TokenIdent
)

// String returns the token type name.
func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenLBrace:
		return "{"
	case TokenRBrace:
		return "}"
	case TokenLBracket:
		return "["
	case TokenRBracket:
		return "]"
	case TokenColon:
		return ":"
	case TokenComma:
		return ","
	case TokenString:
		return "STRING"
	case TokenNumber:
		return "NUMBER"
	case TokenBigInt:
		return "BIGINT"
	case TokenDecimal:
		return "DECIMAL"
	case TokenUUID:
		return "UUID"
	case TokenInstant:
		return "INSTANT"
	case TokenDuration:
		return "DURATION"
	case TokenTrue:
		return "TRUE"
	case TokenFalse:
		return "FALSE"
	case TokenNull:
		return "NULL"
	case TokenUndefined:
		return "UNDEFINED"
	case TokenIdent:
		return "IDENT"
	default:
		return "UNKNOWN"
	}
}

// Token represents a lexer token with its byte offset in the input.
type Token struct {
	Type   TokenType
	Value  string
	Offset int
}

// String returns a debug representation of the token.
func (t Token) String() string {
	if t.Value == "" {
		return t.Type.String()
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Value)
}

// Lexer tokenizes kJSON text. Literal-shape disambiguation (a digit can open
// a number, a BigInt, a Decimal, a UUID, or an Instant) happens here so the
// parser never backtracks.
type Lexer struct {
	input          string
	pos            int
	allowComments  bool
	parseInstants  bool
	parseDurations bool
}

// NewLexer creates a lexer with the default options (comments, instant and
// duration literals all enabled).
func NewLexer(input string) *Lexer {
	return newLexer(input, DefaultParseOptions())
}

func newLexer(input string, opts ParseOptions) *Lexer {
	return &Lexer{
		input:          input,
		allowComments:  opts.AllowComments,
		parseInstants:  opts.ParseInstants,
		parseDurations: opts.ParseDurations,
	}
}

// Tokenize returns all tokens from the input, terminating at the first
// error.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.nextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}

func (l *Lexer) nextToken() (Token, error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return Token{}, err
	}

	start := l.pos
	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Offset: start}, nil
	}

	ch := l.input[l.pos]

	switch ch {
	case '{':
		l.pos++
		return Token{Type: TokenLBrace, Value: "{", Offset: start}, nil
	case '}':
		l.pos++
		return Token{Type: TokenRBrace, Value: "}", Offset: start}, nil
	case '[':
		l.pos++
		return Token{Type: TokenLBracket, Value: "[", Offset: start}, nil
	case ']':
		l.pos++
		return Token{Type: TokenRBracket, Value: "]", Offset: start}, nil
	case ':':
		l.pos++
		return Token{Type: TokenColon, Value: ":", Offset: start}, nil
	case ',':
		l.pos++
		return Token{Type: TokenComma, Value: ",", Offset: start}, nil
	case '"', '\'', '`':
		return l.scanString(ch)
	}

	// Digit or minus: could be a UUID, an Instant, a negative Duration, or
	// a plain number/BigInt/Decimal. Each attempt reverts atomically.
	if ch == '-' || isDigit(ch) {
		if tok, ok := l.tryUUID(); ok {
			return tok, nil
		}
		if l.parseInstants {
			if tok, ok := l.tryInstant(); ok {
				return tok, nil
			}
		}
		if l.parseDurations && ch == '-' && l.pos+1 < len(l.input) && l.input[l.pos+1] == 'P' {
			if tok, ok := l.tryDuration(); ok {
				return tok, nil
			}
		}
		return l.scanNumber()
	}

	// Letter, underscore, or dollar: hex letters can open a UUID and P can
	// open a Duration; otherwise this is an identifier or keyword.
	if isIdentStart(ch) {
		if tok, ok := l.tryUUID(); ok {
			return tok, nil
		}
		if l.parseDurations && ch == 'P' {
			if tok, ok := l.tryDuration(); ok {
				return tok, nil
			}
		}
		return l.scanIdentOrKeyword(), nil
	}

	return Token{}, parseErr(ErrSyntax, start, "unexpected character %q", ch)
}

// scanString scans a string delimited by quote, decoding escapes.
func (l *Lexer) scanString(quote byte) (Token, error) {
	start := l.pos
	l.pos++ // consume opening quote

	var sb strings.Builder
	for {
		if l.pos >= len(l.input) {
			return Token{}, parseErr(ErrIncompleteInput, start, "unterminated string")
		}

		ch := l.input[l.pos]
		if ch == quote {
			l.pos++
			return Token{Type: TokenString, Value: sb.String(), Offset: start}, nil
		}

		if ch != '\\' {
			sb.WriteByte(ch)
			l.pos++
			continue
		}

		escStart := l.pos
		l.pos++
		if l.pos >= len(l.input) {
			return Token{}, parseErr(ErrIncompleteInput, escStart, "unterminated escape")
		}
		esc := l.input[l.pos]
		l.pos++
		switch esc {
		case '"', '\'', '`', '\\', '/':
			sb.WriteByte(esc)
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'u':
			r, err := l.scanUnicodeEscape(escStart)
			if err != nil {
				return Token{}, err
			}
			sb.WriteRune(r)
		default:
			return Token{}, parseErr(ErrInvalidEscape, escStart, "invalid escape \\%c", esc)
		}
	}
}

// scanUnicodeEscape reads the XXXX of a \uXXXX escape (the \u is already
// consumed), combining surrogate pairs when both halves are present.
func (l *Lexer) scanUnicodeEscape(escStart int) (rune, error) {
	hi, err := l.scanHex4(escStart)
	if err != nil {
		return 0, err
	}
	if hi >= 0xD800 && hi <= 0xDBFF &&
		l.pos+1 < len(l.input) && l.input[l.pos] == '\\' && l.input[l.pos+1] == 'u' {
		save := l.pos
		l.pos += 2
		lo, err := l.scanHex4(save)
		if err != nil {
			return 0, err
		}
		if lo >= 0xDC00 && lo <= 0xDFFF {
			return 0x10000 + (hi-0xD800)<<10 + (lo - 0xDC00), nil
		}
		l.pos = save
	}
	return hi, nil
}

func (l *Lexer) scanHex4(escStart int) (rune, error) {
	if l.pos+4 > len(l.input) {
		return 0, parseErr(ErrIncompleteInput, escStart, "unterminated \\u escape")
	}
	var r rune
	for i := 0; i < 4; i++ {
		c := l.input[l.pos]
		var d rune
		switch {
		case c >= '0' && c <= '9':
			d = rune(c - '0')
		case c >= 'a' && c <= 'f':
			d = rune(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = rune(c-'A') + 10
		default:
			return 0, parseErr(ErrInvalidEscape, escStart, "invalid \\u escape digit %q", c)
		}
		r = r<<4 | d
		l.pos++
	}
	return r, nil
}

// tryUUID attempts to match hex{8}-hex{4}-hex{4}-hex{4}-hex{12} at the
// cursor, reverting on failure.
func (l *Lexer) tryUUID() (Token, bool) {
	start := l.pos
	if start+36 > len(l.input) {
		return Token{}, false
	}
	s := l.input[start : start+36]
	for i := 0; i < 36; i++ {
		switch i {
		case 8, 13, 18, 23:
			if s[i] != '-' {
				return Token{}, false
			}
		default:
			if !isHexDigit(s[i]) {
				return Token{}, false
			}
		}
	}
	// A trailing hex digit means this is not a whole UUID literal.
	if start+36 < len(l.input) && isHexDigit(l.input[start+36]) {
		return Token{}, false
	}
	l.pos = start + 36
	return Token{Type: TokenUUID, Value: strings.ToLower(s), Offset: start}, true
}

// tryInstant looks for YYYY-MM-DD at the cursor and, if present, consumes
// to the next delimiter and validates with a full ISO-8601 parse. Failure
// reverts the cursor atomically.
func (l *Lexer) tryInstant() (Token, bool) {
	start := l.pos
	if start+10 > len(l.input) {
		return Token{}, false
	}
	for i := 0; i < 10; i++ {
		c := l.input[start+i]
		if i == 4 || i == 7 {
			if c != '-' {
				return Token{}, false
			}
		} else if !isDigit(c) {
			return Token{}, false
		}
	}

	end := start + 10
	for end < len(l.input) && !isDelimiter(l.input[end]) {
		end++
	}
	text := l.input[start:end]
	if _, err := parseInstantText(text); err != nil {
		return Token{}, false
	}
	l.pos = end
	return Token{Type: TokenInstant, Value: text, Offset: start}, true
}

// tryDuration attempts an ISO-8601 duration (optionally negative) at the
// cursor, validated with a full parse. Failure reverts the cursor
// atomically.
func (l *Lexer) tryDuration() (Token, bool) {
	start := l.pos
	p := start
	if p < len(l.input) && l.input[p] == '-' {
		p++
	}
	if p >= len(l.input) || l.input[p] != 'P' {
		return Token{}, false
	}

	end := start
	for end < len(l.input) && !isDelimiter(l.input[end]) {
		end++
	}
	text := l.input[start:end]
	if _, err := parseDurationText(text); err != nil {
		return Token{}, false
	}
	l.pos = end
	return Token{Type: TokenDuration, Value: text, Offset: start}, true
}

// scanNumber scans a number, a BigInt (n suffix), or a Decimal (m suffix).
// Leading zeros before the decimal point are accepted.
func (l *Lexer) scanNumber() (Token, error) {
	start := l.pos

	if l.input[l.pos] == '-' {
		l.pos++
	}
	if l.pos >= len(l.input) || !isDigit(l.input[l.pos]) {
		return Token{}, parseErr(ErrInvalidNumber, start, "expected digit")
	}
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}

	hadFrac := false
	if l.pos+1 < len(l.input) && l.input[l.pos] == '.' && isDigit(l.input[l.pos+1]) {
		hadFrac = true
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	} else if l.pos < len(l.input) && l.input[l.pos] == '.' {
		return Token{}, parseErr(ErrInvalidNumber, start, "expected digit after decimal point")
	}

	hadExp := false
	if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		hadExp = true
		l.pos++
		if l.pos < len(l.input) && (l.input[l.pos] == '+' || l.input[l.pos] == '-') {
			l.pos++
		}
		if l.pos >= len(l.input) || !isDigit(l.input[l.pos]) {
			return Token{}, parseErr(ErrInvalidNumber, start, "expected digit in exponent")
		}
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}

	raw := l.input[start:l.pos]

	if l.pos < len(l.input) {
		switch l.input[l.pos] {
		case 'n':
			if hadFrac || hadExp {
				return Token{}, parseErr(ErrInvalidNumber, start,
					"bigint literal cannot have a decimal point or exponent: %sn", raw)
			}
			l.pos++
			return Token{Type: TokenBigInt, Value: raw, Offset: start}, nil
		case 'm':
			l.pos++
			return Token{Type: TokenDecimal, Value: raw, Offset: start}, nil
		}
	}

	return Token{Type: TokenNumber, Value: raw, Offset: start}, nil
}

// scanIdentOrKeyword scans an identifier, classifying reserved literals.
func (l *Lexer) scanIdentOrKeyword() Token {
	start := l.pos
	for l.pos < len(l.input) && isIdentContinue(l.input[l.pos]) {
		l.pos++
	}
	value := l.input[start:l.pos]

	switch value {
	case "true":
		return Token{Type: TokenTrue, Value: value, Offset: start}
	case "false":
		return Token{Type: TokenFalse, Value: value, Offset: start}
	case "null":
		return Token{Type: TokenNull, Value: value, Offset: start}
	case "undefined":
		return Token{Type: TokenUndefined, Value: value, Offset: start}
	}
	return Token{Type: TokenIdent, Value: value, Offset: start}
}

// skipWhitespaceAndComments skips whitespace and, when enabled, // and
// /* */ comments.
func (l *Lexer) skipWhitespaceAndComments() error {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]

		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
			l.pos++
			continue
		}

		if ch == '/' && l.allowComments && l.pos+1 < len(l.input) {
			switch l.input[l.pos+1] {
			case '/':
				l.pos += 2
				for l.pos < len(l.input) && l.input[l.pos] != '\n' {
					l.pos++
				}
				continue
			case '*':
				start := l.pos
				l.pos += 2
				for {
					if l.pos+1 >= len(l.input) {
						return parseErr(ErrIncompleteInput, start, "unterminated block comment")
					}
					if l.input[l.pos] == '*' && l.input[l.pos+1] == '/' {
						l.pos += 2
						break
					}
					l.pos++
				}
				continue
			}
		}

		break
	}
	return nil
}

// TokenStream provides cursor-based access to a token slice. Peek past the
// end yields the final EOF token.
type TokenStream struct {
	tokens []Token
	pos    int
}

// NewTokenStream creates a stream over tokens.
func NewTokenStream(tokens []Token) *TokenStream {
	return &TokenStream{tokens: tokens}
}

// Peek returns the current token without advancing.
func (s *TokenStream) Peek() Token {
	if s.pos >= len(s.tokens) {
		if len(s.tokens) == 0 {
			return Token{Type: TokenEOF}
		}
		return s.tokens[len(s.tokens)-1]
	}
	return s.tokens[s.pos]
}

// Advance returns the current token and moves past it.
func (s *TokenStream) Advance() Token {
	tok := s.Peek()
	if s.pos < len(s.tokens) {
		s.pos++
	}
	return tok
}

// Match advances past the current token if it has the given type.
func (s *TokenStream) Match(t TokenType) bool {
	if s.Peek().Type == t {
		s.Advance()
		return true
	}
	return false
}

// AtEnd reports whether the stream is exhausted.
func (s *TokenStream) AtEnd() bool {
	return s.Peek().Type == TokenEOF
}

// Character classification

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch == '$'
}

func isIdentContinue(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

// isDelimiter reports whether ch terminates an instant or duration literal.
func isDelimiter(ch byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\n', ',', ']', '}':
		return true
	default:
		return false
	}
}
