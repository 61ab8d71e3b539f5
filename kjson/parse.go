package kjson

import (
	"strconv"

	"github.com/google/uuid"
)

// ParseOptions configures the parser behavior.
type ParseOptions struct {
	AllowComments       bool // recognize // and /* */ comments
	AllowTrailingCommas bool // permit a comma before ] or }
	AllowUnquotedKeys   bool // permit identifier-shaped object keys
	ParseInstants       bool // recognize unquoted ISO-8601 instants
	ParseDurations      bool // recognize unquoted ISO-8601 durations
	MaxDepth            int  // maximum container nesting (0 means default)
	MaxSize             int  // maximum input size in bytes (0 means unlimited)
}

// DefaultMaxDepth bounds container nesting when ParseOptions.MaxDepth is
// zero.
const DefaultMaxDepth = 512

// DefaultParseOptions returns the standard options: comments, trailing
// commas, instants and durations all enabled.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		AllowComments:       true,
		AllowTrailingCommas: true,
		AllowUnquotedKeys:   true,
		ParseInstants:       true,
		ParseDurations:      true,
	}
}

// Parser parses kJSON text into Values.
type Parser struct {
	stream *TokenStream
	opts   ParseOptions
	depth  int
}

// Parse parses kJSON text into a Value using the default options.
func Parse(input string) (*Value, error) {
	return ParseWithOptions(input, DefaultParseOptions())
}

// ParseWithOptions parses kJSON text with explicit options. Exactly one
// top-level value is accepted; anything after it is an error.
func ParseWithOptions(input string, opts ParseOptions) (*Value, error) {
	if opts.MaxSize > 0 && len(input) > opts.MaxSize {
		return nil, parseErr(ErrSizeExceeded, 0,
			"input is %d bytes, limit is %d", len(input), opts.MaxSize)
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}

	tokens, err := newLexer(input, opts).Tokenize()
	if err != nil {
		return nil, err
	}

	p := &Parser{
		stream: NewTokenStream(tokens),
		opts:   opts,
	}

	if p.stream.Peek().Type == TokenEOF {
		return nil, parseErr(ErrIncompleteInput, p.stream.Peek().Offset, "empty input")
	}

	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	if tok := p.stream.Peek(); tok.Type != TokenEOF {
		return nil, parseErr(ErrTrailingData, tok.Offset,
			"unexpected %s after value", tok.Type)
	}
	return value, nil
}

// parseValue parses any value.
func (p *Parser) parseValue() (*Value, error) {
	tok := p.stream.Peek()

	switch tok.Type {
	case TokenNull:
		p.stream.Advance()
		return Null(), nil

	case TokenUndefined:
		p.stream.Advance()
		return Undefined(), nil

	case TokenTrue:
		p.stream.Advance()
		return Bool(true), nil

	case TokenFalse:
		p.stream.Advance()
		return Bool(false), nil

	case TokenNumber:
		p.stream.Advance()
		f, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, parseErr(ErrInvalidNumber, tok.Offset, "invalid number %q", tok.Value)
		}
		return Number(f), nil

	case TokenBigInt:
		p.stream.Advance()
		b, err := ParseBigInt(tok.Value)
		if err != nil {
			return nil, parseErr(ErrInvalidNumber, tok.Offset, "invalid bigint %q", tok.Value)
		}
		return BigIntVal(b), nil

	case TokenDecimal:
		p.stream.Advance()
		d, err := ParseDecimal(tok.Value)
		if err != nil {
			return nil, parseErr(ErrInvalidNumber, tok.Offset, "invalid decimal %q", tok.Value)
		}
		return DecimalVal(d), nil

	case TokenString:
		p.stream.Advance()
		return Str(tok.Value), nil

	case TokenUUID:
		p.stream.Advance()
		u, err := uuid.Parse(tok.Value)
		if err != nil {
			return nil, parseErr(ErrInvalidUUID, tok.Offset, "invalid uuid %q", tok.Value)
		}
		return UUIDVal(u), nil

	case TokenInstant:
		p.stream.Advance()
		nanos, err := parseInstantText(tok.Value)
		if err != nil {
			return nil, parseErr(ErrInvalidInstant, tok.Offset, "invalid instant %q", tok.Value)
		}
		return InstantFromNanos(nanos), nil

	case TokenDuration:
		p.stream.Advance()
		nanos, err := parseDurationText(tok.Value)
		if err != nil {
			return nil, parseErr(ErrInvalidDuration, tok.Offset, "invalid duration %q", tok.Value)
		}
		return DurationFromNanos(nanos), nil

	case TokenLBracket:
		return p.parseArray()

	case TokenLBrace:
		return p.parseObject()

	case TokenEOF:
		return nil, parseErr(ErrIncompleteInput, tok.Offset, "unexpected end of input")

	default:
		return nil, parseErr(ErrUnexpectedToken, tok.Offset, "unexpected token %s", tok)
	}
}

// parseArray parses [v1, v2, ...], honoring the trailing comma option.
func (p *Parser) parseArray() (*Value, error) {
	open := p.stream.Advance() // consume [
	if err := p.enter(open.Offset); err != nil {
		return nil, err
	}
	defer p.leave()

	arr := Arr()
	for {
		tok := p.stream.Peek()

		if tok.Type == TokenRBracket {
			p.stream.Advance()
			return arr, nil
		}
		if tok.Type == TokenEOF {
			return nil, parseErr(ErrIncompleteInput, tok.Offset, "unterminated array")
		}

		elem, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if err := arr.Append(elem); err != nil {
			return nil, err
		}

		if err := p.expectSeparator(TokenRBracket, "array"); err != nil {
			return nil, err
		}
	}
}

// parseObject parses {k: v, ...}. Duplicate keys resolve last-write-wins
// with the key keeping its first position.
func (p *Parser) parseObject() (*Value, error) {
	open := p.stream.Advance() // consume {
	if err := p.enter(open.Offset); err != nil {
		return nil, err
	}
	defer p.leave()

	obj := Obj()
	for {
		tok := p.stream.Peek()

		if tok.Type == TokenRBrace {
			p.stream.Advance()
			return obj, nil
		}
		if tok.Type == TokenEOF {
			return nil, parseErr(ErrIncompleteInput, tok.Offset, "unterminated object")
		}

		key, err := p.parseKey()
		if err != nil {
			return nil, err
		}

		if tok := p.stream.Peek(); tok.Type != TokenColon {
			return nil, parseErr(ErrUnexpectedToken, tok.Offset,
				"expected ':' after object key, got %s", tok.Type)
		}
		p.stream.Advance()

		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if err := obj.Set(key, value); err != nil {
			return nil, err
		}

		if err := p.expectSeparator(TokenRBrace, "object"); err != nil {
			return nil, err
		}
	}
}

// parseKey parses an object key: a quoted string or, when enabled, an
// unquoted identifier. Reserved words are valid unquoted keys.
func (p *Parser) parseKey() (string, error) {
	tok := p.stream.Peek()
	switch tok.Type {
	case TokenString:
		p.stream.Advance()
		return tok.Value, nil
	case TokenIdent, TokenTrue, TokenFalse, TokenNull, TokenUndefined:
		if !p.opts.AllowUnquotedKeys {
			return "", parseErr(ErrUnexpectedToken, tok.Offset,
				"unquoted key %q not permitted", tok.Value)
		}
		p.stream.Advance()
		return tok.Value, nil
	default:
		return "", parseErr(ErrUnexpectedToken, tok.Offset,
			"expected object key, got %s", tok.Type)
	}
}

// expectSeparator consumes the comma after a container element, or accepts
// the closing token directly. A comma immediately before the closer is only
// valid when trailing commas are enabled.
func (p *Parser) expectSeparator(closer TokenType, what string) error {
	tok := p.stream.Peek()
	switch tok.Type {
	case closer:
		return nil
	case TokenComma:
		p.stream.Advance()
		if next := p.stream.Peek(); next.Type == closer && !p.opts.AllowTrailingCommas {
			return parseErr(ErrUnexpectedToken, next.Offset,
				"trailing comma in %s", what)
		}
		return nil
	case TokenEOF:
		return parseErr(ErrIncompleteInput, tok.Offset, "unterminated %s", what)
	default:
		return parseErr(ErrUnexpectedToken, tok.Offset,
			"expected ',' or %s in %s, got %s", closer, what, tok.Type)
	}
}

func (p *Parser) enter(offset int) error {
	p.depth++
	if p.depth > p.opts.MaxDepth {
		return parseErr(ErrDepthExceeded, offset,
			"nesting exceeds depth limit %d", p.opts.MaxDepth)
	}
	return nil
}

func (p *Parser) leave() {
	p.depth--
}
