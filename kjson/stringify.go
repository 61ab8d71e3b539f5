package kjson

import (
	"encoding/base64"
	"math"
	"strconv"
	"strings"
)

// StringifyOptions configures text rendering.
type StringifyOptions struct {
	// Indent string per nesting level; empty means compact single-line
	// output.
	Indent string

	// BigintSuffix emits the "n" suffix on BigInt values. Disabling it
	// produces bare digits, which re-parse as Number and lose precision.
	BigintSuffix bool

	// SerializeInstants renders instants as bare ISO-8601 literals.
	// Disabled, they render as quoted strings for plain-JSON consumers.
	SerializeInstants bool

	// SerializeDurations renders durations as bare ISO-8601 literals.
	SerializeDurations bool

	// QuoteKeys forces quoting of every object key, even identifier-shaped
	// ones.
	QuoteKeys bool
}

// DefaultStringifyOptions returns compact output with all extended literal
// forms enabled.
func DefaultStringifyOptions() StringifyOptions {
	return StringifyOptions{
		BigintSuffix:       true,
		SerializeInstants:  true,
		SerializeDurations: true,
	}
}

// PrettyStringifyOptions returns defaults with two-space indentation.
func PrettyStringifyOptions() StringifyOptions {
	opts := DefaultStringifyOptions()
	opts.Indent = "  "
	return opts
}

// Stringify renders a Value as compact kJSON text.
func Stringify(v *Value) string {
	return StringifyWithOptions(v, DefaultStringifyOptions())
}

// StringifyPretty renders a Value with two-space indentation.
func StringifyPretty(v *Value) string {
	return StringifyWithOptions(v, PrettyStringifyOptions())
}

// StringifyWithOptions renders a Value with custom options. Rendering is a
// pure function of the tree and options; member order is preserved, never
// sorted.
func StringifyWithOptions(v *Value, opts StringifyOptions) string {
	s := &stringifier{opts: opts, pretty: opts.Indent != ""}
	s.write(v, 0)
	return s.sb.String()
}

type stringifier struct {
	sb     strings.Builder
	opts   StringifyOptions
	pretty bool
}

func (s *stringifier) write(v *Value, depth int) {
	if v == nil {
		s.sb.WriteString("null")
		return
	}

	switch v.kind {
	case KindNull:
		s.sb.WriteString("null")

	case KindUndefined:
		s.sb.WriteString("undefined")

	case KindBool:
		if v.boolVal {
			s.sb.WriteString("true")
		} else {
			s.sb.WriteString("false")
		}

	case KindNumber:
		s.writeNumber(v.numVal)

	case KindBigInt:
		if v.neg {
			s.sb.WriteByte('-')
		}
		s.sb.WriteString(v.strVal)
		if s.opts.BigintSuffix {
			s.sb.WriteByte('n')
		}

	case KindDecimal128:
		d := Decimal128{Neg: v.neg, Digits: v.strVal, Exponent: v.expVal}
		s.sb.WriteString(d.String())
		s.sb.WriteByte('m')

	case KindString:
		s.writeString(v.strVal)

	case KindBinary:
		// No text literal exists for binary; round-trips only through
		// kJSONB.
		s.writeString(base64.StdEncoding.EncodeToString(v.bytesVal))

	case KindUUID:
		s.sb.WriteString(v.uuidVal.String())

	case KindInstant:
		if s.opts.SerializeInstants {
			s.sb.WriteString(formatInstant(v.nanoVal))
		} else {
			s.writeString(formatInstant(v.nanoVal))
		}

	case KindDuration:
		if s.opts.SerializeDurations {
			s.sb.WriteString(formatDuration(v.nanoVal))
		} else {
			s.writeString(formatDuration(v.nanoVal))
		}

	case KindArray:
		s.writeArray(v, depth)

	case KindObject:
		s.writeObject(v, depth)
	}
}

// writeNumber renders a float the way JSON does: shortest form that
// round-trips, exponent notation only for extreme magnitudes. Non-finite
// values have no literal and degrade to null.
func (s *stringifier) writeNumber(f float64) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		s.sb.WriteString("null")
		return
	}

	format := byte('f')
	if abs := math.Abs(f); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	out := strconv.FormatFloat(f, format, -1, 64)
	if format == 'e' {
		// Trim the zero-padded exponent: 1e-09 becomes 1e-9.
		if n := len(out); n >= 4 && out[n-4] == 'e' && out[n-3] == '-' && out[n-2] == '0' {
			out = out[:n-2] + out[n-1:]
		}
	}
	s.sb.WriteString(out)
}

// writeString renders a string with smart quote selection: the delimiter
// among ' " ` that needs the fewest escapes wins, ties broken in that
// order.
func (s *stringifier) writeString(str string) {
	quote := chooseQuote(str)

	s.sb.WriteByte(quote)
	for _, r := range str {
		switch r {
		case rune(quote):
			s.sb.WriteByte('\\')
			s.sb.WriteByte(quote)
		case '\\':
			s.sb.WriteString(`\\`)
		case '\b':
			s.sb.WriteString(`\b`)
		case '\f':
			s.sb.WriteString(`\f`)
		case '\n':
			s.sb.WriteString(`\n`)
		case '\r':
			s.sb.WriteString(`\r`)
		case '\t':
			s.sb.WriteString(`\t`)
		default:
			if r < 0x20 {
				s.sb.WriteString(`\u`)
				hex := strconv.FormatInt(int64(r), 16)
				s.sb.WriteString(strings.Repeat("0", 4-len(hex)))
				s.sb.WriteString(hex)
			} else {
				s.sb.WriteRune(r)
			}
		}
	}
	s.sb.WriteByte(quote)
}

// chooseQuote picks the cheapest delimiter. Backslashes are escaped under
// every delimiter so they contribute to every cost equally; quote
// occurrences only cost under their own delimiter.
func chooseQuote(s string) byte {
	var singles, doubles, backticks, slashes int
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'':
			singles++
		case '"':
			doubles++
		case '`':
			backticks++
		case '\\':
			slashes++
		}
	}

	quote := byte('\'')
	best := singles + slashes
	if cost := doubles + slashes; cost < best {
		quote = '"'
		best = cost
	}
	if cost := backticks + slashes; cost < best {
		quote = '`'
	}
	return quote
}

func (s *stringifier) writeArray(v *Value, depth int) {
	if len(v.arrVal) == 0 {
		s.sb.WriteString("[]")
		return
	}

	s.sb.WriteByte('[')
	for i, elem := range v.arrVal {
		if i > 0 {
			s.sb.WriteByte(',')
		}
		if s.pretty {
			s.sb.WriteByte('\n')
			s.writeIndent(depth + 1)
		}
		s.write(elem, depth+1)
	}
	if s.pretty {
		s.sb.WriteByte('\n')
		s.writeIndent(depth)
	}
	s.sb.WriteByte(']')
}

func (s *stringifier) writeObject(v *Value, depth int) {
	if len(v.objVal) == 0 {
		s.sb.WriteString("{}")
		return
	}

	s.sb.WriteByte('{')
	for i, member := range v.objVal {
		if i > 0 {
			s.sb.WriteByte(',')
		}
		if s.pretty {
			s.sb.WriteByte('\n')
			s.writeIndent(depth + 1)
		}
		s.writeKey(member.Key)
		s.sb.WriteByte(':')
		if s.pretty {
			s.sb.WriteByte(' ')
		}
		s.write(member.Value, depth+1)
	}
	if s.pretty {
		s.sb.WriteByte('\n')
		s.writeIndent(depth)
	}
	s.sb.WriteByte('}')
}

// writeKey renders an object key, unquoted when identifier-shaped and not
// a reserved word.
func (s *stringifier) writeKey(key string) {
	if !s.opts.QuoteKeys && isUnquotableKey(key) {
		s.sb.WriteString(key)
		return
	}
	s.writeString(key)
}

func (s *stringifier) writeIndent(depth int) {
	for i := 0; i < depth; i++ {
		s.sb.WriteString(s.opts.Indent)
	}
}

// isUnquotableKey reports whether key can render without quotes: it must
// be identifier-shaped and not collide with a literal keyword.
func isUnquotableKey(key string) bool {
	if key == "" {
		return false
	}
	switch key {
	case "true", "false", "null", "undefined":
		return false
	}
	if !isIdentStart(key[0]) {
		return false
	}
	for i := 1; i < len(key); i++ {
		if !isIdentContinue(key[i]) {
			return false
		}
	}
	return true
}
