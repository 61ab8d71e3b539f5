package kjson

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// Decimal128 is an exact decimal value stored as sign + digit string +
// base-10 exponent: value = (Neg ? -1 : 1) × Digits × 10^Exponent.
//
// This is a data-only representation: the digit string is normalized (no
// leading zeros, no trailing zeros except the single "0") so that equal
// values have identical fields. Arithmetic, if needed, is layered on top via
// Apd; it is not part of the serialization core.
type Decimal128 struct {
	Neg      bool
	Digits   string
	Exponent int32
}

// ParseDecimal parses a decimal string ("99.99", "-0.001", "1.5e-3") into
// normalized form.
func ParseDecimal(s string) (Decimal128, error) {
	var d apd.Decimal
	if _, _, err := d.SetString(s); err != nil {
		return Decimal128{}, fmt.Errorf("kjson: invalid decimal %q: %w", s, err)
	}
	if d.Form != apd.Finite {
		return Decimal128{}, fmt.Errorf("kjson: non-finite decimal %q", s)
	}
	return decimalFromApd(&d), nil
}

// DecimalFromApd converts an apd Decimal into normalized Decimal128 form.
func DecimalFromApd(d *apd.Decimal) (Decimal128, error) {
	if d.Form != apd.Finite {
		return Decimal128{}, fmt.Errorf("kjson: non-finite decimal")
	}
	return decimalFromApd(d), nil
}

func decimalFromApd(d *apd.Decimal) Decimal128 {
	if d.Coeff.Sign() == 0 {
		return Decimal128{Digits: "0"}
	}
	var reduced apd.Decimal
	reduced.Reduce(d)
	return Decimal128{
		Neg:      reduced.Negative,
		Digits:   reduced.Coeff.String(),
		Exponent: reduced.Exponent,
	}
}

// Apd returns the value as an apd Decimal for arithmetic.
func (d Decimal128) Apd() *apd.Decimal {
	var out apd.Decimal
	// The normalized digit string is always a valid coefficient.
	_, _, _ = out.SetString(d.String())
	return &out
}

// IsZero returns true if d is zero.
func (d Decimal128) IsZero() bool {
	return d.Digits == "0" || d.Digits == ""
}

// String returns the plain decimal representation, always containing a
// decimal point, without the "m" literal suffix. Parsing the result yields
// an equal Decimal128.
func (d Decimal128) String() string {
	digits := d.Digits
	if digits == "" {
		digits = "0"
	}

	var body string
	if d.Exponent >= 0 {
		body = digits + strings.Repeat("0", int(d.Exponent)) + ".0"
	} else {
		scale := int(-d.Exponent)
		if len(digits) <= scale {
			body = "0." + strings.Repeat("0", scale-len(digits)) + digits
		} else {
			split := len(digits) - scale
			body = digits[:split] + "." + digits[split:]
		}
	}

	if d.Neg {
		return "-" + body
	}
	return body
}

// decimalLiteralRe matches decimal literals with the "m" suffix
// (e.g. "99.99m", "-1.5e-3m").
var decimalLiteralRe = regexp.MustCompile(`^-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?m$`)

// IsDecimalLiteral checks if a string is a decimal literal with "m" suffix.
func IsDecimalLiteral(s string) bool {
	return decimalLiteralRe.MatchString(s)
}

// ParseDecimalLiteral parses a decimal literal with "m" suffix.
func ParseDecimalLiteral(s string) (Decimal128, error) {
	if !IsDecimalLiteral(s) {
		return Decimal128{}, fmt.Errorf("kjson: not a decimal literal: %q", s)
	}
	return ParseDecimal(s[:len(s)-1])
}
