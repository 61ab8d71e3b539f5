package kjson

import (
	"fmt"
	"math/big"
	"strconv"
)

// BigInt is an arbitrary-precision integer stored as a sign and a decimal
// digit string. Digits carry no sign and no leading zeros; zero is the
// canonical {Neg: false, Digits: "0"}.
type BigInt struct {
	Neg    bool
	Digits string
}

// NewBigInt creates a BigInt from an int64.
func NewBigInt(n int64) BigInt {
	if n < 0 {
		// FormatInt handles MinInt64 where manual negation would not.
		return BigInt{Neg: true, Digits: strconv.FormatInt(n, 10)[1:]}
	}
	return BigInt{Digits: strconv.FormatInt(n, 10)}
}

// ParseBigInt parses a decimal integer string with an optional leading sign
// into canonical form.
func ParseBigInt(s string) (BigInt, error) {
	if s == "" {
		return BigInt{}, fmt.Errorf("kjson: empty bigint")
	}
	neg := false
	digits := s
	switch s[0] {
	case '-':
		neg = true
		digits = s[1:]
	case '+':
		digits = s[1:]
	}
	if digits == "" {
		return BigInt{}, fmt.Errorf("kjson: invalid bigint %q", s)
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return BigInt{}, fmt.Errorf("kjson: invalid bigint digit %q in %q", digits[i], s)
		}
	}
	digits = trimLeadingZeros(digits)
	if digits == "0" {
		neg = false
	}
	return BigInt{Neg: neg, Digits: digits}, nil
}

// BigIntFromBig creates a BigInt from a math/big Int.
func BigIntFromBig(n *big.Int) BigInt {
	if n.Sign() < 0 {
		return BigInt{Neg: true, Digits: new(big.Int).Abs(n).String()}
	}
	return BigInt{Digits: n.String()}
}

// Big returns the value as a math/big Int.
func (b BigInt) Big() *big.Int {
	n := new(big.Int)
	n.SetString(b.Digits, 10)
	if b.Neg {
		n.Neg(n)
	}
	return n
}

// IsZero returns true if b is zero.
func (b BigInt) IsZero() bool {
	return b.Digits == "0" || b.Digits == ""
}

// String returns the decimal representation with a leading minus if
// negative, without the "n" literal suffix.
func (b BigInt) String() string {
	if b.Neg {
		return "-" + b.Digits
	}
	return b.Digits
}

func trimLeadingZeros(digits string) string {
	i := 0
	for i < len(digits)-1 && digits[i] == '0' {
		i++
	}
	return digits[i:]
}
