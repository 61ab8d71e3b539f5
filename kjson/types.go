package kjson

import (
	"bytes"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindUndefined
	KindBool
	KindNumber
	KindBigInt
	KindDecimal128
	KindString
	KindBinary
	KindUUID
	KindInstant
	KindDuration
	KindArray
	KindObject
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindUndefined:
		return "undefined"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindBigInt:
		return "bigint"
	case KindDecimal128:
		return "decimal128"
	case KindString:
		return "string"
	case KindBinary:
		return "binary"
	case KindUUID:
		return "uuid"
	case KindInstant:
		return "instant"
	case KindDuration:
		return "duration"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Member is a key-value pair in an object. Iteration order is insertion
// order.
type Member struct {
	Key   string
	Value *Value
}

// Value is a kJSON value: a closed tagged union over the kinds above.
// Containers own their children exclusively; construction is bottom-up and a
// Value is treated as immutable once construction is complete.
type Value struct {
	kind Kind

	// Scalars (only one valid based on kind)
	boolVal  bool
	numVal   float64
	strVal   string // String text; BigInt/Decimal128 digit string (no sign)
	neg      bool   // BigInt/Decimal128 sign
	expVal   int32  // Decimal128 exponent
	bytesVal []byte
	uuidVal  uuid.UUID
	nanoVal  int64 // Instant and Duration: nanoseconds

	// Containers
	arrVal []*Value
	objVal []Member
}

// ============================================================
// Constructors
// ============================================================

// Null creates a null value.
func Null() *Value {
	return &Value{kind: KindNull}
}

// Undefined creates an undefined value. Undefined is distinct from Null but
// both map to JSON null when bridged to plain JSON.
func Undefined() *Value {
	return &Value{kind: KindUndefined}
}

// Bool creates a boolean value.
func Bool(v bool) *Value {
	return &Value{kind: KindBool, boolVal: v}
}

// Number creates a number value. Non-finite values are representable here
// but render as null in both encodings.
func Number(v float64) *Value {
	return &Value{kind: KindNumber, numVal: v}
}

// Str creates a string value.
func Str(v string) *Value {
	return &Value{kind: KindString, strVal: v}
}

// StrBytes creates a string value from raw bytes, rejecting invalid UTF-8.
func StrBytes(b []byte) (*Value, error) {
	if !utf8.Valid(b) {
		return nil, fmt.Errorf("kjson: string value is not valid UTF-8")
	}
	return Str(string(b)), nil
}

// Bin creates a binary value. The bytes are copied.
func Bin(v []byte) *Value {
	b := make([]byte, len(v))
	copy(b, v)
	return &Value{kind: KindBinary, bytesVal: b}
}

// UUIDVal creates a UUID value.
func UUIDVal(u uuid.UUID) *Value {
	return &Value{kind: KindUUID, uuidVal: u}
}

// ParseUUIDVal creates a UUID value from its textual 8-4-4-4-12 form.
func ParseUUIDVal(s string) (*Value, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("kjson: invalid UUID %q: %w", s, err)
	}
	return UUIDVal(u), nil
}

// BigIntVal creates a BigInt value.
func BigIntVal(b BigInt) *Value {
	return &Value{kind: KindBigInt, neg: b.Neg, strVal: b.Digits}
}

// DecimalVal creates a Decimal128 value.
func DecimalVal(d Decimal128) *Value {
	return &Value{kind: KindDecimal128, neg: d.Neg, strVal: d.Digits, expVal: d.Exponent}
}

// Instant creates an instant value from a time.Time. The instant is stored
// as UTC nanoseconds since the Unix epoch; any zone on t is discarded after
// conversion.
func Instant(t time.Time) *Value {
	return &Value{kind: KindInstant, nanoVal: t.UnixNano()}
}

// InstantFromNanos creates an instant value from nanoseconds since the Unix
// epoch.
func InstantFromNanos(n int64) *Value {
	return &Value{kind: KindInstant, nanoVal: n}
}

// Dur creates a duration value from a time.Duration.
func Dur(d time.Duration) *Value {
	return &Value{kind: KindDuration, nanoVal: int64(d)}
}

// DurationFromNanos creates a duration value from nanoseconds. Durations may
// be negative.
func DurationFromNanos(n int64) *Value {
	return &Value{kind: KindDuration, nanoVal: n}
}

// Arr creates an array value.
func Arr(values ...*Value) *Value {
	return &Value{kind: KindArray, arrVal: values}
}

// Obj creates an object value from members. Duplicate keys follow
// last-write-wins; the surviving member keeps its original position.
func Obj(members ...Member) *Value {
	v := &Value{kind: KindObject}
	for _, m := range members {
		v.Set(m.Key, m.Value)
	}
	return v
}

// Field creates a Member for use in Obj construction.
func Field(key string, value *Value) Member {
	return Member{Key: key, Value: value}
}

// ============================================================
// Accessors
// ============================================================

// Kind returns the value kind.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// IsNull returns true if this is a null value.
func (v *Value) IsNull() bool {
	return v == nil || v.kind == KindNull
}

// IsUndefined returns true if this is an undefined value.
func (v *Value) IsUndefined() bool {
	return v != nil && v.kind == KindUndefined
}

// AsBool returns the boolean value.
func (v *Value) AsBool() (bool, error) {
	if v == nil {
		return false, fmt.Errorf("kjson: nil value")
	}
	if v.kind != KindBool {
		return false, fmt.Errorf("kjson: expected bool, got %s", v.kind)
	}
	return v.boolVal, nil
}

// AsNumber returns the number value.
func (v *Value) AsNumber() (float64, error) {
	if v == nil {
		return 0, fmt.Errorf("kjson: nil value")
	}
	if v.kind != KindNumber {
		return 0, fmt.Errorf("kjson: expected number, got %s", v.kind)
	}
	return v.numVal, nil
}

// AsStr returns the string value.
func (v *Value) AsStr() (string, error) {
	if v == nil {
		return "", fmt.Errorf("kjson: nil value")
	}
	if v.kind != KindString {
		return "", fmt.Errorf("kjson: expected string, got %s", v.kind)
	}
	return v.strVal, nil
}

// AsBin returns the binary value.
func (v *Value) AsBin() ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("kjson: nil value")
	}
	if v.kind != KindBinary {
		return nil, fmt.Errorf("kjson: expected binary, got %s", v.kind)
	}
	return v.bytesVal, nil
}

// AsUUID returns the UUID value.
func (v *Value) AsUUID() (uuid.UUID, error) {
	if v == nil {
		return uuid.UUID{}, fmt.Errorf("kjson: nil value")
	}
	if v.kind != KindUUID {
		return uuid.UUID{}, fmt.Errorf("kjson: expected uuid, got %s", v.kind)
	}
	return v.uuidVal, nil
}

// AsBigInt returns the BigInt value.
func (v *Value) AsBigInt() (BigInt, error) {
	if v == nil {
		return BigInt{}, fmt.Errorf("kjson: nil value")
	}
	if v.kind != KindBigInt {
		return BigInt{}, fmt.Errorf("kjson: expected bigint, got %s", v.kind)
	}
	return BigInt{Neg: v.neg, Digits: v.strVal}, nil
}

// AsDecimal returns the Decimal128 value.
func (v *Value) AsDecimal() (Decimal128, error) {
	if v == nil {
		return Decimal128{}, fmt.Errorf("kjson: nil value")
	}
	if v.kind != KindDecimal128 {
		return Decimal128{}, fmt.Errorf("kjson: expected decimal128, got %s", v.kind)
	}
	return Decimal128{Neg: v.neg, Digits: v.strVal, Exponent: v.expVal}, nil
}

// AsInstant returns the instant as a UTC time.Time.
func (v *Value) AsInstant() (time.Time, error) {
	if v == nil {
		return time.Time{}, fmt.Errorf("kjson: nil value")
	}
	if v.kind != KindInstant {
		return time.Time{}, fmt.Errorf("kjson: expected instant, got %s", v.kind)
	}
	return time.Unix(0, v.nanoVal).UTC(), nil
}

// AsInstantNanos returns the instant as nanoseconds since the Unix epoch.
func (v *Value) AsInstantNanos() (int64, error) {
	if v == nil || v.kind != KindInstant {
		return 0, fmt.Errorf("kjson: expected instant, got %s", v.Kind())
	}
	return v.nanoVal, nil
}

// AsDuration returns the duration value.
func (v *Value) AsDuration() (time.Duration, error) {
	if v == nil {
		return 0, fmt.Errorf("kjson: nil value")
	}
	if v.kind != KindDuration {
		return 0, fmt.Errorf("kjson: expected duration, got %s", v.kind)
	}
	return time.Duration(v.nanoVal), nil
}

// AsDurationNanos returns the duration as nanoseconds.
func (v *Value) AsDurationNanos() (int64, error) {
	if v == nil || v.kind != KindDuration {
		return 0, fmt.Errorf("kjson: expected duration, got %s", v.Kind())
	}
	return v.nanoVal, nil
}

// AsArr returns the array elements.
func (v *Value) AsArr() ([]*Value, error) {
	if v == nil {
		return nil, fmt.Errorf("kjson: nil value")
	}
	if v.kind != KindArray {
		return nil, fmt.Errorf("kjson: expected array, got %s", v.kind)
	}
	return v.arrVal, nil
}

// AsObj returns the object members in insertion order.
func (v *Value) AsObj() ([]Member, error) {
	if v == nil {
		return nil, fmt.Errorf("kjson: nil value")
	}
	if v.kind != KindObject {
		return nil, fmt.Errorf("kjson: expected object, got %s", v.kind)
	}
	return v.objVal, nil
}

// Len returns the length of an array or object, 0 for other kinds.
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	switch v.kind {
	case KindArray:
		return len(v.arrVal)
	case KindObject:
		return len(v.objVal)
	default:
		return 0
	}
}

// Get returns a member value by key from an object, or nil.
func (v *Value) Get(key string) *Value {
	if v == nil || v.kind != KindObject {
		return nil
	}
	for _, m := range v.objVal {
		if m.Key == key {
			return m.Value
		}
	}
	return nil
}

// Index returns the i-th element of an array.
func (v *Value) Index(i int) (*Value, error) {
	if v == nil || v.kind != KindArray {
		return nil, fmt.Errorf("kjson: not an array")
	}
	if i < 0 || i >= len(v.arrVal) {
		return nil, fmt.Errorf("kjson: index %d out of bounds (len=%d)", i, len(v.arrVal))
	}
	return v.arrVal[i], nil
}

// ============================================================
// Builder mutators
// ============================================================
//
// Set and Append are construction-time builders. After a Value has been
// handed to another goroutine it must not be mutated.

// Set sets a member on an object. An existing key keeps its position and
// takes the new value (last write wins).
func (v *Value) Set(key string, val *Value) error {
	if v == nil || v.kind != KindObject {
		return fmt.Errorf("kjson: cannot set member on %s", v.Kind())
	}
	for i := range v.objVal {
		if v.objVal[i].Key == key {
			v.objVal[i].Value = val
			return nil
		}
	}
	v.objVal = append(v.objVal, Member{Key: key, Value: val})
	return nil
}

// Append adds an element to an array.
func (v *Value) Append(val *Value) error {
	if v == nil || v.kind != KindArray {
		return fmt.Errorf("kjson: cannot append to %s", v.Kind())
	}
	v.arrVal = append(v.arrVal, val)
	return nil
}

// ============================================================
// Equality
// ============================================================

// Equal reports deep equality of two values. Containers compare element-wise
// in order; BigInt and Decimal128 compare by normalized sign, digits, and
// exponent; Null and Undefined are distinct.
func Equal(a, b *Value) bool {
	if a == nil || b == nil {
		return a.Kind() == b.Kind()
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull, KindUndefined:
		return true
	case KindBool:
		return a.boolVal == b.boolVal
	case KindNumber:
		return a.numVal == b.numVal
	case KindBigInt:
		return a.neg == b.neg && a.strVal == b.strVal
	case KindDecimal128:
		return a.neg == b.neg && a.strVal == b.strVal && a.expVal == b.expVal
	case KindString:
		return a.strVal == b.strVal
	case KindBinary:
		return bytes.Equal(a.bytesVal, b.bytesVal)
	case KindUUID:
		return a.uuidVal == b.uuidVal
	case KindInstant, KindDuration:
		return a.nanoVal == b.nanoVal
	case KindArray:
		if len(a.arrVal) != len(b.arrVal) {
			return false
		}
		for i := range a.arrVal {
			if !Equal(a.arrVal[i], b.arrVal[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.objVal) != len(b.objVal) {
			return false
		}
		for i := range a.objVal {
			if a.objVal[i].Key != b.objVal[i].Key || !Equal(a.objVal[i].Value, b.objVal[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
