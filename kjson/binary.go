package kjson

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/google/uuid"
)

// kJSONB wire format: one type-tag byte per value, little-endian
// fixed-width numeric payloads, base-128 uvarints for all lengths and
// counts, zigzag mapping before varint for signed quantities.
//
// The tag numbering is part of the wire contract and must never be
// reordered.
const (
	tagNull       = 0x00
	tagFalse      = 0x01
	tagTrue       = 0x02
	tagInt8       = 0x03
	tagInt16      = 0x04
	tagInt32      = 0x05
	tagInt64      = 0x06
	tagFloat32    = 0x07
	tagFloat64    = 0x08
	tagBigInt     = 0x09 // sign byte + varint length + ASCII digits
	tagDecimal128 = 0x0A // sign byte + zigzag exponent + varint length + digits
	tagString     = 0x0B // varint length + UTF-8 bytes
	tagBinary     = 0x0C // varint length + raw bytes
	tagUUID       = 0x0D // 16 raw bytes
	tagInstant    = 0x0E // zigzag nanoseconds
	tagDuration   = 0x0F // zigzag nanoseconds
	tagArray      = 0x10 // varint count + encoded elements
	tagObject     = 0x11 // varint count + (varint key length + key + value) pairs
	tagUndefined  = 0x12
)

// ============================================================
// Encoding
// ============================================================

// Encode serializes a Value to kJSONB bytes.
func Encode(v *Value) ([]byte, error) {
	e := &encoder{}
	if err := e.encode(v); err != nil {
		return nil, err
	}
	return e.buf, nil
}

type encoder struct {
	buf []byte
}

func (e *encoder) encode(v *Value) error {
	if v == nil {
		e.buf = append(e.buf, tagNull)
		return nil
	}

	switch v.kind {
	case KindNull:
		e.buf = append(e.buf, tagNull)

	case KindUndefined:
		e.buf = append(e.buf, tagUndefined)

	case KindBool:
		if v.boolVal {
			e.buf = append(e.buf, tagTrue)
		} else {
			e.buf = append(e.buf, tagFalse)
		}

	case KindNumber:
		e.encodeNumber(v.numVal)

	case KindBigInt:
		e.buf = append(e.buf, tagBigInt)
		e.appendSign(v.neg)
		e.appendLengthPrefixed([]byte(v.strVal))

	case KindDecimal128:
		e.buf = append(e.buf, tagDecimal128)
		e.appendSign(v.neg)
		e.appendZigzag(int64(v.expVal))
		e.appendLengthPrefixed([]byte(v.strVal))

	case KindString:
		e.buf = append(e.buf, tagString)
		e.appendLengthPrefixed([]byte(v.strVal))

	case KindBinary:
		e.buf = append(e.buf, tagBinary)
		e.appendLengthPrefixed(v.bytesVal)

	case KindUUID:
		e.buf = append(e.buf, tagUUID)
		e.buf = append(e.buf, v.uuidVal[:]...)

	case KindInstant:
		e.buf = append(e.buf, tagInstant)
		e.appendZigzag(v.nanoVal)

	case KindDuration:
		e.buf = append(e.buf, tagDuration)
		e.appendZigzag(v.nanoVal)

	case KindArray:
		e.buf = append(e.buf, tagArray)
		e.buf = binary.AppendUvarint(e.buf, uint64(len(v.arrVal)))
		for _, elem := range v.arrVal {
			if err := e.encode(elem); err != nil {
				return err
			}
		}

	case KindObject:
		e.buf = append(e.buf, tagObject)
		e.buf = binary.AppendUvarint(e.buf, uint64(len(v.objVal)))
		for _, m := range v.objVal {
			e.appendLengthPrefixed([]byte(m.Key))
			if err := e.encode(m.Value); err != nil {
				return err
			}
		}

	default:
		return decodeErr(ErrInvalidBinary, len(e.buf), "cannot encode kind %s", v.kind)
	}
	return nil
}

// encodeNumber picks the smallest tag that represents the value exactly:
// int8 through int64 for integral values, then float32 when it round-trips
// through 32-bit precision, else float64. Non-finite values have no wire
// form and degrade to null, matching the text rendering.
func (e *encoder) encodeNumber(f float64) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		e.buf = append(e.buf, tagNull)
		return
	}

	if f == math.Trunc(f) && f >= -(1<<63) && f < (1<<63) {
		n := int64(f)
		switch {
		case n >= math.MinInt8 && n <= math.MaxInt8:
			e.buf = append(e.buf, tagInt8, byte(int8(n)))
		case n >= math.MinInt16 && n <= math.MaxInt16:
			e.buf = append(e.buf, tagInt16)
			e.buf = binary.LittleEndian.AppendUint16(e.buf, uint16(int16(n)))
		case n >= math.MinInt32 && n <= math.MaxInt32:
			e.buf = append(e.buf, tagInt32)
			e.buf = binary.LittleEndian.AppendUint32(e.buf, uint32(int32(n)))
		default:
			e.buf = append(e.buf, tagInt64)
			e.buf = binary.LittleEndian.AppendUint64(e.buf, uint64(n))
		}
		return
	}

	if f32 := float32(f); float64(f32) == f {
		e.buf = append(e.buf, tagFloat32)
		e.buf = binary.LittleEndian.AppendUint32(e.buf, math.Float32bits(f32))
		return
	}

	e.buf = append(e.buf, tagFloat64)
	e.buf = binary.LittleEndian.AppendUint64(e.buf, math.Float64bits(f))
}

func (e *encoder) appendSign(neg bool) {
	if neg {
		e.buf = append(e.buf, 1)
	} else {
		e.buf = append(e.buf, 0)
	}
}

func (e *encoder) appendLengthPrefixed(b []byte) {
	e.buf = binary.AppendUvarint(e.buf, uint64(len(b)))
	e.buf = append(e.buf, b...)
}

func (e *encoder) appendZigzag(n int64) {
	e.buf = binary.AppendUvarint(e.buf, zigzagEncode(n))
}

// zigzagEncode maps signed to unsigned: n>=0 to 2n, n<0 to -2n-1.
func zigzagEncode(n int64) uint64 {
	return uint64(n<<1) ^ uint64(n>>63)
}

func zigzagDecode(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// ============================================================
// Decoding
// ============================================================

// Decode deserializes kJSONB bytes into a Value. Exactly one top-level
// value must consume the whole input; truncation and trailing bytes are
// both errors.
func Decode(data []byte) (*Value, error) {
	d := &decoder{data: data}
	v, err := d.decode()
	if err != nil {
		return nil, err
	}
	if d.pos != len(d.data) {
		return nil, decodeErr(ErrTrailingData, d.pos,
			"%d trailing bytes after value", len(d.data)-d.pos)
	}
	return v, nil
}

type decoder struct {
	data  []byte
	pos   int
	depth int
}

func (d *decoder) decode() (*Value, error) {
	tagOffset := d.pos
	tag, err := d.readByte()
	if err != nil {
		return nil, err
	}

	switch tag {
	case tagNull:
		return Null(), nil

	case tagUndefined:
		return Undefined(), nil

	case tagFalse:
		return Bool(false), nil

	case tagTrue:
		return Bool(true), nil

	case tagInt8:
		b, err := d.readByte()
		if err != nil {
			return nil, err
		}
		return Number(float64(int8(b))), nil

	case tagInt16:
		b, err := d.readN(2)
		if err != nil {
			return nil, err
		}
		return Number(float64(int16(binary.LittleEndian.Uint16(b)))), nil

	case tagInt32:
		b, err := d.readN(4)
		if err != nil {
			return nil, err
		}
		return Number(float64(int32(binary.LittleEndian.Uint32(b)))), nil

	case tagInt64:
		b, err := d.readN(8)
		if err != nil {
			return nil, err
		}
		return Number(float64(int64(binary.LittleEndian.Uint64(b)))), nil

	case tagFloat32:
		b, err := d.readN(4)
		if err != nil {
			return nil, err
		}
		return Number(float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))), nil

	case tagFloat64:
		b, err := d.readN(8)
		if err != nil {
			return nil, err
		}
		return Number(math.Float64frombits(binary.LittleEndian.Uint64(b))), nil

	case tagBigInt:
		neg, err := d.readSign()
		if err != nil {
			return nil, err
		}
		digits, err := d.readDigits()
		if err != nil {
			return nil, err
		}
		if digits == "0" {
			neg = false
		}
		return BigIntVal(BigInt{Neg: neg, Digits: digits}), nil

	case tagDecimal128:
		neg, err := d.readSign()
		if err != nil {
			return nil, err
		}
		exp, err := d.readZigzag()
		if err != nil {
			return nil, err
		}
		if exp < math.MinInt32 || exp > math.MaxInt32 {
			return nil, decodeErr(ErrOverflow, tagOffset, "decimal exponent %d out of range", exp)
		}
		digits, err := d.readDigits()
		if err != nil {
			return nil, err
		}
		if digits == "0" {
			neg = false
		}
		return DecimalVal(Decimal128{Neg: neg, Digits: digits, Exponent: int32(exp)}), nil

	case tagString:
		b, err := d.readLengthPrefixed()
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(b) {
			return nil, decodeErr(ErrInvalidBinary, tagOffset, "string payload is not valid UTF-8")
		}
		return Str(string(b)), nil

	case tagBinary:
		b, err := d.readLengthPrefixed()
		if err != nil {
			return nil, err
		}
		return Bin(b), nil

	case tagUUID:
		b, err := d.readN(16)
		if err != nil {
			return nil, err
		}
		u, err := uuid.FromBytes(b)
		if err != nil {
			return nil, decodeErr(ErrInvalidBinary, tagOffset, "invalid uuid payload")
		}
		return UUIDVal(u), nil

	case tagInstant:
		nanos, err := d.readZigzag()
		if err != nil {
			return nil, err
		}
		return InstantFromNanos(nanos), nil

	case tagDuration:
		nanos, err := d.readZigzag()
		if err != nil {
			return nil, err
		}
		return DurationFromNanos(nanos), nil

	case tagArray:
		if err := d.enter(tagOffset); err != nil {
			return nil, err
		}
		defer d.leave()

		count, err := d.readUvarint()
		if err != nil {
			return nil, err
		}
		arr := Arr()
		for i := uint64(0); i < count; i++ {
			elem, err := d.decode()
			if err != nil {
				return nil, err
			}
			arr.arrVal = append(arr.arrVal, elem)
		}
		return arr, nil

	case tagObject:
		if err := d.enter(tagOffset); err != nil {
			return nil, err
		}
		defer d.leave()

		count, err := d.readUvarint()
		if err != nil {
			return nil, err
		}
		obj := Obj()
		for i := uint64(0); i < count; i++ {
			keyOffset := d.pos
			keyBytes, err := d.readLengthPrefixed()
			if err != nil {
				return nil, err
			}
			if !utf8.Valid(keyBytes) {
				return nil, decodeErr(ErrInvalidBinary, keyOffset, "object key is not valid UTF-8")
			}
			value, err := d.decode()
			if err != nil {
				return nil, err
			}
			if err := obj.Set(string(keyBytes), value); err != nil {
				return nil, err
			}
		}
		return obj, nil

	default:
		return nil, decodeErr(ErrUnknownTag, tagOffset, "unknown tag 0x%02x", tag)
	}
}

func (d *decoder) readByte() (byte, error) {
	if d.pos >= len(d.data) {
		return 0, decodeErr(ErrInvalidBinary, d.pos, "truncated input")
	}
	b := d.data[d.pos]
	d.pos++
	return b, nil
}

func (d *decoder) readN(n int) ([]byte, error) {
	if d.pos+n > len(d.data) {
		return nil, decodeErr(ErrInvalidBinary, d.pos,
			"truncated input: need %d bytes, have %d", n, len(d.data)-d.pos)
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// readUvarint reads a base-128 varint, capped at ten bytes.
func (d *decoder) readUvarint() (uint64, error) {
	start := d.pos
	var out uint64
	var shift uint
	for i := 0; i < binary.MaxVarintLen64; i++ {
		b, err := d.readByte()
		if err != nil {
			return 0, err
		}
		if b < 0x80 {
			if i == binary.MaxVarintLen64-1 && b > 1 {
				return 0, decodeErr(ErrOverflow, start, "varint exceeds 64 bits")
			}
			return out | uint64(b)<<shift, nil
		}
		out |= uint64(b&0x7f) << shift
		shift += 7
	}
	return 0, decodeErr(ErrOverflow, start, "varint exceeds 64 bits")
}

func (d *decoder) readZigzag() (int64, error) {
	u, err := d.readUvarint()
	if err != nil {
		return 0, err
	}
	return zigzagDecode(u), nil
}

func (d *decoder) readLengthPrefixed() ([]byte, error) {
	start := d.pos
	n, err := d.readUvarint()
	if err != nil {
		return nil, err
	}
	if n > uint64(len(d.data)-d.pos) {
		return nil, decodeErr(ErrInvalidBinary, start,
			"truncated input: declared length %d exceeds remaining %d", n, len(d.data)-d.pos)
	}
	return d.readN(int(n))
}

func (d *decoder) readSign() (bool, error) {
	b, err := d.readByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, decodeErr(ErrInvalidBinary, d.pos-1, "invalid sign byte 0x%02x", b)
	}
}

// readDigits reads a length-prefixed ASCII decimal digit string.
func (d *decoder) readDigits() (string, error) {
	start := d.pos
	b, err := d.readLengthPrefixed()
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", decodeErr(ErrInvalidBinary, start, "empty digit string")
	}
	for _, c := range b {
		if c < '0' || c > '9' {
			return "", decodeErr(ErrInvalidBinary, start, "invalid digit byte 0x%02x", c)
		}
	}
	return string(b), nil
}

func (d *decoder) enter(offset int) error {
	d.depth++
	if d.depth > DefaultMaxDepth {
		return decodeErr(ErrDepthExceeded, offset,
			"nesting exceeds depth limit %d", DefaultMaxDepth)
	}
	return nil
}

func (d *decoder) leave() {
	d.depth--
}
