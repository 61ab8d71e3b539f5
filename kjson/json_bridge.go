package kjson

import (
	"encoding/base64"
	"fmt"
	"io"
	"math"

	jsoniter "github.com/json-iterator/go"

	"github.com/google/uuid"
)

// ============================================================
// Plain-JSON Bridge
// ============================================================
//
// Converts between plain JSON and Values. Two modes:
//   - Strict (default): extended types become strings, fully JSON
//     compatible but lossy on the way back
//   - Extended: uses $kjson marker objects for lossless round-trip
//
// Reading uses the jsoniter iterator and writing uses its stream so that
// object member order survives the bridge in both directions.

var jsonConfig = jsoniter.ConfigCompatibleWithStandardLibrary

// BridgeOpts configures JSON bridge behavior.
type BridgeOpts struct {
	// Extended enables $kjson markers for lossless round-trip of the types
	// plain JSON cannot express. When false (default), those types are
	// converted to plain strings.
	Extended bool
}

// DefaultBridgeOpts returns the default (strict/JSON-compatible) options.
func DefaultBridgeOpts() BridgeOpts {
	return BridgeOpts{Extended: false}
}

// ============================================================
// JSON to Value
// ============================================================

// FromJSON converts JSON bytes to a Value using strict mode.
func FromJSON(data []byte) (*Value, error) {
	return FromJSONWithOpts(data, DefaultBridgeOpts())
}

// FromJSONWithOpts converts JSON bytes to a Value with options.
func FromJSONWithOpts(data []byte, opts BridgeOpts) (*Value, error) {
	if !jsonConfig.Valid(data) {
		return nil, fmt.Errorf("kjson: invalid JSON input")
	}
	iter := jsoniter.ParseBytes(jsonConfig, data)
	v, err := readJSONValue(iter, opts)
	if err != nil {
		return nil, err
	}
	if iter.Error != nil && iter.Error != io.EOF {
		return nil, fmt.Errorf("kjson: JSON parse error: %w", iter.Error)
	}
	return v, nil
}

func readJSONValue(iter *jsoniter.Iterator, opts BridgeOpts) (*Value, error) {
	switch iter.WhatIsNext() {
	case jsoniter.NilValue:
		iter.ReadNil()
		return Null(), nil

	case jsoniter.BoolValue:
		return Bool(iter.ReadBool()), nil

	case jsoniter.NumberValue:
		return Number(iter.ReadFloat64()), nil

	case jsoniter.StringValue:
		return Str(iter.ReadString()), nil

	case jsoniter.ArrayValue:
		arr := Arr()
		for iter.ReadArray() {
			elem, err := readJSONValue(iter, opts)
			if err != nil {
				return nil, err
			}
			arr.arrVal = append(arr.arrVal, elem)
		}
		return arr, nil

	case jsoniter.ObjectValue:
		obj := Obj()
		for field := iter.ReadObject(); field != ""; field = iter.ReadObject() {
			member, err := readJSONValue(iter, opts)
			if err != nil {
				return nil, err
			}
			if err := obj.Set(field, member); err != nil {
				return nil, err
			}
		}
		if opts.Extended {
			if marker := obj.Get("$kjson"); marker != nil && marker.Kind() == KindString {
				return fromKjsonMarker(marker.strVal, obj)
			}
		}
		return obj, nil

	default:
		if iter.Error != nil && iter.Error != io.EOF {
			return nil, fmt.Errorf("kjson: JSON parse error: %w", iter.Error)
		}
		return nil, fmt.Errorf("kjson: invalid JSON input")
	}
}

func fromKjsonMarker(markerType string, obj *Value) (*Value, error) {
	stringField := func(name string) (string, error) {
		field := obj.Get(name)
		if field == nil || field.Kind() != KindString {
			return "", fmt.Errorf("kjson: $kjson %s marker missing %s", markerType, name)
		}
		return field.strVal, nil
	}

	switch markerType {
	case "bigint":
		value, err := stringField("value")
		if err != nil {
			return nil, err
		}
		b, err := ParseBigInt(value)
		if err != nil {
			return nil, err
		}
		return BigIntVal(b), nil

	case "decimal":
		value, err := stringField("value")
		if err != nil {
			return nil, err
		}
		d, err := ParseDecimal(value)
		if err != nil {
			return nil, err
		}
		return DecimalVal(d), nil

	case "uuid":
		value, err := stringField("value")
		if err != nil {
			return nil, err
		}
		u, err := uuid.Parse(value)
		if err != nil {
			return nil, fmt.Errorf("kjson: invalid uuid in marker: %w", err)
		}
		return UUIDVal(u), nil

	case "instant":
		value, err := stringField("value")
		if err != nil {
			return nil, err
		}
		nanos, err := parseInstantText(value)
		if err != nil {
			return nil, err
		}
		return InstantFromNanos(nanos), nil

	case "duration":
		value, err := stringField("value")
		if err != nil {
			return nil, err
		}
		nanos, err := parseDurationText(value)
		if err != nil {
			return nil, err
		}
		return DurationFromNanos(nanos), nil

	case "bytes":
		b64, err := stringField("base64")
		if err != nil {
			return nil, err
		}
		data, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil, fmt.Errorf("kjson: invalid base64 in marker: %w", err)
		}
		return Bin(data), nil

	case "undefined":
		return Undefined(), nil

	default:
		return nil, fmt.Errorf("kjson: unknown $kjson marker type: %s", markerType)
	}
}

// ============================================================
// Value to JSON
// ============================================================

// ToJSON converts a Value to JSON bytes using strict mode.
func ToJSON(v *Value) ([]byte, error) {
	return ToJSONWithOpts(v, DefaultBridgeOpts())
}

// ToJSONWithOpts converts a Value to JSON bytes with options.
func ToJSONWithOpts(v *Value, opts BridgeOpts) ([]byte, error) {
	stream := jsonConfig.BorrowStream(nil)
	defer jsonConfig.ReturnStream(stream)

	if err := writeJSONValue(stream, v, opts); err != nil {
		return nil, err
	}
	if stream.Error != nil {
		return nil, fmt.Errorf("kjson: JSON write error: %w", stream.Error)
	}

	out := make([]byte, len(stream.Buffer()))
	copy(out, stream.Buffer())
	return out, nil
}

func writeJSONValue(stream *jsoniter.Stream, v *Value, opts BridgeOpts) error {
	if v == nil {
		stream.WriteNil()
		return nil
	}

	switch v.kind {
	case KindNull:
		stream.WriteNil()

	case KindUndefined:
		if opts.Extended {
			writeMarker(stream, "undefined")
		} else {
			stream.WriteNil()
		}

	case KindBool:
		stream.WriteBool(v.boolVal)

	case KindNumber:
		if math.IsNaN(v.numVal) || math.IsInf(v.numVal, 0) {
			return fmt.Errorf("kjson: NaN/Infinity not representable in JSON")
		}
		stream.WriteFloat64(v.numVal)

	case KindBigInt:
		b := BigInt{Neg: v.neg, Digits: v.strVal}
		if opts.Extended {
			writeMarker(stream, "bigint", "value", b.String())
		} else {
			stream.WriteString(b.String())
		}

	case KindDecimal128:
		d := Decimal128{Neg: v.neg, Digits: v.strVal, Exponent: v.expVal}
		if opts.Extended {
			writeMarker(stream, "decimal", "value", d.String())
		} else {
			stream.WriteString(d.String())
		}

	case KindString:
		stream.WriteString(v.strVal)

	case KindBinary:
		b64 := base64.StdEncoding.EncodeToString(v.bytesVal)
		if opts.Extended {
			writeMarker(stream, "bytes", "base64", b64)
		} else {
			stream.WriteString(b64)
		}

	case KindUUID:
		if opts.Extended {
			writeMarker(stream, "uuid", "value", v.uuidVal.String())
		} else {
			stream.WriteString(v.uuidVal.String())
		}

	case KindInstant:
		if opts.Extended {
			writeMarker(stream, "instant", "value", formatInstant(v.nanoVal))
		} else {
			stream.WriteString(formatInstant(v.nanoVal))
		}

	case KindDuration:
		if opts.Extended {
			writeMarker(stream, "duration", "value", formatDuration(v.nanoVal))
		} else {
			stream.WriteString(formatDuration(v.nanoVal))
		}

	case KindArray:
		stream.WriteArrayStart()
		for i, elem := range v.arrVal {
			if i > 0 {
				stream.WriteMore()
			}
			if err := writeJSONValue(stream, elem, opts); err != nil {
				return err
			}
		}
		stream.WriteArrayEnd()

	case KindObject:
		stream.WriteObjectStart()
		for i, m := range v.objVal {
			if i > 0 {
				stream.WriteMore()
			}
			stream.WriteObjectField(m.Key)
			if err := writeJSONValue(stream, m.Value, opts); err != nil {
				return err
			}
		}
		stream.WriteObjectEnd()

	default:
		return fmt.Errorf("kjson: unsupported kind %s", v.kind)
	}
	return nil
}

// writeMarker emits a $kjson marker object with an optional payload field.
func writeMarker(stream *jsoniter.Stream, markerType string, fields ...string) {
	stream.WriteObjectStart()
	stream.WriteObjectField("$kjson")
	stream.WriteString(markerType)
	for i := 0; i+1 < len(fields); i += 2 {
		stream.WriteMore()
		stream.WriteObjectField(fields[i])
		stream.WriteString(fields[i+1])
	}
	stream.WriteObjectEnd()
}
