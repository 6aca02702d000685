package avro

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"
)

// Record is the structural form of a record value: field name to value.
// Field order is taken from the Schema, never from the map.
type Record map[string]any

// Marshal encodes rec with schema s.
//
// Fields are written in declaration order with no framing: strings and bytes as a
// zig-zag varint length followed by the raw bytes, int and long as zig-zag varints,
// boolean as one byte, float and double as little-endian IEEE-754.
// On failure no partial output is returned.
func Marshal(s *Schema, rec Record) ([]byte, error) {
	if s == nil {
		return nil, ErrNoSchema
	}

	buf := make([]byte, 0, encodedSizeHint(s, rec))
	for _, f := range s.fields {
		v, ok := rec[f.Name]
		if !ok {
			return nil, newEncodeError(ErrMissingField, s.FullName(), f.Name, nil)
		}

		var err error
		buf, err = appendValue(buf, f.Type, v)
		if err != nil {
			return nil, newEncodeError(ErrTypeMismatch, s.FullName(), f.Name, err)
		}
	}
	return buf, nil
}

// appendValue appends the encoding of v as type t.
func appendValue(buf []byte, t Type, v any) ([]byte, error) {
	switch t {
	case TypeString:
		sv, ok := v.(string)
		if !ok {
			return nil, kindError(t, v)
		}
		if !utf8.ValidString(sv) {
			return nil, errors.New("string is not valid UTF-8")
		}
		buf = protowire.AppendVarint(buf, protowire.EncodeZigZag(int64(len(sv))))
		return append(buf, sv...), nil

	case TypeBytes:
		bv, ok := v.([]byte)
		if !ok {
			return nil, kindError(t, v)
		}
		buf = protowire.AppendVarint(buf, protowire.EncodeZigZag(int64(len(bv))))
		return append(buf, bv...), nil

	case TypeBoolean:
		bv, ok := v.(bool)
		if !ok {
			return nil, kindError(t, v)
		}
		if bv {
			return append(buf, 1), nil
		}
		return append(buf, 0), nil

	case TypeInt:
		iv, err := toInt32(v)
		if err != nil {
			return nil, err
		}
		return protowire.AppendVarint(buf, protowire.EncodeZigZag(int64(iv))), nil

	case TypeLong:
		lv, ok := toInt64(v)
		if !ok {
			return nil, kindError(t, v)
		}
		return protowire.AppendVarint(buf, protowire.EncodeZigZag(lv)), nil

	case TypeFloat:
		fv, ok := v.(float32)
		if !ok {
			return nil, kindError(t, v)
		}
		return binary.LittleEndian.AppendUint32(buf, math.Float32bits(fv)), nil

	case TypeDouble:
		var dv float64
		switch x := v.(type) {
		case float64:
			dv = x
		case float32:
			dv = float64(x)
		default:
			return nil, kindError(t, v)
		}
		return binary.LittleEndian.AppendUint64(buf, math.Float64bits(dv)), nil
	}
	return nil, fmt.Errorf("unsupported type %q", t)
}

func kindError(t Type, v any) error {
	return fmt.Errorf("got %T, want %s", v, t)
}

func toInt32(v any) (int32, error) {
	switch x := v.(type) {
	case int32:
		return x, nil
	case int16:
		return int32(x), nil
	case int8:
		return int32(x), nil
	case int:
		if x < math.MinInt32 || x > math.MaxInt32 {
			return 0, fmt.Errorf("value %d overflows int", x)
		}
		return int32(x), nil
	}
	return 0, kindError(TypeInt, v)
}

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int16:
		return int64(x), true
	case int8:
		return int64(x), true
	}
	return 0, false
}

// encodedSizeHint returns an upper bound on the encoded size for well-typed values.
func encodedSizeHint(s *Schema, rec Record) int {
	n := 0
	for _, f := range s.fields {
		switch f.Type {
		case TypeString:
			if sv, ok := rec[f.Name].(string); ok {
				n += protowire.SizeVarint(protowire.EncodeZigZag(int64(len(sv)))) + len(sv)
			}
		case TypeBytes:
			if bv, ok := rec[f.Name].([]byte); ok {
				n += protowire.SizeVarint(protowire.EncodeZigZag(int64(len(bv)))) + len(bv)
			}
		case TypeBoolean:
			n++
		case TypeInt:
			n += 5
		case TypeLong:
			n += binary.MaxVarintLen64
		case TypeFloat:
			n += 4
		case TypeDouble:
			n += 8
		}
	}
	return n
}
