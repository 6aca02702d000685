package avro

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"
)

// Unmarshal decodes data with schema s into a Record.
//
// Every byte must be consumed: input that ends early fails with ErrTruncated and
// input that continues past the last field fails with ErrTrailingBytes.
func Unmarshal(s *Schema, data []byte) (Record, error) {
	if s == nil {
		return nil, ErrNoSchema
	}

	d := decoder{schema: s.FullName(), data: data}
	rec := make(Record, len(s.fields))
	for _, f := range s.fields {
		v, err := d.value(f)
		if err != nil {
			return nil, err
		}
		rec[f.Name] = v
	}

	if d.off != len(d.data) {
		return nil, newDecodeError(ErrTrailingBytes, d.schema, "", d.off,
			fmt.Errorf("%d unread bytes", len(d.data)-d.off))
	}
	return rec, nil
}

// decoder reads fields sequentially from a caller-owned buffer.
type decoder struct {
	schema string
	data   []byte
	off    int
}

func (d *decoder) remaining() int {
	return len(d.data) - d.off
}

func (d *decoder) fail(sentinel error, field string, cause error) error {
	return newDecodeError(sentinel, d.schema, field, d.off, cause)
}

func (d *decoder) value(f Field) (any, error) {
	switch f.Type {
	case TypeString:
		b, err := d.lengthPrefixed(f.Name)
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(b) {
			return nil, d.fail(ErrInvalidUTF8, f.Name, nil)
		}
		d.off += len(b)
		return string(b), nil

	case TypeBytes:
		b, err := d.lengthPrefixed(f.Name)
		if err != nil {
			return nil, err
		}
		d.off += len(b)
		out := make([]byte, len(b))
		copy(out, b)
		return out, nil

	case TypeBoolean:
		if d.remaining() < 1 {
			return nil, d.fail(ErrTruncated, f.Name, nil)
		}
		b := d.data[d.off]
		if b > 1 {
			return nil, d.fail(ErrMalformed, f.Name, fmt.Errorf("boolean byte 0x%02x", b))
		}
		d.off++
		return b == 1, nil

	case TypeInt:
		start := d.off
		v, err := d.varint(f.Name)
		if err != nil {
			return nil, err
		}
		if v < math.MinInt32 || v > math.MaxInt32 {
			d.off = start
			return nil, d.fail(ErrMalformed, f.Name, fmt.Errorf("value %d overflows int", v))
		}
		return int32(v), nil

	case TypeLong:
		return d.varint(f.Name)

	case TypeFloat:
		if d.remaining() < 4 {
			return nil, d.fail(ErrTruncated, f.Name, nil)
		}
		bits := binary.LittleEndian.Uint32(d.data[d.off:])
		d.off += 4
		return math.Float32frombits(bits), nil

	case TypeDouble:
		if d.remaining() < 8 {
			return nil, d.fail(ErrTruncated, f.Name, nil)
		}
		bits := binary.LittleEndian.Uint64(d.data[d.off:])
		d.off += 8
		return math.Float64frombits(bits), nil
	}
	return nil, d.fail(ErrMalformed, f.Name, fmt.Errorf("unsupported type %q", f.Type))
}

// varint reads one zig-zag varint.
func (d *decoder) varint(field string) (int64, error) {
	v, n := protowire.ConsumeVarint(d.data[d.off:])
	if n < 0 {
		if truncatedVarint(d.data[d.off:]) {
			return 0, d.fail(ErrTruncated, field, nil)
		}
		return 0, d.fail(ErrMalformed, field, protowire.ParseError(n))
	}
	d.off += n
	return protowire.DecodeZigZag(v), nil
}

// lengthPrefixed reads a length and returns the following bytes without consuming them.
func (d *decoder) lengthPrefixed(field string) ([]byte, error) {
	start := d.off
	n, err := d.varint(field)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		d.off = start
		return nil, d.fail(ErrMalformed, field, fmt.Errorf("negative length %d", n))
	}
	if n > int64(d.remaining()) {
		return nil, d.fail(ErrTruncated, field, fmt.Errorf("need %d bytes, have %d", n, d.remaining()))
	}
	return d.data[d.off : d.off+int(n)], nil
}

// truncatedVarint reports whether b is a varint cut short by the end of input,
// as opposed to one that is too long.
func truncatedVarint(b []byte) bool {
	if len(b) >= binary.MaxVarintLen64 {
		return false
	}
	for _, c := range b {
		if c < 0x80 {
			return false
		}
	}
	return true
}
