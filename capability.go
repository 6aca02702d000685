package avro

// Type represents a primitive field type.
// Use these constants in schema documents: {"name": "text", "type": "string"}
type Type string

const (
	// TypeString is a length-prefixed UTF-8 string.
	TypeString Type = "string"

	// TypeBytes is a length-prefixed byte sequence.
	TypeBytes Type = "bytes"

	// TypeBoolean is a single byte, 0 or 1.
	TypeBoolean Type = "boolean"

	// TypeInt is a 32-bit signed integer written as a zig-zag varint.
	TypeInt Type = "int"

	// TypeLong is a 64-bit signed integer written as a zig-zag varint.
	TypeLong Type = "long"

	// TypeFloat is a 32-bit IEEE-754 float, little-endian.
	TypeFloat Type = "float"

	// TypeDouble is a 64-bit IEEE-754 float, little-endian.
	TypeDouble Type = "double"
)

// validTypes contains all field types the codec can encode.
var validTypes = map[Type]bool{
	TypeString:  true,
	TypeBytes:   true,
	TypeBoolean: true,
	TypeInt:     true,
	TypeLong:    true,
	TypeFloat:   true,
	TypeDouble:  true,
}

// IsValidType returns true if t is a field type the codec supports.
func IsValidType(t Type) bool {
	return validTypes[t]
}
