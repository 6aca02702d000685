package avro

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrParse indicates a schema document is malformed or violates the schema rules.
	ErrParse = errors.New("schema parse failed")

	// ErrResolve indicates the schema resolver failed or returned no schema.
	ErrResolve = errors.New("schema resolve failed")

	// ErrNoSchema indicates a nil schema, including one returned by a resolver.
	ErrNoSchema = errors.New("no schema")

	// ErrNoResolver indicates a data format was built without a resolver.
	ErrNoResolver = errors.New("no schema resolver")

	// ErrMissingField indicates a record has no value for a schema field.
	ErrMissingField = errors.New("missing field")

	// ErrTypeMismatch indicates a record value does not match its declared field type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrTruncated indicates the input ended before every field was decoded.
	ErrTruncated = errors.New("truncated input")

	// ErrTrailingBytes indicates bytes remained after every field was decoded.
	ErrTrailingBytes = errors.New("trailing bytes")

	// ErrInvalidUTF8 indicates a decoded string field is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("invalid utf-8")

	// ErrMalformed indicates an encoded value breaks the binary encoding rules
	// (negative length, overlong varint, out-of-range int, bad boolean byte).
	ErrMalformed = errors.New("malformed input")

	// ErrInvalidShape indicates a target shape is misconfigured.
	ErrInvalidShape = errors.New("invalid shape")

	// ErrProjectionFailed indicates a decoded record could not be assigned to the target type.
	ErrProjectionFailed = errors.New("projection failed")
)

// ParseError represents a schema document that could not be parsed.
// Key names the offending document key; Field names the offending field, if any.
type ParseError struct {
	Key     string
	Field   string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	switch {
	case e.Field != "" && e.Key != "":
		return fmt.Sprintf("%s: field %q key %q: %s", ErrParse.Error(), e.Field, e.Key, msg)
	case e.Field != "":
		return fmt.Sprintf("%s: field %q: %s", ErrParse.Error(), e.Field, msg)
	case e.Key != "":
		return fmt.Sprintf("%s: key %q: %s", ErrParse.Error(), e.Key, msg)
	}
	return fmt.Sprintf("%s: %s", ErrParse.Error(), msg)
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

// ResolveError represents a resolver failure.
// Both ErrResolve and the resolver's own error match with errors.Is.
type ResolveError struct {
	Cause error
}

func (e *ResolveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", ErrResolve.Error(), e.Cause)
	}
	return ErrResolve.Error()
}

func (e *ResolveError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrResolve}
	}
	return []error{ErrResolve, e.Cause}
}

// EncodeError represents a failure to encode a record.
type EncodeError struct {
	Err    error  // ErrMissingField or ErrTypeMismatch
	Schema string // Full name of the schema being encoded
	Field  string // Field that failed
	Cause  error  // Optional detail
}

func (e *EncodeError) Error() string {
	if e.Field == "" && e.Cause != nil {
		return fmt.Sprintf("encode %s: %s: %v", e.Schema, e.Err.Error(), e.Cause)
	}
	if e.Cause != nil {
		return fmt.Sprintf("encode %s: %s (field %s): %v", e.Schema, e.Err.Error(), e.Field, e.Cause)
	}
	return fmt.Sprintf("encode %s: %s (field %s)", e.Schema, e.Err.Error(), e.Field)
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// DecodeError represents a failure to decode or project a record.
type DecodeError struct {
	Err    error  // ErrTruncated, ErrTrailingBytes, ErrInvalidUTF8, ErrMalformed or ErrProjectionFailed
	Schema string // Full name of the schema being decoded
	Field  string // Field being decoded, empty for trailing bytes
	Offset int    // Byte offset where decoding stopped, -1 for projection failures
	Cause  error  // Optional detail
}

func (e *DecodeError) Error() string {
	var where string
	switch {
	case e.Offset < 0 && e.Field == "":
		where = "target"
	case e.Offset < 0:
		where = "field " + e.Field
	case e.Field != "":
		where = fmt.Sprintf("field %s, offset %d", e.Field, e.Offset)
	default:
		where = fmt.Sprintf("offset %d", e.Offset)
	}
	if e.Cause != nil {
		return fmt.Sprintf("decode %s: %s (%s): %v", e.Schema, e.Err.Error(), where, e.Cause)
	}
	return fmt.Sprintf("decode %s: %s (%s)", e.Schema, e.Err.Error(), where)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// newParseError creates a ParseError for a document key or field.
func newParseError(key, field, message string) error {
	return &ParseError{Key: key, Field: field, Message: message}
}

// newResolveError creates a ResolveError preserving the resolver's cause.
func newResolveError(cause error) error {
	return &ResolveError{Cause: cause}
}

// newEncodeError creates an EncodeError for a field.
func newEncodeError(sentinel error, schema, field string, cause error) error {
	return &EncodeError{
		Err:    sentinel,
		Schema: schema,
		Field:  field,
		Cause:  cause,
	}
}

// newDecodeError creates a DecodeError positioned at offset.
func newDecodeError(sentinel error, schema, field string, offset int, cause error) error {
	return &DecodeError{
		Err:    sentinel,
		Schema: schema,
		Field:  field,
		Offset: offset,
		Cause:  cause,
	}
}
