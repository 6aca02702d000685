package avro

import (
	"errors"
	"testing"
)

func TestParseError_Is(t *testing.T) {
	err := newParseError("type", "text", "unsupported type")

	if !errors.Is(err, ErrParse) {
		t.Error("ParseError should unwrap to ErrParse")
	}
	if errors.Is(err, ErrResolve) {
		t.Error("ParseError should not match ErrResolve")
	}
}

func TestParseError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "field and key",
			err:  &ParseError{Key: "type", Field: "text", Message: `unsupported type "map"`},
			want: `schema parse failed: field "text" key "type": unsupported type "map"`,
		},
		{
			name: "field only",
			err:  &ParseError{Field: "text", Message: "duplicate field name"},
			want: `schema parse failed: field "text": duplicate field name`,
		},
		{
			name: "key only",
			err:  &ParseError{Key: "/fields", Message: "minItems"},
			want: `schema parse failed: key "/fields": minItems`,
		},
		{
			name: "with cause",
			err:  &ParseError{Message: "invalid JSON document", Cause: errors.New("unexpected EOF")},
			want: "schema parse failed: invalid JSON document: unexpected EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveError_PreservesCause(t *testing.T) {
	cause := errors.New("registry offline")
	err := newResolveError(cause)

	if !errors.Is(err, ErrResolve) {
		t.Error("ResolveError should match ErrResolve")
	}
	if !errors.Is(err, cause) {
		t.Error("ResolveError should match its cause")
	}

	want := "schema resolve failed: registry offline"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestResolveError_NoCause(t *testing.T) {
	err := &ResolveError{}

	if got := err.Error(); got != "schema resolve failed" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, ErrResolve) {
		t.Error("ResolveError should match ErrResolve")
	}
}

func TestEncodeError(t *testing.T) {
	err := newEncodeError(ErrTypeMismatch, "Pojo", "text", errors.New("got int, want string"))

	if !errors.Is(err, ErrTypeMismatch) {
		t.Error("EncodeError should unwrap to ErrTypeMismatch")
	}
	if errors.Is(err, ErrMissingField) {
		t.Error("EncodeError should not match ErrMissingField")
	}

	want := "encode Pojo: type mismatch (field text): got int, want string"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	var encErr *EncodeError
	if !errors.As(err, &encErr) {
		t.Fatal("errors.As should extract *EncodeError")
	}
	if encErr.Field != "text" {
		t.Errorf("Field = %q, want %q", encErr.Field, "text")
	}
}

func TestEncodeError_NoCause(t *testing.T) {
	err := &EncodeError{Err: ErrMissingField, Schema: "Pojo", Field: "text"}

	want := "encode Pojo: missing field (field text)"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestDecodeError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "field and offset",
			err:  newDecodeError(ErrTruncated, "Pojo", "text", 1, nil),
			want: "decode Pojo: truncated input (field text, offset 1)",
		},
		{
			name: "offset only",
			err:  newDecodeError(ErrTrailingBytes, "Pojo", "", 6, errors.New("1 unread bytes")),
			want: "decode Pojo: trailing bytes (offset 6): 1 unread bytes",
		},
		{
			name: "projection",
			err:  newDecodeError(ErrProjectionFailed, "Pojo", "text", -1, errors.New("got string, want int")),
			want: "decode Pojo: projection failed (field text): got string, want int",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeError_Unwrap(t *testing.T) {
	err := &DecodeError{Err: ErrInvalidUTF8, Schema: "Pojo", Field: "text"}

	if unwrapped := err.Unwrap(); unwrapped != ErrInvalidUTF8 {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, ErrInvalidUTF8)
	}
}
