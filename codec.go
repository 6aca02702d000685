package avro

import (
	"context"
	"fmt"
)

// Codec provides content-type aware marshaling.
// Format.Codec and Processor.Codec adapt a data format to this interface for
// callers that work with any content type.
type Codec interface {
	// ContentType returns the MIME type for this codec (e.g., "avro/binary").
	ContentType() string

	// Marshal encodes v into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal decodes data into v.
	Unmarshal(data []byte, v any) error
}

// formatCodec adapts Format to Codec with an empty envelope.
type formatCodec struct {
	format *Format
}

// Codec returns f as a Codec. Marshal accepts Record, map[string]any or *Record;
// Unmarshal requires *Record or *map[string]any.
func (f *Format) Codec() Codec {
	return &formatCodec{format: f}
}

func (c *formatCodec) ContentType() string {
	return c.format.ContentType()
}

func (c *formatCodec) Marshal(v any) ([]byte, error) {
	var rec Record
	switch x := v.(type) {
	case Record:
		rec = x
	case map[string]any:
		rec = x
	case *Record:
		if x != nil {
			rec = *x
		}
	default:
		return nil, fmt.Errorf("%w: got %T, want avro.Record", ErrTypeMismatch, v)
	}
	return c.format.Marshal(context.Background(), nil, rec)
}

func (c *formatCodec) Unmarshal(data []byte, v any) error {
	rec, err := c.format.Unmarshal(context.Background(), nil, data)
	if err != nil {
		return err
	}
	switch x := v.(type) {
	case *Record:
		*x = rec
	case *map[string]any:
		*x = rec
	default:
		return fmt.Errorf("%w: got %T, want *avro.Record", ErrTypeMismatch, v)
	}
	return nil
}

// processorCodec adapts Processor to Codec with an empty envelope.
type processorCodec[T any] struct {
	processor *Processor[T]
}

// Codec returns p as a Codec. Marshal accepts T or *T; Unmarshal requires *T.
func (p *Processor[T]) Codec() Codec {
	return &processorCodec[T]{processor: p}
}

func (c *processorCodec[T]) ContentType() string {
	return c.processor.ContentType()
}

func (c *processorCodec[T]) Marshal(v any) ([]byte, error) {
	switch x := v.(type) {
	case *T:
		return c.processor.Marshal(context.Background(), nil, x)
	case T:
		return c.processor.Marshal(context.Background(), nil, &x)
	}
	return nil, fmt.Errorf("%w: got %T, want %s", ErrTypeMismatch, v, c.processor.shape.TypeName())
}

func (c *processorCodec[T]) Unmarshal(data []byte, v any) error {
	target, ok := v.(*T)
	if !ok || target == nil {
		return fmt.Errorf("%w: got %T, want *%s", ErrTypeMismatch, v, c.processor.shape.TypeName())
	}
	out, err := c.processor.Unmarshal(context.Background(), nil, data)
	if err != nil {
		return err
	}
	*target = *out
	return nil
}
