package avro

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for codec events.
var (
	SignalSchemaParsed      = capitan.NewSignal("avro.schema.parsed", "Schema document parsed")
	SignalFormatCreated     = capitan.NewSignal("avro.format.created", "Data format instantiated")
	SignalMarshalStart      = capitan.NewSignal("avro.marshal.start", "Marshal operation beginning")
	SignalMarshalComplete   = capitan.NewSignal("avro.marshal.complete", "Marshal operation finished")
	SignalUnmarshalStart    = capitan.NewSignal("avro.unmarshal.start", "Unmarshal operation beginning")
	SignalUnmarshalComplete = capitan.NewSignal("avro.unmarshal.complete", "Unmarshal operation finished")
)

// Keys for typed event data.
var (
	KeySchema      = capitan.NewStringKey("schema")
	KeyContentType = capitan.NewStringKey("content_type")
	KeyTypeName    = capitan.NewStringKey("type_name")
	KeySize        = capitan.NewIntKey("size")
	KeyFieldCount  = capitan.NewIntKey("field_count")
	KeyDuration    = capitan.NewDurationKey("duration")
	KeyError       = capitan.NewErrorKey("error")
)

// emit sends to a dedicated instance when one is configured, else to the default.
func emit(ctx context.Context, c *capitan.Capitan, signal capitan.Signal, fields ...capitan.Field) {
	if c != nil {
		c.Emit(ctx, signal, fields...)
		return
	}
	capitan.Emit(ctx, signal, fields...)
}

// emitFailure is emit at error severity.
func emitFailure(ctx context.Context, c *capitan.Capitan, signal capitan.Signal, fields ...capitan.Field) {
	if c != nil {
		c.Error(ctx, signal, fields...)
		return
	}
	capitan.Error(ctx, signal, fields...)
}

// emitSchemaParsed emits an event when a schema document is parsed.
func emitSchemaParsed(ctx context.Context, schema string, fieldCount int) {
	capitan.Emit(ctx, SignalSchemaParsed,
		KeySchema.Field(schema),
		KeyFieldCount.Field(fieldCount),
	)
}

// emitFormatCreated emits an event when a Format or Processor is created.
func emitFormatCreated(ctx context.Context, c *capitan.Capitan, contentType, typeName string) {
	emit(ctx, c, SignalFormatCreated,
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
	)
}

// emitMarshalStart emits an event when marshal begins.
func emitMarshalStart(ctx context.Context, c *capitan.Capitan, contentType, typeName string) {
	emit(ctx, c, SignalMarshalStart,
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
	)
}

// emitMarshalComplete emits an event when marshal finishes.
func emitMarshalComplete(ctx context.Context, c *capitan.Capitan, contentType, typeName, schema string, size int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
		KeySchema.Field(schema),
		KeySize.Field(size),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		emitFailure(ctx, c, SignalMarshalComplete, fields...)
	} else {
		emit(ctx, c, SignalMarshalComplete, fields...)
	}
}

// emitUnmarshalStart emits an event when unmarshal begins.
func emitUnmarshalStart(ctx context.Context, c *capitan.Capitan, contentType, typeName string, size int) {
	emit(ctx, c, SignalUnmarshalStart,
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
		KeySize.Field(size),
	)
}

// emitUnmarshalComplete emits an event when unmarshal finishes.
func emitUnmarshalComplete(ctx context.Context, c *capitan.Capitan, contentType, typeName, schema string, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
		KeySchema.Field(schema),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		emitFailure(ctx, c, SignalUnmarshalComplete, fields...)
	} else {
		emit(ctx, c, SignalUnmarshalComplete, fields...)
	}
}
