// Package avro provides a schema-aware binary record codec.
//
// A Schema is parsed once from a record document and then shared. Records are
// encoded field by field in declaration order using the Avro binary rules, with
// no framing or header, so the encoding of a record is exactly the concatenation
// of its field encodings.
//
// # Schema Documents
//
// Schemas are declared as JSON (or the equivalent YAML):
//
//	{
//	  "type": "record",
//	  "name": "Pojo",
//	  "fields": [
//	    {"name": "text", "type": "string"}
//	  ]
//	}
//
// Parsing is strict. Unknown keys, missing keys, an empty field list, duplicate
// field names and unsupported types fail with *ParseError. Supported field types
// are string, bytes, boolean, int, long, float and double.
//
// # Basic Usage
//
//	schema := avro.MustParse(doc)
//
//	data, _ := avro.Marshal(schema, avro.Record{"text": "Hello"})
//	// data == []byte{0x0A, 'H', 'e', 'l', 'l', 'o'}
//
//	rec, _ := avro.Unmarshal(schema, data)
//	// rec["text"] == "Hello"
//
// # Resolvers
//
// A SchemaResolver chooses the schema for each call from the message Envelope.
// Static always returns one schema; Registry.Resolver picks a registered schema
// by envelope header.
//
//	format, _ := avro.NewFormat(avro.Static(schema))
//	data, _ := format.Marshal(ctx, nil, avro.Record{"text": "Hello"})
//
// # Target Types
//
// A Processor decodes straight into a Go type through a Shape, an explicit list of
// field bindings. ShapeOf derives one from struct fields and `avro` tags.
//
//	type Pojo struct {
//	    Text string `avro:"text"`
//	}
//
//	shape, _ := avro.NewShape(avro.Bind("text", func(p *Pojo) *string { return &p.Text }))
//	proc, _ := avro.NewProcessor[Pojo](avro.Static(schema), shape)
//
//	data, _ := proc.Marshal(ctx, nil, &Pojo{Text: "Hello"})
//	back, _ := proc.Unmarshal(ctx, nil, data)
//
// Use caches one processor per target type and content type:
//
//	proc, _ := avro.Use[Pojo](avro.Static(schema), nil)
//
// Types implementing RecordBuilder or RecordLoader convert themselves and the
// shape is not consulted.
//
// # Errors
//
// Failures are typed and unwrap to sentinels:
//
//   - *ParseError: ErrParse
//   - *ResolveError: ErrResolve, plus the resolver's own error
//   - *EncodeError: ErrMissingField, ErrTypeMismatch
//   - *DecodeError: ErrTruncated, ErrTrailingBytes, ErrInvalidUTF8, ErrMalformed, ErrProjectionFailed
//
// # Signals
//
// Parse, Format and Processor emit capitan signals (SignalSchemaParsed,
// SignalMarshalStart, SignalMarshalComplete, ...) carrying the schema name,
// content type, payload size, duration and error.
package avro
