package avro

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// ContentType is the default MIME type reported by Format and Processor.
const ContentType = "avro/binary"

// recordTypeName is reported in signals for untyped formats.
const recordTypeName = "avro.Record"

// config holds options shared by Format and Processor.
type config struct {
	contentType string
	capitan     *capitan.Capitan
}

// Option configures a Format or Processor.
type Option func(*config)

// WithContentType overrides the reported content type.
func WithContentType(contentType string) Option {
	return func(c *config) {
		c.contentType = contentType
	}
}

// WithCapitan routes signals to a dedicated capitan instance instead of the default.
func WithCapitan(c *capitan.Capitan) Option {
	return func(cfg *config) {
		cfg.capitan = c
	}
}

func newConfig(opts []Option) config {
	cfg := config{contentType: ContentType}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Format marshals and unmarshals structural Records, choosing the schema for
// each call with its resolver. Formats are safe for concurrent use.
type Format struct {
	resolver SchemaResolver
	cfg      config
}

// NewFormat creates a Format. The resolver is required.
func NewFormat(resolver SchemaResolver, opts ...Option) (*Format, error) {
	if resolver == nil {
		return nil, ErrNoResolver
	}
	f := &Format{resolver: resolver, cfg: newConfig(opts)}
	emitFormatCreated(context.Background(), f.cfg.capitan, f.cfg.contentType, recordTypeName)
	return f, nil
}

// ContentType returns the MIME type for this format.
func (f *Format) ContentType() string {
	return f.cfg.contentType
}

// Marshal resolves the schema for env and encodes rec with it.
// env may be nil; its Body is set to rec for the resolver.
func (f *Format) Marshal(ctx context.Context, env *Envelope, rec Record) ([]byte, error) {
	return f.marshal(ctx, env, rec, recordTypeName, func(*Schema) (Record, error) { return rec, nil })
}

// Unmarshal resolves the schema for env and decodes data with it.
// env may be nil; its Body is set to data for the resolver.
func (f *Format) Unmarshal(ctx context.Context, env *Envelope, data []byte) (Record, error) {
	var out Record
	err := f.unmarshal(ctx, env, data, recordTypeName, func(_ *Schema, rec Record) error {
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// marshal runs one resolve-then-encode call with signals around it.
func (f *Format) marshal(ctx context.Context, env *Envelope, body any, typeName string, build func(*Schema) (Record, error)) (data []byte, err error) {
	start := time.Now()
	emitMarshalStart(ctx, f.cfg.capitan, f.cfg.contentType, typeName)

	var schemaName string
	defer func() {
		emitMarshalComplete(ctx, f.cfg.capitan, f.cfg.contentType, typeName,
			schemaName, len(data), time.Since(start), err)
	}()

	s, err := resolve(f.resolver, envelopeFor(env, body))
	if err != nil {
		return nil, err
	}
	schemaName = s.FullName()

	rec, err := build(s)
	if err != nil {
		return nil, err
	}
	return Marshal(s, rec)
}

// unmarshal runs one resolve-then-decode call with signals around it.
// accept receives the decoded record; its error fails the call.
func (f *Format) unmarshal(ctx context.Context, env *Envelope, data []byte, typeName string, accept func(*Schema, Record) error) (err error) {
	start := time.Now()
	emitUnmarshalStart(ctx, f.cfg.capitan, f.cfg.contentType, typeName, len(data))

	var schemaName string
	defer func() {
		emitUnmarshalComplete(ctx, f.cfg.capitan, f.cfg.contentType, typeName,
			schemaName, time.Since(start), err)
	}()

	s, err := resolve(f.resolver, envelopeFor(env, data))
	if err != nil {
		return err
	}
	schemaName = s.FullName()

	rec, err := Unmarshal(s, data)
	if err != nil {
		return err
	}
	return accept(s, rec)
}

// envelopeFor copies env with body attached, leaving the caller's envelope untouched.
func envelopeFor(env *Envelope, body any) *Envelope {
	out := &Envelope{Body: body}
	if env != nil {
		out.Metadata = env.Metadata
	}
	return out
}

// Processor marshals values of T and unmarshals into new values of T, using a
// Shape to move between T and the structural Record.
// Processors are safe for concurrent use.
type Processor[T any] struct {
	format *Format
	shape  *Shape[T]
}

// NewProcessor creates a Processor for T. A nil shape is derived with ShapeOf[T].
func NewProcessor[T any](resolver SchemaResolver, shape *Shape[T], opts ...Option) (*Processor[T], error) {
	if resolver == nil {
		return nil, ErrNoResolver
	}
	if shape == nil {
		derived, err := ShapeOf[T]()
		if err != nil {
			return nil, err
		}
		shape = derived
	}

	p := &Processor[T]{
		format: &Format{resolver: resolver, cfg: newConfig(opts)},
		shape:  shape,
	}
	emitFormatCreated(context.Background(), p.format.cfg.capitan, p.format.cfg.contentType, shape.TypeName())
	return p, nil
}

// ContentType returns the MIME type for this processor.
func (p *Processor[T]) ContentType() string {
	return p.format.cfg.contentType
}

// Shape returns the processor's target shape.
func (p *Processor[T]) Shape() *Shape[T] {
	return p.shape
}

// Marshal resolves the schema for env and encodes v with it.
// A v implementing RecordBuilder supplies its own record.
func (p *Processor[T]) Marshal(ctx context.Context, env *Envelope, v *T) ([]byte, error) {
	return p.format.marshal(ctx, env, v, p.shape.TypeName(), func(s *Schema) (Record, error) {
		if b, ok := any(v).(RecordBuilder); ok && v != nil {
			rec, err := b.AvroRecord()
			if err != nil {
				return nil, newEncodeError(ErrTypeMismatch, s.FullName(), "", err)
			}
			return rec, nil
		}
		return Extract(s, p.shape, v)
	})
}

// Unmarshal resolves the schema for env, decodes data and projects it into a new T.
// A *T implementing RecordLoader loads itself instead of using the shape.
func (p *Processor[T]) Unmarshal(ctx context.Context, env *Envelope, data []byte) (*T, error) {
	var out *T
	err := p.format.unmarshal(ctx, env, data, p.shape.TypeName(), func(s *Schema, rec Record) error {
		target := new(T)
		if l, ok := any(target).(RecordLoader); ok {
			if err := l.LoadAvroRecord(rec); err != nil {
				return newDecodeError(ErrProjectionFailed, s.FullName(), "", -1, err)
			}
			out = target
			return nil
		}
		projected, err := Project(s, p.shape, rec)
		if err != nil {
			return err
		}
		out = projected
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
