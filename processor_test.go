package avro_test

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/zoobzio/avro"
	avrotest "github.com/zoobzio/avro/testing"
)

var hello = []byte{0x0A, 0x48, 0x65, 0x6C, 0x6C, 0x6F}

func TestFormat_RoundTrip(t *testing.T) {
	ctx := context.Background()
	format, err := avro.NewFormat(avro.Static(avrotest.PojoSchema(t)))
	if err != nil {
		t.Fatalf("NewFormat() error: %v", err)
	}

	data, err := format.Marshal(ctx, nil, avro.Record{"text": "Hello"})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if !bytes.Equal(data, hello) {
		t.Errorf("Marshal() = % X, want % X", data, hello)
	}

	rec, err := format.Unmarshal(ctx, nil, data)
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if diff := cmp.Diff(avro.Record{"text": "Hello"}, rec); diff != "" {
		t.Errorf("Unmarshal() mismatch (-want +got):\n%s", diff)
	}
}

func TestFormat_ContentType(t *testing.T) {
	resolver := avro.Static(avrotest.PojoSchema(t))

	format, err := avro.NewFormat(resolver)
	if err != nil {
		t.Fatalf("NewFormat() error: %v", err)
	}
	if format.ContentType() != avro.ContentType {
		t.Errorf("ContentType() = %q, want %q", format.ContentType(), avro.ContentType)
	}

	custom, err := avro.NewFormat(resolver, avro.WithContentType("application/vnd.pbx.event+avro"))
	if err != nil {
		t.Fatalf("NewFormat() error: %v", err)
	}
	if custom.ContentType() != "application/vnd.pbx.event+avro" {
		t.Errorf("ContentType() = %q", custom.ContentType())
	}
}

func TestFormat_NoResolver(t *testing.T) {
	if _, err := avro.NewFormat(nil); !errors.Is(err, avro.ErrNoResolver) {
		t.Errorf("NewFormat(nil) error = %v, want ErrNoResolver", err)
	}
	if _, err := avro.NewProcessor[avrotest.Pojo](nil, nil); !errors.Is(err, avro.ErrNoResolver) {
		t.Errorf("NewProcessor(nil) error = %v, want ErrNoResolver", err)
	}
}

func TestFormat_ResolverCalledOncePerCall(t *testing.T) {
	ctx := context.Background()
	schema := avrotest.PojoSchema(t)

	var calls atomic.Int32
	var bodies []any
	resolver := func(env *avro.Envelope) (*avro.Schema, error) {
		calls.Add(1)
		bodies = append(bodies, env.Body)
		return schema, nil
	}

	format, err := avro.NewFormat(resolver)
	if err != nil {
		t.Fatalf("NewFormat() error: %v", err)
	}

	data, err := format.Marshal(ctx, nil, avro.Record{"text": "Hello"})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("resolver calls after Marshal = %d, want 1", calls.Load())
	}

	if _, err := format.Unmarshal(ctx, nil, data); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("resolver calls after Unmarshal = %d, want 2", calls.Load())
	}

	if _, ok := bodies[0].(avro.Record); !ok {
		t.Errorf("marshal envelope body = %T, want avro.Record", bodies[0])
	}
	if raw, ok := bodies[1].([]byte); !ok || !bytes.Equal(raw, hello) {
		t.Errorf("unmarshal envelope body = %v, want encoded bytes", bodies[1])
	}
}

func TestFormat_EnvelopeMetadataReachesResolver(t *testing.T) {
	ctx := context.Background()
	registry := avro.NewRegistry()
	for _, s := range []*avro.Schema{avrotest.PojoSchema(t), avrotest.EventSchema(t)} {
		if err := registry.Register(s); err != nil {
			t.Fatalf("Register() error: %v", err)
		}
	}

	format, err := avro.NewFormat(registry.Resolver(""))
	if err != nil {
		t.Fatalf("NewFormat() error: %v", err)
	}

	env := &avro.Envelope{Metadata: avro.Metadata{avro.DefaultSchemaHeader: "Pojo"}}
	data, err := format.Marshal(ctx, env, avro.Record{"text": "Hello"})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if !bytes.Equal(data, hello) {
		t.Errorf("Marshal() = % X, want % X", data, hello)
	}
	if env.Body != nil {
		t.Error("Marshal() should not modify the caller's envelope")
	}

	_, err = format.Marshal(ctx, nil, avro.Record{"text": "Hello"})
	if !errors.Is(err, avro.ErrResolve) {
		t.Errorf("Marshal() without header error = %v, want ErrResolve", err)
	}
}

func TestFormat_ResolveFailure(t *testing.T) {
	ctx := context.Background()
	cause := errors.New("schema store unavailable")
	format, err := avro.NewFormat(func(*avro.Envelope) (*avro.Schema, error) { return nil, cause })
	if err != nil {
		t.Fatalf("NewFormat() error: %v", err)
	}

	if _, err := format.Marshal(ctx, nil, avro.Record{"text": "x"}); !errors.Is(err, cause) || !errors.Is(err, avro.ErrResolve) {
		t.Errorf("Marshal() error = %v, want ErrResolve wrapping cause", err)
	}
	if _, err := format.Unmarshal(ctx, nil, hello); !errors.Is(err, cause) || !errors.Is(err, avro.ErrResolve) {
		t.Errorf("Unmarshal() error = %v, want ErrResolve wrapping cause", err)
	}
}

func TestProcessor_Projection(t *testing.T) {
	ctx := context.Background()
	proc := avrotest.PojoProcessor(t)

	data, err := proc.Marshal(ctx, nil, &avrotest.Pojo{Text: "Hello"})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if !bytes.Equal(data, hello) {
		t.Errorf("Marshal() = % X, want % X", data, hello)
	}

	got, err := proc.Unmarshal(ctx, nil, data)
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if got.Text != "Hello" {
		t.Errorf("Text = %q, want Hello", got.Text)
	}
}

func TestProcessor_DerivedShape(t *testing.T) {
	ctx := context.Background()
	proc, err := avro.NewProcessor[avrotest.Event](avro.Static(avrotest.EventSchema(t)), nil)
	if err != nil {
		t.Fatalf("NewProcessor() error: %v", err)
	}

	in := &avrotest.Event{
		ID:       42,
		Channel:  "SIP/100",
		Priority: 2,
		Answered: true,
		Score:    0.5,
		Duration: 31.25,
		Payload:  []byte{0x01, 0x02},
		Note:     "dropped",
	}
	data, err := proc.Marshal(ctx, nil, in)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	got, err := proc.Unmarshal(ctx, nil, data)
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}

	want := *in
	want.Note = ""
	if diff := cmp.Diff(&want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessor_Errors(t *testing.T) {
	ctx := context.Background()
	proc := avrotest.PojoProcessor(t)

	if _, err := proc.Unmarshal(ctx, nil, []byte{0x0A, 0x48, 0x65}); !errors.Is(err, avro.ErrTruncated) {
		t.Errorf("Unmarshal(truncated) error = %v, want ErrTruncated", err)
	}
	if _, err := proc.Unmarshal(ctx, nil, append(append([]byte{}, hello...), 0x00)); !errors.Is(err, avro.ErrTrailingBytes) {
		t.Errorf("Unmarshal(trailing) error = %v, want ErrTrailingBytes", err)
	}
	if _, err := proc.Marshal(ctx, nil, nil); !errors.Is(err, avro.ErrMissingField) {
		t.Errorf("Marshal(nil) error = %v, want ErrMissingField", err)
	}
}

func TestProcessor_Shape(t *testing.T) {
	proc := avrotest.PojoProcessor(t)

	if diff := cmp.Diff([]string{"text"}, proc.Shape().Names()); diff != "" {
		t.Errorf("Shape().Names() mismatch (-want +got):\n%s", diff)
	}
	if proc.ContentType() != avro.ContentType {
		t.Errorf("ContentType() = %q", proc.ContentType())
	}
}

func TestFormat_Codec(t *testing.T) {
	format, err := avro.NewFormat(avro.Static(avrotest.PojoSchema(t)))
	if err != nil {
		t.Fatalf("NewFormat() error: %v", err)
	}
	codec := format.Codec()

	if codec.ContentType() != avro.ContentType {
		t.Errorf("ContentType() = %q", codec.ContentType())
	}

	for _, v := range []any{avro.Record{"text": "Hello"}, map[string]any{"text": "Hello"}, &avro.Record{"text": "Hello"}} {
		data, err := codec.Marshal(v)
		if err != nil {
			t.Fatalf("Marshal(%T) error: %v", v, err)
		}
		if !bytes.Equal(data, hello) {
			t.Errorf("Marshal(%T) = % X", v, data)
		}
	}

	var rec avro.Record
	if err := codec.Unmarshal(hello, &rec); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if rec["text"] != "Hello" {
		t.Errorf("Unmarshal() = %v", rec)
	}

	if _, err := codec.Marshal("Hello"); !errors.Is(err, avro.ErrTypeMismatch) {
		t.Errorf("Marshal(string) error = %v, want ErrTypeMismatch", err)
	}
	var s string
	if err := codec.Unmarshal(hello, &s); !errors.Is(err, avro.ErrTypeMismatch) {
		t.Errorf("Unmarshal(*string) error = %v, want ErrTypeMismatch", err)
	}
}

func TestProcessor_Codec(t *testing.T) {
	codec := avrotest.PojoProcessor(t).Codec()

	for _, v := range []any{avrotest.Pojo{Text: "Hello"}, &avrotest.Pojo{Text: "Hello"}} {
		data, err := codec.Marshal(v)
		if err != nil {
			t.Fatalf("Marshal(%T) error: %v", v, err)
		}
		if !bytes.Equal(data, hello) {
			t.Errorf("Marshal(%T) = % X", v, data)
		}
	}

	var got avrotest.Pojo
	if err := codec.Unmarshal(hello, &got); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if got.Text != "Hello" {
		t.Errorf("Text = %q, want Hello", got.Text)
	}

	if _, err := codec.Marshal(42); !errors.Is(err, avro.ErrTypeMismatch) {
		t.Errorf("Marshal(int) error = %v, want ErrTypeMismatch", err)
	}
	if err := codec.Unmarshal(hello, (*avrotest.Pojo)(nil)); !errors.Is(err, avro.ErrTypeMismatch) {
		t.Errorf("Unmarshal(nil) error = %v, want ErrTypeMismatch", err)
	}
}

func TestProcessor_Signals(t *testing.T) {
	ctx := context.Background()
	c := avrotest.NewCapitan(t)

	created := avrotest.Record(c, avro.SignalFormatCreated)
	marshaled := avrotest.Record(c, avro.SignalMarshalComplete)
	unmarshalStart := avrotest.Record(c, avro.SignalUnmarshalStart)
	unmarshaled := avrotest.Record(c, avro.SignalUnmarshalComplete)

	proc := avrotest.PojoProcessor(t, avro.WithCapitan(c))

	data, err := proc.Marshal(ctx, nil, &avrotest.Pojo{Text: "Hello"})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if _, err := proc.Unmarshal(ctx, nil, data); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	_, failure := proc.Unmarshal(ctx, nil, data[:3])

	if created.Len() != 1 {
		t.Errorf("created events = %d, want 1", created.Len())
	}

	if diff := cmp.Diff([]avrotest.Observed{
		{Schema: "Pojo", ContentType: avro.ContentType, Size: 6},
	}, marshaled.Events()); diff != "" {
		t.Errorf("marshal events mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]avrotest.Observed{
		{ContentType: avro.ContentType, Size: 6},
		{ContentType: avro.ContentType, Size: 3},
	}, unmarshalStart.Events()); diff != "" {
		t.Errorf("unmarshal start events mismatch (-want +got):\n%s", diff)
	}

	events := unmarshaled.Events()
	if len(events) != 2 {
		t.Fatalf("unmarshal events = %d, want 2", len(events))
	}
	if events[0].Err != nil {
		t.Errorf("first unmarshal error = %v, want nil", events[0].Err)
	}
	if !errors.Is(events[1].Err, avro.ErrTruncated) || events[1].Err.Error() != failure.Error() {
		t.Errorf("second unmarshal error = %v, want %v", events[1].Err, failure)
	}
}

// generatedPojo carries hand-written conversions in place of a shape.
type generatedPojo struct {
	Body  string
	loads int
}

func (g *generatedPojo) AvroRecord() (avro.Record, error) {
	if g.Body == "" {
		return nil, errors.New("body required")
	}
	return avro.Record{"text": g.Body}, nil
}

func (g *generatedPojo) LoadAvroRecord(rec avro.Record) error {
	text, ok := rec["text"].(string)
	if !ok {
		return errors.New("text missing")
	}
	g.Body = text
	g.loads++
	return nil
}

func TestProcessor_Overrides(t *testing.T) {
	ctx := context.Background()

	// No binding matches "text", so only the override methods can move the value.
	shape, err := avro.NewShape[generatedPojo]()
	if err != nil {
		t.Fatalf("NewShape() error: %v", err)
	}
	proc, err := avro.NewProcessor(avro.Static(avrotest.PojoSchema(t)), shape)
	if err != nil {
		t.Fatalf("NewProcessor() error: %v", err)
	}

	data, err := proc.Marshal(ctx, nil, &generatedPojo{Body: "Hello"})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if !bytes.Equal(data, hello) {
		t.Errorf("Marshal() = % X, want % X", data, hello)
	}

	got, err := proc.Unmarshal(ctx, nil, data)
	if err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if got.Body != "Hello" || got.loads != 1 {
		t.Errorf("Unmarshal() = %+v", got)
	}

	if _, err := proc.Marshal(ctx, nil, &generatedPojo{}); !errors.Is(err, avro.ErrTypeMismatch) {
		t.Errorf("Marshal(empty) error = %v, want ErrTypeMismatch", err)
	}
}

func TestUse(t *testing.T) {
	avro.Reset()
	t.Cleanup(avro.Reset)

	resolver := avro.Static(avrotest.PojoSchema(t))
	first, err := avro.Use(resolver, avrotest.PojoShape(t))
	if err != nil {
		t.Fatalf("Use() error: %v", err)
	}
	second, err := avro.Use[avrotest.Pojo](resolver, nil)
	if err != nil {
		t.Fatalf("Use() error: %v", err)
	}
	if first != second {
		t.Error("Use() should return the cached processor")
	}

	other, err := avro.Use[avrotest.Pojo](resolver, nil, avro.WithContentType("application/x-pojo"))
	if err != nil {
		t.Fatalf("Use() error: %v", err)
	}
	if other == first {
		t.Error("Use() should cache per content type")
	}

	avro.Reset()
	again, err := avro.Use[avrotest.Pojo](resolver, nil)
	if err != nil {
		t.Fatalf("Use() error: %v", err)
	}
	if again == first {
		t.Error("Reset() should clear the processor cache")
	}

	if _, err := avro.Use[avrotest.Event](nil, nil); !errors.Is(err, avro.ErrNoResolver) {
		t.Errorf("Use(nil) error = %v, want ErrNoResolver", err)
	}
}
