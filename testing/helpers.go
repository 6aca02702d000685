// Package testing provides test fixtures and helpers for avro users.
package testing

import (
	"context"
	"sync"
	"testing"

	"github.com/zoobzio/avro"
	"github.com/zoobzio/capitan"
)

// PojoSchemaJSON declares a record with a single string field.
const PojoSchemaJSON = `{
  "type": "record",
  "name": "Pojo",
  "fields": [
    {"name": "text", "type": "string"}
  ]
}`

// EventSchemaJSON declares a record covering every supported field type.
const EventSchemaJSON = `{
  "type": "record",
  "name": "Event",
  "namespace": "com.example.pbx",
  "doc": "A telephony event as delivered on a route",
  "fields": [
    {"name": "id", "type": "long"},
    {"name": "channel", "type": "string"},
    {"name": "priority", "type": "int"},
    {"name": "answered", "type": "boolean"},
    {"name": "score", "type": "float"},
    {"name": "duration", "type": "double"},
    {"name": "payload", "type": "bytes"}
  ]
}`

// Pojo is the target type for PojoSchemaJSON.
type Pojo struct {
	Text string `avro:"text"`
}

// Event is the target type for EventSchemaJSON.
type Event struct {
	ID       int64 `avro:"id"`
	Channel  string
	Priority int32
	Answered bool
	Score    float32
	Duration float64
	Payload  []byte
	Note     string `avro:"-"`
}

// PojoSchema parses PojoSchemaJSON.
func PojoSchema(tb testing.TB) *avro.Schema {
	tb.Helper()
	return mustParse(tb, PojoSchemaJSON)
}

// EventSchema parses EventSchemaJSON.
func EventSchema(tb testing.TB) *avro.Schema {
	tb.Helper()
	return mustParse(tb, EventSchemaJSON)
}

func mustParse(tb testing.TB, doc string) *avro.Schema {
	tb.Helper()
	s, err := avro.ParseString(doc)
	if err != nil {
		tb.Fatalf("parse schema: %v", err)
	}
	return s
}

// PojoShape binds Pojo explicitly.
func PojoShape(tb testing.TB) *avro.Shape[Pojo] {
	tb.Helper()
	shape, err := avro.NewShape(avro.Bind("text", func(p *Pojo) *string { return &p.Text }))
	if err != nil {
		tb.Fatalf("pojo shape: %v", err)
	}
	return shape
}

// PojoProcessor returns a processor for Pojo with a static resolver.
func PojoProcessor(tb testing.TB, opts ...avro.Option) *avro.Processor[Pojo] {
	tb.Helper()
	proc, err := avro.NewProcessor[Pojo](avro.Static(PojoSchema(tb)), PojoShape(tb), opts...)
	if err != nil {
		tb.Fatalf("pojo processor: %v", err)
	}
	return proc
}

// Observed is the data captured from one signal.
type Observed struct {
	Schema      string
	ContentType string
	Size        int
	Err         error
}

// Recorder collects signals emitted on a capitan instance.
type Recorder struct {
	mu     sync.Mutex
	events []Observed
}

// NewCapitan returns a synchronous capitan instance that is shut down with the test.
func NewCapitan(tb testing.TB) *capitan.Capitan {
	tb.Helper()
	c := capitan.New(capitan.WithSyncMode())
	tb.Cleanup(func() { c.Shutdown() })
	return c
}

// Record hooks signal on c and returns a recorder of its events.
func Record(c *capitan.Capitan, signal capitan.Signal) *Recorder {
	r := &Recorder{}
	c.Hook(signal, func(_ context.Context, e *capitan.Event) {
		var o Observed
		o.Schema, _ = avro.KeySchema.From(e)
		o.ContentType, _ = avro.KeyContentType.From(e)
		o.Size, _ = avro.KeySize.From(e)
		o.Err, _ = avro.KeyError.From(e)

		r.mu.Lock()
		r.events = append(r.events, o)
		r.mu.Unlock()
	})
	return r
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Observed {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Observed, len(r.events))
	copy(out, r.events)
	return out
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}
