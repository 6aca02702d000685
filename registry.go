package avro

import (
	"fmt"
	"reflect"
	"sync"
)

// DefaultSchemaHeader is the metadata key Registry.Resolver reads by default.
const DefaultSchemaHeader = "avro.schema"

// Registry maps full record names to schemas. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*Schema)}
}

// Register adds s under its full name, replacing any previous schema of that name.
// A nil schema fails with ErrNoSchema.
func (r *Registry) Register(s *Schema) error {
	if s == nil {
		return ErrNoSchema
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[s.FullName()] = s
	return nil
}

// ParseAndRegister parses a JSON document and registers the result.
func (r *Registry) ParseAndRegister(text []byte) (*Schema, error) {
	s, err := Parse(text)
	if err != nil {
		return nil, err
	}
	if err := r.Register(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Lookup returns the schema registered under fullName.
func (r *Registry) Lookup(fullName string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[fullName]
	return s, ok
}

// Len returns the number of registered schemas.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.schemas)
}

// Resolver returns a SchemaResolver that looks up the schema named by the
// envelope's header. An empty header uses DefaultSchemaHeader.
func (r *Registry) Resolver(header string) SchemaResolver {
	if header == "" {
		header = DefaultSchemaHeader
	}
	return func(env *Envelope) (*Schema, error) {
		if env == nil || env.Metadata[header] == "" {
			return nil, fmt.Errorf("header %q not set", header)
		}
		name := env.Metadata[header]
		s, ok := r.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("schema %q not registered", name)
		}
		return s, nil
	}
}

// defaultRegistry backs the package-level registry functions.
var (
	defaultRegistry   = NewRegistry()
	defaultRegistryMu sync.RWMutex
)

func currentRegistry() *Registry {
	defaultRegistryMu.RLock()
	defer defaultRegistryMu.RUnlock()
	return defaultRegistry
}

// Register adds s to the default registry.
func Register(s *Schema) error {
	return currentRegistry().Register(s)
}

// Lookup returns a schema from the default registry.
func Lookup(fullName string) (*Schema, bool) {
	return currentRegistry().Lookup(fullName)
}

// HeaderResolver resolves schemas from the default registry by envelope header.
// The registry is consulted at call time, so schemas registered later are visible.
func HeaderResolver(header string) SchemaResolver {
	return func(env *Envelope) (*Schema, error) {
		return currentRegistry().Resolver(header)(env)
	}
}

// processorKey combines target type and content type for cache lookup.
type processorKey struct {
	typ         reflect.Type
	contentType string
}

var (
	processors   = make(map[processorKey]any)
	processorsMu sync.RWMutex
)

// Use returns a cached processor for T or builds a new one.
// The processor is cached by T and content type; the resolver, shape and
// options of the first successful call are kept.
func Use[T any](resolver SchemaResolver, shape *Shape[T], opts ...Option) (*Processor[T], error) {
	key := processorKey{typ: reflect.TypeFor[T](), contentType: newConfig(opts).contentType}

	processorsMu.RLock()
	if cached, ok := processors[key]; ok {
		processorsMu.RUnlock()
		return cached.(*Processor[T]), nil
	}
	processorsMu.RUnlock()

	processorsMu.Lock()
	defer processorsMu.Unlock()

	if cached, ok := processors[key]; ok {
		return cached.(*Processor[T]), nil
	}

	p, err := NewProcessor(resolver, shape, opts...)
	if err != nil {
		return nil, err
	}
	processors[key] = p
	return p, nil
}

// Reset clears the default registry and the processor cache.
// This is primarily useful for test isolation.
func Reset() {
	defaultRegistryMu.Lock()
	defaultRegistry = NewRegistry()
	defaultRegistryMu.Unlock()

	processorsMu.Lock()
	processors = make(map[processorKey]any)
	processorsMu.Unlock()
}
