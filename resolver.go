package avro

import "fmt"

// Metadata holds message headers available to a resolver.
type Metadata map[string]string

// Envelope is the message a resolver inspects to choose a schema.
type Envelope struct {
	// Body is the value being marshaled, or the raw bytes being unmarshaled.
	Body any

	// Metadata contains message headers.
	Metadata Metadata
}

// SchemaResolver selects the schema for one marshal or unmarshal call.
// It is invoked exactly once per call and its result is not retained.
type SchemaResolver func(env *Envelope) (*Schema, error)

// Static returns a resolver that always selects s.
func Static(s *Schema) SchemaResolver {
	return func(*Envelope) (*Schema, error) {
		return s, nil
	}
}

// resolve invokes r once, converting nil results, errors and panics to *ResolveError.
func resolve(r SchemaResolver, env *Envelope) (s *Schema, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			s = nil
			if cause, ok := rec.(error); ok {
				err = newResolveError(fmt.Errorf("resolver panic: %w", cause))
				return
			}
			err = newResolveError(fmt.Errorf("resolver panic: %v", rec))
		}
	}()

	s, err = r(env)
	if err != nil {
		return nil, newResolveError(err)
	}
	if s == nil {
		return nil, newResolveError(ErrNoSchema)
	}
	return s, nil
}
