package avro

import (
	"strconv"
	"strings"
)

// Field describes one named, typed field of a record schema.
type Field struct {
	Name string
	Type Type
	Doc  string
	Pos  int // Position in declaration order
}

// Schema describes a record type: a name and an ordered list of fields.
//
// A Schema is frozen once parsed. Accessors return copies, so a Schema may be
// shared freely between goroutines.
type Schema struct {
	name      string
	namespace string
	doc       string
	fields    []Field
	index     map[string]int
	canonical string
}

// newSchema freezes a validated field list into a Schema.
func newSchema(name, namespace, doc string, fields []Field) *Schema {
	s := &Schema{
		name:      name,
		namespace: namespace,
		doc:       doc,
		fields:    make([]Field, len(fields)),
		index:     make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		f.Pos = i
		s.fields[i] = f
		s.index[f.Name] = i
	}
	s.canonical = s.buildCanonical()
	return s
}

// Name returns the record name without namespace.
func (s *Schema) Name() string { return s.name }

// Namespace returns the record namespace, possibly empty.
func (s *Schema) Namespace() string { return s.namespace }

// Doc returns the record documentation string.
func (s *Schema) Doc() string { return s.doc }

// FullName returns namespace.name, or name when no namespace is set.
func (s *Schema) FullName() string {
	if s.namespace == "" {
		return s.name
	}
	return s.namespace + "." + s.name
}

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.fields) }

// Fields returns a copy of the fields in declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field returns the field with the given name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Canonical returns the parsing canonical form of the schema: full name, type and
// fields only, no whitespace, keys in a fixed order.
func (s *Schema) Canonical() string { return s.canonical }

// String returns the canonical form.
func (s *Schema) String() string { return s.canonical }

func (s *Schema) buildCanonical() string {
	var b strings.Builder
	b.WriteString(`{"name":`)
	b.WriteString(strconv.Quote(s.FullName()))
	b.WriteString(`,"type":"record","fields":[`)
	for i, f := range s.fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(`{"name":`)
		b.WriteString(strconv.Quote(f.Name))
		b.WriteString(`,"type":`)
		b.WriteString(strconv.Quote(string(f.Type)))
		b.WriteByte('}')
	}
	b.WriteString("]}")
	return b.String()
}
