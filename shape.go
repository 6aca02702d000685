package avro

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/zoobzio/sentinel"
)

func init() {
	// Register the field-name tag with sentinel
	sentinel.Tag("avro")
}

// ShapeField binds one record field name to an accessor pair on T.
type ShapeField[T any] struct {
	Name string
	Get  func(*T) any
	Set  func(*T, any) error
}

// Bind returns a ShapeField reading and writing the V addressed by ptr.
//
//	avro.Bind("text", func(p *Pojo) *string { return &p.Text })
func Bind[T, V any](name string, ptr func(*T) *V) ShapeField[T] {
	return ShapeField[T]{
		Name: name,
		Get:  func(t *T) any { return *ptr(t) },
		Set: func(t *T, v any) error {
			x, ok := v.(V)
			if !ok {
				var zero V
				return fmt.Errorf("got %T, want %T", v, zero)
			}
			*ptr(t) = x
			return nil
		},
	}
}

// Shape describes how a record maps onto the target type T.
// Shapes are immutable and safe for concurrent use.
type Shape[T any] struct {
	fields   []ShapeField[T]
	index    map[string]int
	typeName string
}

// NewShape builds a Shape from explicit field bindings.
// Names must be non-empty and unique, and every binding needs both accessors.
func NewShape[T any](fields ...ShapeField[T]) (*Shape[T], error) {
	sh := &Shape[T]{
		fields:   make([]ShapeField[T], 0, len(fields)),
		index:    make(map[string]int, len(fields)),
		typeName: reflect.TypeFor[T]().String(),
	}
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: empty field name on %s", ErrInvalidShape, sh.typeName)
		}
		if f.Get == nil || f.Set == nil {
			return nil, fmt.Errorf("%w: field %s on %s needs Get and Set", ErrInvalidShape, f.Name, sh.typeName)
		}
		if _, dup := sh.index[f.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate field %s on %s", ErrInvalidShape, f.Name, sh.typeName)
		}
		sh.index[f.Name] = len(sh.fields)
		sh.fields = append(sh.fields, f)
	}
	return sh, nil
}

// ShapeOf derives a Shape from the exported fields of struct type T.
// A field binds to the name in its `avro:"name"` tag, or to its Go name, which
// matches record fields case-insensitively. Fields tagged `avro:"-"` are skipped.
func ShapeOf[T any]() (*Shape[T], error) {
	rt := reflect.TypeFor[T]()
	if rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrInvalidShape, rt)
	}

	meta := sentinel.Scan[T]()
	fields := make([]ShapeField[T], 0, len(meta.Fields))
	for _, fm := range meta.Fields {
		if !rt.FieldByIndex(fm.Index).IsExported() {
			continue
		}
		name := fm.Name
		if tag, ok := fm.Tags["avro"]; ok && tag != "" {
			if tag == "-" {
				continue
			}
			name = tag
		}
		fields = append(fields, reflectField[T](name, fm.Index))
	}
	return NewShape(fields...)
}

// reflectField accesses the struct field at index.
func reflectField[T any](name string, index []int) ShapeField[T] {
	return ShapeField[T]{
		Name: name,
		Get: func(t *T) any {
			return reflect.ValueOf(t).Elem().FieldByIndex(index).Interface()
		},
		Set: func(t *T, v any) error {
			field := reflect.ValueOf(t).Elem().FieldByIndex(index)
			return assign(field, v)
		},
	}
}

// assign stores v in field, converting between kinds of the same family.
func assign(field reflect.Value, v any) error {
	val := reflect.ValueOf(v)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}

	switch {
	case isInt(val.Kind()) && isInt(field.Kind()):
		if field.OverflowInt(val.Int()) {
			return fmt.Errorf("value %d overflows %s", val.Int(), field.Type())
		}
		field.SetInt(val.Int())
		return nil
	case isFloat(val.Kind()) && isFloat(field.Kind()):
		field.SetFloat(val.Float())
		return nil
	case val.Kind() == reflect.String && field.Kind() == reflect.String,
		val.Kind() == reflect.Bool && field.Kind() == reflect.Bool,
		val.Kind() == reflect.Slice && field.Kind() == reflect.Slice && val.Type().ConvertibleTo(field.Type()):
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %s to %s", val.Type(), field.Type())
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

// Names returns the bound field names in binding order.
func (sh *Shape[T]) Names() []string {
	names := make([]string, len(sh.fields))
	for i, f := range sh.fields {
		names[i] = f.Name
	}
	return names
}

// TypeName returns the name of T.
func (sh *Shape[T]) TypeName() string { return sh.typeName }

// lookup finds the binding index for a record field name, exact match first.
func (sh *Shape[T]) lookup(name string) (int, bool) {
	if i, ok := sh.index[name]; ok {
		return i, true
	}
	for i, f := range sh.fields {
		if strings.EqualFold(f.Name, name) {
			return i, true
		}
	}
	return -1, false
}

// plan maps each schema field to a binding index, -1 when unbound.
// A binding reached by two schema fields is ambiguous and fails with ErrInvalidShape.
func (sh *Shape[T]) plan(s *Schema) ([]int, error) {
	out := make([]int, len(s.fields))
	claimed := make(map[int]string, len(s.fields))
	for i, f := range s.fields {
		bi, ok := sh.lookup(f.Name)
		if !ok {
			out[i] = -1
			continue
		}
		if prev, dup := claimed[bi]; dup {
			return nil, fmt.Errorf("%w: schema fields %s and %s both bind %s on %s",
				ErrInvalidShape, prev, f.Name, sh.fields[bi].Name, sh.typeName)
		}
		claimed[bi] = f.Name
		out[i] = bi
	}
	return out, nil
}

// Project builds a new T from rec. Schema fields the shape does not bind are
// ignored; T fields absent from the schema keep their zero value.
// On failure no partially filled T is returned.
func Project[T any](s *Schema, sh *Shape[T], rec Record) (*T, error) {
	if s == nil {
		return nil, ErrNoSchema
	}
	plan, err := sh.plan(s)
	if err != nil {
		return nil, err
	}
	out := new(T)
	for i, f := range s.fields {
		if plan[i] < 0 {
			continue
		}
		v, present := rec[f.Name]
		if !present {
			continue
		}
		if err := sh.fields[plan[i]].Set(out, v); err != nil {
			return nil, newDecodeError(ErrProjectionFailed, s.FullName(), f.Name, -1, err)
		}
	}
	return out, nil
}

// Extract builds a Record from v for every schema field the shape binds.
// Unbound schema fields are left out, so Marshal reports them as missing.
func Extract[T any](s *Schema, sh *Shape[T], v *T) (Record, error) {
	if s == nil {
		return nil, ErrNoSchema
	}
	plan, err := sh.plan(s)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return Record{}, nil
	}
	rec := make(Record, len(s.fields))
	for i, f := range s.fields {
		if plan[i] >= 0 {
			rec[f.Name] = sh.fields[plan[i]].Get(v)
		}
	}
	return rec, nil
}
