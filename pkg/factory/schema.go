package factory

import (
	"fmt"
	"reflect"
	"sort"
)

// Setter writes one named property on an entity.
type Setter[T any] func(entity *T, value any) error

// Field pairs a property name with its setter. Type, when set, lets
// Schema.Check reject a value before it is written.
type Field[T any] struct {
	Name string
	Set  Setter[T]
	Type reflect.Type
}

// Prop declares a typed property. The setter rejects values that are not a V
// with ErrPropertyAssignmentFailed; nil is accepted for nillable V and
// written as the zero value.
func Prop[T, V any](name string, set func(entity *T, value V)) Field[T] {
	typ := reflect.TypeFor[V]()
	return Field[T]{
		Name: name,
		Type: typ,
		Set: func(entity *T, value any) error {
			if err := accepts(typ, value); err != nil {
				return err
			}
			if value == nil {
				var zero V
				set(entity, zero)
				return nil
			}
			set(entity, value.(V))
			return nil
		},
	}
}

// accepts mirrors the type assertion done by Prop setters.
func accepts(typ reflect.Type, value any) error {
	if value == nil {
		if !nillable(typ) {
			return fmt.Errorf("nil is not a valid %s", typ)
		}
		return nil
	}
	vt := reflect.TypeOf(value)
	if typ.Kind() == reflect.Interface {
		if vt.Implements(typ) {
			return nil
		}
	} else if vt == typ {
		return nil
	}
	return fmt.Errorf("expected %s, got %s", typ, vt)
}

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

// Schema describes an entity type: how to instantiate a blank value and the
// table of properties a factory may write. It replaces runtime reflection
// over struct fields with an explicit, per-type mapping.
type Schema[T any] struct {
	name   string
	newFn  func() (*T, error)
	fields map[string]Field[T]
}

// NewSchema creates a schema named name with the given fields. Blank entities
// are the zero value of T unless WithConstructor is used.
func NewSchema[T any](name string, fields ...Field[T]) *Schema[T] {
	s := &Schema[T]{
		name:   name,
		newFn:  func() (*T, error) { return new(T), nil },
		fields: make(map[string]Field[T], len(fields)),
	}
	for _, f := range fields {
		s.fields[f.Name] = f
	}
	return s
}

// WithConstructor replaces the blank-entity constructor.
func (s *Schema[T]) WithConstructor(fn func() (*T, error)) *Schema[T] {
	s.newFn = fn
	return s
}

// Name returns the entity type name used in errors and logs.
func (s *Schema[T]) Name() string {
	return s.name
}

// Has reports whether name is a settable property.
func (s *Schema[T]) Has(name string) bool {
	_, ok := s.fields[name]
	return ok
}

// Properties returns the settable property names, sorted.
func (s *Schema[T]) Properties() []string {
	names := make([]string, 0, len(s.fields))
	for name := range s.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Instantiate returns a blank entity.
func (s *Schema[T]) Instantiate() (*T, error) {
	entity, err := s.newFn()
	if err != nil {
		return nil, &Error{Kind: ErrInstantiationFailed, Entity: s.name, Err: err}
	}
	if entity == nil {
		return nil, &Error{Kind: ErrInstantiationFailed, Entity: s.name, Err: fmt.Errorf("constructor returned nil")}
	}
	return entity, nil
}

// Check reports, without writing, whether value can be assigned to the named
// property. Fields declared without a Type accept any value here.
func (s *Schema[T]) Check(name string, value any) error {
	field, ok := s.fields[name]
	if !ok {
		return &Error{Kind: ErrPropertyNotFound, Entity: s.name, Attribute: name, Value: value}
	}
	if field.Type == nil {
		return nil
	}
	if err := accepts(field.Type, value); err != nil {
		return &Error{Kind: ErrPropertyAssignmentFailed, Entity: s.name, Attribute: name, Value: value, Err: err}
	}
	return nil
}

// Set writes value to the named property.
func (s *Schema[T]) Set(entity *T, name string, value any) error {
	field, ok := s.fields[name]
	if !ok {
		return &Error{Kind: ErrPropertyNotFound, Entity: s.name, Attribute: name, Value: value}
	}
	if err := field.Set(entity, value); err != nil {
		return &Error{Kind: ErrPropertyAssignmentFailed, Entity: s.name, Attribute: name, Value: value, Err: err}
	}
	return nil
}
