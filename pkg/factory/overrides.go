package factory

// OverrideSet holds caller-supplied attributes for one or more build
// requests. An override always wins over the default of the same name; it
// owns no used-value state of its own.
type OverrideSet struct {
	order  []Attribute
	byName map[string]Attribute
}

// NewOverrides validates attrs and builds a set. Empty or duplicate names fail
// with ErrInvalidArgument.
func NewOverrides(attrs ...Attribute) (*OverrideSet, error) {
	s := &OverrideSet{
		order:  make([]Attribute, 0, len(attrs)),
		byName: make(map[string]Attribute, len(attrs)),
	}
	for _, a := range attrs {
		if err := a.Validate(); err != nil {
			return nil, err
		}
		if _, dup := s.byName[a.Name()]; dup {
			return nil, invalidArgument("duplicate override %s", a.Name())
		}
		s.order = append(s.order, a)
		s.byName[a.Name()] = a
	}
	return s, nil
}

// MustOverrides is NewOverrides for fixture declarations; it panics on error.
func MustOverrides(attrs ...Attribute) *OverrideSet {
	s, err := NewOverrides(attrs...)
	if err != nil {
		panic(err)
	}
	return s
}

// Lookup returns the override with the given name.
func (s *OverrideSet) Lookup(name string) (Attribute, bool) {
	if s == nil {
		return Attribute{}, false
	}
	a, ok := s.byName[name]
	return a, ok
}

// Attributes returns the overrides in insertion order.
func (s *OverrideSet) Attributes() []Attribute {
	if s == nil {
		return nil
	}
	out := make([]Attribute, len(s.order))
	copy(out, s.order)
	return out
}

// Names returns the override names in insertion order.
func (s *OverrideSet) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.order))
	for i, a := range s.order {
		names[i] = a.Name()
	}
	return names
}

// Len returns the number of overrides. A nil set is empty.
func (s *OverrideSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}
