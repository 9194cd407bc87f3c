package factory

// Registry is the immutable set of default attributes a factory was built
// with. Lookups are O(1); iteration follows declaration order. Only the
// used-value state inside each unique attribute changes after construction.
type Registry struct {
	order  []*DefaultAttribute
	byName map[string]*DefaultAttribute
}

// NewRegistry validates defs and builds a registry. Empty or duplicate names
// fail with ErrInvalidArgument.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{
		order:  make([]*DefaultAttribute, 0, len(defs)),
		byName: make(map[string]*DefaultAttribute, len(defs)),
	}
	for _, def := range defs {
		if err := def.Attribute.Validate(); err != nil {
			return nil, err
		}
		name := def.Attribute.Name()
		if _, dup := r.byName[name]; dup {
			return nil, invalidArgument("duplicate default attribute %s", name)
		}
		d := newDefaultAttribute(def)
		r.order = append(r.order, d)
		r.byName[name] = d
	}
	return r, nil
}

// Lookup returns the default attribute with the given name.
func (r *Registry) Lookup(name string) (*DefaultAttribute, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Attributes returns the defaults in declaration order.
func (r *Registry) Attributes() []*DefaultAttribute {
	out := make([]*DefaultAttribute, len(r.order))
	copy(out, r.order)
	return out
}

// Names returns the attribute names in declaration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	for i, d := range r.order {
		names[i] = d.Name()
	}
	return names
}

// Len returns the number of defaults.
func (r *Registry) Len() int {
	return len(r.order)
}

// Reset clears the used values of one attribute.
func (r *Registry) Reset(name string) error {
	d, ok := r.byName[name]
	if !ok {
		return invalidArgument("unknown default attribute %s", name)
	}
	d.tracker.Reset()
	return nil
}

// ResetAll clears the used values of every attribute.
func (r *Registry) ResetAll() {
	for _, d := range r.order {
		d.tracker.Reset()
	}
}
