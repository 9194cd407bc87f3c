package factory

import (
	"context"
	"math/rand/v2"
	"sync/atomic"
)

// Generator produces one attribute value per call. It may return a different
// value on every call and may itself build entities through another factory.
type Generator func(ctx context.Context) (any, error)

// Attribute is a named, lazily evaluated value generator. It is the shared
// shape of default attributes and overrides.
type Attribute struct {
	name     string
	generate Generator
}

// NewAttribute creates an attribute from a raw generator.
func NewAttribute(name string, gen Generator) Attribute {
	return Attribute{name: name, generate: gen}
}

// Name returns the attribute name.
func (a Attribute) Name() string {
	return a.name
}

// Generate calls the generator once.
func (a Attribute) Generate(ctx context.Context) (any, error) {
	return a.generate(ctx)
}

// Validate reports ErrInvalidArgument for an empty name or a missing generator.
func (a Attribute) Validate() error {
	if a.name == "" {
		return invalidArgument("attribute name must not be empty")
	}
	if a.generate == nil {
		return invalidArgument("attribute %s has no generator", a.name)
	}
	return nil
}

// Func wraps a plain value function.
func Func[V any](name string, fn func() V) Attribute {
	return Attribute{name: name, generate: func(context.Context) (any, error) {
		return fn(), nil
	}}
}

// FuncCtx wraps a fallible, context-aware value function.
func FuncCtx[V any](name string, fn func(ctx context.Context) (V, error)) Attribute {
	return Attribute{name: name, generate: func(ctx context.Context) (any, error) {
		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return v, nil
	}}
}

// Static always yields v.
func Static[V any](name string, v V) Attribute {
	return Func(name, func() V { return v })
}

// Sequence yields start, start+1, ... The counter is shared by every caller
// of the returned attribute.
func Sequence(name string, start int64) Attribute {
	next := start - 1
	return Func(name, func() int64 { return atomic.AddInt64(&next, 1) })
}

// OneOf picks uniformly from values. It panics if values is empty.
func OneOf[V any](name string, values ...V) Attribute {
	if len(values) == 0 {
		panic("factory: OneOf requires at least one value")
	}
	return Func(name, func() V { return values[rand.IntN(len(values))] })
}

// Definition is a default attribute declaration: the attribute plus its
// uniqueness policy.
type Definition struct {
	Attribute Attribute
	Unique    bool
}

// Def declares a repeatable default.
func Def(a Attribute) Definition {
	return Definition{Attribute: a}
}

// UniqueDef declares a default whose values must not repeat for the lifetime
// of the factory, or until reset.
func UniqueDef(a Attribute) Definition {
	return Definition{Attribute: a, Unique: true}
}

// DefaultAttribute is a registered default: an attribute, its uniqueness
// flag, and, for unique attributes, the tracker holding its used values.
type DefaultAttribute struct {
	Attribute
	unique  bool
	tracker *UniquenessTracker
}

func newDefaultAttribute(def Definition) *DefaultAttribute {
	return &DefaultAttribute{
		Attribute: def.Attribute,
		unique:    def.Unique,
		tracker:   NewUniquenessTracker(def.Attribute.Name()),
	}
}

// Unique reports whether produced values must be pairwise distinct.
func (d *DefaultAttribute) Unique() bool {
	return d.unique
}

// Tracker returns the used-value tracker for this attribute.
func (d *DefaultAttribute) Tracker() *UniquenessTracker {
	return d.tracker
}

// Resolve produces the next value: a plain Generate call for repeatable
// attributes, a bounded unique search for unique ones. The second result is
// the number of collisions seen during the search.
func (d *DefaultAttribute) Resolve(ctx context.Context) (any, int, error) {
	return d.ResolveWith(ctx, d.generate)
}

// ResolveWith is Resolve using another generator, typically an override's,
// against this attribute's uniqueness policy.
func (d *DefaultAttribute) ResolveWith(ctx context.Context, gen Generator) (any, int, error) {
	if !d.unique {
		v, err := gen(ctx)
		return v, 0, err
	}
	return d.tracker.Resolve(ctx, gen)
}
