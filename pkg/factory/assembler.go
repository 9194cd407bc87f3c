package factory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// assemble instantiates a blank entity and applies overrides, then every
// default not already set by an override.
//
// An override whose name matches a unique default is resolved against that
// default's tracker, so overrides cannot break a declared uniqueness rule.
func (f *Factory[T]) assemble(ctx context.Context, overrides *OverrideSet) (*T, error) {
	entity, err := f.schema.Instantiate()
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, overrides.Len())
	for _, o := range overrides.Attributes() {
		if err := f.apply(ctx, entity, o.Name(), o.generate); err != nil {
			return nil, err
		}
		set[o.Name()] = struct{}{}
	}

	for _, d := range f.defaults.order {
		if _, done := set[d.Name()]; done {
			continue
		}
		if err := f.apply(ctx, entity, d.Name(), d.generate); err != nil {
			return nil, err
		}
	}

	return entity, nil
}

// apply resolves one value with gen and writes it. The property is checked
// first so that a bad name consumes neither unique values nor dependent
// entities.
func (f *Factory[T]) apply(ctx context.Context, entity *T, name string, gen Generator) error {
	if !f.schema.Has(name) {
		return &Error{Kind: ErrPropertyNotFound, Entity: f.schema.Name(), Attribute: name}
	}

	var (
		value      any
		collisions int
		err        error
	)
	if d, ok := f.defaults.Lookup(name); ok {
		if d.Unique() {
			gen = f.assignable(name, gen)
		}
		value, collisions, err = d.ResolveWith(ctx, gen)
	} else {
		value, err = gen(ctx)
	}

	if collisions > 0 {
		f.observer.UniqueCollisions(f.schema.Name(), name, collisions)
	}
	if err != nil {
		return f.resolveError(name, err)
	}
	if collisions > 0 {
		f.logger.Debug("unique value collisions",
			slog.String("entity", f.schema.Name()),
			slog.String("attribute", name),
			slog.Int("collisions", collisions),
		)
	}

	return f.schema.Set(entity, name, value)
}

// assignable rejects values the property cannot hold before a tracker marks
// them, so a bad value never becomes the tracked type.
func (f *Factory[T]) assignable(name string, gen Generator) Generator {
	return func(ctx context.Context) (any, error) {
		value, err := gen(ctx)
		if err != nil {
			return nil, err
		}
		if err := f.schema.Check(name, value); err != nil {
			return nil, err
		}
		return value, nil
	}
}

func (f *Factory[T]) resolveError(name string, err error) error {
	var fe *Error
	if !errors.As(err, &fe) {
		return fmt.Errorf("factory: generate %s.%s: %w", f.schema.Name(), name, err)
	}
	// Errors from a dependent factory already name their entity.
	if fe.Entity == "" && fe.Kind == ErrUniquenessExhausted {
		f.observer.UniquenessExhausted(f.schema.Name(), name)
		f.logger.Warn("unique values exhausted",
			slog.String("entity", f.schema.Name()),
			slog.String("attribute", name),
			slog.Int("max_attempts", MaxUniqueAttempts),
		)
	}
	return withEntity(err, f.schema.Name())
}
