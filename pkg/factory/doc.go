// Package factory builds fully populated entities for tests.
//
// A Factory is configured once with a Schema (how to instantiate the entity
// and which properties may be written) and a list of default attributes. Each
// Build call produces a new entity; Persist additionally hands it to a Store.
//
// # Defining a factory
//
//	schema := factory.NewSchema("user",
//	    factory.Prop("email", func(u *User, v string) { u.Email = v }),
//	    factory.Prop("name", func(u *User, v string) { u.Name = v }),
//	)
//
//	users, err := factory.New(schema, userRepo,
//	    factory.WithDefaults(
//	        factory.UniqueDef(factory.Func("email", gofakeit.Email)),
//	        factory.Def(factory.Func("name", gofakeit.Name)),
//	    ),
//	)
//
// # Overrides
//
// Overrides replace the generator of a default for one or more builds:
//
//	admin, err := users.BuildWith(ctx, factory.MustOverrides(
//	    factory.Static("name", "Admin"),
//	))
//
// WithOverrides sets factory-wide overrides and returns the factory for
// chaining. Prefer BuildWith and PersistWith when a factory is shared
// between goroutines.
//
// # Unique attributes
//
// A default declared with UniqueDef never yields the same value twice for the
// lifetime of the factory. The generator is retried until it produces an
// unused value; after MaxUniqueAttempts collisions the build fails with
// ErrUniquenessExhausted. An override for a unique default is checked
// against the same used values.
//
// Used values are owned by the factory instance. ResetUsedValues and
// ResetAllUsedValues make them eligible again, e.g. between test cases.
//
// # Dependent factories
//
// An attribute may build another entity through a dependent factory:
//
//	children, err := factory.New(childSchema, childRepo,
//	    factory.WithDependents([]factory.Node{parents}, func(deps []factory.Node) []factory.Definition {
//	        return []factory.Definition{
//	            factory.Def(factory.FromNode("parent", deps[0], true)),
//	        }
//	    }),
//	)
//
// The build chain travels in the context; a factory that is reached again
// through its own dependents fails with ErrDependencyCycle.
//
// # Errors
//
// Failures are *Error values that match one of the kind sentinels:
//
//	var fe *factory.Error
//	if errors.As(err, &fe) && errors.Is(err, factory.ErrPropertyNotFound) {
//	    t.Fatalf("%s has no property %s", fe.Entity, fe.Attribute)
//	}
package factory
