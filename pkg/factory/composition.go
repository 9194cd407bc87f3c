package factory

import "context"

// PersistedBy is an attribute whose value is an entity built and saved by
// dep, e.g. the parent record a child requires.
func PersistedBy[D any](name string, dep *Factory[D]) Attribute {
	return FuncCtx(name, func(ctx context.Context) (*D, error) {
		return dep.Persist(ctx)
	})
}

// BuiltBy is an attribute whose value is an unsaved entity built by dep.
func BuiltBy[D any](name string, dep *Factory[D]) Attribute {
	return FuncCtx(name, func(ctx context.Context) (*D, error) {
		return dep.Build(ctx)
	})
}

// FromNode is PersistedBy or BuiltBy for a dependent known only as a Node,
// as handed to the builder function of WithDependents.
func FromNode(name string, dep Node, persist bool) Attribute {
	if persist {
		return NewAttribute(name, dep.PersistAny)
	}
	return NewAttribute(name, dep.BuildAny)
}
