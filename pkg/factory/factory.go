package factory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Factory produces populated entities of type T from a schema, a registry of
// default attributes and an optional override set, and persists them through
// an optional Store.
//
// A Factory is safe for concurrent Build and Persist calls. WithOverrides
// replaces factory-wide state; configure overrides before sharing a factory,
// or pass them per call with BuildWith and PersistWith.
type Factory[T any] struct {
	id         string
	schema     *Schema[T]
	defaults   *Registry
	store      Store[T]
	tx         Transactor
	dependents []Node
	logger     *slog.Logger
	observer   Observer

	mu        sync.RWMutex
	overrides *OverrideSet
}

type options struct {
	defaults          []Definition
	dependents        []Node
	dependentDefaults func(deps []Node) []Definition
	logger            *slog.Logger
	observer          Observer
	tx                Transactor
}

// Option configures a Factory.
type Option func(*options)

// WithDefaults adds default attribute definitions.
func WithDefaults(defs ...Definition) Option {
	return func(o *options) {
		o.defaults = append(o.defaults, defs...)
	}
}

// WithDependents declares the factories this factory builds through and
// derives defaults from them. build receives deps in the order given.
func WithDependents(deps []Node, build func(deps []Node) []Definition) Option {
	return func(o *options) {
		o.dependents = append(o.dependents, deps...)
		o.dependentDefaults = build
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver sets the event observer.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithTransactor makes PersistN run as one unit of work.
func WithTransactor(tx Transactor) Option {
	return func(o *options) {
		o.tx = tx
	}
}

// New creates a factory for schema. store may be nil for build-only
// factories; Persist then fails with ErrNoStore.
func New[T any](schema *Schema[T], store Store[T], opts ...Option) (*Factory[T], error) {
	if schema == nil {
		return nil, invalidArgument("schema is required")
	}

	o := options{
		logger:   slog.Default(),
		observer: NopObserver{},
	}
	for _, fn := range opts {
		fn(&o)
	}

	defs := o.defaults
	if o.dependentDefaults != nil {
		defs = append(defs, o.dependentDefaults(o.dependents)...)
	}
	registry, err := NewRegistry(defs...)
	if err != nil {
		return nil, withEntity(err, schema.Name())
	}

	return &Factory[T]{
		id:         uuid.NewString(),
		schema:     schema,
		defaults:   registry,
		store:      store,
		tx:         o.tx,
		dependents: o.dependents,
		logger:     o.logger,
		observer:   o.observer,
	}, nil
}

// MustNew is New for fixture declarations; it panics on error.
func MustNew[T any](schema *Schema[T], store Store[T], opts ...Option) *Factory[T] {
	f, err := New(schema, store, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// ID returns the factory's unique identifier.
func (f *Factory[T]) ID() string { return f.id }

// EntityName returns the schema name.
func (f *Factory[T]) EntityName() string { return f.schema.Name() }

// Dependents returns the declared dependent factories.
func (f *Factory[T]) Dependents() []Node {
	out := make([]Node, len(f.dependents))
	copy(out, f.dependents)
	return out
}

// Defaults returns the default attribute registry.
func (f *Factory[T]) Defaults() *Registry { return f.defaults }

// WithOverrides replaces the factory's override set and returns the factory
// for chaining. A nil set clears the overrides.
func (f *Factory[T]) WithOverrides(set *OverrideSet) *Factory[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overrides = set
	return f
}

// ClearOverrides removes every override.
func (f *Factory[T]) ClearOverrides() *Factory[T] {
	return f.WithOverrides(nil)
}

// Overrides returns the current override set, possibly nil.
func (f *Factory[T]) Overrides() *OverrideSet {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.overrides
}

// ResetUsedValues makes every used value of the named attribute eligible again.
func (f *Factory[T]) ResetUsedValues(name string) error {
	return withEntity(f.defaults.Reset(name), f.schema.Name())
}

// ResetAllUsedValues clears the used values of every default attribute.
func (f *Factory[T]) ResetAllUsedValues() {
	f.defaults.ResetAll()
}

// ============================================================================
// Build
// ============================================================================

// Build assembles one entity using the current overrides. It never touches
// the store.
func (f *Factory[T]) Build(ctx context.Context) (*T, error) {
	return f.BuildWith(ctx, f.Overrides())
}

// BuildWith assembles one entity using overrides instead of the factory's
// override set.
func (f *Factory[T]) BuildWith(ctx context.Context, overrides *OverrideSet) (*T, error) {
	start := time.Now()
	entity, err := f.build(ctx, overrides)
	f.observer.EntityBuilt(f.schema.Name(), time.Since(start), err)
	return entity, err
}

// BuildN assembles n independent entities. n must be at least one; any
// failure fails the whole batch.
func (f *Factory[T]) BuildN(ctx context.Context, n int) ([]*T, error) {
	if err := f.checkCount(n); err != nil {
		return nil, err
	}
	overrides := f.Overrides()

	entities := make([]*T, 0, n)
	for i := 0; i < n; i++ {
		entity, err := f.BuildWith(ctx, overrides)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

func (f *Factory[T]) build(ctx context.Context, overrides *OverrideSet) (*T, error) {
	ctx, err := enterBuild(ctx, f)
	if err != nil {
		return nil, err
	}
	return f.assemble(ctx, overrides)
}

// ============================================================================
// Persist
// ============================================================================

// Persist builds one entity and saves it through the store.
func (f *Factory[T]) Persist(ctx context.Context) (*T, error) {
	return f.PersistWith(ctx, f.Overrides())
}

// PersistWith builds one entity with overrides and saves it.
func (f *Factory[T]) PersistWith(ctx context.Context, overrides *OverrideSet) (*T, error) {
	if f.store == nil {
		return nil, &Error{Kind: ErrNoStore, Entity: f.schema.Name()}
	}

	start := time.Now()
	saved, err := f.persist(ctx, overrides)
	f.observer.EntityPersisted(f.schema.Name(), time.Since(start), err)
	return saved, err
}

func (f *Factory[T]) persist(ctx context.Context, overrides *OverrideSet) (*T, error) {
	entity, err := f.BuildWith(ctx, overrides)
	if err != nil {
		return nil, err
	}
	saved, err := f.store.Save(ctx, entity)
	if err != nil {
		return nil, fmt.Errorf("factory: save %s: %w", f.schema.Name(), err)
	}
	f.logger.Debug("entity persisted", slog.String("entity", f.schema.Name()))
	return saved, nil
}

// PersistN builds and saves n entities. With a Transactor configured the
// batch is one unit of work; either way a failure returns no entities.
func (f *Factory[T]) PersistN(ctx context.Context, n int) ([]*T, error) {
	if err := f.checkCount(n); err != nil {
		return nil, err
	}
	if f.store == nil {
		return nil, &Error{Kind: ErrNoStore, Entity: f.schema.Name()}
	}
	overrides := f.Overrides()

	entities := make([]*T, 0, n)
	run := func(ctx context.Context) error {
		for i := 0; i < n; i++ {
			saved, err := f.PersistWith(ctx, overrides)
			if err != nil {
				return err
			}
			entities = append(entities, saved)
		}
		return nil
	}

	var err error
	if f.tx != nil {
		err = f.tx.InTransaction(ctx, run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		return nil, err
	}

	f.logger.Debug("entities persisted",
		slog.String("entity", f.schema.Name()),
		slog.Int("count", n),
	)
	return entities, nil
}

func (f *Factory[T]) checkCount(n int) error {
	if n < 1 {
		return &Error{
			Kind:   ErrInvalidArgument,
			Entity: f.schema.Name(),
			Err:    fmt.Errorf("copies must be greater than 0, got %d", n),
		}
	}
	return nil
}

// BuildAny is Build for callers that only hold a Node.
func (f *Factory[T]) BuildAny(ctx context.Context) (any, error) {
	entity, err := f.Build(ctx)
	if err != nil {
		return nil, err
	}
	return entity, nil
}

// PersistAny is Persist for callers that only hold a Node.
func (f *Factory[T]) PersistAny(ctx context.Context) (any, error) {
	entity, err := f.Persist(ctx)
	if err != nil {
		return nil, err
	}
	return entity, nil
}
