package factory

import (
	"context"
	"time"
)

// Store is the storage collaborator used by Persist. Save may assign an
// identity and returns the stored entity.
type Store[T any] interface {
	Save(ctx context.Context, entity *T) (*T, error)
}

// StoreFunc adapts a function to Store.
type StoreFunc[T any] func(ctx context.Context, entity *T) (*T, error)

// Save calls fn.
func (fn StoreFunc[T]) Save(ctx context.Context, entity *T) (*T, error) {
	return fn(ctx, entity)
}

// Transactor runs fn as one atomic unit of work. Stores taking part in the
// unit find it through the context passed to fn.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// TransactorFunc adapts a function to Transactor.
type TransactorFunc func(ctx context.Context, fn func(ctx context.Context) error) error

// InTransaction calls tf.
func (tf TransactorFunc) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return tf(ctx, fn)
}

// Observer receives engine events. Implementations must be safe for
// concurrent use.
type Observer interface {
	EntityBuilt(entity string, took time.Duration, err error)
	EntityPersisted(entity string, took time.Duration, err error)
	UniqueCollisions(entity, attribute string, n int)
	UniquenessExhausted(entity, attribute string)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) EntityBuilt(string, time.Duration, error)     {}
func (NopObserver) EntityPersisted(string, time.Duration, error) {}
func (NopObserver) UniqueCollisions(string, string, int)         {}
func (NopObserver) UniquenessExhausted(string, string)           {}
