// Package memory provides an in-memory factory store for tests and
// ephemeral runs. Writes made inside a Transactor unit are staged and only
// become visible when the unit succeeds.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// ErrDuplicate is returned when an entity with the same identity is saved twice.
var ErrDuplicate = errors.New("memory: duplicate identity")

// Identity reads and assigns the identity of an entity.
type Identity[T any] struct {
	Get func(*T) string
	Set func(*T, string)
}

// Store keeps saved entities in insertion order.
type Store[T any] struct {
	name     string
	identity *Identity[T]

	mu    sync.RWMutex
	items []*T
	ids   map[string]struct{}
}

// Option configures a Store.
type Option[T any] func(*Store[T])

// WithIdentity makes Save assign a UUID to entities that have none and
// reject duplicate identities.
func WithIdentity[T any](get func(*T) string, set func(*T, string)) Option[T] {
	return func(s *Store[T]) {
		s.identity = &Identity[T]{Get: get, Set: set}
	}
}

// New creates an empty store. name is used in error messages.
func New[T any](name string, opts ...Option[T]) *Store[T] {
	s := &Store[T]{
		name: name,
		ids:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save stores entity. Inside a unit of work the write is staged; the
// identity is assigned immediately either way, and a generated identity is
// removed again if the save fails or the unit is dropped.
func (s *Store[T]) Save(ctx context.Context, entity *T) (*T, error) {
	if entity == nil {
		return nil, fmt.Errorf("memory: save %s: nil entity", s.name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id, unassign := s.assignID(entity)
	if u := unitFrom(ctx); u != nil {
		if err := u.reserve(s, id); err != nil {
			unassign()
			return nil, err
		}
		u.stage(func() { s.insert(entity, id) }, unassign)
		return entity, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkID(id); err != nil {
		unassign()
		return nil, err
	}
	s.insertLocked(entity, id)
	return entity, nil
}

// FindAll returns the committed entities in insertion order.
func (s *Store[T]) FindAll(ctx context.Context) ([]*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*T, len(s.items))
	copy(out, s.items)
	return out, nil
}

// FindByID returns the entity with the given identity.
func (s *Store[T]) FindByID(ctx context.Context, id string) (*T, bool) {
	if s.identity == nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if s.identity.Get(item) == id {
			return item, true
		}
	}
	return nil, false
}

// Count returns the number of committed entities.
func (s *Store[T]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Clear removes every entity.
func (s *Store[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	clear(s.ids)
}

// assignID returns the entity's identity, generating one when it is empty.
// The returned func takes a generated identity back off the entity.
func (s *Store[T]) assignID(entity *T) (string, func()) {
	if s.identity == nil {
		return "", func() {}
	}
	id := s.identity.Get(entity)
	if id != "" {
		return id, func() {}
	}
	id = uuid.NewString()
	s.identity.Set(entity, id)
	return id, func() { s.identity.Set(entity, "") }
}

// checkID must be called with mu held.
func (s *Store[T]) checkID(id string) error {
	if id == "" {
		return nil
	}
	if _, ok := s.ids[id]; ok {
		return fmt.Errorf("%w: %s %s", ErrDuplicate, s.name, id)
	}
	return nil
}

func (s *Store[T]) insert(entity *T, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertLocked(entity, id)
}

func (s *Store[T]) insertLocked(entity *T, id string) {
	s.items = append(s.items, entity)
	if id != "" {
		s.ids[id] = struct{}{}
	}
}

func (s *Store[T]) hasID(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkID(id) != nil
}
