package factory

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

// MaxUniqueAttempts bounds the number of values generated per unique
// resolution before ErrUniquenessExhausted is returned.
const MaxUniqueAttempts = 100

// UniquenessTracker records the values already produced for one attribute.
// It is owned by a single factory; nothing is shared between factories.
//
// The first accepted value fixes the dynamic type of the set. Values of any
// other type, and values that cannot be map keys, fail with ErrTypeMismatch.
type UniquenessTracker struct {
	attribute string

	mu        sync.Mutex
	used      map[any]struct{}
	valueType reflect.Type
}

// NewUniquenessTracker creates an empty tracker for the named attribute.
func NewUniquenessTracker(attribute string) *UniquenessTracker {
	return &UniquenessTracker{
		attribute: attribute,
		used:      make(map[any]struct{}),
	}
}

// HasUsed reports whether value has been accepted before.
func (u *UniquenessTracker) HasUsed(value any) (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := u.checkType(value); err != nil {
		return false, err
	}
	_, ok := u.used[value]
	return ok, nil
}

// MarkUsed records value as used. Marking an already used value is a no-op.
func (u *UniquenessTracker) MarkUsed(value any) error {
	_, err := u.TryMark(value)
	return err
}

// TryMark inserts value if it is absent and reports whether it did. The
// membership test and the insert happen under one lock.
func (u *UniquenessTracker) TryMark(value any) (bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if err := u.checkType(value); err != nil {
		return false, err
	}
	if _, ok := u.used[value]; ok {
		return false, nil
	}
	u.used[value] = struct{}{}
	if u.valueType == nil && value != nil {
		u.valueType = reflect.TypeOf(value)
	}
	return true, nil
}

// Resolve calls gen until it yields a value not yet used, marks that value
// and returns it together with the number of collisions. At most
// MaxUniqueAttempts values are generated; the attempt counter is checked
// before every call.
func (u *UniquenessTracker) Resolve(ctx context.Context, gen Generator) (any, int, error) {
	attempts := 0
	for {
		if attempts == MaxUniqueAttempts {
			return nil, attempts, &Error{
				Kind:      ErrUniquenessExhausted,
				Attribute: u.attribute,
				Attempts:  attempts,
			}
		}

		value, err := gen(ctx)
		if err != nil {
			return nil, attempts, err
		}
		attempts++

		ok, err := u.TryMark(value)
		if err != nil {
			return nil, attempts - 1, err
		}
		if ok {
			return value, attempts - 1, nil
		}
	}
}

// Reset forgets every used value so they become eligible again.
func (u *UniquenessTracker) Reset() {
	u.mu.Lock()
	defer u.mu.Unlock()

	clear(u.used)
	u.valueType = nil
}

// Len returns the number of used values.
func (u *UniquenessTracker) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.used)
}

// checkType must be called with mu held.
func (u *UniquenessTracker) checkType(value any) error {
	if value == nil {
		return nil
	}
	t := reflect.TypeOf(value)
	if !t.Comparable() {
		return &Error{
			Kind:      ErrTypeMismatch,
			Attribute: u.attribute,
			Value:     value,
			Err:       fmt.Errorf("%s values cannot be tracked for uniqueness", t),
		}
	}
	if u.valueType != nil && t != u.valueType {
		return &Error{
			Kind:      ErrTypeMismatch,
			Attribute: u.attribute,
			Value:     value,
			Err:       fmt.Errorf("expected %s, got %s", u.valueType, t),
		}
	}
	return nil
}
