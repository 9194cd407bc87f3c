package memory

import (
	"context"
	"fmt"
	"sync"
)

// Transactor runs units of work over any number of memory stores. Saves made
// through the unit's context are published together when fn succeeds and
// dropped when it fails.
type Transactor struct{}

// NewTransactor returns a Transactor.
func NewTransactor() *Transactor {
	return &Transactor{}
}

type unitKey struct{}

type identityOwner interface {
	hasID(id string) bool
}

type unit struct {
	mu       sync.Mutex
	commits  []func()
	drops    []func()
	reserved map[identityOwner]map[string]struct{}
}

func unitFrom(ctx context.Context) *unit {
	u, _ := ctx.Value(unitKey{}).(*unit)
	return u
}

// InTransaction runs fn in a unit of work. A call nested inside another unit
// joins it.
func (t *Transactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if unitFrom(ctx) != nil {
		return fn(ctx)
	}

	u := &unit{reserved: make(map[identityOwner]map[string]struct{})}
	if err := fn(context.WithValue(ctx, unitKey{}, u)); err != nil {
		u.drop()
		return err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	for _, commit := range u.commits {
		commit()
	}
	return nil
}

// reserve claims id for owner within the unit so that duplicates are
// rejected before commit.
func (u *unit) reserve(owner identityOwner, id string) error {
	if id == "" {
		return nil
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	ids := u.reserved[owner]
	if ids == nil {
		ids = make(map[string]struct{})
		u.reserved[owner] = ids
	}
	if _, dup := ids[id]; dup || owner.hasID(id) {
		return fmt.Errorf("%w: %s", ErrDuplicate, id)
	}
	ids[id] = struct{}{}
	return nil
}

// stage queues commit for when the unit succeeds and drop for when it fails.
func (u *unit) stage(commit, drop func()) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.commits = append(u.commits, commit)
	u.drops = append(u.drops, drop)
}

func (u *unit) drop() {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i := len(u.drops) - 1; i >= 0; i-- {
		u.drops[i]()
	}
}
