package factory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// UniquenessTracker Tests
// ============================================================================

func TestTracker_MarkAndHasUsed(t *testing.T) {
	t.Parallel()
	tr := NewUniquenessTracker("code")

	used, err := tr.HasUsed("a")
	require.NoError(t, err)
	assert.False(t, used)

	require.NoError(t, tr.MarkUsed("a"))
	used, err = tr.HasUsed("a")
	require.NoError(t, err)
	assert.True(t, used)

	// Marking twice is a no-op.
	require.NoError(t, tr.MarkUsed("a"))
	assert.Equal(t, 1, tr.Len())
}

func TestTracker_TryMark(t *testing.T) {
	t.Parallel()
	tr := NewUniquenessTracker("code")

	ok, err := tr.TryMark(5)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = tr.TryMark(5)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTracker_TypeMismatch(t *testing.T) {
	t.Parallel()
	tr := NewUniquenessTracker("code")
	require.NoError(t, tr.MarkUsed(int64(1)))

	_, err := tr.HasUsed("1")
	require.ErrorIs(t, err, ErrTypeMismatch)

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "code", fe.Attribute)
	assert.Equal(t, "1", fe.Value)
}

func TestTracker_NonComparableValue(t *testing.T) {
	t.Parallel()
	tr := NewUniquenessTracker("tags")

	err := tr.MarkUsed([]string{"a"})
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.Zero(t, tr.Len())
}

func TestTracker_ResetForgetsValuesAndType(t *testing.T) {
	t.Parallel()
	tr := NewUniquenessTracker("code")
	require.NoError(t, tr.MarkUsed(1))

	tr.Reset()

	assert.Zero(t, tr.Len())
	ok, err := tr.TryMark("now a string")
	require.NoError(t, err)
	assert.True(t, ok)
}

// ============================================================================
// Resolve Tests
// ============================================================================

func TestTracker_Resolve_SkipsUsedValues(t *testing.T) {
	t.Parallel()
	tr := NewUniquenessTracker("n")
	require.NoError(t, tr.MarkUsed(1))
	require.NoError(t, tr.MarkUsed(2))

	next := 0
	gen := func(context.Context) (any, error) {
		next++
		return next, nil
	}

	v, collisions, err := tr.Resolve(context.Background(), gen)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.Equal(t, 2, collisions)
}

func TestTracker_Resolve_ExhaustsAfterMaxAttempts(t *testing.T) {
	t.Parallel()
	tr := NewUniquenessTracker("n")
	require.NoError(t, tr.MarkUsed(5))

	calls := 0
	gen := func(context.Context) (any, error) {
		calls++
		return 5, nil
	}

	_, _, err := tr.Resolve(context.Background(), gen)
	require.ErrorIs(t, err, ErrUniquenessExhausted)
	assert.Equal(t, MaxUniqueAttempts, calls)

	var fe *Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, MaxUniqueAttempts, fe.Attempts)
	assert.Equal(t, "n", fe.Attribute)
}

func TestTracker_Resolve_SucceedsOnLastAttempt(t *testing.T) {
	t.Parallel()
	tr := NewUniquenessTracker("n")
	require.NoError(t, tr.MarkUsed(0))

	calls := 0
	gen := func(context.Context) (any, error) {
		calls++
		if calls == MaxUniqueAttempts {
			return 1, nil
		}
		return 0, nil
	}

	v, collisions, err := tr.Resolve(context.Background(), gen)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, MaxUniqueAttempts-1, collisions)
}

func TestTracker_Resolve_GeneratorErrorPassesThrough(t *testing.T) {
	t.Parallel()
	tr := NewUniquenessTracker("n")
	boom := errors.New("boom")

	_, _, err := tr.Resolve(context.Background(), func(context.Context) (any, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, tr.Len())
}

func TestTracker_ConcurrentTryMarkAcceptsOnce(t *testing.T) {
	t.Parallel()
	tr := NewUniquenessTracker("n")

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := tr.TryMark("same")
			if err == nil && ok {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
}
