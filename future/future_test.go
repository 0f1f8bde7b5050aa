package future

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvedAwait(t *testing.T) {
	f := Resolved(42)
	v, err := f.Await()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.True(t, f.Done())
}

func TestFailedAwait(t *testing.T) {
	boom := errors.New("boom")
	f := Failed[int](boom)
	_, err := f.Await()
	assert.ErrorIs(t, err, boom)
}

func TestResolveIsSingleAssignment(t *testing.T) {
	f := New[int]()
	f.Resolve(1)
	f.Resolve(2) // must be ignored
	v, err := f.Await()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestAwaitContextTimesOut(t *testing.T) {
	f := New[int]()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.AwaitContext(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestThen_ChainsOnSuccess(t *testing.T) {
	f := Resolved(10)
	chained := Then(f, func(v int) (string, error) {
		return "got:10", nil
	})
	v, err := chained.Await()
	require.NoError(t, err)
	assert.Equal(t, "got:10", v)
}

func TestThen_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	f := Failed[int](boom)
	chained := Then(f, func(v int) (string, error) {
		t.Fatal("fn must not run when f failed")
		return "", nil
	})
	_, err := chained.Await()
	assert.ErrorIs(t, err, boom)
}

func TestFlatThen_UnwrapsInnerFuture(t *testing.T) {
	f := Resolved(5)
	chained := FlatThen(f, func(v int) *Future[int] {
		return Resolved(v * 2)
	})
	v, err := chained.Await()
	require.NoError(t, err)
	assert.Equal(t, 10, v)
}
