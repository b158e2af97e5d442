package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasklist/tasklist/internal/metrics"
	"github.com/tasklist/tasklist/internal/testutil"
)

const (
	alice int64 = 1
	bob   int64 = 2
)

func newTodoService(t *testing.T) (*TodoService, *testutil.MemoryStore, *metrics.InMemoryRecorder) {
	t.Helper()
	store := testutil.NewMemoryStore()
	rec := metrics.NewInMemory()
	return NewTodoService(store, rec), store, rec
}

func TestTodoCreate_TrimsAndValidates(t *testing.T) {
	svc, store, _ := newTodoService(t)
	ctx := context.Background()

	todo, err := svc.Create(ctx, alice, "  Buy milk \n")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", todo.Content)
	assert.Equal(t, alice, todo.UserID)
	assert.False(t, todo.CreatedAt.IsZero())

	_, err = svc.Create(ctx, alice, "   ")
	assert.ErrorIs(t, err, ErrContentRequired)

	_, err = svc.Create(ctx, alice, strings.Repeat("x", 201))
	assert.ErrorIs(t, err, ErrContentTooLong)

	_, err = svc.Create(ctx, alice, strings.Repeat("é", 200))
	assert.NoError(t, err, "limit counts characters, not bytes")

	assert.Equal(t, 2, store.TodoCount())
}

func TestTodoList_NewestFirstAndScoped(t *testing.T) {
	svc, store, _ := newTodoService(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return base })

	first, err := svc.Create(ctx, alice, "first")
	require.NoError(t, err)
	second, err := svc.Create(ctx, alice, "second, same timestamp")
	require.NoError(t, err)

	store.SetClock(func() time.Time { return base.Add(time.Minute) })
	third, err := svc.Create(ctx, alice, "third")
	require.NoError(t, err)

	_, err = svc.Create(ctx, bob, "bob's")
	require.NoError(t, err)

	list, err := svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{third.ID, second.ID, first.ID}, []int64{list[0].ID, list[1].ID, list[2].ID})

	bobs, err := svc.List(ctx, bob)
	require.NoError(t, err)
	require.Len(t, bobs, 1)
	assert.Equal(t, "bob's", bobs[0].Content)
}

func TestTodoUpdate_Ownership(t *testing.T) {
	svc, _, rec := newTodoService(t)
	ctx := context.Background()

	todo, err := svc.Create(ctx, alice, "Old")
	require.NoError(t, err)

	_, err = svc.UpdateContent(ctx, todo.ID, bob, "Hijacked")
	require.ErrorIs(t, err, ErrNotOwner)

	_, err = svc.UpdateContent(ctx, todo.ID, bob, "")
	require.ErrorIs(t, err, ErrNotOwner, "ownership is checked before content rules")

	_, err = svc.UpdateContent(ctx, 999, alice, "New")
	require.ErrorIs(t, err, ErrTodoNotFound)

	stored, err := svc.Get(ctx, todo.ID)
	require.NoError(t, err)
	assert.Equal(t, "Old", stored.Content)

	updated, err := svc.UpdateContent(ctx, todo.ID, alice, "New")
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Content)
	assert.Equal(t, todo.ID, updated.ID)
	assert.Equal(t, todo.CreatedAt, updated.CreatedAt)
	assert.Equal(t, alice, updated.UserID)

	again, err := svc.UpdateContent(ctx, todo.ID, alice, "New")
	require.NoError(t, err)
	assert.Equal(t, "New", again.Content)

	_, err = svc.UpdateContent(ctx, todo.ID, alice, " ")
	require.ErrorIs(t, err, ErrContentRequired)

	s := rec.Snapshot()
	assert.Equal(t, uint64(2), s.OwnershipDenied["update"])
	assert.Equal(t, uint64(2), s.TodosUpdated)
}

func TestTodoDelete_OwnershipAndIdempotence(t *testing.T) {
	svc, store, rec := newTodoService(t)
	ctx := context.Background()

	todo, err := svc.Create(ctx, alice, "Buy milk")
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, todo.ID, bob), ErrNotOwner)
	assert.Equal(t, 1, store.TodoCount())

	require.NoError(t, svc.Delete(ctx, todo.ID, alice))
	assert.Equal(t, 0, store.TodoCount())

	require.ErrorIs(t, svc.Delete(ctx, todo.ID, alice), ErrTodoNotFound)

	s := rec.Snapshot()
	assert.Equal(t, uint64(1), s.TodosDeleted)
	assert.Equal(t, uint64(1), s.OwnershipDenied["delete"])
}

func TestTodoGetOwned(t *testing.T) {
	svc, _, _ := newTodoService(t)
	ctx := context.Background()

	todo, err := svc.Create(ctx, alice, "mine")
	require.NoError(t, err)

	got, err := svc.GetOwned(ctx, todo.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Content)

	_, err = svc.GetOwned(ctx, todo.ID, bob)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, err = svc.GetOwned(ctx, 42, alice)
	assert.ErrorIs(t, err, ErrTodoNotFound)
}
