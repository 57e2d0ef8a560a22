package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merabestie-backend/internal/domain"
)

func TestMemoryOrderStoreUniqueTrackingID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryOrderStore()

	require.NoError(t, store.Insert(ctx, &domain.Order{OrderID: "111111", TrackingID: "ABC"}))
	err := store.Insert(ctx, &domain.Order{OrderID: "222222", TrackingID: "ABC"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	orders, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestMemoryOrderStoreTransitionIsCompareAndSet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryOrderStore()
	require.NoError(t, store.Insert(ctx, &domain.Order{OrderID: "111111", TrackingID: "A", Status: domain.StatusCreated}))

	won, err := store.Transition(ctx, "111111", domain.StatusCreated, domain.StatusNotified)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = store.Transition(ctx, "111111", domain.StatusCreated, domain.StatusNotified)
	require.NoError(t, err)
	assert.False(t, won)

	applied, _ := store.MarkStockApplied(ctx, "111111")
	assert.True(t, applied)
	applied, _ = store.MarkStockApplied(ctx, "111111")
	assert.False(t, applied)
}

func TestMemoryOrderStoreListStale(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryOrderStore()
	require.NoError(t, store.Insert(ctx, &domain.Order{OrderID: "1", TrackingID: "A", Status: domain.StatusCreated}))
	require.NoError(t, store.Insert(ctx, &domain.Order{OrderID: "2", TrackingID: "B", Status: domain.StatusCreated}))
	require.NoError(t, store.Insert(ctx, &domain.Order{OrderID: "3", TrackingID: "C", Status: domain.StatusComplete}))
	store.Backdate("1", time.Hour)
	store.Backdate("3", time.Hour)

	stale, err := store.ListStale(ctx, domain.StatusCreated, time.Now().Add(-time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "1", stale[0].OrderID)
}

func TestMemoryCartStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCartStore()

	_, err := store.Get(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Push(ctx, "u1", domain.CartEntry{ProductID: "p1", Quantity: 1})
	require.NoError(t, err)
	cart, err := store.Push(ctx, "u1", domain.CartEntry{ProductID: "p1", Quantity: 1})
	require.NoError(t, err)
	assert.Len(t, cart.ProductsInCart, 2)

	require.NoError(t, store.SetQuantity(ctx, "u1", "p1", 5))
	cart, _ = store.Get(ctx, "u1")
	assert.Equal(t, 5, cart.ProductsInCart[0].Quantity)
	assert.Equal(t, 1, cart.ProductsInCart[1].Quantity)

	assert.ErrorIs(t, store.SetQuantity(ctx, "u1", "missing", 5), ErrNotFound)

	removed, err := store.Pull(ctx, "u1", "p1")
	require.NoError(t, err)
	assert.True(t, removed)
	cart, _ = store.Get(ctx, "u1")
	assert.Empty(t, cart.ProductsInCart)

	removed, _ = store.Pull(ctx, "u1", "p1")
	assert.False(t, removed)
}

func TestMemoryProductStoreFindByIDsSkipsMalformed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryProductStore()
	p := &domain.Product{Name: "Mug", Price: 10}
	require.NoError(t, store.Create(ctx, p))

	found, err := store.FindByIDs(ctx, []string{p.ID.Hex(), "not-an-id", p.ID.Hex()})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Mug", found[0].Name)

	require.NoError(t, store.AdjustStock(ctx, p.ID.Hex(), 2))
	got, _ := store.GetByID(ctx, p.ID.Hex())
	assert.Equal(t, -2, got.InStockValue)
	assert.Equal(t, 2, got.SoldStockValue)
}

func TestMemoryUserStoreUniqueEmail(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryUserStore()
	require.NoError(t, store.Create(ctx, &domain.User{UserID: "a", Email: "x@example.com", Password: "secret"}))
	assert.ErrorIs(t, store.Create(ctx, &domain.User{UserID: "b", Email: "x@example.com"}), ErrDuplicateKey)

	users, _ := store.List(ctx)
	require.Len(t, users, 1)
	assert.Empty(t, users[0].Password)
}
