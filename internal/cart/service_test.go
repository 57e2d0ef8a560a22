package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merabestie-backend/internal/apperr"
	"merabestie-backend/internal/domain"
	"merabestie-backend/internal/repository"
)

func newService() *Service {
	return NewService(repository.NewMemoryCartStore())
}

func TestAddAppendsWithoutMerging(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", "p1", 1)
	require.NoError(t, err)
	c, err := svc.Add(ctx, "u1", "p1", 2)
	require.NoError(t, err)

	assert.Equal(t, []domain.CartEntry{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p1", Quantity: 2},
	}, c.ProductsInCart)
	assert.Equal(t, "u1", c.UserID)
}

func TestAddValidation(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.Add(ctx, "", "p1", 1)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = svc.Add(ctx, "u1", " ", 1)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = svc.Add(ctx, "u1", "p1", 0)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestGet(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.Get(ctx, "u1")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = svc.Add(ctx, "u1", "p1", 1)
	require.NoError(t, err)
	c, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, c.ProductsInCart, 1)
}

func TestUpdateQuantity(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	err := svc.UpdateQuantity(ctx, "u1", "p1", 3)
	require.Error(t, err)
	assert.Equal(t, "Cart not found.", apperr.Message(err))

	_, err = svc.Add(ctx, "u1", "p1", 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "u1", "p1", 5)
	require.NoError(t, err)

	err = svc.UpdateQuantity(ctx, "u1", "p2", 3)
	require.Error(t, err)
	assert.Equal(t, "Product not found in the cart.", apperr.Message(err))

	require.NoError(t, svc.UpdateQuantity(ctx, "u1", "p1", 4))
	c, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, c.ProductsInCart[0].Quantity)
	assert.Equal(t, 5, c.ProductsInCart[1].Quantity, "only the first entry is overwritten")

	assert.True(t, apperr.Is(svc.UpdateQuantity(ctx, "u1", "p1", 0), apperr.KindValidation))
	assert.True(t, apperr.Is(svc.UpdateQuantity(ctx, "", "p1", 1), apperr.KindValidation))
}

func TestDeleteRemovesEveryEntry(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	for _, id := range []string{"p1", "p2", "p1"} {
		_, err := svc.Add(ctx, "u1", id, 1)
		require.NoError(t, err)
	}
	require.NoError(t, svc.Delete(ctx, "u1", "p1"))

	c, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []domain.CartEntry{{ProductID: "p2", Quantity: 1}}, c.ProductsInCart)

	err = svc.Delete(ctx, "u1", "p1")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	err = svc.Delete(ctx, "nobody", "p1")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	err = svc.Delete(ctx, "u1", "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestClear(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	assert.True(t, apperr.Is(svc.Clear(ctx, "u1"), apperr.KindNotFound))

	_, err := svc.Add(ctx, "u1", "p1", 1)
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, "u1"))

	c, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, c.ProductsInCart)
}
