// Package cart manages per-user shopping carts. A cart is a list of entries,
// not a map: adding the same product twice leaves two entries.
package cart

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"merabestie-backend/internal/apperr"
	"merabestie-backend/internal/domain"
	"merabestie-backend/internal/repository"
)

type Service struct {
	carts repository.CartStore
}

func NewService(carts repository.CartStore) *Service {
	return &Service{carts: carts}
}

func required(op, userID, productID string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(productID) == "" {
		return apperr.Validation(op, "userId and productId are required.")
	}
	return nil
}

// Add appends an entry, creating the cart on first use.
func (s *Service) Add(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	const op = "cart.Add"
	if err := required(op, userID, productID); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, apperr.Validation(op, "quantity must be at least 1")
	}

	c, err := s.carts.Push(ctx, userID, domain.CartEntry{ProductID: productID, Quantity: quantity})
	if err != nil {
		return nil, apperr.Wrapf(apperr.KindPersistence, op, err, "Error adding product to cart")
	}
	zap.L().Debug("cart entry added",
		zap.String("userId", userID),
		zap.String("productId", productID),
		zap.Int("quantity", quantity))
	return c, nil
}

func (s *Service) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	const op = "cart.Get"
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.Validation(op, "userId required")
	}
	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(op, "Cart not found for this user")
		}
		return nil, apperr.Wrapf(apperr.KindPersistence, op, err, "Error fetching cart")
	}
	return c, nil
}

// UpdateQuantity overwrites the quantity of the first entry for productID.
func (s *Service) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) error {
	const op = "cart.UpdateQuantity"
	if err := required(op, userID, productID); err != nil {
		return err
	}
	if quantity < 1 {
		return apperr.Validation(op, "productQty must be at least 1")
	}

	if _, err := s.carts.Get(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound(op, "Cart not found.")
		}
		return apperr.Wrapf(apperr.KindPersistence, op, err, "An error occurred while updating the quantity.")
	}
	if err := s.carts.SetQuantity(ctx, userID, productID, quantity); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound(op, "Product not found in the cart.")
		}
		return apperr.Wrapf(apperr.KindPersistence, op, err, "An error occurred while updating the quantity.")
	}
	return nil
}

// Delete removes every entry for productID.
func (s *Service) Delete(ctx context.Context, userID, productID string) error {
	const op = "cart.Delete"
	if err := required(op, userID, productID); err != nil {
		return err
	}
	removed, err := s.carts.Pull(ctx, userID, productID)
	if err != nil {
		return apperr.Wrapf(apperr.KindPersistence, op, err, "An error occurred while deleting the item.")
	}
	if !removed {
		return apperr.NotFound(op, "Item not found in the cart.")
	}
	return nil
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	const op = "cart.Clear"
	if strings.TrimSpace(userID) == "" {
		return apperr.Validation(op, "userId required")
	}
	if err := s.carts.Clear(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound(op, "Cart not found for this user")
		}
		return apperr.Wrapf(apperr.KindPersistence, op, err, "Error clearing cart")
	}
	return nil
}
