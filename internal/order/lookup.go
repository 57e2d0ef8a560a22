package order

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"merabestie-backend/internal/apperr"
	"merabestie-backend/internal/domain"
	"merabestie-backend/internal/repository"
)

const hydrateConcurrency = 8

// OrderedProduct is a catalog product as it stands now, plus the quantity the
// order asked for.
type OrderedProduct struct {
	domain.Product
	Quantity int `json:"quantity"`
}

// UnresolvedProduct is an order line whose product could not be loaded.
type UnresolvedProduct struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"`
}

// OrderView is an order with its product lines resolved against the catalog.
// Products and Unresolved together account for every line of the order.
type OrderView struct {
	domain.Order
	Products   []OrderedProduct    `json:"products"`
	Unresolved []UnresolvedProduct `json:"unresolved"`
}

// Complete reports whether every line resolved.
func (v OrderView) Complete() bool { return len(v.Unresolved) == 0 }

// FindMyOrders returns every order of the user with the given external id,
// each hydrated with its products.
func (s *Service) FindMyOrders(ctx context.Context, userID string) ([]OrderView, error) {
	const op = "order.FindMyOrders"

	if strings.TrimSpace(userID) == "" {
		return nil, apperr.Validation(op, "User ID is required")
	}
	user, err := s.users.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(op, "User not found")
		}
		return nil, apperr.Wrapf(apperr.KindPersistence, op, err, "Error finding orders")
	}

	orders, err := s.orders.ListByUser(ctx, user.ID.Hex())
	if err != nil {
		return nil, apperr.Wrapf(apperr.KindPersistence, op, err, "Error finding orders")
	}

	views := make([]OrderView, len(orders))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(hydrateConcurrency)
	for i, o := range orders {
		g.Go(func() error {
			views[i] = s.hydrate(gctx, o)
			return nil
		})
	}
	_ = g.Wait()
	return views, nil
}

// hydrate resolves each line of o on its own so one bad reference does not
// hide the rest of the order.
func (s *Service) hydrate(ctx context.Context, o *domain.Order) OrderView {
	view := OrderView{
		Order:      *o,
		Products:   []OrderedProduct{},
		Unresolved: []UnresolvedProduct{},
	}
	for _, line := range o.ProductsOrdered {
		p, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			reason := "not found"
			if !errors.Is(err, repository.ErrNotFound) {
				reason = err.Error()
			}
			zap.L().Warn("order line did not resolve",
				zap.String("orderId", o.OrderID),
				zap.String("productId", line.ProductID),
				zap.Error(err))
			view.Unresolved = append(view.Unresolved, UnresolvedProduct{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Reason:    reason,
			})
			continue
		}
		view.Products = append(view.Products, OrderedProduct{Product: *p, Quantity: line.Quantity})
	}
	return view
}
