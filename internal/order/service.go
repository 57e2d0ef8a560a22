// Package order places orders and looks them up again.
//
// Placement runs as a small saga: the order is persisted in status created,
// the confirmation email moves it to notified, and the completion step (which
// optionally moves stock from on-hand to sold) moves it to complete. A failed
// email leaves the order in created; the Reconciler retries it later.
package order

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"merabestie-backend/internal/apperr"
	"merabestie-backend/internal/domain"
	"merabestie-backend/internal/mailer"
	"merabestie-backend/internal/repository"
	"merabestie-backend/internal/shortcode"
)

type Options struct {
	// TrackingRetries is how many extra tracking ids are tried after a
	// uniqueness violation. Zero fails on the first collision.
	TrackingRetries   int
	MaxNotifyAttempts int
	DecrementStock    bool
	OrderIDs          shortcode.Generator
	TrackingIDs       shortcode.Generator
}

func DefaultOptions() Options {
	return Options{
		TrackingRetries:   shortcode.TrackingID.MaxAttempts,
		MaxNotifyAttempts: 5,
		OrderIDs:          shortcode.OrderID,
		TrackingIDs:       shortcode.TrackingID,
	}
}

type Service struct {
	users    repository.UserStore
	products repository.ProductStore
	orders   repository.OrderStore
	sender   mailer.Sender
	opts     Options
}

func NewService(stores repository.Stores, sender mailer.Sender, opts Options) *Service {
	if opts.OrderIDs.Alphabet == "" {
		opts.OrderIDs = shortcode.OrderID
	}
	if opts.TrackingIDs.Alphabet == "" {
		opts.TrackingIDs = shortcode.TrackingID
	}
	if opts.MaxNotifyAttempts < 1 {
		opts.MaxNotifyAttempts = 1
	}
	return &Service{
		users:    stores.Users,
		products: stores.Products,
		orders:   stores.Orders,
		sender:   sender,
		opts:     opts,
	}
}

// Placement is the outcome of a successful PlaceOrder. The order is always
// persisted; NotifyErr is set when the confirmation could not be sent yet.
type Placement struct {
	Order     *domain.Order
	NotifyErr error
}

func (p *Placement) NotificationPending() bool { return p.NotifyErr != nil }

// PlaceOrder validates req, resolves the user and every product, persists the
// order and sends the confirmation email.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Placement, error) {
	const op = "order.PlaceOrder"

	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUserID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			zap.L().Info("place order: user not found", zap.String("userId", req.UserID))
			return nil, apperr.NotFound(op, "User not found")
		}
		return nil, apperr.Wrapf(apperr.KindPersistence, op, err, "failed to resolve user")
	}
	if user.AccountStatus == domain.AccountClosed {
		return nil, apperr.Forbidden(op, "Account is closed")
	}

	lines := make([]domain.OrderLine, len(req.ProductsOrdered))
	for i, line := range req.ProductsOrdered {
		line.ProductID = canonicalProductID(line.ProductID)
		lines[i] = line
	}

	catalog, err := s.resolveProducts(ctx, lines)
	if err != nil {
		return nil, err
	}

	total := computeTotal(lines, catalog)
	if req.Price != 0 && !decimal.NewFromFloat(req.Price).Equal(decimal.NewFromFloat(total)) {
		zap.L().Warn("client price differs from catalog total",
			zap.String("userId", req.UserID),
			zap.Float64("clientPrice", req.Price),
			zap.Float64("computedPrice", total))
	}

	order := &domain.Order{
		UserID:          user.ID.Hex(),
		Date:            req.Date,
		Time:            req.Time,
		Address:         req.Address,
		Email:           user.Email,
		Name:            user.Name,
		ProductsOrdered: lines,
		Price:           total,
		Status:          domain.StatusCreated,
	}
	if err := s.insert(ctx, order); err != nil {
		return nil, err
	}
	zap.L().Info("order saved",
		zap.String("orderId", order.OrderID),
		zap.String("trackingId", order.TrackingID),
		zap.String("userId", req.UserID),
		zap.Float64("price", order.Price))

	placement := &Placement{Order: order}
	if err := s.notify(ctx, order, catalog); err != nil {
		placement.NotifyErr = err
		return placement, nil
	}
	s.complete(ctx, order)
	return placement, nil
}

// canonicalProductID lowercases a hex object id so it matches the keys built
// from ObjectID.Hex. Anything that is not an object id is returned unchanged
// and later reported as not found.
func canonicalProductID(id string) string {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return id
	}
	return oid.Hex()
}

// resolveProducts loads every referenced product in one query and fails when
// any reference does not resolve.
func (s *Service) resolveProducts(ctx context.Context, lines []domain.OrderLine) (map[string]*domain.Product, error) {
	const op = "order.resolveProducts"

	ids := make([]string, len(lines))
	for i, line := range lines {
		ids[i] = line.ProductID
	}
	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Wrapf(apperr.KindPersistence, op, err, "failed to load products")
	}

	catalog := make(map[string]*domain.Product, len(found))
	for _, p := range found {
		catalog[p.ID.Hex()] = p
	}
	var missing []string
	for _, id := range ids {
		if _, ok := catalog[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		zap.L().Info("place order: products not found", zap.Strings("productIds", missing))
		return nil, apperr.NotFound(op, "Some products not found: "+strings.Join(missing, ", "))
	}
	return catalog, nil
}

func computeTotal(lines []domain.OrderLine, catalog map[string]*domain.Product) float64 {
	total := decimal.Zero
	for _, line := range lines {
		price := decimal.NewFromFloat(catalog[line.ProductID].Price)
		total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	f, _ := total.Round(2).Float64()
	return f
}

// insert assigns identifiers and writes the order. The order id is checked
// against the ledger before use; the tracking id relies on the unique index
// and is regenerated on a collision, up to TrackingRetries times.
func (s *Service) insert(ctx context.Context, order *domain.Order) error {
	const op = "order.insert"

	attempts := s.opts.TrackingRetries + 1
	for attempt := 1; ; attempt++ {
		orderID, err := s.opts.OrderIDs.Unique(ctx, s.orders.ExistsOrderID)
		if err != nil {
			if errors.Is(err, shortcode.ErrExhausted) {
				return apperr.Wrapf(apperr.KindConflict, op, err, "could not allocate an order id")
			}
			return apperr.Wrapf(apperr.KindPersistence, op, err, "failed to allocate an order id")
		}
		order.OrderID = orderID
		order.TrackingID = s.opts.TrackingIDs.Next()

		err = s.orders.Insert(ctx, order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicateKey) {
			return apperr.Wrapf(apperr.KindPersistence, op, err, "Error placing order")
		}
		zap.L().Warn("order identifier collision",
			zap.String("orderId", order.OrderID),
			zap.String("trackingId", order.TrackingID),
			zap.Int("attempt", attempt))
		if attempt >= attempts {
			return apperr.Wrapf(apperr.KindConflict, op, err, "tracking id collision, order not placed")
		}
	}
}

// notify sends the confirmation and moves the order to notified. Failures are
// recorded on the order so the reconciler can retry.
func (s *Service) notify(ctx context.Context, order *domain.Order, catalog map[string]*domain.Product) error {
	const op = "order.notify"

	msg, err := mailer.OrderConfirmation(confirmationFor(order, catalog))
	if err == nil {
		err = s.sender.Send(ctx, msg)
	}
	if err != nil {
		zap.L().Error("order confirmation not sent",
			zap.String("orderId", order.OrderID),
			zap.String("email", order.Email),
			zap.Error(err))
		if rerr := s.orders.RecordNotifyFailure(ctx, order.OrderID, err.Error()); rerr != nil {
			zap.L().Error("failed to record notify failure", zap.String("orderId", order.OrderID), zap.Error(rerr))
		}
		order.NotifyAttempts++
		order.LastNotifyError = err.Error()
		return apperr.Wrap(apperr.KindNotification, op, err)
	}

	moved, err := s.orders.Transition(ctx, order.OrderID, domain.StatusCreated, domain.StatusNotified)
	if err != nil {
		zap.L().Error("failed to mark order notified", zap.String("orderId", order.OrderID), zap.Error(err))
		return nil
	}
	if moved {
		order.Status = domain.StatusNotified
	}
	return nil
}

// complete runs the last step for a notified order. The stock move is guarded
// by a flag on the order so it happens at most once.
func (s *Service) complete(ctx context.Context, order *domain.Order) {
	if s.opts.DecrementStock {
		won, err := s.orders.MarkStockApplied(ctx, order.OrderID)
		if err != nil {
			zap.L().Error("failed to claim stock step", zap.String("orderId", order.OrderID), zap.Error(err))
			return
		}
		if won {
			order.StockApplied = true
			for _, line := range order.ProductsOrdered {
				if err := s.products.AdjustStock(ctx, line.ProductID, line.Quantity); err != nil {
					zap.L().Error("failed to adjust stock",
						zap.String("orderId", order.OrderID),
						zap.String("productId", line.ProductID),
						zap.Error(err))
				}
			}
		}
	}

	moved, err := s.orders.Transition(ctx, order.OrderID, domain.StatusNotified, domain.StatusComplete)
	if err != nil {
		zap.L().Error("failed to complete order", zap.String("orderId", order.OrderID), zap.Error(err))
		return
	}
	if moved {
		order.Status = domain.StatusComplete
	}
}

func confirmationFor(order *domain.Order, catalog map[string]*domain.Product) mailer.OrderEmail {
	email := mailer.OrderEmail{
		CustomerName: order.Name,
		Email:        order.Email,
		OrderID:      order.OrderID,
		TrackingID:   order.TrackingID,
		Date:         order.Date,
		Time:         order.Time,
		Address:      order.Address,
		Price:        order.Price,
	}
	for _, line := range order.ProductsOrdered {
		l := mailer.OrderEmailLine{ProductID: line.ProductID, Quantity: line.Quantity, ProductName: "(unavailable)"}
		if p, ok := catalog[canonicalProductID(line.ProductID)]; ok {
			l.ProductName = p.Name
			l.UnitPrice = p.Price
		}
		email.Lines = append(email.Lines, l)
	}
	return email
}

// ListAll returns every order in the ledger, newest first.
func (s *Service) ListAll(ctx context.Context) ([]*domain.Order, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, apperr.Wrapf(apperr.KindPersistence, "order.ListAll", err, "Error fetching orders")
	}
	return orders, nil
}
