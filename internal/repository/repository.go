// Package repository holds the document stores behind the storefront: the
// product catalog, user and seller directories, carts, the order ledger and
// saved addresses. Every store has a MongoDB implementation and an in-memory
// one with the same semantics.
package repository

import (
	"context"
	"errors"
	"time"

	"merabestie-backend/internal/domain"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

type ProductStore interface {
	Create(ctx context.Context, p *domain.Product) error
	List(ctx context.Context) ([]*domain.Product, error)
	ListByCategory(ctx context.Context, category string) ([]*domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	// FindByIDs resolves document ids in bulk. Ids that are malformed or
	// absent are simply missing from the result.
	FindByIDs(ctx context.Context, ids []string) ([]*domain.Product, error)
	UpdateVisibility(ctx context.Context, productID, visibility string) (*domain.Product, error)
	UpdateStock(ctx context.Context, productID string, inStock, sold int) (*domain.Product, error)
	SetDisplayID(ctx context.Context, id, productID string) (*domain.Product, error)
	// AdjustStock moves quantity from on-hand to sold.
	AdjustStock(ctx context.Context, id string, quantity int) error
}

type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByUserID(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsUserID(ctx context.Context, userID string) (bool, error)
	List(ctx context.Context) ([]*domain.User, error)
	SetAccountStatus(ctx context.Context, userID, status string) (*domain.User, error)
}

type SellerStore interface {
	Create(ctx context.Context, s *domain.Seller) error
	GetByEmail(ctx context.Context, email string) (*domain.Seller, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Seller, error)
	ExistsSellerID(ctx context.Context, sellerID string) (bool, error)
}

type CartStore interface {
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	// Push appends an entry, creating the cart when missing.
	Push(ctx context.Context, userID string, entry domain.CartEntry) (*domain.Cart, error)
	// SetQuantity overwrites the quantity of the first entry for productID.
	SetQuantity(ctx context.Context, userID, productID string, quantity int) error
	// Pull removes every entry for productID and reports whether the cart
	// changed.
	Pull(ctx context.Context, userID, productID string) (bool, error)
	Clear(ctx context.Context, userID string) error
}

type OrderStore interface {
	// Insert fails with ErrDuplicateKey when the tracking id or order id is
	// already taken.
	Insert(ctx context.Context, o *domain.Order) error
	ExistsOrderID(ctx context.Context, orderID string) (bool, error)
	GetByOrderID(ctx context.Context, orderID string) (*domain.Order, error)
	ListByUser(ctx context.Context, userRef string) ([]*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	// ListStale returns up to limit orders in status last updated before cutoff.
	ListStale(ctx context.Context, status domain.OrderStatus, cutoff time.Time, limit int) ([]*domain.Order, error)
	// Transition moves an order from one status to another and reports
	// whether this caller won the transition.
	Transition(ctx context.Context, orderID string, from, to domain.OrderStatus) (bool, error)
	RecordNotifyFailure(ctx context.Context, orderID string, cause string) error
	MarkStockApplied(ctx context.Context, orderID string) (bool, error)
}

type AddressStore interface {
	Upsert(ctx context.Context, userID, address string) (*domain.Address, error)
	Get(ctx context.Context, userID string) (*domain.Address, error)
}

// Stores bundles one implementation of every store.
type Stores struct {
	Products  ProductStore
	Users     UserStore
	Sellers   SellerStore
	Carts     CartStore
	Orders    OrderStore
	Addresses AddressStore
}
