package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"merabestie-backend/internal/domain"
)

// NewMemoryStores returns in-memory stores. Values are copied in and out so
// callers never share state with the store.
func NewMemoryStores() Stores {
	return Stores{
		Products:  NewMemoryProductStore(),
		Users:     NewMemoryUserStore(),
		Sellers:   NewMemorySellerStore(),
		Carts:     NewMemoryCartStore(),
		Orders:    NewMemoryOrderStore(),
		Addresses: NewMemoryAddressStore(),
	}
}

type MemoryProductStore struct {
	mu       sync.RWMutex
	products map[primitive.ObjectID]domain.Product
}

func NewMemoryProductStore() *MemoryProductStore {
	return &MemoryProductStore{products: make(map[primitive.ObjectID]domain.Product)}
}

func (s *MemoryProductStore) Create(_ context.Context, p *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if _, ok := s.products[p.ID]; ok {
		return ErrDuplicateKey
	}
	p.CreatedAt = time.Now()
	s.products[p.ID] = *p
	return nil
}

func (s *MemoryProductStore) collect(keep func(domain.Product) bool) []*domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*domain.Product{}
	for _, p := range s.products {
		if keep(p) {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *MemoryProductStore) List(context.Context) ([]*domain.Product, error) {
	return s.collect(func(domain.Product) bool { return true }), nil
}

func (s *MemoryProductStore) ListByCategory(_ context.Context, category string) ([]*domain.Product, error) {
	return s.collect(func(p domain.Product) bool { return p.Category == category }), nil
}

func (s *MemoryProductStore) GetByID(_ context.Context, id string) (*domain.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[oid]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryProductStore) FindByIDs(_ context.Context, ids []string) ([]*domain.Product, error) {
	wanted := make(map[primitive.ObjectID]struct{})
	for _, oid := range objectIDs(ids) {
		wanted[oid] = struct{}{}
	}
	return s.collect(func(p domain.Product) bool {
		_, ok := wanted[p.ID]
		return ok
	}), nil
}

func (s *MemoryProductStore) mutate(match func(domain.Product) bool, apply func(*domain.Product)) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.products {
		if match(p) {
			apply(&p)
			s.products[id] = p
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryProductStore) UpdateVisibility(_ context.Context, productID, visibility string) (*domain.Product, error) {
	return s.mutate(
		func(p domain.Product) bool { return p.ProductID == productID },
		func(p *domain.Product) { p.Visibility = visibility },
	)
}

func (s *MemoryProductStore) UpdateStock(_ context.Context, productID string, inStock, sold int) (*domain.Product, error) {
	return s.mutate(
		func(p domain.Product) bool { return p.ProductID == productID },
		func(p *domain.Product) { p.InStockValue, p.SoldStockValue = inStock, sold },
	)
}

func (s *MemoryProductStore) SetDisplayID(_ context.Context, id, productID string) (*domain.Product, error) {
	return s.mutate(
		func(p domain.Product) bool { return p.ID.Hex() == id },
		func(p *domain.Product) { p.ProductID = productID },
	)
}

func (s *MemoryProductStore) AdjustStock(_ context.Context, id string, quantity int) error {
	_, err := s.mutate(
		func(p domain.Product) bool { return p.ID.Hex() == id },
		func(p *domain.Product) {
			p.InStockValue -= quantity
			p.SoldStockValue += quantity
		},
	)
	return err
}

type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]domain.User // by userId
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]domain.User)}
}

func (s *MemoryUserStore) Create(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.UserID]; ok {
		return ErrDuplicateKey
	}
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return ErrDuplicateKey
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.CreatedAt = time.Now()
	s.users[u.UserID] = *u
	return nil
}

func (s *MemoryUserStore) GetByUserID(_ context.Context, userID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryUserStore) ExistsUserID(_ context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[userID]
	return ok, nil
}

func (s *MemoryUserStore) List(context.Context) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		u.Password = ""
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryUserStore) SetAccountStatus(_ context.Context, userID, status string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	u.AccountStatus = status
	s.users[userID] = u
	return &u, nil
}

type MemorySellerStore struct {
	mu      sync.RWMutex
	sellers map[string]domain.Seller // by sellerId
}

func NewMemorySellerStore() *MemorySellerStore {
	return &MemorySellerStore{sellers: make(map[string]domain.Seller)}
}

func (s *MemorySellerStore) Create(_ context.Context, seller *domain.Seller) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sellers[seller.SellerID]; ok {
		return ErrDuplicateKey
	}
	for _, existing := range s.sellers {
		if existing.Email == seller.Email {
			return ErrDuplicateKey
		}
	}
	if seller.ID.IsZero() {
		seller.ID = primitive.NewObjectID()
	}
	seller.CreatedAt = time.Now()
	s.sellers[seller.SellerID] = *seller
	return nil
}

func (s *MemorySellerStore) find(match func(domain.Seller) bool) (*domain.Seller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, seller := range s.sellers {
		if match(seller) {
			return &seller, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemorySellerStore) GetByEmail(_ context.Context, email string) (*domain.Seller, error) {
	return s.find(func(seller domain.Seller) bool { return seller.Email == email })
}

func (s *MemorySellerStore) GetByPhone(_ context.Context, phone string) (*domain.Seller, error) {
	return s.find(func(seller domain.Seller) bool { return seller.PhoneNumber == phone })
}

func (s *MemorySellerStore) ExistsSellerID(_ context.Context, sellerID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sellers[sellerID]
	return ok, nil
}

type MemoryCartStore struct {
	mu    sync.RWMutex
	carts map[string]domain.Cart
}

func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: make(map[string]domain.Cart)}
}

func copyCart(c domain.Cart) *domain.Cart {
	entries := make([]domain.CartEntry, len(c.ProductsInCart))
	copy(entries, c.ProductsInCart)
	c.ProductsInCart = entries
	return &c
}

func (s *MemoryCartStore) Get(_ context.Context, userID string) (*domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return copyCart(c), nil
}

func (s *MemoryCartStore) Push(_ context.Context, userID string, entry domain.CartEntry) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		c = domain.Cart{ID: primitive.NewObjectID(), UserID: userID}
	}
	c.ProductsInCart = append(copyCart(c).ProductsInCart, entry)
	s.carts[userID] = c
	return copyCart(c), nil
}

func (s *MemoryCartStore) SetQuantity(_ context.Context, userID, productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		return ErrNotFound
	}
	for i := range c.ProductsInCart {
		if c.ProductsInCart[i].ProductID == productID {
			c = *copyCart(c)
			c.ProductsInCart[i].Quantity = quantity
			s.carts[userID] = c
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryCartStore) Pull(_ context.Context, userID, productID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		return false, nil
	}
	kept := make([]domain.CartEntry, 0, len(c.ProductsInCart))
	for _, e := range c.ProductsInCart {
		if e.ProductID != productID {
			kept = append(kept, e)
		}
	}
	removed := len(kept) != len(c.ProductsInCart)
	c.ProductsInCart = kept
	s.carts[userID] = c
	return removed, nil
}

func (s *MemoryCartStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		return ErrNotFound
	}
	c.ProductsInCart = []domain.CartEntry{}
	s.carts[userID] = c
	return nil
}

type MemoryOrderStore struct {
	mu     sync.RWMutex
	orders []domain.Order
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{}
}

func copyOrder(o domain.Order) *domain.Order {
	lines := make([]domain.OrderLine, len(o.ProductsOrdered))
	copy(lines, o.ProductsOrdered)
	o.ProductsOrdered = lines
	return &o
}

func (s *MemoryOrderStore) Insert(_ context.Context, o *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.orders {
		if existing.TrackingID == o.TrackingID || existing.OrderID == o.OrderID {
			return ErrDuplicateKey
		}
	}
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	now := time.Now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	s.orders = append(s.orders, *copyOrder(*o))
	return nil
}

func (s *MemoryOrderStore) index(orderID string) int {
	for i := range s.orders {
		if s.orders[i].OrderID == orderID {
			return i
		}
	}
	return -1
}

func (s *MemoryOrderStore) ExistsOrderID(_ context.Context, orderID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index(orderID) >= 0, nil
}

func (s *MemoryOrderStore) GetByOrderID(_ context.Context, orderID string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.index(orderID)
	if i < 0 {
		return nil, ErrNotFound
	}
	return copyOrder(s.orders[i]), nil
}

func (s *MemoryOrderStore) filter(keep func(domain.Order) bool) []*domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*domain.Order{}
	for i := len(s.orders) - 1; i >= 0; i-- {
		if keep(s.orders[i]) {
			out = append(out, copyOrder(s.orders[i]))
		}
	}
	return out
}

func (s *MemoryOrderStore) ListByUser(_ context.Context, userRef string) ([]*domain.Order, error) {
	return s.filter(func(o domain.Order) bool { return o.UserID == userRef }), nil
}

func (s *MemoryOrderStore) List(context.Context) ([]*domain.Order, error) {
	return s.filter(func(domain.Order) bool { return true }), nil
}

func (s *MemoryOrderStore) ListStale(_ context.Context, status domain.OrderStatus, cutoff time.Time, limit int) ([]*domain.Order, error) {
	out := s.filter(func(o domain.Order) bool { return o.Status == status && o.UpdatedAt.Before(cutoff) })
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryOrderStore) Transition(_ context.Context, orderID string, from, to domain.OrderStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(orderID)
	if i < 0 || s.orders[i].Status != from {
		return false, nil
	}
	s.orders[i].Status = to
	s.orders[i].UpdatedAt = time.Now()
	return true, nil
}

func (s *MemoryOrderStore) RecordNotifyFailure(_ context.Context, orderID string, cause string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(orderID)
	if i < 0 {
		return ErrNotFound
	}
	s.orders[i].NotifyAttempts++
	s.orders[i].LastNotifyError = cause
	s.orders[i].UpdatedAt = time.Now()
	return nil
}

func (s *MemoryOrderStore) MarkStockApplied(_ context.Context, orderID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(orderID)
	if i < 0 || s.orders[i].StockApplied {
		return false, nil
	}
	s.orders[i].StockApplied = true
	s.orders[i].UpdatedAt = time.Now()
	return true, nil
}

// Backdate shifts an order's UpdatedAt into the past. Tests use it to make
// orders eligible for reconciliation without sleeping.
func (s *MemoryOrderStore) Backdate(orderID string, by time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(orderID); i >= 0 {
		s.orders[i].UpdatedAt = s.orders[i].UpdatedAt.Add(-by)
	}
}

type MemoryAddressStore struct {
	mu        sync.RWMutex
	addresses map[string]domain.Address
}

func NewMemoryAddressStore() *MemoryAddressStore {
	return &MemoryAddressStore{addresses: make(map[string]domain.Address)}
}

func (s *MemoryAddressStore) Upsert(_ context.Context, userID, address string) (*domain.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.addresses[userID]
	if !ok {
		a = domain.Address{ID: primitive.NewObjectID(), UserID: userID}
	}
	a.Address = address
	s.addresses[userID] = a
	return &a, nil
}

func (s *MemoryAddressStore) Get(_ context.Context, userID string) (*domain.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.addresses[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}
