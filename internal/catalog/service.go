// Package catalog manages products: creation, listing, visibility, stock
// counters and the short display ids sellers use to refer to products.
package catalog

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"merabestie-backend/internal/apperr"
	"merabestie-backend/internal/domain"
	"merabestie-backend/internal/repository"
	"merabestie-backend/internal/shortcode"
)

// categoryAliases maps lowercased storefront slugs to stored category names.
var categoryAliases = map[string]string{
	"gift-boxes": "Gift Boxes",
	"gift boxes": "Gift Boxes",
	"books":      "Books",
	"stationery": "Stationery",
}

// NormalizeCategory resolves a known alias; anything else is returned as is.
func NormalizeCategory(category string) string {
	if name, ok := categoryAliases[strings.ToLower(strings.TrimSpace(category))]; ok {
		return name
	}
	return category
}

type Service struct {
	products   repository.ProductStore
	displayIDs shortcode.Generator
}

func NewService(products repository.ProductStore) *Service {
	return &Service{products: products, displayIDs: shortcode.ProductDisplayID}
}

// WithDisplayIDs replaces the display id generator.
func (s *Service) WithDisplayIDs(g shortcode.Generator) *Service {
	s.displayIDs = g
	return s
}

type CreateProductRequest struct {
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Price          float64 `json:"price"`
	Category       string  `json:"category"`
	Image          string  `json:"img"`
	Rating         float64 `json:"rating"`
	InStockValue   int     `json:"inStockValue"`
	SoldStockValue int     `json:"soldStockValue"`
	Visibility     string  `json:"visibility"`
	ProductID      string  `json:"productId"`
}

func (s *Service) Create(ctx context.Context, req CreateProductRequest) (*domain.Product, error) {
	const op = "catalog.Create"
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperr.Validation(op, "name is required")
	}
	if req.Price < 0 {
		return nil, apperr.Validation(op, "price must not be negative")
	}
	if req.InStockValue < 0 || req.SoldStockValue < 0 {
		return nil, apperr.Validation(op, "stock values must not be negative")
	}
	vis, err := visibility(op, req.Visibility)
	if err != nil {
		return nil, err
	}

	p := &domain.Product{
		ProductID:      req.ProductID,
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		Price:          req.Price,
		Category:       req.Category,
		Image:          req.Image,
		Rating:         req.Rating,
		InStockValue:   req.InStockValue,
		SoldStockValue: req.SoldStockValue,
		Visibility:     vis,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, apperr.Wrapf(apperr.KindPersistence, op, err, "Error creating product")
	}
	return p, nil
}

func visibility(op, v string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", domain.VisibilityOn:
		return domain.VisibilityOn, nil
	case domain.VisibilityOff:
		return domain.VisibilityOff, nil
	}
	return "", apperr.Validation(op, `visibility must be "on" or "off"`)
}

func (s *Service) List(ctx context.Context) ([]*domain.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, apperr.Wrapf(apperr.KindPersistence, "catalog.List", err, "Error fetching products")
	}
	return products, nil
}

// Get looks a product up by its document id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	const op = "catalog.Get"
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(op, "Product not found")
		}
		return nil, apperr.Wrapf(apperr.KindPersistence, op, err, "Error fetching product")
	}
	return p, nil
}

func (s *Service) ByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	const op = "catalog.ByCategory"
	if strings.TrimSpace(category) == "" {
		return nil, apperr.Validation(op, "category is required")
	}
	products, err := s.products.ListByCategory(ctx, NormalizeCategory(category))
	if err != nil {
		return nil, apperr.Wrapf(apperr.KindPersistence, op, err, "Error fetching products by category")
	}
	return products, nil
}

// UpdateVisibility addresses the product by display id.
func (s *Service) UpdateVisibility(ctx context.Context, productID, vis string) (*domain.Product, error) {
	const op = "catalog.UpdateVisibility"
	if strings.TrimSpace(productID) == "" {
		return nil, apperr.Validation(op, "productId is required")
	}
	if strings.TrimSpace(vis) == "" {
		return nil, apperr.Validation(op, "visibility is required")
	}
	v, err := visibility(op, vis)
	if err != nil {
		return nil, err
	}
	p, err := s.products.UpdateVisibility(ctx, productID, v)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(op, "Product not found")
		}
		return nil, apperr.Wrapf(apperr.KindPersistence, op, err, "Error updating product visibility")
	}
	return p, nil
}

// UpdateStock overwrites both counters of the product with the display id.
func (s *Service) UpdateStock(ctx context.Context, productID string, inStock, sold int) (*domain.Product, error) {
	const op = "catalog.UpdateStock"
	if strings.TrimSpace(productID) == "" {
		return nil, apperr.Validation(op, "productId is required")
	}
	if inStock < 0 || sold < 0 {
		return nil, apperr.Validation(op, "stock values must not be negative")
	}
	p, err := s.products.UpdateStock(ctx, productID, inStock, sold)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(op, "Product not found")
		}
		return nil, apperr.Wrapf(apperr.KindPersistence, op, err, "Error updating stock status")
	}
	return p, nil
}

// AssignDisplayIDs gives every product a fresh display id, unique within
// the batch. Products that fail to update are logged and left out of the
// result.
func (s *Service) AssignDisplayIDs(ctx context.Context) ([]*domain.Product, error) {
	const op = "catalog.AssignDisplayIDs"
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, apperr.Wrapf(apperr.KindPersistence, op, err, "Error assigning product IDs")
	}
	if len(products) == 0 {
		return nil, apperr.NotFound(op, "No products found to assign productIds.")
	}

	used := shortcode.NewSetChecker()
	updated := make([]*domain.Product, 0, len(products))
	for _, p := range products {
		code, err := s.displayIDs.Unique(ctx, used.Exists)
		if err != nil {
			return updated, apperr.Wrapf(apperr.KindConflict, op, err, "Error assigning product IDs")
		}
		got, err := s.products.SetDisplayID(ctx, p.ID.Hex(), code)
		if err != nil {
			zap.L().Error("failed to assign display id",
				zap.String("id", p.ID.Hex()),
				zap.String("productId", code),
				zap.Error(err))
			continue
		}
		updated = append(updated, got)
	}
	zap.L().Info("display ids assigned", zap.Int("products", len(updated)))
	return updated, nil
}
