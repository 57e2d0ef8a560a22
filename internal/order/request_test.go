package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merabestie-backend/internal/apperr"
	"merabestie-backend/internal/domain"
)

func TestDecodePlaceOrder(t *testing.T) {
	req, err := DecodePlaceOrder(map[string]any{
		"userId":  "abc123",
		"date":    "2024-01-01",
		"time":    "10:00",
		"address": "1 Main St",
		"price":   "599",
		"productsOrdered": []any{
			map[string]any{"productId": "p1", "quantity": 2.0},
			map[string]any{"productId": "p2", "quantity": "3"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "abc123", req.UserID)
	assert.Equal(t, 599.0, req.Price)
	assert.Equal(t, []domain.OrderLine{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 3},
	}, req.ProductsOrdered)
	assert.NoError(t, req.Validate())
}

func TestDecodePlaceOrderRejectsMalformedBodies(t *testing.T) {
	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing user", map[string]any{"productsOrdered": []any{map[string]any{"productId": "p1", "quantity": 1}}}},
		{"empty user", map[string]any{"userId": "", "productsOrdered": []any{map[string]any{"productId": "p1", "quantity": 1}}}},
		{"missing products", map[string]any{"userId": "abc123"}},
		{"products not an array", map[string]any{"userId": "abc123", "productsOrdered": "p1"}},
		{"products object", map[string]any{"userId": "abc123", "productsOrdered": map[string]any{"productId": "p1"}}},
		{"empty array", map[string]any{"userId": "abc123", "productsOrdered": []any{}}},
		{"bad quantity", map[string]any{"userId": "abc123", "productsOrdered": []any{map[string]any{"productId": "p1", "quantity": "lots"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePlaceOrder(tt.body)
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindValidation))
		})
	}
}

func TestValidateNamesTheBadLine(t *testing.T) {
	req := PlaceOrderRequest{
		UserID: "abc123",
		ProductsOrdered: []domain.OrderLine{
			{ProductID: "p1", Quantity: 1},
			{ProductID: "p2", Quantity: 0},
		},
	}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, apperr.Message(err), "productsOrdered[1]")
}
