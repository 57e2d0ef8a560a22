package order

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"merabestie-backend/internal/apperr"
	"merabestie-backend/internal/domain"
)

// PlaceOrderRequest is the checkout payload. Price is the total the client
// computed; the stored total is recomputed from the catalog.
type PlaceOrderRequest struct {
	UserID          string             `mapstructure:"userId"`
	Date            string             `mapstructure:"date"`
	Time            string             `mapstructure:"time"`
	Address         string             `mapstructure:"address"`
	Price           float64            `mapstructure:"price"`
	ProductsOrdered []domain.OrderLine `mapstructure:"productsOrdered"`
}

// DecodePlaceOrder turns a loosely typed JSON body into a request. Numbers
// sent as strings are accepted; productsOrdered must be a JSON array.
func DecodePlaceOrder(body map[string]any) (PlaceOrderRequest, error) {
	const op = "order.DecodePlaceOrder"
	var req PlaceOrderRequest

	if v, ok := body["userId"]; !ok || v == nil || v == "" {
		return req, apperr.Validation(op, "userId is required")
	}
	lines, ok := body["productsOrdered"].([]any)
	if !ok || len(lines) == 0 {
		return req, apperr.Validation(op, "productsOrdered is required and must be an array")
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &req,
	})
	if err != nil {
		return req, apperr.Wrap(apperr.KindInternal, op, err)
	}
	if err := dec.Decode(body); err != nil {
		return req, apperr.Wrapf(apperr.KindValidation, op, err, "malformed order request")
	}
	return req, nil
}

// Validate checks the request shape without touching any store.
func (r PlaceOrderRequest) Validate() error {
	const op = "order.Validate"
	if strings.TrimSpace(r.UserID) == "" {
		return apperr.Validation(op, "userId is required")
	}
	if len(r.ProductsOrdered) == 0 {
		return apperr.Validation(op, "productsOrdered is required and must be an array")
	}
	for i, line := range r.ProductsOrdered {
		if strings.TrimSpace(line.ProductID) == "" {
			return apperr.Validation(op, fmt.Sprintf("productsOrdered[%d] has no productId", i))
		}
		if line.Quantity < 1 {
			return apperr.Validation(op, fmt.Sprintf("productsOrdered[%d] needs a quantity of at least 1", i))
		}
	}
	return nil
}
