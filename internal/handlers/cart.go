package handlers

import (
	"github.com/gin-gonic/gin"

	"merabestie-backend/internal/apperr"
)

type cartLine struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) addToCart(c *gin.Context) {
	var req cartLine
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "handlers.addToCart", err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	cart, err := h.carts.Add(c.Request.Context(), req.UserID, req.ProductID, req.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": "Product added to cart successfully", "cart": cart})
}

func (h *Handler) getCart(c *gin.Context) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "handlers.getCart", err)
		return
	}
	cart, err := h.carts.Get(c.Request.Context(), req.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"cart": cart})
}

func (h *Handler) updateQuantity(c *gin.Context) {
	const op = "handlers.updateQuantity"
	var req struct {
		UserID     string   `json:"userId"`
		ProductID  string   `json:"productId"`
		ProductQty *float64 `json:"productQty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.Wrapf(apperr.KindValidation, op, err, "userId, productId, and a valid productQty are required."))
		return
	}
	if req.ProductQty == nil || *req.ProductQty != float64(int(*req.ProductQty)) {
		fail(c, apperr.Validation(op, "userId, productId, and a valid productQty are required."))
		return
	}
	if err := h.carts.UpdateQuantity(c.Request.Context(), req.UserID, req.ProductID, int(*req.ProductQty)); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": "Quantity updated successfully."})
}

func (h *Handler) deleteCartItems(c *gin.Context) {
	var req cartLine
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "handlers.deleteCartItems", err)
		return
	}
	if err := h.carts.Delete(c.Request.Context(), req.UserID, req.ProductID); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": "Item deleted successfully."})
}

func (h *Handler) clearCart(c *gin.Context) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "handlers.clearCart", err)
		return
	}
	if err := h.carts.Clear(c.Request.Context(), req.UserID); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": "Cart cleared successfully"})
}
