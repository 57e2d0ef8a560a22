package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"merabestie-backend/internal/catalog"
)

func (h *Handler) createProduct(c *gin.Context) {
	var req catalog.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "handlers.createProduct", err)
		return
	}
	product, err := h.catalog.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Product created successfully",
		"product": product,
	})
}

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.catalog.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"products": products})
}

func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.catalog.Get(c.Request.Context(), c.Param("productId"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"product": product})
}

func (h *Handler) productsByCategory(c *gin.Context) {
	var req struct {
		Category string `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "handlers.productsByCategory", err)
		return
	}
	products, err := h.catalog.ByCategory(c.Request.Context(), req.Category)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"products": products})
}

func (h *Handler) updateVisibility(c *gin.Context) {
	var req struct {
		ProductID  string `json:"productId"`
		Visibility string `json:"visibility"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "handlers.updateVisibility", err)
		return
	}
	product, err := h.catalog.UpdateVisibility(c.Request.Context(), req.ProductID, req.Visibility)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": "Product visibility updated successfully", "product": product})
}

func (h *Handler) updateStock(c *gin.Context) {
	var req struct {
		ProductID      string `json:"productId"`
		InStockValue   int    `json:"inStockValue"`
		SoldStockValue int    `json:"soldStockValue"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "handlers.updateStock", err)
		return
	}
	if _, err := h.catalog.UpdateStock(c.Request.Context(), req.ProductID, req.InStockValue, req.SoldStockValue); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": "Stock status updated successfully"})
}

func (h *Handler) assignProductIDs(c *gin.Context) {
	products, err := h.catalog.AssignDisplayIDs(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": "Product IDs assigned successfully", "products": products})
}
