package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"merabestie-backend/internal/apperr"
	"merabestie-backend/internal/order"
)

func (h *Handler) placeOrder(c *gin.Context) {
	const op = "handlers.placeOrder"
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, apperr.Wrapf(apperr.KindValidation, op, err, "Invalid input"))
		return
	}
	req, err := order.DecodePlaceOrder(body)
	if err != nil {
		fail(c, err)
		return
	}

	placement, err := h.orders.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	resp := gin.H{
		"message":             "Order placed successfully",
		"orderId":             placement.Order.OrderID,
		"trackingId":          placement.Order.TrackingID,
		"price":               placement.Order.Price,
		"status":              placement.Order.Status,
		"notificationPending": placement.NotificationPending(),
	}
	if placement.NotificationPending() {
		zap.L().Warn("order placed without confirmation",
			zap.String("requestId", c.GetString(ctxRequestID)),
			zap.String("orderId", placement.Order.OrderID))
	}
	ok(c, resp)
}

func (h *Handler) findMyOrder(c *gin.Context) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "handlers.findMyOrder", err)
		return
	}
	views, err := h.orders.FindMyOrders(c.Request.Context(), req.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	if len(views) == 0 {
		ok(c, gin.H{"message": "No orders found for this user", "orders": views})
		return
	}
	ok(c, gin.H{"orders": views})
}

func (h *Handler) getOrders(c *gin.Context) {
	orders, err := h.orders.ListAll(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"orders": orders})
}

// reconcileOrders runs one reconciliation pass on demand.
func (h *Handler) reconcileOrders(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Minute)
	defer cancel()
	report, err := h.reconciler.RunOnce(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"report": report})
}
