package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) updateAddress(c *gin.Context) {
	var req struct {
		UserID  string `json:"userId"`
		Address string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "handlers.updateAddress", err)
		return
	}
	address, err := h.accounts.UpdateAddress(c.Request.Context(), req.UserID, req.Address)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"message": "Address updated successfully", "address": address})
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.accounts.ListUsers(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"users": users})
}

func (h *Handler) updateAccountStatus(c *gin.Context) {
	var req struct {
		UserID        string `json:"userId"`
		AccountStatus string `json:"accountStatus"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "handlers.updateAccountStatus", err)
		return
	}
	user, err := h.accounts.SetAccountStatus(c.Request.Context(), req.UserID, req.AccountStatus)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{
		"message": "Account status updated successfully",
		"user":    gin.H{"userId": user.UserID, "accountStatus": user.AccountStatus},
	})
}

func (h *Handler) currentUser(c *gin.Context) {
	var req struct {
		UserID string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "handlers.currentUser", err)
		return
	}
	user, err := h.accounts.CurrentUser(c.Request.Context(), req.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"userId":        user.ID.Hex(),
		"name":          user.Name,
		"email":         user.Email,
		"accountStatus": user.AccountStatus,
		"phone":         user.Phone,
	})
}
