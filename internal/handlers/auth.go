package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"merabestie-backend/internal/account"
)

func (h *Handler) signup(c *gin.Context) {
	var req account.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "handlers.signup", err)
		return
	}
	session, err := h.accounts.Signup(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"userId":  session.UserID,
		"token":   session.Token,
	})
}

func (h *Handler) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "handlers.login", err)
		return
	}
	session, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"userId":  session.UserID,
		"token":   session.Token,
	})
}

// Tokens are stateless, so logging out only acknowledges the request.
func (h *Handler) logout(message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": message})
	}
}

func (h *Handler) sellerSignup(c *gin.Context) {
	var req account.SellerSignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "handlers.sellerSignup", err)
		return
	}
	session, err := h.accounts.SellerSignup(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":  "Seller registered successfully",
		"sellerId": session.SellerID,
		"token":    session.Token,
	})
}

func (h *Handler) sellerLogin(c *gin.Context) {
	var req struct {
		EmailID  string `json:"emailId"`
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "handlers.sellerLogin", err)
		return
	}
	session, err := h.accounts.SellerLogin(c.Request.Context(), req.EmailID, req.Phone, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "Login successful",
		"sellerId": session.SellerID,
		"token":    session.Token,
	})
}

func (h *Handler) verifyToken(c *gin.Context) {
	claims, err := h.accounts.VerifyToken(c.GetHeader("Authorization"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Token is valid", "user": claims})
}
