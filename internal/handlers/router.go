// Package handlers exposes the storefront services over HTTP with gin.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"merabestie-backend/internal/account"
	"merabestie-backend/internal/cart"
	"merabestie-backend/internal/catalog"
	"merabestie-backend/internal/config"
	"merabestie-backend/internal/order"
)

type Handler struct {
	accounts   *account.Service
	carts      *cart.Service
	catalog    *catalog.Service
	orders     *order.Service
	reconciler *order.Reconciler
}

func NewHandler(accounts *account.Service, carts *cart.Service, products *catalog.Service, orders *order.Service, reconciler *order.Reconciler) *Handler {
	return &Handler{
		accounts:   accounts,
		carts:      carts,
		catalog:    products,
		orders:     orders,
		reconciler: reconciler,
	}
}

// NewRouter builds the engine with middleware and every route registered.
func NewRouter(server config.ServerConfig, auth config.AuthConfig, h *Handler) *gin.Engine {
	if server.Mode != "" {
		gin.SetMode(server.Mode)
	}
	r := gin.New()
	r.Use(Recovery(), RequestID(), AccessLog())
	r.Use(cors.New(corsConfig(server.CorsOrigins)))

	r.GET("/keep-alive", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Server is up and running"})
	})

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup", h.signup)
		authGroup.POST("/login", h.login)
		authGroup.POST("/logout", h.logout("User logged out successfully"))
		authGroup.POST("/seller/signup", h.sellerSignup)
		authGroup.POST("/seller/login", h.sellerLogin)
		authGroup.POST("/seller/logout", h.logout("Seller logged out successfully"))
		authGroup.GET("/verify-token", h.verifyToken)
	}

	cartGroup := r.Group("/cart")
	{
		cartGroup.POST("/addtocart", h.addToCart)
		cartGroup.POST("/get-cart", h.getCart)
		cartGroup.PUT("/update-quantity", h.updateQuantity)
		cartGroup.POST("/delete-items", h.deleteCartItems)
		cartGroup.POST("/clear", h.clearCart)
		cartGroup.POST("/place-order", h.placeOrder)
	}

	r.POST("/find-my-order", h.findMyOrder)
	r.GET("/get-orders", h.getOrders)

	r.GET("/get-product", h.listProducts)
	r.GET("/product/:productId", h.getProduct)
	r.POST("/product/category", h.productsByCategory)

	seller := r.Group("/")
	if auth.ProtectCatalog {
		seller.Use(h.SellerAuth)
	}
	{
		seller.POST("/create-product", h.createProduct)
		seller.PUT("/update-visibility", h.updateVisibility)
		seller.POST("/instock-update", h.updateStock)
		seller.GET("/assign-productid", h.assignProductIDs)
	}

	admin := r.Group("/admin", h.SellerAuth)
	{
		admin.POST("/reconcile-orders", h.reconcileOrders)
	}

	r.POST("/update-address", h.updateAddress)
	r.GET("/get-user", h.listUsers)
	r.PUT("/update-account-status", h.updateAccountStatus)
	r.POST("/get-current-user", h.currentUser)

	return r
}

// corsConfig allows credentials only for the listed origins. Without a list
// any origin is accepted but cookies and auth headers are not shared.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Requested-With", HeaderRequestID},
		ExposeHeaders:    []string{HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		zap.L().Warn("no CORS origins configured, allowing any origin without credentials")
		cfg.AllowOrigins = nil
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	}
	return cfg
}
