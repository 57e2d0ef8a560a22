package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merabestie-backend/internal/account"
	"merabestie-backend/internal/cart"
	"merabestie-backend/internal/catalog"
	"merabestie-backend/internal/config"
	"merabestie-backend/internal/mailer"
	"merabestie-backend/internal/order"
	"merabestie-backend/internal/repository"
)

type testServer struct {
	router *gin.Engine
	mail   *mailer.RecordingSender
}

func newTestServer(t *testing.T, protectCatalog bool) *testServer {
	t.Helper()
	stores := repository.NewMemoryStores()
	mail := &mailer.RecordingSender{}
	authCfg := config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour, BcryptCost: 4, ProtectCatalog: protectCatalog}

	orders := order.NewService(stores, mail, order.DefaultOptions())
	h := NewHandler(
		account.NewService(stores, authCfg),
		cart.NewService(stores.Carts),
		catalog.NewService(stores.Products),
		orders,
		order.NewReconciler(orders, order.ReconcilerConfig{Grace: time.Minute}),
	)
	router := NewRouter(config.ServerConfig{Mode: gin.TestMode, CorsOrigins: []string{"http://localhost:3000"}}, authCfg, h)
	return &testServer{router: router, mail: mail}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers ...string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

func (s *testServer) signup(t *testing.T, email string) string {
	t.Helper()
	w, body := s.do(t, http.MethodPost, "/auth/signup", gin.H{"name": "Asha", "email": email, "password": "pw"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return body["userId"].(string)
}

func (s *testServer) createProduct(t *testing.T, name string, price float64, headers ...string) string {
	t.Helper()
	w, body := s.do(t, http.MethodPost, "/create-product", gin.H{"name": name, "price": price, "category": "Books"}, headers...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return body["product"].(map[string]any)["_id"].(string)
}

func TestKeepAliveAndRequestID(t *testing.T) {
	s := newTestServer(t, false)

	w, body := s.do(t, http.MethodGet, "/keep-alive", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))

	w, _ = s.do(t, http.MethodGet, "/keep-alive", nil, HeaderRequestID, "req-42")
	assert.Equal(t, "req-42", w.Header().Get(HeaderRequestID))
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t, false)
	userID := s.signup(t, "asha@example.com")

	w, body := s.do(t, http.MethodPost, "/auth/signup", gin.H{"name": "Asha", "email": "asha@example.com", "password": "pw"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User already exists", body["error"])

	w, body = s.do(t, http.MethodPost, "/auth/login", gin.H{"email": "asha@example.com", "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, body["userId"])
	token := body["token"].(string)

	w, body = s.do(t, http.MethodGet, "/auth/verify-token", nil, "Authorization", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID, body["user"].(map[string]any)["userId"])

	w, _ = s.do(t, http.MethodGet, "/auth/verify-token", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = s.do(t, http.MethodGet, "/auth/verify-token", nil, "Authorization", "Bearer nope")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body = s.do(t, http.MethodPost, "/auth/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User logged out successfully", body["message"])
}

func TestPlaceOrderAndFindIt(t *testing.T) {
	s := newTestServer(t, false)
	userID := s.signup(t, "asha@example.com")
	productID := s.createProduct(t, "Atlas", 299.5)

	w, body := s.do(t, http.MethodPost, "/cart/place-order", gin.H{
		"userId":          userID,
		"date":            "2024-01-01",
		"time":            "10:00",
		"address":         "1 Main St",
		"price":           599,
		"productsOrdered": []gin.H{{"productId": productID, "quantity": 2}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, body["success"])
	assert.Regexp(t, `^[0-9]{6}$`, body["orderId"])
	assert.Regexp(t, `^[0-9A-Z]{12}$`, body["trackingId"])
	assert.Equal(t, false, body["notificationPending"])
	assert.Equal(t, "complete", body["status"])
	assert.Len(t, s.mail.Messages(), 1)

	w, body = s.do(t, http.MethodPost, "/find-my-order", gin.H{"userId": userID})
	require.Equal(t, http.StatusOK, w.Code)
	orders := body["orders"].([]any)
	require.Len(t, orders, 1)
	products := orders[0].(map[string]any)["products"].([]any)
	require.Len(t, products, 1)
	assert.Equal(t, "Atlas", products[0].(map[string]any)["name"])
	assert.Equal(t, 2.0, products[0].(map[string]any)["quantity"])

	w, body = s.do(t, http.MethodGet, "/get-orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["orders"], 1)
}

func TestPlaceOrderFailures(t *testing.T) {
	s := newTestServer(t, false)
	userID := s.signup(t, "asha@example.com")
	productID := s.createProduct(t, "Atlas", 10)

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"missing user", gin.H{"productsOrdered": []gin.H{{"productId": productID, "quantity": 1}}}, http.StatusBadRequest},
		{"products not an array", gin.H{"userId": userID, "productsOrdered": "nope"}, http.StatusBadRequest},
		{"empty products", gin.H{"userId": userID, "productsOrdered": []gin.H{}}, http.StatusBadRequest},
		{"malformed json", `{"userId":`, http.StatusBadRequest},
		{"unknown user", gin.H{"userId": "ghost", "productsOrdered": []gin.H{{"productId": productID, "quantity": 1}}}, http.StatusNotFound},
		{"unknown product", gin.H{"userId": userID, "productsOrdered": []gin.H{{"productId": "65a000000000000000000000", "quantity": 1}}}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := s.do(t, http.MethodPost, "/cart/place-order", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["message"])
		})
	}

	_, body := s.do(t, http.MethodGet, "/get-orders", nil)
	assert.Empty(t, body["orders"])
	assert.Empty(t, s.mail.Messages())
}

func TestFindMyOrderWithoutOrders(t *testing.T) {
	s := newTestServer(t, false)
	userID := s.signup(t, "asha@example.com")

	w, body := s.do(t, http.MethodPost, "/find-my-order", gin.H{"userId": userID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []any{}, body["orders"])
	assert.Equal(t, "No orders found for this user", body["message"])

	w, _ = s.do(t, http.MethodPost, "/find-my-order", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartRoutes(t *testing.T) {
	s := newTestServer(t, false)

	for i := 0; i < 2; i++ {
		w, _ := s.do(t, http.MethodPost, "/cart/addtocart", gin.H{"userId": "u1", "productId": "p1", "quantity": 1})
		require.Equal(t, http.StatusOK, w.Code)
	}
	w, body := s.do(t, http.MethodPost, "/cart/get-cart", gin.H{"userId": "u1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["cart"].(map[string]any)["productsInCart"], 2)

	w, _ = s.do(t, http.MethodPut, "/cart/update-quantity", gin.H{"userId": "u1", "productId": "p1", "productQty": "3"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = s.do(t, http.MethodPut, "/cart/update-quantity", gin.H{"userId": "u1", "productId": "p1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = s.do(t, http.MethodPut, "/cart/update-quantity", gin.H{"userId": "u1", "productId": "p9", "productQty": 3})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = s.do(t, http.MethodPut, "/cart/update-quantity", gin.H{"userId": "u1", "productId": "p1", "productQty": 3})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodPost, "/cart/delete-items", gin.H{"userId": "u1", "productId": "p1"})
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, http.MethodPost, "/cart/delete-items", gin.H{"userId": "u1", "productId": "p1"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(t, http.MethodPost, "/cart/get-cart", gin.H{"userId": "nobody"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCatalogRoutes(t *testing.T) {
	s := newTestServer(t, false)

	w, _ := s.do(t, http.MethodGet, "/assign-productid", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	id := s.createProduct(t, "Atlas", 10)

	w, body := s.do(t, http.MethodGet, "/product/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Atlas", body["product"].(map[string]any)["name"])

	w, body = s.do(t, http.MethodPost, "/product/category", gin.H{"category": "books"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["products"], 1)

	w, body = s.do(t, http.MethodGet, "/assign-productid", nil)
	require.Equal(t, http.StatusOK, w.Code)
	displayID := body["products"].([]any)[0].(map[string]any)["productId"].(string)
	assert.Regexp(t, `^[1-9][0-9]{5}$`, displayID)

	w, _ = s.do(t, http.MethodPut, "/update-visibility", gin.H{"productId": displayID, "visibility": "off"})
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, http.MethodPost, "/instock-update", gin.H{"productId": displayID, "inStockValue": 4, "soldStockValue": 1})
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(t, http.MethodPost, "/instock-update", gin.H{"productId": "000000", "inStockValue": 4})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(t, http.MethodGet, "/product/65a000000000000000000000", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProtectedCatalogRequiresSellerToken(t *testing.T) {
	s := newTestServer(t, true)
	product := gin.H{"name": "Atlas", "price": 10}

	w, _ := s.do(t, http.MethodPost, "/create-product", product)
	assert.Equal(t, http.StatusForbidden, w.Code)

	s.signup(t, "asha@example.com")
	_, body := s.do(t, http.MethodPost, "/auth/login", gin.H{"email": "asha@example.com", "password": "pw"})
	w, _ = s.do(t, http.MethodPost, "/create-product", product, "Authorization", "Bearer "+body["token"].(string))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body = s.do(t, http.MethodPost, "/auth/seller/signup", gin.H{"name": "Shop", "emailId": "shop@example.com", "phoneNumber": "123", "password": "pw"})
	require.Equal(t, http.StatusCreated, w.Code)
	s.createProduct(t, "Atlas", 10, "Authorization", "Bearer "+body["token"].(string))

	w, _ = s.do(t, http.MethodGet, "/get-product", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUserRoutes(t *testing.T) {
	s := newTestServer(t, false)
	userID := s.signup(t, "asha@example.com")

	w, body := s.do(t, http.MethodPost, "/get-current-user", gin.H{"userId": userID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "asha@example.com", body["email"])
	assert.Equal(t, "open", body["accountStatus"])

	w, body = s.do(t, http.MethodGet, "/get-user", nil)
	require.Equal(t, http.StatusOK, w.Code)
	users := body["users"].([]any)
	require.Len(t, users, 1)
	assert.NotContains(t, users[0].(map[string]any), "password")

	w, body = s.do(t, http.MethodPut, "/update-account-status", gin.H{"userId": userID, "accountStatus": "closed"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "closed", body["user"].(map[string]any)["accountStatus"])

	w, _ = s.do(t, http.MethodPost, "/update-address", gin.H{"userId": userID, "address": "1 Main St"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReconcileRouteRequiresSeller(t *testing.T) {
	s := newTestServer(t, false)

	w, _ := s.do(t, http.MethodPost, "/admin/reconcile-orders", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	s.signup(t, "asha@example.com")
	_, body := s.do(t, http.MethodPost, "/auth/login", gin.H{"email": "asha@example.com", "password": "pw"})
	w, _ = s.do(t, http.MethodPost, "/admin/reconcile-orders", nil, "Authorization", "Bearer "+body["token"].(string))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body = s.do(t, http.MethodPost, "/auth/seller/signup", gin.H{"name": "Shop", "emailId": "shop@example.com", "phoneNumber": "123", "password": "pw"})
	require.Equal(t, http.StatusCreated, w.Code)
	w, body = s.do(t, http.MethodPost, "/admin/reconcile-orders", nil, "Authorization", "Bearer "+body["token"].(string))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"notified": 0.0, "completed": 0.0, "failed": 0.0, "gaveUp": 0.0}, body["report"])
}

func TestCORSWithoutOriginsDropsCredentials(t *testing.T) {
	cfg := corsConfig(nil)
	assert.True(t, cfg.AllowAllOrigins)
	assert.False(t, cfg.AllowCredentials)
	assert.Empty(t, cfg.AllowOrigins)

	router := NewRouter(config.ServerConfig{Mode: gin.TestMode}, config.AuthConfig{}, &Handler{})
	req := httptest.NewRequest(http.MethodGet, "/keep-alive", nil)
	req.Header.Set("Origin", "https://evil.test")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSWithOriginsKeepsCredentials(t *testing.T) {
	s := newTestServer(t, false)

	w, _ := s.do(t, http.MethodGet, "/keep-alive", nil, "Origin", "http://localhost:3000")
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w, _ = s.do(t, http.MethodGet, "/keep-alive", nil, "Origin", "https://evil.test")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
