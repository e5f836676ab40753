package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Asmaa63/Shop-Website-sub001/internal/api/middleware"
	"github.com/Asmaa63/Shop-Website-sub001/internal/config"
	"github.com/Asmaa63/Shop-Website-sub001/internal/domain"
)

func cartRouter(env *testEnv) *gin.Engine {
	cfg := &config.Config{Payment: config.PaymentConfig{Currency: "usd"}}
	router := gin.New()

	shop := router.Group("/v1")
	shop.Use(middleware.OptionalAuthMiddleware(env.repos, env.logger))
	shop.GET("/cart", HandleGetCart(env.carts, env.logger))
	shop.GET("/cart/live", HandleWatchCart(env.carts, env.logger))
	shop.POST("/cart/items", HandleAddCartItem(env.repos, env.carts, env.logger))
	shop.PATCH("/cart/items/:id", HandleUpdateCartItem(env.carts, env.logger))
	shop.DELETE("/cart/items/:id", HandleRemoveCartItem(env.carts, env.logger))
	shop.DELETE("/cart", HandleClearCart(env.carts, env.logger))
	shop.POST("/checkout/session", HandleCreateCheckoutSession(cfg, env.repos, env.carts, env.provider, env.logger))

	return router
}

func seedProduct(env *testEnv, name, price string, stock int) *domain.Product {
	product := &domain.Product{
		ID:       uuid.New(),
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: true,
	}
	env.products.products[product.ID] = product
	return product
}

func guestRequest(method, target, sessionID, body string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if sessionID != "" {
		req.Header.Set(CartSessionHeader, sessionID)
	}
	return req
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) cartResponse {
	t.Helper()
	var resp cartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestGuestCartLifecycle(t *testing.T) {
	env := newTestEnv()
	router := cartRouter(env)
	product := seedProduct(env, "hoodie", "25.00", 10)
	const sid = "guest-abc"

	// Empty cart to start
	rec := serve(router, guestRequest(http.MethodGet, "/v1/cart", sid, ""))
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decodeCart(t, rec)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0, cart.TotalItems)

	// Add two, price comes from the catalog
	rec = serve(router, guestRequest(http.MethodPost, "/v1/cart/items", sid,
		`{"product_id":"`+product.ID.String()+`","quantity":2}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cart = decodeCart(t, rec)
	require.Len(t, cart.Items, 1)
	assert.True(t, cart.Items[0].UnitPrice.Equal(decimal.RequireFromString("25.00")))
	assert.True(t, cart.TotalPrice.Equal(decimal.RequireFromString("50.00")),
		"total %s", cart.TotalPrice)

	// Same product again merges into the line
	rec = serve(router, guestRequest(http.MethodPost, "/v1/cart/items", sid,
		`{"product_id":"`+product.ID.String()+`","quantity":1}`))
	require.Equal(t, http.StatusOK, rec.Code)
	cart = decodeCart(t, rec)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)

	// Quantity zero removes the line
	itemID := cart.Items[0].ID
	rec = serve(router, guestRequest(http.MethodPatch, "/v1/cart/items/"+itemID, sid,
		`{"quantity":0}`))
	require.Equal(t, http.StatusOK, rec.Code)
	cart = decodeCart(t, rec)
	assert.Empty(t, cart.Items)

	// Clear is a 204
	rec = serve(router, guestRequest(http.MethodDelete, "/v1/cart", sid, ""))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCartRequiresSessionHeaderForGuests(t *testing.T) {
	env := newTestEnv()
	router := cartRouter(env)

	rec := serve(router, guestRequest(http.MethodGet, "/v1/cart", "", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthenticatedCartKeyedByUser(t *testing.T) {
	env := newTestEnv()
	router := cartRouter(env)
	product := seedProduct(env, "cap", "12.00", 5)

	user := &domain.User{ID: uuid.New(), Email: "asmaa@example.com"}
	token := env.login(user)

	req := guestRequest(http.MethodPost, "/v1/cart/items", "", `{"product_id":"`+product.ID.String()+`","quantity":1}`)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := serve(router, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// The cart lives under the user key, not a guest header
	stored, ok := env.carts.carts["user:"+user.ID.String()]
	require.True(t, ok)
	assert.Equal(t, 1, stored.TotalItems())
}

func TestAddInactiveProductRejected(t *testing.T) {
	env := newTestEnv()
	router := cartRouter(env)
	product := seedProduct(env, "retired", "10.00", 5)
	product.IsActive = false

	rec := serve(router, guestRequest(http.MethodPost, "/v1/cart/items", "guest-abc",
		`{"product_id":"`+product.ID.String()+`","quantity":1}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateUnknownCartLine(t *testing.T) {
	env := newTestEnv()
	router := cartRouter(env)

	rec := serve(router, guestRequest(http.MethodPatch, "/v1/cart/items/"+uuid.NewString(), "guest-abc",
		`{"quantity":2}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWatchCartStreamsSnapshotAndUpdates(t *testing.T) {
	env := newTestEnv()
	router := cartRouter(env)
	product := seedProduct(env, "hoodie", "25.00", 10)
	const sid = "guest-abc"
	key := "guest:" + sid

	// Existing cart so the stream opens with a snapshot
	snapshot := domain.NewCart(key)
	snapshot.AddItem(domain.CartItem{ProductID: product.ID, Name: product.Name, UnitPrice: product.Price, Quantity: 1})
	require.NoError(t, env.carts.Set(context.Background(), snapshot))

	rec := httptest.NewRecorder()
	req := guestRequest(http.MethodGet, "/v1/cart/live", sid, "")
	done := make(chan struct{})
	go func() {
		router.ServeHTTP(rec, req)
		close(done)
	}()

	// Once subscribed, publish an update and end the stream
	require.Eventually(t, func() bool {
		return env.carts.subscriberCount(key) > 0
	}, time.Second, 5*time.Millisecond)

	updated := domain.NewCart(key)
	updated.AddItem(domain.CartItem{ProductID: product.ID, Name: product.Name, UnitPrice: product.Price, Quantity: 3})
	require.NoError(t, env.carts.Set(context.Background(), updated))
	env.carts.closeSubscribers(key)
	<-done

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/event-stream")
	body := rec.Body.String()
	assert.Equal(t, 2, strings.Count(body, "event:cart"), body)
	assert.Contains(t, body, `"total_items":1`)
	assert.Contains(t, body, `"total_items":3`)
}

func TestWatchCartRequiresSessionForGuests(t *testing.T) {
	env := newTestEnv()
	router := cartRouter(env)

	rec := serve(router, guestRequest(http.MethodGet, "/v1/cart/live", "", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutSessionClearsCart(t *testing.T) {
	env := newTestEnv()
	router := cartRouter(env)
	product := seedProduct(env, "hoodie", "25.00", 10)
	const sid = "guest-abc"

	rec := serve(router, guestRequest(http.MethodPost, "/v1/cart/items", sid,
		`{"product_id":"`+product.ID.String()+`","quantity":2}`))
	require.Equal(t, http.StatusOK, rec.Code)

	body := `{
		"items": [{"product_id": "` + product.ID.String() + `", "quantity": 2}],
		"shipping_address": {
			"full_name": "Asmaa Hassan", "phone": "+201001234567",
			"email": "asmaa@example.com", "country": "EG", "region": "Cairo",
			"city": "Nasr City", "street": "12 Abbas El Akkad", "postal_code": "11765"
		}
	}`
	rec = serve(router, guestRequest(http.MethodPost, "/v1/checkout/session", sid, body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		SessionID   string `json:"session_id"`
		RedirectURL string `json:"redirect_url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.NotEmpty(t, resp.RedirectURL)

	_, stillThere := env.carts.carts["guest:"+sid]
	assert.False(t, stillThere, "cart should be cleared after session creation")
}
