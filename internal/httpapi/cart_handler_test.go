package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urikhaimov/storefront/internal/cart"
	"github.com/urikhaimov/storefront/internal/catalog"
	"github.com/urikhaimov/storefront/internal/checkout"
	"github.com/urikhaimov/storefront/internal/order"
)

func testRouter(t *testing.T) (http.Handler, *order.Service) {
	t.Helper()

	carts := cart.NewManager(cart.NewMemoryStorage(), cart.DefaultTTL)
	products := catalog.NewStaticProvider(
		catalog.Snapshot{ProductID: "p1", Name: "mug", UnitPrice: 12.50, AvailableStock: 5},
		catalog.Snapshot{ProductID: "p2", Name: "plate", UnitPrice: 8.00, AvailableStock: 0},
	)

	orderService := order.NewService(newMemOrderRepository(), nil)
	bridge := checkout.NewBridge(&stubProvider{})
	checkoutService := checkout.NewService(bridge, orderService)

	router := NewRouter(carts, products, checkoutService, orderService, checkout.Pricing{})
	return router, orderService
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("X-User-ID", "user-1")
	req.Header.Set("X-Session-ID", "session-1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) CartResponseDTO {
	t.Helper()
	var dto CartResponseDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&dto))
	return dto
}

func TestCartFlow(t *testing.T) {
	router, _ := testRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/cart/items", AddItemRequestDTO{ProductID: "p1", Quantity: 2})
	require.Equal(t, http.StatusCreated, rec.Code)

	dto := decodeCart(t, rec)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, 2, dto.Items[0].Quantity)
	assert.InDelta(t, 25.00, dto.Subtotal, 1e-9)

	// Adding again merges and clamps to the stock snapshot of 5.
	rec = doJSON(t, router, http.MethodPost, "/cart/items", AddItemRequestDTO{ProductID: "p1", Quantity: 10})
	dto = decodeCart(t, rec)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, 5, dto.Items[0].Quantity)

	rec = doJSON(t, router, http.MethodPut, "/cart/items/p1", UpdateQuantityRequestDTO{Quantity: 3})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decodeCart(t, rec).Items[0].Quantity)

	rec = doJSON(t, router, http.MethodDelete, "/cart/items/p1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeCart(t, rec).Items)
}

func TestAddItem_Validation(t *testing.T) {
	router, _ := testRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/cart/items", AddItemRequestDTO{ProductID: "", Quantity: 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/cart/items", AddItemRequestDTO{ProductID: "p1", Quantity: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/cart/items", AddItemRequestDTO{ProductID: "missing", Quantity: 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddItem_ZeroStockProductYieldsEmptyCart(t *testing.T) {
	router, _ := testRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/cart/items", AddItemRequestDTO{ProductID: "p2", Quantity: 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, decodeCart(t, rec).Items)
}

func TestClearCart(t *testing.T) {
	router, _ := testRouter(t)

	doJSON(t, router, http.MethodPost, "/cart/items", AddItemRequestDTO{ProductID: "p1", Quantity: 2})
	rec := doJSON(t, router, http.MethodDelete, "/cart", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	dto := decodeCart(t, rec)
	assert.Empty(t, dto.Items)
	assert.Equal(t, 0, dto.TotalQuantity)
}

func TestSessionsAreIsolated(t *testing.T) {
	router, _ := testRouter(t)

	doJSON(t, router, http.MethodPost, "/cart/items", AddItemRequestDTO{ProductID: "p1", Quantity: 2})

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("X-User-ID", "user-2")
	req.Header.Set("X-Session-ID", "session-other")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeCart(t, rec).Items)
}
