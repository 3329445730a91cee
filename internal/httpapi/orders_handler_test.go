package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urikhaimov/storefront/internal/checkout"
	"github.com/urikhaimov/storefront/internal/order"
)

// memOrderRepository is a map-backed order.Repository for handler tests.
type memOrderRepository struct {
	mu     sync.Mutex
	orders map[string]*order.Order
}

func newMemOrderRepository() *memOrderRepository {
	return &memOrderRepository{orders: make(map[string]*order.Order)}
}

func (m *memOrderRepository) Create(_ context.Context, ord *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ord.Payment.TransactionID != "" {
		for _, existing := range m.orders {
			if existing.Payment.TransactionID == ord.Payment.TransactionID {
				return order.ErrDuplicateTransaction
			}
		}
	}
	if ord.ID == "" {
		ord.ID = uuid.NewString()
	}
	cp := *ord
	m.orders[ord.ID] = &cp
	return nil
}

func (m *memOrderRepository) GetByID(_ context.Context, id string) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ord, ok := m.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	cp := *ord
	return &cp, nil
}

func (m *memOrderRepository) GetByTransactionID(_ context.Context, transactionID string) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ord := range m.orders {
		if ord.Payment.TransactionID == transactionID {
			cp := *ord
			return &cp, nil
		}
	}
	return nil, order.ErrOrderNotFound
}

func (m *memOrderRepository) Update(_ context.Context, ord *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[ord.ID]; !ok {
		return order.ErrOrderNotFound
	}
	cp := *ord
	m.orders[ord.ID] = &cp
	return nil
}

func (m *memOrderRepository) ListByUser(_ context.Context, userID string) ([]*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var orders []*order.Order
	for _, ord := range m.orders {
		if ord.UserID == userID {
			cp := *ord
			orders = append(orders, &cp)
		}
	}
	return orders, nil
}

func (m *memOrderRepository) List(context.Context, order.Filter) ([]*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var orders []*order.Order
	for _, ord := range m.orders {
		cp := *ord
		orders = append(orders, &cp)
	}
	return orders, nil
}

// stubProvider confirms every intent it created.
type stubProvider struct{}

func (stubProvider) CreateIntent(_ context.Context, amountMinorUnits int64, _ map[string]string) (*checkout.Intent, error) {
	return &checkout.Intent{
		ID:               "pi_test",
		ClientSecret:     "pi_test_secret",
		Status:           "requires_payment_method",
		AmountMinorUnits: amountMinorUnits,
	}, nil
}

func (stubProvider) GetIntent(_ context.Context, id string) (*checkout.Intent, error) {
	return &checkout.Intent{ID: id, Status: "succeeded", AmountMinorUnits: 2500}, nil
}

func createTestOrder(t *testing.T, svc *order.Service) *order.Order {
	t.Helper()
	ord, err := svc.CreateOrder(context.Background(), order.CreateInput{
		UserID:           "user-1",
		Items:            []order.LineItem{{ProductID: "p1", Name: "mug", UnitPrice: 12.50, Quantity: 2}},
		AmountMinorUnits: 2500,
		Payment:          order.Payment{Method: "card", Status: order.PaymentPaid, TransactionID: "pi_seed"},
	})
	require.NoError(t, err)
	return ord
}

func TestGetOrder(t *testing.T) {
	router, svc := testRouter(t)
	ord := createTestOrder(t, svc)

	rec := doJSON(t, router, http.MethodGet, "/orders/"+ord.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got order.Order
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, ord.ID, got.ID)
	assert.Equal(t, order.StatusConfirmed, got.Status)
}

func TestGetOrder_NotFound(t *testing.T) {
	router, _ := testRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/orders/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetOrder_OtherUsersOrderIsHidden(t *testing.T) {
	router, svc := testRouter(t)
	ord := createTestOrder(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/orders/"+ord.ID, nil)
	req.Header.Set("X-User-ID", "user-2")
	req.Header.Set("X-Session-ID", "session-2")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListMyOrders(t *testing.T) {
	router, svc := testRouter(t)
	createTestOrder(t, svc)

	rec := doJSON(t, router, http.MethodGet, "/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var orders []order.Order
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&orders))
	assert.Len(t, orders, 1)
}

func TestUpdateStatus(t *testing.T) {
	router, svc := testRouter(t)
	ord := createTestOrder(t, svc)

	rec := doJSON(t, router, http.MethodPut, "/admin/orders/"+ord.ID+"/status", UpdateStatusRequestDTO{Status: "shipped"})
	require.Equal(t, http.StatusOK, rec.Code)

	var got order.Order
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, order.StatusShipped, got.Status)
	require.Len(t, got.StatusHistory, 2)
	assert.Equal(t, "user-1", got.StatusHistory[1].ChangedBy)
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	router, svc := testRouter(t)
	ord := createTestOrder(t, svc)

	rec := doJSON(t, router, http.MethodPut, "/admin/orders/"+ord.ID+"/status", UpdateStatusRequestDTO{Status: "refunded"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	router, _ := testRouter(t)

	rec := doJSON(t, router, http.MethodPut, "/admin/orders/missing/status", UpdateStatusRequestDTO{Status: "shipped"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAllOrders_FilterValidation(t *testing.T) {
	router, _ := testRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/admin/orders?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/admin/orders?min_amount=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/admin/orders?status=confirmed", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
