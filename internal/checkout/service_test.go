package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urikhaimov/storefront/internal/cart"
	"github.com/urikhaimov/storefront/internal/order"
)

// mockOrders dedupes by transaction id the way the order service does.
type mockOrders struct {
	mu     sync.Mutex
	orders map[string]*order.Order
	err    error
	calls  int
}

func newMockOrders() *mockOrders {
	return &mockOrders{orders: make(map[string]*order.Order)}
}

func (m *mockOrders) CreateOrder(_ context.Context, input order.CreateInput) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if existing, ok := m.orders[input.Payment.TransactionID]; ok {
		return existing, nil
	}
	ord := &order.Order{
		ID:               "order-1",
		UserID:           input.UserID,
		Items:            input.Items,
		Status:           order.StatusConfirmed,
		Payment:          input.Payment,
		AmountMinorUnits: input.AmountMinorUnits,
	}
	m.orders[input.Payment.TransactionID] = ord
	return ord, nil
}

func (m *mockOrders) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

func newCheckoutCart(t *testing.T) *cart.Store {
	t.Helper()
	store := cart.NewStore("session-1", cart.NewMemoryStorage(), cart.DefaultTTL)
	store.AddItem(context.Background(), cart.Item{
		ProductID:      "p1",
		Name:           "mug",
		UnitPrice:      50.00,
		AvailableStock: 10,
	}, 1)
	return store
}

func TestBegin(t *testing.T) {
	provider := &mockProvider{
		createIntent: &Intent{ID: "pi_1", ClientSecret: "pi_1_secret"},
	}
	svc := NewService(NewBridge(provider), newMockOrders())
	store := newCheckoutCart(t)

	result, err := svc.Begin(context.Background(), "user-1", store, Pricing{})
	require.NoError(t, err)

	assert.Equal(t, "pi_1_secret", result.ClientSecret)
	assert.Equal(t, "pi_1", result.PaymentIntentID)
	assert.Equal(t, int64(5000), result.AmountMinorUnits)
}

func TestBegin_EmptyCart(t *testing.T) {
	svc := NewService(NewBridge(&mockProvider{}), newMockOrders())
	store := cart.NewStore("session-1", cart.NewMemoryStorage(), cart.DefaultTTL)

	_, err := svc.Begin(context.Background(), "user-1", store, Pricing{})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestBegin_ProviderFailureLeavesCartIntact(t *testing.T) {
	provider := &mockProvider{createErr: errors.New("stripe unreachable")}
	svc := NewService(NewBridge(provider), newMockOrders())
	store := newCheckoutCart(t)

	_, err := svc.Begin(context.Background(), "user-1", store, Pricing{})
	require.Error(t, err)

	assert.Len(t, store.Items(context.Background()), 1)
}

func TestComplete_UsesConfirmedAmountNotCartTotal(t *testing.T) {
	// Cart totals $50.00 but the provider confirms $45.00 was charged;
	// the order must record the confirmed amount.
	provider := &mockProvider{
		getIntent: &Intent{ID: "pi_1", Status: "succeeded", AmountMinorUnits: 4500},
	}
	orders := newMockOrders()
	svc := NewService(NewBridge(provider), orders)
	store := newCheckoutCart(t)

	ord, err := svc.Complete(context.Background(), "user-1", store, CompleteInput{PaymentIntentID: "pi_1"})
	require.NoError(t, err)

	assert.Equal(t, int64(4500), ord.AmountMinorUnits)
	assert.Equal(t, "pi_1", ord.Payment.TransactionID)
	assert.Equal(t, order.PaymentPaid, ord.Payment.Status)
}

func TestComplete_ClearsCartOnSuccess(t *testing.T) {
	provider := &mockProvider{
		getIntent: &Intent{ID: "pi_1", Status: "succeeded", AmountMinorUnits: 5000},
	}
	svc := NewService(NewBridge(provider), newMockOrders())
	store := newCheckoutCart(t)

	_, err := svc.Complete(context.Background(), "user-1", store, CompleteInput{PaymentIntentID: "pi_1"})
	require.NoError(t, err)

	assert.Empty(t, store.Items(context.Background()))
}

func TestComplete_NoConfirmedPaymentIsHardStop(t *testing.T) {
	provider := &mockProvider{
		getIntent: &Intent{ID: "pi_1", Status: "processing"},
	}
	orders := newMockOrders()
	svc := NewService(NewBridge(provider), orders)
	store := newCheckoutCart(t)

	_, err := svc.Complete(context.Background(), "user-1", store, CompleteInput{PaymentIntentID: "pi_1"})
	assert.ErrorIs(t, err, ErrPaymentNotFound)

	assert.Equal(t, 0, orders.calls, "order must not be created without a confirmed payment")
	assert.Len(t, store.Items(context.Background()), 1, "cart must survive a failed checkout")
}

func TestComplete_OrderCreationFailureKeepsCart(t *testing.T) {
	provider := &mockProvider{
		getIntent: &Intent{ID: "pi_1", Status: "succeeded", AmountMinorUnits: 5000},
	}
	orders := newMockOrders()
	orders.err = errors.New("mongo down")
	svc := NewService(NewBridge(provider), orders)
	store := newCheckoutCart(t)

	_, err := svc.Complete(context.Background(), "user-1", store, CompleteInput{PaymentIntentID: "pi_1"})
	require.Error(t, err)

	assert.Len(t, store.Items(context.Background()), 1)
}

func TestComplete_DoubleSubmitCreatesOneOrder(t *testing.T) {
	provider := &mockProvider{
		getIntent: &Intent{ID: "pi_1", Status: "succeeded", AmountMinorUnits: 5000},
	}
	orders := newMockOrders()
	svc := NewService(NewBridge(provider), orders)
	store := newCheckoutCart(t)

	first, err := svc.Complete(context.Background(), "user-1", store, CompleteInput{PaymentIntentID: "pi_1"})
	require.NoError(t, err)

	// A retried request after a timeout reaches Complete again with the
	// same intent; the cart is already empty but the order dedupes.
	second, err := svc.Complete(context.Background(), "user-1", store, CompleteInput{PaymentIntentID: "pi_1"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, orders.count())
}
