package checkout

import (
	"context"
	"log/slog"

	"github.com/urikhaimov/storefront/internal/cart"
	"github.com/urikhaimov/storefront/internal/order"
)

// OrderCreator is the slice of the order service the checkout flow needs.
type OrderCreator interface {
	CreateOrder(ctx context.Context, input order.CreateInput) (*order.Order, error)
}

// Service orchestrates the two halves of checkout: Begin snapshots the
// cart and obtains a client secret; Complete reconciles the confirmed
// payment and creates the order. The cart is cleared only after order
// creation succeeds, so a failed or abandoned checkout loses no work.
type Service struct {
	bridge *Bridge
	orders OrderCreator
}

func NewService(bridge *Bridge, orders OrderCreator) *Service {
	return &Service{
		bridge: bridge,
		orders: orders,
	}
}

type BeginResult struct {
	ClientSecret     string `json:"client_secret"`
	PaymentIntentID  string `json:"payment_intent_id"`
	AmountMinorUnits int64  `json:"amount_minor_units"`
}

// Begin builds a charge request from the cart state that is about to be
// submitted and asks the provider for a client secret. On any failure the
// cart is untouched so the shopper can retry.
func (s *Service) Begin(ctx context.Context, userID string, store *cart.Store, pricing Pricing) (*BeginResult, error) {
	req, err := s.bridge.BuildChargeRequest(userID, store.Items(ctx), pricing)
	if err != nil {
		return nil, err
	}

	clientSecret, intentID, err := s.bridge.RequestClientSecret(ctx, req)
	if err != nil {
		return nil, err
	}

	slog.Info("checkout started",
		slog.String("user_id", userID),
		slog.String("payment_intent_id", intentID),
		slog.Int64("amount_minor_units", req.AmountMinorUnits))

	return &BeginResult{
		ClientSecret:     clientSecret,
		PaymentIntentID:  intentID,
		AmountMinorUnits: req.AmountMinorUnits,
	}, nil
}

// CompleteInput carries the shopper-entered order details alongside the
// confirmed payment intent.
type CompleteInput struct {
	PaymentIntentID string
	Email           string
	ShippingAddress order.ShippingAddress
	Notes           string
}

// Complete reconciles the confirmed payment and creates the order from
// the current cart contents. The confirmed payment's recorded amount is
// the authoritative order amount; a cart edit mid-checkout cannot change
// what is recorded versus what was charged. The cart is cleared only
// after the order is created.
func (s *Service) Complete(ctx context.Context, userID string, store *cart.Store, input CompleteInput) (*order.Order, error) {
	payment, err := s.bridge.ReconcilePayment(ctx, input.PaymentIntentID)
	if err != nil {
		return nil, err
	}

	items := store.Items(ctx)
	lineItems := make([]order.LineItem, len(items))
	for i, item := range items {
		lineItems[i] = order.LineItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			ImageURL:  item.ImageURL,
		}
	}

	ord, err := s.orders.CreateOrder(ctx, order.CreateInput{
		UserID:           userID,
		Email:            input.Email,
		Items:            lineItems,
		AmountMinorUnits: payment.AmountMinorUnits,
		Payment: order.Payment{
			Method:        "card",
			Status:        order.PaymentPaid,
			TransactionID: payment.TransactionID,
		},
		ShippingAddress: input.ShippingAddress,
		Notes:           input.Notes,
	})
	if err != nil {
		return nil, err
	}

	store.Clear(ctx)

	slog.Info("checkout completed",
		slog.String("user_id", userID),
		slog.String("order_id", ord.ID),
		slog.String("transaction_id", payment.TransactionID))
	return ord, nil
}
