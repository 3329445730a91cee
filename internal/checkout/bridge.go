// Package checkout translates the cart into a chargeable request and
// reconciles the confirmed payment back into order-creation input.
package checkout

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urikhaimov/storefront/internal/cart"
	"github.com/urikhaimov/storefront/internal/money"
)

// MinimumChargeMinorUnits is the processor's smallest chargeable amount.
const MinimumChargeMinorUnits = 50

// intentStatusSucceeded is the only provider status accepted for
// reconciliation.
const intentStatusSucceeded = "succeeded"

// LineItem is a normalized cart item as sent to the payment provider and
// later frozen onto the order.
type LineItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	ImageURL  string  `json:"image_url,omitempty"`
}

// Pricing carries the non-cart inputs of the total. ShippingFee is in
// major units; DiscountMinorUnits is already in cents, mirroring how the
// storefront transmits discounts.
type Pricing struct {
	ShippingFee        float64
	TaxRate            float64
	DiscountMinorUnits int64
}

type ChargeRequest struct {
	UserID           string
	AmountMinorUnits int64
	LineItems        []LineItem
}

// ConfirmedPayment is the provider's own record of what was charged. Its
// amount is authoritative over any recomputed cart total.
type ConfirmedPayment struct {
	AmountMinorUnits int64
	TransactionID    string
}

// Intent is the provider-neutral view of a payment intent.
type Intent struct {
	ID               string
	ClientSecret     string
	Status           string
	AmountMinorUnits int64
}

// PaymentProvider is the hosted payment processor contract.
type PaymentProvider interface {
	CreateIntent(ctx context.Context, amountMinorUnits int64, metadata map[string]string) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
}

type Bridge struct {
	provider PaymentProvider
}

func NewBridge(provider PaymentProvider) *Bridge {
	return &Bridge{provider: provider}
}

// BuildChargeRequest maps the cart state that is about to be submitted
// into a charge request. It must be called with the items immediately
// before requesting a client secret.
func (b *Bridge) BuildChargeRequest(userID string, items []cart.Item, pricing Pricing) (*ChargeRequest, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	subtotal := 0.0
	lineItems := make([]LineItem, len(items))
	for i, item := range items {
		subtotal += item.UnitPrice * float64(item.Quantity)
		lineItems[i] = LineItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			ImageURL:  item.ImageURL,
		}
	}

	return &ChargeRequest{
		UserID: userID,
		AmountMinorUnits: money.Total(
			subtotal,
			pricing.ShippingFee,
			pricing.TaxRate,
			pricing.DiscountMinorUnits,
			MinimumChargeMinorUnits,
		),
		LineItems: lineItems,
	}, nil
}

// RequestClientSecret asks the provider for a client secret the shopper's
// browser can confirm against. Provider errors propagate unchanged; the
// caller must not clear the cart on failure.
func (b *Bridge) RequestClientSecret(ctx context.Context, req *ChargeRequest) (clientSecret, intentID string, err error) {
	metadata, err := intentMetadata(req)
	if err != nil {
		return "", "", err
	}

	intent, err := b.provider.CreateIntent(ctx, req.AmountMinorUnits, metadata)
	if err != nil {
		return "", "", fmt.Errorf("create payment intent: %w", err)
	}
	if intent == nil || intent.ClientSecret == "" {
		return "", "", ErrNoClientSecret
	}
	return intent.ClientSecret, intent.ID, nil
}

// intentMetadata attaches the purchase context to the intent so the
// confirmed payment can be traced back to its cart contents.
func intentMetadata(req *ChargeRequest) (map[string]string, error) {
	itemsJSON, err := json.Marshal(req.LineItems)
	if err != nil {
		return nil, fmt.Errorf("marshal line items: %w", err)
	}
	return map[string]string{
		"user_id": req.UserID,
		"items":   string(itemsJSON),
	}, nil
}

// ReconcilePayment fetches the provider's record for the intent. Only a
// succeeded payment reconciles; anything else is ErrPaymentNotFound. The
// returned amount is what was actually charged, which wins over the cart
// total even if the cart mutated mid-checkout.
func (b *Bridge) ReconcilePayment(ctx context.Context, paymentIntentID string) (*ConfirmedPayment, error) {
	intent, err := b.provider.GetIntent(ctx, paymentIntentID)
	if err != nil {
		return nil, fmt.Errorf("get payment intent: %w", err)
	}
	if intent == nil || intent.Status != intentStatusSucceeded {
		return nil, ErrPaymentNotFound
	}

	return &ConfirmedPayment{
		AmountMinorUnits: intent.AmountMinorUnits,
		TransactionID:    intent.ID,
	}, nil
}
