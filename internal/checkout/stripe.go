package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
)

// StripeProvider implements PaymentProvider against Stripe's
// PaymentIntent API.
type StripeProvider struct {
	currency stripe.Currency
}

func NewStripeProvider(apiKey string) *StripeProvider {
	stripe.Key = apiKey
	return &StripeProvider{currency: stripe.CurrencyUSD}
}

func (p *StripeProvider) CreateIntent(ctx context.Context, amountMinorUnits int64, metadata map[string]string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(amountMinorUnits),
		Currency: stripe.String(string(p.currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	for key, value := range metadata {
		params.AddMetadata(key, value)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create payment intent: %w", err)
	}
	return stripeIntent(pi), nil
}

func (p *StripeProvider) GetIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{Context: ctx},
	}

	pi, err := paymentintent.Get(id, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("stripe get payment intent: %w", err)
	}
	return stripeIntent(pi), nil
}

func stripeIntent(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:               pi.ID,
		ClientSecret:     pi.ClientSecret,
		Status:           string(pi.Status),
		AmountMinorUnits: pi.Amount,
	}
}
