package checkout

import "errors"

var (
	// ErrEmptyCart means there is nothing chargeable; the caller should
	// re-prompt the shopper.
	ErrEmptyCart = errors.New("cart is empty, nothing to charge")

	// ErrNoClientSecret means the payment provider answered but returned
	// no usable client secret. The cart must not be cleared.
	ErrNoClientSecret = errors.New("payment provider returned no client secret")

	// ErrPaymentNotFound means no confirmed payment exists for the intent.
	// This is a hard stop: an order must never be created without one.
	ErrPaymentNotFound = errors.New("no confirmed payment found for intent")
)
