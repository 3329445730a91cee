package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/urikhaimov/storefront/internal/cart"
	"github.com/urikhaimov/storefront/internal/checkout"
	"github.com/urikhaimov/storefront/internal/order"
)

type CheckoutHandler struct {
	service *checkout.Service
	carts   *cart.Manager
	pricing checkout.Pricing // store-level tax and shipping configuration
}

func NewCheckoutHandler(service *checkout.Service, carts *cart.Manager, pricing checkout.Pricing) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		carts:   carts,
		pricing: pricing,
	}
}

type BeginCheckoutRequestDTO struct {
	DiscountMinorUnits int64 `json:"discount_minor_units"`
}

type CompleteCheckoutRequestDTO struct {
	PaymentIntentID string                `json:"payment_intent_id"`
	Email           string                `json:"email"`
	ShippingAddress order.ShippingAddress `json:"shipping_address"`
	Notes           string                `json:"notes"`
}

func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req BeginCheckoutRequestDTO
	if r.Body != nil {
		// The body is optional; only a discount can be supplied.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.DiscountMinorUnits < 0 {
		respondError(w, http.StatusBadRequest, "invalid_discount", "discount cannot be negative")
		return
	}

	pricing := h.pricing
	pricing.DiscountMinorUnits = req.DiscountMinorUnits

	store := h.carts.Get(ctx, getSessionID(ctx))
	result, err := h.service.Begin(ctx, userID, store, pricing)
	if err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			respondError(w, http.StatusBadRequest, "empty_cart", "cart has no items to check out")
			return
		}
		respondError(w, http.StatusBadGateway, "payment_unavailable", "could not start payment")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (h *CheckoutHandler) Complete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req CompleteCheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.PaymentIntentID == "" {
		respondError(w, http.StatusBadRequest, "missing_payment_intent", "payment_intent_id is required")
		return
	}

	store := h.carts.Get(ctx, getSessionID(ctx))
	ord, err := h.service.Complete(ctx, userID, store, checkout.CompleteInput{
		PaymentIntentID: req.PaymentIntentID,
		Email:           req.Email,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrPaymentNotFound):
			respondError(w, http.StatusNotFound, "payment_not_found", "no confirmed payment for this intent")
		case errors.Is(err, order.ErrValidation):
			respondError(w, http.StatusBadRequest, "invalid_order", err.Error())
		default:
			respondError(w, http.StatusBadGateway, "payment_unavailable", "could not confirm payment")
		}
		return
	}

	respondJSON(w, http.StatusCreated, ord)
}
