package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/urikhaimov/storefront/internal/cart"
	"github.com/urikhaimov/storefront/internal/catalog"
)

type CartHandler struct {
	carts   *cart.Manager
	catalog catalog.Provider
}

func NewCartHandler(carts *cart.Manager, provider catalog.Provider) *CartHandler {
	return &CartHandler{
		carts:   carts,
		catalog: provider,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartResponseDTO struct {
	Items         []cart.Item `json:"items"`
	TotalQuantity int         `json:"total_quantity"`
	Subtotal      float64     `json:"subtotal"`
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity < 1 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at least 1")
		return
	}

	snapshot, err := h.catalog.Snapshot(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			respondError(w, http.StatusNotFound, "product_not_found", "no such product")
			return
		}
		respondError(w, http.StatusBadGateway, "catalog_unavailable", "could not look up product")
		return
	}

	store := h.carts.Get(ctx, getSessionID(ctx))
	store.AddItem(ctx, cart.Item{
		ProductID:      snapshot.ProductID,
		Name:           snapshot.Name,
		UnitPrice:      snapshot.UnitPrice,
		ImageURL:       snapshot.ImageURL,
		AvailableStock: snapshot.AvailableStock,
	}, req.Quantity)

	respondJSON(w, http.StatusCreated, h.cartView(r))
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.cartView(r))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID := chi.URLParam(r, "productID")

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	store := h.carts.Get(ctx, getSessionID(ctx))
	store.SetQuantity(ctx, productID, req.Quantity)

	respondJSON(w, http.StatusOK, h.cartView(r))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID := chi.URLParam(r, "productID")

	store := h.carts.Get(ctx, getSessionID(ctx))
	store.RemoveItem(ctx, productID)

	respondJSON(w, http.StatusOK, h.cartView(r))
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	store := h.carts.Get(ctx, getSessionID(ctx))
	store.Clear(ctx)

	respondJSON(w, http.StatusOK, h.cartView(r))
}

func (h *CartHandler) cartView(r *http.Request) CartResponseDTO {
	ctx := r.Context()
	store := h.carts.Get(ctx, getSessionID(ctx))

	items := store.Items(ctx)
	if items == nil {
		items = []cart.Item{}
	}
	return CartResponseDTO{
		Items:         items,
		TotalQuantity: store.TotalQuantity(ctx),
		Subtotal:      store.Subtotal(ctx),
	}
}
