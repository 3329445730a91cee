package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/urikhaimov/storefront/internal/order"
)

type OrdersHandler struct {
	service *order.Service
}

func NewOrdersHandler(service *order.Service) *OrdersHandler {
	return &OrdersHandler{service: service}
}

type UpdateStatusRequestDTO struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	ord, err := h.service.GetOrder(ctx, chi.URLParam(r, "orderID"))
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "order_not_found", "no such order")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal", "could not load order")
		return
	}
	if ord.UserID != userID {
		// Another shopper's order is indistinguishable from a missing one.
		respondError(w, http.StatusNotFound, "order_not_found", "no such order")
		return
	}

	respondJSON(w, http.StatusOK, ord)
}

func (h *OrdersHandler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orders, err := h.service.ListOrdersForUser(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal", "could not list orders")
		return
	}
	if orders == nil {
		orders = []*order.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *OrdersHandler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}

	orders, err := h.service.ListAllOrders(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal", "could not list orders")
		return
	}
	if orders == nil {
		orders = []*order.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := getUserID(ctx)
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	var req UpdateStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	status, err := order.ParseStatus(req.Status)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_status", err.Error())
		return
	}

	ord, err := h.service.UpdateStatus(ctx, chi.URLParam(r, "orderID"), status, userID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "order_not_found", "no such order")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal", "could not update order")
		return
	}

	respondJSON(w, http.StatusOK, ord)
}

func parseFilter(r *http.Request) (order.Filter, error) {
	q := r.URL.Query()
	filter := order.Filter{
		UserID:   q.Get("user_id"),
		Email:    q.Get("email"),
		SortBy:   q.Get("sort"),
		SortDesc: q.Get("order") == "desc",
	}

	if raw := q.Get("status"); raw != "" {
		status, err := order.ParseStatus(raw)
		if err != nil {
			return order.Filter{}, err
		}
		filter.Status = &status
	}

	if raw := q.Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return order.Filter{}, errors.New("from must be RFC3339")
		}
		filter.CreatedFrom = &from
	}
	if raw := q.Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return order.Filter{}, errors.New("to must be RFC3339")
		}
		filter.CreatedTo = &to
	}

	if raw := q.Get("min_amount"); raw != "" {
		amount, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return order.Filter{}, errors.New("min_amount must be an integer in minor units")
		}
		filter.MinAmountMinorUnits = &amount
	}
	if raw := q.Get("max_amount"); raw != "" {
		amount, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return order.Filter{}, errors.New("max_amount must be an integer in minor units")
		}
		filter.MaxAmountMinorUnits = &amount
	}

	return filter, nil
}
