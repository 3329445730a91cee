package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrValidation marks synchronous input errors; no partial state is
// written when it is returned.
var ErrValidation = errors.New("invalid order input")

// CreateInput is everything needed to create an order from a reconciled
// payment.
type CreateInput struct {
	UserID           string
	Email            string
	Items            []LineItem
	AmountMinorUnits int64
	Payment          Payment
	ShippingAddress  ShippingAddress
	Notes            string
}

// Service governs the order lifecycle: creation, status transitions and
// the status-history ledger.
type Service struct {
	repo   Repository
	events Publisher // optional, best-effort
	now    func() time.Time
}

func NewService(repo Repository, events Publisher) *Service {
	return &Service{
		repo:   repo,
		events: events,
		now:    time.Now,
	}
}

// CreateOrder writes the order document with its first history entry, or
// nothing at all. Creation is idempotent per payment transaction id:
// retried client requests for the same confirmed payment return the
// already-created order instead of creating a second one.
func (s *Service) CreateOrder(ctx context.Context, input CreateInput) (*Order, error) {
	// Dedupe before validation: a retried request for an already-created
	// payment may arrive with its cart long cleared, and it must still
	// resolve to the existing order.
	if input.Payment.TransactionID != "" {
		existing, err := s.repo.GetByTransactionID(ctx, input.Payment.TransactionID)
		if err == nil {
			slog.Info("duplicate order creation, returning existing order",
				slog.String("order_id", existing.ID),
				slog.String("transaction_id", input.Payment.TransactionID))
			return existing, nil
		}
		if !errors.Is(err, ErrOrderNotFound) {
			return nil, err
		}
	}

	if input.UserID == "" {
		return nil, fmt.Errorf("%w: missing user id", ErrValidation)
	}
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("%w: order has no line items", ErrValidation)
	}
	if input.AmountMinorUnits <= 0 {
		return nil, fmt.Errorf("%w: missing order amount", ErrValidation)
	}

	now := s.now().UTC()

	// The source flow conflates creation with post-payment confirmation,
	// so the initial status reflects the payment state at creation time.
	initial := StatusPending
	if input.Payment.Status == PaymentPaid {
		initial = StatusConfirmed
	}

	items := make([]LineItem, len(input.Items))
	copy(items, input.Items)

	ord := &Order{
		UserID:           input.UserID,
		Email:            input.Email,
		Items:            items,
		Status:           initial,
		StatusHistory:    []StatusChange{{Status: initial, Timestamp: now, ChangedBy: SystemActor}},
		Payment:          input.Payment,
		ShippingAddress:  input.ShippingAddress,
		Notes:            input.Notes,
		AmountMinorUnits: input.AmountMinorUnits,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, ord); err != nil {
		if errors.Is(err, ErrDuplicateTransaction) && input.Payment.TransactionID != "" {
			// Lost a creation race; the winner's order is the order.
			return s.repo.GetByTransactionID(ctx, input.Payment.TransactionID)
		}
		return nil, err
	}

	s.publish(ctx, Event{
		Type:             EventOrderCreated,
		OrderID:          ord.ID,
		UserID:           ord.UserID,
		Status:           ord.Status,
		AmountMinorUnits: ord.AmountMinorUnits,
		OccurredAt:       now,
	})
	return ord, nil
}

// UpdateStatus transitions the order and appends to the status ledger.
// Setting the current status again is a no-op so idempotent re-submits do
// not produce duplicate history entries. Concurrent admin edits are
// last-write-wins.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, newStatus Status, changedBy string) (*Order, error) {
	ord, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if ord.Status == newStatus {
		return ord, nil
	}

	now := s.now().UTC()
	ord.Status = newStatus
	ord.StatusHistory = append(ord.StatusHistory, StatusChange{
		Status:    newStatus,
		Timestamp: now,
		ChangedBy: changedBy,
	})
	ord.UpdatedAt = now

	if err := s.repo.Update(ctx, ord); err != nil {
		return nil, err
	}

	s.publish(ctx, Event{
		Type:       EventStatusChanged,
		OrderID:    ord.ID,
		UserID:     ord.UserID,
		Status:     newStatus,
		ChangedBy:  changedBy,
		OccurredAt: now,
	})
	return ord, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

func (s *Service) ListOrdersForUser(ctx context.Context, userID string) ([]*Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) ListAllOrders(ctx context.Context, filter Filter) ([]*Order, error) {
	return s.repo.List(ctx, filter)
}

// publish is best-effort: event delivery never fails an order operation.
func (s *Service) publish(ctx context.Context, event Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		slog.Warn("failed to publish order event",
			slog.String("type", event.Type),
			slog.String("order_id", event.OrderID),
			slog.Any("error", err))
	}
}
