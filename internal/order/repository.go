package order

import (
	"context"
	"errors"
	"time"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrDuplicateTransaction = errors.New("order for this transaction already exists")
)

// Filter narrows and orders admin listings. Nil/zero fields are ignored.
type Filter struct {
	Status              *Status
	UserID              string
	Email               string
	CreatedFrom         *time.Time
	CreatedTo           *time.Time
	MinAmountMinorUnits *int64
	MaxAmountMinorUnits *int64

	// SortBy is one of "created_at", "updated_at", "amount". Ties are
	// broken by id so the ordering is total and stable.
	SortBy   string
	SortDesc bool
}

// Repository defines the persistence contract for orders.
// Consumers define this interface, not the MongoDB implementation.
type Repository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*Order, error)
	Update(ctx context.Context, order *Order) error
	ListByUser(ctx context.Context, userID string) ([]*Order, error)
	List(ctx context.Context, filter Filter) ([]*Order, error)
}
