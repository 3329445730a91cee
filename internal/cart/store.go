package cart

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DefaultTTL is how long an unmodified cart survives before it is
// discarded.
const DefaultTTL = time.Hour

// Store owns the single active cart for one session. All operations clamp
// rather than reject: the cart is an optimistic local cache, not a source
// of truth for stock. Every mutation persists synchronously and refreshes
// LastModifiedAt; every operation first applies the expiration check so a
// stale cart is atomically replaced by an empty one before the operation
// proceeds.
type Store struct {
	mu        sync.Mutex
	sessionID string
	storage   SessionStorage
	ttl       time.Duration
	now       func() time.Time
	cart      Cart
	loaded    bool
}

func NewStore(sessionID string, storage SessionStorage, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		sessionID: sessionID,
		storage:   storage,
		ttl:       ttl,
		now:       time.Now,
	}
}

// Load restores the persisted cart for the session. A missing or malformed
// record loads as an empty cart, never an error.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(ctx)
}

func (s *Store) loadLocked(ctx context.Context) {
	if s.loaded {
		return
	}
	s.loaded = true

	data, err := s.storage.Load(ctx, s.sessionID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			slog.Warn("cart storage load failed, starting empty",
				slog.String("session_id", s.sessionID), slog.Any("error", err))
		}
		s.cart = Cart{}
		return
	}

	var cart Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		slog.Warn("malformed persisted cart discarded",
			slog.String("session_id", s.sessionID), slog.Any("error", err))
		s.cart = Cart{}
		return
	}
	s.cart = cart
	s.expireLocked(ctx)
}

// AddItem inserts the item or, if the product is already in the cart,
// merges by summing quantities. The resulting quantity is clamped to the
// item's stock snapshot.
func (s *Store) AddItem(ctx context.Context, item Item, requestedQuantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(ctx)
	s.expireLocked(ctx)

	if requestedQuantity < 1 {
		requestedQuantity = 1
	}

	for i := range s.cart.Items {
		if s.cart.Items[i].ProductID == item.ProductID {
			s.cart.Items[i].Quantity = clamp(s.cart.Items[i].Quantity+requestedQuantity, s.cart.Items[i].AvailableStock)
			s.touchAndPersistLocked(ctx)
			return
		}
	}

	item.Quantity = clamp(requestedQuantity, item.AvailableStock)
	if item.Quantity < 1 {
		// Nothing in stock; there is no valid quantity to hold.
		return
	}
	s.cart.Items = append(s.cart.Items, item)
	s.touchAndPersistLocked(ctx)
}

// RemoveItem deletes the item if present; removing an absent product is a
// no-op, not an error.
func (s *Store) RemoveItem(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(ctx)
	s.expireLocked(ctx)

	for i, item := range s.cart.Items {
		if item.ProductID == productID {
			s.cart.Items = append(s.cart.Items[:i], s.cart.Items[i+1:]...)
			s.touchAndPersistLocked(ctx)
			return
		}
	}
}

// SetQuantity sets an item's quantity, clamped to [1, AvailableStock].
// Quantity zero must go through RemoveItem, so values below 1 are treated
// as 1 rather than as a removal.
func (s *Store) SetQuantity(ctx context.Context, productID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(ctx)
	s.expireLocked(ctx)

	for i := range s.cart.Items {
		if s.cart.Items[i].ProductID == productID {
			if quantity < 1 {
				quantity = 1
			}
			s.cart.Items[i].Quantity = clamp(quantity, s.cart.Items[i].AvailableStock)
			s.touchAndPersistLocked(ctx)
			return
		}
	}
}

// Clear empties the cart and resets LastModifiedAt.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true
	s.clearLocked(ctx)
}

// Items returns a copy of the cart contents after the expiration check.
func (s *Store) Items(ctx context.Context) []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(ctx)
	s.expireLocked(ctx)

	items := make([]Item, len(s.cart.Items))
	copy(items, s.cart.Items)
	return items
}

// TotalQuantity returns the number of units across all items.
func (s *Store) TotalQuantity(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(ctx)
	s.expireLocked(ctx)

	total := 0
	for _, item := range s.cart.Items {
		total += item.Quantity
	}
	return total
}

// Subtotal returns the sum of unit price times quantity in major units.
func (s *Store) Subtotal(ctx context.Context) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(ctx)
	s.expireLocked(ctx)

	subtotal := 0.0
	for _, item := range s.cart.Items {
		subtotal += item.UnitPrice * float64(item.Quantity)
	}
	return subtotal
}

// Expire applies the TTL check. It is called lazily by every operation and
// periodically by the manager's sweeper; both paths are idempotent.
func (s *Store) Expire(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(ctx)
	s.expireLocked(ctx)
}

func (s *Store) expireLocked(ctx context.Context) {
	if len(s.cart.Items) == 0 {
		return
	}
	if s.now().Sub(s.cart.LastModifiedAt) > s.ttl {
		s.clearLocked(ctx)
	}
}

func (s *Store) clearLocked(ctx context.Context) {
	s.cart = Cart{LastModifiedAt: s.now()}
	if err := s.storage.Delete(ctx, s.sessionID); err != nil {
		slog.Warn("cart storage delete failed",
			slog.String("session_id", s.sessionID), slog.Any("error", err))
	}
}

func (s *Store) touchAndPersistLocked(ctx context.Context) {
	s.cart.LastModifiedAt = s.now()

	data, err := json.Marshal(s.cart)
	if err != nil {
		slog.Warn("cart marshal failed",
			slog.String("session_id", s.sessionID), slog.Any("error", err))
		return
	}
	if err := s.storage.Save(ctx, s.sessionID, data); err != nil {
		slog.Warn("cart storage save failed",
			slog.String("session_id", s.sessionID), slog.Any("error", err))
	}
}

func clamp(quantity, stock int) int {
	if quantity > stock {
		return stock
	}
	return quantity
}
