// Package order creates orders from reconciled payments and governs
// status transitions with an append-only audit trail.
package order

import "time"

// SystemActor is recorded as the author of status changes made by the
// system itself, as opposed to a user or admin identifier.
const SystemActor = "system"

// LineItem is a frozen copy of a cart item at order-creation time,
// independent of later catalog changes. Line items are immutable after
// creation.
type LineItem struct {
	ProductID string  `json:"product_id" bson:"product_id"`
	Name      string  `json:"name" bson:"name"`
	UnitPrice float64 `json:"unit_price" bson:"unit_price"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	ImageURL  string  `json:"image_url,omitempty" bson:"image_url,omitempty"`
}

// StatusChange is one entry in the order's status ledger.
type StatusChange struct {
	Status    Status    `json:"status" bson:"status"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	ChangedBy string    `json:"changed_by" bson:"changed_by"`
}

type PaymentStatus string

const (
	PaymentPaid   PaymentStatus = "paid"
	PaymentUnpaid PaymentStatus = "unpaid"
)

// Payment records how the order was (or will be) paid. TransactionID is
// the payment provider's confirmed transaction and doubles as the dedupe
// key for idempotent order creation.
type Payment struct {
	Method        string        `json:"method" bson:"method"`
	Status        PaymentStatus `json:"status" bson:"status"`
	TransactionID string        `json:"transaction_id,omitempty" bson:"transaction_id,omitempty"`
}

type ShippingAddress struct {
	Name       string `json:"name" bson:"name"`
	Line1      string `json:"line1" bson:"line1"`
	Line2      string `json:"line2,omitempty" bson:"line2,omitempty"`
	City       string `json:"city" bson:"city"`
	State      string `json:"state,omitempty" bson:"state,omitempty"`
	PostalCode string `json:"postal_code" bson:"postal_code"`
	Country    string `json:"country" bson:"country"`
	Phone      string `json:"phone,omitempty" bson:"phone,omitempty"`
}

type Delivery struct {
	Carrier        string     `json:"carrier,omitempty" bson:"carrier,omitempty"`
	TrackingNumber string     `json:"tracking_number,omitempty" bson:"tracking_number,omitempty"`
	EstimatedAt    *time.Time `json:"estimated_at,omitempty" bson:"estimated_at,omitempty"`
}

// Order is the durable record of a purchase. StatusHistory is never
// truncated or reordered, and its last entry always matches Status.
type Order struct {
	ID               string          `json:"id" bson:"_id"`
	UserID           string          `json:"user_id" bson:"user_id"`
	Email            string          `json:"email,omitempty" bson:"email,omitempty"`
	Items            []LineItem      `json:"items" bson:"items"`
	Status           Status          `json:"status" bson:"status"`
	StatusHistory    []StatusChange  `json:"status_history" bson:"status_history"`
	Payment          Payment         `json:"payment" bson:"payment"`
	ShippingAddress  ShippingAddress `json:"shipping_address" bson:"shipping_address"`
	Delivery         Delivery        `json:"delivery,omitempty" bson:"delivery,omitempty"`
	Notes            string          `json:"notes,omitempty" bson:"notes,omitempty"`
	AmountMinorUnits int64           `json:"amount_minor_units" bson:"amount_minor_units"`
	CreatedAt        time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" bson:"updated_at"`
}
