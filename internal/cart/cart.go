// Package cart owns the per-session shopping cart: item and stock
// invariants, TTL-based expiration and session-scoped persistence.
package cart

import "time"

// Item is a purchasable unit and the quantity the shopper intends to buy.
// AvailableStock is a snapshot of catalog stock taken at add-time; the cart
// never re-checks live inventory.
type Item struct {
	ProductID      string  `json:"product_id"`
	Name           string  `json:"name"`
	UnitPrice      float64 `json:"unit_price"`
	ImageURL       string  `json:"image_url,omitempty"`
	Quantity       int     `json:"quantity"`
	AvailableStock int     `json:"available_stock"`
}

// Cart is the shopper's working set. Items are ordered and unique by
// ProductID; adding an existing product merges quantities instead of
// duplicating the entry.
type Cart struct {
	Items          []Item    `json:"items"`
	LastModifiedAt time.Time `json:"last_modified_at"`
}
