// Package catalog defines the contract to the product catalog. The cart
// only needs a point-in-time snapshot of a product; it never treats the
// snapshot as live inventory.
package catalog

import (
	"context"
	"errors"
	"sync"
)

var ErrProductNotFound = errors.New("product not found")

// Snapshot is the catalog's view of a product at lookup time.
type Snapshot struct {
	ProductID      string  `json:"product_id"`
	Name           string  `json:"name"`
	UnitPrice      float64 `json:"unit_price"`
	ImageURL       string  `json:"image_url,omitempty"`
	AvailableStock int     `json:"available_stock"`
}

// Provider supplies product snapshots for add-to-cart.
type Provider interface {
	Snapshot(ctx context.Context, productID string) (*Snapshot, error)
}

// StaticProvider serves snapshots from a fixed in-memory set. Used in
// tests and as the default wiring when no external catalog is configured.
type StaticProvider struct {
	mu       sync.RWMutex
	products map[string]Snapshot
}

func NewStaticProvider(products ...Snapshot) *StaticProvider {
	p := &StaticProvider{products: make(map[string]Snapshot, len(products))}
	for _, product := range products {
		p.products[product.ProductID] = product
	}
	return p
}

func (p *StaticProvider) Snapshot(_ context.Context, productID string) (*Snapshot, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	product, ok := p.products[productID]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &product, nil
}

// SetStock adjusts a product's stock snapshot in place.
func (p *StaticProvider) SetStock(productID string, stock int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if product, ok := p.products[productID]; ok {
		product.AvailableStock = stock
		p.products[productID] = product
	}
}
