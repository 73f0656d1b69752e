// Package model defines the storefront's domain types and error taxonomy.
// Types here are already normalized: ids are strings, prices are decimals,
// and image references are absolute URLs. Wire formats live in storeapi.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category groups products for browsing.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Product is a catalog entry. Read-only on the storefront side.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
	Stock       int             `json:"stock"`
	Category    Category        `json:"category"`
	CreatedAt   time.Time       `json:"created_at,omitzero"`
	UpdatedAt   time.Time       `json:"updated_at,omitzero"`
}

// InStock reports whether any units are available.
func (p Product) InStock() bool {
	return p.Stock > 0
}
