package model

import (
	"github.com/shopspring/decimal"
)

// LineItem is one product row in a cart.
// Quantity is always >= 1; a row that would drop to zero is removed instead.
type LineItem struct {
	ProductID   string          `json:"product_id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"` // unit price
	Category    string          `json:"category,omitempty"`
	Image       string          `json:"image,omitempty"`
	Description string          `json:"description,omitempty"`
	Quantity    int             `json:"quantity"`
}

// Subtotal is Price × Quantity.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// LineItemFromProduct snapshots the product fields a cart row displays.
// Quantity is left at zero for the caller to set.
func LineItemFromProduct(p Product) LineItem {
	return LineItem{
		ProductID:   p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Category:    p.Category.Name,
		Image:       p.Image,
		Description: p.Description,
	}
}

// OrderRequest is what the cart sends to order creation.
type OrderRequest struct {
	Items []LineItem
	// IdempotencyKey lets the backend drop a resubmitted order.
	IdempotencyKey string
}
