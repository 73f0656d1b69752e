// Package reconcile holds the pure line-item rules of the cart.
// Every function returns a new slice and leaves its input untouched, so the
// cart engine can compute a candidate state outside its lock and swap it in.
//
// Matching is by ProductID only. A cart produced by these functions has at
// most one line per product and no line with Quantity < 1.
package reconcile

import (
	"github.com/shopspring/decimal"

	"storefront/internal/model"
)

// Fold collapses rows that share a ProductID into one line, summing their
// quantities. The first occurrence keeps its position and display fields.
// Rows with Quantity <= 0 are dropped.
//
// Backends sometimes return one row per add request instead of one per
// product; replacing the cart with those rows unfolded would double count.
func Fold(rows []model.LineItem) []model.LineItem {
	out := make([]model.LineItem, 0, len(rows))
	index := make(map[string]int, len(rows))

	for _, row := range rows {
		if row.Quantity <= 0 {
			continue
		}
		if i, ok := index[row.ProductID]; ok {
			out[i].Quantity += row.Quantity
			continue
		}
		index[row.ProductID] = len(out)
		out = append(out, row)
	}
	return out
}

// Merge folds extra into base: shared products sum, new ones are appended.
func Merge(base, extra []model.LineItem) []model.LineItem {
	all := make([]model.LineItem, 0, len(base)+len(extra))
	all = append(all, base...)
	all = append(all, extra...)
	return Fold(all)
}

// Add increments the line for item.ProductID by item.Quantity, or appends
// item when no line exists. A non-positive quantity returns an unchanged copy.
func Add(items []model.LineItem, item model.LineItem) []model.LineItem {
	out := clone(items)
	if item.Quantity <= 0 {
		return out
	}
	for i := range out {
		if out[i].ProductID == item.ProductID {
			out[i].Quantity += item.Quantity
			return out
		}
	}
	return append(out, item)
}

// SetQuantity sets the line's quantity. Quantity <= 0 removes the line.
// An unknown productID is a no-op.
func SetQuantity(items []model.LineItem, productID string, quantity int) []model.LineItem {
	if quantity <= 0 {
		return Remove(items, productID)
	}
	out := clone(items)
	for i := range out {
		if out[i].ProductID == productID {
			out[i].Quantity = quantity
			break
		}
	}
	return out
}

// Remove drops the line for productID, if any.
func Remove(items []model.LineItem, productID string) []model.LineItem {
	out := make([]model.LineItem, 0, len(items))
	for _, item := range items {
		if item.ProductID != productID {
			out = append(out, item)
		}
	}
	return out
}

// Contains reports whether a line exists for productID.
func Contains(items []model.LineItem, productID string) bool {
	for _, item := range items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// Totals returns the item count and the price sum of items.
func Totals(items []model.LineItem) (count int, total decimal.Decimal) {
	total = decimal.Zero
	for _, item := range items {
		count += item.Quantity
		total = total.Add(item.Subtotal())
	}
	return count, total
}

func clone(items []model.LineItem) []model.LineItem {
	out := make([]model.LineItem, len(items))
	copy(out, items)
	return out
}
