package storeapi

import (
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"storefront/internal/model"
)

func (c *Client) toCategory(w wireCategory) model.Category {
	return model.Category{
		ID:          w.ident(),
		Name:        w.Name,
		Description: w.Description,
	}
}

func (c *Client) toProduct(w wireProduct) model.Product {
	p := model.Product{
		ID:          w.ident(),
		Name:        w.Name,
		Description: w.Description,
		Price:       priceOf(w.Price),
		Image:       c.imageURL(w.ImageURL, w.Image),
		Stock:       w.Stock,
		CreatedAt:   time.Time(w.CreatedAt),
		UpdatedAt:   time.Time(w.UpdatedAt),
	}
	if w.Category != nil {
		p.Category.ID = w.Category.ID
		if w.Category.Obj != nil {
			p.Category = c.toCategory(*w.Category.Obj)
		}
	}
	return p
}

func (c *Client) toProducts(ws []wireProduct) []model.Product {
	out := make([]model.Product, 0, len(ws))
	for _, w := range ws {
		p := c.toProduct(w)
		if p.ID == "" {
			c.logger.Warn("dropping product without id", slog.String("name", w.Name))
			continue
		}
		out = append(out, p)
	}
	return out
}

func toUser(w wireUser) model.User {
	return model.User{
		ID:       w.ident(),
		Username: w.Username,
		Email:    w.Email,
		Role:     w.Role,
	}
}

func toAdminUser(w wireUser) model.AdminUser {
	return model.AdminUser{
		User:      toUser(w),
		IsBlocked: w.IsBlocked,
		CreatedAt: time.Time(w.CreatedAt),
	}
}

// toLineItems converts cart rows. Rows whose product id cannot be resolved
// are dropped and logged. Duplicates are kept.
func (c *Client) toLineItems(rows []wireCartRow) []model.LineItem {
	out := make([]model.LineItem, 0, len(rows))
	for i, row := range rows {
		r := resolve(row.Product, row.DessertID, row.ProductID)
		if r == nil {
			c.logger.Warn("dropping cart row without product id", slog.Int("row", i))
			continue
		}

		item := model.LineItem{
			ProductID: r.ID,
			Name:      row.Name,
			Price:     priceOf(row.Price),
			Quantity:  row.Quantity,
		}
		if r.Obj != nil {
			p := c.toProduct(*r.Obj)
			item = model.LineItemFromProduct(p)
			item.ProductID = r.ID
			item.Quantity = row.Quantity
			if row.Price.Valid {
				item.Price = row.Price.Decimal
			}
		}
		out = append(out, item)
	}
	return out
}

func (c *Client) toOrder(w wireOrder) model.Order {
	o := model.Order{
		ID:        w.ident(),
		Status:    model.OrderStatus(strings.ToLower(strings.TrimSpace(w.Status))),
		CreatedAt: time.Time(w.CreatedAt),
		UpdatedAt: time.Time(w.UpdatedAt),
	}

	switch {
	case w.Total.Valid:
		o.Total = w.Total.Decimal
	case w.TotalAmount.Valid:
		o.Total = w.TotalAmount.Decimal
	case w.TotalPrice.Valid:
		o.Total = w.TotalPrice.Decimal
	}

	if u := resolve(w.UserID, w.User); u != nil {
		o.UserID = u.ID
		if u.Obj != nil {
			customer := toUser(*u.Obj)
			o.Customer = &customer
		}
	}

	computed := decimal.Zero
	for _, wi := range w.Items {
		item := model.OrderItem{
			Name:     wi.Name,
			Price:    priceOf(wi.Price),
			Quantity: wi.Quantity,
		}
		if r := resolve(wi.Product, wi.DessertID, wi.ProductID); r != nil {
			item.ProductID = r.ID
			if r.Obj != nil {
				if item.Name == "" {
					item.Name = r.Obj.Name
				}
				if !wi.Price.Valid {
					item.Price = priceOf(r.Obj.Price)
				}
			}
		}
		computed = computed.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		o.Items = append(o.Items, item)
	}
	if !w.Total.Valid && !w.TotalAmount.Valid && !w.TotalPrice.Valid {
		o.Total = computed
	}
	return o
}

func (c *Client) toOrders(ws []wireOrder) []model.Order {
	out := make([]model.Order, 0, len(ws))
	for _, w := range ws {
		out = append(out, c.toOrder(w))
	}
	return out
}

func (c *Client) imageURL(refs ...string) string {
	for _, r := range refs {
		if u := model.ResolveImageURL(c.assetBaseURL, r); u != "" {
			return u
		}
	}
	return ""
}

func priceOf(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}
