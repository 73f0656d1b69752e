package handler

import (
	"time"

	"storefront/internal/cart"
	"storefront/internal/model"
)

// View types are the JSON shapes the façade returns. Money is a two-decimal
// string and times are RFC 3339, so REST and MCP clients never see decimal
// internals.

type productView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Price        string `json:"price"`
	Image        string `json:"image,omitempty"`
	Stock        int    `json:"stock"`
	InStock      bool   `json:"in_stock"`
	CategoryID   string `json:"category_id,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
}

func newProductView(p model.Product) productView {
	return productView{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        model.FormatPrice(p.Price),
		Image:        p.Image,
		Stock:        p.Stock,
		InStock:      p.InStock(),
		CategoryID:   p.Category.ID,
		CategoryName: p.Category.Name,
	}
}

func newProductViews(ps []model.Product) []productView {
	out := make([]productView, 0, len(ps))
	for _, p := range ps {
		out = append(out, newProductView(p))
	}
	return out
}

type categoryView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func newCategoryViews(cs []model.Category) []categoryView {
	out := make([]categoryView, 0, len(cs))
	for _, c := range cs {
		out = append(out, categoryView{ID: c.ID, Name: c.Name, Description: c.Description})
	}
	return out
}

type lineView struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
	Image     string `json:"image,omitempty"`
}

type cartView struct {
	Mode       string     `json:"mode"`
	Items      []lineView `json:"items"`
	TotalItems int        `json:"total_items"`
	TotalPrice string     `json:"total_price"`
	Loading    bool       `json:"loading"`
	Error      string     `json:"error,omitempty"`
}

func newCartView(s cart.Snapshot) cartView {
	v := cartView{
		Mode:       s.Mode.String(),
		Items:      make([]lineView, 0, len(s.Items)),
		TotalItems: s.TotalItems,
		TotalPrice: model.FormatPrice(s.TotalPrice),
		Loading:    s.Loading,
		Error:      s.Error,
	}
	for _, it := range s.Items {
		v.Items = append(v.Items, lineView{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     model.FormatPrice(it.Price),
			Quantity:  it.Quantity,
			Subtotal:  model.FormatPrice(it.Subtotal()),
			Image:     it.Image,
		})
	}
	return v
}

type orderLineView struct {
	ProductID string `json:"product_id,omitempty"`
	Name      string `json:"name,omitempty"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
}

type orderView struct {
	ID        string          `json:"id,omitempty"`
	Status    string          `json:"status"`
	Total     string          `json:"total"`
	Items     []orderLineView `json:"items"`
	CreatedAt string          `json:"created_at,omitempty"`
	Customer  string          `json:"customer,omitempty"`
}

func newOrderView(o model.Order) orderView {
	v := orderView{
		ID:     o.ID,
		Status: string(o.Status),
		Total:  model.FormatPrice(o.Total),
		Items:  make([]orderLineView, 0, len(o.Items)),
	}
	if !o.CreatedAt.IsZero() {
		v.CreatedAt = o.CreatedAt.UTC().Format(time.RFC3339)
	}
	if o.Customer != nil {
		v.Customer = o.Customer.Username
	}
	for _, it := range o.Items {
		v.Items = append(v.Items, orderLineView{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     model.FormatPrice(it.Price),
			Quantity:  it.Quantity,
		})
	}
	return v
}

func newOrderViews(os []model.Order) []orderView {
	out := make([]orderView, 0, len(os))
	for _, o := range os {
		out = append(out, newOrderView(o))
	}
	return out
}

type userView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type sessionView struct {
	Authenticated bool      `json:"authenticated"`
	User          *userView `json:"user,omitempty"`
}

func newSessionView(s *model.Session) sessionView {
	if s == nil {
		return sessionView{}
	}
	return sessionView{
		Authenticated: true,
		User: &userView{
			ID:       s.User.ID,
			Username: s.User.Username,
			Email:    s.User.Email,
			Role:     s.User.Role,
		},
	}
}

type statsView struct {
	TotalProducts  int            `json:"total_products"`
	TotalOrders    int            `json:"total_orders"`
	TotalUsers     int            `json:"total_users"`
	TotalRevenue   string         `json:"total_revenue"`
	OrdersByStatus map[string]int `json:"orders_by_status"`
}

func newStatsView(s *model.DashboardStats) statsView {
	v := statsView{
		TotalProducts:  s.TotalProducts,
		TotalOrders:    s.TotalOrders,
		TotalUsers:     s.TotalUsers,
		TotalRevenue:   model.FormatPrice(s.TotalRevenue),
		OrdersByStatus: make(map[string]int, len(s.OrdersByStatus)),
	}
	for status, n := range s.OrdersByStatus {
		v.OrdersByStatus[string(status)] = n
	}
	return v
}
