package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardStats summarizes the store for the admin dashboard.
type DashboardStats struct {
	TotalProducts  int                 `json:"total_products"`
	TotalOrders    int                 `json:"total_orders"`
	TotalUsers     int                 `json:"total_users"`
	TotalRevenue   decimal.Decimal     `json:"total_revenue"`
	OrdersByStatus map[OrderStatus]int `json:"orders_by_status"`
}

// AdminUser is a user as the admin listing reports it.
type AdminUser struct {
	User
	IsBlocked bool      `json:"is_blocked"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// ProductInput creates or updates a product. On update, zero-valued fields
// are left unchanged by the backend except where a pointer is set.
type ProductInput struct {
	Name        string
	Description string
	Price       *decimal.Decimal
	CategoryID  string
	Stock       *int
	// ImagePath is a local file uploaded with the product, if set.
	ImagePath string
}

// CategoryInput creates or updates a category.
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// UserUpdate changes an account from the admin panel. Nil fields are not sent.
type UserUpdate struct {
	Username  *string `json:"username,omitempty"`
	Email     *string `json:"email,omitempty"`
	Role      *string `json:"role,omitempty"`
	IsBlocked *bool   `json:"isBlocked,omitempty"`
}
