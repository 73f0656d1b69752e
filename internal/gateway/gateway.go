// Package gateway defines the interfaces through which storefront services
// reach the shop backend. The HTTP implementation lives in storeapi; tests
// use Mock.
//
// Implementations are stateless apart from connection reuse: they own no
// cart, session or catalog state. Every response is already normalized to
// model types, so callers never see envelope shapes or numeric ids.
package gateway

import (
	"context"

	"storefront/internal/model"
)

// Cart is the server-side cart of the signed-in user.
type Cart interface {
	// GetCart returns the server's rows as-is. Rows may repeat a product id;
	// folding is the caller's job.
	GetCart(ctx context.Context) ([]model.LineItem, error)

	AddCartItem(ctx context.Context, productID string, quantity int) error
	UpdateCartItem(ctx context.Context, productID string, quantity int) error
	RemoveCartItem(ctx context.Context, productID string) error
	ClearCart(ctx context.Context) error

	// CreateOrder submits the given lines as a new order.
	CreateOrder(ctx context.Context, req model.OrderRequest) (*model.Order, error)
}

// Auth handles identity. None of its calls need an existing session except
// ValidateSession, which checks the token it is given.
type Auth interface {
	Login(ctx context.Context, creds model.Credentials) (*model.Session, error)
	Register(ctx context.Context, reg model.Registration) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error

	// ValidateSession makes a lightweight authenticated call with token.
	// Returns an error wrapping model.ErrUnauthorized if the backend rejects it.
	ValidateSession(ctx context.Context, token string) error
}

// Catalog lists products and categories. Both calls are public.
type Catalog interface {
	Products(ctx context.Context) ([]model.Product, error)
	Categories(ctx context.Context) ([]model.Category, error)
}

// Orders reads the signed-in user's order history.
type Orders interface {
	MyOrders(ctx context.Context) ([]model.Order, error)
	Order(ctx context.Context, id string) (*model.Order, error)
}

// Admin is the admin panel's backend surface. The backend enforces the role;
// callers are expected to check it first as well.
type Admin interface {
	AllOrders(ctx context.Context) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error)

	Users(ctx context.Context) ([]model.AdminUser, error)
	UpdateUser(ctx context.Context, id string, upd model.UserUpdate) (*model.AdminUser, error)
	DeleteUser(ctx context.Context, id string) error

	CreateProduct(ctx context.Context, in model.ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, id string, in model.ProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	LowStockProducts(ctx context.Context) ([]model.Product, error)
	TopProducts(ctx context.Context) ([]model.Product, error)

	CreateCategory(ctx context.Context, in model.CategoryInput) (*model.Category, error)
	UpdateCategory(ctx context.Context, id string, in model.CategoryInput) (*model.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

// TokenSource yields the bearer token for authenticated calls, or "" when
// nobody is signed in.
type TokenSource interface {
	Token() string
}
