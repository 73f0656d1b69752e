package gateway

import (
	"context"

	"storefront/internal/model"
)

// Mock implements every gateway interface for testing.
// Each method can be configured via function fields.
type Mock struct {
	GetCartFunc        func(ctx context.Context) ([]model.LineItem, error)
	AddCartItemFunc    func(ctx context.Context, productID string, quantity int) error
	UpdateCartItemFunc func(ctx context.Context, productID string, quantity int) error
	RemoveCartItemFunc func(ctx context.Context, productID string) error
	ClearCartFunc      func(ctx context.Context) error
	CreateOrderFunc    func(ctx context.Context, req model.OrderRequest) (*model.Order, error)

	LoginFunc           func(ctx context.Context, creds model.Credentials) (*model.Session, error)
	RegisterFunc        func(ctx context.Context, reg model.Registration) error
	ForgotPasswordFunc  func(ctx context.Context, email string) error
	ResetPasswordFunc   func(ctx context.Context, token, password string) error
	ValidateSessionFunc func(ctx context.Context, token string) error

	ProductsFunc   func(ctx context.Context) ([]model.Product, error)
	CategoriesFunc func(ctx context.Context) ([]model.Category, error)

	MyOrdersFunc func(ctx context.Context) ([]model.Order, error)
	OrderFunc    func(ctx context.Context, id string) (*model.Order, error)

	AllOrdersFunc         func(ctx context.Context) ([]model.Order, error)
	UpdateOrderStatusFunc func(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error)
	UsersFunc             func(ctx context.Context) ([]model.AdminUser, error)
	UpdateUserFunc        func(ctx context.Context, id string, upd model.UserUpdate) (*model.AdminUser, error)
	DeleteUserFunc        func(ctx context.Context, id string) error
	CreateProductFunc     func(ctx context.Context, in model.ProductInput) (*model.Product, error)
	UpdateProductFunc     func(ctx context.Context, id string, in model.ProductInput) (*model.Product, error)
	DeleteProductFunc     func(ctx context.Context, id string) error
	LowStockProductsFunc  func(ctx context.Context) ([]model.Product, error)
	TopProductsFunc       func(ctx context.Context) ([]model.Product, error)
	CreateCategoryFunc    func(ctx context.Context, in model.CategoryInput) (*model.Category, error)
	UpdateCategoryFunc    func(ctx context.Context, id string, in model.CategoryInput) (*model.Category, error)
	DeleteCategoryFunc    func(ctx context.Context, id string) error
}

// GetCart calls the configured GetCartFunc or returns an empty cart.
func (m *Mock) GetCart(ctx context.Context) ([]model.LineItem, error) {
	if m.GetCartFunc != nil {
		return m.GetCartFunc(ctx)
	}
	return nil, nil
}

// AddCartItem calls the configured AddCartItemFunc or succeeds.
func (m *Mock) AddCartItem(ctx context.Context, productID string, quantity int) error {
	if m.AddCartItemFunc != nil {
		return m.AddCartItemFunc(ctx, productID, quantity)
	}
	return nil
}

// UpdateCartItem calls the configured UpdateCartItemFunc or succeeds.
func (m *Mock) UpdateCartItem(ctx context.Context, productID string, quantity int) error {
	if m.UpdateCartItemFunc != nil {
		return m.UpdateCartItemFunc(ctx, productID, quantity)
	}
	return nil
}

// RemoveCartItem calls the configured RemoveCartItemFunc or succeeds.
func (m *Mock) RemoveCartItem(ctx context.Context, productID string) error {
	if m.RemoveCartItemFunc != nil {
		return m.RemoveCartItemFunc(ctx, productID)
	}
	return nil
}

// ClearCart calls the configured ClearCartFunc or succeeds.
func (m *Mock) ClearCart(ctx context.Context) error {
	if m.ClearCartFunc != nil {
		return m.ClearCartFunc(ctx)
	}
	return nil
}

// CreateOrder calls the configured CreateOrderFunc or returns an error.
func (m *Mock) CreateOrder(ctx context.Context, req model.OrderRequest) (*model.Order, error) {
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, req)
	}
	return nil, model.NewInternalError(nil)
}

// Login calls the configured LoginFunc or rejects the credentials.
func (m *Mock) Login(ctx context.Context, creds model.Credentials) (*model.Session, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, creds)
	}
	return nil, model.NewUnauthorizedError("invalid credentials")
}

// Register calls the configured RegisterFunc or succeeds.
func (m *Mock) Register(ctx context.Context, reg model.Registration) error {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, reg)
	}
	return nil
}

// ForgotPassword calls the configured ForgotPasswordFunc or succeeds.
func (m *Mock) ForgotPassword(ctx context.Context, email string) error {
	if m.ForgotPasswordFunc != nil {
		return m.ForgotPasswordFunc(ctx, email)
	}
	return nil
}

// ResetPassword calls the configured ResetPasswordFunc or succeeds.
func (m *Mock) ResetPassword(ctx context.Context, token, password string) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, token, password)
	}
	return nil
}

// ValidateSession calls the configured ValidateSessionFunc or accepts the token.
func (m *Mock) ValidateSession(ctx context.Context, token string) error {
	if m.ValidateSessionFunc != nil {
		return m.ValidateSessionFunc(ctx, token)
	}
	return nil
}

// Products calls the configured ProductsFunc or returns no products.
func (m *Mock) Products(ctx context.Context) ([]model.Product, error) {
	if m.ProductsFunc != nil {
		return m.ProductsFunc(ctx)
	}
	return nil, nil
}

// Categories calls the configured CategoriesFunc or returns no categories.
func (m *Mock) Categories(ctx context.Context) ([]model.Category, error) {
	if m.CategoriesFunc != nil {
		return m.CategoriesFunc(ctx)
	}
	return nil, nil
}

// MyOrders calls the configured MyOrdersFunc or returns no orders.
func (m *Mock) MyOrders(ctx context.Context) ([]model.Order, error) {
	if m.MyOrdersFunc != nil {
		return m.MyOrdersFunc(ctx)
	}
	return nil, nil
}

// Order calls the configured OrderFunc or returns not found.
func (m *Mock) Order(ctx context.Context, id string) (*model.Order, error) {
	if m.OrderFunc != nil {
		return m.OrderFunc(ctx, id)
	}
	return nil, model.NewNotFoundError("order")
}

// AllOrders calls the configured AllOrdersFunc or returns no orders.
func (m *Mock) AllOrders(ctx context.Context) ([]model.Order, error) {
	if m.AllOrdersFunc != nil {
		return m.AllOrdersFunc(ctx)
	}
	return nil, nil
}

// UpdateOrderStatus calls the configured UpdateOrderStatusFunc or returns not found.
func (m *Mock) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error) {
	if m.UpdateOrderStatusFunc != nil {
		return m.UpdateOrderStatusFunc(ctx, id, status)
	}
	return nil, model.NewNotFoundError("order")
}

// Users calls the configured UsersFunc or returns no users.
func (m *Mock) Users(ctx context.Context) ([]model.AdminUser, error) {
	if m.UsersFunc != nil {
		return m.UsersFunc(ctx)
	}
	return nil, nil
}

// UpdateUser calls the configured UpdateUserFunc or returns not found.
func (m *Mock) UpdateUser(ctx context.Context, id string, upd model.UserUpdate) (*model.AdminUser, error) {
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(ctx, id, upd)
	}
	return nil, model.NewNotFoundError("user")
}

// DeleteUser calls the configured DeleteUserFunc or returns not found.
func (m *Mock) DeleteUser(ctx context.Context, id string) error {
	if m.DeleteUserFunc != nil {
		return m.DeleteUserFunc(ctx, id)
	}
	return model.NewNotFoundError("user")
}

// CreateProduct calls the configured CreateProductFunc or returns an error.
func (m *Mock) CreateProduct(ctx context.Context, in model.ProductInput) (*model.Product, error) {
	if m.CreateProductFunc != nil {
		return m.CreateProductFunc(ctx, in)
	}
	return nil, model.NewInternalError(nil)
}

// UpdateProduct calls the configured UpdateProductFunc or returns not found.
func (m *Mock) UpdateProduct(ctx context.Context, id string, in model.ProductInput) (*model.Product, error) {
	if m.UpdateProductFunc != nil {
		return m.UpdateProductFunc(ctx, id, in)
	}
	return nil, model.NewNotFoundError("product")
}

// DeleteProduct calls the configured DeleteProductFunc or returns not found.
func (m *Mock) DeleteProduct(ctx context.Context, id string) error {
	if m.DeleteProductFunc != nil {
		return m.DeleteProductFunc(ctx, id)
	}
	return model.NewNotFoundError("product")
}

// LowStockProducts calls the configured LowStockProductsFunc or returns none.
func (m *Mock) LowStockProducts(ctx context.Context) ([]model.Product, error) {
	if m.LowStockProductsFunc != nil {
		return m.LowStockProductsFunc(ctx)
	}
	return nil, nil
}

// TopProducts calls the configured TopProductsFunc or returns none.
func (m *Mock) TopProducts(ctx context.Context) ([]model.Product, error) {
	if m.TopProductsFunc != nil {
		return m.TopProductsFunc(ctx)
	}
	return nil, nil
}

// CreateCategory calls the configured CreateCategoryFunc or returns an error.
func (m *Mock) CreateCategory(ctx context.Context, in model.CategoryInput) (*model.Category, error) {
	if m.CreateCategoryFunc != nil {
		return m.CreateCategoryFunc(ctx, in)
	}
	return nil, model.NewInternalError(nil)
}

// UpdateCategory calls the configured UpdateCategoryFunc or returns not found.
func (m *Mock) UpdateCategory(ctx context.Context, id string, in model.CategoryInput) (*model.Category, error) {
	if m.UpdateCategoryFunc != nil {
		return m.UpdateCategoryFunc(ctx, id, in)
	}
	return nil, model.NewNotFoundError("category")
}

// DeleteCategory calls the configured DeleteCategoryFunc or returns not found.
func (m *Mock) DeleteCategory(ctx context.Context, id string) error {
	if m.DeleteCategoryFunc != nil {
		return m.DeleteCategoryFunc(ctx, id)
	}
	return model.NewNotFoundError("category")
}

// Verify Mock implements every gateway interface at compile time.
var (
	_ Cart    = (*Mock)(nil)
	_ Auth    = (*Mock)(nil)
	_ Catalog = (*Mock)(nil)
	_ Orders  = (*Mock)(nil)
	_ Admin   = (*Mock)(nil)
)
