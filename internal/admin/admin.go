// Package admin implements the store management operations: dashboard
// statistics and product, category, order and user maintenance. Every call
// requires a signed-in admin and is refused before any network I/O
// otherwise.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"storefront/internal/gateway"
	"storefront/internal/model"
)

// Identity reports who is signed in.
type Identity interface {
	Authenticated() bool
	IsAdmin() bool
}

// Refresher reloads a cache after the data behind it changed.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Service runs admin operations against the backend.
type Service struct {
	gw      gateway.Admin
	catalog gateway.Catalog
	who     Identity
	cache   Refresher
	logger  *slog.Logger
}

// New returns a Service. cache may be nil.
func New(gw gateway.Admin, catalog gateway.Catalog, who Identity, cache Refresher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{gw: gw, catalog: catalog, who: who, cache: cache, logger: logger}
}

func (s *Service) authorize() error {
	if !s.who.Authenticated() {
		return model.NewUnauthorizedError("sign in required")
	}
	if !s.who.IsAdmin() {
		return model.NewForbiddenError("admin role required")
	}
	return nil
}

// Stats fetches products, orders and users concurrently and summarizes them.
func (s *Service) Stats(ctx context.Context) (*model.DashboardStats, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}

	var (
		products []model.Product
		orders   []model.Order
		users    []model.AdminUser
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		products, err = s.catalog.Products(gctx)
		return err
	})
	g.Go(func() (err error) {
		orders, err = s.gw.AllOrders(gctx)
		return err
	})
	g.Go(func() (err error) {
		users, err = s.gw.Users(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("loading dashboard stats failed", slog.Any("error", err))
		return nil, err
	}

	return Summarize(products, orders, users), nil
}

// Summarize derives dashboard totals. Revenue is the sum of every order's
// total regardless of status.
func Summarize(products []model.Product, orders []model.Order, users []model.AdminUser) *model.DashboardStats {
	stats := &model.DashboardStats{
		TotalProducts:  len(products),
		TotalOrders:    len(orders),
		TotalUsers:     len(users),
		OrdersByStatus: make(map[model.OrderStatus]int),
	}
	for _, o := range orders {
		stats.TotalRevenue = stats.TotalRevenue.Add(o.Total)
		stats.OrdersByStatus[o.Status]++
	}
	return stats
}

// Orders lists every order.
func (s *Service) Orders(ctx context.Context) ([]model.Order, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}
	return s.gw.AllOrders(ctx)
}

// UpdateOrderStatus moves order id to status.
func (s *Service) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}
	if err := requireID("order", id); err != nil {
		return nil, err
	}
	status = model.OrderStatus(strings.ToLower(strings.TrimSpace(string(status))))
	if !status.Valid() {
		return nil, model.NewValidationError("status", fmt.Sprintf("unknown status %q", status))
	}

	o, err := s.gw.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.logger.Info("order status updated", slog.String("order_id", id), slog.String("status", string(status)))
	return o, nil
}

// Users lists every account.
func (s *Service) Users(ctx context.Context) ([]model.AdminUser, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}
	return s.gw.Users(ctx)
}

// UpdateUser changes an account.
func (s *Service) UpdateUser(ctx context.Context, id string, upd model.UserUpdate) (*model.AdminUser, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}
	if err := requireID("user", id); err != nil {
		return nil, err
	}
	if upd.Role != nil {
		role := strings.ToUpper(strings.TrimSpace(*upd.Role))
		if role != model.RoleAdmin && role != model.RoleUser {
			return nil, model.NewValidationError("role", fmt.Sprintf("must be %s or %s", model.RoleAdmin, model.RoleUser))
		}
		upd.Role = &role
	}
	if upd.Username != nil && strings.TrimSpace(*upd.Username) == "" {
		return nil, model.NewValidationError("username", "must not be empty")
	}
	if upd.Email != nil && strings.TrimSpace(*upd.Email) == "" {
		return nil, model.NewValidationError("email", "must not be empty")
	}
	return s.gw.UpdateUser(ctx, id, upd)
}

// DeleteUser removes an account.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if err := s.authorize(); err != nil {
		return err
	}
	if err := requireID("user", id); err != nil {
		return err
	}
	return s.gw.DeleteUser(ctx, id)
}

// CreateProduct adds a product. Name, price and category are required.
func (s *Service) CreateProduct(ctx context.Context, in model.ProductInput) (*model.Product, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, model.NewValidationError("name", "required")
	}
	if in.Price == nil {
		return nil, model.NewValidationError("price", "required")
	}
	if strings.TrimSpace(in.CategoryID) == "" {
		return nil, model.NewValidationError("category", "required")
	}
	if err := validateProduct(in); err != nil {
		return nil, err
	}

	p, err := s.gw.CreateProduct(ctx, in)
	if err != nil {
		return nil, err
	}
	s.refresh(ctx)
	return p, nil
}

// UpdateProduct changes product id. Unset fields are left alone.
func (s *Service) UpdateProduct(ctx context.Context, id string, in model.ProductInput) (*model.Product, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}
	if err := requireID("product", id); err != nil {
		return nil, err
	}
	if err := validateProduct(in); err != nil {
		return nil, err
	}

	p, err := s.gw.UpdateProduct(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.refresh(ctx)
	return p, nil
}

// DeleteProduct removes product id.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.authorize(); err != nil {
		return err
	}
	if err := requireID("product", id); err != nil {
		return err
	}
	if err := s.gw.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.refresh(ctx)
	return nil
}

// LowStock lists products the backend flags as nearly sold out.
func (s *Service) LowStock(ctx context.Context) ([]model.Product, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}
	return s.gw.LowStockProducts(ctx)
}

// TopProducts lists best sellers.
func (s *Service) TopProducts(ctx context.Context) ([]model.Product, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}
	return s.gw.TopProducts(ctx)
}

// CreateCategory adds a category.
func (s *Service) CreateCategory(ctx context.Context, in model.CategoryInput) (*model.Category, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, model.NewValidationError("name", "required")
	}

	c, err := s.gw.CreateCategory(ctx, in)
	if err != nil {
		return nil, err
	}
	s.refresh(ctx)
	return c, nil
}

// UpdateCategory changes category id.
func (s *Service) UpdateCategory(ctx context.Context, id string, in model.CategoryInput) (*model.Category, error) {
	if err := s.authorize(); err != nil {
		return nil, err
	}
	if err := requireID("category", id); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, model.NewValidationError("name", "required")
	}

	c, err := s.gw.UpdateCategory(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.refresh(ctx)
	return c, nil
}

// DeleteCategory removes category id.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if err := s.authorize(); err != nil {
		return err
	}
	if err := requireID("category", id); err != nil {
		return err
	}
	if err := s.gw.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.refresh(ctx)
	return nil
}

// refresh reloads the catalog after a mutation. The mutation already
// succeeded, so a failed reload is only logged.
func (s *Service) refresh(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Refresh(ctx); err != nil {
		s.logger.Warn("catalog refresh after admin change failed", slog.Any("error", err))
	}
}

func validateProduct(in model.ProductInput) error {
	if in.Price != nil && in.Price.IsNegative() {
		return model.NewValidationError("price", "must not be negative")
	}
	if in.Stock != nil && *in.Stock < 0 {
		return model.NewValidationError("stock", "must not be negative")
	}
	if in.Name == "" && in.Description == "" && in.Price == nil && in.CategoryID == "" && in.Stock == nil && in.ImagePath == "" {
		return model.NewValidationError("product", "nothing to change")
	}
	return nil
}

func requireID(resource, id string) error {
	if strings.TrimSpace(id) == "" {
		return model.NewValidationError(resource+" id", "required")
	}
	return nil
}
