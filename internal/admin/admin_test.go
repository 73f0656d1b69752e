package admin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/gateway"
	"storefront/internal/model"
)

type identity struct {
	authed, admin bool
}

func (i identity) Authenticated() bool { return i.authed }
func (i identity) IsAdmin() bool       { return i.admin }

type refreshCounter struct {
	n   int
	err error
}

func (r *refreshCounter) Refresh(context.Context) error {
	r.n++
	return r.err
}

var signedInAdmin = identity{authed: true, admin: true}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

func TestRoleGate(t *testing.T) {
	tests := []struct {
		name    string
		who     identity
		wantErr error
	}{
		{name: "signed out", who: identity{}, wantErr: model.ErrUnauthorized},
		{name: "shopper", who: identity{authed: true}, wantErr: model.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			mock := &gateway.Mock{
				AllOrdersFunc: func(context.Context) ([]model.Order, error) {
					called = true
					return nil, nil
				},
				UsersFunc: func(context.Context) ([]model.AdminUser, error) {
					called = true
					return nil, nil
				},
				DeleteProductFunc: func(context.Context, string) error {
					called = true
					return nil
				},
			}
			s := New(mock, mock, tt.who, nil, quietLogger())
			ctx := context.Background()

			_, err := s.Stats(ctx)
			assert.ErrorIs(t, err, tt.wantErr)
			_, err = s.Orders(ctx)
			assert.ErrorIs(t, err, tt.wantErr)
			_, err = s.Users(ctx)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, s.DeleteProduct(ctx, "p1"), tt.wantErr)
			_, err = s.CreateCategory(ctx, model.CategoryInput{Name: "Cakes"})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, called)
		})
	}
}

func TestStats(t *testing.T) {
	mock := &gateway.Mock{
		ProductsFunc: func(context.Context) ([]model.Product, error) {
			return []model.Product{{ID: "p1"}, {ID: "p2"}}, nil
		},
		AllOrdersFunc: func(context.Context) ([]model.Order, error) {
			return []model.Order{
				{ID: "o1", Total: model.ParsePrice("10.10"), Status: model.OrderPending},
				{ID: "o2", Total: model.ParsePrice("20.20"), Status: model.OrderDelivered},
				{ID: "o3", Total: model.ParsePrice("0.20"), Status: model.OrderPending},
			}, nil
		},
		UsersFunc: func(context.Context) ([]model.AdminUser, error) {
			return []model.AdminUser{{}, {}, {}, {}}, nil
		},
	}
	s := New(mock, mock, signedInAdmin, nil, quietLogger())

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalProducts)
	assert.Equal(t, 3, stats.TotalOrders)
	assert.Equal(t, 4, stats.TotalUsers)
	assert.Equal(t, "30.50", model.FormatPrice(stats.TotalRevenue))
	assert.Equal(t, map[model.OrderStatus]int{model.OrderPending: 2, model.OrderDelivered: 1}, stats.OrdersByStatus)
}

func TestStatsFailure(t *testing.T) {
	mock := &gateway.Mock{
		UsersFunc: func(context.Context) ([]model.AdminUser, error) {
			return nil, model.NewUpstreamError("store API", errors.New("boom"))
		},
	}
	s := New(mock, mock, signedInAdmin, nil, quietLogger())
	_, err := s.Stats(context.Background())
	assert.ErrorIs(t, err, model.ErrUpstreamError)
}

func TestSummarizeEmpty(t *testing.T) {
	stats := Summarize(nil, nil, nil)
	assert.True(t, stats.TotalRevenue.IsZero())
	assert.NotNil(t, stats.OrdersByStatus)
}

func TestUpdateOrderStatus(t *testing.T) {
	var got model.OrderStatus
	mock := &gateway.Mock{
		UpdateOrderStatusFunc: func(_ context.Context, id string, status model.OrderStatus) (*model.Order, error) {
			got = status
			return &model.Order{ID: id, Status: status}, nil
		},
	}
	s := New(mock, mock, signedInAdmin, nil, quietLogger())
	ctx := context.Background()

	_, err := s.UpdateOrderStatus(ctx, "o1", "lost")
	assert.ErrorIs(t, err, model.ErrInvalidRequest)
	_, err = s.UpdateOrderStatus(ctx, "", model.OrderShipped)
	assert.ErrorIs(t, err, model.ErrInvalidRequest)
	assert.Empty(t, got)

	o, err := s.UpdateOrderStatus(ctx, "o1", " Shipped ")
	require.NoError(t, err)
	assert.Equal(t, model.OrderShipped, got)
	assert.Equal(t, model.OrderShipped, o.Status)
}

func TestUpdateUserValidation(t *testing.T) {
	var sent model.UserUpdate
	mock := &gateway.Mock{
		UpdateUserFunc: func(_ context.Context, id string, upd model.UserUpdate) (*model.AdminUser, error) {
			sent = upd
			return &model.AdminUser{User: model.User{ID: id}}, nil
		},
	}
	s := New(mock, mock, signedInAdmin, nil, quietLogger())
	ctx := context.Background()

	_, err := s.UpdateUser(ctx, "u1", model.UserUpdate{Role: ptr("owner")})
	assert.ErrorIs(t, err, model.ErrInvalidRequest)
	_, err = s.UpdateUser(ctx, "u1", model.UserUpdate{Username: ptr(" ")})
	assert.ErrorIs(t, err, model.ErrInvalidRequest)

	_, err = s.UpdateUser(ctx, "u1", model.UserUpdate{Role: ptr("admin")})
	require.NoError(t, err)
	require.NotNil(t, sent.Role)
	assert.Equal(t, model.RoleAdmin, *sent.Role)
}

func TestProductMutationsRefreshCatalog(t *testing.T) {
	cache := &refreshCounter{}
	mock := &gateway.Mock{
		CreateProductFunc: func(_ context.Context, in model.ProductInput) (*model.Product, error) {
			return &model.Product{ID: "p9", Name: in.Name}, nil
		},
		UpdateProductFunc: func(_ context.Context, id string, in model.ProductInput) (*model.Product, error) {
			return &model.Product{ID: id}, nil
		},
		DeleteProductFunc: func(context.Context, string) error { return nil },
	}
	s := New(mock, mock, signedInAdmin, cache, quietLogger())
	ctx := context.Background()

	price := decimal.RequireFromString("4.50")
	p, err := s.CreateProduct(ctx, model.ProductInput{Name: " Cannoli ", Price: &price, CategoryID: "c1", Stock: ptr(3)})
	require.NoError(t, err)
	assert.Equal(t, "Cannoli", p.Name)

	_, err = s.UpdateProduct(ctx, "p9", model.ProductInput{Stock: ptr(0)})
	require.NoError(t, err)
	require.NoError(t, s.DeleteProduct(ctx, "p9"))

	assert.Equal(t, 3, cache.n)
}

func TestProductValidation(t *testing.T) {
	cache := &refreshCounter{}
	s := New(&gateway.Mock{}, &gateway.Mock{}, signedInAdmin, cache, quietLogger())
	ctx := context.Background()
	price := decimal.RequireFromString("4.50")
	negative := decimal.RequireFromString("-1")

	tests := []struct {
		name string
		in   model.ProductInput
	}{
		{name: "missing name", in: model.ProductInput{Price: &price, CategoryID: "c1"}},
		{name: "missing price", in: model.ProductInput{Name: "Cannoli", CategoryID: "c1"}},
		{name: "missing category", in: model.ProductInput{Name: "Cannoli", Price: &price}},
		{name: "negative price", in: model.ProductInput{Name: "Cannoli", Price: &negative, CategoryID: "c1"}},
		{name: "negative stock", in: model.ProductInput{Name: "Cannoli", Price: &price, CategoryID: "c1", Stock: ptr(-2)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateProduct(ctx, tt.in)
			assert.ErrorIs(t, err, model.ErrInvalidRequest)
		})
	}

	_, err := s.UpdateProduct(ctx, "p1", model.ProductInput{})
	assert.ErrorIs(t, err, model.ErrInvalidRequest)
	assert.Zero(t, cache.n)
}

func TestCategoryMutations(t *testing.T) {
	cache := &refreshCounter{err: errors.New("catalog down")}
	mock := &gateway.Mock{
		CreateCategoryFunc: func(_ context.Context, in model.CategoryInput) (*model.Category, error) {
			return &model.Category{ID: "c9", Name: in.Name}, nil
		},
		UpdateCategoryFunc: func(_ context.Context, id string, in model.CategoryInput) (*model.Category, error) {
			return &model.Category{ID: id, Name: in.Name}, nil
		},
		DeleteCategoryFunc: func(context.Context, string) error { return nil },
	}
	s := New(mock, mock, signedInAdmin, cache, quietLogger())
	ctx := context.Background()

	_, err := s.CreateCategory(ctx, model.CategoryInput{Name: "  "})
	assert.ErrorIs(t, err, model.ErrInvalidRequest)

	c, err := s.CreateCategory(ctx, model.CategoryInput{Name: "Tarts"})
	require.NoError(t, err, "a failed catalog refresh does not fail the mutation")
	assert.Equal(t, "c9", c.ID)

	c, err = s.UpdateCategory(ctx, "c9", model.CategoryInput{Name: "Fruit tarts"})
	require.NoError(t, err)
	assert.Equal(t, "Fruit tarts", c.Name)

	require.NoError(t, s.DeleteCategory(ctx, "c9"))
	assert.ErrorIs(t, s.DeleteCategory(ctx, ""), model.ErrInvalidRequest)
	assert.Equal(t, 3, cache.n)
}

func TestDeleteUserPassesThroughNotFound(t *testing.T) {
	s := New(&gateway.Mock{}, &gateway.Mock{}, signedInAdmin, nil, quietLogger())
	assert.ErrorIs(t, s.DeleteUser(context.Background(), "u404"), model.ErrNotFound)
}
