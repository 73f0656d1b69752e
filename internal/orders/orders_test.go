package orders

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/gateway"
	"storefront/internal/model"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMyOrdersNewestFirst(t *testing.T) {
	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	mock := &gateway.Mock{
		MyOrdersFunc: func(context.Context) ([]model.Order, error) {
			return []model.Order{
				{ID: "o1", CreatedAt: day},
				{ID: "o3", CreatedAt: day.Add(48 * time.Hour)},
				{ID: "o2", CreatedAt: day.Add(24 * time.Hour)},
			}, nil
		},
	}
	s := New(mock, quietLogger())

	list, err := s.MyOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"o3", "o2", "o1"}, []string{list[0].ID, list[1].ID, list[2].ID})
	assert.Len(t, s.Orders(), 3)
	assert.False(t, s.Loading())
}

func TestMyOrdersFailureKeepsList(t *testing.T) {
	fail := false
	mock := &gateway.Mock{
		MyOrdersFunc: func(context.Context) ([]model.Order, error) {
			if fail {
				return nil, model.NewUnauthorizedError("sign in required")
			}
			return []model.Order{{ID: "o1"}}, nil
		},
	}
	s := New(mock, quietLogger())
	_, err := s.MyOrders(context.Background())
	require.NoError(t, err)

	fail = true
	_, err = s.MyOrders(context.Background())
	assert.ErrorIs(t, err, model.ErrUnauthorized)
	assert.Equal(t, "sign in required", s.Err())
	assert.Len(t, s.Orders(), 1)
	assert.False(t, s.Loading())
}

func TestOrder(t *testing.T) {
	called := 0
	mock := &gateway.Mock{
		OrderFunc: func(_ context.Context, id string) (*model.Order, error) {
			called++
			if id == "o1" {
				return &model.Order{ID: "o1", Status: model.OrderShipped}, nil
			}
			return nil, model.NewNotFoundError("order")
		},
	}
	s := New(mock, quietLogger())

	_, err := s.Order(context.Background(), " ")
	assert.ErrorIs(t, err, model.ErrInvalidRequest)
	assert.Zero(t, called)

	o, err := s.Order(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, model.OrderShipped, o.Status)

	_, err = s.Order(context.Background(), "o9")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Equal(t, "order not found", s.Err())
}

func TestSessionChangedResets(t *testing.T) {
	mock := &gateway.Mock{
		MyOrdersFunc: func(context.Context) ([]model.Order, error) {
			return []model.Order{{ID: "o1"}}, nil
		},
	}
	s := New(mock, quietLogger())
	_, err := s.MyOrders(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.SessionChanged(context.Background(), nil))
	assert.Empty(t, s.Orders())
}
