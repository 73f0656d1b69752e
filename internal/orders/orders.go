// Package orders exposes the signed-in shopper's order history.
package orders

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"storefront/internal/gateway"
	"storefront/internal/model"
)

// Service fetches order history and keeps the last list it saw.
type Service struct {
	gw     gateway.Orders
	logger *slog.Logger

	mu      sync.RWMutex
	orders  []model.Order
	loading bool
	lastErr string
}

// New returns a Service over gw.
func New(gw gateway.Orders, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{gw: gw, logger: logger}
}

// MyOrders fetches the shopper's orders, newest first.
func (s *Service) MyOrders(ctx context.Context) ([]model.Order, error) {
	s.begin()
	list, err := s.gw.MyOrders(ctx)
	if err != nil {
		s.fail(err)
		return nil, err
	}
	slices.SortStableFunc(list, func(a, b model.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	s.mu.Lock()
	s.orders = list
	s.loading = false
	s.mu.Unlock()
	return slices.Clone(list), nil
}

// Order fetches one order by id.
func (s *Service) Order(ctx context.Context, id string) (*model.Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, model.NewValidationError("order id", "required")
	}
	s.begin()
	o, err := s.gw.Order(ctx, id)
	if err != nil {
		s.fail(err)
		return nil, err
	}
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
	return o, nil
}

// Orders returns the list from the last successful MyOrders call.
func (s *Service) Orders() []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.orders)
}

// Reset forgets the cached list. Called when the session changes.
func (s *Service) Reset() {
	s.mu.Lock()
	s.orders = nil
	s.lastErr = ""
	s.mu.Unlock()
}

// SessionChanged drops the previous shopper's orders.
func (s *Service) SessionChanged(context.Context, *model.Session) error {
	s.Reset()
	return nil
}

func (s *Service) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Service) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *Service) begin() {
	s.mu.Lock()
	s.loading = true
	s.lastErr = ""
	s.mu.Unlock()
}

func (s *Service) fail(err error) {
	s.mu.Lock()
	s.loading = false
	s.lastErr = model.ErrorMessage(err)
	s.mu.Unlock()
	s.logger.Warn("order request failed", slog.Any("error", err))
}
