package storeapi

import (
	"context"
	"fmt"
	"net/http"

	"storefront/internal/model"
)

// MyOrders lists the signed-in user's orders.
func (c *Client) MyOrders(ctx context.Context) ([]model.Order, error) {
	return c.orderList(ctx, "/orders/my")
}

// Order fetches one order by id.
func (c *Client) Order(ctx context.Context, id string) (*model.Order, error) {
	tok, err := c.bearer()
	if err != nil {
		return nil, err
	}

	p, err := c.do(ctx, request{method: http.MethodGet, path: "/orders" + pathID(id), token: tok, resource: "order"})
	if err != nil {
		return nil, err
	}
	if p.empty() {
		return nil, model.NewNotFoundError("order")
	}

	var w wireOrder
	if err := decodeObject(p.data, &w, "order"); err != nil {
		return nil, model.NewUpstreamError(serviceName, fmt.Errorf("parsing order: %w", err))
	}
	order := c.toOrder(w)
	return &order, nil
}

func (c *Client) orderList(ctx context.Context, path string) ([]model.Order, error) {
	tok, err := c.bearer()
	if err != nil {
		return nil, err
	}

	p, err := c.do(ctx, request{method: http.MethodGet, path: path, token: tok})
	if err != nil {
		return nil, err
	}

	var ws []wireOrder
	if err := decodeList(p.data, &ws, "orders", "data"); err != nil {
		return nil, model.NewUpstreamError(serviceName, fmt.Errorf("parsing orders: %w", err))
	}
	return c.toOrders(ws), nil
}
