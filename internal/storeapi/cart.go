package storeapi

import (
	"context"
	"fmt"
	"net/http"

	"storefront/internal/model"
)

// GetCart fetches the signed-in user's cart rows, unfolded.
func (c *Client) GetCart(ctx context.Context) ([]model.LineItem, error) {
	tok, err := c.bearer()
	if err != nil {
		return nil, err
	}

	p, err := c.do(ctx, request{method: http.MethodGet, path: "/cart", token: tok, resource: "cart"})
	if err != nil {
		return nil, err
	}

	var rows []wireCartRow
	if err := decodeList(p.data, &rows, "items", "cart"); err != nil {
		return nil, model.NewUpstreamError(serviceName, fmt.Errorf("parsing cart: %w", err))
	}
	return c.toLineItems(rows), nil
}

// AddCartItem posts quantity units of productID to the cart.
func (c *Client) AddCartItem(ctx context.Context, productID string, quantity int) error {
	tok, err := c.bearer()
	if err != nil {
		return err
	}
	_, err = c.do(ctx, request{
		method:   http.MethodPost,
		path:     "/cart",
		body:     addCartItemRequest{DessertID: productID, Quantity: quantity},
		token:    tok,
		resource: "product",
	})
	return err
}

// UpdateCartItem sets the quantity of productID's row.
func (c *Client) UpdateCartItem(ctx context.Context, productID string, quantity int) error {
	tok, err := c.bearer()
	if err != nil {
		return err
	}
	_, err = c.do(ctx, request{
		method:   http.MethodPut,
		path:     "/cart" + pathID(productID),
		body:     updateCartItemRequest{Quantity: quantity},
		token:    tok,
		resource: "cart item",
	})
	return err
}

// RemoveCartItem deletes productID's row.
func (c *Client) RemoveCartItem(ctx context.Context, productID string) error {
	tok, err := c.bearer()
	if err != nil {
		return err
	}
	_, err = c.do(ctx, request{
		method:   http.MethodDelete,
		path:     "/cart" + pathID(productID),
		token:    tok,
		resource: "cart item",
	})
	return err
}

// ClearCart deletes every row.
func (c *Client) ClearCart(ctx context.Context) error {
	tok, err := c.bearer()
	if err != nil {
		return err
	}
	_, err = c.do(ctx, request{method: http.MethodDelete, path: "/cart", token: tok, resource: "cart"})
	return err
}

// CreateOrder submits req.Items as an order. The idempotency key is sent as
// Idempotency-Key so a retried submission cannot create a second order.
// Returns nil without error when the backend accepts the order but sends no body.
func (c *Client) CreateOrder(ctx context.Context, req model.OrderRequest) (*model.Order, error) {
	tok, err := c.bearer()
	if err != nil {
		return nil, err
	}

	body := createOrderRequest{Items: make([]orderLine, 0, len(req.Items))}
	for _, item := range req.Items {
		body.Items = append(body.Items, orderLine{DessertID: item.ProductID, Quantity: item.Quantity})
	}

	r := request{
		method:   http.MethodPost,
		path:     "/orders",
		body:     body,
		token:    tok,
		resource: "product",
	}
	if req.IdempotencyKey != "" {
		r.headers = map[string]string{"Idempotency-Key": req.IdempotencyKey}
	}

	p, err := c.do(ctx, r)
	if err != nil {
		return nil, err
	}
	if p.empty() {
		return nil, nil
	}

	var w wireOrder
	if err := decodeObject(p.data, &w, "order"); err != nil {
		return nil, model.NewUpstreamError(serviceName, fmt.Errorf("parsing order: %w", err))
	}
	order := c.toOrder(w)
	return &order, nil
}
