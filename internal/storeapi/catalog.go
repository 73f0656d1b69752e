package storeapi

import (
	"context"
	"fmt"
	"net/http"

	"storefront/internal/model"
)

// Products lists the whole catalog.
func (c *Client) Products(ctx context.Context) ([]model.Product, error) {
	return c.productList(ctx, "/products", "")
}

// Categories lists every category.
func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	p, err := c.do(ctx, request{method: http.MethodGet, path: "/all/category"})
	if err != nil {
		return nil, err
	}

	var ws []wireCategory
	if err := decodeList(p.data, &ws, "categories", "data"); err != nil {
		return nil, model.NewUpstreamError(serviceName, fmt.Errorf("parsing categories: %w", err))
	}

	out := make([]model.Category, 0, len(ws))
	for _, w := range ws {
		out = append(out, c.toCategory(w))
	}
	return out, nil
}

// productList fetches a product list from path. token may be empty for
// public listings.
func (c *Client) productList(ctx context.Context, path, token string) ([]model.Product, error) {
	p, err := c.do(ctx, request{method: http.MethodGet, path: path, token: token})
	if err != nil {
		return nil, err
	}

	var ws []wireProduct
	if err := decodeList(p.data, &ws, "products", "data"); err != nil {
		return nil, model.NewUpstreamError(serviceName, fmt.Errorf("parsing products: %w", err))
	}
	return c.toProducts(ws), nil
}
