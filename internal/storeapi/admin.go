package storeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"storefront/internal/model"
)

// AllOrders lists every order in the store.
func (c *Client) AllOrders(ctx context.Context) ([]model.Order, error) {
	return c.orderList(ctx, "/orders")
}

// UpdateOrderStatus moves an order to status.
func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error) {
	tok, err := c.bearer()
	if err != nil {
		return nil, err
	}

	p, err := c.do(ctx, request{
		method:   http.MethodPut,
		path:     "/orders" + pathID(id) + "/status",
		body:     statusRequest{Status: string(status)},
		token:    tok,
		resource: "order",
	})
	if err != nil {
		return nil, err
	}

	var w wireOrder
	if err := decodeObject(p.data, &w, "order"); err != nil {
		return nil, model.NewUpstreamError(serviceName, fmt.Errorf("parsing order: %w", err))
	}
	order := c.toOrder(w)
	if order.ID == "" {
		order.ID = id
	}
	if order.Status == "" {
		order.Status = status
	}
	return &order, nil
}

// Users lists every account.
func (c *Client) Users(ctx context.Context) ([]model.AdminUser, error) {
	tok, err := c.bearer()
	if err != nil {
		return nil, err
	}

	p, err := c.do(ctx, request{method: http.MethodGet, path: "/all/user", token: tok})
	if err != nil {
		return nil, err
	}

	var ws []wireUser
	if err := decodeList(p.data, &ws, "users", "data"); err != nil {
		return nil, model.NewUpstreamError(serviceName, fmt.Errorf("parsing users: %w", err))
	}

	out := make([]model.AdminUser, 0, len(ws))
	for _, w := range ws {
		out = append(out, toAdminUser(w))
	}
	return out, nil
}

// UpdateUser applies upd to account id.
func (c *Client) UpdateUser(ctx context.Context, id string, upd model.UserUpdate) (*model.AdminUser, error) {
	tok, err := c.bearer()
	if err != nil {
		return nil, err
	}

	p, err := c.do(ctx, request{
		method:   http.MethodPut,
		path:     "/admin/user" + pathID(id),
		body:     upd,
		token:    tok,
		resource: "user",
	})
	if err != nil {
		return nil, err
	}

	var w wireUser
	if err := decodeObject(p.data, &w, "user"); err != nil {
		return nil, model.NewUpstreamError(serviceName, fmt.Errorf("parsing user: %w", err))
	}
	u := toAdminUser(w)
	if u.ID == "" {
		u.ID = id
	}
	return &u, nil
}

// DeleteUser removes account id.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.deleteAuthed(ctx, "/user"+pathID(id), "user")
}

// CreateProduct adds a product. The request is multipart when in.ImagePath
// is set and JSON otherwise.
func (c *Client) CreateProduct(ctx context.Context, in model.ProductInput) (*model.Product, error) {
	return c.writeProduct(ctx, http.MethodPost, "/create-product", in)
}

// UpdateProduct changes product id. Same encoding rule as CreateProduct.
func (c *Client) UpdateProduct(ctx context.Context, id string, in model.ProductInput) (*model.Product, error) {
	p, err := c.writeProduct(ctx, http.MethodPatch, "/update-product"+pathID(id), in)
	if err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = id
	}
	return p, nil
}

// DeleteProduct removes product id.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.deleteAuthed(ctx, "/delete-product"+pathID(id), "product")
}

// LowStockProducts lists products the backend considers nearly sold out.
func (c *Client) LowStockProducts(ctx context.Context) ([]model.Product, error) {
	tok, err := c.bearer()
	if err != nil {
		return nil, err
	}
	return c.productList(ctx, "/products/lower-in-stock", tok)
}

// TopProducts lists best sellers.
func (c *Client) TopProducts(ctx context.Context) ([]model.Product, error) {
	tok, err := c.bearer()
	if err != nil {
		return nil, err
	}
	return c.productList(ctx, "/products/top", tok)
}

// CreateCategory adds a category.
func (c *Client) CreateCategory(ctx context.Context, in model.CategoryInput) (*model.Category, error) {
	return c.writeCategory(ctx, http.MethodPost, "/create-category", in)
}

// UpdateCategory renames or re-describes category id.
func (c *Client) UpdateCategory(ctx context.Context, id string, in model.CategoryInput) (*model.Category, error) {
	cat, err := c.writeCategory(ctx, http.MethodPut, "/category/update-category"+pathID(id), in)
	if err != nil {
		return nil, err
	}
	if cat.ID == "" {
		cat.ID = id
	}
	return cat, nil
}

// DeleteCategory removes category id.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.deleteAuthed(ctx, "/delete-category"+pathID(id), "category")
}

func (c *Client) deleteAuthed(ctx context.Context, path, resource string) error {
	tok, err := c.bearer()
	if err != nil {
		return err
	}
	_, err = c.do(ctx, request{method: http.MethodDelete, path: path, token: tok, resource: resource})
	return err
}

func (c *Client) writeCategory(ctx context.Context, method, path string, in model.CategoryInput) (*model.Category, error) {
	tok, err := c.bearer()
	if err != nil {
		return nil, err
	}

	p, err := c.do(ctx, request{method: method, path: path, body: in, token: tok, resource: "category"})
	if err != nil {
		return nil, err
	}

	var w wireCategory
	if err := decodeObject(p.data, &w, "category"); err != nil {
		return nil, model.NewUpstreamError(serviceName, fmt.Errorf("parsing category: %w", err))
	}
	cat := c.toCategory(w)
	if cat.Name == "" {
		cat.Name = in.Name
		cat.Description = in.Description
	}
	return &cat, nil
}

// productBody is the JSON form of a product write. Price is sent as a JSON
// number.
type productBody struct {
	Name        string       `json:"name,omitempty"`
	Description string       `json:"description,omitempty"`
	Price       *json.Number `json:"price,omitempty"`
	Category    string       `json:"category,omitempty"`
	Stock       *int         `json:"stock,omitempty"`
}

func newProductBody(in model.ProductInput) productBody {
	b := productBody{
		Name:        in.Name,
		Description: in.Description,
		Category:    in.CategoryID,
		Stock:       in.Stock,
	}
	if in.Price != nil {
		n := json.Number(in.Price.String())
		b.Price = &n
	}
	return b
}

func (c *Client) writeProduct(ctx context.Context, method, path string, in model.ProductInput) (*model.Product, error) {
	tok, err := c.bearer()
	if err != nil {
		return nil, err
	}

	r := request{method: method, path: path, token: tok, resource: "product"}

	var p payload
	if in.ImagePath == "" {
		r.body = newProductBody(in)
		p, err = c.do(ctx, r)
	} else {
		p, err = c.doMultipart(ctx, r, in)
	}
	if err != nil {
		return nil, err
	}

	var w wireProduct
	if err := decodeObject(p.data, &w, "product"); err != nil {
		return nil, model.NewUpstreamError(serviceName, fmt.Errorf("parsing product: %w", err))
	}
	prod := c.toProduct(w)
	return &prod, nil
}

// doMultipart sends a product write with its image file attached. The form
// is buffered so the request body can be replayed by the transport.
func (c *Client) doMultipart(ctx context.Context, r request, in model.ProductInput) (payload, error) {
	f, err := os.Open(in.ImagePath)
	if err != nil {
		return payload{}, model.NewValidationError("image", err.Error())
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := map[string]string{
		"name":        in.Name,
		"description": in.Description,
		"category":    in.CategoryID,
	}
	if in.Price != nil {
		fields["price"] = in.Price.String()
	}
	if in.Stock != nil {
		fields["stock"] = strconv.Itoa(*in.Stock)
	}
	for _, key := range []string{"name", "description", "price", "category", "stock"} {
		v, ok := fields[key]
		if !ok || v == "" {
			continue
		}
		if err := mw.WriteField(key, v); err != nil {
			return payload{}, fmt.Errorf("writing form field %s: %w", key, err)
		}
	}

	part, err := mw.CreateFormFile("image", filepath.Base(in.ImagePath))
	if err != nil {
		return payload{}, fmt.Errorf("creating image part: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return payload{}, fmt.Errorf("reading image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return payload{}, fmt.Errorf("closing form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, &buf)
	if err != nil {
		return payload{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(req, r)
}
