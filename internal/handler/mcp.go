// MCP transport for the storefront using the official MCP Go SDK.
// Exposes browsing, cart, checkout and session operations as tools.
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/shopspring/decimal"

	"storefront/internal/catalog"
	"storefront/internal/model"
	"storefront/internal/storefront"
)

// === MCP Tool Input/Output Types ===

// ListProductsInput filters list_products. Empty fields do not filter.
type ListProductsInput struct {
	Query       string   `json:"query,omitempty" jsonschema:"text matched against name, description and category"`
	CategoryIDs []string `json:"category_ids,omitempty" jsonschema:"only products in these categories"`
	MinPrice    string   `json:"min_price,omitempty" jsonschema:"lowest unit price, e.g. 2.50"`
	MaxPrice    string   `json:"max_price,omitempty" jsonschema:"highest unit price"`
	InStockOnly bool     `json:"in_stock_only,omitempty" jsonschema:"hide products with no stock"`
}

// ProductIDInput names one cart line.
type ProductIDInput struct {
	ProductID string `json:"product_id" jsonschema:"product ID"`
}

// AddToCartInput is the input schema for add_to_cart.
type AddToCartInput struct {
	ProductID string `json:"product_id" jsonschema:"product ID"`
	Quantity  int    `json:"quantity,omitempty" jsonschema:"units to add, default 1"`
}

// SetQuantityInput is the input schema for set_quantity. Zero removes the line.
type SetQuantityInput struct {
	ProductID string `json:"product_id" jsonschema:"product ID"`
	Quantity  int    `json:"quantity" jsonschema:"new quantity; 0 removes the line"`
}

// LoginInput is the input schema for login.
type LoginInput struct {
	Email    string `json:"email" jsonschema:"account email"`
	Password string `json:"password" jsonschema:"account password"`
}

// NoInput is used by tools that take no arguments.
type NoInput struct{}

// ProductList wraps list_products output; tool results must be objects.
type ProductList struct {
	Products []productView `json:"products"`
}

// CategoryList wraps list_categories output.
type CategoryList struct {
	Categories []categoryView `json:"categories"`
}

// OrderList wraps my_orders output.
type OrderList struct {
	Orders []orderView `json:"orders"`
}

// NewMCPServer creates an MCP server with the storefront tools registered.
// The server exposes the same operations as the REST API but via MCP protocol.
func (h *Handler) NewMCPServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "storefront",
			Version: storefront.Version,
		},
		&mcp.ServerOptions{
			Instructions: "Storefront for a dessert shop. Browse products and categories, " +
				"manage the shopping cart, sign in, and place orders. " +
				"The cart works without signing in; placing an order requires login.",
		},
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_products",
		Description: "List catalog products, optionally filtered by text, category, price range or stock.",
	}, h.mcpListProducts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_categories",
		Description: "List product categories.",
	}, h.mcpListCategories)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "view_cart",
		Description: "Show the cart lines, item count and total price.",
	}, h.mcpViewCart)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_to_cart",
		Description: "Add units of a product to the cart. Adding a product already in the cart increases its quantity.",
	}, h.mcpAddToCart)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "remove_from_cart",
		Description: "Remove a product line from the cart.",
	}, h.mcpRemoveFromCart)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "set_quantity",
		Description: "Set the quantity of a cart line. A quantity of 0 removes it.",
	}, h.mcpSetQuantity)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "clear_cart",
		Description: "Empty the cart.",
	}, h.mcpClearCart)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "place_order",
		Description: "Place an order for everything in the cart. Requires login. Empties the cart on success.",
	}, h.mcpPlaceOrder)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "login",
		Description: "Sign in. The cart switches to the account's saved cart.",
	}, h.mcpLogin)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "logout",
		Description: "Sign out. The cart becomes an empty guest cart.",
	}, h.mcpLogout)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "my_orders",
		Description: "List the signed-in user's orders, newest first.",
	}, h.mcpMyOrders)

	return server
}

// NewMCPHandler returns an HTTP handler for the MCP endpoint.
// Mount this at /mcp on your mux.
func (h *Handler) NewMCPHandler() http.Handler {
	server := h.NewMCPServer()
	return mcp.NewStreamableHTTPHandler(
		func(r *http.Request) *mcp.Server { return server },
		nil,
	)
}

// === Tool Handlers ===

func (h *Handler) mcpListProducts(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ListProductsInput,
) (*mcp.CallToolResult, ProductList, error) {
	f := catalog.Filter{
		Query:       input.Query,
		CategoryIDs: input.CategoryIDs,
		InStockOnly: input.InStockOnly,
	}
	var err error
	if f.MinPrice, err = priceBound("min_price", input.MinPrice); err != nil {
		return nil, ProductList{}, h.mcpError(err)
	}
	if f.MaxPrice, err = priceBound("max_price", input.MaxPrice); err != nil {
		return nil, ProductList{}, h.mcpError(err)
	}

	if err := h.app.EnsureCatalog(ctx); err != nil {
		return nil, ProductList{}, h.mcpError(err)
	}
	return nil, ProductList{Products: newProductViews(h.app.Catalog.Search(f))}, nil
}

func priceBound(field, raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, model.NewValidationError(field, "not a number")
	}
	return &d, nil
}

func (h *Handler) mcpListCategories(
	ctx context.Context,
	req *mcp.CallToolRequest,
	_ NoInput,
) (*mcp.CallToolResult, CategoryList, error) {
	if err := h.app.EnsureCatalog(ctx); err != nil {
		return nil, CategoryList{}, h.mcpError(err)
	}
	return nil, CategoryList{Categories: newCategoryViews(h.app.Catalog.Categories())}, nil
}

func (h *Handler) mcpViewCart(
	ctx context.Context,
	req *mcp.CallToolRequest,
	_ NoInput,
) (*mcp.CallToolResult, cartView, error) {
	if err := h.app.Cart.Refresh(ctx); err != nil {
		// The snapshot carries the error; show the last known cart.
		h.logger.Warn("cart refresh failed", slog.Any("error", err))
	}
	return nil, newCartView(h.app.Cart.Snapshot()), nil
}

func (h *Handler) mcpAddToCart(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input AddToCartInput,
) (*mcp.CallToolResult, cartView, error) {
	if input.ProductID == "" {
		return nil, cartView{}, fmt.Errorf("product_id is required")
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}
	if err := h.app.AddToCart(ctx, input.ProductID, input.Quantity); err != nil {
		return nil, cartView{}, h.mcpError(err)
	}
	return nil, newCartView(h.app.Cart.Snapshot()), nil
}

func (h *Handler) mcpRemoveFromCart(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ProductIDInput,
) (*mcp.CallToolResult, cartView, error) {
	if err := h.app.Cart.RemoveItem(ctx, input.ProductID); err != nil {
		return nil, cartView{}, h.mcpError(err)
	}
	return nil, newCartView(h.app.Cart.Snapshot()), nil
}

func (h *Handler) mcpSetQuantity(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input SetQuantityInput,
) (*mcp.CallToolResult, cartView, error) {
	if err := h.app.Cart.SetQuantity(ctx, input.ProductID, input.Quantity); err != nil {
		return nil, cartView{}, h.mcpError(err)
	}
	return nil, newCartView(h.app.Cart.Snapshot()), nil
}

func (h *Handler) mcpClearCart(
	ctx context.Context,
	req *mcp.CallToolRequest,
	_ NoInput,
) (*mcp.CallToolResult, cartView, error) {
	if err := h.app.Cart.Clear(ctx); err != nil {
		return nil, cartView{}, h.mcpError(err)
	}
	return nil, newCartView(h.app.Cart.Snapshot()), nil
}

func (h *Handler) mcpPlaceOrder(
	ctx context.Context,
	req *mcp.CallToolRequest,
	_ NoInput,
) (*mcp.CallToolResult, orderView, error) {
	order, err := h.app.Cart.PlaceOrder(ctx)
	if err != nil {
		return nil, orderView{}, h.mcpError(err)
	}
	return nil, newOrderView(*order), nil
}

func (h *Handler) mcpLogin(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input LoginInput,
) (*mcp.CallToolResult, sessionView, error) {
	sess, err := h.app.Session.Login(ctx, model.Credentials{Email: input.Email, Password: input.Password})
	if err != nil {
		return nil, sessionView{}, h.mcpError(err)
	}
	return nil, newSessionView(sess), nil
}

func (h *Handler) mcpLogout(
	ctx context.Context,
	req *mcp.CallToolRequest,
	_ NoInput,
) (*mcp.CallToolResult, sessionView, error) {
	h.app.Session.Logout(ctx)
	return nil, newSessionView(nil), nil
}

func (h *Handler) mcpMyOrders(
	ctx context.Context,
	req *mcp.CallToolRequest,
	_ NoInput,
) (*mcp.CallToolResult, OrderList, error) {
	orders, err := h.app.Orders.MyOrders(ctx)
	if err != nil {
		return nil, OrderList{}, h.mcpError(err)
	}
	return nil, OrderList{Orders: newOrderViews(orders)}, nil
}

// mcpError converts service errors to MCP-friendly errors.
func (h *Handler) mcpError(err error) error {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message)
	}
	// Don't leak internal error details
	h.logger.Error("mcp internal error", slog.String("error", err.Error()))
	return fmt.Errorf("internal error")
}
