package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"storefront/internal/catalog"
	"storefront/internal/model"
)

// === Session ===

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// handleGetSession handles GET /session.
func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, newSessionView(h.app.Session.Current()))
}

// handleLogin handles POST /session.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	sess, err := h.app.Session.Login(r.Context(), model.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newSessionView(sess))
}

// handleLogout handles DELETE /session. Signing out is always allowed.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.app.Session.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// handleRegister handles POST /users. A successful sign-up also signs in.
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	sess, err := h.app.Session.Register(r.Context(), model.Registration{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, newSessionView(sess))
}

// === Catalog ===

// handleListProducts handles GET /products. Query parameters:
// category (repeatable), q, min, max, in_stock.
func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.app.EnsureCatalog(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newProductViews(h.app.Catalog.Search(f)))
}

func parseFilter(r *http.Request) (catalog.Filter, error) {
	q := r.URL.Query()
	f := catalog.Filter{
		Query:       q.Get("q"),
		CategoryIDs: q["category"],
	}
	for _, bound := range []struct {
		key string
		dst **decimal.Decimal
	}{
		{"min", &f.MinPrice},
		{"max", &f.MaxPrice},
	} {
		raw := q.Get(bound.key)
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return f, model.NewValidationError(bound.key, "not a number")
		}
		*bound.dst = &d
	}
	if raw := q.Get("in_stock"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return f, model.NewValidationError("in_stock", "not a boolean")
		}
		f.InStockOnly = v
	}
	return f, nil
}

// handleListCategories handles GET /categories.
func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	if err := h.app.EnsureCatalog(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newCategoryViews(h.app.Catalog.Categories()))
}

// handleRefreshCatalog handles POST /catalog/refresh.
func (h *Handler) handleRefreshCatalog(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Catalog.Refresh(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newProductViews(h.app.Catalog.Products()))
}

// === Cart ===

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// handleGetCart handles GET /cart. In remote mode the backend cart is
// re-fetched first; a failed fetch still returns the last known cart with
// its error set.
func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Cart.Refresh(r.Context()); err != nil {
		h.logger.Warn("cart refresh failed", slog.Any("error", err))
	}
	h.writeJSON(w, http.StatusOK, newCartView(h.app.Cart.Snapshot()))
}

// handleAddItem handles POST /cart/items. Quantity defaults to 1.
func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if req.ProductID == "" {
		h.writeError(w, model.NewValidationError("product_id", "required"))
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	if err := h.app.AddToCart(r.Context(), req.ProductID, req.Quantity); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newCartView(h.app.Cart.Snapshot()))
}

// handleSetQuantity handles PUT /cart/items/{id}.
func (h *Handler) handleSetQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.app.Cart.SetQuantity(r.Context(), r.PathValue("id"), req.Quantity); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newCartView(h.app.Cart.Snapshot()))
}

// handleRemoveItem handles DELETE /cart/items/{id}.
func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Cart.RemoveItem(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newCartView(h.app.Cart.Snapshot()))
}

// handleClearCart handles DELETE /cart.
func (h *Handler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Cart.Clear(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newCartView(h.app.Cart.Snapshot()))
}

// === Orders ===

// handlePlaceOrder handles POST /orders: checks out the current cart.
func (h *Handler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.app.Cart.PlaceOrder(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, newOrderView(*order))
}

// handleListOrders handles GET /orders.
func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.app.Orders.MyOrders(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newOrderViews(orders))
}

// handleGetOrder handles GET /orders/{id}.
func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.app.Orders.Order(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newOrderView(*order))
}

// handleAdminStats handles GET /admin/stats.
func (h *Handler) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.app.Admin.Stats(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newStatsView(stats))
}
