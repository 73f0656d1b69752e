// Package handler provides the HTTP façade over the storefront: a JSON REST
// API and an MCP endpoint exposing the same operations as tools.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"storefront/internal/model"
	"storefront/internal/storefront"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	app    *storefront.App
	logger *slog.Logger
}

// New creates a new Handler serving app.
func New(app *storefront.App, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		app:    app,
		logger: logger,
	}
}

// RegisterRoutes registers all HTTP routes with the given ServeMux.
// Uses Go 1.22+ method routing patterns.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Session
	mux.HandleFunc("GET /session", h.handleGetSession)
	mux.HandleFunc("POST /session", h.handleLogin)
	mux.HandleFunc("DELETE /session", h.handleLogout)
	mux.HandleFunc("POST /users", h.handleRegister)

	// Catalog
	mux.HandleFunc("GET /products", h.handleListProducts)
	mux.HandleFunc("GET /categories", h.handleListCategories)
	mux.HandleFunc("POST /catalog/refresh", h.handleRefreshCatalog)

	// Cart
	mux.HandleFunc("GET /cart", h.handleGetCart)
	mux.HandleFunc("POST /cart/items", h.handleAddItem)
	mux.HandleFunc("PUT /cart/items/{id}", h.handleSetQuantity)
	mux.HandleFunc("DELETE /cart/items/{id}", h.handleRemoveItem)
	mux.HandleFunc("DELETE /cart", h.handleClearCart)

	// Orders
	mux.HandleFunc("POST /orders", h.handlePlaceOrder)
	mux.HandleFunc("GET /orders", h.handleListOrders)
	mux.HandleFunc("GET /orders/{id}", h.handleGetOrder)

	mux.HandleFunc("GET /admin/stats", h.handleAdminStats)

	// MCP transport - JSON-RPC endpoint using official MCP SDK
	mux.Handle("/mcp", h.NewMCPHandler())

	// Health check
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /healthz", h.handleHealth)
}

// healthResponse is the response body for health checks.
type healthResponse struct {
	Status  string `json:"status"`
	Catalog bool   `json:"catalog_loaded"`
}

// handleHealth handles GET /health. It never calls the backend.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Catalog: h.app.Catalog.Loaded(),
	})
}

// === Response Helpers ===

// writeJSON sends a JSON response with the given status code.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError sends an error response, extracting status/code from APIError if present.
// Uses errors.As() to unwrap error chains (e.g., fmt.Errorf wrapping).
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		apiErr = &model.APIError{
			Code:       "INTERNAL_ERROR",
			Message:    "an internal error occurred",
			StatusCode: http.StatusInternalServerError,
		}
		h.logger.Error("internal error", slog.String("error", err.Error()))
	}

	h.writeJSON(w, apiErr.StatusCode, errorResponse{
		Error: errorBody{
			Code:    apiErr.Code,
			Message: apiErr.Message,
		},
	})
}

// errorResponse is the JSON structure for error responses.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MaxRequestBodySize limits JSON request bodies to 1MB.
const MaxRequestBodySize = 1 << 20

// decodeJSON reads JSON from request body into v.
// Returns an APIError if decoding fails.
func decodeJSON(r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, MaxRequestBodySize)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// Don't expose decoder details to the client
		return model.NewValidationError("body", "invalid JSON")
	}
	return nil
}
