// Package storeapi is the HTTP client for the shop backend's REST API.
//
// Each exported method is one stateless request. Responses are normalized
// before they leave the package: envelope and bare shapes are unified, ids
// become strings, image paths become URLs, and HTTP failures become
// model.APIError values.
package storeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"storefront/internal/gateway"
	"storefront/internal/model"
)

// userAgent identifies this client to the backend.
// Free-tier hosting in front of the backend rejects requests without one.
const userAgent = "Storefront-Client/1.0"

// serviceName labels backend failures in error messages.
const serviceName = "store API"

// Config configures a Client.
type Config struct {
	// BaseURL is the API root, e.g. https://shop.example/api.
	BaseURL string
	// AssetBaseURL is prefixed to image upload paths. Defaults to BaseURL
	// without a trailing /api.
	AssetBaseURL string

	Timeout   time.Duration
	Transport http.RoundTripper

	// APIKey is sent as X-API-Key on every request when set.
	APIKey string
	// MinAPIVersion, when set, triggers a one-time warning if the backend
	// advertises an older X-API-Version.
	MinAPIVersion string

	AgentName    string
	AgentVersion string

	Logger *slog.Logger
}

// Client implements the gateway interfaces over HTTP.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	assetBaseURL string
	apiKey       string
	agentHeader  string
	logger       *slog.Logger

	mu     sync.RWMutex
	tokens gateway.TokenSource

	version versionCheck
}

// New creates a Client. BaseURL is required.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	rt := cfg.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	assetBase := cfg.AssetBaseURL
	if assetBase == "" {
		assetBase = DefaultAssetBaseURL(baseURL)
	}

	agent, err := agentHeader(cfg.AgentName, cfg.AgentVersion)
	if err != nil {
		return nil, err
	}

	return &Client{
		httpClient:   &http.Client{Timeout: timeout, Transport: rt},
		baseURL:      baseURL,
		assetBaseURL: strings.TrimSuffix(assetBase, "/"),
		apiKey:       cfg.APIKey,
		agentHeader:  agent,
		logger:       logger,
		version:      versionCheck{min: cfg.MinAPIVersion, logger: logger},
	}, nil
}

// DefaultAssetBaseURL strips a trailing /api from baseURL. Uploaded images
// are served from the site root, not the API root.
func DefaultAssetBaseURL(baseURL string) string {
	baseURL = strings.TrimSuffix(baseURL, "/")
	return strings.TrimSuffix(baseURL, "/api")
}

// SetTokenSource installs the source of bearer tokens for authenticated calls.
func (c *Client) SetTokenSource(ts gateway.TokenSource) {
	c.mu.Lock()
	c.tokens = ts
	c.mu.Unlock()
}

// bearer returns the current token or an unauthorized error when there is
// none. Called before building a request so no network I/O happens.
func (c *Client) bearer() (string, error) {
	c.mu.RLock()
	ts := c.tokens
	c.mu.RUnlock()

	if ts != nil {
		if tok := ts.Token(); tok != "" {
			return tok, nil
		}
	}
	return "", model.NewUnauthorizedError("sign in required")
}

// request describes one API call.
type request struct {
	method   string
	path     string
	body     any
	token    string
	resource string // names the thing in not-found errors
	headers  map[string]string
}

// do sends r as JSON and returns the classified payload.
func (c *Client) do(ctx context.Context, r request) (payload, error) {
	var bodyReader io.Reader
	if r.body != nil {
		jsonBody, err := json.Marshal(r.body)
		if err != nil {
			return payload{}, fmt.Errorf("marshaling request: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, bodyReader)
	if err != nil {
		return payload{}, fmt.Errorf("creating request: %w", err)
	}
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, r)
}

// send sets common headers, executes req and maps the response.
func (c *Client) send(req *http.Request, r request) (payload, error) {
	c.setHeaders(req, r.token)
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("store API request failed",
			slog.String("method", r.method),
			slog.String("path", r.path),
			slog.Any("error", err),
		)
		return payload{}, model.NewUpstreamError(serviceName, err)
	}
	defer resp.Body.Close()

	c.version.observe(resp.Header.Get("X-API-Version"))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return payload{}, model.NewUpstreamError(serviceName, fmt.Errorf("reading response: %w", err))
	}

	c.logger.Debug("store API request",
		slog.String("method", r.method),
		slog.String("path", r.path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode >= 400 {
		return payload{}, parseErrorResponse(resp.StatusCode, body, r.resource)
	}

	p, err := classify(body)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			return payload{}, apiErr
		}
		return payload{}, model.NewUpstreamError(serviceName, err)
	}
	return p, nil
}

// setHeaders sets headers every backend request carries.
func (c *Client) setHeaders(req *http.Request, token string) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.agentHeader != "" {
		req.Header.Set(agentHeaderName, c.agentHeader)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// parseErrorResponse converts a backend error status to an APIError.
// The backend's own message is kept as the readable message when present.
func parseErrorResponse(statusCode int, body []byte, resource string) error {
	var we wireError
	json.Unmarshal(body, &we) // Best effort parse
	msg := we.Message
	if msg == "" {
		msg = we.Error
	}

	var apiErr *model.APIError
	switch {
	case statusCode == http.StatusUnauthorized:
		if msg == "" {
			msg = "session expired or invalid"
		}
		apiErr = model.NewUnauthorizedError(msg)
	case statusCode == http.StatusForbidden:
		if msg == "" {
			msg = "not allowed"
		}
		apiErr = model.NewForbiddenError(msg)
	case statusCode == http.StatusNotFound:
		if resource == "" {
			resource = "resource"
		}
		apiErr = model.NewNotFoundError(resource)
		if msg != "" {
			apiErr.Message = msg
		}
	case statusCode == http.StatusBadRequest || statusCode == http.StatusUnprocessableEntity || statusCode == http.StatusConflict:
		apiErr = model.NewRejectedError(msg)
		apiErr.StatusCode = statusCode
	case statusCode == http.StatusTooManyRequests:
		apiErr = model.NewRateLimitError(serviceName)
	default:
		apiErr = model.NewUpstreamError(serviceName, fmt.Errorf("status %d: %s", statusCode, msg))
		if msg != "" {
			apiErr.Message = msg
		}
	}
	return apiErr
}

// pathID escapes an id for use as a path segment.
func pathID(id string) string {
	return "/" + url.PathEscape(id)
}

// Verify Client implements the gateway interfaces at compile time.
var (
	_ gateway.Cart    = (*Client)(nil)
	_ gateway.Auth    = (*Client)(nil)
	_ gateway.Catalog = (*Client)(nil)
	_ gateway.Orders  = (*Client)(nil)
	_ gateway.Admin   = (*Client)(nil)
)
