// Package catalog caches the product and category lists and answers
// lookups and filters against them.
package catalog

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"storefront/internal/gateway"
	"storefront/internal/model"
)

// Catalog holds the last successfully loaded products and categories.
type Catalog struct {
	gw     gateway.Catalog
	logger *slog.Logger
	sfg    singleflight.Group

	mu         sync.RWMutex
	products   []model.Product
	categories []model.Category
	loading    bool
	lastErr    string
	loaded     bool
}

// New returns an empty Catalog. Nothing is fetched until Load.
func New(gw gateway.Catalog, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{gw: gw, logger: logger}
}

// Load fetches products and categories concurrently. Concurrent callers
// share one fetch. On failure the previous lists are kept and the error is
// recorded; on success both lists are replaced.
func (c *Catalog) Load(ctx context.Context) error {
	_, err, shared := c.sfg.Do("load", func() (any, error) {
		return nil, c.load(ctx)
	})
	if shared {
		c.logger.Debug("catalog load shared with concurrent caller")
	}
	return err
}

// Refresh is Load under the name callers use after a mutation.
func (c *Catalog) Refresh(ctx context.Context) error {
	return c.Load(ctx)
}

func (c *Catalog) load(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.lastErr = ""
	c.mu.Unlock()

	var (
		products   []model.Product
		categories []model.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = c.gw.Products(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = c.gw.Categories(gctx)
		return err
	})
	err := g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.lastErr = model.ErrorMessage(err)
		c.logger.Warn("catalog load failed, keeping previous lists",
			slog.Int("products", len(c.products)),
			slog.Int("categories", len(c.categories)),
			slog.Any("error", err),
		)
		return err
	}
	c.products = products
	c.categories = categories
	c.loaded = true
	c.logger.Debug("catalog loaded",
		slog.Int("products", len(products)),
		slog.Int("categories", len(categories)),
	)
	return nil
}

// Products returns a copy of the product list.
func (c *Catalog) Products() []model.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.products)
}

// Categories returns a copy of the category list.
func (c *Catalog) Categories() []model.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.categories)
}

// Product looks up a product by id.
func (c *Catalog) Product(id string) (model.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return model.Product{}, false
}

// ByCategory returns the products in categoryID. An empty id returns all.
func (c *Catalog) ByCategory(categoryID string) []model.Product {
	if categoryID == "" {
		return c.Products()
	}
	return c.Search(Filter{CategoryIDs: []string{categoryID}})
}

// Loading reports whether a load is in flight.
func (c *Catalog) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Loaded reports whether any load has succeeded.
func (c *Catalog) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Err returns the readable message of the last failed load, or "".
func (c *Catalog) Err() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// Filter narrows a product listing. Zero fields do not filter.
type Filter struct {
	// Query matches name, description or category name, case-insensitively.
	Query       string
	CategoryIDs []string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	InStockOnly bool
}

// Match reports whether p passes every set criterion.
func (f Filter) Match(p model.Product) bool {
	if len(f.CategoryIDs) > 0 && !slices.Contains(f.CategoryIDs, p.Category.ID) {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.InStockOnly && !p.InStock() {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		return strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) ||
			strings.Contains(strings.ToLower(p.Category.Name), q)
	}
	return true
}

// Search returns the products matching f, in catalog order.
func (c *Catalog) Search(f Filter) []model.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Product, 0, len(c.products))
	for _, p := range c.products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}
