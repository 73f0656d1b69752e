package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/gateway"
	"storefront/internal/model"
)

var (
	pastries = model.Category{ID: "c1", Name: "Pastries"}
	cakes    = model.Category{ID: "c2", Name: "Cakes"}

	baklava  = model.Product{ID: "p1", Name: "Baklava", Description: "Walnut and honey", Price: model.ParsePrice("10.00"), Stock: 4, Category: pastries}
	eclair   = model.Product{ID: "p2", Name: "Eclair", Description: "Chocolate glaze", Price: model.ParsePrice("5.50"), Stock: 0, Category: pastries}
	tiramisu = model.Product{ID: "p3", Name: "Tiramisu", Description: "Coffee soaked", Price: model.ParsePrice("7.25"), Stock: 9, Category: cakes}
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loadedCatalog(t *testing.T) *Catalog {
	t.Helper()
	mock := &gateway.Mock{
		ProductsFunc: func(context.Context) ([]model.Product, error) {
			return []model.Product{baklava, eclair, tiramisu}, nil
		},
		CategoriesFunc: func(context.Context) ([]model.Category, error) {
			return []model.Category{pastries, cakes}, nil
		},
	}
	c := New(mock, quietLogger())
	require.NoError(t, c.Load(context.Background()))
	return c
}

func TestLoad(t *testing.T) {
	c := loadedCatalog(t)
	assert.Len(t, c.Products(), 3)
	assert.Len(t, c.Categories(), 2)
	assert.True(t, c.Loaded())
	assert.False(t, c.Loading())
	assert.Empty(t, c.Err())
}

func TestLoadFailureKeepsStaleLists(t *testing.T) {
	fail := false
	mock := &gateway.Mock{
		ProductsFunc: func(context.Context) ([]model.Product, error) {
			if fail {
				return nil, model.NewUpstreamError("store API", errors.New("502"))
			}
			return []model.Product{baklava}, nil
		},
		CategoriesFunc: func(context.Context) ([]model.Category, error) {
			return []model.Category{pastries}, nil
		},
	}
	c := New(mock, quietLogger())
	require.NoError(t, c.Load(context.Background()))

	fail = true
	err := c.Refresh(context.Background())
	assert.ErrorIs(t, err, model.ErrUpstreamError)
	assert.Equal(t, "store API request failed", c.Err())
	assert.Equal(t, []model.Product{baklava}, c.Products())
	assert.Equal(t, []model.Category{pastries}, c.Categories())
	assert.False(t, c.Loading())

	fail = false
	require.NoError(t, c.Refresh(context.Background()))
	assert.Empty(t, c.Err())
}

func TestLoadFailureBeforeFirstSuccess(t *testing.T) {
	mock := &gateway.Mock{
		CategoriesFunc: func(context.Context) ([]model.Category, error) {
			return nil, model.NewUpstreamError("store API", errors.New("down"))
		},
	}
	c := New(mock, quietLogger())
	assert.Error(t, c.Load(context.Background()))
	assert.Empty(t, c.Products())
	assert.False(t, c.Loaded())
}

func TestConcurrentLoadsShareOneFetch(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	mock := &gateway.Mock{
		ProductsFunc: func(context.Context) ([]model.Product, error) {
			calls.Add(1)
			<-release
			return []model.Product{baklava}, nil
		},
	}
	c := New(mock, quietLogger())

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Load(context.Background()))
		}()
	}
	require.Eventually(t, c.Loading, time.Second, time.Millisecond)
	// Give the other callers time to join the in-flight load.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(5))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
	assert.Len(t, c.Products(), 1)
}

func TestProductLookup(t *testing.T) {
	c := loadedCatalog(t)
	p, ok := c.Product("p3")
	require.True(t, ok)
	assert.Equal(t, "Tiramisu", p.Name)

	_, ok = c.Product("nope")
	assert.False(t, ok)
}

func TestByCategory(t *testing.T) {
	c := loadedCatalog(t)
	assert.Equal(t, []model.Product{baklava, eclair}, c.ByCategory("c1"))
	assert.Equal(t, []model.Product{tiramisu}, c.ByCategory("c2"))
	assert.Empty(t, c.ByCategory("c9"))
	assert.Len(t, c.ByCategory(""), 3)
}

func TestSearch(t *testing.T) {
	c := loadedCatalog(t)
	price := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "no filter", filter: Filter{}, want: []string{"p1", "p2", "p3"}},
		{name: "name match", filter: Filter{Query: "ECLAIR"}, want: []string{"p2"}},
		{name: "description match", filter: Filter{Query: "coffee"}, want: []string{"p3"}},
		{name: "category name match", filter: Filter{Query: "pastr"}, want: []string{"p1", "p2"}},
		{name: "in stock", filter: Filter{InStockOnly: true}, want: []string{"p1", "p3"}},
		{name: "price band", filter: Filter{MinPrice: price("6"), MaxPrice: price("10")}, want: []string{"p1", "p3"}},
		{name: "combined", filter: Filter{CategoryIDs: []string{"c1"}, InStockOnly: true}, want: []string{"p1"}},
		{name: "nothing", filter: Filter{Query: "pizza"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []string{}
			for _, p := range c.Search(tt.filter) {
				got = append(got, p.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProductsReturnsCopy(t *testing.T) {
	c := loadedCatalog(t)
	ps := c.Products()
	ps[0].Name = "changed"
	p, _ := c.Product("p1")
	assert.Equal(t, "Baklava", p.Name)
}
