// Package storefront is the composition root. It builds the backend client,
// session store, cart engine, catalog cache and order/admin services from
// configuration and wires session transitions between them.
package storefront

import (
	"context"
	"fmt"
	"log/slog"

	"storefront/internal/admin"
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/gateway"
	"storefront/internal/model"
	"storefront/internal/orders"
	"storefront/internal/session"
	"storefront/internal/storeapi"
	"storefront/internal/transport"
)

// Backend is everything the storefront needs from the shop backend.
type Backend interface {
	gateway.Cart
	gateway.Auth
	gateway.Catalog
	gateway.Orders
	gateway.Admin
}

// tokenReceiver is implemented by backends that authenticate with a bearer
// token pulled from the session.
type tokenReceiver interface {
	SetTokenSource(ts gateway.TokenSource)
}

// App holds the wired services. The fields are safe for concurrent use.
type App struct {
	Session *session.Store
	Cart    *cart.Engine
	Catalog *catalog.Catalog
	Orders  *orders.Service
	Admin   *admin.Service

	logger *slog.Logger
}

// Deps are the inputs to Assemble.
type Deps struct {
	Backend   Backend
	Persister session.Persister
	Logger    *slog.Logger

	ValidateOnRestore bool
	MergeGuestCart    bool
}

// Assemble wires services over d.Backend. The cart and order services are
// subscribed to session transitions; nothing is fetched yet.
func Assemble(d Deps) *App {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store := session.NewStore(d.Backend, d.Persister, session.Options{
		ValidateOnRestore: d.ValidateOnRestore,
		Logger:            logger.With(slog.String("component", "session")),
	})
	if tr, ok := d.Backend.(tokenReceiver); ok {
		tr.SetTokenSource(store)
	}

	engine := cart.New(d.Backend, cart.Options{
		MergeGuestCart: d.MergeGuestCart,
		Logger:         logger.With(slog.String("component", "cart")),
	})
	cat := catalog.New(d.Backend, logger.With(slog.String("component", "catalog")))
	ord := orders.New(d.Backend, logger.With(slog.String("component", "orders")))
	adm := admin.New(d.Backend, d.Backend, store, cat, logger.With(slog.String("component", "admin")))

	store.Subscribe(engine)
	store.Subscribe(ord)

	return &App{
		Session: store,
		Cart:    engine,
		Catalog: cat,
		Orders:  ord,
		Admin:   adm,
		logger:  logger,
	}
}

// New builds the App described by cfg and restores any persisted session.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client, err := storeapi.New(storeapi.Config{
		BaseURL:      cfg.API.BaseURL,
		AssetBaseURL: cfg.API.AssetBaseURL,
		Timeout:      cfg.API.Timeout.Std(),
		Transport: transport.New(transport.Options{
			ChromeFingerprint: cfg.API.ChromeFingerprint,
		}),
		APIKey:        cfg.API.APIKey,
		MinAPIVersion: cfg.API.MinVersion,
		AgentName:     "storefront",
		AgentVersion:  Version,
		Logger:        logger.With(slog.String("component", "storeapi")),
	})
	if err != nil {
		return nil, fmt.Errorf("creating store API client: %w", err)
	}

	persister, err := OpenPersister(cfg.Session)
	if err != nil {
		return nil, err
	}

	app := Assemble(Deps{
		Backend:           client,
		Persister:         persister,
		Logger:            logger,
		ValidateOnRestore: cfg.Session.ValidateOnRestore,
		MergeGuestCart:    cfg.Cart.MergeGuestCart,
	})

	if err := app.Session.Restore(ctx); err != nil {
		logger.Warn("starting without a restored session", slog.Any("error", err))
	}
	return app, nil
}

// Version is reported to the backend in the agent header.
var Version = "dev"

// OpenPersister opens the session persistence backend named in cfg.
func OpenPersister(cfg config.SessionConfig) (session.Persister, error) {
	switch cfg.Backend {
	case config.SessionSQLite:
		p, err := session.OpenSQLite(cfg.Path, cfg.Profile)
		if err != nil {
			return nil, fmt.Errorf("opening session database: %w", err)
		}
		return p, nil
	case config.SessionRedis:
		p, err := session.OpenRedis(cfg.RedisURL, cfg.Profile)
		if err != nil {
			return nil, fmt.Errorf("connecting to session redis: %w", err)
		}
		return p, nil
	case config.SessionMemory, "":
		return session.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}

// AddToCart adds quantity of productID, looking the product up in the
// catalog (loading it first if needed) so the cart line carries its details.
func (a *App) AddToCart(ctx context.Context, productID string, quantity int) error {
	p, err := a.Product(ctx, productID)
	if err != nil {
		return err
	}
	return a.Cart.AddItem(ctx, p, quantity)
}

// Product returns a catalog product by id, loading the catalog on first use.
func (a *App) Product(ctx context.Context, id string) (model.Product, error) {
	if !a.Catalog.Loaded() {
		if err := a.Catalog.Load(ctx); err != nil {
			return model.Product{}, err
		}
	}
	p, ok := a.Catalog.Product(id)
	if !ok {
		return model.Product{}, model.NewNotFoundError("product")
	}
	return p, nil
}

// EnsureCatalog loads the catalog if no load has succeeded yet.
func (a *App) EnsureCatalog(ctx context.Context) error {
	if a.Catalog.Loaded() {
		return nil
	}
	return a.Catalog.Load(ctx)
}

// Close releases the session persister.
func (a *App) Close() error {
	if err := a.Session.Close(); err != nil {
		return fmt.Errorf("closing session store: %w", err)
	}
	return nil
}
