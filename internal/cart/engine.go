// Package cart implements the cart engine: one in-memory cart that is either
// purely local (nobody signed in) or a mirror of the backend cart (signed in).
//
// In remote mode every mutation goes to the backend first and, on success,
// the whole cart is re-fetched and folded; the engine never patches remote
// state incrementally. Failures are returned and also kept as readable state
// so a view can render them.
package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/internal/gateway"
	"storefront/internal/model"
	"storefront/internal/reconcile"
)

// Mode selects where cart state lives.
type Mode int

const (
	// ModeLocal keeps the cart in memory only. No network calls.
	ModeLocal Mode = iota
	// ModeRemote mirrors the signed-in user's backend cart.
	ModeRemote
)

func (m Mode) String() string {
	if m == ModeRemote {
		return "remote"
	}
	return "local"
}

// Snapshot is a consistent read of the engine state.
type Snapshot struct {
	Mode       Mode
	Items      []model.LineItem
	TotalItems int
	TotalPrice decimal.Decimal
	Loading    bool
	Error      string
}

// Options configures an Engine.
type Options struct {
	// MergeGuestCart pushes the guest cart to the server on sign-in instead
	// of discarding it.
	MergeGuestCart bool
	Logger         *slog.Logger
}

// Engine is safe for concurrent use. State is guarded by mu; gateway calls
// run without it.
type Engine struct {
	gw         gateway.Cart
	logger     *slog.Logger
	mergeGuest bool

	mu       sync.Mutex
	mode     Mode
	items    []model.LineItem
	lastErr  string
	inflight int

	// epoch increments on every session transition. Results carrying an
	// older epoch are dropped.
	epoch uint64

	// issued and applied order cart fetches. A fetch older than the last
	// applied one is dropped, so the latest-issued fetch wins.
	issued  uint64
	applied uint64
}

// New returns an empty engine in local mode.
func New(gw gateway.Cart, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		gw:         gw,
		logger:     logger,
		mergeGuest: opts.MergeGuestCart,
	}
}

// begin clears the previous error and, in remote mode, marks a call in
// flight. Returns the mode and epoch the operation runs under.
func (e *Engine) begin() (Mode, uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastErr = ""
	if e.mode == ModeRemote {
		e.inflight++
	}
	return e.mode, e.epoch
}

func (e *Engine) done() {
	e.mu.Lock()
	e.inflight--
	e.mu.Unlock()
}

// fail records err as the readable error if epoch is still current.
// Must be called with mu held.
func (e *Engine) failLocked(epoch uint64, err error) {
	if epoch == e.epoch {
		e.lastErr = model.ErrorMessage(err)
	}
}

func (e *Engine) fail(epoch uint64, err error) error {
	e.mu.Lock()
	e.failLocked(epoch, err)
	e.mu.Unlock()
	return err
}

// AddItem adds quantity units of p. Local mode merges into an existing line
// or appends one. Remote mode posts the add and re-fetches; if the post
// fails the local merge is applied anyway and the error is returned.
func (e *Engine) AddItem(ctx context.Context, p model.Product, quantity int) error {
	if p.ID == "" {
		return e.reject(model.NewValidationError("product", "missing id"))
	}
	if quantity < 1 {
		return e.reject(model.NewValidationError("quantity", "must be at least 1"))
	}

	item := model.LineItemFromProduct(p)
	item.Quantity = quantity

	mode, epoch := e.begin()
	if mode == ModeLocal {
		e.mu.Lock()
		e.items = reconcile.Add(e.items, item)
		e.mu.Unlock()
		return nil
	}
	defer e.done()

	if err := e.gw.AddCartItem(ctx, p.ID, quantity); err != nil {
		e.logger.Warn("add to cart failed, applying locally",
			slog.String("product_id", p.ID),
			slog.Int("quantity", quantity),
			slog.Any("error", err),
		)
		e.mu.Lock()
		if epoch == e.epoch {
			e.items = reconcile.Add(e.items, item)
		}
		e.failLocked(epoch, err)
		e.mu.Unlock()
		return err
	}

	return e.fetch(ctx, epoch)
}

// RemoveItem drops the line for productID. In remote mode a failed delete
// leaves the line in place.
func (e *Engine) RemoveItem(ctx context.Context, productID string) error {
	mode, epoch := e.begin()
	if mode == ModeLocal {
		e.mu.Lock()
		e.items = reconcile.Remove(e.items, productID)
		e.mu.Unlock()
		return nil
	}
	defer e.done()

	if err := e.gw.RemoveCartItem(ctx, productID); err != nil {
		e.logger.Warn("remove from cart failed",
			slog.String("product_id", productID),
			slog.Any("error", err),
		)
		return e.fail(epoch, err)
	}

	return e.fetch(ctx, epoch)
}

// SetQuantity sets the line's quantity; quantity <= 0 removes it.
// In remote mode a failed update is applied locally and the error returned.
func (e *Engine) SetQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return e.RemoveItem(ctx, productID)
	}

	mode, epoch := e.begin()
	if mode == ModeLocal {
		e.mu.Lock()
		e.items = reconcile.SetQuantity(e.items, productID, quantity)
		e.mu.Unlock()
		return nil
	}
	defer e.done()

	if err := e.gw.UpdateCartItem(ctx, productID, quantity); err != nil {
		e.logger.Warn("update cart item failed, applying locally",
			slog.String("product_id", productID),
			slog.Int("quantity", quantity),
			slog.Any("error", err),
		)
		e.mu.Lock()
		if epoch == e.epoch {
			e.items = reconcile.SetQuantity(e.items, productID, quantity)
		}
		e.failLocked(epoch, err)
		e.mu.Unlock()
		return err
	}

	return e.fetch(ctx, epoch)
}

// Clear empties the cart. In remote mode the cart is emptied only after the
// backend confirms.
func (e *Engine) Clear(ctx context.Context) error {
	mode, epoch := e.begin()
	if mode == ModeLocal {
		e.mu.Lock()
		e.items = nil
		e.mu.Unlock()
		return nil
	}
	defer e.done()

	if err := e.gw.ClearCart(ctx); err != nil {
		e.logger.Warn("clear cart failed", slog.Any("error", err))
		return e.fail(epoch, err)
	}

	e.mu.Lock()
	e.emptyLocked(epoch)
	e.mu.Unlock()
	return nil
}

// PlaceOrder submits the current cart as an order. It needs a signed-in user
// and a non-empty cart; both are checked before any network call. On success
// the cart is emptied; on failure it is left as is.
func (e *Engine) PlaceOrder(ctx context.Context) (*model.Order, error) {
	e.mu.Lock()
	e.lastErr = ""
	switch {
	case e.mode != ModeRemote:
		err := model.NewUnauthorizedError("sign in to place an order")
		e.lastErr = model.ErrorMessage(err)
		e.mu.Unlock()
		return nil, err
	case len(e.items) == 0:
		err := model.NewValidationError("cart", "cart is empty")
		e.lastErr = model.ErrorMessage(err)
		e.mu.Unlock()
		return nil, err
	}
	items := make([]model.LineItem, len(e.items))
	copy(items, e.items)
	epoch := e.epoch
	e.inflight++
	e.mu.Unlock()
	defer e.done()

	req := model.OrderRequest{Items: items, IdempotencyKey: uuid.NewString()}
	order, err := e.gw.CreateOrder(ctx, req)
	if err != nil {
		e.logger.Warn("place order failed",
			slog.Int("lines", len(items)),
			slog.Any("error", err),
		)
		return nil, e.fail(epoch, err)
	}
	if order == nil {
		order = pendingOrder(items)
	}

	e.logger.Info("order placed",
		slog.String("order_id", order.ID),
		slog.String("idempotency_key", req.IdempotencyKey),
	)

	e.mu.Lock()
	e.emptyLocked(epoch)
	e.mu.Unlock()
	return order, nil
}

// Refresh re-fetches the backend cart. A no-op in local mode.
func (e *Engine) Refresh(ctx context.Context) error {
	mode, epoch := e.begin()
	if mode == ModeLocal {
		return nil
	}
	defer e.done()
	return e.fetch(ctx, epoch)
}

// SessionChanged switches mode on a session transition. A nil session
// resets to an empty local cart. A non-nil session discards the local cart
// (or pushes it to the server when MergeGuestCart is set) and loads the
// server cart.
func (e *Engine) SessionChanged(ctx context.Context, s *model.Session) error {
	e.mu.Lock()
	e.epoch++
	epoch := e.epoch
	guest := e.items
	e.items = nil
	e.lastErr = ""
	e.applied = e.issued
	if s == nil {
		e.mode = ModeLocal
		e.mu.Unlock()
		e.logger.Debug("cart switched to local mode")
		return nil
	}
	e.mode = ModeRemote
	e.inflight++
	e.mu.Unlock()
	defer e.done()

	e.logger.Debug("cart switched to remote mode", slog.String("user_id", s.User.ID))

	var mergeErr error
	if e.mergeGuest && len(guest) > 0 {
		mergeErr = e.pushGuest(ctx, guest)
	}

	fetchErr := e.fetch(ctx, epoch)
	if err := errors.Join(mergeErr, fetchErr); err != nil {
		return e.fail(epoch, err)
	}
	return nil
}

// pushGuest adds each folded guest line to the server cart. Every line is
// attempted; failures are joined.
func (e *Engine) pushGuest(ctx context.Context, guest []model.LineItem) error {
	var errs []error
	for _, item := range reconcile.Fold(guest) {
		if err := e.gw.AddCartItem(ctx, item.ProductID, item.Quantity); err != nil {
			e.logger.Warn("guest cart line not merged",
				slog.String("product_id", item.ProductID),
				slog.Any("error", err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// fetch loads the server cart and replaces local state with its folded rows,
// unless a newer fetch was applied meanwhile or the session changed.
func (e *Engine) fetch(ctx context.Context, epoch uint64) error {
	e.mu.Lock()
	e.issued++
	seq := e.issued
	e.mu.Unlock()

	rows, err := e.gw.GetCart(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()

	if epoch != e.epoch {
		e.logger.Debug("dropping cart from previous session", slog.Uint64("seq", seq))
		return nil
	}
	if err != nil {
		e.logger.Warn("cart fetch failed", slog.Any("error", err))
		e.failLocked(epoch, err)
		return err
	}
	if seq < e.applied {
		e.logger.Debug("dropping stale cart fetch",
			slog.Uint64("seq", seq),
			slog.Uint64("applied", e.applied),
		)
		return nil
	}
	e.applied = seq
	e.items = reconcile.Fold(rows)
	return nil
}

// emptyLocked clears the cart and retires every fetch issued so far so a
// late one cannot bring the items back. Must be called with mu held.
func (e *Engine) emptyLocked(epoch uint64) {
	if epoch != e.epoch {
		return
	}
	e.items = nil
	e.applied = e.issued
}

// reject records a validation failure without touching state.
func (e *Engine) reject(err error) error {
	e.mu.Lock()
	e.lastErr = model.ErrorMessage(err)
	e.mu.Unlock()
	return err
}

// Mode returns the current mode.
func (e *Engine) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// Items returns a copy of the current lines.
func (e *Engine) Items() []model.LineItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.LineItem, len(e.items))
	copy(out, e.items)
	return out
}

// TotalItems is the sum of quantities, computed on every call.
func (e *Engine) TotalItems() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, _ := reconcile.Totals(e.items)
	return n
}

// TotalPrice is the sum of line subtotals, computed on every call.
func (e *Engine) TotalPrice() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, total := reconcile.Totals(e.items)
	return total
}

// Loading reports whether a backend call is in flight.
func (e *Engine) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inflight > 0
}

// Err returns the readable message of the last failure, or "".
func (e *Engine) Err() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Snapshot returns all readable state under one lock.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	items := make([]model.LineItem, len(e.items))
	copy(items, e.items)
	n, total := reconcile.Totals(items)
	return Snapshot{
		Mode:       e.mode,
		Items:      items,
		TotalItems: n,
		TotalPrice: total,
		Loading:    e.inflight > 0,
		Error:      e.lastErr,
	}
}

// pendingOrder describes an accepted order whose body the backend omitted.
func pendingOrder(items []model.LineItem) *model.Order {
	order := &model.Order{Status: model.OrderPending}
	for _, item := range items {
		order.Items = append(order.Items, model.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}
	_, order.Total = reconcile.Totals(items)
	return order
}
