package cartsync

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Diwwy20/pp-food-client/internal/domain"
)

// DefaultDebounce matches the quantity-selector behavior: rapid clicks
// within this window coalesce into a single authoritative update.
const DefaultDebounce = 800 * time.Millisecond

// API is the authoritative cart surface the engine writes through.
// Implemented by services.CartService; tests substitute mocks.
type API interface {
	Get(ctx context.Context) (*domain.Cart, error)
	AddItem(ctx context.Context, productID int64, quantity int, selectedOptions []domain.SelectedOption, note string) (*domain.Cart, error)
	UpdateItem(ctx context.Context, itemID int64, quantity int, selectedOptions []domain.SelectedOption) (*domain.Cart, error)
	RemoveItem(ctx context.Context, itemID int64) (*domain.Cart, error)
}

// pendingEdit is a not-yet-confirmed quantity change for one cart line.
// A newer edit on the same line supersedes it before the timer fires.
type pendingEdit struct {
	quantity int
	timer    *time.Timer
}

// Engine keeps a local cart projection that responds to quantity edits
// immediately while coalescing authoritative writes behind a per-line
// trailing debounce. The engine is the only mutator of the projection;
// readers take snapshots.
type Engine struct {
	api      API
	debounce time.Duration
	onError  func(error)

	mu         sync.Mutex
	cart       *domain.Cart
	totalItems int
	pending    map[int64]*pendingEdit // armed debounce timers by line id
	inFlight   map[int64]bool         // lines with an authoritative call out
	closed     bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type Option func(*Engine)

// WithDebounce overrides the debounce window, mainly for tests.
func WithDebounce(d time.Duration) Option {
	return func(e *Engine) { e.debounce = d }
}

// WithErrorHook registers the notification callback for failed
// authoritative updates. Defaults to logging.
func WithErrorHook(fn func(error)) Option {
	return func(e *Engine) { e.onError = fn }
}

func NewEngine(api API, opts ...Option) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		api:      api,
		debounce: DefaultDebounce,
		onError:  func(err error) { log.Printf("cart sync error: %v", err) },
		pending:  make(map[int64]*pendingEdit),
		inFlight: make(map[int64]bool),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Close stops all armed timers and waits for in-flight updates to settle.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	for id, edit := range e.pending {
		edit.timer.Stop()
		delete(e.pending, id)
	}
	e.mu.Unlock()

	e.cancel()
	e.wg.Wait()
}

// Snapshot returns a copy of the local projection and the derived
// total-item count. Optimistic edits are visible here before any network
// call completes.
func (e *Engine) Snapshot() (*domain.Cart, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cart.Clone(), e.totalItems
}

// Refresh fetches the cart from the server and replaces the projection.
func (e *Engine) Refresh(ctx context.Context) error {
	cart, err := e.api.Get(ctx)
	if err != nil {
		return err
	}
	e.adopt(cart)
	return nil
}

// Reset drops the local projection, e.g. on logout.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cart = nil
	e.totalItems = 0
}

// ApplyLocalQuantity replaces the quantity of the matching line in the
// local projection without any network call. Quantities below 1 are the
// caller's job to reject before getting here.
func (e *Engine) ApplyLocalQuantity(itemID int64, quantity int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cart == nil {
		return
	}
	for i := range e.cart.Items {
		if e.cart.Items[i].ID == itemID {
			e.cart.Items[i].Quantity = quantity
			break
		}
	}
	e.totalItems = e.cart.TotalItems()
}

// ScheduleUpdate arms (or re-arms) the debounce timer for a line. Later
// calls before the timer fires replace the pending quantity and restart
// the timer, so a burst of clicks produces exactly one authoritative call
// carrying the last requested quantity.
func (e *Engine) ScheduleUpdate(itemID int64, quantity int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}

	if edit, ok := e.pending[itemID]; ok {
		edit.quantity = quantity
		edit.timer.Reset(e.debounce)
		return
	}

	edit := &pendingEdit{quantity: quantity}
	edit.timer = time.AfterFunc(e.debounce, func() {
		e.fire(itemID)
	})
	e.pending[itemID] = edit
}

// SetQuantity is the one-call form the UI uses per click: optimistic local
// update plus debounce scheduling.
func (e *Engine) SetQuantity(itemID int64, quantity int) {
	if quantity < 1 {
		return
	}
	e.ApplyLocalQuantity(itemID, quantity)
	e.ScheduleUpdate(itemID, quantity)
}

// fire runs when a line's debounce timer elapses. If that line already has
// an authoritative call in flight, the timer re-arms and the edit waits for
// the current call to settle; only one call per line is ever out at a time.
func (e *Engine) fire(itemID int64) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	edit, ok := e.pending[itemID]
	if !ok {
		e.mu.Unlock()
		return
	}
	if e.inFlight[itemID] {
		edit.timer.Reset(e.debounce)
		e.mu.Unlock()
		return
	}

	delete(e.pending, itemID)
	e.inFlight[itemID] = true
	quantity := edit.quantity
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.pushQuantity(itemID, quantity)
	}()
}

// pushQuantity issues the authoritative update for a line and reconciles
// the projection with the outcome.
func (e *Engine) pushQuantity(itemID int64, quantity int) {
	cart, err := e.api.UpdateItem(e.ctx, itemID, quantity, nil)

	e.mu.Lock()
	delete(e.inFlight, itemID)
	e.mu.Unlock()

	if err != nil {
		if e.ctx.Err() != nil {
			return // engine closed mid-flight
		}
		// Discard the optimistic state and restore ground truth.
		e.onError(err)
		e.refetch()
		return
	}
	e.adoptPreservingPending(cart)
}

// refetch replaces the projection with a fresh server fetch after a failed
// reconciliation, so local state never stays diverged for more than one
// failed cycle.
func (e *Engine) refetch() {
	cart, err := e.api.Get(e.ctx)
	if err != nil {
		e.onError(err)
		return
	}
	e.adopt(cart)
}

// adopt replaces the local projection wholesale; the server is
// authoritative for prices and persisted option state.
func (e *Engine) adopt(cart *domain.Cart) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cart = cart
	e.totalItems = cart.TotalItems()
}

// adoptPreservingPending adopts a server snapshot but keeps the optimistic
// quantity of any line that acquired a newer pending edit while the request
// was in flight, so a stale response cannot clobber a fresher edit.
func (e *Engine) adoptPreservingPending(cart *domain.Cart) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cart != nil {
		for i := range cart.Items {
			if edit, ok := e.pending[cart.Items[i].ID]; ok {
				cart.Items[i].Quantity = edit.quantity
			}
		}
	}
	e.cart = cart
	e.totalItems = cart.TotalItems()
}

// AddItem sends an immediate authoritative add; there is no optimistic
// phase. On failure the local projection is untouched.
func (e *Engine) AddItem(ctx context.Context, productID int64, quantity int, selectedOptions []domain.SelectedOption, note string) error {
	if err := domain.ValidateNote(note); err != nil {
		return err
	}
	cart, err := e.api.AddItem(ctx, productID, quantity, selectedOptions, note)
	if err != nil {
		return err
	}
	e.adopt(cart)
	return nil
}

// UpdateItem sends an immediate authoritative update (quantity and
// options), bypassing the debounce; used by the edit-item flow.
func (e *Engine) UpdateItem(ctx context.Context, itemID int64, quantity int, selectedOptions []domain.SelectedOption) error {
	cart, err := e.api.UpdateItem(ctx, itemID, quantity, selectedOptions)
	if err != nil {
		return err
	}
	e.adopt(cart)
	return nil
}

// RemoveItem sends an immediate authoritative delete.
func (e *Engine) RemoveItem(ctx context.Context, itemID int64) error {
	cart, err := e.api.RemoveItem(ctx, itemID)
	if err != nil {
		return err
	}
	e.adopt(cart)
	return nil
}
