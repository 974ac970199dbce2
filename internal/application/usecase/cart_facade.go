// internal/application/usecase/cart_facade.go
package usecase

import (
	"context"
	"log"
	"sync"

	cartdom "agrimart/internal/domain/cart"
	"agrimart/internal/domain/identity"
)

// Notification is the fire-and-forget outcome of one mutating cart
// operation, delivered to the notification sink (UI toasts, ops alerts).
type Notification struct {
	OK      bool
	Message string
}

// Notifier is the notification sink port. Implementations must not
// block; the engine never consumes a return value.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NopNotifier discards notifications (tests, headless tools).
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Notification) {}

// CartFacade is the only surface UI collaborators consume: the current
// item view, the loading flag, derived aggregates, the mutating
// operations, and an explicit observer list notified synchronously after
// every successful mutation and every identity-triggered reload.
//
// Engine errors never reach callers; they are translated into failure
// notifications so page code does not wrap every call in error handling.
type CartFacade struct {
	engine   *CartUsecase
	notifier Notifier

	mu      sync.Mutex
	subs    map[int]func()
	nextSub int
}

// NewCartFacade wires the facade to its engine. A nil engine is an
// integration defect, not a runtime condition: constructing the facade
// without an initialized engine panics at the point of misuse.
func NewCartFacade(engine *CartUsecase, notifier Notifier) *CartFacade {
	if engine == nil {
		panic("cart facade: reconciliation engine is not initialized")
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &CartFacade{
		engine:   engine,
		notifier: notifier,
		subs:     map[int]func(){},
	}
}

// ----------------------------
// Reads
// ----------------------------

// CartItems returns a read-only copy of the current list.
func (f *CartFacade) CartItems() []cartdom.CartItem {
	return f.engine.Items()
}

func (f *CartFacade) IsLoading() bool {
	return f.engine.IsLoading()
}

// CartCount is the sum of quantities across the cart.
func (f *CartFacade) CartCount() int {
	return cartdom.Count(f.engine.Items())
}

// CartTotal is the sum of price*quantity across the cart.
func (f *CartFacade) CartTotal() float64 {
	return cartdom.Total(f.engine.Items())
}

// Subscribe registers fn for synchronous change notification and returns
// its unsubscribe func. Ownership of the subscription is the caller's;
// there is no ambient event bus.
func (f *CartFacade) Subscribe(fn func()) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}

	f.mu.Lock()
	id := f.nextSub
	f.nextSub++
	f.subs[id] = fn
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

func (f *CartFacade) publish() {
	f.mu.Lock()
	fns := make([]func(), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// ----------------------------
// Mutations
// ----------------------------

// SetSession re-initializes the cart for a new identity and notifies
// subscribers. Load failures already degraded inside the engine (local
// fallback), so they are logged, not surfaced.
func (f *CartFacade) SetSession(ctx context.Context, s identity.Session) {
	if err := f.engine.SetSession(ctx, s); err != nil {
		log.Printf("[cart_facade] session reload degraded to local cache: %v", err)
		f.notifier.Notify(ctx, Notification{OK: false, Message: "Could not sync your cart. Your saved items are still here."})
	}
	f.publish()
}

func (f *CartFacade) AddToCart(ctx context.Context, candidate cartdom.CartItem) {
	f.finish(ctx, f.engine.AddItem(ctx, candidate),
		"Item added to cart", "Failed to add item to cart")
}

func (f *CartFacade) RemoveFromCart(ctx context.Context, id string) {
	f.finish(ctx, f.engine.RemoveItem(ctx, id),
		"Item removed from cart", "Failed to remove item from cart")
}

func (f *CartFacade) UpdateQuantity(ctx context.Context, id string, qty int) {
	f.finish(ctx, f.engine.UpdateQuantity(ctx, id, qty),
		"Cart updated", "Failed to update cart")
}

func (f *CartFacade) ClearCart(ctx context.Context) {
	f.finish(ctx, f.engine.ClearCart(ctx),
		"Cart cleared", "Failed to clear cart")
}

func (f *CartFacade) SyncCartWithDatabase(ctx context.Context) {
	f.finish(ctx, f.engine.SyncWithRemote(ctx),
		"Cart synced", "Failed to sync cart")
}

// finish emits exactly one success-or-failure notification per mutating
// call and publishes to subscribers only when the mutation took effect.
func (f *CartFacade) finish(ctx context.Context, err error, okMsg, failMsg string) {
	if err != nil {
		log.Printf("[cart_facade] %s: %v", failMsg, err)
		f.notifier.Notify(ctx, Notification{OK: false, Message: failMsg})
		return
	}
	f.notifier.Notify(ctx, Notification{OK: true, Message: okMsg})
	f.publish()
}
