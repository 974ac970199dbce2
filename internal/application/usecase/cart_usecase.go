// internal/application/usecase/cart_usecase.go
package usecase

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	cartdom "agrimart/internal/domain/cart"
	"agrimart/internal/domain/identity"
)

var (
	ErrCartInvalidArgument = errors.New("cart_usecase: invalid argument")
)

// DefaultRemoteTimeout bounds each remote-store round trip; a timeout is
// indistinguishable from any other remote failure for callers.
const DefaultRemoteTimeout = 10 * time.Second

// CartUsecase is the cart reconciliation engine.
//
// It owns the in-memory item list the UI reads, decides per operation
// whether the local or the remote store is authoritative (by session
// variant), runs the one-time guest-cart merge on login, and degrades to
// the local store when the remote store is unreachable.
//
// All mutating entry points are serialized by a mutex so interleaved
// read-modify-write sequences against the same variantId cannot lose
// updates.
//
// Error policy: methods return an error for the facade to translate into
// notifications; on error the in-memory list is left exactly as it was
// (no optimistic partial application on the authenticated path).
type CartUsecase struct {
	mu sync.Mutex

	local  cartdom.LocalStore
	remote cartdom.RemoteStore

	remoteTimeout time.Duration

	session identity.Session
	items   []cartdom.CartItem
	loading bool
	merged  bool // guest->user merge already completed for this login
}

func NewCartUsecase(local cartdom.LocalStore, remote cartdom.RemoteStore) *CartUsecase {
	return &CartUsecase{
		local:         local,
		remote:        remote,
		remoteTimeout: DefaultRemoteTimeout,
		session:       identity.Guest{},
		items:         []cartdom.CartItem{},
		loading:       true,
	}
}

// NewCartUsecaseWithTimeout is useful when the default remote timeout
// does not fit (tests, slow links).
func NewCartUsecaseWithTimeout(local cartdom.LocalStore, remote cartdom.RemoteStore, timeout time.Duration) *CartUsecase {
	uc := NewCartUsecase(local, remote)
	if timeout > 0 {
		uc.remoteTimeout = timeout
	}
	return uc
}

func (uc *CartUsecase) remoteCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, uc.remoteTimeout)
}

// ----------------------------
// Reads
// ----------------------------

// Items returns a copy of the current in-memory list.
func (uc *CartUsecase) Items() []cartdom.CartItem {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return cartdom.CloneItems(uc.items)
}

// IsLoading is true until the first load for the current session completes.
func (uc *CartUsecase) IsLoading() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.loading
}

func (uc *CartUsecase) Session() identity.Session {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.session
}

// ----------------------------
// Identity transitions
// ----------------------------

// SetSession re-initializes the engine for a new identity.
//
// Guest: load from the local store.
// Guest -> user: run the merge procedure (plain remote load when the
// local cart is empty).
// User (already merged, or user -> user): plain remote load.
//
// A failed remote load falls back to the local store contents; the
// in-memory list is never left undefined. The returned error is
// advisory (the caller may log or notify); it never carries partial
// state.
func (uc *CartUsecase) SetSession(ctx context.Context, next identity.Session) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if next == nil {
		next = identity.Guest{}
	}

	prev := uc.session
	uc.session = next
	uc.loading = true
	defer func() { uc.loading = false }()

	uid, authed := identity.UserID(next)
	if !authed {
		uc.merged = false
		uc.items = uc.local.Load(ctx)
		return nil
	}

	_, wasAuthed := identity.UserID(prev)
	if !wasAuthed && !uc.merged {
		return uc.mergeLocked(ctx, uid)
	}

	return uc.loadRemoteLocked(ctx, uid)
}

// loadRemoteLocked replaces the in-memory list with the remote cart.
// On failure it falls back to whatever the local store holds (possibly
// empty) and reports the error upward.
func (uc *CartUsecase) loadRemoteLocked(ctx context.Context, userID string) error {
	rctx, cancel := uc.remoteCtx(ctx)
	defer cancel()

	h, err := uc.remote.GetOrCreateActiveCart(rctx, userID)
	if err != nil {
		uc.items = uc.local.Load(ctx)
		return err
	}

	items, err := uc.remote.ListItems(rctx, h)
	if err != nil {
		uc.items = uc.local.Load(ctx)
		return err
	}

	uc.items = items
	return nil
}

// mergeLocked folds the guest cart into the user's remote cart and
// manages the one-time merged flag itself.
//
// Per-item policy: quantities are additive (guest-added quantity is
// incremental demand, not a replacement), capped by the local snapshot's
// stock (default 99). The local store is cleared only after every
// per-item merge succeeded; on a write-phase failure the guest cart and
// the in-memory list survive untouched so a retry remains possible.
//
// Once the write phase completed the remote cart owns the merged items,
// so a failed final reload keeps the pre-merge in-memory view instead of
// falling back to the just-cleared local store.
func (uc *CartUsecase) mergeLocked(ctx context.Context, userID string) error {
	localItems := uc.local.Load(ctx)
	if len(localItems) == 0 {
		uc.merged = true
		return uc.loadRemoteLocked(ctx, userID)
	}

	rctx, cancel := uc.remoteCtx(ctx)
	defer cancel()

	h, err := uc.remote.GetOrCreateActiveCart(rctx, userID)
	if err != nil {
		return err
	}

	for _, li := range localItems {
		existing, err := uc.remote.FindLineItem(rctx, h, li.VariantID)
		if err != nil {
			return err
		}

		if existing != nil {
			qty := cartdom.ClampQty(existing.Quantity+li.Quantity, li.Stock)
			if err := uc.remote.UpdateLineItemQuantity(rctx, existing.ID, qty); err != nil {
				return err
			}
			continue
		}

		qty := cartdom.ClampQty(li.Quantity, li.Stock)
		if _, err := uc.remote.InsertLineItem(rctx, h, li.ProductID, li.VariantID, qty); err != nil {
			return err
		}
	}

	// Write phase complete: the merge must not run again for this login.
	uc.merged = true

	if err := uc.local.Clear(ctx); err != nil {
		// local storage failures never fail the merge
		log.Printf("[cart_usecase] merge: local clear failed (ignored): %v", err)
	}

	prev := uc.items
	if err := uc.loadRemoteLocked(ctx, userID); err != nil {
		uc.items = prev
		return err
	}
	return nil
}

// SyncWithRemote is the explicit external trigger for the merge
// procedure. Idempotent: with no local items left it degrades to a plain
// remote reload; for guests it just re-reads the local store.
func (uc *CartUsecase) SyncWithRemote(ctx context.Context) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	uid, authed := identity.UserID(uc.session)
	if !authed {
		uc.items = uc.local.Load(ctx)
		return nil
	}
	return uc.mergeLocked(ctx, uid)
}

// ----------------------------
// Mutations
// ----------------------------

// AddItem adds a catalog snapshot to the cart. candidate carries no id;
// the engine assigns one (local id for guests, the inserted line item's
// id for authenticated users). An already-present variantId accumulates
// quantity instead of creating a duplicate row, clamped by the
// candidate's stock snapshot.
func (uc *CartUsecase) AddItem(ctx context.Context, candidate cartdom.CartItem) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if err := candidate.Validate(); err != nil {
		return ErrCartInvalidArgument
	}

	uid, authed := identity.UserID(uc.session)
	if !authed {
		return uc.addLocalLocked(ctx, candidate)
	}
	return uc.addRemoteLocked(ctx, uid, candidate)
}

func (uc *CartUsecase) addLocalLocked(ctx context.Context, candidate cartdom.CartItem) error {
	idx := cartdom.FindByVariantID(uc.items, candidate.VariantID)
	if idx >= 0 {
		uc.items[idx].Quantity = cartdom.ClampQty(uc.items[idx].Quantity+candidate.Quantity, candidate.Stock)
	} else {
		candidate.ID = cartdom.NewLocalID()
		candidate.IsLocal = true
		candidate.Quantity = cartdom.ClampQty(candidate.Quantity, candidate.Stock)
		uc.items = append(uc.items, candidate)
	}

	uc.saveLocalLocked(ctx)
	return nil
}

func (uc *CartUsecase) addRemoteLocked(ctx context.Context, userID string, candidate cartdom.CartItem) error {
	rctx, cancel := uc.remoteCtx(ctx)
	defer cancel()

	h, err := uc.remote.GetOrCreateActiveCart(rctx, userID)
	if err != nil {
		return err
	}

	existing, err := uc.remote.FindLineItem(rctx, h, candidate.VariantID)
	if err != nil {
		return err
	}

	if existing != nil {
		qty := cartdom.ClampQty(existing.Quantity+candidate.Quantity, candidate.Stock)
		if err := uc.remote.UpdateLineItemQuantity(rctx, existing.ID, qty); err != nil {
			return err
		}
		// mirror the acknowledged write into the in-memory list
		if idx := cartdom.FindByVariantID(uc.items, candidate.VariantID); idx >= 0 {
			uc.items[idx].Quantity = qty
		} else {
			candidate.ID = existing.ID
			candidate.IsLocal = false
			candidate.Quantity = qty
			uc.items = append(uc.items, candidate)
		}
		return nil
	}

	qty := cartdom.ClampQty(candidate.Quantity, candidate.Stock)
	li, err := uc.remote.InsertLineItem(rctx, h, candidate.ProductID, candidate.VariantID, qty)
	if err != nil {
		return err
	}

	candidate.ID = li.ID
	candidate.IsLocal = false
	candidate.Quantity = qty
	uc.items = append(uc.items, candidate)
	return nil
}

// RemoveItem deletes the item with id from the cart. Unknown ids are a
// no-op, not an error.
func (uc *CartUsecase) RemoveItem(ctx context.Context, id string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.removeLocked(ctx, id)
}

func (uc *CartUsecase) removeLocked(ctx context.Context, id string) error {
	idx := cartdom.FindByID(uc.items, id)
	if idx < 0 {
		return nil
	}

	_, authed := identity.UserID(uc.session)
	if cartdom.IsLocalID(id) || !authed {
		uc.items = cartdom.RemoveIndex(uc.items, idx)
		uc.saveLocalLocked(ctx)
		return nil
	}

	rctx, cancel := uc.remoteCtx(ctx)
	defer cancel()
	if err := uc.remote.DeleteLineItem(rctx, id); err != nil {
		return err
	}
	uc.items = cartdom.RemoveIndex(uc.items, idx)
	return nil
}

// UpdateQuantity sets the item's quantity, clamped to its stock
// snapshot. qty < 1 is defined as removal. Unknown ids are a no-op.
func (uc *CartUsecase) UpdateQuantity(ctx context.Context, id string, qty int) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if qty < 1 {
		return uc.removeLocked(ctx, id)
	}

	idx := cartdom.FindByID(uc.items, id)
	if idx < 0 {
		return nil
	}

	clamped := cartdom.ClampQty(qty, uc.items[idx].Stock)

	_, authed := identity.UserID(uc.session)
	if cartdom.IsLocalID(id) || !authed {
		uc.items[idx].Quantity = clamped
		uc.saveLocalLocked(ctx)
		return nil
	}

	rctx, cancel := uc.remoteCtx(ctx)
	defer cancel()
	if err := uc.remote.UpdateLineItemQuantity(rctx, id, clamped); err != nil {
		return err
	}
	uc.items[idx].Quantity = clamped
	return nil
}

// ClearCart empties the cart. For authenticated users every remote line
// item is deleted; the local store is cleared in both paths so stale
// guest data cannot resurface. Clearing an already-empty cart succeeds.
func (uc *CartUsecase) ClearCart(ctx context.Context) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	uid, authed := identity.UserID(uc.session)
	if authed {
		rctx, cancel := uc.remoteCtx(ctx)
		defer cancel()

		h, err := uc.remote.GetOrCreateActiveCart(rctx, uid)
		if err != nil {
			return err
		}
		if err := uc.remote.DeleteAllLineItems(rctx, h); err != nil {
			return err
		}
	}

	if err := uc.local.Clear(ctx); err != nil {
		log.Printf("[cart_usecase] ClearCart: local clear failed (ignored): %v", err)
	}
	uc.items = []cartdom.CartItem{}
	return nil
}

// saveLocalLocked persists the in-memory list for guest flows. Local
// storage failures are logged and swallowed; they never reject the
// user's action.
func (uc *CartUsecase) saveLocalLocked(ctx context.Context) {
	if err := uc.local.Save(ctx, uc.items); err != nil {
		log.Printf("[cart_usecase] local save failed (ignored): %v", err)
	}
}
