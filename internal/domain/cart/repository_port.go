// internal/domain/cart/repository_port.go
package cart

import "context"

// LocalStore is the device-scoped persistence port for guest carts.
//
// Storage recommendation (SQLite key-value):
// - table: kv
// - key:   "cart" (single fixed logical key)
// - value: JSON array of CartItem
//
// Failure policy:
// - Load never fails: absent or unparseable values read as an empty list
//   (the corrupt value is discarded, not propagated).
// - Save/Clear errors are advisory; callers log and continue, they never
//   block a cart mutation on local storage.
type LocalStore interface {
	Load(ctx context.Context) []CartItem
	Save(ctx context.Context, items []CartItem) error
	Clear(ctx context.Context) error
}

// CartHandle identifies a user's single active remote cart.
type CartHandle struct {
	ID     string
	UserID string
}

// LineItem is one persisted remote cart row (pre-hydration).
type LineItem struct {
	ID        string
	CartID    string
	ProductID string
	VariantID string
	Quantity  int
}

// RemoteStore is the persistence port for the authenticated user's
// active cart aggregate.
//
// Every method may fail with an error wrapping ErrRemoteUnavailable;
// the reconciliation engine catches it and applies the fallback policy
// (local cache on load, rejected operation on writes).
type RemoteStore interface {
	// GetOrCreateActiveCart returns the single active cart for userID,
	// creating it if absent. Safe to call repeatedly (lookup-then-create
	// never produces duplicate active carts).
	GetOrCreateActiveCart(ctx context.Context, userID string) (CartHandle, error)

	// ListItems returns the cart's line items hydrated with catalog data
	// (product name, collection title as category, variant price/image/
	// stock). Rows whose product or variant no longer resolve get fallback
	// display values instead of being dropped.
	ListItems(ctx context.Context, h CartHandle) ([]CartItem, error)

	// FindLineItem returns (nil, nil) when no row matches variantID.
	FindLineItem(ctx context.Context, h CartHandle, variantID string) (*LineItem, error)

	InsertLineItem(ctx context.Context, h CartHandle, productID, variantID string, qty int) (LineItem, error)
	UpdateLineItemQuantity(ctx context.Context, lineItemID string, qty int) error
	DeleteLineItem(ctx context.Context, lineItemID string) error
	DeleteAllLineItems(ctx context.Context, h CartHandle) error
}
