// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrInvalidItem = errors.New("cart: invalid item")

	// ErrRemoteUnavailable wraps every failure reaching the remote cart store
	// (network, auth expiry, server error). Callers fall back to the local
	// store or report the operation as rejected; they never surface it raw.
	ErrRemoteUnavailable = errors.New("cart: remote store unavailable")
)

// DefaultMaxStock caps quantity when the variant's stock is unknown.
const DefaultMaxStock = 99

// LocalIDPrefix marks item ids generated on-device for guest sessions.
// The prefix is load-bearing: mutation paths use it to decide whether an
// item lives only in the local store or is backed by a remote line item.
const LocalIDPrefix = "local-"

// CartItem is one display-ready line of the cart.
// Name/Image/Category/Price/Stock are snapshotted at add time from the
// catalog; they are not re-derived on every read.
type CartItem struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	VariantID string  `json:"variantId"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Stock     int     `json:"stock"`
	IsLocal   bool    `json:"isLocal,omitempty"`
}

// NewLocalID returns a fresh id for a guest-created item.
func NewLocalID() string {
	return LocalIDPrefix + uuid.NewString()
}

// IsLocalID reports whether id was generated by NewLocalID.
func IsLocalID(id string) bool {
	return strings.HasPrefix(strings.TrimSpace(id), LocalIDPrefix)
}

// MaxQty returns the effective stock ceiling for the item.
func (it CartItem) MaxQty() int {
	return EffectiveStock(it.Stock)
}

// EffectiveStock normalizes a stock snapshot (<= 0 means unknown).
func EffectiveStock(stock int) int {
	if stock <= 0 {
		return DefaultMaxStock
	}
	return stock
}

// ClampQty clamps qty into [1, EffectiveStock(stock)].
// Callers must handle qty < 1 (removal) before clamping.
func ClampQty(qty, stock int) int {
	max := EffectiveStock(stock)
	if qty > max {
		return max
	}
	if qty < 1 {
		return 1
	}
	return qty
}

// Validate checks the fields a CartItem cannot live without.
func (it CartItem) Validate() error {
	if strings.TrimSpace(it.ProductID) == "" || strings.TrimSpace(it.VariantID) == "" {
		return ErrInvalidItem
	}
	if it.Quantity < 1 {
		return ErrInvalidItem
	}
	return nil
}

// ----------------------------
// List helpers
// ----------------------------

// FindByVariantID returns the index of the item with variantID, or -1.
// Uniqueness per variantId is the core cart invariant; every add path
// goes through this lookup before appending.
func FindByVariantID(items []CartItem, variantID string) int {
	vid := strings.TrimSpace(variantID)
	for i := range items {
		if items[i].VariantID == vid {
			return i
		}
	}
	return -1
}

// FindByID returns the index of the item with id, or -1.
func FindByID(items []CartItem, id string) int {
	iid := strings.TrimSpace(id)
	for i := range items {
		if items[i].ID == iid {
			return i
		}
	}
	return -1
}

func RemoveIndex(items []CartItem, idx int) []CartItem {
	if idx < 0 || idx >= len(items) {
		return items
	}
	// preserve order
	return append(items[:idx], items[idx+1:]...)
}

// CloneItems copies a list so callers can hand out read-only views.
func CloneItems(src []CartItem) []CartItem {
	if len(src) == 0 {
		return []CartItem{}
	}
	cp := make([]CartItem, len(src))
	copy(cp, src)
	return cp
}

// Count sums quantities over items.
func Count(items []CartItem) int {
	n := 0
	for i := range items {
		n += items[i].Quantity
	}
	return n
}

// Total sums price*quantity over items.
func Total(items []CartItem) float64 {
	t := 0.0
	for i := range items {
		t += items[i].Price * float64(items[i].Quantity)
	}
	return t
}

// Normalize drops unusable entries and merges duplicate variantIds
// (quantities added, first snapshot wins, result clamped). Used when
// loading from storage whose contents we do not fully trust.
func Normalize(src []CartItem) []CartItem {
	out := make([]CartItem, 0, len(src))
	for _, it := range src {
		it.VariantID = strings.TrimSpace(it.VariantID)
		it.ProductID = strings.TrimSpace(it.ProductID)
		if it.VariantID == "" || it.ProductID == "" || it.Quantity < 1 {
			continue
		}
		idx := FindByVariantID(out, it.VariantID)
		if idx >= 0 {
			out[idx].Quantity = ClampQty(out[idx].Quantity+it.Quantity, out[idx].Stock)
			continue
		}
		it.Quantity = ClampQty(it.Quantity, it.Stock)
		out = append(out, it)
	}
	return out
}
