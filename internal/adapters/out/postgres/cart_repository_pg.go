// internal/adapters/out/postgres/cart_repository_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	cartdom "agrimart/internal/domain/cart"
	catalogdom "agrimart/internal/domain/catalog"
)

// CartRepositoryPG implements cart.RemoteStore on Postgres.
//
// Table design:
//
//	carts      (id, user_id, status, created_at, updated_at)
//	           one 'active' row per user_id (partial unique index)
//	cart_items (id, cart_id, product_id, variant_id, quantity, created_at)
//	           one row per (cart_id, variant_id)
//
// Line items are raw references; ListItems hydrates them with catalog
// data (Firestore-backed Reader) into display-ready CartItems.
type CartRepositoryPG struct {
	DB      *sql.DB
	Catalog catalogdom.Reader
	Images  catalogdom.ImageResolver
}

func NewCartRepositoryPG(db *sql.DB, reader catalogdom.Reader, images catalogdom.ImageResolver) *CartRepositoryPG {
	return &CartRepositoryPG{DB: db, Catalog: reader, Images: images}
}

// remoteErr folds any backend failure into the single error class the
// reconciliation engine handles (fallback / rejected operation).
func remoteErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", cartdom.ErrRemoteUnavailable, op, err)
}

// ========================
// cart.RemoteStore impl
// ========================

// GetOrCreateActiveCart looks up the user's single active cart and lazily
// creates it. The insert tolerates a concurrent create (ON CONFLICT DO
// NOTHING + re-select), so repeated calls never produce duplicates.
func (r *CartRepositoryPG) GetOrCreateActiveCart(ctx context.Context, userID string) (cartdom.CartHandle, error) {
	if r == nil || r.DB == nil {
		return cartdom.CartHandle{}, remoteErr("GetOrCreateActiveCart", errors.New("db is nil"))
	}

	uid := strings.TrimSpace(userID)
	if uid == "" {
		return cartdom.CartHandle{}, errors.New("cart_repository_pg: userID is empty")
	}

	const sel = `
SELECT id FROM carts
WHERE user_id = $1 AND status = 'active'
LIMIT 1`

	var id string
	err := r.DB.QueryRowContext(ctx, sel, uid).Scan(&id)
	if err == nil {
		return cartdom.CartHandle{ID: id, UserID: uid}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return cartdom.CartHandle{}, remoteErr("GetOrCreateActiveCart", err)
	}

	newID := uuid.NewString()
	const ins = `
INSERT INTO carts (id, user_id, status, created_at, updated_at)
VALUES ($1, $2, 'active', NOW(), NOW())
ON CONFLICT (user_id) WHERE status = 'active' DO NOTHING`
	if _, err := r.DB.ExecContext(ctx, ins, newID, uid); err != nil {
		return cartdom.CartHandle{}, remoteErr("GetOrCreateActiveCart", err)
	}

	// Re-select: either our row or a concurrently created one.
	if err := r.DB.QueryRowContext(ctx, sel, uid).Scan(&id); err != nil {
		return cartdom.CartHandle{}, remoteErr("GetOrCreateActiveCart", err)
	}
	return cartdom.CartHandle{ID: id, UserID: uid}, nil
}

// ListItems fetches the cart's rows and hydrates them into display-ready
// CartItems. Rows whose product/variant no longer resolve keep their ids
// and quantity but get fallback display values (placeholder image,
// default category, zero price) rather than being dropped.
func (r *CartRepositoryPG) ListItems(ctx context.Context, h cartdom.CartHandle) ([]cartdom.CartItem, error) {
	if r == nil || r.DB == nil {
		return nil, remoteErr("ListItems", errors.New("db is nil"))
	}

	cid := strings.TrimSpace(h.ID)
	if cid == "" {
		return nil, errors.New("cart_repository_pg: cart handle id is empty")
	}

	const q = `
SELECT id, product_id, variant_id, quantity
FROM cart_items
WHERE cart_id = $1
ORDER BY created_at ASC, id ASC`

	rows, err := r.DB.QueryContext(ctx, q, cid)
	if err != nil {
		return nil, remoteErr("ListItems", err)
	}
	defer rows.Close()

	lines := make([]cartdom.LineItem, 0, 8)
	for rows.Next() {
		var li cartdom.LineItem
		if err := rows.Scan(&li.ID, &li.ProductID, &li.VariantID, &li.Quantity); err != nil {
			return nil, remoteErr("ListItems", err)
		}
		li.CartID = cid
		lines = append(lines, li)
	}
	if err := rows.Err(); err != nil {
		return nil, remoteErr("ListItems", err)
	}

	return r.hydrate(ctx, lines)
}

func (r *CartRepositoryPG) hydrate(ctx context.Context, lines []cartdom.LineItem) ([]cartdom.CartItem, error) {
	out := make([]cartdom.CartItem, 0, len(lines))
	if len(lines) == 0 {
		return out, nil
	}

	productIDs := make([]string, 0, len(lines))
	variantIDs := make([]string, 0, len(lines))
	seenP := map[string]struct{}{}
	seenV := map[string]struct{}{}
	for _, li := range lines {
		if _, ok := seenP[li.ProductID]; !ok {
			seenP[li.ProductID] = struct{}{}
			productIDs = append(productIDs, li.ProductID)
		}
		if _, ok := seenV[li.VariantID]; !ok {
			seenV[li.VariantID] = struct{}{}
			variantIDs = append(variantIDs, li.VariantID)
		}
	}

	// Catalog lookups are best-effort: an unreachable catalog must not
	// turn a loadable cart into an error, so indices degrade to empty.
	var productIdx map[string]catalogdom.Product
	var variantIdx map[string]catalogdom.Variant
	if r.Catalog != nil {
		productIdx, _ = r.Catalog.ProductIndex(ctx, productIDs)
		variantIdx, _ = r.Catalog.VariantIndex(ctx, variantIDs)
	}

	for _, li := range lines {
		it := cartdom.CartItem{
			ID:        li.ID,
			ProductID: li.ProductID,
			VariantID: li.VariantID,
			Quantity:  li.Quantity,
			Category:  catalogdom.FallbackCategory,
			Image:     r.resolveImage(""),
		}

		if p, ok := productIdx[li.ProductID]; ok {
			if s := strings.TrimSpace(p.Name); s != "" {
				it.Name = s
			}
			if s := strings.TrimSpace(p.CollectionTitle); s != "" {
				it.Category = s
			}
		}
		if v, ok := variantIdx[li.VariantID]; ok {
			it.Price = v.Price
			it.Stock = v.Stock
			it.Image = r.resolveImage(v.ImageID)
			if it.Name == "" {
				it.Name = strings.TrimSpace(v.Title)
			}
		}

		out = append(out, it)
	}
	return out, nil
}

func (r *CartRepositoryPG) resolveImage(imageID string) string {
	if r.Images == nil {
		return ""
	}
	return r.Images.ResolveURL(imageID)
}

// FindLineItem returns (nil, nil) when no row matches (nil policy).
func (r *CartRepositoryPG) FindLineItem(ctx context.Context, h cartdom.CartHandle, variantID string) (*cartdom.LineItem, error) {
	if r == nil || r.DB == nil {
		return nil, remoteErr("FindLineItem", errors.New("db is nil"))
	}

	cid := strings.TrimSpace(h.ID)
	vid := strings.TrimSpace(variantID)
	if cid == "" || vid == "" {
		return nil, errors.New("cart_repository_pg: cart id and variantID are required")
	}

	const q = `
SELECT id, cart_id, product_id, variant_id, quantity
FROM cart_items
WHERE cart_id = $1 AND variant_id = $2
LIMIT 1`

	var li cartdom.LineItem
	err := r.DB.QueryRowContext(ctx, q, cid, vid).Scan(&li.ID, &li.CartID, &li.ProductID, &li.VariantID, &li.Quantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, remoteErr("FindLineItem", err)
	}
	return &li, nil
}

func (r *CartRepositoryPG) InsertLineItem(ctx context.Context, h cartdom.CartHandle, productID, variantID string, qty int) (cartdom.LineItem, error) {
	if r == nil || r.DB == nil {
		return cartdom.LineItem{}, remoteErr("InsertLineItem", errors.New("db is nil"))
	}

	cid := strings.TrimSpace(h.ID)
	pid := strings.TrimSpace(productID)
	vid := strings.TrimSpace(variantID)
	if cid == "" || pid == "" || vid == "" || qty < 1 {
		return cartdom.LineItem{}, errors.New("cart_repository_pg: invalid line item input")
	}

	li := cartdom.LineItem{
		ID:        uuid.NewString(),
		CartID:    cid,
		ProductID: pid,
		VariantID: vid,
		Quantity:  qty,
	}

	const q = `
INSERT INTO cart_items (id, cart_id, product_id, variant_id, quantity, created_at)
VALUES ($1, $2, $3, $4, $5, NOW())`
	if _, err := r.DB.ExecContext(ctx, q, li.ID, li.CartID, li.ProductID, li.VariantID, li.Quantity); err != nil {
		return cartdom.LineItem{}, remoteErr("InsertLineItem", err)
	}
	return li, nil
}

func (r *CartRepositoryPG) UpdateLineItemQuantity(ctx context.Context, lineItemID string, qty int) error {
	if r == nil || r.DB == nil {
		return remoteErr("UpdateLineItemQuantity", errors.New("db is nil"))
	}

	id := strings.TrimSpace(lineItemID)
	if id == "" || qty < 1 {
		return errors.New("cart_repository_pg: invalid update input")
	}

	const q = `UPDATE cart_items SET quantity = $2 WHERE id = $1`
	if _, err := r.DB.ExecContext(ctx, q, id, qty); err != nil {
		return remoteErr("UpdateLineItemQuantity", err)
	}
	return nil
}

// DeleteLineItem removes a row by id. Deleting an absent row succeeds.
func (r *CartRepositoryPG) DeleteLineItem(ctx context.Context, lineItemID string) error {
	if r == nil || r.DB == nil {
		return remoteErr("DeleteLineItem", errors.New("db is nil"))
	}

	id := strings.TrimSpace(lineItemID)
	if id == "" {
		return errors.New("cart_repository_pg: lineItemID is empty")
	}

	const q = `DELETE FROM cart_items WHERE id = $1`
	if _, err := r.DB.ExecContext(ctx, q, id); err != nil {
		return remoteErr("DeleteLineItem", err)
	}
	return nil
}

func (r *CartRepositoryPG) DeleteAllLineItems(ctx context.Context, h cartdom.CartHandle) error {
	if r == nil || r.DB == nil {
		return remoteErr("DeleteAllLineItems", errors.New("db is nil"))
	}

	cid := strings.TrimSpace(h.ID)
	if cid == "" {
		return errors.New("cart_repository_pg: cart handle id is empty")
	}

	const q = `DELETE FROM cart_items WHERE cart_id = $1`
	if _, err := r.DB.ExecContext(ctx, q, cid); err != nil {
		return remoteErr("DeleteAllLineItems", err)
	}
	return nil
}

var _ cartdom.RemoteStore = (*CartRepositoryPG)(nil)
