// internal/adapters/out/localstore/cart_store_sqlite_test.go
package localstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdom "agrimart/internal/domain/cart"
)

func openTestStore(t *testing.T) *SQLiteCartStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cart.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	in := []cartdom.CartItem{
		{ID: cartdom.NewLocalID(), ProductID: "p1", VariantID: "v1", Name: "Heirloom Tomato Seeds", Category: "Seeds", Price: 4.5, Quantity: 2, Stock: 10, IsLocal: true},
		{ID: cartdom.NewLocalID(), ProductID: "p2", VariantID: "v2", Name: "Compost 20L", Price: 12, Quantity: 1, Stock: 3, IsLocal: true},
	}
	require.NoError(t, s.Save(ctx, in))

	out := s.Load(ctx)
	assert.Equal(t, in, out)
}

func TestLoadEmptyStore(t *testing.T) {
	s := openTestStore(t)
	out := s.Load(context.Background())
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestSaveOverwritesPreviousValue(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Save(ctx, []cartdom.CartItem{
		{ID: "a", ProductID: "p1", VariantID: "v1", Quantity: 2, Stock: 5},
	}))
	require.NoError(t, s.Save(ctx, []cartdom.CartItem{
		{ID: "b", ProductID: "p2", VariantID: "v2", Quantity: 1, Stock: 5},
	}))

	out := s.Load(ctx)
	require.Len(t, out, 1)
	assert.Equal(t, "v2", out[0].VariantID)
}

func TestLoadDiscardsCorruptValue(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO kv (k, v, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`,
		cartKey, `{"not":"a list"`)
	require.NoError(t, err)

	assert.Empty(t, s.Load(ctx))

	// the corrupt row must be gone, not just skipped
	var n int
	require.NoError(t, s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM kv WHERE k = ?`, cartKey).Scan(&n))
	assert.Zero(t, n)
}

func TestLoadNormalizesStoredDuplicates(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	// two rows for the same variant can only come from a tampered or
	// stale payload; loading folds them into one clamped line
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO kv (k, v, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)`,
		cartKey, `[
			{"id":"a","productId":"p1","variantId":"v1","quantity":2,"stock":5},
			{"id":"b","productId":"p1","variantId":"v1","quantity":4,"stock":5}
		]`)
	require.NoError(t, err)

	out := s.Load(ctx)
	require.Len(t, out, 1)
	assert.Equal(t, 5, out[0].Quantity)
}

func TestClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Save(ctx, []cartdom.CartItem{
		{ID: "a", ProductID: "p1", VariantID: "v1", Quantity: 1, Stock: 5},
	}))
	require.NoError(t, s.Clear(ctx))
	assert.Empty(t, s.Load(ctx))

	require.NoError(t, s.Clear(ctx), "clearing an empty store succeeds")
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("   ")
	assert.Error(t, err)
}
