// internal/domain/cart/entity_test.go
package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampQty(t *testing.T) {
	assert.Equal(t, 5, ClampQty(6, 5), "qty above stock clamps to stock")
	assert.Equal(t, 3, ClampQty(3, 5))
	assert.Equal(t, 1, ClampQty(0, 5), "qty below 1 clamps to 1")
	assert.Equal(t, DefaultMaxStock, ClampQty(500, 0), "unknown stock defaults to 99")
	assert.Equal(t, DefaultMaxStock, ClampQty(500, -3))
}

func TestEffectiveStock(t *testing.T) {
	assert.Equal(t, DefaultMaxStock, EffectiveStock(0))
	assert.Equal(t, DefaultMaxStock, EffectiveStock(-1))
	assert.Equal(t, 7, EffectiveStock(7))
}

func TestLocalIDs(t *testing.T) {
	id := NewLocalID()
	assert.True(t, IsLocalID(id))
	assert.False(t, IsLocalID("a2b4c6d8"))
	assert.False(t, IsLocalID(""))

	other := NewLocalID()
	assert.NotEqual(t, id, other)
}

func TestFindByVariantID(t *testing.T) {
	items := []CartItem{
		{ID: "1", ProductID: "p1", VariantID: "v1", Quantity: 1},
		{ID: "2", ProductID: "p2", VariantID: "v2", Quantity: 2},
	}
	assert.Equal(t, 1, FindByVariantID(items, "v2"))
	assert.Equal(t, -1, FindByVariantID(items, "v9"))
	assert.Equal(t, 0, FindByVariantID(items, " v1 "), "lookup trims input")
}

func TestRemoveIndexPreservesOrder(t *testing.T) {
	items := []CartItem{
		{ID: "1", VariantID: "v1", Quantity: 1},
		{ID: "2", VariantID: "v2", Quantity: 1},
		{ID: "3", VariantID: "v3", Quantity: 1},
	}
	out := RemoveIndex(items, 1)
	require.Len(t, out, 2)
	assert.Equal(t, "1", out[0].ID)
	assert.Equal(t, "3", out[1].ID)

	same := RemoveIndex(out, 5)
	assert.Len(t, same, 2, "out-of-range index is a no-op")
}

func TestCountAndTotal(t *testing.T) {
	items := []CartItem{
		{VariantID: "v1", Price: 100, Quantity: 2},
		{VariantID: "v2", Price: 50, Quantity: 1},
	}
	assert.Equal(t, 3, Count(items))
	assert.InDelta(t, 250.0, Total(items), 1e-9)

	assert.Equal(t, 0, Count(nil))
	assert.InDelta(t, 0.0, Total(nil), 1e-9)
}

func TestNormalizeMergesDuplicates(t *testing.T) {
	items := []CartItem{
		{ID: "1", ProductID: "p1", VariantID: "v1", Quantity: 2, Stock: 5},
		{ID: "2", ProductID: "p1", VariantID: "v1", Quantity: 4, Stock: 5},
		{ID: "3", ProductID: "p2", VariantID: "v2", Quantity: 1},
	}
	out := Normalize(items)
	require.Len(t, out, 2)
	assert.Equal(t, "v1", out[0].VariantID)
	assert.Equal(t, 5, out[0].Quantity, "duplicate quantities add up, clamped by stock")
	assert.Equal(t, "v2", out[1].VariantID)
}

func TestNormalizeDropsUnusableEntries(t *testing.T) {
	items := []CartItem{
		{ID: "1", ProductID: "p1", VariantID: "", Quantity: 2},
		{ID: "2", ProductID: "", VariantID: "v2", Quantity: 2},
		{ID: "3", ProductID: "p3", VariantID: "v3", Quantity: 0},
		{ID: "4", ProductID: "p4", VariantID: "v4", Quantity: 1},
	}
	out := Normalize(items)
	require.Len(t, out, 1)
	assert.Equal(t, "v4", out[0].VariantID)
}

func TestValidate(t *testing.T) {
	ok := CartItem{ProductID: "p1", VariantID: "v1", Quantity: 1}
	assert.NoError(t, ok.Validate())

	assert.ErrorIs(t, CartItem{VariantID: "v1", Quantity: 1}.Validate(), ErrInvalidItem)
	assert.ErrorIs(t, CartItem{ProductID: "p1", Quantity: 1}.Validate(), ErrInvalidItem)
	assert.ErrorIs(t, CartItem{ProductID: "p1", VariantID: "v1"}.Validate(), ErrInvalidItem)
}
