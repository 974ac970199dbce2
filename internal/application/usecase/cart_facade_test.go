// internal/application/usecase/cart_facade_test.go
package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrimart/internal/domain/identity"
)

type captureNotifier struct {
	got []Notification
}

func (c *captureNotifier) Notify(_ context.Context, n Notification) {
	c.got = append(c.got, n)
}

func newTestFacade(t *testing.T, remote *fakeRemoteStore) (*CartFacade, *captureNotifier) {
	t.Helper()
	sink := &captureNotifier{}
	f := NewCartFacade(newTestEngine(&fakeLocalStore{}, remote), sink)
	f.SetSession(context.Background(), identity.Guest{})
	return f, sink
}

func TestNewCartFacadePanicsWithoutEngine(t *testing.T) {
	assert.PanicsWithValue(t, "cart facade: reconciliation engine is not initialized", func() {
		NewCartFacade(nil, NopNotifier{})
	})
}

func TestFacadeCountAndTotal(t *testing.T) {
	ctx := context.Background()
	f, _ := newTestFacade(t, nil)

	f.AddToCart(ctx, snapshot("v1", 2, 10, 100))
	f.AddToCart(ctx, snapshot("v2", 1, 10, 50))

	assert.Equal(t, 3, f.CartCount())
	assert.InDelta(t, 250.0, f.CartTotal(), 1e-9)
	assert.Len(t, f.CartItems(), 2)
	assert.False(t, f.IsLoading())
}

func TestFacadeExactlyOneNotificationPerMutation(t *testing.T) {
	ctx := context.Background()
	f, sink := newTestFacade(t, nil)
	sink.got = nil

	f.AddToCart(ctx, snapshot("v1", 1, 5, 100))
	f.UpdateQuantity(ctx, f.CartItems()[0].ID, 3)
	f.RemoveFromCart(ctx, f.CartItems()[0].ID)
	f.ClearCart(ctx)

	require.Len(t, sink.got, 4)
	for _, n := range sink.got {
		assert.True(t, n.OK)
	}
}

func TestFacadeFailureEmitsFailureNotificationWithoutPublish(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemoteStore{}
	f, sink := newTestFacade(t, remote)
	f.SetSession(ctx, identity.User{ID: "u1"})
	f.AddToCart(ctx, snapshot("v1", 1, 5, 100))

	published := 0
	defer f.Subscribe(func() { published++ })()
	sink.got = nil

	remote.failUpdate = true
	f.UpdateQuantity(ctx, f.CartItems()[0].ID, 3)

	require.Len(t, sink.got, 1)
	assert.False(t, sink.got[0].OK)
	assert.Equal(t, "Failed to update cart", sink.got[0].Message)
	assert.Zero(t, published, "subscribers fire only when the mutation took effect")
	assert.Equal(t, 1, f.CartItems()[0].Quantity)
}

func TestFacadeSubscribeAndUnsubscribe(t *testing.T) {
	ctx := context.Background()
	f, _ := newTestFacade(t, nil)

	a, b := 0, 0
	unsubA := f.Subscribe(func() { a++ })
	unsubB := f.Subscribe(func() { b++ })
	defer unsubB()

	f.AddToCart(ctx, snapshot("v1", 1, 5, 100))
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)

	unsubA()
	f.UpdateQuantity(ctx, f.CartItems()[0].ID, 2)
	assert.Equal(t, 1, a, "unsubscribed observer stays silent")
	assert.Equal(t, 2, b)

	assert.NotPanics(t, unsubA, "unsubscribe is idempotent")
}

func TestFacadeNilSubscriberIsIgnored(t *testing.T) {
	f, _ := newTestFacade(t, nil)
	unsub := f.Subscribe(nil)
	assert.NotPanics(t, unsub)
	assert.NotPanics(t, func() { f.AddToCart(context.Background(), snapshot("v1", 1, 5, 100)) })
}

func TestFacadeDegradedSessionLoadNotifies(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemoteStore{failGetOrCreate: true}
	f, sink := newTestFacade(t, remote)

	f.AddToCart(ctx, snapshot("v1", 2, 5, 100))
	sink.got = nil

	published := 0
	defer f.Subscribe(func() { published++ })()

	f.SetSession(ctx, identity.User{ID: "u1"})

	require.Len(t, sink.got, 1)
	assert.False(t, sink.got[0].OK)
	assert.Equal(t, 1, published, "subscribers still learn about the reloaded view")
	assert.Len(t, f.CartItems(), 1, "local cache keeps serving the cart")
}
