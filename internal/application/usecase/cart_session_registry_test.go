// internal/application/usecase/cart_session_registry_test.go
package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartdom "agrimart/internal/domain/cart"
	"agrimart/internal/domain/identity"
)

func newTestRegistry(remote *fakeRemoteStore) (*CartSessionRegistry, map[string]*fakeLocalStore) {
	if remote == nil {
		remote = &fakeRemoteStore{}
	}
	locals := map[string]*fakeLocalStore{}
	open := func(deviceID string) (cartdom.LocalStore, error) {
		if _, ok := locals[deviceID]; !ok {
			locals[deviceID] = &fakeLocalStore{}
		}
		return locals[deviceID], nil
	}
	return NewCartSessionRegistry(open, remote, NopNotifier{}), locals
}

func TestRegistryReturnsSameFacadePerDevice(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry(nil)

	f1, err := r.Resolve(ctx, "device-aaaa", identity.Guest{})
	require.NoError(t, err)
	f2, err := r.Resolve(ctx, "device-aaaa", identity.Guest{})
	require.NoError(t, err)
	assert.Same(t, f1, f2)

	f3, err := r.Resolve(ctx, "device-bbbb", identity.Guest{})
	require.NoError(t, err)
	assert.NotSame(t, f1, f3)
	assert.Equal(t, 2, r.Len())
}

func TestRegistryRejectsInvalidDeviceID(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRegistry(nil)

	for _, id := range []string{"", "short", "has space id", "bad/slash-0123", "../../etc/passwd"} {
		_, err := r.Resolve(ctx, id, identity.Guest{})
		assert.ErrorIs(t, err, ErrInvalidDeviceID, "device id %q", id)
	}
	assert.Zero(t, r.Len())
}

func TestRegistryLoginTransitionRunsMerge(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemoteStore{stockByVariant: map[string]int{"v1": 5}}
	r, locals := newTestRegistry(remote)

	f, err := r.Resolve(ctx, "device-aaaa", identity.Guest{})
	require.NoError(t, err)
	f.AddToCart(ctx, snapshot("v1", 2, 5, 100))
	require.Len(t, locals["device-aaaa"].items, 1)

	// same device id arrives with a verified user: the engine observes the
	// transition and folds the guest cart into the remote one
	f2, err := r.Resolve(ctx, "device-aaaa", identity.User{ID: "u1"})
	require.NoError(t, err)
	assert.Same(t, f, f2)

	require.Len(t, remote.lines, 1)
	assert.Equal(t, 2, remote.lines[0].Quantity)
	assert.Empty(t, locals["device-aaaa"].items)
}

func TestRegistryUnchangedIdentitySkipsReload(t *testing.T) {
	ctx := context.Background()
	remote := &fakeRemoteStore{}
	r, _ := newTestRegistry(remote)

	_, err := r.Resolve(ctx, "device-aaaa", identity.User{ID: "u1"})
	require.NoError(t, err)

	// a second request with the same identity must not re-run session setup
	before := remote.insertCalls + remote.updateCalls
	f, err := r.Resolve(ctx, "device-aaaa", identity.User{ID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, before, remote.insertCalls+remote.updateCalls)

	sess := f.engine.Session()
	uid, ok := identity.UserID(sess)
	require.True(t, ok)
	assert.Equal(t, "u1", uid)
}
