// internal/application/usecase/cart_session_registry.go
package usecase

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"time"

	cartdom "agrimart/internal/domain/cart"
	"agrimart/internal/domain/identity"
)

var (
	ErrInvalidDeviceID = errors.New("cart_session_registry: invalid device id")
)

// deviceIDPattern keeps device ids filesystem- and key-safe (they name
// per-device local stores).
var deviceIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,128}$`)

// LocalStoreOpener opens the device-scoped local cart store for deviceID.
type LocalStoreOpener func(deviceID string) (cartdom.LocalStore, error)

// CartSessionRegistry holds exactly one reconciliation engine (and its
// facade) per device session. The device id is the stable key across the
// guest -> authenticated transition, which is what lets the same engine
// observe the login and run the merge procedure.
//
// This is the server-side rendition of the storefront's single long-lived
// cart provider: one engine per running client, created lazily, torn down
// with the process.
type CartSessionRegistry struct {
	mu sync.Mutex

	openLocal LocalStoreOpener
	remote    cartdom.RemoteStore
	notifier  Notifier
	timeout   time.Duration

	sessions map[string]*CartFacade
}

func NewCartSessionRegistry(openLocal LocalStoreOpener, remote cartdom.RemoteStore, notifier Notifier) *CartSessionRegistry {
	return NewCartSessionRegistryWithTimeout(openLocal, remote, notifier, DefaultRemoteTimeout)
}

func NewCartSessionRegistryWithTimeout(openLocal LocalStoreOpener, remote cartdom.RemoteStore, notifier Notifier, timeout time.Duration) *CartSessionRegistry {
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}
	return &CartSessionRegistry{
		openLocal: openLocal,
		remote:    remote,
		notifier:  notifier,
		timeout:   timeout,
		sessions:  map[string]*CartFacade{},
	}
}

// Resolve returns the facade for deviceID, creating engine and facade on
// first sight, and re-initializes the engine when the reported identity
// differs from the engine's current session (login, logout).
func (r *CartSessionRegistry) Resolve(ctx context.Context, deviceID string, s identity.Session) (*CartFacade, error) {
	if r == nil || r.openLocal == nil || r.remote == nil {
		return nil, errors.New("cart_session_registry: registry is not configured")
	}
	if !deviceIDPattern.MatchString(deviceID) {
		return nil, ErrInvalidDeviceID
	}
	if s == nil {
		s = identity.Guest{}
	}

	r.mu.Lock()
	f, ok := r.sessions[deviceID]
	if !ok {
		local, err := r.openLocal(deviceID)
		if err != nil {
			r.mu.Unlock()
			return nil, err
		}
		engine := NewCartUsecaseWithTimeout(local, r.remote, r.timeout)
		f = NewCartFacade(engine, r.notifier)
		r.sessions[deviceID] = f
	}
	r.mu.Unlock()

	// Re-initialize outside the registry lock: session loads may hit the
	// network and must not serialize unrelated devices.
	if !ok || !identity.Equal(f.engine.Session(), s) {
		f.SetSession(ctx, s)
	}

	return f, nil
}

// Len reports the number of live device sessions (metrics, tests).
func (r *CartSessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
