// internal/adapters/in/http/storefront/router.go
package storefront

import (
	"log"
	"net/http"
)

// Deps is the buyer-facing (storefront) handler set.
type Deps struct {
	Cart http.Handler
}

// handleSafe registers pattern with h.
// If h is nil, it logs and registers NotFoundHandler instead (so the
// service still boots with a partial container).
func handleSafe(mux *http.ServeMux, pattern string, h http.Handler, name string) {
	if h == nil {
		log.Printf("[storefront.router] WARN: nil handler: %s pattern=%s (registering NotFoundHandler)", name, pattern)
		h = http.NotFoundHandler()
	}
	mux.Handle(pattern, h)
}

// Register registers storefront routes onto mux.
func Register(mux *http.ServeMux, deps Deps) {
	if mux == nil {
		return
	}

	handleSafe(mux, "/store/cart", deps.Cart, "Cart")
	handleSafe(mux, "/store/cart/", deps.Cart, "Cart")
}
