// internal/adapters/in/http/middleware/session.go
package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"

	"agrimart/internal/domain/identity"
)

// FirebaseAuthClient aliases the firebase auth client so router deps can
// take *middleware.FirebaseAuthClient.
type FirebaseAuthClient = fbauth.Client

// context keys use a private type to avoid collisions (SA1029)
type ctxKey struct{ name string }

var (
	ctxKeySession  = ctxKey{name: "cartSession"}
	ctxKeyDeviceID = ctxKey{name: "deviceId"}
)

// Session resolves the caller's identity and device scope:
//
//   - Authorization: Bearer <ID_TOKEN> present and valid -> identity.User
//   - no Authorization header -> identity.Guest
//   - Authorization present but invalid -> 401 (an expired token must not
//     silently demote a signed-in user to a guest cart)
//   - X-Device-Id: required; it is the stable key of the device's cart
//     engine across the guest -> authenticated transition
type Session struct {
	FirebaseAuth *FirebaseAuthClient
}

func (m *Session) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deviceID := strings.TrimSpace(r.Header.Get("X-Device-Id"))
		if deviceID == "" {
			http.Error(w, "X-Device-Id header is required", http.StatusBadRequest)
			return
		}

		var sess identity.Session = identity.Guest{}

		authHeader := r.Header.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			if m.FirebaseAuth == nil {
				http.Error(w, "session middleware not initialized", http.StatusServiceUnavailable)
				return
			}

			idToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			if idToken == "" {
				http.Error(w, "unauthorized: empty bearer token", http.StatusUnauthorized)
				return
			}

			token, err := m.FirebaseAuth.VerifyIDToken(r.Context(), idToken)
			if err != nil {
				log.Printf("[session] token verification failed: %v", err)
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			uid := strings.TrimSpace(token.UID)
			if uid == "" {
				http.Error(w, "invalid uid in token", http.StatusUnauthorized)
				return
			}
			sess = identity.User{ID: uid}
		}

		ctx := context.WithValue(r.Context(), ctxKeySession, sess)
		ctx = context.WithValue(ctx, ctxKeyDeviceID, deviceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFromContext returns the resolved session, defaulting to Guest.
func SessionFromContext(ctx context.Context) identity.Session {
	if s, ok := ctx.Value(ctxKeySession).(identity.Session); ok && s != nil {
		return s
	}
	return identity.Guest{}
}

// DeviceIDFromContext returns the device id resolved by Session.
func DeviceIDFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(ctxKeyDeviceID).(string); ok {
		return s
	}
	return ""
}
