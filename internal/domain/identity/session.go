// internal/domain/identity/session.go
package identity

import "strings"

// Session is the two-variant identity state the cart engine branches on.
// Keeping it a closed interface (Guest | User) makes every switch over
// sessions exhaustive instead of hiding the duality in a nullable field.
type Session interface {
	isSession()
}

// Guest is the unauthenticated variant; the cart lives in the local store.
type Guest struct{}

func (Guest) isSession() {}

// User is the authenticated variant; the cart lives in the remote store.
type User struct {
	ID string
}

func (User) isSession() {}

// UserID returns the authenticated user id, or ("", false) for guests.
func UserID(s Session) (string, bool) {
	if u, ok := s.(User); ok {
		id := strings.TrimSpace(u.ID)
		if id != "" {
			return id, true
		}
	}
	return "", false
}

// Equal reports whether two sessions denote the same identity.
func Equal(a, b Session) bool {
	au, aok := UserID(a)
	bu, bok := UserID(b)
	if aok != bok {
		return false
	}
	return au == bu
}
