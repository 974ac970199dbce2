// internal/domain/identity/session_test.go
package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserID(t *testing.T) {
	uid, ok := UserID(User{ID: "u1"})
	assert.True(t, ok)
	assert.Equal(t, "u1", uid)

	uid, ok = UserID(User{ID: "  u1  "})
	assert.True(t, ok)
	assert.Equal(t, "u1", uid, "ids are trimmed")

	_, ok = UserID(Guest{})
	assert.False(t, ok)

	_, ok = UserID(User{ID: "   "})
	assert.False(t, ok, "a blank user id is not an authenticated session")

	_, ok = UserID(nil)
	assert.False(t, ok)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Guest{}, Guest{}))
	assert.True(t, Equal(User{ID: "u1"}, User{ID: "u1"}))
	assert.False(t, Equal(User{ID: "u1"}, User{ID: "u2"}))
	assert.False(t, Equal(Guest{}, User{ID: "u1"}))
	assert.True(t, Equal(nil, Guest{}), "nil reads as guest")
	assert.True(t, Equal(User{ID: "   "}, Guest{}), "blank-id user degrades to guest")
}
