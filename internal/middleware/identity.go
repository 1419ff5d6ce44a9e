package middleware

// identity.go holds the context keys JWTAuth fills and the accessors
// handlers use to read them back.

import (
	"github.com/labstack/echo/v4"

	"github.com/StoryBuilderAi/storybuilder/internal/model"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// UserID returns the authenticated user's ID. ok is false for anonymous
// requests.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ctxUserID).(uint64)
	return id, ok && id != 0
}

// Role returns the authenticated user's role, or "" for anonymous requests.
func Role(c echo.Context) string {
	r, _ := c.Get(ctxRole).(string)
	return r
}

// IsAdmin reports whether the caller holds the admin role.
func IsAdmin(c echo.Context) bool { return Role(c) == model.RoleAdmin }

// CanAccess reports whether the caller may act on a record owned by
// ownerID: admins always, users only on their own records.
func CanAccess(c echo.Context, ownerID uint64) bool {
	if IsAdmin(c) {
		return true
	}
	id, ok := UserID(c)
	return ok && id == ownerID
}
