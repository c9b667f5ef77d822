package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pv-site-manager/internal/model"
)

const identityKey = "identity"

// Identity returns the caller resolved by JWTAuth. ok is false on routes
// that are not behind JWTAuth.
func Identity(c echo.Context) (model.Identity, bool) {
	id, ok := c.Get(identityKey).(model.Identity)
	return id, ok
}

// SetIdentity stores id as the authenticated caller.
func SetIdentity(c echo.Context, id model.Identity) {
	c.Set(identityKey, id)
}

// username is the rate limit and log key for the caller, or "guest".
func username(c echo.Context) string {
	if id, ok := Identity(c); ok && id.Username != "" {
		return id.Username
	}
	return "guest"
}
