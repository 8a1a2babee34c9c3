package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"titandash/pkg/meta"
)

// UserIDKey is the echo context key the authenticated user id is
// stored under.
const UserIDKey = "userID"

// BearerAuth validates the Authorization header against a static
// token-to-user map. Rejections carry a no-data envelope so clients
// applying provenance checks fall back cleanly.
func BearerAuth(tokens map[string]string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return c.JSON(http.StatusUnauthorized, meta.NoData("missing bearer token"))
			}
			userID, ok := tokens[token]
			if !ok {
				return c.JSON(http.StatusUnauthorized, meta.NoData("invalid token"))
			}
			c.Set(UserIDKey, userID)
			return next(c)
		}
	}
}
