package middleware

// identity.go holds helpers shared across the middleware files.

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// currentUserID extracts an identifier for the authenticated user from
// the context, falling back to "anon" for unauthenticated requests.
// The JWT "sub" claim decodes as a float64, so the value is normalized
// through fmt.
func currentUserID(c echo.Context) string {
	if v := c.Get("user_id"); v != nil {
		switch t := v.(type) {
		case string:
			if t != "" {
				return t
			}
		case float64:
			return fmt.Sprintf("%.0f", t)
		default:
			return fmt.Sprint(t)
		}
	}
	return "anon"
}
