package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// currentUserID renders the authenticated caller's id as a string for use
// in cache and rate-limit keys.  The "sub" claim arrives as whatever the
// gateway encoded (string or JSON number), so everything is normalised
// through fmt.  Unauthenticated requests key as "anon".
func currentUserID(c echo.Context) string {
	v := c.Get("user_id")
	if v == nil {
		return "anon"
	}
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
	return "anon"
}
