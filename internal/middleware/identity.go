package middleware

// identity.go provides the identity key helper shared by the cache and
// rate-limit middlewares. JWTAuth stores the subject claim under
// "user_id"; depending on the JSON decoding path it may arrive as a
// float64 or a string, so both are normalized. Unauthenticated requests
// key as "guest".

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// userKey returns a stable per-user cache/rate key component.
func userKey(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return "guest"
}
