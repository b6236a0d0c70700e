package handler // handler defines http handlers

import (
	"errors"  // sentinel values used in getUserID
	"strconv" // string-to-number conversion

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/iliyamo/property-listing/internal/session"
)

// getUserID extracts the user_id from echo.Context and converts it to
// uint64. JWT numeric claims decode as float64; other middleware may store
// the id as a native integer or string, so all are accepted.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// currentIdentity resolves the request's session identity from the claims
// the JWT middleware stored in context. Listing ownership compares against
// the decimal form of the account id.
func currentIdentity(c echo.Context) (session.Identity, error) {
	uid, err := getUserID(c)
	if err != nil {
		return session.Identity{}, err
	}
	email, _ := c.Get("email").(string)
	return session.Identity{ID: strconv.FormatUint(uid, 10), Email: email}, nil
}
