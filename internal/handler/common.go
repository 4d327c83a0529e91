package handler

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
)

// errNoUser is returned by getUserID when the context carries no usable
// user identity.  Handlers translate it into a 401 response.
var errNoUser = errors.New("no user id in context")

// getUserID extracts the authenticated user's ID from the echo context.
// The JWT middleware stores the "sub" claim under the "user_id" key;
// depending on how the token was produced the claim may arrive as a
// float64 (JSON number), a string or an integer, so all three are
// accepted here.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch id := v.(type) {
	case float64:
		if id <= 0 {
			return 0, errNoUser
		}
		return uint64(id), nil
	case string:
		n, err := strconv.ParseUint(id, 10, 64)
		if err != nil || n == 0 {
			return 0, errNoUser
		}
		return n, nil
	case uint64:
		if id == 0 {
			return 0, errNoUser
		}
		return id, nil
	case int64:
		if id <= 0 {
			return 0, errNoUser
		}
		return uint64(id), nil
	}
	return 0, errNoUser
}
