package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// getUserID extracts the authenticated user's id from the echo context,
// tolerating the numeric representations the JWT layer may produce.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int64:
		if t > 0 {
			return uint64(t), nil
		}
	case float64:
		if t > 0 {
			return uint64(t), nil
		}
	case string:
		s := strings.TrimSpace(t)
		if s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err == nil {
				return n, nil
			}
		}
	}
	return 0, errors.New("missing user id")
}
