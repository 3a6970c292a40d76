package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// queryInt parses a bounded positive integer query parameter.
func queryInt(c echo.Context, name string, fallback, max int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || (max > 0 && n > max) {
		return fallback
	}
	return n
}
