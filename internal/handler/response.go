package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"translation-agent/backend/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

type deletedCountResponse struct {
	Deleted int64 `json:"deleted"`
}

func writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalid):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: "resource not found"})
	case errors.Is(err, service.ErrNotConfigured):
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrProvider):
		return c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
	default:
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// Error returns a JSON error response with the given status and message
func Error(c echo.Context, status int, message string) error {
	return c.JSON(status, errorResponse{Error: message})
}
