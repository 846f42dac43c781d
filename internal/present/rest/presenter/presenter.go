package presenter

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/totegamma/liveboard/internal/domain"
)

type messageResponse struct {
	Message string `json:"message"`
}

// OK wraps a successful response.
func OK(c echo.Context, payload any) error {
	return c.JSON(http.StatusOK, payload)
}

func Created(c echo.Context, payload any) error {
	return c.JSON(http.StatusCreated, payload)
}

func BadRequestMessage(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, messageResponse{Message: msg})
}

func Unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, messageResponse{Message: msg})
}

// FromError maps the domain error taxonomy to HTTP statuses. Storage
// failures are logged and reduced to a generic message.
func FromError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return c.JSON(http.StatusBadRequest, messageResponse{Message: err.Error()})
	case errors.Is(err, domain.ErrAuthentication):
		return c.JSON(http.StatusUnauthorized, messageResponse{Message: err.Error()})
	case errors.Is(err, domain.ErrAuthorization):
		return c.JSON(http.StatusForbidden, messageResponse{Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, messageResponse{Message: err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusGatewayTimeout, messageResponse{Message: "Request timed out"})
	default:
		slog.Error(
			"Internal error",
			slog.String("error", err.Error()),
			slog.String("path", c.Request().URL.Path),
			slog.String("module", "rest"),
		)
		return c.JSON(http.StatusInternalServerError, messageResponse{Message: "Server error"})
	}
}
