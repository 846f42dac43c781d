package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/liveboard/internal/domain"
	"github.com/totegamma/liveboard/internal/present/rest/presenter"
	"github.com/totegamma/liveboard/internal/service"
)

var tracer = otel.Tracer("auth")

type AuthMiddleware struct {
	auth *service.AuthService
}

func NewAuthMiddleware(auth *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// RequireAuth rejects requests without a valid bearer credential and puts
// the authenticated principal into the request context.
func (s *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.RequireAuth")
		defer span.End()

		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return presenter.Unauthorized(c, "No token, authorization denied")
		}

		split := strings.Split(authHeader, " ")
		if len(split) != 2 || split[0] != "Bearer" {
			return presenter.Unauthorized(c, "No token, authorization denied")
		}

		result, err := s.auth.Validate(ctx, split[1])
		if err != nil {
			span.RecordError(err)
			return presenter.Unauthorized(c, "Token is not valid")
		}

		ctx = context.WithValue(ctx, domain.RequesterIdCtxKey, result.UserID)
		ctx = context.WithValue(ctx, domain.RequesterNameCtxKey, result.Username)
		span.SetAttributes(attribute.String("RequesterId", result.UserID))

		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
