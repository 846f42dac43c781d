package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/totegamma/liveboard"
	"github.com/totegamma/liveboard/internal/domain"
)

var tracer = otel.Tracer("auth")

// TokenStore tracks revoked token IDs.
type TokenStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthService struct {
	secret []byte
	expiry time.Duration
	store  TokenStore
}

func NewAuthService(secret string, expiry time.Duration, store TokenStore) *AuthService {
	return &AuthService{
		secret: []byte(secret),
		expiry: expiry,
		store:  store,
	}
}

type AuthResult struct {
	UserID   string
	Username string
}

type tokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Issue mints a bearer token for the authenticated user.
func (s *AuthService) Issue(user liveboard.User) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate checks signature, expiry and revocation, and resolves the
// authenticated principal.
func (s *AuthService) Validate(ctx context.Context, token string) (*AuthResult, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.Validate")
	defer span.End()

	var claims tokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		span.RecordError(errors.Wrap(err, "jwt validation failed"))
		return nil, domain.AuthenticationError{Message: "Token is not valid"}
	}

	if s.store != nil && claims.ID != "" {
		revoked, err := s.store.IsRevoked(ctx, claims.ID)
		if err != nil {
			span.RecordError(errors.Wrap(err, "revocation lookup failed"))
			return nil, err
		}
		if revoked {
			return nil, domain.AuthenticationError{Message: "Token is not valid"}
		}
	}

	return &AuthResult{
		UserID:   claims.Subject,
		Username: claims.Username,
	}, nil
}

// Revoke invalidates the presented token until its natural expiry.
func (s *AuthService) Revoke(ctx context.Context, token string) error {
	ctx, span := tracer.Start(ctx, "Auth.Service.Revoke")
	defer span.End()

	var claims tokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return domain.AuthenticationError{Message: "Token is not valid"}
	}

	if s.store == nil || claims.ID == "" {
		return nil
	}

	until := time.Now().Add(s.expiry)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	return s.store.Revoke(ctx, claims.ID, until)
}
