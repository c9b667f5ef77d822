package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pv-site-manager/internal/model"
	"github.com/iliyamo/pv-site-manager/internal/security"
)

// TokenVerifier resolves a raw bearer token to the identity it was issued
// for.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (model.Identity, error)
}

// JWTAuth rejects requests without a valid Bearer access token and stores
// the resolved identity in the context under identityKey. Every failure
// answers 401 with a WWW-Authenticate challenge; the body never says which
// check failed.
func JWTAuth(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			scheme, raw, ok := strings.Cut(auth, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
				return unauthorized(c)
			}

			id, err := verifier.Verify(c.Request().Context(), strings.TrimSpace(raw))
			if err != nil {
				if isTokenError(err) {
					return unauthorized(c)
				}
				return err
			}
			c.Set(identityKey, id)
			return next(c)
		}
	}
}

func isTokenError(err error) bool {
	return errors.Is(err, security.ErrExpired) ||
		errors.Is(err, security.ErrInvalidSignature) ||
		errors.Is(err, security.ErrMalformedClaims)
}

func unauthorized(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "could not validate credentials"})
}
