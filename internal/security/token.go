package security

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/pv-site-manager/internal/model"
)

var (
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrExpired          = errors.New("token expired")
	ErrMalformedClaims  = errors.New("malformed token claims")
)

// IdentityResolver loads the identity a token subject refers to. It must
// return model.ErrIdentityNotFound for unknown usernames.
type IdentityResolver interface {
	GetByUsername(ctx context.Context, username string) (model.Identity, error)
}

// Token is a signed access token and the instant it stops being valid.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// TokenService issues and verifies HS256 access tokens whose subject is
// the identity's username. Tokens are stateless: there is no revocation.
type TokenService struct {
	secret   []byte
	ttl      time.Duration
	resolver IdentityResolver
	now      func() time.Time
}

func NewTokenService(secret string, ttl time.Duration, resolver IdentityResolver) *TokenService {
	return &TokenService{
		secret:   []byte(secret),
		ttl:      ttl,
		resolver: resolver,
		now:      time.Now,
	}
}

// WithClock returns a copy of s that reads time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	cp := *s
	cp.now = now
	return &cp
}

// Issue signs a token for username valid for the configured TTL.
func (s *TokenService) Issue(username string) (Token, error) {
	now := s.now().UTC()
	exp := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign jwt: %w", err)
	}
	return Token{Value: signed, ExpiresAt: exp}, nil
}

// Verify checks the signature and expiry of raw and resolves its subject.
// Unknown subjects are reported as ErrMalformedClaims; other resolver
// failures are returned unchanged.
func (s *TokenService) Verify(ctx context.Context, raw string) (model.Identity, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return model.Identity{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return model.Identity{}, ErrInvalidSignature
		default:
			return model.Identity{}, ErrMalformedClaims
		}
	}

	sub := strings.TrimSpace(claims.Subject)
	if sub == "" {
		return model.Identity{}, ErrMalformedClaims
	}

	id, err := s.resolver.GetByUsername(ctx, sub)
	if err != nil {
		if errors.Is(err, model.ErrIdentityNotFound) {
			return model.Identity{}, ErrMalformedClaims
		}
		return model.Identity{}, fmt.Errorf("resolve subject: %w", err)
	}
	return id, nil
}
