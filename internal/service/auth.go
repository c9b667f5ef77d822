package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/pv-site-manager/internal/model"
	"github.com/iliyamo/pv-site-manager/internal/repository"
	"github.com/iliyamo/pv-site-manager/internal/security"
)

// TokenIssuer signs access tokens for a username.
type TokenIssuer interface {
	Issue(username string) (security.Token, error)
}

// AuthService registers identities and exchanges credentials for tokens.
type AuthService struct {
	users  UserStore
	tokens TokenIssuer
	params security.Argon2Params
}

func NewAuthService(users UserStore, tokens TokenIssuer, params security.Argon2Params) *AuthService {
	return &AuthService{users: users, tokens: tokens, params: params}
}

type RegisterInput struct {
	Username string
	Password string
	Role     string
}

// Register creates an identity with the requested role and logs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (security.Token, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return security.Token{}, validationf("username and password are required")
	}
	role := model.ParseRole(in.Role)
	if role == model.RoleUnknown {
		return security.Token{}, validationf("unknown role %q", in.Role)
	}

	hash, err := security.HashPassword(in.Password, s.params)
	if err != nil {
		return security.Token{}, fmt.Errorf("hash password: %w", err)
	}
	if _, err := s.users.Create(ctx, username, hash, role); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return security.Token{}, validationf("username already registered")
		}
		return security.Token{}, fmt.Errorf("create user: %w", err)
	}
	return s.tokens.Issue(username)
}

// Login verifies username and password. Unknown users and wrong passwords
// produce the same ErrBadCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (security.Token, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return security.Token{}, validationf("username and password are required")
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, model.ErrIdentityNotFound) {
			return security.Token{}, ErrBadCredentials
		}
		return security.Token{}, fmt.Errorf("load user: %w", err)
	}
	ok, err := security.VerifyPassword(password, u.PasswordHash)
	if err != nil {
		return security.Token{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return security.Token{}, ErrBadCredentials
	}
	return s.tokens.Issue(u.Username)
}
