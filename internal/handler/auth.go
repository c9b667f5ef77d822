package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pv-site-manager/internal/security"
	"github.com/iliyamo/pv-site-manager/internal/service"
)

// AuthHandler exposes registration, login and the caller's profile.
type AuthHandler struct {
	Auth *service.AuthService
}

func NewAuthHandler(a *service.AuthService) *AuthHandler {
	return &AuthHandler{Auth: a}
}

type registerReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"` // Operator | SiteManager | PM | Admin
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResp struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func newTokenResp(t security.Token) tokenResp {
	return tokenResp{AccessToken: t.Value, TokenType: "bearer", ExpiresAt: t.ExpiresAt}
}

// Register creates the identity and returns a token for it right away.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	tok, err := h.Auth.Register(c.Request().Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newTokenResp(tok))
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	tok, err := h.Auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newTokenResp(tok))
}

// Me returns the identity the bearer token resolved to.
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":         id.ID,
		"username":   id.Username,
		"role":       id.Role,
		"created_at": id.CreatedAt,
	})
}
