package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/count-game-api/internal/auth"
	"github.com/iliyamo/count-game-api/internal/metrics"
	"github.com/iliyamo/count-game-api/internal/model"
)

// AuthService is the part of auth.Service the handlers need.
type AuthService interface {
	Authenticator
	Register(ctx context.Context, username, email, password string) (model.PublicUser, error)
	Login(ctx context.Context, username, password string) (string, error)
	CurrentIdentity(u model.User) model.PublicUser
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	gatekeeper
	svc AuthService
}

func NewAuthHandler(svc AuthService, log *zap.Logger, m *metrics.Metrics, timeout time.Duration) *AuthHandler {
	return &AuthHandler{
		gatekeeper: gatekeeper{auth: svc, log: log.Named("auth"), metrics: m, timeout: timeout},
		svc:        svc,
	}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
}

// loginReq accepts both an OAuth2 password form and a JSON body.
type loginReq struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type tokenResp struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register creates an account and returns its public fields.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return detail(http.StatusUnprocessableEntity, detailInvalidBody)
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	u, err := h.svc.Register(ctx, req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrDuplicateUsername):
		h.metrics.ObserveAuth("register", "duplicate_username")
		return detail(http.StatusBadRequest, "Username already registered")
	case errors.Is(err, auth.ErrDuplicateEmail):
		h.metrics.ObserveAuth("register", "duplicate_email")
		return detail(http.StatusBadRequest, "Email already registered")
	case err != nil:
		h.metrics.ObserveAuth("register", "error")
		return err
	}

	h.metrics.ObserveAuth("register", "ok")
	h.log.Info("user registered", zap.Uint64("user_id", u.ID), zap.String("username", u.Username))
	return c.JSON(http.StatusCreated, u)
}

// Login verifies credentials and returns a bearer token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return detail(http.StatusUnprocessableEntity, detailInvalidBody)
	}
	// Same normalisation as Register.
	req.Username = strings.TrimSpace(req.Username)
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	token, err := h.svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.metrics.ObserveAuth("login", "invalid_credentials")
			h.log.Debug("login failed", zap.String("username", req.Username))
			return unauthorized(c, "Incorrect username or password")
		}
		h.metrics.ObserveAuth("login", "error")
		return err
	}

	h.metrics.ObserveAuth("login", "ok")
	return c.JSON(http.StatusOK, tokenResp{AccessToken: token, TokenType: "bearer"})
}

// Me returns the authenticated caller.
func (h *AuthHandler) Me(c echo.Context) error {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	u, err := h.currentUser(ctx, c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.svc.CurrentIdentity(u))
}
