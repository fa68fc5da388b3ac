package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/altklausuren/internal/app/models/dto"
	"github.com/yigit/altklausuren/internal/app/services"
	"github.com/yigit/altklausuren/internal/middleware"
	"github.com/yigit/altklausuren/internal/pkg/apperrors"
	"github.com/yigit/altklausuren/internal/pkg/logger"
	"github.com/yigit/altklausuren/internal/pkg/metrics"
)

const (
	msgLoginSuccess  = "Login erfolgreich"
	msgLogoutSuccess = "Logout erfolgreich"
	msgServerError   = "Serverfehler"
)

// AuthController handles login, logout and session status
type AuthController struct {
	authService services.AuthService
	sessions    *middleware.SessionMiddleware
	metrics     *metrics.Metrics
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AuthService, sessions *middleware.SessionMiddleware, m *metrics.Metrics) *AuthController {
	return &AuthController{
		authService: authService,
		sessions:    sessions,
		metrics:     m,
	}
}

// Login handles user login
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} dto.MessageResponse
// @Failure 401 {object} dto.MessageResponse
// @Failure 500 {object} dto.MessageResponse
// @Router /api/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleAPIError(ctx, apperrors.Wrap(apperrors.KindValidation, apperrors.ErrMissingCredentials.Message, err), nil)
		return
	}

	sess, user, err := c.authService.Login(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.recordLogin(err)
		middleware.HandleAPIError(ctx, err, dto.MessageResponse{Message: msgServerError})
		return
	}

	// A new login replaces the caller's previous session
	if old, ok := middleware.SessionFromContext(ctx); ok && old.ID != sess.ID {
		if err := c.authService.Logout(ctx.Request.Context(), old.ID); err != nil {
			logger.Warn().Err(err).Str("username", old.Username).Msg("Failed to destroy replaced session")
		}
	}

	if err := c.sessions.IssueCookie(ctx, sess); err != nil {
		c.recordLogin(err)
		_ = c.authService.Logout(ctx.Request.Context(), sess.ID)
		middleware.HandleAPIError(ctx, err, dto.MessageResponse{Message: msgServerError})
		return
	}
	c.recordLogin(nil)

	ctx.JSON(http.StatusOK, dto.LoginResponse{
		Success:  true,
		Message:  msgLoginSuccess,
		UserID:   user.ID,
		Username: user.Username,
	})
}

// Logout handles user logout
// @Summary Log out
// @Tags auth
// @Produce json
// @Success 200 {object} dto.LogoutResponse
// @Failure 500 {object} dto.MessageResponse
// @Router /api/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	if sess, ok := middleware.SessionFromContext(ctx); ok {
		if err := c.authService.Logout(ctx.Request.Context(), sess.ID); err != nil {
			middleware.HandleAPIError(ctx, err, dto.MessageResponse{Message: msgServerError})
			return
		}
		logger.Info().Str("username", sess.Username).Msg("Logout")
	}

	c.sessions.ClearCookie(ctx)
	ctx.JSON(http.StatusOK, dto.LogoutResponse{
		Success: true,
		Message: msgLogoutSuccess,
	})
}

// Status reports whether the caller is logged in
// @Summary Session status
// @Tags auth
// @Produce json
// @Success 200 {object} dto.AuthStatusResponse
// @Router /api/auth/status [get]
func (c *AuthController) Status(ctx *gin.Context) {
	sess, ok := middleware.SessionFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusOK, dto.AuthStatusResponse{Authenticated: false})
		return
	}
	ctx.JSON(http.StatusOK, dto.AuthStatusResponse{
		Authenticated: true,
		Username:      sess.Username,
	})
}

func (c *AuthController) recordLogin(err error) {
	if c.metrics == nil {
		return
	}
	switch {
	case err == nil:
		c.metrics.LoginAttempt(metrics.LoginSuccess)
	case apperrors.IsKind(err, apperrors.KindInternal):
		c.metrics.LoginAttempt(metrics.LoginError)
	default:
		c.metrics.LoginAttempt(metrics.LoginFailure)
	}
}
