package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"innersignature/internal/metrics"
	"innersignature/internal/service"
)

// AuthHandler mantiene dependencias para endpoints de autenticacion.
type AuthHandler struct {
	logger  *zap.Logger
	authSvc *service.AuthService
	metrics *metrics.Metrics
}

// NewAuthHandler crea una instancia de AuthHandler con dependencias necesarias.
func NewAuthHandler(logger *zap.Logger, authSvc *service.AuthService, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		logger:  logger,
		authSvc: authSvc,
		metrics: m,
	}
}

// sessionPayload es el triple {user, token, refreshToken} que el cliente
// persiste tal cual en su store de sesion.
type sessionPayload struct {
	User         any    `json:"user"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

func sessionData(result service.LoginResult) sessionPayload {
	return sessionPayload{
		User:         result.Identity,
		Token:        result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
		ExpiresIn:    result.Tokens.ExpiresIn,
	}
}

func requestMeta(c *gin.Context) service.RequestMeta {
	return service.RequestMeta{
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	}
}

// Login maneja POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		respondError(c, http.StatusBadRequest, "invalid request")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password, requestMeta(c))
	h.metrics.ObserveSessionOp("login", err)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, service.ErrRateLimited):
			respondError(c, http.StatusTooManyRequests, "too many attempts")
		default:
			h.logger.Error("login failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "could not login")
		}
		return
	}

	respondOK(c, http.StatusOK, sessionData(result))
}

// Refresh maneja POST /auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid refresh request", zap.Error(err))
		respondError(c, http.StatusBadRequest, "invalid request")
		return
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken, requestMeta(c))
	h.metrics.ObserveSessionOp("refresh", err)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "invalid token")
		return
	}

	respondOK(c, http.StatusOK, sessionData(result))
}

// Logout maneja POST /logout. El body {refreshToken} es opcional; el access
// token del header queda en blacklist aunque no llegue refresh.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "missing token")
		return
	}

	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	// Un body vacio es valido: solo invalida el access token.
	_ = c.ShouldBindJSON(&req)

	err := h.authSvc.Logout(c.Request.Context(), claims, req.RefreshToken)
	h.metrics.ObserveSessionOp("logout", err)
	if err != nil {
		h.logger.Error("logout failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "could not logout")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"loggedOut": true})
}
