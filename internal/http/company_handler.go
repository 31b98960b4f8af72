package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"innersignature/internal/metrics"
	"innersignature/internal/service"
)

// CompanyHandler mantiene dependencias para el directorio de companias.
type CompanyHandler struct {
	logger  *zap.Logger
	authSvc *service.AuthService
	metrics *metrics.Metrics
}

// NewCompanyHandler crea una instancia de CompanyHandler.
func NewCompanyHandler(logger *zap.Logger, authSvc *service.AuthService, m *metrics.Metrics) *CompanyHandler {
	return &CompanyHandler{
		logger:  logger,
		authSvc: authSvc,
		metrics: m,
	}
}

// ListMemberships maneja GET /companies: las companias a las que pertenece
// el usuario del token.
func (h *CompanyHandler) ListMemberships(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "missing token")
		return
	}

	memberships, err := h.authSvc.ListMemberships(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Error("list memberships failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "could not list companies")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"companies": memberships})
}

// SwitchCompany maneja POST /companies/switch: emite un triple nuevo
// re-alcanzado a la compania destino.
func (h *CompanyHandler) SwitchCompany(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "missing token")
		return
	}

	var req struct {
		CompanyID    string `json:"companyId" binding:"required"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid switch request", zap.Error(err))
		respondError(c, http.StatusBadRequest, "invalid request")
		return
	}

	result, err := h.authSvc.SwitchCompany(c.Request.Context(), claims, req.CompanyID, req.RefreshToken, requestMeta(c))
	h.metrics.ObserveSessionOp("switch_company", err)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotMember):
			respondError(c, http.StatusForbidden, "not a member of the company")
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, http.StatusNotFound, "user not found")
		default:
			h.logger.Error("switch company failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "could not switch company")
		}
		return
	}

	respondOK(c, http.StatusOK, sessionData(result))
}
