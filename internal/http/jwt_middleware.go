package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"innersignature/internal/service"
)

const authClaimsKey = "auth_claims"

// JWTAuthMiddleware valida access tokens, consulta la blacklist de logout y
// guarda los claims en el contexto.
func JWTAuthMiddleware(tokenSvc *service.TokenService, blacklist service.AccessTokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenSvc == nil {
			respondError(c, http.StatusInternalServerError, "token service not configured")
			return
		}

		token := bearerToken(c)
		if token == "" {
			respondError(c, http.StatusUnauthorized, "missing token")
			return
		}

		claims, err := tokenSvc.ParseAccessToken(token)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "invalid token")
			return
		}

		if blacklist != nil {
			revoked, err := blacklist.IsBlacklisted(claims.ID)
			if err != nil || revoked {
				respondError(c, http.StatusUnauthorized, "invalid token")
				return
			}
		}

		c.Set(authClaimsKey, claims)
		c.Next()
	}
}

// GetAuthClaims obtiene claims del access token desde el contexto.
func GetAuthClaims(c *gin.Context) (service.Claims, bool) {
	val, ok := c.Get(authClaimsKey)
	if !ok {
		return service.Claims{}, false
	}
	claims, ok := val.(service.Claims)
	return claims, ok
}

func bearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}
